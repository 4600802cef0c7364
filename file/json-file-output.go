package file

import (
	"bufio"
	"fmt"
	"io/ioutil"
	"os"
	"path"

	"github.com/pkg/errors"
	"github.com/relloyd/snappipe/logger"
	"github.com/rs/xid"
)

// JsonFileOutput writes newline-delimited JSON records to a temporary OS file.
// The file is created eagerly so a zero-row dump still produces an (empty) blob.
// Callers must arrange Cleanup() on every exit path; Cleanup after a successful
// Close is a no-op for the closed handle but still removes the file if it exists,
// so the upload step owns removal once it has taken the file name.
type JsonFileOutput struct {
	log             logger.Logger
	directory       string
	fullPath        string
	file            *os.File
	fWriter         *bufio.Writer
	rowCount        int
	needFileCleanup bool
}

// NewJsonFileOutput creates the output file in outputDirectory, or in a system generated
// temp directory when outputDirectory is the empty string. The file name is the supplied
// prefix plus a unique suffix so concurrent tests never collide.
func NewJsonFileOutput(log logger.Logger, outputDirectory string, fileNamePrefix string) (*JsonFileOutput, error) {
	f := &JsonFileOutput{log: log}
	if outputDirectory == "" {
		var err error
		f.directory, err = ioutil.TempDir("", "json-output-")
		if err != nil {
			return nil, errors.Wrap(err, "error creating temp directory for JSON output")
		}
	} else {
		f.directory = outputDirectory
	}
	f.fullPath = path.Join(f.directory, fmt.Sprintf("%v-%v.json", fileNamePrefix, xid.New().String()))
	var err error
	f.file, err = os.Create(f.fullPath)
	if err != nil {
		return nil, errors.Wrapf(err, "error creating JSON output file %v", f.fullPath)
	}
	f.fWriter = bufio.NewWriter(f.file)
	f.needFileCleanup = true
	log.Debug("JsonFileOutput created file ", f.fullPath)
	return f, nil
}

// WriteLine appends one serialized record plus the line terminator.
func (f *JsonFileOutput) WriteLine(line string) error {
	if f.file == nil {
		return errors.New("JsonFileOutput file is not open")
	}
	if _, err := f.fWriter.WriteString(line); err != nil {
		return errors.Wrapf(err, "error writing to JSON output file %v", f.fullPath)
	}
	if err := f.fWriter.WriteByte('\n'); err != nil {
		return errors.Wrapf(err, "error writing to JSON output file %v", f.fullPath)
	}
	f.rowCount++
	return nil
}

func (f *JsonFileOutput) RowCount() int {
	return f.rowCount
}

// Close flushes and closes the file, returning its full path for upload.
// The file itself is NOT removed; see Cleanup.
func (f *JsonFileOutput) Close() (string, error) {
	if f.file == nil {
		return "", errors.New("JsonFileOutput file is not open")
	}
	if err := f.fWriter.Flush(); err != nil {
		return "", errors.Wrapf(err, "error flushing JSON output file %v", f.fullPath)
	}
	if err := f.file.Close(); err != nil {
		return "", errors.Wrapf(err, "error closing JSON output file %v", f.fullPath)
	}
	f.file = nil
	return f.fullPath, nil
}

// Cleanup closes the file if still open and removes it from disk.
// Safe to call multiple times and on every exit path.
func (f *JsonFileOutput) Cleanup() {
	if f.file != nil {
		_ = f.fWriter.Flush()
		_ = f.file.Close()
		f.file = nil
	}
	if f.needFileCleanup {
		if err := os.Remove(f.fullPath); err != nil && !os.IsNotExist(err) {
			f.log.Warn("unable to remove temp file ", f.fullPath, ": ", err)
		}
		f.needFileCleanup = false
	}
}
