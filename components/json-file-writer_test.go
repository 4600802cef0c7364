package components

import (
	"io/ioutil"
	"os"
	"strings"
	"testing"

	"github.com/pkg/errors"
	c "github.com/relloyd/snappipe/constants"
	"github.com/relloyd/snappipe/logger"
	"github.com/relloyd/snappipe/stream"
)

func TestNewJsonFileWriter(t *testing.T) {
	log := logger.NewLogger("snappipe", "info", true)
	dir, err := ioutil.TempDir("", "test-json-file-writer-")
	if err != nil {
		t.Fatal("unable to create tmp dir: ", err)
	}
	defer os.RemoveAll(dir)
	// Test 1 - confirm records land in the file as one JSON object per line.
	log.Info("Test 1 - confirm records land in the file as one JSON object per line...")
	inputChan := make(chan stream.Record, c.ChanSize)
	r1 := stream.NewRecord()
	r1.SetData("snapshot_date", "2023-03-05")
	r1.SetData("id", int64(1))
	r2 := stream.NewRecord()
	r2.SetData("snapshot_date", "2023-03-05")
	r2.SetData("id", int64(2))
	inputChan <- r1
	inputChan <- r2
	close(inputChan)
	outputChan, errChan := NewJsonFileWriter(&JsonFileWriterConfig{
		Log:            log,
		Name:           "Test JSON writer",
		InputChan:      inputChan,
		OutputDir:      dir,
		FileNamePrefix: "users",
	})
	rec, ok := <-outputChan
	if !ok {
		t.Fatal("expected a record carrying the output file name")
	}
	for range outputChan {
	}
	if err := <-errChan; err != nil {
		t.Fatal("unexpected error from component: ", err)
	}
	fileName, err := rec.GetDataAsString(Defaults.ChanField4FileName)
	if err != nil {
		t.Fatal("unexpected error fetching file name from record: ", err)
	}
	if !strings.Contains(fileName, "users-") || !strings.HasSuffix(fileName, ".json") {
		t.Fatal("unexpected output file name: ", fileName)
	}
	data, err := ioutil.ReadFile(fileName)
	if err != nil {
		t.Fatal("unable to read output file: ", err)
	}
	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines in output file, got %v", len(lines))
	}
	if lines[0] != `{"snapshot_date": "2023-03-05", "id": 1}` {
		t.Fatal("unexpected first line: ", lines[0])
	}
	if lines[1] != `{"snapshot_date": "2023-03-05", "id": 2}` {
		t.Fatal("unexpected second line: ", lines[1])
	}
	if err := os.Remove(fileName); err != nil { // the upload step normally owns this.
		t.Fatal("unable to remove output file: ", err)
	}
	// Test 2 - confirm an upstream failure removes the partial file and emits no record.
	log.Info("Test 2 - confirm an upstream failure removes the partial file and emits no record...")
	inputChan2 := make(chan stream.Record, c.ChanSize)
	inputChan2 <- r1
	close(inputChan2)
	inputErrChan := make(chan error, 1)
	testErr := errors.Wrap(ErrExtraction, "cursor fetch failed")
	inputErrChan <- testErr
	close(inputErrChan)
	outputChan, errChan = NewJsonFileWriter(&JsonFileWriterConfig{
		Log:            log,
		Name:           "Test JSON writer err",
		InputChan:      inputChan2,
		InputErrChan:   inputErrChan,
		OutputDir:      dir,
		FileNamePrefix: "users",
	})
	gotRecord := false
	for range outputChan {
		gotRecord = true
	}
	if gotRecord {
		t.Fatal("expected no output record after an upstream failure")
	}
	if err := <-errChan; err != testErr {
		t.Fatal("expected the upstream error to be forwarded, got: ", err)
	}
	files, err := ioutil.ReadDir(dir)
	if err != nil {
		t.Fatal("unable to list tmp dir: ", err)
	}
	if len(files) != 0 {
		t.Fatal("expected the partial file to be removed, found: ", files[0].Name())
	}
	// Test 3 - confirm a zero-row input still produces an (empty) file.
	log.Info("Test 3 - confirm a zero-row input still produces an (empty) file...")
	inputChan3 := make(chan stream.Record)
	close(inputChan3)
	outputChan, errChan = NewJsonFileWriter(&JsonFileWriterConfig{
		Log:            log,
		Name:           "Test JSON writer empty",
		InputChan:      inputChan3,
		OutputDir:      dir,
		FileNamePrefix: "users",
	})
	rec, ok = <-outputChan
	if !ok {
		t.Fatal("expected a record for the empty file")
	}
	for range outputChan {
	}
	if err := <-errChan; err != nil {
		t.Fatal("unexpected error from component: ", err)
	}
	fileName, _ = rec.GetDataAsString(Defaults.ChanField4FileName)
	data, err = ioutil.ReadFile(fileName)
	if err != nil {
		t.Fatal("unable to read empty output file: ", err)
	}
	if len(data) != 0 {
		t.Fatal("expected an empty file, got: ", string(data))
	}
	_ = os.Remove(fileName)
}
