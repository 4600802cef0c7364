package components

import (
	"sync/atomic"

	"github.com/pkg/errors"
	c "github.com/relloyd/snappipe/constants"
	f "github.com/relloyd/snappipe/file"
	"github.com/relloyd/snappipe/logger"
	s "github.com/relloyd/snappipe/stats"
	"github.com/relloyd/snappipe/stream"
)

type JsonFileWriterConfig struct {
	Log            logger.Logger
	Name           string
	InputChan      chan stream.Record // the input channel of records to write to the output file.
	InputErrChan   chan error
	OutputDir      string // set to empty string to use a system generated sub directory in OS temp space.
	FileNamePrefix string
	StepWatcher    *s.StepWatcher
	WaitCounter    ComponentWaiter
}

// NewJsonFileWriter dumps cfg.InputChan to a newline-delimited JSON temp file.
// On success the output channel carries exactly one record holding the finished file name
// (Defaults.ChanField4FileName) for the upload step, which then owns the file's removal.
// On any failure - upstream extraction, serialization, local IO - the temp file is removed
// before the error is forwarded, so a partial file can never reach the upload step.
func NewJsonFileWriter(i interface{}) (chan stream.Record, chan error) {
	cfg := i.(*JsonFileWriterConfig)
	if cfg.InputChan == nil {
		cfg.Log.Panic(cfg.Name, " error - missing input channel.")
	}
	outputChan := make(chan stream.Record, c.ChanSize)
	errChan := make(chan error, 1)
	go func() {
		if cfg.WaitCounter != nil {
			cfg.WaitCounter.Add()
			defer cfg.WaitCounter.Done()
		}
		defer close(outputChan)
		defer close(errChan)
		cfg.Log.Info(cfg.Name, " is running")
		rowCount := int64(0)
		if cfg.StepWatcher != nil {
			cfg.StepWatcher.StartWatching(&rowCount, &outputChan)
			defer cfg.StepWatcher.StopWatching()
		}
		fi, err := f.NewJsonFileOutput(cfg.Log, cfg.OutputDir, cfg.FileNamePrefix)
		if err != nil {
			drainRecords(cfg.InputChan)
			firstErr(cfg.InputErrChan)
			errChan <- errors.Wrapf(ErrUpload, "%v %v", cfg.Name, err)
			return
		}
		cleanupNeeded := true
		defer func() {
			if cleanupNeeded { // if the file was not handed to the upload step...
				fi.Cleanup()
			}
		}()
		for rec := range cfg.InputChan { // for each row of input...
			line, err := rec.GetJson()
			if err != nil {
				drainRecords(cfg.InputChan)
				firstErr(cfg.InputErrChan)
				errChan <- errors.Wrapf(ErrSerialization, "%v %v", cfg.Name, err)
				return
			}
			if err := fi.WriteLine(line); err != nil {
				drainRecords(cfg.InputChan)
				firstErr(cfg.InputErrChan)
				errChan <- errors.Wrapf(ErrUpload, "%v %v", cfg.Name, err)
				return
			}
			atomic.AddInt64(&rowCount, 1)
		}
		if err := firstErr(cfg.InputErrChan); err != nil { // if the upstream failed mid-stream...
			errChan <- err // the deferred cleanup removes the partial file.
			return
		}
		fileName, err := fi.Close()
		if err != nil {
			errChan <- errors.Wrapf(ErrUpload, "%v %v", cfg.Name, err)
			return
		}
		cleanupNeeded = false // the upload step owns removal from here.
		cfg.Log.Info(cfg.Name, " wrote ", fi.RowCount(), " records to ", fileName)
		row := stream.NewRecord()
		row.SetData(Defaults.ChanField4FileName, fileName)
		outputChan <- row
		cfg.Log.Info(cfg.Name, " complete")
	}()
	return outputChan, errChan
}

// drainRecords consumes the rest of a record channel so the upstream goroutine can finish.
func drainRecords(ch chan stream.Record) {
	for range ch {
	}
}

// firstErr reads the single error an upstream component propagates, tolerating a nil
// channel for components fed directly by tests.
func firstErr(ch chan error) error {
	if ch == nil {
		return nil
	}
	return <-ch
}
