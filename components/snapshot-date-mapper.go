package components

import (
	"sync/atomic"

	c "github.com/relloyd/snappipe/constants"
	"github.com/relloyd/snappipe/logger"
	s "github.com/relloyd/snappipe/stats"
	"github.com/relloyd/snappipe/stream"
)

type SnapshotDateMapperConfig struct {
	Log          logger.Logger
	Name         string
	InputChan    chan stream.Record
	InputErrChan chan error // first upstream error is forwarded untouched.
	SnapshotDate string     // YYYY-MM-DD; the same value for every record in the run.
	FieldName    string     // defaults to constants.SnapshotDateFieldName.
	StepWatcher  *s.StepWatcher
	WaitCounter  ComponentWaiter
}

// NewSnapshotDateMapper injects the run's snapshot date as the FIRST field of every record
// read from InputChan, preserving the cursor-reported order of the source columns after it.
func NewSnapshotDateMapper(i interface{}) (chan stream.Record, chan error) {
	cfg := i.(*SnapshotDateMapperConfig)
	if cfg.InputChan == nil {
		cfg.Log.Panic(cfg.Name, " error - missing input channel.")
	}
	if cfg.FieldName == "" {
		cfg.FieldName = c.SnapshotDateFieldName
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
		for rec := range cfg.InputChan { // for each row of input...
			out := stream.NewRecord()
			out.SetData(cfg.FieldName, cfg.SnapshotDate)
			rec.CopyTo(out)
			outputChan <- out
			atomic.AddInt64(&rowCount, 1)
		}
		if err := firstErr(cfg.InputErrChan); err != nil { // if the upstream failed...
			errChan <- err
			return
		}
		cfg.Log.Info(cfg.Name, " complete")
	}()
	return outputChan, errChan
}
