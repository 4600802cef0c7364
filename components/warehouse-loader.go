package components

import (
	"sync/atomic"

	"github.com/pkg/errors"
	c "github.com/relloyd/snappipe/constants"
	"github.com/relloyd/snappipe/logger"
	"github.com/relloyd/snappipe/rdbms"
	"github.com/relloyd/snappipe/rdbms/shared"
	s "github.com/relloyd/snappipe/stats"
	"github.com/relloyd/snappipe/stream"
)

type WarehouseLoaderConfig struct {
	Log                   logger.Logger
	Name                  string
	InputChan             chan stream.Record // carries the uploaded blob's target key.
	InputErrChan          chan error
	Tx                    shared.Transacter // warehouse transaction owned by the orchestrator.
	TargetSchemaTableName rdbms.SchemaTable // the schema.table to load into.
	BucketName            string
	Credential            string // IAM role ARN or Snowflake stage, per the builder below.
	KeyChanField          string // field on InputChan holding the blob key; defaults to Defaults.ChanField4TargetKey.
	FnGetCopySqlSlice     rdbms.CopySqlBuilderFunc
	StepWatcher           *s.StepWatcher
	WaitCounter           ComponentWaiter
}

// NewWarehouseLoader reads the input channel of uploaded blob keys and executes the
// generated bulk-ingest statements against cfg.Tx. It never commits: the orchestrator
// holds the transaction so all table loads for the run become visible together, or not
// at all. A statement failure (malformed record, schema mismatch, permission denial)
// surfaces as a load error and aborts the run.
func NewWarehouseLoader(i interface{}) (chan stream.Record, chan error) {
	cfg := i.(*WarehouseLoaderConfig)
	if cfg.InputChan == nil {
		cfg.Log.Panic(cfg.Name, " error - missing input channel.")
	}
	if cfg.KeyChanField == "" {
		cfg.KeyChanField = Defaults.ChanField4TargetKey
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
		for rec := range cfg.InputChan { // for each uploaded blob...
			key, err := rec.GetDataAsString(cfg.KeyChanField)
			if err != nil {
				errChan <- errors.Wrapf(ErrLoad, "%v %v", cfg.Name, err)
				return
			}
			cfg.Log.Info(cfg.Name, " loading into table '", cfg.TargetSchemaTableName.String(), "' from key '", key, "'")
			queries := cfg.FnGetCopySqlSlice(cfg.TargetSchemaTableName, cfg.BucketName, key, cfg.Credential)
			for _, stmt := range queries { // for each SQL that we should execute...
				cfg.Log.Debug(cfg.Name, " executing query: ", stmt)
				if _, err := cfg.Tx.Exec(stmt); err != nil {
					drainRecords(cfg.InputChan)
					firstErr(cfg.InputErrChan)
					errChan <- errors.Wrapf(ErrLoad, "%v error executing COPY: %v", cfg.Name, err)
					return
				}
			}
			outputChan <- rec
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
