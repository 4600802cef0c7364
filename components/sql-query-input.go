package components

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
	c "github.com/relloyd/snappipe/constants"
	"github.com/relloyd/snappipe/logger"
	"github.com/relloyd/snappipe/rdbms/shared"
	s "github.com/relloyd/snappipe/stats"
	"github.com/relloyd/snappipe/stream"
)

type SqlQueryInputConfig struct {
	Log         logger.Logger
	Name        string
	Tx          shared.Transacter // the run-wide source read transaction; the cursor lives inside it.
	Sqltext     string
	Args        []interface{}
	CursorName  string // defaults to constants.CursorNameDefault.
	FetchSize   int    // rows per FETCH; defaults to constants.CursorFetchSizeDefault.
	StepWatcher *s.StepWatcher
	WaitCounter ComponentWaiter
}

// NewSqlQueryInput opens a named server-side cursor over cfg.Sqltext inside cfg.Tx and
// fetches rows onto the output channel in batches, so arbitrarily large tables stream
// through without being materialized in memory.
// The error channel yields at most one error (the first) and both channels are closed
// when the component is done; read the error channel after the output channel closes.
func NewSqlQueryInput(i interface{}) (chan stream.Record, chan error) {
	cfg := i.(*SqlQueryInputConfig)
	outputChan := make(chan stream.Record, int(c.ChanSize))
	errChan := make(chan error, 1)
	if cfg.CursorName == "" {
		cfg.CursorName = c.CursorNameDefault
	}
	if cfg.FetchSize <= 0 {
		cfg.FetchSize = c.CursorFetchSizeDefault
	}
	go func() {
		if cfg.WaitCounter != nil {
			cfg.WaitCounter.Add()
			defer cfg.WaitCounter.Done()
		}
		defer close(outputChan)
		defer close(errChan)
		cfg.Log.Info(cfg.Name, " is running")
		rowCount := int64(0)
		if cfg.StepWatcher != nil { // if the caller supplied a watcher for row count and channel stats...
			cfg.StepWatcher.StartWatching(&rowCount, &outputChan)
			defer cfg.StepWatcher.StopWatching()
		}
		if err := execCursor(cfg, outputChan, &rowCount); err != nil {
			errChan <- err
			return
		}
		cfg.Log.Info(cfg.Name, " complete")
	}()
	return outputChan, errChan
}

func execCursor(cfg *SqlQueryInputConfig, outputChan chan stream.Record, rowCount *int64) error {
	declare := fmt.Sprintf("DECLARE %v NO SCROLL CURSOR FOR %v", cfg.CursorName, cfg.Sqltext)
	if len(cfg.Args) > 0 {
		cfg.Log.Info(cfg.Name, " executing SQL: ", declare, "; args = ", cfg.Args)
	} else {
		cfg.Log.Info(cfg.Name, " executing SQL: ", declare)
	}
	if _, err := cfg.Tx.Exec(declare, cfg.Args...); err != nil {
		return errors.Wrapf(ErrExtraction, "%v error declaring cursor: %v", cfg.Name, err)
	}
	// The cursor name is scoped to the transaction; close it either way so the next
	// dump in the same transaction can reuse the name.
	defer func() {
		if _, err := cfg.Tx.Exec(fmt.Sprintf("CLOSE %v", cfg.CursorName)); err != nil {
			cfg.Log.Warn(cfg.Name, " error closing cursor: ", err)
		}
	}()
	fetch := fmt.Sprintf("FETCH FORWARD %v FROM %v", cfg.FetchSize, cfg.CursorName)
	for { // for each batch of rows...
		rows, err := cfg.Tx.Query(fetch)
		if err != nil {
			return errors.Wrapf(ErrExtraction, "%v error fetching from cursor: %v", cfg.Name, err)
		}
		n, err := sendRows(cfg, rows, outputChan, rowCount)
		if err != nil {
			_ = rows.Close()
			return err
		}
		if err := rows.Close(); err != nil {
			return errors.Wrapf(ErrExtraction, "%v error closing SQL result set: %v", cfg.Name, err)
		}
		if n < cfg.FetchSize { // if the cursor is exhausted...
			break
		}
	}
	return nil
}

// sendRows scans one fetched batch onto the output channel, converting values so the
// serializer downstream sees what the record contract expects.
func sendRows(cfg *SqlQueryInputConfig, rows shared.Rows, outputChan chan stream.Record, rowCount *int64) (int, error) {
	cols, err := rows.Columns()
	if err != nil {
		return 0, errors.Wrapf(ErrExtraction, "%v error fetching column types: %v", cfg.Name, err)
	}
	lenCols := len(cols)
	scanPtrs := make([]interface{}, lenCols)
	scanVals := make([]interface{}, lenCols)
	for idx := 0; idx < lenCols; idx++ {
		scanPtrs[idx] = &scanVals[idx]
	}
	n := 0
	for rows.Next() {
		if err := rows.Scan(scanPtrs...); err != nil {
			return n, errors.Wrapf(ErrExtraction, "%v unable to scan row: %v", cfg.Name, err)
		}
		row := stream.NewRecord()
		for idx := range scanVals {
			row.SetData(cols[idx].Name, convertColumnValue(cols[idx], scanVals[idx]))
		}
		cfg.Log.Trace(cfg.Name, " producing row onto outputChan: ", row)
		outputChan <- row
		atomic.AddInt64(rowCount, 1) // increment the row count bearing in mind someone else is reporting on its values.
		n++
	}
	if err := rows.Err(); err != nil { // if the connection dropped mid-stream...
		return n, errors.Wrapf(ErrExtraction, "%v error during cursor fetch: %v", cfg.Name, err)
	}
	return n, nil
}

// convertColumnValue turns driver values into record values: DATE columns become plain
// YYYY-MM-DD strings (timestamps keep their time.Time and serialize with the full format).
func convertColumnValue(col shared.Column, v interface{}) interface{} {
	if t, ok := v.(time.Time); ok && col.DatabaseType == "DATE" {
		return t.Format(c.SnapshotDateFormat)
	}
	return v
}
