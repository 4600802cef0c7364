package stats

import (
	"fmt"
	"sync/atomic"
	"time"

	c "github.com/relloyd/snappipe/constants"
	h "github.com/relloyd/snappipe/helper"
	"github.com/relloyd/snappipe/logger"
	"github.com/relloyd/snappipe/stream"
)

// StepWatcher saves stats for a given pipeline step periodically.
// The step calls StartWatching() and StopWatching() around its work.
type StepWatcher struct {
	log           logger.Logger
	stepName      string
	rowCountPtr   *int64 // ptr to rowCount held in a given step for which we are capturing stats.
	chanPtr       *chan stream.Record
	chanLen       int64
	startTime     time.Time
	rowsPerSecAvg int64
	totalRows     int64
	priorRowCount int64     // allows us to calculate delta rows per sec between ticker timeout.
	priorTime     time.Time // allows us to calculate delta rows per sec between ticker timeout.
	ticker        *time.Ticker
	tickerDone    chan struct{}
	isRunning     h.AtomBool
}

type Stats struct {
	StepName           string `json:"stepName"`
	StatusText         string `json:"statusText"`
	ElapsedTimeSec     int    `json:"elapsedTimeSec"`
	TotalRowsProcessed int    `json:"totalRowsProcessed"`
	RowsPerSecondAvg   int    `json:"rowsPerSecondAvg"`
	OutputBufferLen    int    `json:"outputBufferLen"`
}

func NewStepWatcher(log logger.Logger, stepName string) *StepWatcher {
	return &StepWatcher{log: log, stepName: stepName, tickerDone: make(chan struct{})}
}

func (n *StepWatcher) StartWatching(rowCountPtr *int64, chanPtr *chan stream.Record) {
	n.rowCountPtr = rowCountPtr
	n.chanPtr = chanPtr
	n.startTime = time.Now()
	n.priorTime = n.startTime
	n.isRunning.Set(true)
	n.totalRows = 0
	n.CalculateStats()
	// Calculate stats periodically on ticker timeout.
	n.ticker = time.NewTicker(time.Second * c.StatsCaptureFrequencySeconds)
	go func() {
		for {
			select {
			case <-n.ticker.C:
				n.CalculateStats()
			case <-n.tickerDone:
				return
			}
		}
	}()
}

func (n *StepWatcher) StopWatching() {
	n.ticker.Stop()
	n.tickerDone <- struct{}{} // stop the goroutine that calculates stats.
	n.CalculateStats()         // force final stats calculation.
	n.isRunning.Set(false)
	atomic.StoreInt64(&n.chanLen, 0)
}

func (n *StepWatcher) CalculateStats() {
	rowCount := atomic.AddInt64(n.rowCountPtr, 0)
	deltaRowCount := rowCount - n.priorRowCount
	atomic.StoreInt64(&n.chanLen, int64(len(*n.chanPtr))) // this may read a chan that was closed and has disappeared.
	n.log.Debug("STATS: ", n.stepName, " processed ", rowCount, " rows. Output channel length ", atomic.AddInt64(&n.chanLen, 0))
	atomic.StoreInt64(&n.priorRowCount, rowCount)
	n.priorTime = time.Now()
	atomic.AddInt64(&n.totalRows, deltaRowCount)
	atomic.StoreInt64(&n.rowsPerSecAvg,
		atomic.AddInt64(&n.totalRows, 0)/getNumSecondsSinceTimeOrOne(n.startTime))
}

// RenderStats gets a struct filled with stats at the point of time it is called.
func (n *StepWatcher) RenderStats() Stats {
	var statusText string
	if n.isRunning.Get() {
		statusText = "running"
	} else {
		statusText = "complete"
	}
	return Stats{
		StepName:           n.stepName,
		StatusText:         statusText,
		ElapsedTimeSec:     int(time.Since(n.startTime).Seconds()),
		TotalRowsProcessed: int(atomic.AddInt64(&n.totalRows, 0)),
		RowsPerSecondAvg:   int(atomic.AddInt64(&n.rowsPerSecAvg, 0)),
		OutputBufferLen:    int(atomic.AddInt64(&n.chanLen, 0)),
	}
}

// String will format the stats for general logging.
func (s Stats) String() string {
	return fmt.Sprintf(
		"Stats for %v %v "+
			"elapsedTimeSec=%v "+
			"totalRowsProcessed=%v "+
			"rowsPerSecondAvg=%v "+
			"outputBufferLen=%v",
		s.StepName, s.StatusText,
		s.ElapsedTimeSec,
		s.TotalRowsProcessed,
		s.RowsPerSecondAvg,
		s.OutputBufferLen,
	)
}

func getNumSecondsSinceTimeOrOne(t time.Time) (seconds int64) {
	seconds = int64(time.Since(t).Seconds())
	if seconds < 1 {
		seconds = 1
	}
	return
}
