package yabench

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/YaCodeDev/GoYaRSABench/yaerrors"
	"github.com/YaCodeDev/GoYaRSABench/yalogger"
)

// BatchReport describes one measured batch.
type BatchReport struct {
	RunID      string        `msgpack:"run_id"`
	Label      string        `msgpack:"label"`
	Index      int           `msgpack:"index"`
	Size       int           `msgpack:"size"`
	Elapsed    time.Duration `msgpack:"elapsed"`
	PeakMemory uint64        `msgpack:"peak_memory"`
}

// RunReport summarises a whole ProcessInBatches call.
type RunReport struct {
	RunID           string        `msgpack:"run_id"`
	Label           string        `msgpack:"label"`
	Batches         int           `msgpack:"batches"`
	Units           int           `msgpack:"units"`
	TotalElapsed    time.Duration `msgpack:"total_elapsed"`
	TotalPeakMemory uint64        `msgpack:"total_peak_memory"`
	StartedAt       time.Time     `msgpack:"started_at"`
}

// Collector receives measurements as the harness produces them.
// A failing collector is logged by the harness and never changes the result.
type Collector interface {
	ObserveBatch(ctx context.Context, report BatchReport) yaerrors.Error
	ObserveRun(ctx context.Context, report RunReport) yaerrors.Error
}

// NopCollector discards everything.
type NopCollector struct{}

func (NopCollector) ObserveBatch(context.Context, BatchReport) yaerrors.Error { return nil }

func (NopCollector) ObserveRun(context.Context, RunReport) yaerrors.Error { return nil }

// MemoryCollector keeps every report in memory. It is safe for concurrent use.
type MemoryCollector struct {
	mu      sync.Mutex
	batches []BatchReport
	runs    []RunReport
}

func NewMemoryCollector() *MemoryCollector {
	return &MemoryCollector{}
}

func (c *MemoryCollector) ObserveBatch(_ context.Context, report BatchReport) yaerrors.Error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.batches = append(c.batches, report)

	return nil
}

func (c *MemoryCollector) ObserveRun(_ context.Context, report RunReport) yaerrors.Error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.runs = append(c.runs, report)

	return nil
}

// Batches returns a copy of the batch reports in arrival order.
func (c *MemoryCollector) Batches() []BatchReport {
	c.mu.Lock()
	defer c.mu.Unlock()

	return slices.Clone(c.batches)
}

// Runs returns a copy of the run reports in arrival order.
func (c *MemoryCollector) Runs() []RunReport {
	c.mu.Lock()
	defer c.mu.Unlock()

	return slices.Clone(c.runs)
}

// LogCollector writes batch progress at debug level and run totals at info level.
type LogCollector struct {
	log yalogger.Logger
}

func NewLogCollector(log yalogger.Logger) *LogCollector {
	return &LogCollector{log: log}
}

func (c *LogCollector) ObserveBatch(_ context.Context, report BatchReport) yaerrors.Error {
	c.log.WithFields(map[string]any{
		yalogger.KeyRunID: report.RunID,
		yalogger.KeyLabel: report.Label,
		yalogger.KeyBatch: report.Index,
	}).Debugf("%d units in %s, peak memory %d bytes", report.Size, report.Elapsed, report.PeakMemory)

	return nil
}

func (c *LogCollector) ObserveRun(_ context.Context, report RunReport) yaerrors.Error {
	c.log.WithFields(map[string]any{
		yalogger.KeyRunID: report.RunID,
		yalogger.KeyLabel: report.Label,
	}).Infof(
		"%d units in %d batches: total time %s, total peak memory %d bytes",
		report.Units,
		report.Batches,
		report.TotalElapsed,
		report.TotalPeakMemory,
	)

	return nil
}

// MultiCollector fans every report out to all of its collectors, in order.
// Every collector is called even if an earlier one fails; the first error is returned.
type MultiCollector []Collector

func (m MultiCollector) ObserveBatch(ctx context.Context, report BatchReport) yaerrors.Error {
	var first yaerrors.Error

	for _, c := range m {
		if err := c.ObserveBatch(ctx, report); err != nil && first == nil {
			first = err
		}
	}

	return first
}

func (m MultiCollector) ObserveRun(ctx context.Context, report RunReport) yaerrors.Error {
	var first yaerrors.Error

	for _, c := range m {
		if err := c.ObserveRun(ctx, report); err != nil && first == nil {
			first = err
		}
	}

	return first
}
