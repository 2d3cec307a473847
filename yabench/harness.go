// Package yabench measures wall-clock time and heap growth of work split into
// fixed-size batches.
//
// The harness slices its input into contiguous, non-overlapping batches of
// batchSize elements (the last one may be shorter), runs the operation exactly
// once per batch under Measure, and sums the per-batch costs. Every batch and
// the final totals are handed to a Collector.
//
// Example:
//
//	h, err := yabench.NewHarness(190, &yabench.HarnessOpts{Logger: log})
//	if err != nil {
//	    return err
//	}
//
//	res, err := yabench.ProcessInBatches(ctx, h, "encrypt", data,
//	    func(batch []byte) ([]*big.Int, yaerrors.Error) {
//	        return yarsa.Encrypt(&key.PublicKey, batch), nil
//	    })
//
//	stream := yarsa.CipherStream(yabench.Flatten(res.Batches))
package yabench

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/YaCodeDev/GoYaRSABench/yaerrors"
	"github.com/YaCodeDev/GoYaRSABench/yalogger"
	"github.com/google/uuid"
)

// DefaultBatchSize matches the widest OAEP chunk of a 2048-bit key with SHA-256.
const DefaultBatchSize = 190

// HarnessOpts tunes NewHarness. Every field is optional.
//   - Collector: receives reports; NopCollector if nil.
//   - SampleInterval: heap polling interval; DefaultSampleInterval if <= 0.
//   - Logger: used to report collector failures; a default logger if nil.
//   - RunID: tags every report; a random UUID if empty.
type HarnessOpts struct {
	Collector      Collector
	SampleInterval time.Duration
	Logger         yalogger.Logger
	RunID          string
}

// Harness is immutable after construction and may be shared between goroutines
// as long as its collector is.
type Harness struct {
	batchSize int
	collector Collector
	interval  time.Duration
	log       yalogger.Logger
	runID     string
}

// Result is the outcome of ProcessInBatches.
//   - Batches: per-batch outputs in input order.
//   - BatchSizes: len of each input batch, same order.
//   - TotalElapsed, TotalPeakMemory: sums over all batches.
type Result[Out any] struct {
	Batches         []Out
	BatchSizes      []int
	TotalElapsed    time.Duration
	TotalPeakMemory uint64
}

func NewHarness(batchSize int, opts *HarnessOpts) (*Harness, yaerrors.Error) {
	if batchSize <= 0 {
		return nil, yaerrors.Configuration(fmt.Sprintf("[Bench] batch size must be positive, got %d", batchSize))
	}

	h := &Harness{
		batchSize: batchSize,
		collector: NopCollector{},
		interval:  DefaultSampleInterval,
		runID:     uuid.NewString(),
	}

	if opts != nil {
		if opts.Collector != nil {
			h.collector = opts.Collector
		}

		if opts.SampleInterval > 0 {
			h.interval = opts.SampleInterval
		}

		if opts.Logger != nil {
			h.log = opts.Logger
		}

		if opts.RunID != "" {
			h.runID = opts.RunID
		}
	}

	if h.log == nil {
		h.log = yalogger.NewBaseLogger(nil).NewLogger()
	}

	h.log = h.log.WithField(yalogger.KeyRunID, h.runID)

	return h, nil
}

func (h *Harness) BatchSize() int {
	return h.batchSize
}

func (h *Harness) RunID() string {
	return h.runID
}

// ProcessInBatches runs fn once for every batch of data and returns the outputs
// with the summed costs. Empty data yields an empty result and a run report with
// zero batches. The first failing batch aborts the run; its error is wrapped with
// the label and batch index.
func ProcessInBatches[In, Out any](
	ctx context.Context,
	h *Harness,
	label string,
	data []In,
	fn func(batch []In) (Out, yaerrors.Error),
) (*Result[Out], yaerrors.Error) {
	if h == nil {
		return nil, yaerrors.Configuration("[Bench] harness is nil")
	}

	startedAt := time.Now()
	batches := (len(data) + h.batchSize - 1) / h.batchSize

	result := &Result[Out]{
		Batches:    make([]Out, 0, batches),
		BatchSizes: make([]int, 0, batches),
	}

	for index := range batches {
		if err := ctx.Err(); err != nil {
			return nil, yaerrors.FromError(
				http.StatusRequestTimeout,
				err,
				fmt.Sprintf("[Bench] %s stopped before batch %d", label, index),
			)
		}

		start := index * h.batchSize
		batch := data[start:min(start+h.batchSize, len(data))]

		var (
			out   Out
			fnErr yaerrors.Error
		)

		measurement, _ := Measure(func() error {
			out, fnErr = fn(batch)

			return nil
		}, h.interval)

		if fnErr != nil {
			return nil, fnErr.Wrap(fmt.Sprintf("[Bench] %s batch %d failed", label, index))
		}

		result.Batches = append(result.Batches, out)
		result.BatchSizes = append(result.BatchSizes, len(batch))
		result.TotalElapsed += measurement.Elapsed
		result.TotalPeakMemory += measurement.PeakMemory

		h.observeBatch(ctx, BatchReport{
			RunID:      h.runID,
			Label:      label,
			Index:      index,
			Size:       len(batch),
			Elapsed:    measurement.Elapsed,
			PeakMemory: measurement.PeakMemory,
		})
	}

	h.observeRun(ctx, RunReport{
		RunID:           h.runID,
		Label:           label,
		Batches:         len(result.Batches),
		Units:           len(data),
		TotalElapsed:    result.TotalElapsed,
		TotalPeakMemory: result.TotalPeakMemory,
		StartedAt:       startedAt,
	})

	return result, nil
}

// Flatten concatenates batch outputs back into a single slice.
func Flatten[T any](batches [][]T) []T {
	total := 0
	for _, b := range batches {
		total += len(b)
	}

	out := make([]T, 0, total)
	for _, b := range batches {
		out = append(out, b...)
	}

	return out
}

func (h *Harness) observeBatch(ctx context.Context, report BatchReport) {
	if err := h.collector.ObserveBatch(ctx, report); err != nil {
		h.log.WithFields(map[string]any{
			yalogger.KeyLabel: report.Label,
			yalogger.KeyBatch: report.Index,
		}).Warnf("Failed to record batch: %v", err)
	}
}

func (h *Harness) observeRun(ctx context.Context, report RunReport) {
	if err := h.collector.ObserveRun(ctx, report); err != nil {
		h.log.WithField(yalogger.KeyLabel, report.Label).Warnf("Failed to record run: %v", err)
	}
}
