package yabench

import (
	"runtime/metrics"
	"time"
)

// DefaultSampleInterval is how often the background sampler polls heap usage.
const DefaultSampleInterval = 10 * time.Millisecond

const heapObjectsMetric = "/memory/classes/heap/objects:bytes"

// Measurement is the cost of a single measured call.
//   - Elapsed: wall-clock duration of the call.
//   - PeakMemory: max minus min of the heap samples taken around and during the call, in bytes.
type Measurement struct {
	Elapsed    time.Duration
	PeakMemory uint64
}

// Measure runs fn once and reports its wall-clock time together with the spread
// of live heap bytes observed before, during and after the call. The sampler
// goroutine is stopped before Measure returns. fn's error is returned as-is.
//
// interval <= 0 means DefaultSampleInterval.
//
// Example usage:
//
//	var out yarsa.CipherStream
//
//	m, err := yabench.Measure(func() error {
//		out = yarsa.Encrypt(&key.PublicKey, data)
//		return nil
//	}, 0)
func Measure(fn func() error, interval time.Duration) (Measurement, error) {
	if interval <= 0 {
		interval = DefaultSampleInterval
	}

	probe := newHeapProbe()
	probe.observe()

	stop := make(chan struct{})
	done := make(chan heapRange, 1)

	go sampleHeap(interval, stop, done)

	start := time.Now()
	err := fn()
	elapsed := time.Since(start)

	close(stop)

	background := <-done

	probe.observe()
	probe.merge(background)

	return Measurement{
		Elapsed:    elapsed,
		PeakMemory: probe.spread(),
	}, err
}

type heapRange struct {
	low, high uint64
	seen      bool
}

func (r *heapRange) add(v uint64) {
	if !r.seen {
		r.low, r.high, r.seen = v, v, true

		return
	}

	r.low = min(r.low, v)
	r.high = max(r.high, v)
}

type heapProbe struct {
	sample []metrics.Sample
	heapRange
}

func newHeapProbe() *heapProbe {
	return &heapProbe{sample: []metrics.Sample{{Name: heapObjectsMetric}}}
}

func (p *heapProbe) observe() {
	metrics.Read(p.sample)

	if p.sample[0].Value.Kind() == metrics.KindUint64 {
		p.add(p.sample[0].Value.Uint64())
	}
}

func (p *heapProbe) merge(other heapRange) {
	if other.seen {
		p.add(other.low)
		p.add(other.high)
	}
}

func (p *heapProbe) spread() uint64 {
	if !p.seen {
		return 0
	}

	return p.high - p.low
}

// sampleHeap polls on its own probe until stop is closed, then hands its range back.
func sampleHeap(interval time.Duration, stop <-chan struct{}, done chan<- heapRange) {
	probe := newHeapProbe()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			done <- probe.heapRange

			return
		case <-ticker.C:
			probe.observe()
		}
	}
}
