package metrics

import (
	"sync"
	"sync/atomic"
)

// BasicProvider is a simple in-memory implementation of Provider, suitable
// for tests and lightweight processes. Instruments are created on demand by
// name and reused for the same name. Instrument options are stored for
// introspection only.
type BasicProvider struct {
	mu         sync.Mutex
	counters   map[string]*BasicCounter
	updowns    map[string]*BasicUpDownCounter
	histograms map[string]*BasicHistogram
	meta       map[string]InstrumentConfig
}

// NewBasicProvider constructs a new BasicProvider.
func NewBasicProvider() *BasicProvider {
	return &BasicProvider{
		counters:   make(map[string]*BasicCounter),
		updowns:    make(map[string]*BasicUpDownCounter),
		histograms: make(map[string]*BasicHistogram),
		meta:       make(map[string]InstrumentConfig),
	}
}

// Counter returns the monotonic counter registered under name, creating it
// on first use.
func (p *BasicProvider) Counter(name string, opts ...InstrumentOption) Counter {
	p.mu.Lock()
	defer p.mu.Unlock()
	c, ok := p.counters[name]
	if !ok {
		c = new(BasicCounter)
		p.counters[name] = c
		p.meta[name] = applyOptions(opts)
	}
	return c
}

// UpDownCounter returns the up/down counter registered under name, creating
// it on first use.
func (p *BasicProvider) UpDownCounter(name string, opts ...InstrumentOption) UpDownCounter {
	p.mu.Lock()
	defer p.mu.Unlock()
	u, ok := p.updowns[name]
	if !ok {
		u = new(BasicUpDownCounter)
		p.updowns[name] = u
		p.meta[name] = applyOptions(opts)
	}
	return u
}

// Histogram returns the histogram registered under name, creating it on
// first use.
func (p *BasicProvider) Histogram(name string, opts ...InstrumentOption) Histogram {
	p.mu.Lock()
	defer p.mu.Unlock()
	h, ok := p.histograms[name]
	if !ok {
		h = new(BasicHistogram)
		p.histograms[name] = h
		p.meta[name] = applyOptions(opts)
	}
	return h
}

// CounterValue returns the current value of the named counter, or zero if it
// was never created.
func (p *BasicProvider) CounterValue(name string) int64 {
	p.mu.Lock()
	c := p.counters[name]
	p.mu.Unlock()
	if c == nil {
		return 0
	}
	return c.Value()
}

// UpDownValue returns the current value of the named up/down counter, or
// zero if it was never created.
func (p *BasicProvider) UpDownValue(name string) int64 {
	p.mu.Lock()
	u := p.updowns[name]
	p.mu.Unlock()
	if u == nil {
		return 0
	}
	return u.Value()
}

// HistogramCount returns the number of recorded measurements of the named
// histogram, or zero if it was never created.
func (p *BasicProvider) HistogramCount(name string) int64 {
	p.mu.Lock()
	h := p.histograms[name]
	p.mu.Unlock()
	if h == nil {
		return 0
	}
	count, _ := h.Value()
	return count
}

// BasicCounter is a concurrency-safe monotonic counter.
type BasicCounter struct {
	val atomic.Int64
}

// Add increments the counter by n.
func (c *BasicCounter) Add(n int64) { c.val.Add(n) }

// Value returns the current value.
func (c *BasicCounter) Value() int64 { return c.val.Load() }

// BasicUpDownCounter is a concurrency-safe up/down counter.
type BasicUpDownCounter struct {
	val atomic.Int64
}

// Add adds n (positive or negative) to the current value.
func (u *BasicUpDownCounter) Add(n int64) { u.val.Add(n) }

// Value returns the current value.
func (u *BasicUpDownCounter) Value() int64 { return u.val.Load() }

// BasicHistogram is a concurrency-safe aggregator tracking count and sum.
// It maintains no buckets; it is a lightweight stand-in for a real exporter.
type BasicHistogram struct {
	mu    sync.Mutex
	count int64
	sum   float64
}

// Record adds a measurement.
func (h *BasicHistogram) Record(v float64) {
	h.mu.Lock()
	h.count++
	h.sum += v
	h.mu.Unlock()
}

// Value returns the number of measurements and their sum.
func (h *BasicHistogram) Value() (count int64, sum float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.count, h.sum
}
