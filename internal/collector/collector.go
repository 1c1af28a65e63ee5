// Package collector serializes outcome collection and computes summaries.
package collector

import (
	"sync"

	"volley/internal/core"
)

// Collector owns the shared run state: the outcome list and the counters
// that every concurrently-completing request mutates. All mutation happens
// on a single goroutine fed by a channel. Add blocks rather than drops when
// the channel is full; a lost outcome would break the run invariants.
type Collector struct {
	outcomes   []core.Outcome
	successes  int
	failures   int
	totalBytes int64

	ch   chan core.Outcome
	done chan struct{}
	mu   sync.Mutex
}

// New creates a Collector sized for the expected outcome count and starts
// its collection goroutine.
func New(expected int) *Collector {
	if expected < 1 {
		expected = 1
	}
	c := &Collector{
		outcomes: make([]core.Outcome, 0, expected),
		ch:       make(chan core.Outcome, expected),
		done:     make(chan struct{}),
	}
	go c.collect()
	return c
}

func (c *Collector) collect() {
	for o := range c.ch {
		c.mu.Lock()
		c.outcomes = append(c.outcomes, o)
		if o.Success {
			c.successes++
		} else {
			c.failures++
		}
		c.totalBytes += o.Bytes
		c.mu.Unlock()
	}
	close(c.done)
}

// Add hands one outcome to the collector. Safe for concurrent use.
func (c *Collector) Add(o core.Outcome) {
	c.ch <- o
}

// Close stops intake and waits until every buffered outcome is applied.
// Call exactly once, after all Adds have returned.
func (c *Collector) Close() {
	close(c.ch)
	<-c.done
}

// Snapshot is a cheap view of the run so far, used by the progress line.
type Snapshot struct {
	Completed  int
	Successes  int
	Failures   int
	TotalBytes int64
}

func (c *Collector) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Snapshot{
		Completed:  len(c.outcomes),
		Successes:  c.successes,
		Failures:   c.failures,
		TotalBytes: c.totalBytes,
	}
}

// Outcomes returns a copy of the collected outcomes in completion order.
func (c *Collector) Outcomes() []core.Outcome {
	c.mu.Lock()
	defer c.mu.Unlock()
	result := make([]core.Outcome, len(c.outcomes))
	copy(result, c.outcomes)
	return result
}
