package collector

import (
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"

	"volley/internal/core"
)

const bytesPerMB = 1024 * 1024

// Summary contains aggregate statistics computed from a run's outcomes.
type Summary struct {
	TotalRequests  int                    `json:"totalRequests"`
	Successes      int                    `json:"successes"`
	Failures       int                    `json:"failures"`
	ErrorRate      float64                `json:"errorRate"` // percent
	AvgLatencyMs   float64                `json:"avgLatencyMs"`
	Latency        LatencyMetrics         `json:"latency"`
	TotalBytes     int64                  `json:"totalBytes"`
	TotalMB        float64                `json:"totalMB"`
	ThroughputMBs  float64                `json:"throughputMBs"` // TotalMB over elapsed seconds
	RequestsPerSec float64                `json:"requestsPerSec"`
	Elapsed        time.Duration          `json:"-"`
	StatusCodes    map[int]int            `json:"statusCodes"`
	Checks         map[string]*CheckStats `json:"checks,omitempty"`
}

// LatencyMetrics contains latency statistics. Percentiles come from an HDR
// histogram with microsecond resolution; min/avg/max are exact.
type LatencyMetrics struct {
	Min time.Duration `json:"min"`
	Avg time.Duration `json:"avg"`
	Max time.Duration `json:"max"`
	P50 time.Duration `json:"p50"`
	P90 time.Duration `json:"p90"`
	P95 time.Duration `json:"p95"`
	P99 time.Duration `json:"p99"`
}

// CheckStats counts pass/fail per configured body check.
type CheckStats struct {
	Passed int `json:"passed"`
	Failed int `json:"failed"`
}

// Compute aggregates outcomes into a Summary. Pure function: computing it
// again over the same outcomes and elapsed time reproduces the same numbers.
func Compute(outcomes []core.Outcome, elapsed time.Duration) *Summary {
	s := &Summary{
		TotalRequests: len(outcomes),
		Elapsed:       elapsed,
		StatusCodes:   make(map[int]int),
	}
	if len(outcomes) == 0 {
		return s
	}

	// 1µs to 10min, 3 significant figures.
	hist := hdrhistogram.New(1, int64(10*time.Minute/time.Microsecond), 3)

	var sumLatency time.Duration
	var min, max time.Duration
	for i, o := range outcomes {
		if o.Success {
			s.Successes++
		} else {
			s.Failures++
		}
		s.TotalBytes += o.Bytes
		s.StatusCodes[o.StatusCode]++

		sumLatency += o.Duration
		if i == 0 || o.Duration < min {
			min = o.Duration
		}
		if o.Duration > max {
			max = o.Duration
		}

		us := o.Duration.Microseconds()
		if us < hist.LowestTrackableValue() {
			us = hist.LowestTrackableValue()
		}
		if us > hist.HighestTrackableValue() {
			us = hist.HighestTrackableValue()
		}
		_ = hist.RecordValue(us)

		for _, cr := range o.Checks {
			if s.Checks == nil {
				s.Checks = make(map[string]*CheckStats)
			}
			cs, ok := s.Checks[cr.Name]
			if !ok {
				cs = &CheckStats{}
				s.Checks[cr.Name] = cs
			}
			if cr.Passed {
				cs.Passed++
			} else {
				cs.Failed++
			}
		}
	}

	n := len(outcomes)
	s.ErrorRate = float64(s.Failures) / float64(n) * 100
	s.AvgLatencyMs = float64(sumLatency) / float64(n) / float64(time.Millisecond)
	s.TotalMB = float64(s.TotalBytes) / bytesPerMB

	s.Latency = LatencyMetrics{
		Min: min,
		Avg: sumLatency / time.Duration(n),
		Max: max,
		P50: time.Duration(hist.ValueAtQuantile(50)) * time.Microsecond,
		P90: time.Duration(hist.ValueAtQuantile(90)) * time.Microsecond,
		P95: time.Duration(hist.ValueAtQuantile(95)) * time.Microsecond,
		P99: time.Duration(hist.ValueAtQuantile(99)) * time.Microsecond,
	}

	if elapsed > 0 {
		s.ThroughputMBs = s.TotalMB / elapsed.Seconds()
		s.RequestsPerSec = float64(n) / elapsed.Seconds()
	}

	return s
}
