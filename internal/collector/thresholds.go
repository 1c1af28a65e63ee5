package collector

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Thresholds defines pass/fail criteria for a run.
type Thresholds struct {
	ErrorRate  string        `yaml:"error_rate"` // e.g. "1%"
	AvgLatency time.Duration `yaml:"avg_latency"`
	P95Latency time.Duration `yaml:"p95_latency"`
}

// ThresholdResult represents the outcome of a single threshold check.
type ThresholdResult struct {
	Name      string `json:"name"`
	Passed    bool   `json:"passed"`
	Threshold string `json:"threshold"`
	Actual    string `json:"actual"`
}

// ThresholdResults contains all threshold check results.
type ThresholdResults struct {
	Passed  bool              `json:"passed"`
	Results []ThresholdResult `json:"results"`
}

// Validate reports malformed threshold configuration. A typo in error_rate
// would otherwise silently disable the check.
func (t *Thresholds) Validate() error {
	if t == nil || t.ErrorRate == "" {
		return nil
	}
	if _, err := parsePercentage(t.ErrorRate); err != nil {
		return fmt.Errorf("error_rate: %w", err)
	}
	return nil
}

// Check evaluates all thresholds against a computed summary.
func (t *Thresholds) Check(s *Summary) *ThresholdResults {
	if t == nil {
		return &ThresholdResults{Passed: true}
	}

	results := &ThresholdResults{Passed: true}

	if t.ErrorRate != "" {
		if limit, err := parsePercentage(t.ErrorRate); err == nil {
			results.add(ThresholdResult{
				Name:      "error_rate",
				Passed:    s.ErrorRate < limit,
				Threshold: t.ErrorRate,
				Actual:    fmt.Sprintf("%.2f%%", s.ErrorRate),
			})
		}
	}

	durationChecks := []struct {
		name      string
		threshold time.Duration
		actual    time.Duration
	}{
		{"avg_latency", t.AvgLatency, s.Latency.Avg},
		{"p95_latency", t.P95Latency, s.Latency.P95},
	}
	for _, c := range durationChecks {
		if c.threshold == 0 {
			continue
		}
		results.add(ThresholdResult{
			Name:      c.name,
			Passed:    c.actual < c.threshold,
			Threshold: FormatDuration(c.threshold),
			Actual:    FormatDuration(c.actual),
		})
	}

	return results
}

func (r *ThresholdResults) add(result ThresholdResult) {
	if !result.Passed {
		r.Passed = false
	}
	r.Results = append(r.Results, result)
}

// Violations returns only the failed threshold results.
func (r *ThresholdResults) Violations() []ThresholdResult {
	violations := make([]ThresholdResult, 0)
	for _, result := range r.Results {
		if !result.Passed {
			violations = append(violations, result)
		}
	}
	return violations
}

func parsePercentage(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if !strings.HasSuffix(s, "%") {
		return 0, fmt.Errorf("invalid percentage format: %s", s)
	}
	return strconv.ParseFloat(strings.TrimSuffix(s, "%"), 64)
}

// FormatDuration formats a duration for display.
func FormatDuration(d time.Duration) string {
	if d < time.Millisecond {
		return fmt.Sprintf("%dµs", d.Microseconds())
	}
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	return d.Round(time.Second).String()
}
