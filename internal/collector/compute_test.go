package collector

import (
	"math"
	"testing"
	"time"

	"volley/internal/core"
)

func TestCompute_Empty(t *testing.T) {
	s := Compute(nil, time.Second)
	if s.TotalRequests != 0 {
		t.Errorf("expected 0 requests, got %d", s.TotalRequests)
	}
	if s.ErrorRate != 0 {
		t.Errorf("expected 0 error rate, got %f", s.ErrorRate)
	}
}

func TestCompute_Counters(t *testing.T) {
	outcomes := []core.Outcome{
		{Request: 1, Success: true, StatusCode: 200, Duration: 10 * time.Millisecond, Bytes: 100},
		{Request: 2, Success: true, StatusCode: 200, Duration: 20 * time.Millisecond, Bytes: 100},
		{Request: 3, Success: false, StatusCode: core.NoStatus, Duration: 30 * time.Millisecond, Bytes: 0},
		{Request: 4, Success: true, StatusCode: 503, Duration: 40 * time.Millisecond, Bytes: 50},
	}

	s := Compute(outcomes, 2*time.Second)

	if s.TotalRequests != 4 {
		t.Errorf("expected 4 requests, got %d", s.TotalRequests)
	}
	if s.Successes != 3 || s.Failures != 1 {
		t.Errorf("expected 3/1, got %d/%d", s.Successes, s.Failures)
	}
	if s.ErrorRate != 25.0 {
		t.Errorf("expected error rate 25%%, got %f", s.ErrorRate)
	}
	if s.TotalBytes != 250 {
		t.Errorf("expected 250 bytes, got %d", s.TotalBytes)
	}
	if s.StatusCodes[200] != 2 || s.StatusCodes[503] != 1 || s.StatusCodes[core.NoStatus] != 1 {
		t.Errorf("unexpected status code distribution: %v", s.StatusCodes)
	}
	if s.AvgLatencyMs != 25.0 {
		t.Errorf("expected avg 25ms, got %f", s.AvgLatencyMs)
	}
	if s.Latency.Min != 10*time.Millisecond || s.Latency.Max != 40*time.Millisecond {
		t.Errorf("unexpected min/max: %v/%v", s.Latency.Min, s.Latency.Max)
	}
}

func TestCompute_Throughput(t *testing.T) {
	outcomes := []core.Outcome{
		{Request: 1, Success: true, Bytes: 2 * bytesPerMB},
	}

	s := Compute(outcomes, 4*time.Second)

	if s.TotalMB != 2.0 {
		t.Errorf("expected 2 MB, got %f", s.TotalMB)
	}
	if s.ThroughputMBs != 0.5 {
		t.Errorf("expected 0.5 MB/s, got %f", s.ThroughputMBs)
	}
}

func TestCompute_ZeroElapsed(t *testing.T) {
	outcomes := []core.Outcome{{Request: 1, Success: true, Bytes: 100}}
	s := Compute(outcomes, 0)
	if s.ThroughputMBs != 0 || s.RequestsPerSec != 0 {
		t.Error("zero elapsed must not divide by zero")
	}
}

func TestCompute_Idempotent(t *testing.T) {
	outcomes := []core.Outcome{
		{Request: 1, Success: true, StatusCode: 200, Duration: 13 * time.Millisecond, Bytes: 123},
		{Request: 2, Success: false, StatusCode: core.NoStatus, Duration: 250 * time.Millisecond},
		{Request: 3, Success: true, StatusCode: 404, Duration: 7 * time.Millisecond, Bytes: 99},
	}
	elapsed := 1300 * time.Millisecond

	a := Compute(outcomes, elapsed)
	b := Compute(outcomes, elapsed)

	if a.ErrorRate != b.ErrorRate {
		t.Errorf("error rate not reproducible: %v vs %v", a.ErrorRate, b.ErrorRate)
	}
	if a.AvgLatencyMs != b.AvgLatencyMs {
		t.Errorf("avg latency not reproducible: %v vs %v", a.AvgLatencyMs, b.AvgLatencyMs)
	}
	if a.ThroughputMBs != b.ThroughputMBs {
		t.Errorf("throughput not reproducible: %v vs %v", a.ThroughputMBs, b.ThroughputMBs)
	}
	if a.Latency != b.Latency {
		t.Errorf("latency metrics not reproducible: %+v vs %+v", a.Latency, b.Latency)
	}
}

func TestCompute_Percentiles(t *testing.T) {
	outcomes := make([]core.Outcome, 100)
	for i := range outcomes {
		outcomes[i] = core.Outcome{
			Request:  i + 1,
			Success:  true,
			Duration: time.Duration(i+1) * time.Millisecond,
		}
	}

	s := Compute(outcomes, time.Second)

	// HDR histograms hold 3 significant figures, so allow 1% slack.
	checks := []struct {
		name string
		got  time.Duration
		want time.Duration
	}{
		{"p50", s.Latency.P50, 50 * time.Millisecond},
		{"p90", s.Latency.P90, 90 * time.Millisecond},
		{"p99", s.Latency.P99, 99 * time.Millisecond},
	}
	for _, c := range checks {
		diff := math.Abs(float64(c.got - c.want))
		if diff > float64(c.want)*0.02 {
			t.Errorf("%s = %v, want ~%v", c.name, c.got, c.want)
		}
	}
}

func TestCompute_ChecksAggregation(t *testing.T) {
	outcomes := []core.Outcome{
		{Request: 1, Success: true, Checks: []core.CheckResult{{Name: "status ok", Passed: true}}},
		{Request: 2, Success: true, Checks: []core.CheckResult{{Name: "status ok", Passed: false}}},
		{Request: 3, Success: true, Checks: []core.CheckResult{{Name: "status ok", Passed: true}}},
	}

	s := Compute(outcomes, time.Second)

	cs, ok := s.Checks["status ok"]
	if !ok {
		t.Fatal("expected check stats for 'status ok'")
	}
	if cs.Passed != 2 || cs.Failed != 1 {
		t.Errorf("expected 2 passed / 1 failed, got %d / %d", cs.Passed, cs.Failed)
	}
}

func TestCompute_TotalBytesMatchesOutcomeSum(t *testing.T) {
	outcomes := []core.Outcome{
		{Request: 1, Success: true, Bytes: 10},
		{Request: 2, Success: true, Bytes: 20},
		{Request: 3, Success: false, Bytes: 0},
	}

	var want int64
	for _, o := range outcomes {
		want += o.Bytes
	}

	if s := Compute(outcomes, time.Second); s.TotalBytes != want {
		t.Errorf("TotalBytes = %d, want %d", s.TotalBytes, want)
	}
}
