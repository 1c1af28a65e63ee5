package collector

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/fatih/color"

	"volley/internal/core"
)

const timestampLayout = "2006-01-02 15:04:05"

var (
	green = color.New(color.FgGreen).SprintFunc()
	red   = color.New(color.FgRed).SprintFunc()
)

// FormatText writes the run report in human-readable form.
func FormatText(w io.Writer, run *core.RunResult, s *Summary, thresholds *ThresholdResults) {
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Volley - Load Test Results")
	fmt.Fprintln(w, "==========================")
	fmt.Fprintln(w, "")
	fmt.Fprintf(w, "Run ID:          %s\n", run.ID)
	fmt.Fprintf(w, "URL:             %s\n", run.URL)
	fmt.Fprintf(w, "Total Requests:  %d\n", run.TotalRequests)
	fmt.Fprintf(w, "Time Window:     %gs\n", run.WindowSeconds)
	fmt.Fprintf(w, "First Start:     %s\n", run.FirstStart.Format(timestampLayout))
	fmt.Fprintf(w, "Last Start:      %s\n", run.LastStart.Format(timestampLayout))
	fmt.Fprintf(w, "Elapsed:         %v\n", run.Elapsed.Round(time.Millisecond))
	fmt.Fprintln(w, "")

	failed := fmt.Sprintf("%d", s.Failures)
	if s.Failures > 0 {
		failed = red(failed)
	}
	fmt.Fprintf(w, "Successful:      %s\n", green(fmt.Sprintf("%d", s.Successes)))
	fmt.Fprintf(w, "Failed:          %s\n", failed)
	fmt.Fprintf(w, "Error Rate:      %.2f%%\n", s.ErrorRate)
	fmt.Fprintf(w, "Avg Response:    %.2f ms\n", s.AvgLatencyMs)
	fmt.Fprintf(w, "Total Bytes:     %d (%.2f MB)\n", s.TotalBytes, s.TotalMB)
	fmt.Fprintf(w, "Throughput:      %.2f MB/s\n", s.ThroughputMBs)
	fmt.Fprintf(w, "Requests/sec:    %.1f\n", s.RequestsPerSec)
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Response Times:")
	fmt.Fprintf(w, "  Min:    %s\n", FormatDuration(s.Latency.Min))
	fmt.Fprintf(w, "  Avg:    %s\n", FormatDuration(s.Latency.Avg))
	fmt.Fprintf(w, "  P50:    %s\n", FormatDuration(s.Latency.P50))
	fmt.Fprintf(w, "  P90:    %s\n", FormatDuration(s.Latency.P90))
	fmt.Fprintf(w, "  P95:    %s\n", FormatDuration(s.Latency.P95))
	fmt.Fprintf(w, "  P99:    %s\n", FormatDuration(s.Latency.P99))
	fmt.Fprintf(w, "  Max:    %s\n", FormatDuration(s.Latency.Max))

	if len(s.StatusCodes) > 0 {
		fmt.Fprintln(w, "")
		fmt.Fprintln(w, "Status Codes:")
		codes := make([]int, 0, len(s.StatusCodes))
		for code := range s.StatusCodes {
			codes = append(codes, code)
		}
		sort.Ints(codes)
		for _, code := range codes {
			label := fmt.Sprintf("%d", code)
			if code == core.NoStatus {
				label = "no status"
			}
			fmt.Fprintf(w, "  %-10s %d\n", label, s.StatusCodes[code])
		}
	}

	if len(s.Checks) > 0 {
		fmt.Fprintln(w, "")
		fmt.Fprintln(w, "Checks:")
		names := make([]string, 0, len(s.Checks))
		for name := range s.Checks {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			cs := s.Checks[name]
			symbol := green("✓")
			if cs.Failed > 0 {
				symbol = red("✗")
			}
			fmt.Fprintf(w, "  %s %-20s %d passed, %d failed\n", symbol, name, cs.Passed, cs.Failed)
		}
	}

	if thresholds != nil && len(thresholds.Results) > 0 {
		fmt.Fprintln(w, "")
		fmt.Fprintln(w, "Thresholds:")
		for _, result := range thresholds.Results {
			symbol := green("✓")
			if !result.Passed {
				symbol = red("✗")
			}
			fmt.Fprintf(w, "  %s %s < %s (actual: %s)\n",
				symbol, result.Name, result.Threshold, result.Actual)
		}
	}
}

// FormatJSON writes the run report in JSON format.
func FormatJSON(w io.Writer, run *core.RunResult, s *Summary, thresholds *ThresholdResults) {
	output := struct {
		ID            string            `json:"id"`
		URL           string            `json:"url"`
		TotalRequests int               `json:"totalRequests"`
		WindowSeconds float64           `json:"windowSeconds"`
		FirstStart    string            `json:"firstStart"`
		LastStart     string            `json:"lastStart"`
		Elapsed       string            `json:"elapsed"`
		Summary       *Summary          `json:"summary"`
		Thresholds    *ThresholdResults `json:"thresholds,omitempty"`
	}{
		ID:            run.ID,
		URL:           run.URL,
		TotalRequests: run.TotalRequests,
		WindowSeconds: run.WindowSeconds,
		FirstStart:    run.FirstStart.Format(timestampLayout),
		LastStart:     run.LastStart.Format(timestampLayout),
		Elapsed:       run.Elapsed.Round(time.Millisecond).String(),
		Summary:       s,
		Thresholds:    thresholds,
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	_ = encoder.Encode(output) // stdout errors are unrecoverable
}
