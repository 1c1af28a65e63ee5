// Package core defines the shared types of a load test run.
package core

import (
	"strconv"
	"time"
)

// NoStatus is the status code recorded when a request failed before any
// response arrived (timeout, connection refused, DNS failure).
const NoStatus = 0

// Outcome is the immutable record of one completed HTTP call.
//
// Success tracks transport-level completion: it is true whenever a response
// was received, even an error status like 500. Callers that want an
// application-level notion of success should look at StatusCode and Checks.
type Outcome struct {
	Request    int           `json:"request"` // 1-based submission order, never reused
	Start      time.Time     `json:"start"`
	Duration   time.Duration `json:"duration"`
	StatusCode int           `json:"statusCode"` // NoStatus when no response was received
	Success    bool          `json:"success"`
	Bytes      int64         `json:"bytes"` // estimated response body size
	Error      string        `json:"error,omitempty"`
	Checks     []CheckResult `json:"checks,omitempty"`
}

// StatusText renders the status code for reports.
func (o Outcome) StatusText() string {
	if o.StatusCode == NoStatus {
		return "no status"
	}
	return strconv.Itoa(o.StatusCode)
}

// CheckResult records one body check evaluated against a response.
type CheckResult struct {
	Name   string `json:"name"`
	Passed bool   `json:"passed"`
}

// RunResult is the assembled outcome of a complete run.
//
// After a completed run: Successes+Failures == len(Outcomes) == TotalRequests,
// and TotalBytes is the sum of Outcome.Bytes.
type RunResult struct {
	ID            string        `json:"id"`
	URL           string        `json:"url"`
	TotalRequests int           `json:"totalRequests"`
	WindowSeconds float64       `json:"windowSeconds"`
	Successes     int           `json:"successes"`
	Failures      int           `json:"failures"`
	Outcomes      []Outcome     `json:"outcomes"` // completion order, not request order
	TotalBytes    int64         `json:"totalBytes"`
	FirstStart    time.Time     `json:"firstStart"` // start of request #1
	LastStart     time.Time     `json:"lastStart"`  // start of request #TotalRequests
	Elapsed       time.Duration `json:"elapsed"`    // first submission to last completion
}
