// Package engine drives a fixed number of GET requests through the rate
// limiter and assembles the run result.
package engine

import (
	"context"
	"errors"
	"fmt"
	"math"
	"regexp"
	"sync"

	"github.com/google/uuid"

	"volley/internal/check"
	"volley/internal/collector"
	"volley/internal/core"
	"volley/internal/httpclient"
	"volley/internal/ratelimit"
)

// ConfigError reports invalid run parameters, detected before any request
// is issued.
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

var urlPattern = regexp.MustCompile(`^https?://.+`)

// Options configures an Engine.
type Options struct {
	Client httpclient.Client // nil means a default client with DefaultTimeout
	Checks []check.Check
	Clock  core.Clock // nil means the real clock
}

// Engine runs load against a single URL. Safe for one run at a time.
type Engine struct {
	client httpclient.Client
	checks []check.Check
	clock  core.Clock

	mu   sync.Mutex
	coll *collector.Collector
}

func New(opts Options) *Engine {
	client := opts.Client
	if client == nil {
		client = httpclient.New(httpclient.DefaultTimeout, nil)
	}
	clock := opts.Clock
	if clock == nil {
		clock = core.RealClock{}
	}
	return &Engine{
		client: client,
		checks: opts.Checks,
		clock:  clock,
	}
}

// RatePerSecond computes the admission rate that spreads totalRequests
// across windowSeconds: ceil(totalRequests / windowSeconds).
func RatePerSecond(totalRequests int, windowSeconds float64) int {
	return int(math.Ceil(float64(totalRequests) / windowSeconds))
}

// Run drives exactly totalRequests GETs against url at a rate spreading them
// across windowSeconds. The window is a target, not a deadline: slow
// responses stretch the run past it. Failed requests are recorded, never
// retried, and never abort siblings. Returns a ConfigError before issuing
// any request when the parameters are invalid.
func (e *Engine) Run(ctx context.Context, url string, totalRequests int, windowSeconds float64) (*core.RunResult, error) {
	if totalRequests <= 0 {
		return nil, &ConfigError{
			Field:   "requests",
			Message: fmt.Sprintf("must be positive, got %d", totalRequests),
		}
	}
	if windowSeconds <= 0 || math.IsInf(windowSeconds, 0) || math.IsNaN(windowSeconds) {
		return nil, &ConfigError{
			Field:   "window",
			Message: fmt.Sprintf("must be a positive finite number of seconds, got %v", windowSeconds),
		}
	}
	if !urlPattern.MatchString(url) {
		return nil, &ConfigError{
			Field:   "url",
			Message: fmt.Sprintf("must start with http:// or https://, got %q", url),
		}
	}

	limiter, err := ratelimit.New(RatePerSecond(totalRequests, windowSeconds))
	if err != nil {
		return nil, &ConfigError{Field: "rate", Message: err.Error()}
	}

	coll := collector.New(totalRequests)
	e.mu.Lock()
	e.coll = coll
	e.mu.Unlock()

	start := e.clock.Now()
	tickets := make([]*ratelimit.Ticket, 0, totalRequests)
	for i := 0; i < totalRequests; i++ {
		number := i + 1
		ticket, err := limiter.Submit(ctx, func(ctx context.Context) {
			coll.Add(e.execute(ctx, url, number))
		})
		if err != nil {
			// Context cancelled while waiting for admission. Record the
			// remaining requests as failed so the run invariants still hold.
			for n := number; n <= totalRequests; n++ {
				coll.Add(core.Outcome{
					Request:    n,
					Start:      e.clock.Now(),
					StatusCode: core.NoStatus,
					Error:      err.Error(),
				})
			}
			break
		}
		tickets = append(tickets, ticket)
	}

	for _, t := range tickets {
		<-t.Done()
	}
	coll.Close()

	outcomes := coll.Outcomes()
	snap := coll.Snapshot()

	result := &core.RunResult{
		ID:            uuid.NewString(),
		URL:           url,
		TotalRequests: totalRequests,
		WindowSeconds: windowSeconds,
		Successes:     snap.Successes,
		Failures:      snap.Failures,
		Outcomes:      outcomes,
		TotalBytes:    snap.TotalBytes,
		Elapsed:       e.clock.Since(start),
	}
	for _, o := range outcomes {
		if o.Request == 1 {
			result.FirstStart = o.Start
		}
		if o.Request == totalRequests {
			result.LastStart = o.Start
		}
	}
	return result, nil
}

// execute performs one request and converts it into an Outcome. A panicking
// client is recovered into a failed outcome so it cannot abort siblings.
func (e *Engine) execute(ctx context.Context, url string, number int) (out core.Outcome) {
	start := e.clock.Now()
	out = core.Outcome{Request: number, Start: start, StatusCode: core.NoStatus}
	defer func() {
		if r := recover(); r != nil {
			out.Duration = e.clock.Since(start)
			out.Success = false
			out.Error = fmt.Sprintf("panic: %v", r)
		}
	}()

	resp, err := e.client.Get(ctx, url)
	out.Duration = e.clock.Since(start)

	if err != nil {
		out.Error = err.Error()
		var terr *httpclient.TransportError
		if errors.As(err, &terr) && terr.Response != nil {
			out.StatusCode = terr.Response.StatusCode
			out.Bytes = httpclient.ResponseSize(terr.Response)
		}
		return out
	}

	out.Success = true
	out.StatusCode = resp.StatusCode
	out.Bytes = httpclient.ResponseSize(resp)
	out.Checks = check.Evaluate(resp.Body, e.checks)
	return out
}

// Snapshot reports live progress of the run in flight.
func (e *Engine) Snapshot() collector.Snapshot {
	e.mu.Lock()
	coll := e.coll
	e.mu.Unlock()
	if coll == nil {
		return collector.Snapshot{}
	}
	return coll.Snapshot()
}
