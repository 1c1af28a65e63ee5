package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"volley/internal/collector"
	"volley/internal/config"
	"volley/internal/engine"
	"volley/internal/httpclient"
	"volley/internal/progress"
)

const (
	ExitSuccess         = 0
	ExitThresholdFailed = 1
	ExitError           = 2
)

func main() {
	url := flag.String("url", "", "target URL (http:// or https://)")
	requests := flag.Int("requests", 0, "total number of requests to issue")
	window := flag.Float64("window", 0, "time window in seconds to spread the requests across")
	timeout := flag.Duration("timeout", 0, "per-request timeout (default 10s)")
	configPath := flag.String("config", "", "path to YAML scenario file")
	output := flag.String("output", "text", "output format: text, json")
	quiet := flag.Bool("quiet", false, "suppress progress output during the run")
	verbose := flag.Bool("verbose", false, "enable debug output (request/response logging)")
	flag.Parse()

	if *output != "text" && *output != "json" {
		fmt.Fprintf(os.Stderr, "error: --output must be 'text' or 'json', got %q\n", *output)
		os.Exit(ExitError)
	}

	scenario := &config.Scenario{}
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(ExitError)
		}
		scenario = loaded
	}

	// CLI flags override scenario file values.
	if *url != "" {
		scenario.URL = *url
	}
	if *requests > 0 {
		scenario.Requests = *requests
	}
	if *window > 0 {
		scenario.Window = *window
	}
	if *timeout > 0 {
		scenario.Timeout = *timeout
	}

	// With no URL from flags or file, fall back to interactive prompts.
	if scenario.URL == "" {
		if err := promptScenario(os.Stdin, os.Stderr, scenario); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(ExitError)
		}
	}

	var debugLogger *httpclient.DebugLogger
	if *verbose {
		debugLogger = httpclient.NewDebugLogger(os.Stderr)
	}

	eng := engine.New(engine.Options{
		Client: httpclient.New(scenario.Timeout, debugLogger),
		Checks: scenario.Checks,
	})

	prog := progress.New(eng, scenario.Requests, *quiet)
	prog.Printf("Volley starting: %d requests over %gs against %s (rate %d/s)",
		scenario.Requests, scenario.Window, scenario.URL,
		ratePreview(scenario.Requests, scenario.Window))
	prog.Start()

	result, err := eng.Run(context.Background(), scenario.URL, scenario.Requests, scenario.Window)
	prog.Stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(ExitError)
	}

	summary := collector.Compute(result.Outcomes, result.Elapsed)

	var thresholdResults *collector.ThresholdResults
	if scenario.Thresholds != nil {
		thresholdResults = scenario.Thresholds.Check(summary)
	}

	if *output == "json" {
		collector.FormatJSON(os.Stdout, result, summary, thresholdResults)
	} else {
		collector.FormatText(os.Stdout, result, summary, thresholdResults)
	}

	if thresholdResults != nil && !thresholdResults.Passed {
		if *output == "text" {
			fmt.Fprintln(os.Stderr, "\nThreshold check failed!")
		}
		os.Exit(ExitThresholdFailed)
	}

	os.Exit(ExitSuccess)
}

func ratePreview(requests int, window float64) int {
	if requests <= 0 || window <= 0 {
		return 0
	}
	return engine.RatePerSecond(requests, window)
}

// promptScenario collects url, request count, and window interactively.
// The engine re-validates everything, so parsing here only needs to produce
// well-typed values.
func promptScenario(in io.Reader, out io.Writer, s *config.Scenario) error {
	reader := bufio.NewReader(in)

	fmt.Fprint(out, "Target URL: ")
	line, err := reader.ReadString('\n')
	if err != nil {
		return fmt.Errorf("reading url: %w", err)
	}
	s.URL = strings.TrimSpace(line)

	fmt.Fprint(out, "Total requests: ")
	line, err = reader.ReadString('\n')
	if err != nil {
		return fmt.Errorf("reading request count: %w", err)
	}
	s.Requests, err = strconv.Atoi(strings.TrimSpace(line))
	if err != nil {
		return fmt.Errorf("request count must be an integer: %w", err)
	}

	fmt.Fprint(out, "Time window (seconds): ")
	line, err = reader.ReadString('\n')
	if err != nil {
		return fmt.Errorf("reading time window: %w", err)
	}
	s.Window, err = strconv.ParseFloat(strings.TrimSpace(line), 64)
	if err != nil {
		return fmt.Errorf("time window must be a number: %w", err)
	}

	return nil
}
