// Package testserver provides a configurable HTTP server for trying the tool.
package testserver

import (
	"fmt"
	"math/rand"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// maxBytesSize caps /bytes responses so a typo cannot allocate gigabytes.
const maxBytesSize = 64 * 1024 * 1024

// Server is a configurable HTTP test server.
type Server struct {
	mux *http.ServeMux
}

// NewServer creates a test server with all endpoints configured.
func NewServer() *Server {
	s := &Server{
		mux: http.NewServeMux(),
	}
	s.registerHandlers()
	return s
}

// Handler returns the http.Handler for the server.
func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) registerHandlers() {
	s.mux.HandleFunc("/health", s.handleHealth)
	s.mux.HandleFunc("/status/", s.handleStatus)
	s.mux.HandleFunc("/delay/", s.handleDelay)
	s.mux.HandleFunc("/bytes/", s.handleBytes)
	s.mux.HandleFunc("/json", s.handleJSON)
	s.mux.HandleFunc("/fail-rate", s.handleFailRate)
}

// handleHealth returns a simple health check response.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, `{"status":"ok"}`)
}

// handleStatus returns the specified HTTP status code.
// Example: GET /status/503 returns 503 Service Unavailable
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/status/")
	code, err := strconv.Atoi(path)
	if err != nil || code < 100 || code > 599 {
		http.Error(w, "invalid status code", http.StatusBadRequest)
		return
	}
	w.WriteHeader(code)
	fmt.Fprintf(w, "%d %s", code, http.StatusText(code))
}

// handleDelay waits for the specified duration before responding.
// Example: GET /delay/100 waits 100ms
func (s *Server) handleDelay(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/delay/")
	ms, err := strconv.Atoi(path)
	if err != nil || ms < 0 {
		http.Error(w, "invalid delay", http.StatusBadRequest)
		return
	}

	time.Sleep(time.Duration(ms) * time.Millisecond)
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, "delayed %dms", ms)
}

// handleBytes responds with a body of exactly n bytes.
// Example: GET /bytes/1024 returns a 1KiB body
func (s *Server) handleBytes(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/bytes/")
	n, err := strconv.Atoi(path)
	if err != nil || n < 0 || n > maxBytesSize {
		http.Error(w, "invalid size", http.StatusBadRequest)
		return
	}

	body := make([]byte, n)
	for i := range body {
		body[i] = 'x'
	}
	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Length", strconv.Itoa(n))
	w.WriteHeader(http.StatusOK)
	w.Write(body)
}

// handleJSON returns a small JSON document, useful for body checks.
func (s *Server) handleJSON(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, `{"status":"ok","items":[{"id":1},{"id":2}],"count":2}`)
}

// handleFailRate fails a percentage of requests with 500.
// Example: GET /fail-rate?rate=30 fails roughly 30% of calls
// A missing or invalid rate defaults to 0 (never fail).
func (s *Server) handleFailRate(w http.ResponseWriter, r *http.Request) {
	rateStr := r.URL.Query().Get("rate")
	failRate, err := strconv.Atoi(rateStr)
	if err != nil || failRate < 0 || failRate > 100 {
		failRate = 0
	}

	if rand.Intn(100) < failRate {
		w.WriteHeader(http.StatusInternalServerError)
		fmt.Fprint(w, "simulated failure")
		return
	}
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, "ok")
}
