package observability

import (
	"strconv"
	"sync"
	"time"
)

// Metrics keeps in-memory counters for the portal's HTTP surface: requests
// per route and status, failures per error code, and total latency per route.
type Metrics struct {
	mu        sync.Mutex
	requests  map[string]int64
	failures  map[string]int64
	latencyMS map[string]int64
}

// NewMetrics initializes the counter maps.
func NewMetrics() *Metrics {
	return &Metrics{
		requests:  make(map[string]int64),
		failures:  make(map[string]int64),
		latencyMS: make(map[string]int64),
	}
}

// RecordRequest counts a finished request and accumulates its latency.
func (m *Metrics) RecordRequest(path, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	route := routeKey(method, path)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests[route+" "+strconv.Itoa(status)]++
	m.latencyMS[route] += duration.Milliseconds()
}

// RecordError counts a request that ended in a domain error.
func (m *Metrics) RecordError(path, method, code string) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failures[routeKey(method, path)+" "+code]++
}

func routeKey(method, path string) string {
	return method + " " + path
}
