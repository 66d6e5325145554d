package metrics

import (
	"sync"
	"sync/atomic"
	"time"
)

// SearchMetrics tracks counters and latencies for the search pipeline.
// A nil *SearchMetrics is valid and records nothing.
type SearchMetrics struct {
	// Latency histograms (in milliseconds)
	FetchLatency       *Histogram
	AggregationLatency *Histogram
	PrintsLatency      *Histogram

	// Counters
	APIRequests     atomic.Uint64
	APIErrors       atomic.Uint64
	CacheHits       atomic.Uint64
	CacheMisses     atomic.Uint64
	Aggregations    atomic.Uint64
	StaleDiscarded  atomic.Uint64
	PrintsLookups   atomic.Uint64
	ValidationFails atomic.Uint64

	startTime time.Time
	mu        sync.RWMutex
}

// NewSearchMetrics creates a new metrics collector.
func NewSearchMetrics() *SearchMetrics {
	return &SearchMetrics{
		FetchLatency:       NewHistogram(10000),
		AggregationLatency: NewHistogram(1000),
		PrintsLatency:      NewHistogram(1000),
		startTime:          time.Now(),
	}
}

// RecordFetch records one remote page request and whether it failed.
func (m *SearchMetrics) RecordFetch(d time.Duration, err error) {
	if m == nil {
		return
	}
	m.APIRequests.Add(1)
	if err != nil {
		m.APIErrors.Add(1)
	}
	m.FetchLatency.Record(d)
}

// RecordCache records a cache lookup outcome.
func (m *SearchMetrics) RecordCache(hit bool) {
	if m == nil {
		return
	}
	if hit {
		m.CacheHits.Add(1)
		return
	}
	m.CacheMisses.Add(1)
}

// RecordAggregation records a completed aggregation run.
func (m *SearchMetrics) RecordAggregation(d time.Duration) {
	if m == nil {
		return
	}
	m.Aggregations.Add(1)
	m.AggregationLatency.Record(d)
}

// RecordPrintsLookup records a completed prints lookup.
func (m *SearchMetrics) RecordPrintsLookup(d time.Duration) {
	if m == nil {
		return
	}
	m.PrintsLookups.Add(1)
	m.PrintsLatency.Record(d)
}

// IncrementStaleDiscarded counts a superseded result that was dropped.
func (m *SearchMetrics) IncrementStaleDiscarded() {
	if m == nil {
		return
	}
	m.StaleDiscarded.Add(1)
}

// IncrementValidationFailures counts a request rejected before any network call.
func (m *SearchMetrics) IncrementValidationFailures() {
	if m == nil {
		return
	}
	m.ValidationFails.Add(1)
}

// Stats is a point-in-time copy of the metrics.
type Stats struct {
	FetchLatency       LatencyStats `json:"fetch_latency"`
	AggregationLatency LatencyStats `json:"aggregation_latency"`
	PrintsLatency      LatencyStats `json:"prints_latency"`

	APIRequests        uint64  `json:"api_requests"`
	APIErrors          uint64  `json:"api_errors"`
	CacheHits          uint64  `json:"cache_hits"`
	CacheMisses        uint64  `json:"cache_misses"`
	Aggregations       uint64  `json:"aggregations"`
	StaleDiscarded     uint64  `json:"stale_discarded"`
	PrintsLookups      uint64  `json:"prints_lookups"`
	ValidationFailures uint64  `json:"validation_failures"`
	CacheHitRate       float64 `json:"cache_hit_rate"`   // percentage
	APISuccessRate     float64 `json:"api_success_rate"` // percentage

	Uptime string `json:"uptime"`
}

// LatencyStats summarizes a histogram in milliseconds.
type LatencyStats struct {
	Mean  float64 `json:"mean"`
	P50   float64 `json:"p50"`
	P95   float64 `json:"p95"`
	P99   float64 `json:"p99"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
	Count int     `json:"count"`
}

// GetStats returns a snapshot of the current statistics.
func (m *SearchMetrics) GetStats() *Stats {
	if m == nil {
		return &Stats{}
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	apiRequests := m.APIRequests.Load()
	apiErrors := m.APIErrors.Load()
	cacheHits := m.CacheHits.Load()
	cacheMisses := m.CacheMisses.Load()

	cacheHitRate := 0.0
	if cacheHits+cacheMisses > 0 {
		cacheHitRate = (float64(cacheHits) / float64(cacheHits+cacheMisses)) * 100
	}

	apiSuccessRate := 0.0
	if apiRequests > 0 {
		apiSuccessRate = (float64(apiRequests-apiErrors) / float64(apiRequests)) * 100
	}

	return &Stats{
		FetchLatency:       m.FetchLatency.Stats(),
		AggregationLatency: m.AggregationLatency.Stats(),
		PrintsLatency:      m.PrintsLatency.Stats(),
		APIRequests:        apiRequests,
		APIErrors:          apiErrors,
		CacheHits:          cacheHits,
		CacheMisses:        cacheMisses,
		Aggregations:       m.Aggregations.Load(),
		StaleDiscarded:     m.StaleDiscarded.Load(),
		PrintsLookups:      m.PrintsLookups.Load(),
		ValidationFailures: m.ValidationFails.Load(),
		CacheHitRate:       cacheHitRate,
		APISuccessRate:     apiSuccessRate,
		Uptime:             time.Since(m.startTime).Round(time.Second).String(),
	}
}

// Reset clears all metrics.
func (m *SearchMetrics) Reset() {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	m.FetchLatency.Reset()
	m.AggregationLatency.Reset()
	m.PrintsLatency.Reset()

	m.APIRequests.Store(0)
	m.APIErrors.Store(0)
	m.CacheHits.Store(0)
	m.CacheMisses.Store(0)
	m.Aggregations.Store(0)
	m.StaleDiscarded.Store(0)
	m.PrintsLookups.Store(0)
	m.ValidationFails.Store(0)

	m.startTime = time.Now()
}
