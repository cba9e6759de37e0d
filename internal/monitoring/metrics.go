package monitoring

import (
	"sync"
	"sync/atomic"
	"time"
)

// Metrics holds the counters bumped along the counting pipeline
type Metrics struct {
	BytesRead       atomic.Uint64
	ChunksDelivered atomic.Uint64
	MatchesFound    atomic.Uint64
	FilesProcessed  atomic.Uint64
	InputErrors     atomic.Uint64

	ScanDuration *DurationHistogram
}

// DurationHistogram tracks duration distributions
type DurationHistogram struct {
	mu      sync.RWMutex
	buckets map[string]uint64
	sum     time.Duration
	count   uint64
}

// NewMetrics creates a new Metrics instance
func NewMetrics() *Metrics {
	return &Metrics{
		ScanDuration: NewDurationHistogram(),
	}
}

// NewDurationHistogram creates a new duration histogram
func NewDurationHistogram() *DurationHistogram {
	return &DurationHistogram{
		buckets: make(map[string]uint64),
	}
}

// Observe records a duration observation
func (h *DurationHistogram) Observe(d time.Duration) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.sum += d
	h.count++
	h.buckets[h.getBucket(d)]++
}

// getBucket returns the bucket name for a duration
func (h *DurationHistogram) getBucket(d time.Duration) string {
	switch {
	case d < 10*time.Millisecond:
		return "0-10ms"
	case d < 100*time.Millisecond:
		return "10-100ms"
	case d < time.Second:
		return "100ms-1s"
	case d < 10*time.Second:
		return "1-10s"
	case d < time.Minute:
		return "10-60s"
	default:
		return "1m+"
	}
}

// Average returns the average duration
func (h *DurationHistogram) Average() time.Duration {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if h.count == 0 {
		return 0
	}
	return h.sum / time.Duration(h.count)
}

// Snapshot returns a copy of the histogram buckets
func (h *DurationHistogram) Snapshot() map[string]uint64 {
	h.mu.RLock()
	defer h.mu.RUnlock()

	snapshot := make(map[string]uint64, len(h.buckets))
	for k, v := range h.buckets {
		snapshot[k] = v
	}
	return snapshot
}

// RecordSource tracks the completion of one input source
func (m *Metrics) RecordSource(matches, bytes uint64, duration time.Duration) {
	m.FilesProcessed.Add(1)
	m.MatchesFound.Add(matches)
	m.BytesRead.Add(bytes)
	m.ScanDuration.Observe(duration)
}

// RecordChunk tracks one delivered chunk
func (m *Metrics) RecordChunk(size int) {
	m.ChunksDelivered.Add(1)
}

// RecordInputError tracks a failed input
func (m *Metrics) RecordInputError() {
	m.InputErrors.Add(1)
}

// Summary returns the counters as loggable fields
func (m *Metrics) Summary() map[string]interface{} {
	return map[string]interface{}{
		"bytes_read":       m.BytesRead.Load(),
		"chunks_delivered": m.ChunksDelivered.Load(),
		"matches_found":    m.MatchesFound.Load(),
		"files_processed":  m.FilesProcessed.Load(),
		"input_errors":     m.InputErrors.Load(),
		"avg_scan_time":    m.ScanDuration.Average().String(),
	}
}

// Global metrics instance
var globalMetrics = NewMetrics()

// GetMetrics returns the global metrics instance
func GetMetrics() *Metrics {
	return globalMetrics
}
