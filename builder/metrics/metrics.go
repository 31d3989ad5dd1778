// Package metrics tracks counters and timing for one freeze run.
package metrics

import (
	"fmt"
	"time"
)

// FreezeMetrics collects what a freeze did. Counters are bumped from
// the coordinating goroutine only; workers report results back instead
// of writing here.
type FreezeMetrics struct {
	StartTime time.Time
	EndTime   time.Time

	PagesFrozen        int
	PostsRendered      int
	CacheHits          int
	CacheMisses        int
	DiagramsRendered   int
	FilesWritten       int
	FilesRemoved       int
	WarningsEmitted    int
	WarningsSuppressed int
}

// NewFreezeMetrics starts the clock.
func NewFreezeMetrics() *FreezeMetrics {
	return &FreezeMetrics{StartTime: time.Now()}
}

// RecordEnd stops the clock.
func (m *FreezeMetrics) RecordEnd() {
	m.EndTime = time.Now()
}

// TotalDuration returns elapsed time, live when the run is still going.
func (m *FreezeMetrics) TotalDuration() time.Duration {
	if m.EndTime.IsZero() {
		return time.Since(m.StartTime)
	}
	return m.EndTime.Sub(m.StartTime)
}

// CacheHitRate returns the page cache hit percentage.
func (m *FreezeMetrics) CacheHitRate() float64 {
	total := m.CacheHits + m.CacheMisses
	if total == 0 {
		return 0
	}
	return float64(m.CacheHits) / float64(total) * 100
}

// String renders the one-line freeze summary.
func (m *FreezeMetrics) String() string {
	s := fmt.Sprintf("❄️  Froze %d pages in %v (cache: %d/%d hits, %.0f%%)",
		m.PagesFrozen,
		m.TotalDuration().Round(time.Millisecond),
		m.CacheHits,
		m.CacheHits+m.CacheMisses,
		m.CacheHitRate(),
	)
	if m.FilesRemoved > 0 {
		s += fmt.Sprintf(", removed %d stale files", m.FilesRemoved)
	}
	if m.WarningsEmitted > 0 {
		s += fmt.Sprintf(", %d warnings", m.WarningsEmitted)
	}
	return s
}

// Print writes the summary to stdout.
func (m *FreezeMetrics) Print() {
	fmt.Println(m.String())
}
