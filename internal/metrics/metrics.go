package metrics

import (
	"sync"
	"time"
)

type Metrics struct {
	mu sync.RWMutex

	// Counters
	FeedsFetched       int64
	FeedsFailed        int64
	EntriesProcessed   int64
	DuplicatesSkipped  int64
	SimilarityChecks   int64
	RelevanceChecks    int64
	CandidatesRejected int64
	ArticlesPosted     int64

	// Timings
	LastCycleTime    time.Duration
	TotalCycleTime   time.Duration
	AverageCycleTime time.Duration
	CycleCount       int64

	// Status
	LastRunTime   time.Time
	LastErrorTime time.Time
	LastError     string
	IsHealthy     bool
}

var Global = &Metrics{IsHealthy: true}

func (m *Metrics) IncrementFeedsFetched() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.FeedsFetched++
}

func (m *Metrics) IncrementFeedsFailed() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.FeedsFailed++
}

func (m *Metrics) IncrementEntriesProcessed() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.EntriesProcessed++
}

func (m *Metrics) IncrementDuplicatesSkipped() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.DuplicatesSkipped++
}

func (m *Metrics) IncrementSimilarityChecks() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SimilarityChecks++
}

func (m *Metrics) IncrementRelevanceChecks() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RelevanceChecks++
}

func (m *Metrics) IncrementCandidatesRejected() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CandidatesRejected++
}

func (m *Metrics) IncrementArticlesPosted() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ArticlesPosted++
}

func (m *Metrics) RecordCycleTime(duration time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.LastCycleTime = duration
	m.TotalCycleTime += duration
	m.CycleCount++

	if m.CycleCount > 0 {
		m.AverageCycleTime = m.TotalCycleTime / time.Duration(m.CycleCount)
	}
}

func (m *Metrics) SetLastRun() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LastRunTime = time.Now()
	m.IsHealthy = true
}

func (m *Metrics) SetError(err string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LastError = err
	m.LastErrorTime = time.Now()
	m.IsHealthy = false
}

func (m *Metrics) GetStats() map[string]interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return map[string]interface{}{
		"feeds_fetched":         m.FeedsFetched,
		"feeds_failed":          m.FeedsFailed,
		"entries_processed":     m.EntriesProcessed,
		"duplicates_skipped":    m.DuplicatesSkipped,
		"similarity_checks":     m.SimilarityChecks,
		"relevance_checks":      m.RelevanceChecks,
		"candidates_rejected":   m.CandidatesRejected,
		"articles_posted":       m.ArticlesPosted,
		"last_cycle_time_ms":    m.LastCycleTime.Milliseconds(),
		"average_cycle_time_ms": m.AverageCycleTime.Milliseconds(),
		"last_run_time":         m.LastRunTime.Format(time.RFC3339),
		"last_error_time":       m.LastErrorTime.Format(time.RFC3339),
		"last_error":            m.LastError,
		"is_healthy":            m.IsHealthy,
	}
}
