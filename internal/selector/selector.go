// Package selector runs one end-to-end selection cycle: fetch candidates
// across all feeds, rank them, and walk the ranking until an article survives
// the duplicate pre-check and both judgment calls, or the candidates run out.
package selector

import (
	"context"
	"fmt"
	"sort"

	"rwanews/internal/logger"
	"rwanews/internal/metrics"
	"rwanews/internal/news"
	"rwanews/internal/rss"
	"rwanews/internal/tracker"
)

// State is the terminal state of one selection cycle.
type State int

const (
	StateExhausted State = iota
	StateAccepted
)

// Outcome is the tagged result of Run. Article is set only when State is
// StateAccepted, and its Content is left unextracted: the caller extracts for
// the accepted candidate only, never for rejected ones.
type Outcome struct {
	State    State
	Article  *news.Article
	Attempts int
}

// Fetcher produces normalized entries from all configured sources.
type Fetcher interface {
	FetchAll(ctx context.Context, sources []rss.Source) []rss.Entry
}

// Judge provides the two externally-delegated editorial calls.
type Judge interface {
	Similar(ctx context.Context, title string, history []tracker.Record) (bool, string)
	Relevant(ctx context.Context, title, content string) (int, string)
}

type Config struct {
	ScoreThreshold     float64 // candidates scoring at or below are discarded
	CandidateLimit     int     // ranked candidates considered per cycle
	RelevanceThreshold int     // minimum 0-10 judgment score to accept
}

// Selector orchestrates one bounded selection pass per Run invocation. It
// performs no cross-cycle retries; the external scheduler re-invokes it, and
// callers must never overlap two cycles.
type Selector struct {
	fetcher Fetcher
	store   tracker.Store
	judge   Judge
	sources []rss.Source
	cfg     Config
}

func New(fetcher Fetcher, store tracker.Store, judge Judge, sources []rss.Source, cfg Config) *Selector {
	if cfg.CandidateLimit <= 0 {
		cfg.CandidateLimit = 5
	}
	if cfg.RelevanceThreshold <= 0 {
		cfg.RelevanceThreshold = 5
	}
	return &Selector{fetcher: fetcher, store: store, judge: judge, sources: sources, cfg: cfg}
}

// Run executes one selection cycle. The only error it returns is a failed
// store write: losing a rejection or posting record risks re-surfacing the
// same article, so that is a hard stop.
func (s *Selector) Run(ctx context.Context) (Outcome, error) {
	candidates := s.rankCandidates(ctx)
	logger.Info("selection cycle starting", "candidates", len(candidates))

	for i, candidate := range candidates {
		attempt := i + 1

		// Cheap pre-check: a known fingerprint means this exact article
		// was already posted or rejected. No external calls for it.
		if s.store.IsDuplicate(candidate) {
			logger.Debug("skipping tracked candidate", "attempt", attempt, "title", candidate.Title)
			metrics.Global.IncrementDuplicatesSkipped()
			continue
		}

		similar, reason := s.judge.Similar(ctx, candidate.Title, s.store.Recent(15))
		if similar {
			logger.Info("candidate rejected as similar", "attempt", attempt, "title", candidate.Title, "reason", reason)
			metrics.Global.IncrementCandidatesRejected()
			if err := s.store.MarkRejected(candidate, reason); err != nil {
				return Outcome{}, fmt.Errorf("record similarity rejection: %w", err)
			}
			continue
		}

		score, reason := s.judge.Relevant(ctx, candidate.Title, candidate.FormatForJudgment())
		if score < s.cfg.RelevanceThreshold {
			logger.Info("candidate rejected as not relevant", "attempt", attempt, "title", candidate.Title, "score", score, "reason", reason)
			metrics.Global.IncrementCandidatesRejected()
			rejection := fmt.Sprintf("low relevance: %d/10 - %s", score, reason)
			if err := s.store.MarkRejected(candidate, rejection); err != nil {
				return Outcome{}, fmt.Errorf("record relevance rejection: %w", err)
			}
			continue
		}

		logger.Info("candidate accepted", "attempt", attempt, "title", candidate.Title, "relevance", score)
		if err := s.store.MarkPosted(candidate); err != nil {
			return Outcome{}, fmt.Errorf("record posted article: %w", err)
		}

		accepted := candidate
		return Outcome{State: StateAccepted, Article: &accepted, Attempts: attempt}, nil
	}

	logger.Warn("all candidates exhausted, no suitable article found", "attempts", len(candidates))
	return Outcome{State: StateExhausted, Attempts: len(candidates)}, nil
}

// rankCandidates fetches all sources, scores every entry, drops everything at
// or below the score threshold, and returns the top candidates ordered by
// (score desc, published desc).
func (s *Selector) rankCandidates(ctx context.Context) []news.Article {
	entries := s.fetcher.FetchAll(ctx, s.sources)

	var candidates []news.Article
	for _, entry := range entries {
		metrics.Global.IncrementEntriesProcessed()
		article := news.FromEntry(entry)
		if article.Score <= s.cfg.ScoreThreshold {
			continue
		}
		candidates = append(candidates, article)
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].Score != candidates[j].Score {
			return candidates[i].Score > candidates[j].Score
		}
		return candidates[i].Published.After(candidates[j].Published)
	})

	if len(candidates) > s.cfg.CandidateLimit {
		candidates = candidates[:s.cfg.CandidateLimit]
	}
	return candidates
}
