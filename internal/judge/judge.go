// Package judge delegates the two editorial calls the pipeline cannot make
// itself (is this story a rerun of recent history, and is it worth covering)
// to a text-generation collaborator. The collaborator is treated
// as unreliable: any failure resolves to a permissive default so an outage
// degrades to best-effort publishing rather than a stalled pipeline.
package judge

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"rwanews/internal/logger"
	"rwanews/internal/metrics"
	"rwanews/internal/tracker"
)

const (
	// historyLimit is how many recent titles the similarity prompt sees.
	historyLimit = 15

	similarityRole = "You compare news headlines and decide whether they cover the same story. Answer only in the requested format."
	relevanceRole  = "You evaluate news articles against editorial criteria. Answer only in the requested format."

	defaultRelevanceScore  = 6
	fallbackRelevanceScore = 5
)

// Generator is the text-generation collaborator contract.
type Generator interface {
	Generate(ctx context.Context, prompt, role string) (string, error)
}

// Budget limits how many collaborator calls may be made; over budget the
// permissive defaults apply without a network call.
type Budget interface {
	Allow() bool
}

type unlimited struct{}

func (unlimited) Allow() bool { return true }

type Judge struct {
	gen       Generator
	budget    Budget
	checklist string
}

// New builds a Judge. checklist is the evaluation-prompt text; empty means
// every article is approved with the default score. budget may be nil.
func New(gen Generator, checklist string, budget Budget) *Judge {
	if budget == nil {
		budget = unlimited{}
	}
	return &Judge{gen: gen, budget: budget, checklist: checklist}
}

var (
	scoreRe  = regexp.MustCompile(`SCORE:\s*(\d+)`)
	reasonRe = regexp.MustCompile(`REASON:\s*(.+)`)
)

// Similar asks the collaborator whether title covers the same story as any of
// the recent non-duplicate records. An empty history short-circuits to unique
// without a call; so do budget exhaustion and collaborator failure.
func (j *Judge) Similar(ctx context.Context, title string, history []tracker.Record) (bool, string) {
	recentTitles := make([]string, 0, historyLimit)
	for _, rec := range history {
		if len(recentTitles) >= historyLimit {
			break
		}
		if rec.Title == "" || rec.IsDuplicate {
			continue
		}
		posted := rec.PostedAt
		if len(posted) > 10 {
			posted = posted[:10]
		}
		recentTitles = append(recentTitles, fmt.Sprintf("%q (posted: %s)", rec.Title, posted))
	}

	if len(recentTitles) == 0 {
		return false, "no recent articles to compare against"
	}

	if !j.budget.Allow() {
		return false, "similarity check skipped: request budget exhausted"
	}

	prompt := fmt.Sprintf(`Analyze if this news article is essentially the SAME STORY as any recent articles:

NEW ARTICLE: %q

RECENT UNIQUE ARTICLES:
%s

Return "SIMILAR: [reason]" if the new article covers essentially the same event/story as any recent article (same companies, same announcement, same development).
Return "UNIQUE: [reason]" if it's genuinely different news, even if related to similar topics.

Consider: Different sources reporting the same announcement = SIMILAR. Related but different developments = UNIQUE.`,
		title, strings.Join(recentTitles, "\n"))

	metrics.Global.IncrementSimilarityChecks()
	response, err := j.gen.Generate(ctx, prompt, similarityRole)
	if err != nil {
		logger.Warn("similarity check degraded, treating article as unique", "error", err)
		return false, fmt.Sprintf("similarity check unavailable: %v", err)
	}

	return parseSimilarity(response)
}

func parseSimilarity(response string) (bool, string) {
	upper := strings.ToUpper(response)
	_, reason, hasReason := strings.Cut(response, ":")
	reason = strings.TrimSpace(reason)

	if strings.Contains(upper, "SIMILAR:") {
		if !hasReason || reason == "" {
			reason = "collaborator detected similarity"
		}
		return true, reason
	}

	if !strings.Contains(upper, "UNIQUE:") || reason == "" {
		reason = "article appears unique"
	}
	return false, reason
}

// Relevant evaluates title and content against the configured checklist and
// returns a 0-10 score with a reason. A missing checklist, exhausted budget,
// or collaborator failure all approve by default.
func (j *Judge) Relevant(ctx context.Context, title, content string) (int, string) {
	if j.checklist == "" {
		return 7, "checklist unavailable - using default approval"
	}

	if !j.budget.Allow() {
		return defaultRelevanceScore, "relevance check skipped: request budget exhausted"
	}

	if content == "" {
		content = "No content available"
	}
	if len(content) > 1000 {
		content = content[:1000]
	}

	prompt := fmt.Sprintf(`Using this relevance checklist, evaluate this news article:

EVALUATION CRITERIA: %s

ARTICLE TITLE: %s
ARTICLE CONTENT: %s

SCORING: 0=not relevant, 1-4=low relevance, 5-7=medium relevance, 8-10=high relevance

Respond with: SCORE: [0-10] | REASON: [brief explanation]`,
		j.checklist, title, content)

	metrics.Global.IncrementRelevanceChecks()
	response, err := j.gen.Generate(ctx, prompt, relevanceRole)
	if err != nil || strings.TrimSpace(response) == "" {
		logger.Warn("relevance check degraded, approving by default", "error", err)
		return defaultRelevanceScore, "AI evaluation unavailable - approved by default"
	}

	return parseRelevance(response)
}

func parseRelevance(response string) (int, string) {
	score := fallbackRelevanceScore
	if m := scoreRe.FindStringSubmatch(response); m != nil {
		if parsed, err := strconv.Atoi(m[1]); err == nil {
			score = parsed
		}
	}

	reason := "AI evaluation completed"
	if m := reasonRe.FindStringSubmatch(response); m != nil {
		reason = strings.TrimSpace(m[1])
	}

	return score, reason
}
