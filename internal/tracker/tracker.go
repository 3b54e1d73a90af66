package tracker

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"sort"
	"time"

	"rwanews/internal/news"
)

const (
	// RetentionDays is how long a record survives before the next load
	// purges it.
	RetentionDays = 7

	// malformedPurgeThreshold caps unbounded growth from records whose
	// timestamp cannot be parsed: they are only purged once the store
	// exceeds this many records.
	malformedPurgeThreshold = 1000
)

// Record is one tracked article. Timestamps are RFC3339 strings so that a
// malformed value survives round-trips and can be purged by the cap rule
// instead of failing the load. Immutable once written, except for expiry.
type Record struct {
	Title       string `json:"title"`
	Source      string `json:"source"`
	Category    string `json:"category"`
	PostedAt    string `json:"posted_at"`
	PublishedAt string `json:"published_at,omitempty"`
	URL         string `json:"url"`
	IsDuplicate bool   `json:"is_duplicate,omitempty"`
	Reason      string `json:"similarity_reason,omitempty"`
}

// Snapshot is a derived, read-only aggregate over the record set.
type Snapshot struct {
	TotalTracked int
	Recent       []Record
	Sources      map[string]int
	Categories   map[string]int
}

// Store is the persistent duplicate/history store. Mark* persist immediately;
// a write failure is a hard error because losing it risks re-surfacing the
// same article.
type Store interface {
	IsDuplicate(a news.Article) bool
	MarkPosted(a news.Article) error
	MarkRejected(a news.Article, reason string) error
	Recent(limit int) []Record
	Snapshot() Snapshot
}

// Fingerprint returns the stable hash identifying an article for
// deduplication: md5 over "title|url".
func Fingerprint(title, url string) string {
	sum := md5.Sum([]byte(fmt.Sprintf("%s|%s", title, url)))
	return hex.EncodeToString(sum[:])
}

func newRecord(a news.Article, now time.Time) Record {
	rec := Record{
		Title:    a.Title,
		Source:   a.Source,
		Category: a.Category,
		PostedAt: now.Format(time.RFC3339),
		URL:      a.URL,
	}
	if !a.Published.IsZero() {
		rec.PublishedAt = a.Published.Format(time.RFC3339)
	}
	return rec
}

// prune drops records older than the retention horizon. Records with an
// unparseable timestamp are kept until the store exceeds the record cap.
func prune(records map[string]Record, now time.Time, retention time.Duration) int {
	cutoff := now.Add(-retention)
	overCap := len(records) > malformedPurgeThreshold

	var stale []string
	for hash, rec := range records {
		postedAt, err := time.Parse(time.RFC3339, rec.PostedAt)
		if err != nil {
			if overCap {
				stale = append(stale, hash)
			}
			continue
		}
		if postedAt.Before(cutoff) {
			stale = append(stale, hash)
		}
	}

	for _, hash := range stale {
		delete(records, hash)
	}
	return len(stale)
}

// recentRecords returns up to limit records ordered most-recent first.
// RFC3339 strings sort chronologically, so plain string comparison works.
func recentRecords(records map[string]Record, limit int) []Record {
	all := make([]Record, 0, len(records))
	for _, rec := range records {
		all = append(all, rec)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].PostedAt > all[j].PostedAt })

	if limit > 0 && len(all) > limit {
		all = all[:limit]
	}
	return all
}

func buildSnapshot(records map[string]Record, recentLimit int) Snapshot {
	snap := Snapshot{
		TotalTracked: len(records),
		Recent:       recentRecords(records, recentLimit),
		Sources:      make(map[string]int),
		Categories:   make(map[string]int),
	}
	for _, rec := range records {
		source := rec.Source
		if source == "" {
			source = "unknown"
		}
		category := rec.Category
		if category == "" {
			category = "unknown"
		}
		snap.Sources[source]++
		snap.Categories[category]++
	}
	return snap
}
