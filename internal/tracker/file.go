package tracker

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sync"
	"time"

	"rwanews/internal/logger"
	"rwanews/internal/news"
)

// trackerFile is the on-disk shape. The legacy schema stored posted_articles
// as a bare list of fingerprints; the current one maps fingerprint -> Record.
type trackerFile struct {
	PostedArticles map[string]Record `json:"posted_articles"`
	LastUpdated    string            `json:"last_updated"`
	TotalTracked   int               `json:"total_tracked"`
}

// legacyFile matches the oldest schema: a bare fingerprint list without
// metadata.
type legacyFile struct {
	PostedArticles []string `json:"posted_articles"`
}

// FileStore persists records as a single JSON file with a full
// read-modify-write on every mutation. Single-writer only: callers must
// serialize cycles, and the file is not safe against concurrent processes.
type FileStore struct {
	path      string
	retention time.Duration
	nowFunc   func() time.Time

	mu      sync.RWMutex
	records map[string]Record
}

// OpenFile loads the store from path. A missing, empty, or unreadable file is
// an empty store, not an error. Legacy fingerprint lists are migrated in
// place, and records past the retention horizon are purged before use.
func OpenFile(path string, retentionDays int) *FileStore {
	store := &FileStore{
		path:      path,
		retention: time.Duration(retentionDays) * 24 * time.Hour,
		nowFunc:   time.Now,
		records:   make(map[string]Record),
	}
	if err := store.load(); err != nil {
		// Data loss is accepted here; a corrupt history file must not
		// stop the pipeline.
		logger.Error("tracker load failed, starting with empty store", "path", path, "error", err)
	}
	return store
}

func (f *FileStore) load() error {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		logger.Info("no tracker file found, starting fresh", "path", f.path)
		return nil
	}
	if err != nil {
		return fmt.Errorf("read tracker file: %w", err)
	}
	if len(data) == 0 {
		return nil
	}

	records, migrated, err := decodeTrackerFile(data, f.nowFunc())
	if err != nil {
		return err
	}
	if migrated > 0 {
		logger.Info("migrated legacy tracker entries", "count", migrated)
	}

	purged := prune(records, f.nowFunc(), f.retention)
	if purged > 0 {
		logger.Info("purged expired tracker records", "count", purged, "kept", len(records))
	}

	f.records = records
	return nil
}

// decodeTrackerFile parses either schema version. It returns the record map
// and how many legacy entries were migrated.
func decodeTrackerFile(data []byte, now time.Time) (map[string]Record, int, error) {
	var current trackerFile
	if err := json.Unmarshal(data, &current); err == nil && current.PostedArticles != nil {
		return current.PostedArticles, 0, nil
	}

	var legacy legacyFile
	if err := json.Unmarshal(data, &legacy); err != nil {
		return nil, 0, fmt.Errorf("unmarshal tracker file: %w", err)
	}
	return migrateLegacy(legacy.PostedArticles, now), len(legacy.PostedArticles), nil
}

// migrateLegacy converts bare fingerprints into records with placeholder
// metadata. Pure function so the migration is testable without file I/O.
func migrateLegacy(fingerprints []string, now time.Time) map[string]Record {
	records := make(map[string]Record, len(fingerprints))
	for _, hash := range fingerprints {
		records[hash] = Record{
			Title:    "Legacy Article",
			Source:   "unknown",
			Category: "unknown",
			PostedAt: now.Format(time.RFC3339),
		}
	}
	return records
}

func (f *FileStore) save() error {
	data, err := json.MarshalIndent(trackerFile{
		PostedArticles: f.records,
		LastUpdated:    f.nowFunc().Format(time.RFC3339),
		TotalTracked:   len(f.records),
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal tracker file: %w", err)
	}
	if err := os.WriteFile(f.path, data, 0644); err != nil {
		return fmt.Errorf("write tracker file: %w", err)
	}
	return nil
}

func (f *FileStore) IsDuplicate(a news.Article) bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	_, ok := f.records[Fingerprint(a.Title, a.URL)]
	return ok
}

func (f *FileStore) MarkPosted(a news.Article) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.records[Fingerprint(a.Title, a.URL)] = newRecord(a, f.nowFunc())
	return f.save()
}

func (f *FileStore) MarkRejected(a news.Article, reason string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	rec := newRecord(a, f.nowFunc())
	rec.IsDuplicate = true
	rec.Reason = reason
	f.records[Fingerprint(a.Title, a.URL)] = rec
	return f.save()
}

func (f *FileStore) Recent(limit int) []Record {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return recentRecords(f.records, limit)
}

func (f *FileStore) Snapshot() Snapshot {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return buildSnapshot(f.records, 10)
}
