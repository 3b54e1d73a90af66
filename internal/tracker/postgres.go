package tracker

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"rwanews/internal/logger"
	"rwanews/internal/news"
)

// PostgresStore keeps tracked articles in Postgres for deployments where the
// JSON file is not durable enough (ephemeral filesystems). Same contract as
// FileStore; the retention purge runs once at open instead of on every load.
type PostgresStore struct {
	db        *sql.DB
	retention time.Duration
	nowFunc   func() time.Time
}

const postgresSchema = `
CREATE TABLE IF NOT EXISTS tracked_articles (
	id SERIAL PRIMARY KEY,
	hash VARCHAR(64) UNIQUE NOT NULL,
	title TEXT NOT NULL,
	source VARCHAR(100),
	category VARCHAR(50),
	url TEXT,
	posted_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	published_at TIMESTAMPTZ,
	is_duplicate BOOLEAN NOT NULL DEFAULT FALSE,
	reason TEXT
);

CREATE INDEX IF NOT EXISTS idx_tracked_articles_hash ON tracked_articles(hash);
CREATE INDEX IF NOT EXISTS idx_tracked_articles_posted_at ON tracked_articles(posted_at);
`

// OpenPostgres connects, initializes the schema, and purges expired records.
func OpenPostgres(dsn string, retentionDays int) (*PostgresStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	store := &PostgresStore{
		db:        db,
		retention: time.Duration(retentionDays) * 24 * time.Hour,
		nowFunc:   time.Now,
	}

	if _, err := db.Exec(postgresSchema); err != nil {
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	res, err := db.Exec(`DELETE FROM tracked_articles WHERE posted_at < $1`,
		store.nowFunc().Add(-store.retention))
	if err != nil {
		return nil, fmt.Errorf("purge expired records: %w", err)
	}
	if purged, _ := res.RowsAffected(); purged > 0 {
		logger.Info("purged expired tracker records", "count", purged)
	}

	logger.Info("postgres tracker connected")
	return store, nil
}

func (p *PostgresStore) Close() error {
	return p.db.Close()
}

func (p *PostgresStore) IsDuplicate(a news.Article) bool {
	var exists bool
	err := p.db.QueryRow(`SELECT EXISTS(SELECT 1 FROM tracked_articles WHERE hash = $1)`,
		Fingerprint(a.Title, a.URL)).Scan(&exists)
	if err != nil {
		logger.Error("duplicate check failed", "error", err)
		return false
	}
	return exists
}

func (p *PostgresStore) MarkPosted(a news.Article) error {
	return p.insert(a, false, "")
}

func (p *PostgresStore) MarkRejected(a news.Article, reason string) error {
	return p.insert(a, true, reason)
}

func (p *PostgresStore) insert(a news.Article, duplicate bool, reason string) error {
	var published interface{}
	if !a.Published.IsZero() {
		published = a.Published
	}

	_, err := p.db.Exec(`
		INSERT INTO tracked_articles (hash, title, source, category, url, posted_at, published_at, is_duplicate, reason)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (hash) DO UPDATE
		SET posted_at = EXCLUDED.posted_at,
		    is_duplicate = EXCLUDED.is_duplicate,
		    reason = EXCLUDED.reason`,
		Fingerprint(a.Title, a.URL), a.Title, a.Source, a.Category, a.URL,
		p.nowFunc(), published, duplicate, reason)
	if err != nil {
		return fmt.Errorf("upsert tracked article: %w", err)
	}
	return nil
}

func (p *PostgresStore) Recent(limit int) []Record {
	rows, err := p.db.Query(`
		SELECT title, source, category, url, posted_at, published_at, is_duplicate, COALESCE(reason, '')
		FROM tracked_articles
		ORDER BY posted_at DESC
		LIMIT $1`, limit)
	if err != nil {
		logger.Error("recent records query failed", "error", err)
		return nil
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var rec Record
		var postedAt time.Time
		var publishedAt sql.NullTime
		if err := rows.Scan(&rec.Title, &rec.Source, &rec.Category, &rec.URL,
			&postedAt, &publishedAt, &rec.IsDuplicate, &rec.Reason); err != nil {
			logger.Error("recent records scan failed", "error", err)
			return records
		}
		rec.PostedAt = postedAt.Format(time.RFC3339)
		if publishedAt.Valid {
			rec.PublishedAt = publishedAt.Time.Format(time.RFC3339)
		}
		records = append(records, rec)
	}
	return records
}

func (p *PostgresStore) Snapshot() Snapshot {
	snap := Snapshot{
		Recent:     p.Recent(10),
		Sources:    make(map[string]int),
		Categories: make(map[string]int),
	}

	if err := p.db.QueryRow(`SELECT COUNT(*) FROM tracked_articles`).Scan(&snap.TotalTracked); err != nil {
		logger.Error("snapshot count failed", "error", err)
		return snap
	}

	rows, err := p.db.Query(`
		SELECT COALESCE(NULLIF(source, ''), 'unknown'),
		       COALESCE(NULLIF(category, ''), 'unknown'),
		       COUNT(*)
		FROM tracked_articles
		GROUP BY 1, 2`)
	if err != nil {
		logger.Error("snapshot aggregate failed", "error", err)
		return snap
	}
	defer rows.Close()

	for rows.Next() {
		var source, category string
		var count int
		if err := rows.Scan(&source, &category, &count); err != nil {
			logger.Error("snapshot scan failed", "error", err)
			return snap
		}
		snap.Sources[source] += count
		snap.Categories[category] += count
	}
	return snap
}
