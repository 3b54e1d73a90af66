package rss

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/mmcdole/gofeed"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeDropsStaleItems(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	old := now.Add(-72 * time.Hour)

	_, ok := Normalize(&gofeed.Item{Title: "Old news", PublishedParsed: &old}, "coindesk", now, 48*time.Hour)

	assert.False(t, ok)
}

func TestNormalizeKeepsFreshItems(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	recent := now.Add(-2 * time.Hour)

	entry, ok := Normalize(&gofeed.Item{
		Title:           "Gold fund tokenized",
		Link:            "https://example.com/a",
		Description:     "summary text",
		PublishedParsed: &recent,
	}, "coindesk", now, 48*time.Hour)

	require.True(t, ok)
	assert.Equal(t, "Gold fund tokenized", entry.Title)
	assert.Equal(t, "https://example.com/a", entry.Link)
	assert.Equal(t, "summary text", entry.Summary)
	assert.Equal(t, recent, entry.Published)
	assert.Equal(t, "coindesk", entry.Source)
}

func TestNormalizeMissingTimestampDefaultsToNow(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	entry, ok := Normalize(&gofeed.Item{Title: "Undated"}, "decrypt", now, 48*time.Hour)

	require.True(t, ok)
	assert.Equal(t, now, entry.Published)
}

func TestNormalizeFallsBackToUpdatedTimestamp(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	updated := now.Add(-3 * time.Hour)

	entry, ok := Normalize(&gofeed.Item{Title: "Updated only", UpdatedParsed: &updated}, "decrypt", now, 48*time.Hour)

	require.True(t, ok)
	assert.Equal(t, updated, entry.Published)
}

func TestNormalizeMissingTitleGetsPlaceholder(t *testing.T) {
	entry, ok := Normalize(&gofeed.Item{Link: "https://example.com/x"}, "decrypt", time.Now(), 48*time.Hour)

	require.True(t, ok)
	assert.Equal(t, "No Title", entry.Title)
}

func TestLoadSourcesSortedByName(t *testing.T) {
	path := filepath.Join(t.TempDir(), "feeds.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`feeds:
  zeta: "https://example.com/zeta.rss"
  alpha: "https://example.com/alpha.rss"
  mid: "https://example.com/mid.rss"
`), 0644))

	sources, err := LoadSources(path)

	require.NoError(t, err)
	require.Len(t, sources, 3)
	assert.Equal(t, "alpha", sources[0].Name)
	assert.Equal(t, "mid", sources[1].Name)
	assert.Equal(t, "zeta", sources[2].Name)
	assert.Equal(t, "https://example.com/alpha.rss", sources[0].URL)
}

func TestLoadSourcesMissingFile(t *testing.T) {
	_, err := LoadSources(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func rssBody(pubDate time.Time, titles ...string) string {
	items := ""
	for i, title := range titles {
		items += fmt.Sprintf(`<item>
			<title>%s</title>
			<link>https://example.com/%d</link>
			<description>summary %d</description>
			<pubDate>%s</pubDate>
		</item>`, title, i, i, pubDate.Format(time.RFC1123Z))
	}
	return `<?xml version="1.0"?><rss version="2.0"><channel><title>test</title>` + items + `</channel></rss>`
}

func TestFetchAllMergesSourcesAndSurvivesFailures(t *testing.T) {
	now := time.Now()

	good := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, rssBody(now.Add(-time.Hour), "Gold story", "RWA story"))
	}))
	defer good.Close()

	bad := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer bad.Close()

	fetcher := NewFetcher(5*time.Second, 4, 48*time.Hour)
	entries := fetcher.FetchAll(context.Background(), []Source{
		{Name: "good", URL: good.URL},
		{Name: "bad", URL: bad.URL},
	})

	require.Len(t, entries, 2)
	titles := []string{entries[0].Title, entries[1].Title}
	assert.Contains(t, titles, "Gold story")
	assert.Contains(t, titles, "RWA story")
	for _, entry := range entries {
		assert.Equal(t, "good", entry.Source)
	}
}

func TestFetchAllDropsStaleEntries(t *testing.T) {
	now := time.Now()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, rssBody(now.Add(-100*time.Hour), "Ancient story"))
	}))
	defer srv.Close()

	fetcher := NewFetcher(5*time.Second, 2, 48*time.Hour)
	entries := fetcher.FetchAll(context.Background(), []Source{{Name: "stale", URL: srv.URL}})

	assert.Empty(t, entries)
}
