package rss

import (
	"context"
	"net/http"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/mmcdole/gofeed"
	"gopkg.in/yaml.v3"

	"rwanews/internal/logger"
	"rwanews/internal/metrics"
)

const (
	// maxItemsPerFeed bounds how much of a single feed is considered per cycle.
	maxItemsPerFeed = 15

	placeholderTitle = "No Title"
)

// Source is one named feed endpoint. Static configuration, no lifecycle.
type Source struct {
	Name string
	URL  string
}

// Entry is one syndication item after normalization. Discarded after scoring.
type Entry struct {
	Title     string
	Link      string
	Summary   string
	Published time.Time
	Source    string
}

type feedsConfig struct {
	Feeds map[string]string `yaml:"feeds"`
}

// LoadSources reads the name -> URL feed mapping from a YAML file.
// Sources are returned sorted by name so fetch order is stable.
func LoadSources(path string) ([]Source, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var cfg feedsConfig
	if err := yaml.NewDecoder(f).Decode(&cfg); err != nil {
		return nil, err
	}

	sources := make([]Source, 0, len(cfg.Feeds))
	for name, url := range cfg.Feeds {
		sources = append(sources, Source{Name: name, URL: url})
	}
	sort.Slice(sources, func(i, j int) bool { return sources[i].Name < sources[j].Name })
	return sources, nil
}

// Fetcher retrieves and parses feeds concurrently with a bounded worker pool.
type Fetcher struct {
	client  *http.Client
	workers int
	maxAge  time.Duration
	nowFunc func() time.Time
}

func NewFetcher(timeout time.Duration, workers int, maxAge time.Duration) *Fetcher {
	if workers <= 0 {
		workers = 8
	}
	return &Fetcher{
		client:  &http.Client{Timeout: timeout},
		workers: workers,
		maxAge:  maxAge,
		nowFunc: time.Now,
	}
}

// FetchAll fans out one fetch+parse per source and merges the results after
// all workers finish. A failing source contributes zero entries and is logged,
// never aborts the batch. Output ordering is unspecified.
func (f *Fetcher) FetchAll(ctx context.Context, sources []Source) []Entry {
	jobs := make(chan Source, len(sources))
	results := make(chan []Entry, len(sources))

	var wg sync.WaitGroup
	for i := 0; i < f.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for src := range jobs {
				results <- f.fetchOne(ctx, src)
			}
		}()
	}

	for _, src := range sources {
		jobs <- src
	}
	close(jobs)

	wg.Wait()
	close(results)

	var all []Entry
	for entries := range results {
		all = append(all, entries...)
	}

	logger.Info("feed fetch complete", "sources", len(sources), "entries", len(all))
	return all
}

func (f *Fetcher) fetchOne(ctx context.Context, src Source) []Entry {
	parser := gofeed.NewParser()
	parser.Client = f.client

	feed, err := parser.ParseURLWithContext(src.URL, ctx)
	if err != nil {
		logger.Warn("feed fetch failed", "source", src.Name, "error", err)
		metrics.Global.IncrementFeedsFailed()
		return nil
	}
	metrics.Global.IncrementFeedsFetched()

	now := f.nowFunc()
	entries := make([]Entry, 0, len(feed.Items))
	for i, item := range feed.Items {
		if i >= maxItemsPerFeed {
			break
		}
		entry, ok := Normalize(item, src.Name, now, f.maxAge)
		if !ok {
			continue
		}
		entries = append(entries, entry)
	}

	logger.Debug("feed fetched", "source", src.Name, "entries", len(entries))
	return entries
}

// Normalize converts one parsed feed item into an Entry. Items older than
// maxAge are dropped; a missing published timestamp defaults to now. Missing
// titles and links are kept with placeholder values rather than dropped.
func Normalize(item *gofeed.Item, source string, now time.Time, maxAge time.Duration) (Entry, bool) {
	published := now
	if item.PublishedParsed != nil {
		published = *item.PublishedParsed
	} else if item.UpdatedParsed != nil {
		published = *item.UpdatedParsed
	}

	if now.Sub(published) > maxAge {
		return Entry{}, false
	}

	title := item.Title
	if title == "" {
		title = placeholderTitle
	}

	return Entry{
		Title:     title,
		Link:      item.Link,
		Summary:   item.Description,
		Published: published,
		Source:    source,
	}, true
}
