package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"rwanews/internal/cache"
	"rwanews/internal/config"
	"rwanews/internal/logger"
	"rwanews/internal/metrics"
	"rwanews/internal/news"
	"rwanews/internal/scraper"
	"rwanews/internal/selector"
	"rwanews/internal/tracker"
)

// Messenger is the outbound channel the app publishes to.
type Messenger interface {
	SendMessage(ctx context.Context, text string) (int64, error)
}

// App ties one selection cycle to extraction and channel publishing.
type App struct {
	selector  *selector.Selector
	store     tracker.Store
	extractor *scraper.Extractor
	messenger Messenger
	urlCache  *cache.Cache
	cfg       *config.Config
}

func New(sel *selector.Selector, store tracker.Store, extractor *scraper.Extractor, messenger Messenger, cfg *config.Config) *App {
	return &App{
		selector:  sel,
		store:     store,
		extractor: extractor,
		messenger: messenger,
		urlCache:  cache.New(),
		cfg:       cfg,
	}
}

// RunCycle executes one selection pass and publishes the accepted article, if
// any. Content is extracted only for the accepted candidate; rejected ones
// never cost a page fetch.
func (a *App) RunCycle(ctx context.Context) error {
	start := time.Now()
	defer func() {
		metrics.Global.RecordCycleTime(time.Since(start))
		metrics.Global.SetLastRun()
	}()

	outcome, err := a.selector.Run(ctx)
	if err != nil {
		metrics.Global.SetError(err.Error())
		return fmt.Errorf("selection cycle: %w", err)
	}

	if outcome.State == selector.StateExhausted {
		logger.Warn("no publishable article this cycle, skipping", "attempts", outcome.Attempts)
		return nil
	}

	article := outcome.Article
	article.Content = a.extractor.Extract(ctx, article.URL)

	message := formatChannelMessage(*article)
	if _, err := a.messenger.SendMessage(ctx, message); err != nil {
		metrics.Global.SetError(err.Error())
		return fmt.Errorf("publish article: %w", err)
	}

	metrics.Global.IncrementArticlesPosted()
	logger.Info("article published", "title", article.Title, "source", article.Source, "attempts", outcome.Attempts)
	return nil
}

// RunLoop repeats RunCycle every interval. Cycles never overlap: the next one
// starts only after the previous finished.
func (a *App) RunLoop(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if err := a.RunCycle(ctx); err != nil {
			logger.Error("cycle failed", "error", err)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// ExtractURL fetches readable content for a user-supplied URL, with a short
// cache so repeated requests do not refetch the page.
func (a *App) ExtractURL(ctx context.Context, url string) string {
	if content, ok := a.urlCache.Get(url); ok {
		return content
	}

	content := a.extractor.Extract(ctx, url)
	if content != "" {
		a.urlCache.Set(url, content, 1*time.Hour)
	}
	return content
}

// History returns the current tracker aggregate for status reporting.
func (a *App) History() tracker.Snapshot {
	return a.store.Snapshot()
}

var estLocation = mustLoadEST()

func mustLoadEST() *time.Location {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		return time.UTC
	}
	return loc
}

func formatChannelMessage(a news.Article) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("<b>%s</b>\n\n", a.Title))

	if a.Content != "" {
		content := a.Content
		if len(content) > 600 {
			// Cut at the last full sentence that fits
			if idx := strings.LastIndex(content[:600], ". "); idx > 0 {
				content = content[:idx+1]
			} else {
				content = content[:600] + "..."
			}
		}
		b.WriteString(content)
		b.WriteString("\n\n")
	}

	b.WriteString(fmt.Sprintf("Source: %s", a.Source))
	if a.URL != "" {
		b.WriteString(fmt.Sprintf(" (%s)", a.URL))
	}
	if !a.Published.IsZero() {
		est := a.Published.In(estLocation)
		b.WriteString(fmt.Sprintf("\nPublished: %s", est.Format("January 2, 2006 at 3:04 PM EST")))
	}

	return b.String()
}
