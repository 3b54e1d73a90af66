package news

import (
	"fmt"
	"time"

	"rwanews/internal/rss"
)

// Article is a scored candidate for publication. Content is populated lazily
// by the extractor for the accepted candidate only; nothing else mutates it.
type Article struct {
	Title     string
	URL       string
	Source    string
	Published time.Time
	Summary   string
	Content   string
	Category  string
	Score     float64
}

// FromEntry builds an Article from a normalized feed entry, running the
// relevance scorer over it. Category falls back to "general" when no topic
// matched, never an absent value.
func FromEntry(entry rss.Entry) Article {
	score, category := Score(entry.Title, entry.Summary)
	if category == "" {
		category = "general"
	}
	return Article{
		Title:     entry.Title,
		URL:       entry.Link,
		Source:    entry.Source,
		Published: entry.Published,
		Summary:   entry.Summary,
		Category:  category,
		Score:     score,
	}
}

// FormatForJudgment renders the article metadata and whatever text is
// available the way judgment prompts expect it.
func (a Article) FormatForJudgment() string {
	body := a.Content
	if body == "" {
		body = a.Summary
	}
	if len(body) > 1000 {
		body = body[:1000] + "..."
	}
	return fmt.Sprintf("Title: %s\nSource: %s\nCategory: %s\nPublished: %s\nRelevance Score: %.1f\n\n%s",
		a.Title, a.Source, a.Category, a.Published.Format("2006-01-02 15:04"), a.Score, body)
}
