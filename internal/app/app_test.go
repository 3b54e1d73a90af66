package app

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"rwanews/internal/news"
)

func TestFormatChannelMessageFullArticle(t *testing.T) {
	article := news.Article{
		Title:     "Gold fund tokenized",
		URL:       "https://example.com/a",
		Source:    "coindesk",
		Content:   "BlackRock announced a tokenized gold fund. The product launches next quarter.",
		Published: time.Date(2025, 6, 15, 16, 30, 0, 0, time.UTC),
	}

	msg := formatChannelMessage(article)

	assert.True(t, strings.HasPrefix(msg, "<b>Gold fund tokenized</b>\n\n"))
	assert.Contains(t, msg, "BlackRock announced a tokenized gold fund.")
	assert.Contains(t, msg, "Source: coindesk (https://example.com/a)")
	assert.Contains(t, msg, "Published: June 15, 2025")
}

func TestFormatChannelMessageCutsAtSentenceBoundary(t *testing.T) {
	first := strings.Repeat("a", 400) + ". "
	second := strings.Repeat("b", 400) + ". "
	article := news.Article{
		Title:   "Long story",
		Source:  "decrypt",
		Content: first + second,
	}

	msg := formatChannelMessage(article)

	assert.Contains(t, msg, strings.Repeat("a", 400)+".")
	assert.NotContains(t, msg, "bbb")
	assert.NotContains(t, msg, "...")
}

func TestFormatChannelMessageHardCutWithoutSentences(t *testing.T) {
	article := news.Article{
		Title:   "Run-on story",
		Source:  "decrypt",
		Content: strings.Repeat("x", 900),
	}

	msg := formatChannelMessage(article)

	assert.Contains(t, msg, strings.Repeat("x", 600)+"...")
	assert.NotContains(t, msg, strings.Repeat("x", 601))
}

func TestFormatChannelMessageOmitsEmptyParts(t *testing.T) {
	article := news.Article{Title: "Bare story", Source: "decrypt"}

	msg := formatChannelMessage(article)

	assert.Equal(t, "<b>Bare story</b>\n\nSource: decrypt", msg)
}
