package news

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"rwanews/internal/rss"
)

func TestScorePriceSpeculationIsAlwaysZero(t *testing.T) {
	cases := []struct {
		name    string
		title   string
		summary string
	}{
		{"prediction in title", "Gold price prediction for next quarter", "gold bullion tokenization"},
		{"resistance level in summary", "Gold rally continues", "analysts see a key resistance level ahead"},
		{"technical analysis", "XAU technical analysis", "partnership with blackrock on tokenized gold"},
		{"trading signals", "New trading signals for defi tokens", "staking yields rise"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			score, category := Score(tc.title, tc.summary)
			assert.Equal(t, 0.0, score)
			assert.Equal(t, "", category)
		})
	}
}

func TestScoreTitleMatchIsTripleWeight(t *testing.T) {
	inTitle, _ := Score("bullion", "")
	inSummary, _ := Score("", "bullion")

	assert.Equal(t, 1.0, inSummary)
	assert.Equal(t, 3.0, inTitle)
}

func TestScoreKeywordInTitleAndSummaryCountedOnce(t *testing.T) {
	score, _ := Score("bullion", "bullion")
	assert.Equal(t, 3.0, score)
}

func TestScoreMultiCategoryBonus(t *testing.T) {
	// "bullion" hits gold, "staking" hits defi: (1+1) * 1.5
	score, _ := Score("", "bullion staking")
	assert.Equal(t, 3.0, score)
}

func TestScoreCategoryTieBreaksLexicographically(t *testing.T) {
	// gold and defi both score 1; defi sorts first
	_, category := Score("", "bullion staking")
	assert.Equal(t, "defi", category)
}

func TestScoreIsCapped(t *testing.T) {
	title := "Gold bullion tokenization partnership: JPMorgan wins SEC approval for DeFi staking"
	score, _ := Score(title, "institutional investors pile into tokenized precious metal funds")
	assert.Equal(t, 15.0, score)
}

func TestScoreShortTokensNeedWordBoundary(t *testing.T) {
	// "sto" must not match inside "store", "dao" not inside "Daou"
	score, _ := Score("Retail store chain Daou expands", "")
	assert.Equal(t, 0.0, score)

	score, _ = Score("First STO launched", "")
	assert.Greater(t, score, 0.0)
}

func TestScoreUnrelatedTextIsZero(t *testing.T) {
	score, category := Score("Local weather improves", "sunny skies expected all week")
	assert.Equal(t, 0.0, score)
	assert.Equal(t, "", category)
}

func TestFromEntryDefaultsCategory(t *testing.T) {
	article := FromEntry(rss.Entry{
		Title:     "Nothing topical here",
		Link:      "https://example.com/a",
		Source:    "example",
		Published: time.Now(),
	})

	assert.Equal(t, "general", article.Category)
	assert.Equal(t, 0.0, article.Score)
}

func TestFormatForJudgmentPrefersContent(t *testing.T) {
	article := Article{
		Title:    "Gold fund tokenized",
		Source:   "coindesk",
		Category: "rwa",
		Summary:  "short summary",
		Content:  "full extracted content",
	}

	formatted := article.FormatForJudgment()
	assert.Contains(t, formatted, "full extracted content")
	assert.NotContains(t, formatted, "short summary")
}
