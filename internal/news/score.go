package news

import (
	"regexp"
	"sort"
	"strings"
)

const (
	titleWeight   = 3.0
	summaryWeight = 1.0

	// crossCategoryBonus rewards stories that span more than one topic.
	crossCategoryBonus = 1.5

	maxScore = 15.0
)

// Price-speculation phrases are categorically excluded regardless of any
// other keyword matches.
var priceSpeculationKeywords = []string{
	"price prediction", "price forecast", "price target",
	"price analysis", "technical analysis", "price outlook",
	"will reach", "could hit", "price could", "price may",
	"price estimate", "price projection", "price expectations",
	"bullish target", "bearish target", "resistance level",
	"support level", "fibonacci", "moving average", "rsi",
	"chart analysis", "trading signals", "buy signal", "sell signal",
}

// Topic categories with their keyword lists. Every keyword carries unit
// weight; position (title vs summary) decides the multiplier.
var categoryKeywords = map[string][]string{
	"rwa": {
		"real world asset", "rwa", "tokenization", "tokenized", "asset backed",
		"real estate token", "commodity token", "security token", "sto",
		"asset digitization", "blockchain asset", "defi asset", "traditional asset",
		"asset tokenization", "digital asset", "token asset", "backed token",
		"physical asset", "tangible asset", "tokenize", "fractionalized",
	},
	"gold": {
		"gold", "precious metal", "bullion", "gold price", "gold market",
		"gold etf", "gold mining", "gold reserve", "central bank gold",
		"gold futures", "spot gold", "gold backed", "gold standard",
		"gold coin", "gold bar", "gold investment", "gold rally",
		"gold demand", "gold supply", "xau", "troy ounce",
	},
	"partnerships": {
		"partnership", "collaboration", "integration", "announces", "teams up",
		"joint venture", "strategic alliance", "cooperation", "agreement",
		"deal", "merger", "acquisition", "investment", "launches with",
		"partners with", "alliance", "working together", "strategic partnership",
		"business partnership", "technology partnership",
	},
	"institutional": {
		"institutional", "bank", "financial institution", "corporate",
		"enterprise", "blackrock", "fidelity", "jpmorgan", "goldman sachs",
		"morgan stanley", "wells fargo", "visa", "mastercard", "paypal",
		"deutsche bank", "ubs", "credit suisse", "hsbc", "citigroup",
		"institutional adoption", "institutional investor", "wall street",
	},
	"defi": {
		"defi", "decentralized finance", "yield farming", "liquidity pool",
		"dex", "decentralized exchange", "lending protocol", "borrowing",
		"staking", "governance token", "dao", "smart contract",
		"automated market maker", "amm", "tvl", "total value locked",
	},
	"regulation": {
		"regulation", "regulatory", "sec", "cftc", "compliance", "license",
		"approval", "framework", "guidance", "law", "legal", "policy",
		"government", "federal", "state", "international", "global regulation",
	},
}

// matchesKeyword reports whether a single keyword occurs in text. Phrases use
// substring matching; short tokens (<=3 runes, e.g. "rsi", "dao", "sec") need
// a word boundary so "said" does not match "ai"-style tokens.
func matchesKeyword(text, keyword string) bool {
	keyword = strings.ToLower(strings.TrimSpace(keyword))
	if keyword == "" {
		return false
	}

	if strings.Contains(keyword, " ") {
		return strings.Contains(text, keyword)
	}

	if len(keyword) <= 3 {
		re := regexp.MustCompile(`\b` + regexp.QuoteMeta(keyword) + `\b`)
		return re.MatchString(text)
	}

	return strings.Contains(text, keyword)
}

func containsAny(text string, keywords []string) bool {
	for _, k := range keywords {
		if matchesKeyword(text, k) {
			return true
		}
	}
	return false
}

// Score maps a title and summary to a relevance score and an inferred
// category. Pure function, no I/O.
//
// Price-speculation phrases zero the score immediately. Otherwise each
// matched keyword adds weight (3x when found in the title), per-category
// sums are added together, and matching more than one category multiplies
// the total by 1.5. The result is capped at 15.0. The returned category is
// the highest-scoring one; equal scores break lexicographically so the
// outcome is deterministic.
func Score(title, summary string) (float64, string) {
	lowTitle := strings.ToLower(title)
	text := lowTitle + " " + strings.ToLower(summary)

	if containsAny(text, priceSpeculationKeywords) {
		return 0, ""
	}

	categoryScores := make(map[string]float64)
	total := 0.0

	for category, keywords := range categoryKeywords {
		categoryScore := 0.0
		for _, keyword := range keywords {
			if !matchesKeyword(text, keyword) {
				continue
			}
			if matchesKeyword(lowTitle, keyword) {
				categoryScore += titleWeight
			} else {
				categoryScore += summaryWeight
			}
		}
		if categoryScore > 0 {
			categoryScores[category] = categoryScore
			total += categoryScore
		}
	}

	if len(categoryScores) == 0 {
		return 0, ""
	}

	if len(categoryScores) > 1 {
		total *= crossCategoryBonus
	}
	if total > maxScore {
		total = maxScore
	}

	return total, primaryCategory(categoryScores)
}

func primaryCategory(scores map[string]float64) string {
	names := make([]string, 0, len(scores))
	for name := range scores {
		names = append(names, name)
	}
	sort.Strings(names)

	best := names[0]
	for _, name := range names[1:] {
		if scores[name] > scores[best] {
			best = name
		}
	}
	return best
}
