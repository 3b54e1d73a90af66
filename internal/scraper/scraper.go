package scraper

import (
	"context"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"

	"rwanews/internal/logger"
)

const (
	userAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

	structuredParagraphLimit = 7
	fallbackParagraphLimit   = 5
	maxContentLength         = 2000
)

// Elements that never carry article text.
var stripSelectors = "script, style, nav, header, footer, aside, iframe, noscript"

// Content containers tried in priority order before falling back to bare
// paragraphs.
var contentSelectors = []string{
	"article",
	".article-content",
	".post-content",
	".entry-content",
	".content",
	"main",
	".story-body",
	".article-body",
	".post-body",
	".news-content",
}

var whitespaceRe = regexp.MustCompile(`\s+`)

// Extractor locates the main article text of arbitrary HTML pages.
// Extraction is best-effort: any failure yields an empty string, never an
// error, so heterogeneous page structures degrade silently.
type Extractor struct {
	client *http.Client
}

func New(timeout time.Duration) *Extractor {
	return &Extractor{
		client: &http.Client{Timeout: timeout},
	}
}

// Extract fetches pageURL and returns up to ~2000 characters of its main
// content.
func (e *Extractor) Extract(ctx context.Context, pageURL string) string {
	if pageURL == "" {
		return ""
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		logger.Debug("extraction request failed", "url", pageURL, "error", err)
		return ""
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := e.client.Do(req)
	if err != nil {
		logger.Debug("extraction fetch failed", "url", pageURL, "error", err)
		return ""
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		logger.Debug("extraction fetch failed", "url", pageURL, "status", resp.StatusCode)
		return ""
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		logger.Debug("extraction parse failed", "url", pageURL, "error", err)
		return ""
	}

	content := extractFromDocument(doc)
	if content == "" {
		content = readabilityFallback(pageURL, doc)
	}

	logger.Debug("extracted content", "url", pageURL, "chars", len(content))
	return content
}

// extractFromDocument tries the structural selectors first, then falls back
// to the first paragraphs anywhere in the document.
func extractFromDocument(doc *goquery.Document) string {
	doc.Find(stripSelectors).Remove()

	for _, selector := range contentSelectors {
		block := doc.Find(selector).First()
		if block.Length() == 0 {
			continue
		}
		if text := joinParagraphs(block.Find("p"), structuredParagraphLimit); text != "" {
			return clampContent(text)
		}
	}

	if text := joinParagraphs(doc.Find("p"), fallbackParagraphLimit); text != "" {
		return clampContent(text)
	}

	return ""
}

// readabilityFallback handles pages without paragraph markup at all; the
// selector cascade has nothing to work with there.
func readabilityFallback(pageURL string, doc *goquery.Document) string {
	html, err := doc.Html()
	if err != nil {
		return ""
	}
	parsed, err := url.Parse(pageURL)
	if err != nil {
		return ""
	}
	article, err := readability.FromReader(strings.NewReader(html), parsed)
	if err != nil {
		return ""
	}
	return clampContent(article.TextContent)
}

func joinParagraphs(paragraphs *goquery.Selection, limit int) string {
	var parts []string
	paragraphs.EachWithBreak(func(i int, s *goquery.Selection) bool {
		if len(parts) >= limit {
			return false
		}
		if text := strings.TrimSpace(s.Text()); text != "" {
			parts = append(parts, text)
		}
		return true
	})
	return strings.Join(parts, " ")
}

func clampContent(content string) string {
	content = strings.TrimSpace(whitespaceRe.ReplaceAllString(content, " "))
	if len(content) > maxContentLength {
		content = content[:maxContentLength] + "..."
	}
	return content
}
