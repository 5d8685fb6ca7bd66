package clipper

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"meal-scheduler/internal/catalog"
	"meal-scheduler/internal/llm"

	"github.com/PuerkitoBio/goquery"
)

const maxTags = 3

// ItemSaver stores clipped items.
type ItemSaver interface {
	Save(ctx context.Context, userID string, n catalog.NewItem) (*catalog.Item, error)
}

// MetaRecorder receives model usage for suggested tags.
type MetaRecorder interface {
	RecordMeta(meta llm.AgentMeta) error
}

// Clipper turns recipe pages into catalog items.
type Clipper struct {
	items      ItemSaver
	textGen    llm.TextGenerator
	recorder   MetaRecorder
	httpClient *http.Client
}

// Page is what the clipper could read from a URL.
type Page struct {
	Title string
	Tags  []string
	Text  string
}

// NewClipper creates a new Clipper instance. textGen and recorder may be nil;
// without a generator, pages lacking keywords are clipped untagged.
func NewClipper(items ItemSaver, textGen llm.TextGenerator, recorder MetaRecorder) *Clipper {
	return &Clipper{
		items:      items,
		textGen:    textGen,
		recorder:   recorder,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

// ClipURL fetches the URL, derives a title and tags, and saves it as a catalog item.
func (c *Clipper) ClipURL(ctx context.Context, userID, url string, role catalog.Role) (*catalog.Item, error) {
	page, err := c.fetchPage(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch content: %w", err)
	}
	if page.Title == "" {
		return nil, fmt.Errorf("no title found at %s", url)
	}

	tags := page.Tags
	if len(tags) == 0 && c.textGen != nil {
		suggested, meta, err := llm.SuggestTags(ctx, c.textGen, page.Title, page.Text)
		if c.recorder != nil {
			if recErr := c.recorder.RecordMeta(meta); recErr != nil {
				log.Printf("Warning: failed to record metrics: %v", recErr)
			}
		}
		if err != nil {
			log.Printf("Warning: tag suggestion failed for %s: %v", url, err)
		} else {
			tags = suggested
		}
	}

	item, err := c.items.Save(ctx, userID, catalog.NewItem{
		Title:  page.Title,
		Notes:  "Imported from: " + url,
		Role:   role,
		Effort: catalog.DefaultEffort,
		Tags:   tags,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to save item: %w", err)
	}
	return item, nil
}

func (c *Clipper) fetchPage(ctx context.Context, url string) (*Page, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to fetch URL: status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, err
	}

	page := &Page{
		Title: extractTitle(doc),
		Tags:  extractTags(doc),
	}

	// Remove noise to save LLM tokens
	doc.Find("script, style, nav, footer, iframe, ads, .ads, #ads").Each(func(i int, s *goquery.Selection) {
		s.Remove()
	})
	page.Text = strings.Join(strings.Fields(doc.Find("body").Text()), " ")
	return page, nil
}

func extractTitle(doc *goquery.Document) string {
	if v, ok := doc.Find(`meta[property="og:title"]`).Attr("content"); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	if h1 := strings.TrimSpace(doc.Find("h1").First().Text()); h1 != "" {
		return h1
	}
	return strings.TrimSpace(doc.Find("title").First().Text())
}

func extractTags(doc *goquery.Document) []string {
	var raw []string
	doc.Find(`meta[property="article:tag"]`).Each(func(i int, s *goquery.Selection) {
		if v, ok := s.Attr("content"); ok {
			raw = append(raw, v)
		}
	})
	if v, ok := doc.Find(`meta[name="keywords"]`).Attr("content"); ok {
		raw = append(raw, strings.Split(v, ",")...)
	}

	seen := make(map[string]bool)
	var tags []string
	for _, t := range raw {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		tags = append(tags, t)
		if len(tags) == maxTags {
			break
		}
	}
	return tags
}
