package ingestion

import (
	"context"
	"encoding/json"
	"os"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/jonathan/curriculum-coverage/internal/fetch"
	"github.com/jonathan/curriculum-coverage/internal/logging"
	"github.com/jonathan/curriculum-coverage/internal/parsing"
	"github.com/jonathan/curriculum-coverage/internal/types"
)

// maxTitleLength drops list items that are paragraphs rather than titles
const maxTitleLength = 160

// genericItemSelector is walked in document order when no platform or
// caller selector applies. Headings open a unit; list items are lessons.
const genericItemSelector = "h2, h3, h4, li"

// Options configures extraction
type Options struct {
	Subject    string         // subject stamped on every item; empty means Unknown
	Selector   string         // CSS selector for lesson titles, overriding detection
	Platform   fetch.Platform // empty means detect from the source URL
	UseBrowser bool           // render with the headless browser
	Fetch      *fetch.Options
}

// Result is an imported content inventory and its provenance
type Result struct {
	Document *types.ContentDocument
	Metadata *Metadata
}

// ImportURL fetches a lesson index page and extracts its content items
func ImportURL(ctx context.Context, urlStr string, opts Options) (*Result, error) {
	if opts.Platform == "" {
		opts.Platform = fetch.DetectPlatform(urlStr)
	}

	page, err := fetch.Page(ctx, urlStr, opts.UseBrowser, opts.Fetch)
	if err != nil {
		return nil, &ExtractionError{Source: urlStr, Message: "failed to fetch page", Cause: err}
	}

	result, err := importHTML(page.HTML, urlStr, opts)
	if err != nil {
		return nil, err
	}
	result.Metadata.Rendered = page.Rendered
	return result, nil
}

// ImportFile extracts content items from a saved HTML file
func ImportFile(path string, opts Options) (*Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &ExtractionError{Source: path, Message: "failed to read file", Cause: err}
	}
	if opts.Platform == "" {
		opts.Platform = fetch.PlatformUnknown
	}
	return importHTML(string(data), path, opts)
}

func importHTML(html, source string, opts Options) (*Result, error) {
	items, err := ExtractItems(html, opts)
	if err != nil {
		return nil, &ExtractionError{Source: source, Message: "failed to extract items", Cause: err}
	}

	meta := NewMetadata(html, source)
	meta.Platform = string(opts.Platform)
	meta.ItemCount = len(items)

	logging.Info().
		Str("source", source).
		Str("platform", meta.Platform).
		Int("items", len(items)).
		Msg("imported content inventory")

	return &Result{
		Document: &types.ContentDocument{Content: items},
		Metadata: meta,
	}, nil
}

// ExtractItems returns one content item per lesson title found in html.
// Titles are deduplicated by their normalized form, keeping the first.
func ExtractItems(html string, opts Options) ([]types.ContentItem, error) {
	platform := opts.Platform
	if platform == "" {
		platform = fetch.PlatformUnknown
	}

	main, err := fetch.MainContent(html,
		fetch.PlatformContentSelectors(platform),
		fetch.PlatformNoiseSelectors(platform)...)
	if err != nil {
		return nil, err
	}

	selector := opts.Selector
	if selector == "" {
		selector = strings.Join(fetch.PlatformItemSelectors(platform), ", ")
	}

	c := newCollector(opts.Subject)
	if selector != "" {
		main.Find(selector).Each(func(_ int, s *goquery.Selection) {
			c.add(s.Text(), "")
		})
	} else {
		c.walkGeneric(main)
	}

	if len(c.items) == 0 {
		return nil, ErrNoItems
	}
	return c.items, nil
}

type collector struct {
	subject string
	seen    map[string]bool
	items   []types.ContentItem
}

func newCollector(subject string) *collector {
	return &collector{subject: subject, seen: make(map[string]bool), items: []types.ContentItem{}}
}

// walkGeneric treats headings as unit names and leaf list items as lessons.
// A heading with no lessons under it becomes an item itself.
func (c *collector) walkGeneric(main *goquery.Selection) {
	unit := ""
	unitHasLessons := true

	flushUnit := func() {
		if unit != "" && !unitHasLessons {
			c.add(unit, "")
		}
	}

	main.Find(genericItemSelector).Each(func(_ int, s *goquery.Selection) {
		if goquery.NodeName(s) == "li" {
			// Only leaf items; parents of nested lists are groupings
			if s.Find("li").Length() > 0 {
				return
			}
			if c.add(s.Text(), unit) {
				unitHasLessons = true
			}
			return
		}
		flushUnit()
		unit = cleanText(s.Text())
		unitHasLessons = false
	})
	flushUnit()
}

// add appends a title once; it reports whether an item was added
func (c *collector) add(raw, unit string) bool {
	title := cleanText(raw)
	if title == "" || len(title) > maxTitleLength {
		return false
	}

	item := types.ContentItem{Subject: c.subject, Title: title}
	if unit != "" {
		unitJSON, _ := json.Marshal(unit)
		item.Extra = map[string]json.RawMessage{"unit": unitJSON}
	}
	return c.addItem(item)
}

// addItem appends an already cleaned item unless its title was seen
func (c *collector) addItem(item types.ContentItem) bool {
	key := parsing.Normalize(item.Title)
	if key == "" {
		logging.Debug().Str("title", item.Title).Msg("skipping item whose title has no ASCII letters or digits to match on")
		return false
	}
	if c.seen[key] {
		return false
	}
	c.seen[key] = true
	c.items = append(c.items, item)
	return true
}

func cleanText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
