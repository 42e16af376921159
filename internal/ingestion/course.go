package ingestion

import (
	"context"
	"errors"
	"regexp"

	"golang.org/x/sync/errgroup"

	"github.com/jonathan/curriculum-coverage/internal/crawling"
	"github.com/jonathan/curriculum-coverage/internal/fetch"
	"github.com/jonathan/curriculum-coverage/internal/logging"
	"github.com/jonathan/curriculum-coverage/internal/types"
)

// maxConcurrentPages bounds parallel unit page fetches
const maxConcurrentPages = 4

// CourseOptions configures a multi-page course import
type CourseOptions struct {
	Options
	MaxPages int            // unit pages to follow from the index
	Pattern  *regexp.Regexp // unit page path pattern; nil uses the platform's
}

// ImportCourse imports the index page at urlStr and up to MaxPages of the unit
// pages it links to. Items keep index order followed by unit page order. Unit
// pages that fail to fetch or contain no lessons are skipped.
func ImportCourse(ctx context.Context, urlStr string, opts CourseOptions) (*Result, error) {
	if opts.Platform == "" {
		opts.Platform = fetch.DetectPlatform(urlStr)
	}
	pattern := opts.Pattern
	if pattern == nil {
		pattern = crawling.PlatformUnitPattern(opts.Platform)
	}
	if pattern == nil {
		return nil, &ExtractionError{Source: urlStr, Message: "no unit link pattern for platform " + string(opts.Platform)}
	}

	index, err := fetch.Page(ctx, urlStr, opts.UseBrowser, opts.Fetch)
	if err != nil {
		return nil, &ExtractionError{Source: urlStr, Message: "failed to fetch page", Cause: err}
	}

	links, err := crawling.UnitLinks(index.HTML, urlStr, pattern)
	if err != nil {
		return nil, &ExtractionError{Source: urlStr, Message: "failed to discover unit pages", Cause: err}
	}
	if opts.MaxPages >= 0 && len(links) > opts.MaxPages {
		links = links[:opts.MaxPages]
	}

	pages := make([][]types.ContentItem, len(links))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentPages)
	for i, link := range links {
		g.Go(func() error {
			page, err := fetch.Page(gctx, link, opts.UseBrowser, opts.Fetch)
			if err != nil {
				logging.Warn().Err(err).Str("url", link).Msg("skipping unit page")
				return nil
			}
			items, err := ExtractItems(page.HTML, opts.Options)
			if err != nil {
				logging.Debug().Err(err).Str("url", link).Msg("no lessons on unit page")
				return nil
			}
			pages[i] = items
			return nil
		})
	}
	// Page failures are logged above, so Wait only reports cancellation
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return nil, &ExtractionError{Source: urlStr, Message: "course import cancelled", Cause: err}
	}

	c := newCollector(opts.Subject)
	indexItems, err := ExtractItems(index.HTML, opts.Options)
	if err != nil && !errors.Is(err, ErrNoItems) {
		return nil, &ExtractionError{Source: urlStr, Message: "failed to extract items", Cause: err}
	}
	for _, item := range indexItems {
		c.addItem(item)
	}
	for _, items := range pages {
		for _, item := range items {
			c.addItem(item)
		}
	}
	if len(c.items) == 0 {
		return nil, &ExtractionError{Source: urlStr, Message: "failed to extract items", Cause: ErrNoItems}
	}

	meta := NewMetadata(index.HTML, urlStr)
	meta.Platform = string(opts.Platform)
	meta.Rendered = index.Rendered
	meta.ItemCount = len(c.items)
	meta.Pages = len(links)

	logging.Info().
		Str("source", urlStr).
		Str("platform", meta.Platform).
		Int("pages", meta.Pages).
		Int("items", meta.ItemCount).
		Msg("imported course content inventory")

	return &Result{
		Document: &types.ContentDocument{Content: c.items},
		Metadata: meta,
	}, nil
}
