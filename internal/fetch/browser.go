package fetch

import (
	"context"
	"strings"
	"time"

	"github.com/chromedp/chromedp"

	"github.com/jonathan/curriculum-coverage/internal/logging"
)

// MinContentLength is the minimum extracted text length to consider HTTP fetch successful.
// Shorter pages are likely rendered client-side and are retried in the browser.
const MinContentLength = 200

// ShouldUseBrowser returns true if the extracted text is too short,
// indicating the page is likely a JavaScript-rendered SPA.
func ShouldUseBrowser(extractedText string) bool {
	return len(strings.TrimSpace(extractedText)) < MinContentLength
}

// WithBrowser renders a page in a headless browser and returns the rendered HTML.
// Requires Chrome/Chromium to be installed on the system.
func WithBrowser(ctx context.Context, url string, timeout time.Duration) (string, error) {
	if err := validateURL(url); err != nil {
		return "", err
	}
	logging.Debug().Str("url", url).Msg("starting headless browser")

	allocCtx, cancel := chromedp.NewExecAllocator(ctx,
		append(chromedp.DefaultExecAllocatorOptions[:],
			chromedp.Flag("headless", true),
			chromedp.Flag("disable-gpu", true),
			chromedp.Flag("no-sandbox", true),
			chromedp.Flag("disable-dev-shm-usage", true),
		)...,
	)
	defer cancel()

	browserCtx, cancel := chromedp.NewContext(allocCtx)
	defer cancel()

	browserCtx, cancel = context.WithTimeout(browserCtx, timeout)
	defer cancel()

	var html string
	err := chromedp.Run(browserCtx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body"),
		// Course pages often load their module lists after the first paint
		chromedp.Sleep(2*time.Second),
		chromedp.OuterHTML("html", &html),
	)
	if err != nil {
		return "", &Error{URL: url, Message: "browser rendering failed", Cause: err}
	}

	logging.Debug().Str("url", url).Int("bytes", len(html)).Msg("rendered page")
	return html, nil
}

// renderer is swapped in tests so Page can be exercised without Chrome
var renderer = WithBrowser

// Page fetches urlStr over HTTP. When useBrowser is set and the page carries
// too little text to be a lesson index, or the HTTP fetch fails, it is rendered
// in the headless browser instead. A failed render keeps the HTTP result.
func Page(ctx context.Context, urlStr string, useBrowser bool, opts *Options) (*Result, error) {
	if opts == nil {
		opts = DefaultOptions()
	}

	result, err := URL(ctx, urlStr, opts)
	if !useBrowser {
		return result, err
	}

	if err == nil {
		platform := DetectPlatform(urlStr)
		text, extractErr := ExtractMainText(result.HTML, PlatformContentSelectors(platform), PlatformNoiseSelectors(platform)...)
		if extractErr == nil && !ShouldUseBrowser(text) {
			return result, nil
		}
		logging.Info().Str("url", urlStr).Int("text_length", len(text)).Msg("page looks client-rendered, retrying in browser")
	}

	html, renderErr := renderer(ctx, urlStr, opts.Timeout)
	if renderErr != nil {
		if err != nil {
			return nil, err
		}
		logging.Warn().Err(renderErr).Str("url", urlStr).Msg("browser rendering failed, using HTTP content")
		return result, nil
	}
	return &Result{URL: urlStr, HTML: html, StatusCode: 200, Rendered: true}, nil
}
