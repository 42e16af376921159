package crawling

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/jonathan/curriculum-coverage/internal/fetch"
)

// Unit page paths of the platforms the importer knows
var platformUnitPatterns = map[fetch.Platform]*regexp.Regexp{
	fetch.PlatformMoodle:      regexp.MustCompile(`/(course/section\.php|mod/(page|book|lesson)/view\.php)`),
	fetch.PlatformCanvas:      regexp.MustCompile(`/courses/\d+/(modules/items|pages)/`),
	fetch.PlatformKhanAcademy: regexp.MustCompile(`^/[a-z0-9-]+/[a-z0-9-]+/[a-z0-9-]+$`),
}

// PlatformUnitPattern returns the path pattern of unit pages on platform, or
// nil when the platform has no known layout.
func PlatformUnitPattern(platform fetch.Platform) *regexp.Regexp {
	return platformUnitPatterns[platform]
}

// UnitLinks returns the same-host links in htmlContent whose path matches
// pattern, resolved against baseURL, in document order and without duplicates.
// The base page itself is never returned.
func UnitLinks(htmlContent string, baseURL string, pattern *regexp.Regexp) ([]string, error) {
	if pattern == nil {
		return nil, &LinkExtractionError{Message: "no unit link pattern"}
	}

	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, &LinkExtractionError{
			Message: "failed to parse base URL",
			Cause:   err,
		}
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, &LinkExtractionError{
			Message: fmt.Sprintf("invalid base URL: %s (must have scheme and host)", baseURL),
		}
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlContent))
	if err != nil {
		return nil, &LinkExtractionError{
			Message: "failed to parse HTML",
			Cause:   err,
		}
	}

	self := normalizeLink(base)
	seen := map[string]bool{self: true}
	links := make([]string, 0)

	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		if href == "" || strings.HasPrefix(href, "#") {
			return
		}

		linkURL, err := url.Parse(href)
		if err != nil {
			return
		}

		absoluteURL := base.ResolveReference(linkURL)
		if absoluteURL.Host != base.Host || !pattern.MatchString(absoluteURL.Path) {
			return
		}

		link := normalizeLink(absoluteURL)
		if !seen[link] {
			seen[link] = true
			links = append(links, link)
		}
	})

	return links, nil
}

// normalizeLink drops the fragment and any trailing slash
func normalizeLink(u *url.URL) string {
	clean := *u
	clean.Fragment = ""
	return strings.TrimSuffix(clean.String(), "/")
}
