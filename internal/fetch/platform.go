package fetch

import (
	"fmt"
	"net/url"
	"strings"
)

// Platform represents a known learning platform.
type Platform string

const (
	// PlatformMoodle is a Moodle course page
	PlatformMoodle Platform = "moodle"
	// PlatformCanvas is an Instructure Canvas course
	PlatformCanvas Platform = "canvas"
	// PlatformKhanAcademy is a Khan Academy unit page
	PlatformKhanAcademy Platform = "khanacademy"
	// PlatformUnknown is an unrecognized platform
	PlatformUnknown Platform = "unknown"
)

// ParsePlatform parses a platform name given on the command line. Empty
// input yields "" so the caller falls back to detection.
func ParsePlatform(s string) (Platform, error) {
	p := Platform(strings.ToLower(strings.TrimSpace(s)))
	switch p {
	case "", PlatformMoodle, PlatformCanvas, PlatformKhanAcademy, PlatformUnknown:
		return p, nil
	}
	return "", fmt.Errorf("unknown platform %q (expected moodle, canvas, khanacademy or unknown)", s)
}

// DetectPlatform identifies the learning platform from a URL.
func DetectPlatform(urlStr string) Platform {
	parsed, err := url.Parse(urlStr)
	if err != nil {
		return PlatformUnknown
	}

	host := strings.ToLower(parsed.Host)
	path := strings.ToLower(parsed.Path)

	if strings.Contains(host, "moodle") || strings.HasPrefix(path, "/course/view.php") {
		return PlatformMoodle
	}

	if strings.Contains(host, "instructure.com") || strings.Contains(host, "canvas.") {
		return PlatformCanvas
	}

	if strings.Contains(host, "khanacademy.org") {
		return PlatformKhanAcademy
	}

	return PlatformUnknown
}

// PlatformContentSelectors returns content selectors optimized for a specific platform.
func PlatformContentSelectors(platform Platform) []string {
	switch platform {
	case PlatformMoodle:
		return []string{
			".course-content",
			"#region-main",
			"[role='main']",
		}
	case PlatformCanvas:
		return []string{
			"#context_modules",
			"#content",
			".ic-Layout-contentMain",
		}
	case PlatformKhanAcademy:
		return []string{
			"[data-test-id='unit-content']",
			"main",
		}
	default:
		return DefaultTextSelectors()
	}
}

// PlatformItemSelectors returns selectors for individual lesson titles.
// An empty result means the generic heading and list-item walk applies.
func PlatformItemSelectors(platform Platform) []string {
	switch platform {
	case PlatformMoodle:
		return []string{".activityname", ".instancename"}
	case PlatformCanvas:
		return []string{".ig-title", ".module-item-title"}
	case PlatformKhanAcademy:
		return []string{"[data-test-id='lesson-card-link']", "h3"}
	default:
		return nil
	}
}

// PlatformNoiseSelectors returns noise exclusion selectors for a specific platform.
func PlatformNoiseSelectors(platform Platform) []string {
	common := []string{
		"form",
		".breadcrumb",
		".social-share",
		".share-buttons",
		".cookie-consent",
		".gdpr-notice",
	}

	switch platform {
	case PlatformMoodle:
		return append(common,
			".block_navigation",
			"#block-region-side-pre",
			".completion-info",
		)
	case PlatformCanvas:
		return append(common,
			"#left-side",
			".ig-header-admin",
			".module_item_icons",
		)
	case PlatformKhanAcademy:
		return append(common,
			"[data-test-id='mastery-progress']",
		)
	default:
		return common
	}
}
