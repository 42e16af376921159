package crawling

import (
	"errors"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/curriculum-coverage/internal/fetch"
)

const moodleIndex = `
<html>
	<body>
		<nav>
			<a href="/my/">Dashboard</a>
			<a href="/course/view.php?id=42">Course home</a>
		</nav>
		<div class="course-content">
			<a href="/course/section.php?id=1">Unit 1: Electricity</a>
			<a href="/mod/page/view.php?id=10#top">Ohm's Law</a>
			<a href="/mod/page/view.php?id=10">Ohm's Law (again)</a>
			<a href="https://other.edu/mod/page/view.php?id=11">Elsewhere</a>
			<a href="#section-2">Jump</a>
			<a href="/mod/forum/view.php?id=12">Forum</a>
		</div>
	</body>
</html>`

func TestUnitLinks_Moodle(t *testing.T) {
	links, err := UnitLinks(moodleIndex, "https://moodle.school.org/course/view.php?id=42", PlatformUnitPattern(fetch.PlatformMoodle))
	require.NoError(t, err)

	assert.Equal(t, []string{
		"https://moodle.school.org/course/section.php?id=1",
		"https://moodle.school.org/mod/page/view.php?id=10",
	}, links)
}

func TestUnitLinks_CustomPattern(t *testing.T) {
	html := `<a href="/lessons/1">One</a><a href="lessons/2/">Two</a><a href="/about">About</a>`

	links, err := UnitLinks(html, "https://example.com/course/", regexp.MustCompile(`/lessons/\d+`))
	require.NoError(t, err)
	assert.Equal(t, []string{
		"https://example.com/lessons/1",
		"https://example.com/course/lessons/2",
	}, links)
}

func TestUnitLinks_SkipsSelf(t *testing.T) {
	html := `<a href="/lessons/1/">Self</a><a href="/lessons/2">Two</a>`

	links, err := UnitLinks(html, "https://example.com/lessons/1", regexp.MustCompile(`/lessons/`))
	require.NoError(t, err)
	assert.Equal(t, []string{"https://example.com/lessons/2"}, links)
}

func TestUnitLinks_Errors(t *testing.T) {
	tests := []struct {
		name    string
		base    string
		pattern *regexp.Regexp
	}{
		{"nil pattern", "https://example.com", nil},
		{"relative base", "/course", regexp.MustCompile(`.`)},
		{"unparseable base", "://bad", regexp.MustCompile(`.`)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := UnitLinks("<a href='/x'>x</a>", tt.base, tt.pattern)
			require.Error(t, err)

			var linkErr *LinkExtractionError
			assert.True(t, errors.As(err, &linkErr))
		})
	}
}

func TestPlatformUnitPattern(t *testing.T) {
	assert.Nil(t, PlatformUnitPattern(fetch.PlatformUnknown))

	canvas := PlatformUnitPattern(fetch.PlatformCanvas)
	require.NotNil(t, canvas)
	assert.True(t, canvas.MatchString("/courses/101/modules/items/55"))
	assert.False(t, canvas.MatchString("/courses/101/grades"))

	khan := PlatformUnitPattern(fetch.PlatformKhanAcademy)
	require.NotNil(t, khan)
	assert.True(t, khan.MatchString("/math/algebra/x2f8bb11595b61c86"))
	assert.False(t, khan.MatchString("/math/algebra"))
}
