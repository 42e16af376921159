package matching

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/curriculum-coverage/internal/types"
)

func TestComputeCoverage_ExactMatch(t *testing.T) {
	curriculum := types.CurriculumMap{"Mathematics": {"Quadratic Equations"}}
	content := []types.ContentItem{{Subject: "Mathematics", Topic: "Quadratic Equations"}}

	report := ComputeCoverage(curriculum, content, WithThreshold(0.5))

	maths := report.PerSubject["Mathematics"]
	assert.Equal(t, 1, maths.TopicCount)
	assert.Equal(t, 1, maths.MatchedCount)
	assert.Equal(t, 100.0, maths.CoveragePct)
	assert.Empty(t, maths.UnmatchedTopics)
	require.Len(t, maths.MatchedTopics, 1)
	assert.Equal(t, types.TopicMatch{Topic: "Quadratic Equations", Candidate: "Quadratic Equations", Score: 1.0}, maths.MatchedTopics[0])
}

func TestComputeCoverage_UnrelatedContent(t *testing.T) {
	curriculum := types.CurriculumMap{"Mathematics": {"Quadratic Equations"}}
	content := []types.ContentItem{{Subject: "Mathematics", Topic: "Organic Chemistry"}}

	report := ComputeCoverage(curriculum, content)

	maths := report.PerSubject["Mathematics"]
	assert.Equal(t, 0, maths.MatchedCount)
	assert.Equal(t, []string{"Quadratic Equations"}, maths.UnmatchedTopics)
	assert.Equal(t, 0.0, maths.CoveragePct)
}

func TestComputeCoverage_NoContent(t *testing.T) {
	curriculum := types.CurriculumMap{"Physics": {"Ohm's Law"}}

	report := ComputeCoverage(curriculum, nil)

	physics := report.PerSubject["Physics"]
	assert.Equal(t, 0.0, physics.CoveragePct)
	assert.Equal(t, 0, physics.MatchedCount)
	assert.Equal(t, []string{"Ohm's Law"}, physics.UnmatchedTopics)
	assert.Equal(t, 0.0, report.Overall.OverallPct)
}

func TestComputeCoverage_TitleFallback(t *testing.T) {
	curriculum := types.CurriculumMap{"Physics": {"Ohm's Law"}}
	content := []types.ContentItem{{Subject: "Physics", Title: "Ohm's Law Basics"}}

	report := ComputeCoverage(curriculum, content, WithThreshold(0.5))

	physics := report.PerSubject["Physics"]
	assert.Equal(t, 1, physics.MatchedCount)
	require.Len(t, physics.MatchedTopics, 1)
	assert.Equal(t, "Ohm's Law Basics", physics.MatchedTopics[0].Candidate)
	assert.InDelta(t, 0.75, physics.MatchedTopics[0].Score, 1e-9)
}

func TestComputeCoverage_TopicPreferredOverTitle(t *testing.T) {
	curriculum := types.CurriculumMap{"Physics": {"Ohm's Law"}}
	content := []types.ContentItem{{Subject: "Physics", Topic: "Kinematics", Title: "Ohm's Law"}}

	report := ComputeCoverage(curriculum, content)

	assert.Equal(t, 0, report.PerSubject["Physics"].MatchedCount)
}

func TestComputeCoverage_OverallWeightedByTopics(t *testing.T) {
	curriculum := types.CurriculumMap{
		"Biology":   {"Cells"},
		"Chemistry": {"Organic Chemistry", "Chemical Bonding", "Acids and Bases", "Electrolysis"},
	}
	content := []types.ContentItem{
		{Subject: "Biology", Topic: "Cells"},
		{Subject: "Chemistry", Topic: "Organic Chemistry"},
		{Subject: "Chemistry", Topic: "Chemical Bonding"},
	}

	report := ComputeCoverage(curriculum, content)

	assert.Equal(t, 100.0, report.PerSubject["Biology"].CoveragePct)
	assert.Equal(t, 50.0, report.PerSubject["Chemistry"].CoveragePct)
	assert.Equal(t, 5, report.Overall.TotalTopics)
	assert.Equal(t, 3, report.Overall.TotalMatched)
	// 3/5 = 60%, not the 75% average of subject percentages
	assert.Equal(t, 60.0, report.Overall.OverallPct)
}

func TestComputeCoverage_UnmappedSubjectsIgnored(t *testing.T) {
	curriculum := types.CurriculumMap{"Physics": {"Ohm's Law"}}
	content := []types.ContentItem{
		{Subject: "Economics", Topic: "Ohm's Law"},
		{Topic: "Ohm's Law"},
	}

	report := ComputeCoverage(curriculum, content)

	assert.Len(t, report.PerSubject, 1)
	assert.Equal(t, 0, report.PerSubject["Physics"].MatchedCount)
	assert.Equal(t, 1, report.Overall.TotalTopics)
}

func TestComputeCoverage_UnknownSubjectGroup(t *testing.T) {
	curriculum := types.CurriculumMap{types.UnknownSubject: {"Study Skills"}}
	content := []types.ContentItem{{Topic: "Study Skills"}}

	report := ComputeCoverage(curriculum, content)

	assert.Equal(t, 1, report.PerSubject[types.UnknownSubject].MatchedCount)
}

func TestComputeCoverage_SubjectKeysCaseSensitive(t *testing.T) {
	curriculum := types.CurriculumMap{"Physics": {"Ohm's Law"}}
	content := []types.ContentItem{{Subject: "physics", Topic: "Ohm's Law"}}

	report := ComputeCoverage(curriculum, content)

	assert.Equal(t, 0, report.PerSubject["Physics"].MatchedCount)
}

func TestComputeCoverage_DuplicateTopicsCountedSeparately(t *testing.T) {
	curriculum := types.CurriculumMap{"Biology": {"Cells", "Cells", "Genetics"}}
	content := []types.ContentItem{{Subject: "Biology", Topic: "Cells"}}

	report := ComputeCoverage(curriculum, content)

	biology := report.PerSubject["Biology"]
	assert.Equal(t, 3, biology.TopicCount)
	assert.Equal(t, 2, biology.MatchedCount)
	assert.Equal(t, []string{"Genetics"}, biology.UnmatchedTopics)
	assert.Equal(t, 66.7, biology.CoveragePct)
}

func TestComputeCoverage_TopicMatchedOnce(t *testing.T) {
	curriculum := types.CurriculumMap{"Mathematics": {"Quadratic Equations"}}
	content := []types.ContentItem{
		{Subject: "Mathematics", Topic: "Quadratic Equations"},
		{Subject: "Mathematics", Title: "Solving Quadratic Equations"},
		{Subject: "Mathematics", Title: "Quadratic Equations Revision"},
	}

	report := ComputeCoverage(curriculum, content)

	assert.Equal(t, 1, report.PerSubject["Mathematics"].MatchedCount)
	assert.Len(t, report.PerSubject["Mathematics"].MatchedTopics, 1)
}

func TestComputeCoverage_EmptyTopicNeverMatches(t *testing.T) {
	curriculum := types.CurriculumMap{"Art": {"", "???"}}
	content := []types.ContentItem{{Subject: "Art", Topic: ""}, {Subject: "Art", Title: "Colour Theory"}}

	for _, threshold := range []float64{0.0, 0.5, 1.0} {
		report := ComputeCoverage(curriculum, content, WithThreshold(threshold))
		assert.Equal(t, 0, report.PerSubject["Art"].MatchedCount, "threshold %v", threshold)
	}
}

func TestComputeCoverage_EmptySubject(t *testing.T) {
	curriculum := types.CurriculumMap{"Music": {}}

	report := ComputeCoverage(curriculum, []types.ContentItem{{Subject: "Music", Topic: "Scales"}})

	music := report.PerSubject["Music"]
	assert.Equal(t, 0, music.TopicCount)
	assert.Equal(t, 0.0, music.CoveragePct)
	assert.NotNil(t, music.UnmatchedTopics)
	assert.Equal(t, 0.0, report.Overall.OverallPct)
}

func TestComputeCoverage_UnmatchedFollowsCurriculumOrder(t *testing.T) {
	curriculum := types.CurriculumMap{"History": {"Zulu Kingdom", "Ancient Egypt", "Mali Empire", "Benin Bronzes"}}
	content := []types.ContentItem{{Subject: "History", Topic: "Mali Empire"}}

	report := ComputeCoverage(curriculum, content)

	assert.Equal(t, []string{"Zulu Kingdom", "Ancient Egypt", "Benin Bronzes"}, report.PerSubject["History"].UnmatchedTopics)
}

func TestComputeCoverage_ThresholdMonotonic(t *testing.T) {
	curriculum := types.CurriculumMap{
		"Mathematics": {"Quadratic Equations", "Linear Equations", "Number Bases", "Probability"},
		"Physics":     {"Ohm's Law", "Newton's Laws of Motion", "Waves"},
	}
	content := []types.ContentItem{
		{Subject: "Mathematics", Title: "Solving Quadratic Equations"},
		{Subject: "Mathematics", Topic: "Simultaneous Linear Equations in Two Variables"},
		{Subject: "Mathematics", Topic: "Probability"},
		{Subject: "Physics", Title: "Ohm's Law Basics"},
		{Subject: "Physics", Topic: "Laws of Motion"},
	}

	matchedSet := func(threshold float64) map[string]bool {
		report := ComputeCoverage(curriculum, content, WithThreshold(threshold))
		set := make(map[string]bool)
		for subject, sc := range report.PerSubject {
			for _, m := range sc.MatchedTopics {
				set[subject+"/"+m.Topic] = true
			}
		}
		return set
	}

	thresholds := []float64{0.0, 0.1, 0.25, 0.4, 0.5, 0.6, 0.75, 0.9, 1.0}
	for i := 1; i < len(thresholds); i++ {
		loose := matchedSet(thresholds[i-1])
		strict := matchedSet(thresholds[i])
		for topic := range strict {
			assert.True(t, loose[topic], "%s matched at %v but not at %v", topic, thresholds[i], thresholds[i-1])
		}
	}
}

func TestComputeCoverage_Idempotent(t *testing.T) {
	curriculum := types.CurriculumMap{
		"Mathematics": {"Quadratic Equations", "Number Bases"},
		"Physics":     {"Ohm's Law", "Waves"},
		"Biology":     {"Cells"},
	}
	content := []types.ContentItem{
		{Subject: "Mathematics", Topic: "Quadratic Equations"},
		{Subject: "Physics", Title: "Ohm's Law Basics"},
		{Subject: "Biology", Topic: "Cell Structure"},
	}

	first, err := json.Marshal(ComputeCoverage(curriculum, content))
	require.NoError(t, err)
	second, err := json.Marshal(ComputeCoverage(curriculum, content))
	require.NoError(t, err)

	assert.Equal(t, string(first), string(second))
}

func TestComputeCoverage_WorkersMatchSequential(t *testing.T) {
	curriculum := types.CurriculumMap{}
	var content []types.ContentItem
	subjects := []string{"Agriculture", "Biology", "Chemistry", "Civic Education", "Economics", "Geography", "Government", "Physics"}
	for _, s := range subjects {
		curriculum[s] = []string{s + " Basics", "Advanced " + s, "Unrelated Topic"}
		content = append(content, types.ContentItem{Subject: s, Title: "Introduction to " + s + " Basics"})
	}

	sequential, err := json.Marshal(ComputeCoverage(curriculum, content))
	require.NoError(t, err)
	parallel, err := json.Marshal(ComputeCoverage(curriculum, content, WithWorkers(4)))
	require.NoError(t, err)

	assert.Equal(t, string(sequential), string(parallel))
}

func TestComputeCoverage_DoesNotMutateInputs(t *testing.T) {
	curriculum := types.CurriculumMap{"Physics": {"Ohm's Law", "Waves"}}
	content := []types.ContentItem{{Subject: "Physics", Title: "Ohm's Law Basics"}}

	ComputeCoverage(curriculum, content, WithWorkers(2))

	assert.Equal(t, types.CurriculumMap{"Physics": {"Ohm's Law", "Waves"}}, curriculum)
	assert.Equal(t, []types.ContentItem{{Subject: "Physics", Title: "Ohm's Law Basics"}}, content)
}

func TestComputeCoverage_CoveragePctBounds(t *testing.T) {
	curriculum := types.CurriculumMap{
		"A": {"one", "two", "three"},
		"B": {"four"},
		"C": {},
	}
	content := []types.ContentItem{{Subject: "A", Topic: "one"}, {Subject: "B", Topic: "four"}}

	report := ComputeCoverage(curriculum, content)
	for subject, sc := range report.PerSubject {
		assert.GreaterOrEqual(t, sc.CoveragePct, 0.0, subject)
		assert.LessOrEqual(t, sc.CoveragePct, 100.0, subject)
	}
	assert.Equal(t, 33.3, report.PerSubject["A"].CoveragePct)
	assert.Equal(t, 100.0, report.PerSubject["B"].CoveragePct)
	assert.Equal(t, 0.0, report.PerSubject["C"].CoveragePct)
	assert.Equal(t, 50.0, report.Overall.OverallPct)
}

func TestComputeCoverage_DefaultThresholdRecorded(t *testing.T) {
	report := ComputeCoverage(types.CurriculumMap{}, nil)
	assert.Equal(t, DefaultThreshold, report.Threshold)
	assert.Empty(t, report.PerSubject)
	assert.Equal(t, 0.0, report.Overall.OverallPct)
}

func TestMatchTopic(t *testing.T) {
	items := []types.ContentItem{
		{Title: "Organic Chemistry"},
		{Title: "Solving Quadratic Equations"},
		{Topic: "Quadratic Equations"},
	}

	res := MatchTopic("Quadratic Equations", items, 0.5)
	assert.True(t, res.Matched)
	assert.Equal(t, "Quadratic Equations", res.Candidate)
	assert.Equal(t, 1.0, res.Score)

	none := MatchTopic("Quadratic Equations", nil, 0.0)
	assert.False(t, none.Matched)
	assert.Equal(t, 0.0, none.Score)
	assert.Equal(t, "", none.Candidate)
}

func TestMatchTopic_FirstBestWins(t *testing.T) {
	items := []types.ContentItem{{Title: "Cells Overview"}, {Title: "Overview Cells"}}
	res := MatchTopic("Cells", items, 0.5)
	assert.Equal(t, "Cells Overview", res.Candidate)
	assert.Equal(t, 0.5, res.Score)
	assert.True(t, res.Matched)
}

func TestPercent(t *testing.T) {
	tests := []struct {
		matched, total int
		expected       float64
	}{
		{0, 0, 0.0},
		{0, 5, 0.0},
		{1, 3, 33.3},
		{2, 3, 66.7},
		{1, 16, 6.2}, // 6.25 is an exact tie and rounds to even
		{3, 16, 18.8},
		{5, 5, 100.0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, Percent(tt.matched, tt.total), "%d/%d", tt.matched, tt.total)
	}
}

func TestGroupBySubject(t *testing.T) {
	items := []types.ContentItem{
		{Subject: "Physics", Topic: "Waves"},
		{Topic: "Orphan"},
		{Subject: "Physics", Topic: "Optics"},
	}

	groups := GroupBySubject(items)
	require.Len(t, groups, 2)
	assert.Equal(t, "Waves", groups["Physics"][0].Topic)
	assert.Equal(t, "Optics", groups["Physics"][1].Topic)
	assert.Len(t, groups[types.UnknownSubject], 1)
}
