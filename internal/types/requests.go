package types

import (
	"github.com/go-playground/validator/v10"
)

// CoverageRequest is the body of a coverage computation request.
type CoverageRequest struct {
	Label      string             `json:"label,omitempty" validate:"max=200"`
	Curriculum CurriculumDocument `json:"curriculum"`
	Content    ContentDocument    `json:"content"`
	Threshold  *float64           `json:"threshold,omitempty" validate:"omitempty,gte=0,lte=1"`
}

// coverageRequestShape carries the required top-level keys for validation;
// the documents themselves have no validation tags.
type coverageRequestShape struct {
	Subjects map[string]CurriculumSubject `validate:"required"`
	Content  []ContentItem                `validate:"required"`
}

// Validate checks the request shape and threshold range.
func (r *CoverageRequest) Validate() error {
	validate := validator.New()
	if err := validate.Struct(r); err != nil {
		return err
	}
	return validate.Struct(coverageRequestShape{
		Subjects: r.Curriculum.Subjects,
		Content:  r.Content.Content,
	})
}

// CoverageResponse wraps a computed report with the id of the stored run, if any.
type CoverageResponse struct {
	RunID  string          `json:"run_id,omitempty"`
	Report *CoverageReport `json:"report"`
}

// MatchRequest asks for the best content match of a single topic.
type MatchRequest struct {
	Topic string `json:"topic" validate:"required"`
	// Subject restricts the candidates to items of that subject when set.
	Subject   string        `json:"subject,omitempty"`
	Content   []ContentItem `json:"content" validate:"required"`
	Threshold *float64      `json:"threshold,omitempty" validate:"omitempty,gte=0,lte=1"`
}

// Validate validates the MatchRequest using the validator.
func (r *MatchRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}

// MatchResponse reports the best candidate for a topic.
type MatchResponse struct {
	Topic     string  `json:"topic"`
	Candidate string  `json:"candidate"`
	Score     float64 `json:"score"`
	Matched   bool    `json:"matched"`
	Threshold float64 `json:"threshold"`
}
