package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/jonathan/curriculum-coverage/internal/curriculum"
	"github.com/jonathan/curriculum-coverage/internal/db"
	"github.com/jonathan/curriculum-coverage/internal/logging"
	"github.com/jonathan/curriculum-coverage/internal/matching"
	"github.com/jonathan/curriculum-coverage/internal/metrics"
	"github.com/jonathan/curriculum-coverage/internal/pipeline"
	"github.com/jonathan/curriculum-coverage/internal/schemas"
	"github.com/jonathan/curriculum-coverage/internal/types"
)

// maxBodyBytes caps request bodies; a large curriculum is well under this
const maxBodyBytes = 8 << 20

// coverageEnvelope keeps the two documents raw so they can be schema-checked
// exactly as the CLI checks files.
type coverageEnvelope struct {
	Label      string          `json:"label"`
	Curriculum json.RawMessage `json:"curriculum"`
	Content    json.RawMessage `json:"content"`
	Threshold  *float64        `json:"threshold"`
}

func readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, &ErrValidation{Field: "body", Message: fmt.Sprintf("exceeds %d bytes", tooLarge.Limit)}
		}
		return nil, &ErrValidation{Field: "body", Message: "could not be read"}
	}
	return body, nil
}

// validationFromTags flattens validator errors into a single ErrValidation
func validationFromTags(err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return &ErrValidation{Field: fe.Field(), Message: fmt.Sprintf("failed '%s' check", fe.Tag())}
	}
	return &ErrValidation{Field: "body", Message: err.Error()}
}

// parseDocument schema-checks raw and decodes it
func parseDocument[T any](kind schemas.Kind, raw json.RawMessage, parse func([]byte) (*T, error)) (*T, error) {
	if len(raw) == 0 {
		return nil, &ErrValidation{Field: string(kind), Message: "is required"}
	}
	if err := schemas.ValidateDocument(kind, raw); err != nil {
		var verr *schemas.ValidationError
		if errors.As(err, &verr) {
			return nil, &ErrValidation{Field: string(kind), Message: verr.Error()}
		}
		return nil, err
	}
	doc, err := parse(raw)
	if err != nil {
		return nil, &ErrValidation{Field: string(kind), Message: err.Error()}
	}
	return doc, nil
}

// handleCoverage computes a coverage report for the posted documents
func (s *Server) handleCoverage(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(w, r)
	if err != nil {
		s.handleError(w, err)
		return
	}

	var envelope coverageEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	curriculumDoc, err := parseDocument(schemas.KindCurriculum, envelope.Curriculum, curriculum.ParseCurriculum)
	if err != nil {
		s.handleError(w, err)
		return
	}
	contentDoc, err := parseDocument(schemas.KindContent, envelope.Content, curriculum.ParseContent)
	if err != nil {
		s.handleError(w, err)
		return
	}

	req := types.CoverageRequest{
		Label:      envelope.Label,
		Curriculum: *curriculumDoc,
		Content:    *contentDoc,
		Threshold:  envelope.Threshold,
	}
	if err := req.Validate(); err != nil {
		s.handleError(w, validationFromTags(err))
		return
	}

	threshold := s.threshold
	if req.Threshold != nil {
		threshold = *req.Threshold
	}

	report := pipeline.Analyze(req.Curriculum.Map(), req.Content.Content, threshold, s.workers, db.SourceAPI)
	resp := types.CoverageResponse{Report: report}

	if s.store != nil {
		run, err := s.store.SaveRun(r.Context(), db.RunInput{Label: req.Label, Source: db.SourceAPI, Report: report})
		metrics.RecordPersist(err)
		if err != nil {
			// The report is still useful without an id
			logging.Warn().Err(err).Msg("failed to persist coverage run")
		} else {
			resp.RunID = run.ID.String()
		}
	}

	s.jsonResponse(w, http.StatusOK, resp)
}

// handleMatch scores a single topic against the posted content items
func (s *Server) handleMatch(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(w, r)
	if err != nil {
		s.handleError(w, err)
		return
	}

	var req types.MatchRequest
	if err := json.Unmarshal(body, &req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		s.handleError(w, validationFromTags(err))
		return
	}

	threshold := s.threshold
	if req.Threshold != nil {
		threshold = *req.Threshold
	}

	items := req.Content
	if req.Subject != "" {
		items = matching.GroupBySubject(req.Content)[req.Subject]
	}

	result := matching.MatchTopic(req.Topic, items, threshold)
	s.jsonResponse(w, http.StatusOK, types.MatchResponse{
		Topic:     result.Topic,
		Candidate: result.Candidate,
		Score:     result.Score,
		Matched:   result.Matched,
		Threshold: threshold,
	})
}

// handleListReports lists recent stored runs without their report bodies
func (s *Server) handleListReports(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		s.handleError(w, &ErrStoreUnavailable{})
		return
	}

	filters := db.RunFilters{
		Label:  r.URL.Query().Get("label"),
		Source: r.URL.Query().Get("source"),
	}
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		limit, err := strconv.Atoi(limitStr)
		if err != nil || limit < 1 {
			s.handleError(w, &ErrValidation{Field: "limit", Message: "must be a positive integer"})
			return
		}
		filters.Limit = min(limit, db.MaxListLimit)
	}

	runs, err := s.store.ListRuns(r.Context(), filters)
	if err != nil {
		s.handleError(w, fmt.Errorf("failed to list runs: %w", err))
		return
	}
	if runs == nil {
		runs = []db.CoverageRun{}
	}

	s.jsonResponse(w, http.StatusOK, map[string]any{
		"runs":  runs,
		"count": len(runs),
	})
}

// handleGetReport returns one stored run with its full report
func (s *Server) handleGetReport(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		s.handleError(w, &ErrStoreUnavailable{})
		return
	}

	runID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		s.handleError(w, &ErrValidation{Field: "id", Message: "invalid run ID"})
		return
	}

	run, err := s.store.GetRun(r.Context(), runID)
	if err != nil {
		s.handleError(w, fmt.Errorf("failed to get run: %w", err))
		return
	}
	if run == nil {
		s.handleError(w, &ErrReportNotFound{RunID: runID})
		return
	}

	s.jsonResponse(w, http.StatusOK, run)
}
