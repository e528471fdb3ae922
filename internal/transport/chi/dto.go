package chi

import (
	"time"

	"github.com/kailas-cloud/lexcase/internal/domain/document"
	"github.com/kailas-cloud/lexcase/internal/domain/judgment"
	"github.com/kailas-cloud/lexcase/internal/domain/scoring"
	"github.com/kailas-cloud/lexcase/internal/usecase/generate"
	"github.com/kailas-cloud/lexcase/internal/usecase/retrieval"
)

// ErrorCode is the machine-readable error discriminator returned to clients.
type ErrorCode string

// Error codes.
const (
	CodeBadRequest            ErrorCode = "bad_request"
	CodeUnauthorized          ErrorCode = "unauthorized"
	CodeValidationFailed      ErrorCode = "validation_failed"
	CodeScoresRequired        ErrorCode = "criminal_scores_required"
	CodeNotFound              ErrorCode = "not_found"
	CodeGenerationTimeout     ErrorCode = "generation_timeout"
	CodeGenerationUnavailable ErrorCode = "generation_unavailable"
	CodeJournalDisabled       ErrorCode = "journal_disabled"
	CodeInternalError         ErrorCode = "internal_error"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// EvidenceItem is one piece of submitted evidence.
type EvidenceItem struct {
	Name    string `json:"name"`
	Content string `json:"content"`
}

// GenerateRequest is the body of POST /api/v1/generate.
type GenerateRequest struct {
	Narrative      string         `json:"narrative"`
	CaseType       string         `json:"case_type"`
	Evidence       []EvidenceItem `json:"evidence"`
	CriminalScores *scoring.Axes  `json:"criminal_scores"`
}

// GenerateResponse carries the normalized ruling and the material it cites.
type GenerateResponse struct {
	ID              string              `json:"id"`
	Ruling          string              `json:"ruling"`
	UsedLaws        []DocumentResponse  `json:"used_laws"`
	UsedPrecedents  []DocumentResponse  `json:"used_precedents"`
	CriminalScoring *scoring.Assessment `json:"criminal_scoring"`
	Warnings        []string            `json:"warnings"`
}

// SearchRequest is the body of POST /api/v1/search.
type SearchRequest struct {
	Query          string `json:"query"`
	TopKLaws       *int   `json:"top_k_laws,omitempty"`
	TopKPrecedents *int   `json:"top_k_precedents,omitempty"`
}

// SearchResponse lists matches per collection, best first.
type SearchResponse struct {
	Laws       []DocumentResponse `json:"laws"`
	Precedents []DocumentResponse `json:"precedents"`
}

// MetaResponse is the kind-specific metadata. Statutes fill Source,
// precedents fill the court fields.
type MetaResponse struct {
	Source  string   `json:"source,omitempty"`
	Chamber string   `json:"chamber,omitempty"`
	Date    string   `json:"date,omitempty"`
	EK      string   `json:"ek,omitempty"`
	KK      string   `json:"kk,omitempty"`
	Tags    []string `json:"tags,omitempty"`
	Demo    bool     `json:"demo"`
}

// DocumentResponse is a corpus document as returned by the API.
type DocumentResponse struct {
	ID    string       `json:"id"`
	Kind  string       `json:"kind"`
	Title string       `json:"title"`
	Text  string       `json:"text"`
	Score *float64     `json:"score,omitempty"`
	Meta  MetaResponse `json:"meta"`
}

// RulingResponse is one journal entry.
type RulingResponse struct {
	ID              string              `json:"id"`
	CreatedAt       time.Time           `json:"created_at"`
	Model           string              `json:"model"`
	CaseType        string              `json:"case_type"`
	Narrative       string              `json:"narrative"`
	Ruling          string              `json:"ruling"`
	LawIDs          []string            `json:"law_ids"`
	PrecedentIDs    []string            `json:"precedent_ids"`
	CriminalScoring *scoring.Assessment `json:"criminal_scoring,omitempty"`
	Warnings        []string            `json:"warnings"`
}

// RulingListResponse wraps the most recent journal entries.
type RulingListResponse struct {
	Items []RulingResponse `json:"items"`
	Count int              `json:"count"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

func documentToResponse(d *document.Document) DocumentResponse {
	resp := DocumentResponse{
		ID:    d.ID(),
		Kind:  string(d.Kind()),
		Title: d.Title(),
		Text:  d.Text(),
		Meta:  MetaResponse{Demo: d.IsDemo()},
	}
	if m, ok := d.Statute(); ok {
		resp.Meta.Source = m.Source()
	}
	if m, ok := d.Precedent(); ok {
		resp.Meta.Chamber = m.Chamber()
		resp.Meta.Date = m.Date()
		resp.Meta.EK = m.CaseNumberE()
		resp.Meta.KK = m.CaseNumberK()
		resp.Meta.Tags = m.Tags()
	}
	return resp
}

func documentsToResponse(docs []*document.Document) []DocumentResponse {
	out := make([]DocumentResponse, len(docs))
	for i, d := range docs {
		out[i] = documentToResponse(d)
	}
	return out
}

func hitsToResponse(hits []retrieval.Hit) []DocumentResponse {
	out := make([]DocumentResponse, len(hits))
	for i, h := range hits {
		out[i] = documentToResponse(h.Document)
		score := h.Score
		out[i].Score = &score
	}
	return out
}

func generateResultToResponse(res *generate.Result) GenerateResponse {
	warnings := res.Warnings
	if warnings == nil {
		warnings = []string{}
	}
	return GenerateResponse{
		ID:              res.ID,
		Ruling:          res.Ruling,
		UsedLaws:        documentsToResponse(res.UsedLaws),
		UsedPrecedents:  documentsToResponse(res.UsedPrecedents),
		CriminalScoring: res.CriminalScoring,
		Warnings:        warnings,
	}
}

func recordToResponse(rec *judgment.Record) RulingResponse {
	return RulingResponse{
		ID:              rec.ID,
		CreatedAt:       rec.CreatedAt,
		Model:           rec.Model,
		CaseType:        string(rec.CaseType),
		Narrative:       rec.Narrative,
		Ruling:          rec.Ruling,
		LawIDs:          nonNil(rec.LawIDs),
		PrecedentIDs:    nonNil(rec.PrecedentIDs),
		CriminalScoring: rec.Assessment,
		Warnings:        nonNil(rec.Warnings),
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
