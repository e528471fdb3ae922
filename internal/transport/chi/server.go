package chi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	gochi "github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/lexcase/internal/domain"
	"github.com/kailas-cloud/lexcase/internal/domain/casefile"
	"github.com/kailas-cloud/lexcase/internal/domain/document"
	"github.com/kailas-cloud/lexcase/internal/domain/scoring"
	generateuc "github.com/kailas-cloud/lexcase/internal/usecase/generate"
	healthuc "github.com/kailas-cloud/lexcase/internal/usecase/health"
	"github.com/kailas-cloud/lexcase/internal/usecase/retrieval"
)

// Request bounds.
const (
	maxTopK        = 100
	maxListLimit   = 100
	maxRequestBody = 1 << 20
)

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server serves the lexcase HTTP API.
type Server struct {
	generate       *generateuc.Service
	retrieval      *retrieval.Service
	health         *healthuc.Service
	topKLaws       int
	topKPrecedents int
	logger         *zap.Logger
	errorHandlers  []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(
	generate *generateuc.Service,
	retrieval *retrieval.Service,
	health *healthuc.Service,
	logger *zap.Logger,
) *Server {
	s := &Server{
		generate:       generate,
		retrieval:      retrieval,
		health:         health,
		topKLaws:       generateuc.DefaultTopKLaws,
		topKPrecedents: generateuc.DefaultTopKPrecedents,
		logger:         logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrScoresRequired, http.StatusBadRequest, CodeScoresRequired),
		sentinelHandler(domain.ErrInvalidRequest, http.StatusBadRequest, CodeValidationFailed),
		sentinelHandler(domain.ErrNotFound, http.StatusNotFound, CodeNotFound),
		sentinelHandler(domain.ErrGenerationTimeout, http.StatusGatewayTimeout, CodeGenerationTimeout),
		sentinelHandler(domain.ErrGenerationUnavailable, http.StatusBadGateway, CodeGenerationUnavailable),
		sentinelHandler(domain.ErrJournalDisabled, http.StatusNotImplemented, CodeJournalDisabled),
	}
	return s
}

// WithTopK sets the search depth used when a search request omits it.
// Non-positive values keep the defaults.
func (s *Server) WithTopK(laws, precedents int) *Server {
	if laws > 0 {
		s.topKLaws = laws
	}
	if precedents > 0 {
		s.topKPrecedents = precedents
	}
	return s
}

// Register mounts all routes on r.
func (s *Server) Register(r gochi.Router) {
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)

	r.Route("/api/v1", func(r gochi.Router) {
		r.Post("/generate", s.GenerateRuling)
		r.Post("/search", s.SearchSources)
		r.Post("/score", s.ScoreCriminal)
		r.Get("/rulings", s.ListRulings)
		r.Get("/rulings/{id}", s.GetRuling)
		r.Get("/corpus", s.CorpusStats)
		r.Get("/documents/{kind}/{id}", s.GetDocument)
	})

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, CodeNotFound, "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, CodeBadRequest, "method not allowed")
	})
}

// GenerateRuling handles POST /api/v1/generate.
func (s *Server) GenerateRuling(w http.ResponseWriter, r *http.Request) {
	var req GenerateRequest
	if !decodeBody(w, r, &req) {
		return
	}

	evidence := make([]casefile.Evidence, len(req.Evidence))
	for i, ev := range req.Evidence {
		evidence[i] = casefile.Evidence{Name: ev.Name, Content: ev.Content}
	}

	c, err := casefile.New(req.Narrative, casefile.Type(req.CaseType), evidence, req.CriminalScores)
	if err != nil {
		writeValidationError(w, err)
		return
	}

	res, err := s.generate.Generate(r.Context(), c)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, generateResultToResponse(res))
}

// SearchSources handles POST /api/v1/search.
func (s *Server) SearchSources(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if !decodeBody(w, r, &req) {
		return
	}

	topKLaws, err := topK(req.TopKLaws, s.topKLaws, "top_k_laws")
	if err != nil {
		writeError(w, http.StatusBadRequest, CodeValidationFailed, err.Error())
		return
	}
	topKPrecedents, err := topK(req.TopKPrecedents, s.topKPrecedents, "top_k_precedents")
	if err != nil {
		writeError(w, http.StatusBadRequest, CodeValidationFailed, err.Error())
		return
	}

	laws, precedents := s.retrieval.SearchScored(req.Query, topKLaws, topKPrecedents)
	writeJSON(w, http.StatusOK, SearchResponse{
		Laws:       hitsToResponse(laws),
		Precedents: hitsToResponse(precedents),
	})
}

// ScoreCriminal handles POST /api/v1/score.
func (s *Server) ScoreCriminal(w http.ResponseWriter, r *http.Request) {
	var axes scoring.Axes
	if !decodeBody(w, r, &axes) {
		return
	}
	if !axes.InRange() {
		writeError(w, http.StatusBadRequest, CodeValidationFailed,
			fmt.Sprintf("every score must be between %d and %d", scoring.MinAxis, scoring.MaxAxis))
		return
	}
	writeJSON(w, http.StatusOK, scoring.Score(axes))
}

// ListRulings handles GET /api/v1/rulings.
func (s *Server) ListRulings(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 || n > maxListLimit {
			writeError(w, http.StatusBadRequest, CodeValidationFailed,
				fmt.Sprintf("limit must be an integer between 1 and %d", maxListLimit))
			return
		}
		limit = n
	}

	recs, err := s.generate.List(r.Context(), limit)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	items := make([]RulingResponse, len(recs))
	for i, rec := range recs {
		items[i] = recordToResponse(rec)
	}
	writeJSON(w, http.StatusOK, RulingListResponse{Items: items, Count: len(items)})
}

// GetRuling handles GET /api/v1/rulings/{id}.
func (s *Server) GetRuling(w http.ResponseWriter, r *http.Request) {
	rec, err := s.generate.Get(r.Context(), gochi.URLParam(r, "id"))
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, recordToResponse(rec))
}

// CorpusStats handles GET /api/v1/corpus.
func (s *Server) CorpusStats(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.retrieval.Stats())
}

// GetDocument handles GET /api/v1/documents/{kind}/{id}.
func (s *Server) GetDocument(w http.ResponseWriter, r *http.Request) {
	kind, err := document.ParseKind(gochi.URLParam(r, "kind"))
	if err != nil {
		writeError(w, http.StatusBadRequest, CodeValidationFailed, err.Error())
		return
	}
	d, ok := s.retrieval.Get(kind, gochi.URLParam(r, "id"))
	if !ok {
		writeError(w, http.StatusNotFound, CodeNotFound, "document not found")
		return
	}
	writeJSON(w, http.StatusOK, documentToResponse(d))
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status == healthuc.Unhealthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, HealthResponse{
		Status: string(report.Status),
		Checks: checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
		return false
	}
	return true
}

func topK(p *int, def int, name string) (int, error) {
	if p == nil {
		return def, nil
	}
	if *p <= 0 || *p > maxTopK {
		return 0, fmt.Errorf("%s must be between 1 and %d", name, maxTopK)
	}
	return *p, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorCode, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}

// writeValidationError reports a rejected case file. Validation messages
// carry no internals, so they are returned verbatim.
func writeValidationError(w http.ResponseWriter, err error) {
	code := CodeValidationFailed
	if errors.Is(err, domain.ErrScoresRequired) {
		code = CodeScoresRequired
	}
	writeError(w, http.StatusBadRequest, code, err.Error())
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrScoresRequired,
		domain.ErrInvalidRequest,
		domain.ErrNotFound,
		domain.ErrGenerationTimeout,
		domain.ErrGenerationUnavailable,
		domain.ErrJournalDisabled,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code ErrorCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.logger.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, CodeInternalError, "internal error")
}
