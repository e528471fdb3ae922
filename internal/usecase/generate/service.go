// Package generate runs one reasoned-ruling generation: retrieval, scoring,
// prompt composition, the model call and output shaping.
package generate

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kailas-cloud/lexcase/internal/domain"
	"github.com/kailas-cloud/lexcase/internal/domain/casefile"
	"github.com/kailas-cloud/lexcase/internal/domain/document"
	"github.com/kailas-cloud/lexcase/internal/domain/judgment"
	"github.com/kailas-cloud/lexcase/internal/domain/scoring"
	"github.com/kailas-cloud/lexcase/internal/logger"
	"github.com/kailas-cloud/lexcase/internal/usecase/prompt"
	"github.com/kailas-cloud/lexcase/internal/usecase/ruling"
)

// Default retrieval depth per collection.
const (
	DefaultTopKLaws       = 10
	DefaultTopKPrecedents = 10
)

// Result is one generated ruling with the material it was built from.
type Result struct {
	ID              string
	Ruling          string
	UsedLaws        []*document.Document
	UsedPrecedents  []*document.Document
	CriminalScoring *scoring.Assessment
	Warnings        []string
}

// Service orchestrates ruling generation.
type Service struct {
	retriever      Retriever
	generator      Generator
	journal        Journal
	topKLaws       int
	topKPrecedents int
	now            func() time.Time
}

// New creates a generation service. journal can be nil.
func New(retriever Retriever, generator Generator, journal Journal) *Service {
	return &Service{
		retriever:      retriever,
		generator:      generator,
		journal:        journal,
		topKLaws:       DefaultTopKLaws,
		topKPrecedents: DefaultTopKPrecedents,
		now:            time.Now,
	}
}

// WithTopK configures retrieval depth. Non-positive values keep the defaults.
func (s *Service) WithTopK(laws, precedents int) *Service {
	if laws > 0 {
		s.topKLaws = laws
	}
	if precedents > 0 {
		s.topKPrecedents = precedents
	}
	return s
}

// Generate produces a reasoned ruling for c. Generation errors are returned
// wrapped so that domain.ErrGenerationTimeout and domain.ErrGenerationUnavailable
// stay distinguishable. A journal failure is logged and does not fail the call.
func (s *Service) Generate(ctx context.Context, c casefile.Case) (*Result, error) {
	laws, precedents := s.retriever.Search(c.Query(), s.topKLaws, s.topKPrecedents)

	var assessment *scoring.Assessment
	if axes, ok := c.Scores(); ok && c.Type() == casefile.Criminal {
		a := scoring.Score(axes)
		assessment = &a
	}

	text := prompt.Compose(prompt.Input{
		Case:       c,
		Laws:       laws,
		Precedents: precedents,
		Assessment: assessment,
	})

	raw, err := s.generator.Generate(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("generate ruling: %w", err)
	}

	id := uuid.NewString()
	ctx = logger.With(ctx, zap.String("ruling_id", id))

	res := &Result{
		ID:              id,
		Ruling:          ruling.Normalize(raw, c.Type()),
		UsedLaws:        laws,
		UsedPrecedents:  precedents,
		CriminalScoring: assessment,
		Warnings:        ruling.Warnings(raw, laws, precedents),
	}

	if s.journal != nil {
		rec := &judgment.Record{
			ID:           res.ID,
			CreatedAt:    s.now(),
			Model:        s.generator.Model(),
			CaseType:     c.Type(),
			Narrative:    c.Narrative(),
			Ruling:       res.Ruling,
			LawIDs:       ids(laws),
			PrecedentIDs: ids(precedents),
			Assessment:   assessment,
			Warnings:     res.Warnings,
		}
		if err := s.journal.Save(ctx, rec); err != nil {
			logger.FromContext(ctx).Warn("Failed to journal ruling", zap.Error(err))
		}
	}

	return res, nil
}

// Get returns a journaled ruling.
func (s *Service) Get(ctx context.Context, id string) (*judgment.Record, error) {
	if s.journal == nil {
		return nil, domain.ErrJournalDisabled
	}
	rec, err := s.journal.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get ruling: %w", err)
	}
	return rec, nil
}

// List returns the most recent journaled rulings.
func (s *Service) List(ctx context.Context, limit int) ([]*judgment.Record, error) {
	if s.journal == nil {
		return nil, domain.ErrJournalDisabled
	}
	recs, err := s.journal.List(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("list rulings: %w", err)
	}
	return recs, nil
}

func ids(docs []*document.Document) []string {
	out := make([]string, len(docs))
	for i, d := range docs {
		out[i] = d.ID()
	}
	return out
}
