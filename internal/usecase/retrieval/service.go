package retrieval

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/lexcase/internal/domain/document"
	"github.com/kailas-cloud/lexcase/internal/lexical"
	"github.com/kailas-cloud/lexcase/internal/metrics"
)

// Reference tuning. None of these were derived from a relevance benchmark.
const (
	DefaultRelevanceFloor       = 0.04
	DefaultLawMaxFeatures       = 60000
	DefaultPrecedentMaxFeatures = 80000
)

// Config holds the index and ranking parameters.
type Config struct {
	RelevanceFloor       float64
	LawMaxFeatures       int
	PrecedentMaxFeatures int
}

// DefaultConfig returns the reference parameters.
func DefaultConfig() Config {
	return Config{
		RelevanceFloor:       DefaultRelevanceFloor,
		LawMaxFeatures:       DefaultLawMaxFeatures,
		PrecedentMaxFeatures: DefaultPrecedentMaxFeatures,
	}
}

// Hit is a retrieved document with its cosine similarity.
// Document points into the service's immutable collection.
type Hit struct {
	Document *document.Document
	Score    float64
}

// CollectionStats describes one indexed collection.
type CollectionStats struct {
	Documents      int  `json:"documents"`
	Vocabulary     int  `json:"vocabulary"`
	DemoDocuments  int  `json:"demo_documents"`
	VocabularyCap  int  `json:"vocabulary_cap"`
	IndexAvailable bool `json:"index_available"`
}

// Stats describes both collections.
type Stats struct {
	Laws           CollectionStats `json:"laws"`
	Precedents     CollectionStats `json:"precedents"`
	RelevanceFloor float64         `json:"relevance_floor"`
}

type collection struct {
	kind        document.Kind
	docs        []document.Document
	byID        map[string]int
	index       *lexical.Index // nil when the collection is empty
	maxFeatures int
}

// Service ranks statutes and precedents against free-text queries.
// It is read-only after construction and safe for concurrent use.
type Service struct {
	laws       collection
	precedents collection
	floor      float64
	logger     *zap.Logger
}

// Open loads both collections from src and builds their indices.
func Open(ctx context.Context, src Source, cfg Config, logger *zap.Logger) (*Service, error) {
	laws, err := src.Load(ctx, document.KindLaw)
	if err != nil {
		return nil, fmt.Errorf("load statutes: %w", err)
	}
	precedents, err := src.Load(ctx, document.KindPrecedent)
	if err != nil {
		return nil, fmt.Errorf("load precedents: %w", err)
	}
	return New(laws, precedents, cfg, logger), nil
}

// New builds the indices over already loaded collections.
// The slices are retained and must not be modified afterwards.
func New(laws, precedents []document.Document, cfg Config, logger *zap.Logger) *Service {
	s := &Service{floor: cfg.RelevanceFloor, logger: logger}
	s.laws = s.build(document.KindLaw, laws, cfg.LawMaxFeatures)
	s.precedents = s.build(document.KindPrecedent, precedents, cfg.PrecedentMaxFeatures)
	return s
}

func (s *Service) build(kind document.Kind, docs []document.Document, maxFeatures int) collection {
	c := collection{kind: kind, docs: docs, maxFeatures: maxFeatures, byID: make(map[string]int, len(docs))}
	for i := range docs {
		c.byID[docs[i].ID()] = i
	}
	metrics.CorpusDocuments.WithLabelValues(string(kind)).Set(float64(len(docs)))

	if len(docs) == 0 {
		s.logger.Warn("Collection is empty, queries will return no matches", zap.String("collection", string(kind)))
		return c
	}

	start := time.Now()
	texts := make([]string, len(docs))
	for i := range docs {
		texts[i] = docs[i].Text()
	}
	c.index = lexical.Build(texts, maxFeatures)

	if c.index.VocabularySize() == 0 {
		s.logger.Warn("Collection has no indexable terms, queries will return no matches",
			zap.String("collection", string(kind)), zap.Int("documents", len(docs)))
	}
	s.logger.Info("Collection indexed",
		zap.String("collection", string(kind)),
		zap.Int("documents", len(docs)),
		zap.Int("vocabulary", c.index.VocabularySize()),
		zap.Duration("took", time.Since(start)),
	)
	return c
}

// Search returns up to topKLaws statutes and topKPrecedents precedents, most similar first.
func (s *Service) Search(query string, topKLaws, topKPrecedents int) (laws, precedents []*document.Document) {
	lawHits, precHits := s.SearchScored(query, topKLaws, topKPrecedents)
	return documentsOf(lawHits), documentsOf(precHits)
}

// SearchScored is Search with similarities attached.
func (s *Service) SearchScored(query string, topKLaws, topKPrecedents int) (laws, precedents []Hit) {
	return s.search(&s.laws, query, topKLaws), s.search(&s.precedents, query, topKPrecedents)
}

func (s *Service) search(c *collection, query string, topK int) []Hit {
	if c.index == nil {
		metrics.RetrievalResults.WithLabelValues(string(c.kind)).Observe(0)
		return nil
	}

	start := time.Now()
	ranked := c.index.Search(query, topK, s.floor)
	metrics.RetrievalSearchDuration.WithLabelValues(string(c.kind)).Observe(time.Since(start).Seconds())
	metrics.RetrievalResults.WithLabelValues(string(c.kind)).Observe(float64(len(ranked)))

	if len(ranked) == 0 {
		return nil
	}
	hits := make([]Hit, len(ranked))
	for i, h := range ranked {
		hits[i] = Hit{Document: &c.docs[h.Doc], Score: h.Score}
	}
	return hits
}

// Get returns a document by kind and id.
func (s *Service) Get(kind document.Kind, id string) (*document.Document, bool) {
	c := &s.laws
	if kind == document.KindPrecedent {
		c = &s.precedents
	}
	i, ok := c.byID[id]
	if !ok {
		return nil, false
	}
	return &c.docs[i], true
}

// Ready reports whether at least one collection has documents.
func (s *Service) Ready() bool {
	return len(s.laws.docs) > 0 || len(s.precedents.docs) > 0
}

// Stats describes both collections.
func (s *Service) Stats() Stats {
	return Stats{
		Laws:           s.laws.stats(),
		Precedents:     s.precedents.stats(),
		RelevanceFloor: s.floor,
	}
}

// Close releases nothing; the indices live in memory for the process lifetime.
func (s *Service) Close() error { return nil }

func (c *collection) stats() CollectionStats {
	st := CollectionStats{Documents: len(c.docs), VocabularyCap: c.maxFeatures, IndexAvailable: c.index != nil}
	if c.index != nil {
		st.Vocabulary = c.index.VocabularySize()
	}
	for i := range c.docs {
		if c.docs[i].IsDemo() {
			st.DemoDocuments++
		}
	}
	return st
}

func documentsOf(hits []Hit) []*document.Document {
	if len(hits) == 0 {
		return nil
	}
	docs := make([]*document.Document, len(hits))
	for i, h := range hits {
		docs[i] = h.Document
	}
	return docs
}
