package generate

import (
	"context"

	"github.com/kailas-cloud/lexcase/internal/domain/document"
	"github.com/kailas-cloud/lexcase/internal/domain/judgment"
)

// Retriever finds the statutes and precedents relevant to a query.
type Retriever interface {
	Search(query string, topKLaws, topKPrecedents int) (laws, precedents []*document.Document)
}

// Generator turns one prompt into one text blob.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
	Model() string
}

// Journal keeps an audit copy of every generated ruling.
type Journal interface {
	Save(ctx context.Context, rec *judgment.Record) error
	Get(ctx context.Context, id string) (*judgment.Record, error)
	List(ctx context.Context, limit int) ([]*judgment.Record, error)
}
