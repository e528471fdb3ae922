package retrieval

import (
	"context"

	"github.com/kailas-cloud/lexcase/internal/domain/document"
)

// Source loads a frozen collection of documents.
type Source interface {
	Load(ctx context.Context, kind document.Kind) ([]document.Document, error)
}
