// Package judgment holds the audit record of one generated ruling.
package judgment

import (
	"time"

	"github.com/kailas-cloud/lexcase/internal/domain/casefile"
	"github.com/kailas-cloud/lexcase/internal/domain/scoring"
)

// Record is what the journal keeps about a generation: the inputs that matter
// for review, the sources that were cited and the normalized ruling.
type Record struct {
	ID           string
	CreatedAt    time.Time
	Model        string
	CaseType     casefile.Type
	Narrative    string
	Ruling       string
	LawIDs       []string
	PrecedentIDs []string
	Assessment   *scoring.Assessment
	Warnings     []string
}
