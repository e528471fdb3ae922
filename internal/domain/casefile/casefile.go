// Package casefile models a validated ruling-generation request.
package casefile

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/kailas-cloud/lexcase/internal/domain"
	"github.com/kailas-cloud/lexcase/internal/domain/scoring"
)

// MinNarrativeLength is the minimum narrative length in runes after trimming.
const MinNarrativeLength = 20

// Type is the case type.
type Type string

const (
	// Civil is a private-law dispute.
	Civil Type = "CIVIL"
	// Criminal is a criminal prosecution; it requires sentencing scores.
	Criminal Type = "CRIMINAL"
)

// Evidence is one submitted piece of evidence.
type Evidence struct {
	Name    string
	Content string
}

// Case is a validated generation request (immutable value object).
type Case struct {
	narrative string
	caseType  Type
	evidence  []Evidence
	scores    *scoring.Axes
}

// New validates and creates a Case. All failures wrap domain.ErrInvalidRequest,
// except a criminal case without scores which wraps domain.ErrScoresRequired.
func New(narrative string, caseType Type, evidence []Evidence, scores *scoring.Axes) (Case, error) {
	narrative = strings.TrimSpace(narrative)
	if n := utf8.RuneCountInString(narrative); n < MinNarrativeLength {
		return Case{}, fmt.Errorf("%w: narrative must be at least %d characters, got %d",
			domain.ErrInvalidRequest, MinNarrativeLength, n)
	}

	switch caseType {
	case Civil, Criminal:
	default:
		return Case{}, fmt.Errorf("%w: case_type must be %q or %q, got %q",
			domain.ErrInvalidRequest, Civil, Criminal, caseType)
	}

	for i, ev := range evidence {
		if strings.TrimSpace(ev.Name) == "" {
			return Case{}, fmt.Errorf("%w: evidence[%d].name is required", domain.ErrInvalidRequest, i)
		}
	}

	if scores != nil && !scores.InRange() {
		return Case{}, fmt.Errorf("%w: criminal_scores must be between %d and %d",
			domain.ErrInvalidRequest, scoring.MinAxis, scoring.MaxAxis)
	}
	if caseType == Criminal && scores == nil {
		return Case{}, domain.ErrScoresRequired
	}

	c := Case{narrative: narrative, caseType: caseType}
	if len(evidence) > 0 {
		c.evidence = append([]Evidence(nil), evidence...)
	}
	if scores != nil && caseType == Criminal {
		s := *scores
		c.scores = &s
	}
	return c, nil
}

// Narrative returns the trimmed short-ruling narrative.
func (c *Case) Narrative() string { return c.narrative }

// Type returns the case type.
func (c *Case) Type() Type { return c.caseType }

// Evidence returns the submitted evidence in order.
func (c *Case) Evidence() []Evidence { return c.evidence }

// Scores returns the sentencing axes; ok is false for civil cases.
func (c *Case) Scores() (scoring.Axes, bool) {
	if c.scores == nil {
		return scoring.Axes{}, false
	}
	return *c.scores, true
}

// Query builds the retrieval query: the narrative followed by one "name: content" line per evidence item.
func (c *Case) Query() string {
	lines := make([]string, len(c.evidence))
	for i, ev := range c.evidence {
		lines[i] = ev.Name + ": " + ev.Content
	}
	return strings.TrimSpace(c.narrative + "\n" + strings.Join(lines, "\n"))
}
