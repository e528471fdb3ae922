package casefile

import (
	"errors"
	"strings"
	"testing"

	"github.com/kailas-cloud/lexcase/internal/domain"
	"github.com/kailas-cloud/lexcase/internal/domain/scoring"
)

const narrative = "The defendant took the victim's phone by force at night."

func TestNew_Civil(t *testing.T) {
	c, err := New("  "+narrative+"  ", Civil, nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Narrative() != narrative {
		t.Errorf("Narrative() = %q, want trimmed", c.Narrative())
	}
	if _, ok := c.Scores(); ok {
		t.Error("civil case should not carry scores")
	}
}

func TestNew_CivilDropsScores(t *testing.T) {
	c, err := New(narrative, Civil, nil, &scoring.Axes{Intent: 5})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := c.Scores(); ok {
		t.Error("scores must be ignored for civil cases")
	}
}

func TestNew_ShortNarrative(t *testing.T) {
	_, err := New("too short", Civil, nil, nil)
	if !errors.Is(err, domain.ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest, got %v", err)
	}
}

func TestNew_NarrativeCountsRunes(t *testing.T) {
	// 20 two-byte runes.
	if _, err := New(strings.Repeat("ş", 20), Civil, nil, nil); err != nil {
		t.Fatalf("20 runes should pass: %v", err)
	}
}

func TestNew_UnknownType(t *testing.T) {
	_, err := New(narrative, Type("ADMIN"), nil, nil)
	if !errors.Is(err, domain.ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest, got %v", err)
	}
}

func TestNew_CriminalRequiresScores(t *testing.T) {
	_, err := New(narrative, Criminal, nil, nil)
	if !errors.Is(err, domain.ErrScoresRequired) {
		t.Fatalf("expected ErrScoresRequired, got %v", err)
	}
}

func TestNew_ScoresOutOfRange(t *testing.T) {
	_, err := New(narrative, Criminal, nil, &scoring.Axes{Intent: 11})
	if !errors.Is(err, domain.ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest, got %v", err)
	}
}

func TestNew_EvidenceNameRequired(t *testing.T) {
	_, err := New(narrative, Civil, []Evidence{{Name: " ", Content: "x"}}, nil)
	if !errors.Is(err, domain.ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest, got %v", err)
	}
}

func TestNew_CriminalKeepsScoresCopy(t *testing.T) {
	in := scoring.Axes{Intent: 7, History: 2, Manner: 5, VictimImpact: 6, SocialHarm: 4}
	c, err := New(narrative, Criminal, nil, &in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	in.Intent = 0
	got, ok := c.Scores()
	if !ok || got.Intent != 7 {
		t.Errorf("Scores() = %+v, %v", got, ok)
	}
}

func TestQuery(t *testing.T) {
	c, err := New(narrative, Civil, []Evidence{
		{Name: "CCTV", Content: "footage at 23:10"},
		{Name: "Witness", Content: "saw the struggle"},
	}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := narrative + "\nCCTV: footage at 23:10\nWitness: saw the struggle"
	if got := c.Query(); got != want {
		t.Errorf("Query() = %q, want %q", got, want)
	}
}

func TestQuery_NoEvidence(t *testing.T) {
	c, _ := New(narrative, Civil, nil, nil)
	if got := c.Query(); got != narrative {
		t.Errorf("Query() = %q, want %q", got, narrative)
	}
}
