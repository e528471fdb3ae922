package document

import (
	"fmt"
	"slices"
)

// Kind discriminates the two corpus collections.
type Kind string

const (
	// KindLaw marks a statute article.
	KindLaw Kind = "law"
	// KindPrecedent marks a court-decision summary.
	KindPrecedent Kind = "precedent"
)

// ParseKind validates a kind discriminator.
func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case KindLaw, KindPrecedent:
		return Kind(s), nil
	default:
		return "", fmt.Errorf("unknown document kind %q (expected %q or %q)", s, KindLaw, KindPrecedent)
	}
}

// DefaultSource is the statute source used when a record carries none.
const DefaultSource = "UNKNOWN"

// Meta is the kind-specific metadata of a document: StatuteMeta or PrecedentMeta.
type Meta interface {
	Kind() Kind
	Demo() bool
}

// StatuteMeta holds statute attributes.
type StatuteMeta struct {
	source string
	demo   bool
}

// NewStatuteMeta creates statute metadata. An empty source becomes DefaultSource.
func NewStatuteMeta(source string, demo bool) StatuteMeta {
	if source == "" {
		source = DefaultSource
	}
	return StatuteMeta{source: source, demo: demo}
}

// Kind implements Meta.
func (m StatuteMeta) Kind() Kind { return KindLaw }

// Demo reports whether the statute is placeholder content.
func (m StatuteMeta) Demo() bool { return m.demo }

// Source returns the source collection label (e.g. the code the article belongs to).
func (m StatuteMeta) Source() string { return m.source }

// PrecedentMeta holds court-decision attributes.
type PrecedentMeta struct {
	chamber     string
	date        string
	caseNumberE string
	caseNumberK string
	tags        []string
	demo        bool
}

// NewPrecedentMeta creates precedent metadata. Tags are copied.
func NewPrecedentMeta(chamber, date, caseNumberE, caseNumberK string, tags []string, demo bool) PrecedentMeta {
	return PrecedentMeta{
		chamber:     chamber,
		date:        date,
		caseNumberE: caseNumberE,
		caseNumberK: caseNumberK,
		tags:        slices.Clone(tags),
		demo:        demo,
	}
}

// Kind implements Meta.
func (m PrecedentMeta) Kind() Kind { return KindPrecedent }

// Demo reports whether the precedent is placeholder content.
func (m PrecedentMeta) Demo() bool { return m.demo }

// Chamber returns the deciding chamber.
func (m PrecedentMeta) Chamber() string { return m.chamber }

// Date returns the decision date as recorded.
func (m PrecedentMeta) Date() string { return m.date }

// CaseNumberE returns the docket (E.) number.
func (m PrecedentMeta) CaseNumberE() string { return m.caseNumberE }

// CaseNumberK returns the decision (K.) number.
func (m PrecedentMeta) CaseNumberK() string { return m.caseNumberK }

// Tags returns a copy of the topical tags in load order.
func (m PrecedentMeta) Tags() []string { return slices.Clone(m.tags) }

// Document is a corpus entry (immutable value object).
type Document struct {
	id    string
	title string
	text  string
	meta  Meta
}

// New validates and creates a Document.
// ID must be non-empty, meta must be set. An empty title falls back to the ID.
// Empty text is allowed: it indexes to a zero vector.
func New(id, title, text string, meta Meta) (Document, error) {
	if id == "" {
		return Document{}, fmt.Errorf("document ID is required")
	}
	if meta == nil {
		return Document{}, fmt.Errorf("document %q: metadata is required", id)
	}
	if title == "" {
		title = id
	}
	return Document{id: id, title: title, text: text, meta: meta}, nil
}

// ID returns the document identifier, unique within its collection.
func (d *Document) ID() string { return d.id }

// Title returns the display title.
func (d *Document) Title() string { return d.title }

// Text returns the body used for similarity.
func (d *Document) Text() string { return d.text }

// Kind returns the collection the document belongs to.
func (d *Document) Kind() Kind { return d.meta.Kind() }

// Meta returns the kind-specific metadata.
func (d *Document) Meta() Meta { return d.meta }

// IsDemo reports the demonstration marker.
func (d *Document) IsDemo() bool { return d.meta.Demo() }

// Statute returns the statute metadata when the document is a statute.
func (d *Document) Statute() (StatuteMeta, bool) {
	m, ok := d.meta.(StatuteMeta)
	return m, ok
}

// Precedent returns the precedent metadata when the document is a precedent.
func (d *Document) Precedent() (PrecedentMeta, bool) {
	m, ok := d.meta.(PrecedentMeta)
	return m, ok
}

// AnyDemo reports whether at least one of docs carries the demonstration marker.
func AnyDemo(docs []*Document) bool {
	for _, d := range docs {
		if d.IsDemo() {
			return true
		}
	}
	return false
}
