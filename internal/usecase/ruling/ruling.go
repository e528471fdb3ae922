// Package ruling shapes generated text into the fixed reasoned-ruling layout
// and reports what the model left out.
package ruling

import (
	"regexp"
	"strings"

	"github.com/kailas-cloud/lexcase/internal/domain/casefile"
	"github.com/kailas-cloud/lexcase/internal/domain/document"
)

// Brand marks a document that already carries the ruling header.
const (
	Brand    = "LEXCASE LEGAL DECISION SUPPORT SYSTEM"
	Subtitle = "(Academic prototype)"
)

// Section headings, in the order every ruling must contain them.
const (
	SectionParties     = "I. STATEMENTS OF THE PARTIES"
	SectionNature      = "II. LEGAL NATURE OF THE DISPUTE"
	SectionEvidence    = "III. EVALUATION OF EVIDENCE"
	SectionRules       = "IV. APPLICABLE RULES OF LAW"
	SectionPrecedents  = "V. COURT OF CASSATION PRECEDENTS"
	SectionAssessment  = "VI. LEGAL ASSESSMENT"
	SectionConclusion  = "VII. CONCLUSION AND JUDGMENT"
	SectionPlaceholder = "(This section is to be assessed separately within the scope of the file.)"
)

// Separator is the canonical horizontal rule.
var Separator = strings.Repeat("-", 50)

// Sections lists the required headings in order.
var Sections = []string{
	SectionParties,
	SectionNature,
	SectionEvidence,
	SectionRules,
	SectionPrecedents,
	SectionAssessment,
	SectionConclusion,
}

var (
	separatorRe  = regexp.MustCompile(`\n-{10,}\n`)
	numberedRe   = regexp.MustCompile(`\n\s*1\)`)
	whitespaceRe = regexp.MustCompile(`\s+`)
)

// Header returns the banner placed above every ruling.
func Header(caseType casefile.Type) string {
	return Brand + "\n" + Subtitle + "\n\nCASE TYPE: " + string(caseType) + "\n" + Separator + "\n\n"
}

// Normalize forces raw model output into the ruling layout. It only fixes
// structure: the header is added when missing, absent sections are appended
// with a placeholder, separator lines get a fixed width and the conclusion
// is made to start a numbered list. Text the model produced is never removed.
func Normalize(raw string, caseType casefile.Type) string {
	text := strings.TrimSpace(raw)
	if !strings.Contains(text, Brand) {
		text = Header(caseType) + text
	}

	var b strings.Builder
	b.WriteString(text)
	for _, sec := range missing(text) {
		b.WriteString("\n\n" + sec + "\n" + SectionPlaceholder + "\n")
	}
	text = b.String()

	text = separatorRe.ReplaceAllString(text, "\n"+Separator+"\n")

	if _, after, ok := strings.Cut(text, SectionConclusion); ok && !numberedRe.MatchString(after) {
		text = strings.Replace(text, SectionConclusion, SectionConclusion+"\n1) ", 1)
	}
	return strings.TrimSpace(text)
}

// MissingSections returns the required headings absent from text, in order.
// Matching ignores case and whitespace runs.
func MissingSections(text string) []string {
	return missing(text)
}

// Warnings lists the problems worth surfacing to the caller: one per heading
// missing from the raw output, then one per collection that contributed demo content.
func Warnings(raw string, laws, precedents []*document.Document) []string {
	var out []string
	for _, sec := range missing(raw) {
		out = append(out, "Missing section: "+sec)
	}
	return append(out, DemoWarnings(laws, precedents)...)
}

// DemoWarnings flags demo-marked statutes and precedents among the used sources.
func DemoWarnings(laws, precedents []*document.Document) []string {
	var out []string
	if document.AnyDemo(laws) {
		out = append(out, "The cited statutes include DEMO content. Replace it with authentic statutory text before academic use.")
	}
	if document.AnyDemo(precedents) {
		out = append(out, "The cited precedents include DEMO content. Replace it with authentic Court of Cassation decisions before academic use.")
	}
	return out
}

func missing(text string) []string {
	up := fold(text)
	var out []string
	for _, sec := range Sections {
		if !strings.Contains(up, sec) {
			out = append(out, sec)
		}
	}
	return out
}

func fold(s string) string {
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(strings.ToUpper(s), " "))
}
