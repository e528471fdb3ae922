// Package prompt renders the single instruction string sent to the generation model.
package prompt

import (
	"fmt"
	"strings"

	"github.com/kailas-cloud/lexcase/internal/domain/casefile"
	"github.com/kailas-cloud/lexcase/internal/domain/document"
	"github.com/kailas-cloud/lexcase/internal/domain/scoring"
	"github.com/kailas-cloud/lexcase/internal/usecase/ruling"
)

// Fallback lines for empty inputs.
const (
	NoStatutes   = "NO STATUTES FOUND (dataset empty or no match)."
	NoPrecedents = "NO PRECEDENTS FOUND (dataset empty or no match)."
	NoEvidence   = "NO EVIDENCE SUBMITTED."
)

// Precedent metadata fallbacks.
const (
	defaultChamber = "Court of Cassation"
	defaultDate    = "No date"
	defaultE       = "E. none"
	defaultK       = "K. none"
)

const demoTag = " [DEMO]"

// Input is everything the composer needs. Assessment is rendered only for criminal cases.
type Input struct {
	Case       casefile.Case
	Laws       []*document.Document
	Precedents []*document.Document
	Assessment *scoring.Assessment
}

// Compose renders the prompt. It is pure and deterministic.
func Compose(in Input) string {
	c := in.Case
	caseType := c.Type()

	var b strings.Builder
	b.WriteString("ROLE:\n")
	b.WriteString("You are an advanced JUDGE SIMULATION specialised in statutory law and grounded in settled\n")
	b.WriteString("Court of Cassation case law. Your task: turn the SHORT RULING provided by the user into a FULLY\n")
	b.WriteString("REASONED JUDGMENT that is procedurally and substantively sound, using the statutes, precedents,\n")
	b.WriteString("evidence and principles of legal assessment below.\n\n")

	b.WriteString("STRICT RULES:\n")
	fmt.Fprintf(&b, "1) Case type: %s\n", caseType)
	b.WriteString("- If CIVIL: you may not rule against settled Court of Cassation precedent. If you see a conflict, state it and give reasons.\n")
	b.WriteString("- If CRIMINAL: explain and justify the exercise of judicial discretion using the scores below.\n\n")
	b.WriteString("2) Make no assumptions: for facts absent from the file or the evidence write \"not proven\" / \"cannot be established from the file\".\n\n")
	b.WriteString("3) Citation duty:\n")
	b.WriteString("- In civil matters cite the precedents you rely on with chamber, date and E./K. numbers.\n")
	b.WriteString("- Cite statutes by article number.\n")
	b.WriteString("- Never invent articles, decisions or citations that are not in the retrieved material.\n")
	b.WriteString("- Content tagged DEMO is illustrative only; never present it as a real decision.\n\n")
	b.WriteString("4) The OUTPUT is ONE PIECE OF TEXT and must follow the FORMAT REQUIREMENTS below exactly.\n\n")

	writeFormat(&b, caseType)

	b.WriteString("\nINPUT:\nSHORT RULING:\n")
	fmt.Fprintf(&b, "\"\"\"%s\"\"\"\n\n", c.Narrative())
	b.WriteString("EVIDENCE:\n")
	b.WriteString(FormatEvidence(c.Evidence()))
	b.WriteString("\n\nRELEVANT STATUTES (RETRIEVED):\n")
	b.WriteString(FormatLaws(in.Laws))
	b.WriteString("\n\nRELEVANT COURT OF CASSATION PRECEDENTS (RETRIEVED):\n")
	b.WriteString(FormatPrecedents(in.Precedents))
	b.WriteString("\n\n")

	if caseType == casefile.Criminal && in.Assessment != nil {
		writeScoring(&b, in.Assessment)
	}

	b.WriteString("\nPRODUCTION:\n")
	b.WriteString("- Write in the language of a formal reasoned judgment.\n")
	b.WriteString("- Explain the causal link between the evidence and the outcome.\n")
	return b.String()
}

func writeFormat(b *strings.Builder, caseType casefile.Type) {
	b.WriteString("OUTPUT FORMAT REQUIREMENTS (MANDATORY):\n")
	b.WriteString("- The output must be a single text containing the headings below in the SAME order.\n")
	b.WriteString("- Every heading starts with a ROMAN numeral (I, II, III...).\n")
	b.WriteString("- Headings are written in UPPER CASE.\n")
	b.WriteString("- Each heading carries a short but concrete assessment; do not assume facts.\n")
	b.WriteString("- Statutory articles are listed item by item.\n")
	b.WriteString("- Precedents, if any, are listed as \"Chamber / Date / Docket-Decision\"; otherwise write\n")
	b.WriteString("  \"No precedent is cited as none was found in the file.\"\n")
	fmt.Fprintf(b, "- The last section must be \"%s\" and numbered 1), 2), 3).\n\n", ruling.SectionConclusion)

	b.WriteString("TEMPLATE TO USE:\n")
	b.WriteString(ruling.Header(caseType))
	fmt.Fprintf(b, "%s\n- Plaintiff: ...\n- Defendant: ...\n\n", ruling.SectionParties)
	fmt.Fprintf(b, "%s\n...\n\n", ruling.SectionNature)
	fmt.Fprintf(b, "%s\n1. ...\n2. ...\n\n", ruling.SectionEvidence)
	fmt.Fprintf(b, "%s\n- ...\n- ...\n\n", ruling.SectionRules)
	fmt.Fprintf(b, "%s\n- ...\n(or: No precedent is cited as none was found in the file.)\n\n", ruling.SectionPrecedents)
	fmt.Fprintf(b, "%s\n...\n\n", ruling.SectionAssessment)
	fmt.Fprintf(b, "%s\n1) ...\n2) ...\n3) ...\n", ruling.SectionConclusion)
}

func writeScoring(b *strings.Builder, a *scoring.Assessment) {
	s := a.Scores
	b.WriteString("CRIMINAL DISCRETION SCORES (0-10):\n")
	fmt.Fprintf(b, "- Intent / negligence: %d\n", s.Intent)
	fmt.Fprintf(b, "- Defendant's history: %d\n", s.History)
	fmt.Fprintf(b, "- Manner of commission: %d\n", s.Manner)
	fmt.Fprintf(b, "- Impact on the victim: %d\n", s.VictimImpact)
	fmt.Fprintf(b, "- Social harm: %d\n", s.SocialHarm)
	fmt.Fprintf(b, "TOTAL: %d  |  Band: %s\n", a.Total, a.Band)
	fmt.Fprintf(b, "Discretion rationale: %s\n", a.Rationale)
}

// FormatLaws renders one line per statute: "- [id] [DEMO] title: text".
func FormatLaws(laws []*document.Document) string {
	if len(laws) == 0 {
		return NoStatutes
	}
	lines := make([]string, len(laws))
	for i, d := range laws {
		lines[i] = fmt.Sprintf("- [%s]%s %s: %s", d.ID(), demo(d), d.Title(), d.Text())
	}
	return strings.Join(lines, "\n")
}

// FormatPrecedents renders two lines per precedent: the citation and the summary.
func FormatPrecedents(precedents []*document.Document) string {
	if len(precedents) == 0 {
		return NoPrecedents
	}
	lines := make([]string, len(precedents))
	for i, d := range precedents {
		m, _ := d.Precedent()
		lines[i] = fmt.Sprintf("- [%s]%s %s (%s) %s %s\n  Text/Summary: %s",
			d.ID(), demo(d),
			or(m.Chamber(), defaultChamber),
			or(m.Date(), defaultDate),
			or(m.CaseNumberE(), defaultE),
			or(m.CaseNumberK(), defaultK),
			d.Text(),
		)
	}
	return strings.Join(lines, "\n")
}

// FormatEvidence numbers evidence items from 1: "1) name: content".
func FormatEvidence(evidence []casefile.Evidence) string {
	if len(evidence) == 0 {
		return NoEvidence
	}
	lines := make([]string, len(evidence))
	for i, ev := range evidence {
		lines[i] = fmt.Sprintf("%d) %s: %s", i+1, ev.Name, ev.Content)
	}
	return strings.Join(lines, "\n")
}

func demo(d *document.Document) string {
	if d.IsDemo() {
		return demoTag
	}
	return ""
}

func or(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
