package ruling

import (
	"reflect"
	"strings"
	"testing"

	"github.com/kailas-cloud/lexcase/internal/domain/casefile"
	"github.com/kailas-cloud/lexcase/internal/domain/document"
)

func completeRuling() string {
	return Header(casefile.Civil) + strings.Join([]string{
		SectionParties, "- Plaintiff: landlord", "",
		SectionNature, "Lease termination.", "",
		SectionEvidence, "1. Lease contract", "",
		SectionRules, "- TBK 315", "",
		SectionPrecedents, "- none", "",
		SectionAssessment, "Rent was not paid.", "",
		SectionConclusion, "1) The claim is accepted.", "2) Costs to the defendant.",
	}, "\n")
}

func doc(t *testing.T, id string, meta document.Meta) *document.Document {
	t.Helper()
	d, err := document.New(id, "", "body", meta)
	if err != nil {
		t.Fatalf("build document: %v", err)
	}
	return &d
}

func TestNormalize_CompleteRulingUnchanged(t *testing.T) {
	in := completeRuling()
	if got := Normalize("\n  "+in+"\n\n", casefile.Civil); got != in {
		t.Errorf("complete ruling was rewritten:\n%s", got)
	}
}

func TestNormalize_AddsHeaderOnce(t *testing.T) {
	got := Normalize("Some reasoning.", casefile.Criminal)
	if !strings.HasPrefix(got, Brand+"\n"+Subtitle) {
		t.Errorf("missing header:\n%s", got)
	}
	if !strings.Contains(got, "CASE TYPE: CRIMINAL") {
		t.Error("case type not rendered")
	}
	if strings.Count(Normalize(got, casefile.Criminal), Brand) != 1 {
		t.Error("header duplicated on second pass")
	}
}

func TestNormalize_AppendsMissingSectionsInOrder(t *testing.T) {
	got := Normalize(SectionParties+"\nOnly the parties.", casefile.Civil)

	last := -1
	for _, sec := range Sections {
		i := strings.Index(got, sec)
		if i < 0 {
			t.Fatalf("section %q missing from:\n%s", sec, got)
		}
		if i < last {
			t.Errorf("section %q out of order", sec)
		}
		last = i
	}
	if n := strings.Count(got, SectionPlaceholder); n != len(Sections)-1 {
		t.Errorf("placeholders = %d, want %d", n, len(Sections)-1)
	}
	if len(MissingSections(got)) != 0 {
		t.Error("normalized output still reports missing sections")
	}
}

func TestNormalize_CaseInsensitiveSectionMatch(t *testing.T) {
	in := completeRuling()
	in = strings.Replace(in, SectionNature, "ii. legal   nature of the\ndispute", 1)

	got := Normalize(in, casefile.Civil)
	if strings.Contains(got, SectionPlaceholder) {
		t.Errorf("lower-cased heading should count as present:\n%s", got)
	}
}

func TestNormalize_Separators(t *testing.T) {
	got := Normalize("intro\n------------\nbody\n---------\ntail", casefile.Civil)
	if !strings.Contains(got, "intro\n"+Separator+"\nbody") {
		t.Errorf("long rule not normalized:\n%s", got)
	}
	if !strings.Contains(got, "body\n---------\ntail") {
		t.Errorf("short rule must stay untouched:\n%s", got)
	}
}

func TestNormalize_NumbersConclusion(t *testing.T) {
	in := strings.Replace(completeRuling(), "1) The claim is accepted.\n2) Costs to the defendant.", "The claim is accepted.", 1)

	got := Normalize(in, casefile.Civil)
	if !strings.Contains(got, SectionConclusion+"\n1) \nThe claim is accepted.") {
		t.Errorf("conclusion not numbered:\n%s", got)
	}
	if strings.Count(Normalize(got, casefile.Civil), "1)") != 1 {
		t.Error("numbering inserted twice")
	}
}

func TestNormalize_EmptyOutput(t *testing.T) {
	got := Normalize("   ", casefile.Civil)
	if !strings.HasPrefix(got, Brand) {
		t.Errorf("expected header, got:\n%s", got)
	}
	if !strings.HasSuffix(got, SectionConclusion+"\n1) \n"+SectionPlaceholder) {
		t.Errorf("expected numbered conclusion at the end, got:\n%s", got)
	}
}

func TestMissingSections(t *testing.T) {
	if got := MissingSections(completeRuling()); len(got) != 0 {
		t.Errorf("unexpected missing sections %v", got)
	}
	if got := MissingSections(""); !reflect.DeepEqual(got, Sections) {
		t.Errorf("got %v", got)
	}
	got := MissingSections(SectionParties + "\n" + SectionConclusion)
	want := []string{SectionNature, SectionEvidence, SectionRules, SectionPrecedents, SectionAssessment}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestDemoWarnings(t *testing.T) {
	demoLaw := doc(t, "l1", document.NewStatuteMeta("TCK", true))
	realLaw := doc(t, "l2", document.NewStatuteMeta("TCK", false))
	demoPrec := doc(t, "p1", document.NewPrecedentMeta("", "", "", "", nil, true))

	tests := []struct {
		name       string
		laws       []*document.Document
		precedents []*document.Document
		want       int
	}{
		{"none", nil, nil, 0},
		{"genuine only", []*document.Document{realLaw}, nil, 0},
		{"demo statute", []*document.Document{realLaw, demoLaw}, nil, 1},
		{"demo precedent", nil, []*document.Document{demoPrec}, 1},
		{"both", []*document.Document{demoLaw}, []*document.Document{demoPrec}, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DemoWarnings(tt.laws, tt.precedents); len(got) != tt.want {
				t.Errorf("got %v, want %d warnings", got, tt.want)
			}
		})
	}
}

func TestWarnings_SectionsThenDemo(t *testing.T) {
	demoLaw := doc(t, "l1", document.NewStatuteMeta("TCK", true))

	got := Warnings(SectionParties, []*document.Document{demoLaw}, nil)
	if len(got) != len(Sections) {
		t.Fatalf("got %d warnings: %v", len(got), got)
	}
	if got[0] != "Missing section: "+SectionNature {
		t.Errorf("first warning = %q", got[0])
	}
	if !strings.Contains(got[len(got)-1], "DEMO") {
		t.Errorf("last warning = %q", got[len(got)-1])
	}
}
