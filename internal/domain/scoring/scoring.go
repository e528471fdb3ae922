// Package scoring maps five sentencing axes to a banded severity recommendation.
package scoring

// Axis bounds. Inputs outside the range are clamped, never rejected.
const (
	MinAxis = 0
	MaxAxis = 10
)

// Band breakpoints on the summed total.
const (
	LowMaxTotal    = 15
	MediumMaxTotal = 30
)

// Band is the categorical sentencing-severity recommendation.
type Band string

const (
	// BandLow favours the lower end of the statutory range.
	BandLow Band = "LOW"
	// BandMedium is a balanced assessment.
	BandMedium Band = "MEDIUM"
	// BandHigh favours the upper end of the statutory range.
	BandHigh Band = "HIGH"
)

var rationales = map[Band]string{
	BandLow:    "Discretion weighted in the defendant's favour; the base sentence should stay close to the statutory minimum.",
	BandMedium: "Balanced discretion; the base sentence can be set in the middle of the statutory range.",
	BandHigh: "Discretion weighted against the defendant; the base sentence tends toward the statutory maximum " +
		"and reductions or suspension warrant a stricter review.",
}

// Axes holds the five sentencing inputs, nominally 0-10 each.
type Axes struct {
	Intent       int `json:"intent"`
	History      int `json:"history"`
	Manner       int `json:"manner"`
	VictimImpact int `json:"victim_impact"`
	SocialHarm   int `json:"social_harm"`
}

// Assessment is the derived recommendation. It is recomputed per call.
type Assessment struct {
	Scores    Axes   `json:"scores"`
	Total     int    `json:"total"`
	Band      Band   `json:"band"`
	Rationale string `json:"rationale"`
}

// Score clamps every axis to [MinAxis, MaxAxis], sums them and bands the total.
func Score(in Axes) Assessment {
	clamped := Axes{
		Intent:       clamp(in.Intent),
		History:      clamp(in.History),
		Manner:       clamp(in.Manner),
		VictimImpact: clamp(in.VictimImpact),
		SocialHarm:   clamp(in.SocialHarm),
	}
	total := clamped.Intent + clamped.History + clamped.Manner + clamped.VictimImpact + clamped.SocialHarm
	band := BandFor(total)
	return Assessment{
		Scores:    clamped,
		Total:     total,
		Band:      band,
		Rationale: rationales[band],
	}
}

// BandFor maps a total to its band.
func BandFor(total int) Band {
	switch {
	case total <= LowMaxTotal:
		return BandLow
	case total <= MediumMaxTotal:
		return BandMedium
	default:
		return BandHigh
	}
}

// Rationale returns the fixed explanation attached to a band.
func Rationale(b Band) string { return rationales[b] }

// InRange reports whether every axis already lies within bounds.
func (a Axes) InRange() bool {
	for _, v := range []int{a.Intent, a.History, a.Manner, a.VictimImpact, a.SocialHarm} {
		if v < MinAxis || v > MaxAxis {
			return false
		}
	}
	return true
}

func clamp(v int) int {
	return max(MinAxis, min(MaxAxis, v))
}
