package verdict

import (
	"math"
	"testing"

	"github.com/Lirov/claim-checker/internal/model"
)

func items(scores []float64, snippets ...string) []model.EvidenceItem {
	out := make([]model.EvidenceItem, len(scores))
	for i, s := range scores {
		out[i] = model.EvidenceItem{Source: "wikipedia", Title: "T", Score: s}
		if i < len(snippets) {
			out[i].Snippet = snippets[i]
		}
	}
	return out
}

func TestSynthesize(t *testing.T) {
	tests := []struct {
		name        string
		evidence    []model.EvidenceItem
		label       model.VerdictLabel
		confidence  float64
		explanation string
	}{
		{
			name:        "no evidence",
			evidence:    nil,
			label:       model.VerdictInsufficient,
			confidence:  0,
			explanation: ExplanationNoEvidence,
		},
		{
			name:        "high scores without refutation",
			evidence:    items([]float64{0.5}, "The tower is in Paris"),
			label:       model.VerdictSupport,
			confidence:  0.6,
			explanation: ExplanationSupport,
		},
		{
			name:        "high scores with refutation",
			evidence:    items([]float64{0.6, 0.4, 0.2}, "There is no evidence of this", "Unrelated", "Other"),
			label:       model.VerdictContradict,
			confidence:  0.6,
			explanation: ExplanationContradict,
		},
		{
			name:        "low scores",
			evidence:    items([]float64{0.1, 0.2}, "Some text", "More text"),
			label:       model.VerdictInsufficient,
			confidence:  0.15,
			explanation: ExplanationInsufficient,
		},
		{
			name:        "threshold is strict",
			evidence:    items([]float64{0.3}, "Exactly at threshold"),
			label:       model.VerdictInsufficient,
			confidence:  0.3,
			explanation: ExplanationInsufficient,
		},
		{
			name:        "support confidence is capped",
			evidence:    items([]float64{0.95}, "Plain"),
			label:       model.VerdictSupport,
			confidence:  1,
			explanation: ExplanationSupport,
		},
		{
			name:        "contradict confidence is capped",
			evidence:    items([]float64{0.9}, "This was debunked"),
			label:       model.VerdictContradict,
			confidence:  1,
			explanation: ExplanationContradict,
		},
		{
			name:        "refutation alone does not decide",
			evidence:    items([]float64{0.1}, "This is false"),
			label:       model.VerdictInsufficient,
			confidence:  0.1,
			explanation: ExplanationInsufficient,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := Synthesize("claim", tt.evidence)
			if v.Label != tt.label {
				t.Errorf("label = %s, want %s", v.Label, tt.label)
			}
			if math.Abs(v.Confidence-tt.confidence) > 1e-9 {
				t.Errorf("confidence = %v, want %v", v.Confidence, tt.confidence)
			}
			if v.Explanation != tt.explanation {
				t.Errorf("explanation = %q, want %q", v.Explanation, tt.explanation)
			}
		})
	}
}

func TestSynthesize_ConfidenceInRange(t *testing.T) {
	for _, scores := range [][]float64{{0}, {1}, {1, 1, 1}, {0.31, 0.99}} {
		v := Synthesize("", items(scores, "not"))
		if v.Confidence < 0 || v.Confidence > 1 {
			t.Errorf("scores %v: confidence %v out of range", scores, v.Confidence)
		}
	}
}
