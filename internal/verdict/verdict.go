// Package verdict turns scored evidence into a support/contradict/insufficient judgement.
package verdict

import (
	"math"

	"github.com/Lirov/claim-checker/internal/extract"
	"github.com/Lirov/claim-checker/internal/model"
)

// SupportThreshold is the average score that must be exceeded for a decisive verdict
const SupportThreshold = 0.3

const (
	contradictBoost = 0.2
	supportBoost    = 0.1
)

const (
	ExplanationNoEvidence   = "No evidence found to verify this claim."
	ExplanationContradict   = "Evidence suggests this claim is contradicted by reliable sources."
	ExplanationSupport      = "Evidence supports this claim based on reliable sources."
	ExplanationInsufficient = "Insufficient evidence to determine the accuracy of this claim."
)

// Synthesize derives a verdict from the evidence retained for a claim.
// The claim text is not inspected by the current policy.
func Synthesize(_ string, evidence []model.EvidenceItem) model.Verdict {
	if len(evidence) == 0 {
		return model.Verdict{
			Label:       model.VerdictInsufficient,
			Confidence:  0,
			Explanation: ExplanationNoEvidence,
		}
	}

	var sum float64
	refuted := false
	for _, e := range evidence {
		sum += e.Score
		if !refuted && extract.HasRefutation(e.Snippet) {
			refuted = true
		}
	}
	avg := sum / float64(len(evidence))

	switch {
	case avg > SupportThreshold && refuted:
		return model.Verdict{
			Label:       model.VerdictContradict,
			Confidence:  math.Min(avg+contradictBoost, 1),
			Explanation: ExplanationContradict,
		}
	case avg > SupportThreshold:
		return model.Verdict{
			Label:       model.VerdictSupport,
			Confidence:  math.Min(avg+supportBoost, 1),
			Explanation: ExplanationSupport,
		}
	default:
		return model.Verdict{
			Label:       model.VerdictInsufficient,
			Confidence:  avg,
			Explanation: ExplanationInsufficient,
		}
	}
}
