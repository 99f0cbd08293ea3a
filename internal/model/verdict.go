package model

import "time"

// VerdictLabel is the outcome of a verification
type VerdictLabel string

const (
	VerdictSupport      VerdictLabel = "support"
	VerdictContradict   VerdictLabel = "contradict"
	VerdictInsufficient VerdictLabel = "insufficient"
)

// Verdict is the synthesized judgement for a claim
type Verdict struct {
	ID          string       `json:"-" db:"id"`
	ClaimID     string       `json:"-" db:"claim_id"`
	Label       VerdictLabel `json:"label" db:"label"`
	Confidence  float64      `json:"confidence" db:"confidence"`
	Explanation string       `json:"explanation" db:"explanation"`
	CreatedAt   time.Time    `json:"-" db:"created_at"`
}
