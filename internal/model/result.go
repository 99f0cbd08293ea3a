package model

// VerifyRequest is the input to a verification run
type VerifyRequest struct {
	InputType InputType `json:"input_type"`
	RawInput  string    `json:"raw_input"`
	UserID    string    `json:"user_id"`
}

// VerifyResult is returned by a completed verification run
type VerifyResult struct {
	ClaimID     string         `json:"claim_id"`
	Verdict     Verdict        `json:"verdict"`
	TopEvidence []EvidenceItem `json:"top_evidence"`
}

// ClaimDetails is the read view of a stored claim
type ClaimDetails struct {
	ClaimID   string         `json:"claim_id"`
	InputType InputType      `json:"input_type"`
	RawInput  string         `json:"raw_input"`
	Status    ClaimStatus    `json:"status"`
	Verdict   *Verdict       `json:"verdict"`
	Evidence  []EvidenceItem `json:"evidence"`
}

// NewClaimDetails assembles the read view. A nil verdict stays nil.
func NewClaimDetails(c *Claim, v *Verdict, evidence []EvidenceItem) *ClaimDetails {
	if evidence == nil {
		evidence = []EvidenceItem{}
	}
	return &ClaimDetails{
		ClaimID:   c.ID,
		InputType: c.InputType,
		RawInput:  c.RawInput,
		Status:    c.Status,
		Verdict:   v,
		Evidence:  evidence,
	}
}
