package model

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrInvalidTransition is returned when a claim status change is not allowed
var ErrInvalidTransition = errors.New("invalid claim status transition")

// Claim is a single verification request submitted by a user
type Claim struct {
	ID        string      `json:"claim_id" db:"id"`
	UserID    string      `json:"user_id" db:"user_id"`
	InputType InputType   `json:"input_type" db:"input_type"`
	RawInput  string      `json:"raw_input" db:"raw_input"`
	Status    ClaimStatus `json:"status" db:"status"`
	CreatedAt time.Time   `json:"created_at" db:"created_at"`
}

// InputType describes how the raw input should be interpreted
type InputType string

const (
	InputTypeText InputType = "text" // Free-form claim text
	InputTypeURL  InputType = "url"  // Link to a page containing the claim
)

// ParseInputType validates an input type string
func ParseInputType(s string) (InputType, error) {
	switch t := InputType(strings.ToLower(strings.TrimSpace(s))); t {
	case InputTypeText, InputTypeURL:
		return t, nil
	default:
		return "", fmt.Errorf("unknown input type %q (expected text or url)", s)
	}
}

// ClaimStatus is the lifecycle state of a claim
type ClaimStatus string

const (
	ClaimStatusPending ClaimStatus = "pending"
	ClaimStatusDone    ClaimStatus = "done"
	ClaimStatusError   ClaimStatus = "error"
)

// IsTerminal reports whether no further transitions are possible
func (s ClaimStatus) IsTerminal() bool {
	return s == ClaimStatusDone || s == ClaimStatusError
}

// CanTransition reports whether a claim may move from one status to another.
// Only pending claims move, and only to done or error.
func CanTransition(from, to ClaimStatus) bool {
	return from == ClaimStatusPending && to.IsTerminal()
}

// CheckTransition wraps ErrInvalidTransition with the offending states
func CheckTransition(from, to ClaimStatus) error {
	if !CanTransition(from, to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
	}
	return nil
}
