package domain

import "fmt"

// ApprovalStatus is the administrator-controlled trust flag on an identity.
// It is independent of email verification.
type ApprovalStatus string

const (
	StatusPending  ApprovalStatus = "pending"
	StatusVerified ApprovalStatus = "verified"
	StatusRejected ApprovalStatus = "rejected"
)

// IsTerminal reports whether the status is one the workflow defines no
// transition out of.
func (s ApprovalStatus) IsTerminal() bool {
	return s == StatusVerified || s == StatusRejected
}

// ParseDecision validates an administrator decision target. Only the two
// decision states are accepted; "pending" is the initial state and never a
// target.
func ParseDecision(s string) (ApprovalStatus, error) {
	switch st := ApprovalStatus(s); st {
	case StatusVerified, StatusRejected:
		return st, nil
	default:
		return "", fmt.Errorf("invalid status: %q", s)
	}
}
