package audit

import (
	"time"

	"eventlift/pkg/domain"
)

// Actions recorded by the registration and verification flows.
const (
	ActionUserPromoted       = "user_promoted"
	ActionDecision           = "verification_decision"
	ActionTerminalOverridden = "verification_status_overridden"
	ActionPasswordReset      = "password_reset"
	ActionPasswordChanged    = "password_changed"
)

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	Timestamp time.Time
	UserID    domain.UserID
	// ActorID tracks who performed the action when different from UserID,
	// e.g. the administrator making a verification decision.
	ActorID string
	Action  string
	// Decision carries the target status for verification decisions.
	Decision  string
	Reason    string
	RequestID string
}
