// Package registration holds the transient half of the onboarding pipeline:
// registrations staged against an email address, waiting for OTP proof.
package registration

import (
	"time"

	"eventlift/internal/identity"
	"eventlift/pkg/domain"
)

// PendingRegistration is an in-flight registration keyed by email.
//
// Invariants:
//   - at most one record per email; re-registration replaces unconditionally
//   - deleted by promotion, by replacement, or by reaching TTL
//   - Password is the raw intended password; hashing is deferred to
//     promotion so it happens exactly once
//   - only the registration flow touches these records, except the
//     document gate's read-only access to Document
type PendingRegistration struct {
	ID          domain.PendingID
	Email       string
	Name        string
	Password    string
	Role        domain.Role
	Attributes  domain.RoleAttributes
	Document    *identity.Document
	Phone       string
	LogoURL     string
	Description string

	// OTPHash is a salted hash of the issued code; the plaintext code is
	// never persisted.
	OTPHash      string
	OTPSalt      string
	OTPExpiresAt time.Time

	CreatedAt time.Time
	ExpiresAt time.Time
}

// Expired reports whether the record outlived its TTL at the given time.
// Callers pass the request-scoped now: store-level expiry is best-effort,
// so presence of a record never implies freshness.
func (p *PendingRegistration) Expired(now time.Time) bool {
	return now.After(p.ExpiresAt)
}

// Clone returns a deep copy so stores never hand out aliased state.
func (p *PendingRegistration) Clone() *PendingRegistration {
	cp := *p
	if p.Document != nil {
		doc := identity.Document{
			Data:        append([]byte(nil), p.Document.Data...),
			ContentType: p.Document.ContentType,
		}
		cp.Document = &doc
	}
	return &cp
}

// HasDocument reports whether a retrievable document blob exists.
func (p *PendingRegistration) HasDocument() bool {
	return p.Document != nil && len(p.Document.Data) > 0
}
