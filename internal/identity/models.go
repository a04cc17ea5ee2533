// Package identity holds the permanent account records: the source of truth
// for authentication and authorization. Records are created only by
// promotion from a pending registration and are never hard-deleted.
package identity

import (
	"time"

	"eventlift/pkg/domain"
)

// Document is an uploaded verification document. The content type is stored
// alongside the bytes and echoed verbatim on fetch; no sniffing happens.
type Document struct {
	Data        []byte
	ContentType string
}

// Identity is a permanent account record.
//
// Invariants:
//   - Email is globally unique across identities
//   - Role is immutable after creation
//   - ApprovalStatus starts at pending and is mutated only through the
//     verification workflow
//   - EmailVerified is true for every record created through promotion
type Identity struct {
	ID             domain.UserID
	Email          string
	Name           string
	PasswordHash   string
	Role           domain.Role
	EmailVerified  bool
	ApprovalStatus domain.ApprovalStatus
	Attributes     domain.RoleAttributes
	Document       *Document
	Phone          string
	LogoURL        string
	Description    string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Clone returns a deep copy so stores never hand out aliased state.
func (i *Identity) Clone() *Identity {
	cp := *i
	if i.Document != nil {
		doc := Document{
			Data:        append([]byte(nil), i.Document.Data...),
			ContentType: i.Document.ContentType,
		}
		cp.Document = &doc
	}
	return &cp
}

// HasDocument reports whether a retrievable document blob exists.
func (i *Identity) HasDocument() bool {
	return i.Document != nil && len(i.Document.Data) > 0
}
