// Package domain holds the primitive types shared across the platform:
// typed identifiers, the closed role variant, and the approval status enum.
// These are parse-time validated so invalid values cannot travel further in.
package domain

import (
	"fmt"

	"github.com/google/uuid"
)

// UserID identifies a permanent identity record.
type UserID uuid.UUID

// PendingID identifies an in-flight registration record.
type PendingID uuid.UUID

// NewUserID returns a fresh random UserID.
func NewUserID() UserID {
	return UserID(uuid.New())
}

// NewPendingID returns a fresh random PendingID.
func NewPendingID() PendingID {
	return PendingID(uuid.New())
}

// ParseUserID validates and returns a UserID. Empty strings, malformed
// UUIDs, and the nil UUID are all rejected.
func ParseUserID(s string) (UserID, error) {
	u, err := parseID(s, "user id")
	return UserID(u), err
}

// ParsePendingID validates and returns a PendingID.
func ParsePendingID(s string) (PendingID, error) {
	u, err := parseID(s, "pending id")
	return PendingID(u), err
}

func parseID(s, kind string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, fmt.Errorf("%s is empty", kind)
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid %s: %w", kind, err)
	}
	if u == uuid.Nil {
		return uuid.Nil, fmt.Errorf("%s is nil", kind)
	}
	return u, nil
}

func (id UserID) String() string { return uuid.UUID(id).String() }
func (id UserID) IsNil() bool    { return uuid.UUID(id) == uuid.Nil }

func (id PendingID) String() string { return uuid.UUID(id).String() }
func (id PendingID) IsNil() bool    { return uuid.UUID(id) == uuid.Nil }

// MarshalText renders the ID in canonical UUID form, so JSON payloads carry
// strings rather than byte arrays.
func (id UserID) MarshalText() ([]byte, error) { return []byte(id.String()), nil }

func (id *UserID) UnmarshalText(b []byte) error {
	parsed, err := ParseUserID(string(b))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

func (id PendingID) MarshalText() ([]byte, error) { return []byte(id.String()), nil }

func (id *PendingID) UnmarshalText(b []byte) error {
	parsed, err := ParsePendingID(string(b))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}
