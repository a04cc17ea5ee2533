package store

import (
	"context"
	"time"

	"eventlift/internal/registration"
	"eventlift/pkg/domain"
)

// Store holds in-flight registrations keyed by email.
//
// Replace is unconditional delete-then-create: a second registration for
// the same email discards the first, which is what permits retry after a
// lost or expired OTP email. Store-level expiry (redis TTL, memory sweep)
// is best-effort hygiene; readers re-check expiry themselves.
//
// Implementations return sentinel errors; services translate.
type Store interface {
	Replace(ctx context.Context, pending *registration.PendingRegistration) error
	FindByEmail(ctx context.Context, email string) (*registration.PendingRegistration, error)
	// FindByID serves the document gate's read-only access to a still-pending
	// record's document.
	FindByID(ctx context.Context, id domain.PendingID) (*registration.PendingRegistration, error)
	Delete(ctx context.Context, email string) error
	// DeleteExpired removes records whose TTL elapsed before now. Redis
	// implements this as a no-op (native key TTL covers it).
	DeleteExpired(ctx context.Context, now time.Time) (int, error)
}
