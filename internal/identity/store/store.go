package store

import (
	"context"

	"eventlift/internal/identity"
	"eventlift/pkg/domain"
)

// Store is the permanent identity store. Email uniqueness is a blocking
// constraint inside Create, never a check-then-act at the caller: two
// concurrent creates for one email serialize and exactly one succeeds.
//
// Implementations return sentinel errors (sentinel.ErrNotFound,
// sentinel.ErrConflict); services translate them into domain errors.
type Store interface {
	Create(ctx context.Context, ident *identity.Identity) error
	FindByID(ctx context.Context, id domain.UserID) (*identity.Identity, error)
	FindByEmail(ctx context.Context, email string) (*identity.Identity, error)
	Update(ctx context.Context, ident *identity.Identity) error
	List(ctx context.Context) ([]*identity.Identity, error)
	ListByStatus(ctx context.Context, status domain.ApprovalStatus) ([]*identity.Identity, error)
}
