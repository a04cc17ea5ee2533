// Package document serves verification document blobs for both permanent
// identities and still-pending registrations. Caller authorization (admin
// or owner) is enforced at the HTTP boundary, not here.
package document

import (
	"context"
	"errors"

	"eventlift/internal/identity"
	"eventlift/internal/registration"
	"eventlift/pkg/domain"
	dErrors "eventlift/pkg/domain-errors"
	"eventlift/pkg/platform/sentinel"
)

// IdentitySource is the read slice of the identity store the gate needs.
type IdentitySource interface {
	FindByID(ctx context.Context, id domain.UserID) (*identity.Identity, error)
}

// PendingSource is the read slice of the pending store the gate needs.
type PendingSource interface {
	FindByID(ctx context.Context, id domain.PendingID) (*registration.PendingRegistration, error)
}

// Gate resolves an owner id to its stored document.
type Gate struct {
	identities IdentitySource
	pending    PendingSource
}

func NewGate(identities IdentitySource, pending PendingSource) *Gate {
	return &Gate{identities: identities, pending: pending}
}

// Fetch returns the document owned by the given id, checking identities
// first and falling back to pending registrations. Unknown owner, owner
// without a document, and malformed id all collapse to NotFound: the gate
// never reveals which of the three it was. Bytes and content type are
// returned verbatim, with no sniffing.
func (g *Gate) Fetch(ctx context.Context, rawID string) (*identity.Document, error) {
	notFound := dErrors.New(dErrors.CodeNotFound, "document not found")

	userID, err := domain.ParseUserID(rawID)
	if err != nil {
		return nil, notFound
	}

	ident, err := g.identities.FindByID(ctx, userID)
	switch {
	case err == nil:
		if !ident.HasDocument() {
			return nil, notFound
		}
		return ident.Document, nil
	case !errors.Is(err, sentinel.ErrNotFound):
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to look up identity")
	}

	pendingID, err := domain.ParsePendingID(rawID)
	if err != nil {
		return nil, notFound
	}
	pending, err := g.pending.FindByID(ctx, pendingID)
	switch {
	case err == nil:
		if !pending.HasDocument() {
			return nil, notFound
		}
		return pending.Document, nil
	case errors.Is(err, sentinel.ErrNotFound):
		return nil, notFound
	default:
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to look up pending registration")
	}
}
