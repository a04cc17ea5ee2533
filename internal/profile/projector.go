package profile

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"eventlift/internal/identity"
	"eventlift/pkg/domain"
	dErrors "eventlift/pkg/domain-errors"
	"eventlift/pkg/platform/sentinel"
	"eventlift/pkg/requestcontext"
)

// Projector creates the role-specific profile record for an identity.
type Projector struct {
	store Store
}

func NewProjector(store Store) *Projector {
	return &Projector{store: store}
}

// Project creates exactly one profile record for a profile-bearing role and
// nothing for administrators. Projection is not idempotent: a second call
// for the same identity fails with Conflict through the store's unique
// back-reference, never by silently duplicating.
func (p *Projector) Project(ctx context.Context, ident *identity.Identity) (*Projection, error) {
	now := requestcontext.Now(ctx)
	switch ident.Role {
	case domain.RoleAdministrator:
		return nil, nil
	case domain.RoleClubAdmin:
		club := &ClubProfile{
			ID:          uuid.New(),
			UserID:      ident.ID,
			Name:        ident.Name,
			Email:       ident.Email,
			ClubName:    ident.Attributes.ClubName,
			Phone:       ident.Phone,
			Description: ident.Description,
			CreatedAt:   now,
		}
		if err := p.store.CreateClub(ctx, club); err != nil {
			return nil, translateCreate(err)
		}
		return &Projection{Club: club}, nil
	case domain.RoleCompany:
		company := &CompanyProfile{
			ID:               uuid.New(),
			UserID:           ident.ID,
			Name:             ident.Name,
			Email:            ident.Email,
			OrganizationName: ident.Attributes.OrganizationName,
			Phone:            ident.Phone,
			LogoURL:          ident.LogoURL,
			Description:      ident.Description,
			CreatedAt:        now,
		}
		if err := p.store.CreateCompany(ctx, company); err != nil {
			return nil, translateCreate(err)
		}
		return &Projection{Company: company}, nil
	case domain.RoleAlumniIndividual:
		alumni := &AlumniProfile{
			ID:                uuid.New(),
			UserID:            ident.ID,
			Name:              ident.Name,
			Email:             ident.Email,
			FormerInstitution: ident.Attributes.FormerInstitution,
			Phone:             ident.Phone,
			Description:       ident.Description,
			CreatedAt:         now,
		}
		if err := p.store.CreateAlumni(ctx, alumni); err != nil {
			return nil, translateCreate(err)
		}
		return &Projection{Alumni: alumni}, nil
	default:
		return nil, dErrors.New(dErrors.CodeInternal, fmt.Sprintf("no projection for role %q", ident.Role))
	}
}

func translateCreate(err error) error {
	if errors.Is(err, sentinel.ErrConflict) {
		return dErrors.New(dErrors.CodeConflict, "profile already exists for identity")
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, "failed to create profile")
}
