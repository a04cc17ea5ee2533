// Package profile projects promoted identities into role-specific profile
// records. Events and sponsorships live elsewhere; profiles carry only
// opaque references to them.
package profile

import (
	"time"

	"github.com/google/uuid"

	"eventlift/pkg/domain"
)

// ClubProfile is the projection for club-admin identities.
type ClubProfile struct {
	ID     uuid.UUID
	UserID domain.UserID

	// Name and Email are denormalized from the identity at projection time.
	Name  string
	Email string

	ClubName    string
	Phone       string
	Description string

	// SponsoredEvents holds opaque event identifiers owned by the events
	// subsystem.
	SponsoredEvents []string

	CreatedAt time.Time
}

// CompanyProfile is the projection for company identities.
type CompanyProfile struct {
	ID     uuid.UUID
	UserID domain.UserID

	Name  string
	Email string

	OrganizationName string
	Phone            string
	LogoURL          string
	Description      string

	SponsoredEvents []string

	CreatedAt time.Time
}

// AlumniProfile is the projection for alumni-individual identities.
type AlumniProfile struct {
	ID     uuid.UUID
	UserID domain.UserID

	Name  string
	Email string

	FormerInstitution string
	Phone             string
	Description       string

	SponsoredEvents []string

	CreatedAt time.Time
}

// Projection is the result of projecting one identity: exactly one of the
// fields is set for profile-bearing roles, none for administrators.
type Projection struct {
	Club    *ClubProfile
	Company *CompanyProfile
	Alumni  *AlumniProfile
}
