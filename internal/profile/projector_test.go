package profile

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"eventlift/internal/identity"
	"eventlift/pkg/domain"
	dErrors "eventlift/pkg/domain-errors"
)

type ProjectorSuite struct {
	suite.Suite
	store     *InMemory
	projector *Projector
	ctx       context.Context
}

func (s *ProjectorSuite) SetupTest() {
	s.store = NewInMemory()
	s.projector = NewProjector(s.store)
	s.ctx = context.Background()
}

func TestProjectorSuite(t *testing.T) {
	suite.Run(t, new(ProjectorSuite))
}

func (s *ProjectorSuite) newIdentity(role domain.Role, attrs domain.RoleAttributes) *identity.Identity {
	now := time.Now()
	return &identity.Identity{
		ID:         domain.NewUserID(),
		Email:      "user@example.com",
		Name:       "Test User",
		Role:       role,
		Attributes: attrs,
		Phone:      "+15551234",
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

func (s *ProjectorSuite) TestProjectByRole() {
	s.Run("club-admin gets a club profile", func() {
		ident := s.newIdentity(domain.RoleClubAdmin, domain.RoleAttributes{ClubName: "Chess Club"})
		proj, err := s.projector.Project(s.ctx, ident)
		s.Require().NoError(err)
		s.Require().NotNil(proj.Club)
		s.Equal("Chess Club", proj.Club.ClubName)
		s.Equal(ident.ID, proj.Club.UserID)
		s.Equal(ident.Email, proj.Club.Email)
	})

	s.Run("company gets a company profile", func() {
		ident := s.newIdentity(domain.RoleCompany, domain.RoleAttributes{OrganizationName: "Acme Corp"})
		proj, err := s.projector.Project(s.ctx, ident)
		s.Require().NoError(err)
		s.Require().NotNil(proj.Company)
		s.Equal("Acme Corp", proj.Company.OrganizationName)
	})

	s.Run("alumni gets an alumni profile", func() {
		ident := s.newIdentity(domain.RoleAlumniIndividual, domain.RoleAttributes{FormerInstitution: "State University"})
		proj, err := s.projector.Project(s.ctx, ident)
		s.Require().NoError(err)
		s.Require().NotNil(proj.Alumni)
		s.Equal("State University", proj.Alumni.FormerInstitution)
	})

	s.Run("administrator gets nothing", func() {
		ident := s.newIdentity(domain.RoleAdministrator, domain.RoleAttributes{})
		proj, err := s.projector.Project(s.ctx, ident)
		s.Require().NoError(err)
		s.Nil(proj)

		_, err = s.store.FindByUserID(s.ctx, ident.ID)
		s.Error(err)
	})
}

func (s *ProjectorSuite) TestDoubleProjectionConflicts() {
	ident := s.newIdentity(domain.RoleCompany, domain.RoleAttributes{OrganizationName: "Acme Corp"})

	_, err := s.projector.Project(s.ctx, ident)
	s.Require().NoError(err)

	_, err = s.projector.Project(s.ctx, ident)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeConflict))
}
