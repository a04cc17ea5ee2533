package service

import (
	"context"
	"errors"
	"log/slog"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"eventlift/internal/audit"
	"eventlift/internal/email"
	"eventlift/internal/email/mocks"
	"eventlift/internal/identity/password"
	identitysvc "eventlift/internal/identity/service"
	identitystore "eventlift/internal/identity/store"
	"eventlift/internal/registration/store"
	"eventlift/pkg/domain"
	dErrors "eventlift/pkg/domain-errors"
	"eventlift/pkg/platform/sentinel"
	"eventlift/pkg/requestcontext"
)

var codePattern = regexp.MustCompile(`\b(\d{6})\b`)

type RegistrationServiceSuite struct {
	suite.Suite
	ctrl       *gomock.Controller
	sender     *mocks.MockSender
	pending    *store.InMemory
	identities *identitystore.InMemory
	svc        *Service
	ctx        context.Context

	// lastCode holds the OTP captured from the most recent outgoing email.
	lastCode string
}

func (s *RegistrationServiceSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.sender = mocks.NewMockSender(s.ctrl)
	s.pending = store.NewInMemory()
	s.identities = identitystore.NewInMemory()
	s.ctx = context.Background()

	promoter, err := identitysvc.New(s.identities, s.pending, password.NewHasher(),
		audit.NewPublisher(audit.NewInMemoryStore()), nil, slog.Default())
	s.Require().NoError(err)

	svc, err := New(s.pending, s.identities, promoter, s.sender, nil, slog.Default())
	s.Require().NoError(err)
	s.svc = svc
}

func TestRegistrationServiceSuite(t *testing.T) {
	suite.Run(t, new(RegistrationServiceSuite))
}

func (s *RegistrationServiceSuite) expectEmail() {
	s.sender.EXPECT().Send(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, msg email.Message) error {
			match := codePattern.FindStringSubmatch(msg.Body)
			s.Require().NotNil(match, "verification email must contain the code")
			s.lastCode = match[1]
			return nil
		})
}

func (s *RegistrationServiceSuite) stageInput(emailAddr string) StageInput {
	return StageInput{
		Email:       emailAddr,
		Name:        "Test User",
		RawPassword: "secret123",
		Role:        domain.RoleClubAdmin,
		Attributes:  domain.RoleAttributes{ClubName: "Chess Club"},
	}
}

func (s *RegistrationServiceSuite) TestStage() {
	s.expectEmail()
	s.Require().NoError(s.svc.Stage(s.ctx, s.stageInput("new@example.com")))

	pending, err := s.pending.FindByEmail(s.ctx, "new@example.com")
	s.Require().NoError(err)

	s.Run("stores only the salted hash of the code", func() {
		s.NotEmpty(pending.OTPHash)
		s.NotEmpty(pending.OTPSalt)
		s.NotContains(pending.OTPHash, s.lastCode)
	})

	s.Run("ttl is ten minutes from creation", func() {
		s.WithinDuration(pending.CreatedAt.Add(10*time.Minute), pending.ExpiresAt, time.Second)
	})

	s.Run("raw password is buffered for promotion", func() {
		s.Equal("secret123", pending.Password)
	})
}

func (s *RegistrationServiceSuite) TestStageConflictsWithExistingIdentity() {
	s.expectEmail()
	s.Require().NoError(s.svc.Stage(s.ctx, s.stageInput("taken@example.com")))
	_, err := s.svc.VerifyOTP(s.ctx, "taken@example.com", s.lastCode)
	s.Require().NoError(err)

	// Once promoted, the email belongs to a permanent identity and cannot be
	// re-staged.
	err = s.svc.Stage(s.ctx, s.stageInput("taken@example.com"))
	s.True(dErrors.HasCode(err, dErrors.CodeConflict))
}

func (s *RegistrationServiceSuite) TestStageReplacesExistingPending() {
	s.expectEmail()
	s.Require().NoError(s.svc.Stage(s.ctx, s.stageInput("retry@example.com")))
	firstCode := s.lastCode

	s.expectEmail()
	s.Require().NoError(s.svc.Stage(s.ctx, s.stageInput("retry@example.com")))
	s.Require().NotEqual(firstCode, s.lastCode)

	// Only the latest code verifies.
	_, err := s.svc.VerifyOTP(s.ctx, "retry@example.com", firstCode)
	s.True(dErrors.HasCode(err, dErrors.CodeInvalidOrExpired))

	ident, err := s.svc.VerifyOTP(s.ctx, "retry@example.com", s.lastCode)
	s.Require().NoError(err)
	s.Equal("retry@example.com", ident.Email)
}

func (s *RegistrationServiceSuite) TestStageRollsBackWhenEmailFails() {
	s.sender.EXPECT().Send(gomock.Any(), gomock.Any()).Return(errors.New("smtp down"))

	err := s.svc.Stage(s.ctx, s.stageInput("undelivered@example.com"))
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeInternal))

	// The staged record must not survive a code the user never received.
	_, err = s.pending.FindByEmail(s.ctx, "undelivered@example.com")
	s.Require().ErrorIs(err, sentinel.ErrNotFound)
}

func (s *RegistrationServiceSuite) TestStageValidatesAttributes() {
	in := s.stageInput("attrs@example.com")
	in.Attributes = domain.RoleAttributes{}

	err := s.svc.Stage(s.ctx, in)
	s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
}

func (s *RegistrationServiceSuite) TestVerifyOTP() {
	s.expectEmail()
	s.Require().NoError(s.svc.Stage(s.ctx, s.stageInput("verify@example.com")))

	s.Run("unknown email is not found", func() {
		_, err := s.svc.VerifyOTP(s.ctx, "ghost@example.com", "123456")
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("wrong code is invalid", func() {
		wrong := "000000"
		if wrong == s.lastCode {
			wrong = "000001"
		}
		_, err := s.svc.VerifyOTP(s.ctx, "verify@example.com", wrong)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidOrExpired))
	})

	s.Run("correct code promotes", func() {
		ident, err := s.svc.VerifyOTP(s.ctx, "verify@example.com", s.lastCode)
		s.Require().NoError(err)
		s.True(ident.EmailVerified)
		s.Equal(domain.StatusPending, ident.ApprovalStatus)

		// Promotion consumed the pending record.
		_, err = s.pending.FindByEmail(s.ctx, "verify@example.com")
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})
}

// Expiry is re-checked at read time against the request-scoped clock, so a
// record the sweeper has not reached yet still refuses a late code.
func (s *RegistrationServiceSuite) TestVerifyOTPExpired() {
	s.expectEmail()
	s.Require().NoError(s.svc.Stage(s.ctx, s.stageInput("late@example.com")))

	future := requestcontext.WithTime(s.ctx, time.Now().Add(11*time.Minute))
	_, err := s.svc.VerifyOTP(future, "late@example.com", s.lastCode)
	s.True(dErrors.HasCode(err, dErrors.CodeInvalidOrExpired))
}

func (s *RegistrationServiceSuite) TestVerifyOTPJustBeforeExpiry() {
	s.expectEmail()
	s.Require().NoError(s.svc.Stage(s.ctx, s.stageInput("ontime@example.com")))

	almost := requestcontext.WithTime(s.ctx, time.Now().Add(9*time.Minute))
	ident, err := s.svc.VerifyOTP(almost, "ontime@example.com", s.lastCode)
	s.Require().NoError(err)
	s.Equal("ontime@example.com", ident.Email)
}
