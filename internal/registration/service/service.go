// Package service drives the staged half of onboarding: buffering
// registrations, delivering one-time codes, and handing verified
// registrations over for promotion.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"eventlift/internal/email"
	"eventlift/internal/identity"
	identitysvc "eventlift/internal/identity/service"
	"eventlift/internal/platform/metrics"
	"eventlift/internal/registration"
	"eventlift/internal/registration/otp"
	"eventlift/internal/registration/store"
	"eventlift/pkg/domain"
	dErrors "eventlift/pkg/domain-errors"
	"eventlift/pkg/platform/sentinel"
	"eventlift/pkg/requestcontext"
)

// IdentityFinder is the slice of the identity store staging needs: refusing
// emails that already belong to a permanent identity.
type IdentityFinder interface {
	FindByEmail(ctx context.Context, email string) (*identity.Identity, error)
}

// Promoter converts a verified registration into a permanent identity.
type Promoter interface {
	Promote(ctx context.Context, p identitysvc.Promotion) (*identity.Identity, error)
}

// Service stages registrations and verifies one-time codes.
type Service struct {
	pending    store.Store
	identities IdentityFinder
	promoter   Promoter
	sender     email.Sender
	metrics    *metrics.Metrics
	logger     *slog.Logger
	tracer     trace.Tracer
}

func New(pending store.Store, identities IdentityFinder, promoter Promoter,
	sender email.Sender, m *metrics.Metrics, logger *slog.Logger) (*Service, error) {
	if pending == nil {
		return nil, errors.New("pending store is required")
	}
	if identities == nil {
		return nil, errors.New("identity finder is required")
	}
	if promoter == nil {
		return nil, errors.New("promoter is required")
	}
	if sender == nil {
		return nil, errors.New("email sender is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		pending:    pending,
		identities: identities,
		promoter:   promoter,
		sender:     sender,
		metrics:    m,
		logger:     logger,
		tracer:     otel.Tracer("eventlift/registration"),
	}, nil
}

// StageInput carries everything captured at registration time.
type StageInput struct {
	Email       string
	Name        string
	RawPassword string
	Role        domain.Role
	Attributes  domain.RoleAttributes
	Document    *identity.Document
	Phone       string
	LogoURL     string
	Description string
}

// Stage buffers a registration and emails its one-time code. An existing
// pending record for the same email is replaced unconditionally, which is
// how a user retries after a lost code. An existing permanent identity is a
// hard conflict. If code delivery fails the staged record is rolled back so
// the email slot is not burned by a code the user never received.
func (s *Service) Stage(ctx context.Context, in StageInput) error {
	ctx, span := s.tracer.Start(ctx, "registration.Stage")
	defer span.End()

	if _, err := s.identities.FindByEmail(ctx, in.Email); err == nil {
		return dErrors.New(dErrors.CodeConflict, "email already registered")
	} else if !errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to look up identity")
	}

	if err := in.Attributes.Validate(in.Role); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInvalidInput, err.Error())
	}

	code, err := otp.Generate()
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to generate verification code")
	}
	salt, err := otp.NewSalt()
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to generate verification code")
	}

	now := requestcontext.Now(ctx)
	pending := &registration.PendingRegistration{
		ID:           domain.NewPendingID(),
		Email:        in.Email,
		Name:         in.Name,
		Password:     in.RawPassword,
		Role:         in.Role,
		Attributes:   in.Attributes.ForRole(in.Role),
		Document:     in.Document,
		Phone:        in.Phone,
		LogoURL:      in.LogoURL,
		Description:  in.Description,
		OTPHash:      otp.Hash(code, salt),
		OTPSalt:      salt,
		OTPExpiresAt: now.Add(otp.TTL),
		CreatedAt:    now,
		ExpiresAt:    now.Add(otp.TTL),
	}

	if err := s.pending.Replace(ctx, pending); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to stage registration")
	}

	msg := email.Message{
		Recipient: in.Email,
		Subject:   "Your EventLift verification code",
		Body:      fmt.Sprintf("Your verification code is %s. It expires in %d minutes.", code, int(otp.TTL.Minutes())),
	}
	if err := s.sender.Send(ctx, msg); err != nil {
		if delErr := s.pending.Delete(ctx, in.Email); delErr != nil {
			s.logger.ErrorContext(ctx, "rollback of staged registration failed",
				"email", in.Email,
				"error", delErr,
			)
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to send verification email")
	}

	if s.metrics != nil {
		s.metrics.RegistrationsStaged.Inc()
	}
	s.logger.InfoContext(ctx, "registration staged",
		"email", in.Email,
		"role", in.Role,
		"request_id", requestcontext.RequestID(ctx),
	)
	return nil
}

// VerifyOTP checks the submitted code against the staged registration and,
// on success, promotes it to a permanent identity. Wrong code and expired
// record fail with the same coded error; only a missing record is reported
// as not found.
func (s *Service) VerifyOTP(ctx context.Context, emailAddr, code string) (*identity.Identity, error) {
	ctx, span := s.tracer.Start(ctx, "registration.VerifyOTP")
	defer span.End()

	pending, err := s.pending.FindByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			s.countVerification("not_found")
			return nil, dErrors.New(dErrors.CodeNotFound, "no pending registration for this email")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to look up pending registration")
	}

	now := requestcontext.Now(ctx)
	if pending.Expired(now) || now.After(pending.OTPExpiresAt) {
		s.countVerification("expired")
		return nil, dErrors.New(dErrors.CodeInvalidOrExpired, "invalid or expired verification code")
	}
	if !otp.Verify(pending.OTPHash, pending.OTPSalt, code) {
		s.countVerification("invalid")
		return nil, dErrors.New(dErrors.CodeInvalidOrExpired, "invalid or expired verification code")
	}

	ident, err := s.promoter.Promote(ctx, identitysvc.Promotion{
		Email:       pending.Email,
		Name:        pending.Name,
		RawPassword: pending.Password,
		Role:        pending.Role,
		Attributes:  pending.Attributes,
		Document:    pending.Document,
		Phone:       pending.Phone,
		LogoURL:     pending.LogoURL,
		Description: pending.Description,
	})
	if err != nil {
		s.countVerification("promotion_failed")
		return nil, err
	}

	s.countVerification("ok")
	return ident, nil
}

func (s *Service) countVerification(outcome string) {
	if s.metrics != nil {
		s.metrics.OTPVerifications.WithLabelValues(outcome).Inc()
	}
}
