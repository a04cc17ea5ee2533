// Package service implements identity promotion and credential operations.
// Transport concerns stay out; storage is reached through small interfaces.
package service

import (
	"context"
	"errors"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"eventlift/internal/audit"
	"eventlift/internal/identity"
	"eventlift/internal/identity/password"
	"eventlift/internal/identity/store"
	"eventlift/internal/platform/metrics"
	"eventlift/pkg/domain"
	dErrors "eventlift/pkg/domain-errors"
	"eventlift/pkg/platform/sentinel"
	"eventlift/pkg/requestcontext"
)

// PendingDeleter is the slice of the pending-registration store promotion
// needs: deleting the source record once the identity exists.
type PendingDeleter interface {
	Delete(ctx context.Context, email string) error
}

// Service is the identity façade: promotion from pending registrations,
// authentication, and password lifecycle.
type Service struct {
	identities store.Store
	pending    PendingDeleter
	hasher     *password.Hasher
	publisher  *audit.Publisher
	metrics    *metrics.Metrics
	logger     *slog.Logger
	tracer     trace.Tracer

	// dummyHash equalizes authentication cost for unknown emails so the
	// failure is indistinguishable from a wrong password, in time as well
	// as in message.
	dummyHash string
}

func New(identities store.Store, pending PendingDeleter, hasher *password.Hasher,
	publisher *audit.Publisher, m *metrics.Metrics, logger *slog.Logger) (*Service, error) {
	if identities == nil {
		return nil, errors.New("identity store is required")
	}
	if hasher == nil {
		return nil, errors.New("password hasher is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	dummy, err := hasher.Hash("eventlift-timing-pad")
	if err != nil {
		return nil, err
	}
	return &Service{
		identities: identities,
		pending:    pending,
		hasher:     hasher,
		publisher:  publisher,
		metrics:    m,
		logger:     logger,
		tracer:     otel.Tracer("eventlift/identity"),
		dummyHash:  dummy,
	}, nil
}

// Promotion is the input to Promote: the surviving fields of a verified
// pending registration.
type Promotion struct {
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

// Promote converts a verified pending registration into a permanent
// identity. The raw password is hashed exactly once, here. The identity is
// created first (the store's email uniqueness is the arbiter for races) and
// the pending record is deleted after, so a concurrent reader may briefly
// see both records but never neither. On Conflict the pending record is
// left intact for inspection.
func (s *Service) Promote(ctx context.Context, p Promotion) (*identity.Identity, error) {
	ctx, span := s.tracer.Start(ctx, "identity.Promote")
	defer span.End()

	hash, err := s.hasher.Hash(p.RawPassword)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to hash password")
	}

	now := requestcontext.Now(ctx)
	ident := &identity.Identity{
		ID:             domain.NewUserID(),
		Email:          p.Email,
		Name:           p.Name,
		PasswordHash:   hash,
		Role:           p.Role,
		EmailVerified:  true,
		ApprovalStatus: domain.StatusPending,
		Attributes:     p.Attributes.ForRole(p.Role),
		Document:       p.Document,
		Phone:          p.Phone,
		LogoURL:        p.LogoURL,
		Description:    p.Description,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.identities.Create(ctx, ident); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.New(dErrors.CodeConflict, "email already registered")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create identity")
	}

	if s.pending != nil {
		if err := s.pending.Delete(ctx, p.Email); err != nil {
			// The identity exists; the leftover pending record is cleaned up
			// by its TTL. Both records present is an allowed transient state.
			s.logger.WarnContext(ctx, "pending record cleanup failed after promotion",
				"email", p.Email,
				"error", err,
			)
		}
	}

	s.emit(ctx, audit.Event{
		UserID:    ident.ID,
		Action:    audit.ActionUserPromoted,
		RequestID: requestcontext.RequestID(ctx),
	})
	if s.metrics != nil {
		s.metrics.UsersPromoted.Inc()
	}
	return ident, nil
}

// Authenticate looks up the identity by email and verifies the password.
// Unknown email and wrong password fail identically.
func (s *Service) Authenticate(ctx context.Context, email, rawPassword string) (*identity.Identity, error) {
	ident, err := s.identities.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			_ = s.hasher.Compare(s.dummyHash, rawPassword)
			return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid email or password")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to look up identity")
	}
	if err := s.hasher.Compare(ident.PasswordHash, rawPassword); err != nil {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid email or password")
	}
	return ident, nil
}

// GetByID returns the identity record.
func (s *Service) GetByID(ctx context.Context, id domain.UserID) (*identity.Identity, error) {
	ident, err := s.identities.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "identity not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to look up identity")
	}
	return ident, nil
}

// ChangePassword verifies the current password before rehashing the new one.
func (s *Service) ChangePassword(ctx context.Context, id domain.UserID, currentRaw, newRaw string) error {
	ident, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.hasher.Compare(ident.PasswordHash, currentRaw); err != nil {
		return dErrors.New(dErrors.CodeUnauthorized, "invalid current password")
	}
	hash, err := s.hasher.Hash(newRaw)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to hash password")
	}
	ident.PasswordHash = hash
	ident.UpdatedAt = requestcontext.Now(ctx)
	if err := s.identities.Update(ctx, ident); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to update identity")
	}
	s.emit(ctx, audit.Event{
		UserID:    ident.ID,
		Action:    audit.ActionPasswordChanged,
		RequestID: requestcontext.RequestID(ctx),
	})
	return nil
}

// ResetPassword unconditionally overwrites the credential with the hash of
// password.DefaultResetPassword. Administrator-only; a deliberate,
// documented recovery path (see the constant's doc).
func (s *Service) ResetPassword(ctx context.Context, id domain.UserID) error {
	ident, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	hash, err := s.hasher.Hash(password.DefaultResetPassword)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to hash password")
	}
	ident.PasswordHash = hash
	ident.UpdatedAt = requestcontext.Now(ctx)
	if err := s.identities.Update(ctx, ident); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to update identity")
	}
	s.emit(ctx, audit.Event{
		UserID:    ident.ID,
		ActorID:   requestcontext.UserID(ctx).String(),
		Action:    audit.ActionPasswordReset,
		RequestID: requestcontext.RequestID(ctx),
	})
	if s.metrics != nil {
		s.metrics.PasswordResets.Inc()
	}
	return nil
}

// ProfileUpdate carries the whitelisted mutable profile fields. Nil means
// leave unchanged; role and email are never updatable here.
type ProfileUpdate struct {
	ClubName          *string
	OrganizationName  *string
	FormerInstitution *string
	Phone             *string
	LogoURL           *string
	Description       *string
}

// UpdateProfile applies the whitelisted field updates.
func (s *Service) UpdateProfile(ctx context.Context, id domain.UserID, upd ProfileUpdate) (*identity.Identity, error) {
	ident, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if upd.ClubName != nil {
		ident.Attributes.ClubName = *upd.ClubName
	}
	if upd.OrganizationName != nil {
		ident.Attributes.OrganizationName = *upd.OrganizationName
	}
	if upd.FormerInstitution != nil {
		ident.Attributes.FormerInstitution = *upd.FormerInstitution
	}
	if upd.Phone != nil {
		ident.Phone = *upd.Phone
	}
	if upd.LogoURL != nil {
		ident.LogoURL = *upd.LogoURL
	}
	if upd.Description != nil {
		ident.Description = *upd.Description
	}
	ident.UpdatedAt = requestcontext.Now(ctx)
	if err := s.identities.Update(ctx, ident); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to update identity")
	}
	return ident, nil
}

func (s *Service) emit(ctx context.Context, event audit.Event) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Emit(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "audit emit failed",
			"action", event.Action,
			"error", err,
		)
	}
}
