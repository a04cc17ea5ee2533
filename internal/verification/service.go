// Package verification implements the administrator approval workflow over
// promoted identities.
package verification

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"eventlift/internal/audit"
	"eventlift/internal/identity"
	"eventlift/internal/identity/store"
	"eventlift/internal/platform/metrics"
	"eventlift/internal/profile"
	"eventlift/pkg/domain"
	dErrors "eventlift/pkg/domain-errors"
	"eventlift/pkg/platform/sentinel"
	"eventlift/pkg/requestcontext"
)

// AccountView is the redacted administrator listing of an identity: no
// password hash, no document bytes. DocumentURL is a retrieval handle when
// a document exists, nil otherwise.
type AccountView struct {
	ID             domain.UserID         `json:"id"`
	Email          string                `json:"email"`
	Name           string                `json:"name"`
	Role           domain.Role           `json:"role"`
	EmailVerified  bool                  `json:"emailVerified"`
	ApprovalStatus domain.ApprovalStatus `json:"approvalStatus"`
	Attributes     domain.RoleAttributes `json:"attributes"`
	DocumentURL    *string               `json:"documentUrl"`
	Phone          string                `json:"phone,omitempty"`
	LogoURL        string                `json:"logoUrl,omitempty"`
	Description    string                `json:"description,omitempty"`
	CreatedAt      time.Time             `json:"createdAt"`
	UpdatedAt      time.Time             `json:"updatedAt"`
}

// Service applies verification decisions and serves the admin listings.
type Service struct {
	identities store.Store
	projector  *profile.Projector
	publisher  *audit.Publisher
	metrics    *metrics.Metrics
	logger     *slog.Logger
}

func New(identities store.Store, projector *profile.Projector,
	publisher *audit.Publisher, m *metrics.Metrics, logger *slog.Logger) (*Service, error) {
	if identities == nil {
		return nil, errors.New("identity store is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		identities: identities,
		projector:  projector,
		publisher:  publisher,
		metrics:    m,
		logger:     logger,
	}, nil
}

// ListPending returns redacted views of identities awaiting a decision.
func (s *Service) ListPending(ctx context.Context) ([]AccountView, error) {
	idents, err := s.identities.ListByStatus(ctx, domain.StatusPending)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list identities")
	}
	return views(idents), nil
}

// ListAll returns redacted views of every identity.
func (s *Service) ListAll(ctx context.Context) ([]AccountView, error) {
	idents, err := s.identities.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list identities")
	}
	return views(idents), nil
}

// SetStatus applies an administrator decision. The overwrite is
// unconditional: there is no guard on the current status, so a terminal
// state can be revisited. Such overrides are logged and audited rather than
// rejected. Field-level validation of unrelated attributes is bypassed on
// this path.
func (s *Service) SetStatus(ctx context.Context, id domain.UserID, decision string) (*AccountView, error) {
	target, err := domain.ParseDecision(decision)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInvalidInput, err.Error())
	}

	ident, err := s.identities.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "identity not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to look up identity")
	}

	prev := ident.ApprovalStatus
	if prev.IsTerminal() && prev != target {
		s.logger.WarnContext(ctx, "overriding terminal verification status",
			"user_id", id.String(),
			"from", prev,
			"to", target,
			"actor_id", requestcontext.UserID(ctx).String(),
			"request_id", requestcontext.RequestID(ctx),
		)
		s.emit(ctx, audit.Event{
			UserID:   id,
			ActorID:  requestcontext.UserID(ctx).String(),
			Action:   audit.ActionTerminalOverridden,
			Decision: string(target),
			Reason:   fmt.Sprintf("previous status %s", prev),
		})
		if s.metrics != nil {
			s.metrics.TerminalOverrides.Inc()
		}
	}

	ident.ApprovalStatus = target
	ident.UpdatedAt = requestcontext.Now(ctx)
	if err := s.identities.Update(ctx, ident); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to update identity")
	}

	s.emit(ctx, audit.Event{
		UserID:   id,
		ActorID:  requestcontext.UserID(ctx).String(),
		Action:   audit.ActionDecision,
		Decision: string(target),
	})
	if s.metrics != nil {
		s.metrics.VerificationDecisions.WithLabelValues(string(target)).Inc()
	}

	if target == domain.StatusVerified && s.projector != nil && ident.Role.HasProfile() {
		if _, err := s.projector.Project(ctx, ident); err != nil {
			if dErrors.HasCode(err, dErrors.CodeConflict) {
				// Re-verification of an identity that already has its profile.
				s.logger.DebugContext(ctx, "profile already projected",
					"user_id", id.String(),
				)
			} else {
				s.logger.ErrorContext(ctx, "profile projection failed",
					"user_id", id.String(),
					"error", err,
				)
			}
		}
	}

	view := toView(ident)
	return &view, nil
}

func (s *Service) emit(ctx context.Context, event audit.Event) {
	if s.publisher == nil {
		return
	}
	event.RequestID = requestcontext.RequestID(ctx)
	if err := s.publisher.Emit(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "audit emit failed",
			"action", event.Action,
			"error", err,
		)
	}
}

// DocumentPath is the retrieval handle pattern for identity documents.
func DocumentPath(id domain.UserID) string {
	return fmt.Sprintf("/api/files/user/%s/document", id.String())
}

func toView(ident *identity.Identity) AccountView {
	view := AccountView{
		ID:             ident.ID,
		Email:          ident.Email,
		Name:           ident.Name,
		Role:           ident.Role,
		EmailVerified:  ident.EmailVerified,
		ApprovalStatus: ident.ApprovalStatus,
		Attributes:     ident.Attributes,
		Phone:          ident.Phone,
		LogoURL:        ident.LogoURL,
		Description:    ident.Description,
		CreatedAt:      ident.CreatedAt,
		UpdatedAt:      ident.UpdatedAt,
	}
	if ident.HasDocument() {
		url := DocumentPath(ident.ID)
		view.DocumentURL = &url
	}
	return view
}

func views(idents []*identity.Identity) []AccountView {
	out := make([]AccountView, 0, len(idents))
	for _, ident := range idents {
		out = append(out, toView(ident))
	}
	return out
}
