package httptransport

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"eventlift/internal/verification"
	"eventlift/pkg/domain"
	dErrors "eventlift/pkg/domain-errors"
)

// VerificationService serves the administrator listing and decision
// endpoints.
type VerificationService interface {
	ListPending(ctx context.Context) ([]verification.AccountView, error)
	ListAll(ctx context.Context) ([]verification.AccountView, error)
	SetStatus(ctx context.Context, id domain.UserID, decision string) (*verification.AccountView, error)
}

// PasswordResetter resets a credential to the documented default.
type PasswordResetter interface {
	ResetPassword(ctx context.Context, id domain.UserID) error
}

type AdminHandler struct {
	verifications VerificationService
	passwords     PasswordResetter
	logger        *slog.Logger
}

func NewAdminHandler(verifications VerificationService, passwords PasswordResetter, logger *slog.Logger) *AdminHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &AdminHandler{
		verifications: verifications,
		passwords:     passwords,
		logger:        logger,
	}
}

// HandleListPending returns identities awaiting a decision, redacted.
func (h *AdminHandler) HandleListPending(w http.ResponseWriter, r *http.Request) {
	views, err := h.verifications.ListPending(r.Context())
	if err != nil {
		WriteError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, views)
}

// HandleListAll returns every identity, redacted.
func (h *AdminHandler) HandleListAll(w http.ResponseWriter, r *http.Request) {
	views, err := h.verifications.ListAll(r.Context())
	if err != nil {
		WriteError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, views)
}

type setStatusRequest struct {
	Status string `json:"status"`
}

// HandleSetStatus applies a verification decision to the identity in the
// path.
func (h *AdminHandler) HandleSetStatus(w http.ResponseWriter, r *http.Request) {
	id, err := domain.ParseUserID(chi.URLParam(r, "userId"))
	if err != nil {
		WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "invalid user id"))
		return
	}
	var req setStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	view, err := h.verifications.SetStatus(r.Context(), id, req.Status)
	if err != nil {
		WriteError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, view)
}

// HandleResetPassword overwrites the identity's credential with the
// documented default password.
func (h *AdminHandler) HandleResetPassword(w http.ResponseWriter, r *http.Request) {
	id, err := domain.ParseUserID(chi.URLParam(r, "userId"))
	if err != nil {
		WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "invalid user id"))
		return
	}
	if err := h.passwords.ResetPassword(r.Context(), id); err != nil {
		WriteError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"message": "password reset to default"})
}
