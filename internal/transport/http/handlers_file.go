package httptransport

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"eventlift/internal/identity"
	"eventlift/pkg/domain"
	dErrors "eventlift/pkg/domain-errors"
	"eventlift/pkg/requestcontext"
)

// DocumentGate resolves owner ids to document blobs.
type DocumentGate interface {
	Fetch(ctx context.Context, rawID string) (*identity.Document, error)
}

type FileHandler struct {
	documents DocumentGate
	logger    *slog.Logger
}

func NewFileHandler(documents DocumentGate, logger *slog.Logger) *FileHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileHandler{documents: documents, logger: logger}
}

// HandleUserDocument serves a verification document. Only administrators
// and the owner may fetch it; the ownership check lives here at the
// boundary, the gate itself does not authorize.
func (h *FileHandler) HandleUserDocument(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	rawID := chi.URLParam(r, "id")

	if requestcontext.Role(ctx) != domain.RoleAdministrator &&
		requestcontext.UserID(ctx).String() != rawID {
		WriteError(w, dErrors.New(dErrors.CodeForbidden, "not allowed to access this document"))
		return
	}

	doc, err := h.documents.Fetch(ctx, rawID)
	if err != nil {
		WriteError(w, err)
		return
	}

	contentType := doc.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(doc.Data); err != nil {
		h.logger.WarnContext(ctx, "document write failed", "error", err)
	}
}
