package httptransport

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/asaskevich/govalidator"

	"eventlift/internal/identity"
	identitysvc "eventlift/internal/identity/service"
	registrationsvc "eventlift/internal/registration/service"
	"eventlift/internal/verification"
	"eventlift/pkg/domain"
	dErrors "eventlift/pkg/domain-errors"
	"eventlift/pkg/requestcontext"
)

// maxDocumentBytes bounds the uploaded verification document.
const maxDocumentBytes = 5 << 20

// RegistrationService stages registrations and verifies one-time codes.
type RegistrationService interface {
	Stage(ctx context.Context, in registrationsvc.StageInput) error
	VerifyOTP(ctx context.Context, email, code string) (*identity.Identity, error)
}

// IdentityService serves the authenticated self endpoints.
type IdentityService interface {
	Authenticate(ctx context.Context, email, rawPassword string) (*identity.Identity, error)
	GetByID(ctx context.Context, id domain.UserID) (*identity.Identity, error)
	UpdateProfile(ctx context.Context, id domain.UserID, upd identitysvc.ProfileUpdate) (*identity.Identity, error)
	ChangePassword(ctx context.Context, id domain.UserID, currentRaw, newRaw string) error
}

// TokenIssuer signs access tokens for authenticated identities.
type TokenIssuer interface {
	Issue(ident *identity.Identity) (string, error)
}

type AuthHandler struct {
	registrations RegistrationService
	identities    IdentityService
	tokens        TokenIssuer
	logger        *slog.Logger
}

func NewAuthHandler(registrations RegistrationService, identities IdentityService,
	tokens TokenIssuer, logger *slog.Logger) *AuthHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthHandler{
		registrations: registrations,
		identities:    identities,
		tokens:        tokens,
		logger:        logger,
	}
}

type registerForm struct {
	Name              string `json:"name"`
	Email             string `json:"email"`
	Password          string `json:"password"`
	Role              string `json:"role"`
	ClubName          string `json:"clubName"`
	OrganizationName  string `json:"organizationName"`
	FormerInstitution string `json:"formerInstitution"`
	Phone             string `json:"phone"`
	LogoURL           string `json:"logoUrl"`
	Description       string `json:"description"`
}

// HandleRegister stages a registration. The body is either JSON or a
// multipart form; only the multipart form can carry the optional
// verification document under the "document" field.
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	form, doc, err := parseRegisterRequest(r)
	if err != nil {
		WriteError(w, err)
		return
	}
	if err := validateRegisterForm(form); err != nil {
		WriteError(w, err)
		return
	}
	role, err := domain.ParseRole(form.Role)
	if err != nil {
		WriteError(w, dErrors.New(dErrors.CodeInvalidInput, err.Error()))
		return
	}

	err = h.registrations.Stage(r.Context(), registrationsvc.StageInput{
		Email:       form.Email,
		Name:        form.Name,
		RawPassword: form.Password,
		Role:        role,
		Attributes: domain.RoleAttributes{
			ClubName:          form.ClubName,
			OrganizationName:  form.OrganizationName,
			FormerInstitution: form.FormerInstitution,
		},
		Document:    doc,
		Phone:       form.Phone,
		LogoURL:     form.LogoURL,
		Description: form.Description,
	})
	if err != nil {
		WriteError(w, err)
		return
	}

	WriteJSON(w, http.StatusCreated, map[string]string{
		"message": "verification code sent to email",
	})
}

func parseRegisterRequest(r *http.Request) (registerForm, *identity.Document, error) {
	contentType := r.Header.Get("Content-Type")
	if !govalidator.Contains(contentType, "multipart/form-data") {
		var form registerForm
		if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
			return registerForm{}, nil, dErrors.New(dErrors.CodeBadRequest, "invalid request body")
		}
		return form, nil, nil
	}

	if err := r.ParseMultipartForm(maxDocumentBytes); err != nil {
		return registerForm{}, nil, dErrors.New(dErrors.CodeBadRequest, "invalid multipart form")
	}
	form := registerForm{
		Name:              r.FormValue("name"),
		Email:             r.FormValue("email"),
		Password:          r.FormValue("password"),
		Role:              r.FormValue("role"),
		ClubName:          r.FormValue("clubName"),
		OrganizationName:  r.FormValue("organizationName"),
		FormerInstitution: r.FormValue("formerInstitution"),
		Phone:             r.FormValue("phone"),
		LogoURL:           r.FormValue("logoUrl"),
		Description:       r.FormValue("description"),
	}

	file, header, err := r.FormFile("document")
	if err == http.ErrMissingFile {
		return form, nil, nil
	}
	if err != nil {
		return registerForm{}, nil, dErrors.New(dErrors.CodeBadRequest, "invalid document upload")
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxDocumentBytes+1))
	if err != nil {
		return registerForm{}, nil, dErrors.New(dErrors.CodeBadRequest, "failed to read document")
	}
	if len(data) > maxDocumentBytes {
		return registerForm{}, nil, dErrors.New(dErrors.CodeInvalidInput, "document exceeds the size limit")
	}
	doc := &identity.Document{
		Data:        data,
		ContentType: header.Header.Get("Content-Type"),
	}
	return form, doc, nil
}

func validateRegisterForm(form registerForm) error {
	if !govalidator.IsEmail(form.Email) {
		return dErrors.New(dErrors.CodeInvalidInput, "invalid email")
	}
	if !govalidator.StringLength(form.Name, "1", "100") {
		return dErrors.New(dErrors.CodeInvalidInput, "name must be between 1 and 100 characters")
	}
	if !govalidator.StringLength(form.Password, "6", "72") {
		return dErrors.New(dErrors.CodeInvalidInput, "password must be between 6 and 72 characters")
	}
	return nil
}

type verifyOTPRequest struct {
	Email string `json:"email"`
	OTP   string `json:"otp"`
}

type tokenResponse struct {
	Token string       `json:"token"`
	User  userResponse `json:"user"`
}

// HandleVerifyOTP checks the submitted code, promoting the registration and
// returning a bearer token on success.
func (h *AuthHandler) HandleVerifyOTP(w http.ResponseWriter, r *http.Request) {
	var req verifyOTPRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	if !govalidator.IsEmail(req.Email) || req.OTP == "" {
		WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "email and otp are required"))
		return
	}

	ident, err := h.registrations.VerifyOTP(r.Context(), req.Email, req.OTP)
	if err != nil {
		WriteError(w, err)
		return
	}
	token, err := h.tokens.Issue(ident)
	if err != nil {
		WriteError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, tokenResponse{Token: token, User: toUserResponse(ident)})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// HandleLogin authenticates by email and password.
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	if req.Email == "" || req.Password == "" {
		WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "email and password are required"))
		return
	}

	ident, err := h.identities.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		WriteError(w, err)
		return
	}
	token, err := h.tokens.Issue(ident)
	if err != nil {
		WriteError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, tokenResponse{Token: token, User: toUserResponse(ident)})
}

// HandleMe returns the authenticated identity.
func (h *AuthHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	ident, err := h.identities.GetByID(r.Context(), requestcontext.UserID(r.Context()))
	if err != nil {
		WriteError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, toUserResponse(ident))
}

type updateProfileRequest struct {
	ClubName          *string `json:"clubName"`
	OrganizationName  *string `json:"organizationName"`
	FormerInstitution *string `json:"formerInstitution"`
	Phone             *string `json:"phone"`
	LogoURL           *string `json:"logoUrl"`
	Description       *string `json:"description"`
}

// HandleUpdateProfile applies the whitelisted profile field updates. Role
// and email are not on the whitelist and silently cannot change.
func (h *AuthHandler) HandleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req updateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	ident, err := h.identities.UpdateProfile(r.Context(), requestcontext.UserID(r.Context()), identitysvc.ProfileUpdate{
		ClubName:          req.ClubName,
		OrganizationName:  req.OrganizationName,
		FormerInstitution: req.FormerInstitution,
		Phone:             req.Phone,
		LogoURL:           req.LogoURL,
		Description:       req.Description,
	})
	if err != nil {
		WriteError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, toUserResponse(ident))
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// HandleChangePassword verifies the current password before setting the new.
func (h *AuthHandler) HandleChangePassword(w http.ResponseWriter, r *http.Request) {
	var req changePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	if !govalidator.StringLength(req.NewPassword, "6", "72") {
		WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "password must be between 6 and 72 characters"))
		return
	}

	err := h.identities.ChangePassword(r.Context(), requestcontext.UserID(r.Context()), req.CurrentPassword, req.NewPassword)
	if err != nil {
		WriteError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"message": "password updated"})
}

type userResponse struct {
	ID             domain.UserID         `json:"id"`
	Name           string                `json:"name"`
	Email          string                `json:"email"`
	Role           domain.Role           `json:"role"`
	EmailVerified  bool                  `json:"emailVerified"`
	ApprovalStatus domain.ApprovalStatus `json:"approvalStatus"`
	Attributes     domain.RoleAttributes `json:"attributes"`
	DocumentURL    *string               `json:"documentUrl"`
	Phone          string                `json:"phone,omitempty"`
	LogoURL        string                `json:"logoUrl,omitempty"`
	Description    string                `json:"description,omitempty"`
	CreatedAt      time.Time             `json:"createdAt"`
}

func toUserResponse(ident *identity.Identity) userResponse {
	resp := userResponse{
		ID:             ident.ID,
		Name:           ident.Name,
		Email:          ident.Email,
		Role:           ident.Role,
		EmailVerified:  ident.EmailVerified,
		ApprovalStatus: ident.ApprovalStatus,
		Attributes:     ident.Attributes,
		Phone:          ident.Phone,
		LogoURL:        ident.LogoURL,
		Description:    ident.Description,
		CreatedAt:      ident.CreatedAt,
	}
	if ident.HasDocument() {
		url := verification.DocumentPath(ident.ID)
		resp.DocumentURL = &url
	}
	return resp
}
