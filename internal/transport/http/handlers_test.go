package httptransport

import (
	"bytes"
	"context"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"eventlift/internal/audit"
	"eventlift/internal/document"
	"eventlift/internal/email"
	"eventlift/internal/email/mocks"
	"eventlift/internal/identity"
	"eventlift/internal/identity/password"
	identitysvc "eventlift/internal/identity/service"
	identitystore "eventlift/internal/identity/store"
	"eventlift/internal/jwttoken"
	"eventlift/internal/profile"
	registrationsvc "eventlift/internal/registration/service"
	registrationstore "eventlift/internal/registration/store"
	"eventlift/internal/verification"
	"eventlift/pkg/domain"
	"eventlift/pkg/testutil"
)

var codePattern = regexp.MustCompile(`\b(\d{6})\b`)

type HandlersSuite struct {
	suite.Suite
	ctrl       *gomock.Controller
	sender     *mocks.MockSender
	identities *identitystore.InMemory
	pending    *registrationstore.InMemory
	identity   *identitysvc.Service
	tokens     *jwttoken.Service
	router     http.Handler

	lastCode string
}

func (s *HandlersSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.sender = mocks.NewMockSender(s.ctrl)
	s.identities = identitystore.NewInMemory()
	s.pending = registrationstore.NewInMemory()

	logger := slog.Default()
	publisher := audit.NewPublisher(audit.NewInMemoryStore())

	identitySvc, err := identitysvc.New(s.identities, s.pending, password.NewHasher(), publisher, nil, logger)
	s.Require().NoError(err)
	s.identity = identitySvc

	registrationSvc, err := registrationsvc.New(s.pending, s.identities, identitySvc, s.sender, nil, logger)
	s.Require().NoError(err)

	verificationSvc, err := verification.New(s.identities,
		profile.NewProjector(profile.NewInMemory()), publisher, nil, logger)
	s.Require().NoError(err)

	s.tokens = jwttoken.New("test-signing-key", "eventlift", "eventlift-api", time.Hour)

	s.router = New(Router{
		Auth:      NewAuthHandler(registrationSvc, identitySvc, s.tokens, logger),
		Admin:     NewAdminHandler(verificationSvc, identitySvc, logger),
		Files:     NewFileHandler(document.NewGate(s.identities, s.pending), logger),
		Validator: s.tokens,
		Logger:    logger,
	})
}

func TestHandlersSuite(t *testing.T) {
	suite.Run(t, new(HandlersSuite))
}

func (s *HandlersSuite) expectEmail() {
	s.sender.EXPECT().Send(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, msg email.Message) error {
			match := codePattern.FindStringSubmatch(msg.Body)
			s.Require().NotNil(match)
			s.lastCode = match[1]
			return nil
		})
}

func (s *HandlersSuite) registerBody(emailAddr string) map[string]string {
	return map[string]string{
		"name":     "Test User",
		"email":    emailAddr,
		"password": "secret123",
		"role":     "club-admin",
		"clubName": "Chess Club",
	}
}

// registerAndVerify drives the full onboarding of one account and returns
// its bearer token plus identity.
func (s *HandlersSuite) registerAndVerify(emailAddr string) (string, *identity.Identity) {
	s.expectEmail()
	rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodPost, "/api/auth/register", s.registerBody(emailAddr)))
	testutil.AssertStatus(s.T(), rr, http.StatusCreated)

	rr = testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodPost, "/api/auth/verify-otp", map[string]string{
		"email": emailAddr,
		"otp":   s.lastCode,
	}))
	testutil.AssertStatus(s.T(), rr, http.StatusOK)
	resp := testutil.UnmarshalResponse[tokenResponse](s.T(), rr)
	s.Require().NotEmpty(resp.Token)

	ident, err := s.identities.FindByEmail(context.Background(), emailAddr)
	s.Require().NoError(err)
	return resp.Token, ident
}

func (s *HandlersSuite) adminToken() string {
	admin, err := s.identity.Promote(context.Background(), identitysvc.Promotion{
		Email:       "admin@example.com",
		Name:        "Admin",
		RawPassword: "adminsecret",
		Role:        domain.RoleAdministrator,
	})
	s.Require().NoError(err)
	token, err := s.tokens.Issue(admin)
	s.Require().NoError(err)
	return token
}

func (s *HandlersSuite) authed(req *http.Request, token string) *http.Request {
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}

func (s *HandlersSuite) TestRegisterValidation() {
	s.Run("rejects an unknown role", func() {
		body := s.registerBody("bad-role@example.com")
		body["role"] = "superuser"
		rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodPost, "/api/auth/register", body))
		testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, "invalid_input")
	})

	s.Run("rejects a malformed email", func() {
		body := s.registerBody("not-an-email")
		rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodPost, "/api/auth/register", body))
		testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, "invalid_input")
	})

	s.Run("rejects missing role attributes", func() {
		body := s.registerBody("no-club@example.com")
		delete(body, "clubName")
		rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodPost, "/api/auth/register", body))
		testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, "invalid_input")
	})

	s.Run("rejects an unreadable body", func() {
		req := httptest.NewRequest(http.MethodPost, "/api/auth/register", bytes.NewBufferString("{not json"))
		req.Header.Set("Content-Type", "application/json")
		rr := testutil.DoRequest(s.router, req)
		testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, "bad_request")
	})
}

func (s *HandlersSuite) TestOnboardingFlow() {
	token, ident := s.registerAndVerify("flow@example.com")

	s.Run("re-registration of a promoted email conflicts", func() {
		rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodPost, "/api/auth/register", s.registerBody("flow@example.com")))
		testutil.AssertStatusAndError(s.T(), rr, http.StatusConflict, "conflict")
	})

	s.Run("login returns a fresh token", func() {
		rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodPost, "/api/auth/login", map[string]string{
			"email":    "flow@example.com",
			"password": "secret123",
		}))
		testutil.AssertStatus(s.T(), rr, http.StatusOK)
	})

	s.Run("wrong password is unauthorized", func() {
		rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodPost, "/api/auth/login", map[string]string{
			"email":    "flow@example.com",
			"password": "wrong",
		}))
		testutil.AssertStatusAndError(s.T(), rr, http.StatusUnauthorized, "unauthorized")
	})

	s.Run("me requires a token", func() {
		rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/api/auth/me"))
		testutil.AssertStatus(s.T(), rr, http.StatusUnauthorized)
	})

	s.Run("me returns the authenticated identity", func() {
		req := s.authed(testutil.NewRequest(s.T(), http.MethodGet, "/api/auth/me"), token)
		rr := testutil.DoRequest(s.router, req)
		testutil.AssertStatus(s.T(), rr, http.StatusOK)
		resp := testutil.UnmarshalResponse[userResponse](s.T(), rr)
		s.Equal(ident.ID, resp.ID)
		s.Equal("pending", string(resp.ApprovalStatus))
	})
}

func (s *HandlersSuite) TestVerifyOTPFailures() {
	s.expectEmail()
	rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodPost, "/api/auth/register", s.registerBody("otp@example.com")))
	testutil.AssertStatus(s.T(), rr, http.StatusCreated)

	s.Run("unknown email", func() {
		rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodPost, "/api/auth/verify-otp", map[string]string{
			"email": "ghost@example.com", "otp": "123456",
		}))
		testutil.AssertStatusAndError(s.T(), rr, http.StatusNotFound, "not_found")
	})

	s.Run("wrong code", func() {
		wrong := "000000"
		if wrong == s.lastCode {
			wrong = "000001"
		}
		rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodPost, "/api/auth/verify-otp", map[string]string{
			"email": "otp@example.com", "otp": wrong,
		}))
		testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, "invalid_or_expired")
	})
}

func (s *HandlersSuite) TestProfileAndPassword() {
	token, _ := s.registerAndVerify("self@example.com")

	s.Run("updates whitelisted fields", func() {
		req := s.authed(testutil.NewJSONRequest(s.T(), http.MethodPut, "/api/auth/profile", map[string]string{
			"clubName": "Robotics Club",
			"phone":    "+15551234",
		}), token)
		rr := testutil.DoRequest(s.router, req)
		testutil.AssertStatus(s.T(), rr, http.StatusOK)
		resp := testutil.UnmarshalResponse[userResponse](s.T(), rr)
		s.Equal("Robotics Club", resp.Attributes.ClubName)
		s.Equal("+15551234", resp.Phone)
	})

	s.Run("changes the password", func() {
		req := s.authed(testutil.NewJSONRequest(s.T(), http.MethodPut, "/api/auth/password", map[string]string{
			"currentPassword": "secret123",
			"newPassword":     "evenmoresecret",
		}), token)
		rr := testutil.DoRequest(s.router, req)
		testutil.AssertStatus(s.T(), rr, http.StatusOK)

		rr = testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodPost, "/api/auth/login", map[string]string{
			"email":    "self@example.com",
			"password": "evenmoresecret",
		}))
		testutil.AssertStatus(s.T(), rr, http.StatusOK)
	})
}

func (s *HandlersSuite) TestAdminEndpoints() {
	userToken, ident := s.registerAndVerify("subject@example.com")
	adminToken := s.adminToken()

	s.Run("non-admin is forbidden", func() {
		req := s.authed(testutil.NewRequest(s.T(), http.MethodGet, "/api/admin/users/pending"), userToken)
		rr := testutil.DoRequest(s.router, req)
		testutil.AssertStatus(s.T(), rr, http.StatusForbidden)
	})

	s.Run("lists pending identities", func() {
		req := s.authed(testutil.NewRequest(s.T(), http.MethodGet, "/api/admin/users/pending"), adminToken)
		rr := testutil.DoRequest(s.router, req)
		testutil.AssertStatus(s.T(), rr, http.StatusOK)
		views := testutil.UnmarshalResponse[[]verification.AccountView](s.T(), rr)
		s.Require().NotEmpty(*views)
	})

	s.Run("applies a verification decision", func() {
		req := s.authed(testutil.NewJSONRequest(s.T(), http.MethodPut, "/api/admin/verify/"+ident.ID.String(), map[string]string{
			"status": "verified",
		}), adminToken)
		rr := testutil.DoRequest(s.router, req)
		testutil.AssertStatus(s.T(), rr, http.StatusOK)
		view := testutil.UnmarshalResponse[verification.AccountView](s.T(), rr)
		s.Equal("verified", string(view.ApprovalStatus))
	})

	s.Run("rejects a bad decision target", func() {
		req := s.authed(testutil.NewJSONRequest(s.T(), http.MethodPut, "/api/admin/verify/"+ident.ID.String(), map[string]string{
			"status": "approved",
		}), adminToken)
		rr := testutil.DoRequest(s.router, req)
		testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, "invalid_input")
	})

	s.Run("resets a password to the default", func() {
		req := s.authed(testutil.NewRequest(s.T(), http.MethodPut, "/api/admin/users/"+ident.ID.String()+"/reset-password"), adminToken)
		rr := testutil.DoRequest(s.router, req)
		testutil.AssertStatus(s.T(), rr, http.StatusOK)

		rr = testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodPost, "/api/auth/login", map[string]string{
			"email":    "subject@example.com",
			"password": password.DefaultResetPassword,
		}))
		testutil.AssertStatus(s.T(), rr, http.StatusOK)
	})
}

func (s *HandlersSuite) TestMultipartRegisterAndDocumentAccess() {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for key, value := range s.registerBody("docs@example.com") {
		s.Require().NoError(mw.WriteField(key, value))
	}
	part, err := mw.CreateFormFile("document", "proof.pdf")
	s.Require().NoError(err)
	_, err = part.Write([]byte("%PDF-1.4 proof"))
	s.Require().NoError(err)
	s.Require().NoError(mw.Close())

	s.expectEmail()
	req := httptest.NewRequest(http.MethodPost, "/api/auth/register", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rr := testutil.DoRequest(s.router, req)
	testutil.AssertStatus(s.T(), rr, http.StatusCreated)

	rr = testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodPost, "/api/auth/verify-otp", map[string]string{
		"email": "docs@example.com",
		"otp":   s.lastCode,
	}))
	testutil.AssertStatus(s.T(), rr, http.StatusOK)
	resp := testutil.UnmarshalResponse[tokenResponse](s.T(), rr)
	ownerToken := resp.Token
	ownerID := resp.User.ID

	s.Run("owner fetches their own document", func() {
		req := s.authed(testutil.NewRequest(s.T(), http.MethodGet, "/api/files/user/"+ownerID.String()+"/document"), ownerToken)
		rr := testutil.DoRequest(s.router, req)
		s.Equal(http.StatusOK, rr.Code)
		s.Equal([]byte("%PDF-1.4 proof"), rr.Body.Bytes())
	})

	s.Run("another user is forbidden", func() {
		otherToken, _ := s.registerAndVerify("nosy@example.com")
		req := s.authed(testutil.NewRequest(s.T(), http.MethodGet, "/api/files/user/"+ownerID.String()+"/document"), otherToken)
		rr := testutil.DoRequest(s.router, req)
		testutil.AssertStatusAndError(s.T(), rr, http.StatusForbidden, "forbidden")
	})

	s.Run("admin fetches any document", func() {
		req := s.authed(testutil.NewRequest(s.T(), http.MethodGet, "/api/files/user/"+ownerID.String()+"/document"), s.adminToken())
		rr := testutil.DoRequest(s.router, req)
		s.Equal(http.StatusOK, rr.Code)
	})
}
