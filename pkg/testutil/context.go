package testutil

import (
	"net/http"
	"time"

	"eventlift/pkg/domain"
	"eventlift/pkg/requestcontext"
)

// WithAuth injects an authenticated user ID and role into the request
// context, simulating what the auth middleware does.
func WithAuth(req *http.Request, userID domain.UserID, role domain.Role) *http.Request {
	ctx := requestcontext.WithUserID(req.Context(), userID)
	ctx = requestcontext.WithRole(ctx, role)
	return req.WithContext(ctx)
}

// WithTime pins the request-scoped clock, so expiry behavior can be tested
// without sleeping.
func WithTime(req *http.Request, now time.Time) *http.Request {
	return req.WithContext(requestcontext.WithTime(req.Context(), now))
}
