// Package httptransport is the thin HTTP layer. Handlers parse and validate
// requests, delegate to domain services, and translate coded errors into a
// uniform JSON envelope; business logic stays out.
package httptransport

import (
	"encoding/json"
	"net/http"

	dErrors "eventlift/pkg/domain-errors"
)

type errorEnvelope struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// WriteJSON writes v with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError translates a coded error into the JSON error envelope. Internal
// errors keep their detail out of the response body.
func WriteError(w http.ResponseWriter, err error) {
	code := dErrors.CodeOf(err)
	env := errorEnvelope{Error: string(code), Message: dErrors.MessageOf(err)}
	if code == dErrors.CodeInternal {
		env.Message = "internal server error"
	}
	WriteJSON(w, dErrors.ToHTTPStatus(code), env)
}
