package domainerrors

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCodePropagation(t *testing.T) {
	cause := errors.New("pq: duplicate key value")
	err := Wrap(cause, CodeConflict, "email already registered")

	assert.True(t, HasCode(err, CodeConflict))
	assert.False(t, HasCode(err, CodeNotFound))
	assert.Equal(t, CodeConflict, CodeOf(err))
	assert.Equal(t, "email already registered", MessageOf(err))
	assert.ErrorIs(t, err, cause)
}

func TestCodeOfUncoded(t *testing.T) {
	err := errors.New("plain failure")
	assert.Equal(t, CodeInternal, CodeOf(err))
	assert.Equal(t, "internal error", MessageOf(err))
}

func TestHasCodeNested(t *testing.T) {
	inner := New(CodeNotFound, "identity not found")
	outer := Wrap(inner, CodeInternal, "lookup failed")

	assert.True(t, HasCode(outer, CodeInternal))
	assert.True(t, HasCode(outer, CodeNotFound))
}

func TestToHTTPStatus(t *testing.T) {
	cases := map[Code]int{
		CodeConflict:         http.StatusConflict,
		CodeNotFound:         http.StatusNotFound,
		CodeInvalidOrExpired: http.StatusBadRequest,
		CodeUnauthorized:     http.StatusUnauthorized,
		CodeForbidden:        http.StatusForbidden,
		CodeInvalidInput:     http.StatusBadRequest,
		CodeBadRequest:       http.StatusBadRequest,
		CodeInternal:         http.StatusInternalServerError,
	}
	for code, want := range cases {
		assert.Equal(t, want, ToHTTPStatus(code), "code %s", code)
	}
}
