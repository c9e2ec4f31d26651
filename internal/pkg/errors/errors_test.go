package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConstructors(t *testing.T) {
	cases := []struct {
		err    *APIError
		code   ErrorCode
		status int
	}{
		{NotFound("preset"), ErrNotFound, http.StatusNotFound},
		{Validation("bad stage"), ErrValidation, http.StatusBadRequest},
		{InvalidInput("bad json"), ErrInvalidInput, http.StatusBadRequest},
		{Unauthorized("no token"), ErrUnauthorized, http.StatusUnauthorized},
		{TokenExpired(), ErrTokenExpired, http.StatusUnauthorized},
		{TokenInvalid("invalid token issuer"), ErrTokenInvalid, http.StatusUnauthorized},
		{DatabaseError(stderrors.New("boom")), ErrDatabaseError, http.StatusInternalServerError},
		{StorageUnavailable(stderrors.New("down")), ErrConnectionFailed, http.StatusServiceUnavailable},
		{InvalidBackup("not json"), ErrInvalidBackup, http.StatusBadRequest},
		{PayloadTooLarge(1024), ErrPayloadTooLarge, http.StatusRequestEntityTooLarge},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.code, tc.err.Code)
		assert.Equal(t, tc.status, tc.err.HTTPStatus)
	}
	assert.Equal(t, "preset not found", NotFound("preset").Message)
	assert.Equal(t, "boom", DatabaseError(stderrors.New("boom")).Details)
}

func TestAs(t *testing.T) {
	wrapped := fmt.Errorf("loading preset: %w", NotFound("preset"))

	apiErr, ok := As(wrapped)
	require.True(t, ok)
	assert.Equal(t, ErrNotFound, apiErr.Code)

	_, ok = As(stderrors.New("plain"))
	assert.False(t, ok)
}

func TestNewErrorResponse(t *testing.T) {
	resp := NewErrorResponse(Validation("volume must be positive"))

	assert.False(t, resp.Success)
	assert.Equal(t, "VALIDATION_ERROR: volume must be positive", resp.Error.Error())
}
