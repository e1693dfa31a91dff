package utils

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError_Error(t *testing.T) {
	inner := errors.New("boom")

	assert.Equal(t, "Op: msg: boom", E(CodeInternal, "Op", "msg", inner).Error())
	assert.Equal(t, "Op: msg", E(CodeInternal, "Op", "msg", nil).Error())
	assert.Equal(t, "Op: boom", E(CodeInternal, "Op", "", inner).Error())
	assert.Equal(t, "msg", E(CodeInternal, "", "msg", nil).Error())
	assert.Equal(t, "error", E(CodeInternal, "", "", nil).Error())
}

func TestAppError_UnwrapsSentinel(t *testing.T) {
	err := E(CodeConflict, "SessionService.ProcessMessage", "session busy", ErrSessionBusy)
	wrapped := fmt.Errorf("handler: %w", err)

	assert.True(t, errors.Is(wrapped, ErrSessionBusy))
	assert.True(t, IsCode(wrapped, CodeConflict))
	assert.False(t, IsCode(wrapped, CodeNotFound))
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		code Code
		want int
	}{
		{CodeInvalidArgument, http.StatusBadRequest},
		{CodeUnauthorized, http.StatusUnauthorized},
		{CodeForbidden, http.StatusForbidden},
		{CodeNotFound, http.StatusNotFound},
		{CodeConflict, http.StatusConflict},
		{CodeFailedPrecondition, http.StatusConflict},
		{CodeUnavailable, http.StatusServiceUnavailable},
		{CodeTimeout, http.StatusGatewayTimeout},
		{CodeCanceled, 499},
		{CodeInternal, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatus(E(tt.code, "op", "msg", nil)))
		})
	}

	assert.Equal(t, http.StatusNotFound, HTTPStatus(ErrSessionNotFound))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(errors.New("plain")))
}
