package oauth

import (
	"errors"
	"net/http"
	"testing"
)

func TestOAuthErrorMessage(t *testing.T) {
	err := ErrInvalidGrant("code expired")
	if got := err.Error(); got != "invalid_grant: code expired" {
		t.Errorf("Error() = %q", got)
	}
}

func TestErrorConstructorStatuses(t *testing.T) {
	tests := []struct {
		err        *OAuthError
		wantCode   string
		wantStatus int
	}{
		{ErrInvalidRequest("x"), ErrorCodeInvalidRequest, http.StatusBadRequest},
		{ErrInvalidGrant("x"), ErrorCodeInvalidGrant, http.StatusBadRequest},
		{ErrInvalidClient("x"), ErrorCodeInvalidClient, http.StatusUnauthorized},
		{ErrInvalidScope("x"), ErrorCodeInvalidScope, http.StatusBadRequest},
		{ErrUnauthorizedClient("x"), ErrorCodeUnauthorizedClient, http.StatusBadRequest},
		{ErrUnsupportedGrantType("x"), ErrorCodeUnsupportedGrantType, http.StatusBadRequest},
		{ErrUnsupportedResponseType("x"), ErrorCodeUnsupportedResponseType, http.StatusBadRequest},
		{ErrServerError("x"), ErrorCodeServerError, http.StatusInternalServerError},
		{ErrAccessDenied("x"), ErrorCodeAccessDenied, http.StatusForbidden},
		{ErrRateLimitExceeded("x"), ErrorCodeRateLimitExceeded, http.StatusTooManyRequests},
	}

	for _, tt := range tests {
		t.Run(tt.wantCode, func(t *testing.T) {
			if tt.err.Code != tt.wantCode {
				t.Errorf("Code = %q, want %q", tt.err.Code, tt.wantCode)
			}
			if tt.err.Status != tt.wantStatus {
				t.Errorf("Status = %d, want %d", tt.err.Status, tt.wantStatus)
			}
		})
	}
}

func TestAsOAuthError(t *testing.T) {
	t.Run("passes through OAuth errors", func(t *testing.T) {
		original := ErrInvalidScope("bad scope")
		if got := asOAuthError(original); got != original {
			t.Error("asOAuthError() did not pass through the original error")
		}
	})

	t.Run("wraps internal errors without leaking", func(t *testing.T) {
		got := asOAuthError(errors.New("pq: connection refused to db-internal:5432"))
		if got.Code != ErrorCodeServerError {
			t.Errorf("Code = %q, want server_error", got.Code)
		}
		if got.Description != "internal error" {
			t.Errorf("Description = %q leaks internals", got.Description)
		}
	})
}
