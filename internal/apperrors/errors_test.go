package apperrors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", Validation("Missing required fields"), http.StatusBadRequest},
		{"conflict", Conflict("Case number already exists"), http.StatusBadRequest},
		{"not found", NotFound("Case not found"), http.StatusNotFound},
		{"unauthorized", Unauthorized("Invalid credentials"), http.StatusUnauthorized},
		{"forbidden", Forbidden("Invalid credentials"), http.StatusForbidden},
		{"internal", Internal("Failed to create case", errors.New("db down")), http.StatusInternalServerError},
		{"untyped", errors.New("plain"), http.StatusInternalServerError},
		{"wrapped", fmt.Errorf("create: %w", NotFound("User not found")), http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HTTPStatus(tt.err); got != tt.want {
				t.Errorf("HTTPStatus() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestPublicMessageHidesCause(t *testing.T) {
	err := Internal("Failed to fetch cases", errors.New("pq: connection refused"))
	if got := PublicMessage(err, "fallback"); got != "Failed to fetch cases" {
		t.Errorf("unexpected public message %q", got)
	}
	if got := PublicMessage(errors.New("raw"), "fallback"); got != "fallback" {
		t.Errorf("expected fallback for untyped error, got %q", got)
	}
	if !errors.Is(err, err.(*Error).Err) {
		t.Errorf("expected Unwrap to expose the cause")
	}
}

func TestIs(t *testing.T) {
	if !Is(Conflict("x"), KindConflict) {
		t.Errorf("expected conflict kind")
	}
	if Is(Validation("x"), KindConflict) {
		t.Errorf("validation must not match conflict")
	}
}
