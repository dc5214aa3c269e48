package errors

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestWrap(t *testing.T) {
	originalErr := errors.New("database connection failed")
	wrapped := Wrap(originalErr, CodeInternal, "internal error", http.StatusInternalServerError)

	if wrapped.Err != originalErr {
		t.Errorf("expected wrapped error to contain original error")
	}
	if !errors.Is(wrapped, originalErr) {
		t.Errorf("errors.Is should reach the cause")
	}
}

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name     string
		appErr   *AppError
		expected string
	}{
		{
			name:     "without underlying error",
			appErr:   Conflict("already paid"),
			expected: "CONFLICT: already paid",
		},
		{
			name:     "with underlying error",
			appErr:   Internal("failed to save booking", errors.New("connection reset")),
			expected: "INTERNAL_ERROR: failed to save booking (caused by: connection reset)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.appErr.Error(); got != tt.expected {
				t.Errorf("Error() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestConstructors(t *testing.T) {
	tests := []struct {
		name       string
		err        *AppError
		wantCode   string
		wantStatus int
		wantMsg    string
	}{
		{"not found", NotFound("booking"), CodeNotFound, http.StatusNotFound, "booking not found"},
		{"forbidden", Forbidden("not authorized for this payment"), CodeForbidden, http.StatusForbidden, "not authorized for this payment"},
		{"invalid date", InvalidDate("check-in in the past"), CodeInvalidDate, http.StatusBadRequest, "check-in in the past"},
		{"capacity", CapacityExceeded(5, 4), CodeCapacityExceeded, http.StatusUnprocessableEntity, "guest count 5 exceeds property capacity 4"},
		{"conflict", Conflict("already canceled"), CodeConflict, http.StatusConflict, "already canceled"},
		{"invalid state", InvalidState("invalid cost for payment"), CodeInvalidState, http.StatusUnprocessableEntity, "invalid cost for payment"},
		{"invalid input", InvalidInput("bad json"), CodeInvalidInput, http.StatusBadRequest, "bad json"},
		{"unauthorized", Unauthorized("missing token"), CodeUnauthorized, http.StatusUnauthorized, "missing token"},
		{"timeout", Timeout("slow"), CodeTimeout, http.StatusGatewayTimeout, "slow"},
		{"unavailable", Unavailable("database"), CodeUnavailable, http.StatusServiceUnavailable, "database is temporarily unavailable"},
		{"rate limited", RateLimited("slow down"), CodeRateLimited, http.StatusTooManyRequests, "slow down"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Code != tt.wantCode {
				t.Errorf("code = %s, want %s", tt.err.Code, tt.wantCode)
			}
			if tt.err.StatusCode() != tt.wantStatus {
				t.Errorf("status = %d, want %d", tt.err.StatusCode(), tt.wantStatus)
			}
			if tt.err.Message != tt.wantMsg {
				t.Errorf("message = %q, want %q", tt.err.Message, tt.wantMsg)
			}
		})
	}
}

func TestCapacityExceeded_Details(t *testing.T) {
	err := CapacityExceeded(6, 4)
	if err.Details["guest_count"] != 6 || err.Details["capacity"] != 4 {
		t.Errorf("unexpected details %v", err.Details)
	}
}

func TestNotFoundWithID(t *testing.T) {
	err := NotFoundWithID("property", "p-1")
	if err.Details["id"] != "p-1" {
		t.Errorf("expected id detail, got %v", err.Details)
	}
}

func TestAsAppError_Wrapped(t *testing.T) {
	inner := Conflict("already booked for this period")
	wrapped := fmt.Errorf("transaction failed: %w", inner)

	if !IsAppError(wrapped) {
		t.Fatal("expected wrapped AppError to be detected")
	}
	if got := AsAppError(wrapped); got != inner {
		t.Errorf("AsAppError() = %v, want original", got)
	}
	if !HasCode(wrapped, CodeConflict) {
		t.Error("HasCode should match the wrapped code")
	}
}

func TestAsAppError_Plain(t *testing.T) {
	plain := errors.New("boom")
	got := AsAppError(plain)
	if got.Code != CodeInternal {
		t.Errorf("expected internal code, got %s", got.Code)
	}
	if !errors.Is(got, plain) {
		t.Error("expected cause to be preserved")
	}
	if IsAppError(plain) {
		t.Error("plain error is not an AppError")
	}
}

func TestAppError_Is(t *testing.T) {
	err := fmt.Errorf("wrap: %w", Conflict("already paid"))
	if !errors.Is(err, Conflict("")) {
		t.Error("errors.Is should match by code")
	}
	if errors.Is(err, NotFound("x")) {
		t.Error("errors.Is should not match a different code")
	}
}

func TestAppError_ToJSON(t *testing.T) {
	var resp ErrorResponse
	if err := json.Unmarshal(CapacityExceeded(3, 2).ToJSON(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.Code != CodeCapacityExceeded {
		t.Errorf("code = %s", resp.Code)
	}
	if resp.Details["capacity"] != float64(2) {
		t.Errorf("details = %v", resp.Details)
	}
}
