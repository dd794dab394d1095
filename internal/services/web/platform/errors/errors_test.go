package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestHTTPStatusMapsKnownKinds(t *testing.T) {
	t.Parallel()

	tests := []struct {
		kind Kind
		want int
	}{
		{kind: KindInvalidInput, want: http.StatusBadRequest},
		{kind: KindUnauthorized, want: http.StatusUnauthorized},
		{kind: KindRateLimited, want: http.StatusTooManyRequests},
		{kind: KindUnavailable, want: http.StatusServiceUnavailable},
		{kind: KindNotFound, want: http.StatusNotFound},
		{kind: KindUnknown, want: http.StatusInternalServerError},
	}
	for _, tc := range tests {
		if got := HTTPStatus(E(tc.kind, "x")); got != tc.want {
			t.Fatalf("HTTPStatus(%s) = %d, want %d", tc.kind, got, tc.want)
		}
	}
}

func TestHTTPStatusNilAndUntyped(t *testing.T) {
	t.Parallel()

	if got := HTTPStatus(nil); got != http.StatusOK {
		t.Fatalf("HTTPStatus(nil) = %d, want %d", got, http.StatusOK)
	}
	if got := HTTPStatus(errors.New("boom")); got != http.StatusInternalServerError {
		t.Fatalf("status = %d, want %d", got, http.StatusInternalServerError)
	}
}

func TestErrorStringFallsBackToKindWhenMessageEmpty(t *testing.T) {
	t.Parallel()

	err := Error{Kind: KindRateLimited}
	if got := err.Error(); got != string(KindRateLimited) {
		t.Fatalf("Error() = %q, want %q", got, string(KindRateLimited))
	}
}

func TestFromHTTPStatusClassifiesBackendResponses(t *testing.T) {
	t.Parallel()

	tests := []struct {
		status int
		want   Kind
	}{
		{status: http.StatusUnauthorized, want: KindUnauthorized},
		{status: http.StatusForbidden, want: KindUnauthorized},
		{status: http.StatusTooManyRequests, want: KindRateLimited},
		{status: http.StatusBadRequest, want: KindInvalidInput},
		{status: http.StatusUnprocessableEntity, want: KindInvalidInput},
		{status: http.StatusNotFound, want: KindNotFound},
		{status: http.StatusBadGateway, want: KindUnavailable},
		{status: http.StatusInternalServerError, want: KindUnavailable},
	}
	for _, tc := range tests {
		err := FromHTTPStatus(tc.status, "")
		if got := KindOf(err); got != tc.want {
			t.Fatalf("FromHTTPStatus(%d) kind = %q, want %q", tc.status, got, tc.want)
		}
	}
}

func TestFromHTTPStatusKeepsDetail(t *testing.T) {
	t.Parallel()

	err := FromHTTPStatus(http.StatusBadRequest, " Incorrect email or password ")
	if got := err.Error(); got != "Incorrect email or password" {
		t.Fatalf("Error() = %q, want %q", got, "Incorrect email or password")
	}
	if got := FromHTTPStatus(http.StatusBadRequest, "").Error(); got != "Bad Request" {
		t.Fatalf("Error() = %q, want status text", got)
	}
}

func TestKindOfUnwrapsWrappedErrors(t *testing.T) {
	t.Parallel()

	wrapped := fmt.Errorf("fetch user: %w", E(KindUnauthorized, "denied"))
	if !Is(wrapped, KindUnauthorized) {
		t.Fatal("expected wrapped unauthorized error")
	}
	if Is(nil, KindUnknown) {
		t.Fatal("nil error should not match any kind")
	}
	if got := KindOf(errors.New("plain")); got != KindUnknown {
		t.Fatalf("KindOf(plain) = %q, want %q", got, KindUnknown)
	}
}

func TestLocalizationKey(t *testing.T) {
	t.Parallel()

	if got := LocalizationKey(EK(KindInvalidInput, " error.bad ", "bad")); got != "error.bad" {
		t.Fatalf("LocalizationKey() = %q, want %q", got, "error.bad")
	}
	if got := LocalizationKey(errors.New("plain")); got != "" {
		t.Fatalf("LocalizationKey(plain) = %q, want empty", got)
	}
	if got := LocalizationKey(FromHTTPStatus(http.StatusTooManyRequests, "")); got != "error.rate_limited" {
		t.Fatalf("LocalizationKey(429) = %q", got)
	}
}
