package apperrors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestErrorIsMatchesByCode(t *testing.T) {
	err := fmt.Errorf("submit: %w", Wrap(CodeOrderSaveFailed, "could not save order", errors.New("conn reset")))
	if !errors.Is(err, New(CodeOrderSaveFailed, "")) {
		t.Fatal("expected errors.Is to match by code")
	}
	if errors.Is(err, New(CodePaymentInitFailed, "")) {
		t.Fatal("expected different code not to match")
	}
}

func TestCodeAndMessageOf(t *testing.T) {
	err := fmt.Errorf("wrap: %w", New(CodeLastOwner, "at least one owner is required"))
	if got := CodeOf(err); got != CodeLastOwner {
		t.Fatalf("expected %s, got %s", CodeLastOwner, got)
	}
	if got := MessageOf(err, "fallback"); got != "at least one owner is required" {
		t.Fatalf("unexpected message %q", got)
	}
	if got := MessageOf(errors.New("plain"), "fallback"); got != "fallback" {
		t.Fatalf("expected fallback, got %q", got)
	}
	if got := CodeOf(errors.New("plain")); got != CodeUnknown {
		t.Fatalf("expected unknown, got %s", got)
	}
}

func TestHTTPStatus(t *testing.T) {
	cases := map[Code]int{
		CodeStepIncomplete:       http.StatusUnprocessableEntity,
		CodeCustomerEmailMissing: http.StatusBadRequest,
		CodePaymentInitFailed:    http.StatusBadGateway,
		CodeLastOwner:            http.StatusConflict,
		CodeCheckoutNotReady:     http.StatusConflict,
		CodeUnknown:              http.StatusInternalServerError,
	}
	for code, want := range cases {
		if got := code.HTTPStatus(); got != want {
			t.Fatalf("%s: expected %d, got %d", code, want, got)
		}
	}
}
