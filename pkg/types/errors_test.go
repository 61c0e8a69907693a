package types

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestUnknownMarketErrorAs(t *testing.T) {
	var err error = fmt.Errorf("routing failed: %w", &UnknownMarketError{MarketID: "market-9"})

	var unknown *UnknownMarketError
	if !errors.As(err, &unknown) {
		t.Fatal("expected errors.As to match UnknownMarketError through wrapping")
	}
	if unknown.MarketID != "market-9" {
		t.Errorf("expected market-9, got %s", unknown.MarketID)
	}
}

func TestDispatchErrorUnwrap(t *testing.T) {
	cause := errors.New("connection reset")
	err := &DispatchError{Destination: "chain-7", Nonce: 42, Err: cause}

	if !errors.Is(err, cause) {
		t.Error("expected errors.Is to reach the wrapped transport error")
	}

	msg := err.Error()
	for _, want := range []string{"chain-7", "42", "connection reset"} {
		if !strings.Contains(msg, want) {
			t.Errorf("expected error message to contain %q, got %q", want, msg)
		}
	}
}

func TestRegistryUnavailableUnwrap(t *testing.T) {
	cause := errors.New("dial timeout")
	err := &RegistryUnavailableError{Err: cause}

	if !errors.Is(err, cause) {
		t.Error("expected errors.Is to reach the wrapped cause")
	}
}

func TestOrderValidationError(t *testing.T) {
	err := &OrderValidationError{Index: 2, Err: errors.New("amount must be positive")}

	if !strings.Contains(err.Error(), "order 2") {
		t.Errorf("expected index in message, got %q", err.Error())
	}
}
