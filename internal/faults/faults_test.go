package faults

import (
	"errors"
	"fmt"
	"testing"
)

func TestKindOf(t *testing.T) {
	err := New(NotFound, "dish %s is not on the menu", "Zurek")
	if KindOf(err) != NotFound {
		t.Fatalf("expected NotFound, got %s", KindOf(err))
	}
	if err.Error() != "dish Zurek is not on the menu" {
		t.Fatalf("unexpected message: %s", err.Error())
	}
	if KindOf(errors.New("plain")) != KindUnknown {
		t.Fatal("plain errors should map to KindUnknown")
	}
}

func TestWrapKeepsCause(t *testing.T) {
	cause := errors.New("disk full")
	err := Wrap(InvalidState, cause, "could not settle order")

	if !Is(err, InvalidState) {
		t.Fatal("expected InvalidState")
	}
	if !errors.Is(err, cause) {
		t.Fatal("cause should survive wrapping")
	}

	wrapped := fmt.Errorf("handler: %w", err)
	if !Is(wrapped, InvalidState) {
		t.Fatal("kind should be visible through fmt.Errorf wrapping")
	}
}
