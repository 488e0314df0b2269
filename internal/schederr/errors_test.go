package schederr

import (
	"errors"
	"testing"
)

func TestErrQueueEmptyIsSentinel(t *testing.T) {
	if !errors.Is(ErrQueueEmpty, ErrQueueEmpty) {
		t.Fatal("expected ErrQueueEmpty to compare equal to itself")
	}
}

func TestMalformedSpecErrorMessage(t *testing.T) {
	err := NewMalformedSpecError("u1", "A", "duration must be positive")
	if err.Error() == "" {
		t.Fatal("expected non-empty error message")
	}
	var target *MalformedSpecError
	if !errors.As(err, &target) {
		t.Fatalf("expected errors.As to unwrap MalformedSpecError, got %v", err)
	}
	if target.User != "u1" || target.Task != "A" {
		t.Fatalf("unexpected fields: %+v", target)
	}
}

func TestTimeNotFoundErrorMessage(t *testing.T) {
	err := NewTimeNotFoundError(42)
	var target *TimeNotFoundError
	if !errors.As(err, &target) {
		t.Fatalf("expected errors.As to unwrap TimeNotFoundError, got %v", err)
	}
	if target.Time != 42 {
		t.Fatalf("expected Time=42, got %d", target.Time)
	}
}
