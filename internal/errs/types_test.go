package errs

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestExternalServiceErrorUnwraps(t *testing.T) {
	err := NewExternalServiceError("search", "search request failed", true, context.DeadlineExceeded)

	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected wrapped cause to be reachable")
	}
	if err.Error() != "search request failed: context deadline exceeded" {
		t.Fatalf("unexpected message: %q", err.Error())
	}
}

func TestTypedErrorsSurviveWrapping(t *testing.T) {
	wrapped := fmt.Errorf("tool step: %w", NewUnsupportedToolError("get_weather"))

	var toolErr *UnsupportedToolError
	if !errors.As(wrapped, &toolErr) {
		t.Fatalf("expected UnsupportedToolError, got %T", wrapped)
	}
	if toolErr.Tool != "get_weather" {
		t.Fatalf("tool mismatch: %q", toolErr.Tool)
	}
}
