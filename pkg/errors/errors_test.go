package errors

import (
	stdErrors "errors"
	"fmt"
	"net/http"
	"testing"
)

func TestMetadataFor(t *testing.T) {
	t.Parallel()

	if meta := MetadataFor(CodeSubmission); meta.HTTPStatus != http.StatusBadGateway || !meta.Retryable {
		t.Fatalf("unexpected submission metadata: %+v", meta)
	}
	if meta := MetadataFor(Code("UNKNOWN")); meta.HTTPStatus != http.StatusInternalServerError {
		t.Fatalf("expected unknown code to map to internal, got %+v", meta)
	}
}

func TestWrapPreservesCause(t *testing.T) {
	t.Parallel()

	cause := stdErrors.New("boom")
	err := Wrap(CodeDependency, cause, "upstream call failed")

	if !stdErrors.Is(err, cause) {
		t.Fatal("expected wrapped cause to be reachable")
	}
	if typed := As(fmt.Errorf("outer: %w", err)); typed == nil || typed.Code() != CodeDependency {
		t.Fatalf("expected typed error through wrapping, got %v", typed)
	}
}

func TestWrapNilCause(t *testing.T) {
	t.Parallel()

	err := Wrap(CodeInternal, nil, "message")
	if err.Unwrap() != nil {
		t.Fatal("expected no cause")
	}
	if err.Error() != "INTERNAL_ERROR: message" {
		t.Fatalf("unexpected error string: %q", err.Error())
	}
}

func TestAsNonTyped(t *testing.T) {
	t.Parallel()

	if As(stdErrors.New("plain")) != nil {
		t.Fatal("expected nil for untyped error")
	}
	if As(nil) != nil {
		t.Fatal("expected nil for nil error")
	}
}

func TestWithDetails(t *testing.T) {
	t.Parallel()

	err := New(CodeValidation, "validation failed").WithDetails(map[string]string{"field": "is required"})
	details, ok := err.Details().(map[string]string)
	if !ok || details["field"] != "is required" {
		t.Fatalf("unexpected details: %v", err.Details())
	}
}
