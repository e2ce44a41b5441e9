package errors

import (
	stdErrors "errors"
	"fmt"
	"net/http"
	"testing"
)

func TestMetadataForKnownCodes(t *testing.T) {
	if got := MetadataFor(CodeNotFound).HTTPStatus; got != http.StatusNotFound {
		t.Fatalf("expected 404 for not found, got %d", got)
	}
	if got := MetadataFor(CodeStateConflict).HTTPStatus; got != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 for state conflict, got %d", got)
	}
	if !MetadataFor(CodeDependency).Retryable {
		t.Fatal("dependency errors should be retryable")
	}
}

func TestMetadataForUnknownCodeFallsBackToInternal(t *testing.T) {
	meta := MetadataFor(Code("NOPE"))
	if meta.HTTPStatus != http.StatusInternalServerError {
		t.Fatalf("expected internal fallback, got %d", meta.HTTPStatus)
	}
}

func TestWrapPreservesCause(t *testing.T) {
	cause := stdErrors.New("row missing")
	err := Wrap(CodeNotFound, cause, "load payout")

	if !stdErrors.Is(err, cause) {
		t.Fatal("expected wrapped cause to survive errors.Is")
	}
	if err.Error() != "NOT_FOUND: load payout" {
		t.Fatalf("unexpected error string: %s", err.Error())
	}
}

func TestAsUnwrapsNestedTypedError(t *testing.T) {
	inner := New(CodeStateConflict, "payout already processed")
	outer := fmt.Errorf("reject payout: %w", inner)

	typed := As(outer)
	if typed == nil || typed.Code() != CodeStateConflict {
		t.Fatalf("expected state conflict, got %v", typed)
	}
}

func TestHasCode(t *testing.T) {
	err := New(CodeForbidden, "platform admin required")
	if !HasCode(err, CodeForbidden) {
		t.Fatal("expected HasCode match")
	}
	if HasCode(err, CodeNotFound) {
		t.Fatal("unexpected HasCode match")
	}
	if HasCode(stdErrors.New("plain"), CodeInternal) {
		t.Fatal("plain errors carry no code")
	}
}

func TestDumpCollectsChain(t *testing.T) {
	err := Wrap(CodeDependency, stdErrors.New("connection refused"), "audit write")
	d := Dump(err)
	if d.Code != CodeDependency {
		t.Fatalf("expected dependency code, got %s", d.Code)
	}
	if len(d.Chain) < 2 {
		t.Fatalf("expected full chain, got %v", d.Chain)
	}
}
