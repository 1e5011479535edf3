package services_test

import (
	"errors"
	"strings"
	"testing"

	"cinephile/internal/services"
)

func TestWrapIncludesContext(t *testing.T) {
	base := errors.New("boom")
	err := services.Wrap(services.ErrExternal, "trivia", "generate", "failed", base)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, services.ErrExternal) {
		t.Fatalf("expected marker to be retained, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error to contain base error, got %v", err)
	}
	msg := err.Error()
	for _, fragment := range []string{"trivia", "generate", "failed"} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("expected %q in error string %q", fragment, msg)
		}
	}
}

func TestIsFatal(t *testing.T) {
	missing := services.Wrap(services.ErrNotFound, "pipeline", "inputs", "credits.csv missing", nil)
	if !services.IsFatal(missing) {
		t.Fatal("expected missing input to be fatal")
	}

	external := services.Wrap(services.ErrExternal, "trivia", "generate", "http 500", errors.New("io"))
	if services.IsFatal(external) {
		t.Fatal("expected external failure to be recoverable")
	}

	if services.IsFatal(nil) {
		t.Fatal("expected nil error to be recoverable")
	}
}

func TestWrapDefaultsMarker(t *testing.T) {
	err := services.Wrap(nil, "", "", "", nil)
	if !errors.Is(err, services.ErrTransient) {
		t.Fatalf("expected transient marker, got %v", err)
	}
	if !strings.Contains(err.Error(), "service failure") {
		t.Fatalf("expected default detail, got %q", err.Error())
	}
}
