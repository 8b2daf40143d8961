package services_test

import (
	"errors"
	"strings"
	"testing"

	"emojiplot/internal/services"
)

func TestWrapIncludesContext(t *testing.T) {
	base := errors.New("boom")
	err := services.Wrap(services.ErrGeneration, "generator", "plot", "failed", base)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, services.ErrGeneration) {
		t.Fatalf("expected marker to be retained, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error to contain base error, got %v", err)
	}
	msg := err.Error()
	for _, fragment := range []string{"generator", "plot", "failed"} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("expected %q in error string %q", fragment, msg)
		}
	}
}

func TestWrapDefaultsToTransient(t *testing.T) {
	err := services.Wrap(nil, "", "", "", nil)
	if !errors.Is(err, services.ErrTransient) {
		t.Fatalf("expected transient marker, got %v", err)
	}
	if !strings.Contains(err.Error(), "service failure") {
		t.Fatalf("expected fallback detail, got %q", err.Error())
	}
}

func TestIsCacheMiss(t *testing.T) {
	miss := services.Wrap(services.ErrNotFound, "artifactstore", "load", "dune", nil)
	if !services.IsCacheMiss(miss) {
		t.Fatal("expected not-found error to be a cache miss")
	}
	corrupt := services.Wrap(services.ErrCorruptData, "artifactstore", "load", "dune", errors.New("bad json"))
	if services.IsCacheMiss(corrupt) {
		t.Fatal("corrupt data must not be treated as a cache miss")
	}
}
