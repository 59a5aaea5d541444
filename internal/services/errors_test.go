package services

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestWrapTagsMarker(t *testing.T) {
	inner := errors.New("exit status 1")
	err := Wrap(ErrExternalTool, "probe", "inspect", "ffprobe failed", inner)
	if !errors.Is(err, ErrExternalTool) {
		t.Fatalf("expected marker to survive wrapping: %v", err)
	}
	if !errors.Is(err, inner) {
		t.Fatalf("expected inner error to survive wrapping: %v", err)
	}
	want := "external tool error: probe: inspect: ffprobe failed: exit status 1"
	if err.Error() != want {
		t.Fatalf("unexpected message %q, want %q", err.Error(), want)
	}
}

func TestWrapDefaultsToTransient(t *testing.T) {
	err := Wrap(nil, "catalog", "", "", nil)
	if !errors.Is(err, ErrTransient) {
		t.Fatalf("expected transient default, got %v", err)
	}
}

func TestIsTimeout(t *testing.T) {
	if !IsTimeout(Wrap(ErrTimeout, "verify", "decode", "killed after limit", nil)) {
		t.Fatal("expected timeout marker to be detected")
	}
	if !IsTimeout(fmt.Errorf("decode: %w", context.DeadlineExceeded)) {
		t.Fatal("expected deadline exceeded to be detected")
	}
	if IsTimeout(errors.New("plain")) {
		t.Fatal("plain error should not be a timeout")
	}
}
