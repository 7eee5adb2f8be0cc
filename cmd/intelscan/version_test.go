package main

import (
	"bytes"
	"strings"
	"testing"
)

// TestGetVersion tests version string resolution.
func TestGetVersion(t *testing.T) {
	t.Run("returns ldflags version when set", func(t *testing.T) {
		original := version
		defer func() { version = original }()

		version = "v1.2.3"
		if got := getVersion(); got != "v1.2.3" {
			t.Errorf("expected v1.2.3, got %q", got)
		}
	})

	t.Run("falls back without ldflags", func(t *testing.T) {
		original := version
		defer func() { version = original }()

		version = ""
		if got := getVersion(); got == "" {
			t.Error("expected non-empty version")
		}
	})
}

// TestGetCommit tests commit hash resolution.
func TestGetCommit(t *testing.T) {
	t.Run("returns ldflags commit when set", func(t *testing.T) {
		original := commit
		defer func() { commit = original }()

		commit = "abc1234"
		if got := getCommit(); got != "abc1234" {
			t.Errorf("expected abc1234, got %q", got)
		}
	})

	t.Run("falls back without ldflags", func(t *testing.T) {
		original := commit
		defer func() { commit = original }()

		commit = ""
		if got := getCommit(); got == "" {
			t.Error("expected non-empty commit")
		}
	})
}

// TestGetDate tests build date resolution.
func TestGetDate(t *testing.T) {
	t.Run("returns ldflags date when set", func(t *testing.T) {
		original := date
		defer func() { date = original }()

		date = "2026-01-02"
		if got := getDate(); got != "2026-01-02" {
			t.Errorf("expected 2026-01-02, got %q", got)
		}
	})

	t.Run("falls back without ldflags", func(t *testing.T) {
		original := date
		defer func() { date = original }()

		date = ""
		if got := getDate(); got == "" {
			t.Error("expected non-empty date")
		}
	})
}

// TestNewVersionCmd tests the version command output.
func TestNewVersionCmd(t *testing.T) {
	buf := &bytes.Buffer{}
	root := NewRootCmd()
	root.SetOut(buf)
	root.SetArgs([]string{"version"})

	if err := root.Execute(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got := buf.String()
	for _, fragment := range []string{"intelscan version", "commit:", "built:"} {
		if !strings.Contains(got, fragment) {
			t.Errorf("output = %q, want %q", got, fragment)
		}
	}
}
