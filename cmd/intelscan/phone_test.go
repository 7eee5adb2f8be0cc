package main

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/intelscan/intelscan/internal/database"
)

// TestNewPhoneCmd tests the phone command creation.
func TestNewPhoneCmd(t *testing.T) {
	t.Parallel()

	cmd := NewPhoneCmd()

	t.Run("has correct use", func(t *testing.T) {
		t.Parallel()
		if cmd.Use != "phone <number>" {
			t.Errorf("expected use 'phone <number>', got %q", cmd.Use)
		}
	})

	t.Run("has region flag", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("region")
		if flag == nil {
			t.Fatal("expected region flag")
		}
		if flag.Shorthand != "r" {
			t.Errorf("expected shorthand 'r', got %q", flag.Shorthand)
		}
	})
}

// TestRunPhoneCmd tests phone analysis end to end. The analysis runs
// against bundled carrier metadata, so no network is involved.
func TestRunPhoneCmd(t *testing.T) {
	t.Parallel()

	t.Run("analyzes a valid number and persists it", func(t *testing.T) {
		t.Parallel()

		tmpDir := t.TempDir()
		cfgPath := writeTestConfig(t, tmpDir)

		buf := &bytes.Buffer{}
		root := NewRootCmd()
		root.SetOut(buf)
		root.SetArgs([]string{"phone", "+442079460000", "-c", cfgPath})

		if err := root.Execute(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		got := buf.String()
		if !strings.Contains(got, "Analyzing phone number: +442079460000") {
			t.Errorf("output = %q, want analysis banner", got)
		}
		if !strings.Contains(got, "Valid number!") {
			t.Errorf("output = %q, want valid verdict", got)
		}
		if !strings.Contains(got, "+44 20 7946 0000") {
			t.Errorf("output = %q, want international format", got)
		}

		db, err := database.Open(filepath.Join(tmpDir, "intelscan.db"), database.DefaultOptions())
		if err != nil {
			t.Fatalf("failed to open database: %v", err)
		}
		defer db.Close()

		lookups, err := db.RecentPhoneLookups(context.Background(), 10)
		if err != nil {
			t.Fatalf("failed to query lookups: %v", err)
		}
		if len(lookups) != 1 {
			t.Fatalf("got %d lookups, want 1", len(lookups))
		}
		if lookups[0].Number != "+442079460000" {
			t.Errorf("stored number = %q, want '+442079460000'", lookups[0].Number)
		}
	})

	t.Run("rejects an unparseable number", func(t *testing.T) {
		t.Parallel()

		tmpDir := t.TempDir()
		cfgPath := writeTestConfig(t, tmpDir)

		root := NewRootCmd()
		root.SetOut(&bytes.Buffer{})
		root.SetArgs([]string{"phone", "not-a-number", "-c", cfgPath})

		err := root.Execute()
		if err == nil {
			t.Fatal("expected error for unparseable number")
		}
		if !strings.Contains(err.Error(), "phone analysis failed") {
			t.Errorf("expected analysis error, got: %v", err)
		}
	})
}
