package main

import (
	"bytes"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

// TestNewInitCmd tests the init command creation.
func TestNewInitCmd(t *testing.T) {
	t.Parallel()

	cmd := NewInitCmd()

	t.Run("has correct use", func(t *testing.T) {
		t.Parallel()
		if cmd.Use != "init" {
			t.Errorf("expected use 'init', got %q", cmd.Use)
		}
	})

	t.Run("has output flag", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("output")
		if flag == nil {
			t.Fatal("expected output flag")
		}
		if flag.Shorthand != "o" {
			t.Errorf("expected shorthand 'o', got %q", flag.Shorthand)
		}
		if flag.DefValue != configFileName {
			t.Errorf("expected default %q, got %q", configFileName, flag.DefValue)
		}
	})

	t.Run("has force flag", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("force")
		if flag == nil {
			t.Fatal("expected force flag")
		}
		if flag.Shorthand != "f" {
			t.Errorf("expected shorthand 'f', got %q", flag.Shorthand)
		}
	})
}

// TestRunInitCmd tests the init command execution.
func TestRunInitCmd(t *testing.T) {
	t.Parallel()

	t.Run("creates config file", func(t *testing.T) {
		t.Parallel()

		tmpDir := t.TempDir()
		outputPath := filepath.Join(tmpDir, ".intelscan")

		buf := &bytes.Buffer{}
		cmd := NewInitCmd()
		cmd.SetOut(buf)
		cmd.SetArgs([]string{"-o", outputPath})

		if err := cmd.Execute(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		data, err := os.ReadFile(outputPath)
		if err != nil {
			t.Fatalf("failed to read created file: %v", err)
		}

		content := string(data)
		for _, key := range []string{"databasePath", "resultsDir", "timeoutSeconds", "userAgent", "resolver", "torProxy", "serveAddr"} {
			if !strings.Contains(content, key) {
				t.Errorf("template missing %q", key)
			}
		}
		if !strings.Contains(content, "#") {
			t.Error("template should document settings with comments")
		}
		if !strings.Contains(buf.String(), "Created configuration file: "+outputPath) {
			t.Errorf("output = %q, want creation confirmation", buf.String())
		}
	})

	t.Run("fails if file exists", func(t *testing.T) {
		t.Parallel()

		tmpDir := t.TempDir()
		outputPath := filepath.Join(tmpDir, ".intelscan")
		if err := os.WriteFile(outputPath, []byte("existing"), 0600); err != nil {
			t.Fatalf("failed to create existing file: %v", err)
		}

		cmd := NewInitCmd()
		cmd.SetOut(&bytes.Buffer{})
		cmd.SetErr(&bytes.Buffer{})
		cmd.SetArgs([]string{"-o", outputPath})

		err := cmd.Execute()
		if err == nil {
			t.Fatal("expected error when file exists")
		}
		if !strings.Contains(err.Error(), "already exists") {
			t.Errorf("error = %v, want already-exists message", err)
		}

		data, err := os.ReadFile(outputPath)
		if err != nil {
			t.Fatalf("failed to read file: %v", err)
		}
		if string(data) != "existing" {
			t.Error("existing file should not be modified")
		}
	})

	t.Run("force overwrites existing file", func(t *testing.T) {
		t.Parallel()

		tmpDir := t.TempDir()
		outputPath := filepath.Join(tmpDir, ".intelscan")
		if err := os.WriteFile(outputPath, []byte("existing"), 0600); err != nil {
			t.Fatalf("failed to create existing file: %v", err)
		}

		cmd := NewInitCmd()
		cmd.SetOut(&bytes.Buffer{})
		cmd.SetArgs([]string{"-o", outputPath, "-f"})

		if err := cmd.Execute(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		data, err := os.ReadFile(outputPath)
		if err != nil {
			t.Fatalf("failed to read file: %v", err)
		}
		if !strings.Contains(string(data), "databasePath") {
			t.Error("file should be overwritten with template content")
		}
	})

	t.Run("creates nested directories", func(t *testing.T) {
		t.Parallel()

		tmpDir := t.TempDir()
		outputPath := filepath.Join(tmpDir, "nested", "dir", "config.yaml")

		cmd := NewInitCmd()
		cmd.SetOut(&bytes.Buffer{})
		cmd.SetArgs([]string{"-o", outputPath})

		if err := cmd.Execute(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if _, err := os.Stat(outputPath); err != nil {
			t.Errorf("expected file to be created: %v", err)
		}
	})

	t.Run("has secure permissions", func(t *testing.T) {
		t.Parallel()

		if runtime.GOOS == "windows" {
			t.Skip("file permissions work differently on Windows")
		}

		tmpDir := t.TempDir()
		outputPath := filepath.Join(tmpDir, ".intelscan")

		cmd := NewInitCmd()
		cmd.SetOut(&bytes.Buffer{})
		cmd.SetArgs([]string{"-o", outputPath})

		if err := cmd.Execute(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		info, err := os.Stat(outputPath)
		if err != nil {
			t.Fatalf("failed to stat file: %v", err)
		}
		if perm := info.Mode().Perm(); perm != 0600 {
			t.Errorf("expected permissions 0600, got %04o", perm)
		}
	})
}

// TestConfigTemplate ensures the embedded template stays readable and
// documents the config file keys.
func TestConfigTemplate(t *testing.T) {
	t.Parallel()

	data, err := configTemplate.ReadFile("templates/intelscan.yaml")
	if err != nil {
		t.Fatalf("failed to read embedded template: %v", err)
	}
	if len(data) == 0 {
		t.Fatal("embedded template is empty")
	}

	content := string(data)
	for _, key := range []string{"databasePath", "torProxy", "resolver"} {
		if !strings.Contains(content, key) {
			t.Errorf("template missing %q", key)
		}
	}
}
