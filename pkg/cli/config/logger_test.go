package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/m-mizutani/vsget/pkg/cli/config"
	"github.com/m-mizutani/vsget/pkg/domain/types"
)

func TestLogger_Configure(t *testing.T) {
	tests := []struct {
		name    string
		level   string
		verbose bool
		wantErr bool
	}{
		{
			name:    "Valid level: debug",
			level:   "debug",
			wantErr: false,
		},
		{
			name:    "Valid level: INFO (case insensitive)",
			level:   "INFO",
			wantErr: false,
		},
		{
			name:    "Valid level: warning",
			level:   "warning",
			wantErr: false,
		},
		{
			name:    "Valid level: warn alias",
			level:   "warn",
			wantErr: false,
		},
		{
			name:    "Valid level: error",
			level:   "error",
			wantErr: false,
		},
		{
			name:    "Valid level: critical",
			level:   "critical",
			wantErr: false,
		},
		{
			name:    "Verbose wins over level",
			level:   "error",
			verbose: true,
			wantErr: false,
		},
		{
			name:    "Invalid level: loud",
			level:   "loud",
			wantErr: true,
		},
		{
			name:    "Invalid level: empty string",
			level:   "",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger := &config.Logger{
				Level:   tt.level,
				Verbose: tt.verbose,
			}

			result, closer, err := logger.Configure()
			if (err != nil) != tt.wantErr {
				t.Errorf("Configure() error = %v, wantErr %v", err, tt.wantErr)
				return
			}

			if tt.wantErr {
				if !types.HasTag(err, types.TagValidation) {
					t.Errorf("Configure() error = %v, want validation tag", err)
				}
				return
			}

			if result == nil {
				t.Error("Configure() returned nil logger for valid input")
			}
			if closer == nil {
				t.Error("Configure() returned nil closer for valid input")
			}
		})
	}
}

func TestLogger_Configure_FileSink(t *testing.T) {
	dir := t.TempDir()
	logger := &config.Logger{
		Level: "info",
		File:  filepath.Join(dir, "vsget.log"),
	}

	result, closer, err := logger.Configure()
	if err != nil {
		t.Fatalf("Configure() unexpected error = %v", err)
	}

	result.Info("hello from the file sink")
	closer()

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("failed to read log dir: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 log file, got %d", len(entries))
	}

	raw, err := os.ReadFile(filepath.Join(dir, entries[0].Name()))
	if err != nil {
		t.Fatalf("failed to read log file: %v", err)
	}
	if !strings.Contains(string(raw), "hello from the file sink") {
		t.Errorf("log file missing entry, got %q", string(raw))
	}
}

func TestLogger_Configure_FileSinkError(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "taken")
	if err := os.WriteFile(blocker, []byte("x"), 0o644); err != nil {
		t.Fatalf("failed to write blocker: %v", err)
	}

	logger := &config.Logger{
		Level: "info",
		File:  filepath.Join(blocker, "vsget.log"),
	}
	if _, _, err := logger.Configure(); err == nil {
		t.Error("Configure() should return error for unusable log file path")
	}
}

func TestLogger_Flags(t *testing.T) {
	logger := &config.Logger{}
	flags := logger.Flags()

	if len(flags) != 6 {
		t.Errorf("Flags() returned %d flags, want 6", len(flags))
	}

	// Verify flag names
	flagNames := make(map[string]bool)
	for _, flag := range flags {
		switch f := flag.(type) {
		case interface{ Names() []string }:
			names := f.Names()
			if len(names) > 0 {
				flagNames[names[0]] = true
			}
		}
	}

	for _, want := range []string{"log-level", "verbose", "no-color", "log-file", "log-file-size", "log-file-backups"} {
		if !flagNames[want] {
			t.Errorf("Missing %s flag", want)
		}
	}
}
