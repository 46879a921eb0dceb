package main

import (
	"bufio"
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"github.com/verte-zerg/typrr/internal/client"
	"github.com/verte-zerg/typrr/internal/config"
	"github.com/verte-zerg/typrr/internal/model"
	"github.com/verte-zerg/typrr/internal/snippet"
)

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name string
		cfg  model.Config
		ok   bool
	}{
		{"daily", model.Config{Mode: model.ModeDaily, DailyMax: 3}, true},
		{"practice with filters", model.Config{Mode: model.ModePractice, DailyMax: 3, Difficulty: "hard"}, true},
		{"unknown mode", model.Config{Mode: "race", DailyMax: 3}, false},
		{"zero quota", model.Config{Mode: model.ModeDaily}, false},
		{"bad difficulty", model.Config{Mode: model.ModePractice, DailyMax: 3, Difficulty: "brutal"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateConfig(tt.cfg)
			if tt.ok && err != nil {
				t.Fatalf("expected valid config, got %v", err)
			}
			if !tt.ok && err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}

func TestDefaultConfigTemplateParses(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg, err := config.LoadConfig(path)
	if err != nil {
		t.Fatalf("expected template to parse: %v", err)
	}
	if cfg.Practice.Mode != nil || cfg.Server.Addr != nil {
		t.Fatalf("expected every value commented out")
	}
}

func TestApplyConfigPrecedence(t *testing.T) {
	var mode string
	cmd := &cobra.Command{Use: "test"}
	cmd.Flags().StringVar(&mode, "mode", "daily", "")

	applyPreference(cmd, "mode", &mode, "practice")
	if mode != "practice" {
		t.Fatalf("expected preference to fill unset flag, got %q", mode)
	}
	fromFile := "daily"
	applyStringConfig(cmd, "mode", &mode, &fromFile)
	if mode != "daily" {
		t.Fatalf("expected config to override preference, got %q", mode)
	}

	if err := cmd.Flags().Set("mode", "practice"); err != nil {
		t.Fatalf("set flag: %v", err)
	}
	applyStringConfig(cmd, "mode", &mode, &fromFile)
	if mode != "practice" {
		t.Fatalf("expected explicit flag to win, got %q", mode)
	}
}

func TestWriteLangs(t *testing.T) {
	catalog, err := snippet.Builtin()
	if err != nil {
		t.Fatalf("builtin: %v", err)
	}
	var buf bytes.Buffer
	if err := writeLangs(&buf, catalog); err != nil {
		t.Fatalf("write langs: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != len(catalog.Languages()) {
		t.Fatalf("expected one line per language, got %d", len(lines))
	}
}

func TestPromptValue(t *testing.T) {
	var out bytes.Buffer
	got, err := promptValue(&out, bufio.NewReader(strings.NewReader("  ada@example.com \n")), "Email: ", "")
	if err != nil || got != "ada@example.com" {
		t.Fatalf("unexpected value %q (%v)", got, err)
	}
	if out.String() != "Email: " {
		t.Fatalf("expected prompt, got %q", out.String())
	}

	got, err = promptValue(&out, bufio.NewReader(strings.NewReader("")), "Email: ", "preset@example.com")
	if err != nil || got != "preset@example.com" {
		t.Fatalf("expected preset value, got %q (%v)", got, err)
	}

	if _, err := promptValue(&out, bufio.NewReader(strings.NewReader("\n")), "Email: ", ""); err == nil {
		t.Fatalf("expected empty input error")
	}
}

func TestDescribeAPIError(t *testing.T) {
	err := describeAPIError(&client.APIError{Status: 400, Message: "Validation failed", Details: []string{"/email: bad"}})
	if !strings.Contains(err.Error(), "/email: bad") {
		t.Fatalf("expected details in error: %v", err)
	}
	plain := errors.New("boom")
	if describeAPIError(plain) != plain {
		t.Fatalf("expected other errors unchanged")
	}
}

func TestAPIURL(t *testing.T) {
	url := " http://localhost:3001/ "
	if got := apiURL(config.FileConfig{Client: config.ClientConfig{APIURL: &url}}); got != "http://localhost:3001" {
		t.Fatalf("unexpected url %q", got)
	}
	if got := apiURL(config.FileConfig{}); got != "" {
		t.Fatalf("expected empty url")
	}
}
