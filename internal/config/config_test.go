package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Classifier.Provider != "auto" {
		t.Errorf("provider = %q, want auto", cfg.Classifier.Provider)
	}
	if cfg.Classifier.PacingMS != 100 {
		t.Errorf("pacing = %d, want 100", cfg.Classifier.PacingMS)
	}
	if cfg.Classifier.Gemini.Model != "gemini-2.0-flash" {
		t.Errorf("gemini model = %q", cfg.Classifier.Gemini.Model)
	}
	if cfg.Output.Format != "text" || cfg.Output.Dir != "reports" {
		t.Errorf("output = %+v", cfg.Output)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("log level = %q", cfg.LogLevel)
	}
}

func TestLoadYAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sawmill.yaml")
	raw := `
classifier:
  provider: gemini
  gemini:
    api_key: file-key
cleaner:
  max_response: 1500
output:
  format: json
log_level: debug
`
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Classifier.Provider != "gemini" {
		t.Errorf("provider = %q", cfg.Classifier.Provider)
	}
	if cfg.Classifier.Gemini.APIKey != "file-key" {
		t.Errorf("gemini key = %q", cfg.Classifier.Gemini.APIKey)
	}
	if cfg.Cleaner.MaxResponse != 1500 {
		t.Errorf("max response = %v", cfg.Cleaner.MaxResponse)
	}
	if cfg.Output.Format != "json" {
		t.Errorf("format = %q", cfg.Output.Format)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("log level = %q", cfg.LogLevel)
	}
	// Defaults untouched by the file survive.
	if cfg.Classifier.Azure.APIVersion != "2024-02-15-preview" {
		t.Errorf("api version = %q", cfg.Classifier.Azure.APIVersion)
	}
}

func TestLoadEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sawmill.yaml")
	if err := os.WriteFile(path, []byte("classifier:\n  provider: gemini\n"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	t.Setenv("SAWMILL_PROVIDER", "azure")
	t.Setenv("AZURE_OPENAI_API_KEY", "env-key")
	t.Setenv("SAWMILL_MAX_RESPONSE", "1200")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Classifier.Provider != "azure" {
		t.Errorf("provider = %q, env must override the file", cfg.Classifier.Provider)
	}
	if cfg.Classifier.Azure.APIKey != "env-key" {
		t.Errorf("azure key = %q", cfg.Classifier.Azure.APIKey)
	}
	if cfg.Cleaner.MaxResponse != 1200 {
		t.Errorf("max response = %v", cfg.Cleaner.MaxResponse)
	}
}

func TestLoadBadEnvNumberKeepsFallback(t *testing.T) {
	t.Setenv("SAWMILL_PACING_MS", "soon")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Classifier.PacingMS != 100 {
		t.Errorf("pacing = %d, want the default", cfg.Classifier.PacingMS)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("expected an error for a missing config file")
	}
}
