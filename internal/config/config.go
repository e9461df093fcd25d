// Package config assembles runtime configuration from an optional YAML
// file and environment variables. Environment variables override file
// values; both override the built-in defaults.
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config holds all Sawmill configuration.
type Config struct {
	Classifier ClassifierConfig `yaml:"classifier"`
	Cleaner    CleanerConfig    `yaml:"cleaner"`
	Output     OutputConfig     `yaml:"output"`
	LogLevel   string           `yaml:"log_level"` // "debug", "info", "warn", "error"
}

// ClassifierConfig holds remote-backend and ledger settings.
type ClassifierConfig struct {
	// Provider selects the remote backend: "azure", "gemini", "auto"
	// (azure when fully configured, else gemini, else none), or "none".
	Provider   string       `yaml:"provider"`
	Azure      AzureConfig  `yaml:"azure"`
	Gemini     GeminiConfig `yaml:"gemini"`
	LedgerPath string       `yaml:"ledger_path"`
	PacingMS   int          `yaml:"pacing_ms"`
}

// AzureConfig holds the Azure OpenAI connection settings.
type AzureConfig struct {
	Endpoint   string `yaml:"endpoint"`
	APIKey     string `yaml:"api_key"`
	Deployment string `yaml:"deployment"`
	APIVersion string `yaml:"api_version"`
}

// GeminiConfig holds the Gemini connection settings.
type GeminiConfig struct {
	APIKey string `yaml:"api_key"`
	Model  string `yaml:"model"`
}

// CleanerConfig holds cleaning bounds.
type CleanerConfig struct {
	// MaxResponse is the response-time outlier cutoff. 0 keeps the
	// default of 2000.
	MaxResponse float64 `yaml:"max_response"`
}

// OutputConfig holds report destination settings.
type OutputConfig struct {
	Format     string `yaml:"format"` // "text", "json", "ndjson"
	Dir        string `yaml:"dir"`    // text-report directory
	File       string `yaml:"file"`   // NDJSON file path
	WebhookURL string `yaml:"webhook_url"`
	Pretty     bool   `yaml:"pretty"` // pretty-print stdout JSON
}

// Load builds the configuration: defaults, then the YAML file at path
// (skipped when path is empty), then environment variables.
func Load(path string) (Config, error) {
	cfg := Config{
		Classifier: ClassifierConfig{
			Provider: "auto",
			Azure: AzureConfig{
				APIVersion: "2024-02-15-preview",
			},
			Gemini: GeminiConfig{
				Model: "gemini-2.0-flash",
			},
			PacingMS: 100,
		},
		Output: OutputConfig{
			Format: "text",
			Dir:    "reports",
		},
		LogLevel: "info",
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	applyEnv(&cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	cfg.Classifier.Provider = getenv("SAWMILL_PROVIDER", cfg.Classifier.Provider)
	cfg.Classifier.LedgerPath = getenv("SAWMILL_LEDGER", cfg.Classifier.LedgerPath)
	cfg.Classifier.PacingMS = getenvInt("SAWMILL_PACING_MS", cfg.Classifier.PacingMS)

	cfg.Classifier.Azure.Endpoint = getenv("AZURE_OPENAI_ENDPOINT", cfg.Classifier.Azure.Endpoint)
	cfg.Classifier.Azure.APIKey = getenv("AZURE_OPENAI_API_KEY", cfg.Classifier.Azure.APIKey)
	cfg.Classifier.Azure.Deployment = getenv("AZURE_OPENAI_DEPLOYMENT", cfg.Classifier.Azure.Deployment)
	cfg.Classifier.Azure.APIVersion = getenv("AZURE_OPENAI_API_VERSION", cfg.Classifier.Azure.APIVersion)

	cfg.Classifier.Gemini.APIKey = getenv("GEMINI_API_KEY", cfg.Classifier.Gemini.APIKey)
	cfg.Classifier.Gemini.Model = getenv("GEMINI_MODEL", cfg.Classifier.Gemini.Model)

	cfg.Cleaner.MaxResponse = getenvFloat("SAWMILL_MAX_RESPONSE", cfg.Cleaner.MaxResponse)

	cfg.Output.Format = getenv("SAWMILL_OUTPUT", cfg.Output.Format)
	cfg.Output.Dir = getenv("SAWMILL_OUTPUT_DIR", cfg.Output.Dir)
	cfg.Output.File = getenv("SAWMILL_OUTPUT_FILE", cfg.Output.File)
	cfg.Output.WebhookURL = getenv("SAWMILL_WEBHOOK_URL", cfg.Output.WebhookURL)

	cfg.LogLevel = getenv("SAWMILL_LOG_LEVEL", cfg.LogLevel)
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getenvFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return f
}

func getenvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
