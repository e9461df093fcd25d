package classifier

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"github.com/crimson-sun/sawmill/internal/httpclient"
)

const geminiBaseURL = "https://generativelanguage.googleapis.com/v1beta/models"

// GeminiConfig holds the connection parameters for the Gemini
// generateContent API.
type GeminiConfig struct {
	APIKey string
	Model  string // e.g. gemini-2.0-flash
}

// Configured reports whether the API key is set.
func (c GeminiConfig) Configured() bool {
	return c.APIKey != ""
}

// GeminiBackend classifies messages via the Gemini generateContent API.
type GeminiBackend struct {
	cfg     GeminiConfig
	client  *httpclient.Client
	baseURL string
}

// NewGeminiBackend creates a GeminiBackend. Returns an error if the API
// key is missing.
func NewGeminiBackend(cfg GeminiConfig, opts ...httpclient.Option) (*GeminiBackend, error) {
	if !cfg.Configured() {
		return nil, errors.New("gemini: api key is required")
	}
	if cfg.Model == "" {
		cfg.Model = "gemini-2.0-flash"
	}
	return &GeminiBackend{
		cfg:     cfg,
		client:  httpclient.New(opts...),
		baseURL: geminiBaseURL,
	}, nil
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// Classify sends prompt to the model and returns the raw output text.
func (b *GeminiBackend) Classify(ctx context.Context, prompt string) (string, error) {
	endpoint := fmt.Sprintf("%s/%s:generateContent?key=%s",
		b.baseURL, url.PathEscape(b.cfg.Model), url.QueryEscape(b.cfg.APIKey))

	req := geminiRequest{
		Contents: []geminiContent{
			{Parts: []geminiPart{{Text: prompt}}},
		},
	}

	var resp geminiResponse
	if err := b.client.PostJSON(ctx, endpoint, nil, req, &resp); err != nil {
		return "", fmt.Errorf("gemini generate content: %w", err)
	}
	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", errors.New("gemini generate content: empty candidates")
	}
	return resp.Candidates[0].Content.Parts[0].Text, nil
}
