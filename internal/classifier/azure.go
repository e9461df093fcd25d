package classifier

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"github.com/crimson-sun/sawmill/internal/httpclient"
)

// AzureConfig holds the connection parameters for an Azure OpenAI
// chat-completions deployment.
type AzureConfig struct {
	Endpoint   string // e.g. https://myresource.openai.azure.com
	APIKey     string
	Deployment string
	APIVersion string // e.g. 2024-02-15-preview
}

// Configured reports whether every required field is set.
func (c AzureConfig) Configured() bool {
	return c.Endpoint != "" && c.APIKey != "" && c.Deployment != "" && c.APIVersion != ""
}

// AzureBackend classifies messages via an Azure OpenAI chat-completions
// deployment.
type AzureBackend struct {
	cfg    AzureConfig
	client *httpclient.Client
}

// NewAzureBackend creates an AzureBackend. Returns an error if the
// configuration is incomplete.
func NewAzureBackend(cfg AzureConfig, opts ...httpclient.Option) (*AzureBackend, error) {
	if !cfg.Configured() {
		return nil, errors.New("azure: endpoint, api key, deployment and api version are required")
	}
	return &AzureBackend{
		cfg:    cfg,
		client: httpclient.New(opts...),
	}, nil
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Classify sends prompt to the deployment and returns the raw model
// output text.
func (b *AzureBackend) Classify(ctx context.Context, prompt string) (string, error) {
	endpoint := fmt.Sprintf("%s/openai/deployments/%s/chat/completions?api-version=%s",
		b.cfg.Endpoint, url.PathEscape(b.cfg.Deployment), url.QueryEscape(b.cfg.APIVersion))

	req := chatRequest{
		Messages: []chatMessage{
			{Role: "system", Content: SystemPrompt},
			{Role: "user", Content: prompt},
		},
		Temperature: 0.1,
		MaxTokens:   500,
	}

	var resp chatResponse
	headers := map[string]string{"api-key": b.cfg.APIKey}
	if err := b.client.PostJSON(ctx, endpoint, headers, req, &resp); err != nil {
		return "", fmt.Errorf("azure chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("azure chat completion: empty choices")
	}
	return resp.Choices[0].Message.Content, nil
}
