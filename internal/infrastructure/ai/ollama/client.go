// Package ollama provides a local Ollama adapter for plan generation.
package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/fitforge/v1/internal/domain/conversation"
	"github.com/fitforge/v1/internal/infrastructure/config"
	"github.com/fitforge/v1/internal/infrastructure/monitoring"
	"github.com/fitforge/v1/internal/ports/outbound"
)

// Client implements the completion client against a local Ollama server
type Client struct {
	baseURL string
	model   string
	client  *http.Client
	logger  *zap.Logger
}

// NewClient creates a new Ollama client from configuration
func NewClient(cfg config.AIConfig, logger *zap.Logger) *Client {
	baseURL := cfg.OllamaURL
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	return &Client{
		baseURL: baseURL,
		model:   cfg.OllamaModel,
		client:  &http.Client{Timeout: timeout},
		logger:  logger.Named("ollama-client"),
	}
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
	Stream   bool          `json:"stream"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Message chatMessage `json:"message"`
	Done    bool        `json:"done"`
}

// Complete sends the full conversation to /api/chat and returns the
// reply verbatim.
func (c *Client) Complete(ctx context.Context, messages []conversation.Message) (string, error) {
	start := time.Now()
	defer func() {
		monitoring.RecordAIRequest("ollama", time.Since(start))
	}()

	wire := make([]chatMessage, 0, len(messages))
	for _, m := range messages {
		role := string(m.Role)
		if m.Role == conversation.RoleModel {
			role = "assistant"
		}
		wire = append(wire, chatMessage{Role: role, Content: m.Content})
	}

	jsonBody, err := json.Marshal(chatRequest{Model: c.model, Messages: wire, Stream: false})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/api/chat", bytes.NewBuffer(jsonBody))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("chat request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("ollama error %d: %s", resp.StatusCode, string(body))
	}

	var chatResp chatResponse
	if err := json.Unmarshal(body, &chatResp); err != nil {
		return "", fmt.Errorf("failed to unmarshal response: %w", err)
	}

	c.logger.Debug("Completion call succeeded", zap.String("model", c.model))
	return chatResp.Message.Content, nil
}

// HealthCheck verifies the Ollama server is reachable
func (c *Client) HealthCheck(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, "GET", c.baseURL+"/api/tags", nil)
	if err != nil {
		return err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("ollama unreachable: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("ollama health check returned %d", resp.StatusCode)
	}
	return nil
}

var _ outbound.CompletionClient = (*Client)(nil)
