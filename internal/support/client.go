package support

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Client talks to the external chatbot backend. The language model itself
// is not part of this codebase; this is only the relay. Calls are never
// retried automatically.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

type completionIn struct {
	Message string `json:"message"`
	UserID  string `json:"user_id,omitempty"`
}

type completionOut struct {
	Reply string `json:"reply"`
}

func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Ask sends one user message to the bot backend and returns its reply.
func (c *Client) Ask(ctx context.Context, userID, message string) (string, error) {
	reqBody := completionIn{
		Message: message,
		UserID:  userID,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	url := c.baseURL + "/v1/chat"
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("bot backend returned status %d, body: %s", resp.StatusCode, string(body))
	}

	var result completionOut
	if err := json.Unmarshal(body, &result); err != nil {
		return "", fmt.Errorf("failed to decode response: %w, body: %s", err, string(body))
	}

	return result.Reply, nil
}
