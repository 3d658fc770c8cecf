package backends

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"council/domain"
	"council/errors"
)

const (
	anthropicModel      = "claude-3-sonnet-20240229"
	anthropicMaxTokens  = 500
	anthropicAPIVersion = "2023-06-01"
	anthropicBaseURL    = "https://api.anthropic.com"
)

// anthropicRequest is the Messages API payload. The role instruction
// travels in the top-level system field, not in the message list.
type anthropicRequest struct {
	Model     string             `json:"model"`
	MaxTokens int                `json:"max_tokens"`
	System    string             `json:"system"`
	Messages  []anthropicMessage `json:"messages"`
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicResponse struct {
	Content []anthropicContent `json:"content"`
}

type anthropicContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// AnthropicClient speaks the Messages protocol: bearer-token auth plus
// an API-version header, with the reply extracted from content[0].text.
type AnthropicClient struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

func NewAnthropicClient(apiKey, baseURL string, timeout time.Duration) *AnthropicClient {
	if baseURL == "" {
		baseURL = anthropicBaseURL
	}
	return &AnthropicClient{
		apiKey:     apiKey,
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (c *AnthropicClient) Respond(ctx context.Context, participant domain.Participant, transcript []domain.Message, utterance string) (string, error) {
	if c.apiKey == "" {
		return "", fmt.Errorf("%w: no Anthropic API key configured", errors.ErrAuthenticationMissing)
	}

	messages := make([]anthropicMessage, 0, len(transcript)+1)
	for _, m := range transcript {
		role := "assistant"
		if m.FromUser() {
			role = "user"
		}
		messages = append(messages, anthropicMessage{Role: role, Content: m.Content})
	}
	messages = append(messages, anthropicMessage{Role: "user", Content: utterance})

	body, err := json.Marshal(anthropicRequest{
		Model:     anthropicModel,
		MaxTokens: anthropicMaxTokens,
		System:    systemPrompt(participant),
		Messages:  messages,
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", errors.ErrTransportFailure, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/messages", bytes.NewBuffer(body))
	if err != nil {
		return "", fmt.Errorf("%w: %v", errors.ErrTransportFailure, err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	httpReq.Header.Set("anthropic-version", anthropicAPIVersion)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("%w: %v", errors.ErrTransportFailure, err)
	}
	defer func(Body io.ReadCloser) {
		_ = Body.Close()
	}(resp.Body)

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: %v", errors.ErrTransportFailure, err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: %s", errors.ErrTransportFailure, resp.Status)
	}

	var parsed anthropicResponse
	if err = json.Unmarshal(respBody, &parsed); err != nil {
		return "", fmt.Errorf("%w: %v", errors.ErrTransportFailure, err)
	}
	if len(parsed.Content) == 0 {
		return "", fmt.Errorf("%w: empty content", errors.ErrTransportFailure)
	}
	return parsed.Content[0].Text, nil
}

// unsupportedClient is bound to participant ids with no backend
// implementation in live mode.
type unsupportedClient struct{}

func (unsupportedClient) Respond(_ context.Context, participant domain.Participant, _ []domain.Message, _ string) (string, error) {
	return "", fmt.Errorf("%w: no backend bound to %q", errors.ErrUnsupportedParticipant, participant.ID)
}
