package backends

import (
	"context"
	"fmt"
	"time"

	"council/domain"
	"council/errors"

	go_openai "github.com/sashabaranov/go-openai"
)

const (
	openAIModel       = "gpt-4"
	openAIMaxTokens   = 500
	openAITemperature = 0.7
)

// OpenAIClient speaks the chat-completions protocol: bearer-token auth,
// a system entry carrying the role instruction, then the mirrored
// transcript, ending with the new utterance as a final user entry.
type OpenAIClient struct {
	apiKey  string
	baseURL string
	timeout time.Duration
}

func NewOpenAIClient(apiKey string, timeout time.Duration) *OpenAIClient {
	return &OpenAIClient{apiKey: apiKey, timeout: timeout}
}

// WithBaseURL points the client at a non-default endpoint.
func (c *OpenAIClient) WithBaseURL(baseURL string) *OpenAIClient {
	c.baseURL = baseURL
	return c
}

func (c *OpenAIClient) Respond(ctx context.Context, participant domain.Participant, transcript []domain.Message, utterance string) (string, error) {
	if c.apiKey == "" {
		return "", fmt.Errorf("%w: no OpenAI API key configured", errors.ErrAuthenticationMissing)
	}

	messages := make([]go_openai.ChatCompletionMessage, 0, len(transcript)+2)
	messages = append(messages, go_openai.ChatCompletionMessage{
		Role:    go_openai.ChatMessageRoleSystem,
		Content: systemPrompt(participant),
	})
	for _, m := range transcript {
		role := go_openai.ChatMessageRoleAssistant
		if m.FromUser() {
			role = go_openai.ChatMessageRoleUser
		}
		messages = append(messages, go_openai.ChatCompletionMessage{
			Role:    role,
			Content: m.Content,
		})
	}
	messages = append(messages, go_openai.ChatCompletionMessage{
		Role:    go_openai.ChatMessageRoleUser,
		Content: utterance,
	})

	config := go_openai.DefaultConfig(c.apiKey)
	if c.baseURL != "" {
		config.BaseURL = c.baseURL
	}
	client := go_openai.NewClientWithConfig(config)

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	resp, err := client.CreateChatCompletion(ctx, go_openai.ChatCompletionRequest{
		Model:       openAIModel,
		Messages:    messages,
		MaxTokens:   openAIMaxTokens,
		Temperature: openAITemperature,
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", errors.ErrTransportFailure, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: empty completion", errors.ErrTransportFailure)
	}
	return resp.Choices[0].Message.Content, nil
}
