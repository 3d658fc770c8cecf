package backends

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"council/domain"
	"council/errors"

	"github.com/stretchr/testify/require"
)

func Test_OpenAIClient_Requires_A_Credential(t *testing.T) {
	req := require.New(t)
	client := NewOpenAIClient("", time.Second)

	_, err := client.Respond(context.Background(), domain.Participant{ID: "gpt-4"}, nil, "hi")
	req.ErrorIs(err, errors.ErrAuthenticationMissing)
}

func Test_OpenAIClient_Request_Shape_And_Reply_Extraction(t *testing.T) {
	req := require.New(t)

	type chatMessage struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	}
	type chatRequest struct {
		Model       string        `json:"model"`
		Messages    []chatMessage `json:"messages"`
		MaxTokens   int           `json:"max_tokens"`
		Temperature float64       `json:"temperature"`
	}

	var captured chatRequest
	var authorization string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authorization = r.Header.Get("Authorization")
		req.NoError(json.NewDecoder(r.Body).Decode(&captured))
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"an analytical take"}}]}`))
	}))
	defer server.Close()

	client := NewOpenAIClient("key-456", time.Second).WithBaseURL(server.URL)
	participant := domain.Participant{ID: "gpt-4", Name: "GPT-4", Role: "analyst"}
	transcript := []domain.Message{
		{Content: "opening point", Sender: domain.UserSender},
		{Content: "a first reply", Sender: "claude", ParticipantID: "claude"},
	}

	reply, err := client.Respond(context.Background(), participant, transcript, "and now?")
	req.NoError(err)
	req.Equal("an analytical take", reply)
	req.Equal("Bearer key-456", authorization)

	req.Equal(openAIModel, captured.Model)
	req.Equal(openAIMaxTokens, captured.MaxTokens)
	req.InDelta(openAITemperature, captured.Temperature, 0.001)

	// System entry first, mirrored transcript, utterance last.
	req.Len(captured.Messages, 4)
	req.Equal("system", captured.Messages[0].Role)
	req.Contains(captured.Messages[0].Content, "You are GPT-4.")
	req.Equal("user", captured.Messages[1].Role)
	req.Equal("assistant", captured.Messages[2].Role)
	req.Equal("user", captured.Messages[3].Role)
	req.Equal("and now?", captured.Messages[3].Content)
}

func Test_OpenAIClient_Backend_Error_Is_A_Transport_Failure(t *testing.T) {
	req := require.New(t)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"rate limited"}}`, http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := NewOpenAIClient("key-456", time.Second).WithBaseURL(server.URL)
	_, err := client.Respond(context.Background(), domain.Participant{ID: "gpt-4"}, nil, "hi")
	req.ErrorIs(err, errors.ErrTransportFailure)
}

func Test_Registry_Bindings(t *testing.T) {
	req := require.New(t)

	offline := NewRegistry(Config{Mode: ModeOffline, Seed: 1})
	_, ok := offline.Resolve("gpt-4").(*OfflineClient)
	req.True(ok)
	_, ok = offline.Resolve("anything-else").(*OfflineClient)
	req.True(ok)

	live := NewRegistry(Config{Mode: ModeLive, OpenAIKey: "a", AnthropicKey: "b", Seed: 1})
	_, ok = live.Resolve("gpt-4").(*OpenAIClient)
	req.True(ok)
	_, ok = live.Resolve("claude").(*AnthropicClient)
	req.True(ok)

	// No backend implementation bound to this id.
	_, err := live.Resolve("mistral").Respond(context.Background(), domain.Participant{ID: "mistral"}, nil, "hi")
	req.ErrorIs(err, errors.ErrUnsupportedParticipant)
}
