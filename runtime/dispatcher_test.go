package runtime_test

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"testing"
	"time"

	"council/backends"
	"council/domain"
	"council/errors"
	"council/runtime"

	"github.com/stretchr/testify/require"
)

// stubClient replies or fails after an optional artificial delay.
type stubClient struct {
	reply string
	err   error
	delay time.Duration
}

func (c stubClient) Respond(_ context.Context, p domain.Participant, _ []domain.Message, _ string) (string, error) {
	if c.delay > 0 {
		time.Sleep(c.delay)
	}
	if c.err != nil {
		return "", c.err
	}
	return c.reply, nil
}

// stubResolver binds participant ids to stub clients.
type stubResolver map[string]backends.Client

func (r stubResolver) Resolve(id string) backends.Client {
	if c, ok := r[id]; ok {
		return c
	}
	return stubClient{err: errors.ErrUnsupportedParticipant}
}

func newDispatcher(resolver stubResolver) *runtime.Dispatcher {
	return runtime.NewDispatcher(slog.Default(), resolver, backends.NewGenerator(1))
}

func Test_Dispatch_One_Message_Per_Active_Participant_In_Roster_Order(t *testing.T) {
	req := require.New(t)
	roster := []domain.Participant{
		{ID: "gpt-4", Name: "GPT-4", Active: true, Role: "neutral"},
		{ID: "claude", Name: "Claude", Active: true, Role: "devils-advocate"},
	}
	dispatcher := newDispatcher(stubResolver{
		"gpt-4":  stubClient{reply: "first"},
		"claude": stubClient{reply: "second"},
	})

	messages := dispatcher.Dispatch(context.Background(), roster, nil, "hello")

	req.Len(messages, 2)
	req.Equal("gpt-4", messages[0].Sender)
	req.Equal("first", messages[0].Content)
	req.Equal("gpt-4", messages[0].ParticipantID)
	req.Equal("claude", messages[1].Sender)
	req.Equal("second", messages[1].Content)
}

func Test_Dispatch_Reassembles_Roster_Order_Not_Arrival_Order(t *testing.T) {
	req := require.New(t)
	var roster []domain.Participant
	resolver := stubResolver{}
	for i := 0; i < 5; i++ {
		id := fmt.Sprintf("p%d", i)
		roster = append(roster, domain.Participant{ID: id, Active: true})
		// Earlier roster slots finish last.
		resolver[id] = stubClient{reply: id, delay: time.Duration(5-i) * 20 * time.Millisecond}
	}
	dispatcher := newDispatcher(resolver)

	messages := dispatcher.Dispatch(context.Background(), roster, nil, "hello")

	req.Len(messages, 5)
	for i, message := range messages {
		req.Equal(fmt.Sprintf("p%d", i), message.Sender)
	}
}

func Test_Dispatch_Substitutes_On_Every_Failure_Kind(t *testing.T) {
	req := require.New(t)
	roster := []domain.Participant{
		{ID: "gpt-4", Name: "GPT-4", Active: true, Role: "neutral"},
		{ID: "claude", Name: "Claude", Active: true, Role: "devils-advocate"},
		{ID: "mistral", Name: "Mistral", Active: true},
	}
	dispatcher := newDispatcher(stubResolver{
		"gpt-4":  stubClient{err: errors.ErrAuthenticationMissing},
		"claude": stubClient{err: fmt.Errorf("%w: 503 Service Unavailable", errors.ErrTransportFailure)},
	})

	messages := dispatcher.Dispatch(context.Background(), roster, nil, "hello")

	req.Len(messages, 3)
	for _, message := range messages {
		req.True(strings.HasPrefix(message.Content, runtime.SubstitutedMarker),
			"failure must never be silent: %q", message.Content)
		req.NotEqual(runtime.SubstitutedMarker, message.Content)
	}
}

func Test_Dispatch_Mixes_Real_And_Substituted_Replies(t *testing.T) {
	req := require.New(t)
	roster := []domain.Participant{
		{ID: "gpt-4", Name: "GPT-4", Active: true},
		{ID: "claude", Name: "Claude", Active: true},
	}
	dispatcher := newDispatcher(stubResolver{
		"gpt-4":  stubClient{reply: "genuine"},
		"claude": stubClient{err: errors.ErrTransportFailure},
	})

	messages := dispatcher.Dispatch(context.Background(), roster, nil, "hello")

	req.Len(messages, 2)
	req.Equal("genuine", messages[0].Content)
	req.True(strings.HasPrefix(messages[1].Content, runtime.SubstitutedMarker))
}

func Test_Dispatch_Skips_Inactive_Participants(t *testing.T) {
	req := require.New(t)
	roster := []domain.Participant{
		{ID: "A", Active: true, Role: "neutral"},
		{ID: "B", Active: false},
	}
	dispatcher := newDispatcher(stubResolver{
		"A": stubClient{reply: "only me"},
		"B": stubClient{reply: "never sent"},
	})

	messages := dispatcher.Dispatch(context.Background(), roster, nil, "Hello")

	req.Len(messages, 1)
	req.Equal("A", messages[0].Sender)

	// The skipped participant keeps its stored state untouched.
	req.Equal("B", roster[1].ID)
	req.False(roster[1].Active)
}

func Test_Dispatch_Empty_Roster_Yields_No_Messages(t *testing.T) {
	req := require.New(t)
	dispatcher := newDispatcher(stubResolver{})

	req.Empty(dispatcher.Dispatch(context.Background(), nil, nil, "hello"))
	req.Empty(dispatcher.Dispatch(context.Background(),
		[]domain.Participant{{ID: "A", Active: false}}, nil, "hello"))
}

func Test_Dispatch_Timestamps_Are_Deterministic_With_Injected_Clock(t *testing.T) {
	req := require.New(t)
	now := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)
	roster := []domain.Participant{{ID: "A", Active: true}}
	dispatcher := newDispatcher(stubResolver{"A": stubClient{reply: "hi"}}).
		WithClock(func() time.Time { return now })

	messages := dispatcher.Dispatch(context.Background(), roster, nil, "hello")

	req.Len(messages, 1)
	req.Equal(now, messages[0].Timestamp)
}
