package domain

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func Test_DeriveTitle(t *testing.T) {
	req := require.New(t)

	tests := []struct {
		description string
		content     string
		want        string
	}{
		{
			"Should keep short text unchanged",
			"Hello world",
			"Hello world",
		},
		{
			"Should keep exactly 50 characters unchanged",
			strings.Repeat("a", 50),
			strings.Repeat("a", 50),
		},
		{
			"Should truncate 51 characters and append the ellipsis marker",
			strings.Repeat("a", 51),
			strings.Repeat("a", 50) + "...",
		},
		{
			"Should count runes, not bytes",
			strings.Repeat("é", 50),
			strings.Repeat("é", 50),
		},
	}
	for _, tt := range tests {
		req.Equal(tt.want, DeriveTitle(tt.content), tt.description)
	}
}

func Test_NewSession_defaults(t *testing.T) {
	req := require.New(t)
	now := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

	session := NewSession("abc", now)

	req.Equal("abc", session.ID)
	req.Equal("New Conversation 2026-03-14", session.Title)
	req.Equal(now, session.CreatedAt)
	req.Equal(now, session.UpdatedAt)
	req.Empty(session.Messages)
	req.Equal(DefaultRoster(), session.Participants)
}

func Test_NewSession_owns_its_roster(t *testing.T) {
	req := require.New(t)
	now := time.Now().UTC()

	first := NewSession("one", now)
	second := NewSession("two", now)
	first.Participants[0].Active = false
	first.Participants[0].Role = "optimist"

	req.True(second.Participants[0].Active)
	req.Equal("neutral", second.Participants[0].Role)
}

func Test_Touch_is_monotonic(t *testing.T) {
	req := require.New(t)
	now := time.Now().UTC()
	session := NewSession("abc", now)

	session.Touch(now.Add(-time.Hour))
	req.Equal(now, session.UpdatedAt)

	later := now.Add(time.Minute)
	session.Touch(later)
	req.Equal(later, session.UpdatedAt)
	req.True(!session.UpdatedAt.Before(session.CreatedAt))
}

func Test_ActiveParticipants_preserves_roster_order(t *testing.T) {
	req := require.New(t)
	session := Session{Participants: []Participant{
		{ID: "a", Active: true},
		{ID: "b", Active: false},
		{ID: "c", Active: true},
	}}

	active := session.ActiveParticipants()

	req.Len(active, 2)
	req.Equal("a", active[0].ID)
	req.Equal("c", active[1].ID)
}

func Test_Append_bumps_updatedAt(t *testing.T) {
	req := require.New(t)
	now := time.Now().UTC()
	session := NewSession("abc", now)

	later := now.Add(time.Second)
	session.Append(later, NewUserMessage("hi", later))

	req.Len(session.Messages, 1)
	req.Equal(later, session.UpdatedAt)
	req.True(session.HasUserMessage())
}

func Test_Clone_is_independent(t *testing.T) {
	req := require.New(t)
	now := time.Now().UTC()
	session := NewSession("abc", now)
	session.Append(now, NewUserMessage("hi", now))

	clone := session.Clone()
	clone.Participants[0].Active = false
	clone.Messages[0].Content = "changed"

	req.True(session.Participants[0].Active)
	req.Equal("hi", session.Messages[0].Content)
}

func Test_NewParticipantMessage_populates_back_reference(t *testing.T) {
	req := require.New(t)
	now := time.Now().UTC()

	message := NewParticipantMessage("claude", "hello", now)

	req.Equal("claude", message.Sender)
	req.Equal("claude", message.ParticipantID)
	req.False(message.FromUser())

	userMessage := NewUserMessage("hello", now)
	req.Equal(UserSender, userMessage.Sender)
	req.Empty(userMessage.ParticipantID)
	req.True(userMessage.FromUser())
}
