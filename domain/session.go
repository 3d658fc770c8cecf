package domain

import (
	"fmt"
	"time"

	"github.com/samber/lo"
)

// titleLimit bounds how many runes of the first user message become
// the session title before an ellipsis marker is appended.
const titleLimit = 50

// Session is one persisted conversation thread. It exclusively owns its
// roster and transcript; no two sessions share Participant or Message
// values. The transcript is append-only.
type Session struct {
	ID           string
	Title        string
	CreatedAt    time.Time
	UpdatedAt    time.Time
	Participants []Participant
	Messages     []Message
}

// NewSession allocates a session with a fresh roster snapshot, an empty
// transcript and a date-stamped placeholder title.
func NewSession(id string, now time.Time) *Session {
	return &Session{
		ID:           id,
		Title:        fmt.Sprintf("New Conversation %s", now.Format("2006-01-02")),
		CreatedAt:    now,
		UpdatedAt:    now,
		Participants: DefaultRoster(),
	}
}

// ActiveParticipants filters the roster, preserving roster order.
func (s *Session) ActiveParticipants() []Participant {
	return lo.Filter(s.Participants, func(p Participant, _ int) bool {
		return p.Active
	})
}

// FindParticipant returns a pointer into the roster for in-place updates.
func (s *Session) FindParticipant(id string) *Participant {
	for i := range s.Participants {
		if s.Participants[i].ID == id {
			return &s.Participants[i]
		}
	}
	return nil
}

// HasUserMessage reports whether the transcript already carries user text.
// The title is derived from the first user message only.
func (s *Session) HasUserMessage() bool {
	return lo.ContainsBy(s.Messages, func(m Message) bool {
		return m.FromUser()
	})
}

// Append adds messages to the transcript and bumps UpdatedAt.
// UpdatedAt never moves backwards.
func (s *Session) Append(now time.Time, messages ...Message) {
	s.Messages = append(s.Messages, messages...)
	s.Touch(now)
}

// Touch bumps UpdatedAt, keeping it monotonic.
func (s *Session) Touch(now time.Time) {
	if now.After(s.UpdatedAt) {
		s.UpdatedAt = now
	}
}

// DeriveTitle truncates the first user message into a session title.
func DeriveTitle(content string) string {
	runes := []rune(content)
	if len(runes) <= titleLimit {
		return content
	}
	return string(runes[:titleLimit]) + "..."
}

// Clone deep-copies the session so callers never alias the roster or
// transcript of another session.
func (s *Session) Clone() *Session {
	out := *s
	out.Participants = make([]Participant, len(s.Participants))
	copy(out.Participants, s.Participants)
	out.Messages = make([]Message, len(s.Messages))
	copy(out.Messages, s.Messages)
	return &out
}
