// Package domain contains core concepts of the multi-participant chat system.
// This file defines Message entities and related rules.
// Messages are immutable and transcripts are append-only.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// UserSender is the sender tag reserved for the human side of a conversation.
const UserSender = "user"

// Message represents an immutable conversation event.
// Sender is either UserSender or a participant id from the owning
// session's roster. ParticipantID mirrors Sender for participant
// messages so renderers can look up role and color without guessing.
type Message struct {
	ID            uuid.UUID
	Content       string
	Sender        string
	Timestamp     time.Time
	ParticipantID string
}

// NewUserMessage builds a message attributed to the user.
func NewUserMessage(content string, at time.Time) Message {
	return Message{
		ID:        uuid.New(),
		Content:   content,
		Sender:    UserSender,
		Timestamp: at,
	}
}

// NewParticipantMessage builds a message attributed to a roster participant.
// The back-reference is always populated.
func NewParticipantMessage(participantID, content string, at time.Time) Message {
	return Message{
		ID:            uuid.New(),
		Content:       content,
		Sender:        participantID,
		Timestamp:     at,
		ParticipantID: participantID,
	}
}

// FromUser reports whether the message was written by the human user.
func (m Message) FromUser() bool {
	return m.Sender == UserSender
}
