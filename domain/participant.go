// Package domain contains core concepts of the multi-participant chat system.
// This file defines Participant entities and the default roster.
// No runtime, network, or UI logic should be added here.
package domain

// Participant is one configured model entry in a session's roster.
// ID is immutable once created; everything else may be reconfigured.
// A Participant takes part in a dispatch cycle iff Active is true.
type Participant struct {
	ID       string
	Name     string
	Provider string
	Active   bool
	Color    string
	Role     string
}

// DefaultRoster returns a fresh roster snapshot for a new session.
// Each call allocates a new slice so sessions never share entries.
func DefaultRoster() []Participant {
	return []Participant{
		{
			ID:       "gpt-4",
			Name:     "GPT-4",
			Provider: "OpenAI",
			Active:   true,
			Color:    "blue",
			Role:     "neutral",
		},
		{
			ID:       "claude",
			Name:     "Claude",
			Provider: "Anthropic",
			Active:   true,
			Color:    "purple",
			Role:     "devils-advocate",
		},
	}
}
