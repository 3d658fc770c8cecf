//go:generate go run go.uber.org/mock/mockgen -source=client.go -destination=../mocks/mock_client.go -package=mocks
// Package backends isolates per-provider protocol variance behind one
// Participant Client contract so the dispatcher can treat every
// participant uniformly, and so the offline generator can substitute
// transparently in tests and on live failures.
package backends

import (
	"context"

	"council/domain"
)

// Client produces one reply for one participant, given the transcript
// so far and the new user utterance. Failures are reported through the
// sentinels in council/errors: ErrAuthenticationMissing,
// ErrTransportFailure, ErrUnsupportedParticipant.
type Client interface {
	Respond(ctx context.Context, participant domain.Participant, transcript []domain.Message, utterance string) (string, error)
}

// systemPrompt frames a participant's role instruction the way both
// live protocols expect their system-level directive.
func systemPrompt(participant domain.Participant) string {
	role := domain.ResolveRole(participant.Role)
	return "You are " + participant.Name + ". " + role.Prompt +
		" Respond as part of a multi-model conversation where other AI models are also participating."
}
