// Package runtime handles fanning a user utterance out to the active
// participants and reassembling their replies. It orchestrates the
// dispatch cycle without containing domain rules or protocol details.
package runtime

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"council/backends"
	"council/domain"

	"github.com/samber/lo"
)

// SubstitutedMarker prefixes every reply that was generated locally
// because the participant's backend call failed. The substitution is
// never silent to the end user.
const SubstitutedMarker = "[offline fallback] "

// Resolver maps a participant id to the client bound to it.
// *backends.Registry is the production implementation.
type Resolver interface {
	Resolve(participantID string) backends.Client
}

// Dispatcher runs one orchestration pass per user utterance.
// It never propagates a participant failure to its caller: every
// active participant yields exactly one reply, real or substituted.
type Dispatcher struct {
	log      *slog.Logger
	resolver Resolver
	fallback *backends.Generator
	clock    func() time.Time
}

func NewDispatcher(log *slog.Logger, resolver Resolver, fallback *backends.Generator) *Dispatcher {
	return &Dispatcher{log: log, resolver: resolver, fallback: fallback, clock: time.Now}
}

// WithClock overrides the timestamp source, for tests.
func (d *Dispatcher) WithClock(clock func() time.Time) *Dispatcher {
	d.clock = clock
	return d
}

// Dispatch queries every active participant concurrently and returns
// one message per active participant in roster order, regardless of
// wall-clock completion order. A roster with zero active participants
// yields an empty slice. One attempt per participant, at most one
// fallback, no retries.
func (d *Dispatcher) Dispatch(ctx context.Context, roster []domain.Participant, transcript []domain.Message, utterance string) []domain.Message {
	active := lo.Filter(roster, func(p domain.Participant, _ int) bool {
		return p.Active
	})
	if len(active) == 0 {
		return nil
	}

	replies := make([]string, len(active))
	var wg sync.WaitGroup
	for i, participant := range active {
		wg.Add(1)
		go func(slot int, p domain.Participant) {
			defer wg.Done()
			replies[slot] = d.respond(ctx, p, transcript, utterance)
		}(i, participant)
	}
	wg.Wait()

	messages := make([]domain.Message, 0, len(active))
	for i, participant := range active {
		messages = append(messages, domain.NewParticipantMessage(participant.ID, replies[i], d.clock()))
	}
	return messages
}

// respond performs the single backend attempt and applies the
// per-participant fallback policy.
func (d *Dispatcher) respond(ctx context.Context, participant domain.Participant, transcript []domain.Message, utterance string) string {
	client := d.resolver.Resolve(participant.ID)
	reply, err := client.Respond(ctx, participant, transcript, utterance)
	if err == nil {
		return reply
	}

	d.log.Warn(fmt.Sprintf("Participant %s failed, substituting offline reply", participant.ID),
		"error", err)
	return SubstitutedMarker + d.fallback.Reply(participant, utterance)
}
