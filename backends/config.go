package backends

import "time"

// Mode selects how participant clients are bound.
type Mode string

const (
	// ModeOffline binds every participant to the deterministic generator.
	ModeOffline Mode = "offline"
	// ModeLive binds participants to their provider protocol clients.
	ModeLive Mode = "live"
)

// Config carries the process-wide backend settings. It is passed in at
// construction instead of being read from ambient state so tests can
// inject offline mode and a fixed seed deterministically.
// Credentials must be supplied explicitly; there is no default key.
type Config struct {
	Mode             Mode
	OpenAIKey        string
	AnthropicKey     string
	AnthropicBaseURL string
	RequestTimeout   time.Duration
	Seed             int64
}

// Registry resolves the Client bound to a participant id.
// Adding a provider means adding a binding here, never branching
// inside the dispatcher.
type Registry struct {
	offline *OfflineClient
	clients map[string]Client
}

// NewRegistry wires clients according to cfg. In offline mode every
// participant resolves to the deterministic generator.
func NewRegistry(cfg Config) *Registry {
	offline := NewOfflineClient(NewGenerator(cfg.Seed))
	r := &Registry{offline: offline, clients: map[string]Client{}}
	if cfg.Mode == ModeOffline {
		return r
	}
	r.clients["gpt-4"] = NewOpenAIClient(cfg.OpenAIKey, cfg.RequestTimeout)
	r.clients["claude"] = NewAnthropicClient(cfg.AnthropicKey, cfg.AnthropicBaseURL, cfg.RequestTimeout)
	return r
}

// Resolve returns the client bound to the participant id, or the
// unsupported stub when no backend implementation exists for it.
func (r *Registry) Resolve(participantID string) Client {
	if r.offline != nil && len(r.clients) == 0 {
		return r.offline
	}
	if c, ok := r.clients[participantID]; ok {
		return c
	}
	return unsupportedClient{}
}

// Fallback exposes the deterministic generator used for substituted replies.
func (r *Registry) Fallback() *Generator {
	return r.offline.generator
}
