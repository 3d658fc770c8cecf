package backends

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"council/domain"
)

var offlineTemplates = map[string]map[string][]string{
	"gpt-4": {
		"neutral": {
			`That's an interesting perspective on "%s". Let me analyze this from multiple angles...`,
			`Based on the conversation so far, I think we should consider both the immediate implications and long-term consequences...`,
			`This raises several important questions that we should explore further...`,
		},
		"devils-advocate": {
			`I need to challenge that assumption about "%s". What if we're missing something critical here?`,
			`Hold on - isn't there a fundamental flaw in this reasoning? Let me play devil's advocate...`,
			`Before we accept this, shouldn't we consider the counterarguments? What about...`,
		},
		"summarizer": {
			`Let me summarize what we've discussed so far regarding "%s"...`,
			`The key points that have emerged from our conversation are...`,
			`To synthesize the different perspectives we've heard...`,
		},
		"creative": {
			`What if we approached "%s" from a completely different angle? Imagine if...`,
			`This reminds me of an interesting creative solution I've seen before...`,
			`Let's think outside the box here. What would happen if we...`,
		},
		"analyst": {
			`Looking at "%s" analytically, we need to break this down into components...`,
			`The data suggests several patterns we should examine...`,
			`From a systematic analysis perspective, here's what stands out...`,
		},
		"optimist": {
			`I see great potential in what you're discussing about "%s". Here's why this could work really well...`,
			`This is actually quite exciting! The possibilities here include...`,
			`I'm optimistic about this direction because...`,
		},
	},
	"claude": {
		"neutral": {
			`Thank you for raising "%s". I'd like to contribute a balanced perspective on this...`,
			`Building on what's been shared, I think there are several dimensions to consider...`,
			`This is a nuanced topic that deserves careful consideration from multiple viewpoints...`,
		},
		"devils-advocate": {
			`I appreciate the discussion about "%s", but I must respectfully disagree. Here's why...`,
			`As devil's advocate, I feel compelled to point out some potential issues with this approach...`,
			`Let me challenge this constructively - what about the risks we haven't discussed?`,
		},
		"summarizer": {
			`To summarize our discussion of "%s" and bring together the various viewpoints...`,
			`The conversation has revealed several key insights about this topic...`,
			`Drawing together the threads of our discussion, here's what emerges...`,
		},
		"creative": {
			`Your mention of "%s" sparks an interesting creative connection for me...`,
			`What if we reimagined this entire problem? I'm thinking of a creative approach where...`,
			`This opens up fascinating creative possibilities. Consider this alternative...`,
		},
		"analyst": {
			`Analyzing "%s" systematically, I see several patterns and relationships...`,
			`From an analytical standpoint, let me break down the key factors at play...`,
			`The logical structure of this problem suggests we should examine...`,
		},
		"optimist": {
			`I'm genuinely excited about the direction this discussion of "%s" is taking...`,
			`There's so much positive potential here! I can see multiple pathways to success...`,
			`This gives me great hope because it demonstrates...`,
		},
	},
}

// Generator synthesizes deterministic replies from role-and-participant
// templates. Given the same seed it produces the same sequence, which
// keeps offline-mode tests reproducible.
type Generator struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func NewGenerator(seed int64) *Generator {
	return &Generator{rng: rand.New(rand.NewSource(seed))}
}

// Reply picks one template for the participant's id and resolved role
// and interpolates the user's utterance. Unknown participants get a
// generic acknowledgement. Reply never fails.
func (g *Generator) Reply(participant domain.Participant, utterance string) string {
	byRole, ok := offlineTemplates[participant.ID]
	if !ok {
		return fmt.Sprintf(`As %s, I appreciate your message about "%s". Let me contribute to this discussion...`,
			participant.Name, utterance)
	}
	templates, ok := byRole[domain.ResolveRole(participant.Role).ID]
	if !ok {
		templates = byRole[domain.NeutralRoleID]
	}
	tmpl := templates[g.intn(len(templates))]

	// Some templates only reference the utterance implicitly.
	if strings.Contains(tmpl, "%s") {
		return fmt.Sprintf(tmpl, utterance)
	}
	return tmpl
}

func (g *Generator) intn(n int) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.rng.Intn(n)
}

// delay returns an artificial latency in the half-open interval
// [min, max), drawn uniformly.
func (g *Generator) delay(min, max time.Duration) time.Duration {
	g.mu.Lock()
	defer g.mu.Unlock()
	return min + time.Duration(g.rng.Float64()*float64(max-min))
}

// OfflineClient serves replies from the Generator, emulating backend
// latency with a uniform artificial delay. It never fails.
type OfflineClient struct {
	generator *Generator
	minDelay  time.Duration
	maxDelay  time.Duration
}

func NewOfflineClient(generator *Generator) *OfflineClient {
	return &OfflineClient{
		generator: generator,
		minDelay:  1 * time.Second,
		maxDelay:  3 * time.Second,
	}
}

// WithDelay overrides the simulated latency window. Tests use a zero
// window to avoid slow runs.
func (c *OfflineClient) WithDelay(min, max time.Duration) *OfflineClient {
	c.minDelay = min
	c.maxDelay = max
	return c
}

func (c *OfflineClient) Respond(ctx context.Context, participant domain.Participant, _ []domain.Message, utterance string) (string, error) {
	if c.maxDelay > c.minDelay {
		timer := time.NewTimer(c.generator.delay(c.minDelay, c.maxDelay))
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return c.generator.Reply(participant, utterance), nil
}
