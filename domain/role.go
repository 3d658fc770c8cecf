package domain

// Role is a named behavioral instruction applied to a participant's replies.
type Role struct {
	ID          string
	Name        string
	Description string
	Prompt      string
}

// NeutralRoleID is the fallback role applied when a participant carries
// no role or an unrecognized one. The stored value is never rewritten.
const NeutralRoleID = "neutral"

var predefinedRoles = []Role{
	{
		ID:          NeutralRoleID,
		Name:        "Neutral",
		Description: "Balanced and objective responses",
		Prompt:      "Respond in a balanced, objective manner. Provide thoughtful analysis without taking extreme positions.",
	},
	{
		ID:          "devils-advocate",
		Name:        "Devil's Advocate",
		Description: "Challenges ideas and plays contrarian",
		Prompt:      "Act as a devil's advocate. Challenge the ideas presented, ask probing questions, and present counterarguments to encourage deeper thinking.",
	},
	{
		ID:          "summarizer",
		Name:        "Summarizer",
		Description: "Focuses on key points and synthesis",
		Prompt:      "Your role is to summarize and synthesize the key points from the conversation. Highlight the most important insights and connections.",
	},
	{
		ID:          "creative",
		Name:        "Creative Thinker",
		Description: "Brings innovative and imaginative perspectives",
		Prompt:      "Approach topics with creativity and imagination. Offer unique perspectives, innovative solutions, and think outside conventional boundaries.",
	},
	{
		ID:          "analyst",
		Name:        "Analyst",
		Description: "Focuses on data, logic, and systematic thinking",
		Prompt:      "Analyze topics systematically. Focus on data, logical reasoning, and structured analysis. Break down complex problems methodically.",
	},
	{
		ID:          "optimist",
		Name:        "Optimist",
		Description: "Emphasizes positive aspects and possibilities",
		Prompt:      "Focus on positive aspects, potential opportunities, and constructive solutions. Maintain an optimistic outlook while being realistic.",
	},
}

// Roles returns the catalog in display order.
func Roles() []Role {
	out := make([]Role, len(predefinedRoles))
	copy(out, predefinedRoles)
	return out
}

// RoleByID looks up a catalog entry by identifier.
func RoleByID(id string) (Role, bool) {
	for _, r := range predefinedRoles {
		if r.ID == id {
			return r, true
		}
	}
	return Role{}, false
}

// ResolveRole maps a participant's stored role identifier to a catalog
// entry, falling back to neutral when the value is empty or unknown.
func ResolveRole(id string) Role {
	if r, ok := RoleByID(id); ok {
		return r
	}
	r, _ := RoleByID(NeutralRoleID)
	return r
}
