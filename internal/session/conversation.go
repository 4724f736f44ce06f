package session

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"wawachat/pkg/types"
)

// Conversation is the ordered turn history. Owned exclusively by the Session;
// all access happens under the session mutex. It grows until an explicit
// clear; fitting the model context is the engine's job, governed by the
// truncation parameter.
type Conversation struct {
	turns []types.Turn
}

// NewTurn builds an immutable turn with a fresh ID and timestamp.
func NewTurn(role types.Role, text string) types.Turn {
	return types.Turn{
		ID:        uuid.NewString(),
		Role:      role,
		Text:      text,
		Timestamp: time.Now(),
	}
}

func (c *Conversation) Append(t types.Turn) {
	c.turns = append(c.turns, t)
}

func (c *Conversation) Len() int { return len(c.turns) }

// Turns returns a copy so callers never alias the live history.
func (c *Conversation) Turns() []types.Turn {
	out := make([]types.Turn, len(c.turns))
	copy(out, c.turns)
	return out
}

func (c *Conversation) Clear() {
	c.turns = nil
}

// RenderPrompt concatenates the history into the Zephyr-style chat template
// used by TinyLlama chat models, ending with the assistant generation prompt.
// Pure and deterministic: identical turn sequences render identical prompts.
func (c *Conversation) RenderPrompt() string {
	var b strings.Builder
	for _, t := range c.turns {
		b.WriteString("<|")
		b.WriteString(string(t.Role))
		b.WriteString("|>\n")
		b.WriteString(t.Text)
		b.WriteString("</s>\n")
	}
	b.WriteString("<|assistant|>\n")
	return b.String()
}
