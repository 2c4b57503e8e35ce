package ai

import (
	"fmt"
	"strings"

	"github.com/zhouzirui/voicedesk/internal/model/chat"
	"github.com/zhouzirui/voicedesk/internal/model/persona"
)

// PromptBuilder renders a context window into a single generation prompt.
type PromptBuilder struct {
	preamble string
}

// NewPromptBuilder derives the instruction preamble from a persona.
func NewPromptBuilder(p persona.Persona) *PromptBuilder {
	return &PromptBuilder{preamble: buildPreamble(p)}
}

// Preamble returns the fixed instruction block placed before the conversation.
func (b *PromptBuilder) Preamble() string {
	return b.preamble
}

// Build renders turns oldest first as "<Label>: text" lines and leaves the
// assistant label open for the model to complete.
func (b *PromptBuilder) Build(window []chat.Turn) string {
	lines := make([]string, 0, len(window))
	for _, turn := range window {
		lines = append(lines, fmt.Sprintf("%s: %s", turn.Speaker.Label(), turn.Text))
	}

	return fmt.Sprintf("%s\n\nConversation:\n%s\n%s:", b.preamble, strings.Join(lines, "\n"), chat.SpeakerAssistant.Label())
}

func buildPreamble(p persona.Persona) string {
	title := p.Title
	if title == "" {
		title = "assistant"
	}
	tone := p.Tone
	if tone == "" {
		tone = "polite and concise"
	}

	var builder strings.Builder
	fmt.Fprintf(&builder, "You are a helpful %s.\n", title)
	fmt.Fprintf(&builder, "Be %s.", tone)
	if p.MaxWords > 0 {
		fmt.Fprintf(&builder, " Keep responses under %d words.", p.MaxWords)
	}
	for _, guideline := range p.Guidelines {
		builder.WriteString("\n")
		builder.WriteString(guideline)
	}
	return builder.String()
}
