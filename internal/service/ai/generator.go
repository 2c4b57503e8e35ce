package ai

import (
	"context"
	"sync"
)

// Generator turns a rendered prompt into a reply.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
	// Backend names the implementation for health reporting.
	Backend() string
}

// DefaultReplies are the canned answers of the rule-based generator.
var DefaultReplies = []string{
	"I understand you'd like assistance. How can I help you today?",
	"Thank you for that information. Let me help you with that.",
	"I see. Could you provide more details about your request?",
	"That's a great question. Let me explain that for you.",
	"I'll be happy to assist you with that. What else would you like to know?",
	"Is there anything specific you'd like help with?",
	"Thank you for calling. How else can I assist you today?",
}

// RuleGenerator cycles through a fixed list of replies, ignoring the prompt.
type RuleGenerator struct {
	mu      sync.Mutex
	replies []string
	next    int
}

// NewRuleGenerator uses DefaultReplies when replies is empty.
func NewRuleGenerator(replies ...string) *RuleGenerator {
	if len(replies) == 0 {
		replies = DefaultReplies
	}
	return &RuleGenerator{replies: append([]string(nil), replies...)}
}

func (g *RuleGenerator) Generate(_ context.Context, _ string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	reply := g.replies[g.next%len(g.replies)]
	g.next++
	return reply, nil
}

func (g *RuleGenerator) Backend() string {
	return "rule"
}

// GeneratorFunc adapts a plain function to Generator.
type GeneratorFunc func(ctx context.Context, prompt string) (string, error)

func (f GeneratorFunc) Generate(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}

func (f GeneratorFunc) Backend() string {
	return "func"
}
