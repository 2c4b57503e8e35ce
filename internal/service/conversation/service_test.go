package conversation

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zhouzirui/voicedesk/internal/model/chat"
	"github.com/zhouzirui/voicedesk/internal/model/persona"
	"github.com/zhouzirui/voicedesk/internal/service/ai"
	chatservice "github.com/zhouzirui/voicedesk/internal/service/chat"
)

type promptRecorder struct {
	mu      sync.Mutex
	prompts []string
	reply   func(prompt string) (string, error)
}

func (p *promptRecorder) Generate(_ context.Context, prompt string) (string, error) {
	p.mu.Lock()
	p.prompts = append(p.prompts, prompt)
	p.mu.Unlock()
	return p.reply(prompt)
}

func (p *promptRecorder) Backend() string { return "recorder" }

func newService(gen ai.Generator, opts ...chatservice.Option) *Service {
	store := chatservice.NewStore(opts...)
	builder := ai.NewPromptBuilder(persona.Seed()[0])
	return NewService(store, gen, builder, Config{ContextTurns: 6, Timeout: time.Second})
}

func TestSubmitEndToEnd(t *testing.T) {
	svc := newService(ai.NewRuleGenerator("reply one", "reply two"))
	ctx := context.Background()

	first := svc.Submit(ctx, "", "Hello")
	require.NotEmpty(t, first.SessionID)
	assert.Len(t, first.Transcript, 2)
	assert.Equal(t, "reply one", first.Assistant.Text)

	second := svc.Submit(ctx, first.SessionID, "Can you help?")
	assert.Equal(t, first.SessionID, second.SessionID)
	assert.Len(t, second.Transcript, 4)

	window := svc.Store().BuildContext(first.SessionID, 6)
	require.Len(t, window, 4)
	assert.Equal(t, "Hello", window[0].Text)
	assert.Equal(t, chat.SpeakerUser, window[0].Speaker)
	assert.Equal(t, "reply one", window[1].Text)
	assert.Equal(t, chat.SpeakerAssistant, window[1].Speaker)
	assert.Equal(t, "Can you help?", window[2].Text)
	assert.Equal(t, "reply two", window[3].Text)
}

func TestSubmitEmptyInputProducesFallbackPair(t *testing.T) {
	svc := newService(ai.GeneratorFunc(func(context.Context, string) (string, error) { return "", nil }))

	ex := svc.Submit(context.Background(), "", "")
	assert.Equal(t, "", ex.User.Text)
	assert.Equal(t, chat.SpeakerUser, ex.User.Speaker)
	assert.Equal(t, FallbackReply, ex.Assistant.Text)
	assert.Len(t, ex.Transcript, 2)
}

func TestSubmitShortReplyUsesFallback(t *testing.T) {
	for _, raw := range []string{"", "  ", "ok", "Assistant:", " Assistant: a "} {
		svc := newService(ai.GeneratorFunc(func(context.Context, string) (string, error) { return raw, nil }))
		ex := svc.Submit(context.Background(), "s", "hi")
		assert.Equal(t, FallbackReply, ex.Assistant.Text, "raw=%q", raw)
	}
}

func TestSubmitGeneratorErrorUsesErrorReply(t *testing.T) {
	svc := newService(ai.GeneratorFunc(func(context.Context, string) (string, error) {
		return "", errors.New("model offline")
	}))

	ex := svc.Submit(context.Background(), "s", "hi")
	assert.Equal(t, ErrorReply, ex.Assistant.Text)
	assert.Len(t, ex.Transcript, 2)
}

func TestSubmitGeneratorPanicUsesErrorReply(t *testing.T) {
	svc := newService(ai.GeneratorFunc(func(context.Context, string) (string, error) {
		panic("tensor shape mismatch")
	}))

	ex := svc.Submit(context.Background(), "s", "hi")
	assert.Equal(t, ErrorReply, ex.Assistant.Text)
}

func TestSubmitGeneratorTimeout(t *testing.T) {
	store := chatservice.NewStore()
	slow := ai.GeneratorFunc(func(ctx context.Context, _ string) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	})
	svc := NewService(store, slow, ai.NewPromptBuilder(persona.Persona{}), Config{Timeout: 20 * time.Millisecond})

	ex := svc.Submit(context.Background(), "s", "hi")
	assert.Equal(t, ErrorReply, ex.Assistant.Text)
}

func TestSubmitCleansReply(t *testing.T) {
	svc := newService(ai.GeneratorFunc(func(context.Context, string) (string, error) {
		return "  Assistant: Sure, I can check that.  ", nil
	}))

	ex := svc.Submit(context.Background(), "s", "hi")
	assert.Equal(t, "Sure, I can check that.", ex.Assistant.Text)
}

func TestSubmitPromptUsesPostAppendWindow(t *testing.T) {
	rec := &promptRecorder{reply: func(string) (string, error) { return "fine thanks", nil }}
	svc := newService(rec)
	ctx := context.Background()

	for _, text := range []string{"one", "two", "three", "four"} {
		svc.Submit(ctx, "s", text)
	}

	require.Len(t, rec.prompts, 4)
	first := rec.prompts[0]
	assert.True(t, strings.HasSuffix(first, "Conversation:\nCustomer: one\nAssistant:"))

	// 7 turns exist when the fourth prompt is built; only the last 6 are rendered
	last := rec.prompts[3]
	assert.NotContains(t, last, "Customer: one")
	assert.Contains(t, last, "Customer: two")
	assert.True(t, strings.HasSuffix(last, "Customer: four\nAssistant:"))
	assert.Equal(t, 6, strings.Count(last, "\nCustomer: ")+strings.Count(last, "\nAssistant: "))
}

func TestSubmitFreshSessionsGetIDs(t *testing.T) {
	svc := newService(ai.NewRuleGenerator(), chatservice.WithIDGenerator(chatservice.RandomIDs()))
	ctx := context.Background()

	a := svc.Submit(ctx, "", "hi")
	b := svc.Submit(ctx, "", "hi")
	assert.NotEmpty(t, a.SessionID)
	assert.NotEqual(t, a.SessionID, b.SessionID)
	assert.Len(t, b.Transcript, 2)
}

func TestCleanReply(t *testing.T) {
	assert.Equal(t, "Hello", CleanReply("\n Hello \n"))
	assert.Equal(t, "Hi there", CleanReply("Assistant: Hi there"))
}
