package conversation

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/zhouzirui/voicedesk/internal/model/chat"
	"github.com/zhouzirui/voicedesk/internal/service/ai"
	chatservice "github.com/zhouzirui/voicedesk/internal/service/chat"
	"github.com/zhouzirui/voicedesk/pkg/log"
)

const (
	// FallbackReply replaces empty or near-empty generator output.
	FallbackReply = "I understand. How else can I help you?"
	// ErrorReply replaces output when the generator fails outright.
	ErrorReply = "I apologize for the technical difficulty. How can I assist you?"
	// MinReplyLength is the shortest reply accepted from a generator.
	MinReplyLength = 3
)

// Config tunes the prompt policy.
type Config struct {
	ContextTurns int
	Timeout      time.Duration
}

// Service runs one user utterance through the store and the generator.
type Service struct {
	store     *chatservice.Store
	generator ai.Generator
	prompts   *ai.PromptBuilder
	cfg       Config
}

func NewService(store *chatservice.Store, generator ai.Generator, prompts *ai.PromptBuilder, cfg Config) *Service {
	if cfg.ContextTurns <= 0 {
		cfg.ContextTurns = chatservice.DefaultContextTurns
	}
	return &Service{
		store:     store,
		generator: generator,
		prompts:   prompts,
		cfg:       cfg,
	}
}

// Store exposes the underlying session store for read-only endpoints.
func (s *Service) Store() *chatservice.Store {
	return s.store
}

// Backend names the active generator.
func (s *Service) Backend() string {
	return s.generator.Backend()
}

// Submit records the utterance, generates a reply from the trailing context window,
// and records the reply. It always returns a complete user/assistant pair.
func (s *Service) Submit(ctx context.Context, sessionID, text string) chat.Exchange {
	id := s.store.EnsureSession(sessionID)
	userTurn := s.store.RecordTurn(id, chat.SpeakerUser, text)

	window := s.store.BuildContext(id, s.cfg.ContextTurns)
	prompt := s.prompts.Build(window)

	reply := s.reply(ctx, id, prompt)
	assistantTurn := s.store.RecordTurn(id, chat.SpeakerAssistant, reply)

	logger := log.Component(ctx, "conversation")
	logger.Info().Str("session", id).Str("speaker", "user").Msg(text)
	logger.Info().Str("session", id).Str("speaker", "assistant").Msg(reply)

	return chat.Exchange{
		SessionID:  id,
		User:       userTurn,
		Assistant:  assistantTurn,
		Transcript: s.store.FullTranscript(id),
	}
}

func (s *Service) reply(ctx context.Context, sessionID, prompt string) string {
	raw, err := s.generate(ctx, prompt)
	if err != nil {
		logger := log.Component(ctx, "conversation")
		logger.Error().Err(err).Str("session", sessionID).Str("backend", s.generator.Backend()).Msg("response generation error")
		return ErrorReply
	}

	reply := CleanReply(raw)
	if utf8.RuneCountInString(reply) < MinReplyLength {
		return FallbackReply
	}
	return reply
}

func (s *Service) generate(ctx context.Context, prompt string) (reply string, err error) {
	if s.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.Timeout)
		defer cancel()
	}

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("generator panic: %v", r)
		}
	}()

	return s.generator.Generate(ctx, prompt)
}

// CleanReply trims whitespace and drops speaker labels the model echoed back.
func CleanReply(raw string) string {
	reply := strings.TrimSpace(raw)
	reply = strings.ReplaceAll(reply, chat.SpeakerAssistant.Label()+":", "")
	return strings.TrimSpace(reply)
}
