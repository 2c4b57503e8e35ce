package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/zhouzirui/voicedesk/internal/config"
	"github.com/zhouzirui/voicedesk/internal/handler"
	"github.com/zhouzirui/voicedesk/internal/handler/callstream"
	"github.com/zhouzirui/voicedesk/internal/model/persona"
	"github.com/zhouzirui/voicedesk/internal/service/ai"
	"github.com/zhouzirui/voicedesk/internal/service/chat"
	"github.com/zhouzirui/voicedesk/internal/service/conversation"
	"github.com/zhouzirui/voicedesk/internal/service/speech"
	"github.com/zhouzirui/voicedesk/internal/service/telephony"
	"github.com/zhouzirui/voicedesk/internal/storage/sqlite"
	"github.com/zhouzirui/voicedesk/pkg/log"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	envErr := godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		// logger level is part of the config, so fall back to a plain console logger
		l := log.New(os.Stderr)
		l.Fatal().Err(err).Msg("failed to load configuration")
	}

	ctx, flush := log.NewContextWithLogger(ctx, cfg.Log.Level)
	defer flush()
	logger := log.FromCtx(ctx)

	if envErr != nil {
		logger.Debug().Err(envErr).Msg("no .env file, using process environment only")
	}

	if err := run(ctx, cfg, *logger); err != nil {
		logger.Error().Err(err).Msg("server stopped with error")
		flush()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger zerolog.Logger) error {
	idGen, err := chat.NewIDGenerator(cfg.Conversation.SessionIDStrategy)
	if err != nil {
		return err
	}
	storeOpts := []chat.Option{chat.WithIDGenerator(idGen)}

	if cfg.Journal.Path != "" {
		db, err := sqlite.NewDB(ctx, cfg.Journal.Path)
		if err != nil {
			return err
		}
		defer db.Close()
		storeOpts = append(storeOpts, chat.WithJournal(sqlite.NewJournal(db)))
		logger.Info().Str("path", cfg.Journal.Path).Msg("transcript journal enabled")
	}
	store := chat.NewStore(storeOpts...)
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := store.Close(flushCtx); err != nil {
			logger.Warn().Err(err).Msg("transcript journal not fully flushed")
		}
	}()

	personas := persona.NewMemoryStore(persona.Seed())
	active, err := persona.Resolve(personas, cfg.Conversation.PersonaID)
	if err != nil {
		return err
	}

	generator := ai.NewGenerator(ctx, cfg, logger)
	conv := conversation.NewService(store, generator, ai.NewPromptBuilder(active), conversation.Config{
		ContextTurns: cfg.Conversation.ContextTurns,
		Timeout:      cfg.Conversation.GeneratorTimeout,
	})

	dialer, err := newDialer(cfg)
	if err != nil {
		return err
	}

	streamEnabled, err := cfg.Mode.CallStreamEnabled()
	if err != nil {
		return err
	}

	router := handler.NewRouter(handler.Deps{
		Logger:       logger,
		DemoMode:     cfg.Mode.Demo,
		PublicURL:    cfg.Server.PublicURL,
		Personas:     personas,
		PersonaID:    active.ID,
		Conversation: conv,
		Recognizer:   speech.NewMockRecognizer(),
		Synthesizer:  speech.NewMockSynthesizer(),
		Dialer:       dialer,
		Stream: callstream.Config{
			Enabled:    streamEnabled,
			ChunkBytes: cfg.Speech.ChunkBytes,
			Language:   cfg.Speech.Language,
			SampleRate: cfg.Speech.SampleRate,
		},
	})

	addr, err := cfg.Server.Addr()
	if err != nil {
		return err
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
		BaseContext: func(_ net.Listener) context.Context {
			return context.WithoutCancel(ctx)
		},
	}

	logger.Info().
		Str("addr", addr).
		Bool("demo_mode", cfg.Mode.Demo).
		Str("generator", conv.Backend()).
		Str("telephony", dialer.Backend()).
		Bool("call_stream", streamEnabled).
		Msg("voicedesk listening")

	return runServer(ctx, srv, cfg.Server.ShutdownTimeout)
}

func newDialer(cfg *config.Config) (telephony.Dialer, error) {
	if cfg.Mode.Demo {
		return telephony.NewSimulatedDialer(), nil
	}
	return telephony.NewPlivoDialer(
		cfg.Telephony.AuthID,
		cfg.Telephony.AuthToken,
		cfg.Telephony.PhoneNumber,
		cfg.Server.StreamURL(),
	)
}

func runServer(ctx context.Context, srv *http.Server, grace time.Duration) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), grace)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
