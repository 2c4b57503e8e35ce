package config

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/cloudwego/eino-ext/components/model/ark"
	"github.com/cloudwego/eino/components/model"
)

var (
	ErrTelephonyCredentials = errors.New("PLIVO_AUTH_ID and PLIVO_AUTH_TOKEN required for production mode")
	ErrArkDisabled          = errors.New("ark credentials or model missing: set ARK_MODEL with ARK_API_KEY or ARK_ACCESS_KEY/ARK_SECRET_KEY")
)

// Config 聚合整个服务的配置项。
type Config struct {
	Server       ServerConfig
	Mode         ModeConfig
	Conversation ConversationConfig
	AI           AIConfig
	OpenAI       OpenAIConfig
	Speech       SpeechConfig
	Telephony    TelephonyConfig
	Journal      JournalConfig
	Log          LogConfig
}

// Load 从环境变量加载配置。
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate 校验 env 标签无法表达的跨字段约束。
func (c *Config) Validate() error {
	if _, err := c.Server.Addr(); err != nil {
		return err
	}
	if c.Conversation.ContextTurns < 1 {
		return fmt.Errorf("invalid CONTEXT_WINDOW_TURNS value %d: must be at least 1", c.Conversation.ContextTurns)
	}
	if _, err := c.Mode.CallStreamEnabled(); err != nil {
		return err
	}
	switch strings.ToLower(strings.TrimSpace(c.Conversation.GeneratorBackend)) {
	case "", "auto", "rule", "ark", "openai":
	default:
		return fmt.Errorf("invalid GENERATOR_BACKEND value %q", c.Conversation.GeneratorBackend)
	}
	if !c.Mode.Demo && !c.Telephony.Enabled() {
		return ErrTelephonyCredentials
	}
	return nil
}

// ServerConfig 描述 HTTP 服务配置。
type ServerConfig struct {
	Port            string        `env:"SERVER_PORT" envDefault:"8000"`
	PublicURL       string        `env:"PUBLIC_URL" envDefault:"http://localhost:8000"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

// Addr 解析服务器监听地址。
func (c ServerConfig) Addr() (string, error) {
	port := strings.TrimSpace(c.Port)
	if port == "" {
		port = "8000"
	}

	if strings.Contains(port, ":") {
		// 允许用户直接传入 ":8000" 或 "127.0.0.1:8000"。
		return port, nil
	}

	if _, err := strconv.Atoi(port); err != nil {
		return "", fmt.Errorf("invalid SERVER_PORT value: %q", port)
	}

	return ":" + port, nil
}

// StreamURL 推导电话服务商推送通话音频的 websocket 地址。
func (c ServerConfig) StreamURL() string {
	base := strings.TrimRight(strings.TrimSpace(c.PublicURL), "/")
	return strings.Replace(base, "http", "ws", 1) + "/ws/call"
}

// ModeConfig 区分演示模式与生产模式。
type ModeConfig struct {
	Demo       bool   `env:"DEMO_MODE" envDefault:"true"`
	CallStream string `env:"CALL_STREAM_ENABLED"`
}

// CallStreamEnabled 未显式配置时，非演示模式默认开启。
func (c ModeConfig) CallStreamEnabled() (bool, error) {
	raw := strings.TrimSpace(c.CallStream)
	if raw == "" {
		return !c.Demo, nil
	}
	val, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("invalid CALL_STREAM_ENABLED value %q: %w", raw, err)
	}
	return val, nil
}

// ConversationConfig 描述会话与回复生成策略。
type ConversationConfig struct {
	ContextTurns      int           `env:"CONTEXT_WINDOW_TURNS" envDefault:"6"`
	SessionIDStrategy string        `env:"SESSION_ID_STRATEGY" envDefault:"timestamp"`
	PersonaID         string        `env:"PERSONA_ID" envDefault:"customer-service"`
	GeneratorBackend  string        `env:"GENERATOR_BACKEND" envDefault:"auto"`
	GeneratorTimeout  time.Duration `env:"GENERATOR_TIMEOUT" envDefault:"20s"`
}

// AIConfig 描述 Ark 大模型相关配置。
type AIConfig struct {
	APIKey      string  `env:"ARK_API_KEY"`
	AccessKey   string  `env:"ARK_ACCESS_KEY"`
	SecretKey   string  `env:"ARK_SECRET_KEY"`
	Model       string  `env:"ARK_MODEL"`
	BaseURL     string  `env:"ARK_BASE_URL" envDefault:"https://ark.cn-beijing.volces.com/api/v3"`
	Region      string  `env:"ARK_REGION" envDefault:"cn-beijing"`
	Temperature float32 `env:"LLM_TEMPERATURE" envDefault:"0.8"`
	MaxTokens   int     `env:"LLM_MAX_TOKENS" envDefault:"50"`
}

// Enabled 表示是否提供了必需的密钥。
func (c AIConfig) Enabled() bool {
	return c.Model != "" && (c.APIKey != "" || (c.AccessKey != "" && c.SecretKey != ""))
}

// NewChatModel 使用配置创建一个模型实例。
func (c AIConfig) NewChatModel(ctx context.Context) (model.ChatModel, error) {
	if !c.Enabled() {
		return nil, ErrArkDisabled
	}

	temperature := c.Temperature
	maxTokens := c.MaxTokens

	return ark.NewChatModel(ctx, &ark.ChatModelConfig{
		BaseURL:     c.BaseURL,
		Region:      c.Region,
		APIKey:      c.APIKey,
		AccessKey:   c.AccessKey,
		SecretKey:   c.SecretKey,
		Model:       c.Model,
		MaxTokens:   &maxTokens,
		Temperature: &temperature,
	})
}

// OpenAIConfig 描述兼容 OpenAI 的对话补全接口（OpenAI、Ollama /v1）。
type OpenAIConfig struct {
	APIKey  string `env:"OPENAI_API_KEY"`
	BaseURL string `env:"OPENAI_BASE_URL"`
	Model   string `env:"OPENAI_MODEL" envDefault:"gpt-4o-mini"`
}

func (c OpenAIConfig) Enabled() bool {
	return c.APIKey != "" || c.BaseURL != ""
}

// SpeechConfig 描述语音识别与合成的参数。
type SpeechConfig struct {
	Language   string `env:"SPEECH_LANGUAGE" envDefault:"en"`
	ChunkBytes int    `env:"SPEECH_CHUNK_BYTES" envDefault:"16000"`
	SampleRate int    `env:"SPEECH_SAMPLE_RATE" envDefault:"8000"`
}

// TelephonyConfig 描述 Plivo 凭证。
type TelephonyConfig struct {
	AuthID      string `env:"PLIVO_AUTH_ID"`
	AuthToken   string `env:"PLIVO_AUTH_TOKEN"`
	PhoneNumber string `env:"PLIVO_PHONE_NUMBER"`
}

func (c TelephonyConfig) Enabled() bool {
	return strings.TrimSpace(c.AuthID) != "" && strings.TrimSpace(c.AuthToken) != ""
}

// JournalConfig 设置 Path 后启用 sqlite 对话日志。
type JournalConfig struct {
	Path string `env:"TRANSCRIPT_JOURNAL_PATH"`
}

type LogConfig struct {
	Level string `env:"LOG_LEVEL" envDefault:"info"`
}
