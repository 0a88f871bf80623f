package openai

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	goopenai "github.com/sashabaranov/go-openai"

	"github.com/yungbote/repurpose-bot/internal/platform/ctxutil"
	"github.com/yungbote/repurpose-bot/internal/platform/logger"
)

const (
	DefaultChatModel       = goopenai.GPT3Dot5Turbo
	DefaultTranscribeModel = goopenai.Whisper1
)

type Config struct {
	APIKey          string
	BaseURL         string
	ChatModel       string
	TranscribeModel string
	Timeout         time.Duration
}

// Client is the subset of the OpenAI API the bot uses.
type Client interface {
	// GenerateText sends one system and one user message and returns the first choice's content.
	GenerateText(ctx context.Context, system string, user string) (string, error)
	// Transcribe runs speech-to-text over audio. mimeType picks the upload file extension.
	Transcribe(ctx context.Context, audio []byte, mimeType string) (string, error)
}

type client struct {
	log             *logger.Logger
	api             *goopenai.Client
	chatModel       string
	transcribeModel string
}

func NewClient(log *logger.Logger, cfg Config) (Client, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("missing OPENAI_API_KEY")
	}
	apiCfg := goopenai.DefaultConfig(cfg.APIKey)
	if base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"); base != "" {
		apiCfg.BaseURL = base
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 90 * time.Second
	}
	apiCfg.HTTPClient = &http.Client{Timeout: timeout}

	chatModel := strings.TrimSpace(cfg.ChatModel)
	if chatModel == "" {
		chatModel = DefaultChatModel
	}
	transcribeModel := strings.TrimSpace(cfg.TranscribeModel)
	if transcribeModel == "" {
		transcribeModel = DefaultTranscribeModel
	}

	return &client{
		log:             log.With("client", "OpenAIClient", "chat_model", chatModel),
		api:             goopenai.NewClientWithConfig(apiCfg),
		chatModel:       chatModel,
		transcribeModel: transcribeModel,
	}, nil
}

func (c *client) GenerateText(ctx context.Context, system string, user string) (string, error) {
	ctx = ctxutil.Default(ctx)
	start := time.Now()
	resp, err := c.api.CreateChatCompletion(ctx, goopenai.ChatCompletionRequest{
		Model: c.chatModel,
		Messages: []goopenai.ChatCompletionMessage{
			{Role: goopenai.ChatMessageRoleSystem, Content: system},
			{Role: goopenai.ChatMessageRoleUser, Content: user},
		},
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	c.log.Debug("Chat completion finished",
		"duration_ms", time.Since(start).Milliseconds(),
		"choices", len(resp.Choices),
		"total_tokens", resp.Usage.TotalTokens,
	)
	if len(resp.Choices) == 0 {
		return "", nil
	}
	return resp.Choices[0].Message.Content, nil
}

func (c *client) Transcribe(ctx context.Context, audio []byte, mimeType string) (string, error) {
	ctx = ctxutil.Default(ctx)
	if len(audio) == 0 {
		return "", fmt.Errorf("empty audio")
	}
	resp, err := c.api.CreateTranscription(ctx, goopenai.AudioRequest{
		Model:    c.transcribeModel,
		Reader:   bytes.NewReader(audio),
		FilePath: uploadName(mimeType),
	})
	if err != nil {
		return "", fmt.Errorf("transcription: %w", err)
	}
	return strings.TrimSpace(resp.Text), nil
}

// uploadName gives the multipart file a name whose extension the API accepts.
func uploadName(mimeType string) string {
	m := strings.ToLower(strings.TrimSpace(mimeType))
	if i := strings.Index(m, ";"); i >= 0 {
		m = strings.TrimSpace(m[:i])
	}
	ext := ".ogg"
	switch {
	case m == "audio/mpeg" || m == "audio/mp3":
		ext = ".mp3"
	case m == "audio/mp4" || m == "audio/m4a" || m == "audio/x-m4a":
		ext = ".m4a"
	case strings.Contains(m, "wav"):
		ext = ".wav"
	case m == "audio/webm":
		ext = ".webm"
	case strings.Contains(m, "flac"):
		ext = ".flac"
	}
	return "voice" + ext
}
