package app

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/yungbote/repurpose-bot/internal/data/db"
	"github.com/yungbote/repurpose-bot/internal/domain"
	"github.com/yungbote/repurpose-bot/internal/platform/envutil"
)

const (
	SpeechProviderOpenAI = "openai"
	SpeechProviderGCP    = "gcp"
)

type Config struct {
	Port    string
	LogMode string

	TelegramToken      string
	TelegramWebhookURL string
	FunctionSecret     string

	OpenAIAPIKey          string
	OpenAIBaseURL         string
	OpenAIModel           string
	OpenAITranscribeModel string

	SpeechProvider string
	SpeechLanguage string

	DB db.Config

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	LedgerTTL     time.Duration

	YouTubeCreditGated bool
	YouTubeLanguage    string
	LanguagesPath      string
	InitialCredits     int
	PipelineTimeout    time.Duration
}

// LoadConfig reads the environment, after an optional .env file.
// Every missing required variable is reported in one error.
func LoadConfig() (Config, error) {
	_ = godotenv.Load()

	req, err := envutil.Required(
		"TELEGRAM_BOT_TOKEN",
		"OPENAI_API_KEY",
		"DATABASE_URL",
		"DATABASE_KEY",
		"FUNCTION_SECRET",
	)
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		Port:    envutil.String("PORT", "8080"),
		LogMode: envutil.String("LOG_MODE", "development"),

		TelegramToken:      req["TELEGRAM_BOT_TOKEN"],
		TelegramWebhookURL: envutil.String("TELEGRAM_WEBHOOK_URL", ""),
		FunctionSecret:     req["FUNCTION_SECRET"],

		OpenAIAPIKey:          req["OPENAI_API_KEY"],
		OpenAIBaseURL:         envutil.String("OPENAI_BASE_URL", ""),
		OpenAIModel:           envutil.String("OPENAI_MODEL", ""),
		OpenAITranscribeModel: envutil.String("OPENAI_TRANSCRIBE_MODEL", ""),

		SpeechProvider: strings.ToLower(envutil.String("SPEECH_PROVIDER", SpeechProviderOpenAI)),
		SpeechLanguage: envutil.String("SPEECH_LANGUAGE", "en-US"),

		DB: db.Config{
			Driver: strings.ToLower(envutil.String("DATABASE_DRIVER", db.DriverPostgres)),
			URL:    req["DATABASE_URL"],
			Key:    req["DATABASE_KEY"],
		},

		RedisAddr:     envutil.String("REDIS_ADDR", ""),
		RedisPassword: envutil.String("REDIS_PASSWORD", ""),
		RedisDB:       envutil.Int("REDIS_DB", 0),
		LedgerTTL:     envutil.Duration("UPDATE_LEDGER_TTL", 24*time.Hour),

		YouTubeCreditGated: envutil.Bool("YOUTUBE_CREDIT_GATED", false),
		YouTubeLanguage:    envutil.String("YOUTUBE_CAPTION_LANGUAGE", "en"),
		LanguagesPath:      envutil.String("LANGUAGES_PATH", ""),
		InitialCredits:     envutil.Int("INITIAL_CREDITS", domain.DefaultCredits),
		PipelineTimeout:    envutil.Duration("PIPELINE_TIMEOUT", 2*time.Minute),
	}

	switch cfg.SpeechProvider {
	case SpeechProviderOpenAI, SpeechProviderGCP:
	default:
		return Config{}, fmt.Errorf("unknown SPEECH_PROVIDER %q (want %s or %s)", cfg.SpeechProvider, SpeechProviderOpenAI, SpeechProviderGCP)
	}
	switch cfg.DB.Driver {
	case db.DriverPostgres, db.DriverSQLite:
	default:
		return Config{}, fmt.Errorf("unknown DATABASE_DRIVER %q", cfg.DB.Driver)
	}
	if cfg.InitialCredits < 0 {
		return Config{}, fmt.Errorf("INITIAL_CREDITS must not be negative")
	}
	return cfg, nil
}

// WebhookEndpoint is TelegramWebhookURL with the shared secret set as a query parameter.
func (c Config) WebhookEndpoint() (string, error) {
	if c.TelegramWebhookURL == "" {
		return "", nil
	}
	u, err := url.Parse(c.TelegramWebhookURL)
	if err != nil {
		return "", fmt.Errorf("parse TELEGRAM_WEBHOOK_URL: %w", err)
	}
	q := u.Query()
	q.Set("secret", c.FunctionSecret)
	u.RawQuery = q.Encode()
	return u.String(), nil
}
