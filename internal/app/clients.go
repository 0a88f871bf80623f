package app

import (
	"fmt"

	"github.com/yungbote/repurpose-bot/internal/clients/gcp"
	"github.com/yungbote/repurpose-bot/internal/clients/openai"
	"github.com/yungbote/repurpose-bot/internal/clients/redis"
	"github.com/yungbote/repurpose-bot/internal/clients/telegram"
	"github.com/yungbote/repurpose-bot/internal/clients/youtube"
	"github.com/yungbote/repurpose-bot/internal/platform/logger"
	"github.com/yungbote/repurpose-bot/internal/services"
)

type Clients struct {
	Telegram telegram.Client
	OpenAI   openai.Client
	YouTube  youtube.Fetcher
	// Speech is OpenAI or GCP depending on SPEECH_PROVIDER.
	Speech    services.SpeechProvider
	GcpSpeech gcp.Speech
	// UpdateLedger is nil unless REDIS_ADDR is set.
	UpdateLedger redis.UpdateLedger
}

func wireClients(log *logger.Logger, cfg Config) (Clients, error) {
	log.Info("Wiring clients...")
	var c Clients

	tg, err := telegram.NewClient(log, telegram.Config{Token: cfg.TelegramToken})
	if err != nil {
		return Clients{}, fmt.Errorf("init telegram client: %w", err)
	}
	c.Telegram = tg

	oa, err := openai.NewClient(log, openai.Config{
		APIKey:          cfg.OpenAIAPIKey,
		BaseURL:         cfg.OpenAIBaseURL,
		ChatModel:       cfg.OpenAIModel,
		TranscribeModel: cfg.OpenAITranscribeModel,
	})
	if err != nil {
		return Clients{}, fmt.Errorf("init openai client: %w", err)
	}
	c.OpenAI = oa
	c.Speech = oa

	yt, err := youtube.NewFetcher(log, youtube.Config{Language: cfg.YouTubeLanguage})
	if err != nil {
		return Clients{}, fmt.Errorf("init youtube fetcher: %w", err)
	}
	c.YouTube = yt

	if cfg.SpeechProvider == SpeechProviderGCP {
		sp, err := gcp.NewSpeech(log, gcp.SpeechConfig{LanguageCode: cfg.SpeechLanguage})
		if err != nil {
			return Clients{}, fmt.Errorf("init speech client: %w", err)
		}
		c.GcpSpeech = sp
		c.Speech = sp
	}

	if cfg.RedisAddr != "" {
		ledger, err := redis.NewUpdateLedger(log, redis.LedgerConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			TTL:      cfg.LedgerTTL,
		})
		if err != nil {
			c.Close()
			return Clients{}, fmt.Errorf("init redis update ledger: %w", err)
		}
		c.UpdateLedger = ledger
	}
	return c, nil
}

func (c *Clients) Close() {
	if c == nil {
		return
	}
	if c.UpdateLedger != nil {
		_ = c.UpdateLedger.Close()
		c.UpdateLedger = nil
	}
	if c.GcpSpeech != nil {
		_ = c.GcpSpeech.Close()
		c.GcpSpeech = nil
	}
}
