package telegram

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"golang.org/x/time/rate"

	"github.com/yungbote/repurpose-bot/internal/platform/ctxutil"
	"github.com/yungbote/repurpose-bot/internal/platform/logger"
)

const (
	// MaxMessageLength is Telegram's per-message text limit in UTF-16 code units.
	MaxMessageLength = 4096
	// Bot API downloads are capped at 20 MB.
	maxDownloadBytes = 20 << 20
)

type Config struct {
	Token string
	// APIEndpoint and FileEndpoint are fmt templates taking (token, method|path).
	APIEndpoint   string
	FileEndpoint  string
	RatePerSecond float64
	HTTPClient    *http.Client
}

// Client wraps the Bot API calls the bot needs: replies, file downloads and webhook registration.
type Client interface {
	Reply(ctx context.Context, chatID int64, text string) error
	DownloadFile(ctx context.Context, fileID string) ([]byte, error)
	SetWebhook(ctx context.Context, webhookURL string) error
}

type client struct {
	log          *logger.Logger
	api          *tgbotapi.BotAPI
	http         *http.Client
	fileEndpoint string
	limiter      *rate.Limiter
}

func NewClient(log *logger.Logger, cfg Config) (Client, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	if strings.TrimSpace(cfg.Token) == "" {
		return nil, fmt.Errorf("missing TELEGRAM_BOT_TOKEN")
	}
	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: 30 * time.Second}
	}
	apiEndpoint := cfg.APIEndpoint
	if apiEndpoint == "" {
		apiEndpoint = tgbotapi.APIEndpoint
	}
	fileEndpoint := cfg.FileEndpoint
	if fileEndpoint == "" {
		fileEndpoint = tgbotapi.FileEndpoint
	}
	perSecond := cfg.RatePerSecond
	if perSecond <= 0 {
		perSecond = 30
	}

	api, err := tgbotapi.NewBotAPIWithClient(cfg.Token, apiEndpoint, hc)
	if err != nil {
		return nil, fmt.Errorf("telegram getMe: %w", err)
	}

	c := &client{
		log:          log.With("client", "TelegramClient", "bot", api.Self.UserName),
		api:          api,
		http:         hc,
		fileEndpoint: fileEndpoint,
		limiter:      rate.NewLimiter(rate.Limit(perSecond), 1),
	}
	c.log.Info("Telegram bot authorized")
	return c, nil
}

// Reply sends text to chatID, split into chunks no longer than MaxMessageLength.
func (c *client) Reply(ctx context.Context, chatID int64, text string) error {
	ctx = ctxutil.Default(ctx)
	for _, chunk := range SplitMessage(text, MaxMessageLength) {
		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("telegram rate limit: %w", err)
		}
		if _, err := c.api.Send(tgbotapi.NewMessage(chatID, chunk)); err != nil {
			return fmt.Errorf("telegram sendMessage: %w", err)
		}
	}
	return nil
}

func (c *client) DownloadFile(ctx context.Context, fileID string) ([]byte, error) {
	ctx = ctxutil.Default(ctx)
	if strings.TrimSpace(fileID) == "" {
		return nil, fmt.Errorf("empty file id")
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("telegram rate limit: %w", err)
	}
	file, err := c.api.GetFile(tgbotapi.FileConfig{FileID: fileID})
	if err != nil {
		return nil, fmt.Errorf("telegram getFile: %w", err)
	}
	if file.FilePath == "" {
		return nil, fmt.Errorf("telegram getFile: no file_path")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf(c.fileEndpoint, c.api.Token, file.FilePath), nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("telegram file download: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("telegram file download: status %d", resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxDownloadBytes+1))
	if err != nil {
		return nil, fmt.Errorf("telegram file read: %w", err)
	}
	if len(body) > maxDownloadBytes {
		return nil, fmt.Errorf("telegram file exceeds %d bytes", maxDownloadBytes)
	}
	return body, nil
}

// SetWebhook points Telegram at webhookURL. The caller includes any secret query parameter.
func (c *client) SetWebhook(ctx context.Context, webhookURL string) error {
	if _, err := url.ParseRequestURI(webhookURL); err != nil {
		return fmt.Errorf("invalid webhook url: %w", err)
	}
	wh, err := tgbotapi.NewWebhook(webhookURL)
	if err != nil {
		return fmt.Errorf("telegram webhook config: %w", err)
	}
	wh.AllowedUpdates = []string{"message"}
	if _, err := c.api.Request(wh); err != nil {
		return fmt.Errorf("telegram setWebhook: %w", err)
	}
	c.log.Info("Telegram webhook registered")
	return nil
}
