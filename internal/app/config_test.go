package app

import (
	"strings"
	"testing"
	"time"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("TELEGRAM_BOT_TOKEN", "123:abc")
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("DATABASE_URL", "postgres://db.example:5432/bot")
	t.Setenv("DATABASE_KEY", "pw")
	t.Setenv("FUNCTION_SECRET", "s3cret")
}

func TestLoadConfigDefaults(t *testing.T) {
	setRequired(t)
	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Port != "8080" || cfg.InitialCredits != 3 || cfg.SpeechProvider != SpeechProviderOpenAI {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.PipelineTimeout != 2*time.Minute || cfg.LedgerTTL != 24*time.Hour {
		t.Fatalf("timeouts: pipeline=%v ledger=%v", cfg.PipelineTimeout, cfg.LedgerTTL)
	}
	if cfg.YouTubeCreditGated {
		t.Fatalf("youtube should be ungated by default")
	}
	if cfg.DB.Key != "pw" || cfg.DB.Driver != "postgres" {
		t.Fatalf("db config: %+v", cfg.DB)
	}
}

func TestLoadConfigMissingRequired(t *testing.T) {
	setRequired(t)
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("FUNCTION_SECRET", "")
	_, err := LoadConfig()
	if err == nil {
		t.Fatalf("expected error")
	}
	for _, name := range []string{"OPENAI_API_KEY", "FUNCTION_SECRET"} {
		if !strings.Contains(err.Error(), name) {
			t.Fatalf("error %q should name %s", err, name)
		}
	}
}

func TestLoadConfigRejectsUnknownProviders(t *testing.T) {
	cases := map[string]string{
		"SPEECH_PROVIDER": "azure",
		"DATABASE_DRIVER": "mysql",
		"INITIAL_CREDITS": "-1",
	}
	for name, val := range cases {
		t.Run(name, func(t *testing.T) {
			setRequired(t)
			t.Setenv(name, val)
			if _, err := LoadConfig(); err == nil {
				t.Fatalf("%s=%s should fail", name, val)
			}
		})
	}
}

func TestLoadConfigZeroInitialCredits(t *testing.T) {
	setRequired(t)
	t.Setenv("INITIAL_CREDITS", "0")
	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.InitialCredits != 0 {
		t.Fatalf("InitialCredits=%d, want 0", cfg.InitialCredits)
	}
}

func TestWebhookEndpoint(t *testing.T) {
	cases := []struct {
		url    string
		secret string
		want   string
	}{
		{url: "", secret: "x", want: ""},
		{url: "https://bot.example/webhook", secret: "s3cret", want: "https://bot.example/webhook?secret=s3cret"},
		{url: "https://bot.example/webhook?a=1", secret: "a&b", want: "https://bot.example/webhook?a=1&secret=a%26b"},
	}
	for _, tc := range cases {
		got, err := Config{TelegramWebhookURL: tc.url, FunctionSecret: tc.secret}.WebhookEndpoint()
		if err != nil {
			t.Fatalf("WebhookEndpoint(%q): %v", tc.url, err)
		}
		if got != tc.want {
			t.Fatalf("WebhookEndpoint(%q)=%q, want %q", tc.url, got, tc.want)
		}
	}
}
