package telegram

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/yungbote/repurpose-bot/internal/platform/logger"
)

type fakeBotAPI struct {
	mu       sync.Mutex
	sent     []string
	webhook  string
	fileCode int
}

func (f *fakeBotAPI) handler(t *testing.T) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case strings.HasSuffix(r.URL.Path, "/getMe"):
			_, _ = io.WriteString(w, `{"ok":true,"result":{"id":1,"is_bot":true,"first_name":"Bot","username":"repurpose_bot"}}`)
		case strings.HasSuffix(r.URL.Path, "/sendMessage"):
			if err := r.ParseForm(); err != nil {
				t.Errorf("parse form: %v", err)
			}
			f.mu.Lock()
			f.sent = append(f.sent, r.PostForm.Get("text"))
			f.mu.Unlock()
			_, _ = io.WriteString(w, `{"ok":true,"result":{"message_id":1,"date":0,"chat":{"id":5,"type":"private"}}}`)
		case strings.HasSuffix(r.URL.Path, "/getFile"):
			_, _ = io.WriteString(w, `{"ok":true,"result":{"file_id":"f1","file_unique_id":"u1","file_size":4,"file_path":"voice/file_1.oga"}}`)
		case strings.HasSuffix(r.URL.Path, "/setWebhook"):
			if err := r.ParseForm(); err != nil {
				t.Errorf("parse form: %v", err)
			}
			f.mu.Lock()
			f.webhook = r.PostForm.Get("url")
			f.mu.Unlock()
			_, _ = io.WriteString(w, `{"ok":true,"result":true}`)
		case strings.HasPrefix(r.URL.Path, "/file/"):
			if f.fileCode != 0 {
				w.WriteHeader(f.fileCode)
				return
			}
			w.Header().Set("Content-Type", "audio/ogg")
			_, _ = io.WriteString(w, "OggS")
		default:
			t.Errorf("unexpected request %s", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}
}

func newTestClient(t *testing.T, f *fakeBotAPI) Client {
	t.Helper()
	srv := httptest.NewServer(f.handler(t))
	t.Cleanup(srv.Close)
	c, err := NewClient(logger.Nop(), Config{
		Token:         "123:abc",
		APIEndpoint:   srv.URL + "/bot%s/%s",
		FileEndpoint:  srv.URL + "/file/bot%s/%s",
		RatePerSecond: 1000,
		HTTPClient:    srv.Client(),
	})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return c
}

func TestReplySplitsLongText(t *testing.T) {
	f := &fakeBotAPI{}
	c := newTestClient(t, f)
	if got := c.(*client).api.Self.UserName; got != "repurpose_bot" {
		t.Fatalf("getMe UserName=%q, want %q", got, "repurpose_bot")
	}

	long := strings.Repeat("word ", 1000) // 5000 units
	if err := c.Reply(context.Background(), 5, long); err != nil {
		t.Fatalf("Reply: %v", err)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.sent) != 2 {
		t.Fatalf("sent %d messages, want 2", len(f.sent))
	}
	for i, s := range f.sent {
		if len([]rune(s)) > MaxMessageLength {
			t.Fatalf("message %d exceeds limit: %d", i, len([]rune(s)))
		}
	}
}

func TestDownloadFile(t *testing.T) {
	f := &fakeBotAPI{}
	c := newTestClient(t, f)

	body, err := c.DownloadFile(context.Background(), "f1")
	if err != nil {
		t.Fatalf("DownloadFile: %v", err)
	}
	if string(body) != "OggS" {
		t.Fatalf("DownloadFile=%q, want OggS", body)
	}
}

func TestDownloadFileNon2xx(t *testing.T) {
	f := &fakeBotAPI{fileCode: http.StatusNotFound}
	c := newTestClient(t, f)

	if _, err := c.DownloadFile(context.Background(), "f1"); err == nil {
		t.Fatalf("expected error on 404 download")
	}
	if _, err := c.DownloadFile(context.Background(), ""); err == nil {
		t.Fatalf("expected error on empty file id")
	}
}

func TestSetWebhook(t *testing.T) {
	f := &fakeBotAPI{}
	c := newTestClient(t, f)

	target := "https://bot.example.com/webhook?secret=s3"
	if err := c.SetWebhook(context.Background(), target); err != nil {
		t.Fatalf("SetWebhook: %v", err)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.webhook != target {
		t.Fatalf("webhook url=%q, want %q", f.webhook, target)
	}
}
