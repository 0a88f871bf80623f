package services

import (
	"context"
	"errors"
	"sync"

	types "github.com/yungbote/repurpose-bot/internal/domain"
	"github.com/yungbote/repurpose-bot/internal/platform/dbctx"
)

var errBoom = errors.New("boom")

// memUserRepo is an in-memory user repo with the same atomicity as the SQL one.
type memUserRepo struct {
	mu      sync.Mutex
	users   map[int64]*types.User
	failGet bool
	failDec bool
	creates int
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: map[int64]*types.User{}}
}

func (m *memUserRepo) Get(dbc dbctx.Context, userID int64) (*types.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failGet {
		return nil, errBoom
	}
	u, ok := m.users[userID]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (m *memUserRepo) Create(dbc dbctx.Context, userID int64, initialCredits int) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[userID]; ok {
		return false, nil
	}
	m.creates++
	m.users[userID] = &types.User{UserID: userID, Credits: initialCredits}
	return true, nil
}

func (m *memUserRepo) Update(dbc dbctx.Context, userID int64, fields map[string]any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[userID]
	if !ok {
		return nil
	}
	for k, v := range fields {
		s, _ := v.(string)
		switch k {
		case "company_description":
			u.CompanyDescription = &s
		case "response_language_code":
			u.ResponseLanguageCode = &s
		}
	}
	return nil
}

func (m *memUserRepo) ConsumeCredit(dbc dbctx.Context, userID int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failDec {
		return false, errBoom
	}
	u, ok := m.users[userID]
	if !ok || u.Credits <= 0 {
		return false, nil
	}
	u.Credits--
	return true, nil
}

func (m *memUserRepo) credits(userID int64) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.users[userID]; ok {
		return u.Credits
	}
	return -1
}

type sentReply struct {
	chatID int64
	text   string
}

type recordingReplier struct {
	mu      sync.Mutex
	replies []sentReply
}

func (r *recordingReplier) Reply(ctx context.Context, chatID int64, text string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.replies = append(r.replies, sentReply{chatID: chatID, text: text})
	return nil
}

func (r *recordingReplier) texts() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.replies))
	for _, rep := range r.replies {
		out = append(out, rep.text)
	}
	return out
}

type rewriteCall struct {
	source   string
	language string
	desc     *string
}

type fakeRewriter struct {
	mu    sync.Mutex
	out   string
	err   error
	calls []rewriteCall
}

func (f *fakeRewriter) Rewrite(ctx context.Context, source string, languageName string, companyDescription *string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, rewriteCall{source: source, language: languageName, desc: companyDescription})
	if f.err != nil {
		return "", f.err
	}
	return f.out, nil
}

func (f *fakeRewriter) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

type fakeTranscripts struct {
	text string
	err  error
	urls []string
}

func (f *fakeTranscripts) Fetch(ctx context.Context, videoURL string) (string, error) {
	f.urls = append(f.urls, videoURL)
	if f.err != nil {
		return "", f.err
	}
	return f.text, nil
}

type fakeVoice struct {
	text string
	err  error
}

func (f *fakeVoice) Transcribe(ctx context.Context, voice *types.Voice) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.text, nil
}

type fakeDownloader struct {
	data []byte
	err  error
}

func (f *fakeDownloader) DownloadFile(ctx context.Context, fileID string) ([]byte, error) {
	return f.data, f.err
}

type fakeSpeech struct {
	text     string
	err      error
	gotMime  string
	gotAudio []byte
}

func (f *fakeSpeech) Transcribe(ctx context.Context, audio []byte, mimeType string) (string, error) {
	f.gotMime = mimeType
	f.gotAudio = audio
	return f.text, f.err
}
