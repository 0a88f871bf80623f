package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	types "github.com/yungbote/repurpose-bot/internal/domain"
	"github.com/yungbote/repurpose-bot/internal/languages"
	"github.com/yungbote/repurpose-bot/internal/platform/logger"
)

type dispatchHarness struct {
	repo        *memUserRepo
	rewriter    *fakeRewriter
	transcripts *fakeTranscripts
	voice       *fakeVoice
	out         *recordingReplier
	d           Dispatcher
}

func newHarness(t *testing.T, youtubeGated bool) *dispatchHarness {
	t.Helper()
	return newHarnessWithCredits(t, youtubeGated, types.DefaultCredits)
}

func newHarnessWithCredits(t *testing.T, youtubeGated bool, initialCredits int) *dispatchHarness {
	t.Helper()
	log := logger.Nop()
	h := &dispatchHarness{
		repo:        newMemUserRepo(),
		rewriter:    &fakeRewriter{out: "AD SCRIPT"},
		transcripts: &fakeTranscripts{text: "video captions"},
		voice:       &fakeVoice{text: "spoken words"},
		out:         &recordingReplier{},
	}
	d, err := NewDispatcher(log, DispatcherDeps{
		Users:              NewUserService(log, h.repo, initialCredits),
		Gate:               NewCreditGate(log, h.repo),
		Rewriter:           h.rewriter,
		Transcripts:        NewTranscriptService(log, h.transcripts),
		Voice:              h.voice,
		Languages:          languages.Default(),
		YouTubeCreditGated: youtubeGated,
		InitialCredits:     initialCredits,
	})
	if err != nil {
		t.Fatalf("NewDispatcher: %v", err)
	}
	h.d = d
	return h
}

func (h *dispatchHarness) send(t *testing.T, upd types.Update) {
	t.Helper()
	if upd.ChatID == 0 {
		upd.ChatID = upd.UserID
	}
	_ = h.d.Dispatch(context.Background(), upd, h.out)
}

func cmd(userID int64, name, arg string) types.Update {
	return types.Update{Kind: types.UpdateCommand, UserID: userID, Command: name, Argument: arg}
}

func textMsg(userID int64, body string) types.Update {
	return types.Update{Kind: types.UpdateText, UserID: userID, Body: body}
}

func lastReply(t *testing.T, r *recordingReplier) string {
	t.Helper()
	all := r.texts()
	if len(all) == 0 {
		t.Fatalf("no replies sent")
	}
	return all[len(all)-1]
}

func TestStartCreatesOnce(t *testing.T) {
	h := newHarness(t, false)

	h.send(t, cmd(1, "start", ""))
	if got, want := lastReply(t, h.out), fmt.Sprintf(ReplyWelcomeNew, 3); got != want {
		t.Fatalf("first start reply=%q, want %q", got, want)
	}
	if c := h.repo.credits(1); c != 3 {
		t.Fatalf("credits=%d, want 3", c)
	}

	h.send(t, cmd(1, "start", ""))
	if got := lastReply(t, h.out); got != ReplyWelcomeBack {
		t.Fatalf("second start reply=%q, want %q", got, ReplyWelcomeBack)
	}
	if h.repo.creates != 1 {
		t.Fatalf("record created %d times, want 1", h.repo.creates)
	}
	if c := h.repo.credits(1); c != 3 {
		t.Fatalf("start must not change credits, got %d", c)
	}
}

func TestStartHonorsConfiguredCredits(t *testing.T) {
	cases := []struct {
		initial int
		want    int
	}{
		{initial: 0, want: 0},
		{initial: 1, want: 1},
		{initial: 10, want: 10},
	}
	for _, tc := range cases {
		h := newHarnessWithCredits(t, false, tc.initial)
		h.send(t, cmd(40, "start", ""))
		if got, want := lastReply(t, h.out), fmt.Sprintf(ReplyWelcomeNew, tc.want); got != want {
			t.Fatalf("start(%d) reply=%q, want %q", tc.initial, got, want)
		}
		if c := h.repo.credits(40); c != tc.want {
			t.Fatalf("start(%d) credits=%d, want %d", tc.initial, c, tc.want)
		}
	}
}

func TestZeroCreditsRefusesFirstText(t *testing.T) {
	h := newHarnessWithCredits(t, false, 0)
	h.send(t, cmd(41, "start", ""))
	h.send(t, textMsg(41, "we sell boats"))
	if got := lastReply(t, h.out); got != ReplyOutOfCredits {
		t.Fatalf("reply=%q, want %q", got, ReplyOutOfCredits)
	}
	if len(h.rewriter.calls) != 0 {
		t.Fatalf("rewriter called %d times, want 0", len(h.rewriter.calls))
	}
}

func TestTextConsumesCreditAndRewrites(t *testing.T) {
	h := newHarness(t, false)

	h.send(t, textMsg(2, "we sell boats"))

	got := h.out.texts()
	want := []string{ReplyGenerating, "AD SCRIPT"}
	if strings.Join(got, "|") != strings.Join(want, "|") {
		t.Fatalf("replies=%q, want %q", got, want)
	}
	if c := h.repo.credits(2); c != 2 {
		t.Fatalf("credits=%d, want 2", c)
	}
	if h.rewriter.calls[0].source != "we sell boats" || h.rewriter.calls[0].language != "English" {
		t.Fatalf("unexpected rewrite call: %+v", h.rewriter.calls[0])
	}
}

func TestOutOfCreditsNeverRewrites(t *testing.T) {
	h := newHarness(t, false)
	for i := 0; i < 3; i++ {
		h.send(t, textMsg(3, "x"))
	}
	if h.rewriter.callCount() != 3 {
		t.Fatalf("rewriter calls=%d, want 3", h.rewriter.callCount())
	}

	h.send(t, textMsg(3, "x"))
	if got := lastReply(t, h.out); got != ReplyOutOfCredits {
		t.Fatalf("reply=%q, want %q", got, ReplyOutOfCredits)
	}
	if h.rewriter.callCount() != 3 {
		t.Fatalf("rewriter called with zero credits")
	}
	if c := h.repo.credits(3); c != 0 {
		t.Fatalf("credits=%d, want 0", c)
	}
}

func TestConcurrentTextNeverOverdraws(t *testing.T) {
	h := newHarness(t, false)
	h.send(t, cmd(4, "start", ""))

	const callers = 12
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = h.d.Dispatch(context.Background(), types.Update{Kind: types.UpdateText, UserID: 4, ChatID: 4, Body: "x"}, h.out)
		}()
	}
	wg.Wait()

	if n := h.rewriter.callCount(); n != types.DefaultCredits {
		t.Fatalf("rewriter calls=%d, want %d", n, types.DefaultCredits)
	}
	if c := h.repo.credits(4); c != 0 {
		t.Fatalf("credits=%d, want 0", c)
	}
	refused := 0
	for _, r := range h.out.texts() {
		if r == ReplyOutOfCredits {
			refused++
		}
	}
	if refused != callers-types.DefaultCredits {
		t.Fatalf("out-of-credit replies=%d, want %d", refused, callers-types.DefaultCredits)
	}
}

func TestLanguageThenText(t *testing.T) {
	cases := []struct {
		code string
		want string
	}{
		{code: "es", want: "Spanish"},
		{code: "zz", want: "English"},
	}
	for _, tc := range cases {
		t.Run(tc.code, func(t *testing.T) {
			h := newHarness(t, false)
			h.send(t, cmd(5, "language", tc.code))
			if got := lastReply(t, h.out); got != fmt.Sprintf(ReplyLanguageSet, tc.code) {
				t.Fatalf("language reply=%q", got)
			}
			h.send(t, textMsg(5, "hello"))
			if n := h.rewriter.callCount(); n != 1 {
				t.Fatalf("rewriter calls=%d, want 1", n)
			}
			if got := h.rewriter.calls[0].language; got != tc.want {
				t.Fatalf("language=%q, want %q", got, tc.want)
			}
		})
	}
}

func TestLanguageWithoutArgument(t *testing.T) {
	h := newHarness(t, false)
	h.send(t, cmd(6, "language", ""))
	got := lastReply(t, h.out)
	want := fmt.Sprintf(ReplyLanguageUsage, strings.Join(languages.Default().Codes(), ", "))
	if got != want {
		t.Fatalf("reply=%q, want %q", got, want)
	}
	for _, code := range []string{"en", "es", "zh"} {
		if !strings.Contains(got, code) {
			t.Fatalf("usage reply %q missing code %q", got, code)
		}
	}
}

func TestDescriptionRoundTrip(t *testing.T) {
	h := newHarness(t, false)

	h.send(t, cmd(7, "description", ""))
	if got := lastReply(t, h.out); got != ReplyDescriptionNotSet {
		t.Fatalf("reply=%q, want not-set prompt", got)
	}

	h.send(t, cmd(7, "description", "Boats & more, since 1990"))
	if got := lastReply(t, h.out); got != ReplyDescriptionSaved {
		t.Fatalf("reply=%q, want saved", got)
	}

	h.send(t, cmd(7, "description", ""))
	if got, want := lastReply(t, h.out), fmt.Sprintf(ReplyDescriptionCurrent, "Boats & more, since 1990"); got != want {
		t.Fatalf("reply=%q, want %q", got, want)
	}

	h.send(t, textMsg(7, "promo"))
	call := h.rewriter.calls[0]
	if call.desc == nil || *call.desc != "Boats & more, since 1990" {
		t.Fatalf("rewriter got description %v", call.desc)
	}
}

func TestYouTube(t *testing.T) {
	t.Run("missing url", func(t *testing.T) {
		h := newHarness(t, false)
		h.send(t, cmd(8, "youtube", ""))
		if got := lastReply(t, h.out); got != ReplyYouTubeNeedsURL {
			t.Fatalf("reply=%q", got)
		}
		if len(h.transcripts.urls) != 0 {
			t.Fatalf("fetcher called without url")
		}
	})

	t.Run("fetch failure", func(t *testing.T) {
		h := newHarness(t, false)
		h.transcripts.err = errors.New("no captions")
		h.send(t, cmd(8, "youtube", "https://youtu.be/dQw4w9WgXcQ"))
		if got := lastReply(t, h.out); got != ReplyTranscriptUnavailable {
			t.Fatalf("reply=%q, want %q", got, ReplyTranscriptUnavailable)
		}
		if h.rewriter.callCount() != 0 {
			t.Fatalf("rewriter must not run after transcript failure")
		}
	})

	t.Run("ungated by default", func(t *testing.T) {
		h := newHarness(t, false)
		h.send(t, cmd(8, "youtube", "https://youtu.be/dQw4w9WgXcQ"))
		if got := lastReply(t, h.out); got != "AD SCRIPT" {
			t.Fatalf("reply=%q", got)
		}
		if h.rewriter.calls[0].source != "video captions" {
			t.Fatalf("rewriter source=%q", h.rewriter.calls[0].source)
		}
		if c := h.repo.credits(8); c != 3 {
			t.Fatalf("credits=%d, want 3 (ungated)", c)
		}
	})

	t.Run("gated", func(t *testing.T) {
		h := newHarness(t, true)
		h.send(t, cmd(8, "youtube", "https://youtu.be/dQw4w9WgXcQ"))
		if c := h.repo.credits(8); c != 2 {
			t.Fatalf("credits=%d, want 2 (gated)", c)
		}
	})
}

func TestVoice(t *testing.T) {
	voice := types.Update{Kind: types.UpdateVoice, UserID: 9, Voice: &types.Voice{FileID: "f", MimeType: "audio/ogg"}}

	t.Run("success", func(t *testing.T) {
		h := newHarness(t, false)
		h.send(t, voice)
		if got := lastReply(t, h.out); got != "AD SCRIPT" {
			t.Fatalf("reply=%q", got)
		}
		if h.rewriter.calls[0].source != "spoken words" {
			t.Fatalf("rewriter source=%q", h.rewriter.calls[0].source)
		}
		if c := h.repo.credits(9); c != 2 {
			t.Fatalf("credits=%d, want 2", c)
		}
	})

	t.Run("transcription failure", func(t *testing.T) {
		h := newHarness(t, false)
		h.voice.err = ErrTranscriptionFailed
		h.send(t, voice)
		if got := lastReply(t, h.out); got != ReplyTranscriptionFailed {
			t.Fatalf("reply=%q", got)
		}
		if h.rewriter.callCount() != 0 {
			t.Fatalf("rewriter must not run after transcription failure")
		}
	})
}

func TestGenerationFailure(t *testing.T) {
	h := newHarness(t, false)
	h.rewriter.err = ErrGenerationFailed
	h.send(t, textMsg(10, "x"))
	got := h.out.texts()
	if len(got) != 2 || got[0] != ReplyGenerating || got[1] != ReplyGenerationFailed {
		t.Fatalf("replies=%q", got)
	}
}

func TestStoreFailureOnDecrement(t *testing.T) {
	h := newHarness(t, false)
	h.send(t, cmd(11, "start", ""))
	h.repo.failDec = true

	h.send(t, textMsg(11, "x"))
	if got := lastReply(t, h.out); got != ReplyGenericError {
		t.Fatalf("reply=%q, want generic error", got)
	}
	if h.rewriter.callCount() != 0 {
		t.Fatalf("rewriter must not run on store failure")
	}
	if c := h.repo.credits(11); c != 3 {
		t.Fatalf("credits=%d, want unchanged 3", c)
	}
}

func TestStoreFailureOnRead(t *testing.T) {
	h := newHarness(t, false)
	h.send(t, cmd(12, "start", ""))
	h.repo.failGet = true

	err := h.d.Dispatch(context.Background(), cmd(12, "credits", ""), h.out)
	if !errors.Is(err, ErrStore) {
		t.Fatalf("err=%v, want ErrStore", err)
	}
	if got := lastReply(t, h.out); got != ReplyGenericError {
		t.Fatalf("reply=%q, want generic error", got)
	}
}

func TestMiscCommands(t *testing.T) {
	h := newHarness(t, false)

	h.send(t, cmd(13, "help", ""))
	if got := lastReply(t, h.out); got != ReplyHelp {
		t.Fatalf("help reply=%q", got)
	}
	h.send(t, cmd(13, "credits", ""))
	if got := lastReply(t, h.out); got != fmt.Sprintf(ReplyCredits, 3) {
		t.Fatalf("credits reply=%q", got)
	}
	h.send(t, cmd(13, "frobnicate", ""))
	if got := lastReply(t, h.out); got != ReplyUnknownCommand {
		t.Fatalf("unknown reply=%q", got)
	}
}

func TestUnsupportedIsNoop(t *testing.T) {
	h := newHarness(t, false)
	h.send(t, types.Update{Kind: types.UpdateUnsupported, UserID: 14})
	if n := len(h.out.texts()); n != 0 {
		t.Fatalf("unsupported update produced %d replies", n)
	}
	if h.repo.creates != 0 {
		t.Fatalf("unsupported update created a record")
	}
}

func TestFirstContactByTextCreatesRecord(t *testing.T) {
	h := newHarness(t, false)
	h.send(t, textMsg(15, "hello"))
	if c := h.repo.credits(15); c != 2 {
		t.Fatalf("credits=%d, want 2 after first paid request", c)
	}
	h.send(t, cmd(15, "start", ""))
	if got := lastReply(t, h.out); got != ReplyWelcomeBack {
		t.Fatalf("start after first contact reply=%q, want welcome back", got)
	}
}
