package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	types "github.com/yungbote/repurpose-bot/internal/domain"
	"github.com/yungbote/repurpose-bot/internal/languages"
	"github.com/yungbote/repurpose-bot/internal/platform/ctxutil"
	"github.com/yungbote/repurpose-bot/internal/platform/logger"
)

// Replier delivers plain-text replies to a chat.
type Replier interface {
	Reply(ctx context.Context, chatID int64, text string) error
}

// Dispatcher routes one inbound update to its handler. Every failure is turned
// into exactly one user-facing reply; the returned error is for logging only.
type Dispatcher interface {
	Dispatch(ctx context.Context, upd types.Update, out Replier) error
}

type DispatcherDeps struct {
	Users       UserService
	Gate        CreditGate
	Rewriter    Rewriter
	Transcripts TranscriptService
	Voice       VoiceTranscriber
	Languages   *languages.Table
	// YouTubeCreditGated charges a credit for /youtube like text and voice.
	YouTubeCreditGated bool
	InitialCredits     int
}

type request struct {
	upd     types.Update
	out     Replier
	created bool
}

type commandHandler func(ctx context.Context, req *request) error

type dispatcher struct {
	log      *logger.Logger
	deps     DispatcherDeps
	commands map[string]commandHandler
}

func NewDispatcher(log *logger.Logger, deps DispatcherDeps) (Dispatcher, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	switch {
	case deps.Users == nil:
		return nil, fmt.Errorf("user service required")
	case deps.Gate == nil:
		return nil, fmt.Errorf("credit gate required")
	case deps.Rewriter == nil:
		return nil, fmt.Errorf("rewriter required")
	case deps.Transcripts == nil:
		return nil, fmt.Errorf("transcript service required")
	case deps.Voice == nil:
		return nil, fmt.Errorf("voice transcriber required")
	}
	if deps.Languages == nil {
		deps.Languages = languages.Default()
	}
	if deps.InitialCredits < 0 {
		deps.InitialCredits = types.DefaultCredits
	}
	d := &dispatcher{log: log.With("service", "Dispatcher"), deps: deps}
	d.commands = map[string]commandHandler{
		"start":       d.handleStart,
		"description": d.handleDescription,
		"language":    d.handleLanguage,
		"youtube":     d.handleYouTube,
		"help":        d.handleHelp,
		"credits":     d.handleCredits,
	}
	return d, nil
}

func (d *dispatcher) Dispatch(ctx context.Context, upd types.Update, out Replier) error {
	ctx = ctxutil.Default(ctx)
	log := d.log.With("update_id", upd.ID, "kind", upd.Kind.String(), "user_id", upd.UserID)

	if upd.Kind == types.UpdateUnsupported || upd.UserID == 0 {
		log.Debug("Ignoring unsupported update")
		return nil
	}

	created, err := d.deps.Users.Ensure(ctx, upd.UserID)
	if err != nil {
		log.Error("Ensure user failed", "error", err)
		return d.fail(ctx, out, upd.ChatID, err)
	}
	req := &request{upd: upd, out: out, created: created}

	switch upd.Kind {
	case types.UpdateCommand:
		h, ok := d.commands[upd.Command]
		if !ok {
			log.Debug("Unknown command", "command", upd.Command)
			return d.reply(ctx, req, ReplyUnknownCommand)
		}
		err = h(ctx, req)
	case types.UpdateText:
		err = d.gated(ctx, req, func(ctx context.Context) error {
			return d.generate(ctx, req, upd.Body)
		})
	case types.UpdateVoice:
		err = d.gated(ctx, req, func(ctx context.Context) error {
			text, err := d.deps.Voice.Transcribe(ctx, upd.Voice)
			if err != nil {
				return d.failWith(ctx, req, ReplyTranscriptionFailed, err)
			}
			return d.generate(ctx, req, text)
		})
	}
	if err != nil {
		log.Warn("Update handled with error", "command", upd.Command, "error", err)
	}
	return err
}

func (d *dispatcher) handleStart(ctx context.Context, req *request) error {
	if req.created {
		return d.reply(ctx, req, fmt.Sprintf(ReplyWelcomeNew, d.deps.InitialCredits))
	}
	return d.reply(ctx, req, ReplyWelcomeBack)
}

func (d *dispatcher) handleDescription(ctx context.Context, req *request) error {
	if arg := req.upd.Argument; arg != "" {
		if err := d.deps.Users.SetDescription(ctx, req.upd.UserID, arg); err != nil {
			return d.fail(ctx, req.out, req.upd.ChatID, err)
		}
		return d.reply(ctx, req, ReplyDescriptionSaved)
	}
	u, err := d.deps.Users.Get(ctx, req.upd.UserID)
	if err != nil {
		return d.fail(ctx, req.out, req.upd.ChatID, err)
	}
	if u.CompanyDescription == nil || strings.TrimSpace(*u.CompanyDescription) == "" {
		return d.reply(ctx, req, ReplyDescriptionNotSet)
	}
	return d.reply(ctx, req, fmt.Sprintf(ReplyDescriptionCurrent, *u.CompanyDescription))
}

func (d *dispatcher) handleLanguage(ctx context.Context, req *request) error {
	code := req.upd.Argument
	if code == "" {
		return d.reply(ctx, req, fmt.Sprintf(ReplyLanguageUsage, strings.Join(d.deps.Languages.Codes(), ", ")))
	}
	if err := d.deps.Users.SetLanguage(ctx, req.upd.UserID, code); err != nil {
		return d.fail(ctx, req.out, req.upd.ChatID, err)
	}
	return d.reply(ctx, req, fmt.Sprintf(ReplyLanguageSet, code))
}

func (d *dispatcher) handleYouTube(ctx context.Context, req *request) error {
	videoURL := req.upd.Argument
	if videoURL == "" {
		return d.reply(ctx, req, ReplyYouTubeNeedsURL)
	}
	op := func(ctx context.Context) error {
		transcript, err := d.deps.Transcripts.Fetch(ctx, videoURL)
		if err != nil {
			return d.failWith(ctx, req, ReplyTranscriptUnavailable, err)
		}
		return d.generate(ctx, req, transcript)
	}
	if d.deps.YouTubeCreditGated {
		return d.gated(ctx, req, op)
	}
	return op(ctx)
}

func (d *dispatcher) handleHelp(ctx context.Context, req *request) error {
	return d.reply(ctx, req, ReplyHelp)
}

func (d *dispatcher) handleCredits(ctx context.Context, req *request) error {
	u, err := d.deps.Users.Get(ctx, req.upd.UserID)
	if err != nil {
		return d.fail(ctx, req.out, req.upd.ChatID, err)
	}
	return d.reply(ctx, req, fmt.Sprintf(ReplyCredits, u.Credits))
}

// gated runs op behind the credit gate and replies when the gate refuses.
func (d *dispatcher) gated(ctx context.Context, req *request, op func(ctx context.Context) error) error {
	ran, err := d.deps.Gate.Run(ctx, req.upd.UserID, op)
	if ran {
		return err
	}
	if err != nil {
		return d.fail(ctx, req.out, req.upd.ChatID, err)
	}
	return d.reply(ctx, req, ReplyOutOfCredits)
}

// generate reads the caller's preferences and replies with the rewritten script.
func (d *dispatcher) generate(ctx context.Context, req *request, source string) error {
	u, err := d.deps.Users.Get(ctx, req.upd.UserID)
	if err != nil {
		return d.fail(ctx, req.out, req.upd.ChatID, err)
	}
	languageName := d.deps.Languages.Name(u.ResponseLanguageCode)

	if err := d.reply(ctx, req, ReplyGenerating); err != nil {
		return err
	}
	script, err := d.deps.Rewriter.Rewrite(ctx, source, languageName, u.CompanyDescription)
	if err != nil {
		return d.failWith(ctx, req, ReplyGenerationFailed, err)
	}
	return d.reply(ctx, req, script)
}

func (d *dispatcher) reply(ctx context.Context, req *request, text string) error {
	if err := req.out.Reply(ctx, req.upd.ChatID, text); err != nil {
		return fmt.Errorf("reply: %w", err)
	}
	return nil
}

// failWith sends text and returns cause joined with any delivery error.
func (d *dispatcher) failWith(ctx context.Context, req *request, text string, cause error) error {
	if err := d.reply(ctx, req, text); err != nil {
		return errors.Join(cause, err)
	}
	return cause
}

// fail sends the generic error reply.
func (d *dispatcher) fail(ctx context.Context, out Replier, chatID int64, cause error) error {
	if err := out.Reply(ctx, chatID, ReplyGenericError); err != nil {
		return errors.Join(cause, fmt.Errorf("reply: %w", err))
	}
	return cause
}
