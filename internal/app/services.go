package app

import (
	"fmt"

	"github.com/yungbote/repurpose-bot/internal/languages"
	"github.com/yungbote/repurpose-bot/internal/platform/logger"
	"github.com/yungbote/repurpose-bot/internal/services"
)

type Services struct {
	Users       services.UserService
	Gate        services.CreditGate
	Rewriter    services.Rewriter
	Transcripts services.TranscriptService
	Voice       services.VoiceTranscriber
	Dispatcher  services.Dispatcher

	Ledger services.UpdateLedger
	// DBLedger is set when the ledger lives in the datastore and needs a janitor.
	DBLedger *services.DBUpdateLedger
}

func wireServices(log *logger.Logger, cfg Config, repos Repos, clients Clients) (Services, error) {
	log.Info("Wiring services...")

	langs, err := languages.Load(cfg.LanguagesPath)
	if err != nil {
		return Services{}, fmt.Errorf("load languages: %w", err)
	}

	rewriter, err := services.NewRewriter(log, clients.OpenAI)
	if err != nil {
		return Services{}, fmt.Errorf("init rewriter: %w", err)
	}

	out := Services{
		Users:       services.NewUserService(log, repos.User, cfg.InitialCredits),
		Gate:        services.NewCreditGate(log, repos.User),
		Rewriter:    rewriter,
		Transcripts: services.NewTranscriptService(log, clients.YouTube),
		Voice:       services.NewVoiceTranscriber(log, clients.Telegram, clients.Speech),
	}

	if clients.UpdateLedger != nil {
		out.Ledger = clients.UpdateLedger
	} else {
		out.DBLedger = services.NewDBUpdateLedger(log, repos.ProcessedUpdate, cfg.LedgerTTL)
		out.Ledger = out.DBLedger
	}

	out.Dispatcher, err = services.NewDispatcher(log, services.DispatcherDeps{
		Users:              out.Users,
		Gate:               out.Gate,
		Rewriter:           out.Rewriter,
		Transcripts:        out.Transcripts,
		Voice:              out.Voice,
		Languages:          langs,
		YouTubeCreditGated: cfg.YouTubeCreditGated,
		InitialCredits:     cfg.InitialCredits,
	})
	if err != nil {
		return Services{}, fmt.Errorf("init dispatcher: %w", err)
	}
	return out, nil
}
