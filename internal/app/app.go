package app

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/yungbote/repurpose-bot/internal/data/db"
	apphttp "github.com/yungbote/repurpose-bot/internal/http"
	"github.com/yungbote/repurpose-bot/internal/observability"
	"github.com/yungbote/repurpose-bot/internal/platform/logger"
)

const ledgerJanitorInterval = time.Hour

type App struct {
	Log      *logger.Logger
	DB       *gorm.DB
	Cfg      Config
	Repos    Repos
	Clients  Clients
	Services Services
	Server   *apphttp.Server

	dbService *db.Service
}

func New() (*App, error) {
	cfg, err := LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	log, err := logger.New(cfg.LogMode)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	dbs, err := db.NewService(cfg.DB, log)
	if err != nil {
		log.Sync()
		return nil, fmt.Errorf("init database: %w", err)
	}
	if err := dbs.AutoMigrateAll(); err != nil {
		_ = dbs.Close()
		log.Sync()
		return nil, fmt.Errorf("database automigrate: %w", err)
	}

	reposet := wireRepos(dbs.DB(), log)

	clientset, err := wireClients(log, cfg)
	if err != nil {
		_ = dbs.Close()
		log.Sync()
		return nil, err
	}

	serviceset, err := wireServices(log, cfg, reposet, clientset)
	if err != nil {
		clientset.Close()
		_ = dbs.Close()
		log.Sync()
		return nil, err
	}

	return &App{
		Log:       log,
		DB:        dbs.DB(),
		Cfg:       cfg,
		Repos:     reposet,
		Clients:   clientset,
		Services:  serviceset,
		Server:    wireServer(log, cfg, serviceset, clientset),
		dbService: dbs,
	}, nil
}

// Run serves until ctx is cancelled or a component fails, then releases resources.
func (a *App) Run(ctx context.Context) error {
	if a == nil || a.Server == nil {
		return fmt.Errorf("app not initialized")
	}
	defer a.Close()

	endpoint, err := a.Cfg.WebhookEndpoint()
	if err != nil {
		return err
	}

	otelShutdown := observability.InitOTel(ctx, a.Log, observability.OtelConfig{
		ServiceName: observability.DefaultServiceName,
		Environment: a.Cfg.LogMode,
	})
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = otelShutdown(sctx)
	}()

	g, gctx := errgroup.WithContext(ctx)

	addr := ":" + a.Cfg.Port
	g.Go(func() error {
		a.Log.Info("HTTP server listening", "addr", addr)
		return a.Server.Run(gctx, addr)
	})

	if a.Services.DBLedger != nil {
		g.Go(func() error {
			return a.Services.DBLedger.RunJanitor(gctx, ledgerJanitorInterval)
		})
	}

	if endpoint != "" {
		g.Go(func() error {
			// A failed registration leaves a previously registered webhook in place.
			if err := a.Clients.Telegram.SetWebhook(gctx, endpoint); err != nil {
				a.Log.Error("Webhook registration failed", "error", err)
			}
			return nil
		})
	}

	return g.Wait()
}

func (a *App) Close() {
	if a == nil {
		return
	}
	a.Clients.Close()
	if a.dbService != nil {
		_ = a.dbService.Close()
		a.dbService = nil
	}
	if a.Log != nil {
		a.Log.Sync()
	}
}
