package app

import (
	apphttp "github.com/yungbote/repurpose-bot/internal/http"
	httpH "github.com/yungbote/repurpose-bot/internal/http/handlers"
	httpMW "github.com/yungbote/repurpose-bot/internal/http/middleware"
	"github.com/yungbote/repurpose-bot/internal/observability"
	"github.com/yungbote/repurpose-bot/internal/platform/logger"
)

func wireServer(log *logger.Logger, cfg Config, svcs Services, clients Clients) *apphttp.Server {
	log.Info("Wiring http server...")
	rc := apphttp.RouterConfig{
		Log:              log,
		SecretMiddleware: httpMW.NewSecretMiddleware(log, cfg.FunctionSecret),
		WebhookHandler:   httpH.NewWebhookHandler(log, svcs.Ledger, svcs.Dispatcher, clients.Telegram, cfg.PipelineTimeout),
		HealthHandler:    httpH.NewHealthHandler(),
	}
	if observability.Enabled() {
		rc.ServiceName = observability.DefaultServiceName
	}
	return apphttp.NewServer(rc)
}
