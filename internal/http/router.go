package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/repurpose-bot/internal/http/handlers"
	httpMW "github.com/yungbote/repurpose-bot/internal/http/middleware"
	"github.com/yungbote/repurpose-bot/internal/platform/logger"
)

type RouterConfig struct {
	Log *logger.Logger
	// ServiceName enables otelgin spans when non-empty.
	ServiceName string

	SecretMiddleware *httpMW.SecretMiddleware
	WebhookHandler   *httpH.WebhookHandler
	HealthHandler    *httpH.HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	// gin.Default's logger prints the raw query, which holds the webhook secret.
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.ServiceName != "" {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.RequestLogger(cfg.Log))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}

	// Telegram webhook
	if cfg.WebhookHandler != nil && cfg.SecretMiddleware != nil {
		r.POST("/webhook", cfg.SecretMiddleware.RequireSecret(), cfg.WebhookHandler.Receive)
	}

	return r
}
