package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/yungbote/repurpose-bot/internal/clients/telegram"
	"github.com/yungbote/repurpose-bot/internal/http/response"
	"github.com/yungbote/repurpose-bot/internal/platform/apierr"
	"github.com/yungbote/repurpose-bot/internal/platform/ctxutil"
	"github.com/yungbote/repurpose-bot/internal/platform/logger"
	"github.com/yungbote/repurpose-bot/internal/services"
)

const DefaultPipelineTimeout = 2 * time.Minute

type WebhookHandler struct {
	log        *logger.Logger
	ledger     services.UpdateLedger
	dispatcher services.Dispatcher
	replier    services.Replier
	timeout    time.Duration
}

// NewWebhookHandler wires the Telegram webhook. ledger may be nil, in which case
// every delivery is dispatched.
func NewWebhookHandler(
	log *logger.Logger,
	ledger services.UpdateLedger,
	dispatcher services.Dispatcher,
	replier services.Replier,
	timeout time.Duration,
) *WebhookHandler {
	if timeout <= 0 {
		timeout = DefaultPipelineTimeout
	}
	return &WebhookHandler{
		log:        log.With("handler", "WebhookHandler"),
		ledger:     ledger,
		dispatcher: dispatcher,
		replier:    replier,
		timeout:    timeout,
	}
}

// POST /webhook
func (h *WebhookHandler) Receive(c *gin.Context) {
	var raw tgbotapi.Update
	if err := c.ShouldBindJSON(&raw); err != nil {
		response.RespondAPIError(c, apierr.BadRequest("invalid_update", err))
		return
	}
	upd := telegram.ToUpdate(raw)

	ctx := c.Request.Context()
	if td := ctxutil.GetTraceData(ctx); td != nil {
		td.UpdateID = upd.ID
	}
	log := h.log.With("update_id", upd.ID, "kind", upd.Kind.String())

	if h.ledger != nil {
		first, err := h.ledger.Claim(ctx, upd.ID)
		switch {
		case err != nil:
			log.Warn("Update ledger claim failed, dispatching anyway", "error", err)
		case !first:
			log.Info("Duplicate update skipped")
			c.String(http.StatusOK, "ok")
			return
		}
	}

	// Telegram may drop the connection; dispatch is bounded by the pipeline timeout only.
	dctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), h.timeout)
	defer cancel()
	if err := h.dispatcher.Dispatch(dctx, upd, h.replier); err != nil {
		log.Warn("Dispatch finished with error", "error", err)
	}
	c.String(http.StatusOK, "ok")
}
