package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/repurpose-bot/internal/platform/ctxutil"
	"github.com/yungbote/repurpose-bot/internal/platform/logger"
)

// RequestLogger logs one line per request. The query string is never logged
// because it carries the webhook secret.
func RequestLogger(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		if log == nil {
			return
		}
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		status := c.Writer.Status()
		fields := []interface{}{
			"method", c.Request.Method,
			"path", path,
			"status", status,
			"duration_ms", time.Since(start).Milliseconds(),
		}
		if td := ctxutil.GetTraceData(c.Request.Context()); td != nil {
			fields = append(fields, "trace_id", td.TraceID, "request_id", td.RequestID)
			if td.UpdateID != 0 {
				fields = append(fields, "update_id", td.UpdateID)
			}
		}

		switch {
		case status >= 500:
			log.Error("HTTP request", fields...)
		case status >= 400:
			log.Warn("HTTP request", fields...)
		default:
			log.Info("HTTP request", fields...)
		}
	}
}
