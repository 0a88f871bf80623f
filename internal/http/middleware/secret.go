package middleware

import (
	"crypto/subtle"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/repurpose-bot/internal/http/response"
	"github.com/yungbote/repurpose-bot/internal/platform/apierr"
	"github.com/yungbote/repurpose-bot/internal/platform/logger"
)

// SecretQueryParam carries the shared secret on webhook calls.
const SecretQueryParam = "secret"

type SecretMiddleware struct {
	log    *logger.Logger
	secret []byte
}

func NewSecretMiddleware(log *logger.Logger, secret string) *SecretMiddleware {
	return &SecretMiddleware{log: log.With("Middleware", "SecretMiddleware"), secret: []byte(secret)}
}

// RequireSecret rejects the request before its body is read unless the
// secret query parameter matches. An empty configured secret rejects everything.
func (sm *SecretMiddleware) RequireSecret() gin.HandlerFunc {
	return func(c *gin.Context) {
		got := []byte(c.Query(SecretQueryParam))
		if len(sm.secret) == 0 || subtle.ConstantTimeCompare(got, sm.secret) != 1 {
			sm.log.Warn("Webhook secret mismatch", "remote_ip", c.ClientIP())
			response.RespondAPIError(c, apierr.NotAllowed())
			return
		}
		c.Next()
	}
}
