package middleware

import (
	"errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/jafarshop/marketorders/internal/auth"
)

// TokenVerifier turns a bearer token into a session
type TokenVerifier interface {
	Verify(token string) (auth.Session, error)
}

// AuthMiddleware attaches the caller's session to the request context when the bearer
// token verifies. It never aborts: each order operation asks its gate and answers
// not_authenticated itself, so anonymous requests still get the usual envelope.
func AuthMiddleware(verifier TokenVerifier, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := auth.BearerToken(c.GetHeader("Authorization"))
		if token == "" {
			c.Next()
			return
		}

		session, err := verifier.Verify(token)
		if err != nil {
			if !errors.Is(err, auth.ErrTokenMissing) {
				logger.Debug("Rejected bearer token",
					zap.String("path", c.Request.URL.Path),
					zap.Error(err),
				)
			}
			c.Next()
			return
		}

		c.Request = c.Request.WithContext(auth.WithSession(c.Request.Context(), session))
		c.Next()
	}
}
