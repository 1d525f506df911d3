package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/jengzang/greenguardian-backend-go/internal/identity"
	"github.com/jengzang/greenguardian-backend-go/pkg/response"
	"go.uber.org/zap"
)

// UIDKey is the gin context key holding the caller's uid
const UIDKey = "uid"

// Auth resolves the bearer token into a uid and stores it in the request
// context. Requests without a token continue as guest; a token that fails
// verification is rejected. A nil verifier treats every caller as guest.
func Auth(verifier identity.Verifier, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		uid := identity.FromContext(c.Request.Context())

		token := bearerToken(c.GetHeader("Authorization"))
		if token != "" && verifier != nil {
			verified, err := verifier.Verify(c.Request.Context(), token)
			if err != nil {
				log.Debug("Rejected token", zap.Error(err))
				response.Unauthorized(c, "invalid or expired token")
				c.Abort()
				return
			}
			uid = verified
		}

		c.Set(UIDKey, uid)
		c.Request = c.Request.WithContext(identity.With(c.Request.Context(), uid))
		c.Next()
	}
}

// RequireUser rejects guest callers
func RequireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		if identity.IsGuest(identity.FromContext(c.Request.Context())) {
			response.Unauthorized(c, "sign in required")
			c.Abort()
			return
		}
		c.Next()
	}
}

func bearerToken(header string) string {
	const prefix = "bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}
