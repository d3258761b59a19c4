package middleware

import (
	"crypto/subtle"
	"strings"

	"document-qa-platform/internal/config"
	"document-qa-platform/utils"

	"github.com/gin-gonic/gin"
)

// RequireBearer checks the Authorization header against the static API
// token. A missing or malformed header is unauthorized; a present but
// mismatched token is forbidden.
func RequireBearer(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			utils.RespondWithUnauthorized(c, "Authentication token is required")
			c.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
			utils.RespondWithUnauthorized(c, "Invalid authentication scheme")
			c.Abort()
			return
		}

		if subtle.ConstantTimeCompare([]byte(parts[1]), []byte(cfg.APIToken)) != 1 {
			utils.RespondWithForbidden(c, "Invalid token")
			c.Abort()
			return
		}

		c.Next()
	}
}
