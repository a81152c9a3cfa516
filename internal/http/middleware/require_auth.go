package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"cardgate.io/app/internal/modules/auth"
	"cardgate.io/app/internal/shared/apperr"
)

// RequireAuth guards API routes with an opaque bearer token.
func RequireAuth(svc *auth.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			Fail(c, apperr.UnauthorizedErr("Missing bearer token."))
			return
		}

		if err := svc.Verify(c.Request.Context(), token); err != nil {
			Fail(c, apperr.UnauthorizedErr("Invalid API token."))
			return
		}

		c.Next()
	}
}
