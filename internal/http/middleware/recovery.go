package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"
)

// Recovery writes the 500 itself: a panic unwinds past the error
// handler middleware, so nothing downstream would produce a response.
func Recovery(l *slog.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		stack := debug.Stack()
		l.LogAttrs(c.Request.Context(), slog.LevelError, "panic_recovered",
			slog.String("request_id", GetRequestID(c)),
			slog.Any("panic", recovered),
			slog.String("stack", string(stack)),
		)

		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":      "An unexpected error occurred.",
			"request_id": GetRequestID(c),
		})
	})
}
