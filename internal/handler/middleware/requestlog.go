package middleware

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"

	"github.com/Fresh-Industries/pantrypal/internal/infra/repository"

	"github.com/gin-gonic/gin"
)

// RequestLogMiddleware persists every mutating request for scenario
// replay. Failures to log never fail the request.
func RequestLogMiddleware(repo *repository.RequestLogRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodGet || c.Request.Method == http.MethodHead {
			c.Next()
			return
		}

		var payload []byte
		if c.Request.Body != nil {
			payload, _ = io.ReadAll(c.Request.Body)
			c.Request.Body = io.NopCloser(bytes.NewReader(payload))
		}

		c.Next()

		var checkoutID *string
		if id := c.Param("id"); id != "" && isCheckoutRoute(c.FullPath()) {
			checkoutID = &id
		}
		if err := repo.Append(c.Request.Context(), c.Request.Method, c.Request.URL.String(), checkoutID, payload); err != nil {
			slog.Warn("failed to persist request log", "error", err, "path", c.Request.URL.Path)
		}
	}
}

func isCheckoutRoute(fullPath string) bool {
	return fullPath == "/api/checkouts/:id/pickup-slot" || fullPath == "/api/checkouts/:id/complete"
}
