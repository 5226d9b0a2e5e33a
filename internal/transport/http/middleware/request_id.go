package middleware

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/Vinoddhakad18/go-architecture/internal/infra/logger"
)

const requestIDHeader = "X-Request-ID"

// RequestID ensures every request carries a correlation identifier. An
// inbound X-Request-ID is honored so callers can stitch logs across hops;
// otherwise a fresh UUID is minted. The id is echoed on the response and
// stored in the request context for the logger package to pick up.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Writer.Header().Set(requestIDHeader, id)
		c.Request = c.Request.WithContext(
			context.WithValue(c.Request.Context(), logger.RequestIDKey{}, id))
		c.Next()
	}
}
