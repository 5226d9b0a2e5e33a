package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	// TraceIDHeader carries the trace identifier on requests and responses.
	TraceIDHeader = "X-Trace-ID"
	// TraceIDKey is the gin context key holding the trace identifier.
	TraceIDKey = "trace_id"
	// UserIDKey is the gin context key holding the authenticated user id.
	UserIDKey = "user_id"

	requestContextKey = "request_context"
)

// RequestContext bundles the request-scoped metadata downstream handlers and
// error responses draw from.
type RequestContext struct {
	TraceID   string
	UserID    string
	IP        string
	UserAgent string
}

// EnrichContext accepts an inbound trace id or mints one, echoes it on the
// response, and seeds the request context.
func EnrichContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		traceID := c.GetHeader(TraceIDHeader)
		if traceID == "" {
			traceID = uuid.NewString()
		}

		c.Set(TraceIDKey, traceID)
		c.Header(TraceIDHeader, traceID)

		c.Set(requestContextKey, &RequestContext{
			TraceID:   traceID,
			IP:        c.ClientIP(),
			UserAgent: c.Request.UserAgent(),
		})

		c.Next()
	}
}

// GetTraceID returns the request's trace id, or "" before EnrichContext ran.
func GetTraceID(c *gin.Context) string {
	if value, ok := c.Get(TraceIDKey); ok {
		if id, ok := value.(string); ok {
			return id
		}
	}
	return ""
}

// GetRequestContext returns the request metadata, never nil.
func GetRequestContext(c *gin.Context) *RequestContext {
	if value, ok := c.Get(requestContextKey); ok {
		if reqCtx, ok := value.(*RequestContext); ok {
			return reqCtx
		}
	}
	return &RequestContext{}
}
