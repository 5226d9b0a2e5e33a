package logger

import (
	"context"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// RequestIDKey stores the per-request correlation id on a context.Context.
type RequestIDKey struct{}

var (
	root     *zap.Logger
	buildErr error
	once     sync.Once
)

// New builds the process logger once and returns it on every call. The
// production encoder emits JSON; anything else gets the colored console
// encoder for local work.
func New(env string) (*zap.Logger, error) {
	once.Do(func() {
		cfg := zap.NewProductionConfig()
		if env != "production" {
			cfg = zap.NewDevelopmentConfig()
			cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		}
		root, buildErr = cfg.Build()
	})
	return root, buildErr
}

// WithContext returns the process logger annotated with the request id, when
// one is present on the context.
func WithContext(ctx context.Context) *zap.Logger {
	if root == nil {
		fallback, _ := zap.NewDevelopment()
		return fallback
	}
	if ctx == nil {
		return root
	}
	if id := RequestIDFromContext(ctx); id != "" {
		return root.With(zap.String("request_id", id))
	}
	return root
}

// RequestIDFromContext extracts the request id, or "" when absent.
func RequestIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if id, ok := ctx.Value(RequestIDKey{}).(string); ok {
		return id
	}
	return ""
}

// MaskEmail keeps up to the first three characters of the local part and the
// full domain: john.doe@example.com becomes joh***@example.com.
func MaskEmail(email string) string {
	if email == "" {
		return ""
	}

	at := strings.IndexByte(email, '@')
	if at <= 0 || at == len(email)-1 {
		return "***"
	}

	local, domain := email[:at], email[at:]
	keep := len(local)
	if keep > 3 {
		keep = 3
	}
	return local[:keep] + "***" + domain
}

// MaskIP keeps the first two IPv4 octets or the first four IPv6 groups.
func MaskIP(ip string) string {
	if ip == "" {
		return ""
	}

	if octets := strings.Split(ip, "."); len(octets) == 4 {
		return octets[0] + "." + octets[1] + ".*.*"
	}
	if groups := strings.Split(ip, ":"); len(groups) >= 4 {
		return strings.Join(groups[:4], ":") + ":*:*:*:*"
	}
	return "***"
}

// MaskString keeps the first and last two characters of longer secrets.
func MaskString(s string) string {
	if s == "" {
		return ""
	}
	if len(s) <= 4 {
		return "***"
	}
	return s[:2] + "***" + s[len(s)-2:]
}
