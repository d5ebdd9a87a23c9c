package logger

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	headerRequestID = "X-Request-Id"
	ginLoggerKey    = "logger"

	// Inbound ids longer than this are replaced; they end up in every log line.
	maxRequestIDLen = 128
)

// Middleware tags each request with a request_id (reusing a well-formed inbound X-Request-Id),
// stores the tagged logger on the gin context and the request context, and writes one access
// line per request. Paths in quiet are served but not logged (health checks, metric scrapes).
func Middleware(l *slog.Logger, quiet ...string) gin.HandlerFunc {
	skip := make(map[string]struct{}, len(quiet))
	for _, p := range quiet {
		skip[p] = struct{}{}
	}

	return func(c *gin.Context) {
		start := time.Now()

		rid := requestID(c.GetHeader(headerRequestID))
		c.Writer.Header().Set(headerRequestID, rid)

		reqLogger := l.With("request_id", rid)
		c.Set(ginLoggerKey, reqLogger)
		c.Request = c.Request.WithContext(With(c.Request.Context(), reqLogger))

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}
		if _, ok := skip[route]; ok {
			return
		}

		status := c.Writer.Status()
		attrs := []slog.Attr{
			slog.String("method", c.Request.Method),
			slog.String("path", route),
			slog.Int("status", status),
			slog.Int64("duration_ms", time.Since(start).Milliseconds()),
			slog.String("client_ip", c.ClientIP()),
			slog.Int("bytes", c.Writer.Size()),
		}
		if len(c.Errors) > 0 {
			attrs = append(attrs, slog.String("errors", c.Errors.String()))
		}
		reqLogger.LogAttrs(context.Background(), accessLevel(status, len(c.Errors) > 0), "request", attrs...)
	}
}

// accessLevel escalates server faults to Error and client faults to Warn.
func accessLevel(status int, hasErrors bool) slog.Level {
	switch {
	case hasErrors || status >= http.StatusInternalServerError:
		return slog.LevelError
	case status >= http.StatusBadRequest:
		return slog.LevelWarn
	default:
		return slog.LevelInfo
	}
}

func requestID(inbound string) string {
	if inbound == "" || len(inbound) > maxRequestIDLen {
		return uuid.NewString()
	}
	for i := 0; i < len(inbound); i++ {
		if b := inbound[i]; b < 0x21 || b > 0x7e {
			return uuid.NewString()
		}
	}
	return inbound
}

// FromGin returns the request logger set by Middleware, or slog.Default().
func FromGin(c *gin.Context) *slog.Logger {
	if v, ok := c.Get(ginLoggerKey); ok {
		if l, ok := v.(*slog.Logger); ok && l != nil {
			return l
		}
	}
	return slog.Default()
}
