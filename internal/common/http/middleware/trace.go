// Package middleware holds gin middleware shared by the HTTP handlers of the backend.
package middleware

import (
	"context"
	"strings"
	"time"

	"ojclient/pkg/utils/contextkey"
	"ojclient/pkg/utils/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	RequestIDHeader = "X-Request-ID"

	requestIDContextKey = "request_id"
)

// RequestContext carries the caller's request id into the request context and echoes
// it back. Requests without one get a fresh id.
func RequestContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := strings.TrimSpace(c.GetHeader(RequestIDHeader))
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set(requestIDContextKey, requestID)
		ctx := context.WithValue(c.Request.Context(), contextkey.RequestID, requestID)
		c.Request = c.Request.WithContext(ctx)
		c.Writer.Header().Set(RequestIDHeader, requestID)

		start := time.Now()
		c.Next()
		logger.Debug(c.Request.Context(), "request served",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
		)
	}
}

// RequestID returns the id stored by RequestContext.
func RequestID(c *gin.Context) string {
	return c.GetString(requestIDContextKey)
}
