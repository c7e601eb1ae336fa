package main

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const requestIDHeader = "X-Request-ID"

// RequireStore short-circuits store-backed routes when the store could not
// be opened at startup, so the rest of the server keeps working.
func RequireStore(available bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !available {
			respondFail(c, http.StatusServiceUnavailable, ErrStoreUnavailable.Error())
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequestLogger logs each request with zap. Health and metrics probes are skipped.
func RequestLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		if path == "/api/health" || path == "/metrics" {
			c.Next()
			return
		}

		requestID := c.GetHeader(requestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Header(requestIDHeader, requestID)

		c.Next()

		if q := c.Request.URL.RawQuery; q != "" {
			path += "?" + q
		}
		fields := []zap.Field{
			zap.Int("status", c.Writer.Status()),
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.String("ip", c.ClientIP()),
			zap.Duration("latency", time.Since(start)),
			zap.String("request_id", requestID),
		}
		if len(c.Errors) > 0 {
			for _, e := range c.Errors.ByType(gin.ErrorTypeAny) {
				log.Error("request error", append(fields, zap.Error(e.Err))...)
			}
			return
		}
		switch status := c.Writer.Status(); {
		case status >= http.StatusInternalServerError:
			log.Error("server error", fields...)
		case status >= http.StatusBadRequest:
			log.Warn("client error", fields...)
		default:
			log.Info("request completed", fields...)
		}
	}
}
