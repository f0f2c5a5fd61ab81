package middlewares

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"eightball/variance/pkg/logger"
)

const (
	// HeaderRequestID 请求 ID，缺省时生成
	HeaderRequestID = "X-Request-ID"
)

// RequestID 注入 trace_id 到请求 Context，并回写响应头
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(HeaderRequestID)
		if requestID == "" {
			requestID = uuid.NewString()
		}

		ctx := logger.WithTraceID(c.Request.Context(), requestID)
		if orgID := c.Param("org_id"); orgID != "" {
			ctx = logger.WithOrgID(ctx, orgID)
		}
		c.Request = c.Request.WithContext(ctx)
		c.Header(HeaderRequestID, requestID)

		c.Next()
	}
}

// Logger 访问日志
func Logger(log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		ctx := c.Request.Context()
		status := c.Writer.Status()
		switch {
		case status >= 500:
			log.Errorf(ctx, "[HTTP] %s %s %d %v", c.Request.Method, c.FullPath(), status, time.Since(start))
		case status >= 400:
			log.Warnf(ctx, "[HTTP] %s %s %d %v", c.Request.Method, c.FullPath(), status, time.Since(start))
		default:
			log.Infof(ctx, "[HTTP] %s %s %d %v", c.Request.Method, c.FullPath(), status, time.Since(start))
		}
	}
}
