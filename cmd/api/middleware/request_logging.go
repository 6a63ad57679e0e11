package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"careconnect/internal/logger"
)

// RequestLoggingMiddleware 는 핸들러 처리 시간을 route 단위로 로깅한다.
// RequestTrace 가 남기는 요청 로그와 달리 매칭된 route 패턴(/api/posts/:id)을 기록한다.
func RequestLoggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		logger.DebugWithFields("api_request", logger.Fields{
			"method":      c.Request.Method,
			"route":       route,
			"status":      c.Writer.Status(),
			"duration_ms": time.Since(start).Milliseconds(),
			"client_ip":   c.ClientIP(),
			"request_id":  c.Writer.Header().Get(headerRequestID),
		})
	}
}
