package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hochschulassistent/backend/pkg/utils"
	"github.com/sirupsen/logrus"
)

const RequestIDKey = "request_id"

// RequestID tags every request with a random id and logs method, path,
// status and duration once the handler chain finishes.
func RequestID(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-ID")
		if id == "" {
			id = utils.GenerateRequestID()
		}
		c.Set(RequestIDKey, id)
		c.Writer.Header().Set("X-Request-ID", id)
		c.Request = c.Request.WithContext(utils.WithRequestID(c.Request.Context(), id))

		start := time.Now()
		c.Next()

		logger.WithFields(logrus.Fields{
			"request_id": id,
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"status":     c.Writer.Status(),
			"duration":   time.Since(start).Milliseconds(),
		}).Info("Request handled")
	}
}
