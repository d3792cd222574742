package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/hochschulassistent/backend/internal/auth"
	"github.com/hochschulassistent/backend/pkg/utils"
	"github.com/sirupsen/logrus"
)

// AccessGate rejects requests whose bearer secret is not authorized. The
// response carries the fixed message only; which check failed is not
// revealed.
func AccessGate(gate *auth.Gate, logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		secret := strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")

		if !gate.Authorize(secret) {
			utils.ContextLogger(c.Request.Context(), logger).WithFields(logrus.Fields{
				"path":       c.Request.URL.Path,
				"ip_address": c.ClientIP(),
			}).Warn("Rejected request with unauthorized secret")
			utils.ErrorResponse(c, http.StatusUnauthorized, utils.MsgUnauthorized)
			c.Abort()
			return
		}

		c.Next()
	}
}
