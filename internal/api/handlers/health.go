package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hochschulassistent/backend/internal/health"
	"github.com/hochschulassistent/backend/internal/models"
	"github.com/sirupsen/logrus"
)

// HealthProber runs the dependency checks behind the health endpoint.
type HealthProber interface {
	CheckAll() health.OverallHealth
}

type HealthHandler struct {
	prober HealthProber
	logger *logrus.Logger
}

func NewHealthHandler(prober HealthProber, logger *logrus.Logger) *HealthHandler {
	return &HealthHandler{
		prober: prober,
		logger: logger,
	}
}

// HandleHealth answers 200 while every dependency is healthy and 503 as soon
// as one check fails.
func (h *HealthHandler) HandleHealth(c *gin.Context) {
	overall := h.prober.CheckAll()

	services := make(map[string]string, len(overall.Services))
	for _, s := range overall.Services {
		services[s.Name] = s.Status
	}

	code := http.StatusOK
	if overall.Status != "healthy" {
		code = http.StatusServiceUnavailable
	}

	c.JSON(code, models.HealthResponse{
		Status:    overall.Status,
		Service:   "hochschulassistent-backend",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Services:  services,
	})
}
