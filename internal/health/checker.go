package health

import (
	"fmt"
	"net/http"
	"time"

	"github.com/hochschulassistent/backend/internal/database"
	"github.com/sirupsen/logrus"
)

// HealthChecker manages health checks for all external dependencies.
type HealthChecker struct {
	dbManager  *database.Manager
	logger     *logrus.Logger
	backendURL string
}

func NewHealthChecker(dbManager *database.Manager, logger *logrus.Logger, backendURL string) *HealthChecker {
	return &HealthChecker{
		dbManager:  dbManager,
		logger:     logger,
		backendURL: backendURL,
	}
}

// ServiceHealth represents the health status of a service
type ServiceHealth struct {
	Name         string `json:"name"`
	Status       string `json:"status"`
	ResponseTime int    `json:"response_time_ms"`
	Error        string `json:"error,omitempty"`
	LastChecked  string `json:"last_checked"`
}

// OverallHealth represents the overall system health
type OverallHealth struct {
	Status   string          `json:"status"`
	Services []ServiceHealth `json:"services"`
}

// CheckPostgreSQL checks PostgreSQL database health
func (h *HealthChecker) CheckPostgreSQL() ServiceHealth {
	start := time.Now()
	err := h.dbManager.PingDatabase()
	responseTime := int(time.Since(start).Milliseconds())

	status := "healthy"
	errorMsg := ""
	if err != nil {
		status = "unhealthy"
		errorMsg = err.Error()
		h.logger.WithError(err).Error("PostgreSQL health check failed")
	}

	return ServiceHealth{
		Name:         "postgresql",
		Status:       status,
		ResponseTime: responseTime,
		Error:        errorMsg,
		LastChecked:  time.Now().Format(time.RFC3339),
	}
}

// CheckRedis checks Redis cache health
func (h *HealthChecker) CheckRedis() ServiceHealth {
	start := time.Now()
	err := h.dbManager.PingRedis()
	responseTime := int(time.Since(start).Milliseconds())

	status := "healthy"
	errorMsg := ""
	if err != nil {
		status = "unhealthy"
		errorMsg = err.Error()
		h.logger.WithError(err).Error("Redis health check failed")
	}

	return ServiceHealth{
		Name:         "redis",
		Status:       status,
		ResponseTime: responseTime,
		Error:        errorMsg,
		LastChecked:  time.Now().Format(time.RFC3339),
	}
}

// CheckCompletionBackend checks that the completion backend is reachable.
// Only reachability is probed; a completion is not attempted.
func (h *HealthChecker) CheckCompletionBackend() ServiceHealth {
	start := time.Now()

	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Get(h.backendURL + "/models")

	responseTime := int(time.Since(start).Milliseconds())
	status := "healthy"
	errorMsg := ""

	if err != nil {
		status = "unhealthy"
		errorMsg = err.Error()
	} else {
		defer resp.Body.Close()
		// 401 still proves the backend answers; only 5xx counts as down.
		if resp.StatusCode >= 500 {
			status = "unhealthy"
			errorMsg = fmt.Sprintf("HTTP %d", resp.StatusCode)
		}
	}

	if status != "healthy" {
		h.logger.WithField("error", errorMsg).Error("Completion backend health check failed")
	}

	return ServiceHealth{
		Name:         "completion_backend",
		Status:       status,
		ResponseTime: responseTime,
		Error:        errorMsg,
		LastChecked:  time.Now().Format(time.RFC3339),
	}
}

// CheckAll runs every check and aggregates the overall status.
func (h *HealthChecker) CheckAll() OverallHealth {
	services := []ServiceHealth{
		h.CheckPostgreSQL(),
		h.CheckRedis(),
		h.CheckCompletionBackend(),
	}

	status := "healthy"
	for _, s := range services {
		if s.Status != "healthy" {
			status = "degraded"
			break
		}
	}

	return OverallHealth{
		Status:   status,
		Services: services,
	}
}
