package handlers

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/xife12/membercore/internal/models"
	"github.com/xife12/membercore/internal/services"
)

// HealthHandler reports the liveness of the subsystems.
type HealthHandler struct{}

func NewHealthHandler() *HealthHandler {
	return &HealthHandler{}
}

// CheckHealth returns the database, queue and workload status.
// GET /health
func (h *HealthHandler) CheckHealth(c *gin.Context) {
	overall := "healthy"

	dbStatus := "ok"
	sqlDB, err := models.GetDB().DB()
	if err != nil {
		dbStatus = "error: " + err.Error()
		overall = "unhealthy"
	} else if err := sqlDB.Ping(); err != nil {
		dbStatus = "error: " + err.Error()
		overall = "unhealthy"
	}

	queueMode := "sync"
	if q := services.GetTaskQueue(); q != nil && q.IsAsync() {
		queueMode = "async (Redis)"
	}

	// Memberships reaching their contractual end within the notice window.
	var expiringCount int64
	cutoff := time.Now().AddDate(0, 0, services.NoticePeriodDays)
	models.GetDB().Model(&models.Membership{}).
		Where("status IN ?", []string{string(models.StatusPlanned), string(models.StatusActive)}).
		Where("end_date <= ?", cutoff).
		Count(&expiringCount)

	c.JSON(200, gin.H{
		"status":  overall,
		"service": "membercore",
		"components": gin.H{
			"database":             dbStatus,
			"queue_mode":           queueMode,
			"expiring_memberships": expiringCount,
		},
	})
}
