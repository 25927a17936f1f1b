package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/xife12/membercore/internal/services"
	"github.com/xife12/membercore/pkg/response"
	"gorm.io/gorm"
)

type SystemLogHandler struct {
	systemLogService *services.SystemLogService
}

func NewSystemLogHandler(db *gorm.DB) *SystemLogHandler {
	return &SystemLogHandler{
		systemLogService: services.NewSystemLogService(db),
	}
}

// List returns the filtered audit trail.
// GET /api/system-logs
func (h *SystemLogHandler) List(c *gin.Context) {
	var req services.SystemLogListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	resp, err := h.systemLogService.List(&req)
	if err != nil {
		writeError(c, err)
		return
	}

	response.Success(c, resp)
}

// GetModules returns the distinct module names seen in the audit trail.
// GET /api/system-logs/modules
func (h *SystemLogHandler) GetModules(c *gin.Context) {
	modules, err := h.systemLogService.GetModules()
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, gin.H{"modules": modules})
}

// GetRetention returns the audit retention window in days.
// GET /api/system-logs/retention
func (h *SystemLogHandler) GetRetention(c *gin.Context) {
	response.Success(c, gin.H{"retention_days": h.systemLogService.GetRetentionDays()})
}

// SetRetention updates the audit retention window.
// PUT /api/system-logs/retention
func (h *SystemLogHandler) SetRetention(c *gin.Context) {
	var req struct {
		RetentionDays int `json:"retention_days" binding:"required,min=1"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	if err := h.systemLogService.SetRetentionDays(req.RetentionDays); err != nil {
		writeError(c, err)
		return
	}

	response.Success(c, gin.H{"retention_days": req.RetentionDays})
}

// Cleanup deletes audit records past the retention window on demand.
// POST /api/system-logs/cleanup
func (h *SystemLogHandler) Cleanup(c *gin.Context) {
	deleted, err := h.systemLogService.CleanupOldLogs(h.systemLogService.GetRetentionDays())
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, gin.H{"deleted": deleted})
}
