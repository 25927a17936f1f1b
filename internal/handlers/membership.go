package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/xife12/membercore/internal/middleware"
	"github.com/xife12/membercore/internal/services"
	"github.com/xife12/membercore/pkg/response"
	"gorm.io/gorm"
)

// MembershipHandler exposes the five lifecycle operations. A period collision
// surfaces as HTTP 409 carrying the conflict payload; the client re-submits
// the same request with confirm_overlap to proceed.
type MembershipHandler struct {
	membershipService *services.MembershipService
}

func NewMembershipHandler(db *gorm.DB) *MembershipHandler {
	return &MembershipHandler{
		membershipService: services.NewMembershipService(db),
	}
}

func (h *MembershipHandler) write(c *gin.Context, action string, memberID uint, result *services.MembershipOperationResult, err error) {
	if err != nil {
		writeError(c, err)
		return
	}
	if result.Conflict != nil {
		response.Conflict(c, "membership period overlaps the current contract", result.Conflict)
		return
	}

	userID := middleware.GetUserID(c)
	services.LogInfo("Membership", action, action+" membership", &userID,
		c.ClientIP(), c.Request.UserAgent(), gin.H{"member_id": memberID})

	response.Success(c, result)
}

// Add books a new membership for a member.
// POST /api/members/:id/memberships
func (h *MembershipHandler) Add(c *gin.Context) {
	memberID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req services.AddMembershipRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.membershipService.Add(memberID, &req)
	h.write(c, "Add", memberID, result, err)
}

// Extend chains a follow-up membership off an existing one.
// POST /api/members/:id/memberships/:mid/extend
func (h *MembershipHandler) Extend(c *gin.Context) {
	memberID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	membershipID, ok := parseIDParam(c, "mid")
	if !ok {
		return
	}

	var req services.ExtendMembershipRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.membershipService.Extend(memberID, membershipID, &req)
	h.write(c, "Extend", memberID, result, err)
}

// Cancel terminates a membership in one of the three cancellation modes.
// POST /api/members/:id/memberships/:mid/cancel
func (h *MembershipHandler) Cancel(c *gin.Context) {
	memberID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	membershipID, ok := parseIDParam(c, "mid")
	if !ok {
		return
	}

	var req services.CancelMembershipRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.membershipService.Cancel(memberID, membershipID, &req)
	h.write(c, "Cancel", memberID, result, err)
}

// Suspend pauses an active membership until a resume date.
// POST /api/members/:id/memberships/:mid/suspend
func (h *MembershipHandler) Suspend(c *gin.Context) {
	memberID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	membershipID, ok := parseIDParam(c, "mid")
	if !ok {
		return
	}

	var req services.SuspendMembershipRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.membershipService.Suspend(memberID, membershipID, &req)
	h.write(c, "Suspend", memberID, result, err)
}

// Reactivate resumes a suspended membership.
// POST /api/members/:id/memberships/:mid/reactivate
func (h *MembershipHandler) Reactivate(c *gin.Context) {
	memberID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	membershipID, ok := parseIDParam(c, "mid")
	if !ok {
		return
	}

	result, err := h.membershipService.Reactivate(memberID, membershipID)
	h.write(c, "Reactivate", memberID, result, err)
}
