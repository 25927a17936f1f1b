package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/xife12/membercore/internal/middleware"
	"github.com/xife12/membercore/internal/services"
	"github.com/xife12/membercore/pkg/response"
	"gorm.io/gorm"
)

type MemberHandler struct {
	memberService     *services.MemberService
	membershipService *services.MembershipService
}

func NewMemberHandler(db *gorm.DB) *MemberHandler {
	return &MemberHandler{
		memberService:     services.NewMemberService(db),
		membershipService: services.NewMembershipService(db),
	}
}

func parseIDParam(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid "+name)
		return 0, false
	}
	return uint(id), true
}

// List returns the paginated member list.
// GET /api/members
func (h *MemberHandler) List(c *gin.Context) {
	var req services.MemberListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	resp, err := h.memberService.List(&req)
	if err != nil {
		writeError(c, err)
		return
	}

	response.Success(c, resp)
}

// GetByID returns a single member with their membership history.
// GET /api/members/:id
func (h *MemberHandler) GetByID(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	member, err := h.memberService.GetByID(id)
	if err != nil {
		writeError(c, err)
		return
	}

	response.Success(c, member)
}

// GetDetail returns the back-office detail view: memberships with effective
// statuses, the remaining-term traffic light and the renewal badge.
// GET /api/members/:id/detail
func (h *MemberHandler) GetDetail(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	detail, err := h.membershipService.GetDetail(id)
	if err != nil {
		writeError(c, err)
		return
	}

	response.Success(c, detail)
}

// Create registers a new member.
// POST /api/members
func (h *MemberHandler) Create(c *gin.Context) {
	var req services.CreateMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	member, err := h.memberService.Create(&req)
	if err != nil {
		writeError(c, err)
		return
	}

	userID := middleware.GetUserID(c)
	services.LogInfo("Member", "Create", "created member "+member.MemberNumber,
		&userID, c.ClientIP(), c.Request.UserAgent(), nil)

	response.Created(c, member)
}

// Update patches a member's base data.
// PUT /api/members/:id
func (h *MemberHandler) Update(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req services.UpdateMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	member, err := h.memberService.Update(id, &req)
	if err != nil {
		writeError(c, err)
		return
	}

	response.Success(c, member)
}

// Delete soft-deletes a member.
// DELETE /api/members/:id
func (h *MemberHandler) Delete(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.memberService.Delete(id); err != nil {
		writeError(c, err)
		return
	}

	userID := middleware.GetUserID(c)
	services.LogInfo("Member", "Delete", "deleted member", &userID,
		c.ClientIP(), c.Request.UserAgent(), gin.H{"member_id": id})

	response.Success(c, gin.H{"deleted": id})
}
