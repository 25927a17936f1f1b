package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/xife12/membercore/internal/services"
	"github.com/xife12/membercore/pkg/response"
	"gorm.io/gorm"
)

type ContractTypeHandler struct {
	contractTypeService *services.ContractTypeService
}

func NewContractTypeHandler(db *gorm.DB) *ContractTypeHandler {
	return &ContractTypeHandler{
		contractTypeService: services.NewContractTypeService(db),
	}
}

// List returns contract types; pass ?include_inactive=true for all.
// GET /api/contract-types
func (h *ContractTypeHandler) List(c *gin.Context) {
	includeInactive := c.Query("include_inactive") == "true"

	types, err := h.contractTypeService.List(includeInactive)
	if err != nil {
		writeError(c, err)
		return
	}

	response.Success(c, types)
}

// GetByID returns a single contract type.
// GET /api/contract-types/:id
func (h *ContractTypeHandler) GetByID(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	ct, err := h.contractTypeService.GetByID(id)
	if err != nil {
		writeError(c, err)
		return
	}

	response.Success(c, ct)
}

// Create adds a contract type.
// POST /api/contract-types
func (h *ContractTypeHandler) Create(c *gin.Context) {
	var req services.ContractTypeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	ct, err := h.contractTypeService.Create(&req)
	if err != nil {
		writeError(c, err)
		return
	}

	response.Created(c, ct)
}

// Update replaces a contract type's definition.
// PUT /api/contract-types/:id
func (h *ContractTypeHandler) Update(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req services.ContractTypeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	ct, err := h.contractTypeService.Update(id, &req)
	if err != nil {
		writeError(c, err)
		return
	}

	response.Success(c, ct)
}

// Delete soft-deletes a contract type; existing memberships keep their link.
// DELETE /api/contract-types/:id
func (h *ContractTypeHandler) Delete(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.contractTypeService.Delete(id); err != nil {
		writeError(c, err)
		return
	}

	response.Success(c, gin.H{"deleted": id})
}
