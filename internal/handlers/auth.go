package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/xife12/membercore/internal/config"
	"github.com/xife12/membercore/internal/middleware"
	"github.com/xife12/membercore/internal/services"
	"github.com/xife12/membercore/pkg/response"
	"gorm.io/gorm"
)

type AuthHandler struct {
	authService *services.AuthService
}

func NewAuthHandler(db *gorm.DB, cfg *config.Config) *AuthHandler {
	return &AuthHandler{
		authService: services.NewAuthService(db, &cfg.JWT),
	}
}

// Login authenticates a staff account.
// POST /api/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req services.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	resp, err := h.authService.Login(&req, c.ClientIP(), c.Request.UserAgent())
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			response.Unauthorized(c, err.Error())
			return
		}
		writeError(c, err)
		return
	}

	response.Success(c, resp)
}

// GetCurrentUser returns the logged-in staff account.
// GET /api/auth/me
func (h *AuthHandler) GetCurrentUser(c *gin.Context) {
	user, err := h.authService.GetUser(middleware.GetUserID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, user)
}

// Logout acknowledges a client-side token drop.
// POST /api/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	response.Success(c, gin.H{"message": "logged out"})
}
