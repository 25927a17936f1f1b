package services

import (
	"errors"
	"time"

	"github.com/xife12/membercore/internal/config"
	"github.com/xife12/membercore/internal/models"
	"github.com/xife12/membercore/internal/utils"
	"gorm.io/gorm"
)

var ErrInvalidCredentials = errors.New("invalid username or password")

type AuthService struct {
	db        *gorm.DB
	jwtConfig *config.JWTConfig
}

func NewAuthService(db *gorm.DB, jwtCfg *config.JWTConfig) *AuthService {
	return &AuthService{db: db, jwtConfig: jwtCfg}
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type LoginResponse struct {
	Token    string       `json:"token"`
	User     *models.User `json:"user"`
	ExpireAt time.Time    `json:"expire_at"`
}

// Login authenticates a staff account and issues a session token.
func (s *AuthService) Login(req *LoginRequest, clientIP, userAgent string) (*LoginResponse, error) {
	var user models.User
	err := s.db.Where("username = ? AND is_active = ?", req.Username, true).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, &PersistenceError{Err: err}
	}

	if !utils.CheckPassword(req.Password, user.Password) {
		LogWarning("Auth", "Login", "failed login for "+req.Username, nil, clientIP, userAgent, nil)
		return nil, ErrInvalidCredentials
	}

	expireHours := s.jwtConfig.ExpireHour
	if expireHours <= 0 {
		expireHours = 24
	}

	token, err := utils.GenerateToken(user.ID, user.Username, user.Role, expireHours)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	user.LastLogin = &now
	s.db.Save(&user)

	LogInfo("Auth", "Login", "login "+req.Username, &user.ID, clientIP, userAgent, nil)

	return &LoginResponse{
		Token:    token,
		User:     &user,
		ExpireAt: now.Add(time.Duration(expireHours) * time.Hour),
	}, nil
}

// GetUser loads a staff account by id.
func (s *AuthService) GetUser(id uint) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Resource: "user", ID: id}
		}
		return nil, &PersistenceError{Err: err}
	}
	return &user, nil
}

// CreateAdminIfNotExists seeds the default admin account on first boot.
func (s *AuthService) CreateAdminIfNotExists(username, password string) error {
	var count int64
	s.db.Model(&models.User{}).Where("role = ?", "admin").Count(&count)
	if count > 0 {
		return nil
	}

	hash, err := utils.HashPassword(password)
	if err != nil {
		return err
	}

	admin := models.User{
		Username: username,
		Password: hash,
		Nickname: "Administrator",
		Role:     "admin",
		IsActive: true,
	}
	return s.db.Create(&admin).Error
}
