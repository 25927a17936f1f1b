package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/xife12/membercore/internal/models"
	"gorm.io/gorm"
)

type MemberService struct {
	db *gorm.DB
}

func NewMemberService(db *gorm.DB) *MemberService {
	return &MemberService{db: db}
}

type MemberListRequest struct {
	Page      int    `form:"page"`
	PageSize  int    `form:"page_size"`
	Search    string `form:"search"`
	OnlyActive bool  `form:"only_active"`
	SortBy    string `form:"sort_by"`
	SortOrder string `form:"sort_order"`
}

type MemberListResponse struct {
	Total    int64           `json:"total"`
	Page     int             `json:"page"`
	PageSize int             `json:"page_size"`
	Items    []models.Member `json:"items"`
}

type CreateMemberRequest struct {
	FirstName string `json:"first_name" binding:"required"`
	LastName  string `json:"last_name" binding:"required"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
}

type UpdateMemberRequest struct {
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Email     *string `json:"email"`
	Phone     *string `json:"phone"`
	IsActive  *bool   `json:"is_active"`
}

func (s *MemberService) List(req *MemberListRequest) (*MemberListResponse, error) {
	if req.Page <= 0 {
		req.Page = 1
	}
	if req.PageSize <= 0 {
		req.PageSize = 20
	}

	query := s.db.Model(&models.Member{})
	if req.Search != "" {
		like := "%" + req.Search + "%"
		query = query.Where("first_name LIKE ? OR last_name LIKE ? OR member_number LIKE ?", like, like, like)
	}
	if req.OnlyActive {
		query = query.Where("is_active = ?", true)
	}

	var total int64
	query.Count(&total)

	sortBy := "last_name"
	switch req.SortBy {
	case "member_number", "first_name", "last_name", "created_at":
		sortBy = req.SortBy
	}
	sortOrder := "ASC"
	if req.SortOrder == "desc" {
		sortOrder = "DESC"
	}

	var members []models.Member
	offset := (req.Page - 1) * req.PageSize
	if err := query.Order(sortBy + " " + sortOrder).
		Offset(offset).Limit(req.PageSize).Find(&members).Error; err != nil {
		return nil, &PersistenceError{Err: err}
	}

	return &MemberListResponse{
		Total:    total,
		Page:     req.Page,
		PageSize: req.PageSize,
		Items:    members,
	}, nil
}

func (s *MemberService) GetByID(id uint) (*models.Member, error) {
	var member models.Member
	err := s.db.Preload("Memberships").First(&member, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Resource: "member", ID: id}
		}
		return nil, &PersistenceError{Err: err}
	}
	return &member, nil
}

func (s *MemberService) Create(req *CreateMemberRequest) (*models.Member, error) {
	if strings.TrimSpace(req.FirstName) == "" {
		return nil, newValidationError("first_name", "required")
	}
	if strings.TrimSpace(req.LastName) == "" {
		return nil, newValidationError("last_name", "required")
	}

	member := &models.Member{
		MemberNumber: generateMemberNumber(),
		FirstName:    strings.TrimSpace(req.FirstName),
		LastName:     strings.TrimSpace(req.LastName),
		Email:        strings.TrimSpace(req.Email),
		Phone:        strings.TrimSpace(req.Phone),
		IsActive:     true,
	}
	if err := s.db.Create(member).Error; err != nil {
		return nil, &PersistenceError{Err: err}
	}
	return member, nil
}

func (s *MemberService) Update(id uint, req *UpdateMemberRequest) (*models.Member, error) {
	member, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}

	if req.FirstName != nil {
		member.FirstName = strings.TrimSpace(*req.FirstName)
	}
	if req.LastName != nil {
		member.LastName = strings.TrimSpace(*req.LastName)
	}
	if req.Email != nil {
		member.Email = strings.TrimSpace(*req.Email)
	}
	if req.Phone != nil {
		member.Phone = strings.TrimSpace(*req.Phone)
	}
	if req.IsActive != nil {
		member.IsActive = *req.IsActive
	}

	if err := s.db.Save(member).Error; err != nil {
		return nil, &PersistenceError{Err: err}
	}
	return member, nil
}

// Delete soft-deletes a member. Membership history stays in place.
func (s *MemberService) Delete(id uint) error {
	if _, err := s.GetByID(id); err != nil {
		return err
	}
	if err := s.db.Delete(&models.Member{}, id).Error; err != nil {
		return &PersistenceError{Err: err}
	}
	return nil
}

// generateMemberNumber builds a human-readable unique member number,
// e.g. M-20260828-3F2A1B.
func generateMemberNumber() string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:6])
	return fmt.Sprintf("M-%s-%s", time.Now().Format("20060102"), suffix)
}
