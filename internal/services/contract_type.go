package services

import (
	"errors"
	"strconv"
	"strings"

	"github.com/xife12/membercore/internal/models"
	"gorm.io/gorm"
)

type ContractTypeService struct {
	db *gorm.DB
}

func NewContractTypeService(db *gorm.DB) *ContractTypeService {
	return &ContractTypeService{db: db}
}

type ContractTypeRequest struct {
	Name         string  `json:"name" binding:"required"`
	Description  string  `json:"description"`
	PriceMonthly float64 `json:"price_monthly"`
	AllowedTerms string  `json:"allowed_terms" binding:"required"`
	IsActive     *bool   `json:"is_active"`
}

func (s *ContractTypeService) List(includeInactive bool) ([]models.ContractType, error) {
	query := s.db.Model(&models.ContractType{})
	if !includeInactive {
		query = query.Where("is_active = ?", true)
	}

	var types []models.ContractType
	if err := query.Order("name ASC").Find(&types).Error; err != nil {
		return nil, &PersistenceError{Err: err}
	}
	return types, nil
}

func (s *ContractTypeService) GetByID(id uint) (*models.ContractType, error) {
	var ct models.ContractType
	if err := s.db.First(&ct, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Resource: "contract type", ID: id}
		}
		return nil, &PersistenceError{Err: err}
	}
	return &ct, nil
}

func (s *ContractTypeService) Create(req *ContractTypeRequest) (*models.ContractType, error) {
	if err := validateTermSpec(req.AllowedTerms); err != nil {
		return nil, err
	}

	ct := &models.ContractType{
		Name:         strings.TrimSpace(req.Name),
		Description:  req.Description,
		PriceMonthly: req.PriceMonthly,
		AllowedTerms: normalizeTermSpec(req.AllowedTerms),
		IsActive:     true,
	}
	if req.IsActive != nil {
		ct.IsActive = *req.IsActive
	}
	if err := s.db.Create(ct).Error; err != nil {
		return nil, &PersistenceError{Err: err}
	}
	return ct, nil
}

func (s *ContractTypeService) Update(id uint, req *ContractTypeRequest) (*models.ContractType, error) {
	ct, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}
	if err := validateTermSpec(req.AllowedTerms); err != nil {
		return nil, err
	}

	ct.Name = strings.TrimSpace(req.Name)
	ct.Description = req.Description
	ct.PriceMonthly = req.PriceMonthly
	ct.AllowedTerms = normalizeTermSpec(req.AllowedTerms)
	if req.IsActive != nil {
		ct.IsActive = *req.IsActive
	}

	if err := s.db.Save(ct).Error; err != nil {
		return nil, &PersistenceError{Err: err}
	}
	return ct, nil
}

// Delete soft-deletes a contract type. Existing memberships keep referencing
// it; only new bookings are blocked.
func (s *ContractTypeService) Delete(id uint) error {
	if _, err := s.GetByID(id); err != nil {
		return err
	}
	if err := s.db.Delete(&models.ContractType{}, id).Error; err != nil {
		return &PersistenceError{Err: err}
	}
	return nil
}

// validateTermSpec checks that the comma-separated month list parses to at
// least one positive term.
func validateTermSpec(spec string) error {
	ct := models.ContractType{AllowedTerms: spec}
	if len(ct.TermList()) == 0 {
		return newValidationError("allowed_terms", "must contain at least one positive month count, e.g. \"1,3,6,12\"")
	}
	return nil
}

// normalizeTermSpec re-renders the term list without whitespace or junk.
func normalizeTermSpec(spec string) string {
	ct := models.ContractType{AllowedTerms: spec}
	terms := ct.TermList()
	parts := make([]string, len(terms))
	for i, t := range terms {
		parts[i] = strconv.Itoa(t)
	}
	return strings.Join(parts, ",")
}
