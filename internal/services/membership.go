package services

import (
	"errors"
	"time"

	"github.com/xife12/membercore/internal/models"
	"github.com/xife12/membercore/internal/utils"
	"gorm.io/gorm"
)

// MembershipService drives the lifecycle engine against persisted members.
// It loads the member aggregate wholesale, runs one engine operation, and on
// success saves the whole aggregate back. No partial persistence happens.
type MembershipService struct {
	db *gorm.DB
}

func NewMembershipService(db *gorm.DB) *MembershipService {
	return &MembershipService{db: db}
}

// MembershipOperationResult is what a mutating endpoint returns: either the
// refreshed member detail or a conflict awaiting confirmation.
type MembershipOperationResult struct {
	Member   *MemberDetail    `json:"member,omitempty"`
	Conflict *OverlapConflict `json:"conflict,omitempty"`
}

// MembershipView is a membership enriched with read-time derivations.
type MembershipView struct {
	models.Membership
	EffectiveStatus models.MembershipStatus `json:"effective_status"`
	RemainingTerm   *RemainingTerm          `json:"remaining_term,omitempty"`
}

// MemberDetail is the member-detail payload for the back office.
type MemberDetail struct {
	Member       *models.Member   `json:"member"`
	Memberships  []MembershipView `json:"memberships"`
	CurrentID    *uint            `json:"current_membership_id,omitempty"`
	RenewalBadge RenewalBadge     `json:"renewal_badge"`
}

func (s *MembershipService) Add(memberID uint, req *AddMembershipRequest) (*MembershipOperationResult, error) {
	member, err := s.loadMember(memberID)
	if err != nil {
		return nil, err
	}
	ct, err := s.loadContractType(req.ContractTypeID)
	if err != nil {
		return nil, err
	}

	engine := NewLifecycleEngine(time.Now())
	outcome, err := engine.Add(member, ct, req)
	return s.commit(outcome, err)
}

func (s *MembershipService) Extend(memberID, membershipID uint, req *ExtendMembershipRequest) (*MembershipOperationResult, error) {
	member, err := s.loadMember(memberID)
	if err != nil {
		return nil, err
	}
	ct, err := s.loadContractType(req.ContractTypeID)
	if err != nil {
		return nil, err
	}

	engine := NewLifecycleEngine(time.Now())
	outcome, err := engine.Extend(member, ct, membershipID, req)
	return s.commit(outcome, err)
}

func (s *MembershipService) Cancel(memberID, membershipID uint, req *CancelMembershipRequest) (*MembershipOperationResult, error) {
	member, err := s.loadMember(memberID)
	if err != nil {
		return nil, err
	}

	engine := NewLifecycleEngine(time.Now())
	outcome, err := engine.Cancel(member, membershipID, req)
	return s.commit(outcome, err)
}

func (s *MembershipService) Suspend(memberID, membershipID uint, req *SuspendMembershipRequest) (*MembershipOperationResult, error) {
	member, err := s.loadMember(memberID)
	if err != nil {
		return nil, err
	}

	engine := NewLifecycleEngine(time.Now())
	outcome, err := engine.Suspend(member, membershipID, req)
	return s.commit(outcome, err)
}

func (s *MembershipService) Reactivate(memberID, membershipID uint) (*MembershipOperationResult, error) {
	member, err := s.loadMember(memberID)
	if err != nil {
		return nil, err
	}

	engine := NewLifecycleEngine(time.Now())
	outcome, err := engine.Reactivate(member, membershipID)
	return s.commit(outcome, err)
}

// GetDetail assembles the member detail view with effective statuses, the
// remaining-term traffic light for the active membership and the renewal
// badge. Derivations are computed per read and never written back.
func (s *MembershipService) GetDetail(memberID uint) (*MemberDetail, error) {
	member, err := s.loadMember(memberID)
	if err != nil {
		return nil, err
	}
	return s.buildDetail(member)
}

func (s *MembershipService) buildDetail(member *models.Member) (*MemberDetail, error) {
	today := utils.Today()

	detail := &MemberDetail{
		Member:       member,
		Memberships:  make([]MembershipView, 0, len(member.Memberships)),
		RenewalBadge: ComputeRenewalBadge(member.Memberships, today),
	}

	for i := range member.Memberships {
		m := member.Memberships[i]
		view := MembershipView{
			Membership:      m,
			EffectiveStatus: m.EffectiveStatus(today),
		}
		if view.EffectiveStatus == models.StatusActive {
			term, err := RemainingDaysTier(&m, today)
			if err != nil {
				return nil, err
			}
			view.RemainingTerm = term
			id := m.ID
			detail.CurrentID = &id
		}
		detail.Memberships = append(detail.Memberships, view)
	}

	return detail, nil
}

// commit persists a successful outcome and translates it for the caller.
// Conflicts and engine errors leave the database untouched.
func (s *MembershipService) commit(outcome *LifecycleOutcome, err error) (*MembershipOperationResult, error) {
	if err != nil {
		return nil, err
	}
	if outcome.Conflict != nil {
		return &MembershipOperationResult{Conflict: outcome.Conflict}, nil
	}

	member := outcome.Member
	txErr := s.db.Transaction(func(tx *gorm.DB) error {
		for i := range member.Memberships {
			if err := tx.Save(&member.Memberships[i]).Error; err != nil {
				return err
			}
		}
		return tx.Model(&models.Member{}).Where("id = ?", member.ID).
			Update("updated_at", time.Now()).Error
	})
	if txErr != nil {
		return nil, &PersistenceError{Err: txErr}
	}

	detail, err := s.buildDetail(member)
	if err != nil {
		return nil, err
	}
	return &MembershipOperationResult{Member: detail}, nil
}

func (s *MembershipService) loadMember(memberID uint) (*models.Member, error) {
	var member models.Member
	err := s.db.Preload("Memberships").Preload("Memberships.ContractType").
		First(&member, memberID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Resource: "member", ID: memberID}
		}
		return nil, &PersistenceError{Err: err}
	}
	return &member, nil
}

func (s *MembershipService) loadContractType(id uint) (*models.ContractType, error) {
	var ct models.ContractType
	err := s.db.Where("is_active = ?", true).First(&ct, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, newValidationError("contract_type_id", "unknown or inactive contract type %d", id)
		}
		return nil, &PersistenceError{Err: err}
	}
	return &ct, nil
}
