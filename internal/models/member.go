package models

import (
	"strconv"
	"strings"
	"time"

	"gorm.io/gorm"
)

// MembershipStatus is the stored lifecycle state of a contract instance.
type MembershipStatus string

const (
	StatusPlanned   MembershipStatus = "planned"
	StatusActive    MembershipStatus = "active"
	StatusSuspended MembershipStatus = "suspended"
	StatusCancelled MembershipStatus = "cancelled"
	StatusCompleted MembershipStatus = "completed"
)

// IsValid reports whether s is one of the known lifecycle states.
func (s MembershipStatus) IsValid() bool {
	switch s {
	case StatusPlanned, StatusActive, StatusSuspended, StatusCancelled, StatusCompleted:
		return true
	}
	return false
}

// IsTerminal reports whether s allows no further transitions.
func (s MembershipStatus) IsTerminal() bool {
	return s == StatusCancelled || s == StatusCompleted
}

// CancellationMode selects how a cancellation affects the end date.
type CancellationMode string

const (
	CancelImmediate CancellationMode = "immediate" // end today
	CancelCustom    CancellationMode = "custom"    // end on a chosen date
	CancelRegular   CancellationMode = "regular"   // keep the contractual end
)

// IsValid reports whether m is a known cancellation mode.
func (m CancellationMode) IsValid() bool {
	return m == CancelImmediate || m == CancelCustom || m == CancelRegular
}

// Member represents a studio member with their contract history.
type Member struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	MemberNumber string         `gorm:"uniqueIndex;size:40;not null" json:"member_number"`
	FirstName    string         `gorm:"size:100;not null" json:"first_name"`
	LastName     string         `gorm:"size:100;not null" json:"last_name"`
	Email        string         `gorm:"size:255" json:"email"`
	Phone        string         `gorm:"size:50" json:"phone"`
	IsActive     bool           `gorm:"default:true" json:"is_active"`
	Memberships  []Membership   `gorm:"foreignKey:MemberID" json:"memberships,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

// ContractType defines a bookable contract with its allowed terms.
type ContractType struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	Name         string         `gorm:"size:200;not null" json:"name"`
	Description  string         `gorm:"size:500" json:"description"`
	PriceMonthly float64        `json:"price_monthly"`
	AllowedTerms string         `gorm:"size:200;not null" json:"allowed_terms"` // month counts: 1,3,6,12,24
	IsActive     bool           `gorm:"default:true" json:"is_active"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

// TermList parses the comma-separated AllowedTerms column.
func (c *ContractType) TermList() []int {
	var terms []int
	for _, part := range strings.Split(c.AllowedTerms, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if n, err := strconv.Atoi(part); err == nil && n > 0 {
			terms = append(terms, n)
		}
	}
	return terms
}

// AllowsTerm reports whether months is an allowed term for this contract type.
func (c *ContractType) AllowsTerm(months int) bool {
	for _, t := range c.TermList() {
		if t == months {
			return true
		}
	}
	return false
}

// Membership is one dated contract instance of a member.
//
// EndDate always holds the adjusted contract end: a suspension extension is
// already folded in. SuspensionUntil records only the requested resume date
// and is set exclusively by suspend and cleared exclusively by reactivate.
type Membership struct {
	ID               uint             `gorm:"primaryKey" json:"id"`
	MemberID         uint             `gorm:"index;not null" json:"member_id"`
	ContractTypeID   uint             `gorm:"index;not null" json:"contract_type_id"`
	ContractType     *ContractType    `gorm:"foreignKey:ContractTypeID" json:"contract_type,omitempty"`
	TermMonths       int              `gorm:"not null" json:"term_months"`
	StartDate        time.Time        `gorm:"not null" json:"start_date"`
	EndDate          time.Time        `gorm:"not null" json:"end_date"`
	Status           MembershipStatus `gorm:"size:20;not null" json:"status"`
	PredecessorID    *uint            `json:"predecessor_id"`
	SuspensionUntil  *time.Time       `json:"suspension_until"`
	SuspensionReason string           `gorm:"size:500" json:"suspension_reason,omitempty"`
	CancellationMode CancellationMode `gorm:"size:20" json:"cancellation_mode,omitempty"`
	CreatedAt        time.Time        `json:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at"`
}

// EffectiveStatus derives the state as of today without mutating the record.
// A stored Planned membership whose start date has arrived reads as Active;
// an Active (or started Planned) one past its end date reads as Completed.
func (m *Membership) EffectiveStatus(today time.Time) MembershipStatus {
	switch m.Status {
	case StatusPlanned:
		if m.StartDate.After(today) {
			return StatusPlanned
		}
		if today.After(m.EndDate) {
			return StatusCompleted
		}
		return StatusActive
	case StatusActive:
		if today.After(m.EndDate) {
			return StatusCompleted
		}
		return StatusActive
	default:
		return m.Status
	}
}

// Clone returns a deep copy of the member aggregate. Lifecycle operations
// work on a clone so a failed or rejected operation leaves the original
// collection untouched.
func (m *Member) Clone() *Member {
	clone := *m
	clone.Memberships = make([]Membership, len(m.Memberships))
	for i, ms := range m.Memberships {
		c := ms
		if ms.PredecessorID != nil {
			id := *ms.PredecessorID
			c.PredecessorID = &id
		}
		if ms.SuspensionUntil != nil {
			d := *ms.SuspensionUntil
			c.SuspensionUntil = &d
		}
		clone.Memberships[i] = c
	}
	return &clone
}

// FindMembership returns the membership with the given ID, or nil.
func (m *Member) FindMembership(id uint) *Membership {
	for i := range m.Memberships {
		if m.Memberships[i].ID == id {
			return &m.Memberships[i]
		}
	}
	return nil
}

// FullName returns the member's display name.
func (m *Member) FullName() string {
	return strings.TrimSpace(m.FirstName + " " + m.LastName)
}

func (Member) TableName() string       { return "members" }
func (ContractType) TableName() string { return "contract_types" }
func (Membership) TableName() string   { return "memberships" }
