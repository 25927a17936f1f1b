package services

import (
	"fmt"
	"time"

	"github.com/xife12/membercore/internal/models"
	"github.com/xife12/membercore/internal/utils"
)

// Tier is the remaining-term traffic light shown on the member detail view.
type Tier string

const (
	TierRed    Tier = "red"
	TierYellow Tier = "yellow"
	TierGreen  Tier = "green"
)

// NoticePeriodDays is the fixed cancellation notice window. A membership
// with this many remaining days or fewer is always flagged Red.
const NoticePeriodDays = 30

// RemainingTerm describes how much of an active membership is left.
type RemainingTerm struct {
	Days    int     `json:"days"`
	Percent float64 `json:"percent"`
	Tier    Tier    `json:"tier"`
}

// RemainingDaysTier classifies an Active membership by its remaining term.
// Red when the notice window is reached (days <= 30), Yellow when less than
// half the term remains, Green otherwise. Recomputed on every read, never
// persisted. Only defined for memberships that are effectively Active.
func RemainingDaysTier(m *models.Membership, today time.Time) (*RemainingTerm, error) {
	totalDays := utils.DaysBetween(m.StartDate, m.EndDate)
	if totalDays <= 0 {
		return nil, newTemporalError("membership %d has a non-positive term (%s .. %s)",
			m.ID, utils.FormatDate(m.StartDate), utils.FormatDate(m.EndDate))
	}

	days := utils.DaysBetween(today, m.EndDate)
	percent := float64(days) / float64(totalDays) * 100

	tier := TierGreen
	switch {
	case days <= NoticePeriodDays:
		tier = TierRed
	case percent < 50:
		tier = TierYellow
	}

	return &RemainingTerm{Days: days, Percent: percent, Tier: tier}, nil
}

// RenewalBadge is the derived loyalty label on the member detail view.
//
// The count treats every Cancelled or Completed membership as evidence of a
// prior contract cycle, including one-off cancellations with no successor.
// That is a deliberately coarse heuristic, not a true renewal count.
type RenewalBadge struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// ComputeRenewalBadge counts terminal membership cycles as of today.
func ComputeRenewalBadge(memberships []models.Membership, today time.Time) RenewalBadge {
	count := 0
	for i := range memberships {
		switch memberships[i].EffectiveStatus(today) {
		case models.StatusCompleted, models.StatusCancelled:
			count++
		}
	}

	switch count {
	case 0:
		return RenewalBadge{Label: "New customer", Count: 0}
	case 1:
		return RenewalBadge{Label: "Renewed once", Count: 1}
	default:
		return RenewalBadge{Label: fmt.Sprintf("Renewed %d times", count), Count: count}
	}
}
