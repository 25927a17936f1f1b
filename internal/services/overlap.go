package services

import (
	"time"

	"github.com/google/uuid"
	"github.com/xife12/membercore/internal/models"
	"github.com/xife12/membercore/internal/utils"
)

// OverlapConflict is returned instead of applying a mutation when a new
// membership period intersects the incumbent's. It carries everything the
// caller needs to re-invoke the operation with confirmation, so nothing is
// held in server-side state between the two calls.
type OverlapConflict struct {
	Token              string `json:"token"`
	IncumbentID        uint   `json:"incumbent_id"`
	IncumbentStartDate string `json:"incumbent_start_date"`
	IncumbentEndDate   string `json:"incumbent_end_date"`
	ProposedStartDate  string `json:"proposed_start_date"`
	ProposedEndDate    string `json:"proposed_end_date"`
	TruncatedEndDate   string `json:"truncated_end_date"` // incumbent end after confirmation
}

// findIncumbent returns the member's current-or-planned membership: the
// effectively Active one if present, otherwise the earliest-starting Planned
// one, otherwise nil. Suspended and terminal memberships never qualify.
func findIncumbent(memberships []models.Membership, today time.Time) *models.Membership {
	var planned *models.Membership
	for i := range memberships {
		m := &memberships[i]
		switch m.EffectiveStatus(today) {
		case models.StatusActive:
			return m
		case models.StatusPlanned:
			if planned == nil || m.StartDate.Before(planned.StartDate) {
				planned = m
			}
		}
	}
	return planned
}

// overlapsIncumbent applies the domain's overlap rule: the candidate start
// falling on or before the incumbent's end date is a collision.
func overlapsIncumbent(incumbent *models.Membership, newStart time.Time) bool {
	return incumbent != nil && utils.PeriodsOverlap(newStart, incumbent.EndDate)
}

// newOverlapConflict builds the pending-intent payload for an unconfirmed
// overlap. The incumbent is not touched here.
func newOverlapConflict(incumbent *models.Membership, newStart, newEnd time.Time) *OverlapConflict {
	return &OverlapConflict{
		Token:              uuid.NewString(),
		IncumbentID:        incumbent.ID,
		IncumbentStartDate: utils.FormatDate(incumbent.StartDate),
		IncumbentEndDate:   utils.FormatDate(incumbent.EndDate),
		ProposedStartDate:  utils.FormatDate(newStart),
		ProposedEndDate:    utils.FormatDate(newEnd),
		TruncatedEndDate:   utils.FormatDate(utils.AddDays(newStart, -1)),
	}
}

// truncateBefore shortens a membership so it ends the day before newStart.
// The status is left unchanged: completion remains a read-time derivation.
func truncateBefore(m *models.Membership, newStart time.Time) {
	m.EndDate = utils.AddDays(newStart, -1)
}
