package services

import (
	"time"

	"github.com/xife12/membercore/internal/models"
	"github.com/xife12/membercore/internal/utils"
)

// LifecycleEngine applies the five mutating contract operations to a member
// aggregate. It is pure: every operation works on a deep copy of the member,
// performs no I/O, and either returns the next aggregate state, an
// OverlapConflict awaiting confirmation, or an error with zero mutation.
//
// "Today" is captured once at construction so a single operation cannot
// straddle a date boundary.
type LifecycleEngine struct {
	today time.Time
}

func NewLifecycleEngine(today time.Time) *LifecycleEngine {
	return &LifecycleEngine{today: utils.DateOnly(today)}
}

// LifecycleOutcome is the result of a lifecycle operation. Exactly one of
// the two fields is set: Member on success, Conflict when the operation is
// paused pending explicit overlap confirmation.
type LifecycleOutcome struct {
	Member   *models.Member
	Conflict *OverlapConflict
}

type AddMembershipRequest struct {
	ContractTypeID uint   `json:"contract_type_id" binding:"required"`
	TermMonths     int    `json:"term_months" binding:"required"`
	StartDate      string `json:"start_date" binding:"required"`
	ConfirmOverlap bool   `json:"confirm_overlap"`
}

type ExtendMembershipRequest struct {
	ContractTypeID uint   `json:"contract_type_id" binding:"required"`
	TermMonths     int    `json:"term_months" binding:"required"`
	StartDate      string `json:"start_date" binding:"required"`
	ConfirmOverlap bool   `json:"confirm_overlap"`
}

type CancelMembershipRequest struct {
	Mode       string `json:"mode" binding:"required"` // immediate, custom, regular
	CustomDate string `json:"custom_date"`
}

type SuspendMembershipRequest struct {
	SuspendUntil string `json:"suspend_until"`
	Reason       string `json:"reason"`
}

// Add creates a new membership for the member. When the requested period
// collides with the current-or-planned membership, the operation pauses and
// returns a conflict unless the request carries ConfirmOverlap; confirmation
// truncates the incumbent to end the day before the new period starts.
func (e *LifecycleEngine) Add(member *models.Member, ct *models.ContractType, req *AddMembershipRequest) (*LifecycleOutcome, error) {
	start, end, err := e.validateNewPeriod(ct, req.TermMonths, req.StartDate)
	if err != nil {
		return nil, err
	}

	incumbent := findIncumbent(member.Memberships, e.today)
	if overlapsIncumbent(incumbent, start) {
		if !req.ConfirmOverlap {
			return &LifecycleOutcome{Conflict: newOverlapConflict(incumbent, start, end)}, nil
		}
		if !start.After(incumbent.StartDate) {
			return nil, newTemporalError("new start %s would leave membership %d without a single contract day",
				utils.FormatDate(start), incumbent.ID)
		}
	}

	next := member.Clone()
	if overlapsIncumbent(incumbent, start) {
		truncateBefore(next.FindMembership(incumbent.ID), start)
	}
	next.Memberships = append(next.Memberships, e.newMembership(member.ID, ct, req.TermMonths, start, end, nil))

	return &LifecycleOutcome{Member: next}, nil
}

// Extend chains a new membership off an existing one. Independent of any
// overlap confirmation, the predecessor is always shortened so the two
// periods abut; its status is left alone, completion stays a read-time fact.
func (e *LifecycleEngine) Extend(member *models.Member, ct *models.ContractType, membershipID uint, req *ExtendMembershipRequest) (*LifecycleOutcome, error) {
	predecessor := member.FindMembership(membershipID)
	if predecessor == nil {
		return nil, &NotFoundError{Resource: "membership", ID: membershipID}
	}

	start, end, err := e.validateNewPeriod(ct, req.TermMonths, req.StartDate)
	if err != nil {
		return nil, err
	}
	if !start.After(predecessor.StartDate) {
		return nil, newTemporalError("extension start %s must lie after the predecessor's start %s",
			utils.FormatDate(start), utils.FormatDate(predecessor.StartDate))
	}

	incumbent := findIncumbent(member.Memberships, e.today)
	if overlapsIncumbent(incumbent, start) && !req.ConfirmOverlap {
		return &LifecycleOutcome{Conflict: newOverlapConflict(incumbent, start, end)}, nil
	}

	next := member.Clone()
	if overlapsIncumbent(incumbent, start) && incumbent.ID != membershipID {
		if !start.After(incumbent.StartDate) {
			return nil, newTemporalError("new start %s would leave membership %d without a single contract day",
				utils.FormatDate(start), incumbent.ID)
		}
		truncateBefore(next.FindMembership(incumbent.ID), start)
	}
	truncateBefore(next.FindMembership(membershipID), start)

	predID := membershipID
	next.Memberships = append(next.Memberships, e.newMembership(member.ID, ct, req.TermMonths, start, end, &predID))

	return &LifecycleOutcome{Member: next}, nil
}

// Cancel terminates a planned or active membership in one of three modes:
// immediate (end today), custom (end on a chosen future date) or regular
// (keep the contractual end date).
func (e *LifecycleEngine) Cancel(member *models.Member, membershipID uint, req *CancelMembershipRequest) (*LifecycleOutcome, error) {
	mode := models.CancellationMode(req.Mode)
	if !mode.IsValid() {
		return nil, newValidationError("mode", "must be one of immediate, custom, regular")
	}

	target := member.FindMembership(membershipID)
	if target == nil {
		return nil, &NotFoundError{Resource: "membership", ID: membershipID}
	}
	switch status := target.EffectiveStatus(e.today); status {
	case models.StatusPlanned, models.StatusActive:
	default:
		return nil, newValidationError("status", "cannot cancel a %s membership", status)
	}

	end := target.EndDate
	switch mode {
	case models.CancelImmediate:
		end = e.today
	case models.CancelCustom:
		if req.CustomDate == "" {
			return nil, newValidationError("custom_date", "required for custom cancellation")
		}
		customDate, err := utils.ParseDate(req.CustomDate)
		if err != nil {
			return nil, newValidationError("custom_date", "%v", err)
		}
		if customDate.Before(e.today) {
			return nil, newValidationError("custom_date", "must not lie in the past")
		}
		end = customDate
	case models.CancelRegular:
		// contractual end date stands
	}

	// Cancelling a planned membership before its start collapses the term
	// to a single day rather than inverting the interval.
	if end.Before(target.StartDate) {
		end = target.StartDate
	}

	next := member.Clone()
	m := next.FindMembership(membershipID)
	m.EndDate = end
	m.Status = models.StatusCancelled
	m.CancellationMode = mode

	return &LifecycleOutcome{Member: next}, nil
}

// Suspend pauses an active membership until the requested resume date and
// pushes the contract end out by the granted suspension span. The resume
// date is recorded separately from the adjusted end date.
func (e *LifecycleEngine) Suspend(member *models.Member, membershipID uint, req *SuspendMembershipRequest) (*LifecycleOutcome, error) {
	target := member.FindMembership(membershipID)
	if target == nil {
		return nil, &NotFoundError{Resource: "membership", ID: membershipID}
	}
	if status := target.EffectiveStatus(e.today); status != models.StatusActive {
		return nil, newValidationError("status", "only an active membership can be suspended, got %s", status)
	}
	if req.SuspendUntil == "" {
		return nil, newValidationError("suspend_until", "required")
	}
	until, err := utils.ParseDate(req.SuspendUntil)
	if err != nil {
		return nil, newValidationError("suspend_until", "%v", err)
	}

	next := member.Clone()
	m := next.FindMembership(membershipID)
	m.EndDate = extendForSuspension(m.EndDate, e.today, until)
	m.Status = models.StatusSuspended
	m.SuspensionUntil = &until
	m.SuspensionReason = req.Reason

	return &LifecycleOutcome{Member: next}, nil
}

// Reactivate resumes a suspended membership. Suspension time not yet
// consumed (resume date still ahead) is handed back by pulling the contract
// end in again; a fully elapsed suspension changes no dates.
func (e *LifecycleEngine) Reactivate(member *models.Member, membershipID uint) (*LifecycleOutcome, error) {
	target := member.FindMembership(membershipID)
	if target == nil {
		return nil, &NotFoundError{Resource: "membership", ID: membershipID}
	}
	if target.Status != models.StatusSuspended {
		return nil, newValidationError("status", "only a suspended membership can be reactivated, got %s", target.Status)
	}

	next := member.Clone()
	m := next.FindMembership(membershipID)
	if m.SuspensionUntil != nil {
		m.EndDate = restoreOnReactivation(m.EndDate, e.today, *m.SuspensionUntil)
	}
	m.Status = models.StatusActive
	m.SuspensionUntil = nil
	m.SuspensionReason = ""

	return &LifecycleOutcome{Member: next}, nil
}

// validateNewPeriod checks the contract type / term pairing and computes the
// calendar period: the end is start plus the term in months, stepped back a
// day so back-to-back contracts do not share a day.
func (e *LifecycleEngine) validateNewPeriod(ct *models.ContractType, termMonths int, startDate string) (start, end time.Time, err error) {
	if ct == nil {
		return start, end, newValidationError("contract_type_id", "unknown contract type")
	}
	if termMonths <= 0 {
		return start, end, newValidationError("term_months", "must be positive")
	}
	if !ct.AllowsTerm(termMonths) {
		return start, end, newValidationError("term_months", "contract type %q does not allow a %d month term", ct.Name, termMonths)
	}
	if startDate == "" {
		return start, end, newValidationError("start_date", "required")
	}
	start, perr := utils.ParseDate(startDate)
	if perr != nil {
		return start, end, newValidationError("start_date", "%v", perr)
	}

	end = utils.AddDays(utils.AddMonths(start, termMonths), -1)
	if end.Before(start) {
		return start, end, newTemporalError("computed end %s lies before start %s",
			utils.FormatDate(end), utils.FormatDate(start))
	}
	return start, end, nil
}

func (e *LifecycleEngine) newMembership(memberID uint, ct *models.ContractType, termMonths int, start, end time.Time, predecessorID *uint) models.Membership {
	status := models.StatusActive
	if start.After(e.today) {
		status = models.StatusPlanned
	}
	return models.Membership{
		MemberID:       memberID,
		ContractTypeID: ct.ID,
		TermMonths:     termMonths,
		StartDate:      start,
		EndDate:        end,
		Status:         status,
		PredecessorID:  predecessorID,
	}
}
