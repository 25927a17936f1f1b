package services

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/xife12/membercore/internal/models"
	"github.com/xife12/membercore/internal/utils"
)

var testToday = utils.Date(2024, time.June, 15)

func testContractType() *models.ContractType {
	return &models.ContractType{ID: 1, Name: "Premium", AllowedTerms: "6,12,24"}
}

func activeMember(endDate time.Time) *models.Member {
	return &models.Member{
		ID: 1,
		Memberships: []models.Membership{
			{
				ID:             10,
				MemberID:       1,
				ContractTypeID: 1,
				TermMonths:     12,
				StartDate:      utils.Date(2023, time.July, 1),
				EndDate:        endDate,
				Status:         models.StatusActive,
			},
		},
	}
}

func TestAdd_NoIncumbent_FutureStart(t *testing.T) {
	engine := NewLifecycleEngine(testToday)
	member := &models.Member{ID: 1}

	outcome, err := engine.Add(member, testContractType(), &AddMembershipRequest{
		ContractTypeID: 1,
		TermMonths:     12,
		StartDate:      "2024-07-15", // today + 30
	})
	if err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	if outcome.Conflict != nil {
		t.Fatal("no incumbent exists, no overlap check should fire")
	}

	if len(outcome.Member.Memberships) != 1 {
		t.Fatalf("expected 1 membership, got %d", len(outcome.Member.Memberships))
	}
	m := outcome.Member.Memberships[0]
	if m.Status != models.StatusPlanned {
		t.Errorf("future start must yield planned status, got %q", m.Status)
	}
	if utils.FormatDate(m.EndDate) != "2025-07-14" {
		t.Errorf("12-month end = %s, expected 2025-07-14", utils.FormatDate(m.EndDate))
	}
	if m.PredecessorID != nil {
		t.Error("add must not set a predecessor")
	}
}

func TestAdd_StartTodayIsActive(t *testing.T) {
	engine := NewLifecycleEngine(testToday)
	member := &models.Member{ID: 1}

	outcome, err := engine.Add(member, testContractType(), &AddMembershipRequest{
		ContractTypeID: 1,
		TermMonths:     6,
		StartDate:      "2024-06-15",
	})
	if err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	if got := outcome.Member.Memberships[0].Status; got != models.StatusActive {
		t.Errorf("start today must yield active status, got %q", got)
	}
}

func TestAdd_OverlapConflict_NotConfirmed(t *testing.T) {
	engine := NewLifecycleEngine(testToday)
	member := activeMember(utils.Date(2024, time.June, 30))
	snapshot := member.Clone()

	outcome, err := engine.Add(member, testContractType(), &AddMembershipRequest{
		ContractTypeID: 1,
		TermMonths:     12,
		StartDate:      "2024-06-20",
	})
	if err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	if outcome.Conflict == nil {
		t.Fatal("start before incumbent end must produce a conflict")
	}
	if outcome.Member != nil {
		t.Error("a paused operation must not return an updated aggregate")
	}

	c := outcome.Conflict
	if c.Token == "" {
		t.Error("conflict must carry a pending-intent token")
	}
	if c.IncumbentID != 10 {
		t.Errorf("IncumbentID = %d, expected 10", c.IncumbentID)
	}
	if c.TruncatedEndDate != "2024-06-19" {
		t.Errorf("TruncatedEndDate = %s, expected 2024-06-19", c.TruncatedEndDate)
	}

	if !reflect.DeepEqual(member.Memberships, snapshot.Memberships) {
		t.Error("an unconfirmed conflict must leave the aggregate untouched")
	}
}

func TestAdd_OverlapConfirmed_TruncatesIncumbent(t *testing.T) {
	engine := NewLifecycleEngine(testToday)
	member := activeMember(utils.Date(2024, time.June, 30))

	outcome, err := engine.Add(member, testContractType(), &AddMembershipRequest{
		ContractTypeID: 1,
		TermMonths:     12,
		StartDate:      "2024-06-20",
		ConfirmOverlap: true,
	})
	if err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	if outcome.Conflict != nil {
		t.Fatal("confirmed overlap must not pause again")
	}

	incumbent := outcome.Member.FindMembership(10)
	if utils.FormatDate(incumbent.EndDate) != "2024-06-19" {
		t.Errorf("incumbent end = %s, expected 2024-06-19", utils.FormatDate(incumbent.EndDate))
	}
	if incumbent.Status != models.StatusActive {
		t.Errorf("truncation must not change the incumbent status, got %q", incumbent.Status)
	}

	// The source member is still untouched: operations are copy-on-write.
	if utils.FormatDate(member.Memberships[0].EndDate) != "2024-06-30" {
		t.Error("input aggregate must not be mutated")
	}
}

func TestAdd_StartOnIncumbentEnd_Overlaps(t *testing.T) {
	engine := NewLifecycleEngine(testToday)
	member := activeMember(utils.Date(2024, time.June, 30))

	outcome, err := engine.Add(member, testContractType(), &AddMembershipRequest{
		ContractTypeID: 1,
		TermMonths:     6,
		StartDate:      "2024-06-30",
	})
	if err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	if outcome.Conflict == nil {
		t.Error("starting on the incumbent's last day is an overlap")
	}
}

func TestAdd_DayAfterIncumbentEnd_NoConflict(t *testing.T) {
	engine := NewLifecycleEngine(testToday)
	member := activeMember(utils.Date(2024, time.June, 30))

	outcome, err := engine.Add(member, testContractType(), &AddMembershipRequest{
		ContractTypeID: 1,
		TermMonths:     6,
		StartDate:      "2024-07-01",
	})
	if err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	if outcome.Conflict != nil {
		t.Error("starting the day after the incumbent ends must not conflict")
	}
}

func TestAdd_ValidationErrors(t *testing.T) {
	engine := NewLifecycleEngine(testToday)
	member := &models.Member{ID: 1}
	ct := testContractType()

	tests := []struct {
		name string
		req  *AddMembershipRequest
	}{
		{"missing start date", &AddMembershipRequest{ContractTypeID: 1, TermMonths: 12}},
		{"malformed start date", &AddMembershipRequest{ContractTypeID: 1, TermMonths: 12, StartDate: "20.06.2024"}},
		{"term not allowed", &AddMembershipRequest{ContractTypeID: 1, TermMonths: 5, StartDate: "2024-07-01"}},
		{"zero term", &AddMembershipRequest{ContractTypeID: 1, TermMonths: 0, StartDate: "2024-07-01"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := engine.Add(member, ct, tt.req)
			var ve *ValidationError
			if !errors.As(err, &ve) {
				t.Errorf("expected ValidationError, got %v", err)
			}
		})
	}
}

func TestExtend_ConfirmedOverlap(t *testing.T) {
	// Active membership ending 2024-06-30, extension starting 2024-05-01
	// with a 12-month term.
	engine := NewLifecycleEngine(testToday)
	member := activeMember(utils.Date(2024, time.June, 30))

	req := &ExtendMembershipRequest{ContractTypeID: 1, TermMonths: 12, StartDate: "2024-05-01"}

	outcome, err := engine.Extend(member, testContractType(), 10, req)
	if err != nil {
		t.Fatalf("Extend() error = %v", err)
	}
	if outcome.Conflict == nil {
		t.Fatal("2024-05-01 <= 2024-06-30 must conflict")
	}

	req.ConfirmOverlap = true
	outcome, err = engine.Extend(member, testContractType(), 10, req)
	if err != nil {
		t.Fatalf("Extend() confirm error = %v", err)
	}

	pred := outcome.Member.FindMembership(10)
	if utils.FormatDate(pred.EndDate) != "2024-04-30" {
		t.Errorf("predecessor end = %s, expected 2024-04-30", utils.FormatDate(pred.EndDate))
	}
	if pred.Status != models.StatusActive {
		t.Errorf("predecessor status must stay active, got %q", pred.Status)
	}

	if len(outcome.Member.Memberships) != 2 {
		t.Fatalf("expected 2 memberships, got %d", len(outcome.Member.Memberships))
	}
	next := outcome.Member.Memberships[1]
	if next.PredecessorID == nil || *next.PredecessorID != 10 {
		t.Error("extension must link back to its predecessor")
	}
	if next.Status != models.StatusActive {
		t.Errorf("start already reached, status = %q, expected active", next.Status)
	}
	if utils.FormatDate(next.EndDate) != "2025-04-30" {
		t.Errorf("new end = %s, expected 2025-04-30", utils.FormatDate(next.EndDate))
	}
}

func TestExtend_NoOverlap_StillAbuts(t *testing.T) {
	// The truncation is unconditional: even a gap between old end and new
	// start is closed so the periods abut.
	engine := NewLifecycleEngine(testToday)
	member := activeMember(utils.Date(2024, time.June, 30))

	outcome, err := engine.Extend(member, testContractType(), 10, &ExtendMembershipRequest{
		ContractTypeID: 1, TermMonths: 12, StartDate: "2024-08-01",
	})
	if err != nil {
		t.Fatalf("Extend() error = %v", err)
	}
	if outcome.Conflict != nil {
		t.Fatal("start after incumbent end must not conflict")
	}

	pred := outcome.Member.FindMembership(10)
	if utils.FormatDate(pred.EndDate) != "2024-07-31" {
		t.Errorf("predecessor end = %s, expected 2024-07-31", utils.FormatDate(pred.EndDate))
	}
}

func TestExtend_UnknownMembership(t *testing.T) {
	engine := NewLifecycleEngine(testToday)
	member := activeMember(utils.Date(2024, time.June, 30))

	_, err := engine.Extend(member, testContractType(), 99, &ExtendMembershipRequest{
		ContractTypeID: 1, TermMonths: 12, StartDate: "2024-08-01",
	})
	var nf *NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
	if nf.Resource != "membership" || nf.ID != 99 {
		t.Errorf("NotFoundError = %+v", nf)
	}
}

func TestCancel_Immediate(t *testing.T) {
	engine := NewLifecycleEngine(testToday)
	member := activeMember(utils.Date(2025, time.June, 30))

	outcome, err := engine.Cancel(member, 10, &CancelMembershipRequest{Mode: "immediate"})
	if err != nil {
		t.Fatalf("Cancel() error = %v", err)
	}

	m := outcome.Member.FindMembership(10)
	if !m.EndDate.Equal(testToday) {
		t.Errorf("immediate cancel end = %s, expected today", utils.FormatDate(m.EndDate))
	}
	if m.Status != models.StatusCancelled {
		t.Errorf("status = %q, expected cancelled", m.Status)
	}
	if m.CancellationMode != models.CancelImmediate {
		t.Errorf("cancellation mode = %q", m.CancellationMode)
	}
}

func TestCancel_Custom(t *testing.T) {
	engine := NewLifecycleEngine(testToday)
	member := activeMember(utils.Date(2025, time.June, 30))

	outcome, err := engine.Cancel(member, 10, &CancelMembershipRequest{
		Mode:       "custom",
		CustomDate: "2024-06-20", // today + 5
	})
	if err != nil {
		t.Fatalf("Cancel() error = %v", err)
	}

	m := outcome.Member.FindMembership(10)
	if utils.FormatDate(m.EndDate) != "2024-06-20" {
		t.Errorf("custom cancel end = %s, expected 2024-06-20", utils.FormatDate(m.EndDate))
	}
	if m.Status != models.StatusCancelled {
		t.Errorf("status = %q, expected cancelled", m.Status)
	}
}

func TestCancel_Custom_MissingDate(t *testing.T) {
	engine := NewLifecycleEngine(testToday)
	member := activeMember(utils.Date(2025, time.June, 30))

	_, err := engine.Cancel(member, 10, &CancelMembershipRequest{Mode: "custom"})
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if ve.Field != "custom_date" {
		t.Errorf("error field = %q, expected custom_date", ve.Field)
	}
}

func TestCancel_Custom_PastDate(t *testing.T) {
	engine := NewLifecycleEngine(testToday)
	member := activeMember(utils.Date(2025, time.June, 30))

	_, err := engine.Cancel(member, 10, &CancelMembershipRequest{
		Mode:       "custom",
		CustomDate: "2024-06-14",
	})
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Errorf("expected ValidationError for past custom date, got %v", err)
	}
}

func TestCancel_Regular_KeepsEndDate(t *testing.T) {
	engine := NewLifecycleEngine(testToday)
	end := utils.Date(2025, time.June, 30)
	member := activeMember(end)

	outcome, err := engine.Cancel(member, 10, &CancelMembershipRequest{Mode: "regular"})
	if err != nil {
		t.Fatalf("Cancel() error = %v", err)
	}

	m := outcome.Member.FindMembership(10)
	if !m.EndDate.Equal(end) {
		t.Errorf("regular cancel must keep the contractual end, got %s", utils.FormatDate(m.EndDate))
	}
	if m.Status != models.StatusCancelled {
		t.Errorf("status = %q, expected cancelled", m.Status)
	}
}

func TestCancel_InvalidMode(t *testing.T) {
	engine := NewLifecycleEngine(testToday)
	member := activeMember(utils.Date(2025, time.June, 30))

	_, err := engine.Cancel(member, 10, &CancelMembershipRequest{Mode: "sometime"})
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Errorf("expected ValidationError for unknown mode, got %v", err)
	}
}

func TestCancel_SuspendedMembershipRejected(t *testing.T) {
	engine := NewLifecycleEngine(testToday)
	member := activeMember(utils.Date(2025, time.June, 30))
	member.Memberships[0].Status = models.StatusSuspended

	_, err := engine.Cancel(member, 10, &CancelMembershipRequest{Mode: "immediate"})
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Errorf("a suspended membership cannot be cancelled directly, got %v", err)
	}
}

func TestCancel_PlannedBeforeStart(t *testing.T) {
	engine := NewLifecycleEngine(testToday)
	member := &models.Member{
		ID: 1,
		Memberships: []models.Membership{
			{
				ID:        10,
				StartDate: utils.Date(2024, time.August, 1),
				EndDate:   utils.Date(2025, time.July, 31),
				Status:    models.StatusPlanned,
			},
		},
	}

	outcome, err := engine.Cancel(member, 10, &CancelMembershipRequest{Mode: "immediate"})
	if err != nil {
		t.Fatalf("Cancel() error = %v", err)
	}

	m := outcome.Member.FindMembership(10)
	if m.Status != models.StatusCancelled {
		t.Errorf("planned membership must be cancellable, status = %q", m.Status)
	}
	if m.EndDate.Before(m.StartDate) {
		t.Error("cancellation must never invert the interval")
	}
}

func TestSuspend_ExtendsEndDate(t *testing.T) {
	// Suspend until today+40 on a membership ending today+10: the end moves
	// to today+50.
	engine := NewLifecycleEngine(testToday)
	member := activeMember(utils.AddDays(testToday, 10))

	outcome, err := engine.Suspend(member, 10, &SuspendMembershipRequest{
		SuspendUntil: utils.FormatDate(utils.AddDays(testToday, 40)),
		Reason:       "injury",
	})
	if err != nil {
		t.Fatalf("Suspend() error = %v", err)
	}

	m := outcome.Member.FindMembership(10)
	if !m.EndDate.Equal(utils.AddDays(testToday, 50)) {
		t.Errorf("end = %s, expected today+50", utils.FormatDate(m.EndDate))
	}
	if m.Status != models.StatusSuspended {
		t.Errorf("status = %q, expected suspended", m.Status)
	}
	if m.SuspensionUntil == nil || !m.SuspensionUntil.Equal(utils.AddDays(testToday, 40)) {
		t.Error("SuspensionUntil must record the requested resume date")
	}
	if m.SuspensionReason != "injury" {
		t.Errorf("reason = %q", m.SuspensionReason)
	}
}

func TestSuspend_PastResumeDate_NoExtension(t *testing.T) {
	engine := NewLifecycleEngine(testToday)
	end := utils.AddDays(testToday, 10)
	member := activeMember(end)

	outcome, err := engine.Suspend(member, 10, &SuspendMembershipRequest{
		SuspendUntil: utils.FormatDate(utils.AddDays(testToday, -3)),
	})
	if err != nil {
		t.Fatalf("Suspend() error = %v", err)
	}

	m := outcome.Member.FindMembership(10)
	if !m.EndDate.Equal(end) {
		t.Error("a resume date in the past must not extend the contract")
	}
	if m.Status != models.StatusSuspended {
		t.Error("the membership is still marked suspended")
	}
}

func TestSuspend_RequiresResumeDate(t *testing.T) {
	engine := NewLifecycleEngine(testToday)
	member := activeMember(utils.AddDays(testToday, 10))

	_, err := engine.Suspend(member, 10, &SuspendMembershipRequest{})
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if ve.Field != "suspend_until" {
		t.Errorf("error field = %q, expected suspend_until", ve.Field)
	}
}

func TestSuspend_RequiresActiveStatus(t *testing.T) {
	engine := NewLifecycleEngine(testToday)
	member := activeMember(utils.AddDays(testToday, 10))
	member.Memberships[0].Status = models.StatusCancelled

	_, err := engine.Suspend(member, 10, &SuspendMembershipRequest{
		SuspendUntil: utils.FormatDate(utils.AddDays(testToday, 40)),
	})
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Errorf("expected ValidationError, got %v", err)
	}
}

func TestReactivate_SameDayRoundTrip(t *testing.T) {
	// Suspend then immediately reactivate: the end date comes back exactly.
	engine := NewLifecycleEngine(testToday)
	originalEnd := utils.AddDays(testToday, 10)
	member := activeMember(originalEnd)

	suspended, err := engine.Suspend(member, 10, &SuspendMembershipRequest{
		SuspendUntil: utils.FormatDate(utils.AddDays(testToday, 40)),
	})
	if err != nil {
		t.Fatalf("Suspend() error = %v", err)
	}

	outcome, err := engine.Reactivate(suspended.Member, 10)
	if err != nil {
		t.Fatalf("Reactivate() error = %v", err)
	}

	m := outcome.Member.FindMembership(10)
	if !m.EndDate.Equal(originalEnd) {
		t.Errorf("round trip end = %s, expected %s",
			utils.FormatDate(m.EndDate), utils.FormatDate(originalEnd))
	}
	if m.Status != models.StatusActive {
		t.Errorf("status = %q, expected active", m.Status)
	}
	if m.SuspensionUntil != nil {
		t.Error("SuspensionUntil must be cleared on reactivation")
	}
	if m.SuspensionReason != "" {
		t.Error("suspension reason must be cleared on reactivation")
	}
}

func TestReactivate_AfterResumeDate_NoRefund(t *testing.T) {
	engine := NewLifecycleEngine(testToday)
	end := utils.AddDays(testToday, 50)
	until := utils.AddDays(testToday, -5) // resume date already passed
	member := activeMember(end)
	member.Memberships[0].Status = models.StatusSuspended
	member.Memberships[0].SuspensionUntil = &until

	outcome, err := engine.Reactivate(member, 10)
	if err != nil {
		t.Fatalf("Reactivate() error = %v", err)
	}

	m := outcome.Member.FindMembership(10)
	if !m.EndDate.Equal(end) {
		t.Error("a fully consumed suspension must not move the end date")
	}
	if m.Status != models.StatusActive {
		t.Errorf("status = %q, expected active", m.Status)
	}
}

func TestReactivate_RequiresSuspendedStatus(t *testing.T) {
	engine := NewLifecycleEngine(testToday)
	member := activeMember(utils.AddDays(testToday, 10))

	_, err := engine.Reactivate(member, 10)
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Errorf("expected ValidationError, got %v", err)
	}
}

func TestOperations_UnknownMembershipID(t *testing.T) {
	engine := NewLifecycleEngine(testToday)
	member := activeMember(utils.AddDays(testToday, 10))

	ops := map[string]func() error{
		"cancel": func() error {
			_, err := engine.Cancel(member, 404, &CancelMembershipRequest{Mode: "regular"})
			return err
		},
		"suspend": func() error {
			_, err := engine.Suspend(member, 404, &SuspendMembershipRequest{SuspendUntil: "2024-08-01"})
			return err
		},
		"reactivate": func() error {
			_, err := engine.Reactivate(member, 404)
			return err
		},
	}

	for name, op := range ops {
		t.Run(name, func(t *testing.T) {
			var nf *NotFoundError
			if !errors.As(op(), &nf) {
				t.Error("expected NotFoundError")
			}
		})
	}
}

func TestOperations_InputNeverMutated(t *testing.T) {
	engine := NewLifecycleEngine(testToday)
	member := activeMember(utils.AddDays(testToday, 10))
	snapshot := member.Clone()

	engine.Cancel(member, 10, &CancelMembershipRequest{Mode: "immediate"})
	engine.Suspend(member, 10, &SuspendMembershipRequest{SuspendUntil: "2024-08-01"})
	engine.Add(member, testContractType(), &AddMembershipRequest{
		ContractTypeID: 1, TermMonths: 12, StartDate: "2024-06-16", ConfirmOverlap: true,
	})

	if !reflect.DeepEqual(member.Memberships, snapshot.Memberships) {
		t.Error("engine operations must be copy-on-write over the aggregate")
	}
}
