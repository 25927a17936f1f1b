package services

import (
	"errors"
	"testing"
	"time"

	"github.com/xife12/membercore/internal/models"
	"github.com/xife12/membercore/internal/utils"
)

func membershipSpanning(totalDays, remainingDays int) *models.Membership {
	end := utils.AddDays(testToday, remainingDays)
	return &models.Membership{
		ID:        1,
		StartDate: utils.AddDays(end, -totalDays),
		EndDate:   end,
		Status:    models.StatusActive,
	}
}

func TestRemainingDaysTier(t *testing.T) {
	tests := []struct {
		name      string
		total     int
		remaining int
		wantTier  Tier
	}{
		{"inside the notice window", 365, 30, TierRed},
		{"one day outside the notice window", 365, 31, TierYellow},
		{"just under half the term left", 100, 49, TierYellow},
		{"exactly half the term left", 100, 50, TierGreen},
		{"most of the term left", 365, 300, TierGreen},
		{"last day", 365, 0, TierRed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := RemainingDaysTier(membershipSpanning(tt.total, tt.remaining), testToday)
			if err != nil {
				t.Fatalf("RemainingDaysTier() error = %v", err)
			}
			if got.Tier != tt.wantTier {
				t.Errorf("tier = %q, expected %q (days=%d percent=%.1f)",
					got.Tier, tt.wantTier, got.Days, got.Percent)
			}
			if got.Days != tt.remaining {
				t.Errorf("days = %d, expected %d", got.Days, tt.remaining)
			}
		})
	}
}

func TestRemainingDaysTier_DegenerateTerm(t *testing.T) {
	m := &models.Membership{
		ID:        1,
		StartDate: testToday,
		EndDate:   utils.AddDays(testToday, -1),
		Status:    models.StatusActive,
	}

	_, err := RemainingDaysTier(m, testToday)
	var te *TemporalError
	if !errors.As(err, &te) {
		t.Fatalf("expected TemporalError for an inverted term, got %v", err)
	}
}

func TestComputeRenewalBadge(t *testing.T) {
	active := models.Membership{
		StartDate: utils.AddDays(testToday, -10),
		EndDate:   utils.AddDays(testToday, 300),
		Status:    models.StatusActive,
	}
	cancelled := models.Membership{
		StartDate: utils.Date(2022, time.January, 1),
		EndDate:   utils.Date(2022, time.June, 30),
		Status:    models.StatusCancelled,
	}
	// Stored as active but long over: effectively completed.
	expired := models.Membership{
		StartDate: utils.Date(2021, time.January, 1),
		EndDate:   utils.Date(2021, time.December, 31),
		Status:    models.StatusActive,
	}

	tests := []struct {
		name        string
		memberships []models.Membership
		wantLabel   string
		wantCount   int
	}{
		{"no history", []models.Membership{active}, "New customer", 0},
		{"one prior cycle", []models.Membership{cancelled, active}, "Renewed once", 1},
		{"two prior cycles", []models.Membership{expired, cancelled, active}, "Renewed 2 times", 2},
		{"no memberships at all", nil, "New customer", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeRenewalBadge(tt.memberships, testToday)
			if got.Label != tt.wantLabel {
				t.Errorf("label = %q, expected %q", got.Label, tt.wantLabel)
			}
			if got.Count != tt.wantCount {
				t.Errorf("count = %d, expected %d", got.Count, tt.wantCount)
			}
		})
	}
}
