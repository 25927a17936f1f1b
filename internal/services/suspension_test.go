package services

import (
	"testing"

	"github.com/xife12/membercore/internal/utils"
)

func TestSuspensionExtensionDays(t *testing.T) {
	tests := []struct {
		name  string
		until int // days relative to today
		want  int
	}{
		{"resume in 40 days", 40, 40},
		{"resume tomorrow", 1, 1},
		{"resume today", 0, 0},
		{"resume date already past", -5, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			until := utils.AddDays(testToday, tt.until)
			if got := suspensionExtensionDays(testToday, until); got != tt.want {
				t.Errorf("suspensionExtensionDays() = %d, expected %d", got, tt.want)
			}
		})
	}
}

func TestExtendAndRestoreAreInverse(t *testing.T) {
	end := utils.AddDays(testToday, 10)
	until := utils.AddDays(testToday, 40)

	extended := extendForSuspension(end, testToday, until)
	if got := utils.DaysBetween(end, extended); got != 40 {
		t.Fatalf("suspension extended the end by %d days, expected 40", got)
	}

	restored := restoreOnReactivation(extended, testToday, until)
	if !restored.Equal(end) {
		t.Errorf("same-day reactivation must restore the original end, got %s",
			utils.FormatDate(restored))
	}
}

func TestRestoreOnReactivation_PartialConsumption(t *testing.T) {
	// Suspended 2024-06-15 until +40d, end pushed from +10d to +50d.
	// Reactivating 30 days later hands back the remaining 10 days.
	suspendDay := testToday
	until := utils.AddDays(suspendDay, 40)
	extendedEnd := extendForSuspension(utils.AddDays(suspendDay, 10), suspendDay, until)

	reactivateDay := utils.AddDays(suspendDay, 30)
	restored := restoreOnReactivation(extendedEnd, reactivateDay, until)

	if got := utils.DaysBetween(restored, extendedEnd); got != 10 {
		t.Errorf("refund = %d days, expected 10", got)
	}
}

func TestRestoreOnReactivation_FullyConsumed(t *testing.T) {
	until := utils.AddDays(testToday, -1)
	end := utils.AddDays(testToday, 25)

	if got := restoreOnReactivation(end, testToday, until); !got.Equal(end) {
		t.Errorf("an elapsed suspension must not move the end, got %s", utils.FormatDate(got))
	}
}
