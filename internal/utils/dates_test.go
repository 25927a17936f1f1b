package utils

import (
	"testing"
	"time"
)

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2024-05-01")
	if err != nil {
		t.Fatalf("ParseDate() error = %v", err)
	}
	if d.Year() != 2024 || d.Month() != time.May || d.Day() != 1 {
		t.Errorf("ParseDate() = %v, expected 2024-05-01", d)
	}
	if d.Hour() != 0 || d.Minute() != 0 {
		t.Error("parsed date should have no time-of-day component")
	}
}

func TestParseDate_Invalid(t *testing.T) {
	inputs := []string{"", "2024-13-01", "01.05.2024", "2024-05-01T10:00:00Z", "not-a-date"}
	for _, s := range inputs {
		if _, err := ParseDate(s); err == nil {
			t.Errorf("ParseDate(%q) should return error", s)
		}
	}
}

func TestFormatDate(t *testing.T) {
	d := Date(2024, time.June, 30)
	if got := FormatDate(d); got != "2024-06-30" {
		t.Errorf("FormatDate() = %q, expected %q", got, "2024-06-30")
	}
}

func TestDaysBetween(t *testing.T) {
	tests := []struct {
		name string
		a, b time.Time
		want int
	}{
		{"same day", Date(2024, 5, 1), Date(2024, 5, 1), 0},
		{"one day forward", Date(2024, 5, 1), Date(2024, 5, 2), 1},
		{"negative", Date(2024, 5, 10), Date(2024, 5, 1), -9},
		{"across month", Date(2024, 4, 30), Date(2024, 5, 2), 2},
		{"leap day", Date(2024, 2, 28), Date(2024, 3, 1), 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DaysBetween(tt.a, tt.b); got != tt.want {
				t.Errorf("DaysBetween() = %d, expected %d", got, tt.want)
			}
		})
	}
}

func TestDaysBetween_IgnoresTimeOfDay(t *testing.T) {
	a := time.Date(2024, 5, 1, 23, 59, 0, 0, time.UTC)
	b := time.Date(2024, 5, 2, 0, 1, 0, 0, time.UTC)
	if got := DaysBetween(a, b); got != 1 {
		t.Errorf("DaysBetween() = %d, expected 1", got)
	}
}

func TestAddDays(t *testing.T) {
	d := AddDays(Date(2024, 5, 1), -1)
	if FormatDate(d) != "2024-04-30" {
		t.Errorf("AddDays(-1) = %s, expected 2024-04-30", FormatDate(d))
	}
}

func TestAddMonths_TermEnd(t *testing.T) {
	// Contract end = start + term months - 1 day.
	start := Date(2024, 5, 1)
	end := AddDays(AddMonths(start, 12), -1)
	if FormatDate(end) != "2025-04-30" {
		t.Errorf("12-month term from 2024-05-01 ends %s, expected 2025-04-30", FormatDate(end))
	}
}

func TestPeriodsOverlap(t *testing.T) {
	incumbentEnd := Date(2024, 6, 30)

	if !PeriodsOverlap(Date(2024, 5, 1), incumbentEnd) {
		t.Error("start before incumbent end must overlap")
	}
	// Start on the incumbent's last day is still an overlap.
	if !PeriodsOverlap(Date(2024, 6, 30), incumbentEnd) {
		t.Error("start on incumbent end must overlap")
	}
	if PeriodsOverlap(Date(2024, 7, 1), incumbentEnd) {
		t.Error("start after incumbent end must not overlap")
	}
}

func TestDateOnly(t *testing.T) {
	loc := time.FixedZone("CET", 3600)
	d := DateOnly(time.Date(2024, 5, 1, 18, 30, 12, 0, loc))
	if FormatDate(d) != "2024-05-01" {
		t.Errorf("DateOnly() = %s, expected 2024-05-01", FormatDate(d))
	}
}
