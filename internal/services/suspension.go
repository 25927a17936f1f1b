package services

import (
	"time"

	"github.com/xife12/membercore/internal/utils"
)

// All suspension date arithmetic lives here so the extension applied on
// suspend and the refund applied on reactivate cannot drift apart.

// suspensionExtensionDays is the number of days a suspension pushes the
// contract end out: the span from today to the requested resume date.
// A resume date in the past or today grants no extension.
func suspensionExtensionDays(today, suspendUntil time.Time) int {
	days := utils.DaysBetween(today, suspendUntil)
	if days < 0 {
		return 0
	}
	return days
}

// reactivationRefundDays is the suspension time still "owed" when a member
// returns early: the span from today to the originally requested resume
// date. Once that date has passed, the full suspension was consumed and
// nothing is given back.
func reactivationRefundDays(today, suspensionUntil time.Time) int {
	days := utils.DaysBetween(today, suspensionUntil)
	if days < 0 {
		return 0
	}
	return days
}

// extendForSuspension returns the adjusted contract end when suspending.
func extendForSuspension(endDate, today, suspendUntil time.Time) time.Time {
	return utils.AddDays(endDate, suspensionExtensionDays(today, suspendUntil))
}

// restoreOnReactivation returns the adjusted contract end when reactivating,
// handing back the unconsumed part of the suspension extension.
func restoreOnReactivation(endDate, today, suspensionUntil time.Time) time.Time {
	return utils.AddDays(endDate, -reactivationRefundDays(today, suspensionUntil))
}
