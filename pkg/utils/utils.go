package utils

import (
	"time"

	"github.com/shopspring/decimal"
)

// DueDate calculates when a checkout is due back.
// The due date is the checkout date plus the checkout period (calendar days)
// defined by the material's type.
func DueDate(checkoutDate time.Time, checkoutDays int) time.Time {
	return checkoutDate.AddDate(0, 0, checkoutDays)
}

// DaysLate calculates how many whole days past due a return was.
// Partial days are truncated, matching calendar-day fee assessment.
// Returns 0 when the return is on or before the due date.
func DaysLate(dueDate time.Time, returnDate time.Time) int {
	if !returnDate.After(dueDate) {
		return 0
	}
	return int(returnDate.Sub(dueDate).Hours() / 24)
}

// CalculateLateFee calculates the fee owed for a returned checkout.
// Formula: daysLate * ratePerDay, in exact decimal arithmetic.
// Returns nil when the checkout is still outstanding (returnDate nil)
// or came back on or before the due date. Any later return carries a
// present fee, a zero one within the first day past due.
func CalculateLateFee(checkoutDate time.Time, returnDate *time.Time, checkoutDays int, ratePerDay decimal.Decimal) *decimal.Decimal {
	if returnDate == nil {
		return nil
	}

	dueDate := DueDate(checkoutDate, checkoutDays)
	if !returnDate.After(dueDate) {
		return nil
	}

	fee := ratePerDay.Mul(decimal.NewFromInt(int64(DaysLate(dueDate, *returnDate))))
	return &fee
}
