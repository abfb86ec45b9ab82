package utils

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

var halfDollar = decimal.RequireFromString("0.50")

func day(n int) time.Time {
	return time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, n)
}

func TestDueDate(t *testing.T) {
	assert.Equal(t, day(14), DueDate(day(0), 14))
	assert.Equal(t, day(7), DueDate(day(0), 7))
}

func TestDaysLate(t *testing.T) {
	tests := []struct {
		name       string
		dueDate    time.Time
		returnDate time.Time
		expected   int
	}{
		{
			name:       "returned before due date",
			dueDate:    day(14),
			returnDate: day(10),
			expected:   0,
		},
		{
			name:       "returned on due date",
			dueDate:    day(14),
			returnDate: day(14),
			expected:   0,
		},
		{
			name:       "returned six days late",
			dueDate:    day(14),
			returnDate: day(20),
			expected:   6,
		},
		{
			name:       "partial day truncates",
			dueDate:    day(14),
			returnDate: day(15).Add(23 * time.Hour),
			expected:   1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, DaysLate(tt.dueDate, tt.returnDate))
		})
	}
}

func TestCalculateLateFee(t *testing.T) {
	returned := func(d time.Time) *time.Time {
		return &d
	}

	tests := []struct {
		name         string
		returnDate   *time.Time
		checkoutDays int
		expected     *decimal.Decimal
	}{
		{
			name:         "still outstanding owes nothing yet",
			returnDate:   nil,
			checkoutDays: 14,
			expected:     nil,
		},
		{
			name:         "returned on the due date",
			returnDate:   returned(day(14)),
			checkoutDays: 14,
			expected:     nil,
		},
		{
			name:         "returned early",
			returnDate:   returned(day(3)),
			checkoutDays: 7,
			expected:     nil,
		},
		{
			name:         "returned hours past due owes a present zero fee",
			returnDate:   returned(day(14).Add(time.Hour)),
			checkoutDays: 14,
			expected:     decimalPtr("0.00"),
		},
		{
			name:         "six days late at fifty cents per day",
			returnDate:   returned(day(20)),
			checkoutDays: 14,
			expected:     decimalPtr("3.00"),
		},
		{
			name:         "three days late",
			returnDate:   returned(day(10)),
			checkoutDays: 7,
			expected:     decimalPtr("1.50"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fee := CalculateLateFee(day(0), tt.returnDate, tt.checkoutDays, halfDollar)

			if tt.expected == nil {
				assert.Nil(t, fee)
				return
			}

			if assert.NotNil(t, fee) {
				assert.True(t, fee.Equal(*tt.expected),
					"Expected %v, but got %v", tt.expected, fee)
			}
		})
	}
}

func decimalPtr(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}
