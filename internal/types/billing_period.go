package types

import (
	"fmt"
	"time"
)

// DefaultRenewalDays is the fallback period length when a membership's
// original duration cannot be determined.
const DefaultRenewalDays = 30

// NextPeriodEnd calculates the end date of a billing period starting at
// start for the given payment frequency. customDays applies only to
// PaymentFrequencyCustom.
// This leverages AddClampedDate, which properly handles leap years and
// month-boundary issues.
func NextPeriodEnd(start time.Time, freq PaymentFrequency, customDays int) (time.Time, error) {
	switch freq {
	case PaymentFrequencyMonthly:
		return AddClampedDate(start, 0, 1, 0), nil
	case PaymentFrequencyQuarterly:
		return AddClampedDate(start, 0, 3, 0), nil
	case PaymentFrequencyYearly:
		return AddClampedDate(start, 1, 0, 0), nil
	case PaymentFrequencyCustom:
		if customDays <= 0 {
			return start, fmt.Errorf("custom period days must be a positive integer, got %d", customDays)
		}
		return AddClampedDate(start, 0, 0, customDays), nil
	default:
		return start, fmt.Errorf("invalid payment frequency: %s", freq)
	}
}

// RenewalPeriodDays returns the length in days of the period [start, end],
// falling back to DefaultRenewalDays when the stored dates cannot produce a
// positive duration.
func RenewalPeriodDays(start, end time.Time, loc *time.Location) int {
	if start.IsZero() || end.IsZero() {
		return DefaultRenewalDays
	}
	days := DaysBetween(start, end, loc)
	if days <= 0 {
		return DefaultRenewalDays
	}
	return days
}

// AddClampedDate adds the given years, months and days to t, clamping the
// day-of-month to the last valid day of the target month. For example adding
// one month to January 31 lands on February 28/29 rather than March 2/3.
func AddClampedDate(t time.Time, years, months, days int) time.Time {
	y, m, d := t.Date()
	h, min, sec := t.Clock()

	newY := y + years
	newM := time.Month(int(m) + months)

	for newM > 12 {
		newM -= 12
		newY++
	}
	for newM < 1 {
		newM += 12
		newY--
	}

	// Find the last valid day of the new month
	firstOfNextMonth := time.Date(newY, newM+1, 1, 0, 0, 0, 0, t.Location())
	lastDay := firstOfNextMonth.Add(-24 * time.Hour).Day()

	newD := d + days
	if days == 0 && newD > lastDay {
		newD = lastDay
	}

	result := time.Date(newY, newM, newD, h, min, sec, t.Nanosecond(), t.Location())
	return result
}
