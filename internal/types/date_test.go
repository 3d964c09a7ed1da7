package types

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestToCivilDate(t *testing.T) {
	loc := time.UTC

	t.Run("calendar string", func(t *testing.T) {
		d, err := ToCivilDate("2024-03-01", loc)
		assert.NoError(t, err)
		assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, loc), d)
	})

	t.Run("rfc3339 string keeps civil date", func(t *testing.T) {
		d, err := ToCivilDate("2024-03-01T18:45:00Z", loc)
		assert.NoError(t, err)
		assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, loc), d)
	})

	t.Run("time value truncated", func(t *testing.T) {
		d, err := ToCivilDate(time.Date(2024, 3, 1, 23, 59, 59, 0, loc), loc)
		assert.NoError(t, err)
		assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, loc), d)
	})

	t.Run("epoch seconds", func(t *testing.T) {
		d, err := ToCivilDate(int64(1709251200), loc) // 2024-03-01T00:00:00Z
		assert.NoError(t, err)
		assert.Equal(t, "2024-03-01", d.Format(CivilDateLayout))
	})

	t.Run("epoch milliseconds", func(t *testing.T) {
		d, err := ToCivilDate(int64(1709251200000), loc)
		assert.NoError(t, err)
		assert.Equal(t, "2024-03-01", d.Format(CivilDateLayout))
	})

	t.Run("nil fails", func(t *testing.T) {
		_, err := ToCivilDate(nil, loc)
		assert.Error(t, err)
	})

	t.Run("garbage string fails", func(t *testing.T) {
		_, err := ToCivilDate("next tuesday", loc)
		assert.Error(t, err)
	})
}

func TestIsBeforeDay(t *testing.T) {
	loc := time.UTC
	endOfFeb := time.Date(2024, 2, 29, 23, 0, 0, 0, loc)
	startOfMar := time.Date(2024, 3, 1, 0, 30, 0, 0, loc)

	assert.True(t, IsBeforeDay(endOfFeb, startOfMar, loc))
	// same civil day is not strictly before
	assert.False(t, IsBeforeDay(startOfMar, startOfMar.Add(12*time.Hour), loc))
}

func TestDaysBetween(t *testing.T) {
	loc := time.UTC
	a := time.Date(2024, 3, 1, 10, 0, 0, 0, loc)
	b := time.Date(2024, 3, 31, 2, 0, 0, 0, loc)

	assert.Equal(t, 30, DaysBetween(a, b, loc))
	assert.Equal(t, -30, DaysBetween(b, a, loc))
}

func TestNextPeriodEnd(t *testing.T) {
	start := time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)

	monthly, err := NextPeriodEnd(start, PaymentFrequencyMonthly, 0)
	assert.NoError(t, err)
	assert.Equal(t, time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC), monthly)

	quarterly, err := NextPeriodEnd(start, PaymentFrequencyQuarterly, 0)
	assert.NoError(t, err)
	assert.Equal(t, time.Date(2024, 4, 30, 0, 0, 0, 0, time.UTC), quarterly)

	custom, err := NextPeriodEnd(start, PaymentFrequencyCustom, 15)
	assert.NoError(t, err)
	assert.Equal(t, time.Date(2024, 2, 15, 0, 0, 0, 0, time.UTC), custom)

	_, err = NextPeriodEnd(start, PaymentFrequencyCustom, 0)
	assert.Error(t, err)
}

func TestRenewalPeriodDays(t *testing.T) {
	loc := time.UTC
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, loc)
	end := time.Date(2024, 1, 31, 0, 0, 0, 0, loc)

	assert.Equal(t, 30, RenewalPeriodDays(start, end, loc))
	// undeterminable durations fall back to the default
	assert.Equal(t, DefaultRenewalDays, RenewalPeriodDays(time.Time{}, end, loc))
	assert.Equal(t, DefaultRenewalDays, RenewalPeriodDays(end, start, loc))
}
