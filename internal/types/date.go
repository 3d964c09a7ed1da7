package types

import (
	"fmt"
	"time"
)

// CivilDateLayout is the canonical storage format for calendar dates.
const CivilDateLayout = "2006-01-02"

// dateLayouts are the formats accepted for stored/submitted date values, in
// the order they are attempted.
var dateLayouts = []string{
	CivilDateLayout,
	time.RFC3339,
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"02/01/2006",
}

// ToCivilDate converts a heterogeneous stored date value (calendar string,
// RFC3339 timestamp, time.Time, or epoch seconds/milliseconds) to the civil
// date it falls on in the given location, truncated to midnight.
func ToCivilDate(v interface{}, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}

	switch d := v.(type) {
	case nil:
		return time.Time{}, fmt.Errorf("date value is nil")
	case time.Time:
		return DateOnly(d, loc), nil
	case *time.Time:
		if d == nil {
			return time.Time{}, fmt.Errorf("date value is nil")
		}
		return DateOnly(*d, loc), nil
	case string:
		return ParseCivilDate(d, loc)
	case int64:
		return DateOnly(fromEpoch(d), loc), nil
	case int:
		return DateOnly(fromEpoch(int64(d)), loc), nil
	case float64:
		return DateOnly(fromEpoch(int64(d)), loc), nil
	default:
		return time.Time{}, fmt.Errorf("unsupported date value of type %T", v)
	}
}

// ParseCivilDate parses a date string in any of the accepted layouts and
// truncates it to midnight in the given location.
func ParseCivilDate(s string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	if s == "" {
		return time.Time{}, fmt.Errorf("date string is empty")
	}

	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return DateOnly(t, loc), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date format: %s", s)
}

// fromEpoch interprets an integer as epoch seconds, or epoch milliseconds
// when the magnitude makes seconds implausible.
func fromEpoch(v int64) time.Time {
	// 1e11 seconds is year 5138; anything larger is milliseconds
	if v > 1e11 || v < -1e11 {
		return time.UnixMilli(v).UTC()
	}
	return time.Unix(v, 0).UTC()
}

// DateOnly truncates a timestamp to midnight of its civil date in loc.
func DateOnly(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

// CivilDateKey returns the canonical YYYY-MM-DD key for the civil date of t.
func CivilDateKey(t time.Time, loc *time.Location) string {
	return DateOnly(t, loc).Format(CivilDateLayout)
}

// DaysBetween returns the number of whole calendar days from a to b
// (negative when b is before a). Both are compared date-only.
func DaysBetween(a, b time.Time, loc *time.Location) int {
	da := DateOnly(a, loc)
	db := DateOnly(b, loc)
	return int(db.Sub(da).Hours() / 24)
}

// IsBeforeDay reports whether a's civil date is strictly before b's.
func IsBeforeDay(a, b time.Time, loc *time.Location) bool {
	return DateOnly(a, loc).Before(DateOnly(b, loc))
}
