package domain

import (
	"time"

	"github.com/xavier-xia-99/delphi-epidata/internal/epiweek"
)

// IsSaneDay reports whether value is an 8-digit YYYYMMDD integer naming a
// real calendar date between 1900 and next year. Anything else, including
// integers with the wrong digit count, is false.
func IsSaneDay(value int) bool {
	if value < 10000000 || value > 99999999 {
		return false
	}
	year, month, day := value/10000, (value/100)%100, value%100
	if year < 1900 || year > clock.Now().Year()+1 {
		return false
	}
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return false
	}
	// Round-trip through time.Date to catch day-of-month overflow
	// (e.g. Feb 30 normalizes to Mar 1 or 2).
	d := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	return d.Year() == year && int(d.Month()) == month && d.Day() == day
}

// IsSaneWeek reports whether value is a 6-digit YYYYWW integer naming a
// real epiweek between 1900 and next year. Week numbers run 1–52 or 1–53
// depending on the year's epiweek calendar.
func IsSaneWeek(value int) bool {
	if value < 100000 || value > 999999 {
		return false
	}
	year := value / 100
	if year < 1900 || year > clock.Now().Year()+1 {
		return false
	}
	_, ok := epiweek.FromInt(value)
	return ok
}

// DayToTime converts a sane YYYYMMDD integer to the UTC midnight it names.
func DayToTime(value int) time.Time {
	return time.Date(value/10000, time.Month((value/100)%100), value%100, 0, 0, 0, 0, time.UTC)
}

// TimeToDay converts a time to its YYYYMMDD integer in UTC.
func TimeToDay(t time.Time) int {
	t = t.UTC()
	return t.Year()*10000 + int(t.Month())*100 + t.Day()
}
