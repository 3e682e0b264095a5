// Package epiweek implements MMWR epidemiological week arithmetic.
//
// An epiweek runs Sunday through Saturday. Week 1 of a year is the week
// containing January 4th, i.e. the first week with at least four days in
// the new year. Years therefore contain 52 or 53 epiweeks. Epiweeks are
// written as YYYYWW integers, e.g. 202015 for the 15th week of 2020.
package epiweek

import "time"

// Week identifies a single epidemiological week.
type Week struct {
	Year int
	Week int
}

// startOfYear returns the Sunday on which epiweek 1 of the given year begins.
func startOfYear(year int) time.Time {
	jan4 := time.Date(year, time.January, 4, 0, 0, 0, 0, time.UTC)
	return jan4.AddDate(0, 0, -int(jan4.Weekday()))
}

// WeeksInYear returns the number of epiweeks in a year, 52 or 53.
func WeeksInYear(year int) int {
	days := int(startOfYear(year+1).Sub(startOfYear(year)).Hours() / 24)
	return days / 7
}

// FromTime returns the epiweek containing the given instant (interpreted in UTC).
func FromTime(t time.Time) Week {
	t = t.UTC()
	d := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)

	year := d.Year()
	if d.Before(startOfYear(year)) {
		year--
	} else if !d.Before(startOfYear(year + 1)) {
		year++
	}

	week := int(d.Sub(startOfYear(year)).Hours()/24)/7 + 1
	return Week{Year: year, Week: week}
}

// FromInt splits a YYYYWW integer into a Week. The second return value is
// false when the week number is outside the year's calendar.
func FromInt(value int) (Week, bool) {
	w := Week{Year: value / 100, Week: value % 100}
	return w, w.Valid()
}

// Int encodes the week as a YYYYWW integer.
func (w Week) Int() int {
	return w.Year*100 + w.Week
}

// Valid reports whether the week number exists in the year's epiweek calendar.
func (w Week) Valid() bool {
	return w.Week >= 1 && w.Week <= WeeksInYear(w.Year)
}

// Start returns the Sunday on which the week begins.
func (w Week) Start() time.Time {
	return startOfYear(w.Year).AddDate(0, 0, 7*(w.Week-1))
}

// Delta returns the number of epiweeks from a to b. The result is positive
// when b is after a, negative when b is before a.
func Delta(a, b Week) int {
	return int(b.Start().Sub(a.Start()).Hours()/24) / 7
}
