package domain_test

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"

	"github.com/xavier-xia-99/delphi-epidata/internal/domain"
)

func freezeClock(t *testing.T) {
	t.Helper()
	domain.SetClock(clockwork.NewFakeClockAt(
		time.Date(2020, time.April, 27, 6, 0, 0, 0, time.UTC),
	))
	t.Cleanup(func() { domain.SetClock(nil) })
}

func TestIsSaneDay(t *testing.T) {
	freezeClock(t)

	assert.True(t, domain.IsSaneDay(20200418))
	assert.True(t, domain.IsSaneDay(20200229)) // 2020 is a leap year
	assert.True(t, domain.IsSaneDay(19000101))

	assert.False(t, domain.IsSaneDay(22222222)) // absurdly far in the future
	assert.False(t, domain.IsSaneDay(20200001)) // month zero
	assert.False(t, domain.IsSaneDay(20200199)) // day 99
	assert.False(t, domain.IsSaneDay(20190229)) // not a leap year
	assert.False(t, domain.IsSaneDay(18991231)) // before 1900
	assert.False(t, domain.IsSaneDay(202015))   // six digits
	assert.False(t, domain.IsSaneDay(0))
	assert.False(t, domain.IsSaneDay(-20200418))
}

func TestIsSaneWeek(t *testing.T) {
	freezeClock(t)

	assert.True(t, domain.IsSaneWeek(202015))
	assert.True(t, domain.IsSaneWeek(202053)) // 2020 has 53 epiweeks

	assert.False(t, domain.IsSaneWeek(222222))   // absurdly far in the future
	assert.False(t, domain.IsSaneWeek(202000))   // week zero
	assert.False(t, domain.IsSaneWeek(202054))   // past the end of 2020
	assert.False(t, domain.IsSaneWeek(201953))   // 2019 has only 52
	assert.False(t, domain.IsSaneWeek(20200418)) // eight digits
	assert.False(t, domain.IsSaneWeek(0))
}

func TestDayTimeRoundTrip(t *testing.T) {
	d := domain.DayToTime(20200408)
	assert.Equal(t, time.Date(2020, time.April, 8, 0, 0, 0, 0, time.UTC), d)
	assert.Equal(t, 20200408, domain.TimeToDay(d))
}
