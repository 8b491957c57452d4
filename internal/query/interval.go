package query

import (
	"errors"
	"fmt"
	"strconv"
	"time"
)

// ErrInvalidClock is returned for clock strings that are not HHMM.
var ErrInvalidClock = errors.New("invalid clock time")

// serviceWindow is an inclusive HHMM range with a fixed headway.
// A zero headway means no service.
type serviceWindow struct {
	start, end int
	minutes    int
}

var (
	weekdayWindows = []serviceWindow{
		{0, 459, 0},
		{530, 659, 10},
		{700, 859, 3},
		{900, 1659, 6},
		{1700, 1959, 4},
		{2000, 2059, 6},
		{2100, 2159, 6},
		{2200, 2359, 10},
	}
	weekendWindows = []serviceWindow{
		{0, 459, 0},
		{530, 659, 10},
		{700, 2059, 6},
		{2100, 2359, 10},
	}
)

// seoul is the line's time zone. Falls back to a fixed +09:00 zone when the
// tz database is unavailable.
var seoul = func() *time.Location {
	loc, err := time.LoadLocation("Asia/Seoul")
	if err != nil {
		return time.FixedZone("KST", 9*60*60)
	}
	return loc
}()

func toMinutes(hhmm int) int {
	return hhmm/100*60 + hhmm%100
}

func parseClock(clock string) (int, error) {
	if len(clock) != 4 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidClock, clock)
	}
	v, err := strconv.Atoi(clock)
	if err != nil || v < 0 || v/100 > 23 || v%100 > 59 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidClock, clock)
	}
	return v, nil
}

// EstimatedIntervalAt returns the scheduled headway in seconds for an HHMM
// clock time. ok is false outside service hours.
func EstimatedIntervalAt(clock string, weekend bool) (seconds int, ok bool, err error) {
	hhmm, err := parseClock(clock)
	if err != nil {
		return 0, false, err
	}
	seconds, ok = intervalFor(hhmm, weekend)
	return seconds, ok, nil
}

// IntervalAt returns the headway in seconds at t, read in Seoul time.
// Saturdays and Sundays use the weekend timetable.
func IntervalAt(t time.Time) (int, bool) {
	t = t.In(seoul)
	return intervalFor(t.Hour()*100+t.Minute(), IsWeekend(t))
}

// IsWeekend reports whether t falls on a Saturday or Sunday in Seoul.
func IsWeekend(t time.Time) bool {
	wd := t.In(seoul).Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// Clock formats t as an HHMM string in Seoul time.
func Clock(t time.Time) string {
	return t.In(seoul).Format("1504")
}

func intervalFor(hhmm int, weekend bool) (int, bool) {
	windows := weekdayWindows
	if weekend {
		windows = weekendWindows
	}

	now := toMinutes(hhmm)
	for _, w := range windows {
		if toMinutes(w.start) <= now && now < toMinutes(w.end)+1 {
			if w.minutes == 0 {
				return 0, false
			}
			return w.minutes * 60, true
		}
	}
	return 0, false
}
