package attendance

import (
	"math"
	"time"
)

// Policy holds the attendance rules of a guild. All clock-of-day values are
// offsets from 00:00 UTC of the work date.
type Policy struct {
	WorkStart          time.Duration
	LateGrace          time.Duration
	BreakAllowance     time.Duration
	RequireScreenShare bool
	ScreenShareStrikes int
	StaleSessionCap    time.Duration
	AbsentAfter        time.Duration
	WorkDays           []time.Weekday
}

func DefaultPolicy() Policy {
	return Policy{
		WorkStart:          4 * time.Hour,
		LateGrace:          10 * time.Minute,
		BreakAllowance:     60 * time.Minute,
		RequireScreenShare: true,
		ScreenShareStrikes: 3,
		StaleSessionCap:    9 * time.Hour,
		AbsentAfter:        4 * time.Hour,
		WorkDays:           []time.Weekday{time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday},
	}
}

// WorkDate truncates t to its UTC calendar date.
func WorkDate(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

func (p Policy) IsWorkDay(date time.Time) bool {
	day := date.UTC().Weekday()
	for _, d := range p.WorkDays {
		if d == day {
			return true
		}
	}
	return false
}

func (p Policy) ScheduledStart(workDate time.Time) time.Time {
	return WorkDate(workDate).Add(p.WorkStart)
}

// LateThreshold is the last instant a first clock-in still counts as on time.
func (p Policy) LateThreshold(workDate time.Time) time.Time {
	return p.ScheduledStart(workDate).Add(p.LateGrace)
}

// Lateness evaluates the first clock-in of a work date. Late means strictly
// after the threshold; minutes are counted from the scheduled start.
func (p Policy) Lateness(firstClockIn time.Time) (bool, int) {
	workDate := WorkDate(firstClockIn)
	if !p.IsWorkDay(workDate) {
		return false, 0
	}
	if !firstClockIn.After(p.LateThreshold(workDate)) {
		return false, 0
	}
	minutes := int(math.Floor(firstClockIn.Sub(p.ScheduledStart(workDate)).Minutes()))
	return true, minutes
}

// AbsentCutoff is when a work date without any record counts as an absence.
func (p Policy) AbsentCutoff(workDate time.Time) time.Time {
	return p.ScheduledStart(workDate).Add(p.AbsentAfter)
}

// StaleClosure picks the clock-out to stamp on a session nobody closed: the
// last clock-in plus the session cap, but never past the end of its work date.
func (p Policy) StaleClosure(a Attendance) time.Time {
	endOfDay := WorkDate(a.WorkDate).Add(24 * time.Hour)
	last := a.LastClockIn()
	if last == nil {
		return endOfDay
	}
	closeAt := last.Add(p.StaleSessionCap)
	if closeAt.After(endOfDay) {
		closeAt = endOfDay
	}
	if closeAt.Before(*last) {
		closeAt = *last
	}
	return closeAt
}

// BreakExceeded reports whether the day's breaks went over the allowance.
func (p Policy) BreakExceeded(a Attendance, now time.Time) bool {
	if p.BreakAllowance <= 0 {
		return false
	}
	return a.BreakDuration(now) > p.BreakAllowance
}
