package leave

import (
	"time"
)

// Policy holds the leave rules. Anchor is an offset from 00:00 UTC of the
// leave's start date; every request window is measured against it.
type Policy struct {
	Anchor            time.Duration
	SickWindowOpen    time.Duration // earliest request: anchor - SickWindowOpen
	SickWindowClose   time.Duration // latest request: anchor - SickWindowClose
	CasualNotice      time.Duration
	AnnualNotice      time.Duration
	MaxDaysPerRequest int
	Quotas            map[Type]int // missing type means unlimited
	WorkDays          []time.Weekday
}

func DefaultPolicy() Policy {
	return Policy{
		Anchor:            10 * time.Hour,
		SickWindowOpen:    12 * time.Hour,
		SickWindowClose:   2 * time.Hour,
		CasualNotice:      12 * time.Hour,
		AnnualNotice:      7 * 24 * time.Hour,
		MaxDaysPerRequest: 14,
		Quotas: map[Type]int{
			TypeSick:   12,
			TypeCasual: 10,
			TypeAnnual: 15,
		},
		WorkDays: []time.Weekday{time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday},
	}
}

// Date truncates t to its UTC calendar date.
func Date(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// AnchorOn returns the anchor instant of a calendar date.
func (p Policy) AnchorOn(date time.Time) time.Time {
	return Date(date).Add(p.Anchor)
}

// SickWindow returns the closed interval in which sick leave starting on
// date may be requested.
func (p Policy) SickWindow(date time.Time) (opens, closes time.Time) {
	anchor := p.AnchorOn(date)
	return anchor.Add(-p.SickWindowOpen), anchor.Add(-p.SickWindowClose)
}

// CheckTiming validates when a request for a leave starting on start is made.
func (p Policy) CheckTiming(leaveType Type, start, now time.Time) error {
	anchor := p.AnchorOn(start)

	switch leaveType {
	case TypeSick:
		opens, closes := p.SickWindow(start)
		if now.Before(opens) {
			return ErrSickWindowNotOpen
		}
		if now.After(closes) {
			return ErrSickWindowClosed
		}
	case TypeAnnual:
		if anchor.Sub(now) < p.AnnualNotice {
			return ErrInsufficientNotice
		}
	default:
		if anchor.Sub(now) < p.CasualNotice {
			return ErrInsufficientNotice
		}
	}
	return nil
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

// WorkingDates lists the working days between start and end inclusive.
func (p Policy) WorkingDates(start, end time.Time) []time.Time {
	var dates []time.Time
	for d := Date(start); !d.After(Date(end)); d = d.AddDate(0, 0, 1) {
		if p.IsWorkDay(d) {
			dates = append(dates, d)
		}
	}
	return dates
}

// Quota returns the yearly allowance of a type; ok is false when unlimited.
func (p Policy) Quota(leaveType Type) (quota int, ok bool) {
	quota, ok = p.Quotas[leaveType]
	return quota, ok
}
