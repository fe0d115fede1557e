package memory

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/cmlabs-hris/hris-attendance-bot/internal/domain/attendance"
)

type attendanceRepo struct {
	s *Store
}

func cloneAttendance(a attendance.Attendance) attendance.Attendance {
	a.ClockIns = append([]time.Time(nil), a.ClockIns...)
	a.ClockOuts = append([]time.Time(nil), a.ClockOuts...)
	a.BreakStarts = append([]time.Time(nil), a.BreakStarts...)
	a.BreakEnds = append([]time.Time(nil), a.BreakEnds...)
	return a
}

// joined attaches the employee columns; callers hold s.mu.
func (r *attendanceRepo) joined(a attendance.Attendance) attendance.Attendance {
	a = cloneAttendance(a)
	if emp, ok := r.s.employees[a.EmployeeID]; ok {
		name, userID := emp.DisplayName, emp.UserID
		a.EmployeeName = &name
		a.EmployeeUserID = &userID
	}
	return a
}

func (r *attendanceRepo) Create(ctx context.Context, att attendance.Attendance) (attendance.Attendance, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	workDate := attendance.WorkDate(att.WorkDate)
	for _, existing := range r.s.attendances {
		if existing.EmployeeID == att.EmployeeID && existing.WorkDate.Equal(workDate) {
			return attendance.Attendance{}, ErrDuplicateKey
		}
	}

	now := time.Now().UTC()
	att.WorkDate = workDate
	att.CreatedAt = now
	att.UpdatedAt = now
	r.s.attendances[att.ID] = cloneAttendance(att)
	return r.joined(att), nil
}

func (r *attendanceRepo) GetByID(ctx context.Context, id string, guildID string) (attendance.Attendance, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	att, ok := r.s.attendances[id]
	if !ok || att.GuildID != guildID {
		return attendance.Attendance{}, attendance.ErrAttendanceNotFound
	}
	return r.joined(att), nil
}

func (r *attendanceRepo) GetByEmployeeAndDate(ctx context.Context, employeeID string, workDate time.Time, forUpdate bool) (attendance.Attendance, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	day := attendance.WorkDate(workDate)
	for _, att := range r.s.attendances {
		if att.EmployeeID == employeeID && att.WorkDate.Equal(day) {
			return r.joined(att), nil
		}
	}
	return attendance.Attendance{}, attendance.ErrAttendanceNotFound
}

func (r *attendanceRepo) GetOpenSession(ctx context.Context, employeeID string) (attendance.Attendance, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var (
		latest attendance.Attendance
		found  bool
	)
	for _, att := range r.s.attendances {
		if att.EmployeeID != employeeID || !att.Status.IsOpen() {
			continue
		}
		if !found || att.WorkDate.After(latest.WorkDate) {
			latest, found = att, true
		}
	}
	if !found {
		return attendance.Attendance{}, attendance.ErrAttendanceNotFound
	}
	return r.joined(latest), nil
}

func (r *attendanceRepo) Update(ctx context.Context, att attendance.Attendance) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	existing, ok := r.s.attendances[att.ID]
	if !ok {
		return attendance.ErrAttendanceNotFound
	}

	att.EmployeeID = existing.EmployeeID
	att.GuildID = existing.GuildID
	att.WorkDate = existing.WorkDate
	att.CreatedAt = existing.CreatedAt
	att.UpdatedAt = time.Now().UTC()
	att.EmployeeName, att.EmployeeUserID = nil, nil
	r.s.attendances[att.ID] = cloneAttendance(att)
	return nil
}

func (r *attendanceRepo) List(ctx context.Context, filter attendance.AttendanceFilter) ([]attendance.Attendance, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	match := func(a attendance.Attendance) bool {
		if a.GuildID != filter.GuildID {
			return false
		}
		if filter.EmployeeID != nil && *filter.EmployeeID != "" && a.EmployeeID != *filter.EmployeeID {
			return false
		}
		if filter.UserID != nil && *filter.UserID != "" {
			if emp, ok := r.s.employees[a.EmployeeID]; !ok || emp.UserID != *filter.UserID {
				return false
			}
		}
		day := a.WorkDate.Format("2006-01-02")
		if filter.Date != nil && *filter.Date != "" && day != *filter.Date {
			return false
		}
		if filter.StartDate != nil && *filter.StartDate != "" && day < *filter.StartDate {
			return false
		}
		if filter.EndDate != nil && *filter.EndDate != "" && day > *filter.EndDate {
			return false
		}
		if filter.Status != nil && *filter.Status != "" && string(a.Status) != *filter.Status {
			return false
		}
		if filter.LateOnly && !a.IsLate {
			return false
		}
		return true
	}

	var matched []attendance.Attendance
	for _, a := range r.s.attendances {
		if match(a) {
			matched = append(matched, r.joined(a))
		}
	}

	asc := strings.ToLower(filter.SortOrder) == "asc"
	sort.SliceStable(matched, func(i, j int) bool {
		a, b := matched[i], matched[j]
		var less, equal bool
		switch filter.SortBy {
		case "employee_name":
			less, equal = deref(a.EmployeeName) < deref(b.EmployeeName), deref(a.EmployeeName) == deref(b.EmployeeName)
		case "worked_minutes":
			less, equal = a.WorkedMinutes < b.WorkedMinutes, a.WorkedMinutes == b.WorkedMinutes
		case "status":
			less, equal = a.Status < b.Status, a.Status == b.Status
		default:
			less, equal = a.WorkDate.Before(b.WorkDate), a.WorkDate.Equal(b.WorkDate)
		}
		if equal {
			return a.CreatedAt.After(b.CreatedAt)
		}
		if asc {
			return less
		}
		return !less
	})

	start, end := paginate(filter.Page, filter.Limit, len(matched))
	return matched[start:end], int64(len(matched)), nil
}

func (r *attendanceRepo) listWhere(match func(attendance.Attendance) bool) []attendance.Attendance {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var out []attendance.Attendance
	for _, a := range r.s.attendances {
		if match(a) {
			out = append(out, r.joined(a))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].WorkDate.Equal(out[j].WorkDate) {
			return deref(out[i].EmployeeName) < deref(out[j].EmployeeName)
		}
		return out[i].WorkDate.Before(out[j].WorkDate)
	})
	return out
}

func (r *attendanceRepo) ListOpen(ctx context.Context, guildID string) ([]attendance.Attendance, error) {
	return r.listWhere(func(a attendance.Attendance) bool {
		return a.GuildID == guildID && a.Status.IsOpen()
	}), nil
}

func (r *attendanceRepo) ListStale(ctx context.Context, guildID string, before time.Time) ([]attendance.Attendance, error) {
	cutoff := attendance.WorkDate(before)
	return r.listWhere(func(a attendance.Attendance) bool {
		return a.GuildID == guildID && a.Status.IsOpen() && a.WorkDate.Before(cutoff)
	}), nil
}

func (r *attendanceRepo) ListByDate(ctx context.Context, guildID string, workDate time.Time) ([]attendance.Attendance, error) {
	day := attendance.WorkDate(workDate)
	return r.listWhere(func(a attendance.Attendance) bool {
		return a.GuildID == guildID && a.WorkDate.Equal(day)
	}), nil
}

func (r *attendanceRepo) DeleteLeavePlaceholders(ctx context.Context, leaveRequestID string) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var removed int64
	for id, a := range r.s.attendances {
		if a.Status == attendance.StatusOnLeave && a.LeaveRequestID != nil && *a.LeaveRequestID == leaveRequestID {
			delete(r.s.attendances, id)
			removed++
		}
	}
	return removed, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
