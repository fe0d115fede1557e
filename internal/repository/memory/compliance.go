package memory

import (
	"context"
	"sort"
	"time"

	"github.com/cmlabs-hris/hris-attendance-bot/internal/domain/compliance"
)

type complianceRepo struct {
	s *Store
}

func (r *complianceRepo) Create(ctx context.Context, event compliance.Event) (compliance.Event, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	event.CreatedAt = time.Now().UTC()
	r.s.events = append(r.s.events, event)
	return event, nil
}

func (r *complianceRepo) ListByEmployee(ctx context.Context, employeeID string, from, to time.Time) ([]compliance.Event, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var out []compliance.Event
	for _, ev := range r.s.events {
		if ev.EmployeeID == employeeID && !ev.OccurredAt.Before(from) && ev.OccurredAt.Before(to) {
			if emp, ok := r.s.employees[ev.EmployeeID]; ok {
				name, userID := emp.DisplayName, emp.UserID
				ev.EmployeeName = &name
				ev.EmployeeUserID = &userID
			}
			out = append(out, ev)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].OccurredAt.After(out[j].OccurredAt) })
	return out, nil
}

func (r *complianceRepo) CountByEmployee(ctx context.Context, guildID string, from, to time.Time) ([]compliance.Count, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	type key struct {
		employeeID string
		kind       compliance.Kind
	}
	totals := make(map[key]int)
	for _, ev := range r.s.events {
		if ev.GuildID == guildID && !ev.OccurredAt.Before(from) && ev.OccurredAt.Before(to) {
			totals[key{ev.EmployeeID, ev.Kind}]++
		}
	}

	var out []compliance.Count
	for k, total := range totals {
		emp := r.s.employees[k.employeeID]
		out = append(out, compliance.Count{
			EmployeeID:   k.employeeID,
			UserID:       emp.UserID,
			EmployeeName: emp.DisplayName,
			Kind:         k.kind,
			Total:        total,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].EmployeeName == out[j].EmployeeName {
			return out[i].Kind < out[j].Kind
		}
		return out[i].EmployeeName < out[j].EmployeeName
	})
	return out, nil
}
