package memory

import (
	"context"
	"sort"
	"time"

	"github.com/cmlabs-hris/hris-attendance-bot/internal/domain/employee"
)

type employeeRepo struct {
	s *Store
}

func (r *employeeRepo) Upsert(ctx context.Context, emp employee.Employee) (employee.Employee, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	now := time.Now().UTC()
	for id, existing := range r.s.employees {
		if existing.GuildID == emp.GuildID && existing.UserID == emp.UserID {
			existing.DisplayName = emp.DisplayName
			existing.Role = emp.Role
			existing.IsActive = emp.IsActive
			existing.UpdatedAt = now
			r.s.employees[id] = existing
			return existing, nil
		}
	}

	emp.CreatedAt = now
	emp.UpdatedAt = now
	r.s.employees[emp.ID] = emp
	return emp, nil
}

func (r *employeeRepo) GetByID(ctx context.Context, id string) (employee.Employee, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	emp, ok := r.s.employees[id]
	if !ok {
		return employee.Employee{}, employee.ErrEmployeeNotFound
	}
	return emp, nil
}

func (r *employeeRepo) GetByUserID(ctx context.Context, guildID, userID string) (employee.Employee, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, emp := range r.s.employees {
		if emp.GuildID == guildID && emp.UserID == userID {
			return emp, nil
		}
	}
	return employee.Employee{}, employee.ErrEmployeeNotFound
}

// LockByID only checks the row exists; WithinTransaction already runs
// transactions one at a time.
func (r *employeeRepo) LockByID(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.employees[id]; !ok {
		return employee.ErrEmployeeNotFound
	}
	return nil
}

func (r *employeeRepo) ListActive(ctx context.Context, guildID string) ([]employee.Employee, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var out []employee.Employee
	for _, emp := range r.s.employees {
		if emp.GuildID == guildID && emp.IsActive {
			out = append(out, emp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DisplayName < out[j].DisplayName })
	return out, nil
}

func (r *employeeRepo) SetActive(ctx context.Context, id string, active bool) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	emp, ok := r.s.employees[id]
	if !ok {
		return employee.ErrEmployeeNotFound
	}
	emp.IsActive = active
	emp.UpdatedAt = time.Now().UTC()
	r.s.employees[id] = emp
	return nil
}
