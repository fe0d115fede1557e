package memory

import (
	"context"
	"sort"
	"time"

	"github.com/cmlabs-hris/hris-attendance-bot/internal/domain/leave"
)

type leaveRepo struct {
	s *Store
}

func (r *leaveRepo) joined(lr leave.LeaveRequest) leave.LeaveRequest {
	if emp, ok := r.s.employees[lr.EmployeeID]; ok {
		name, userID := emp.DisplayName, emp.UserID
		lr.EmployeeName = &name
		lr.EmployeeUserID = &userID
	}
	return lr
}

func (r *leaveRepo) Create(ctx context.Context, request leave.LeaveRequest) (leave.LeaveRequest, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	now := time.Now().UTC()
	request.CreatedAt = now
	request.UpdatedAt = now
	r.s.leaves[request.ID] = request
	return r.joined(request), nil
}

func (r *leaveRepo) GetByID(ctx context.Context, id string, guildID string, forUpdate bool) (leave.LeaveRequest, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	lr, ok := r.s.leaves[id]
	if !ok || lr.GuildID != guildID {
		return leave.LeaveRequest{}, leave.ErrLeaveRequestNotFound
	}
	return r.joined(lr), nil
}

func (r *leaveRepo) Update(ctx context.Context, request leave.LeaveRequest) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	existing, ok := r.s.leaves[request.ID]
	if !ok {
		return leave.ErrLeaveRequestNotFound
	}

	existing.Status = request.Status
	existing.DecidedBy = request.DecidedBy
	existing.DecidedAt = request.DecidedAt
	existing.RejectionReason = request.RejectionReason
	existing.CancelledAt = request.CancelledAt
	existing.UpdatedAt = time.Now().UTC()
	r.s.leaves[request.ID] = existing
	return nil
}

func (r *leaveRepo) List(ctx context.Context, filter leave.LeaveFilter) ([]leave.LeaveRequest, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var matched []leave.LeaveRequest
	for _, lr := range r.s.leaves {
		if lr.GuildID != filter.GuildID {
			continue
		}
		if filter.EmployeeID != nil && *filter.EmployeeID != "" && lr.EmployeeID != *filter.EmployeeID {
			continue
		}
		if filter.UserID != nil && *filter.UserID != "" {
			if emp, ok := r.s.employees[lr.EmployeeID]; !ok || emp.UserID != *filter.UserID {
				continue
			}
		}
		if filter.Status != nil && *filter.Status != "" && string(lr.Status) != *filter.Status {
			continue
		}
		if filter.Type != nil && *filter.Type != "" && string(lr.Type) != *filter.Type {
			continue
		}
		matched = append(matched, r.joined(lr))
	}

	sort.SliceStable(matched, func(i, j int) bool {
		if matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].ID > matched[j].ID
		}
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	start, end := paginate(filter.Page, filter.Limit, len(matched))
	return matched[start:end], int64(len(matched)), nil
}

func (r *leaveRepo) HasOverlap(ctx context.Context, employeeID string, start, end time.Time, excludeID string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	start, end = leave.Date(start), leave.Date(end)
	for _, lr := range r.s.leaves {
		if lr.EmployeeID != employeeID || lr.ID == excludeID {
			continue
		}
		if lr.Status != leave.StatusPending && lr.Status != leave.StatusApproved {
			continue
		}
		if !lr.StartDate.After(end) && !lr.EndDate.Before(start) {
			return true, nil
		}
	}
	return false, nil
}

func (r *leaveRepo) SumDays(ctx context.Context, employeeID string, leaveType leave.Type, year int, statuses []leave.Status) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	total := 0
	for _, lr := range r.s.leaves {
		if lr.EmployeeID != employeeID || lr.Type != leaveType || lr.StartDate.Year() != year {
			continue
		}
		for _, st := range statuses {
			if lr.Status == st {
				total += lr.Days
				break
			}
		}
	}
	return total, nil
}
