// Package memory keeps every repository in process memory. It backs service
// tests and mirrors the PostgreSQL repositories' error contracts.
package memory

import (
	"context"
	"errors"
	"sync"

	"github.com/cmlabs-hris/hris-attendance-bot/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-attendance-bot/internal/domain/compliance"
	"github.com/cmlabs-hris/hris-attendance-bot/internal/domain/employee"
	"github.com/cmlabs-hris/hris-attendance-bot/internal/domain/leave"
)

var ErrDuplicateKey = errors.New("duplicate key value violates unique constraint")

type Store struct {
	txMu sync.Mutex // serializes transactions like row locks would
	mu   sync.Mutex

	employees   map[string]employee.Employee
	attendances map[string]attendance.Attendance
	leaves      map[string]leave.LeaveRequest
	events      []compliance.Event
}

func NewStore() *Store {
	return &Store{
		employees:   make(map[string]employee.Employee),
		attendances: make(map[string]attendance.Attendance),
		leaves:      make(map[string]leave.LeaveRequest),
	}
}

type txKey struct{}

// WithinTransaction runs fn exclusively and restores every table when fn
// fails. Nested calls join the outer transaction.
func (s *Store) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if ctx.Value(txKey{}) != nil {
		return fn(ctx)
	}

	s.txMu.Lock()
	defer s.txMu.Unlock()

	snapshot := s.snapshot()
	if err := fn(context.WithValue(ctx, txKey{}, true)); err != nil {
		s.restore(snapshot)
		return err
	}
	return nil
}

type tables struct {
	employees   map[string]employee.Employee
	attendances map[string]attendance.Attendance
	leaves      map[string]leave.LeaveRequest
	events      []compliance.Event
}

func (s *Store) snapshot() tables {
	s.mu.Lock()
	defer s.mu.Unlock()

	t := tables{
		employees:   make(map[string]employee.Employee, len(s.employees)),
		attendances: make(map[string]attendance.Attendance, len(s.attendances)),
		leaves:      make(map[string]leave.LeaveRequest, len(s.leaves)),
		events:      append([]compliance.Event(nil), s.events...),
	}
	for k, v := range s.employees {
		t.employees[k] = v
	}
	for k, v := range s.attendances {
		t.attendances[k] = cloneAttendance(v)
	}
	for k, v := range s.leaves {
		t.leaves[k] = v
	}
	return t
}

func (s *Store) restore(t tables) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.employees = t.employees
	s.attendances = t.attendances
	s.leaves = t.leaves
	s.events = t.events
}

func (s *Store) Employees() employee.EmployeeRepository {
	return &employeeRepo{s: s}
}

func (s *Store) Attendances() attendance.AttendanceRepository {
	return &attendanceRepo{s: s}
}

func (s *Store) LeaveRequests() leave.LeaveRequestRepository {
	return &leaveRepo{s: s}
}

func (s *Store) Compliance() compliance.Repository {
	return &complianceRepo{s: s}
}

// Events returns a copy of every recorded compliance event.
func (s *Store) Events() []compliance.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]compliance.Event(nil), s.events...)
}

func paginate(page, limit, total int) (start, end int) {
	if limit <= 0 {
		limit = 10
	}
	if page < 1 {
		page = 1
	}
	start = (page - 1) * limit
	if start > total {
		start = total
	}
	end = start + limit
	if end > total {
		end = total
	}
	return start, end
}
