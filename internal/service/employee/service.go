package employee

import (
	"context"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/hris-attendance-bot/internal/domain/employee"
	"github.com/google/uuid"
)

type EmployeeServiceImpl struct {
	employeeRepo employee.EmployeeRepository
}

func NewEmployeeService(employeeRepo employee.EmployeeRepository) employee.EmployeeService {
	return &EmployeeServiceImpl{employeeRepo: employeeRepo}
}

// Register implements employee.EmployeeService.
func (s *EmployeeServiceImpl) Register(ctx context.Context, req employee.RegisterRequest) (employee.EmployeeResponse, error) {
	if err := req.Validate(); err != nil {
		return employee.EmployeeResponse{}, err
	}

	if _, err := s.Authorize(ctx, req.Actor, employee.PermissionEmployeeManage); err != nil {
		return employee.EmployeeResponse{}, err
	}

	existing, err := s.employeeRepo.GetByUserID(ctx, req.Actor.GuildID, req.UserID)
	switch {
	case errors.Is(err, employee.ErrEmployeeNotFound):
		existing = employee.Employee{
			ID:      uuid.Must(uuid.NewV7()).String(),
			GuildID: req.Actor.GuildID,
			UserID:  req.UserID,
			Role:    employee.RoleEmployee,
		}
	case err != nil:
		return employee.EmployeeResponse{}, fmt.Errorf("failed to look up employee: %w", err)
	}

	if req.Role != existing.Role {
		if req.UserID == req.Actor.UserID {
			return employee.EmployeeResponse{}, employee.ErrCannotChangeSelf
		}
		if _, err := s.Authorize(ctx, req.Actor, employee.PermissionRoleAssign); err != nil {
			return employee.EmployeeResponse{}, err
		}
	}

	existing.DisplayName = req.DisplayName
	existing.Role = req.Role
	existing.IsActive = true

	saved, err := s.employeeRepo.Upsert(ctx, existing)
	if err != nil {
		return employee.EmployeeResponse{}, err
	}

	return employee.ToResponse(saved), nil
}

// Deactivate implements employee.EmployeeService.
func (s *EmployeeServiceImpl) Deactivate(ctx context.Context, actor employee.Actor, userID string) error {
	if _, err := s.Authorize(ctx, actor, employee.PermissionEmployeeManage); err != nil {
		return err
	}
	if userID == actor.UserID {
		return employee.ErrCannotChangeSelf
	}

	target, err := s.employeeRepo.GetByUserID(ctx, actor.GuildID, userID)
	if err != nil {
		return err
	}

	return s.employeeRepo.SetActive(ctx, target.ID, false)
}

// Resolve implements employee.EmployeeService.
func (s *EmployeeServiceImpl) Resolve(ctx context.Context, actor employee.Actor) (employee.Employee, error) {
	found, err := s.employeeRepo.GetByUserID(ctx, actor.GuildID, actor.UserID)
	if errors.Is(err, employee.ErrEmployeeNotFound) {
		name := actor.DisplayName
		if name == "" {
			name = actor.UserID
		}
		return s.employeeRepo.Upsert(ctx, employee.Employee{
			ID:          uuid.Must(uuid.NewV7()).String(),
			GuildID:     actor.GuildID,
			UserID:      actor.UserID,
			DisplayName: name,
			Role:        employee.RoleEmployee,
			IsActive:    true,
		})
	}
	if err != nil {
		return employee.Employee{}, fmt.Errorf("failed to resolve employee: %w", err)
	}

	if !found.IsActive {
		return employee.Employee{}, employee.ErrEmployeeInactive
	}

	if actor.DisplayName != "" && actor.DisplayName != found.DisplayName {
		found.DisplayName = actor.DisplayName
		if refreshed, err := s.employeeRepo.Upsert(ctx, found); err == nil {
			found = refreshed
		}
	}

	return found, nil
}

// Find implements employee.EmployeeService.
func (s *EmployeeServiceImpl) Find(ctx context.Context, guildID, userID string) (employee.Employee, error) {
	found, err := s.employeeRepo.GetByUserID(ctx, guildID, userID)
	if err != nil {
		if errors.Is(err, employee.ErrEmployeeNotFound) {
			return employee.Employee{}, err
		}
		return employee.Employee{}, fmt.Errorf("failed to find employee: %w", err)
	}
	return found, nil
}

// Lock implements employee.EmployeeService.
func (s *EmployeeServiceImpl) Lock(ctx context.Context, employeeID string) error {
	return s.employeeRepo.LockByID(ctx, employeeID)
}

// Authorize implements employee.EmployeeService. Guild administrators hold
// every permission.
func (s *EmployeeServiceImpl) Authorize(ctx context.Context, actor employee.Actor, permission employee.Permission) (employee.Employee, error) {
	emp, err := s.Resolve(ctx, actor)
	if err != nil {
		return employee.Employee{}, err
	}

	if actor.GuildAdmin || employee.HasPermission(emp.Role, permission) {
		return emp, nil
	}

	return employee.Employee{}, employee.ErrPermissionDenied
}

// ListActive implements employee.EmployeeService.
func (s *EmployeeServiceImpl) ListActive(ctx context.Context, guildID string) ([]employee.EmployeeResponse, error) {
	employees, err := s.employeeRepo.ListActive(ctx, guildID)
	if err != nil {
		return nil, err
	}

	responses := make([]employee.EmployeeResponse, 0, len(employees))
	for _, e := range employees {
		responses = append(responses, employee.ToResponse(e))
	}
	return responses, nil
}
