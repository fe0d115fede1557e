package employee

import "github.com/cmlabs-hris/hris-attendance-bot/internal/pkg/validator"

type RegisterRequest struct {
	Actor       Actor
	UserID      string
	DisplayName string
	Role        Role
}

func (r *RegisterRequest) Validate() error {
	var errs validator.ValidationErrors

	if !validator.IsValidSnowflake(r.UserID) {
		errs = append(errs, validator.ValidationError{
			Field:   "user",
			Message: "user must be a valid member",
		})
	}

	if validator.IsEmpty(r.DisplayName) {
		errs = append(errs, validator.ValidationError{
			Field:   "display_name",
			Message: "display_name is required",
		})
	}

	if r.Role == "" {
		r.Role = RoleEmployee
	}
	if !r.Role.IsValid() {
		errs = append(errs, validator.ValidationError{
			Field:   "role",
			Message: "role must be one of: employee, manager, admin",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type EmployeeResponse struct {
	ID          string `json:"id"`
	UserID      string `json:"user_id"`
	DisplayName string `json:"display_name"`
	Role        string `json:"role"`
	IsActive    bool   `json:"is_active"`
}

func ToResponse(e Employee) EmployeeResponse {
	return EmployeeResponse{
		ID:          e.ID,
		UserID:      e.UserID,
		DisplayName: e.DisplayName,
		Role:        string(e.Role),
		IsActive:    e.IsActive,
	}
}
