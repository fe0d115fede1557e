package employee

import "errors"

var (
	ErrEmployeeNotFound = errors.New("employee not found")
	ErrEmployeeInactive = errors.New("employee is deactivated")
	ErrPermissionDenied = errors.New("you do not have permission to do that")
	ErrInvalidRole      = errors.New("invalid role")
	ErrCannotChangeSelf = errors.New("you cannot change your own role")
)
