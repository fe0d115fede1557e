package employee

import "context"

// EmployeeService manages the guild roster and answers permission questions.
type EmployeeService interface {
	// Register adds or updates a roster entry (manager/admin)
	Register(ctx context.Context, req RegisterRequest) (EmployeeResponse, error)

	// Deactivate removes a member from attendance tracking (manager/admin)
	Deactivate(ctx context.Context, actor Actor, userID string) error

	// Resolve returns the actor's roster entry, registering them as a plain
	// employee on first contact.
	Resolve(ctx context.Context, actor Actor) (Employee, error)

	// Find looks up a roster entry, active or not, without registering it.
	Find(ctx context.Context, guildID, userID string) (Employee, error)

	// Lock serializes per-member writes inside a transaction.
	Lock(ctx context.Context, employeeID string) error

	// Authorize fails with ErrPermissionDenied unless the actor holds permission.
	Authorize(ctx context.Context, actor Actor, permission Permission) (Employee, error)

	ListActive(ctx context.Context, guildID string) ([]EmployeeResponse, error)
}
