package employee

import "context"

type EmployeeRepository interface {
	// Upsert inserts the employee or refreshes display name, role and
	// active flag of the existing (guild, user) row.
	Upsert(ctx context.Context, employee Employee) (Employee, error)

	GetByID(ctx context.Context, id string) (Employee, error)
	GetByUserID(ctx context.Context, guildID, userID string) (Employee, error)
	ListActive(ctx context.Context, guildID string) ([]Employee, error)
	SetActive(ctx context.Context, id string, active bool) error

	// LockByID holds the employee's row until the surrounding transaction
	// ends. Per-member writes that check before they insert take it first.
	LockByID(ctx context.Context, id string) error
}
