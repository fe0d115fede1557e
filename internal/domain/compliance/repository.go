package compliance

import (
	"context"
	"time"
)

type Repository interface {
	Create(ctx context.Context, event Event) (Event, error)

	// ListByEmployee returns the employee's events in [from, to), newest first
	ListByEmployee(ctx context.Context, employeeID string, from, to time.Time) ([]Event, error)

	// CountByEmployee aggregates the guild's events in [from, to)
	CountByEmployee(ctx context.Context, guildID string, from, to time.Time) ([]Count, error)
}
