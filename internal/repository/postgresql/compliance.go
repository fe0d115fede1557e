package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/hris-attendance-bot/internal/domain/compliance"
	"github.com/cmlabs-hris/hris-attendance-bot/internal/pkg/database"
)

type complianceRepositoryImpl struct {
	db *database.DB
}

func NewComplianceRepository(db *database.DB) compliance.Repository {
	return &complianceRepositoryImpl{db: db}
}

// Create implements compliance.Repository.
func (r *complianceRepositoryImpl) Create(ctx context.Context, event compliance.Event) (compliance.Event, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO compliance_events (id, employee_id, guild_id, kind, attendance_id, details, occurred_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at
	`

	err := q.QueryRow(ctx, query,
		event.ID, event.EmployeeID, event.GuildID, event.Kind, event.AttendanceID, event.Details, event.OccurredAt,
	).Scan(&event.CreatedAt)
	if err != nil {
		return compliance.Event{}, fmt.Errorf("failed to create compliance event: %w", err)
	}

	return event, nil
}

// ListByEmployee implements compliance.Repository.
func (r *complianceRepositoryImpl) ListByEmployee(ctx context.Context, employeeID string, from, to time.Time) ([]compliance.Event, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT c.id, c.employee_id, c.guild_id, c.kind, c.attendance_id, c.details, c.occurred_at, c.created_at,
			e.display_name, e.user_id
		FROM compliance_events c
		LEFT JOIN employees e ON e.id = c.employee_id
		WHERE c.employee_id = $1
		  AND c.occurred_at >= $2
		  AND c.occurred_at < $3
		ORDER BY c.occurred_at DESC
	`

	rows, err := q.Query(ctx, query, employeeID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to query compliance events: %w", err)
	}
	defer rows.Close()

	var events []compliance.Event
	for rows.Next() {
		var ev compliance.Event
		if err := rows.Scan(
			&ev.ID, &ev.EmployeeID, &ev.GuildID, &ev.Kind, &ev.AttendanceID, &ev.Details, &ev.OccurredAt, &ev.CreatedAt,
			&ev.EmployeeName, &ev.EmployeeUserID,
		); err != nil {
			return nil, fmt.Errorf("failed to scan compliance event: %w", err)
		}
		events = append(events, ev)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return events, nil
}

// CountByEmployee implements compliance.Repository.
func (r *complianceRepositoryImpl) CountByEmployee(ctx context.Context, guildID string, from, to time.Time) ([]compliance.Count, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT e.id, e.user_id, e.display_name, c.kind, COUNT(*)
		FROM compliance_events c
		JOIN employees e ON e.id = c.employee_id
		WHERE c.guild_id = $1
		  AND c.occurred_at >= $2
		  AND c.occurred_at < $3
		GROUP BY e.id, e.user_id, e.display_name, c.kind
		ORDER BY e.display_name ASC, c.kind ASC
	`

	rows, err := q.Query(ctx, query, guildID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to count compliance events: %w", err)
	}
	defer rows.Close()

	var counts []compliance.Count
	for rows.Next() {
		var c compliance.Count
		if err := rows.Scan(&c.EmployeeID, &c.UserID, &c.EmployeeName, &c.Kind, &c.Total); err != nil {
			return nil, fmt.Errorf("failed to scan compliance count: %w", err)
		}
		counts = append(counts, c)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return counts, nil
}
