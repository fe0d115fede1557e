package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/hris-attendance-bot/internal/domain/employee"
	"github.com/cmlabs-hris/hris-attendance-bot/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

const employeeColumns = `id, guild_id, user_id, display_name, role, is_active, created_at, updated_at`

type employeeRepositoryImpl struct {
	db *database.DB
}

func NewEmployeeRepository(db *database.DB) employee.EmployeeRepository {
	return &employeeRepositoryImpl{db: db}
}

func scanEmployee(row pgx.Row) (employee.Employee, error) {
	var e employee.Employee
	err := row.Scan(
		&e.ID, &e.GuildID, &e.UserID, &e.DisplayName, &e.Role, &e.IsActive,
		&e.CreatedAt, &e.UpdatedAt,
	)
	return e, err
}

// Upsert implements employee.EmployeeRepository.
func (r *employeeRepositoryImpl) Upsert(ctx context.Context, emp employee.Employee) (employee.Employee, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO employees (id, guild_id, user_id, display_name, role, is_active)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (guild_id, user_id) DO UPDATE SET
			display_name = EXCLUDED.display_name,
			role = EXCLUDED.role,
			is_active = EXCLUDED.is_active,
			updated_at = NOW()
		RETURNING ` + employeeColumns

	saved, err := scanEmployee(q.QueryRow(ctx, query,
		emp.ID, emp.GuildID, emp.UserID, emp.DisplayName, emp.Role, emp.IsActive,
	))
	if err != nil {
		return employee.Employee{}, fmt.Errorf("failed to upsert employee %s: %w", emp.UserID, err)
	}
	return saved, nil
}

// GetByID implements employee.EmployeeRepository.
func (r *employeeRepositoryImpl) GetByID(ctx context.Context, id string) (employee.Employee, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + employeeColumns + ` FROM employees WHERE id = $1`

	found, err := scanEmployee(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return employee.Employee{}, employee.ErrEmployeeNotFound
		}
		return employee.Employee{}, fmt.Errorf("failed to get employee by id %s: %w", id, err)
	}
	return found, nil
}

// GetByUserID implements employee.EmployeeRepository.
func (r *employeeRepositoryImpl) GetByUserID(ctx context.Context, guildID, userID string) (employee.Employee, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + employeeColumns + ` FROM employees WHERE guild_id = $1 AND user_id = $2`

	found, err := scanEmployee(q.QueryRow(ctx, query, guildID, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return employee.Employee{}, employee.ErrEmployeeNotFound
		}
		return employee.Employee{}, fmt.Errorf("failed to get employee by user id %s: %w", userID, err)
	}
	return found, nil
}

// LockByID implements employee.EmployeeRepository.
func (r *employeeRepositoryImpl) LockByID(ctx context.Context, id string) error {
	q := GetQuerier(ctx, r.db)

	var locked string
	err := q.QueryRow(ctx, `SELECT id FROM employees WHERE id = $1 FOR UPDATE`, id).Scan(&locked)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return employee.ErrEmployeeNotFound
		}
		return fmt.Errorf("failed to lock employee %s: %w", id, err)
	}
	return nil
}

// ListActive implements employee.EmployeeRepository.
func (r *employeeRepositoryImpl) ListActive(ctx context.Context, guildID string) ([]employee.Employee, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + employeeColumns + `
		FROM employees
		WHERE guild_id = $1 AND is_active = TRUE
		ORDER BY display_name ASC
	`

	rows, err := q.Query(ctx, query, guildID)
	if err != nil {
		return nil, fmt.Errorf("failed to list employees: %w", err)
	}
	defer rows.Close()

	var employees []employee.Employee
	for rows.Next() {
		emp, err := scanEmployee(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan employee: %w", err)
		}
		employees = append(employees, emp)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return employees, nil
}

// SetActive implements employee.EmployeeRepository.
func (r *employeeRepositoryImpl) SetActive(ctx context.Context, id string, active bool) error {
	q := GetQuerier(ctx, r.db)

	query := `UPDATE employees SET is_active = $1, updated_at = NOW() WHERE id = $2`

	tag, err := q.Exec(ctx, query, active, id)
	if err != nil {
		return fmt.Errorf("failed to update employee %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return employee.ErrEmployeeNotFound
	}
	return nil
}
