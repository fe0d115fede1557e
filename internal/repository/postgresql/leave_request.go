package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/hris-attendance-bot/internal/domain/leave"
	"github.com/cmlabs-hris/hris-attendance-bot/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

const leaveRequestColumns = `
	lr.id, lr.employee_id, lr.guild_id, lr.leave_type, lr.start_date, lr.end_date, lr.days,
	lr.reason, lr.status, lr.decided_by, lr.decided_at, lr.rejection_reason, lr.cancelled_at,
	lr.created_at, lr.updated_at,
	e.display_name, e.user_id`

const leaveRequestFrom = `
	FROM leave_requests lr
	LEFT JOIN employees e ON e.id = lr.employee_id`

type leaveRequestRepositoryImpl struct {
	db *database.DB
}

func NewLeaveRequestRepository(db *database.DB) leave.LeaveRequestRepository {
	return &leaveRequestRepositoryImpl{db: db}
}

func scanLeaveRequest(row pgx.Row) (leave.LeaveRequest, error) {
	var lr leave.LeaveRequest
	err := row.Scan(
		&lr.ID, &lr.EmployeeID, &lr.GuildID, &lr.Type, &lr.StartDate, &lr.EndDate, &lr.Days,
		&lr.Reason, &lr.Status, &lr.DecidedBy, &lr.DecidedAt, &lr.RejectionReason, &lr.CancelledAt,
		&lr.CreatedAt, &lr.UpdatedAt,
		&lr.EmployeeName, &lr.EmployeeUserID,
	)
	return lr, err
}

// Create implements leave.LeaveRequestRepository.
func (r *leaveRequestRepositoryImpl) Create(ctx context.Context, request leave.LeaveRequest) (leave.LeaveRequest, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO leave_requests (
			id, employee_id, guild_id, leave_type, start_date, end_date, days, reason, status
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at, updated_at
	`

	err := q.QueryRow(ctx, query,
		request.ID, request.EmployeeID, request.GuildID, request.Type,
		request.StartDate, request.EndDate, request.Days, request.Reason, request.Status,
	).Scan(&request.CreatedAt, &request.UpdatedAt)
	if err != nil {
		return leave.LeaveRequest{}, fmt.Errorf("failed to create leave request: %w", err)
	}

	return request, nil
}

// GetByID implements leave.LeaveRequestRepository.
func (r *leaveRequestRepositoryImpl) GetByID(ctx context.Context, id string, guildID string, forUpdate bool) (leave.LeaveRequest, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + leaveRequestColumns + leaveRequestFrom + ` WHERE lr.id = $1 AND lr.guild_id = $2`
	if forUpdate {
		query += ` FOR UPDATE OF lr`
	}

	found, err := scanLeaveRequest(q.QueryRow(ctx, query, id, guildID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return leave.LeaveRequest{}, leave.ErrLeaveRequestNotFound
		}
		return leave.LeaveRequest{}, fmt.Errorf("failed to get leave request %s: %w", id, err)
	}

	return found, nil
}

// Update implements leave.LeaveRequestRepository.
func (r *leaveRequestRepositoryImpl) Update(ctx context.Context, request leave.LeaveRequest) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE leave_requests SET
			status = $1,
			decided_by = $2,
			decided_at = $3,
			rejection_reason = $4,
			cancelled_at = $5,
			updated_at = NOW()
		WHERE id = $6
	`

	tag, err := q.Exec(ctx, query,
		request.Status, request.DecidedBy, request.DecidedAt, request.RejectionReason, request.CancelledAt,
		request.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update leave request %s: %w", request.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return leave.ErrLeaveRequestNotFound
	}

	return nil
}

// List implements leave.LeaveRequestRepository.
func (r *leaveRequestRepositoryImpl) List(ctx context.Context, filter leave.LeaveFilter) ([]leave.LeaveRequest, int64, error) {
	q := GetQuerier(ctx, r.db)

	baseWhere := "lr.guild_id = $1"
	args := []interface{}{filter.GuildID}
	argIdx := 2

	if filter.EmployeeID != nil && *filter.EmployeeID != "" {
		baseWhere += fmt.Sprintf(" AND lr.employee_id = $%d", argIdx)
		args = append(args, *filter.EmployeeID)
		argIdx++
	}

	if filter.UserID != nil && *filter.UserID != "" {
		baseWhere += fmt.Sprintf(" AND e.user_id = $%d", argIdx)
		args = append(args, *filter.UserID)
		argIdx++
	}

	if filter.Status != nil && *filter.Status != "" {
		baseWhere += fmt.Sprintf(" AND lr.status = $%d", argIdx)
		args = append(args, *filter.Status)
		argIdx++
	}

	if filter.Type != nil && *filter.Type != "" {
		baseWhere += fmt.Sprintf(" AND lr.leave_type = $%d", argIdx)
		args = append(args, *filter.Type)
		argIdx++
	}

	countQuery := `SELECT COUNT(*) ` + leaveRequestFrom + ` WHERE ` + baseWhere
	var total int64
	if err := q.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count leave requests: %w", err)
	}

	selectQuery := fmt.Sprintf(`SELECT %s %s
		WHERE %s
		ORDER BY lr.created_at DESC
		LIMIT $%d OFFSET $%d
	`, leaveRequestColumns, leaveRequestFrom, baseWhere, argIdx, argIdx+1)

	limit := filter.Limit
	if limit == 0 {
		limit = 10
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	args = append(args, limit, (page-1)*limit)

	rows, err := q.Query(ctx, selectQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query leave requests: %w", err)
	}
	defer rows.Close()

	var requests []leave.LeaveRequest
	for rows.Next() {
		lr, err := scanLeaveRequest(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan leave request: %w", err)
		}
		requests = append(requests, lr)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	return requests, total, nil
}

// HasOverlap implements leave.LeaveRequestRepository.
func (r *leaveRequestRepositoryImpl) HasOverlap(ctx context.Context, employeeID string, start, end time.Time, excludeID string) (bool, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT EXISTS (
			SELECT 1 FROM leave_requests
			WHERE employee_id = $1
			  AND status IN ('pending', 'approved')
			  AND start_date <= $3
			  AND end_date >= $2`
	args := []interface{}{employeeID, leave.Date(start), leave.Date(end)}
	if excludeID != "" {
		query += ` AND id <> $4`
		args = append(args, excludeID)
	}
	query += `)`

	var exists bool
	if err := q.QueryRow(ctx, query, args...).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check leave overlap: %w", err)
	}

	return exists, nil
}

// SumDays implements leave.LeaveRequestRepository.
func (r *leaveRequestRepositoryImpl) SumDays(ctx context.Context, employeeID string, leaveType leave.Type, year int, statuses []leave.Status) (int, error) {
	q := GetQuerier(ctx, r.db)

	values := make([]string, len(statuses))
	for i, s := range statuses {
		values[i] = string(s)
	}

	query := `
		SELECT COALESCE(SUM(days), 0)
		FROM leave_requests
		WHERE employee_id = $1
		  AND leave_type = $2
		  AND EXTRACT(YEAR FROM start_date) = $3
		  AND status = ANY($4)
	`

	var total int
	if err := q.QueryRow(ctx, query, employeeID, string(leaveType), year, values).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to sum leave days: %w", err)
	}

	return total, nil
}
