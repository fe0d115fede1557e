package postgresql

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cmlabs-hris/hris-attendance-bot/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-attendance-bot/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

const attendanceColumns = `
	a.id, a.employee_id, a.guild_id, a.work_date,
	a.clock_ins, a.clock_outs, a.break_starts, a.break_ends,
	a.status, a.is_late, a.late_minutes, a.worked_minutes, a.break_minutes,
	a.screen_share_strikes, a.last_verified_at, a.leave_request_id, a.notes,
	a.created_at, a.updated_at,
	e.display_name, e.user_id`

const attendanceFrom = `
	FROM attendances a
	LEFT JOIN employees e ON e.id = a.employee_id`

type attendanceRepository struct {
	db *database.DB
}

func NewAttendanceRepository(db *database.DB) attendance.AttendanceRepository {
	return &attendanceRepository{db: db}
}

func scanAttendance(row pgx.Row) (attendance.Attendance, error) {
	var att attendance.Attendance
	err := row.Scan(
		&att.ID, &att.EmployeeID, &att.GuildID, &att.WorkDate,
		&att.ClockIns, &att.ClockOuts, &att.BreakStarts, &att.BreakEnds,
		&att.Status, &att.IsLate, &att.LateMinutes, &att.WorkedMinutes, &att.BreakMinutes,
		&att.ScreenShareStrikes, &att.LastVerifiedAt, &att.LeaveRequestID, &att.Notes,
		&att.CreatedAt, &att.UpdatedAt,
		&att.EmployeeName, &att.EmployeeUserID,
	)
	return att, err
}

func (a *attendanceRepository) queryAttendances(ctx context.Context, query string, args ...interface{}) ([]attendance.Attendance, error) {
	q := GetQuerier(ctx, a.db)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query attendances: %w", err)
	}
	defer rows.Close()

	var attendances []attendance.Attendance
	for rows.Next() {
		att, err := scanAttendance(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan attendance: %w", err)
		}
		attendances = append(attendances, att)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return attendances, nil
}

// Create implements attendance.AttendanceRepository.
func (a *attendanceRepository) Create(ctx context.Context, att attendance.Attendance) (attendance.Attendance, error) {
	q := GetQuerier(ctx, a.db)

	query := `
		INSERT INTO attendances (
			id, employee_id, guild_id, work_date,
			clock_ins, clock_outs, break_starts, break_ends,
			status, is_late, late_minutes, worked_minutes, break_minutes,
			screen_share_strikes, last_verified_at, leave_request_id, notes
		) VALUES (
			$1, $2, $3, $4,
			$5, $6, $7, $8,
			$9, $10, $11, $12, $13,
			$14, $15, $16, $17
		)
		RETURNING created_at, updated_at
	`

	err := q.QueryRow(ctx, query,
		att.ID, att.EmployeeID, att.GuildID, att.WorkDate,
		timestamps(att.ClockIns), timestamps(att.ClockOuts), timestamps(att.BreakStarts), timestamps(att.BreakEnds),
		att.Status, att.IsLate, att.LateMinutes, att.WorkedMinutes, att.BreakMinutes,
		att.ScreenShareStrikes, att.LastVerifiedAt, att.LeaveRequestID, att.Notes,
	).Scan(&att.CreatedAt, &att.UpdatedAt)
	if err != nil {
		return attendance.Attendance{}, fmt.Errorf("failed to create attendance: %w", err)
	}

	return att, nil
}

// GetByID implements attendance.AttendanceRepository.
func (a *attendanceRepository) GetByID(ctx context.Context, id string, guildID string) (attendance.Attendance, error) {
	q := GetQuerier(ctx, a.db)

	query := `SELECT ` + attendanceColumns + attendanceFrom + ` WHERE a.id = $1 AND a.guild_id = $2`

	att, err := scanAttendance(q.QueryRow(ctx, query, id, guildID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return attendance.Attendance{}, attendance.ErrAttendanceNotFound
		}
		return attendance.Attendance{}, fmt.Errorf("failed to get attendance by id %s: %w", id, err)
	}

	return att, nil
}

// GetByEmployeeAndDate implements attendance.AttendanceRepository.
func (a *attendanceRepository) GetByEmployeeAndDate(ctx context.Context, employeeID string, workDate time.Time, forUpdate bool) (attendance.Attendance, error) {
	q := GetQuerier(ctx, a.db)

	query := `SELECT ` + attendanceColumns + attendanceFrom + ` WHERE a.employee_id = $1 AND a.work_date = $2`
	if forUpdate {
		query += ` FOR UPDATE OF a`
	}

	att, err := scanAttendance(q.QueryRow(ctx, query, employeeID, attendance.WorkDate(workDate)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return attendance.Attendance{}, attendance.ErrAttendanceNotFound
		}
		return attendance.Attendance{}, fmt.Errorf("failed to get attendance for employee %s: %w", employeeID, err)
	}

	return att, nil
}

// GetOpenSession implements attendance.AttendanceRepository.
func (a *attendanceRepository) GetOpenSession(ctx context.Context, employeeID string) (attendance.Attendance, error) {
	q := GetQuerier(ctx, a.db)

	query := `SELECT ` + attendanceColumns + attendanceFrom + `
		WHERE a.employee_id = $1
		  AND a.status IN ('working', 'on_break')
		ORDER BY a.work_date DESC
		LIMIT 1
		FOR UPDATE OF a
	`

	att, err := scanAttendance(q.QueryRow(ctx, query, employeeID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return attendance.Attendance{}, attendance.ErrAttendanceNotFound
		}
		return attendance.Attendance{}, fmt.Errorf("failed to get open session: %w", err)
	}

	return att, nil
}

// Update implements attendance.AttendanceRepository.
func (a *attendanceRepository) Update(ctx context.Context, att attendance.Attendance) error {
	q := GetQuerier(ctx, a.db)

	query := `
		UPDATE attendances SET
			clock_ins = $1,
			clock_outs = $2,
			break_starts = $3,
			break_ends = $4,
			status = $5,
			is_late = $6,
			late_minutes = $7,
			worked_minutes = $8,
			break_minutes = $9,
			screen_share_strikes = $10,
			last_verified_at = $11,
			leave_request_id = $12,
			notes = $13,
			updated_at = NOW()
		WHERE id = $14
	`

	tag, err := q.Exec(ctx, query,
		timestamps(att.ClockIns), timestamps(att.ClockOuts), timestamps(att.BreakStarts), timestamps(att.BreakEnds),
		att.Status, att.IsLate, att.LateMinutes, att.WorkedMinutes, att.BreakMinutes,
		att.ScreenShareStrikes, att.LastVerifiedAt, att.LeaveRequestID, att.Notes,
		att.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update attendance %s: %w", att.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return attendance.ErrAttendanceNotFound
	}

	return nil
}

// List implements attendance.AttendanceRepository.
func (a *attendanceRepository) List(ctx context.Context, filter attendance.AttendanceFilter) ([]attendance.Attendance, int64, error) {
	q := GetQuerier(ctx, a.db)

	// Build WHERE clause
	baseWhere := "a.guild_id = $1"
	args := []interface{}{filter.GuildID}
	argIdx := 2

	if filter.EmployeeID != nil && *filter.EmployeeID != "" {
		baseWhere += fmt.Sprintf(" AND a.employee_id = $%d", argIdx)
		args = append(args, *filter.EmployeeID)
		argIdx++
	}

	if filter.UserID != nil && *filter.UserID != "" {
		baseWhere += fmt.Sprintf(" AND e.user_id = $%d", argIdx)
		args = append(args, *filter.UserID)
		argIdx++
	}

	if filter.Date != nil && *filter.Date != "" {
		baseWhere += fmt.Sprintf(" AND a.work_date = $%d", argIdx)
		args = append(args, *filter.Date)
		argIdx++
	}

	// Date range filters
	if filter.StartDate != nil && *filter.StartDate != "" {
		baseWhere += fmt.Sprintf(" AND a.work_date >= $%d", argIdx)
		args = append(args, *filter.StartDate)
		argIdx++
	}
	if filter.EndDate != nil && *filter.EndDate != "" {
		baseWhere += fmt.Sprintf(" AND a.work_date <= $%d", argIdx)
		args = append(args, *filter.EndDate)
		argIdx++
	}

	if filter.Status != nil && *filter.Status != "" {
		baseWhere += fmt.Sprintf(" AND a.status = $%d", argIdx)
		args = append(args, *filter.Status)
		argIdx++
	}

	if filter.LateOnly {
		baseWhere += " AND a.is_late = TRUE"
	}

	countQuery := `SELECT COUNT(*) ` + attendanceFrom + ` WHERE ` + baseWhere
	var total int64
	if err := q.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count attendances: %w", err)
	}

	// Build ORDER BY
	orderByField := "a.work_date"
	switch filter.SortBy {
	case "employee_name":
		orderByField = "e.display_name"
	case "worked_minutes":
		orderByField = "a.worked_minutes"
	case "status":
		orderByField = "a.status"
	}
	sortOrder := "DESC"
	if strings.ToLower(filter.SortOrder) == "asc" {
		sortOrder = "ASC"
	}

	selectQuery := fmt.Sprintf(`SELECT %s %s
		WHERE %s
		ORDER BY %s %s, a.created_at DESC
		LIMIT $%d OFFSET $%d
	`, attendanceColumns, attendanceFrom, baseWhere, orderByField, sortOrder, argIdx, argIdx+1)

	limit := filter.Limit
	if limit == 0 {
		limit = 20
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	args = append(args, limit, (page-1)*limit)

	attendances, err := a.queryAttendances(ctx, selectQuery, args...)
	if err != nil {
		return nil, 0, err
	}

	return attendances, total, nil
}

// ListOpen implements attendance.AttendanceRepository.
func (a *attendanceRepository) ListOpen(ctx context.Context, guildID string) ([]attendance.Attendance, error) {
	query := `SELECT ` + attendanceColumns + attendanceFrom + `
		WHERE a.guild_id = $1 AND a.status IN ('working', 'on_break')
		ORDER BY a.work_date ASC
	`
	return a.queryAttendances(ctx, query, guildID)
}

// ListStale implements attendance.AttendanceRepository.
func (a *attendanceRepository) ListStale(ctx context.Context, guildID string, before time.Time) ([]attendance.Attendance, error) {
	query := `SELECT ` + attendanceColumns + attendanceFrom + `
		WHERE a.guild_id = $1
		  AND a.status IN ('working', 'on_break')
		  AND a.work_date < $2
		ORDER BY a.work_date ASC
	`
	return a.queryAttendances(ctx, query, guildID, attendance.WorkDate(before))
}

// ListByDate implements attendance.AttendanceRepository.
func (a *attendanceRepository) ListByDate(ctx context.Context, guildID string, workDate time.Time) ([]attendance.Attendance, error) {
	query := `SELECT ` + attendanceColumns + attendanceFrom + `
		WHERE a.guild_id = $1 AND a.work_date = $2
		ORDER BY e.display_name ASC
	`
	return a.queryAttendances(ctx, query, guildID, attendance.WorkDate(workDate))
}

// DeleteLeavePlaceholders implements attendance.AttendanceRepository.
func (a *attendanceRepository) DeleteLeavePlaceholders(ctx context.Context, leaveRequestID string) (int64, error) {
	q := GetQuerier(ctx, a.db)

	query := `DELETE FROM attendances WHERE leave_request_id = $1 AND status = 'on_leave'`

	tag, err := q.Exec(ctx, query, leaveRequestID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete leave placeholders: %w", err)
	}

	return tag.RowsAffected(), nil
}
