package leave

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/hris-attendance-bot/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-attendance-bot/internal/domain/employee"
	"github.com/cmlabs-hris/hris-attendance-bot/internal/domain/leave"
	"github.com/cmlabs-hris/hris-attendance-bot/internal/pkg/database"
	"github.com/google/uuid"
)

// RequestService applies the leave workflow rules. Callers authorize first.
type RequestService struct {
	db database.Transactor
	leave.LeaveRequestRepository
	attendance.AttendanceRepository
	employees employee.EmployeeService
	quota     *QuotaService
	policy    leave.Policy
	now       func() time.Time
}

func NewRequestService(
	db database.Transactor,
	leaveRequestRepository leave.LeaveRequestRepository,
	attendanceRepository attendance.AttendanceRepository,
	employeeService employee.EmployeeService,
	quota *QuotaService,
	policy leave.Policy,
) *RequestService {
	return &RequestService{
		db:                     db,
		LeaveRequestRepository: leaveRequestRepository,
		AttendanceRepository:   attendanceRepository,
		employees:              employeeService,
		quota:                  quota,
		policy:                 policy,
		now:                    time.Now,
	}
}

func (r *RequestService) CreateRequest(ctx context.Context, emp employee.Employee, req leave.CreateLeaveRequest) (leave.LeaveRequest, error) {
	startDate, err := time.Parse("2006-01-02", req.StartDate)
	if err != nil {
		return leave.LeaveRequest{}, fmt.Errorf("failed to parse start date: %w", err)
	}

	endDate, err := time.Parse("2006-01-02", req.EndDate)
	if err != nil {
		return leave.LeaveRequest{}, fmt.Errorf("failed to parse end date: %w", err)
	}

	workingDays := len(r.policy.WorkingDates(startDate, endDate))
	if workingDays == 0 {
		return leave.LeaveRequest{}, leave.ErrNoWorkingDays
	}
	if r.policy.MaxDaysPerRequest > 0 && workingDays > r.policy.MaxDaysPerRequest {
		return leave.LeaveRequest{}, leave.ErrTooManyDays
	}

	if err := r.policy.CheckTiming(req.Type, startDate, r.now().UTC()); err != nil {
		return leave.LeaveRequest{}, err
	}

	request := leave.LeaveRequest{
		ID:         uuid.Must(uuid.NewV7()).String(),
		EmployeeID: emp.ID,
		GuildID:    emp.GuildID,
		Type:       req.Type,
		StartDate:  startDate,
		EndDate:    endDate,
		Days:       workingDays,
		Reason:     req.Reason,
		Status:     leave.StatusPending,
	}

	var created leave.LeaveRequest
	err = r.db.WithinTransaction(ctx, func(ctx context.Context) error {
		// Concurrent requests of one member queue here before the overlap
		// and quota checks.
		if err := r.employees.Lock(ctx, emp.ID); err != nil {
			return fmt.Errorf("failed to lock employee: %w", err)
		}

		hasOverlap, err := r.LeaveRequestRepository.HasOverlap(ctx, emp.ID, startDate, endDate, "")
		if err != nil {
			return fmt.Errorf("failed to check overlapping leave requests: %w", err)
		}
		if hasOverlap {
			return leave.ErrOverlappingLeave
		}

		if err := r.quota.Reserve(ctx, emp.ID, req.Type, startDate.Year(), workingDays, true); err != nil {
			return err
		}

		created, err = r.LeaveRequestRepository.Create(ctx, request)
		if err != nil {
			return fmt.Errorf("failed to create leave request: %w", err)
		}
		return nil
	})
	if err != nil {
		return leave.LeaveRequest{}, err
	}

	return created, nil
}

// Approve marks the request approved and books every working day of it as
// on_leave. An absent day becomes on_leave; other existing days are left
// alone.
func (r *RequestService) Approve(ctx context.Context, reviewer employee.Employee, requestID string) (leave.LeaveRequest, error) {
	var request leave.LeaveRequest
	err := r.db.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		request, err = r.lockPending(ctx, reviewer, requestID)
		if err != nil {
			return err
		}

		if err := r.employees.Lock(ctx, request.EmployeeID); err != nil {
			return fmt.Errorf("failed to lock employee: %w", err)
		}

		// Other pending requests do not block this one
		if err := r.quota.Reserve(ctx, request.EmployeeID, request.Type, request.StartDate.Year(), request.Days, false); err != nil {
			return err
		}

		decidedAt := r.now().UTC()
		request.Status = leave.StatusApproved
		request.DecidedBy = &reviewer.UserID
		request.DecidedAt = &decidedAt
		if err := r.LeaveRequestRepository.Update(ctx, request); err != nil {
			return fmt.Errorf("failed to update leave request: %w", err)
		}

		for _, day := range r.policy.WorkingDates(request.StartDate, request.EndDate) {
			existing, err := r.AttendanceRepository.GetByEmployeeAndDate(ctx, request.EmployeeID, day, true)
			if err == nil {
				if existing.Status != attendance.StatusAbsent {
					continue
				}
				existing.Status = attendance.StatusOnLeave
				existing.LeaveRequestID = &request.ID
				if err := r.AttendanceRepository.Update(ctx, existing); err != nil {
					return fmt.Errorf("failed to book leave day %s: %w", day.Format("2006-01-02"), err)
				}
				continue
			}
			if !errors.Is(err, attendance.ErrAttendanceNotFound) {
				return fmt.Errorf("failed to check attendance on %s: %w", day.Format("2006-01-02"), err)
			}

			if _, err := r.AttendanceRepository.Create(ctx, attendance.Attendance{
				ID:             uuid.Must(uuid.NewV7()).String(),
				EmployeeID:     request.EmployeeID,
				GuildID:        request.GuildID,
				WorkDate:       day,
				Status:         attendance.StatusOnLeave,
				LeaveRequestID: &request.ID,
			}); err != nil {
				return fmt.Errorf("failed to book leave day %s: %w", day.Format("2006-01-02"), err)
			}
		}
		return nil
	})
	if err != nil {
		return leave.LeaveRequest{}, err
	}

	return request, nil
}

func (r *RequestService) Reject(ctx context.Context, reviewer employee.Employee, requestID string, reason string) (leave.LeaveRequest, error) {
	var request leave.LeaveRequest
	err := r.db.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		request, err = r.lockPending(ctx, reviewer, requestID)
		if err != nil {
			return err
		}

		decidedAt := r.now().UTC()
		request.Status = leave.StatusRejected
		request.DecidedBy = &reviewer.UserID
		request.DecidedAt = &decidedAt
		request.RejectionReason = &reason
		if err := r.LeaveRequestRepository.Update(ctx, request); err != nil {
			return fmt.Errorf("failed to update leave request: %w", err)
		}
		return nil
	})
	if err != nil {
		return leave.LeaveRequest{}, err
	}

	return request, nil
}

func (r *RequestService) lockPending(ctx context.Context, reviewer employee.Employee, requestID string) (leave.LeaveRequest, error) {
	request, err := r.LeaveRequestRepository.GetByID(ctx, requestID, reviewer.GuildID, true)
	if err != nil {
		return leave.LeaveRequest{}, err
	}
	if request.EmployeeID == reviewer.ID {
		return leave.LeaveRequest{}, leave.ErrSelfApproval
	}
	if request.Status != leave.StatusPending {
		return leave.LeaveRequest{}, leave.ErrLeaveAlreadyProcessed
	}
	return request, nil
}

// Cancel withdraws a pending request, or an approved one whose first day has
// not started yet. The on_leave days booked by the approval are removed.
func (r *RequestService) Cancel(ctx context.Context, emp employee.Employee, requestID string) (leave.LeaveRequest, error) {
	var request leave.LeaveRequest
	err := r.db.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		request, err = r.LeaveRequestRepository.GetByID(ctx, requestID, emp.GuildID, true)
		if err != nil {
			return err
		}
		if request.EmployeeID != emp.ID {
			return leave.ErrNotRequestOwner
		}

		nowUTC := r.now().UTC()
		switch request.Status {
		case leave.StatusPending:
		case leave.StatusApproved:
			if request.HasStarted(nowUTC) {
				return leave.ErrLeaveStarted
			}
			if _, err := r.AttendanceRepository.DeleteLeavePlaceholders(ctx, request.ID); err != nil {
				return fmt.Errorf("failed to release leave days: %w", err)
			}
		default:
			return leave.ErrLeaveAlreadyProcessed
		}

		request.Status = leave.StatusCancelled
		request.CancelledAt = &nowUTC
		if err := r.LeaveRequestRepository.Update(ctx, request); err != nil {
			return fmt.Errorf("failed to update leave request: %w", err)
		}
		return nil
	})
	if err != nil {
		return leave.LeaveRequest{}, err
	}

	return request, nil
}
