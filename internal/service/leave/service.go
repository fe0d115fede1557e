package leave

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/cmlabs-hris/hris-attendance-bot/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-attendance-bot/internal/domain/employee"
	"github.com/cmlabs-hris/hris-attendance-bot/internal/domain/leave"
	"github.com/cmlabs-hris/hris-attendance-bot/internal/domain/notification"
	"github.com/cmlabs-hris/hris-attendance-bot/internal/pkg/database"
	"github.com/cmlabs-hris/hris-attendance-bot/internal/pkg/metrics"
	"github.com/cmlabs-hris/hris-attendance-bot/internal/pkg/validator"
)

type LeaveServiceImpl struct {
	leave.LeaveRequestRepository
	employeeService employee.EmployeeService
	quotaService    *QuotaService
	requestService  *RequestService
	notifier        notification.Service
	reviewChannelID string
	metrics         *metrics.Metrics
	now             func() time.Time
}

var _ leave.LeaveService = (*LeaveServiceImpl)(nil)

func NewLeaveService(
	db database.Transactor,
	leaveRequestRepository leave.LeaveRequestRepository,
	attendanceRepository attendance.AttendanceRepository,
	employeeService employee.EmployeeService,
	notifier notification.Service,
	policy leave.Policy,
	reviewChannelID string,
	m *metrics.Metrics,
) *LeaveServiceImpl {
	quotaService := NewQuotaService(leaveRequestRepository, policy)
	return &LeaveServiceImpl{
		LeaveRequestRepository: leaveRequestRepository,
		employeeService:        employeeService,
		quotaService:           quotaService,
		requestService:         NewRequestService(db, leaveRequestRepository, attendanceRepository, employeeService, quotaService, policy),
		notifier:               notifier,
		reviewChannelID:        reviewChannelID,
		metrics:                m,
		now:                    time.Now,
	}
}

// setClock pins the service and its workflow to one clock.
func (l *LeaveServiceImpl) setClock(now func() time.Time) {
	l.now = now
	l.requestService.now = now
}

// CreateRequest implements leave.LeaveService.
func (l *LeaveServiceImpl) CreateRequest(ctx context.Context, req leave.CreateLeaveRequest) (leave.LeaveRequestResponse, error) {
	if err := req.Validate(); err != nil {
		return leave.LeaveRequestResponse{}, err
	}

	emp, err := l.employeeService.Authorize(ctx, req.Actor, employee.PermissionLeaveCreate)
	if err != nil {
		return leave.LeaveRequestResponse{}, err
	}

	request, err := l.requestService.CreateRequest(ctx, emp, req)
	if err != nil {
		return leave.LeaveRequestResponse{}, err
	}
	request.EmployeeName = &emp.DisplayName
	request.EmployeeUserID = &emp.UserID

	l.metrics.RecordLeave(string(request.Type), string(request.Status))
	slog.Info("Leave requested", "guild_id", emp.GuildID, "user_id", emp.UserID, "type", request.Type, "days", request.Days)

	l.announce(ctx, notification.Notice{
		GuildID:  emp.GuildID,
		Type:     notification.TypeLeaveRequest,
		Severity: notification.SeverityInfo,
		Title:    "Leave request",
		Message:  fmt.Sprintf("<@%s> requested %s leave.", emp.UserID, request.Type),
		Fields:   requestFields(request),
		Actions: []notification.Action{
			{Label: "Approve", CustomID: leave.ActionApprove + request.ID, Style: "success"},
			{Label: "Reject", CustomID: leave.ActionReject + request.ID, Style: "danger"},
		},
	})

	return mapLeaveToResponse(request), nil
}

// Approve implements leave.LeaveService.
func (l *LeaveServiceImpl) Approve(ctx context.Context, req leave.DecisionRequest) (leave.LeaveRequestResponse, error) {
	if err := req.Validate(false); err != nil {
		return leave.LeaveRequestResponse{}, err
	}

	reviewer, err := l.employeeService.Authorize(ctx, req.Actor, employee.PermissionLeaveApprove)
	if err != nil {
		return leave.LeaveRequestResponse{}, err
	}

	request, err := l.requestService.Approve(ctx, reviewer, req.RequestID)
	if err != nil {
		return leave.LeaveRequestResponse{}, err
	}

	l.metrics.RecordLeave(string(request.Type), string(request.Status))
	slog.Info("Leave approved", "guild_id", reviewer.GuildID, "request_id", request.ID, "reviewer", reviewer.UserID)

	l.notify(ctx, notification.Notice{
		GuildID:     request.GuildID,
		RecipientID: strPtrValue(request.EmployeeUserID),
		Type:        notification.TypeLeaveApproved,
		Severity:    notification.SeveritySuccess,
		Title:       "Leave approved",
		Message:     fmt.Sprintf("Your %s leave was approved by <@%s>.", request.Type, reviewer.UserID),
		Fields:      requestFields(request),
	})

	return mapLeaveToResponse(request), nil
}

// Reject implements leave.LeaveService.
func (l *LeaveServiceImpl) Reject(ctx context.Context, req leave.DecisionRequest) (leave.LeaveRequestResponse, error) {
	if err := req.Validate(true); err != nil {
		return leave.LeaveRequestResponse{}, err
	}

	reviewer, err := l.employeeService.Authorize(ctx, req.Actor, employee.PermissionLeaveApprove)
	if err != nil {
		return leave.LeaveRequestResponse{}, err
	}

	request, err := l.requestService.Reject(ctx, reviewer, req.RequestID, *req.Reason)
	if err != nil {
		return leave.LeaveRequestResponse{}, err
	}

	l.metrics.RecordLeave(string(request.Type), string(request.Status))
	slog.Info("Leave rejected", "guild_id", reviewer.GuildID, "request_id", request.ID, "reviewer", reviewer.UserID)

	fields := append(requestFields(request), notification.Field{Name: "Reason", Value: *req.Reason})
	l.notify(ctx, notification.Notice{
		GuildID:     request.GuildID,
		RecipientID: strPtrValue(request.EmployeeUserID),
		Type:        notification.TypeLeaveRejected,
		Severity:    notification.SeverityDanger,
		Title:       "Leave rejected",
		Message:     fmt.Sprintf("Your %s leave was rejected by <@%s>.", request.Type, reviewer.UserID),
		Fields:      fields,
	})

	return mapLeaveToResponse(request), nil
}

// Cancel implements leave.LeaveService.
func (l *LeaveServiceImpl) Cancel(ctx context.Context, req leave.CancelLeaveRequest) (leave.LeaveRequestResponse, error) {
	if err := req.Validate(); err != nil {
		return leave.LeaveRequestResponse{}, err
	}

	emp, err := l.employeeService.Authorize(ctx, req.Actor, employee.PermissionLeaveCreate)
	if err != nil {
		return leave.LeaveRequestResponse{}, err
	}

	request, err := l.requestService.Cancel(ctx, emp, req.RequestID)
	if err != nil {
		return leave.LeaveRequestResponse{}, err
	}

	l.metrics.RecordLeave(string(request.Type), string(request.Status))
	slog.Info("Leave cancelled", "guild_id", emp.GuildID, "request_id", request.ID, "user_id", emp.UserID)

	l.announce(ctx, notification.Notice{
		GuildID:  emp.GuildID,
		Type:     notification.TypeLeaveCancelled,
		Severity: notification.SeverityWarning,
		Title:    "Leave cancelled",
		Message:  fmt.Sprintf("<@%s> cancelled their %s leave.", emp.UserID, request.Type),
		Fields:   requestFields(request),
	})

	return mapLeaveToResponse(request), nil
}

// GetRequest implements leave.LeaveService. Members only see their own
// requests unless they may view everyone's.
func (l *LeaveServiceImpl) GetRequest(ctx context.Context, actor employee.Actor, id string) (leave.LeaveRequestResponse, error) {
	if !validator.IsValidUUID(id) {
		return leave.LeaveRequestResponse{}, leave.ErrLeaveRequestNotFound
	}

	emp, err := l.employeeService.Authorize(ctx, actor, employee.PermissionLeaveCreate)
	if err != nil {
		return leave.LeaveRequestResponse{}, err
	}

	request, err := l.LeaveRequestRepository.GetByID(ctx, id, actor.GuildID, false)
	if err != nil {
		return leave.LeaveRequestResponse{}, err
	}

	if request.EmployeeID != emp.ID {
		if _, err := l.employeeService.Authorize(ctx, actor, employee.PermissionLeaveViewAll); err != nil {
			return leave.LeaveRequestResponse{}, err
		}
	}

	return mapLeaveToResponse(request), nil
}

// ListRequests implements leave.LeaveService.
func (l *LeaveServiceImpl) ListRequests(ctx context.Context, filter leave.LeaveFilter) (leave.ListLeaveResponse, error) {
	if err := filter.Validate(); err != nil {
		return leave.ListLeaveResponse{}, err
	}

	emp, err := l.employeeService.Authorize(ctx, filter.Actor, employee.PermissionLeaveCreate)
	if err != nil {
		return leave.ListLeaveResponse{}, err
	}

	filter.GuildID = filter.Actor.GuildID
	switch {
	case filter.Mine, filter.UserID != nil && *filter.UserID == emp.UserID:
		filter.UserID = nil
		filter.EmployeeID = &emp.ID
	default:
		if _, err := l.employeeService.Authorize(ctx, filter.Actor, employee.PermissionLeaveViewAll); err != nil {
			return leave.ListLeaveResponse{}, err
		}
	}

	requests, total, err := l.LeaveRequestRepository.List(ctx, filter)
	if err != nil {
		return leave.ListLeaveResponse{}, fmt.Errorf("failed to list leave requests: %w", err)
	}

	responses := make([]leave.LeaveRequestResponse, 0, len(requests))
	for _, request := range requests {
		responses = append(responses, mapLeaveToResponse(request))
	}

	totalPages := int(math.Ceil(float64(total) / float64(filter.Limit)))
	showing := fmt.Sprintf("%d-%d of %d", (filter.Page-1)*filter.Limit+1, min(filter.Page*filter.Limit, int(total)), total)
	if total == 0 {
		showing = "0 of 0"
	}

	return leave.ListLeaveResponse{
		TotalCount: total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: totalPages,
		Showing:    showing,
		Requests:   responses,
	}, nil
}

// Balance implements leave.LeaveService.
func (l *LeaveServiceImpl) Balance(ctx context.Context, actor employee.Actor, year int) (leave.BalanceResponse, error) {
	if year == 0 {
		year = l.now().UTC().Year()
	}

	emp, err := l.employeeService.Authorize(ctx, actor, employee.PermissionLeaveCreate)
	if err != nil {
		return leave.BalanceResponse{}, err
	}

	balances, err := l.quotaService.Balance(ctx, emp.ID, year)
	if err != nil {
		return leave.BalanceResponse{}, err
	}

	return leave.BalanceResponse{
		UserID:   emp.UserID,
		Year:     year,
		Balances: balances,
	}, nil
}

func (l *LeaveServiceImpl) notify(ctx context.Context, notice notification.Notice) {
	if l.notifier == nil || notice.RecipientID == "" {
		return
	}
	notice.CreatedAt = l.now().UTC()
	if err := l.notifier.Notify(ctx, notice); err != nil {
		slog.Warn("Failed to queue direct message", "type", notice.Type, "user_id", notice.RecipientID, "error", err)
	}
}

func (l *LeaveServiceImpl) announce(ctx context.Context, notice notification.Notice) {
	if l.notifier == nil || l.reviewChannelID == "" {
		return
	}
	notice.CreatedAt = l.now().UTC()
	if err := l.notifier.Announce(ctx, l.reviewChannelID, notice); err != nil {
		slog.Warn("Failed to queue channel post", "type", notice.Type, "channel_id", l.reviewChannelID, "error", err)
	}
}

func requestFields(request leave.LeaveRequest) []notification.Field {
	period := request.StartDate.Format("2006-01-02")
	if !request.EndDate.Equal(request.StartDate) {
		period += " to " + request.EndDate.Format("2006-01-02")
	}
	return []notification.Field{
		{Name: "Type", Value: string(request.Type), Inline: true},
		{Name: "Period", Value: period, Inline: true},
		{Name: "Working days", Value: fmt.Sprintf("%d", request.Days), Inline: true},
		{Name: "Reason", Value: request.Reason},
		{Name: "Request ID", Value: request.ID},
	}
}

// timePtrToString safely converts a *time.Time to a string.
func timePtrToString(t *time.Time) *string {
	if t == nil {
		return nil
	}
	format := t.UTC().Format(time.RFC3339)
	return &format
}

func strPtrValue(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func mapLeaveToResponse(request leave.LeaveRequest) leave.LeaveRequestResponse {
	return leave.LeaveRequestResponse{
		ID:              request.ID,
		EmployeeID:      request.EmployeeID,
		UserID:          strPtrValue(request.EmployeeUserID),
		EmployeeName:    strPtrValue(request.EmployeeName),
		Type:            string(request.Type),
		StartDate:       request.StartDate.Format("2006-01-02"),
		EndDate:         request.EndDate.Format("2006-01-02"),
		Days:            request.Days,
		Reason:          request.Reason,
		Status:          string(request.Status),
		DecidedBy:       request.DecidedBy,
		DecidedAt:       timePtrToString(request.DecidedAt),
		RejectionReason: request.RejectionReason,
		CancelledAt:     timePtrToString(request.CancelledAt),
		CreatedAt:       request.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:       request.UpdatedAt.UTC().Format(time.RFC3339),
	}
}
