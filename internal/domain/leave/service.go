package leave

import (
	"context"

	"github.com/cmlabs-hris/hris-attendance-bot/internal/domain/employee"
)

type LeaveService interface {
	// Request
	CreateRequest(ctx context.Context, req CreateLeaveRequest) (LeaveRequestResponse, error)
	Cancel(ctx context.Context, req CancelLeaveRequest) (LeaveRequestResponse, error)

	// Review (manager)
	Approve(ctx context.Context, req DecisionRequest) (LeaveRequestResponse, error)
	Reject(ctx context.Context, req DecisionRequest) (LeaveRequestResponse, error)

	// Queries
	GetRequest(ctx context.Context, actor employee.Actor, id string) (LeaveRequestResponse, error)
	ListRequests(ctx context.Context, filter LeaveFilter) (ListLeaveResponse, error)
	Balance(ctx context.Context, actor employee.Actor, year int) (BalanceResponse, error)
}
