package leave

import (
	"context"
	"fmt"

	"github.com/cmlabs-hris/hris-attendance-bot/internal/domain/leave"
)

// QuotaService answers yearly allowance questions. A request counts against
// the year its start date falls in.
type QuotaService struct {
	leave.LeaveRequestRepository
	policy leave.Policy
}

func NewQuotaService(leaveRequestRepository leave.LeaveRequestRepository, policy leave.Policy) *QuotaService {
	return &QuotaService{
		LeaveRequestRepository: leaveRequestRepository,
		policy:                 policy,
	}
}

// Reserve fails with ErrInsufficientQuota unless days more of leaveType fit
// into the employee's allowance. With includePending, pending requests are
// counted as already taken.
func (q *QuotaService) Reserve(ctx context.Context, employeeID string, leaveType leave.Type, year int, days int, includePending bool) error {
	quota, limited := q.policy.Quota(leaveType)
	if !limited {
		return nil
	}

	statuses := []leave.Status{leave.StatusApproved}
	if includePending {
		statuses = append(statuses, leave.StatusPending)
	}

	taken, err := q.LeaveRequestRepository.SumDays(ctx, employeeID, leaveType, year, statuses)
	if err != nil {
		return fmt.Errorf("failed to sum leave days: %w", err)
	}

	if taken+days > quota {
		return leave.ErrInsufficientQuota
	}
	return nil
}

// Balance reports the allowance of every leave type for one year.
func (q *QuotaService) Balance(ctx context.Context, employeeID string, year int) ([]leave.TypeBalance, error) {
	balances := make([]leave.TypeBalance, 0, len(leave.AllTypes()))

	for _, leaveType := range leave.AllTypes() {
		used, err := q.LeaveRequestRepository.SumDays(ctx, employeeID, leaveType, year, []leave.Status{leave.StatusApproved})
		if err != nil {
			return nil, fmt.Errorf("failed to sum used %s leave: %w", leaveType, err)
		}

		pending, err := q.LeaveRequestRepository.SumDays(ctx, employeeID, leaveType, year, []leave.Status{leave.StatusPending})
		if err != nil {
			return nil, fmt.Errorf("failed to sum pending %s leave: %w", leaveType, err)
		}

		balance := leave.TypeBalance{
			Type:    string(leaveType),
			Used:    used,
			Pending: pending,
		}
		if quota, limited := q.policy.Quota(leaveType); limited {
			available := quota - used - pending
			if available < 0 {
				available = 0
			}
			balance.Quota = &quota
			balance.Available = &available
		}
		balances = append(balances, balance)
	}

	return balances, nil
}
