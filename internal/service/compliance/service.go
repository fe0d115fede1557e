package compliance

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/cmlabs-hris/hris-attendance-bot/internal/domain/compliance"
	"github.com/cmlabs-hris/hris-attendance-bot/internal/domain/employee"
	"github.com/cmlabs-hris/hris-attendance-bot/internal/pkg/metrics"
	"github.com/google/uuid"
)

type ComplianceServiceImpl struct {
	complianceRepo  compliance.Repository
	employeeService employee.EmployeeService
	metrics         *metrics.Metrics
	now             func() time.Time
}

func NewComplianceService(
	complianceRepo compliance.Repository,
	employeeService employee.EmployeeService,
	m *metrics.Metrics,
) compliance.Service {
	return &ComplianceServiceImpl{
		complianceRepo:  complianceRepo,
		employeeService: employeeService,
		metrics:         m,
		now:             time.Now,
	}
}

// Record implements compliance.Service.
func (s *ComplianceServiceImpl) Record(ctx context.Context, req compliance.RecordRequest) error {
	if !req.Kind.IsValid() {
		return compliance.ErrInvalidKind
	}

	occurredAt := req.OccurredAt
	if occurredAt.IsZero() {
		occurredAt = s.now()
	}

	event, err := s.complianceRepo.Create(ctx, compliance.Event{
		ID:           uuid.Must(uuid.NewV7()).String(),
		EmployeeID:   req.EmployeeID,
		GuildID:      req.GuildID,
		Kind:         req.Kind,
		AttendanceID: req.AttendanceID,
		Details:      req.Details,
		OccurredAt:   occurredAt.UTC(),
	})
	if err != nil {
		return fmt.Errorf("failed to record compliance event: %w", err)
	}

	s.metrics.RecordCompliance(string(event.Kind))
	slog.Debug("Compliance event recorded", "employee_id", event.EmployeeID, "kind", event.Kind)
	return nil
}

// Report implements compliance.Service.
func (s *ComplianceServiceImpl) Report(ctx context.Context, req compliance.ReportRequest) (compliance.ReportResponse, error) {
	if err := req.Validate(); err != nil {
		return compliance.ReportResponse{}, err
	}

	target, err := s.employeeService.Authorize(ctx, req.Actor, employee.PermissionComplianceViewOwn)
	if err != nil {
		return compliance.ReportResponse{}, err
	}

	if req.TargetUserID != nil && *req.TargetUserID != req.Actor.UserID {
		if _, err := s.employeeService.Authorize(ctx, req.Actor, employee.PermissionComplianceViewAll); err != nil {
			return compliance.ReportResponse{}, err
		}
		target, err = s.employeeService.Find(ctx, req.Actor.GuildID, *req.TargetUserID)
		if err != nil {
			return compliance.ReportResponse{}, err
		}
	}

	from := time.Date(s.now().UTC().Year(), s.now().UTC().Month(), 1, 0, 0, 0, 0, time.UTC)
	if req.Month != "" {
		from, _ = time.Parse("2006-01", req.Month)
	}
	to := from.AddDate(0, 1, 0)

	events, err := s.complianceRepo.ListByEmployee(ctx, target.ID, from, to)
	if err != nil {
		return compliance.ReportResponse{}, fmt.Errorf("failed to list compliance events: %w", err)
	}

	totals := make(map[string]int, len(compliance.AllKinds()))
	for _, kind := range compliance.AllKinds() {
		totals[string(kind)] = 0
	}

	responses := make([]compliance.EventResponse, 0, len(events))
	for _, ev := range events {
		totals[string(ev.Kind)]++
		responses = append(responses, compliance.EventResponse{
			ID:           ev.ID,
			Kind:         string(ev.Kind),
			AttendanceID: ev.AttendanceID,
			Details:      ev.Details,
			OccurredAt:   ev.OccurredAt.UTC().Format(time.RFC3339),
		})
	}

	return compliance.ReportResponse{
		UserID:       target.UserID,
		EmployeeName: target.DisplayName,
		Month:        from.Format("2006-01"),
		Totals:       totals,
		Events:       responses,
	}, nil
}

// Summary implements compliance.Service.
func (s *ComplianceServiceImpl) Summary(ctx context.Context, req compliance.SummaryRequest) (compliance.SummaryResponse, error) {
	if err := req.Validate(); err != nil {
		return compliance.SummaryResponse{}, err
	}

	if _, err := s.employeeService.Authorize(ctx, req.Actor, employee.PermissionComplianceViewAll); err != nil {
		return compliance.SummaryResponse{}, err
	}

	from, _ := time.Parse("2006-01-02", req.StartDate)
	end, _ := time.Parse("2006-01-02", req.EndDate)
	to := end.AddDate(0, 0, 1)

	counts, err := s.complianceRepo.CountByEmployee(ctx, req.Actor.GuildID, from, to)
	if err != nil {
		return compliance.SummaryResponse{}, fmt.Errorf("failed to count compliance events: %w", err)
	}

	byEmployee := make(map[string]*compliance.EmployeeSummary)
	var order []string
	for _, c := range counts {
		summary, ok := byEmployee[c.EmployeeID]
		if !ok {
			summary = &compliance.EmployeeSummary{
				UserID:       c.UserID,
				EmployeeName: c.EmployeeName,
				Totals:       make(map[string]int),
			}
			byEmployee[c.EmployeeID] = summary
			order = append(order, c.EmployeeID)
		}
		summary.Totals[string(c.Kind)] += c.Total
		summary.Total += c.Total
	}

	employees := make([]compliance.EmployeeSummary, 0, len(order))
	for _, id := range order {
		employees = append(employees, *byEmployee[id])
	}
	// Worst offenders first
	sort.SliceStable(employees, func(i, j int) bool { return employees[i].Total > employees[j].Total })

	return compliance.SummaryResponse{
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
		Employees: employees,
	}, nil
}
