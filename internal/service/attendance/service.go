package attendance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"time"

	"github.com/cmlabs-hris/hris-attendance-bot/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-attendance-bot/internal/domain/compliance"
	"github.com/cmlabs-hris/hris-attendance-bot/internal/domain/employee"
	"github.com/cmlabs-hris/hris-attendance-bot/internal/domain/notification"
	"github.com/cmlabs-hris/hris-attendance-bot/internal/pkg/chat"
	"github.com/cmlabs-hris/hris-attendance-bot/internal/pkg/database"
	"github.com/cmlabs-hris/hris-attendance-bot/internal/pkg/metrics"
	"github.com/google/uuid"
)

type AttendanceServiceImpl struct {
	db database.Transactor
	attendance.AttendanceRepository
	employeeService   employee.EmployeeService
	complianceService compliance.Service
	notifier          notification.Service
	presence          chat.Presence
	policy            attendance.Policy
	logChannelID      string
	metrics           *metrics.Metrics
	now               func() time.Time
}

var _ attendance.AttendanceService = (*AttendanceServiceImpl)(nil)

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

// ClockIn implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) ClockIn(ctx context.Context, req attendance.ClockInRequest) (attendance.AttendanceResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.AttendanceResponse{}, err
	}

	emp, err := a.employeeService.Authorize(ctx, req.Actor, employee.PermissionAttendanceClock)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}

	if a.policy.RequireScreenShare {
		voice, err := a.presence.VoiceStatus(req.Actor.GuildID, req.Actor.UserID)
		if err != nil {
			return attendance.AttendanceResponse{}, fmt.Errorf("failed to read voice state: %w", err)
		}
		if !voice.InVoice {
			return attendance.AttendanceResponse{}, attendance.ErrNotInVoiceChannel
		}
		if !voice.Streaming {
			return attendance.AttendanceResponse{}, attendance.ErrNotScreenSharing
		}
	}

	nowUTC := a.now().UTC()
	workDate := attendance.WorkDate(nowUTC)

	var saved attendance.Attendance
	err = a.db.WithinTransaction(ctx, func(ctx context.Context) error {
		// The first clock-in of a day inserts the row; concurrent attempts
		// queue on the employee instead of racing the unique key.
		if err := a.employeeService.Lock(ctx, emp.ID); err != nil {
			return fmt.Errorf("failed to lock employee: %w", err)
		}

		open, err := a.AttendanceRepository.GetOpenSession(ctx, emp.ID)
		switch {
		case err == nil:
			if open.Status == attendance.StatusOnBreak {
				return attendance.ErrOnBreak
			}
			return attendance.ErrAlreadyClockedIn
		case !errors.Is(err, attendance.ErrAttendanceNotFound):
			return fmt.Errorf("failed to get open session: %w", err)
		}

		today, err := a.AttendanceRepository.GetByEmployeeAndDate(ctx, emp.ID, workDate, true)
		if errors.Is(err, attendance.ErrAttendanceNotFound) {
			today = attendance.Attendance{
				ID:         uuid.Must(uuid.NewV7()).String(),
				EmployeeID: emp.ID,
				GuildID:    emp.GuildID,
				WorkDate:   workDate,
				ClockIns:   []time.Time{nowUTC},
				Status:     attendance.StatusWorking,
			}
			today.IsLate, today.LateMinutes = a.policy.Lateness(nowUTC)

			saved, err = a.AttendanceRepository.Create(ctx, today)
			if err != nil {
				return fmt.Errorf("failed to create attendance: %w", err)
			}
			return a.recordLateness(ctx, saved)
		}
		if err != nil {
			return fmt.Errorf("failed to get attendance: %w", err)
		}

		switch today.Status {
		case attendance.StatusOnLeave:
			return attendance.ErrOnLeaveToday
		case attendance.StatusAbsent:
			// Late arrival turns the absence into a working day
			today.ClockIns = []time.Time{nowUTC}
			today.IsLate, today.LateMinutes = a.policy.Lateness(nowUTC)
		default:
			today.ClockIns = append(today.ClockIns, nowUTC)
		}
		today.Status = attendance.StatusWorking
		today.ScreenShareStrikes = 0
		today.Recalculate(nowUTC)

		if err := a.AttendanceRepository.Update(ctx, today); err != nil {
			return fmt.Errorf("failed to update attendance: %w", err)
		}
		saved = today

		if len(today.ClockIns) == 1 {
			return a.recordLateness(ctx, saved)
		}
		return nil
	})
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}

	a.metrics.RecordAttendance("clock_in")
	slog.Info("Employee clocked in", "guild_id", emp.GuildID, "user_id", emp.UserID, "late", saved.IsLate, "segment", len(saved.ClockIns))

	a.announce(ctx, notification.Notice{
		GuildID:  emp.GuildID,
		Type:     notification.TypeClockIn,
		Severity: notification.SeveritySuccess,
		Title:    "Clocked in",
		Message:  fmt.Sprintf("<@%s> clocked in.", emp.UserID),
		Fields: []notification.Field{
			{Name: "Time", Value: nowUTC.Format("15:04 UTC"), Inline: true},
			{Name: "Session", Value: fmt.Sprintf("#%d", len(saved.ClockIns)), Inline: true},
		},
	})
	if saved.IsLate && len(saved.ClockIns) == 1 {
		a.notify(ctx, notification.Notice{
			GuildID:     emp.GuildID,
			RecipientID: emp.UserID,
			Type:        notification.TypeLate,
			Severity:    notification.SeverityWarning,
			Title:       "Late clock-in",
			Message:     fmt.Sprintf("You clocked in %d minutes after the scheduled start.", saved.LateMinutes),
		})
	}

	return a.toResponse(saved, nowUTC), nil
}

func (a *AttendanceServiceImpl) recordLateness(ctx context.Context, att attendance.Attendance) error {
	if !att.IsLate {
		return nil
	}
	return a.complianceService.Record(ctx, compliance.RecordRequest{
		EmployeeID:   att.EmployeeID,
		GuildID:      att.GuildID,
		Kind:         compliance.KindLate,
		AttendanceID: &att.ID,
		Details:      fmt.Sprintf("%d minutes late", att.LateMinutes),
		OccurredAt:   att.ClockIns[0],
	})
}

// ClockOut implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) ClockOut(ctx context.Context, req attendance.ClockOutRequest) (attendance.AttendanceResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.AttendanceResponse{}, err
	}

	emp, err := a.employeeService.Authorize(ctx, req.Actor, employee.PermissionAttendanceClock)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}

	nowUTC := a.now().UTC()

	var saved attendance.Attendance
	err = a.db.WithinTransaction(ctx, func(ctx context.Context) error {
		open, err := a.openSession(ctx, emp.ID)
		if err != nil {
			return err
		}

		crossed := a.closeSession(&open, nowUTC, attendance.StatusClockedOut)
		if req.Note != nil && *req.Note != "" {
			open.Notes = req.Note
		}

		if err := a.AttendanceRepository.Update(ctx, open); err != nil {
			return fmt.Errorf("failed to update attendance: %w", err)
		}
		saved = open

		if crossed {
			return a.recordBreakOverrun(ctx, open, nowUTC)
		}
		return nil
	})
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}

	a.metrics.RecordAttendance("clock_out")
	slog.Info("Employee clocked out", "guild_id", emp.GuildID, "user_id", emp.UserID, "worked_minutes", saved.WorkedMinutes)

	a.announce(ctx, notification.Notice{
		GuildID:  emp.GuildID,
		Type:     notification.TypeClockOut,
		Severity: notification.SeverityInfo,
		Title:    "Clocked out",
		Message:  fmt.Sprintf("<@%s> clocked out.", emp.UserID),
		Fields: []notification.Field{
			{Name: "Worked", Value: formatMinutes(saved.WorkedMinutes), Inline: true},
			{Name: "Break", Value: formatMinutes(saved.BreakMinutes), Inline: true},
		},
	})

	return a.toResponse(saved, nowUTC), nil
}

// StartBreak implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) StartBreak(ctx context.Context, req attendance.BreakRequest) (attendance.AttendanceResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.AttendanceResponse{}, err
	}

	emp, err := a.employeeService.Authorize(ctx, req.Actor, employee.PermissionAttendanceClock)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}

	nowUTC := a.now().UTC()

	var saved attendance.Attendance
	err = a.db.WithinTransaction(ctx, func(ctx context.Context) error {
		open, err := a.openSession(ctx, emp.ID)
		if err != nil {
			return err
		}
		if open.Status == attendance.StatusOnBreak {
			return attendance.ErrAlreadyOnBreak
		}

		open.BreakStarts = append(open.BreakStarts, nowUTC)
		open.Status = attendance.StatusOnBreak
		open.Recalculate(nowUTC)

		if err := a.AttendanceRepository.Update(ctx, open); err != nil {
			return fmt.Errorf("failed to update attendance: %w", err)
		}
		saved = open
		return nil
	})
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}

	a.metrics.RecordAttendance("break_start")
	slog.Info("Employee started break", "guild_id", emp.GuildID, "user_id", emp.UserID)

	return a.toResponse(saved, nowUTC), nil
}

// EndBreak implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) EndBreak(ctx context.Context, req attendance.BreakRequest) (attendance.AttendanceResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.AttendanceResponse{}, err
	}

	emp, err := a.employeeService.Authorize(ctx, req.Actor, employee.PermissionAttendanceClock)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}

	nowUTC := a.now().UTC()

	var saved attendance.Attendance
	err = a.db.WithinTransaction(ctx, func(ctx context.Context) error {
		open, err := a.AttendanceRepository.GetOpenSession(ctx, emp.ID)
		if errors.Is(err, attendance.ErrAttendanceNotFound) {
			return attendance.ErrNotOnBreak
		}
		if err != nil {
			return fmt.Errorf("failed to get open session: %w", err)
		}
		if open.Status != attendance.StatusOnBreak {
			return attendance.ErrNotOnBreak
		}

		crossed := a.endBreak(&open, nowUTC)
		open.Status = attendance.StatusWorking
		open.Recalculate(nowUTC)

		if err := a.AttendanceRepository.Update(ctx, open); err != nil {
			return fmt.Errorf("failed to update attendance: %w", err)
		}
		saved = open

		if crossed {
			return a.recordBreakOverrun(ctx, open, nowUTC)
		}
		return nil
	})
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}

	a.metrics.RecordAttendance("break_end")
	slog.Info("Employee ended break", "guild_id", emp.GuildID, "user_id", emp.UserID, "break_minutes", saved.BreakMinutes)

	return a.toResponse(saved, nowUTC), nil
}

func (a *AttendanceServiceImpl) openSession(ctx context.Context, employeeID string) (attendance.Attendance, error) {
	open, err := a.AttendanceRepository.GetOpenSession(ctx, employeeID)
	if errors.Is(err, attendance.ErrAttendanceNotFound) {
		return attendance.Attendance{}, attendance.ErrNotClockedIn
	}
	if err != nil {
		return attendance.Attendance{}, fmt.Errorf("failed to get open session: %w", err)
	}
	return open, nil
}

// endBreak closes the open break at at and reports whether that pushed the
// day's break total over the allowance for the first time.
func (a *AttendanceServiceImpl) endBreak(att *attendance.Attendance, at time.Time) bool {
	if !att.HasOpenBreak() {
		return false
	}

	before := *att
	before.BreakStarts = att.BreakStarts[:len(att.BreakEnds)]
	wasExceeded := a.policy.BreakExceeded(before, at)

	att.BreakEnds = append(att.BreakEnds, at)
	return !wasExceeded && a.policy.BreakExceeded(*att, at)
}

// closeSession ends the open segment (and any open break) at at.
func (a *AttendanceServiceImpl) closeSession(att *attendance.Attendance, at time.Time, status attendance.Status) bool {
	if last := att.LastClockIn(); last != nil && at.Before(*last) {
		at = *last
	}
	crossed := a.endBreak(att, at)
	if att.HasOpenSegment() {
		att.ClockOuts = append(att.ClockOuts, at)
	}
	att.Status = status
	att.Recalculate(at)
	return crossed
}

func (a *AttendanceServiceImpl) recordBreakOverrun(ctx context.Context, att attendance.Attendance, at time.Time) error {
	return a.complianceService.Record(ctx, compliance.RecordRequest{
		EmployeeID:   att.EmployeeID,
		GuildID:      att.GuildID,
		Kind:         compliance.KindBreakOverrun,
		AttendanceID: &att.ID,
		Details: fmt.Sprintf("%s of breaks, allowance %s",
			formatMinutes(att.BreakMinutes), formatMinutes(int(a.policy.BreakAllowance.Minutes()))),
		OccurredAt: at,
	})
}

// Status implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) Status(ctx context.Context, actor employee.Actor) (attendance.StatusResponse, error) {
	emp, err := a.employeeService.Authorize(ctx, actor, employee.PermissionAttendanceViewOwn)
	if err != nil {
		return attendance.StatusResponse{}, err
	}

	nowUTC := a.now().UTC()
	workDate := attendance.WorkDate(nowUTC)

	resp := attendance.StatusResponse{
		WorkDate:      workDate.Format("2006-01-02"),
		IsWorkDay:     a.policy.IsWorkDay(workDate),
		LateThreshold: a.policy.LateThreshold(workDate).Format("15:04 UTC"),
	}

	today, err := a.AttendanceRepository.GetByEmployeeAndDate(ctx, emp.ID, workDate, false)
	switch {
	case err == nil:
		r := a.toResponse(today, nowUTC)
		resp.Today = &r
	case !errors.Is(err, attendance.ErrAttendanceNotFound):
		return attendance.StatusResponse{}, fmt.Errorf("failed to get attendance: %w", err)
	}

	open, err := a.AttendanceRepository.GetOpenSession(ctx, emp.ID)
	switch {
	case err == nil:
		r := a.toResponse(open, nowUTC)
		resp.OpenSession = &r
	case !errors.Is(err, attendance.ErrAttendanceNotFound):
		return attendance.StatusResponse{}, fmt.Errorf("failed to get open session: %w", err)
	}

	onLeave := resp.Today != nil && resp.Today.Status == string(attendance.StatusOnLeave)

	switch {
	case resp.OpenSession != nil && resp.OpenSession.Status == string(attendance.StatusOnBreak):
		resp.CanClockOut = true
		resp.CanEndBreak = true
		resp.Message = fmt.Sprintf("On break. Worked %s so far.", formatMinutes(resp.OpenSession.WorkedMinutes))
	case resp.OpenSession != nil:
		resp.CanClockOut = true
		resp.CanStartBreak = true
		resp.Message = fmt.Sprintf("Working. Worked %s so far.", formatMinutes(resp.OpenSession.WorkedMinutes))
	case onLeave:
		resp.Message = "You are on approved leave today."
	case resp.Today != nil && resp.Today.Status != string(attendance.StatusAbsent):
		resp.CanClockIn = true
		resp.Message = fmt.Sprintf("Clocked out. Worked %s today.", formatMinutes(resp.Today.WorkedMinutes))
	default:
		resp.CanClockIn = true
		resp.Message = "Not clocked in yet."
	}

	return resp, nil
}

// History implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) History(ctx context.Context, filter attendance.HistoryFilter) (attendance.ListAttendanceResponse, error) {
	if err := filter.Validate(); err != nil {
		return attendance.ListAttendanceResponse{}, err
	}

	target, err := a.employeeService.Authorize(ctx, filter.Actor, employee.PermissionAttendanceViewOwn)
	if err != nil {
		return attendance.ListAttendanceResponse{}, err
	}

	if filter.TargetUserID != nil && *filter.TargetUserID != filter.Actor.UserID {
		if _, err := a.employeeService.Authorize(ctx, filter.Actor, employee.PermissionAttendanceViewAll); err != nil {
			return attendance.ListAttendanceResponse{}, err
		}
		target, err = a.employeeService.Find(ctx, filter.Actor.GuildID, *filter.TargetUserID)
		if err != nil {
			return attendance.ListAttendanceResponse{}, err
		}
	}

	return a.ListAttendance(ctx, attendance.AttendanceFilter{
		GuildID:    filter.Actor.GuildID,
		EmployeeID: &target.ID,
		StartDate:  filter.StartDate,
		EndDate:    filter.EndDate,
		Page:       filter.Page,
		Limit:      filter.Limit,
		SortBy:     "work_date",
		SortOrder:  "desc",
	})
}

// Today implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) Today(ctx context.Context, actor employee.Actor) (attendance.TodayResponse, error) {
	if _, err := a.employeeService.Authorize(ctx, actor, employee.PermissionAttendanceViewAll); err != nil {
		return attendance.TodayResponse{}, err
	}
	return a.todayOverview(ctx, actor.GuildID)
}

// todayOverview groups the guild's members by today's record.
func (a *AttendanceServiceImpl) todayOverview(ctx context.Context, guildID string) (attendance.TodayResponse, error) {
	nowUTC := a.now().UTC()
	workDate := attendance.WorkDate(nowUTC)

	members, err := a.employeeService.ListActive(ctx, guildID)
	if err != nil {
		return attendance.TodayResponse{}, fmt.Errorf("failed to list employees: %w", err)
	}

	records, err := a.AttendanceRepository.ListByDate(ctx, guildID, workDate)
	if err != nil {
		return attendance.TodayResponse{}, fmt.Errorf("failed to list attendances: %w", err)
	}

	resp := attendance.TodayResponse{
		WorkDate:   workDate.Format("2006-01-02"),
		Working:    []attendance.TodayEntry{},
		OnBreak:    []attendance.TodayEntry{},
		ClockedOut: []attendance.TodayEntry{},
		OnLeave:    []attendance.TodayEntry{},
		Absent:     []attendance.TodayEntry{},
		NotYetIn:   []attendance.TodayEntry{},
	}

	seen := make(map[string]bool, len(records))
	for _, att := range records {
		seen[att.EmployeeID] = true
		att.Recalculate(nowUTC)

		entry := attendance.TodayEntry{
			UserID:        strPtrValue(att.EmployeeUserID),
			EmployeeName:  strPtrValue(att.EmployeeName),
			WorkedMinutes: att.WorkedMinutes,
			IsLate:        att.IsLate,
		}

		switch att.Status {
		case attendance.StatusWorking:
			entry.Since = timePtrToString(att.LastClockIn())
			resp.Working = append(resp.Working, entry)
		case attendance.StatusOnBreak:
			since := att.BreakStarts[len(att.BreakStarts)-1]
			entry.Since = timePtrToString(&since)
			resp.OnBreak = append(resp.OnBreak, entry)
		case attendance.StatusOnLeave:
			resp.OnLeave = append(resp.OnLeave, entry)
		case attendance.StatusAbsent:
			resp.Absent = append(resp.Absent, entry)
		default:
			entry.Since = timePtrToString(att.LastClockOut())
			resp.ClockedOut = append(resp.ClockedOut, entry)
		}
	}

	for _, m := range members {
		if seen[m.ID] {
			continue
		}
		resp.NotYetIn = append(resp.NotYetIn, attendance.TodayEntry{
			UserID:       m.UserID,
			EmployeeName: m.DisplayName,
		})
	}

	for _, group := range [][]attendance.TodayEntry{resp.Working, resp.OnBreak, resp.ClockedOut, resp.OnLeave, resp.Absent, resp.NotYetIn} {
		sort.Slice(group, func(i, j int) bool { return group[i].EmployeeName < group[j].EmployeeName })
	}

	return resp, nil
}

// ListAttendance implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) ListAttendance(ctx context.Context, filter attendance.AttendanceFilter) (attendance.ListAttendanceResponse, error) {
	if err := filter.Validate(); err != nil {
		return attendance.ListAttendanceResponse{}, err
	}

	attendances, total, err := a.AttendanceRepository.List(ctx, filter)
	if err != nil {
		return attendance.ListAttendanceResponse{}, fmt.Errorf("failed to list attendances: %w", err)
	}

	nowUTC := a.now().UTC()

	// Map to response
	responses := make([]attendance.AttendanceResponse, 0, len(attendances))
	for _, att := range attendances {
		responses = append(responses, a.toResponse(att, nowUTC))
	}

	totalPages := int(math.Ceil(float64(total) / float64(filter.Limit)))
	showing := fmt.Sprintf("%d-%d of %d", (filter.Page-1)*filter.Limit+1, min(filter.Page*filter.Limit, int(total)), total)
	if total == 0 {
		showing = "0 of 0"
	}

	return attendance.ListAttendanceResponse{
		TotalCount:  total,
		Page:        filter.Page,
		Limit:       filter.Limit,
		TotalPages:  totalPages,
		Showing:     showing,
		Attendances: responses,
	}, nil
}

// GetAttendance implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) GetAttendance(ctx context.Context, guildID string, id string) (attendance.AttendanceResponse, error) {
	att, err := a.AttendanceRepository.GetByID(ctx, id, guildID)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}
	return a.toResponse(att, a.now().UTC()), nil
}

// toResponse converts an Attendance entity to AttendanceResponse. Open
// segments and breaks are counted up to now.
func (a *AttendanceServiceImpl) toResponse(att attendance.Attendance, now time.Time) attendance.AttendanceResponse {
	if att.Status.IsOpen() {
		att.Recalculate(now)
	}

	segments := make([]attendance.SegmentResponse, 0, len(att.ClockIns))
	for i, in := range att.ClockIns {
		seg := attendance.SegmentResponse{Start: in.UTC().Format(time.RFC3339)}
		end := now
		if i < len(att.ClockOuts) {
			end = att.ClockOuts[i]
			seg.End = timePtrToString(&end)
		}
		seg.Minutes = int(end.Sub(in).Minutes())
		segments = append(segments, seg)
	}

	breaks := make([]attendance.SegmentResponse, 0, len(att.BreakStarts))
	for i, start := range att.BreakStarts {
		br := attendance.SegmentResponse{Start: start.UTC().Format(time.RFC3339)}
		end := now
		if i < len(att.BreakEnds) {
			end = att.BreakEnds[i]
			br.End = timePtrToString(&end)
		}
		br.Minutes = int(end.Sub(start).Minutes())
		breaks = append(breaks, br)
	}

	return attendance.AttendanceResponse{
		ID:                 att.ID,
		EmployeeID:         att.EmployeeID,
		UserID:             strPtrValue(att.EmployeeUserID),
		EmployeeName:       strPtrValue(att.EmployeeName),
		WorkDate:           att.WorkDate.Format("2006-01-02"),
		Status:             string(att.Status),
		Segments:           segments,
		Breaks:             breaks,
		FirstClockIn:       timePtrToString(att.FirstClockIn()),
		LastClockOut:       timePtrToString(att.LastClockOut()),
		IsLate:             att.IsLate,
		LateMinutes:        att.LateMinutes,
		WorkedMinutes:      att.WorkedMinutes,
		WorkingHours:       math.Round(float64(att.WorkedMinutes)/60.0*100) / 100,
		BreakMinutes:       att.BreakMinutes,
		BreakOverrun:       a.policy.BreakExceeded(att, now),
		ScreenShareStrikes: att.ScreenShareStrikes,
		LastVerifiedAt:     timePtrToString(att.LastVerifiedAt),
		LeaveRequestID:     att.LeaveRequestID,
		Notes:              att.Notes,
		CreatedAt:          att.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:          att.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

func formatMinutes(minutes int) string {
	if minutes < 60 {
		return fmt.Sprintf("%dm", minutes)
	}
	return fmt.Sprintf("%dh %02dm", minutes/60, minutes%60)
}

// notify and announce are best effort: failures are logged and dropped.
func (a *AttendanceServiceImpl) notify(ctx context.Context, notice notification.Notice) {
	if a.notifier == nil || notice.RecipientID == "" {
		return
	}
	notice.CreatedAt = a.now().UTC()
	if err := a.notifier.Notify(ctx, notice); err != nil {
		slog.Warn("Failed to queue direct message", "type", notice.Type, "user_id", notice.RecipientID, "error", err)
	}
}

func (a *AttendanceServiceImpl) announce(ctx context.Context, notice notification.Notice) {
	if a.notifier == nil || a.logChannelID == "" {
		return
	}
	notice.CreatedAt = a.now().UTC()
	if err := a.notifier.Announce(ctx, a.logChannelID, notice); err != nil {
		slog.Warn("Failed to queue channel post", "type", notice.Type, "channel_id", a.logChannelID, "error", err)
	}
}

func NewAttendanceService(
	db database.Transactor,
	attendanceRepo attendance.AttendanceRepository,
	employeeService employee.EmployeeService,
	complianceService compliance.Service,
	notifier notification.Service,
	presence chat.Presence,
	policy attendance.Policy,
	logChannelID string,
	m *metrics.Metrics,
) *AttendanceServiceImpl {
	return &AttendanceServiceImpl{
		db:                   db,
		AttendanceRepository: attendanceRepo,
		employeeService:      employeeService,
		complianceService:    complianceService,
		notifier:             notifier,
		presence:             presence,
		policy:               policy,
		logChannelID:         logChannelID,
		metrics:              m,
		now:                  time.Now,
	}
}
