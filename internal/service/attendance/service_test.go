package attendance

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/cmlabs-hris/hris-attendance-bot/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-attendance-bot/internal/domain/compliance"
	"github.com/cmlabs-hris/hris-attendance-bot/internal/domain/employee"
	"github.com/cmlabs-hris/hris-attendance-bot/internal/domain/notification"
	"github.com/cmlabs-hris/hris-attendance-bot/internal/pkg/chat"
	"github.com/cmlabs-hris/hris-attendance-bot/internal/repository/memory"
	compliancesvc "github.com/cmlabs-hris/hris-attendance-bot/internal/service/compliance"
	employeesvc "github.com/cmlabs-hris/hris-attendance-bot/internal/service/employee"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testGuild      = "100000000000000001"
	testLogChannel = "900000000000000001"
	aliceID        = "200000000000000001"
	bobID          = "200000000000000002"
	carolID        = "200000000000000003"
)

// 2026-10-14 is a Wednesday.
func wed(hour, minute int) time.Time {
	return time.Date(2026, time.October, 14, hour, minute, 0, 0, time.UTC)
}

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = t
}

type fakePresence struct {
	mu     sync.Mutex
	voices map[string]chat.VoiceStatus
}

func (p *fakePresence) VoiceStatus(guildID, userID string) (chat.VoiceStatus, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.voices[userID], nil
}

func (p *fakePresence) set(userID string, inVoice, streaming bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.voices[userID] = chat.VoiceStatus{InVoice: inVoice, ChannelID: "300000000000000001", Streaming: streaming}
}

type fakeNotifier struct {
	mu       sync.Mutex
	direct   []notification.Notice
	channels []notification.Notice
}

func (n *fakeNotifier) Notify(ctx context.Context, notice notification.Notice) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.direct = append(n.direct, notice)
	return nil
}

func (n *fakeNotifier) Announce(ctx context.Context, channelID string, notice notification.Notice) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	notice.ChannelID = channelID
	n.channels = append(n.channels, notice)
	return nil
}

func (n *fakeNotifier) Subscribe(ctx context.Context, guildID string) (<-chan notification.Event, func()) {
	return nil, func() {}
}

func (n *fakeNotifier) Stop() {}

func (n *fakeNotifier) directOf(t notification.Type) []notification.Notice {
	n.mu.Lock()
	defer n.mu.Unlock()
	var out []notification.Notice
	for _, notice := range n.direct {
		if notice.Type == t {
			out = append(out, notice)
		}
	}
	return out
}

type testEnv struct {
	store    *memory.Store
	svc      *AttendanceServiceImpl
	clock    *fakeClock
	presence *fakePresence
	notifier *fakeNotifier
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	store := memory.NewStore()
	employees := employeesvc.NewEmployeeService(store.Employees())
	complianceService := compliancesvc.NewComplianceService(store.Compliance(), employees, nil)

	env := &testEnv{
		store:    store,
		clock:    &fakeClock{t: wed(4, 0)},
		presence: &fakePresence{voices: make(map[string]chat.VoiceStatus)},
		notifier: &fakeNotifier{},
	}
	env.svc = NewAttendanceService(
		store,
		store.Attendances(),
		employees,
		complianceService,
		env.notifier,
		env.presence,
		attendance.DefaultPolicy(),
		testLogChannel,
		nil,
	)
	env.svc.now = env.clock.Now

	for _, id := range []string{aliceID, bobID, carolID} {
		env.presence.set(id, true, true)
	}
	return env
}

func actor(userID string) employee.Actor {
	return employee.Actor{GuildID: testGuild, UserID: userID, DisplayName: "user-" + userID[len(userID)-1:]}
}

func (e *testEnv) clockIn(t *testing.T, userID string, at time.Time) attendance.AttendanceResponse {
	t.Helper()
	e.clock.Set(at)
	resp, err := e.svc.ClockIn(context.Background(), attendance.ClockInRequest{Actor: actor(userID)})
	require.NoError(t, err)
	return resp
}

func (e *testEnv) clockOut(t *testing.T, userID string, at time.Time) attendance.AttendanceResponse {
	t.Helper()
	e.clock.Set(at)
	resp, err := e.svc.ClockOut(context.Background(), attendance.ClockOutRequest{Actor: actor(userID)})
	require.NoError(t, err)
	return resp
}

func (e *testEnv) eventsOf(kind compliance.Kind) []compliance.Event {
	var out []compliance.Event
	for _, ev := range e.store.Events() {
		if ev.Kind == kind {
			out = append(out, ev)
		}
	}
	return out
}

func (e *testEnv) registerManager(t *testing.T, userID string) {
	t.Helper()
	_, err := e.store.Employees().Upsert(context.Background(), employee.Employee{
		ID:          "01900000-0000-7000-8000-0000000000" + userID[len(userID)-2:],
		GuildID:     testGuild,
		UserID:      userID,
		DisplayName: "manager-" + userID[len(userID)-1:],
		Role:        employee.RoleManager,
		IsActive:    true,
	})
	require.NoError(t, err)
}

func TestClockIn_OnTime(t *testing.T) {
	env := newTestEnv(t)

	resp := env.clockIn(t, aliceID, wed(4, 5))

	assert.Equal(t, "working", resp.Status)
	assert.Equal(t, "2026-10-14", resp.WorkDate)
	assert.False(t, resp.IsLate)
	assert.Zero(t, resp.LateMinutes)
	require.Len(t, resp.Segments, 1)
	assert.Nil(t, resp.Segments[0].End)
	assert.Empty(t, env.eventsOf(compliance.KindLate))

	require.Len(t, env.notifier.channels, 1)
	assert.Equal(t, notification.TypeClockIn, env.notifier.channels[0].Type)
	assert.Equal(t, testLogChannel, env.notifier.channels[0].ChannelID)
}

func TestClockIn_Lateness(t *testing.T) {
	tests := []struct {
		name        string
		at          time.Time
		wantLate    bool
		wantMinutes int
	}{
		{"at scheduled start", wed(4, 0), false, 0},
		{"inside grace", wed(4, 9), false, 0},
		{"exactly at threshold", wed(4, 10), false, 0},
		{"one second past threshold", wed(4, 10).Add(time.Second), true, 10},
		{"twenty five minutes", wed(4, 25).Add(30 * time.Second), true, 25},
		{"afternoon", wed(13, 0), true, 540},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)

			resp := env.clockIn(t, aliceID, tt.at)

			assert.Equal(t, tt.wantLate, resp.IsLate)
			assert.Equal(t, tt.wantMinutes, resp.LateMinutes)
			if tt.wantLate {
				require.Len(t, env.eventsOf(compliance.KindLate), 1)
				assert.Len(t, env.notifier.directOf(notification.TypeLate), 1)
			} else {
				assert.Empty(t, env.eventsOf(compliance.KindLate))
			}
		})
	}
}

func TestClockIn_NoLatenessOnWeekend(t *testing.T) {
	env := newTestEnv(t)

	saturday := time.Date(2026, time.October, 17, 9, 0, 0, 0, time.UTC)
	resp := env.clockIn(t, aliceID, saturday)

	assert.False(t, resp.IsLate)
	assert.Empty(t, env.eventsOf(compliance.KindLate))
}

func TestClockIn_RequiresScreenShare(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.presence.set(aliceID, false, false)
	_, err := env.svc.ClockIn(ctx, attendance.ClockInRequest{Actor: actor(aliceID)})
	assert.ErrorIs(t, err, attendance.ErrNotInVoiceChannel)

	env.presence.set(aliceID, true, false)
	_, err = env.svc.ClockIn(ctx, attendance.ClockInRequest{Actor: actor(aliceID)})
	assert.ErrorIs(t, err, attendance.ErrNotScreenSharing)

	env.svc.policy.RequireScreenShare = false
	_, err = env.svc.ClockIn(ctx, attendance.ClockInRequest{Actor: actor(aliceID)})
	assert.NoError(t, err)
}

func TestClockIn_RejectsOpenSession(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.clockIn(t, aliceID, wed(4, 0))

	_, err := env.svc.ClockIn(ctx, attendance.ClockInRequest{Actor: actor(aliceID)})
	assert.ErrorIs(t, err, attendance.ErrAlreadyClockedIn)

	_, err = env.svc.StartBreak(ctx, attendance.BreakRequest{Actor: actor(aliceID)})
	require.NoError(t, err)

	_, err = env.svc.ClockIn(ctx, attendance.ClockInRequest{Actor: actor(aliceID)})
	assert.ErrorIs(t, err, attendance.ErrOnBreak)
}

func TestClockIn_ConcurrentFirstClockIn(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.registerManager(t, aliceID)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = env.svc.ClockIn(ctx, attendance.ClockInRequest{Actor: actor(aliceID)})
		}(i)
	}
	wg.Wait()

	var clockedIn, rejected int
	for _, err := range errs {
		switch {
		case err == nil:
			clockedIn++
		case errors.Is(err, attendance.ErrAlreadyClockedIn):
			rejected++
		}
	}
	assert.Equal(t, 1, clockedIn)
	assert.Equal(t, 1, rejected)

	emp, err := env.store.Employees().GetByUserID(ctx, testGuild, aliceID)
	require.NoError(t, err)
	open, err := env.store.Attendances().GetOpenSession(ctx, emp.ID)
	require.NoError(t, err)
	assert.Len(t, open.ClockIns, 1)
}

func TestClockIn_OpenSessionFromPreviousDayBlocks(t *testing.T) {
	env := newTestEnv(t)

	env.clockIn(t, aliceID, wed(22, 0))

	env.clock.Set(wed(4, 0).AddDate(0, 0, 1))
	_, err := env.svc.ClockIn(context.Background(), attendance.ClockInRequest{Actor: actor(aliceID)})
	assert.ErrorIs(t, err, attendance.ErrAlreadyClockedIn)
}

func TestClockIn_MultipleSegments(t *testing.T) {
	env := newTestEnv(t)

	env.clockIn(t, aliceID, wed(4, 30))
	env.clockOut(t, aliceID, wed(8, 30))
	resp := env.clockIn(t, aliceID, wed(9, 0))

	assert.Equal(t, "working", resp.Status)
	require.Len(t, resp.Segments, 2)
	assert.Equal(t, 240, resp.Segments[0].Minutes)
	assert.True(t, resp.IsLate)
	assert.Equal(t, 30, resp.LateMinutes)

	// Only the first clock-in of the day is evaluated
	assert.Len(t, env.eventsOf(compliance.KindLate), 1)

	resp = env.clockOut(t, aliceID, wed(10, 0))
	assert.Equal(t, "clocked_out", resp.Status)
	assert.Equal(t, 300, resp.WorkedMinutes)
	assert.InDelta(t, 5.0, resp.WorkingHours, 0.001)
}

func TestClockIn_OnLeaveDay(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	emp, err := env.svc.employeeService.Resolve(ctx, actor(aliceID))
	require.NoError(t, err)

	leaveID := "01900000-0000-7000-8000-00000000aaaa"
	_, err = env.store.Attendances().Create(ctx, attendance.Attendance{
		ID:             "01900000-0000-7000-8000-00000000bbbb",
		EmployeeID:     emp.ID,
		GuildID:        testGuild,
		WorkDate:       wed(0, 0),
		Status:         attendance.StatusOnLeave,
		LeaveRequestID: &leaveID,
	})
	require.NoError(t, err)

	env.clock.Set(wed(4, 0))
	_, err = env.svc.ClockIn(ctx, attendance.ClockInRequest{Actor: actor(aliceID)})
	assert.ErrorIs(t, err, attendance.ErrOnLeaveToday)
}

func TestClockIn_AbsentBecomesWorking(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.svc.employeeService.Resolve(ctx, actor(aliceID))
	require.NoError(t, err)

	env.clock.Set(wed(8, 0))
	marked, err := env.svc.MarkAbsent(ctx, testGuild)
	require.NoError(t, err)
	require.Equal(t, 1, marked)

	resp := env.clockIn(t, aliceID, wed(8, 30))

	assert.Equal(t, "working", resp.Status)
	require.Len(t, resp.Segments, 1)
	assert.True(t, resp.IsLate)
	assert.Equal(t, 270, resp.LateMinutes)
}

func TestClockOut_ClosesOpenBreak(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.clockIn(t, aliceID, wed(4, 0))

	env.clock.Set(wed(6, 0))
	_, err := env.svc.StartBreak(ctx, attendance.BreakRequest{Actor: actor(aliceID)})
	require.NoError(t, err)

	note := "done for today"
	env.clock.Set(wed(6, 30))
	resp, err := env.svc.ClockOut(ctx, attendance.ClockOutRequest{Actor: actor(aliceID), Note: &note})
	require.NoError(t, err)

	assert.Equal(t, "clocked_out", resp.Status)
	require.Len(t, resp.Breaks, 1)
	require.NotNil(t, resp.Breaks[0].End)
	assert.Equal(t, 30, resp.BreakMinutes)
	assert.Equal(t, 120, resp.WorkedMinutes)
	assert.Equal(t, &note, resp.Notes)

	_, err = env.svc.ClockOut(ctx, attendance.ClockOutRequest{Actor: actor(aliceID)})
	assert.ErrorIs(t, err, attendance.ErrNotClockedIn)
}

func TestBreaks_StateErrors(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	req := attendance.BreakRequest{Actor: actor(aliceID)}

	_, err := env.svc.StartBreak(ctx, req)
	assert.ErrorIs(t, err, attendance.ErrNotClockedIn)

	_, err = env.svc.EndBreak(ctx, req)
	assert.ErrorIs(t, err, attendance.ErrNotOnBreak)

	env.clockIn(t, aliceID, wed(4, 0))

	_, err = env.svc.EndBreak(ctx, req)
	assert.ErrorIs(t, err, attendance.ErrNotOnBreak)

	resp, err := env.svc.StartBreak(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, "on_break", resp.Status)

	_, err = env.svc.StartBreak(ctx, req)
	assert.ErrorIs(t, err, attendance.ErrAlreadyOnBreak)
}

func TestEndBreak_RecordsOverrunOnce(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	req := attendance.BreakRequest{Actor: actor(aliceID)}

	env.clockIn(t, aliceID, wed(4, 0))

	env.clock.Set(wed(6, 0))
	_, err := env.svc.StartBreak(ctx, req)
	require.NoError(t, err)
	env.clock.Set(wed(6, 40))
	resp, err := env.svc.EndBreak(ctx, req)
	require.NoError(t, err)
	assert.False(t, resp.BreakOverrun)
	assert.Empty(t, env.eventsOf(compliance.KindBreakOverrun))

	env.clock.Set(wed(8, 0))
	_, err = env.svc.StartBreak(ctx, req)
	require.NoError(t, err)
	env.clock.Set(wed(8, 30))
	resp, err = env.svc.EndBreak(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, "working", resp.Status)
	assert.Equal(t, 70, resp.BreakMinutes)
	assert.True(t, resp.BreakOverrun)
	assert.Len(t, env.eventsOf(compliance.KindBreakOverrun), 1)

	env.clock.Set(wed(9, 0))
	_, err = env.svc.StartBreak(ctx, req)
	require.NoError(t, err)
	env.clock.Set(wed(9, 10))
	_, err = env.svc.EndBreak(ctx, req)
	require.NoError(t, err)
	assert.Len(t, env.eventsOf(compliance.KindBreakOverrun), 1)
}

func TestVerifyScreenShare_StrikesAndAutoClockOut(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.clockIn(t, aliceID, wed(4, 0))
	env.clockIn(t, bobID, wed(4, 0))

	env.presence.set(bobID, true, false)

	for i := 1; i <= 2; i++ {
		env.clock.Set(wed(4, 5*i))
		result, err := env.svc.VerifyScreenShare(ctx, testGuild)
		require.NoError(t, err)
		assert.Equal(t, attendance.VerificationResult{Checked: 2, Verified: 1, Struck: 1}, result)
	}
	assert.Len(t, env.notifier.directOf(notification.TypeScreenShareWarning), 2)

	env.clock.Set(wed(4, 15))
	result, err := env.svc.VerifyScreenShare(ctx, testGuild)
	require.NoError(t, err)
	assert.Equal(t, 1, result.AutoClockedOut)
	assert.Equal(t, 0, result.Struck)

	status, err := env.svc.Status(ctx, actor(bobID))
	require.NoError(t, err)
	require.NotNil(t, status.Today)
	assert.Equal(t, "clocked_out", status.Today.Status)
	assert.Equal(t, 3, status.Today.ScreenShareStrikes)
	assert.Equal(t, 15, status.Today.WorkedMinutes)
	assert.True(t, status.CanClockIn)

	assert.Len(t, env.eventsOf(compliance.KindMissingScreenShare), 3)
	assert.Len(t, env.eventsOf(compliance.KindAutoClockedOut), 1)
	assert.Len(t, env.notifier.directOf(notification.TypeAutoClockOut), 1)

	// Bob is no longer checked
	env.clock.Set(wed(4, 20))
	result, err = env.svc.VerifyScreenShare(ctx, testGuild)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Checked)
}

func TestVerifyScreenShare_StreamingResetsStrikes(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.clockIn(t, aliceID, wed(4, 0))

	env.presence.set(aliceID, true, false)
	env.clock.Set(wed(4, 5))
	_, err := env.svc.VerifyScreenShare(ctx, testGuild)
	require.NoError(t, err)

	env.presence.set(aliceID, true, true)
	env.clock.Set(wed(4, 10))
	result, err := env.svc.VerifyScreenShare(ctx, testGuild)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Verified)

	status, err := env.svc.Status(ctx, actor(aliceID))
	require.NoError(t, err)
	require.NotNil(t, status.OpenSession)
	assert.Zero(t, status.OpenSession.ScreenShareStrikes)
	require.NotNil(t, status.OpenSession.LastVerifiedAt)
	assert.Equal(t, "2026-10-14T04:10:00Z", *status.OpenSession.LastVerifiedAt)
}

func TestVerifyScreenShare_SkipsBreaksAndDisabledPolicy(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.clockIn(t, aliceID, wed(4, 0))
	_, err := env.svc.StartBreak(ctx, attendance.BreakRequest{Actor: actor(aliceID)})
	require.NoError(t, err)

	env.presence.set(aliceID, false, false)
	result, err := env.svc.VerifyScreenShare(ctx, testGuild)
	require.NoError(t, err)
	assert.Zero(t, result.Checked)

	env.svc.policy.RequireScreenShare = false
	result, err = env.svc.VerifyScreenShare(ctx, testGuild)
	require.NoError(t, err)
	assert.Equal(t, attendance.VerificationResult{}, result)
}

func TestStreamStopped(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	// Unknown member: nothing happens, nobody is registered
	require.NoError(t, env.svc.StreamStopped(ctx, testGuild, carolID))
	active, err := env.svc.employeeService.ListActive(ctx, testGuild)
	require.NoError(t, err)
	assert.Empty(t, active)

	env.clockIn(t, aliceID, wed(4, 0))
	require.NoError(t, env.svc.StreamStopped(ctx, testGuild, aliceID))

	reminders := env.notifier.directOf(notification.TypeStreamStopped)
	require.Len(t, reminders, 1)
	assert.Equal(t, aliceID, reminders[0].RecipientID)
	assert.Empty(t, env.eventsOf(compliance.KindMissingScreenShare))
}

func TestCloseStaleSessions(t *testing.T) {
	tests := []struct {
		name        string
		clockIn     time.Time
		wantClosure time.Time
	}{
		{"capped by session length", wed(4, 0), wed(13, 0)},
		{"capped by end of work date", wed(20, 0), wed(0, 0).AddDate(0, 0, 1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			ctx := context.Background()

			env.clockIn(t, aliceID, tt.clockIn)

			// Same day: nothing is stale yet
			closed, err := env.svc.CloseStaleSessions(ctx, testGuild)
			require.NoError(t, err)
			assert.Zero(t, closed)

			env.clock.Set(wed(1, 0).AddDate(0, 0, 1))
			closed, err = env.svc.CloseStaleSessions(ctx, testGuild)
			require.NoError(t, err)
			assert.Equal(t, 1, closed)

			list, err := env.svc.ListAttendance(ctx, attendance.AttendanceFilter{GuildID: testGuild})
			require.NoError(t, err)
			require.Len(t, list.Attendances, 1)

			att := list.Attendances[0]
			assert.Equal(t, "auto_closed", att.Status)
			require.NotNil(t, att.LastClockOut)
			assert.Equal(t, tt.wantClosure.Format(time.RFC3339), *att.LastClockOut)
			assert.Len(t, env.eventsOf(compliance.KindAutoClosed), 1)

			// The member can clock in on the new day
			env.clockIn(t, aliceID, wed(4, 0).AddDate(0, 0, 1))
		})
	}
}

func TestMarkAbsent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	for _, id := range []string{aliceID, bobID, carolID} {
		_, err := env.svc.employeeService.Resolve(ctx, actor(id))
		require.NoError(t, err)
	}
	env.clockIn(t, aliceID, wed(4, 0))

	env.clock.Set(wed(7, 59))
	marked, err := env.svc.MarkAbsent(ctx, testGuild)
	require.NoError(t, err)
	assert.Zero(t, marked)

	env.clock.Set(wed(8, 0))
	marked, err = env.svc.MarkAbsent(ctx, testGuild)
	require.NoError(t, err)
	assert.Equal(t, 2, marked)
	assert.Len(t, env.eventsOf(compliance.KindAbsent), 2)

	marked, err = env.svc.MarkAbsent(ctx, testGuild)
	require.NoError(t, err)
	assert.Zero(t, marked)

	saturday := time.Date(2026, time.October, 17, 12, 0, 0, 0, time.UTC)
	env.clock.Set(saturday)
	marked, err = env.svc.MarkAbsent(ctx, testGuild)
	require.NoError(t, err)
	assert.Zero(t, marked)
}

func TestStatus(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.clock.Set(wed(3, 0))
	status, err := env.svc.Status(ctx, actor(aliceID))
	require.NoError(t, err)
	assert.True(t, status.CanClockIn)
	assert.False(t, status.CanClockOut)
	assert.True(t, status.IsWorkDay)
	assert.Equal(t, "04:10 UTC", status.LateThreshold)
	assert.Nil(t, status.Today)

	env.clockIn(t, aliceID, wed(4, 0))
	env.clock.Set(wed(5, 30))
	status, err = env.svc.Status(ctx, actor(aliceID))
	require.NoError(t, err)
	assert.False(t, status.CanClockIn)
	assert.True(t, status.CanClockOut)
	assert.True(t, status.CanStartBreak)
	assert.False(t, status.CanEndBreak)
	require.NotNil(t, status.OpenSession)
	assert.Equal(t, 90, status.OpenSession.WorkedMinutes)
}

func TestHistory(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	// Twelve weekdays of attendance
	day := wed(4, 0)
	for i := 0; i < 12; i++ {
		for !env.svc.policy.IsWorkDay(day) {
			day = day.AddDate(0, 0, 1)
		}
		env.clockIn(t, aliceID, day)
		env.clockOut(t, aliceID, day.Add(8*time.Hour))
		day = day.AddDate(0, 0, 1)
	}

	first, err := env.svc.History(ctx, attendance.HistoryFilter{Actor: actor(aliceID)})
	require.NoError(t, err)
	assert.Equal(t, int64(12), first.TotalCount)
	assert.Equal(t, 2, first.TotalPages)
	assert.Equal(t, "1-10 of 12", first.Showing)
	require.Len(t, first.Attendances, 10)
	assert.Greater(t, first.Attendances[0].WorkDate, first.Attendances[9].WorkDate)

	second, err := env.svc.History(ctx, attendance.HistoryFilter{Actor: actor(aliceID), Page: 2})
	require.NoError(t, err)
	assert.Len(t, second.Attendances, 2)
	assert.Equal(t, "11-12 of 12", second.Showing)

	// Plain employees cannot read someone else's history
	target := aliceID
	_, err = env.svc.History(ctx, attendance.HistoryFilter{Actor: actor(bobID), TargetUserID: &target})
	assert.ErrorIs(t, err, employee.ErrPermissionDenied)

	env.registerManager(t, carolID)
	other, err := env.svc.History(ctx, attendance.HistoryFilter{Actor: actor(carolID), TargetUserID: &target})
	require.NoError(t, err)
	assert.Equal(t, int64(12), other.TotalCount)
}

func TestHistory_UnknownTargetIsNotRegistered(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.registerManager(t, carolID)
	stranger := "400000000000000009"

	env.clock.Set(wed(5, 0))
	_, err := env.svc.History(ctx, attendance.HistoryFilter{Actor: actor(carolID), TargetUserID: &stranger})
	assert.ErrorIs(t, err, employee.ErrEmployeeNotFound)

	_, err = env.store.Employees().GetByUserID(ctx, testGuild, stranger)
	assert.ErrorIs(t, err, employee.ErrEmployeeNotFound)

	env.clock.Set(wed(9, 0))
	marked, err := env.svc.MarkAbsent(ctx, testGuild)
	require.NoError(t, err)
	assert.Equal(t, 1, marked, "only the manager is on the roster")
	assert.Len(t, env.eventsOf(compliance.KindAbsent), 1)
}

func TestToday(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.registerManager(t, carolID)
	_, err := env.svc.employeeService.Resolve(ctx, actor(bobID))
	require.NoError(t, err)

	env.clockIn(t, aliceID, wed(4, 30))

	env.clock.Set(wed(6, 0))
	_, err = env.svc.Today(ctx, actor(aliceID))
	assert.ErrorIs(t, err, employee.ErrPermissionDenied)

	today, err := env.svc.Today(ctx, actor(carolID))
	require.NoError(t, err)
	assert.Equal(t, "2026-10-14", today.WorkDate)
	require.Len(t, today.Working, 1)
	assert.Equal(t, aliceID, today.Working[0].UserID)
	assert.True(t, today.Working[0].IsLate)
	assert.Equal(t, 90, today.Working[0].WorkedMinutes)
	assert.Len(t, today.NotYetIn, 2)
	assert.Empty(t, today.OnBreak)
}

func TestGetAttendance(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	created := env.clockIn(t, aliceID, wed(4, 0))

	got, err := env.svc.GetAttendance(ctx, testGuild, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, aliceID, got.UserID)

	_, err = env.svc.GetAttendance(ctx, "100000000000000999", created.ID)
	assert.ErrorIs(t, err, attendance.ErrAttendanceNotFound)
}
