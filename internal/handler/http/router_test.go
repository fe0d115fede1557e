package http

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/cmlabs-hris/hris-attendance-bot/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-attendance-bot/internal/domain/employee"
	"github.com/cmlabs-hris/hris-attendance-bot/internal/domain/leave"
	"github.com/cmlabs-hris/hris-attendance-bot/internal/domain/notification"
	"github.com/cmlabs-hris/hris-attendance-bot/internal/pkg/jwt"
	"github.com/cmlabs-hris/hris-attendance-bot/internal/repository/memory"
	attendancesvc "github.com/cmlabs-hris/hris-attendance-bot/internal/service/attendance"
	compliancesvc "github.com/cmlabs-hris/hris-attendance-bot/internal/service/compliance"
	employeesvc "github.com/cmlabs-hris/hris-attendance-bot/internal/service/employee"
	leavesvc "github.com/cmlabs-hris/hris-attendance-bot/internal/service/leave"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	handlerTestSecret = "test-secret-key-for-jwt"
	testGuild         = "100000000000000001"
	managerID         = "200000000000000001"
	aliceID           = "200000000000000002"
	bobID             = "200000000000000003"
)

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string            `json:"code"`
		Message string            `json:"message"`
		Details map[string]string `json:"details"`
	} `json:"error"`
	Meta *struct {
		Page       int   `json:"page"`
		Limit      int   `json:"limit"`
		TotalItems int64 `json:"total_items"`
		TotalPages int   `json:"total_pages"`
	} `json:"meta"`
}

// stubNotifier feeds the SSE stream from a test-owned channel.
type stubNotifier struct {
	events chan notification.Event
	guilds chan string
}

func (s *stubNotifier) Notify(context.Context, notification.Notice) error { return nil }

func (s *stubNotifier) Announce(context.Context, string, notification.Notice) error { return nil }

func (s *stubNotifier) Subscribe(_ context.Context, guildID string) (<-chan notification.Event, func()) {
	s.guilds <- guildID
	return s.events, func() {}
}

func (s *stubNotifier) Stop() {}

type testServer struct {
	router   *chi.Mux
	store    *memory.Store
	jwt      jwt.Service
	notifier *stubNotifier
	events   EventsHandler
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	store := memory.NewStore()
	employees := employeesvc.NewEmployeeService(store.Employees())
	complianceService := compliancesvc.NewComplianceService(store.Compliance(), employees, nil)
	attendanceService := attendancesvc.NewAttendanceService(
		store, store.Attendances(), employees, complianceService,
		nil, nil, attendance.DefaultPolicy(), "", nil,
	)
	leaveService := leavesvc.NewLeaveService(
		store, store.LeaveRequests(), store.Attendances(), employees,
		nil, leave.DefaultPolicy(), "", nil,
	)

	notifier := &stubNotifier{
		events: make(chan notification.Event, 1),
		guilds: make(chan string, 1),
	}
	jwtService := jwt.NewJWTService(handlerTestSecret, "1h")

	events := NewEventsHandler(notifier, employees, jwtService)
	router := NewRouter(
		RouterConfig{},
		jwtService,
		NewAttendanceHandler(attendanceService, employees),
		NewLeaveHandler(leaveService),
		NewComplianceHandler(complianceService),
		events,
	)

	srv := &testServer{router: router, store: store, jwt: jwtService, notifier: notifier, events: events}
	srv.seedEmployee(t, managerID, "Manager", employee.RoleManager)
	srv.seedEmployee(t, aliceID, "Alice", employee.RoleEmployee)
	srv.seedEmployee(t, bobID, "Bob", employee.RoleEmployee)
	return srv
}

func (s *testServer) seedEmployee(t *testing.T, userID, name string, role employee.Role) employee.Employee {
	t.Helper()
	emp, err := s.store.Employees().Upsert(context.Background(), employee.Employee{
		ID:          "0190a000-0000-7000-8000-" + userID[len(userID)-12:],
		GuildID:     testGuild,
		UserID:      userID,
		DisplayName: name,
		Role:        role,
		IsActive:    true,
	})
	require.NoError(t, err)
	return emp
}

func (s *testServer) employeeID(t *testing.T, userID string) string {
	t.Helper()
	emp, err := s.store.Employees().GetByUserID(context.Background(), testGuild, userID)
	require.NoError(t, err)
	return emp.ID
}

func (s *testServer) token(t *testing.T, userID string, role employee.Role) string {
	t.Helper()
	token, _, err := s.jwt.GenerateAccessToken(jwt.Claims{UserID: userID, GuildID: testGuild, Role: role})
	require.NoError(t, err)
	return token
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	var env envelope
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	}
	return rec, env
}

func (s *testServer) seedAttendance(t *testing.T, userID string, workDate time.Time) attendance.Attendance {
	t.Helper()
	in := workDate.Add(4 * time.Hour)
	out := workDate.Add(12 * time.Hour)
	att, err := s.store.Attendances().Create(context.Background(), attendance.Attendance{
		ID:            "0190b000-0000-7000-8000-" + userID[len(userID)-6:] + workDate.Format("060102"),
		EmployeeID:    s.employeeID(t, userID),
		GuildID:       testGuild,
		WorkDate:      workDate,
		ClockIns:      []time.Time{in},
		ClockOuts:     []time.Time{out},
		Status:        attendance.StatusClockedOut,
		WorkedMinutes: 480,
	})
	require.NoError(t, err)
	return att
}

func (s *testServer) seedLeave(t *testing.T, userID string) leave.LeaveRequest {
	t.Helper()
	// A Monday far enough ahead that the request has not started.
	start := time.Date(2030, 3, 4, 0, 0, 0, 0, time.UTC)
	req, err := s.store.LeaveRequests().Create(context.Background(), leave.LeaveRequest{
		ID:         "0190c000-0000-7000-8000-" + userID[len(userID)-12:],
		EmployeeID: s.employeeID(t, userID),
		GuildID:    testGuild,
		Type:       leave.TypeCasual,
		StartDate:  start,
		EndDate:    start.AddDate(0, 0, 1),
		Days:       2,
		Reason:     "family event",
		Status:     leave.StatusPending,
		CreatedAt:  time.Now().UTC(),
		UpdatedAt:  time.Now().UTC(),
	})
	require.NoError(t, err)
	return req
}

func TestRouter_Heartbeat(t *testing.T) {
	srv := newTestServer(t)

	rec := httptest.NewRecorder()
	srv.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRouter_Metrics(t *testing.T) {
	srv := newTestServer(t)

	rec := httptest.NewRecorder()
	srv.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestAuthRequired(t *testing.T) {
	srv := newTestServer(t)

	sseToken, _, err := srv.jwt.GenerateSSEToken(jwt.Claims{UserID: managerID, GuildID: testGuild, Role: employee.RoleManager})
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{name: "missing token", token: ""},
		{name: "garbage token", token: "not-a-jwt"},
		{name: "sse token used as access token", token: sseToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, env := srv.do(t, http.MethodGet, "/api/v1/attendance", tt.token, nil)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.False(t, env.Success)
		})
	}
}

func TestAttendanceList(t *testing.T) {
	srv := newTestServer(t)
	day := time.Date(2026, 10, 14, 0, 0, 0, 0, time.UTC)
	srv.seedAttendance(t, aliceID, day)
	srv.seedAttendance(t, bobID, day)
	srv.seedAttendance(t, bobID, day.AddDate(0, 0, -1))

	t.Run("manager sees the whole guild", func(t *testing.T) {
		rec, env := srv.do(t, http.MethodGet, "/api/v1/attendance", srv.token(t, managerID, employee.RoleManager), nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var list attendance.ListAttendanceResponse
		require.NoError(t, json.Unmarshal(env.Data, &list))
		assert.Equal(t, int64(3), list.TotalCount)
		require.NotNil(t, env.Meta)
		assert.Equal(t, int64(3), env.Meta.TotalItems)
		assert.Equal(t, "2026-10-14", list.Attendances[0].WorkDate)
	})

	t.Run("manager filters by member", func(t *testing.T) {
		rec, env := srv.do(t, http.MethodGet, "/api/v1/attendance?user_id="+bobID, srv.token(t, managerID, employee.RoleManager), nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var list attendance.ListAttendanceResponse
		require.NoError(t, json.Unmarshal(env.Data, &list))
		assert.Equal(t, int64(2), list.TotalCount)
	})

	t.Run("employee only sees own records", func(t *testing.T) {
		rec, env := srv.do(t, http.MethodGet, "/api/v1/attendance?user_id="+bobID, srv.token(t, aliceID, employee.RoleEmployee), nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var list attendance.ListAttendanceResponse
		require.NoError(t, json.Unmarshal(env.Data, &list))
		require.Len(t, list.Attendances, 1)
		assert.Equal(t, aliceID, list.Attendances[0].UserID)
	})

	t.Run("invalid filter", func(t *testing.T) {
		rec, env := srv.do(t, http.MethodGet, "/api/v1/attendance?status=sleeping", srv.token(t, managerID, employee.RoleManager), nil)
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		require.NotNil(t, env.Error)
		assert.Contains(t, env.Error.Details, "status")
	})
}

func TestAttendanceGet(t *testing.T) {
	srv := newTestServer(t)
	att := srv.seedAttendance(t, bobID, time.Date(2026, 10, 14, 0, 0, 0, 0, time.UTC))

	tests := []struct {
		name     string
		userID   string
		role     employee.Role
		id       string
		wantCode int
	}{
		{name: "owner", userID: bobID, role: employee.RoleEmployee, id: att.ID, wantCode: http.StatusOK},
		{name: "manager", userID: managerID, role: employee.RoleManager, id: att.ID, wantCode: http.StatusOK},
		{name: "other employee", userID: aliceID, role: employee.RoleEmployee, id: att.ID, wantCode: http.StatusForbidden},
		{name: "malformed id", userID: managerID, role: employee.RoleManager, id: "nope", wantCode: http.StatusNotFound},
		{name: "unknown id", userID: managerID, role: employee.RoleManager, id: "0190b000-0000-7000-8000-ffffffffffff", wantCode: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, _ := srv.do(t, http.MethodGet, "/api/v1/attendance/"+tt.id, srv.token(t, tt.userID, tt.role), nil)
			assert.Equal(t, tt.wantCode, rec.Code)
		})
	}
}

func TestAttendanceToday_RequiresManager(t *testing.T) {
	srv := newTestServer(t)

	rec, _ := srv.do(t, http.MethodGet, "/api/v1/attendance/today", srv.token(t, aliceID, employee.RoleEmployee), nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec, env := srv.do(t, http.MethodGet, "/api/v1/attendance/today", srv.token(t, managerID, employee.RoleManager), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var today attendance.TodayResponse
	require.NoError(t, json.Unmarshal(env.Data, &today))
	assert.NotEmpty(t, today.WorkDate)
}

func TestAttendanceToday_StaleRoleClaim(t *testing.T) {
	srv := newTestServer(t)

	// Token still says manager, roster says employee.
	rec, _ := srv.do(t, http.MethodGet, "/api/v1/attendance/today", srv.token(t, aliceID, employee.RoleManager), nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestLeaveApprove(t *testing.T) {
	srv := newTestServer(t)
	req := srv.seedLeave(t, aliceID)

	rec, _ := srv.do(t, http.MethodPost, "/api/v1/leave-requests/"+req.ID+"/approve", srv.token(t, bobID, employee.RoleEmployee), nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec, env := srv.do(t, http.MethodPost, "/api/v1/leave-requests/"+req.ID+"/approve", srv.token(t, managerID, employee.RoleManager), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp leave.LeaveRequestResponse
	require.NoError(t, json.Unmarshal(env.Data, &resp))
	assert.Equal(t, string(leave.StatusApproved), resp.Status)
	require.NotNil(t, resp.DecidedBy)
	assert.Equal(t, managerID, *resp.DecidedBy)

	rec, _ = srv.do(t, http.MethodPost, "/api/v1/leave-requests/"+req.ID+"/approve", srv.token(t, managerID, employee.RoleManager), nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestLeaveApprove_SelfApproval(t *testing.T) {
	srv := newTestServer(t)
	req := srv.seedLeave(t, managerID)

	rec, _ := srv.do(t, http.MethodPost, "/api/v1/leave-requests/"+req.ID+"/approve", srv.token(t, managerID, employee.RoleManager), nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestLeaveReject(t *testing.T) {
	srv := newTestServer(t)
	req := srv.seedLeave(t, aliceID)
	token := srv.token(t, managerID, employee.RoleManager)

	rec, env := srv.do(t, http.MethodPost, "/api/v1/leave-requests/"+req.ID+"/reject", token, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	require.NotNil(t, env.Error)
	assert.Contains(t, env.Error.Details, "reason")

	rec, env = srv.do(t, http.MethodPost, "/api/v1/leave-requests/"+req.ID+"/reject", token, map[string]string{"reason": "coverage"})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp leave.LeaveRequestResponse
	require.NoError(t, json.Unmarshal(env.Data, &resp))
	assert.Equal(t, string(leave.StatusRejected), resp.Status)
	require.NotNil(t, resp.RejectionReason)
	assert.Equal(t, "coverage", *resp.RejectionReason)
}

func TestLeaveListAndGet(t *testing.T) {
	srv := newTestServer(t)
	aliceReq := srv.seedLeave(t, aliceID)
	srv.seedLeave(t, bobID)

	rec, env := srv.do(t, http.MethodGet, "/api/v1/leave-requests?status=pending", srv.token(t, managerID, employee.RoleManager), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var list leave.ListLeaveResponse
	require.NoError(t, json.Unmarshal(env.Data, &list))
	assert.Equal(t, int64(2), list.TotalCount)

	rec, _ = srv.do(t, http.MethodGet, "/api/v1/leave-requests?user_id="+bobID, srv.token(t, aliceID, employee.RoleEmployee), nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec, env = srv.do(t, http.MethodGet, "/api/v1/leave-requests?mine=true", srv.token(t, aliceID, employee.RoleEmployee), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(env.Data, &list))
	require.Len(t, list.Requests, 1)
	assert.Equal(t, aliceReq.ID, list.Requests[0].ID)

	rec, _ = srv.do(t, http.MethodGet, "/api/v1/leave-requests/not-a-uuid", srv.token(t, managerID, employee.RoleManager), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestComplianceSummary(t *testing.T) {
	srv := newTestServer(t)

	rec, _ := srv.do(t, http.MethodGet, "/api/v1/compliance/summary?start_date=2026-10-01&end_date=2026-10-31", srv.token(t, aliceID, employee.RoleEmployee), nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec, _ = srv.do(t, http.MethodGet, "/api/v1/compliance/summary?start_date=2026-10-31&end_date=2026-10-01", srv.token(t, managerID, employee.RoleManager), nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec, env := srv.do(t, http.MethodGet, "/api/v1/compliance/summary?start_date=2026-10-01&end_date=2026-10-31", srv.token(t, managerID, employee.RoleManager), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, env.Success)
}

func TestEventsStream(t *testing.T) {
	srv := newTestServer(t)

	rec, env := srv.do(t, http.MethodPost, "/api/v1/events/token", srv.token(t, managerID, employee.RoleManager), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var tok SSETokenResponse
	require.NoError(t, json.Unmarshal(env.Data, &tok))
	require.NotEmpty(t, tok.Token)

	// Access tokens are not accepted on the stream.
	rec = httptest.NewRecorder()
	srv.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/events?token="+srv.token(t, managerID, employee.RoleManager), nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	ts := httptest.NewServer(srv.router)
	defer ts.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, ts.URL+"/api/v1/events?token="+tok.Token, nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(httpReq)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))
	assert.Equal(t, testGuild, <-srv.notifier.guilds)

	srv.notifier.events <- notification.Event{Type: notification.TypeClockIn, Title: "Clocked in", UserID: aliceID}

	reader := bufio.NewReader(resp.Body)
	var lines []string
	for len(lines) < 4 {
		line, err := reader.ReadString('\n')
		require.NoError(t, err)
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}

	assert.Equal(t, "event: connected", lines[0])
	assert.Equal(t, "event: "+string(notification.TypeClockIn), lines[2])
	assert.Contains(t, lines[3], `"title":"Clocked in"`)
}

func TestEventsStream_ServerShutdownEndsStream(t *testing.T) {
	srv := newTestServer(t)

	rec, env := srv.do(t, http.MethodPost, "/api/v1/events/token", srv.token(t, managerID, employee.RoleManager), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var tok SSETokenResponse
	require.NoError(t, json.Unmarshal(env.Data, &tok))

	ts := httptest.NewUnstartedServer(srv.router)
	ts.Config.RegisterOnShutdown(srv.events.Close)
	ts.Start()
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/api/v1/events?token=" + tok.Token)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, testGuild, <-srv.notifier.guilds)

	reader := bufio.NewReader(resp.Body)
	line, err := reader.ReadString('\n')
	require.NoError(t, err)
	assert.Equal(t, "event: connected", strings.TrimSpace(line))

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, ts.Config.Shutdown(ctx))

	_, err = io.ReadAll(reader)
	assert.NoError(t, err)
}
