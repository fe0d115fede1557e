package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/cmlabs-hris/hris-attendance-bot/internal/domain/employee"
	"github.com/cmlabs-hris/hris-attendance-bot/internal/domain/notification"
	"github.com/cmlabs-hris/hris-attendance-bot/internal/handler/http/middleware"
	"github.com/cmlabs-hris/hris-attendance-bot/internal/handler/http/response"
	"github.com/cmlabs-hris/hris-attendance-bot/internal/pkg/jwt"
)

// EventsHandler streams the guild's notices to dashboard clients.
type EventsHandler interface {
	GetSSEToken(w http.ResponseWriter, r *http.Request)
	Stream(w http.ResponseWriter, r *http.Request)

	// Close ends every open stream. Register it with
	// http.Server.RegisterOnShutdown so Shutdown is not held by idle streams.
	Close()
}

type eventsHandlerImpl struct {
	notifService      notification.Service
	employeeService   employee.EmployeeService
	jwtService        jwt.Service
	keepaliveInterval time.Duration

	closing   chan struct{}
	closeOnce sync.Once
}

type SSETokenResponse struct {
	Token     string `json:"token"`
	ExpiresIn int    `json:"expires_in"`
}

func NewEventsHandler(notifService notification.Service, employeeService employee.EmployeeService, jwtService jwt.Service) EventsHandler {
	return &eventsHandlerImpl{
		notifService:      notifService,
		employeeService:   employeeService,
		jwtService:        jwtService,
		keepaliveInterval: 30 * time.Second,
		closing:           make(chan struct{}),
	}
}

func (h *eventsHandlerImpl) Close() {
	h.closeOnce.Do(func() { close(h.closing) })
}

// GetSSEToken generates a short-lived token for SSE connections
func (h *eventsHandlerImpl) GetSSEToken(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Unauthorized")
		return
	}

	emp, err := h.employeeService.Authorize(r.Context(), actor, employee.PermissionAttendanceViewAll)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	token, expiresIn, err := h.jwtService.GenerateSSEToken(jwt.Claims{
		UserID:  emp.UserID,
		GuildID: emp.GuildID,
		Role:    emp.Role,
	})
	if err != nil {
		response.InternalServerError(w, "Failed to generate SSE token")
		return
	}

	response.Success(w, SSETokenResponse{
		Token:     token,
		ExpiresIn: expiresIn,
	})
}

// Stream handles SSE connection for the guild's live feed
func (h *eventsHandlerImpl) Stream(w http.ResponseWriter, r *http.Request) {
	// EventSource cannot send headers, so the token travels in the query
	tokenStr := r.URL.Query().Get("token")
	if tokenStr == "" {
		http.Error(w, "Missing token", http.StatusUnauthorized)
		return
	}

	claims, err := h.jwtService.ValidateSSEToken(tokenStr)
	if err != nil {
		http.Error(w, "Invalid token", http.StatusUnauthorized)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		return
	}

	// Set SSE headers
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	events, cleanup := h.notifService.Subscribe(r.Context(), claims.GuildID)
	defer cleanup()

	fmt.Fprintf(w, "event: connected\ndata: {\"status\":\"connected\",\"guild_id\":%q}\n\n", claims.GuildID)
	flusher.Flush()

	keepalive := time.NewTicker(h.keepaliveInterval)
	defer keepalive.Stop()

	for {
		select {
		case event, ok := <-events:
			if !ok {
				return
			}
			data, err := json.Marshal(event)
			if err != nil {
				continue
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Type, data)
			flusher.Flush()

		case <-keepalive.C:
			fmt.Fprintf(w, "event: ping\ndata: {\"timestamp\":%d}\n\n", time.Now().Unix())
			flusher.Flush()

		case <-r.Context().Done():
			return

		case <-h.closing:
			return
		}
	}
}
