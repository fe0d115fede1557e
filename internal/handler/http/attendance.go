package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/cmlabs-hris/hris-attendance-bot/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-attendance-bot/internal/domain/employee"
	"github.com/cmlabs-hris/hris-attendance-bot/internal/handler/http/middleware"
	"github.com/cmlabs-hris/hris-attendance-bot/internal/handler/http/response"
	"github.com/cmlabs-hris/hris-attendance-bot/internal/pkg/validator"
	"github.com/go-chi/chi/v5"
)

type AttendanceHandler interface {
	List(w http.ResponseWriter, r *http.Request)
	Today(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request)
}

type attendanceHandlerImpl struct {
	attendanceService attendance.AttendanceService
	employeeService   employee.EmployeeService
}

func NewAttendanceHandler(attendanceService attendance.AttendanceService, employeeService employee.EmployeeService) AttendanceHandler {
	return &attendanceHandlerImpl{
		attendanceService: attendanceService,
		employeeService:   employeeService,
	}
}

// canViewAll reports whether the caller may see other members' records.
func (h *attendanceHandlerImpl) canViewAll(r *http.Request, actor employee.Actor) (bool, error) {
	_, err := h.employeeService.Authorize(r.Context(), actor, employee.PermissionAttendanceViewAll)
	if errors.Is(err, employee.ErrPermissionDenied) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// List implements AttendanceHandler. Members without the view-all permission
// only ever see their own records.
func (h *attendanceHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Unauthorized")
		return
	}

	query := r.URL.Query()
	filter := attendance.AttendanceFilter{GuildID: actor.GuildID}

	if userID := query.Get("user_id"); userID != "" {
		filter.UserID = &userID
	}

	if date := query.Get("date"); date != "" {
		filter.Date = &date
	}

	// Date range filters
	if startDate := query.Get("start_date"); startDate != "" {
		filter.StartDate = &startDate
	}

	if endDate := query.Get("end_date"); endDate != "" {
		filter.EndDate = &endDate
	}

	if status := query.Get("status"); status != "" {
		filter.Status = &status
	}

	filter.LateOnly = getBoolQueryParam(r, "late_only", false)

	// Pagination
	filter.Page = getIntQueryParam(r, "page", 1)
	filter.Limit = getIntQueryParam(r, "limit", 20)

	// Sorting
	filter.SortBy = query.Get("sort_by")
	filter.SortOrder = query.Get("sort_order")

	if err := filter.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	viewAll, err := h.canViewAll(r, actor)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	if !viewAll {
		filter.UserID = &actor.UserID
	}

	result, err := h.attendanceService.ListAttendance(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMeta(w, result, response.NewMeta(result.Page, result.Limit, result.TotalCount, result.TotalPages))
}

// Today implements AttendanceHandler.
func (h *attendanceHandlerImpl) Today(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Unauthorized")
		return
	}

	result, err := h.attendanceService.Today(r.Context(), actor)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// Get implements AttendanceHandler.
func (h *attendanceHandlerImpl) Get(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Unauthorized")
		return
	}

	id := chi.URLParam(r, "id")
	if !validator.IsValidUUID(id) {
		response.HandleError(w, attendance.ErrAttendanceNotFound)
		return
	}

	result, err := h.attendanceService.GetAttendance(r.Context(), actor.GuildID, id)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	if result.UserID != actor.UserID {
		viewAll, err := h.canViewAll(r, actor)
		if err != nil {
			response.HandleError(w, err)
			return
		}
		if !viewAll {
			response.HandleError(w, employee.ErrPermissionDenied)
			return
		}
	}

	response.Success(w, result)
}

// getIntQueryParam gets an int query parameter with a default value
func getIntQueryParam(r *http.Request, key string, defaultVal int) int {
	val := r.URL.Query().Get(key)
	if val == "" {
		return defaultVal
	}
	intVal, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return intVal
}

// getBoolQueryParam gets a bool query parameter with a default value
func getBoolQueryParam(r *http.Request, key string, defaultVal bool) bool {
	val := r.URL.Query().Get(key)
	if val == "" {
		return defaultVal
	}
	return val == "true" || val == "1"
}
