package http

import (
	"net/http"

	"github.com/cmlabs-hris/hris-attendance-bot/internal/domain/compliance"
	"github.com/cmlabs-hris/hris-attendance-bot/internal/handler/http/middleware"
	"github.com/cmlabs-hris/hris-attendance-bot/internal/handler/http/response"
)

type ComplianceHandler interface {
	Summary(w http.ResponseWriter, r *http.Request)
	Report(w http.ResponseWriter, r *http.Request)
}

type complianceHandlerImpl struct {
	complianceService compliance.Service
}

func NewComplianceHandler(complianceService compliance.Service) ComplianceHandler {
	return &complianceHandlerImpl{complianceService: complianceService}
}

// Summary implements ComplianceHandler.
func (h *complianceHandlerImpl) Summary(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Unauthorized")
		return
	}

	req := compliance.SummaryRequest{
		Actor:     actor,
		StartDate: r.URL.Query().Get("start_date"),
		EndDate:   r.URL.Query().Get("end_date"),
	}

	result, err := h.complianceService.Summary(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// Report implements ComplianceHandler.
func (h *complianceHandlerImpl) Report(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Unauthorized")
		return
	}

	req := compliance.ReportRequest{
		Actor: actor,
		Month: r.URL.Query().Get("month"),
	}
	if userID := r.URL.Query().Get("user_id"); userID != "" {
		req.TargetUserID = &userID
	}

	result, err := h.complianceService.Report(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}
