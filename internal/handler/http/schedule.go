package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/storeops/attendance-backend-go/internal/domain/schedule"
	"github.com/storeops/attendance-backend-go/internal/handler/http/response"
	scheduleservice "github.com/storeops/attendance-backend-go/internal/service/schedule"
)

type ScheduleHandler interface {
	Upsert(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request)
	GetPlannedShift(w http.ResponseWriter, r *http.Request)
	CreateWeekOff(w http.ResponseWriter, r *http.Request)
	DeleteWeekOff(w http.ResponseWriter, r *http.Request)
	ListWeekOffs(w http.ResponseWriter, r *http.Request)
	CreateException(w http.ResponseWriter, r *http.Request)
	DeleteException(w http.ResponseWriter, r *http.Request)
	ListExceptions(w http.ResponseWriter, r *http.Request)
}

type scheduleHandlerImpl struct {
	scheduleService *scheduleservice.Service
}

func NewScheduleHandler(scheduleService *scheduleservice.Service) ScheduleHandler {
	return &scheduleHandlerImpl{scheduleService: scheduleService}
}

// Upsert implements ScheduleHandler.
func (h *scheduleHandlerImpl) Upsert(w http.ResponseWriter, r *http.Request) {
	var req schedule.UpsertScheduleRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("Upsert schedule decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	req.AdvisorID = chi.URLParam(r, "advisorID")

	result, err := h.scheduleService.UpsertSchedule(r.Context(), &req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Schedule saved successfully", result)
}

// Get implements ScheduleHandler.
func (h *scheduleHandlerImpl) Get(w http.ResponseWriter, r *http.Request) {
	result, err := h.scheduleService.GetSchedule(r.Context(), chi.URLParam(r, "advisorID"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// GetPlannedShift implements ScheduleHandler.
func (h *scheduleHandlerImpl) GetPlannedShift(w http.ResponseWriter, r *http.Request) {
	dateStr := r.URL.Query().Get("date")
	date, err := time.Parse("2006-01-02", dateStr)
	if err != nil {
		response.BadRequest(w, "Query parameter 'date' must be a YYYY-MM-DD date", nil)
		return
	}

	result, err := h.scheduleService.GetPlannedShift(r.Context(), chi.URLParam(r, "advisorID"), date)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// CreateWeekOff implements ScheduleHandler.
func (h *scheduleHandlerImpl) CreateWeekOff(w http.ResponseWriter, r *http.Request) {
	var req schedule.CreateWeekOffRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("Create week off decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	req.AdvisorID = chi.URLParam(r, "advisorID")

	result, err := h.scheduleService.CreateWeekOff(r.Context(), &req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Week off created successfully", result)
}

// DeleteWeekOff implements ScheduleHandler.
func (h *scheduleHandlerImpl) DeleteWeekOff(w http.ResponseWriter, r *http.Request) {
	if err := h.scheduleService.DeleteWeekOff(r.Context(), chi.URLParam(r, "id")); err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Week off removed successfully", nil)
}

// ListWeekOffs implements ScheduleHandler.
func (h *scheduleHandlerImpl) ListWeekOffs(w http.ResponseWriter, r *http.Request) {
	result, err := h.scheduleService.ListWeekOffs(r.Context(), chi.URLParam(r, "advisorID"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// CreateException implements ScheduleHandler.
func (h *scheduleHandlerImpl) CreateException(w http.ResponseWriter, r *http.Request) {
	var req schedule.CreateExceptionRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("Create exception decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	req.AdvisorID = chi.URLParam(r, "advisorID")

	result, err := h.scheduleService.CreateException(r.Context(), &req, getUserIDFromContext(r))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Schedule exception created successfully", result)
}

// DeleteException implements ScheduleHandler.
func (h *scheduleHandlerImpl) DeleteException(w http.ResponseWriter, r *http.Request) {
	if err := h.scheduleService.DeleteException(r.Context(), chi.URLParam(r, "id")); err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Schedule exception removed successfully", nil)
}

// ListExceptions implements ScheduleHandler.
func (h *scheduleHandlerImpl) ListExceptions(w http.ResponseWriter, r *http.Request) {
	from, err := time.Parse("2006-01-02", r.URL.Query().Get("from"))
	if err != nil {
		response.BadRequest(w, "Query parameter 'from' must be a YYYY-MM-DD date", nil)
		return
	}
	to, err := time.Parse("2006-01-02", r.URL.Query().Get("to"))
	if err != nil {
		response.BadRequest(w, "Query parameter 'to' must be a YYYY-MM-DD date", nil)
		return
	}

	result, err := h.scheduleService.ListExceptions(r.Context(), chi.URLParam(r, "advisorID"), from, to)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}
