package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/storeops/attendance-backend-go/internal/domain/request"
	"github.com/storeops/attendance-backend-go/internal/handler/http/response"
	approvalservice "github.com/storeops/attendance-backend-go/internal/service/approval"
)

type RequestHandler interface {
	Create(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request)
	List(w http.ResponseWriter, r *http.Request)
	ListMy(w http.ResponseWriter, r *http.Request)
	Approve(w http.ResponseWriter, r *http.Request)
	Reject(w http.ResponseWriter, r *http.Request)
}

type requestHandlerImpl struct {
	approvalService *approvalservice.Service
}

func NewRequestHandler(approvalService *approvalservice.Service) RequestHandler {
	return &requestHandlerImpl{approvalService: approvalService}
}

// Create implements RequestHandler.
func (h *requestHandlerImpl) Create(w http.ResponseWriter, r *http.Request) {
	var req request.CreateRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("Create request decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	req.IdempotencyKey = r.Header.Get("Idempotency-Key")

	result, err := h.approvalService.CreateRequest(r.Context(), getUserIDFromContext(r), &req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Request submitted successfully", result)
}

// Get implements RequestHandler.
func (h *requestHandlerImpl) Get(w http.ResponseWriter, r *http.Request) {
	result, err := h.approvalService.GetRequest(r.Context(), getUserIDFromContext(r), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// List implements RequestHandler.
func (h *requestHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	filter := requestFilterFrom(r)

	results, total, err := h.approvalService.ListRequests(r.Context(), getUserIDFromContext(r), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMeta(w, results, listMeta(filter, total))
}

// ListMy implements RequestHandler.
func (h *requestHandlerImpl) ListMy(w http.ResponseWriter, r *http.Request) {
	filter := requestFilterFrom(r)

	results, total, err := h.approvalService.ListMyRequests(r.Context(), getUserIDFromContext(r), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMeta(w, results, listMeta(filter, total))
}

// Approve implements RequestHandler.
func (h *requestHandlerImpl) Approve(w http.ResponseWriter, r *http.Request) {
	result, err := h.approvalService.Decide(r.Context(), getUserIDFromContext(r), chi.URLParam(r, "id"), true)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Request approved", result)
}

// Reject implements RequestHandler.
func (h *requestHandlerImpl) Reject(w http.ResponseWriter, r *http.Request) {
	result, err := h.approvalService.Decide(r.Context(), getUserIDFromContext(r), chi.URLParam(r, "id"), false)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Request rejected", result)
}

func requestFilterFrom(r *http.Request) request.RequestFilter {
	q := r.URL.Query()

	var filter request.RequestFilter
	if v := q.Get("attendance_id"); v != "" {
		filter.AttendanceID = &v
	}
	if v := q.Get("type"); v != "" {
		filter.Type = &v
	}
	if v := q.Get("status"); v != "" {
		filter.Status = &v
	}
	if page, err := strconv.Atoi(q.Get("page")); err == nil {
		filter.Page = page
	}
	if limit, err := strconv.Atoi(q.Get("limit")); err == nil {
		filter.Limit = limit
	}

	return filter
}

func listMeta(filter request.RequestFilter, total int64) *response.Meta {
	page := filter.Page
	if page < 1 {
		page = 1
	}
	limit := filter.Limit
	if limit < 1 || limit > 100 {
		limit = 20
	}

	return &response.Meta{
		Page:       page,
		Limit:      limit,
		TotalItems: total,
		TotalPages: int((total + int64(limit) - 1) / int64(limit)),
	}
}
