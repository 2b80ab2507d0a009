package handlers

import (
	"net/http"
	"strings"

	"github.com/agrodev/tractor-maintenance/internal/db"
	"github.com/agrodev/tractor-maintenance/internal/models"
	"github.com/agrodev/tractor-maintenance/internal/service"
)

// RequestsHandler exposes the service request lifecycle over HTTP.
type RequestsHandler struct {
	svc *service.RequestService
}

// NewRequestsHandler creates a requests handler.
func NewRequestsHandler(svc *service.RequestService) *RequestsHandler {
	return &RequestsHandler{svc: svc}
}

type createRequestBody struct {
	Slug            string                `json:"slug,omitempty"`
	Priority        models.Priority       `json:"priority,omitempty"`
	TechnicianID    string                `json:"technician_id"`
	TractorOwnerID  string                `json:"tractor_owner_id"`
	MaintenanceTask string                `json:"maintenance_task,omitempty"`
	CommonProblem   string                `json:"common_problem,omitempty"`
	Parts           []service.PartRequest `json:"parts,omitempty"`
	Notes           string                `json:"notes,omitempty"`
}

type assignRequestBody struct {
	TechnicianID    string                `json:"technician_id"`
	RequestID       string                `json:"request_id,omitempty"`
	TractorOwnerID  string                `json:"tractor_owner_id"`
	MaintenanceTask string                `json:"maintenance_task,omitempty"`
	CommonProblem   string                `json:"common_problem,omitempty"`
	Priority        models.Priority       `json:"priority,omitempty"`
	Parts           []service.PartRequest `json:"parts,omitempty"`
}

// HandleRequests serves POST (create) and GET (list) on /api/requests.
func (h *RequestsHandler) HandleRequests(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		var body createRequestBody
		if err := decodeJSON(r, &body); err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON: " + err.Error()})
			return
		}
		req, err := h.svc.CreateServiceRequest(r.Context(), service.CreateServiceRequestInput{
			Slug:            body.Slug,
			Priority:        body.Priority,
			TechnicianID:    body.TechnicianID,
			TractorOwnerID:  body.TractorOwnerID,
			MaintenanceTask: body.MaintenanceTask,
			CommonProblem:   body.CommonProblem,
			Parts:           body.Parts,
			Notes:           body.Notes,
		})
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, req)
	case http.MethodGet:
		query := r.URL.Query()
		filter := db.RequestFilter{
			Status:         models.RequestStatus(query.Get("status")),
			TechnicianID:   query.Get("technician_id"),
			TractorOwnerID: query.Get("tractor_owner_id"),
		}
		requests, err := h.svc.ListServiceRequests(r.Context(), filter)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, requests)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// HandleAssign serves POST /api/requests/assign.
func (h *RequestsHandler) HandleAssign(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var body assignRequestBody
	if err := decodeJSON(r, &body); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON: " + err.Error()})
		return
	}

	req, err := h.svc.Assign(r.Context(), service.AssignInput{
		TechnicianID:    body.TechnicianID,
		RequestID:       body.RequestID,
		TractorOwnerID:  body.TractorOwnerID,
		MaintenanceTask: body.MaintenanceTask,
		CommonProblem:   body.CommonProblem,
		Priority:        body.Priority,
		Parts:           body.Parts,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, req)
}

// HandleRequest serves GET, PUT and DELETE on /api/requests/{id}.
func (h *RequestsHandler) HandleRequest(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/api/requests/")
	if id == "" || strings.Contains(id, "/") {
		http.Error(w, "Request ID required", http.StatusBadRequest)
		return
	}

	switch r.Method {
	case http.MethodGet:
		resolved, err := h.svc.GetServiceRequest(r.Context(), id)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, resolved)
	case http.MethodPut:
		var body service.UpdateServiceRequestInput
		if err := decodeJSON(r, &body); err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON: " + err.Error()})
			return
		}
		req, err := h.svc.UpdateServiceRequest(r.Context(), id, body)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, req)
	case http.MethodDelete:
		if err := h.svc.DeleteServiceRequest(r.Context(), id); err != nil {
			writeServiceError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}
