package handlers

import (
	"net/http"
	"strings"

	"github.com/agrodev/tractor-maintenance/internal/models"
	"github.com/agrodev/tractor-maintenance/internal/service"
)

// FleetHandler exposes technician and tractor owner registries over HTTP.
type FleetHandler struct {
	svc *service.FleetService
}

// NewFleetHandler creates a fleet handler.
func NewFleetHandler(svc *service.FleetService) *FleetHandler {
	return &FleetHandler{svc: svc}
}

// HandleTechnicians serves POST (create) and GET (list) on /api/technicians.
func (h *FleetHandler) HandleTechnicians(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		var tech models.Technician
		if err := decodeJSON(r, &tech); err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON: " + err.Error()})
			return
		}
		created, err := h.svc.CreateTechnician(r.Context(), tech)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, created)
	case http.MethodGet:
		techs, err := h.svc.ListTechnicians(r.Context())
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, techs)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// HandleTechnician serves GET on /api/technicians/{id}.
func (h *FleetHandler) HandleTechnician(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	id := strings.TrimPrefix(r.URL.Path, "/api/technicians/")
	tech, err := h.svc.GetTechnician(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tech)
}

// HandleOwners serves POST (create) and GET (list) on /api/tractor-owners.
func (h *FleetHandler) HandleOwners(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		var owner models.TractorOwner
		if err := decodeJSON(r, &owner); err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON: " + err.Error()})
			return
		}
		created, err := h.svc.CreateTractorOwner(r.Context(), owner)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, created)
	case http.MethodGet:
		owners, err := h.svc.ListTractorOwners(r.Context())
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, owners)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// HandleOwner serves GET on /api/tractor-owners/{id}.
func (h *FleetHandler) HandleOwner(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	id := strings.TrimPrefix(r.URL.Path, "/api/tractor-owners/")
	owner, err := h.svc.GetTractorOwner(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, owner)
}
