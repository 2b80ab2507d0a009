package handlers

import (
	"net/http"
	"strings"

	"github.com/agrodev/tractor-maintenance/internal/service"
)

// PartsHandler exposes the part inventory ledger over HTTP.
type PartsHandler struct {
	ledger *service.Ledger
}

// NewPartsHandler creates a parts handler.
func NewPartsHandler(ledger *service.Ledger) *PartsHandler {
	return &PartsHandler{ledger: ledger}
}

type createPartRequest struct {
	PartName          string  `json:"part_name"`
	PartNumber        string  `json:"part_number"`
	Quantity          int64   `json:"quantity"`
	UnitPrice         float64 `json:"unit_price"`
	RemainingQuantity *int64  `json:"remaining_quantity,omitempty"`
}

type adjustRequest struct {
	Amount    int64  `json:"amount"`
	Direction string `json:"direction"` // "reduce" or "increase"
}

type updatePartRequest struct {
	PartName   *string        `json:"part_name,omitempty"`
	PartNumber *string        `json:"part_number,omitempty"`
	Quantity   *int64         `json:"quantity,omitempty"`
	UnitPrice  *float64       `json:"unit_price,omitempty"`
	Adjust     *adjustRequest `json:"adjust,omitempty"`
}

// HandleParts serves POST (create) and GET (list) on /api/parts.
func (h *PartsHandler) HandleParts(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		var req createPartRequest
		if err := decodeJSON(r, &req); err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON: " + err.Error()})
			return
		}
		part, err := h.ledger.CreatePart(r.Context(), service.CreatePartInput{
			PartName:          req.PartName,
			PartNumber:        req.PartNumber,
			Quantity:          req.Quantity,
			UnitPrice:         req.UnitPrice,
			RemainingQuantity: req.RemainingQuantity,
		})
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, part)
	case http.MethodGet:
		parts, err := h.ledger.ListParts(r.Context())
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, parts)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// HandlePart serves GET, PUT and DELETE on /api/parts/{id}.
func (h *PartsHandler) HandlePart(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/api/parts/")
	if id == "" || strings.Contains(id, "/") {
		http.Error(w, "Part ID required", http.StatusBadRequest)
		return
	}

	switch r.Method {
	case http.MethodGet:
		part, err := h.ledger.GetPart(r.Context(), id)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, part)
	case http.MethodPut:
		h.updatePart(w, r, id)
	case http.MethodDelete:
		if err := h.ledger.DeletePart(r.Context(), id); err != nil {
			writeServiceError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// updatePart applies a relative stock adjustment and absolute field updates.
// The adjustment is the only way to change remaining quantity; an absolute
// remaining value is not accepted. The adjustment runs first, so a rejected
// adjustment (e.g. an overdraft) leaves the rest of the body unapplied.
func (h *PartsHandler) updatePart(w http.ResponseWriter, r *http.Request, id string) {
	var req updatePartRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON: " + err.Error()})
		return
	}

	if req.Adjust != nil {
		err := h.ledger.AdjustQuantity(r.Context(), id, req.Adjust.Amount, service.AdjustDirection(req.Adjust.Direction))
		if err != nil {
			writeServiceError(w, err)
			return
		}
	}

	if req.PartName != nil || req.PartNumber != nil || req.Quantity != nil || req.UnitPrice != nil {
		_, err := h.ledger.SetPartFields(r.Context(), id, service.PartFields{
			PartName:   req.PartName,
			PartNumber: req.PartNumber,
			Quantity:   req.Quantity,
			UnitPrice:  req.UnitPrice,
		})
		if err != nil {
			writeServiceError(w, err)
			return
		}
	}

	part, err := h.ledger.GetPart(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, part)
}
