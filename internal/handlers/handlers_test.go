package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/agrodev/tractor-maintenance/internal/db"
	"github.com/agrodev/tractor-maintenance/internal/models"
	"github.com/agrodev/tractor-maintenance/internal/service"
	"github.com/stretchr/testify/require"
)

// testServer wires the HTTP handlers over an in-memory store, the same
// way cmd/main.go wires them over Mongo.
type testServer struct {
	store *db.Store
	mux   *http.ServeMux

	fleet    *service.FleetService
	requests *service.RequestService
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	store := db.NewMemoryStore()
	ledger := service.NewLedger(store.Parts)
	sequencer := service.NewSequencer(store.Counters)
	fleet := service.NewFleetService(store)
	requests := service.NewRequestService(store, ledger, sequencer, nil)

	partsHandler := NewPartsHandler(ledger)
	requestsHandler := NewRequestsHandler(requests)
	fleetHandler := NewFleetHandler(fleet)

	mux := http.NewServeMux()
	mux.HandleFunc("/api/parts", partsHandler.HandleParts)
	mux.HandleFunc("/api/parts/", partsHandler.HandlePart)
	mux.HandleFunc("/api/requests", requestsHandler.HandleRequests)
	mux.HandleFunc("/api/requests/assign", requestsHandler.HandleAssign)
	mux.HandleFunc("/api/requests/", requestsHandler.HandleRequest)
	mux.HandleFunc("/api/technicians", fleetHandler.HandleTechnicians)
	mux.HandleFunc("/api/technicians/", fleetHandler.HandleTechnician)
	mux.HandleFunc("/api/tractor-owners", fleetHandler.HandleOwners)
	mux.HandleFunc("/api/tractor-owners/", fleetHandler.HandleOwner)

	return &testServer{store: store, mux: mux, fleet: fleet, requests: requests}
}

// do sends a request with an optional JSON body and decodes the JSON
// response into out when out is non-nil.
func (s *testServer) do(t *testing.T, method, path string, body, out interface{}) *httptest.ResponseRecorder {
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
	w := httptest.NewRecorder()
	s.mux.ServeHTTP(w, req)

	if out != nil && w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), out),
			"body: %s", w.Body.String())
	}
	return w
}

func (s *testServer) createPart(t *testing.T, name string, quantity int64) models.Part {
	t.Helper()
	var part models.Part
	w := s.do(t, http.MethodPost, "/api/parts", map[string]interface{}{
		"part_name":   name,
		"part_number": "PN-" + name,
		"quantity":    quantity,
		"unit_price":  12.5,
	}, &part)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return part
}

func (s *testServer) createTechnician(t *testing.T, firstName string) models.Technician {
	t.Helper()
	var tech models.Technician
	w := s.do(t, http.MethodPost, "/api/technicians", map[string]interface{}{
		"first_name": firstName,
		"last_name":  "Smith",
		"email":      firstName + "@hub.example",
		"specialty":  "hydraulics",
	}, &tech)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return tech
}

func (s *testServer) createOwner(t *testing.T, tractorID string) models.TractorOwner {
	t.Helper()
	var owner models.TractorOwner
	w := s.do(t, http.MethodPost, "/api/tractor-owners", map[string]interface{}{
		"first_name": "Alex",
		"last_name":  "Farmer",
		"tractor_id": tractorID,
	}, &owner)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return owner
}
