package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"strconv"
	"time"

	log "github.com/sirupsen/logrus"
)

// partSeed describes a stock line registered at startup.
type partSeed struct {
	PartName   string  `json:"part_name"`
	PartNumber string  `json:"part_number"`
	Quantity   int64   `json:"quantity"`
	UnitPrice  float64 `json:"unit_price"`
}

type technicianSeed struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Specialty string `json:"specialty"`
}

type ownerSeed struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	TractorID string `json:"tractor_id"`
}

type partLine struct {
	PartID   string `json:"part_id"`
	Quantity int64  `json:"quantity"`
}

type assignPayload struct {
	TechnicianID    string     `json:"technician_id"`
	TractorOwnerID  string     `json:"tractor_owner_id"`
	MaintenanceTask string     `json:"maintenance_task,omitempty"`
	CommonProblem   string     `json:"common_problem,omitempty"`
	Priority        string     `json:"priority,omitempty"`
	Parts           []partLine `json:"parts,omitempty"`
}

var catalog = []partSeed{
	{"engine oil filter", "PN-1001", 40, 8.50},
	{"fuel filter", "PN-1002", 30, 11.25},
	{"air filter", "PN-1003", 25, 14.00},
	{"hydraulic hose", "PN-2001", 20, 32.75},
	{"drive belt", "PN-2002", 15, 19.99},
	{"spark plug", "PN-3001", 60, 4.20},
	{"alternator", "PN-4001", 6, 145.00},
	{"water pump", "PN-4002", 8, 98.50},
}

var specialties = []string{"hydraulics", "engines", "electrical", "transmission"}

var tasks = []string{
	"200h service",
	"oil and filter change",
	"hydraulic leak repair",
	"electrical diagnostics",
	"pre-season inspection",
}

var problems = []string{
	"engine overheating",
	"hydraulics losing pressure",
	"hard starting in cold weather",
	"PTO not engaging",
	"",
}

var priorities = []string{"low", "medium", "medium", "high", "urgent"}

var firstNames = []string{"Dana", "Lee", "Sam", "Priya", "Marco", "Elena", "Tomas", "Aisha"}
var lastNames = []string{"Smith", "Okafor", "Novak", "Reyes", "Kowalski", "Hansen"}

var authToken string

func authorizedPost(url string, body []byte) (*http.Response, error) {
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if authToken != "" {
		req.Header.Set("Authorization", "Bearer "+authToken)
	}
	client := &http.Client{Timeout: 10 * time.Second}
	return client.Do(req)
}

func authorizedPut(url string, body []byte) (*http.Response, error) {
	req, err := http.NewRequest(http.MethodPut, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if authToken != "" {
		req.Header.Set("Authorization", "Bearer "+authToken)
	}
	client := &http.Client{Timeout: 10 * time.Second}
	return client.Do(req)
}

// postForID creates a resource and returns the "id" from the response.
func postForID(url string, payload interface{}) (string, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}
	resp, err := authorizedPost(url, data)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status %d from %s", resp.StatusCode, url)
	}

	var result map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}
	id, ok := result["id"].(string)
	if !ok {
		return "", fmt.Errorf("no id in response from %s", url)
	}
	return id, nil
}

func seedParts(apiURL string) []string {
	ids := make([]string, 0, len(catalog))
	for _, p := range catalog {
		id, err := postForID(apiURL+"/parts", p)
		if err != nil {
			log.WithError(err).WithField("part", p.PartName).Error("Failed to register part")
			continue
		}
		log.WithFields(log.Fields{"part_id": id, "part": p.PartName}).Info("Registered part")
		ids = append(ids, id)
	}
	return ids
}

func seedTechnicians(apiURL string, n int) []string {
	ids := make([]string, 0, n)
	for i := 0; i < n; i++ {
		first := firstNames[rand.Intn(len(firstNames))]
		last := lastNames[rand.Intn(len(lastNames))]
		id, err := postForID(apiURL+"/technicians", technicianSeed{
			FirstName: first,
			LastName:  last,
			Email:     fmt.Sprintf("%s.%s.%d@hub.example", first, last, i),
			Specialty: specialties[rand.Intn(len(specialties))],
		})
		if err != nil {
			log.WithError(err).Error("Failed to register technician")
			continue
		}
		log.WithFields(log.Fields{"technician_id": id, "name": first + " " + last}).Info("Registered technician")
		ids = append(ids, id)
	}
	return ids
}

func seedOwners(apiURL string, n int) []string {
	ids := make([]string, 0, n)
	for i := 0; i < n; i++ {
		first := firstNames[rand.Intn(len(firstNames))]
		last := lastNames[rand.Intn(len(lastNames))]
		id, err := postForID(apiURL+"/tractor-owners", ownerSeed{
			FirstName: first,
			LastName:  last,
			TractorID: fmt.Sprintf("TR-%03d", i+1),
		})
		if err != nil {
			log.WithError(err).Error("Failed to register tractor owner")
			continue
		}
		log.WithFields(log.Fields{"owner_id": id}).Info("Registered tractor owner")
		ids = append(ids, id)
	}
	return ids
}

// assignOnce creates one assignment with a random technician, tractor and
// parts list. A 409 is a normal outcome when stock runs low.
func assignOnce(apiURL string, technicians, owners, parts []string) (string, bool) {
	lines := make([]partLine, 0, 2)
	for _, p := range pickParts(parts) {
		lines = append(lines, partLine{PartID: p, Quantity: int64(1 + rand.Intn(3))})
	}

	payload := assignPayload{
		TechnicianID:    technicians[rand.Intn(len(technicians))],
		TractorOwnerID:  owners[rand.Intn(len(owners))],
		MaintenanceTask: tasks[rand.Intn(len(tasks))],
		CommonProblem:   problems[rand.Intn(len(problems))],
		Priority:        priorities[rand.Intn(len(priorities))],
		Parts:           lines,
	}

	data, err := json.Marshal(payload)
	if err != nil {
		log.WithError(err).Error("Failed to marshal assignment")
		return "", false
	}
	resp, err := authorizedPost(apiURL+"/requests/assign", data)
	if err != nil {
		log.WithError(err).Error("Failed to send assignment")
		return "", false
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusConflict {
		log.Info("Assignment rejected, insufficient stock")
		return "", false
	}
	if resp.StatusCode != http.StatusOK {
		log.WithField("status", resp.Status).Error("Assignment failed")
		return "", false
	}

	var result map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		log.WithError(err).Error("Failed to decode assignment response")
		return "", false
	}
	id, _ := result["id"].(string)
	slug, _ := result["slug"].(string)
	log.WithFields(log.Fields{"request_id": id, "slug": slug}).Info("Assigned service request")
	return id, id != ""
}

func pickParts(parts []string) []string {
	if len(parts) == 0 {
		return nil
	}
	n := 1 + rand.Intn(2)
	picked := make([]string, 0, n)
	seen := make(map[string]bool)
	for len(picked) < n {
		p := parts[rand.Intn(len(parts))]
		if seen[p] {
			continue
		}
		seen[p] = true
		picked = append(picked, p)
	}
	return picked
}

func completeRequest(apiURL, id string) {
	data, _ := json.Marshal(map[string]string{
		"status": "completed",
		"notes":  "closed by simulator",
	})
	resp, err := authorizedPut(apiURL+"/requests/"+id, data)
	if err != nil {
		log.WithError(err).Error("Failed to complete request")
		return
	}
	defer resp.Body.Close()
	log.WithFields(log.Fields{"request_id": id, "status": resp.Status}).Info("Completed service request")
}

func main() {
	authToken = os.Getenv("SIM_AUTH_TOKEN")

	apiURL := os.Getenv("API_BASE_URL")
	if apiURL == "" {
		apiURL = "http://localhost:8080/api"
	}

	technicianCount := 4
	if v := os.Getenv("SIM_TECHNICIANS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 1 {
			technicianCount = n
		}
	}
	ownerCount := 8
	if v := os.Getenv("SIM_OWNERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 1 {
			ownerCount = n
		}
	}
	interval := 3 * time.Second
	if v := os.Getenv("SIM_TICK_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 1 {
			interval = time.Duration(n) * time.Second
		}
	}

	log.WithFields(log.Fields{
		"api_url":     apiURL,
		"technicians": technicianCount,
		"owners":      ownerCount,
		"interval":    interval,
	}).Info("Starting maintenance simulation")

	parts := seedParts(apiURL)
	technicians := seedTechnicians(apiURL, technicianCount)
	owners := seedOwners(apiURL, ownerCount)

	if len(parts) == 0 || len(technicians) == 0 || len(owners) == 0 {
		log.Error("Seeding failed. Ensure SIM_AUTH_TOKEN is valid and API is reachable. Exiting.")
		time.Sleep(2 * time.Second)
		return
	}

	var open []string
	tick := time.NewTicker(interval)
	defer tick.Stop()
	for range tick.C {
		// mostly assign, sometimes complete an open request
		if len(open) > 0 && rand.Float64() < 0.4 {
			i := rand.Intn(len(open))
			completeRequest(apiURL, open[i])
			open = append(open[:i], open[i+1:]...)
			continue
		}
		if id, ok := assignOnce(apiURL, technicians, owners, parts); ok {
			open = append(open, id)
		}
	}
}
