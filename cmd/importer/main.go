package main

import (
	"context"
	"encoding/json"
	"flag"
	"os"
	"time"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"

	"github.com/agrodev/tractor-maintenance/internal/db"
	"github.com/agrodev/tractor-maintenance/internal/models"
	"github.com/agrodev/tractor-maintenance/internal/service"
)

// seedFile is the JSON layout the importer consumes. Service requests may
// carry a preset slug; those keep it, the rest draw from the sequencer.
type seedFile struct {
	Parts           []seedPart            `json:"parts"`
	Technicians     []models.Technician   `json:"technicians"`
	TractorOwners   []models.TractorOwner `json:"tractor_owners"`
	ServiceRequests []seedRequest         `json:"service_requests"`
}

type seedPart struct {
	PartName          string  `json:"part_name"`
	PartNumber        string  `json:"part_number"`
	Quantity          int64   `json:"quantity"`
	UnitPrice         float64 `json:"unit_price"`
	RemainingQuantity *int64  `json:"remaining_quantity,omitempty"`
}

type seedRequest struct {
	Slug            string                `json:"slug,omitempty"`
	Priority        models.Priority       `json:"priority,omitempty"`
	TechnicianID    string                `json:"technician_id"`
	TractorOwnerID  string                `json:"tractor_owner_id"`
	MaintenanceTask string                `json:"maintenance_task,omitempty"`
	CommonProblem   string                `json:"common_problem,omitempty"`
	Parts           []service.PartRequest `json:"parts,omitempty"`
	Notes           string                `json:"notes,omitempty"`
}

func main() {
	var filename string
	flag.StringVar(&filename, "file", "seed.json", "JSON seed file to import")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Debug("no .env file found, using environment")
	}
	log.SetFormatter(&log.JSONFormatter{})

	raw, err := os.ReadFile(filename)
	if err != nil {
		log.WithError(err).Fatal("failed to read seed file")
	}
	var seed seedFile
	if err := json.Unmarshal(raw, &seed); err != nil {
		log.WithError(err).Fatal("failed to parse seed file")
	}

	client, err := db.ConnectMongo()
	if err != nil {
		log.WithError(err).Fatal("failed to connect to MongoDB")
	}
	defer client.Disconnect(context.Background())

	database := os.Getenv("MONGO_DATABASE")
	if database == "" {
		database = "tractor_maintenance"
	}
	store := db.NewMongoStore(client, database)

	ledger := service.NewLedger(store.Parts)
	sequencer := service.NewSequencer(store.Counters)
	fleet := service.NewFleetService(store)
	requests := service.NewRequestService(store, ledger, sequencer, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	imported := 0
	for _, p := range seed.Parts {
		part, err := ledger.CreatePart(ctx, service.CreatePartInput{
			PartName:          p.PartName,
			PartNumber:        p.PartNumber,
			Quantity:          p.Quantity,
			UnitPrice:         p.UnitPrice,
			RemainingQuantity: p.RemainingQuantity,
		})
		if err != nil {
			log.WithError(err).WithField("part", p.PartName).Error("skipping part")
			continue
		}
		log.WithFields(log.Fields{"part_id": part.ID.Hex(), "part": part.PartName}).Info("imported part")
		imported++
	}

	for _, tech := range seed.Technicians {
		created, err := fleet.CreateTechnician(ctx, tech)
		if err != nil {
			log.WithError(err).WithField("technician", tech.FullName()).Error("skipping technician")
			continue
		}
		log.WithFields(log.Fields{"technician_id": created.ID.Hex()}).Info("imported technician")
		imported++
	}

	for _, owner := range seed.TractorOwners {
		created, err := fleet.CreateTractorOwner(ctx, owner)
		if err != nil {
			log.WithError(err).WithField("tractor_id", owner.TractorID).Error("skipping tractor owner")
			continue
		}
		log.WithFields(log.Fields{"owner_id": created.ID.Hex()}).Info("imported tractor owner")
		imported++
	}

	for _, r := range seed.ServiceRequests {
		created, err := requests.CreateServiceRequest(ctx, service.CreateServiceRequestInput{
			Slug:            r.Slug,
			Priority:        r.Priority,
			TechnicianID:    r.TechnicianID,
			TractorOwnerID:  r.TractorOwnerID,
			MaintenanceTask: r.MaintenanceTask,
			CommonProblem:   r.CommonProblem,
			Parts:           r.Parts,
			Notes:           r.Notes,
		})
		if err != nil {
			log.WithError(err).WithField("slug", r.Slug).Error("skipping service request")
			continue
		}
		log.WithFields(log.Fields{"request_id": created.ID.Hex(), "slug": created.Slug}).Info("imported service request")
		imported++
	}

	log.WithField("records", imported).Info("import complete")
}
