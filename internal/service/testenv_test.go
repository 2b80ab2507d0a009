package service

import (
	"context"
	"sync"
	"testing"

	"github.com/agrodev/tractor-maintenance/internal/db"
	"github.com/agrodev/tractor-maintenance/internal/models"
	"github.com/agrodev/tractor-maintenance/internal/notify"
	"github.com/stretchr/testify/require"
)

// recordingNotifier captures published assignment events for assertions.
type recordingNotifier struct {
	mu     sync.Mutex
	events []notify.AssignmentEvent
}

func (n *recordingNotifier) PublishAssignment(ctx context.Context, event notify.AssignmentEvent) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, event)
	return nil
}

func (n *recordingNotifier) Events() []notify.AssignmentEvent {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]notify.AssignmentEvent, len(n.events))
	copy(out, n.events)
	return out
}

type testEnv struct {
	store     *db.Store
	ledger    *Ledger
	sequencer *Sequencer
	fleet     *FleetService
	requests  *RequestService
	notifier  *recordingNotifier
}

func newTestEnv() *testEnv {
	store := db.NewMemoryStore()
	ledger := NewLedger(store.Parts)
	sequencer := NewSequencer(store.Counters)
	notifier := &recordingNotifier{}
	return &testEnv{
		store:     store,
		ledger:    ledger,
		sequencer: sequencer,
		fleet:     NewFleetService(store),
		requests:  NewRequestService(store, ledger, sequencer, notifier),
		notifier:  notifier,
	}
}

func (e *testEnv) createPart(t *testing.T, name string, quantity int64) *models.Part {
	t.Helper()
	part, err := e.ledger.CreatePart(context.Background(), CreatePartInput{
		PartName:   name,
		PartNumber: "PN-" + name,
		Quantity:   quantity,
		UnitPrice:  9.99,
	})
	require.NoError(t, err)
	return part
}

func (e *testEnv) createTechnician(t *testing.T, firstName string) *models.Technician {
	t.Helper()
	tech, err := e.fleet.CreateTechnician(context.Background(), models.Technician{
		FirstName:       firstName,
		LastName:        "Smith",
		Email:           firstName + "@hub.example",
		Specialty:       "engine",
		ExperienceYears: 5,
		Certifications:  []string{"diesel-1"},
	})
	require.NoError(t, err)
	return tech
}

func (e *testEnv) createOwner(t *testing.T, tractorID string) *models.TractorOwner {
	t.Helper()
	owner, err := e.fleet.CreateTractorOwner(context.Background(), models.TractorOwner{
		FirstName: "Alex",
		LastName:  "Farmer",
		Email:     "alex@farm.example",
		TractorID: tractorID,
	})
	require.NoError(t, err)
	return owner
}
