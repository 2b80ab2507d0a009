package service

import (
	"context"
	"testing"
	"time"

	"github.com/agrodev/tractor-maintenance/internal/db"
	"github.com/agrodev/tractor-maintenance/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateServiceRequest_AutoSlug(t *testing.T) {
	env := newTestEnv()
	tech := env.createTechnician(t, "Dana")
	owner := env.createOwner(t, "TR-100")
	ctx := context.Background()

	req, err := env.requests.CreateServiceRequest(ctx, CreateServiceRequestInput{
		TechnicianID:    tech.ID.Hex(),
		TractorOwnerID:  owner.ID.Hex(),
		MaintenanceTask: "Oil change",
	})
	require.NoError(t, err)

	assert.Equal(t, "SR-001", req.Slug)
	assert.Equal(t, models.StatusPending, req.Status)
	assert.Equal(t, models.PriorityMedium, req.Priority)
	assert.False(t, req.AssignedAt.IsZero())
	assert.Nil(t, req.CompletedAt)

	second, err := env.requests.CreateServiceRequest(ctx, CreateServiceRequestInput{
		TechnicianID:   tech.ID.Hex(),
		TractorOwnerID: owner.ID.Hex(),
	})
	require.NoError(t, err)
	assert.Equal(t, "SR-002", second.Slug)
}

func TestCreateServiceRequest_PresetSlugSkipsSequencer(t *testing.T) {
	env := newTestEnv()
	tech := env.createTechnician(t, "Dana")
	owner := env.createOwner(t, "TR-100")
	ctx := context.Background()

	imported, err := env.requests.CreateServiceRequest(ctx, CreateServiceRequestInput{
		Slug:           "SR-777",
		TechnicianID:   tech.ID.Hex(),
		TractorOwnerID: owner.ID.Hex(),
	})
	require.NoError(t, err)
	assert.Equal(t, "SR-777", imported.Slug)

	// the counter was never touched, so the next auto slug is still SR-001
	next, err := env.requests.CreateServiceRequest(ctx, CreateServiceRequestInput{
		TechnicianID:   tech.ID.Hex(),
		TractorOwnerID: owner.ID.Hex(),
	})
	require.NoError(t, err)
	assert.Equal(t, "SR-001", next.Slug)
}

func TestCreateServiceRequest_DuplicatePresetSlugRejected(t *testing.T) {
	env := newTestEnv()
	tech := env.createTechnician(t, "Dana")
	owner := env.createOwner(t, "TR-100")
	ctx := context.Background()

	_, err := env.requests.CreateServiceRequest(ctx, CreateServiceRequestInput{
		Slug:           "SR-777",
		TechnicianID:   tech.ID.Hex(),
		TractorOwnerID: owner.ID.Hex(),
	})
	require.NoError(t, err)

	_, err = env.requests.CreateServiceRequest(ctx, CreateServiceRequestInput{
		Slug:           "SR-777",
		TechnicianID:   tech.ID.Hex(),
		TractorOwnerID: owner.ID.Hex(),
	})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "slug", verr.Field)

	all, err := env.requests.ListServiceRequests(ctx, db.RequestFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestCreateServiceRequest_AutoSlugSkipsPresetSlug(t *testing.T) {
	env := newTestEnv()
	tech := env.createTechnician(t, "Dana")
	owner := env.createOwner(t, "TR-100")
	ctx := context.Background()

	// a preset occupying the sequencer's first value
	imported, err := env.requests.CreateServiceRequest(ctx, CreateServiceRequestInput{
		Slug:           "SR-001",
		TechnicianID:   tech.ID.Hex(),
		TractorOwnerID: owner.ID.Hex(),
	})
	require.NoError(t, err)
	assert.Equal(t, "SR-001", imported.Slug)

	// the auto path draws past the taken value instead of duplicating it
	auto, err := env.requests.CreateServiceRequest(ctx, CreateServiceRequestInput{
		TechnicianID:   tech.ID.Hex(),
		TractorOwnerID: owner.ID.Hex(),
	})
	require.NoError(t, err)
	assert.Equal(t, "SR-002", auto.Slug)
	assert.NotEqual(t, imported.Slug, auto.Slug)
}

func TestCreateServiceRequest_MissingReferencesFailValidation(t *testing.T) {
	env := newTestEnv()
	tech := env.createTechnician(t, "Dana")
	owner := env.createOwner(t, "TR-100")
	ctx := context.Background()

	_, err := env.requests.CreateServiceRequest(ctx, CreateServiceRequestInput{
		TractorOwnerID: owner.ID.Hex(),
	})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "technician_id", verr.Field)

	_, err = env.requests.CreateServiceRequest(ctx, CreateServiceRequestInput{
		TechnicianID: tech.ID.Hex(),
	})
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "tractor_owner_id", verr.Field)

	// nothing was persisted by the failed creates
	all, err := env.requests.ListServiceRequests(ctx, db.RequestFilter{})
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestCreateServiceRequest_UnresolvableTechnician(t *testing.T) {
	env := newTestEnv()
	owner := env.createOwner(t, "TR-100")

	_, err := env.requests.CreateServiceRequest(context.Background(), CreateServiceRequestInput{
		TechnicianID:   "64f000000000000000000000",
		TractorOwnerID: owner.ID.Hex(),
	})
	var nfErr *NotFoundError
	require.ErrorAs(t, err, &nfErr)
	assert.Equal(t, "technician", nfErr.Entity)
}

func TestCreateServiceRequest_InvalidPriority(t *testing.T) {
	env := newTestEnv()
	tech := env.createTechnician(t, "Dana")
	owner := env.createOwner(t, "TR-100")

	_, err := env.requests.CreateServiceRequest(context.Background(), CreateServiceRequestInput{
		TechnicianID:   tech.ID.Hex(),
		TractorOwnerID: owner.ID.Hex(),
		Priority:       "critical",
	})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "priority", verr.Field)
}

func TestUpdateServiceRequest_CompletedStampsCompletedAt(t *testing.T) {
	env := newTestEnv()
	tech := env.createTechnician(t, "Dana")
	owner := env.createOwner(t, "TR-100")
	ctx := context.Background()

	req, err := env.requests.CreateServiceRequest(ctx, CreateServiceRequestInput{
		TechnicianID:    tech.ID.Hex(),
		TractorOwnerID:  owner.ID.Hex(),
		MaintenanceTask: "Brake service",
	})
	require.NoError(t, err)

	before := time.Now()
	status := models.StatusCompleted
	updated, err := env.requests.UpdateServiceRequest(ctx, req.ID.Hex(), UpdateServiceRequestInput{Status: &status})
	require.NoError(t, err)

	require.NotNil(t, updated.CompletedAt)
	assert.WithinDuration(t, before, *updated.CompletedAt, 5*time.Second)
	assert.Equal(t, models.StatusCompleted, updated.Status)
}

func TestUpdateServiceRequest_CompletionRecordsServiceHistory(t *testing.T) {
	env := newTestEnv()
	tech := env.createTechnician(t, "Dana")
	owner := env.createOwner(t, "TR-100")
	ctx := context.Background()

	req, err := env.requests.CreateServiceRequest(ctx, CreateServiceRequestInput{
		TechnicianID:    tech.ID.Hex(),
		TractorOwnerID:  owner.ID.Hex(),
		MaintenanceTask: "Clutch adjustment",
	})
	require.NoError(t, err)

	status := models.StatusCompleted
	_, err = env.requests.UpdateServiceRequest(ctx, req.ID.Hex(), UpdateServiceRequestInput{Status: &status})
	require.NoError(t, err)

	got, err := env.fleet.GetTractorOwner(ctx, owner.ID.Hex())
	require.NoError(t, err)
	require.NotNil(t, got.TractorInfo)
	require.Len(t, got.TractorInfo.ServiceHistory, 1)
	assert.Equal(t, "Clutch adjustment", got.TractorInfo.ServiceHistory[0].Description)
	assert.Equal(t, "completed", got.TractorInfo.ServiceHistory[0].Status)
}

func TestUpdateServiceRequest_BackwardTransitionRejected(t *testing.T) {
	env := newTestEnv()
	tech := env.createTechnician(t, "Dana")
	owner := env.createOwner(t, "TR-100")
	ctx := context.Background()

	req, err := env.requests.CreateServiceRequest(ctx, CreateServiceRequestInput{
		TechnicianID:   tech.ID.Hex(),
		TractorOwnerID: owner.ID.Hex(),
	})
	require.NoError(t, err)

	completed := models.StatusCompleted
	updated, err := env.requests.UpdateServiceRequest(ctx, req.ID.Hex(), UpdateServiceRequestInput{Status: &completed})
	require.NoError(t, err)
	firstCompletedAt := *updated.CompletedAt

	pending := models.StatusPending
	_, err = env.requests.UpdateServiceRequest(ctx, req.ID.Hex(), UpdateServiceRequestInput{Status: &pending})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "status", verr.Field)

	// the record is unchanged, completed_at in particular
	got, err := env.requests.GetServiceRequest(ctx, req.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, got.Request.Status)
	require.NotNil(t, got.Request.CompletedAt)
	assert.True(t, got.Request.CompletedAt.Equal(firstCompletedAt))
}

func TestUpdateServiceRequest_InvalidStatusLeavesRecordUnchanged(t *testing.T) {
	env := newTestEnv()
	tech := env.createTechnician(t, "Dana")
	owner := env.createOwner(t, "TR-100")
	ctx := context.Background()

	req, err := env.requests.CreateServiceRequest(ctx, CreateServiceRequestInput{
		TechnicianID:   tech.ID.Hex(),
		TractorOwnerID: owner.ID.Hex(),
		Notes:          "original",
	})
	require.NoError(t, err)

	bogus := models.RequestStatus("cancelled")
	notes := "should not stick"
	_, err = env.requests.UpdateServiceRequest(ctx, req.ID.Hex(), UpdateServiceRequestInput{
		Status: &bogus,
		Notes:  &notes,
	})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)

	got, err := env.requests.GetServiceRequest(ctx, req.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, got.Request.Status)
	assert.Equal(t, "original", got.Request.Notes)
}

func TestUpdateServiceRequest_NotesMutableAtAnyStatus(t *testing.T) {
	env := newTestEnv()
	tech := env.createTechnician(t, "Dana")
	owner := env.createOwner(t, "TR-100")
	ctx := context.Background()

	req, err := env.requests.CreateServiceRequest(ctx, CreateServiceRequestInput{
		TechnicianID:   tech.ID.Hex(),
		TractorOwnerID: owner.ID.Hex(),
	})
	require.NoError(t, err)

	completed := models.StatusCompleted
	_, err = env.requests.UpdateServiceRequest(ctx, req.ID.Hex(), UpdateServiceRequestInput{Status: &completed})
	require.NoError(t, err)

	notes := "left old filter with owner"
	updated, err := env.requests.UpdateServiceRequest(ctx, req.ID.Hex(), UpdateServiceRequestInput{Notes: &notes})
	require.NoError(t, err)
	assert.Equal(t, notes, updated.Notes)
	assert.Equal(t, models.StatusCompleted, updated.Status)
}

func TestUpdateServiceRequest_NotFound(t *testing.T) {
	env := newTestEnv()

	notes := "x"
	_, err := env.requests.UpdateServiceRequest(context.Background(), "64f000000000000000000000", UpdateServiceRequestInput{Notes: &notes})
	var nfErr *NotFoundError
	require.ErrorAs(t, err, &nfErr)
	assert.Equal(t, "service request", nfErr.Entity)
}

func TestDeleteServiceRequest_DoesNotRestock(t *testing.T) {
	env := newTestEnv()
	tech := env.createTechnician(t, "Dana")
	owner := env.createOwner(t, "TR-100")
	part := env.createPart(t, "Oil Filter", 10)
	ctx := context.Background()

	req, err := env.requests.Assign(ctx, AssignInput{
		TechnicianID:    tech.ID.Hex(),
		TractorOwnerID:  owner.ID.Hex(),
		MaintenanceTask: "Oil change",
		Parts:           []PartRequest{{PartID: part.ID.Hex(), Quantity: 4}},
	})
	require.NoError(t, err)

	require.NoError(t, env.requests.DeleteServiceRequest(ctx, req.ID.Hex()))

	got, err := env.ledger.GetPart(ctx, part.ID.Hex())
	require.NoError(t, err)
	// consumed parts stay consumed
	assert.Equal(t, int64(6), got.RemainingQuantity)

	_, err = env.requests.GetServiceRequest(ctx, req.ID.Hex())
	var nfErr *NotFoundError
	require.ErrorAs(t, err, &nfErr)
}

func TestListServiceRequests_NewestFirstAndFiltered(t *testing.T) {
	env := newTestEnv()
	tech := env.createTechnician(t, "Dana")
	owner := env.createOwner(t, "TR-100")
	ctx := context.Background()

	first, err := env.requests.CreateServiceRequest(ctx, CreateServiceRequestInput{
		TechnicianID:   tech.ID.Hex(),
		TractorOwnerID: owner.ID.Hex(),
	})
	require.NoError(t, err)
	time.Sleep(5 * time.Millisecond)
	second, err := env.requests.CreateServiceRequest(ctx, CreateServiceRequestInput{
		TechnicianID:   tech.ID.Hex(),
		TractorOwnerID: owner.ID.Hex(),
	})
	require.NoError(t, err)

	all, err := env.requests.ListServiceRequests(ctx, db.RequestFilter{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, second.Slug, all[0].Slug)
	assert.Equal(t, first.Slug, all[1].Slug)

	pending, err := env.requests.ListServiceRequests(ctx, db.RequestFilter{Status: models.StatusPending})
	require.NoError(t, err)
	assert.Len(t, pending, 2)

	completedOnly, err := env.requests.ListServiceRequests(ctx, db.RequestFilter{Status: models.StatusCompleted})
	require.NoError(t, err)
	assert.Empty(t, completedOnly)

	_, err = env.requests.ListServiceRequests(ctx, db.RequestFilter{Status: "bogus"})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
}

func TestGetServiceRequest_ToleratesDanglingPartReference(t *testing.T) {
	env := newTestEnv()
	tech := env.createTechnician(t, "Dana")
	owner := env.createOwner(t, "TR-100")
	part := env.createPart(t, "Oil Filter", 10)
	ctx := context.Background()

	req, err := env.requests.Assign(ctx, AssignInput{
		TechnicianID:   tech.ID.Hex(),
		TractorOwnerID: owner.ID.Hex(),
		Parts:          []PartRequest{{PartID: part.ID.Hex(), Quantity: 1}},
	})
	require.NoError(t, err)

	require.NoError(t, env.ledger.DeletePart(ctx, part.ID.Hex()))

	resolved, err := env.requests.GetServiceRequest(ctx, req.ID.Hex())
	require.NoError(t, err)
	require.Len(t, resolved.Parts, 1)
	assert.True(t, resolved.Parts[0].Missing)
	assert.Nil(t, resolved.Parts[0].Part)
	assert.Equal(t, part.ID.Hex(), resolved.Parts[0].PartID)

	// resolved references are present for the intact ones
	assert.False(t, resolved.TechnicianMissing)
	require.NotNil(t, resolved.Technician)
	assert.Equal(t, tech.ID, resolved.Technician.ID)
	assert.False(t, resolved.TractorMissing)
}
