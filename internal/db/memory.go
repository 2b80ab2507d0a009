package db

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/agrodev/tractor-maintenance/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// NewMemoryStore returns a Store backed by in-process maps. Every operation
// holds the store mutex, giving it the same serializability as the conditional
// updates in the Mongo implementations. Intended for tests and local demos.
func NewMemoryStore() *Store {
	m := &memoryStore{
		parts:    make(map[string]models.Part),
		techs:    make(map[string]models.Technician),
		owners:   make(map[string]models.TractorOwner),
		requests: make(map[string]models.ServiceRequest),
		counters: make(map[string]int64),
		users:    make(map[string]models.User),
	}
	return &Store{
		Parts:       (*memoryParts)(m),
		Technicians: (*memoryTechnicians)(m),
		Owners:      (*memoryOwners)(m),
		Requests:    (*memoryRequests)(m),
		Counters:    (*memoryCounters)(m),
		Users:       (*memoryUsers)(m),
	}
}

type memoryStore struct {
	mu       sync.Mutex
	parts    map[string]models.Part
	techs    map[string]models.Technician
	owners   map[string]models.TractorOwner
	requests map[string]models.ServiceRequest
	counters map[string]int64
	users    map[string]models.User
}

type (
	memoryParts       memoryStore
	memoryTechnicians memoryStore
	memoryOwners      memoryStore
	memoryRequests    memoryStore
	memoryCounters    memoryStore
	memoryUsers       memoryStore
)

// --- parts ---

func (m *memoryParts) InsertPart(ctx context.Context, part models.Part) (primitive.ObjectID, error) {
	s := (*memoryStore)(m)
	s.mu.Lock()
	defer s.mu.Unlock()

	part.ID = primitive.NewObjectID()
	part.CreatedAt = time.Now()
	part.UpdatedAt = time.Now()
	s.parts[part.ID.Hex()] = part
	return part.ID, nil
}

func (m *memoryParts) FindPartByID(ctx context.Context, id string) (*models.Part, error) {
	s := (*memoryStore)(m)
	s.mu.Lock()
	defer s.mu.Unlock()

	part, ok := s.parts[id]
	if !ok {
		return nil, fmt.Errorf("%w: part %s", ErrNotFound, id)
	}
	return &part, nil
}

func (m *memoryParts) FindParts(ctx context.Context) ([]models.Part, error) {
	s := (*memoryStore)(m)
	s.mu.Lock()
	defer s.mu.Unlock()

	parts := make([]models.Part, 0, len(s.parts))
	for _, p := range s.parts {
		parts = append(parts, p)
	}
	sort.Slice(parts, func(i, j int) bool { return parts[i].CreatedAt.Before(parts[j].CreatedAt) })
	return parts, nil
}

func (m *memoryParts) UpdatePartInfo(ctx context.Context, id string, part models.Part) error {
	s := (*memoryStore)(m)
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.parts[id]
	if !ok {
		return fmt.Errorf("%w: part %s", ErrNotFound, id)
	}
	existing.PartName = part.PartName
	existing.PartNumber = part.PartNumber
	existing.Quantity = part.Quantity
	existing.UnitPrice = part.UnitPrice
	existing.UpdatedAt = time.Now()
	s.parts[id] = existing
	return nil
}

func (m *memoryParts) DecrementRemaining(ctx context.Context, id string, amount int64) error {
	s := (*memoryStore)(m)
	s.mu.Lock()
	defer s.mu.Unlock()

	part, ok := s.parts[id]
	if !ok {
		return fmt.Errorf("%w: part %s", ErrNotFound, id)
	}
	if part.RemainingQuantity < amount {
		return fmt.Errorf("%w: part %s", ErrInsufficientStock, id)
	}
	part.RemainingQuantity -= amount
	part.UpdatedAt = time.Now()
	s.parts[id] = part
	return nil
}

func (m *memoryParts) IncrementRemaining(ctx context.Context, id string, amount int64) error {
	s := (*memoryStore)(m)
	s.mu.Lock()
	defer s.mu.Unlock()

	part, ok := s.parts[id]
	if !ok {
		return fmt.Errorf("%w: part %s", ErrNotFound, id)
	}
	part.RemainingQuantity += amount
	part.UpdatedAt = time.Now()
	s.parts[id] = part
	return nil
}

func (m *memoryParts) DeletePart(ctx context.Context, id string) error {
	s := (*memoryStore)(m)
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.parts[id]; !ok {
		return fmt.Errorf("%w: part %s", ErrNotFound, id)
	}
	delete(s.parts, id)
	return nil
}

// --- technicians ---

func (m *memoryTechnicians) InsertTechnician(ctx context.Context, tech models.Technician) (primitive.ObjectID, error) {
	s := (*memoryStore)(m)
	s.mu.Lock()
	defer s.mu.Unlock()

	tech.ID = primitive.NewObjectID()
	tech.CreatedAt = time.Now()
	tech.UpdatedAt = time.Now()
	s.techs[tech.ID.Hex()] = tech
	return tech.ID, nil
}

func (m *memoryTechnicians) FindTechnicianByID(ctx context.Context, id string) (*models.Technician, error) {
	s := (*memoryStore)(m)
	s.mu.Lock()
	defer s.mu.Unlock()

	tech, ok := s.techs[id]
	if !ok {
		return nil, fmt.Errorf("%w: technician %s", ErrNotFound, id)
	}
	return &tech, nil
}

func (m *memoryTechnicians) FindTechnicians(ctx context.Context) ([]models.Technician, error) {
	s := (*memoryStore)(m)
	s.mu.Lock()
	defer s.mu.Unlock()

	techs := make([]models.Technician, 0, len(s.techs))
	for _, t := range s.techs {
		techs = append(techs, t)
	}
	sort.Slice(techs, func(i, j int) bool { return techs[i].CreatedAt.Before(techs[j].CreatedAt) })
	return techs, nil
}

func (m *memoryTechnicians) UpdateTechnician(ctx context.Context, id string, tech models.Technician) error {
	s := (*memoryStore)(m)
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.techs[id]
	if !ok {
		return fmt.Errorf("%w: technician %s", ErrNotFound, id)
	}
	tech.ID = existing.ID
	tech.CreatedAt = existing.CreatedAt
	tech.UpdatedAt = time.Now()
	s.techs[id] = tech
	return nil
}

func (m *memoryTechnicians) DeleteTechnician(ctx context.Context, id string) error {
	s := (*memoryStore)(m)
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.techs[id]; !ok {
		return fmt.Errorf("%w: technician %s", ErrNotFound, id)
	}
	delete(s.techs, id)
	return nil
}

// --- tractor owners ---

func (m *memoryOwners) InsertOwner(ctx context.Context, owner models.TractorOwner) (primitive.ObjectID, error) {
	s := (*memoryStore)(m)
	s.mu.Lock()
	defer s.mu.Unlock()

	owner.ID = primitive.NewObjectID()
	owner.CreatedAt = time.Now()
	owner.UpdatedAt = time.Now()
	s.owners[owner.ID.Hex()] = owner
	return owner.ID, nil
}

func (m *memoryOwners) FindOwnerByID(ctx context.Context, id string) (*models.TractorOwner, error) {
	s := (*memoryStore)(m)
	s.mu.Lock()
	defer s.mu.Unlock()

	owner, ok := s.owners[id]
	if !ok {
		return nil, fmt.Errorf("%w: tractor owner %s", ErrNotFound, id)
	}
	return &owner, nil
}

func (m *memoryOwners) FindOwnerByTractorID(ctx context.Context, tractorID string) (*models.TractorOwner, error) {
	s := (*memoryStore)(m)
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, owner := range s.owners {
		if owner.TractorID == tractorID {
			return &owner, nil
		}
	}
	return nil, fmt.Errorf("%w: tractor %s", ErrNotFound, tractorID)
}

func (m *memoryOwners) FindOwners(ctx context.Context) ([]models.TractorOwner, error) {
	s := (*memoryStore)(m)
	s.mu.Lock()
	defer s.mu.Unlock()

	owners := make([]models.TractorOwner, 0, len(s.owners))
	for _, o := range s.owners {
		owners = append(owners, o)
	}
	sort.Slice(owners, func(i, j int) bool { return owners[i].CreatedAt.Before(owners[j].CreatedAt) })
	return owners, nil
}

func (m *memoryOwners) UpdateOwner(ctx context.Context, id string, owner models.TractorOwner) error {
	s := (*memoryStore)(m)
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.owners[id]
	if !ok {
		return fmt.Errorf("%w: tractor owner %s", ErrNotFound, id)
	}
	owner.ID = existing.ID
	owner.CreatedAt = existing.CreatedAt
	owner.UpdatedAt = time.Now()
	s.owners[id] = owner
	return nil
}

func (m *memoryOwners) AppendServiceHistory(ctx context.Context, id string, entry models.ServiceEntry) error {
	s := (*memoryStore)(m)
	s.mu.Lock()
	defer s.mu.Unlock()

	owner, ok := s.owners[id]
	if !ok {
		return fmt.Errorf("%w: tractor owner %s", ErrNotFound, id)
	}
	if owner.TractorInfo == nil {
		owner.TractorInfo = &models.TractorInfo{}
	}
	owner.TractorInfo.ServiceHistory = append(owner.TractorInfo.ServiceHistory, entry)
	owner.UpdatedAt = time.Now()
	s.owners[id] = owner
	return nil
}

func (m *memoryOwners) DeleteOwner(ctx context.Context, id string) error {
	s := (*memoryStore)(m)
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.owners[id]; !ok {
		return fmt.Errorf("%w: tractor owner %s", ErrNotFound, id)
	}
	delete(s.owners, id)
	return nil
}

// --- service requests ---

func (m *memoryRequests) InsertRequest(ctx context.Context, req models.ServiceRequest) (primitive.ObjectID, error) {
	s := (*memoryStore)(m)
	s.mu.Lock()
	defer s.mu.Unlock()

	req.ID = primitive.NewObjectID()
	req.CreatedAt = time.Now()
	req.UpdatedAt = time.Now()
	s.requests[req.ID.Hex()] = req
	return req.ID, nil
}

func (m *memoryRequests) FindRequestByID(ctx context.Context, id string) (*models.ServiceRequest, error) {
	s := (*memoryStore)(m)
	s.mu.Lock()
	defer s.mu.Unlock()

	req, ok := s.requests[id]
	if !ok {
		return nil, fmt.Errorf("%w: service request %s", ErrNotFound, id)
	}
	return &req, nil
}

func (m *memoryRequests) FindRequestBySlug(ctx context.Context, slug string) (*models.ServiceRequest, error) {
	s := (*memoryStore)(m)
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, req := range s.requests {
		if req.Slug == slug {
			return &req, nil
		}
	}
	return nil, fmt.Errorf("%w: service request %s", ErrNotFound, slug)
}

func (m *memoryRequests) FindRequests(ctx context.Context, filter RequestFilter) ([]models.ServiceRequest, error) {
	s := (*memoryStore)(m)
	s.mu.Lock()
	defer s.mu.Unlock()

	requests := make([]models.ServiceRequest, 0, len(s.requests))
	for _, r := range s.requests {
		if filter.Status != "" && r.Status != filter.Status {
			continue
		}
		if filter.TechnicianID != "" && r.TechnicianID.Hex() != filter.TechnicianID {
			continue
		}
		if filter.TractorOwnerID != "" && r.TractorOwnerID.Hex() != filter.TractorOwnerID {
			continue
		}
		requests = append(requests, r)
	}
	// newest assignment first, matching the Mongo sort
	sort.Slice(requests, func(i, j int) bool { return requests[i].AssignedAt.After(requests[j].AssignedAt) })
	return requests, nil
}

func (m *memoryRequests) UpdateRequest(ctx context.Context, id string, req models.ServiceRequest) error {
	s := (*memoryStore)(m)
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.requests[id]
	if !ok {
		return fmt.Errorf("%w: service request %s", ErrNotFound, id)
	}
	req.ID = existing.ID
	req.CreatedAt = existing.CreatedAt
	req.UpdatedAt = time.Now()
	s.requests[id] = req
	return nil
}

func (m *memoryRequests) DeleteRequest(ctx context.Context, id string) error {
	s := (*memoryStore)(m)
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.requests[id]; !ok {
		return fmt.Errorf("%w: service request %s", ErrNotFound, id)
	}
	delete(s.requests, id)
	return nil
}

// --- counters ---

func (m *memoryCounters) NextSequence(ctx context.Context, name string) (int64, error) {
	s := (*memoryStore)(m)
	s.mu.Lock()
	defer s.mu.Unlock()

	s.counters[name]++
	return s.counters[name], nil
}

// --- users ---

func (m *memoryUsers) InsertUser(ctx context.Context, user models.User) error {
	s := (*memoryStore)(m)
	s.mu.Lock()
	defer s.mu.Unlock()

	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	user.CreatedAt = time.Now()
	user.UpdatedAt = time.Now()
	user.IsActive = true
	s.users[user.ID.Hex()] = user
	return nil
}

func (m *memoryUsers) FindUserByID(ctx context.Context, id string) (*models.User, error) {
	s := (*memoryStore)(m)
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[id]
	if !ok {
		return nil, fmt.Errorf("%w: user %s", ErrNotFound, id)
	}
	return &user, nil
}

func (m *memoryUsers) FindUserByUsername(ctx context.Context, username string) (*models.User, error) {
	s := (*memoryStore)(m)
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, user := range s.users {
		if user.Username == username {
			return &user, nil
		}
	}
	return nil, fmt.Errorf("%w: user %s", ErrNotFound, username)
}

func (m *memoryUsers) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	s := (*memoryStore)(m)
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, user := range s.users {
		if user.Email == email {
			return &user, nil
		}
	}
	return nil, fmt.Errorf("%w: user %s", ErrNotFound, email)
}

func (m *memoryUsers) UpdateLastLogin(ctx context.Context, id string) error {
	s := (*memoryStore)(m)
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[id]
	if !ok {
		return fmt.Errorf("%w: user %s", ErrNotFound, id)
	}
	now := time.Now()
	user.LastLogin = &now
	user.UpdatedAt = now
	s.users[id] = user
	return nil
}
