package memory

import (
	"context"
	"maps"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/wolfeidau/tenantd/internal/models"
	"github.com/wolfeidau/tenantd/internal/store"
)

// OrganizationStore implements store.OrganizationStore using in-memory
// storage. ListByMember joins against the membership store.
type OrganizationStore struct {
	mu sync.RWMutex

	organizations map[uuid.UUID]*models.Organization
	memberships   *MembershipStore
}

// NewOrganizationStore creates a new in-memory organization store.
// memberships is consulted for the active-membership join in ListByMember.
func NewOrganizationStore(memberships *MembershipStore) *OrganizationStore {
	return &OrganizationStore{
		organizations: make(map[uuid.UUID]*models.Organization),
		memberships:   memberships,
	}
}

// Insert creates a new organization in memory.
func (s *OrganizationStore) Insert(ctx context.Context, op *models.OperationContext, org *models.Organization) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.organizations[org.ID]; exists {
		return store.ErrOrganizationNotFound
	}
	s.organizations[org.ID] = cloneOrganization(org)
	return nil
}

// Update updates an existing organization.
func (s *OrganizationStore) Update(ctx context.Context, op *models.OperationContext, org *models.Organization) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.organizations[org.ID]; !exists {
		return store.ErrOrganizationNotFound
	}
	s.organizations[org.ID] = cloneOrganization(org)
	return nil
}

// Delete removes an organization record.
func (s *OrganizationStore) Delete(ctx context.Context, op *models.OperationContext, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.organizations[id]; !exists {
		return store.ErrOrganizationNotFound
	}
	delete(s.organizations, id)
	return nil
}

// FindByID retrieves an organization by ID, including soft-deleted records.
func (s *OrganizationStore) FindByID(ctx context.Context, id uuid.UUID) (*models.Organization, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	org, exists := s.organizations[id]
	if !exists {
		return nil, store.ErrOrganizationNotFound
	}
	return cloneOrganization(org), nil
}

// ListByMember returns live organizations where the user holds an active
// membership, newest first.
func (s *OrganizationStore) ListByMember(ctx context.Context, userID uuid.UUID) ([]*models.Organization, error) {
	orgIDs := s.memberships.activeOrganizationIDs(userID)

	s.mu.RLock()
	defer s.mu.RUnlock()

	var orgs []*models.Organization
	for _, orgID := range orgIDs {
		org, exists := s.organizations[orgID]
		if !exists || org.IsDeleted() {
			continue
		}
		orgs = append(orgs, cloneOrganization(org))
	}

	sort.Slice(orgs, func(i, j int) bool {
		return orgs[i].CreatedAt.After(orgs[j].CreatedAt)
	})
	return orgs, nil
}

// Snapshot captures the store's state for transactional rollback.
func (s *OrganizationStore) Snapshot() any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := make(map[uuid.UUID]*models.Organization, len(s.organizations))
	for id, org := range s.organizations {
		snap[id] = cloneOrganization(org)
	}
	return snap
}

// Restore replaces the store's state with a snapshot taken earlier.
func (s *OrganizationStore) Restore(snapshot any) {
	snap, ok := snapshot.(map[uuid.UUID]*models.Organization)
	if !ok {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.organizations = snap
}

func cloneOrganization(o *models.Organization) *models.Organization {
	clone := *o
	clone.Custom = maps.Clone(o.Custom)
	return &clone
}
