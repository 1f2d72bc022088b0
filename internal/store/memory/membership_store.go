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

// MembershipStore implements store.MembershipStore using in-memory storage.
// It enforces the same uniqueness invariants the postgres adapter enforces
// with partial unique indexes: one live membership per (user, organization)
// pair and one live owner per organization.
type MembershipStore struct {
	mu sync.RWMutex

	memberships map[uuid.UUID]*models.Membership
	users       *UserStore
}

// NewMembershipStore creates a new in-memory membership store.
// users is consulted for the user join in ListByOrganization.
func NewMembershipStore(users *UserStore) *MembershipStore {
	return &MembershipStore{
		memberships: make(map[uuid.UUID]*models.Membership),
		users:       users,
	}
}

// live reports whether a membership still occupies its (user, org) slot:
// soft-deleted and departed memberships free the slot, pending ones hold it.
func live(m *models.Membership) bool {
	return m.LeftAt == nil && m.DeletedAt == nil
}

// Insert creates a membership, enforcing pair and owner uniqueness.
func (s *MembershipStore) Insert(ctx context.Context, op *models.OperationContext, m *models.Membership) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.memberships[m.ID]; exists {
		return store.ErrMembershipAlreadyExists
	}
	if live(m) {
		for _, existing := range s.memberships {
			if !live(existing) {
				continue
			}
			if existing.UserID == m.UserID && existing.OrganizationID == m.OrganizationID {
				return store.ErrMembershipAlreadyExists
			}
			if m.Role == models.RoleOwner && existing.Role == models.RoleOwner &&
				existing.OrganizationID == m.OrganizationID {
				return store.ErrOwnerAlreadyExists
			}
		}
	}

	s.memberships[m.ID] = cloneMembership(m)
	return nil
}

// Update updates an existing membership, re-checking the owner invariant
// when the update promotes a member to owner.
func (s *MembershipStore) Update(ctx context.Context, op *models.OperationContext, m *models.Membership) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.memberships[m.ID]; !exists {
		return store.ErrMembershipNotFound
	}
	if live(m) && m.Role == models.RoleOwner {
		for id, existing := range s.memberships {
			if id == m.ID || !live(existing) {
				continue
			}
			if existing.Role == models.RoleOwner && existing.OrganizationID == m.OrganizationID {
				return store.ErrOwnerAlreadyExists
			}
		}
	}

	s.memberships[m.ID] = cloneMembership(m)
	return nil
}

// Delete removes a membership record.
func (s *MembershipStore) Delete(ctx context.Context, op *models.OperationContext, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.memberships[id]; !exists {
		return store.ErrMembershipNotFound
	}
	delete(s.memberships, id)
	return nil
}

// FindByID retrieves a membership by ID.
func (s *MembershipStore) FindByID(ctx context.Context, id uuid.UUID) (*models.Membership, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	m, exists := s.memberships[id]
	if !exists {
		return nil, store.ErrMembershipNotFound
	}
	return cloneMembership(m), nil
}

// FindActive returns the active membership for the pair.
func (s *MembershipStore) FindActive(ctx context.Context, userID, orgID uuid.UUID) (*models.Membership, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, m := range s.memberships {
		if m.UserID == userID && m.OrganizationID == orgID && m.IsActive() {
			return cloneMembership(m), nil
		}
	}
	return nil, store.ErrMembershipNotFound
}

// FindPending returns the pending invitation for the pair.
func (s *MembershipStore) FindPending(ctx context.Context, userID, orgID uuid.UUID) (*models.Membership, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, m := range s.memberships {
		if m.UserID == userID && m.OrganizationID == orgID && m.IsPending() {
			return cloneMembership(m), nil
		}
	}
	return nil, store.ErrMembershipNotFound
}

// FindOwner returns the organization's active owner membership.
func (s *MembershipStore) FindOwner(ctx context.Context, orgID uuid.UUID) (*models.Membership, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, m := range s.memberships {
		if m.OrganizationID == orgID && m.Role == models.RoleOwner && m.IsActive() {
			return cloneMembership(m), nil
		}
	}
	return nil, store.ErrMembershipNotFound
}

// ListByOrganization returns memberships joined with user records,
// paginated, ordered by creation time.
func (s *MembershipStore) ListByOrganization(ctx context.Context, orgID uuid.UUID, page store.Page) (*store.MemberPage, error) {
	page = page.Normalize()

	s.mu.RLock()
	var matched []*models.Membership
	for _, m := range s.memberships {
		if m.OrganizationID != orgID || m.DeletedAt != nil {
			continue
		}
		if !page.IncludeInactive && !m.IsActive() {
			continue
		}
		matched = append(matched, cloneMembership(m))
	}
	s.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.Before(matched[j].CreatedAt)
	})

	total := len(matched)
	start := (page.Number - 1) * page.Size
	if start > total {
		start = total
	}
	end := start + page.Size
	if end > total {
		end = total
	}

	items := make([]*models.MemberDetail, 0, end-start)
	for _, m := range matched[start:end] {
		detail := &models.MemberDetail{Membership: m}
		if user, err := s.users.FindByID(ctx, m.UserID); err == nil {
			detail.Username = user.Username
		}
		items = append(items, detail)
	}

	return &store.MemberPage{
		Items:      items,
		Total:      total,
		Page:       page.Number,
		PageSize:   page.Size,
		TotalPages: page.TotalPages(total),
	}, nil
}

// activeOrganizationIDs supports the organization store's member join.
func (s *MembershipStore) activeOrganizationIDs(userID uuid.UUID) []uuid.UUID {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var ids []uuid.UUID
	for _, m := range s.memberships {
		if m.UserID == userID && m.IsActive() {
			ids = append(ids, m.OrganizationID)
		}
	}
	return ids
}

// Snapshot captures the store's state for transactional rollback.
func (s *MembershipStore) Snapshot() any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := make(map[uuid.UUID]*models.Membership, len(s.memberships))
	for id, m := range s.memberships {
		snap[id] = cloneMembership(m)
	}
	return snap
}

// Restore replaces the store's state with a snapshot taken earlier.
func (s *MembershipStore) Restore(snapshot any) {
	snap, ok := snapshot.(map[uuid.UUID]*models.Membership)
	if !ok {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.memberships = snap
}

func cloneMembership(m *models.Membership) *models.Membership {
	clone := *m
	clone.Custom = maps.Clone(m.Custom)
	return &clone
}
