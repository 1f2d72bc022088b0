package usecase

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/wolfeidau/tenantd/internal/models"
	"github.com/wolfeidau/tenantd/internal/store"
	"github.com/wolfeidau/tenantd/internal/store/memory"
)

// recorderMetrics captures operation metrics for assertions.
type recorderMetrics struct {
	mu       sync.Mutex
	started  []string
	finished []string // "operation/outcome"
}

func (m *recorderMetrics) OperationStarted(op string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.started = append(m.started, op)
}

func (m *recorderMetrics) OperationFinished(op string, outcome string, _ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.finished = append(m.finished, op+"/"+outcome)
}

func newTestService(t *testing.T, cfg Config) (*Service, *store.Repositories) {
	t.Helper()
	repos, uow := memory.NewStores()
	svc, err := New(uow, cfg)
	require.NoError(t, err)
	return svc, repos
}

func actorContext(externalID string) *models.OperationContext {
	return &models.OperationContext{
		RequestID: uuid.NewString(),
		Actor:     models.Principal{ExternalID: externalID},
		Timestamp: time.Now().UTC(),
	}
}

func anonymousContext() *models.OperationContext {
	return &models.OperationContext{
		RequestID: uuid.NewString(),
		Actor:     models.AnonymousPrincipal(),
		Timestamp: time.Now().UTC(),
	}
}

func registerUser(t *testing.T, svc *Service, externalID, username string) *UserOutput {
	t.Helper()
	out, err := svc.CreateUser(context.Background(), map[string]any{"username": username}, actorContext(externalID))
	require.NoError(t, err)
	return out
}

func createTestOrganization(t *testing.T, svc *Service, externalID, name string) *OrganizationOutput {
	t.Helper()
	out, err := svc.CreateOrganization(context.Background(), map[string]any{"name": name}, actorContext(externalID))
	require.NoError(t, err)
	return out
}

func mustUUID(t *testing.T, s string) uuid.UUID {
	t.Helper()
	id, err := uuid.Parse(s)
	require.NoError(t, err)
	return id
}

func pageAll() store.Page {
	return store.Page{Number: 1, Size: store.MaxPageSize}
}

// addActiveMember invites userID into orgID and accepts the invitation,
// leaving an active membership with the given role.
func addActiveMember(t *testing.T, svc *Service, ownerExternalID, memberExternalID, orgID, userID, role string) {
	t.Helper()
	ctx := context.Background()

	_, err := svc.AddMember(ctx, map[string]any{
		"organizationId": orgID,
		"userId":         userID,
		"role":           role,
	}, actorContext(ownerExternalID))
	require.NoError(t, err)

	_, err = svc.AcceptInvitation(ctx, map[string]any{"organizationId": orgID}, actorContext(memberExternalID))
	require.NoError(t, err)
}
