package auth

import (
	"context"
	"net/http"

	"github.com/wolfeidau/tenantd/internal/models"
)

// Authenticator resolves the principal behind a request. Missing or
// invalid credentials resolve to the anonymous principal rather than an
// error; authorization decisions belong to the use case layer.
type Authenticator interface {
	Authenticate(ctx context.Context, r *http.Request) models.Principal
}

// AnonymousAuthenticator treats every request as unauthenticated. Used
// when no verifier is configured, typically in tests.
type AnonymousAuthenticator struct{}

func (AnonymousAuthenticator) Authenticate(_ context.Context, _ *http.Request) models.Principal {
	return models.AnonymousPrincipal()
}
