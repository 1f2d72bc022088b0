package models

import (
	"time"

	"github.com/google/uuid"
)

// Principal is the authenticated actor for a request. The "no credentials"
// state is represented by the anonymous principal, never by absence.
type Principal struct {
	UserID     uuid.UUID // Zero until the external subject has a user record
	ExternalID string    // Auth provider subject
	Anonymous  bool
}

// AnonymousPrincipal returns the well-known unauthenticated actor.
func AnonymousPrincipal() Principal {
	return Principal{Anonymous: true}
}

// IsAnonymous returns true for the unauthenticated sentinel.
func (p Principal) IsAnonymous() bool {
	return p.Anonymous
}

// OperationContext carries per-request metadata through the pipeline and
// repository calls for audit correlation. It is never persisted directly.
type OperationContext struct {
	RequestID string
	Actor     Principal
	Timestamp time.Time
	ClientIP  string
}
