package usecase

import (
	"time"

	"github.com/google/uuid"
)

// Clock supplies timestamps, replaceable in tests.
type Clock interface {
	Now() time.Time
}

// IDGenerator supplies unique identifiers.
type IDGenerator interface {
	NewID() uuid.UUID
}

// Metrics receives operation counters and timings. Implementations must be
// safe for concurrent use; a nil Metrics in the config is replaced with a
// no-op so absence never affects correctness.
type Metrics interface {
	OperationStarted(operation string)
	OperationFinished(operation string, outcome string, elapsed time.Duration)
}

// SystemClock is the default Clock, returning UTC wall time.
type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now().UTC()
}

// UUIDGenerator is the default IDGenerator, producing UUIDv7 identifiers
// so ids sort by creation time.
type UUIDGenerator struct{}

func (UUIDGenerator) NewID() uuid.UUID {
	id, err := uuid.NewV7()
	if err != nil {
		// NewV7 only fails when the entropy source does; fall back to v4.
		return uuid.New()
	}
	return id
}

type nopMetrics struct{}

func (nopMetrics) OperationStarted(string)                        {}
func (nopMetrics) OperationFinished(string, string, time.Duration) {}
