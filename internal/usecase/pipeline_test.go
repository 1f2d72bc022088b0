package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/wolfeidau/tenantd/internal/models"
)

func TestPipelineHookOrdering(t *testing.T) {
	var order []string
	record := func(point string) HookFunc {
		return func(s *Scope) error {
			order = append(order, point)
			return nil
		}
	}

	metrics := &recorderMetrics{}
	svc, _ := newTestService(t, Config{
		Metrics: metrics,
		Hooks: map[string]Hooks{
			OpCreateUser: {
				OnStart:         []HookFunc{record("start.1"), record("start.2")},
				AfterValidation: []HookFunc{record("validated")},
				BeforeExecution: []HookFunc{record("pre")},
				AfterExecution:  []HookFunc{record("post")},
				OnError:         []HookFunc{record("error")},
				OnAbort:         []HookFunc{record("abort")},
				OnFinally:       []HookFunc{record("finally")},
			},
		},
	})

	out, err := svc.CreateUser(context.Background(), map[string]any{"username": "alice"}, actorContext("ext|alice"))
	require.NoError(t, err)
	require.Equal(t, "alice", out.Username)

	require.Equal(t, []string{"start.1", "start.2", "validated", "pre", "post", "finally"}, order)
	require.Equal(t, []string{OpCreateUser}, metrics.started)
	require.Equal(t, []string{OpCreateUser + "/" + OutcomeCompleted}, metrics.finished)
}

func TestPipelineScopeSharedAcrossHooks(t *testing.T) {
	svc, _ := newTestService(t, Config{
		Hooks: map[string]Hooks{
			OpCreateUser: {
				OnStart: []HookFunc{func(s *Scope) error {
					s.Values["seen"] = s.Operation
					return nil
				}},
				AfterExecution: []HookFunc{func(s *Scope) error {
					if s.Values["seen"] != OpCreateUser {
						return errors.New("scope values not shared")
					}
					out := s.Output.(*UserOutput)
					out.Username = out.Username + "-decorated"
					return nil
				}},
			},
		},
	})

	out, err := svc.CreateUser(context.Background(), map[string]any{"username": "alice"}, actorContext("ext|alice"))
	require.NoError(t, err)
	require.Equal(t, "alice-decorated", out.Username)
}

func TestPipelineAbort(t *testing.T) {
	t.Run("abort with result short-circuits execution", func(t *testing.T) {
		canned := &UserOutput{Username: "cached"}
		var abortRan, finallyRan bool

		metrics := &recorderMetrics{}
		svc, repos := newTestService(t, Config{
			Metrics: metrics,
			Hooks: map[string]Hooks{
				OpCreateUser: {
					OnStart: []HookFunc{func(s *Scope) error {
						return Abort(canned)
					}},
					OnAbort:   []HookFunc{func(s *Scope) error { abortRan = true; return nil }},
					OnFinally: []HookFunc{func(s *Scope) error { finallyRan = true; return nil }},
				},
			},
		})

		out, err := svc.CreateUser(context.Background(), map[string]any{"username": "alice"}, actorContext("ext|alice"))
		require.NoError(t, err)
		require.Equal(t, "cached", out.Username)
		require.True(t, abortRan)
		require.True(t, finallyRan)

		// execution never ran, nothing was persisted
		_, err = repos.Users.FindByExternalID(context.Background(), "ext|alice")
		require.Error(t, err)
		require.Equal(t, []string{OpCreateUser + "/" + OutcomeAborted}, metrics.finished)
	})

	t.Run("abort without result surfaces AbortedError", func(t *testing.T) {
		svc, _ := newTestService(t, Config{
			Hooks: map[string]Hooks{
				OpCreateUser: {
					AfterValidation: []HookFunc{func(s *Scope) error { return Abort(nil) }},
				},
			},
		})

		_, err := svc.CreateUser(context.Background(), map[string]any{"username": "alice"}, actorContext("ext|alice"))
		var aborted *models.AbortedError
		require.ErrorAs(t, err, &aborted)
	})
}

func TestPipelineErrorPath(t *testing.T) {
	t.Run("validation failure runs onError and onFinally", func(t *testing.T) {
		var errorRan bool
		var finallyCount int

		metrics := &recorderMetrics{}
		svc, _ := newTestService(t, Config{
			Metrics: metrics,
			Hooks: map[string]Hooks{
				OpCreateUser: {
					OnError:   []HookFunc{func(s *Scope) error { errorRan = true; return nil }},
					OnFinally: []HookFunc{func(s *Scope) error { finallyCount++; return nil }},
				},
			},
		})

		_, err := svc.CreateUser(context.Background(), map[string]any{"username": "x"}, actorContext("ext|alice"))
		var verr *models.ValidationError
		require.ErrorAs(t, err, &verr)
		require.True(t, errorRan)
		require.Equal(t, 1, finallyCount)
		require.Equal(t, []string{OpCreateUser + "/" + OutcomeFailed}, metrics.finished)
	})

	t.Run("onError hook can recover with a fallback output", func(t *testing.T) {
		fallback := &UserOutput{Username: "fallback"}
		metrics := &recorderMetrics{}
		svc, _ := newTestService(t, Config{
			Metrics: metrics,
			Hooks: map[string]Hooks{
				OpGetSelf: {
					OnError: []HookFunc{func(s *Scope) error {
						s.Err = nil
						s.Output = fallback
						return nil
					}},
				},
			},
		})

		// no user registered, GetSelf would fail with NotFoundError
		out, err := svc.GetSelf(context.Background(), map[string]any{}, actorContext("ext|ghost"))
		require.NoError(t, err)
		require.Equal(t, "fallback", out.Username)
		require.Equal(t, []string{OpGetSelf + "/" + OutcomeCompleted}, metrics.finished)
	})

	t.Run("failing onFinally hook cannot change the outcome", func(t *testing.T) {
		svc, _ := newTestService(t, Config{
			Hooks: map[string]Hooks{
				OpCreateUser: {
					OnFinally: []HookFunc{func(s *Scope) error { return errors.New("finally blew up") }},
				},
			},
		})

		out, err := svc.CreateUser(context.Background(), map[string]any{"username": "alice"}, actorContext("ext|alice"))
		require.NoError(t, err)
		require.Equal(t, "alice", out.Username)
	})
}

func TestPipelineHooksForUnknownOperationRejected(t *testing.T) {
	_, err := New(nil, Config{
		Hooks: map[string]Hooks{"user.frobnicate": {}},
	})
	require.Error(t, err)
	require.Contains(t, err.Error(), "user.frobnicate")
}

func TestPipelineDefaultsOperationContext(t *testing.T) {
	svc, _ := newTestService(t, Config{})

	// nil context falls back to the anonymous principal, which every
	// operation rejects
	_, err := svc.GetSelf(context.Background(), map[string]any{}, nil)
	var forbidden *models.ForbiddenError
	require.ErrorAs(t, err, &forbidden)
}
