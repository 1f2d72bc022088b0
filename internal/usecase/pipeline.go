package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/wolfeidau/tenantd/internal/models"
	"github.com/wolfeidau/tenantd/internal/schema"
)

// Pipeline outcomes. Exactly one is reached per invocation before the
// OnFinally hooks run.
const (
	OutcomeCompleted = "completed"
	OutcomeAborted   = "aborted"
	OutcomeFailed    = "failed"
)

// Scope is the shared mutable context handed to every hook of one
// invocation. Later hooks observe mutations made by earlier ones.
type Scope struct {
	Context   context.Context
	Op        *models.OperationContext
	Operation string

	// Input is the validated input. BeforeExecution hooks may replace it
	// with a value of the same type to inject defaults.
	Input any

	// Output is the operation result. AfterExecution hooks may transform
	// it; OnError hooks may set it as a fallback while clearing Err.
	Output any

	// Err is the pipeline error on the failure path. An OnError hook that
	// sets it to nil recovers the invocation.
	Err error

	// Values is scratch space shared across hook points.
	Values map[string]any
}

// HookFunc is one lifecycle callback. Hooks within a lifecycle point run
// strictly sequentially in registration order.
type HookFunc func(s *Scope) error

// Hooks holds the callbacks for the seven lifecycle points of one use case.
type Hooks struct {
	OnStart         []HookFunc
	AfterValidation []HookFunc
	BeforeExecution []HookFunc
	AfterExecution  []HookFunc
	OnError         []HookFunc
	OnAbort         []HookFunc
	OnFinally       []HookFunc
}

// Abort builds the short-circuit signal for OnStart, AfterValidation and
// BeforeExecution hooks. A non-nil result is returned to the caller in
// place of the operation's output.
func Abort(result any) error {
	return &models.AbortedError{Result: result}
}

// operation pairs an input schema and binder with the use case's domain
// logic. The pipeline around it is identical for every operation.
type operation[In, Out any] struct {
	name      string
	validator *schema.Merged
	bind      func(fields map[string]any) (In, error)
	execute   func(ctx context.Context, op *models.OperationContext, in In) (Out, error)
}

// run drives one invocation through the lifecycle:
//
//	Created -> Started -> Validated -> PreExecution -> Executed
//	        -> (Completed | Aborted | Failed) -> Finalized
//
// The unit-of-work transaction opens and closes entirely inside execute,
// so hooks never observe an open transaction.
func run[In, Out any](s *Service, ctx context.Context, op *operation[In, Out], raw map[string]any, octx *models.OperationContext) (out Out, err error) {
	if octx == nil {
		octx = &models.OperationContext{
			RequestID: s.ids.NewID().String(),
			Actor:     models.AnonymousPrincipal(),
			Timestamp: s.clock.Now(),
		}
	}

	scope := &Scope{
		Context:   ctx,
		Op:        octx,
		Operation: op.name,
		Values:    make(map[string]any),
	}
	hooks := s.hooks[op.name]

	started := s.clock.Now()
	s.metrics.OperationStarted(op.name)
	log.Debug().Str("operation", op.name).Str("request_id", octx.RequestID).Msg("operation started")

	outcome := OutcomeFailed
	defer func() {
		// Finalized: runs exactly once on every path, cannot change the
		// outcome. Hook errors are logged and dropped.
		for _, h := range hooks.OnFinally {
			if herr := h(scope); herr != nil {
				log.Warn().Err(herr).Str("operation", op.name).Msg("onFinally hook failed")
			}
		}
		elapsed := s.clock.Now().Sub(started)
		s.metrics.OperationFinished(op.name, outcome, elapsed)
		if err != nil {
			log.Debug().Err(err).Str("operation", op.name).Str("request_id", octx.RequestID).
				Str("outcome", outcome).Dur("elapsed", elapsed).Msg("operation finished")
		}
	}()

	abort := func(aborted *models.AbortedError) (Out, error) {
		outcome = OutcomeAborted
		for _, h := range hooks.OnAbort {
			if herr := h(scope); herr != nil {
				log.Warn().Err(herr).Str("operation", op.name).Msg("onAbort hook failed")
			}
		}
		var zero Out
		if aborted.Result != nil {
			if result, ok := aborted.Result.(Out); ok {
				return result, nil
			}
		}
		return zero, aborted
	}

	// fail runs the OnError hooks, which may recover by clearing
	// Scope.Err and supplying a fallback Output.
	fail := func(cause error) (Out, error) {
		scope.Err = cause
		for _, h := range hooks.OnError {
			if herr := h(scope); herr != nil {
				scope.Err = herr
			}
		}
		var zero Out
		if scope.Err == nil {
			outcome = OutcomeCompleted
			if result, ok := scope.Output.(Out); ok {
				return result, nil
			}
			return zero, nil
		}
		return zero, scope.Err
	}

	// Started
	for _, h := range hooks.OnStart {
		if herr := h(scope); herr != nil {
			var aborted *models.AbortedError
			if errors.As(herr, &aborted) {
				return abort(aborted)
			}
			return fail(herr)
		}
	}

	// Validated
	fields := raw
	if op.validator != nil {
		validated, verr := op.validator.Validate(raw)
		if verr != nil {
			return fail(verr)
		}
		fields = validated
	}
	in, berr := op.bind(fields)
	if berr != nil {
		return fail(berr)
	}
	scope.Input = in

	for _, h := range hooks.AfterValidation {
		if herr := h(scope); herr != nil {
			var aborted *models.AbortedError
			if errors.As(herr, &aborted) {
				return abort(aborted)
			}
			return fail(herr)
		}
	}

	// PreExecution: hooks may replace Scope.Input before execution.
	for _, h := range hooks.BeforeExecution {
		if herr := h(scope); herr != nil {
			var aborted *models.AbortedError
			if errors.As(herr, &aborted) {
				return abort(aborted)
			}
			return fail(herr)
		}
	}
	in, ok := scope.Input.(In)
	if !ok {
		return fail(fmt.Errorf("beforeExecution hook replaced input with %T", scope.Input))
	}

	// Executed
	result, eerr := op.execute(ctx, octx, in)
	if eerr != nil {
		return fail(eerr)
	}
	scope.Output = result

	for _, h := range hooks.AfterExecution {
		if herr := h(scope); herr != nil {
			return fail(herr)
		}
	}
	result, ok = scope.Output.(Out)
	if !ok {
		return fail(fmt.Errorf("afterExecution hook replaced output with %T", scope.Output))
	}

	outcome = OutcomeCompleted
	return result, nil
}
