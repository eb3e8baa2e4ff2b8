package runtime

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/alitto/pond/v2"

	"github.com/aretw0/pergola/pkg/domain"
	"github.com/aretw0/pergola/pkg/observability"
)

// Diagnostics is an optional side channel for failures that the event
// contract suppresses (non-blocking hook errors, detached panics). It
// must never feed back into the subscriber stream.
type Diagnostics func(state, hook string, err error)

// Executor runs the hooks scoped to a (phase, state) pair under the two
// execution policies. Blocking hooks run strictly sequentially with
// status events; non-blocking hooks are handed to a detached worker pool
// and never tracked.
type Executor struct {
	pool     pond.Pool
	notifier *Notifier
	logger   *slog.Logger
	diag     Diagnostics
	metrics  *observability.Metrics
}

// NewExecutor wires an executor. diag and metrics may be nil.
func NewExecutor(pool pond.Pool, notifier *Notifier, logger *slog.Logger, diag Diagnostics, metrics *observability.Metrics) *Executor {
	return &Executor{
		pool:     pool,
		notifier: notifier,
		logger:   logger,
		diag:     diag,
		metrics:  metrics,
	}
}

// Run executes hooks in registration order. Non-blocking hooks are
// dispatched immediately without suspending progression through the
// blocking sequence. Run returns once every blocking hook has settled;
// it never returns an error: hook failures are converted into domain
// events (blocking) or suppressed (non-blocking).
func (x *Executor) Run(ctx context.Context, phase domain.Phase, state string, wctx *domain.WorkflowContext, hooks []domain.PluginDescriptor) {
	for _, h := range hooks {
		if !h.Blocking {
			x.dispatch(ctx, phase, state, wctx, h)
			continue
		}
		x.runBlocking(ctx, phase, state, wctx, h)
	}
}

// runBlocking emits PENDING, awaits the action however long it takes,
// then emits SUCCESS or ERROR plus a standalone hook-error event. A
// failure never stops subsequent hooks or the enclosing transition.
func (x *Executor) runBlocking(ctx context.Context, phase domain.Phase, state string, wctx *domain.WorkflowContext, h domain.PluginDescriptor) {
	x.notifier.Publish(domain.Event{
		Type:    domain.EventActionStatus,
		State:   state,
		Payload: domain.ActionStatus{Status: domain.StatusPending, Action: h.Name},
	})

	err := invoke(ctx, h.Action, wctx)
	if err != nil {
		x.logger.Debug("blocking hook failed", "hook", h.Name, "state", state, "err", err)
		x.metrics.ObserveHook(string(phase), string(domain.StatusError))
		x.notifier.Publish(domain.Event{
			Type:    domain.EventActionStatus,
			State:   state,
			Payload: domain.ActionStatus{Status: domain.StatusError, Action: h.Name},
			Error:   err.Error(),
		})
		x.notifier.Publish(domain.Event{
			Type:  domain.EventHookError,
			State: state,
			Error: err.Error(),
		})
		return
	}

	x.metrics.ObserveHook(string(phase), string(domain.StatusSuccess))
	x.notifier.Publish(domain.Event{
		Type:    domain.EventActionStatus,
		State:   state,
		Payload: domain.ActionStatus{Status: domain.StatusSuccess, Action: h.Name},
	})
}

// dispatch launches a non-blocking hook on the pool. The task outlives
// the send call, so it keeps the context's values but not its
// cancellation. Failures and panics stop at the containment boundary
// here: they reach the diagnostic seam and nothing else.
func (x *Executor) dispatch(ctx context.Context, phase domain.Phase, state string, wctx *domain.WorkflowContext, h domain.PluginDescriptor) {
	detached := context.WithoutCancel(ctx)

	task := func() {
		if err := invoke(detached, h.Action, wctx); err != nil {
			x.suppress(phase, state, h.Name, err)
			return
		}
		x.metrics.ObserveHook(string(phase), string(domain.StatusSuccess))
	}

	if err := x.pool.Go(task); err != nil {
		// Pool already stopped; the hook never runs.
		x.suppress(phase, state, h.Name, err)
	}
}

func (x *Executor) suppress(phase domain.Phase, state, hook string, err error) {
	x.logger.Debug("non-blocking hook failure suppressed", "hook", hook, "state", state, "err", err)
	x.metrics.ObserveHook(string(phase), string(domain.StatusError))
	x.metrics.ObserveSuppressed()
	if x.diag != nil {
		x.diag(state, hook, err)
	}
}

// invoke calls a hook action with panic containment. A panicking action
// is reported as an ordinary failure so it can never abort the machine.
func invoke(ctx context.Context, action domain.HookFunc, wctx *domain.WorkflowContext) (err error) {
	defer func() {
		if r := recover(); r != nil {
			if e, ok := r.(error); ok {
				err = fmt.Errorf("hook panic: %w", e)
				return
			}
			err = fmt.Errorf("hook panic: %v", r)
		}
	}()
	return action(ctx, wctx)
}
