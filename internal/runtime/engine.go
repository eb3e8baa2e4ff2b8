package runtime

import (
	"context"
	"log/slog"

	"github.com/aretw0/pergola/internal/logging"
	"github.com/aretw0/pergola/pkg/domain"
	"github.com/aretw0/pergola/pkg/registry"
)

// Engine is the automaton core. It exclusively owns one WorkflowContext
// and advances it in response to inbound events, one event to completion
// at a time. Callers must not overlap SendEvent invocations on the same
// engine; no internal queue or lock serializes them.
type Engine struct {
	table    *Table
	registry *registry.Registry
	executor *Executor
	notifier *Notifier
	wctx     *domain.WorkflowContext
	bindings map[string]domain.ActionFunc
	logger   *slog.Logger
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithContext seeds the engine with a caller-supplied (persisted)
// context, overriding the definition's declared initial state.
func WithContext(wctx *domain.WorkflowContext) EngineOption {
	return func(e *Engine) {
		if wctx != nil {
			e.wctx = wctx
		}
	}
}

// WithActionBindings resolves declared-action names to callables.
func WithActionBindings(bindings map[string]domain.ActionFunc) EngineOption {
	return func(e *Engine) {
		e.bindings = bindings
	}
}

// NewEngine assembles the core around an already-resolved table and a
// validated registry.
func NewEngine(table *Table, reg *registry.Registry, executor *Executor, notifier *Notifier, opts ...EngineOption) *Engine {
	e := &Engine{
		table:    table,
		registry: reg,
		executor: executor,
		notifier: notifier,
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.wctx == nil {
		e.wctx = domain.NewWorkflowContext(table.Initial())
	}
	return e
}

// Subscribe installs the sole observer for domain events, replacing any
// previous one.
func (e *Engine) Subscribe(fn domain.Observer) {
	e.notifier.Subscribe(fn)
}

// State returns the current state identifier.
func (e *Engine) State() string {
	return e.wctx.Current
}

// Context returns a snapshot of the workflow context.
func (e *Engine) Context() domain.WorkflowContext {
	return e.wctx.Snapshot()
}

// SendEvent advances the machine by one inbound event.
//
// An event with no transition for the current state is a silent no-op.
// Otherwise the engine runs pre hooks on the departing state, applies
// the transition's declared actions in order, moves to the target state,
// runs post hooks on the entered state, and emits exactly one
// state-change event if and only if the state actually changed. A
// self-transition keeps the whole hook and action pipeline but
// suppresses the state-change notification.
//
// SendEvent returns only after all blocking hooks of both phases have
// settled; detached hooks are not awaited. It never returns an error for
// hook failures: those are converted into domain events or suppressed.
func (e *Engine) SendEvent(ctx context.Context, ev domain.InboundEvent) error {
	from := e.wctx.Current

	tr, ok := e.table.Lookup(from, ev.Type)
	if !ok {
		e.logger.Debug("unroutable event ignored", "state", from, "event", ev.Type)
		return nil
	}

	e.executor.Run(ctx, domain.PhasePre, from, e.wctx, e.registry.Scoped(domain.PhasePre, from))

	e.applyActions(ctx, tr.Actions)

	changed := tr.Target != from
	e.wctx.Current = tr.Target

	e.executor.Run(ctx, domain.PhasePost, tr.Target, e.wctx, e.registry.Scoped(domain.PhasePost, tr.Target))

	if changed {
		e.executor.metrics.ObserveTransition()
		e.logger.Debug("transition applied", "from", from, "to", tr.Target, "event", ev.Type)
		e.notifier.Publish(domain.Event{
			Type:    ev.Type,
			State:   tr.Target,
			Payload: ev.Payload,
		})
	}

	return nil
}

// applyActions invokes the transition's declared actions synchronously,
// in declared order. An unbound name is skipped; a failing action is
// contained, the same isolation hooks get.
func (e *Engine) applyActions(ctx context.Context, names []string) {
	for _, name := range names {
		fn, ok := e.bindings[name]
		if !ok {
			e.logger.Debug("declared action unbound, skipping", "action", name)
			continue
		}
		if err := invoke(ctx, domain.HookFunc(fn), e.wctx); err != nil {
			e.logger.Debug("declared action failed", "action", name, "err", err)
		}
	}
}
