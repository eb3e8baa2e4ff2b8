package pergola

import (
	"context"
	"log/slog"

	"github.com/alitto/pond/v2"

	"github.com/aretw0/pergola/internal/logging"
	"github.com/aretw0/pergola/internal/runtime"
	"github.com/aretw0/pergola/pkg/domain"
	"github.com/aretw0/pergola/pkg/observability"
	"github.com/aretw0/pergola/pkg/registry"
)

// Version is the library version, stamped at release time.
var Version = "0.3.0"

const defaultDetachedWorkers = 8

// Machine is the high-level entry point for the Pergola library. It
// wraps the internal runtime and provides a simplified API for hosts.
type Machine struct {
	engine *runtime.Engine
	pool   pond.Pool
	logger *slog.Logger

	// staging fields, consumed by New
	initialContext *domain.WorkflowContext
	hooks          []domain.PluginDescriptor
	bindings       map[string]domain.ActionFunc
	diagnostics    runtime.Diagnostics
	metrics        *observability.Metrics
	workers        int
}

// Option defines a functional option for configuring the Machine.
type Option func(*Machine)

// WithInitialContext seeds the machine with a persisted context. Its
// current state takes precedence over the definition's declared initial
// state. The machine takes exclusive ownership of the value.
func WithInitialContext(wctx *domain.WorkflowContext) Option {
	return func(m *Machine) {
		m.initialContext = wctx
	}
}

// WithHooks registers the state-scoped extension hooks. Scopes are
// validated against the definition during New; a stale state reference
// fails construction entirely.
func WithHooks(hooks ...domain.PluginDescriptor) Option {
	return func(m *Machine) {
		m.hooks = append(m.hooks, hooks...)
	}
}

// WithActionBindings maps declared-action names from the transition
// table to callables.
func WithActionBindings(bindings map[string]domain.ActionFunc) Option {
	return func(m *Machine) {
		m.bindings = bindings
	}
}

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Machine) {
		m.logger = logger
	}
}

// WithDiagnostics installs a side channel for suppressed non-blocking
// hook failures. It never changes the subscriber-visible event contract.
func WithDiagnostics(diag runtime.Diagnostics) Option {
	return func(m *Machine) {
		m.diagnostics = diag
	}
}

// WithMetrics wires Prometheus instrumentation.
func WithMetrics(metrics *observability.Metrics) Option {
	return func(m *Machine) {
		m.metrics = metrics
	}
}

// WithDetachedWorkers sizes the worker pool that runs non-blocking
// hooks (default 8).
func WithDetachedWorkers(n int) Option {
	return func(m *Machine) {
		if n > 0 {
			m.workers = n
		}
	}
}

// New builds a machine from an already-resolved transition table.
//
// It validates the definition (initial state and every transition target
// must exist) and every hook scope. A bad state reference is the single
// fatal failure mode of the runtime and is returned here, before any
// event can be processed, as a *domain.ConfigurationError.
func New(def domain.Definition, opts ...Option) (*Machine, error) {
	m := &Machine{workers: defaultDetachedWorkers}

	for _, opt := range opts {
		opt(m)
	}

	if m.logger == nil {
		m.logger = logging.NewNop()
	}

	table, err := runtime.Resolve(def)
	if err != nil {
		return nil, err
	}

	reg, err := registry.New(def, m.hooks)
	if err != nil {
		return nil, err
	}

	m.pool = pond.NewPool(m.workers)

	notifier := runtime.NewNotifier()
	executor := runtime.NewExecutor(m.pool, notifier, m.logger, m.diagnostics, m.metrics)

	m.engine = runtime.NewEngine(table, reg, executor, notifier,
		runtime.WithLogger(m.logger),
		runtime.WithContext(m.initialContext),
		runtime.WithActionBindings(m.bindings),
	)

	return m, nil
}

// Subscribe installs the sole observer for domain events. It replaces
// the current observer atomically; only the most recently subscribed
// callback receives subsequent events. Without a subscriber events are
// dropped, not buffered.
func (m *Machine) Subscribe(fn domain.Observer) {
	m.engine.Subscribe(fn)
}

// SendEvent submits one inbound event and returns after the transition
// and all blocking hooks have settled. It never fails because of hook
// errors; those surface as domain events or are suppressed per policy.
//
// Callers must serialize SendEvent calls on one machine.
func (m *Machine) SendEvent(ctx context.Context, ev domain.InboundEvent) error {
	return m.engine.SendEvent(ctx, ev)
}

// State returns the current state identifier.
func (m *Machine) State() string {
	return m.engine.State()
}

// Context returns a snapshot of the workflow context.
func (m *Machine) Context() domain.WorkflowContext {
	return m.engine.Context()
}

// Close stops the detached worker pool, waiting for in-flight
// non-blocking hooks to finish. The machine must not be used afterwards.
func (m *Machine) Close() {
	m.pool.StopAndWait()
}
