package domain

import "context"

// Phase positions a hook relative to a transition.
type Phase string

const (
	// PhasePre runs before the transition, scoped to the departing state.
	PhasePre Phase = "pre"

	// PhasePost runs after the transition, scoped to the entered state.
	PhasePost Phase = "post"
)

// Valid reports whether p is a known phase.
func (p Phase) Valid() bool {
	return p == PhasePre || p == PhasePost
}

// HookFunc is the single capability type every hook action satisfies.
// An action that completes asynchronously simply blocks until done; the
// engine branches only on the descriptor's Blocking flag, never on how
// the action is implemented.
type HookFunc func(ctx context.Context, wctx *WorkflowContext) error

// ActionFunc is a declared transition action binding, resolved by name
// from the transition table and invoked synchronously by the machine.
type ActionFunc func(ctx context.Context, wctx *WorkflowContext) error

// PluginDescriptor declares a state- and phase-scoped hook.
type PluginDescriptor struct {
	// Name identifies the hook in ActionStatus events. Unique per registry.
	Name string

	// Phase selects pre or post execution.
	Phase Phase

	// States scopes the hook to a non-empty set of state identifiers.
	// Every identifier must exist in the definition; a stale reference
	// fails registry construction.
	States []string

	// Blocking selects the execution policy. Blocking hooks run strictly
	// sequentially with status tracking; non-blocking hooks are launched
	// detached, untracked, their failures suppressed.
	Blocking bool

	// Action is the hook body.
	Action HookFunc
}
