package domain

// WorkflowContext is the single mutable snapshot of a workflow execution.
// It is exclusively owned by one machine: created at construction, mutated
// on each accepted transition, and discarded with the machine.
//
// Hooks and declared actions receive the live context. Mutating it from a
// non-blocking hook races against the machine's own mutation and is the
// caller's responsibility to avoid.
type WorkflowContext struct {
	// Current is the identifier of the active state.
	Current string `json:"current"`

	// Payload holds arbitrary structured session data.
	Payload map[string]any `json:"payload,omitempty"`
}

// NewWorkflowContext creates a clean context positioned at initial.
func NewWorkflowContext(initial string) *WorkflowContext {
	return &WorkflowContext{
		Current: initial,
		Payload: make(map[string]any),
	}
}

// Snapshot returns a shallow-copied view of the context. The payload map
// is copied one level deep so callers cannot mutate the live map by key.
func (c *WorkflowContext) Snapshot() WorkflowContext {
	snap := WorkflowContext{Current: c.Current}
	if c.Payload != nil {
		snap.Payload = make(map[string]any, len(c.Payload))
		for k, v := range c.Payload {
			snap.Payload[k] = v
		}
	}
	return snap
}
