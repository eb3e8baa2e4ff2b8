package runtime

import "github.com/aretw0/pergola/pkg/domain"

// Table is the validated, indexed view of a definition. It is read-only
// for its whole lifetime and shared by reference with the engine.
type Table struct {
	def domain.Definition
}

// Resolve validates def and wraps it for lookup. The only possible
// failure is a *domain.ConfigurationError naming the first invalid state
// reference found.
func Resolve(def domain.Definition) (*Table, error) {
	if err := def.Validate(); err != nil {
		return nil, err
	}
	return &Table{def: def}, nil
}

// Initial returns the definition's declared initial state.
func (t *Table) Initial() string {
	return t.def.Initial
}

// Lookup resolves (state, eventType) to a transition. The second return
// is false when the current state has no rule for the event type; that
// is a silent no-op for the engine, not an error.
func (t *Table) Lookup(state, eventType string) (domain.Transition, bool) {
	tr, ok := t.def.States[state][eventType]
	return tr, ok
}
