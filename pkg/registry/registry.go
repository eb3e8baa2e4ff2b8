// Package registry indexes hook descriptors by phase and state and
// validates their scopes against a definition at construction time.
package registry

import (
	"fmt"

	"github.com/aretw0/pergola/pkg/domain"
)

// Registry holds validated hook descriptors indexed by (phase, state).
// It is immutable after construction; lookups are O(1) and the slice
// returned for a bucket preserves registration order.
type Registry struct {
	index map[domain.Phase]map[string][]domain.PluginDescriptor
}

// New validates descriptors against def and builds the index.
//
// Validation is all-or-nothing: the first problem found aborts
// construction and no partial registration survives. A scope referencing
// a state absent from def yields a *domain.ConfigurationError naming
// that state.
func New(def domain.Definition, descriptors []domain.PluginDescriptor) (*Registry, error) {
	r := &Registry{
		index: map[domain.Phase]map[string][]domain.PluginDescriptor{
			domain.PhasePre:  make(map[string][]domain.PluginDescriptor),
			domain.PhasePost: make(map[string][]domain.PluginDescriptor),
		},
	}

	seen := make(map[string]struct{}, len(descriptors))
	for _, desc := range descriptors {
		if desc.Name == "" {
			return nil, fmt.Errorf("hook with empty name")
		}
		if _, dup := seen[desc.Name]; dup {
			return nil, fmt.Errorf("duplicate hook name %q", desc.Name)
		}
		seen[desc.Name] = struct{}{}

		if !desc.Phase.Valid() {
			return nil, fmt.Errorf("hook %q: invalid phase %q", desc.Name, desc.Phase)
		}
		if desc.Action == nil {
			return nil, fmt.Errorf("hook %q: nil action", desc.Name)
		}
		if len(desc.States) == 0 {
			return nil, fmt.Errorf("hook %q: empty state scope", desc.Name)
		}
		for _, state := range desc.States {
			if !def.HasState(state) {
				return nil, &domain.ConfigurationError{
					Reference: state,
					Context:   fmt.Sprintf("hook %q scope", desc.Name),
				}
			}
			r.index[desc.Phase][state] = append(r.index[desc.Phase][state], desc)
		}
	}

	return r, nil
}

// Scoped returns the hooks registered for (phase, state) in registration
// order. The returned slice must not be mutated.
func (r *Registry) Scoped(phase domain.Phase, state string) []domain.PluginDescriptor {
	return r.index[phase][state]
}
