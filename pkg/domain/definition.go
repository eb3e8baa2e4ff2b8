package domain

import (
	"errors"
	"sort"
)

// Transition defines a rule to move from one state to another when an
// event of a given type arrives.
type Transition struct {
	// Target is the state the machine moves to.
	Target string `json:"target" yaml:"target" mapstructure:"target"`

	// Actions lists the names of declared actions to apply, in order,
	// when this transition fires. Names are resolved against the
	// machine's action bindings at execution time.
	Actions []string `json:"actions,omitempty" yaml:"actions,omitempty" mapstructure:"actions"`
}

// Definition is the resolved transition table that drives a machine.
// It maps state -> event type -> transition. The authoring format that
// produces it is external; the runtime consumes it as-is.
//
// A Definition is immutable after construction. It is referenced, not
// copied, by the runtime.
type Definition struct {
	// Initial is the state a machine starts in when the caller does not
	// supply a persisted context.
	Initial string `json:"initial" yaml:"initial" mapstructure:"initial"`

	// States holds the transition table.
	States map[string]map[string]Transition `json:"states" yaml:"states" mapstructure:"states"`
}

// HasState reports whether id is a known state key.
func (d Definition) HasState(id string) bool {
	_, ok := d.States[id]
	return ok
}

// StateIDs returns the state keys in sorted order.
func (d Definition) StateIDs() []string {
	ids := make([]string, 0, len(d.States))
	for id := range d.States {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Validate checks the table for internal consistency: the initial state
// must exist and every transition target must exist as a state key.
// The first invalid reference found (in sorted state order, for
// deterministic reporting) is returned as a *ConfigurationError.
func (d Definition) Validate() error {
	if len(d.States) == 0 {
		return errors.New("configuration: definition has no states")
	}
	if !d.HasState(d.Initial) {
		return &ConfigurationError{Reference: d.Initial, Context: "initial state"}
	}
	for _, id := range d.StateIDs() {
		events := d.States[id]
		types := make([]string, 0, len(events))
		for evType := range events {
			types = append(types, evType)
		}
		sort.Strings(types)
		for _, evType := range types {
			if target := events[evType].Target; !d.HasState(target) {
				return &ConfigurationError{
					Reference: target,
					Context:   "transition " + id + "/" + evType,
				}
			}
		}
	}
	return nil
}
