package domain

import "fmt"

// ConfigurationError reports a reference to a state identifier that does
// not exist in the definition. It is the only fatal failure mode of the
// runtime and is raised synchronously at construction, before any event
// can be processed.
type ConfigurationError struct {
	// Reference is the offending state identifier.
	Reference string

	// Context names where the reference was found (a hook scope, the
	// initial state, a transition).
	Context string
}

func (e *ConfigurationError) Error() string {
	if e.Context != "" {
		return fmt.Sprintf("configuration: unknown state %q referenced by %s", e.Reference, e.Context)
	}
	return fmt.Sprintf("configuration: unknown state %q", e.Reference)
}
