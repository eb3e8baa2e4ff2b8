// Package yamldef loads an already-resolved transition table serialized
// as YAML. The authoring format that produces tables is external; this
// adapter only decodes and validates the resolved shape.
package yamldef

import (
	"fmt"
	"os"
	"reflect"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"

	"github.com/aretw0/pergola/pkg/domain"
)

// Parse decodes a Definition from YAML and validates it.
//
// Two transition forms are accepted:
//
//	SUBMIT:
//	  target: review
//	  actions: [record]
//	SUBMIT: review        # shorthand, no declared actions
func Parse(data []byte) (domain.Definition, error) {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return domain.Definition{}, fmt.Errorf("invalid yaml: %w", err)
	}

	var def domain.Definition
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:     &def,
		DecodeHook: shorthandTransitionHook,
	})
	if err != nil {
		return domain.Definition{}, err
	}
	if err := dec.Decode(raw); err != nil {
		return domain.Definition{}, fmt.Errorf("invalid definition: %w", err)
	}

	if err := def.Validate(); err != nil {
		return domain.Definition{}, err
	}
	return def, nil
}

// Load reads and parses a definition file.
func Load(path string) (domain.Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.Definition{}, fmt.Errorf("read definition: %w", err)
	}
	return Parse(data)
}

// shorthandTransitionHook expands the "EVENT: target" string form into a
// full Transition while decoding.
func shorthandTransitionHook(from reflect.Type, to reflect.Type, data any) (any, error) {
	if from.Kind() != reflect.String || to != reflect.TypeOf(domain.Transition{}) {
		return data, nil
	}
	return map[string]any{"target": data.(string)}, nil
}
