// Package fields evaluates declarative required-field rules
// against a command draft. A skill declares which draft attributes must
// be present before its mutations may run; evaluation reports every
// unsatisfied clause so the assistant can ask for all of them at once.
package fields

import (
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Kind tells which extraction payload a leaf clause refers to.
type Kind string

const (
	KindChat     Kind = "chat"
	KindDateTime Kind = "dateTime"
)

// Clause is one node of a required-fields tree: either a leaf naming a
// draft path, or one of the two combinators. Exactly one of Path, And,
// OneOf is set.
type Clause struct {
	Path  string   `yaml:"path,omitempty" json:"path,omitempty"`
	Kind  Kind     `yaml:"kind,omitempty" json:"kind,omitempty"`
	And   []Clause `yaml:"and,omitempty" json:"and,omitempty"`
	OneOf []Clause `yaml:"oneOf,omitempty" json:"oneOf,omitempty"`
}

// Section groups the clauses of one requirement tier.
type Section struct {
	Required []Clause `yaml:"required" json:"required"`
	Optional []Clause `yaml:"optional,omitempty" json:"optional,omitempty"`
}

// Spec is the full statically-loaded requirement tree of one skill.
type Spec struct {
	Required []Clause `yaml:"required" json:"required"`
	Optional []Clause `yaml:"optional,omitempty" json:"optional,omitempty"`
	DateTime Section  `yaml:"dateTime,omitempty" json:"dateTime,omitempty"`
}

// Load parses a YAML requirement spec and validates its shape.
func Load(data []byte) (*Spec, error) {
	var spec Spec
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return nil, fmt.Errorf("parsing required fields spec: %w", err)
	}
	for _, group := range [][]Clause{spec.Required, spec.Optional, spec.DateTime.Required, spec.DateTime.Optional} {
		for _, c := range group {
			if err := c.validate(); err != nil {
				return nil, err
			}
		}
	}
	return &spec, nil
}

func (c Clause) validate() error {
	set := 0
	if c.Path != "" {
		set++
	}
	if len(c.And) > 0 {
		set++
	}
	if len(c.OneOf) > 0 {
		set++
	}
	if set != 1 {
		return fmt.Errorf("clause must be exactly one of path, and, oneOf: %+v", c)
	}
	for _, child := range append(append([]Clause{}, c.And...), c.OneOf...) {
		if err := child.validate(); err != nil {
			return err
		}
	}
	return nil
}

// Describe renders the clause for the user-facing missing-fields prompt.
func (c Clause) Describe() string {
	switch {
	case len(c.And) > 0:
		parts := make([]string, len(c.And))
		for i, child := range c.And {
			parts[i] = child.Describe()
		}
		return strings.Join(parts, " and ")
	case len(c.OneOf) > 0:
		parts := make([]string, len(c.OneOf))
		for i, child := range c.OneOf {
			parts[i] = child.Describe()
		}
		return "one of " + strings.Join(parts, ", ")
	default:
		return c.Path
	}
}

// Report accumulates the unsatisfied clauses of one evaluation, in
// declaration order.
type Report struct {
	Required []Clause      `json:"required"`
	DateTime SectionReport `json:"dateTime,omitempty"`
}

// SectionReport holds the unsatisfied date/time clauses.
type SectionReport struct {
	Required []Clause `json:"required,omitempty"`
}

// Empty reports whether no clause is missing.
func (r *Report) Empty() bool {
	return len(r.Required) == 0 && len(r.DateTime.Required) == 0
}

// Describe renders the report as a short human-readable list.
func (r *Report) Describe() string {
	var parts []string
	for _, c := range r.Required {
		parts = append(parts, c.Describe())
	}
	for _, c := range r.DateTime.Required {
		parts = append(parts, c.Describe())
	}
	return strings.Join(parts, "; ")
}

// Evaluate checks every clause against the draft document. It returns
// whether all clauses are satisfied and the missing ones in declaration
// order. Evaluation is pure and never fails: an unresolvable path is
// simply unsatisfied.
func Evaluate(clauses []Clause, doc map[string]any) (bool, []Clause) {
	var missing []Clause
	for _, c := range clauses {
		if !satisfied(c, doc) {
			missing = append(missing, c)
		}
	}
	return len(missing) == 0, missing
}

// EvaluateTriggered checks optional clauses: a clause only becomes
// missing once the user has started satisfying it. An and-group with
// some children satisfied must be completed; untouched clauses are
// never reported.
func EvaluateTriggered(clauses []Clause, doc map[string]any) []Clause {
	var missing []Clause
	for _, c := range clauses {
		if len(c.And) == 0 {
			continue
		}
		any, all := false, true
		for _, child := range c.And {
			if satisfied(child, doc) {
				any = true
			} else {
				all = false
			}
		}
		if any && !all {
			missing = append(missing, c)
		}
	}
	return missing
}

func satisfied(c Clause, doc map[string]any) bool {
	switch {
	case len(c.And) > 0:
		for _, child := range c.And {
			if !satisfied(child, doc) {
				return false
			}
		}
		return true
	case len(c.OneOf) > 0:
		for _, child := range c.OneOf {
			if satisfied(child, doc) {
				return true
			}
		}
		return false
	default:
		return pathPresent(doc, c.Path)
	}
}

// pathPresent resolves a dotted path against the document. A segment
// suffixed with "[]" descends into a list; the remainder must hold for
// at least one element.
func pathPresent(doc map[string]any, path string) bool {
	return valuePresent(resolve(doc, strings.Split(path, ".")))
}

func resolve(value any, segments []string) any {
	if len(segments) == 0 {
		return value
	}

	seg := segments[0]
	if name, isList := strings.CutSuffix(seg, "[]"); isList {
		m, ok := value.(map[string]any)
		if !ok {
			return nil
		}
		list, ok := m[name].([]any)
		if !ok || len(list) == 0 {
			return nil
		}
		if len(segments) == 1 {
			return list
		}
		for _, elem := range list {
			if valuePresent(resolve(elem, segments[1:])) {
				return resolve(elem, segments[1:])
			}
		}
		return nil
	}

	m, ok := value.(map[string]any)
	if !ok {
		return nil
	}
	return resolve(m[seg], segments[1:])
}

// valuePresent reports whether a resolved value counts as provided.
// Empty strings, empty collections, zero numbers and nil are absent;
// booleans are present regardless of value (the user did state them).
func valuePresent(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case string:
		return t != ""
	case []any:
		return len(t) > 0
	case map[string]any:
		return len(t) > 0
	case float64:
		return t != 0
	case bool:
		return true
	default:
		return true
	}
}

// DocOf converts an arbitrary draft struct into the generic document
// form the evaluator walks, via its JSON encoding.
func DocOf(v any) (map[string]any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encoding draft: %w", err)
	}
	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decoding draft: %w", err)
	}
	return doc, nil
}
