package decision

import "reflect"

// #region decision
// Decision is a node in a justification tree: a question or claim, the value
// decided, and either explanatory text or child decisions. Decisions are built
// once by a rule and not modified afterwards.
type Decision struct {
	Name    string
	Value   any
	Text    string
	Reasons []Decision

	// Set on top-level rule decisions only.
	Rule    RuleID
	Kind    Kind
	Payload Payload
}

// New builds a leaf decision with textual reasoning.
func New(name string, value any, text string) Decision {
	return Decision{Name: name, Value: value, Text: text}
}

// WithReasons builds a decision whose reasoning is a list of child decisions.
func WithReasons(name string, value any, reasons ...Decision) Decision {
	return Decision{Name: name, Value: value, Reasons: reasons}
}

// ForRule builds a tagged top-level decision. Reasons are derived from the
// payload so the exported tree and the typed view never disagree.
func ForRule(rule RuleID, kind Kind, name string, value any, payload Payload) Decision {
	d := Decision{Name: name, Value: value, Rule: rule, Kind: kind, Payload: payload}
	if payload != nil {
		d.Reasons = payload.Children()
	}
	return d
}

// #endregion decision

// #region truthiness
// Bool coerces the decision by its value.
func (d Decision) Bool() bool {
	return Truthy(d.Value)
}

// Truthy coerces an arbitrary decision value: nil, false, zero numbers, empty
// strings and empty collections are false.
func Truthy(v any) bool {
	switch x := v.(type) {
	case nil:
		return false
	case bool:
		return x
	case *bool:
		return x != nil && *x
	case string:
		return x != ""
	case int:
		return x != 0
	case float64:
		return x != 0
	case Decision:
		return x.Bool()
	case Truther:
		return x.Truthy()
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Map, reflect.Array:
		return rv.Len() > 0
	case reflect.Pointer:
		return !rv.IsNil()
	}
	return true
}

// All is true when every decision is true. An empty list is true.
func All(ds ...Decision) bool {
	for _, d := range ds {
		if !d.Bool() {
			return false
		}
	}
	return true
}

// Any is true when at least one decision is true.
func Any(ds ...Decision) bool {
	for _, d := range ds {
		if d.Bool() {
			return true
		}
	}
	return false
}

// #endregion truthiness

// #region equality
// Equal compares decision values. other may be another Decision or a raw
// value such as true or "Sealable".
func (d Decision) Equal(other any) bool {
	if o, ok := other.(Decision); ok {
		other = o.Value
	}
	if b, ok := other.(bool); ok {
		if v, isBool := d.Value.(bool); isBool {
			return v == b
		}
		return false
	}
	return reflect.DeepEqual(d.Value, other)
}

// #endregion equality
