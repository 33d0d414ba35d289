package decision

import "encoding/json"

// #region export
// Exported is the structured, serializable form of a Decision. Reasoning is a
// string or a list of Exported children.
type Exported struct {
	Name      string `json:"name"`
	Rule      RuleID `json:"rule,omitempty"`
	Kind      Kind   `json:"kind,omitempty"`
	Value     any    `json:"value"`
	Reasoning any    `json:"reasoning"`
}

// Export converts the decision tree recursively.
func (d Decision) Export() Exported {
	out := Exported{Name: d.Name, Rule: d.Rule, Kind: d.Kind, Value: exportValue(d.Value)}
	if len(d.Reasons) == 0 {
		out.Reasoning = d.Text
		return out
	}
	children := make([]Exported, 0, len(d.Reasons))
	for _, r := range d.Reasons {
		children = append(children, r.Export())
	}
	out.Reasoning = children
	return out
}

func exportValue(v any) any {
	switch x := v.(type) {
	case Decision:
		return x.Export()
	case []Decision:
		out := make([]Exported, 0, len(x))
		for _, d := range x {
			out = append(out, d.Export())
		}
		return out
	case *bool:
		if x == nil {
			return nil
		}
		return *x
	}
	return v
}

// MarshalJSON emits the exported form.
func (d Decision) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.Export())
}

// #endregion export
