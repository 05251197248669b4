package extract

import (
	"encoding/json"
	"fmt"
)

// Selector engines. CSS is the default; XPath rules opt in explicitly.
const (
	EngineCSS   = "css"
	EngineXPath = "xpath"
)

// AttributeMode is a closed variant describing what to pull from a
// matched element: its trimmed text, its inner HTML, or one attribute.
type AttributeMode struct {
	kind string
	attr string
}

const (
	kindText = "text"
	kindHTML = "html"
	kindAttr = "attr"
)

// ModeText extracts trimmed text content.
func ModeText() AttributeMode { return AttributeMode{kind: kindText} }

// ModeHTML extracts raw inner HTML.
func ModeHTML() AttributeMode { return AttributeMode{kind: kindHTML} }

// ModeAttribute extracts the value of the named attribute.
func ModeAttribute(name string) AttributeMode {
	return AttributeMode{kind: kindAttr, attr: name}
}

// IsText reports whether the mode extracts text content.
func (m AttributeMode) IsText() bool { return m.kind == kindText || m.kind == "" }

// IsHTML reports whether the mode extracts inner HTML.
func (m AttributeMode) IsHTML() bool { return m.kind == kindHTML }

// Attribute returns the attribute name and whether the mode targets one.
func (m AttributeMode) Attribute() (string, bool) {
	return m.attr, m.kind == kindAttr
}

// String returns the wire form: "text", "html", or the attribute name.
func (m AttributeMode) String() string {
	switch m.kind {
	case kindHTML:
		return "html"
	case kindAttr:
		return m.attr
	default:
		return "text"
	}
}

// MarshalJSON encodes the mode in its wire form.
func (m AttributeMode) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.String())
}

// UnmarshalJSON decodes "text", "html", or an attribute name.
func (m *AttributeMode) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("attribute mode must be a string: %w", err)
	}
	*m = ParseAttributeMode(s)
	return nil
}

// ParseAttributeMode maps a wire string to a mode. Anything that is not
// "text" or "html" is treated as an attribute name; empty means text.
func ParseAttributeMode(s string) AttributeMode {
	switch s {
	case "", "text":
		return ModeText()
	case "html":
		return ModeHTML()
	default:
		return ModeAttribute(s)
	}
}

// SelectorRule names one selector to evaluate against a rendered page.
// Name must be unique within a rule set; the selector string is checked
// at evaluation time, not construction time.
type SelectorRule struct {
	ID       string        `json:"id"`
	Selector string        `json:"selector"`
	Name     string        `json:"name"`
	Mode     AttributeMode `json:"attribute"`
	Multiple bool          `json:"multiple"`
	Engine   string        `json:"engine,omitempty"`
}

// Record maps rule names to extracted values. A value is a string or
// nil for single rules, and always a []string for multiple rules.
type Record map[string]any

// EmptyValue returns the empty form for a rule: nil for single rules,
// an empty slice for multiple rules.
func (r SelectorRule) EmptyValue() any {
	if r.Multiple {
		return []string{}
	}
	return nil
}

// IsEmpty reports whether every value in the record is the empty form.
func (rec Record) IsEmpty() bool {
	for _, v := range rec {
		switch val := v.(type) {
		case string:
			if val != "" {
				return false
			}
		case []string:
			if len(val) > 0 {
				return false
			}
		}
	}
	return true
}
