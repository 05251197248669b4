// Package schema derives a canonical field schema from selector rules
// and the sample record they produced.
//
// Every artifact generator consumes this one schema; none of them may
// re-derive type information from raw selectors, so the inference order
// here is the single source of truth for the generated contract.
package schema

import (
	"strconv"
	"strings"

	"github.com/GriffinCanCode/APIForge/backend/internal/extract"
)

// Field types shared by all artifact generators.
const (
	TypeString  = "string"
	TypeNumber  = "number"
	TypeBoolean = "boolean"
	TypeArray   = "array"
)

// FormatURI marks string fields that carry URLs (href/src attributes).
const FormatURI = "uri"

// Field describes one field of the generated API contract.
type Field struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	Required bool   `json:"required"`
	Format   string `json:"format,omitempty"`
	Example  any    `json:"example,omitempty"`
}

// Infer derives the field schema from rules and their sample values.
//
// Type precedence, in order: multiple rules are array<string>; samples
// that parse as numbers are number; "true"/"false" samples are boolean;
// href/src attribute rules are string with a uri format hint; anything
// else is string. Required is true for every multiple rule and for
// single rules whose sample is non-null.
func Infer(rules []extract.SelectorRule, sample extract.Record) []Field {
	fields := make([]Field, 0, len(rules))

	for _, rule := range rules {
		value := sample[rule.Name]
		field := Field{
			Name:     rule.Name,
			Required: rule.Multiple || value != nil,
			Example:  value,
		}

		switch {
		case rule.Multiple:
			field.Type = TypeArray
		case isNumeric(value):
			field.Type = TypeNumber
		case isBoolean(value):
			field.Type = TypeBoolean
		case isURIAttribute(rule.Mode):
			field.Type = TypeString
			field.Format = FormatURI
		default:
			field.Type = TypeString
		}

		fields = append(fields, field)
	}

	return fields
}

func isNumeric(value any) bool {
	s, ok := value.(string)
	if !ok || strings.TrimSpace(s) == "" {
		return false
	}
	_, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	return err == nil
}

func isBoolean(value any) bool {
	s, ok := value.(string)
	return ok && (s == "true" || s == "false")
}

func isURIAttribute(mode extract.AttributeMode) bool {
	name, ok := mode.Attribute()
	return ok && (name == "href" || name == "src")
}
