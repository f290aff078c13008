// Package fieldmap translates a loan scenario into the field vocabulary of a
// pricing portal.
package fieldmap

import (
	"strconv"

	"ratequote-backend/internal/scenario"
)

type Kind int

const (
	// Choice is a custom (non native) dropdown that must be opened and searched.
	Choice Kind = iota
	// Value is a native input or select whose value is assigned directly.
	Value
	// Toggle is a checkbox that is checked when Value is non-empty.
	Toggle
)

func (k Kind) String() string {
	switch k {
	case Choice:
		return "choice"
	case Value:
		return "value"
	case Toggle:
		return "toggle"
	}
	return "unknown"
}

func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Field is one portal field. An empty Value means the field is skipped.
type Field struct {
	Key   string `json:"key"`
	Value string `json:"value"`
	Kind  Kind   `json:"kind"`
}

// FieldMap is an ordered list of fields, fill order matters on portals
// where one field's value changes the options of another.
type FieldMap []Field

func (m FieldMap) Get(key string) (Field, bool) {
	for _, f := range m {
		if f.Key == key {
			return f, true
		}
	}
	return Field{}, false
}

// Filled returns the fields that carry a value.
func (m FieldMap) Filled() FieldMap {
	out := make(FieldMap, 0, len(m))
	for _, f := range m {
		if f.Value != "" {
			out = append(out, f)
		}
	}
	return out
}

// Mapper is implemented once per portal. Map must be total: every scenario
// yields a FieldMap.
type Mapper interface {
	Map(s scenario.LoanScenario) FieldMap
}

func lookup[K comparable](table map[K]string, key K, fallback string) string {
	if value, ok := table[key]; ok {
		return value
	}
	return fallback
}

func formatNumber(n float64) string {
	return strconv.FormatFloat(n, 'f', -1, 64)
}
