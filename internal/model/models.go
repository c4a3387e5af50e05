package model

import (
	"strconv"
	"strings"
)

// Size is a coerced numeric size. Valid is false when the source text could not be
// parsed, which is the explicit "missing" marker.
type Size struct {
	Value float64 `json:"value"`
	Valid bool    `json:"valid"`
}

// Missing reports whether the size failed to parse.
func (s Size) Missing() bool { return !s.Valid }

// String renders the value the way it is written back to output files.
func (s Size) String() string {
	if !s.Valid {
		return ""
	}
	return strconv.FormatFloat(s.Value, 'f', -1, 64)
}

// Operator is a tenant looking for space within [MinSize, MaxSize].
type Operator struct {
	Row     int    `json:"row"`
	Name    string `json:"name"`
	MinSize Size   `json:"min_size"`
	MaxSize Size   `json:"max_size"`
}

// Building is one row of the buildings table. Fields holds every source column as raw
// text and is never interpreted; Size is the coerced value of the size column.
type Building struct {
	Row    int               `json:"row"`
	Fields map[string]string `json:"fields"`
	Size   Size              `json:"size"`
}

// Field returns a passthrough column value, or "" when absent.
func (b Building) Field(column string) string {
	return b.Fields[column]
}

// BuildingTable keeps the header order of the source so exports can reproduce it.
type BuildingTable struct {
	Columns   []string   `json:"columns"`
	Buildings []Building `json:"buildings"`
}

// Selector addresses an operator either by zero-based position or by name.
type Selector struct {
	Index  int    `json:"index,omitempty"`
	Name   string `json:"name,omitempty"`
	ByName bool   `json:"by_name"`
}

// ByIndex selects the operator at position i.
func ByIndex(i int) Selector { return Selector{Index: i} }

// ByName selects the operator whose name equals name, ignoring case.
func ByName(name string) Selector { return Selector{Name: name, ByName: true} }

// ParseSelector treats integer input as a position and anything else as a name.
func ParseSelector(s string) Selector {
	s = strings.TrimSpace(s)
	if i, err := strconv.Atoi(s); err == nil {
		return ByIndex(i)
	}
	return ByName(s)
}

func (s Selector) String() string {
	if s.ByName {
		return strconv.Quote(s.Name)
	}
	return "#" + strconv.Itoa(s.Index)
}
