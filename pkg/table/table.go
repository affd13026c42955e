// Package table holds the in-memory representation of a tabular dataset:
// an ordered sequence of named, typed columns with equal lengths.
package table

import (
	"fmt"
	"time"
)

// Kind enumerates the supported column value types.
type Kind int

const (
	Bool Kind = iota
	Int
	Float
	String
	Time
)

func (k Kind) String() string {
	switch k {
	case Bool:
		return "bool"
	case Int:
		return "int"
	case Float:
		return "float"
	case String:
		return "string"
	case Time:
		return "time"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Column is a single named column. Cells are always set; there is no null
// representation.
type Column struct {
	Name string

	kind    Kind
	bools   []bool
	ints    []int64
	floats  []float64
	strings []string
	times   []time.Time
}

// Bools builds a bool column.
func Bools(name string, v []bool) Column {
	return Column{Name: name, kind: Bool, bools: v}
}

// Ints builds an int64 column.
func Ints(name string, v []int64) Column {
	return Column{Name: name, kind: Int, ints: v}
}

// Floats builds a float64 column.
func Floats(name string, v []float64) Column {
	return Column{Name: name, kind: Float, floats: v}
}

// Strings builds a string column.
func Strings(name string, v []string) Column {
	return Column{Name: name, kind: String, strings: v}
}

// Times builds a timestamp column. Values are stored with millisecond
// precision once serialized.
func Times(name string, v []time.Time) Column {
	return Column{Name: name, kind: Time, times: v}
}

// Kind reports the column value type.
func (c Column) Kind() Kind { return c.kind }

// Len reports the number of cells.
func (c Column) Len() int {
	switch c.kind {
	case Bool:
		return len(c.bools)
	case Int:
		return len(c.ints)
	case Float:
		return len(c.floats)
	case String:
		return len(c.strings)
	case Time:
		return len(c.times)
	}
	return 0
}

func (c Column) BoolAt(i int) bool      { return c.bools[i] }
func (c Column) IntAt(i int) int64      { return c.ints[i] }
func (c Column) FloatAt(i int) float64  { return c.floats[i] }
func (c Column) StringAt(i int) string  { return c.strings[i] }
func (c Column) TimeAt(i int) time.Time { return c.times[i] }

// Value returns cell i as an untyped value.
func (c Column) Value(i int) any {
	switch c.kind {
	case Bool:
		return c.bools[i]
	case Int:
		return c.ints[i]
	case Float:
		return c.floats[i]
	case String:
		return c.strings[i]
	case Time:
		return c.times[i]
	}
	return nil
}

// Equal reports whether two columns have the same name, kind, and values.
// Timestamps compare at millisecond precision, matching what survives
// serialization.
func (c Column) Equal(o Column) bool {
	if c.Name != o.Name || c.kind != o.kind || c.Len() != o.Len() {
		return false
	}
	for i := 0; i < c.Len(); i++ {
		switch c.kind {
		case Bool:
			if c.bools[i] != o.bools[i] {
				return false
			}
		case Int:
			if c.ints[i] != o.ints[i] {
				return false
			}
		case Float:
			if c.floats[i] != o.floats[i] {
				return false
			}
		case String:
			if c.strings[i] != o.strings[i] {
				return false
			}
		case Time:
			if c.times[i].UnixMilli() != o.times[i].UnixMilli() {
				return false
			}
		}
	}
	return true
}

// Table is an ordered sequence of equally sized columns with unique names.
type Table struct {
	cols []Column
}

// New builds a table from columns, enforcing unique non-empty names and
// equal lengths.
func New(cols ...Column) (*Table, error) {
	seen := make(map[string]struct{}, len(cols))
	for i, c := range cols {
		if c.Name == "" {
			return nil, fmt.Errorf("column %d has no name", i)
		}
		if _, dup := seen[c.Name]; dup {
			return nil, fmt.Errorf("duplicate column name %q", c.Name)
		}
		seen[c.Name] = struct{}{}
		if c.Len() != cols[0].Len() {
			return nil, fmt.Errorf("column %q has %d rows, want %d", c.Name, c.Len(), cols[0].Len())
		}
	}
	return &Table{cols: cols}, nil
}

// Empty returns the zero-row, zero-column table used as the not-found
// sentinel on read paths.
func Empty() *Table { return &Table{} }

// NumCols reports the number of columns.
func (t *Table) NumCols() int { return len(t.cols) }

// NumRows reports the number of rows.
func (t *Table) NumRows() int {
	if len(t.cols) == 0 {
		return 0
	}
	return t.cols[0].Len()
}

// IsEmpty reports whether the table has no columns.
func (t *Table) IsEmpty() bool { return len(t.cols) == 0 }

// Cols returns the columns in order.
func (t *Table) Cols() []Column { return t.cols }

// Col returns the column at index i.
func (t *Table) Col(i int) Column { return t.cols[i] }

// Lookup returns the named column, if present.
func (t *Table) Lookup(name string) (Column, bool) {
	for _, c := range t.cols {
		if c.Name == name {
			return c, true
		}
	}
	return Column{}, false
}

// Equal reports whether two tables have identical column names, order,
// kinds, and values.
func (t *Table) Equal(o *Table) bool {
	if t == nil || o == nil {
		return t == o
	}
	if len(t.cols) != len(o.cols) {
		return false
	}
	for i := range t.cols {
		if !t.cols[i].Equal(o.cols[i]) {
			return false
		}
	}
	return true
}

// Data is the closed set of payloads accepted by the store's write path:
// a *Table or a single Column. A Column is normalized into a one-column
// Table before any remote interaction.
type Data interface {
	normalize() (*Table, error)
}

func (t *Table) normalize() (*Table, error) { return t, nil }
func (c Column) normalize() (*Table, error) { return New(c) }

// Normalize converts an accepted payload into its canonical Table form.
func Normalize(d Data) (*Table, error) {
	if d == nil {
		return nil, fmt.Errorf("nil payload")
	}
	return d.normalize()
}
