// pkg/model/metadata.go
package model

import "fmt"

// ColumnType is the storage class inferred for a column
type ColumnType int

const (
	// TypeText holds arbitrary strings
	TypeText ColumnType = iota
	// TypeInteger holds int64 values
	TypeInteger
	// TypeReal holds float64 values
	TypeReal
)

// String returns a string representation of the column type
func (t ColumnType) String() string {
	switch t {
	case TypeText:
		return "Text"
	case TypeInteger:
		return "Integer"
	case TypeReal:
		return "Real"
	default:
		return fmt.Sprintf("Unknown(%d)", int(t))
	}
}

// Column represents metadata about a table column
type Column struct {
	Name string     // Column name as it appears in the header
	Type ColumnType // Inferred storage class
}

// Table is an ordered, in-memory relation. Each row holds one cell per column;
// a cell is int64, float64, string or nil.
type Table struct {
	Columns []Column
	Rows    [][]interface{}
}

// NewTable creates an empty table with the given columns
func NewTable(columns []Column) *Table {
	return &Table{
		Columns: columns,
		Rows:    make([][]interface{}, 0),
	}
}

// ColumnIndex returns the position of the named column, or -1 if absent.
// Names are matched exactly.
func (t *Table) ColumnIndex(name string) int {
	for i, col := range t.Columns {
		if col.Name == name {
			return i
		}
	}
	return -1
}

// ColumnNames returns the header in column order
func (t *Table) ColumnNames() []string {
	names := make([]string, len(t.Columns))
	for i, col := range t.Columns {
		names[i] = col.Name
	}
	return names
}

// Width returns the number of columns
func (t *Table) Width() int {
	return len(t.Columns)
}

// Len returns the number of rows
func (t *Table) Len() int {
	return len(t.Rows)
}
