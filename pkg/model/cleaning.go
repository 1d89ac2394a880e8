// pkg/model/cleaning.go
package model

import "fmt"

// ValidationMode controls how rows whose category segments disagree with the
// header-deriving row are treated
type ValidationMode string

const (
	// ValidationPositional decodes every row by segment position and only reports divergence
	ValidationPositional ValidationMode = "positional"
	// ValidationStrict rejects the first row whose segment names or count diverge
	ValidationStrict     ValidationMode = "strict"
)

// ParseValidationMode converts a configuration string into a ValidationMode
func ParseValidationMode(s string) (ValidationMode, error) {
	switch ValidationMode(s) {
	case ValidationPositional, ValidationStrict:
		return ValidationMode(s), nil
	default:
		return "", fmt.Errorf("unknown category validation mode %q", s)
	}
}

// CategoryField is one decoded category column
type CategoryField struct {
	Name     string // Category name with the trailing "-<digit>" removed
	Position int    // Segment index inside the categories string
}

// CategorySchema is the ordered set of category columns derived once from the
// first row and applied to every row by position
type CategorySchema struct {
	Fields []CategoryField
}

// Len returns the number of category columns
func (s *CategorySchema) Len() int {
	return len(s.Fields)
}

// Names returns the category names in position order
func (s *CategorySchema) Names() []string {
	names := make([]string, len(s.Fields))
	for i, f := range s.Fields {
		names[i] = f.Name
	}
	return names
}

// Columns returns the integer columns that replace the categories field
func (s *CategorySchema) Columns() []Column {
	cols := make([]Column, len(s.Fields))
	for i, f := range s.Fields {
		cols[i] = Column{Name: f.Name, Type: TypeInteger}
	}
	return cols
}

// CleaningReport summarises what the transform stage did to a table
type CleaningReport struct {
	RowsIn            int   // Rows received from the loader
	RowsOut           int   // Rows left after deduplication
	CategoryColumns   int   // Number of decoded category columns
	DuplicatesRemoved int   // Rows dropped as exact duplicates
	MisalignedRows    []int // Row indexes whose segment names differ from the schema
}
