package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTable_ColumnLookup(t *testing.T) {
	table := NewTable([]Column{
		{Name: "id", Type: TypeInteger},
		{Name: "message", Type: TypeText},
	})
	table.Rows = append(table.Rows, []interface{}{int64(1), "hello"}, []interface{}{int64(2), nil})

	assert.Equal(t, 0, table.ColumnIndex("id"))
	assert.Equal(t, 1, table.ColumnIndex("message"))
	assert.Equal(t, -1, table.ColumnIndex("ID"), "lookup is case-sensitive")

	assert.Equal(t, []string{"id", "message"}, table.ColumnNames())
	assert.Equal(t, 2, table.Width())
	assert.Equal(t, 2, table.Len())
}

func TestParseValidationMode(t *testing.T) {
	mode, err := ParseValidationMode("strict")
	require.NoError(t, err)
	assert.Equal(t, ValidationStrict, mode)

	mode, err = ParseValidationMode("positional")
	require.NoError(t, err)
	assert.Equal(t, ValidationPositional, mode)

	_, err = ParseValidationMode("lenient")
	assert.Error(t, err)
}

func TestCategorySchema_Columns(t *testing.T) {
	schema := &CategorySchema{Fields: []CategoryField{
		{Name: "related", Position: 0},
		{Name: "request", Position: 1},
	}}

	assert.Equal(t, 2, schema.Len())
	assert.Equal(t, []string{"related", "request"}, schema.Names())
	assert.Equal(t, []Column{
		{Name: "related", Type: TypeInteger},
		{Name: "request", Type: TypeInteger},
	}, schema.Columns())
}
