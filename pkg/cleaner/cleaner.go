// pkg/cleaner/cleaner.go

// Package cleaner decodes the packed categories field into integer columns and
// removes duplicate rows.
package cleaner

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/David-Botos/message-ingress/pkg/model"
)

// CategoriesColumn is the packed field replaced by one column per category
const CategoriesColumn = "categories"

// DataCleaner turns the joined dataset into the table written to the store
type DataCleaner struct {
	logger *zap.Logger
	mode   model.ValidationMode
}

// NewDataCleaner creates a new DataCleaner instance
func NewDataCleaner(logger *zap.Logger, mode model.ValidationMode) (*DataCleaner, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}
	if _, err := model.ParseValidationMode(string(mode)); err != nil {
		return nil, err
	}

	return &DataCleaner{
		logger: logger,
		mode:   mode,
	}, nil
}

// Mode returns the category validation mode in effect
func (c *DataCleaner) Mode() model.ValidationMode {
	return c.mode
}

// CleanTable decodes the categories column of every row against the schema
// taken from the first row, then drops exact duplicates. The input table is
// not modified.
func (c *DataCleaner) CleanTable(table *model.Table) (*model.Table, *model.CleaningReport, error) {
	if table == nil {
		return nil, nil, errors.New("table cannot be nil")
	}

	catIdx := table.ColumnIndex(CategoriesColumn)
	if catIdx < 0 {
		return nil, nil, fmt.Errorf("missing %q column", CategoriesColumn)
	}
	if table.Len() == 0 {
		return nil, nil, errors.New("no rows to clean")
	}

	first, err := categoryCell(table.Rows[0], catIdx, 0)
	if err != nil {
		return nil, nil, err
	}
	schema, err := ParseCategorySchema(first)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to derive category names: %w", err)
	}

	columns := make([]model.Column, 0, table.Width()-1+schema.Len())
	for i, col := range table.Columns {
		if i != catIdx {
			columns = append(columns, col)
		}
	}
	columns = append(columns, schema.Columns()...)

	report := &model.CleaningReport{
		RowsIn:          table.Len(),
		CategoryColumns: schema.Len(),
	}

	decoded := model.NewTable(columns)
	decoded.Rows = make([][]interface{}, 0, table.Len())
	for r, row := range table.Rows {
		raw, err := categoryCell(row, catIdx, r)
		if err != nil {
			return nil, nil, err
		}

		values, aligned, err := decodeCategories(raw, schema, c.mode)
		if err != nil {
			return nil, nil, fmt.Errorf("row %d: %w", r, err)
		}
		if !aligned {
			report.MisalignedRows = append(report.MisalignedRows, r)
		}

		out := make([]interface{}, 0, len(columns))
		for i, v := range row {
			if i != catIdx {
				out = append(out, v)
			}
		}
		out = append(out, values...)
		decoded.Rows = append(decoded.Rows, out)
	}

	if n := len(report.MisalignedRows); n > 0 {
		c.logger.Warn("Category names differ from the first row; values decoded by position",
			zap.Int("rows", n),
			zap.Int("first_row", report.MisalignedRows[0]))
	}

	cleaned, removed := Deduplicate(decoded)
	report.RowsOut = cleaned.Len()
	report.DuplicatesRemoved = removed

	c.logger.Info("Cleaned table",
		zap.Int("rows_in", report.RowsIn),
		zap.Int("rows_out", report.RowsOut),
		zap.Int("category_columns", report.CategoryColumns),
		zap.Int("duplicates_removed", report.DuplicatesRemoved),
		zap.String("mode", string(c.mode)))

	return cleaned, report, nil
}

// Deduplicate returns a copy of table without rows equal to an earlier row
// across every column, along with the number of rows removed. Order of the
// remaining rows is preserved.
func Deduplicate(table *model.Table) (*model.Table, int) {
	out := model.NewTable(table.Columns)
	out.Rows = make([][]interface{}, 0, table.Len())

	seen := make(map[string]struct{}, table.Len())
	for _, row := range table.Rows {
		key := rowKey(row)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out.Rows = append(out.Rows, row)
	}

	return out, table.Len() - out.Len()
}
