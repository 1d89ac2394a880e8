// pkg/loader/loader.go

// Package loader reads the message and category datasets and joins them.
package loader

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/David-Botos/message-ingress/pkg/converter"
	"github.com/David-Botos/message-ingress/pkg/model"
)

// JoinKey is the column shared by the messages and categories datasets
const JoinKey = "id"

// Suffixes given to non-key columns present on both sides of a join
const (
	LeftSuffix  = "_x"
	RightSuffix = "_y"
)

// Loader reads delimited datasets into tables
type Loader struct {
	logger *zap.Logger
}

// NewLoader creates a new Loader instance
func NewLoader(logger *zap.Logger) (*Loader, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}
	return &Loader{logger: logger}, nil
}

// Load reads both datasets and inner-joins them on JoinKey
func (l *Loader) Load(messagesPath, categoriesPath string) (*model.Table, error) {
	messages, err := l.ReadCSV(messagesPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read messages: %w", err)
	}

	categories, err := l.ReadCSV(categoriesPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read categories: %w", err)
	}

	joined, err := InnerJoin(messages, categories, JoinKey)
	if err != nil {
		return nil, fmt.Errorf("failed to join datasets: %w", err)
	}

	l.logger.Info("Joined datasets",
		zap.Int("messages", messages.Len()),
		zap.Int("categories", categories.Len()),
		zap.Int("joined", joined.Len()),
		zap.Int("columns", joined.Width()))

	return joined, nil
}

// ReadCSV reads a comma-separated file with a header row. Column types are
// inferred from the data; missing cells become nil.
func (l *Loader) ReadCSV(path string) (*model.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	table, err := readTable(f)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	l.logger.Debug("Read CSV file",
		zap.String("path", path),
		zap.Int("rows", table.Len()),
		zap.Strings("columns", table.ColumnNames()))

	return table, nil
}

// readTable parses CSV content into a typed table
func readTable(r io.Reader) (*model.Table, error) {
	reader := csv.NewReader(r)

	header, err := reader.Read()
	if err == io.EOF {
		return nil, errors.New("missing header row")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}

	raw, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read rows: %w", err)
	}

	columns := make([]model.Column, len(header))
	cells := make([]string, len(raw))
	for i, name := range header {
		for r, record := range raw {
			cells[r] = record[i]
		}
		columns[i] = model.Column{Name: name, Type: converter.InferColumnType(cells)}
	}

	table := model.NewTable(columns)
	for r, record := range raw {
		row := make([]interface{}, len(columns))
		for i, col := range columns {
			v, err := converter.ParseCell(record[i], col.Type)
			if err != nil {
				// header is line 1
				return nil, fmt.Errorf("line %d, column %s: %w", r+2, col.Name, err)
			}
			row[i] = v
		}
		table.Rows = append(table.Rows, row)
	}

	return table, nil
}

// InnerJoin returns one row per pair of left and right rows with equal keys,
// in left order and then right order. Rows whose key is missing or has no
// counterpart are dropped. Non-key columns present on both sides are suffixed
// with LeftSuffix and RightSuffix.
func InnerJoin(left, right *model.Table, key string) (*model.Table, error) {
	leftKey := left.ColumnIndex(key)
	if leftKey < 0 {
		return nil, fmt.Errorf("left table has no %q column", key)
	}
	rightKey := right.ColumnIndex(key)
	if rightKey < 0 {
		return nil, fmt.Errorf("right table has no %q column", key)
	}

	shared := make(map[string]bool)
	for i, col := range right.Columns {
		if i != rightKey && left.ColumnIndex(col.Name) >= 0 {
			shared[col.Name] = true
		}
	}

	columns := make([]model.Column, 0, left.Width()+right.Width()-1)
	for _, col := range left.Columns {
		if shared[col.Name] {
			col.Name += LeftSuffix
		}
		columns = append(columns, col)
	}
	for i, col := range right.Columns {
		if i == rightKey {
			continue
		}
		if shared[col.Name] {
			col.Name += RightSuffix
		}
		columns = append(columns, col)
	}

	index := make(map[string][]int, right.Len())
	for r, row := range right.Rows {
		if k, ok := joinValue(row[rightKey]); ok {
			index[k] = append(index[k], r)
		}
	}

	joined := model.NewTable(columns)
	for _, lrow := range left.Rows {
		k, ok := joinValue(lrow[leftKey])
		if !ok {
			continue
		}
		for _, r := range index[k] {
			row := make([]interface{}, 0, len(columns))
			row = append(row, lrow...)
			for i, v := range right.Rows[r] {
				if i != rightKey {
					row = append(row, v)
				}
			}
			joined.Rows = append(joined.Rows, row)
		}
	}

	return joined, nil
}

// joinValue canonicalises a key cell so that 1, 1.0 and "1" compare equal.
// Missing keys never match.
func joinValue(v interface{}) (string, bool) {
	if v == nil {
		return "", false
	}
	return converter.ToString(v), true
}
