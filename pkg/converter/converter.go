// pkg/converter/converter.go
package converter

import (
	"fmt"
	"strings"

	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/David-Botos/message-ingress/pkg/model"
)

// Dialect names the SQL flavour of a sink
type Dialect string

const (
	DialectSQLite    Dialect = "sqlite"
	DialectPostgres  Dialect = "postgres"
	DialectSnowflake Dialect = "snowflake"
)

// TypeConverter handles mapping of column types and values onto a sink dialect
type TypeConverter struct {
	logger  *zap.Logger
	dialect Dialect
}

// NewTypeConverter creates a new TypeConverter for the given dialect
func NewTypeConverter(logger *zap.Logger, dialect Dialect) *TypeConverter {
	return &TypeConverter{
		logger:  logger,
		dialect: dialect,
	}
}

// Dialect returns the dialect this converter targets
func (c *TypeConverter) Dialect() Dialect {
	return c.dialect
}

// GenerateColumnDefinitions creates column definitions for a CREATE TABLE statement.
// Columns are nullable and carry no keys or constraints.
func (c *TypeConverter) GenerateColumnDefinitions(columns []model.Column) ([]string, error) {
	if len(columns) == 0 {
		return nil, fmt.Errorf("cannot define a table without columns")
	}

	definitions := make([]string, 0, len(columns))
	for _, col := range columns {
		if col.Name == "" {
			return nil, fmt.Errorf("column name cannot be empty")
		}
		sqlType, err := c.ColumnSQLType(col.Type)
		if err != nil {
			return nil, fmt.Errorf("column %s: %w", col.Name, err)
		}
		definitions = append(definitions, fmt.Sprintf("%s %s", c.QuoteIdentifier(col.Name), sqlType))
	}

	return definitions, nil
}

// QuoteIdentifier properly quotes and escapes an identifier for the dialect
func (c *TypeConverter) QuoteIdentifier(name string) string {
	if c.dialect == DialectPostgres {
		return pq.QuoteIdentifier(name)
	}
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// CreateTableSQL builds the CREATE TABLE statement for the given columns
func (c *TypeConverter) CreateTableSQL(table string, columns []model.Column) (string, error) {
	defs, err := c.GenerateColumnDefinitions(columns)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("CREATE TABLE %s (\n\t%s\n)", c.QuoteIdentifier(table), strings.Join(defs, ",\n\t")), nil
}

// DropTableSQL builds the DROP TABLE IF EXISTS statement for a table
func (c *TypeConverter) DropTableSQL(table string) string {
	return fmt.Sprintf("DROP TABLE IF EXISTS %s", c.QuoteIdentifier(table))
}

// InsertSQL builds a multi-row INSERT with '?' placeholders. Callers rebind the
// placeholders for their driver.
func (c *TypeConverter) InsertSQL(table string, columns []model.Column, rowCount int) string {
	quoted := make([]string, len(columns))
	for i, col := range columns {
		quoted[i] = c.QuoteIdentifier(col.Name)
	}

	rowPlaceholder := "(" + strings.TrimSuffix(strings.Repeat("?, ", len(columns)), ", ") + ")"
	placeholders := make([]string, rowCount)
	for i := range placeholders {
		placeholders[i] = rowPlaceholder
	}

	return fmt.Sprintf("INSERT INTO %s (%s) VALUES %s",
		c.QuoteIdentifier(table), strings.Join(quoted, ", "), strings.Join(placeholders, ", "))
}
