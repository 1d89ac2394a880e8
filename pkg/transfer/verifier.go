package transfer

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/David-Botos/message-ingress/pkg/converter"
	"github.com/David-Botos/message-ingress/pkg/model"
)

// Queryer runs a query on a pool or inside a transaction; *sqlx.DB and *sqlx.Tx
// both satisfy it
type Queryer interface {
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
}

// Verifier checks a written table against what was meant to be written
type Verifier struct {
	typeConverter *converter.TypeConverter
	logger        *zap.Logger
	timeout       time.Duration
}

// NewVerifier creates a verifier that quotes names for the converter's dialect
func NewVerifier(typeConverter *converter.TypeConverter, logger *zap.Logger) *Verifier {
	return &Verifier{
		typeConverter: typeConverter,
		logger:        logger,
		timeout:       5 * time.Minute,
	}
}

// WithTimeout sets the query timeout
func (v *Verifier) WithTimeout(timeout time.Duration) *Verifier {
	v.timeout = timeout
	return v
}

// query runs query on q with the verifier's timeout and hands the rows to scan
func (v *Verifier) query(ctx context.Context, q Queryer, query string, scan func(*sql.Rows) error) error {
	queryCtx, cancel := context.WithTimeout(ctx, v.timeout)
	defer cancel()

	rows, err := q.QueryContext(queryCtx, query)
	if err != nil {
		return err
	}
	defer rows.Close()

	if err := scan(rows); err != nil {
		return err
	}
	return rows.Err()
}

// CountRows returns the number of rows in table
func (v *Verifier) CountRows(ctx context.Context, q Queryer, table string) (int64, error) {
	query := fmt.Sprintf("SELECT COUNT(*) FROM %s", v.typeConverter.QuoteIdentifier(table))

	var count int64
	err := v.query(ctx, q, query, func(rows *sql.Rows) error {
		if !rows.Next() {
			return fmt.Errorf("no results returned from count query")
		}
		return rows.Scan(&count)
	})
	if err != nil {
		return 0, fmt.Errorf("failed to count rows in %s: %w", table, err)
	}
	return count, nil
}

// VerifyRowCount checks that table holds exactly expected rows
func (v *Verifier) VerifyRowCount(ctx context.Context, q Queryer, table string, expected int64) error {
	actual, err := v.CountRows(ctx, q, table)
	if err != nil {
		return err
	}

	if actual != expected {
		v.logger.Warn("Row count mismatch",
			zap.String("table", table),
			zap.Int64("expected", expected),
			zap.Int64("actual", actual),
			zap.Int64("difference", expected-actual))
		return fmt.Errorf("row count mismatch in %s: wrote %d, found %d", table, expected, actual)
	}

	v.logger.Debug("Row count verification successful",
		zap.String("table", table),
		zap.Int64("count", actual))
	return nil
}

// VerifyTableStructure checks that table has exactly the expected columns, in order
func (v *Verifier) VerifyTableStructure(ctx context.Context, q Queryer, table string, expected []model.Column) error {
	query := fmt.Sprintf("SELECT * FROM %s LIMIT 0", v.typeConverter.QuoteIdentifier(table))

	var actual []string
	err := v.query(ctx, q, query, func(rows *sql.Rows) error {
		cols, err := rows.Columns()
		actual = cols
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to read columns of %s: %w", table, err)
	}

	if len(actual) != len(expected) {
		return fmt.Errorf("column count mismatch in %s: expected %d, found %d", table, len(expected), len(actual))
	}
	for i, col := range expected {
		if actual[i] != col.Name {
			return fmt.Errorf("column %d of %s is %q, expected %q", i, table, actual[i], col.Name)
		}
	}
	return nil
}
