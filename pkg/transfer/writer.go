package transfer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/David-Botos/message-ingress/pkg/connector"
	"github.com/David-Botos/message-ingress/pkg/converter"
	"github.com/David-Botos/message-ingress/pkg/model"
)

// TableName is the table the cleaned dataset is written to
const TableName = "messages"

// maxBindParams keeps a single INSERT under SQLite's default host parameter limit
const maxBindParams = 32766

// TableWriter replaces a table in the store with the contents of a model.Table
type TableWriter struct {
	conn          connector.DatabaseConnector
	typeConverter *converter.TypeConverter
	verifier      *Verifier
	logger        *zap.Logger
	batchSize     int
	timeout       time.Duration
}

// NewTableWriter creates a writer bound to an open connection
func NewTableWriter(conn connector.DatabaseConnector, logger *zap.Logger) *TableWriter {
	typeConverter := converter.NewTypeConverter(logger, conn.Dialect())
	return &TableWriter{
		conn:          conn,
		typeConverter: typeConverter,
		verifier:      NewVerifier(typeConverter, logger),
		logger:        logger,
		batchSize:     500,
		timeout:       5 * time.Minute,
	}
}

// WithBatchSize sets the number of rows per INSERT statement
func (w *TableWriter) WithBatchSize(batchSize int) *TableWriter {
	if batchSize > 0 {
		w.batchSize = batchSize
	}
	return w
}

// WithTimeout sets the per-statement timeout
func (w *TableWriter) WithTimeout(timeout time.Duration) *TableWriter {
	if timeout > 0 {
		w.timeout = timeout
		w.verifier.WithTimeout(timeout)
	}
	return w
}

// WriteTable drops name if it exists, recreates it from the table's columns and
// inserts every row, all in one transaction. The written columns and row count
// are checked before commit; a failed check rolls the table back.
func (w *TableWriter) WriteTable(ctx context.Context, name string, table *model.Table) (int64, error) {
	if table == nil || len(table.Columns) == 0 {
		return 0, errors.New("table has no columns")
	}

	written, err := w.replaceTable(ctx, name, table)
	if err != nil {
		return 0, err
	}

	w.logger.Info("Wrote table",
		zap.String("table", name),
		zap.Int64("rows", written),
		zap.Int("columns", table.Width()))

	return written, nil
}

// replaceTable runs drop, create, insert and verification in a single transaction
func (w *TableWriter) replaceTable(ctx context.Context, name string, table *model.Table) (written int64, err error) {
	createSQL, err := w.typeConverter.CreateTableSQL(name, table.Columns)
	if err != nil {
		return 0, fmt.Errorf("failed to generate table definition: %w", err)
	}

	tx, err := w.conn.DB().BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				w.logger.Error("Failed to rollback transaction",
					zap.Error(rbErr),
					zap.NamedError("cause", err))
			}
		}
	}()

	if err = w.exec(ctx, tx, w.typeConverter.DropTableSQL(name)); err != nil {
		return 0, fmt.Errorf("failed to drop table %s: %w", name, err)
	}
	if err = w.exec(ctx, tx, createSQL); err != nil {
		return 0, fmt.Errorf("failed to create table %s: %w", name, err)
	}
	w.logger.Debug("Created table", zap.String("table", name), zap.String("sql", createSQL))

	written, err = w.insertRows(ctx, tx, name, table)
	if err != nil {
		return 0, err
	}

	if err = w.verifier.VerifyTableStructure(ctx, tx, name, table.Columns); err != nil {
		return 0, err
	}
	if err = w.verifier.VerifyRowCount(ctx, tx, name, written); err != nil {
		return 0, err
	}

	if err = tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return written, nil
}

// insertRows inserts the table's rows in multi-row batches
func (w *TableWriter) insertRows(ctx context.Context, tx *sqlx.Tx, name string, table *model.Table) (int64, error) {
	batchSize := w.determineBatchSize(table.Width())

	var total int64
	for i := 0; i < table.Len(); i += batchSize {
		end := i + batchSize
		if end > table.Len() {
			end = table.Len()
		}
		batch := table.Rows[i:end]

		args := make([]interface{}, 0, len(batch)*table.Width())
		for r, row := range batch {
			for c, v := range row {
				converted, err := w.typeConverter.ConvertValue(v)
				if err != nil {
					return total, fmt.Errorf("row %d, column %s: %w", i+r, table.Columns[c].Name, err)
				}
				args = append(args, converted)
			}
		}

		query := tx.Rebind(w.typeConverter.InsertSQL(name, table.Columns, len(batch)))
		if err := w.exec(ctx, tx, query, args...); err != nil {
			return total, fmt.Errorf("batch insert failed at row %d: %w", i, err)
		}
		total += int64(len(batch))

		w.logger.Debug("Inserted batch",
			zap.String("table", name),
			zap.Int("rows", len(batch)),
			zap.Int64("total", total))
	}

	return total, nil
}

// determineBatchSize caps the configured batch size so one statement stays
// within the bind parameter limit
func (w *TableWriter) determineBatchSize(width int) int {
	if width <= 0 {
		return w.batchSize
	}
	if limit := maxBindParams / width; limit < w.batchSize {
		if limit < 1 {
			return 1
		}
		return limit
	}
	return w.batchSize
}

// exec runs one statement inside the transaction with the statement timeout
func (w *TableWriter) exec(ctx context.Context, tx *sqlx.Tx, query string, args ...interface{}) error {
	stmtCtx, cancel := context.WithTimeout(ctx, w.timeout)
	defer cancel()

	_, err := tx.ExecContext(stmtCtx, query, args...)
	return err
}
