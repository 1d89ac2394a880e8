package transfer

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/David-Botos/message-ingress/pkg/config"
	"github.com/David-Botos/message-ingress/pkg/connector"
	"github.com/David-Botos/message-ingress/pkg/converter"
	"github.com/David-Botos/message-ingress/pkg/model"
)

func openSQLite(t *testing.T, path string) connector.DatabaseConnector {
	t.Helper()
	sink, err := config.Default().SinkFor(path)
	require.NoError(t, err)
	conn, err := connector.NewConnectorFactory(zaptest.NewLogger(t)).Open(context.Background(), sink)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func TestTableWriter_WriteTable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.db")
	conn := openSQLite(t, path)
	ctx := context.Background()

	// a previous run left a differently shaped table behind
	_, err := conn.ExecWithTimeout(ctx, `CREATE TABLE "messages" ("stale" TEXT)`, time.Second)
	require.NoError(t, err)
	_, err = conn.ExecWithTimeout(ctx, `INSERT INTO "messages" VALUES ('x'), ('y')`, time.Second)
	require.NoError(t, err)

	table := model.NewTable([]model.Column{
		{Name: "id", Type: model.TypeInteger},
		{Name: "score", Type: model.TypeReal},
		{Name: "note", Type: model.TypeText},
	})
	for i := 0; i < 5; i++ {
		table.Rows = append(table.Rows, []interface{}{int64(i), float64(i) / 2, nil})
	}
	table.Rows[3][2] = "three"

	writer := NewTableWriter(conn, zaptest.NewLogger(t)).WithBatchSize(2).WithTimeout(time.Minute)
	written, err := writer.WriteTable(ctx, TableName, table)
	require.NoError(t, err)
	assert.Equal(t, int64(5), written)

	cols, rows := readMessages(t, path)
	assert.Equal(t, []string{"id", "score", "note"}, cols)
	require.Len(t, rows, 5)
	assert.Equal(t, []interface{}{int64(3), 1.5, "three"}, rows[3])
	assert.Nil(t, rows[0][2])
}

func TestTableWriter_EmptyTableKeepsSchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.db")
	conn := openSQLite(t, path)

	table := model.NewTable([]model.Column{{Name: "id", Type: model.TypeInteger}})
	written, err := NewTableWriter(conn, zaptest.NewLogger(t)).WriteTable(context.Background(), TableName, table)
	require.NoError(t, err)
	assert.Zero(t, written)

	cols, rows := readMessages(t, path)
	assert.Equal(t, []string{"id"}, cols)
	assert.Empty(t, rows)
}

func TestTableWriter_RollsBackOnFailure(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.db")
	conn := openSQLite(t, path)
	ctx := context.Background()

	_, err := conn.ExecWithTimeout(ctx, `CREATE TABLE "messages" ("id" INTEGER)`, time.Second)
	require.NoError(t, err)
	_, err = conn.ExecWithTimeout(ctx, `INSERT INTO "messages" VALUES (42)`, time.Second)
	require.NoError(t, err)

	table := model.NewTable([]model.Column{{Name: "id", Type: model.TypeInteger}})
	table.Rows = [][]interface{}{{int64(1)}, {struct{}{}}}

	_, err = NewTableWriter(conn, zaptest.NewLogger(t)).WriteTable(ctx, TableName, table)
	require.Error(t, err)

	_, rows := readMessages(t, path)
	assert.Equal(t, [][]interface{}{{int64(42)}}, rows)
}

func TestTableWriter_Errors(t *testing.T) {
	conn := openSQLite(t, filepath.Join(t.TempDir(), "out.db"))
	w := NewTableWriter(conn, zaptest.NewLogger(t))

	_, err := w.WriteTable(context.Background(), TableName, nil)
	assert.Error(t, err)
	_, err = w.WriteTable(context.Background(), TableName, model.NewTable(nil))
	assert.Error(t, err)
}

func TestTableWriter_DetermineBatchSize(t *testing.T) {
	conn := openSQLite(t, filepath.Join(t.TempDir(), "out.db"))
	w := NewTableWriter(conn, zaptest.NewLogger(t)).WithBatchSize(1000)

	assert.Equal(t, 1000, w.determineBatchSize(10))
	assert.Equal(t, maxBindParams/40, w.determineBatchSize(40))
	assert.Equal(t, 1, w.determineBatchSize(maxBindParams+1))
	assert.Equal(t, 1000, w.determineBatchSize(0))
}

// mockConnector serves a sqlmock database through the connector interface
type mockConnector struct {
	db      *sqlx.DB
	dialect converter.Dialect
}

func (m *mockConnector) DB() *sqlx.DB                       { return m.db }
func (m *mockConnector) Dialect() converter.Dialect         { return m.dialect }
func (m *mockConnector) Validate(ctx context.Context) error { return nil }
func (m *mockConnector) Close() error                       { return m.db.Close() }

func (m *mockConnector) ExecWithTimeout(ctx context.Context, query string, timeout time.Duration, args ...interface{}) (sql.Result, error) {
	return m.db.ExecContext(ctx, query, args...)
}

func (m *mockConnector) QueryWithTimeout(ctx context.Context, query string, timeout time.Duration, scan func(*sql.Rows) error, args ...interface{}) error {
	rows, err := m.db.QueryContext(ctx, query, args...)
	if err != nil {
		return err
	}
	defer rows.Close()
	return scan(rows)
}

func newPostgresMock(t *testing.T) (*mockConnector, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	return &mockConnector{db: sqlx.NewDb(db, "pgx"), dialect: converter.DialectPostgres}, mock
}

func postgresTable() *model.Table {
	table := model.NewTable([]model.Column{
		{Name: "id", Type: model.TypeInteger},
		{Name: "message", Type: model.TypeText},
	})
	table.Rows = [][]interface{}{{int64(1), "a"}, {int64(2), "b"}, {int64(3), nil}}
	return table
}

func expectReplace(mock sqlmock.Sqlmock) {
	mock.ExpectBegin()
	mock.ExpectExec(`DROP TABLE IF EXISTS "messages"`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("CREATE TABLE \"messages\" (\n\t\"id\" BIGINT,\n\t\"message\" TEXT\n)").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`INSERT INTO "messages" ("id", "message") VALUES ($1, $2), ($3, $4)`).
		WithArgs(int64(1), "a", int64(2), "b").
		WillReturnResult(sqlmock.NewResult(0, 2))
}

func TestTableWriter_PostgresDialect(t *testing.T) {
	conn, mock := newPostgresMock(t)
	defer conn.Close()

	expectReplace(mock)
	mock.ExpectExec(`INSERT INTO "messages" ("id", "message") VALUES ($1, $2)`).
		WithArgs(int64(3), nil).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`SELECT * FROM "messages" LIMIT 0`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "message"}))
	mock.ExpectQuery(`SELECT COUNT(*) FROM "messages"`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(3)))
	mock.ExpectCommit()

	written, err := NewTableWriter(conn, zaptest.NewLogger(t)).WithBatchSize(2).
		WriteTable(context.Background(), TableName, postgresTable())
	require.NoError(t, err)
	assert.Equal(t, int64(3), written)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTableWriter_PostgresInsertFailureRollsBack(t *testing.T) {
	conn, mock := newPostgresMock(t)
	defer conn.Close()

	expectReplace(mock)
	mock.ExpectExec(`INSERT INTO "messages" ("id", "message") VALUES ($1, $2)`).
		WithArgs(int64(3), nil).
		WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	_, err := NewTableWriter(conn, zaptest.NewLogger(t)).WithBatchSize(2).
		WriteTable(context.Background(), TableName, postgresTable())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTableWriter_RowCountMismatch(t *testing.T) {
	conn, mock := newPostgresMock(t)
	defer conn.Close()

	expectReplace(mock)
	mock.ExpectExec(`INSERT INTO "messages" ("id", "message") VALUES ($1, $2)`).
		WithArgs(int64(3), nil).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`SELECT * FROM "messages" LIMIT 0`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "message"}))
	mock.ExpectQuery(`SELECT COUNT(*) FROM "messages"`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(5)))
	mock.ExpectRollback()

	_, err := NewTableWriter(conn, zaptest.NewLogger(t)).WithBatchSize(2).
		WriteTable(context.Background(), TableName, postgresTable())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "row count mismatch")
	// nothing is committed when the check fails
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTableWriter_StructureMismatchRollsBack(t *testing.T) {
	conn, mock := newPostgresMock(t)
	defer conn.Close()

	expectReplace(mock)
	mock.ExpectExec(`INSERT INTO "messages" ("id", "message") VALUES ($1, $2)`).
		WithArgs(int64(3), nil).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`SELECT * FROM "messages" LIMIT 0`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "body"}))
	mock.ExpectRollback()

	_, err := NewTableWriter(conn, zaptest.NewLogger(t)).WithBatchSize(2).
		WriteTable(context.Background(), TableName, postgresTable())
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"body"`)
	assert.NoError(t, mock.ExpectationsWereMet())
}
