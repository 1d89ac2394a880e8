package connector

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/David-Botos/message-ingress/pkg/config"
	"github.com/David-Botos/message-ingress/pkg/converter"
)

func sqliteSink(t *testing.T, path string) *config.SinkConfig {
	t.Helper()
	sink, err := config.Default().SinkFor(path)
	require.NoError(t, err)
	return sink
}

func TestConnectorFactory_OpenSQLite(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "out.db")

	conn, err := NewConnectorFactory(zaptest.NewLogger(t)).Open(ctx, sqliteSink(t, path))
	require.NoError(t, err)
	defer conn.Close()

	assert.Equal(t, converter.DialectSQLite, conn.Dialect())
	assert.Equal(t, sqlx.QUESTION, sqlx.BindType(conn.DB().DriverName()))

	_, err = conn.ExecWithTimeout(ctx, `CREATE TABLE "t" ("n" INTEGER)`, time.Second)
	require.NoError(t, err)
	_, err = conn.ExecWithTimeout(ctx, `INSERT INTO "t" ("n") VALUES (?), (?)`, time.Second, 4, 5)
	require.NoError(t, err)

	var sum int64
	err = conn.QueryWithTimeout(ctx, `SELECT SUM("n") FROM "t"`, time.Second, func(rows *sql.Rows) error {
		if !rows.Next() {
			return sql.ErrNoRows
		}
		return rows.Scan(&sum)
	})
	require.NoError(t, err)
	assert.Equal(t, int64(9), sum)
}

func TestConnectorFactory_OpenErrors(t *testing.T) {
	ctx := context.Background()
	f := NewConnectorFactory(zaptest.NewLogger(t))

	_, err := f.Open(ctx, nil)
	assert.Error(t, err)

	_, err = f.Open(ctx, &config.SinkConfig{Driver: "oracle"})
	assert.Error(t, err)

	// parent directory does not exist
	missing := filepath.Join(t.TempDir(), "no", "such", "dir", "out.db")
	_, err = f.Open(ctx, sqliteSink(t, missing))
	assert.Error(t, err)
}

func TestApplyConnectionSettings(t *testing.T) {
	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "pool.db"))
	require.NoError(t, err)
	defer db.Close()

	ApplyConnectionSettings(db, 3, 2, time.Minute, 0)
	assert.Equal(t, 3, GetConnectionStats(db).MaxOpenConns)
}
