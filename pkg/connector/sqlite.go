// pkg/connector/sqlite.go
package connector

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/David-Botos/message-ingress/pkg/config"
)

func init() {
	// modernc registers itself as "sqlite", which sqlx does not know by name
	sqlx.BindDriver("sqlite", sqlx.QUESTION)
}

// SQLiteConnector implements the DatabaseConnector interface for a SQLite file
type SQLiteConnector struct {
	*sqlConnector
}

// NewSQLiteConnector opens (creating if needed) the SQLite database at cfg.DSN
func NewSQLiteConnector(ctx context.Context, cfg *config.SinkConfig, logger *zap.Logger) (*SQLiteConnector, error) {
	logger = logger.Named("sqlite-connector")
	logger.Info("Opening SQLite database", zap.String("path", cfg.DSN))

	base, err := open(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}

	// wait on a locked file instead of failing at once
	if cfg.StatementTimeout > 0 {
		_, err = base.ExecWithTimeout(ctx,
			fmt.Sprintf("PRAGMA busy_timeout = %d", cfg.StatementTimeout.Milliseconds()), settingsTimeout)
		if err != nil {
			logger.Warn("Failed to set busy timeout", zap.Error(err))
		}
	}

	LogConnectionStats(logger, cfg.DSN, base.db.DB)
	return &SQLiteConnector{sqlConnector: base}, nil
}

// Validate checks that the database file is readable
func (c *SQLiteConnector) Validate(ctx context.Context) error {
	var version string
	err := c.QueryWithTimeout(ctx, "SELECT sqlite_version()", settingsTimeout, func(rows *sql.Rows) error {
		return scanOne(rows, &version)
	})
	if err != nil {
		return fmt.Errorf("failed to query SQLite version: %w", err)
	}
	c.logger.Info("Connected to SQLite",
		zap.String("path", c.cfg.DSN),
		zap.String("version", version))
	return nil
}
