// pkg/connector/postgres.go
package connector

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v4/stdlib"
	"go.uber.org/zap"

	"github.com/David-Botos/message-ingress/pkg/config"
)

// PostgresConnector implements the DatabaseConnector interface for PostgreSQL
type PostgresConnector struct {
	*sqlConnector
}

// NewPostgresConnector creates and initializes a new PostgreSQL connector
func NewPostgresConnector(ctx context.Context, cfg *config.SinkConfig, logger *zap.Logger) (*PostgresConnector, error) {
	logger = logger.Named("postgres-connector")
	logger.Info("Connecting to PostgreSQL", zap.String("location", cfg.DisplayName()))

	base, err := open(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}

	// Set statement timeout if configured
	if cfg.StatementTimeout > 0 {
		_, err = base.ExecWithTimeout(ctx,
			fmt.Sprintf("SET statement_timeout = %d", cfg.StatementTimeout.Milliseconds()), settingsTimeout)
		if err != nil {
			logger.Warn("Failed to set statement timeout", zap.Error(err))
		}
	}

	LogConnectionStats(logger, cfg.DisplayName(), base.db.DB)
	return &PostgresConnector{sqlConnector: base}, nil
}

// Validate verifies the PostgreSQL connection
func (c *PostgresConnector) Validate(ctx context.Context) error {
	var version, database string
	err := c.QueryWithTimeout(ctx, "SELECT version(), current_database()", settingsTimeout, func(rows *sql.Rows) error {
		return scanOne(rows, &version, &database)
	})
	if err != nil {
		return fmt.Errorf("failed to query PostgreSQL version: %w", err)
	}

	c.logger.Info("Connected to PostgreSQL",
		zap.String("database", database),
		zap.String("version", version))
	return nil
}
