// pkg/connector/snowflake.go
package connector

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/snowflakedb/gosnowflake"
	"go.uber.org/zap"

	"github.com/David-Botos/message-ingress/pkg/config"
)

func init() {
	sqlx.BindDriver("snowflake", sqlx.QUESTION)
}

// SnowflakeConnector implements the DatabaseConnector interface for Snowflake
type SnowflakeConnector struct {
	*sqlConnector
}

// NewSnowflakeConnector creates a new Snowflake connection
func NewSnowflakeConnector(ctx context.Context, cfg *config.SinkConfig, logger *zap.Logger) (*SnowflakeConnector, error) {
	logger = logger.Named("snowflake-connector")
	logger.Info("Connecting to Snowflake", zap.String("location", cfg.DisplayName()))

	base, err := open(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Snowflake: %w", err)
	}

	// Set query timeout if configured
	if cfg.StatementTimeout > 0 {
		_, err = base.ExecWithTimeout(ctx,
			fmt.Sprintf("ALTER SESSION SET STATEMENT_TIMEOUT_IN_SECONDS = %d",
				int(cfg.StatementTimeout.Seconds())), settingsTimeout)
		if err != nil {
			logger.Warn("Failed to set statement timeout", zap.Error(err))
		}
	}

	LogConnectionStats(logger, cfg.DisplayName(), base.db.DB)
	return &SnowflakeConnector{sqlConnector: base}, nil
}

// Validate verifies the Snowflake connection and that a database is selected
func (c *SnowflakeConnector) Validate(ctx context.Context) error {
	var role, database, warehouse sql.NullString
	err := c.QueryWithTimeout(ctx, "SELECT CURRENT_ROLE(), CURRENT_DATABASE(), CURRENT_WAREHOUSE()", settingsTimeout,
		func(rows *sql.Rows) error {
			return scanOne(rows, &role, &database, &warehouse)
		})
	if err != nil {
		return fmt.Errorf("failed to verify Snowflake access: %w", err)
	}

	c.logger.Info("Connected to Snowflake",
		zap.String("role", role.String),
		zap.String("database", database.String),
		zap.String("warehouse", warehouse.String))

	if !database.Valid || database.String == "" {
		return fmt.Errorf("no database selected for %s", c.cfg.DisplayName())
	}
	return nil
}
