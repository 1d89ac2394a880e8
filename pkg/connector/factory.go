// pkg/connector/factory.go
package connector

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/David-Botos/message-ingress/pkg/config"
)

// ConnectorFactory creates database connectors
type ConnectorFactory struct {
	logger *zap.Logger
}

// NewConnectorFactory creates a new connector factory
func NewConnectorFactory(logger *zap.Logger) *ConnectorFactory {
	return &ConnectorFactory{
		logger: logger,
	}
}

// Open connects to the store described by cfg and validates the connection.
// The caller owns the returned connector and must Close it.
func (f *ConnectorFactory) Open(ctx context.Context, cfg *config.SinkConfig) (DatabaseConnector, error) {
	if cfg == nil {
		return nil, errors.New("sink config cannot be nil")
	}

	var (
		conn DatabaseConnector
		err  error
	)
	switch cfg.Driver {
	case "sqlite":
		conn, err = NewSQLiteConnector(ctx, cfg, f.logger)
	case "pgx":
		conn, err = NewPostgresConnector(ctx, cfg, f.logger)
	case "snowflake":
		conn, err = NewSnowflakeConnector(ctx, cfg, f.logger)
	default:
		return nil, fmt.Errorf("unsupported driver %q", cfg.Driver)
	}
	if err != nil {
		return nil, err
	}

	if err := conn.Validate(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to validate connection: %w", err)
	}

	return conn, nil
}
