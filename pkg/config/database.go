// pkg/config/database.go
package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/snowflakedb/gosnowflake"

	"github.com/David-Botos/message-ingress/pkg/converter"
)

// Location prefixes recognised by ParseSinkLocation
const (
	postgresScheme   = "postgres://"
	postgresqlScheme = "postgresql://"
	snowflakeScheme  = "snowflake://"
	sqliteScheme     = "sqlite://"
)

// SinkConfig holds connection parameters for the output store
type SinkConfig struct {
	Location string            // Location exactly as given on the command line
	Driver   string            // database/sql driver name
	DSN      string            // Driver-specific data source name
	Dialect  converter.Dialect // SQL flavour of the store

	// Connection pool settings
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration

	// Statement timeout
	StatementTimeout time.Duration
}

// ParseSinkLocation turns an output location into a SinkConfig.
//
// postgres:// and postgresql:// URLs select PostgreSQL, snowflake:// selects
// Snowflake (the remainder is a gosnowflake DSN), sqlite:// or any other string
// is treated as the path of a SQLite database file.
func ParseSinkLocation(location string) (*SinkConfig, error) {
	if strings.TrimSpace(location) == "" {
		return nil, errors.New("output location cannot be empty")
	}

	cfg := &SinkConfig{Location: location}

	switch {
	case strings.HasPrefix(location, postgresScheme), strings.HasPrefix(location, postgresqlScheme):
		if _, err := url.Parse(location); err != nil {
			return nil, fmt.Errorf("invalid PostgreSQL URL: %w", err)
		}
		cfg.Driver = "pgx"
		cfg.DSN = location
		cfg.Dialect = converter.DialectPostgres

	case strings.HasPrefix(location, snowflakeScheme):
		sfConfig, err := gosnowflake.ParseDSN(strings.TrimPrefix(location, snowflakeScheme))
		if err != nil {
			return nil, fmt.Errorf("invalid Snowflake DSN: %w", err)
		}
		dsn, err := gosnowflake.DSN(sfConfig)
		if err != nil {
			return nil, fmt.Errorf("failed to build Snowflake DSN: %w", err)
		}
		cfg.Driver = "snowflake"
		cfg.DSN = dsn
		cfg.Dialect = converter.DialectSnowflake

	default:
		path := strings.TrimPrefix(location, sqliteScheme)
		if path == "" {
			return nil, errors.New("SQLite database path cannot be empty")
		}
		cfg.Driver = "sqlite"
		cfg.DSN = path
		cfg.Dialect = converter.DialectSQLite
	}

	return cfg, nil
}

// SinkFor parses a location and applies the pool and timeout settings of c
func (c *Config) SinkFor(location string) (*SinkConfig, error) {
	sink, err := ParseSinkLocation(location)
	if err != nil {
		return nil, err
	}

	sink.MaxOpenConns = c.MaxOpenConns
	sink.MaxIdleConns = c.MaxOpenConns
	sink.ConnMaxLifetime = 30 * time.Minute
	sink.StatementTimeout = c.StatementTimeout
	return sink, nil
}

// ConnectionString returns the data source name handed to sql.Open
func (c *SinkConfig) ConnectionString() string {
	return c.DSN
}

// DisplayName returns the location with credentials removed, for logs
func (c *SinkConfig) DisplayName() string {
	switch c.Dialect {
	case converter.DialectPostgres:
		u, err := url.Parse(c.Location)
		if err != nil {
			return "postgres"
		}
		return u.Redacted()
	case converter.DialectSnowflake:
		sfConfig, err := gosnowflake.ParseDSN(strings.TrimPrefix(c.Location, snowflakeScheme))
		if err != nil {
			return "snowflake"
		}
		return fmt.Sprintf("snowflake://%s/%s/%s", sfConfig.Account, sfConfig.Database, sfConfig.Schema)
	default:
		return c.DSN
	}
}
