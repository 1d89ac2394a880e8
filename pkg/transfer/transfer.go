// Package transfer runs the load, clean and save stages and writes the result
// to the output store.
package transfer

import (
	"context"
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/David-Botos/message-ingress/pkg/cleaner"
	"github.com/David-Botos/message-ingress/pkg/config"
	"github.com/David-Botos/message-ingress/pkg/connector"
	"github.com/David-Botos/message-ingress/pkg/loader"
	"github.com/David-Botos/message-ingress/pkg/model"
)

// Manager runs the pipeline for one job at a time
type Manager struct {
	cfg     *config.Config
	logger  *zap.Logger
	out     io.Writer
	loader  *loader.Loader
	cleaner *cleaner.DataCleaner
	factory *connector.ConnectorFactory
	metrics *RunMetrics
}

// NewManager creates a new pipeline manager. Progress lines are written to out.
func NewManager(cfg *config.Config, logger *zap.Logger, out io.Writer) (*Manager, error) {
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}
	if out == nil {
		out = io.Discard
	}

	l, err := loader.NewLoader(logger.Named("loader"))
	if err != nil {
		return nil, fmt.Errorf("failed to create loader: %w", err)
	}

	c, err := cleaner.NewDataCleaner(logger.Named("cleaner"), cfg.CategoryValidation)
	if err != nil {
		return nil, fmt.Errorf("failed to create cleaner: %w", err)
	}

	return &Manager{
		cfg:     cfg,
		logger:  logger,
		out:     out,
		loader:  l,
		cleaner: c,
		factory: connector.NewConnectorFactory(logger),
		metrics: NewRunMetrics(logger),
	}, nil
}

// Run loads, cleans and saves the datasets named by job. Either the whole table
// is written or the store is left as it was.
func (m *Manager) Run(ctx context.Context, job RunJob) (*RunResult, error) {
	logger := m.logger.With(zap.String("run_id", job.ID))
	result := NewRunResult(job)

	sink, err := m.cfg.SinkFor(job.Output)
	if err != nil {
		result.Complete(false)
		return result, WrapError(ErrOutput, err, "invalid output location")
	}

	fmt.Fprintf(m.out, "Loading data...\n    MESSAGES: %s\n    CATEGORIES: %s\n", job.MessagesPath, job.CategoriesPath)
	end := m.metrics.StartStage(StageLoad)
	joined, err := m.loader.Load(job.MessagesPath, job.CategoriesPath)
	if err != nil {
		result.Complete(false)
		return result, WrapError(ErrInput, err, "failed to load data")
	}
	end(int64(joined.Len()))

	fmt.Fprintln(m.out, "Cleaning data...")
	end = m.metrics.StartStage(StageClean)
	cleaned, report, err := m.cleaner.CleanTable(joined)
	if err != nil {
		result.Complete(false)
		return result, WrapError(ErrInput, err, "failed to clean data")
	}
	result.AddCleaningReport(report)
	end(int64(cleaned.Len()))

	fmt.Fprintf(m.out, "Saving data...\n    DATABASE: %s\n", sink.DisplayName())
	end = m.metrics.StartStage(StageSave)
	written, err := m.save(ctx, sink, cleaned)
	if err != nil {
		result.Complete(false)
		return result, WrapError(ErrOutput, err, "failed to save data")
	}
	result.RowsWritten = written
	end(written)

	fmt.Fprintln(m.out, "Cleaned data saved to database!")

	result.Complete(true)
	logger.Info("Run complete",
		zap.String("table", result.Table),
		zap.Int("rows_loaded", result.RowsLoaded),
		zap.Int64("rows_written", result.RowsWritten),
		zap.Int("category_columns", result.CategoryColumns),
		zap.Int("duplicates_removed", result.DuplicatesRemoved),
		zap.Int("misaligned_rows", result.MisalignedRows),
		zap.Duration("duration", result.Duration))
	logger.Debug(m.metrics.GenerateMetricsReport())

	return result, nil
}

// save opens the store for the duration of the write and closes it afterwards
func (m *Manager) save(ctx context.Context, sink *config.SinkConfig, table *model.Table) (int64, error) {
	conn, err := m.factory.Open(ctx, sink)
	if err != nil {
		return 0, err
	}
	defer func() {
		if err := conn.Close(); err != nil {
			m.logger.Warn("Failed to close connection", zap.Error(err))
		}
	}()

	writer := NewTableWriter(conn, m.logger.Named("writer")).
		WithBatchSize(m.cfg.BatchSize).
		WithTimeout(m.cfg.StatementTimeout)

	return writer.WriteTable(ctx, TableName, table)
}

// Metrics returns the stage timings collected so far
func (m *Manager) Metrics() *RunMetrics {
	return m.metrics
}
