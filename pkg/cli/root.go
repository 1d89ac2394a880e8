// Package cli wires the process-data command line to the transfer pipeline.
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/David-Botos/message-ingress/pkg/config"
	"github.com/David-Botos/message-ingress/pkg/transfer"
)

const usageText = `Please provide the filepaths of the messages and categories datasets as the first
and second argument respectively, as well as the location of the database to save
the cleaned data to as the third argument.

Example: process-data disaster_messages.csv disaster_categories.csv DisasterResponse.db
`

// NewRootCmd builds the process-data command
func NewRootCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "process-data <messages_path> <categories_path> <output_location>",
		Short: "Merge, clean and store the disaster messages dataset",
		Long: `process-data joins the messages and categories datasets on id, expands the
packed categories field into one integer column per category, removes duplicate
rows and writes the result to table "messages", replacing any previous contents.

The output location is a SQLite file path (optionally prefixed with sqlite://),
a postgres:// URL or a snowflake:// DSN.

Exit Codes:
  0 - Success
  1 - General error
  2 - CLI usage error
  3 - Input dataset missing or malformed
  4 - Output store unreachable or not writable`,
		Args:               requireThreeArgs,
		RunE:               runProcessData,
		DisableFlagParsing: true,
		SilenceUsage:       true,
		SilenceErrors:      true,
	}
}

// Execute runs the root command, stopping early on SIGINT or SIGTERM
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd := NewRootCmd()
	err := cmd.ExecuteContext(ctx)
	if err != nil && !errors.Is(err, transfer.ErrUsage) {
		fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
	}
	return err
}

// requireThreeArgs prints the usage text to stdout when the argument count is wrong
func requireThreeArgs(cmd *cobra.Command, args []string) error {
	if len(args) != 3 {
		fmt.Fprint(cmd.OutOrStdout(), usageText)
		return fmt.Errorf("%w: accepts 3 arg(s), received %d", transfer.ErrUsage, len(args))
	}
	return nil
}

func runProcessData(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := config.NewLogger(cfg)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	manager, err := transfer.NewManager(cfg, logger, cmd.OutOrStdout())
	if err != nil {
		return fmt.Errorf("failed to create manager: %w", err)
	}

	job := transfer.NewRunJob(args[0], args[1], args[2])
	logger.Debug("Starting run",
		zap.String("run_id", job.ID),
		zap.String("messages", job.MessagesPath),
		zap.String("categories", job.CategoriesPath))

	_, err = manager.Run(cmd.Context(), job)
	return err
}
