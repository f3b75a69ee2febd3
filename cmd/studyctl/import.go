package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"exposure-platform/internal/repository"
	"exposure-platform/internal/services"
	"exposure-platform/pkg/database"
	"exposure-platform/pkg/logging"
)

const maxListedErrors = 10

func newImportCmd(root *rootFlags) *cobra.Command {
	var batchSize int
	var migrate bool

	cmd := &cobra.Command{
		Use:   "import <dir>",
		Short: "Validate and store every *.jsonl record export in a directory",
		Long: "Each file holds one JSON record per line; the record kind is taken from the file name " +
			"(worker.jsonl, application_2024.jsonl). Records are checked with the same field rules as the " +
			"editing API and only valid records are stored.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := openApp(ctx, root.config, root.verbose)
			if err != nil {
				return err
			}
			defer a.Close()

			if migrate {
				if _, err := a.db.Migrate(ctx, database.Up); err != nil {
					return fmt.Errorf("migration failed: %w", err)
				}
			}

			repo := repository.NewRecordRepository(a.db, a.logger, a.metrics)
			importer := services.NewImportService(repo, nil, a.cfg.Catalog(), a.logger, a.metrics)

			result, err := importer.ImportDirectory(ctx, args[0], batchSize)
			if err != nil {
				a.logger.Error(ctx, "[IMPORT_ERROR] Import failed", logging.Fields{
					"dir": args[0],
				}, err)
				return err
			}

			printImport(cmd.OutOrStdout(), result)
			if result.FailedRecords > 0 {
				return fmt.Errorf("%d of %d records rejected", result.FailedRecords, result.TotalRecords)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&batchSize, "batch-size", 500, "Number of records stored per batch")
	cmd.Flags().BoolVar(&migrate, "migrate", false, "Apply pending migrations before importing")
	return cmd
}

func printImport(out io.Writer, result *services.ImportResult) {
	fmt.Fprintln(out, strings.Repeat("=", 80))
	fmt.Fprintln(out, "IMPORT COMPLETE")
	fmt.Fprintln(out, strings.Repeat("=", 80))
	fmt.Fprintf(out, "Total Files:        %d\n", result.TotalFiles)
	fmt.Fprintf(out, "Total Records:      %d\n", result.TotalRecords)
	fmt.Fprintf(out, "Successful Records: %d\n", result.SuccessfulRecords)
	fmt.Fprintf(out, "Failed Records:     %d\n", result.FailedRecords)
	fmt.Fprintf(out, "Duration:           %v\n", result.Duration)

	if len(result.Errors) > 0 {
		fmt.Fprintf(out, "\nErrors (%d):\n", len(result.Errors))
		for i, msg := range result.Errors {
			if i < maxListedErrors {
				fmt.Fprintf(out, "  - %s\n", msg)
			}
		}
		if len(result.Errors) > maxListedErrors {
			fmt.Fprintf(out, "  ... and %d more errors\n", len(result.Errors)-maxListedErrors)
		}
	}
}
