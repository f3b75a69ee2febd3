package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"exposure-platform/pkg/database"
)

func newMigrateCmd(root *rootFlags) *cobra.Command {
	var direction string
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or roll back the record store schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := database.ParseDirection(direction)
			if err != nil {
				return err
			}

			a, err := openApp(cmd.Context(), root.config, root.verbose)
			if err != nil {
				return err
			}
			defer a.Close()

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Connected to %s database\n", a.db.Driver())

			if dryRun {
				pending, err := a.db.Pending(cmd.Context())
				if err != nil {
					return err
				}
				if len(pending) == 0 {
					fmt.Fprintln(out, "Schema is up to date")
				}
				for _, name := range pending {
					fmt.Fprintf(out, "Pending migration: %s\n", name)
				}
				return nil
			}

			ran, err := a.db.Migrate(cmd.Context(), dir)
			if err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}
			for _, name := range ran {
				fmt.Fprintf(out, "Ran migration %s: %s\n", dir, name)
			}
			fmt.Fprintf(out, "Migration completed successfully (%d applied)\n", len(ran))
			return nil
		},
	}

	cmd.Flags().StringVar(&direction, "direction", "up", "Migration direction: up or down")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "List pending migrations without applying them")
	return cmd
}
