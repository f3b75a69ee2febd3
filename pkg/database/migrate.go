package database

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"slices"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"exposure-platform/pkg/logging"
)

//go:embed migrations/*/*.sql
var migrationsFS embed.FS

// Direction selects which half of the migrations runs.
type Direction string

const (
	Up   Direction = "up"
	Down Direction = "down"
)

// ParseDirection validates a migration direction.
func ParseDirection(s string) (Direction, error) {
	switch d := Direction(s); d {
	case Up, Down:
		return d, nil
	}
	return "", fmt.Errorf("migration direction must be up or down, got %q", s)
}

// migrations lists the names of the dialect's migrations without their
// .up.sql / .down.sql suffix, in apply order.
func migrations(dialect string) ([]string, error) {
	entries, err := fs.ReadDir(migrationsFS, path.Join("migrations", dialect))
	if err != nil {
		return nil, fmt.Errorf("failed to read migrations: %w", err)
	}
	var names []string
	for _, e := range entries {
		if name, ok := strings.CutSuffix(e.Name(), ".up.sql"); ok && !e.IsDir() {
			names = append(names, name)
		}
	}
	slices.Sort(names)
	return names, nil
}

func readMigration(dialect, name string, dir Direction) (string, error) {
	b, err := migrationsFS.ReadFile(path.Join("migrations", dialect, name+"."+string(dir)+".sql"))
	if err != nil {
		return "", fmt.Errorf("failed to read migration %s: %w", name, err)
	}
	return string(b), nil
}

// Migrate applies the embedded migrations of the connection's dialect in dir
// and returns the names it ran. Up skips migrations already recorded in
// schema_migrations; down reverts the recorded ones, newest first.
func (d *DB) Migrate(ctx context.Context, dir Direction) ([]string, error) {
	if _, err := d.ExecContext(ctx, "create_schema_migrations", `CREATE TABLE IF NOT EXISTS schema_migrations (
		name TEXT PRIMARY KEY,
		applied_at TEXT NOT NULL
	)`); err != nil {
		return nil, fmt.Errorf("failed to create schema_migrations: %w", err)
	}

	dialect := d.config.Driver.Dialect()
	names, err := migrations(dialect)
	if err != nil {
		return nil, err
	}

	var applied []string
	if err := d.SelectContext(ctx, "list_migrations", &applied, `SELECT name FROM schema_migrations`); err != nil {
		return nil, fmt.Errorf("failed to list applied migrations: %w", err)
	}

	var ran []string
	switch dir {
	case Up:
		for _, name := range names {
			if slices.Contains(applied, name) {
				continue
			}
			if err := d.runMigration(ctx, dialect, name, Up); err != nil {
				return ran, err
			}
			ran = append(ran, name)
		}
	case Down:
		for _, name := range slices.Backward(names) {
			if !slices.Contains(applied, name) {
				continue
			}
			if err := d.runMigration(ctx, dialect, name, Down); err != nil {
				return ran, err
			}
			ran = append(ran, name)
		}
	default:
		return nil, fmt.Errorf("unknown migration direction %q", dir)
	}
	return ran, nil
}

func (d *DB) runMigration(ctx context.Context, dialect, name string, dir Direction) error {
	script, err := readMigration(dialect, name, dir)
	if err != nil {
		return err
	}

	err = d.WithTx(ctx, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, script); err != nil {
			return err
		}
		if dir == Down {
			_, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM schema_migrations WHERE name = ?`), name)
			return err
		}
		_, err := tx.ExecContext(ctx, tx.Rebind(`INSERT INTO schema_migrations (name, applied_at) VALUES (?, ?)`),
			name, time.Now().UTC().Format(time.RFC3339))
		return err
	})
	if err != nil {
		d.metrics.RecordDBError("migration_error")
		return fmt.Errorf("failed to apply migration %s (%s): %w", name, dir, err)
	}

	d.logger.Info(ctx, "[DB_MIGRATE] Migration applied", logging.Fields{
		"migration": name,
		"direction": dir,
		"dialect":   dialect,
	})
	return nil
}

// ErrNoMigrations is returned when a dialect has no embedded migrations.
var ErrNoMigrations = errors.New("no migrations embedded")

// Pending lists the up migrations not yet applied.
func (d *DB) Pending(ctx context.Context) ([]string, error) {
	names, err := migrations(d.config.Driver.Dialect())
	if err != nil {
		return nil, err
	}
	if len(names) == 0 {
		return nil, ErrNoMigrations
	}
	var applied []string
	err = d.SelectContext(ctx, "list_migrations", &applied, `SELECT name FROM schema_migrations`)
	if err != nil {
		// a database that was never migrated has no bookkeeping table yet
		return names, nil
	}
	return slices.DeleteFunc(names, func(n string) bool { return slices.Contains(applied, n) }), nil
}
