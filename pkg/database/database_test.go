package database

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"exposure-platform/pkg/logging"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	cfg := &Config{
		Driver:          DriverSQLite,
		Path:            filepath.Join(t.TempDir(), "study.db"),
		MonitorInterval: 10 * time.Millisecond,
	}
	db, err := Open(context.Background(), cfg, logging.NewDiscardLogger(), nil)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestParseDriver(t *testing.T) {
	tests := []struct {
		name    string
		want    Driver
		wantErr bool
	}{
		{name: "", want: DriverPostgres},
		{name: "postgres", want: DriverPostgres},
		{name: "pgx", want: DriverPgx},
		{name: "sqlite", want: DriverSQLite},
		{name: "mysql", wantErr: true},
	}
	for _, tt := range tests {
		got, err := ParseDriver(tt.name)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseDriver(%q) error = %v, wantErr %v", tt.name, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseDriver(%q) = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestConfig_DSN(t *testing.T) {
	tests := []struct {
		name        string
		cfg         Config
		wantErr     bool
		checkValues func(t *testing.T, dsn string)
	}{
		{
			name: "postgres",
			cfg:  Config{Driver: DriverPgx, Host: "db", Port: 5432, User: "u", Password: "p", Database: "study", SSLMode: "disable"},
			checkValues: func(t *testing.T, dsn string) {
				want := "host=db port=5432 user=u password=p dbname=study sslmode=disable"
				if dsn != want {
					t.Errorf("DSN() = %q, want %q", dsn, want)
				}
			},
		},
		{
			name: "sqlite",
			cfg:  Config{Driver: DriverSQLite, Path: "/tmp/s.db"},
			checkValues: func(t *testing.T, dsn string) {
				if dsn[:len("file:/tmp/s.db?")] != "file:/tmp/s.db?" {
					t.Errorf("DSN() = %q", dsn)
				}
			},
		},
		{name: "sqlite without path", cfg: Config{Driver: DriverSQLite}, wantErr: true},
		{name: "unknown driver", cfg: Config{Driver: "oracle"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dsn, err := tt.cfg.DSN()
			if (err != nil) != tt.wantErr {
				t.Fatalf("DSN() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.checkValues != nil {
				tt.checkValues(t, dsn)
			}
		})
	}
}

func TestMigrate_SQLite(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	pending, err := db.Pending(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(pending) != 1 {
		t.Fatalf("Pending() = %v, want one migration", pending)
	}

	ran, err := db.Migrate(ctx, Up)
	if err != nil {
		t.Fatalf("Migrate(up) error = %v", err)
	}
	if len(ran) != 1 || ran[0] != "001_create_records" {
		t.Errorf("Migrate(up) ran %v", ran)
	}

	ran, err = db.Migrate(ctx, Up)
	if err != nil {
		t.Fatal(err)
	}
	if len(ran) != 0 {
		t.Errorf("second Migrate(up) ran %v, want nothing", ran)
	}

	if _, err := db.ExecContext(ctx, "probe", `INSERT INTO records (kind, id, payload, updated_at) VALUES (?, ?, ?, ?)`,
		"worker", "a", `{}`, time.Now()); err != nil {
		t.Fatalf("records table missing: %v", err)
	}

	ran, err = db.Migrate(ctx, Down)
	if err != nil {
		t.Fatalf("Migrate(down) error = %v", err)
	}
	if len(ran) != 1 {
		t.Errorf("Migrate(down) ran %v", ran)
	}
	if _, err := db.ExecContext(ctx, "probe", `SELECT 1 FROM records`); err == nil {
		t.Error("records table should be gone after down")
	}
}

func TestDB_HealthCheckAndClose(t *testing.T) {
	db := openTestDB(t)

	if err := db.HealthCheck(context.Background()); err != nil {
		t.Fatalf("HealthCheck() error = %v", err)
	}

	// let the monitor tick at least once
	time.Sleep(30 * time.Millisecond)

	if err := db.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	select {
	case <-db.done:
	default:
		t.Error("pool monitor still running after Close")
	}
	if err := db.HealthCheck(context.Background()); err == nil {
		t.Error("HealthCheck() after Close should fail")
	}
}
