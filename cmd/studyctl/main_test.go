package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"exposure-platform/internal/config"
	"exposure-platform/internal/models"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func useSQLite(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ctl.db")
	t.Setenv(config.EnvConfigFile, "")
	t.Setenv("STUDY_DB_DRIVER", "sqlite")
	t.Setenv("STUDY_DB_PATH", path)
	t.Setenv("STUDY_LOG_LEVEL", "error")
	return path
}

func TestConvertCmd(t *testing.T) {
	tests := []struct {
		name        string
		args        []string
		wantErr     bool
		checkValues func(t *testing.T, out string)
	}{
		{
			name: "length",
			args: []string{"convert", "length", "1", "km", "m"},
			checkValues: func(t *testing.T, out string) {
				if strings.TrimSpace(out) != "1000 m" {
					t.Errorf("output = %q, want 1000 m", out)
				}
			},
		},
		{
			name: "list",
			args: []string{"convert", "--list"},
			checkValues: func(t *testing.T, out string) {
				if !strings.Contains(out, "temperature") || !strings.Contains(out, "mass") {
					t.Errorf("output = %q, want every family", out)
				}
			},
		},
		{name: "bad value", args: []string{"convert", "length", "far", "km", "m"}, wantErr: true},
		{name: "unknown unit", args: []string{"convert", "length", "1", "km", "furlong"}, wantErr: true},
		{name: "missing args", args: []string{"convert", "length"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := run(t, tt.args...)
			if (err != nil) != tt.wantErr {
				t.Fatalf("error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.checkValues != nil {
				tt.checkValues(t, out)
			}
		})
	}
}

func TestMigrateCmd(t *testing.T) {
	useSQLite(t)

	out, err := run(t, "migrate", "--dry-run")
	if err != nil {
		t.Fatalf("migrate --dry-run error = %v", err)
	}
	if !strings.Contains(out, "Pending migration: 001_create_records") {
		t.Errorf("dry run output = %q", out)
	}

	out, err = run(t, "migrate")
	if err != nil {
		t.Fatalf("migrate error = %v", err)
	}
	if !strings.Contains(out, "(1 applied)") {
		t.Errorf("migrate output = %q", out)
	}

	out, _ = run(t, "migrate", "--dry-run")
	if !strings.Contains(out, "Schema is up to date") {
		t.Errorf("dry run after migrate = %q", out)
	}

	if _, err := run(t, "migrate", "--direction", "sideways"); err == nil {
		t.Error("unknown direction should fail")
	}
}

func TestImportCmd(t *testing.T) {
	useSQLite(t)
	dir := t.TempDir()

	var w models.Worker
	w.Init()
	w.WorkerID = "W1"
	rec, err := models.Encode(&w, time.Now())
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "worker.jsonl"), append(rec.Payload, '\n'), 0o600); err != nil {
		t.Fatal(err)
	}

	out, err := run(t, "import", "--migrate", dir)
	if err != nil {
		t.Fatalf("import error = %v\n%s", err, out)
	}
	if !strings.Contains(out, "Successful Records: 1") {
		t.Errorf("import output = %q", out)
	}

	// a rejected record fails the command
	if err := os.WriteFile(filepath.Join(dir, "worker.jsonl"), []byte(`{"worker_id":"W2"}`+"\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := run(t, "import", dir); err == nil {
		t.Error("import with rejected records should fail")
	}
}
