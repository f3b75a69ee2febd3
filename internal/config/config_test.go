package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"exposure-platform/internal/validation"
	"exposure-platform/pkg/database"
)

func envOf(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestDefault_IsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Errorf("Default().Validate() error = %v", err)
	}
}

func TestLoadConfig_FileThenEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "study.yaml")
	yml := `
server:
  port: 9000
  read_timeout: 3s
database:
  driver: sqlite
  path: /var/lib/study/records.db
logging:
  level: debug
messages:
  required: "%s fehlt"
`
	if err := os.WriteFile(path, []byte(yml), 0o600); err != nil {
		t.Fatal(err)
	}

	t.Setenv("STUDY_CONFIG", path)
	t.Setenv("STUDY_SERVER_PORT", "9100")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.Server.Port != 9100 {
		t.Errorf("Server.Port = %d, want 9100 from env", cfg.Server.Port)
	}
	if cfg.Server.ReadTimeout != 3*time.Second {
		t.Errorf("Server.ReadTimeout = %v, want 3s from file", cfg.Server.ReadTimeout)
	}
	if cfg.Server.WriteTimeout != 15*time.Second {
		t.Errorf("Server.WriteTimeout = %v, want the default", cfg.Server.WriteTimeout)
	}
	if cfg.Database.Driver != "sqlite" || cfg.Database.Path != "/var/lib/study/records.db" {
		t.Errorf("Database = %+v", cfg.Database)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}

	dbc := cfg.DatabaseConfig()
	if dbc.Driver != database.DriverSQLite {
		t.Errorf("DatabaseConfig().Driver = %q", dbc.Driver)
	}

	got := cfg.Catalog().Message(validation.MsgRequired, "Worker ID")
	if got != "Worker ID fehlt" {
		t.Errorf("Catalog() required = %q", got)
	}
	got = cfg.Catalog().Message(validation.MsgNotNumeric, "Age")
	if got != "Age must be a number" {
		t.Errorf("Catalog() fallback = %q", got)
	}
}

func TestApplyEnv_BadValues(t *testing.T) {
	cfg := Default()
	err := cfg.applyEnv(envOf(map[string]string{
		"STUDY_SERVER_PORT":     "eighty",
		"STUDY_DB_AUTO_MIGRATE": "maybe",
	}))
	if err == nil {
		t.Fatal("applyEnv() should fail")
	}
	for _, key := range []string{"STUDY_SERVER_PORT", "STUDY_DB_AUTO_MIGRATE"} {
		if !strings.Contains(err.Error(), key) {
			t.Errorf("error %q does not name %s", err, key)
		}
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{name: "bad port", mutate: func(c *Config) { c.Server.Port = 0 }, wantErr: "server port"},
		{name: "bad driver", mutate: func(c *Config) { c.Database.Driver = "mysql" }, wantErr: "unsupported database driver"},
		{name: "sqlite without path", mutate: func(c *Config) { c.Database.Driver = "sqlite"; c.Database.Path = "" }, wantErr: "path is required"},
		{name: "idle above open", mutate: func(c *Config) { c.Database.MaxIdleConns = 100 }, wantErr: "max_idle_conns"},
		{name: "bad level", mutate: func(c *Config) { c.Logging.Level = "loud" }, wantErr: "unknown log level"},
		{name: "bad message key", mutate: func(c *Config) { c.Messages = map[string]string{"nope": "x"} }, wantErr: "unknown message key"},
		{name: "no buffer", mutate: func(c *Config) { c.Events.BufferSize = 0 }, wantErr: "buffer_size"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want it to mention %q", err, tt.wantErr)
			}
		})
	}
}
