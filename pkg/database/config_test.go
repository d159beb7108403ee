package database_test

import (
	"strings"
	"testing"

	"github.com/JaimeStill/loadextract/pkg/database"
)

func TestFinalizeDefaults(t *testing.T) {
	cfg := database.Config{Name: "loads", User: "worker"}
	if err := cfg.Finalize(nil); err != nil {
		t.Fatalf("finalize failed: %v", err)
	}

	tests := []struct {
		name     string
		got      any
		expected any
	}{
		{"host", cfg.Host, "localhost"},
		{"port", cfg.Port, 5432},
		{"ssl_mode", cfg.SSLMode, "disable"},
		{"max_open_conns", cfg.MaxOpenConns, 25},
		{"max_idle_conns", cfg.MaxIdleConns, 5},
		{"conn_max_lifetime", cfg.ConnMaxLifetime, "15m"},
		{"conn_timeout", cfg.ConnTimeout, "5s"},
		{"application_name", cfg.ApplicationName, "loadextract-worker"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.expected {
				t.Errorf("got %v, want %v", tt.got, tt.expected)
			}
		})
	}
}

func TestFinalizeEnvOverrides(t *testing.T) {
	t.Setenv("TEST_DB_HOST", "db.internal")
	t.Setenv("TEST_DB_PORT", "6432")
	t.Setenv("TEST_DB_NAME", "envdb")
	t.Setenv("TEST_DB_USER", "envuser")
	t.Setenv("TEST_DB_APP", "extract-2")

	env := &database.Env{
		Host:            "TEST_DB_HOST",
		Port:            "TEST_DB_PORT",
		Name:            "TEST_DB_NAME",
		User:            "TEST_DB_USER",
		ApplicationName: "TEST_DB_APP",
	}

	cfg := database.Config{}
	if err := cfg.Finalize(env); err != nil {
		t.Fatalf("finalize failed: %v", err)
	}

	if cfg.Host != "db.internal" || cfg.Port != 6432 {
		t.Errorf("host/port: got %s:%d", cfg.Host, cfg.Port)
	}
	if cfg.Name != "envdb" || cfg.User != "envuser" {
		t.Errorf("name/user: got %s/%s", cfg.Name, cfg.User)
	}
	if !strings.Contains(cfg.Dsn(), "application_name=extract-2") {
		t.Errorf("dsn missing application name: %s", cfg.Dsn())
	}
}

func TestFinalizeValidation(t *testing.T) {
	tests := []struct {
		name string
		cfg  database.Config
		want string
	}{
		{"missing name", database.Config{User: "u"}, "name required"},
		{"missing user", database.Config{Name: "n"}, "user required"},
		{"idle exceeds open", database.Config{Name: "n", User: "u", MaxOpenConns: 2, MaxIdleConns: 4}, "max_idle_conns"},
		{"bad lifetime", database.Config{Name: "n", User: "u", ConnMaxLifetime: "forever"}, "conn_max_lifetime"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Finalize(nil)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}

func TestMergeOverlay(t *testing.T) {
	base := database.Config{Host: "localhost", Port: 5432, Name: "loads"}
	base.Merge(&database.Config{Host: "prod", ApplicationName: "worker-a"})

	if base.Host != "prod" {
		t.Errorf("host: got %s, want prod", base.Host)
	}
	if base.Port != 5432 {
		t.Errorf("port should be preserved: got %d", base.Port)
	}
	if base.ApplicationName != "worker-a" {
		t.Errorf("application_name: got %s", base.ApplicationName)
	}
}
