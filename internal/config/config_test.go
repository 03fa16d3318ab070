package config

import (
	"os"
	"testing"
)

func unsetAll() {
	_ = os.Unsetenv("CARDKEEP_DB_DRIVER")
	_ = os.Unsetenv("CARDKEEP_SQLITE_PATH")
	_ = os.Unsetenv("CARDKEEP_POSTGRES_DSN")
	_ = os.Unsetenv("CARDKEEP_HTTP_PORT")
	_ = os.Unsetenv("CARDKEEP_REMOTE_URL")
}

func TestConfigLoad_Defaults(t *testing.T) {
	unsetAll()

	cfg, err := New()
	if err != nil {
		t.Fatalf("config load: %v", err)
	}
	if cfg.HTTPPort != 8080 {
		t.Fatalf("unexpected default port: %d", cfg.HTTPPort)
	}
	if cfg.DBDriver != "sqlite" || cfg.SQLitePath != "cardkeep.db" {
		t.Fatalf("unexpected default driver config: %s %s", cfg.DBDriver, cfg.SQLitePath)
	}
	if cfg.RemoteURL != "" || cfg.RemoteTimeoutSecs != 30 {
		t.Fatalf("unexpected default remote config: %+v", cfg)
	}
}

func TestResolveDefaults_AutoPicksPostgresWithDSN(t *testing.T) {
	unsetAll()
	_ = os.Setenv("CARDKEEP_POSTGRES_DSN", "postgres://localhost/cardkeep")
	defer unsetAll()

	cfg, err := New()
	if err != nil {
		t.Fatalf("config load: %v", err)
	}
	if cfg.DBDriver != "postgres" {
		t.Fatalf("auto driver with DSN should be postgres, got %s", cfg.DBDriver)
	}
}

func TestResolveDefaults_ExplicitDriverOverride(t *testing.T) {
	unsetAll()
	_ = os.Setenv("CARDKEEP_DB_DRIVER", "sqlite")
	_ = os.Setenv("CARDKEEP_POSTGRES_DSN", "postgres://localhost/cardkeep")
	defer unsetAll()

	cfg, err := New()
	if err != nil {
		t.Fatalf("config load: %v", err)
	}
	if cfg.DBDriver != "sqlite" {
		t.Fatalf("explicit driver lost, got %s", cfg.DBDriver)
	}
}

func TestResolveDefaults_RejectsUnknownDriver(t *testing.T) {
	unsetAll()
	_ = os.Setenv("CARDKEEP_DB_DRIVER", "oracle")
	defer unsetAll()

	if _, err := New(); err == nil {
		t.Fatalf("expected error for unknown driver")
	}
}

func TestResolveDefaults_PostgresNeedsDSN(t *testing.T) {
	unsetAll()
	_ = os.Setenv("CARDKEEP_DB_DRIVER", "postgres")
	defer unsetAll()

	if _, err := New(); err == nil {
		t.Fatalf("expected error for postgres driver without DSN")
	}
}
