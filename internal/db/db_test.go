package db

import (
	"strings"
	"testing"

	"github.com/zulandar/groundwork/internal/config"
)

func TestDSN(t *testing.T) {
	cfg := config.DatabaseConfig{
		Driver:   "mysql",
		Host:     "db.internal",
		Port:     3307,
		User:     "groundwork",
		Password: "s3cret",
		Database: "groundwork_acme",
	}
	dsn := DSN(cfg)
	for _, want := range []string{"groundwork:s3cret@", "tcp(db.internal:3307)", "/groundwork_acme", "parseTime=true"} {
		if !strings.Contains(dsn, want) {
			t.Errorf("DSN = %q, missing %q", dsn, want)
		}
	}
}

func TestConnect_SQLiteMemory(t *testing.T) {
	gdb, err := Connect(config.DatabaseConfig{Driver: "sqlite", Path: ":memory:"})
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	if err := AutoMigrate(gdb); err != nil {
		t.Fatalf("AutoMigrate: %v", err)
	}
	for _, table := range []string{"projects", "phases"} {
		if !gdb.Migrator().HasTable(table) {
			t.Errorf("table %q missing after migrate", table)
		}
	}
}

func TestConnect_UnknownDriver(t *testing.T) {
	_, err := Connect(config.DatabaseConfig{Driver: "postgres"})
	if err == nil {
		t.Fatal("Connect with unknown driver: want error")
	}
}
