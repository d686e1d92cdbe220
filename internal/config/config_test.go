package config

import (
	"strings"
	"testing"
)

func TestParse_Minimal(t *testing.T) {
	cfg, err := Parse([]byte("org: acme\n"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.Org != "acme" {
		t.Errorf("Org = %q, want acme", cfg.Org)
	}
	if cfg.Database.Driver != "sqlite" {
		t.Errorf("Database.Driver = %q, want sqlite default", cfg.Database.Driver)
	}
	if cfg.Database.Path != "groundwork.db" {
		t.Errorf("Database.Path = %q, want groundwork.db default", cfg.Database.Path)
	}
	if cfg.Database.Database != "groundwork_acme" {
		t.Errorf("Database.Database = %q, want groundwork_acme", cfg.Database.Database)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want 8080 default", cfg.Server.Port)
	}
	if cfg.Notify.DigestCron != "0 7 * * 1-5" {
		t.Errorf("Notify.DigestCron = %q, want weekday-morning default", cfg.Notify.DigestCron)
	}
}

func TestParse_MySQL(t *testing.T) {
	yaml := `
org: acme
database:
  driver: mysql
  host: db.internal
  port: 3307
  user: groundwork
  password: s3cret
`
	cfg, err := Parse([]byte(yaml))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.Database.Driver != "mysql" || cfg.Database.Host != "db.internal" || cfg.Database.Port != 3307 {
		t.Errorf("database config = %+v", cfg.Database)
	}
}

func TestParse_MissingOrg(t *testing.T) {
	_, err := Parse([]byte("server:\n  port: 9000\n"))
	if err == nil {
		t.Fatal("Parse without org: want error")
	}
	if !strings.Contains(err.Error(), "org is required") {
		t.Errorf("error = %v, want org-is-required", err)
	}
}

func TestParse_BadDriver(t *testing.T) {
	_, err := Parse([]byte("org: acme\ndatabase:\n  driver: postgres\n"))
	if err == nil || !strings.Contains(err.Error(), "driver") {
		t.Errorf("Parse with bad driver: err = %v", err)
	}
}

func TestParse_SlackNeedsChannel(t *testing.T) {
	yaml := `
org: acme
notify:
  slack:
    bot_token: xoxb-123
`
	_, err := Parse([]byte(yaml))
	if err == nil || !strings.Contains(err.Error(), "channel_id") {
		t.Errorf("Parse with slack token but no channel: err = %v", err)
	}
}

func TestParse_InvalidYAML(t *testing.T) {
	_, err := Parse([]byte("org: [unclosed"))
	if err == nil {
		t.Fatal("Parse invalid yaml: want error")
	}
}
