package config

import (
	"net/url"
	"strings"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DB_DRIVER", "postgres")
	t.Setenv("DB_PASSWORD", "secret")
	t.Setenv("OWNER_MATCH", "display-name")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.DB.MaxOpen <= 0 {
		t.Errorf("expected positive pool size, got %d", cfg.DB.MaxOpen)
	}
	if strings.Contains(cfg.DB.Redacted(), "secret") {
		t.Errorf("password leaked in %q", cfg.DB.Redacted())
	}
	if !strings.Contains(cfg.DB.DSN(), ":secret@") {
		t.Errorf("dsn missing password: %q", cfg.DB.DSN())
	}
}

func TestLoadRejectsUnknownValues(t *testing.T) {
	t.Setenv("DB_DRIVER", "mysql")
	if _, err := Load(); err == nil {
		t.Fatalf("expected unknown driver to be rejected")
	}

	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("SQLITE_PATH", "x.db")
	t.Setenv("OWNER_MATCH", "nickname")
	if _, err := Load(); err == nil {
		t.Fatalf("expected unknown owner match to be rejected")
	}
}

func TestGetEnvAsInt(t *testing.T) {
	t.Setenv("SOME_INT", "12")
	if got := getEnvAsInt("SOME_INT", 3); got != 12 {
		t.Errorf("got %d", got)
	}
	t.Setenv("SOME_INT", "twelve")
	if got := getEnvAsInt("SOME_INT", 3); got != 3 {
		t.Errorf("got %d", got)
	}
}

func TestDSNEscapesCredentials(t *testing.T) {
	d := DBConfig{
		Driver: "postgres", User: "app", Password: "p@ss/w:rd?#",
		Host: "db.internal", Port: "5433", Name: "journeys", SSLMode: "require",
	}
	u, err := url.Parse(d.DSN())
	if err != nil {
		t.Fatalf("dsn does not parse: %v", err)
	}
	if pw, _ := u.User.Password(); pw != d.Password || u.User.Username() != "app" {
		t.Errorf("credentials did not survive: %q", d.DSN())
	}
	if u.Host != "db.internal:5433" || u.Path != "/journeys" || u.Query().Get("sslmode") != "require" {
		t.Errorf("unexpected dsn %q", d.DSN())
	}
}
