package db

import (
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"strconv"
	"strings"
	"time"

	_ "github.com/lib/pq"
	"github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"

	"github.com/unclebandit/journey-engine/internal/config"
)

// Dialect selects placeholder style and migration set.
type Dialect string

const (
	Postgres Dialect = "postgres"
	SQLite   Dialect = "sqlite"
)

//go:embed migrations
var migrationFS embed.FS

// Open connects to the configured database, pings it and applies the
// embedded migrations for its dialect.
func Open(cfg config.DBConfig, log logrus.FieldLogger) (*sql.DB, Dialect, error) {
	dialect := Dialect(cfg.Driver)
	log.WithField("dsn", cfg.Redacted()).Info("connecting to database")

	conn, err := sql.Open(cfg.Driver, cfg.DSN())
	if err != nil {
		return nil, "", fmt.Errorf("open %s: %w", cfg.Driver, err)
	}
	if dialect == SQLite {
		// one writer at a time; avoids SQLITE_BUSY under concurrent requests
		conn.SetMaxOpenConns(1)
	} else {
		conn.SetMaxOpenConns(cfg.MaxOpen)
		conn.SetMaxIdleConns(cfg.MaxIdle)
		conn.SetConnMaxLifetime(time.Hour)
	}

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, "", fmt.Errorf("ping %s: %w", cfg.Driver, err)
	}
	if err := Migrate(conn, dialect); err != nil {
		conn.Close()
		return nil, "", err
	}

	log.Info("connected to database")
	return conn, dialect, nil
}

// OpenSQLite opens a SQLite file with migrations applied. Used by tools
// and tests that do not need a server.
func OpenSQLite(path string) (*sql.DB, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("sqlite path is required")
	}
	cfg := config.DBConfig{Driver: string(SQLite), SQLitePath: path}
	conn, err := sql.Open("sqlite", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	conn.SetMaxOpenConns(1)
	if err := Migrate(conn, SQLite); err != nil {
		conn.Close()
		return nil, err
	}
	return conn, nil
}

// Migrate applies every not yet applied migration file of the dialect,
// in file name order.
func Migrate(conn *sql.DB, dialect Dialect) error {
	root := "migrations/" + string(dialect)
	entries, err := fs.ReadDir(migrationFS, root)
	if err != nil {
		return fmt.Errorf("read migrations for %s: %w", dialect, err)
	}

	var files []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".sql") {
			files = append(files, e.Name())
		}
	}
	sort.Strings(files)

	if _, err := conn.Exec(`CREATE TABLE IF NOT EXISTS schema_migrations (
		name TEXT PRIMARY KEY,
		applied_at BIGINT NOT NULL
	)`); err != nil {
		return fmt.Errorf("ensure migration table: %w", err)
	}

	for _, name := range files {
		var count int
		if err := conn.QueryRow(Rebind(dialect, `SELECT COUNT(*) FROM schema_migrations WHERE name = ?`), name).Scan(&count); err != nil {
			return fmt.Errorf("check migration %s: %w", name, err)
		}
		if count > 0 {
			continue
		}

		content, err := fs.ReadFile(migrationFS, root+"/"+name)
		if err != nil {
			return fmt.Errorf("read migration %s: %w", name, err)
		}

		tx, err := conn.Begin()
		if err != nil {
			return fmt.Errorf("begin migration %s: %w", name, err)
		}
		if _, err := tx.Exec(string(content)); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("exec migration %s: %w", name, err)
		}
		if _, err := tx.Exec(Rebind(dialect, `INSERT INTO schema_migrations (name, applied_at) VALUES (?, ?)`), name, time.Now().UTC().UnixMilli()); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("record migration %s: %w", name, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration %s: %w", name, err)
		}
	}
	return nil
}

// Rebind rewrites ? placeholders to $n for Postgres.
func Rebind(dialect Dialect, query string) string {
	if dialect != Postgres {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
