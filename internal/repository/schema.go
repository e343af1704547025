package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
)

type Dialect string

const (
	DialectSQLite   Dialect = "sqlite3"
	DialectPostgres Dialect = "pgx"
)

// ParseDialect maps a database/sql driver name onto a dialect.
func ParseDialect(driver string) (Dialect, error) {
	switch driver {
	case "sqlite3":
		return DialectSQLite, nil
	case "pgx", "postgres", "postgresql":
		return DialectPostgres, nil
	}
	return "", fmt.Errorf("unsupported database driver %q", driver)
}

// Schema is valid for both SQLite and Postgres. Timestamps are fixed-width UTC
// text so lexical and chronological order agree, and money is decimal text.
const Schema = `
CREATE TABLE IF NOT EXISTS calls (
	id               TEXT PRIMARY KEY,
	campaign_id      TEXT NOT NULL,
	campaign_name    TEXT NOT NULL DEFAULT '',
	agent_name       TEXT NOT NULL,
	caller_number    TEXT NOT NULL DEFAULT '',
	duration_seconds INTEGER NOT NULL,
	recording_url    TEXT NOT NULL DEFAULT '',
	started_at       TEXT NOT NULL,
	ended_at         TEXT,
	status           TEXT NOT NULL,
	disposition      TEXT NOT NULL,
	revenue          TEXT NOT NULL DEFAULT '0',
	cost             TEXT NOT NULL DEFAULT '0',
	updated_at       TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_calls_started_at ON calls (started_at);
CREATE TABLE IF NOT EXISTS transcripts (
	call_id    TEXT PRIMARY KEY REFERENCES calls (id),
	request_id TEXT NOT NULL DEFAULT '',
	body       TEXT NOT NULL,
	created_at TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS quality_analyses (
	call_id        TEXT NOT NULL REFERENCES calls (id),
	version        INTEGER NOT NULL,
	kind           TEXT NOT NULL,
	scorer_version TEXT NOT NULL,
	overall_score  DOUBLE PRECISION NOT NULL,
	overall_rating TEXT NOT NULL,
	body           TEXT NOT NULL,
	created_at     TEXT NOT NULL,
	PRIMARY KEY (call_id, version)
)`

// EnsureSchema creates missing tables and indexes.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	for _, stmt := range strings.Split(Schema, ";") {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}

// rebind rewrites ? placeholders as $1, $2, ... for Postgres.
func (d Dialect) rebind(query string) string {
	if d != DialectPostgres {
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

func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.Repeat("?, ", n-1) + "?"
}
