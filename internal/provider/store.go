package provider

import (
	"context"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

// Supported database drivers.
const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "postgres"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS {p}menu (
	id        BIGINT PRIMARY KEY,
	alias     TEXT NOT NULL DEFAULT '',
	path      TEXT NOT NULL DEFAULT '',
	link      TEXT NOT NULL DEFAULT '',
	type      TEXT NOT NULL DEFAULT 'component',
	parent_id BIGINT NOT NULL DEFAULT 0,
	level     INTEGER NOT NULL DEFAULT 0,
	language  TEXT NOT NULL DEFAULT '*',
	menutype  TEXT NOT NULL DEFAULT '',
	published INTEGER NOT NULL DEFAULT 1,
	client_id INTEGER NOT NULL DEFAULT 0,
	lft       BIGINT NOT NULL DEFAULT 0,
	source    TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS {p}categories (
	id     BIGINT PRIMARY KEY,
	alias  TEXT NOT NULL DEFAULT '',
	path   TEXT NOT NULL DEFAULT '',
	source TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS {p}content (
	id       BIGINT PRIMARY KEY,
	alias    TEXT NOT NULL DEFAULT '',
	catid    BIGINT NOT NULL DEFAULT 0,
	modified TIMESTAMP NULL,
	created  TIMESTAMP NULL,
	language TEXT NOT NULL DEFAULT '*',
	state    INTEGER NOT NULL DEFAULT 1,
	source   TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS {p}snapshot_files (
	path      TEXT PRIMARY KEY,
	checksum  TEXT NOT NULL DEFAULT '',
	synced_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_{p}menu_lft ON {p}menu(lft);
CREATE INDEX IF NOT EXISTS idx_{p}menu_source ON {p}menu(source);
CREATE INDEX IF NOT EXISTS idx_{p}content_catid ON {p}content(catid);
CREATE INDEX IF NOT EXISTS idx_{p}content_source ON {p}content(source);
`

// Config describes the database connection.
type Config struct {
	Driver      string
	DSN         string
	TablePrefix string
	ApplySchema bool
}

// Store reads navigation and content records from a SQL database laid out
// like the CMS tables (menu, categories, content), and writes imported
// snapshots into the same tables.
type Store struct {
	db     *sqlx.DB
	sb     sq.StatementBuilderType
	prefix string
}

var _ DataProvider = (*Store)(nil)

// Open connects to the database and, if requested, applies the schema.
func Open(ctx context.Context, cfg Config) (*Store, error) {
	dsn := cfg.DSN
	if cfg.Driver == DriverSQLite {
		dsn = sqliteDSN(dsn)
	}
	db, err := sqlx.Open(cfg.Driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("provider: open db: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("provider: ping: %w", err)
	}
	s := New(db, cfg.TablePrefix)
	if cfg.ApplySchema {
		if err := s.ApplySchema(ctx); err != nil {
			db.Close()
			return nil, err
		}
	}
	return s, nil
}

// New wraps an open connection. Placeholders follow the driver name.
func New(db *sqlx.DB, tablePrefix string) *Store {
	var ph sq.PlaceholderFormat = sq.Question
	if db.DriverName() == DriverPostgres {
		ph = sq.Dollar
	}
	return &Store{
		db:     db,
		sb:     sq.StatementBuilder.PlaceholderFormat(ph),
		prefix: tablePrefix,
	}
}

// ApplySchema creates the tables if they do not exist.
func (s *Store) ApplySchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, strings.ReplaceAll(schemaSQL, "{p}", s.prefix)); err != nil {
		return fmt.Errorf("provider: apply schema: %w", err)
	}
	return nil
}

// Ping checks the connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the underlying connection pool.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) table(name string) string {
	return s.prefix + name
}

func sqliteDSN(dsn string) string {
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + "_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on"
}
