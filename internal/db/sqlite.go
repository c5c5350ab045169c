package db

import (
	"context"
	"database/sql"
	"strings"

	_ "github.com/mattn/go-sqlite3"
)

type SQLite struct {
	dsn  string
	conn *sql.DB
}

func NewSQLite(dsn string) *SQLite {
	return &SQLite{
		dsn:  dsn,
		conn: nil,
	}
}

// sqliteDSN enables foreign keys and makes writers wait for each other
// instead of failing with SQLITE_BUSY.
func sqliteDSN(dsn string) string {
	if strings.Contains(dsn, "?") {
		return dsn
	}
	return dsn + "?_foreign_keys=on&_busy_timeout=5000&_txlock=immediate"
}

func (s *SQLite) InitDB() error {
	var err error
	s.conn, err = sql.Open("sqlite3", sqliteDSN(s.dsn))
	if err != nil {
		return err
	}

	// Every connection to :memory: is a separate database.
	if strings.HasPrefix(s.dsn, ":memory:") {
		s.conn.SetMaxOpenConns(1)
	}

	if _, err := s.conn.Exec(schemaFor("sqlite")); err != nil {
		return err
	}

	dbLogger.Info().Str("driver", "sqlite").Str("dsn", s.dsn).Msg("Database initialized")
	return nil
}

func (s *SQLite) Get() *sql.DB {
	return s.conn
}

func (s *SQLite) Driver() string {
	return "sqlite"
}

func (s *SQLite) Close() error {
	if s.conn != nil {
		return s.conn.Close()
	}
	return nil
}

func (s *SQLite) Query(query string, args ...any) (*sql.Rows, error) {
	dbLogger.Debug().Str("query", query).Msg("Query")
	return s.conn.Query(query, args...)
}

func (s *SQLite) QueryRow(query string, args ...any) *sql.Row {
	dbLogger.Debug().Str("query", query).Msg("QueryRow")
	return s.conn.QueryRow(query, args...)
}

func (s *SQLite) Exec(query string, args ...any) (sql.Result, error) {
	dbLogger.Debug().Str("query", query).Msg("Exec")
	return s.conn.Exec(query, args...)
}

func (s *SQLite) WithTx(ctx context.Context, fn func(tx *Tx) error) error {
	return withTx(ctx, s.conn, noRebind, fn)
}
