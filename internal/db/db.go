package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rs/zerolog"
)

// DB is a relational backend holding the editing schema.
type DB interface {
	InitDB() error

	Get() *sql.DB
	Close() error
	Driver() string

	Query(query string, args ...any) (*sql.Rows, error)
	QueryRow(query string, args ...any) *sql.Row
	Exec(query string, args ...any) (sql.Result, error)

	// WithTx runs fn in a transaction, committing if fn returns nil.
	WithTx(ctx context.Context, fn func(tx *Tx) error) error
}

var dbLogger zerolog.Logger

func SetLogger(l zerolog.Logger) {
	dbLogger = l
}

// Open returns the backend for driver, already initialized.
func Open(driver, dsn string) (DB, error) {
	var d DB
	switch driver {
	case "sqlite":
		d = NewSQLite(dsn)
	case "postgres":
		d = NewPostgres(dsn)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	if err := d.InitDB(); err != nil {
		d.Close()
		return nil, err
	}
	return d, nil
}

// Tx is a transaction whose queries use the placeholder style of its backend.
type Tx struct {
	tx     *sql.Tx
	ctx    context.Context
	rebind func(string) string
}

func (t *Tx) Query(query string, args ...any) (*sql.Rows, error) {
	return t.tx.QueryContext(t.ctx, t.rebind(query), args...)
}

func (t *Tx) QueryRow(query string, args ...any) *sql.Row {
	return t.tx.QueryRowContext(t.ctx, t.rebind(query), args...)
}

func (t *Tx) Exec(query string, args ...any) (sql.Result, error) {
	return t.tx.ExecContext(t.ctx, t.rebind(query), args...)
}

func withTx(ctx context.Context, conn *sql.DB, rebind func(string) string, fn func(tx *Tx) error) error {
	sqlTx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("error starting transaction: %w", err)
	}

	if err := fn(&Tx{tx: sqlTx, ctx: ctx, rebind: rebind}); err != nil {
		if rbErr := sqlTx.Rollback(); rbErr != nil {
			dbLogger.Error().Err(rbErr).Msg("Rollback failed")
		}
		return err
	}

	return sqlTx.Commit()
}

func noRebind(q string) string { return q }
