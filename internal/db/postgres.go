package db

import (
	"context"
	"database/sql"
	"strconv"
	"strings"

	_ "github.com/lib/pq"
)

type Postgres struct {
	dsn  string
	conn *sql.DB
}

func NewPostgres(dsn string) *Postgres {
	return &Postgres{dsn: dsn}
}

func (p *Postgres) InitDB() error {
	var err error
	p.conn, err = sql.Open("postgres", p.dsn)
	if err != nil {
		return err
	}

	if err := p.conn.Ping(); err != nil {
		return err
	}

	if _, err := p.conn.Exec(schemaFor("postgres")); err != nil {
		return err
	}

	dbLogger.Info().Str("driver", "postgres").Msg("Database initialized")
	return nil
}

func (p *Postgres) Get() *sql.DB {
	return p.conn
}

func (p *Postgres) Driver() string {
	return "postgres"
}

func (p *Postgres) Close() error {
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}

func (p *Postgres) Query(query string, args ...any) (*sql.Rows, error) {
	dbLogger.Debug().Str("query", query).Msg("Query")
	return p.conn.Query(Rebind(query), args...)
}

func (p *Postgres) QueryRow(query string, args ...any) *sql.Row {
	dbLogger.Debug().Str("query", query).Msg("QueryRow")
	return p.conn.QueryRow(Rebind(query), args...)
}

func (p *Postgres) Exec(query string, args ...any) (sql.Result, error) {
	dbLogger.Debug().Str("query", query).Msg("Exec")
	return p.conn.Exec(Rebind(query), args...)
}

func (p *Postgres) WithTx(ctx context.Context, fn func(tx *Tx) error) error {
	return withTx(ctx, p.conn, Rebind, fn)
}

// Rebind turns ? placeholders into $1, $2, ... Placeholders inside single
// quoted literals are left alone.
func Rebind(query string) string {
	var b strings.Builder
	b.Grow(len(query) + 8)

	n := 0
	inQuote := false
	for _, r := range query {
		switch {
		case r == '\'':
			inQuote = !inQuote
			b.WriteRune(r)
		case r == '?' && !inQuote:
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
