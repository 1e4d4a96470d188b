package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrNoRows is returned by Row.Scan when the query matched nothing
var ErrNoRows = errors.New("no rows in result set")

// Row is a single result row
type Row interface {
	Scan(dest ...any) error
}

// Rows is an open result set; callers must Close it
type Rows interface {
	Columns() []string
	Next() bool
	Values() ([]any, error)
	Err() error
	Close()
}

// Conn is a connection checked out for one lookup; Close returns it to the store
type Conn interface {
	QueryRow(ctx context.Context, query string, args ...any) Row
	Query(ctx context.Context, query string, args ...any) (Rows, error)
	Close() error
}

// Connector hands out connections to the relational store
type Connector interface {
	Connect(ctx context.Context) (Conn, error)
	Dialect() Dialect
	Ping(ctx context.Context) error
	Close()
}

// Dialect captures the syntax differences between the supported drivers
type Dialect struct {
	Name string
	// numbered placeholders ($1) instead of positional (?)
	numbered   bool
	identQuote string
}

var (
	Postgres = Dialect{Name: "postgres", numbered: true, identQuote: `"`}
	MySQL    = Dialect{Name: "mysql", identQuote: "`"}
	SQLite   = Dialect{Name: "sqlite", identQuote: `"`}
)

// Placeholder returns the bind marker for the n-th (1-based) argument
func (d Dialect) Placeholder(n int) string {
	if d.numbered {
		return fmt.Sprintf("$%d", n)
	}
	return "?"
}

// Quote quotes an identifier so camelCase column names survive
func (d Dialect) Quote(ident string) string {
	q := d.identQuote
	return q + strings.ReplaceAll(ident, q, q+q) + q
}

// SelectColumnByID builds a parameterized single-column lookup
func (d Dialect) SelectColumnByID(table, column, idColumn string) string {
	return fmt.Sprintf(
		"SELECT %s FROM %s WHERE %s.%s = %s",
		d.Quote(column), table, table, d.Quote(idColumn), d.Placeholder(1),
	)
}
