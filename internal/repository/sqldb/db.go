// Package sqldb serves invoice lookups from MySQL or SQLite through database/sql.
package sqldb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/go-sql-driver/mysql"
	_ "modernc.org/sqlite"

	"github.com/Rrens/chat-with-data/internal/config"
	"github.com/Rrens/chat-with-data/internal/repository"
)

// DB wraps a database/sql handle for one of the non-Postgres drivers
type DB struct {
	db      *sql.DB
	dialect repository.Dialect
}

// Open prepares a handle for cfg.Driver ("mysql" or "sqlite")
func Open(cfg config.DatabaseConfig) (*DB, error) {
	var dialect repository.Dialect
	switch cfg.Driver {
	case "mysql":
		dialect = repository.MySQL
	case "sqlite":
		if cfg.Database == "" {
			return nil, fmt.Errorf("database file path is required")
		}
		dialect = repository.SQLite
	default:
		return nil, fmt.Errorf("unsupported driver: %s", cfg.Driver)
	}

	db, err := sql.Open(cfg.Driver, cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if cfg.MaxConns > 0 {
		db.SetMaxOpenConns(int(cfg.MaxConns))
	}

	return &DB{db: db, dialect: dialect}, nil
}

// Connect takes a dedicated connection from the pool
func (d *DB) Connect(ctx context.Context) (repository.Conn, error) {
	conn, err := d.db.Conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", d.dialect.Name, err)
	}
	return &sqlConn{conn: conn}, nil
}

func (d *DB) Dialect() repository.Dialect {
	return d.dialect
}

func (d *DB) Ping(ctx context.Context) error {
	return d.db.PingContext(ctx)
}

func (d *DB) Close() {
	d.db.Close()
}

// SQL exposes the underlying handle, mainly for seeding test databases
func (d *DB) SQL() *sql.DB {
	return d.db
}

type sqlConn struct {
	conn *sql.Conn
}

func (c *sqlConn) QueryRow(ctx context.Context, query string, args ...any) repository.Row {
	return row{c.conn.QueryRowContext(ctx, query, args...)}
}

func (c *sqlConn) Query(ctx context.Context, query string, args ...any) (repository.Rows, error) {
	r, err := c.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	columns, err := r.Columns()
	if err != nil {
		r.Close()
		return nil, fmt.Errorf("failed to read columns: %w", err)
	}
	return &rows{rows: r, columns: columns}, nil
}

func (c *sqlConn) Close() error {
	return c.conn.Close()
}

type row struct {
	row *sql.Row
}

func (r row) Scan(dest ...any) error {
	err := r.row.Scan(dest...)
	if errors.Is(err, sql.ErrNoRows) {
		return repository.ErrNoRows
	}
	return err
}

type rows struct {
	rows    *sql.Rows
	columns []string
}

func (r *rows) Columns() []string {
	return r.columns
}

func (r *rows) Next() bool {
	return r.rows.Next()
}

func (r *rows) Values() ([]any, error) {
	values := make([]any, len(r.columns))
	ptrs := make([]any, len(r.columns))
	for i := range values {
		ptrs[i] = &values[i]
	}
	if err := r.rows.Scan(ptrs...); err != nil {
		return nil, err
	}
	for i, v := range values {
		// drivers hand back text columns as []byte
		if b, ok := v.([]byte); ok {
			values[i] = string(b)
		}
	}
	return values, nil
}

func (r *rows) Err() error {
	return r.rows.Err()
}

func (r *rows) Close() {
	r.rows.Close()
}
