package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Rrens/chat-with-data/internal/config"
	"github.com/Rrens/chat-with-data/internal/credential"
	"github.com/Rrens/chat-with-data/internal/repository"
)

// DB wraps the database connection pool
type DB struct {
	Pool *pgxpool.Pool
}

// NewDB creates a new database connection pool. The pool connects lazily,
// so an unreachable server surfaces on the first lookup rather than here.
// When tokens is non-nil each new physical connection signs in with an
// Entra ID access token instead of the configured password.
func NewDB(ctx context.Context, cfg config.DatabaseConfig, tokens credential.TokenProvider) (*DB, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}

	if cfg.MaxConns > 0 {
		poolConfig.MaxConns = cfg.MaxConns
	}

	if tokens != nil {
		poolConfig.BeforeConnect = func(ctx context.Context, cc *pgx.ConnConfig) error {
			token, err := tokens.Token(ctx, credential.OSSRDBMSScope)
			if err != nil {
				return err
			}
			cc.Password = token
			return nil
		}
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	return &DB{Pool: pool}, nil
}

// Connect checks a connection out of the pool
func (db *DB) Connect(ctx context.Context) (repository.Conn, error) {
	conn, err := db.Pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}
	return &pooledConn{conn: conn}, nil
}

func (db *DB) Dialect() repository.Dialect {
	return repository.Postgres
}

// Close closes the database connection pool
func (db *DB) Close() {
	if db.Pool != nil {
		db.Pool.Close()
	}
}

// Ping verifies database connectivity
func (db *DB) Ping(ctx context.Context) error {
	return db.Pool.Ping(ctx)
}

type pooledConn struct {
	conn *pgxpool.Conn
}

func (c *pooledConn) QueryRow(ctx context.Context, query string, args ...any) repository.Row {
	return row{c.conn.QueryRow(ctx, query, args...)}
}

func (c *pooledConn) Query(ctx context.Context, query string, args ...any) (repository.Rows, error) {
	r, err := c.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	return rows{r}, nil
}

func (c *pooledConn) Close() error {
	c.conn.Release()
	return nil
}

type row struct {
	pgx.Row
}

func (r row) Scan(dest ...any) error {
	err := r.Row.Scan(dest...)
	if errors.Is(err, pgx.ErrNoRows) {
		return repository.ErrNoRows
	}
	return err
}

type rows struct {
	pgx.Rows
}

func (r rows) Columns() []string {
	fieldDescs := r.FieldDescriptions()
	columns := make([]string, len(fieldDescs))
	for i, fd := range fieldDescs {
		columns[i] = fd.Name
	}
	return columns
}
