// Package storage executes parameterised SQL statements against the relational store.
//
// Every statement is written with `?` placeholders and rebound to the driver's
// bind style before execution; caller data is only ever passed as arguments.
// Errors from the driver are returned unchanged and nothing is retried.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
	"github.com/mattn/go-sqlite3"
)

// pgUniqueViolation is the SQLSTATE for unique_violation.
const pgUniqueViolation = "23505"

// Context is a thin executor over a sqlx connection pool.
type Context struct {
	db *sqlx.DB
}

// NewContext wraps db.
func NewContext(db *sqlx.DB) *Context {
	return &Context{db: db}
}

// Execute runs a mutating statement.
func (c *Context) Execute(ctx context.Context, query string, args ...any) (sql.Result, error) {
	q := c.prepare(ctx, query)
	return c.db.ExecContext(ctx, q, args...)
}

// Retrieve scans every row of the result into dest, which must be a pointer to a slice.
func (c *Context) Retrieve(ctx context.Context, dest any, query string, args ...any) error {
	q := c.prepare(ctx, query)
	return c.db.SelectContext(ctx, dest, q, args...)
}

// RetrieveSingle scans the first row into dest.
// It reports false, with a nil error, when the query returns no rows.
func (c *Context) RetrieveSingle(ctx context.Context, dest any, query string, args ...any) (bool, error) {
	q := c.prepare(ctx, query)
	if err := c.db.GetContext(ctx, dest, q, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// RetrieveValue scans a single scalar column of the first row into dest.
func (c *Context) RetrieveValue(ctx context.Context, dest any, query string, args ...any) error {
	q := c.prepare(ctx, query)
	return c.db.QueryRowxContext(ctx, q, args...).Scan(dest)
}

func (c *Context) prepare(ctx context.Context, query string) string {
	q := c.db.Rebind(query)
	slog.DebugContext(ctx, "executing statement", "query", q)
	return q
}

// IsUniqueViolation reports whether err was caused by a unique constraint.
func IsUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolation
	}
	return false
}
