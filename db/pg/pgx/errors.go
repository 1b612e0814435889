package pgx

import (
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pkg/errors"
)

// ErrorCode from https://www.postgresql.org/docs/current/errcodes-appendix.html
type ErrorCode string

const (
	UniqueViolation     ErrorCode = "23505"
	ForeignKeyViolation ErrorCode = "23503"
	InvalidTextRepr     ErrorCode = "22P02"
)

// ErrorIs reports whether err is a *pgconn.PgError with code.
func ErrorIs(err error, code ErrorCode) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == string(code)
}

// IsNoRows reports whether a single-row query found nothing.
func IsNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}
