package handler

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// Postgres error codes mapped to API responses. Constraint names stay out of
// the payloads; clients only see the generic conflict or bad-reference code.
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}

func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgForeignKeyViolation
}
