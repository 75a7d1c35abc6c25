package repository

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgCheckViolation      = "23514"
)

// constraintError отдаёт клиенту только доменную ошибку, текст postgres остаётся в Cause для лога
type constraintError struct {
	sentinel error
	cause    error
}

func (e *constraintError) Error() string   { return e.sentinel.Error() + ": constraint violated" }
func (e *constraintError) Unwrap() []error { return []error{e.sentinel, e.cause} }
func (e *constraintError) Cause() error    { return e.cause }

func pgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}
