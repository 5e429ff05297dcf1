package catalog

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

// ─── Sentinel errors ─────────────────────────────────────────────────────────

// ErrNotFound is matched by every NotFoundError through errors.Is.
var ErrNotFound = errors.New("not found")

// NotFoundError reports that no row matched a lookup.
type NotFoundError struct{ Msg string }

func (e *NotFoundError) Error() string { return e.Msg }

// Unwrap lets errors.Is(err, ErrNotFound) succeed.
func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// ValidationError wraps a user-facing validation message. Problems carries
// the individual violations when more than one check failed.
type ValidationError struct {
	Msg      string
	Problems []string
}

func (e *ValidationError) Error() string {
	if len(e.Problems) == 0 {
		return e.Msg
	}
	return e.Msg + ": " + strings.Join(e.Problems, "; ")
}

// ConflictError is returned when a create would duplicate a unique key.
type ConflictError struct{ Msg string }

func (e *ConflictError) Error() string { return e.Msg }

func notFound(msg string) error { return &NotFoundError{Msg: msg} }

// SQLSTATE codes the stores translate.
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

func pgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}
