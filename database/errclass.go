package database

import (
	"errors"

	"github.com/lib/pq"
)

type ErrorClass int

const (
	Ok ErrorClass = iota
	DuplicateIgnored
	ForeignKeyViolation
	OtherError
)

const pqUniqueViolation = "23505"
const pqForeignKeyViolation = "23503"

// ClassifyError maps a database error onto a tagged variant so callers can
// branch on data instead of matching error strings. Duplicate-key errors are
// an expected outcome of concurrent idempotent writes, which is why they get
// their own non-error class.
func ClassifyError(err error) ErrorClass {
	if err == nil {
		return Ok
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch string(pqErr.Code) {
		case pqUniqueViolation:
			return DuplicateIgnored
		case pqForeignKeyViolation:
			return ForeignKeyViolation
		}
	}

	return OtherError
}
