package store

import (
	"errors"

	"github.com/lib/pq"
)

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("not found")

// ErrDuplicate is returned when an insert hits a unique constraint.
var ErrDuplicate = errors.New("duplicate key")

// ErrForeignKey is returned when a referenced row does not exist.
var ErrForeignKey = errors.New("foreign key violation")

// translate maps expected postgres constraint failures onto sentinel
// errors. Anything else is an infrastructure fault and passes through
// unchanged.
func translate(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case "23505": // unique_violation
			return ErrDuplicate
		case "23503": // foreign_key_violation
			return ErrForeignKey
		}
	}
	return err
}
