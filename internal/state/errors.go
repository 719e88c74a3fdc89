package state

import (
	"errors"
	"fmt"

	"github.com/mattn/go-sqlite3"
)

// ErrNotFound is returned when an id does not resolve to a live record.
// Callers match it with errors.Is; the wrapping error names the entity.
var ErrNotFound = errors.New("record not found")

// ValidationError reports input that violates a documented constraint. It is
// raised before any write is attempted.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// IntegrityError reports a write the database itself rejected because it
// violated a referential or uniqueness constraint the application failed to
// pre-check. The transaction is rolled back before it surfaces.
type IntegrityError struct {
	Op  string
	Err error
}

func (e *IntegrityError) Error() string {
	return fmt.Sprintf("%s: constraint violated: %v", e.Op, e.Err)
}

func (e *IntegrityError) Unwrap() error { return e.Err }

// StorageError reports an infrastructure failure: the database was
// unreachable, or a commit failed. The operation did not take effect.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("%s: storage failure: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// wrapWriteError classifies a failed write: SQLite constraint failures become
// IntegrityError, everything else StorageError.
func wrapWriteError(op string, err error) error {
	var se sqlite3.Error
	if errors.As(err, &se) && se.Code == sqlite3.ErrConstraint {
		return &IntegrityError{Op: op, Err: err}
	}
	return &StorageError{Op: op, Err: err}
}

func notFound(entity, id string) error {
	return fmt.Errorf("%s %s: %w", entity, id, ErrNotFound)
}
