// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// services to distinguish between different failure scenarios without
// inspecting driver errors. For example, ErrInsufficientInventory
// signals that a conditional counter update matched no row, while
// ErrConflict signals that a guarded state change lost to a concurrent
// writer.
package repository

import (
	"database/sql"
	"errors"

	"github.com/go-sql-driver/mysql"
)

// ErrNotFound is returned when the requested row does not exist (or is
// not visible to the caller because of an ownership predicate).
var ErrNotFound = errors.New("not found")

// ErrDuplicate is returned when an insert or update violates a unique
// key, e.g. a second flight with the same flight number.
var ErrDuplicate = errors.New("duplicate")

// ErrReferenced is returned when a delete is blocked by a foreign key,
// e.g. deleting a flight that reservations still point to.
var ErrReferenced = errors.New("referenced by other rows")

// ErrConflict is returned when a conditional update matched no row
// because the row is no longer in the expected state.
var ErrConflict = errors.New("conflict")

// ErrInsufficientInventory is returned when a seat or room counter
// cannot be decremented without going negative.
var ErrInsufficientInventory = errors.New("insufficient inventory")

// MySQL server error numbers translated by translate.
const (
	mysqlDuplicateEntry  = 1062
	mysqlRowIsReferenced = 1451
	mysqlNoReferencedRow = 1452
)

// translate maps driver errors onto the sentinels above.  Unknown
// errors are returned unchanged.
func translate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		switch me.Number {
		case mysqlDuplicateEntry:
			return ErrDuplicate
		case mysqlRowIsReferenced:
			return ErrReferenced
		case mysqlNoReferencedRow:
			return ErrNotFound
		}
	}
	return err
}
