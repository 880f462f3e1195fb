// Package repository holds the MySQL data access layer. The sentinel
// values below let handlers tell failure scenarios apart: ErrNotFound maps
// to 404, ErrConflict to 409, ErrForbidden to 403 and the mapping
// validation errors to 400.
package repository

import (
	"errors"

	"github.com/go-sql-driver/mysql"
)

// ErrNotFound is returned when the addressed row does not exist.
var ErrNotFound = errors.New("not found")

// ErrForbidden is returned when the caller may not act on a resource, for
// example an inactive operator account.
var ErrForbidden = errors.New("forbidden")

// ErrConflict is returned when a write collides with existing state, such
// as a duplicate unique key.
var ErrConflict = errors.New("conflict")

// ErrSourceNotAllowed is returned when a B2C/B2B source tag is attached to
// a ticket category whose class is not "entrance".
var ErrSourceNotAllowed = errors.New("source tag only allowed on entrance categories")

// ErrInvalidMapping is returned when a product mapping is malformed or
// references an unknown ticket category.
var ErrInvalidMapping = errors.New("invalid mapping")

// MySQL server error numbers the repositories translate.
const (
	mysqlDuplicateEntry   = 1062
	mysqlNoReferencedRow  = 1452
	mysqlRowIsReferenced2 = 1451
)

// translate maps driver errors onto the package sentinels. Unknown errors
// are returned unchanged.
func translate(err error) error {
	var me *mysql.MySQLError
	if !errors.As(err, &me) {
		return err
	}
	switch me.Number {
	case mysqlDuplicateEntry, mysqlRowIsReferenced2:
		return ErrConflict
	case mysqlNoReferencedRow:
		return ErrNotFound
	}
	return err
}
