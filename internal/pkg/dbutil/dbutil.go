package dbutil

import (
	"errors"

	"github.com/mattn/go-sqlite3"
)

func IsConflict(err error) bool {
	var sqlErr sqlite3.Error
	if errors.As(err, &sqlErr) {
		return sqlErr.ExtendedCode == sqlite3.ErrConstraintUnique
	}
	return false
}
