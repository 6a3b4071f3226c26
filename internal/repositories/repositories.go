package repositories

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/desertthunder/topten/internal/shared"
)

// rowScanner is satisfied by [sql.Row] and [sql.Rows].
type rowScanner interface {
	Scan(dest ...any) error
}

// notFound maps [sql.ErrNoRows] to a wrapped not-found sentinel and wraps anything else.
func notFound(err error, sentinel error, id int64, action string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %d", sentinel, id)
	}
	return fmt.Errorf("failed to %s: %w", action, err)
}

// expectOneRow checks RowsAffected after an update or delete by id.
func expectOneRow(result sql.Result, id int64) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %d", shared.ErrMovieNotFound, id)
	}
	return nil
}
