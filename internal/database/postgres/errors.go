package postgres

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/osse101/StreamRealm_Go/internal/repository"
)

// mapErr turns serialization failures and deadlocks into repository.ErrConflict
// so callers rerun the transaction
func mapErr(err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case PgErrorCodeSerializationFailure, PgErrorCodeDeadlockDetected:
			return fmt.Errorf("%w: %s", repository.ErrConflict, pgErr.Message)
		}
	}
	return err
}

func isCode(err error, code string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == code
}
