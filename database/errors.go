package database

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// IsSerializationFailure reports whether err is a Postgres serialization
// failure or deadlock, the two transaction aborts that are safe to retry.
func IsSerializationFailure(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == "40001" || pgErr.Code == "40P01"
}
