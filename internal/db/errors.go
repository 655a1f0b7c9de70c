package db

import (
	"errors"
	"fmt"
	"strings"

	"github.com/surrealdb/surrealdb.go"
)

// Sentinel errors for database operations.
var (
	// ErrAlreadyExists indicates a record with the same id already exists.
	ErrAlreadyExists = errors.New("record already exists")

	// ErrTransactionConflict indicates concurrent writes touched the same record.
	// Callers should retry.
	ErrTransactionConflict = errors.New("transaction conflict")

	// ErrNoResult indicates a write that returned no record.
	ErrNoResult = errors.New("no result returned")
)

// wrapQueryError maps known SurrealDB query errors onto the sentinels above.
// Other errors are returned unchanged.
func wrapQueryError(err error) error {
	if err == nil {
		return nil
	}

	var queryErr *surrealdb.QueryError
	if errors.As(err, &queryErr) {
		msg := queryErr.Message
		if strings.Contains(msg, "already exists") {
			return fmt.Errorf("%w: %s", ErrAlreadyExists, msg)
		}
		if strings.Contains(msg, "Transaction conflict") || strings.Contains(msg, "transaction conflict") {
			return fmt.Errorf("%w: %s", ErrTransactionConflict, msg)
		}
	}

	return err
}
