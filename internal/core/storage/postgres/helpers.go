package postgres

import (
	"database/sql"
	"errors"
	"fmt"

	v1 "github.com/aevon-lab/logagg/internal/api/v1"
	"github.com/aevon-lab/logagg/internal/core/storage"
	"github.com/lib/pq"
)

const (
	uniqueViolation pq.ErrorCode = "23505"

	// SQLSTATE classes that describe the row itself rather than the server.
	classDataException      pq.ErrorClass = "22"
	classIntegrityViolation pq.ErrorClass = "23"
)

type scanner interface {
	Scan(dest ...interface{}) error
}

// scanEventRow scans a database row into an Event struct.
// Compatible with both sql.Row (single) and sql.Rows (multiple).
func scanEventRow(row scanner) (*v1.Event, error) {
	var evt v1.Event
	var payload []byte

	err := row.Scan(
		&evt.Seq,
		&evt.Topic,
		&evt.EventID,
		&evt.Timestamp,
		&evt.Source,
		&payload,
		&evt.ReceivedAt,
		&evt.ProcessedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to scan event row: %w", err)
	}

	if len(payload) > 0 {
		evt.Payload = append([]byte(nil), payload...)
	}
	evt.ReceivedAt = evt.ReceivedAt.UTC()
	evt.ProcessedAt = evt.ProcessedAt.UTC()

	return &evt, nil
}

// counterDeltas maps an insert result to the ($1, $2) arguments of queryIncrementCounters.
func counterDeltas(result storage.InsertResult) (unique, duplicate int64, err error) {
	switch result {
	case storage.Inserted:
		return 1, 0, nil
	case storage.AlreadyExists:
		return 0, 1, nil
	default:
		return 0, 0, fmt.Errorf("unknown insert result %d", result)
	}
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}

// isInvalidEvent reports whether Postgres refused the row's content, e.g. a NUL
// byte in text (22021) or jsonb (22P05). Unique violations are handled separately.
func isInvalidEvent(err error) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) || pqErr.Code == uniqueViolation {
		return false
	}
	class := pqErr.Code.Class()
	return class == classDataException || class == classIntegrityViolation
}

// classify maps a driver error to the storage taxonomy. A key collision is a
// duplicate and a refused row is invalid; anything else means the store could
// not confirm the attempt.
func classify(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case isUniqueViolation(err):
		return storage.ErrDuplicate
	case isInvalidEvent(err):
		return storage.InvalidEvent(op, err)
	default:
		return storage.Unavailable(op, err)
	}
}

// rollback is deferred after BeginTx; sql.ErrTxDone after a commit is expected.
func rollback(tx *sql.Tx) {
	_ = tx.Rollback()
}
