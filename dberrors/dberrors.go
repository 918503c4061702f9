// Package dberrors classifies a driver-reported error into the dialect-
// independent taxonomy the executor's retry engine and observability layer
// key off of, grounded on the teacher's own MySQL/Postgres error-code
// type-switches in retry.Retryable and utils.IsDeadlock.
package dberrors

import (
	"database/sql/driver"
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/lib/pq"
)

// Kind classifies a normalized database error.
type Kind int

const (
	// KindUnknown is returned when Normalize cannot classify the error at
	// all; callers treat it as non-retryable and non-programming.
	KindUnknown Kind = iota

	// KindDeadlock: the transaction was chosen as a deadlock victim.
	KindDeadlock
	// KindSerialization: a serializable/repeatable-read transaction was
	// aborted due to a conflicting concurrent transaction.
	KindSerialization
	// KindLockTimeout: a row/table lock could not be acquired in time.
	KindLockTimeout
	// KindConnectionTimeout: the network connection timed out or was reset.
	KindConnectionTimeout
	// KindIntegrity: a constraint (unique/foreign key/check/not null) was
	// violated.
	KindIntegrity
	// KindProgramming: a syntax error, missing table/column, or other error
	// that a retry can never fix.
	KindProgramming
	// KindExecution: every other driver-reported failure during statement
	// execution.
	KindExecution
)

func (k Kind) String() string {
	switch k {
	case KindDeadlock:
		return "deadlock"
	case KindSerialization:
		return "serialization"
	case KindLockTimeout:
		return "lock_timeout"
	case KindConnectionTimeout:
		return "connection_timeout"
	case KindIntegrity:
		return "integrity"
	case KindProgramming:
		return "programming"
	case KindExecution:
		return "execution"
	default:
		return "unknown"
	}
}

// TransientError is implemented by every *Error; its Transient method reports
// true only for the Kinds worth retrying (deadlock, serialization failure,
// lock timeout, connection timeout).
type TransientError interface {
	error
	Transient() bool
}

// Error wraps a driver-reported error with its classified Kind, the dialect
// and operation that produced it, so callers can branch without parsing a
// driver-specific message.
type Error struct {
	Kind      Kind
	Dialect   string
	Operation string
	Cause     error
}

func (e *Error) Error() string {
	return e.Dialect + ": " + e.Operation + ": " + e.Kind.String() + ": " + e.Cause.Error()
}

func (e *Error) Unwrap() error { return e.Cause }

// Transient reports whether retrying the same operation again has a chance
// of succeeding.
func (e *Error) Transient() bool {
	switch e.Kind {
	case KindDeadlock, KindSerialization, KindLockTimeout, KindConnectionTimeout:
		return true
	default:
		return false
	}
}

// Normalize classifies err into the Kind taxonomy, consulting the driver's
// structured error code first and falling back to a lowercased message scan.
// It never returns nil for a non-nil err.
func Normalize(dialect, operation string, err error) *Error {
	if err == nil {
		return nil
	}

	if k, ok := classifyByCode(err); ok {
		return &Error{Kind: k, Dialect: dialect, Operation: operation, Cause: err}
	}

	return &Error{Kind: classifyByMessage(err), Dialect: dialect, Operation: operation, Cause: err}
}

func classifyByCode(err error) (Kind, bool) {
	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) {
		switch mysqlErr.Number {
		case 1213: // ER_LOCK_DEADLOCK
			return KindDeadlock, true
		case 1205: // ER_LOCK_WAIT_TIMEOUT
			return KindLockTimeout, true
		case 1062, 1451, 1452, 1048, 3819: // duplicate key, FK violation, not null, check constraint
			return KindIntegrity, true
		case 1064, 1146, 1054: // syntax error, unknown table, unknown column
			return KindProgramming, true
		}
		return KindExecution, true
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case "40P01": // deadlock_detected
			return KindDeadlock, true
		case "40001": // serialization_failure
			return KindSerialization, true
		case "55P03": // lock_not_available
			return KindLockTimeout, true
		case "23505", "23503", "23502", "23514": // unique/fk/not-null/check violation
			return KindIntegrity, true
		case "42601", "42P01", "42703": // syntax error, undefined table/column
			return KindProgramming, true
		}
		return KindExecution, true
	}

	if errors.Is(err, driver.ErrBadConn) {
		return KindConnectionTimeout, true
	}

	return KindUnknown, false
}

func classifyByMessage(err error) Kind {
	msg := strings.ToLower(err.Error())

	switch {
	case strings.Contains(msg, "deadlock"):
		return KindDeadlock
	case strings.Contains(msg, "could not serialize") || strings.Contains(msg, "serialization"):
		return KindSerialization
	case strings.Contains(msg, "lock wait timeout") || strings.Contains(msg, "lock timeout"):
		return KindLockTimeout
	case strings.Contains(msg, "timeout") || strings.Contains(msg, "connection reset") || strings.Contains(msg, "broken pipe"):
		return KindConnectionTimeout
	case strings.Contains(msg, "unique constraint") || strings.Contains(msg, "duplicate") ||
		strings.Contains(msg, "foreign key") || strings.Contains(msg, "not null") || strings.Contains(msg, "check constraint"):
		return KindIntegrity
	case strings.Contains(msg, "syntax error") || strings.Contains(msg, "does not exist") || strings.Contains(msg, "unknown column"):
		return KindProgramming
	default:
		return KindExecution
	}
}
