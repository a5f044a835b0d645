package credstore

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	kerrors "github.com/credforge/credkit/errors"
)

var (
	errInvalidDriver      = kerrors.New(kerrors.CodeInvalidConfig, "credstore: driver must be postgres or mysql")
	errMissingDSN         = kerrors.New(kerrors.CodeInvalidConfig, "credstore: DSN is required")
	errInvalidPoolConfig  = kerrors.New(kerrors.CodeInvalidConfig, "credstore: invalid connection pool configuration")
	errInvalidRetryConfig = kerrors.New(kerrors.CodeInvalidConfig, "credstore: invalid retry configuration")
)

// wrapError classifies a database error into the kit's error taxonomy.
func wrapError(err error, msg string) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, sql.ErrNoRows) || errors.Is(err, pgx.ErrNoRows) {
		return kerrors.Wrap(err, kerrors.CodeNotFound, msg)
	}
	if errors.Is(err, sql.ErrConnDone) {
		return kerrors.Wrap(err, kerrors.CodeUnavailable, msg)
	}
	if errors.Is(err, context.Canceled) {
		return kerrors.Wrap(err, kerrors.CodeCancelled, msg)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return kerrors.Wrap(err, kerrors.CodeTimeout, msg)
	}

	if code, ok := classifyPostgresError(err); ok {
		return kerrors.Wrap(err, code, msg)
	}
	if code, ok := classifyMySQLError(err); ok {
		return kerrors.Wrap(err, code, msg)
	}

	return kerrors.Wrap(err, kerrors.CodeInternal, msg)
}

// classifyPostgresError maps PostgreSQL SQLSTATE classes to kit codes.
// See https://www.postgresql.org/docs/current/errcodes-appendix.html
func classifyPostgresError(err error) (kerrors.Code, bool) {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return "", false
	}

	switch pgErr.Code {
	case "23505": // unique_violation
		return kerrors.CodeAlreadyExists, true
	case "23502", "23503", "23514": // not_null, foreign_key, check
		return kerrors.CodeInvalidFormat, true
	case "40001": // serialization_failure
		return kerrors.CodeConflict, true
	case "40P01": // deadlock_detected
		return kerrors.CodeConflict, true
	case "57014": // query_canceled
		return kerrors.CodeCancelled, true
	case "42P01": // undefined_table
		return kerrors.CodeNotFound, true
	case "53000", "53100", "53200", "53300", // insufficient resources
		"57P01", "57P02", "57P03": // shutdown, cannot_connect_now
		return kerrors.CodeUnavailable, true
	default:
		return kerrors.CodeInternal, true
	}
}

// classifyMySQLError maps MySQL server error numbers to kit codes.
// See https://dev.mysql.com/doc/mysql-errors/8.0/en/server-error-reference.html
func classifyMySQLError(err error) (kerrors.Code, bool) {
	var mysqlErr *mysql.MySQLError
	if !errors.As(err, &mysqlErr) {
		return "", false
	}

	switch mysqlErr.Number {
	case 1062: // ER_DUP_ENTRY
		return kerrors.CodeAlreadyExists, true
	case 1213: // ER_LOCK_DEADLOCK
		return kerrors.CodeConflict, true
	case 1205: // ER_LOCK_WAIT_TIMEOUT
		return kerrors.CodeTimeout, true
	case 1159, 1160: // net read/write timeout
		return kerrors.CodeTimeout, true
	case 1049, 1051: // unknown database, unknown table
		return kerrors.CodeNotFound, true
	case 1040, 1042, 1043, 1037, 1041: // connection and resource exhaustion
		return kerrors.CodeUnavailable, true
	default:
		return kerrors.CodeInternal, true
	}
}

// isRetryable reports whether an error is safe to retry. Cancellation is
// never retried.
func isRetryable(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return false
	}
	switch kerrors.GetCode(err) {
	case kerrors.CodeUnavailable, kerrors.CodeTimeout, kerrors.CodeConflict:
		return true
	default:
		return false
	}
}

// IsNotFound reports whether err marks a missing credential row.
func IsNotFound(err error) bool {
	return kerrors.IsCode(err, kerrors.CodeNotFound)
}
