package resilience

import (
	"errors"
	"net"
	"net/textproto"
	"strings"
	"syscall"

	"github.com/jackc/pgx/v5/pgconn"
)

// TransientError marks an error as safe to retry.
type TransientError struct {
	Err error
}

func (e *TransientError) Error() string {
	return e.Err.Error()
}

func (e *TransientError) Unwrap() error {
	return e.Err
}

// NewTransientError wraps err as transient.
func NewTransientError(err error) *TransientError {
	return &TransientError{Err: err}
}

// Postgres SQLSTATE codes worth retrying: serialization failure, deadlock,
// and the connection exception class.
var retryablePgCodes = map[string]bool{
	"40001": true,
	"40P01": true,
	"08000": true,
	"08003": true,
	"08006": true,
	"57P03": true,
}

var transientPatterns = []string{
	"database is locked",
	"sqlite_busy",
	"connection reset by peer",
	"broken pipe",
	"i/o timeout",
	"no such host",
	"temporary failure in name resolution",
}

// FTP reply codes: service not available, can't open data connection,
// connection closed.
var retryableFTPCodes = map[int]bool{421: true, 425: true, 426: true}

// IsTransient reports whether err (or anything in its chain) is worth
// retrying: an explicit TransientError, a network timeout, a refused or
// reset connection, a retryable Postgres or FTP reply, or a busy SQLite
// database.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}

	var te *TransientError
	if errors.As(err, &te) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	if errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNABORTED) {
		return true
	}

	var tpErr *textproto.Error
	if errors.As(err, &tpErr) {
		return retryableFTPCodes[tpErr.Code]
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return retryablePgCodes[pgErr.Code]
	}

	msg := strings.ToLower(err.Error())
	for _, p := range transientPatterns {
		if strings.Contains(msg, p) {
			return true
		}
	}

	return false
}
