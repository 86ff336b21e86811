package lock

import (
	"fmt"

	"github.com/pkg/errors"

	"heapdb/pkg/concurrency/transaction"
)

// TransactionAbortedError is returned when a lock acquisition times out.
// It is the only failure Acquire can produce; the caller is expected to
// abort the transaction and release its remaining locks.
type TransactionAbortedError struct {
	TID *transaction.TransactionID
}

func (e *TransactionAbortedError) Error() string {
	return fmt.Sprintf("transaction %v aborted: lock wait timed out", e.TID)
}

// IsTransactionAborted reports whether err (or any error it wraps) is a
// lock-timeout abort.
func IsTransactionAborted(err error) bool {
	var aborted *TransactionAbortedError
	return errors.As(err, &aborted)
}
