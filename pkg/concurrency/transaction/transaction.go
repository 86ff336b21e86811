// Package transaction holds transaction identity and the permission levels
// requested when fetching pages. The engine owns no transaction lifecycle:
// clients create ids and drive commit/abort through the buffer pool.
package transaction

import (
	"fmt"
	"sync/atomic"
)

var transactionCounter int64

// TransactionID identifies one client transaction. Ids are process-unique
// and compared by value.
type TransactionID struct {
	id int64
}

func NewTransactionID() *TransactionID {
	return &TransactionID{
		id: atomic.AddInt64(&transactionCounter, 1),
	}
}

func (tid *TransactionID) ID() int64 {
	return tid.id
}

func (tid *TransactionID) String() string {
	return fmt.Sprintf("TID-%d", tid.id)
}

func (tid *TransactionID) Equals(other *TransactionID) bool {
	if tid == nil || other == nil {
		return tid == other
	}
	return tid.id == other.id
}
