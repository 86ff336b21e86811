package page

import (
	"heapdb/pkg/concurrency/transaction"
	"heapdb/pkg/tuple"
)

// Page is a fixed-size byte-backed container resident in the buffer pool.
// A page is "dirty" when it has been modified since it was last written to
// disk; the dirty marker records which transaction made the modification.
type Page interface {
	// ID returns the identity of this page.
	ID() tuple.PageID

	// IsDirty returns the transaction that dirtied this page, or nil if the
	// page is clean.
	IsDirty() *transaction.TransactionID

	// MarkDirty sets or clears the dirty marker. tid is ignored when dirty
	// is false.
	MarkDirty(dirty bool, tid *transaction.TransactionID)

	// PageData serializes the page into a byte slice of exactly Size()
	// bytes, suitable for writing back to disk.
	PageData() []byte

	// Tuples returns the live tuples stored on this page.
	Tuples() []*tuple.Tuple
}
