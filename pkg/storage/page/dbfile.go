package page

import (
	"heapdb/pkg/concurrency/transaction"
	"heapdb/pkg/tuple"
)

// DbFile is a paged file backing one table.
type DbFile interface {
	// ReadPage reads the identified page from disk. It fails if the page
	// offset lies past the end of the file.
	ReadPage(pid tuple.PageID) (Page, error)

	// WritePage writes the page to its location in the file.
	WritePage(p Page) error

	// ID returns the stable identifier of this file, derived from its
	// canonical path. Equal files have equal ids.
	ID() int

	// TupleDesc returns the fixed schema of tuples stored in this file.
	TupleDesc() *tuple.TupleDescription

	// NumPages returns ceil(fileLength / pageSize); 0 for an empty file.
	NumPages() (int, error)

	// InsertTuple adds t to the file on behalf of tid, extending the file
	// if no page has room. Pages are acquired through the buffer pool with
	// write permission. Returns the pages dirtied by the operation.
	InsertTuple(tid *transaction.TransactionID, t *tuple.Tuple) ([]Page, error)

	// DeleteTuple removes t, located by its record id, on behalf of tid.
	// Returns the pages dirtied by the operation.
	DeleteTuple(tid *transaction.TransactionID, t *tuple.Tuple) ([]Page, error)

	// Close releases the underlying file handle.
	Close() error
}

// PageFetcher grants access to pages under a transaction's permission. The
// buffer pool implements it; heap files use it so every page access funnels
// through the cache and its locking.
type PageFetcher interface {
	GetPage(tid *transaction.TransactionID, pid tuple.PageID, perm transaction.Permissions) (Page, error)
}
