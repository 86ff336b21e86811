package heap

import (
	"github.com/pkg/errors"

	"heapdb/pkg/concurrency/transaction"
	"heapdb/pkg/iterator"
	"heapdb/pkg/tuple"
)

// fileIterator walks every tuple of a heap file in page order, fetching one
// page at a time through the buffer pool with read permission.
type fileIterator struct {
	file        *HeapFile
	tid         *transaction.TransactionID
	currentPage int
	pageTuples  *tuple.Iterator
	next        *tuple.Tuple
	opened      bool
}

func newFileIterator(file *HeapFile, tid *transaction.TransactionID) *fileIterator {
	return &fileIterator{
		file:        file,
		tid:         tid,
		currentPage: -1,
	}
}

func (it *fileIterator) Open() error {
	it.currentPage = -1
	it.pageTuples = nil
	it.next = nil
	it.opened = true
	return nil
}

func (it *fileIterator) HasNext() (bool, error) {
	if !it.opened {
		return false, errors.WithStack(iterator.ErrNotOpened)
	}
	if it.next != nil {
		return true, nil
	}

	t, err := it.readNext()
	if err != nil {
		return false, err
	}
	it.next = t
	return t != nil, nil
}

func (it *fileIterator) Next() (*tuple.Tuple, error) {
	hasNext, err := it.HasNext()
	if err != nil {
		return nil, err
	}
	if !hasNext {
		return nil, errors.WithStack(iterator.ErrNoMoreTuples)
	}

	t := it.next
	it.next = nil
	return t, nil
}

// Rewind restarts iteration at page 0.
func (it *fileIterator) Rewind() error {
	if !it.opened {
		return errors.WithStack(iterator.ErrNotOpened)
	}
	return it.Open()
}

func (it *fileIterator) Close() error {
	it.pageTuples = nil
	it.next = nil
	it.opened = false
	return nil
}

// readNext yields the next tuple, advancing across pages as the current one
// drains. Returns (nil, nil) once the file is exhausted.
func (it *fileIterator) readNext() (*tuple.Tuple, error) {
	for {
		if it.pageTuples != nil && it.pageTuples.HasNext() {
			return it.pageTuples.Next()
		}

		numPages, err := it.file.NumPages()
		if err != nil {
			return nil, err
		}

		it.currentPage++
		if it.currentPage >= numPages {
			return nil, nil
		}

		pg, err := it.file.fetchHeapPage(it.tid, it.currentPage, transaction.ReadOnly)
		if err != nil {
			return nil, err
		}
		it.pageTuples = tuple.NewIterator(pg.Tuples())
	}
}
