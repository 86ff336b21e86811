package query

import (
	"github.com/pkg/errors"

	"heapdb/pkg/concurrency/transaction"
	"heapdb/pkg/iterator"
	"heapdb/pkg/storage/heap"
	"heapdb/pkg/tuple"
)

// SeqScan reads every tuple of one table in storage order, page by page
// through the buffer pool under read permission.
type SeqScan struct {
	base     *iterator.Base
	tid      *transaction.TransactionID
	file     *heap.HeapFile
	fileIter iterator.DbFileIterator
}

func NewSeqScan(tid *transaction.TransactionID, file *heap.HeapFile) (*SeqScan, error) {
	if file == nil {
		return nil, errors.New("heap file cannot be nil")
	}

	ss := &SeqScan{tid: tid, file: file}
	ss.base = iterator.NewBase(ss.readNext)
	return ss, nil
}

func (ss *SeqScan) Open() error {
	ss.fileIter = ss.file.Iterator(ss.tid)
	if err := ss.fileIter.Open(); err != nil {
		return err
	}
	ss.base.MarkOpened()
	return nil
}

func (ss *SeqScan) readNext() (*tuple.Tuple, error) {
	hasNext, err := ss.fileIter.HasNext()
	if err != nil {
		return nil, err
	}
	if !hasNext {
		return nil, nil
	}
	return ss.fileIter.Next()
}

func (ss *SeqScan) HasNext() (bool, error) {
	return ss.base.HasNext()
}

func (ss *SeqScan) Next() (*tuple.Tuple, error) {
	return ss.base.Next()
}

func (ss *SeqScan) Rewind() error {
	if ss.fileIter == nil {
		return errors.WithStack(iterator.ErrNotOpened)
	}
	if err := ss.fileIter.Rewind(); err != nil {
		return err
	}
	ss.base.ClearCache()
	return nil
}

func (ss *SeqScan) Close() error {
	if ss.fileIter != nil {
		ss.fileIter.Close()
		ss.fileIter = nil
	}
	ss.base.Close()
	return nil
}

func (ss *SeqScan) TupleDesc() *tuple.TupleDescription {
	return ss.file.TupleDesc()
}

func (ss *SeqScan) Children() []iterator.DbIterator {
	return nil
}

func (ss *SeqScan) SetChildren([]iterator.DbIterator) {}
