package query

import (
	"github.com/pkg/errors"

	"heapdb/pkg/concurrency/transaction"
	"heapdb/pkg/iterator"
	"heapdb/pkg/memory"
	"heapdb/pkg/tuple"
	"heapdb/pkg/types"
)

// Delete removes every tuple its child produces, through the buffer pool,
// and yields a single row holding the number of deleted tuples, then EOF.
type Delete struct {
	base   *iterator.Base
	tid    *transaction.TransactionID
	source *source
	pool   *memory.BufferPool
	td     *tuple.TupleDescription
	done   bool
}

func NewDelete(tid *transaction.TransactionID, child iterator.DbIterator, pool *memory.BufferPool) (*Delete, error) {
	if pool == nil {
		return nil, errors.New("buffer pool cannot be nil")
	}

	src, err := newSource(child)
	if err != nil {
		return nil, err
	}

	del := &Delete{
		tid:    tid,
		source: src,
		pool:   pool,
		td:     countDesc(),
	}
	del.base = iterator.NewBase(del.readNext)
	return del, nil
}

func (del *Delete) readNext() (*tuple.Tuple, error) {
	if del.done {
		return nil, nil
	}
	del.done = true

	count := int32(0)
	for {
		t, err := del.source.FetchNext()
		if err != nil {
			return nil, err
		}
		if t == nil {
			break
		}
		if err := del.pool.DeleteTuple(del.tid, t); err != nil {
			return nil, errors.Wrap(err, "delete failed")
		}
		count++
	}

	result := tuple.NewTuple(del.td)
	if err := result.SetField(0, types.NewIntField(count)); err != nil {
		return nil, err
	}
	return result, nil
}

func (del *Delete) Open() error {
	if err := del.source.Open(); err != nil {
		return err
	}
	del.done = false
	del.base.MarkOpened()
	return nil
}

func (del *Delete) HasNext() (bool, error) { return del.base.HasNext() }

func (del *Delete) Next() (*tuple.Tuple, error) { return del.base.Next() }

func (del *Delete) Rewind() error {
	if err := del.source.Rewind(); err != nil {
		return err
	}
	del.done = false
	del.base.ClearCache()
	return nil
}

func (del *Delete) Close() error {
	del.base.Close()
	return del.source.Close()
}

func (del *Delete) TupleDesc() *tuple.TupleDescription {
	return del.td
}

func (del *Delete) Children() []iterator.DbIterator {
	return []iterator.DbIterator{del.source.child}
}

func (del *Delete) SetChildren(children []iterator.DbIterator) {
	if len(children) == 1 {
		del.source.child = children[0]
	}
}
