package query

import (
	"github.com/pkg/errors"

	"heapdb/pkg/concurrency/transaction"
	"heapdb/pkg/iterator"
	"heapdb/pkg/memory"
	"heapdb/pkg/tuple"
	"heapdb/pkg/types"
)

// countDesc is the one-field schema both Insert and Delete report.
func countDesc() *tuple.TupleDescription {
	td, _ := tuple.NewTupleDesc([]types.Type{types.IntType}, []string{"count"})
	return td
}

// Insert drains its child into a table through the buffer pool and yields a
// single row holding the number of inserted tuples, then EOF.
type Insert struct {
	base    *iterator.Base
	tid     *transaction.TransactionID
	source  *source
	pool    *memory.BufferPool
	tableID int
	td      *tuple.TupleDescription
	done    bool
}

func NewInsert(tid *transaction.TransactionID, child iterator.DbIterator, pool *memory.BufferPool, tableID int) (*Insert, error) {
	if pool == nil {
		return nil, errors.New("buffer pool cannot be nil")
	}

	src, err := newSource(child)
	if err != nil {
		return nil, err
	}

	ins := &Insert{
		tid:     tid,
		source:  src,
		pool:    pool,
		tableID: tableID,
		td:      countDesc(),
	}
	ins.base = iterator.NewBase(ins.readNext)
	return ins, nil
}

func (ins *Insert) readNext() (*tuple.Tuple, error) {
	if ins.done {
		return nil, nil
	}
	ins.done = true

	count := int32(0)
	for {
		t, err := ins.source.FetchNext()
		if err != nil {
			return nil, err
		}
		if t == nil {
			break
		}
		if err := ins.pool.InsertTuple(ins.tid, ins.tableID, t); err != nil {
			return nil, errors.Wrap(err, "insert failed")
		}
		count++
	}

	result := tuple.NewTuple(ins.td)
	if err := result.SetField(0, types.NewIntField(count)); err != nil {
		return nil, err
	}
	return result, nil
}

func (ins *Insert) Open() error {
	if err := ins.source.Open(); err != nil {
		return err
	}
	ins.done = false
	ins.base.MarkOpened()
	return nil
}

func (ins *Insert) HasNext() (bool, error) { return ins.base.HasNext() }

func (ins *Insert) Next() (*tuple.Tuple, error) { return ins.base.Next() }

func (ins *Insert) Rewind() error {
	if err := ins.source.Rewind(); err != nil {
		return err
	}
	ins.done = false
	ins.base.ClearCache()
	return nil
}

func (ins *Insert) Close() error {
	ins.base.Close()
	return ins.source.Close()
}

func (ins *Insert) TupleDesc() *tuple.TupleDescription {
	return ins.td
}

func (ins *Insert) Children() []iterator.DbIterator {
	return []iterator.DbIterator{ins.source.child}
}

func (ins *Insert) SetChildren(children []iterator.DbIterator) {
	if len(children) == 1 {
		ins.source.child = children[0]
	}
}
