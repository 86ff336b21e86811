package aggregation

import (
	"github.com/pkg/errors"

	"heapdb/pkg/iterator"
	"heapdb/pkg/tuple"
	"heapdb/pkg/types"
)

// groupSource is what a result iterator needs from its aggregator: a
// snapshot of the current rows plus the output schema.
type groupSource interface {
	resultRows() []resultRow
	grouped() bool
	TupleDesc() *tuple.TupleDescription
}

// resultRow is one output row before rendering into a tuple. groupVal is
// nil for ungrouped aggregation.
type resultRow struct {
	groupVal types.Field
	aggVal   types.Field
}

// resultIterator iterates the rows of an aggregator. Open snapshots the
// aggregator's state; Rewind resets to before the first row; Close drops
// the snapshot, after which HasNext reports false.
type resultIterator struct {
	source groupSource
	rows   []resultRow
	index  int
	opened bool
	closed bool
}

func newResultIterator(source groupSource) *resultIterator {
	return &resultIterator{source: source, index: -1}
}

func (it *resultIterator) Open() error {
	it.rows = it.source.resultRows()
	it.index = -1
	it.opened = true
	it.closed = false
	return nil
}

func (it *resultIterator) HasNext() (bool, error) {
	if !it.opened {
		if it.closed {
			return false, nil
		}
		return false, errors.WithStack(iterator.ErrNotOpened)
	}
	return it.index+1 < len(it.rows), nil
}

func (it *resultIterator) Next() (*tuple.Tuple, error) {
	hasNext, err := it.HasNext()
	if err != nil {
		return nil, err
	}
	if !hasNext {
		return nil, errors.WithStack(iterator.ErrNoMoreTuples)
	}

	it.index++
	return it.renderRow(it.rows[it.index])
}

func (it *resultIterator) Rewind() error {
	if !it.opened {
		return errors.WithStack(iterator.ErrNotOpened)
	}
	it.index = -1
	return nil
}

func (it *resultIterator) Close() error {
	it.rows = nil
	it.index = -1
	it.opened = false
	it.closed = true
	return nil
}

func (it *resultIterator) TupleDesc() *tuple.TupleDescription {
	return it.source.TupleDesc()
}

func (it *resultIterator) Children() []iterator.DbIterator {
	return nil
}

func (it *resultIterator) SetChildren([]iterator.DbIterator) {}

func (it *resultIterator) renderRow(row resultRow) (*tuple.Tuple, error) {
	t := tuple.NewTuple(it.source.TupleDesc())

	if !it.source.grouped() {
		if err := t.SetField(0, row.aggVal); err != nil {
			return nil, err
		}
		return t, nil
	}

	if err := t.SetField(0, row.groupVal); err != nil {
		return nil, err
	}
	if err := t.SetField(1, row.aggVal); err != nil {
		return nil, err
	}
	return t, nil
}
