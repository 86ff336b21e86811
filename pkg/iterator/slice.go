package iterator

import (
	"github.com/pkg/errors"

	"heapdb/pkg/tuple"
)

// SliceIterator serves tuples from an in-memory slice. It is used for
// intermediate results and as a leaf in tests.
type SliceIterator struct {
	tuples    []*tuple.Tuple
	tupleDesc *tuple.TupleDescription
	index     int
	opened    bool
}

func NewSliceIterator(td *tuple.TupleDescription, tuples []*tuple.Tuple) *SliceIterator {
	return &SliceIterator{
		tuples:    tuples,
		tupleDesc: td,
		index:     -1,
	}
}

func (si *SliceIterator) Open() error {
	si.index = -1
	si.opened = true
	return nil
}

func (si *SliceIterator) HasNext() (bool, error) {
	if !si.opened {
		return false, errors.WithStack(ErrNotOpened)
	}
	return si.index+1 < len(si.tuples), nil
}

func (si *SliceIterator) Next() (*tuple.Tuple, error) {
	hasNext, err := si.HasNext()
	if err != nil {
		return nil, err
	}
	if !hasNext {
		return nil, errors.WithStack(ErrNoMoreTuples)
	}
	si.index++
	return si.tuples[si.index], nil
}

func (si *SliceIterator) Rewind() error {
	if !si.opened {
		return errors.WithStack(ErrNotOpened)
	}
	si.index = -1
	return nil
}

func (si *SliceIterator) Close() error {
	si.opened = false
	si.index = -1
	return nil
}

func (si *SliceIterator) TupleDesc() *tuple.TupleDescription {
	return si.tupleDesc
}

func (si *SliceIterator) Children() []DbIterator {
	return nil
}

func (si *SliceIterator) SetChildren([]DbIterator) {}
