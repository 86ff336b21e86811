package tuple

import "github.com/pkg/errors"

// Iterator walks a fixed slice of tuples. It is the in-page iterator used by
// scans once a page's tuples have been materialized.
type Iterator struct {
	tuples []*Tuple
	index  int
}

func NewIterator(tuples []*Tuple) *Iterator {
	return &Iterator{tuples: tuples, index: -1}
}

func (it *Iterator) HasNext() bool {
	return it.index+1 < len(it.tuples)
}

func (it *Iterator) Next() (*Tuple, error) {
	if !it.HasNext() {
		return nil, errors.New("no more tuples")
	}
	it.index++
	return it.tuples[it.index], nil
}

func (it *Iterator) Rewind() {
	it.index = -1
}
