// Package query implements the relational operators above the storage
// layer: sequential scan, filter, project, nested-loop join, insert, and
// delete. Every operator honors the iterator contract in pkg/iterator.
package query

import (
	"github.com/pkg/errors"

	"heapdb/pkg/iterator"
	"heapdb/pkg/tuple"
)

// source wraps a child operator and folds the HasNext/Next ceremony into a
// single FetchNext call for unary operators.
type source struct {
	child iterator.DbIterator
}

func newSource(child iterator.DbIterator) (*source, error) {
	if child == nil {
		return nil, errors.New("child operator cannot be nil")
	}
	return &source{child: child}, nil
}

// FetchNext returns the child's next tuple, or nil once the child is
// exhausted.
func (s *source) FetchNext() (*tuple.Tuple, error) {
	hasNext, err := s.child.HasNext()
	if err != nil {
		return nil, err
	}
	if !hasNext {
		return nil, nil
	}
	return s.child.Next()
}

func (s *source) Open() error {
	return s.child.Open()
}

func (s *source) Close() error {
	return s.child.Close()
}

func (s *source) Rewind() error {
	return s.child.Rewind()
}

func (s *source) TupleDesc() *tuple.TupleDescription {
	return s.child.TupleDesc()
}
