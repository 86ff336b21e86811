package query

import (
	"github.com/pkg/errors"

	"heapdb/pkg/iterator"
	"heapdb/pkg/tuple"
)

// Filter passes through the child's tuples that satisfy its predicate.
type Filter struct {
	base      *iterator.Base
	predicate *Predicate
	source    *source
}

func NewFilter(predicate *Predicate, child iterator.DbIterator) (*Filter, error) {
	if predicate == nil {
		return nil, errors.New("predicate cannot be nil")
	}

	src, err := newSource(child)
	if err != nil {
		return nil, err
	}

	f := &Filter{predicate: predicate, source: src}
	f.base = iterator.NewBase(f.readNext)
	return f, nil
}

func (f *Filter) readNext() (*tuple.Tuple, error) {
	for {
		t, err := f.source.FetchNext()
		if err != nil || t == nil {
			return t, err
		}

		passes, err := f.predicate.Filter(t)
		if err != nil {
			return nil, errors.Wrap(err, "predicate evaluation failed")
		}
		if passes {
			return t, nil
		}
	}
}

func (f *Filter) Open() error {
	if err := f.source.Open(); err != nil {
		return err
	}
	f.base.MarkOpened()
	return nil
}

func (f *Filter) HasNext() (bool, error) { return f.base.HasNext() }

func (f *Filter) Next() (*tuple.Tuple, error) { return f.base.Next() }

func (f *Filter) Rewind() error {
	if err := f.source.Rewind(); err != nil {
		return err
	}
	f.base.ClearCache()
	return nil
}

func (f *Filter) Close() error {
	f.base.Close()
	return f.source.Close()
}

func (f *Filter) TupleDesc() *tuple.TupleDescription {
	return f.source.TupleDesc()
}

func (f *Filter) Children() []iterator.DbIterator {
	return []iterator.DbIterator{f.source.child}
}

func (f *Filter) SetChildren(children []iterator.DbIterator) {
	if len(children) == 1 {
		f.source.child = children[0]
	}
}
