// Package iterator defines the pull-based iterator contract every operator
// in the execution engine honors, plus the shared caching base that
// implements the HasNext/Next bookkeeping once.
package iterator

import "heapdb/pkg/tuple"

// TupleIterator captures the two methods shared by every tuple producer.
type TupleIterator interface {
	// HasNext checks whether another tuple is available without consuming
	// it. It is idempotent.
	HasNext() (bool, error)

	// Next returns the next tuple and advances the iterator by exactly one
	// row. Past the end it returns ErrNoMoreTuples.
	Next() (*tuple.Tuple, error)
}

// DbIterator is the contract of every relational operator: scan, filter,
// project, join, insert, delete, aggregate. Open must be called before
// HasNext or Next; Rewind restarts production from the beginning; Close
// releases resources, after which HasNext and Next return ErrNotOpened
// until the next Open (the aggregation result iterator is the exception:
// its HasNext reports false after Close).
type DbIterator interface {
	TupleIterator

	Open() error
	Rewind() error
	Close() error

	// TupleDesc returns the schema of tuples this operator produces.
	TupleDesc() *tuple.TupleDescription

	// Children returns the child operators feeding this one; leaves return
	// nil.
	Children() []DbIterator

	// SetChildren replaces the child operators, preserving the operator
	// tree shape.
	SetChildren(children []DbIterator)
}

// DbFileIterator iterates the tuples of one database file under a
// transaction. It is the storage-level iterator below DbIterator: same
// lifecycle, no schema reporting.
type DbFileIterator interface {
	TupleIterator

	Open() error
	Rewind() error
	Close() error
}
