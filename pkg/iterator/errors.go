package iterator

import "github.com/pkg/errors"

var (
	// ErrNotOpened is returned when HasNext or Next is called on an
	// iterator that was never opened or has been closed.
	ErrNotOpened = errors.New("iterator not opened")

	// ErrNoMoreTuples is returned by Next once the iterator is exhausted.
	ErrNoMoreTuples = errors.New("no more tuples")
)
