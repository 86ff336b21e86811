package iterator

import (
	"github.com/pkg/errors"

	"heapdb/pkg/tuple"
)

// ReadNextFunc produces the next tuple of an operator, or (nil, nil) when
// the operator is exhausted.
type ReadNextFunc func() (*tuple.Tuple, error)

// Base implements the HasNext/Next caching protocol shared by every
// operator: HasNext reads ahead one tuple and caches it, Next consumes the
// cached tuple. Operators embed a Base and supply their readNext logic.
type Base struct {
	readNext ReadNextFunc
	next     *tuple.Tuple
	opened   bool
}

func NewBase(readNext ReadNextFunc) *Base {
	return &Base{readNext: readNext}
}

// MarkOpened records that the owning operator has been opened.
func (b *Base) MarkOpened() {
	b.opened = true
}

// IsOpened reports whether the owning operator is open.
func (b *Base) IsOpened() bool {
	return b.opened
}

// HasNext reports whether another tuple is available, reading ahead and
// caching it if necessary.
func (b *Base) HasNext() (bool, error) {
	if !b.opened {
		return false, errors.WithStack(ErrNotOpened)
	}
	if b.next != nil {
		return true, nil
	}

	t, err := b.readNext()
	if err != nil {
		return false, err
	}
	b.next = t
	return t != nil, nil
}

// Next returns the cached tuple or reads the next one. Past the end it
// returns ErrNoMoreTuples.
func (b *Base) Next() (*tuple.Tuple, error) {
	hasNext, err := b.HasNext()
	if err != nil {
		return nil, err
	}
	if !hasNext {
		return nil, errors.WithStack(ErrNoMoreTuples)
	}

	t := b.next
	b.next = nil
	return t, nil
}

// ClearCache drops any read-ahead tuple. Operators call it on Rewind.
func (b *Base) ClearCache() {
	b.next = nil
}

// Close drops cached state and marks the operator closed.
func (b *Base) Close() {
	b.next = nil
	b.opened = false
}
