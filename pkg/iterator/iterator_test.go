package iterator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"heapdb/pkg/tuple"
	"heapdb/pkg/types"
)

func testTuples(t *testing.T, n int) (*tuple.TupleDescription, []*tuple.Tuple) {
	t.Helper()
	td, err := tuple.NewTupleDesc([]types.Type{types.IntType}, []string{"v"})
	require.NoError(t, err)

	tuples := make([]*tuple.Tuple, n)
	for i := range tuples {
		tuples[i] = tuple.NewTuple(td)
		require.NoError(t, tuples[i].SetField(0, types.NewIntField(int32(i))))
	}
	return td, tuples
}

func TestBaseReadAheadCaching(t *testing.T) {
	calls := 0
	_, tuples := testTuples(t, 2)
	b := NewBase(func() (*tuple.Tuple, error) {
		if calls >= len(tuples) {
			return nil, nil
		}
		calls++
		return tuples[calls-1], nil
	})
	b.MarkOpened()

	// Repeated HasNext consumes nothing.
	for i := 0; i < 3; i++ {
		hasNext, err := b.HasNext()
		require.NoError(t, err)
		assert.True(t, hasNext)
	}
	assert.Equal(t, 1, calls)

	first, err := b.Next()
	require.NoError(t, err)
	assert.Equal(t, tuples[0], first)

	second, err := b.Next()
	require.NoError(t, err)
	assert.Equal(t, tuples[1], second)

	_, err = b.Next()
	assert.ErrorIs(t, err, ErrNoMoreTuples)
}

func TestBaseRequiresOpen(t *testing.T) {
	b := NewBase(func() (*tuple.Tuple, error) { return nil, nil })

	_, err := b.HasNext()
	assert.ErrorIs(t, err, ErrNotOpened)
	_, err = b.Next()
	assert.ErrorIs(t, err, ErrNotOpened)

	b.MarkOpened()
	b.Close()
	_, err = b.HasNext()
	assert.ErrorIs(t, err, ErrNotOpened)
}

func TestSliceIteratorLifecycle(t *testing.T) {
	td, tuples := testTuples(t, 3)
	si := NewSliceIterator(td, tuples)

	_, err := si.HasNext()
	assert.ErrorIs(t, err, ErrNotOpened)

	require.NoError(t, si.Open())
	count, err := Count(si)
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	_, err = si.Next()
	assert.ErrorIs(t, err, ErrNoMoreTuples)

	require.NoError(t, si.Rewind())
	collected, err := Collect(si)
	require.NoError(t, err)
	assert.Len(t, collected, 3)

	require.NoError(t, si.Close())
	_, err = si.HasNext()
	assert.ErrorIs(t, err, ErrNotOpened)
}

func TestForEachStopsOnError(t *testing.T) {
	td, tuples := testTuples(t, 5)
	si := NewSliceIterator(td, tuples)
	require.NoError(t, si.Open())

	seen := 0
	err := ForEach(si, func(*tuple.Tuple) error {
		seen++
		if seen == 2 {
			return assert.AnError
		}
		return nil
	})

	assert.ErrorIs(t, err, assert.AnError)
	assert.Equal(t, 2, seen)
}
