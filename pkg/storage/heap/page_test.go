package heap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"heapdb/pkg/concurrency/transaction"
	"heapdb/pkg/tuple"
	"heapdb/pkg/types"
)

func twoIntDesc(t *testing.T) *tuple.TupleDescription {
	t.Helper()
	td, err := tuple.NewTupleDesc([]types.Type{types.IntType, types.IntType}, []string{"a", "b"})
	require.NoError(t, err)
	return td
}

func makeTuple(t *testing.T, td *tuple.TupleDescription, a, b int32) *tuple.Tuple {
	t.Helper()
	tup := tuple.NewTuple(td)
	require.NoError(t, tup.SetField(0, types.NewIntField(a)))
	require.NoError(t, tup.SetField(1, types.NewIntField(b)))
	return tup
}

func TestSlotsPerPage(t *testing.T) {
	td := twoIntDesc(t)
	// 8-byte tuples cost 65 bits each on a 4096-byte page.
	assert.Equal(t, 4096*8/65, slotsPerPage(td))
}

func TestEmptyPageHasAllSlotsFree(t *testing.T) {
	td := twoIntDesc(t)
	hp, err := NewEmptyHeapPage(NewPageID(1, 0), td)
	require.NoError(t, err)

	assert.Equal(t, hp.NumSlots(), hp.NumEmptySlots())
	assert.Empty(t, hp.Tuples())
}

func TestAddTupleAssignsRecordID(t *testing.T) {
	td := twoIntDesc(t)
	hp, err := NewEmptyHeapPage(NewPageID(1, 0), td)
	require.NoError(t, err)

	tup := makeTuple(t, td, 1, 2)
	require.NoError(t, hp.AddTuple(tup))

	require.NotNil(t, tup.RecordID)
	assert.True(t, tup.RecordID.PID.Equals(NewPageID(1, 0)))
	assert.Equal(t, 0, tup.RecordID.SlotNo)
	assert.Equal(t, hp.NumSlots()-1, hp.NumEmptySlots())
}

func TestAddTupleRejectsWrongSchema(t *testing.T) {
	td := twoIntDesc(t)
	hp, err := NewEmptyHeapPage(NewPageID(1, 0), td)
	require.NoError(t, err)

	other, err := tuple.NewTupleDesc([]types.Type{types.StringType}, nil)
	require.NoError(t, err)

	tup := tuple.NewTuple(other)
	require.NoError(t, tup.SetField(0, types.NewStringField("x")))
	assert.Error(t, hp.AddTuple(tup))
}

func TestAddTupleFullPage(t *testing.T) {
	td := twoIntDesc(t)
	hp, err := NewEmptyHeapPage(NewPageID(1, 0), td)
	require.NoError(t, err)

	for i := 0; i < hp.NumSlots(); i++ {
		require.NoError(t, hp.AddTuple(makeTuple(t, td, int32(i), 0)))
	}
	assert.Equal(t, 0, hp.NumEmptySlots())
	assert.Error(t, hp.AddTuple(makeTuple(t, td, 99, 99)))
}

func TestDeleteTuple(t *testing.T) {
	td := twoIntDesc(t)
	hp, err := NewEmptyHeapPage(NewPageID(1, 0), td)
	require.NoError(t, err)

	tup := makeTuple(t, td, 1, 2)
	require.NoError(t, hp.AddTuple(tup))
	require.NoError(t, hp.DeleteTuple(tup))

	assert.Nil(t, tup.RecordID)
	assert.Empty(t, hp.Tuples())
}

func TestDeleteTupleErrors(t *testing.T) {
	td := twoIntDesc(t)
	hp, err := NewEmptyHeapPage(NewPageID(1, 0), td)
	require.NoError(t, err)

	// no record id
	assert.Error(t, hp.DeleteTuple(makeTuple(t, td, 1, 2)))

	// wrong page
	tup := makeTuple(t, td, 1, 2)
	tup.RecordID = tuple.NewRecordID(NewPageID(1, 5), 0)
	assert.Error(t, hp.DeleteTuple(tup))

	// empty slot
	tup2 := makeTuple(t, td, 1, 2)
	tup2.RecordID = tuple.NewRecordID(NewPageID(1, 0), 3)
	assert.Error(t, hp.DeleteTuple(tup2))
}

func TestPageDataRoundTrip(t *testing.T) {
	td := twoIntDesc(t)
	pid := NewPageID(7, 3)
	hp, err := NewEmptyHeapPage(pid, td)
	require.NoError(t, err)

	inserted := []*tuple.Tuple{
		makeTuple(t, td, 1, 2),
		makeTuple(t, td, -5, 10),
		makeTuple(t, td, 2147483647, -2147483648),
	}
	for _, tup := range inserted {
		require.NoError(t, hp.AddTuple(tup))
	}

	restored, err := NewHeapPage(pid, hp.PageData(), td)
	require.NoError(t, err)

	live := restored.Tuples()
	require.Len(t, live, len(inserted))
	for i, tup := range inserted {
		assert.True(t, tup.Equals(live[i]), "tuple %d", i)
		assert.Equal(t, i, live[i].RecordID.SlotNo)
	}
}

func TestRoundTripPreservesDeletedSlots(t *testing.T) {
	td := twoIntDesc(t)
	pid := NewPageID(7, 0)
	hp, err := NewEmptyHeapPage(pid, td)
	require.NoError(t, err)

	first := makeTuple(t, td, 1, 1)
	second := makeTuple(t, td, 2, 2)
	require.NoError(t, hp.AddTuple(first))
	require.NoError(t, hp.AddTuple(second))
	require.NoError(t, hp.DeleteTuple(first))

	restored, err := NewHeapPage(pid, hp.PageData(), td)
	require.NoError(t, err)

	live := restored.Tuples()
	require.Len(t, live, 1)
	assert.True(t, second.Equals(live[0]))
	assert.Equal(t, 1, live[0].RecordID.SlotNo)
}

func TestDirtyMarker(t *testing.T) {
	td := twoIntDesc(t)
	hp, err := NewEmptyHeapPage(NewPageID(1, 0), td)
	require.NoError(t, err)

	assert.Nil(t, hp.IsDirty())

	tid := transaction.NewTransactionID()
	hp.MarkDirty(true, tid)
	require.NotNil(t, hp.IsDirty())
	assert.True(t, hp.IsDirty().Equals(tid))

	hp.MarkDirty(false, nil)
	assert.Nil(t, hp.IsDirty())
}

func TestPageIDEquality(t *testing.T) {
	assert.True(t, NewPageID(1, 2).Equals(NewPageID(1, 2)))
	assert.False(t, NewPageID(1, 2).Equals(NewPageID(1, 3)))
	assert.False(t, NewPageID(2, 2).Equals(NewPageID(1, 2)))
}
