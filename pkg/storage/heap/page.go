// Package heap implements the heap file storage format: a flat file of
// fixed-size pages, each holding fixed-size tuple slots behind an occupancy
// bitmap.
package heap

import (
	"bytes"
	"sync"

	"github.com/pkg/errors"

	"heapdb/pkg/concurrency/transaction"
	"heapdb/pkg/storage/page"
	"heapdb/pkg/tuple"
	"heapdb/pkg/types"
)

// HeapPage stores tuples of one fixed schema in numbered slots.
//
// Page layout:
//
//	[header bitmap][slot 0][slot 1]...[slot N-1][padding]
//
// The header holds one bit per slot (bit i%8 of byte i/8 set = slot i occupied).
// Slot count is the largest N with N*(tupleSize*8+1) <= pageSize*8; the
// header occupies ceil(N/8) bytes and each slot exactly tupleSize bytes.
type HeapPage struct {
	mu        sync.RWMutex
	pid       PageID
	tupleDesc *tuple.TupleDescription
	header    []byte
	tuples    []*tuple.Tuple
	numSlots  int
	dirtier   *transaction.TransactionID
}

// NewHeapPage deserializes a page from raw bytes. data must be exactly the
// process page size.
func NewHeapPage(pid PageID, data []byte, td *tuple.TupleDescription) (*HeapPage, error) {
	if len(data) != page.Size() {
		return nil, errors.Errorf("invalid page data size: expected %d, got %d", page.Size(), len(data))
	}

	hp := &HeapPage{
		pid:       pid,
		tupleDesc: td,
		numSlots:  slotsPerPage(td),
	}
	hp.tuples = make([]*tuple.Tuple, hp.numSlots)
	hp.header = make([]byte, headerSize(hp.numSlots))
	copy(hp.header, data)

	if err := hp.parseTuples(data); err != nil {
		return nil, err
	}
	return hp, nil
}

// NewEmptyHeapPage creates a page with every slot free.
func NewEmptyHeapPage(pid PageID, td *tuple.TupleDescription) (*HeapPage, error) {
	return NewHeapPage(pid, make([]byte, page.Size()), td)
}

// slotsPerPage computes how many tuples of the given schema fit on one page,
// accounting for the one header bit each slot costs.
func slotsPerPage(td *tuple.TupleDescription) int {
	tupleBits := int(td.GetSize())*8 + 1
	return page.Size() * 8 / tupleBits
}

func headerSize(numSlots int) int {
	return (numSlots + 7) / 8
}

func (hp *HeapPage) ID() tuple.PageID {
	return hp.pid
}

// IsDirty returns the transaction that dirtied this page, or nil if clean.
func (hp *HeapPage) IsDirty() *transaction.TransactionID {
	hp.mu.RLock()
	defer hp.mu.RUnlock()
	return hp.dirtier
}

// MarkDirty sets or clears the dirty marker.
func (hp *HeapPage) MarkDirty(dirty bool, tid *transaction.TransactionID) {
	hp.mu.Lock()
	defer hp.mu.Unlock()

	if dirty {
		hp.dirtier = tid
	} else {
		hp.dirtier = nil
	}
}

// TupleDesc returns the schema of tuples stored on this page.
func (hp *HeapPage) TupleDesc() *tuple.TupleDescription {
	return hp.tupleDesc
}

// NumSlots returns the total slot count of this page.
func (hp *HeapPage) NumSlots() int {
	return hp.numSlots
}

// NumEmptySlots returns the number of unoccupied slots.
func (hp *HeapPage) NumEmptySlots() int {
	hp.mu.RLock()
	defer hp.mu.RUnlock()

	empty := 0
	for i := 0; i < hp.numSlots; i++ {
		if !hp.slotUsed(i) {
			empty++
		}
	}
	return empty
}

// PageData serializes the page: header bitmap, then each occupied slot's
// tuple, with free slots and trailing space zero-filled.
func (hp *HeapPage) PageData() []byte {
	hp.mu.RLock()
	defer hp.mu.RUnlock()

	data := make([]byte, page.Size())
	copy(data, hp.header)

	slotSize := int(hp.tupleDesc.GetSize())
	for i := 0; i < hp.numSlots; i++ {
		if !hp.slotUsed(i) || hp.tuples[i] == nil {
			continue
		}

		offset := len(hp.header) + i*slotSize
		buf := bytes.NewBuffer(data[offset:offset])
		for j := 0; j < hp.tupleDesc.NumFields(); j++ {
			field, err := hp.tuples[i].GetField(j)
			if err != nil || field == nil {
				continue
			}
			_ = field.Serialize(buf)
		}
	}

	return data
}

// AddTuple stores t in the first free slot and assigns its record id.
func (hp *HeapPage) AddTuple(t *tuple.Tuple) error {
	hp.mu.Lock()
	defer hp.mu.Unlock()

	if !t.TupleDesc.Equals(hp.tupleDesc) {
		return errors.New("tuple schema does not match page schema")
	}

	slot := -1
	for i := 0; i < hp.numSlots; i++ {
		if !hp.slotUsed(i) {
			slot = i
			break
		}
	}
	if slot < 0 {
		return errors.New("no empty slot on page")
	}

	hp.setSlotUsed(slot, true)
	hp.tuples[slot] = t
	t.RecordID = tuple.NewRecordID(hp.pid, slot)
	return nil
}

// DeleteTuple removes t from its slot, located by the tuple's record id.
// The record id is cleared on success.
func (hp *HeapPage) DeleteTuple(t *tuple.Tuple) error {
	hp.mu.Lock()
	defer hp.mu.Unlock()

	rid := t.RecordID
	if rid == nil {
		return errors.New("tuple has no record id")
	}
	if !rid.PID.Equals(hp.pid) {
		return errors.Errorf("tuple belongs to page %v, not %v", rid.PID, hp.pid)
	}
	if rid.SlotNo < 0 || rid.SlotNo >= hp.numSlots || !hp.slotUsed(rid.SlotNo) {
		return errors.Errorf("slot %d is not occupied", rid.SlotNo)
	}

	hp.setSlotUsed(rid.SlotNo, false)
	hp.tuples[rid.SlotNo] = nil
	t.RecordID = nil
	return nil
}

// Tuples returns the occupied slots' tuples in slot order.
func (hp *HeapPage) Tuples() []*tuple.Tuple {
	hp.mu.RLock()
	defer hp.mu.RUnlock()

	live := make([]*tuple.Tuple, 0, hp.numSlots)
	for i := 0; i < hp.numSlots; i++ {
		if hp.slotUsed(i) && hp.tuples[i] != nil {
			live = append(live, hp.tuples[i])
		}
	}
	return live
}

func (hp *HeapPage) parseTuples(data []byte) error {
	slotSize := int(hp.tupleDesc.GetSize())

	for i := 0; i < hp.numSlots; i++ {
		if !hp.slotUsed(i) {
			continue
		}

		offset := len(hp.header) + i*slotSize
		reader := bytes.NewReader(data[offset : offset+slotSize])

		t := tuple.NewTuple(hp.tupleDesc)
		for j := 0; j < hp.tupleDesc.NumFields(); j++ {
			fieldType, err := hp.tupleDesc.TypeAtIndex(j)
			if err != nil {
				return err
			}
			field, err := types.ParseField(reader, fieldType)
			if err != nil {
				return errors.Wrapf(err, "failed to parse tuple at slot %d", i)
			}
			if err := t.SetField(j, field); err != nil {
				return err
			}
		}

		t.RecordID = tuple.NewRecordID(hp.pid, i)
		hp.tuples[i] = t
	}
	return nil
}

func (hp *HeapPage) slotUsed(i int) bool {
	return hp.header[i/8]&(1<<(i%8)) != 0
}

func (hp *HeapPage) setSlotUsed(i int, used bool) {
	if used {
		hp.header[i/8] |= 1 << (i % 8)
	} else {
		hp.header[i/8] &^= 1 << (i % 8)
	}
}
