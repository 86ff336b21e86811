// Package tuple holds the row model: schemas, tuples, and the record ids
// that tie a tuple back to its slot on a page.
package tuple

import (
	"strings"

	"github.com/pkg/errors"

	"heapdb/pkg/types"
)

// Tuple is one row of data. Fields are accessed positionally; the RecordID
// is set once the tuple is stored on a page and nil otherwise.
type Tuple struct {
	TupleDesc *TupleDescription
	RecordID  *RecordID
	fields    []types.Field
}

// NewTuple creates an empty tuple with the given schema.
func NewTuple(td *TupleDescription) *Tuple {
	return &Tuple{
		TupleDesc: td,
		fields:    make([]types.Field, td.NumFields()),
	}
}

// SetField stores a value at field index i. The value's type must match the
// schema.
func (t *Tuple) SetField(i int, field types.Field) error {
	if i < 0 || i >= len(t.fields) {
		return errors.Errorf("field index %d out of bounds [0, %d)", i, len(t.fields))
	}

	expectedType, _ := t.TupleDesc.TypeAtIndex(i)
	if field.Type() != expectedType {
		return errors.Errorf("field type mismatch at index %d: expected %v, got %v",
			i, expectedType, field.Type())
	}

	t.fields[i] = field
	return nil
}

// GetField returns the value at field index i.
func (t *Tuple) GetField(i int) (types.Field, error) {
	if i < 0 || i >= len(t.fields) {
		return nil, errors.Errorf("field index %d out of bounds [0, %d)", i, len(t.fields))
	}
	return t.fields[i], nil
}

// Equals reports whether two tuples have equal schemas and field values.
// Record ids are not compared.
func (t *Tuple) Equals(other *Tuple) bool {
	if other == nil || !t.TupleDesc.Equals(other.TupleDesc) {
		return false
	}
	for i, field := range t.fields {
		if field == nil || other.fields[i] == nil {
			if field != other.fields[i] {
				return false
			}
			continue
		}
		if !field.Equals(other.fields[i]) {
			return false
		}
	}
	return true
}

// CombineTuples concatenates two tuples into one, as a join does.
func CombineTuples(t1, t2 *Tuple) (*Tuple, error) {
	if t1 == nil || t2 == nil {
		return nil, errors.New("cannot combine nil tuples")
	}

	combined := NewTuple(Combine(t1.TupleDesc, t2.TupleDesc))
	if err := t1.copyFieldsTo(combined, 0); err != nil {
		return nil, err
	}
	if err := t2.copyFieldsTo(combined, t1.TupleDesc.NumFields()); err != nil {
		return nil, err
	}
	return combined, nil
}

func (t *Tuple) copyFieldsTo(target *Tuple, startIndex int) error {
	for i := 0; i < t.TupleDesc.NumFields(); i++ {
		field, err := t.GetField(i)
		if err != nil {
			return err
		}
		if field != nil {
			if err := target.SetField(startIndex+i, field); err != nil {
				return err
			}
		}
	}
	return nil
}

// String renders the tuple as tab-separated field values.
func (t *Tuple) String() string {
	parts := make([]string, 0, len(t.fields))
	for _, field := range t.fields {
		if field != nil {
			parts = append(parts, field.String())
		} else {
			parts = append(parts, "null")
		}
	}
	return strings.Join(parts, "\t")
}
