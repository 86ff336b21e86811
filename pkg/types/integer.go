package types

import (
	"encoding/binary"
	"io"
	"strconv"
)

// IntField represents a 32-bit signed integer column value.
type IntField struct {
	Value int32
}

func NewIntField(value int32) *IntField {
	return &IntField{Value: value}
}

// Serialize writes the value as 4 big-endian bytes.
func (f *IntField) Serialize(w io.Writer) error {
	buf := make([]byte, 4)
	binary.BigEndian.PutUint32(buf, uint32(f.Value))
	_, err := w.Write(buf)
	return err
}

func (f *IntField) Compare(op Predicate, other Field) (bool, error) {
	otherInt, ok := other.(*IntField)
	if !ok {
		return false, nil
	}

	switch op {
	case Equals:
		return f.Value == otherInt.Value, nil
	case LessThan:
		return f.Value < otherInt.Value, nil
	case GreaterThan:
		return f.Value > otherInt.Value, nil
	case LessThanOrEqual:
		return f.Value <= otherInt.Value, nil
	case GreaterThanOrEqual:
		return f.Value >= otherInt.Value, nil
	case NotEqual:
		return f.Value != otherInt.Value, nil
	default:
		return false, nil
	}
}

func (f *IntField) Type() Type {
	return IntType
}

func (f *IntField) String() string {
	return strconv.FormatInt(int64(f.Value), 10)
}

func (f *IntField) Equals(other Field) bool {
	otherInt, ok := other.(*IntField)
	if !ok {
		return false
	}
	return f.Value == otherInt.Value
}
