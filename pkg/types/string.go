package types

import (
	"encoding/binary"
	"io"
	"strings"
)

// StringMaxSize is the fixed capacity of a string field in bytes. Strings
// longer than this are truncated on construction.
const StringMaxSize = 128

// StringField represents a fixed-capacity string column value. On disk it
// occupies a 4-byte length prefix followed by StringMaxSize payload bytes.
type StringField struct {
	Value string
}

func NewStringField(value string) *StringField {
	if len(value) > StringMaxSize {
		value = value[:StringMaxSize]
	}
	return &StringField{Value: value}
}

// Serialize writes the length prefix, the string bytes, and zero padding up
// to StringMaxSize.
func (f *StringField) Serialize(w io.Writer) error {
	buf := make([]byte, 4+StringMaxSize)
	binary.BigEndian.PutUint32(buf, uint32(len(f.Value)))
	copy(buf[4:], f.Value)
	_, err := w.Write(buf)
	return err
}

// Compare evaluates lexicographic ordering against another string field.
func (f *StringField) Compare(op Predicate, other Field) (bool, error) {
	otherStr, ok := other.(*StringField)
	if !ok {
		return false, nil
	}

	cmp := strings.Compare(f.Value, otherStr.Value)

	switch op {
	case Equals:
		return cmp == 0, nil
	case LessThan:
		return cmp < 0, nil
	case GreaterThan:
		return cmp > 0, nil
	case LessThanOrEqual:
		return cmp <= 0, nil
	case GreaterThanOrEqual:
		return cmp >= 0, nil
	case NotEqual:
		return cmp != 0, nil
	default:
		return false, nil
	}
}

func (f *StringField) Type() Type {
	return StringType
}

func (f *StringField) String() string {
	return f.Value
}

func (f *StringField) Equals(other Field) bool {
	otherStr, ok := other.(*StringField)
	if !ok {
		return false
	}
	return f.Value == otherStr.Value
}
