package types

import (
	"encoding/binary"
	"io"

	"github.com/pkg/errors"
)

// ParseField reads one serialized field of the given type from r.
func ParseField(r io.Reader, fieldType Type) (Field, error) {
	switch fieldType {
	case IntType:
		return parseIntField(r)
	case StringType:
		return parseStringField(r)
	default:
		return nil, errors.Errorf("unsupported field type: %v", fieldType)
	}
}

func parseIntField(r io.Reader) (*IntField, error) {
	buf := make([]byte, 4)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, errors.Wrap(err, "failed to read int field")
	}
	return NewIntField(int32(binary.BigEndian.Uint32(buf))), nil
}

func parseStringField(r io.Reader) (*StringField, error) {
	buf := make([]byte, 4+StringMaxSize)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, errors.Wrap(err, "failed to read string field")
	}

	length := binary.BigEndian.Uint32(buf)
	if length > StringMaxSize {
		return nil, errors.Errorf("string field length %d exceeds capacity %d", length, StringMaxSize)
	}

	return NewStringField(string(buf[4 : 4+length])), nil
}
