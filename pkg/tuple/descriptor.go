package tuple

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"

	"heapdb/pkg/types"
)

// TupleDescription describes the schema of a tuple: the type of each field
// in order, plus optional field names.
type TupleDescription struct {
	Types      []types.Type
	FieldNames []string
}

// NewTupleDesc creates a TupleDescription from field types and optional
// names. fieldNames may be nil; if present its length must match fieldTypes.
func NewTupleDesc(fieldTypes []types.Type, fieldNames []string) (*TupleDescription, error) {
	if len(fieldTypes) < 1 {
		return nil, errors.New("must provide at least one field type")
	}

	typesCopy := make([]types.Type, len(fieldTypes))
	copy(typesCopy, fieldTypes)

	var namesCopy []string
	if fieldNames != nil {
		if len(fieldNames) != len(fieldTypes) {
			return nil, errors.Errorf("field names length (%d) must match field types length (%d)",
				len(fieldNames), len(fieldTypes))
		}
		namesCopy = make([]string, len(fieldNames))
		copy(namesCopy, fieldNames)
	}

	return &TupleDescription{
		Types:      typesCopy,
		FieldNames: namesCopy,
	}, nil
}

// NumFields returns the number of fields in this schema.
func (td *TupleDescription) NumFields() int {
	return len(td.Types)
}

// TypeAtIndex returns the type of the ith field.
func (td *TupleDescription) TypeAtIndex(i int) (types.Type, error) {
	if i < 0 || i >= len(td.Types) {
		return 0, errors.Errorf("field index %d out of bounds [0, %d)", i, len(td.Types))
	}
	return td.Types[i], nil
}

// FieldNameAtIndex returns the name of the ith field, or the empty string if
// no names were provided.
func (td *TupleDescription) FieldNameAtIndex(i int) (string, error) {
	if i < 0 || i >= len(td.Types) {
		return "", errors.Errorf("field index %d out of bounds [0, %d)", i, len(td.Types))
	}
	if td.FieldNames == nil {
		return "", nil
	}
	return td.FieldNames[i], nil
}

// GetSize returns the serialized size in bytes of one tuple with this schema.
func (td *TupleDescription) GetSize() uint32 {
	var size uint32
	for _, fieldType := range td.Types {
		size += fieldType.Size()
	}
	return size
}

// Equals reports whether two schemas have identical field types in the same
// order. Field names are not compared.
func (td *TupleDescription) Equals(other *TupleDescription) bool {
	if other == nil {
		return false
	}
	if len(td.Types) != len(other.Types) {
		return false
	}
	for i, fieldType := range td.Types {
		if fieldType != other.Types[i] {
			return false
		}
	}
	return true
}

// Combine concatenates two schemas into one, left fields first.
func Combine(td1, td2 *TupleDescription) *TupleDescription {
	combinedTypes := make([]types.Type, 0, len(td1.Types)+len(td2.Types))
	combinedTypes = append(combinedTypes, td1.Types...)
	combinedTypes = append(combinedTypes, td2.Types...)

	var combinedNames []string
	if td1.FieldNames != nil || td2.FieldNames != nil {
		combinedNames = make([]string, len(td1.Types)+len(td2.Types))
		if td1.FieldNames != nil {
			copy(combinedNames, td1.FieldNames)
		}
		if td2.FieldNames != nil {
			copy(combinedNames[len(td1.Types):], td2.FieldNames)
		}
	}

	return &TupleDescription{
		Types:      combinedTypes,
		FieldNames: combinedNames,
	}
}

// String renders the schema as "Type1(name1),Type2(name2),...".
func (td *TupleDescription) String() string {
	var parts []string
	for i, fieldType := range td.Types {
		name := "null"
		if td.FieldNames != nil && td.FieldNames[i] != "" {
			name = td.FieldNames[i]
		}
		parts = append(parts, fmt.Sprintf("%s(%s)", fieldType, name))
	}
	return strings.Join(parts, ",")
}
