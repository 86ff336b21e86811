package types

import "io"

// Field is a single column value inside a tuple. Implementations are
// immutable after construction.
type Field interface {
	// Serialize writes the field to w in its fixed on-disk format.
	Serialize(w io.Writer) error

	// Compare evaluates this field against other under the given predicate.
	Compare(op Predicate, other Field) (bool, error)

	// Type returns the column type of this field.
	Type() Type

	// String returns a human-readable representation of the value.
	String() string

	// Equals reports structural equality with another field.
	Equals(other Field) bool
}
