// Package aggregation implements grouped and ungrouped incremental
// aggregation behind the standard iterator contract. Two aggregators exist:
// one over integer fields (MIN, MAX, SUM, AVG, COUNT) and one over string
// fields (COUNT only).
package aggregation

import (
	"github.com/pkg/errors"

	"heapdb/pkg/iterator"
	"heapdb/pkg/tuple"
)

// NoGrouping is the sentinel group-by index meaning a single global
// accumulator.
const NoGrouping = -1

// ungroupedKey is the internal map key used when no grouping is in effect.
const ungroupedKey = "NO_GROUPING"

// ErrUnsupportedOperation is returned when an aggregator is built with an
// operation it cannot compute. This is a programming error, not data-driven.
var ErrUnsupportedOperation = errors.New("unsupported aggregate operation")

// AggregateOp is the aggregation operation to perform.
type AggregateOp int

const (
	Min AggregateOp = iota
	Max
	Sum
	Avg
	Count
)

// String returns the operator's name, which is also the result field's name.
func (op AggregateOp) String() string {
	switch op {
	case Min:
		return "MIN"
	case Max:
		return "MAX"
	case Sum:
		return "SUM"
	case Avg:
		return "AVG"
	case Count:
		return "COUNT"
	default:
		return "UNKNOWN"
	}
}

// Aggregator folds tuples into running per-group state and exposes the
// results through an iterator.
type Aggregator interface {
	// Merge folds one tuple into the running aggregate, grouping as
	// configured at construction.
	Merge(t *tuple.Tuple) error

	// Iterator returns an iterator over the result rows: (aggregateValue)
	// when ungrouped, (groupValue, aggregateValue) when grouped.
	Iterator() iterator.DbIterator

	// TupleDesc returns the schema of the result rows.
	TupleDesc() *tuple.TupleDescription
}
