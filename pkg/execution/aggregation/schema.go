package aggregation

import (
	"heapdb/pkg/tuple"
	"heapdb/pkg/types"
)

// resultDesc builds the output schema of an aggregator: a single INT field
// named after the operation when ungrouped, or (groupby, <OP>) when grouped.
func resultDesc(groupByField int, groupByType types.Type, op AggregateOp) (*tuple.TupleDescription, error) {
	if groupByField == NoGrouping {
		return tuple.NewTupleDesc(
			[]types.Type{types.IntType},
			[]string{op.String()},
		)
	}
	return tuple.NewTupleDesc(
		[]types.Type{groupByType, types.IntType},
		[]string{"groupby", op.String()},
	)
}
