package aggregation

import (
	"sync"

	"github.com/pkg/errors"

	"heapdb/pkg/iterator"
	"heapdb/pkg/tuple"
	"heapdb/pkg/types"
)

// StringAggregator counts string fields, grouped or ungrouped. COUNT is the
// only operation defined over strings; anything else fails at construction
// rather than silently producing wrong results.
type StringAggregator struct {
	mu           sync.RWMutex
	groupByField int
	groupByType  types.Type
	aggField     int
	tupleDesc    *tuple.TupleDescription
	groups       map[string]*strGroup
	order        []string
}

type strGroup struct {
	groupVal types.Field
	count    int64
}

// NewStringAggregator builds a string aggregator. Only Count is accepted.
func NewStringAggregator(groupByField int, groupByType types.Type, aggField int, op AggregateOp) (*StringAggregator, error) {
	if op != Count {
		return nil, errors.Wrapf(ErrUnsupportedOperation, "string aggregator cannot compute %v", op)
	}

	td, err := resultDesc(groupByField, groupByType, Count)
	if err != nil {
		return nil, err
	}

	return &StringAggregator{
		groupByField: groupByField,
		groupByType:  groupByType,
		aggField:     aggField,
		tupleDesc:    td,
		groups:       make(map[string]*strGroup),
	}, nil
}

func (sa *StringAggregator) TupleDesc() *tuple.TupleDescription {
	return sa.tupleDesc
}

// Merge counts one tuple into its group. The aggregate field's value is
// unused beyond confirming it exists.
func (sa *StringAggregator) Merge(t *tuple.Tuple) error {
	sa.mu.Lock()
	defer sa.mu.Unlock()

	key, groupVal, err := groupKey(t, sa.groupByField)
	if err != nil {
		return err
	}

	if _, err := t.GetField(sa.aggField); err != nil {
		return errors.Wrap(err, "failed to get aggregate field")
	}

	g, exists := sa.groups[key]
	if !exists {
		g = &strGroup{groupVal: groupVal}
		sa.groups[key] = g
		sa.order = append(sa.order, key)
	}
	g.count++
	return nil
}

// Iterator returns an iterator over the current counts.
func (sa *StringAggregator) Iterator() iterator.DbIterator {
	return newResultIterator(sa)
}

func (sa *StringAggregator) grouped() bool {
	return sa.groupByField != NoGrouping
}

func (sa *StringAggregator) resultRows() []resultRow {
	sa.mu.RLock()
	defer sa.mu.RUnlock()

	rows := make([]resultRow, 0, len(sa.order))
	for _, key := range sa.order {
		g := sa.groups[key]
		rows = append(rows, resultRow{
			groupVal: g.groupVal,
			aggVal:   types.NewIntField(int32(g.count)),
		})
	}
	return rows
}
