package aggregation

import (
	"sync"

	"github.com/pkg/errors"

	"heapdb/pkg/iterator"
	"heapdb/pkg/tuple"
	"heapdb/pkg/types"
)

// IntegerAggregator computes MIN, MAX, SUM, AVG, or COUNT over an integer
// field. AVG keeps the running sum and count per group rather than the
// current average, so the result stays exact however many tuples arrive.
type IntegerAggregator struct {
	mu          sync.RWMutex
	groupByField int
	groupByType  types.Type
	aggField     int
	op           AggregateOp
	tupleDesc    *tuple.TupleDescription
	groups       map[string]*intGroup
	order        []string
}

// intGroup is the running accumulator of one group. value carries the
// MIN/MAX/SUM/COUNT state; sum and count carry the AVG state.
type intGroup struct {
	groupVal types.Field
	value    int64
	sum      int64
	count    int64
}

// NewIntegerAggregator builds an integer aggregator. groupByField is the
// index of the grouping field, or NoGrouping for a single accumulator;
// groupByType is ignored when ungrouped. aggField is the index of the
// integer field to aggregate.
func NewIntegerAggregator(groupByField int, groupByType types.Type, aggField int, op AggregateOp) (*IntegerAggregator, error) {
	switch op {
	case Min, Max, Sum, Avg, Count:
	default:
		return nil, errors.Wrapf(ErrUnsupportedOperation, "integer aggregator cannot compute %v", op)
	}

	td, err := resultDesc(groupByField, groupByType, op)
	if err != nil {
		return nil, err
	}

	return &IntegerAggregator{
		groupByField: groupByField,
		groupByType:  groupByType,
		aggField:     aggField,
		op:           op,
		tupleDesc:    td,
		groups:       make(map[string]*intGroup),
	}, nil
}

func (ia *IntegerAggregator) TupleDesc() *tuple.TupleDescription {
	return ia.tupleDesc
}

// Merge folds one tuple into the running state of its group.
func (ia *IntegerAggregator) Merge(t *tuple.Tuple) error {
	ia.mu.Lock()
	defer ia.mu.Unlock()

	key, groupVal, err := groupKey(t, ia.groupByField)
	if err != nil {
		return err
	}

	aggField, err := t.GetField(ia.aggField)
	if err != nil {
		return errors.Wrap(err, "failed to get aggregate field")
	}
	intField, ok := aggField.(*types.IntField)
	if !ok {
		return errors.Errorf("aggregate field is not an integer: %T", aggField)
	}
	v := int64(intField.Value)

	g, exists := ia.groups[key]
	if !exists {
		g = ia.newGroup(groupVal, v)
		ia.groups[key] = g
		ia.order = append(ia.order, key)
		return nil
	}

	switch ia.op {
	case Min:
		if v < g.value {
			g.value = v
		}
	case Max:
		if v > g.value {
			g.value = v
		}
	case Sum:
		g.value += v
	case Count:
		g.value++
	case Avg:
		g.sum += v
		g.count++
	}
	return nil
}

// newGroup builds the initial accumulator from the first merged value.
func (ia *IntegerAggregator) newGroup(groupVal types.Field, v int64) *intGroup {
	g := &intGroup{groupVal: groupVal}
	switch ia.op {
	case Min, Max, Sum:
		g.value = v
	case Count:
		g.value = 1
	case Avg:
		g.sum = v
		g.count = 1
	}
	return g
}

// Iterator returns an iterator over the current results.
func (ia *IntegerAggregator) Iterator() iterator.DbIterator {
	return newResultIterator(ia)
}

func (ia *IntegerAggregator) grouped() bool {
	return ia.groupByField != NoGrouping
}

// resultRows snapshots the per-group results in first-seen order.
func (ia *IntegerAggregator) resultRows() []resultRow {
	ia.mu.RLock()
	defer ia.mu.RUnlock()

	rows := make([]resultRow, 0, len(ia.order))
	for _, key := range ia.order {
		g := ia.groups[key]
		value := g.value
		if ia.op == Avg {
			value = g.sum / g.count
		}
		rows = append(rows, resultRow{
			groupVal: g.groupVal,
			aggVal:   types.NewIntField(int32(value)),
		})
	}
	return rows
}

// groupKey extracts the grouping field and its map key from a tuple.
// Ungrouped aggregation maps everything to one key and a nil group value.
func groupKey(t *tuple.Tuple, groupByField int) (string, types.Field, error) {
	if groupByField == NoGrouping {
		return ungroupedKey, nil, nil
	}

	groupField, err := t.GetField(groupByField)
	if err != nil {
		return "", nil, errors.Wrap(err, "failed to get grouping field")
	}
	return groupField.String(), groupField, nil
}
