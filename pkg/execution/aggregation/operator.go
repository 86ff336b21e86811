package aggregation

import (
	"github.com/pkg/errors"

	"heapdb/pkg/iterator"
	"heapdb/pkg/tuple"
	"heapdb/pkg/types"
)

// Aggregate is the relational operator over an aggregator: on Open it
// drains its child through Merge, then serves the result rows.
type Aggregate struct {
	child        iterator.DbIterator
	groupByField int
	aggField     int
	op           AggregateOp
	agg          Aggregator
	results      iterator.DbIterator
	opened       bool
}

// NewAggregate builds the operator. The aggregator variant is chosen by the
// type of the aggregate field in the child's schema.
func NewAggregate(child iterator.DbIterator, aggField, groupByField int, op AggregateOp) (*Aggregate, error) {
	if child == nil {
		return nil, errors.New("child operator cannot be nil")
	}

	a := &Aggregate{
		child:        child,
		groupByField: groupByField,
		aggField:     aggField,
		op:           op,
	}
	if err := a.buildAggregator(); err != nil {
		return nil, err
	}
	return a, nil
}

func (a *Aggregate) buildAggregator() error {
	childDesc := a.child.TupleDesc()

	aggType, err := childDesc.TypeAtIndex(a.aggField)
	if err != nil {
		return errors.Wrap(err, "invalid aggregate field")
	}

	var groupByType types.Type
	if a.groupByField != NoGrouping {
		groupByType, err = childDesc.TypeAtIndex(a.groupByField)
		if err != nil {
			return errors.Wrap(err, "invalid group-by field")
		}
	}

	switch aggType {
	case types.IntType:
		a.agg, err = NewIntegerAggregator(a.groupByField, groupByType, a.aggField, a.op)
	case types.StringType:
		a.agg, err = NewStringAggregator(a.groupByField, groupByType, a.aggField, a.op)
	default:
		return errors.Errorf("cannot aggregate over field type %v", aggType)
	}
	return err
}

// Open opens the child, folds every child tuple into the aggregator, and
// positions before the first result row.
func (a *Aggregate) Open() error {
	if err := a.child.Open(); err != nil {
		return err
	}

	if err := iterator.ForEach(a.child, a.agg.Merge); err != nil {
		a.child.Close()
		return err
	}

	a.results = a.agg.Iterator()
	if err := a.results.Open(); err != nil {
		a.child.Close()
		return err
	}
	a.opened = true
	return nil
}

func (a *Aggregate) HasNext() (bool, error) {
	if !a.opened {
		return false, errors.WithStack(iterator.ErrNotOpened)
	}
	return a.results.HasNext()
}

func (a *Aggregate) Next() (*tuple.Tuple, error) {
	if !a.opened {
		return nil, errors.WithStack(iterator.ErrNotOpened)
	}
	return a.results.Next()
}

func (a *Aggregate) Rewind() error {
	if !a.opened {
		return errors.WithStack(iterator.ErrNotOpened)
	}
	return a.results.Rewind()
}

func (a *Aggregate) Close() error {
	if a.results != nil {
		a.results.Close()
		a.results = nil
	}
	a.opened = false
	return a.child.Close()
}

func (a *Aggregate) TupleDesc() *tuple.TupleDescription {
	return a.agg.TupleDesc()
}

func (a *Aggregate) Children() []iterator.DbIterator {
	return []iterator.DbIterator{a.child}
}

func (a *Aggregate) SetChildren(children []iterator.DbIterator) {
	if len(children) == 1 {
		a.child = children[0]
	}
}
