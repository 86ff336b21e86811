package query

import (
	"github.com/pkg/errors"

	"heapdb/pkg/iterator"
	"heapdb/pkg/tuple"
)

// Join combines tuple pairs from two children that satisfy its predicate,
// using a nested loop: for each left tuple the right child is rewound and
// scanned in full.
type Join struct {
	base        *iterator.Base
	predicate   *JoinPredicate
	left, right iterator.DbIterator
	tupleDesc   *tuple.TupleDescription
	currentLeft *tuple.Tuple
}

func NewJoin(predicate *JoinPredicate, left, right iterator.DbIterator) (*Join, error) {
	if predicate == nil {
		return nil, errors.New("join predicate cannot be nil")
	}
	if left == nil || right == nil {
		return nil, errors.New("child operators cannot be nil")
	}

	j := &Join{
		predicate: predicate,
		left:      left,
		right:     right,
		tupleDesc: tuple.Combine(left.TupleDesc(), right.TupleDesc()),
	}
	j.base = iterator.NewBase(j.readNext)
	return j, nil
}

func (j *Join) readNext() (*tuple.Tuple, error) {
	for {
		if j.currentLeft == nil {
			hasNext, err := j.left.HasNext()
			if err != nil {
				return nil, err
			}
			if !hasNext {
				return nil, nil
			}
			if j.currentLeft, err = j.left.Next(); err != nil {
				return nil, err
			}
			if err := j.right.Rewind(); err != nil {
				return nil, err
			}
		}

		for {
			hasNext, err := j.right.HasNext()
			if err != nil {
				return nil, err
			}
			if !hasNext {
				break
			}

			rightTuple, err := j.right.Next()
			if err != nil {
				return nil, err
			}

			matches, err := j.predicate.Matches(j.currentLeft, rightTuple)
			if err != nil {
				return nil, err
			}
			if matches {
				return tuple.CombineTuples(j.currentLeft, rightTuple)
			}
		}

		j.currentLeft = nil
	}
}

func (j *Join) Open() error {
	if err := j.left.Open(); err != nil {
		return err
	}
	if err := j.right.Open(); err != nil {
		j.left.Close()
		return err
	}
	j.currentLeft = nil
	j.base.MarkOpened()
	return nil
}

func (j *Join) HasNext() (bool, error) { return j.base.HasNext() }

func (j *Join) Next() (*tuple.Tuple, error) { return j.base.Next() }

func (j *Join) Rewind() error {
	if err := j.left.Rewind(); err != nil {
		return err
	}
	if err := j.right.Rewind(); err != nil {
		return err
	}
	j.currentLeft = nil
	j.base.ClearCache()
	return nil
}

func (j *Join) Close() error {
	j.base.Close()
	j.currentLeft = nil
	err := j.left.Close()
	if rightErr := j.right.Close(); err == nil {
		err = rightErr
	}
	return err
}

func (j *Join) TupleDesc() *tuple.TupleDescription {
	return j.tupleDesc
}

func (j *Join) Children() []iterator.DbIterator {
	return []iterator.DbIterator{j.left, j.right}
}

func (j *Join) SetChildren(children []iterator.DbIterator) {
	if len(children) == 2 {
		j.left = children[0]
		j.right = children[1]
	}
}
