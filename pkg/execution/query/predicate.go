package query

import (
	"fmt"

	"github.com/pkg/errors"

	"heapdb/pkg/tuple"
	"heapdb/pkg/types"
)

// Predicate compares one field of a tuple against a constant operand.
type Predicate struct {
	fieldIndex int
	op         types.Predicate
	operand    types.Field
}

func NewPredicate(fieldIndex int, op types.Predicate, operand types.Field) (*Predicate, error) {
	if operand == nil {
		return nil, errors.New("operand cannot be nil")
	}
	return &Predicate{fieldIndex: fieldIndex, op: op, operand: operand}, nil
}

// Filter reports whether t satisfies the predicate.
func (p *Predicate) Filter(t *tuple.Tuple) (bool, error) {
	field, err := t.GetField(p.fieldIndex)
	if err != nil {
		return false, err
	}
	return field.Compare(p.op, p.operand)
}

func (p *Predicate) String() string {
	return fmt.Sprintf("field[%d] %v %v", p.fieldIndex, p.op, p.operand)
}

// JoinPredicate compares a field of a left tuple with a field of a right
// tuple.
type JoinPredicate struct {
	leftField  int
	rightField int
	op         types.Predicate
}

func NewJoinPredicate(leftField, rightField int, op types.Predicate) *JoinPredicate {
	return &JoinPredicate{leftField: leftField, rightField: rightField, op: op}
}

// Matches reports whether the pair (left, right) satisfies the predicate.
func (jp *JoinPredicate) Matches(left, right *tuple.Tuple) (bool, error) {
	leftVal, err := left.GetField(jp.leftField)
	if err != nil {
		return false, err
	}
	rightVal, err := right.GetField(jp.rightField)
	if err != nil {
		return false, err
	}
	return leftVal.Compare(jp.op, rightVal)
}
