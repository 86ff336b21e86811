package query

import (
	"github.com/pkg/errors"

	"heapdb/pkg/iterator"
	"heapdb/pkg/tuple"
	"heapdb/pkg/types"
)

// Project narrows each child tuple to a chosen list of fields.
type Project struct {
	base         *iterator.Base
	source       *source
	fieldIndexes []int
	tupleDesc    *tuple.TupleDescription
}

func NewProject(fieldIndexes []int, child iterator.DbIterator) (*Project, error) {
	src, err := newSource(child)
	if err != nil {
		return nil, err
	}
	if len(fieldIndexes) == 0 {
		return nil, errors.New("must project at least one field")
	}

	childDesc := child.TupleDesc()
	outTypes := make([]types.Type, len(fieldIndexes))
	outNames := make([]string, len(fieldIndexes))
	for i, idx := range fieldIndexes {
		fieldType, err := childDesc.TypeAtIndex(idx)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid projection field %d", idx)
		}
		outTypes[i] = fieldType
		outNames[i], _ = childDesc.FieldNameAtIndex(idx)
	}

	td, err := tuple.NewTupleDesc(outTypes, outNames)
	if err != nil {
		return nil, err
	}

	p := &Project{
		source:       src,
		fieldIndexes: append([]int(nil), fieldIndexes...),
		tupleDesc:    td,
	}
	p.base = iterator.NewBase(p.readNext)
	return p, nil
}

func (p *Project) readNext() (*tuple.Tuple, error) {
	t, err := p.source.FetchNext()
	if err != nil || t == nil {
		return t, err
	}

	out := tuple.NewTuple(p.tupleDesc)
	for i, idx := range p.fieldIndexes {
		field, err := t.GetField(idx)
		if err != nil {
			return nil, err
		}
		if err := out.SetField(i, field); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (p *Project) Open() error {
	if err := p.source.Open(); err != nil {
		return err
	}
	p.base.MarkOpened()
	return nil
}

func (p *Project) HasNext() (bool, error) { return p.base.HasNext() }

func (p *Project) Next() (*tuple.Tuple, error) { return p.base.Next() }

func (p *Project) Rewind() error {
	if err := p.source.Rewind(); err != nil {
		return err
	}
	p.base.ClearCache()
	return nil
}

func (p *Project) Close() error {
	p.base.Close()
	return p.source.Close()
}

func (p *Project) TupleDesc() *tuple.TupleDescription {
	return p.tupleDesc
}

func (p *Project) Children() []iterator.DbIterator {
	return []iterator.DbIterator{p.source.child}
}

func (p *Project) SetChildren(children []iterator.DbIterator) {
	if len(children) == 1 {
		p.source.child = children[0]
	}
}
