package iterator

import "heapdb/pkg/tuple"

// ForEach applies fn to every remaining tuple of iter, stopping at the
// first error.
func ForEach(iter TupleIterator, fn func(*tuple.Tuple) error) error {
	for {
		hasNext, err := iter.HasNext()
		if err != nil {
			return err
		}
		if !hasNext {
			return nil
		}

		t, err := iter.Next()
		if err != nil {
			return err
		}
		if t == nil {
			continue
		}
		if err := fn(t); err != nil {
			return err
		}
	}
}

// Collect drains iter into a slice.
func Collect(iter TupleIterator) ([]*tuple.Tuple, error) {
	var results []*tuple.Tuple
	err := ForEach(iter, func(t *tuple.Tuple) error {
		results = append(results, t)
		return nil
	})
	return results, err
}

// Count drains iter and returns the number of tuples it produced.
func Count(iter TupleIterator) (int, error) {
	count := 0
	err := ForEach(iter, func(*tuple.Tuple) error {
		count++
		return nil
	})
	return count, err
}
