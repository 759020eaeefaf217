package omw

import "fmt"

// TupleList reads a homogeneous run of tuples laid out after firstIdx:
// one wire list of tuples on list-shaped hosts, the remaining argument
// vector on flat hosts. Elements are read in order through Next, each
// occupying one logical slot.
type TupleList struct {
	c     *Call
	elems []Shape
	name  string
	first int
	count int
	at    int
}

// TupleList opens the tuple run at firstIdx. The element shapes must
// be atomic so the per-element width is known to flat hosts.
func (c *Call) TupleList(firstIdx int, name string, elems ...Shape) (*TupleList, error) {
	if len(elems) == 0 {
		return nil, fmt.Errorf("tuple list for %s needs at least one element shape", name)
	}
	for _, e := range elems {
		if _, ok := e.(AtomicShape); !ok {
			return nil, fmt.Errorf("tuple list for %s requires atomic element shapes, got %s", name, e)
		}
	}
	count, err := c.stream.BeginTupleList(firstIdx, len(elems))
	if err != nil {
		return nil, err
	}
	return &TupleList{c: c, elems: elems, name: name, first: firstIdx, count: count}, nil
}

// Count returns the number of elements in the run.
func (r *TupleList) Count() int {
	return r.count
}

// More reports whether Next has elements left to read.
func (r *TupleList) More() bool {
	return r.at < r.count
}

// Next reads the next element. Single-shape runs yield the bare value;
// wider runs yield one value per tuple component.
func (r *TupleList) Next() ([]Value, error) {
	if r.at >= r.count {
		return nil, fmt.Errorf("tuple list for %s exhausted after %d elements", r.name, r.count)
	}
	idx := r.first + r.at
	r.at++
	if len(r.elems) == 1 {
		v, err := r.c.Read(r.elems[0], idx, r.name)
		if err != nil {
			return nil, err
		}
		return []Value{v}, nil
	}
	return r.c.Tuple(idx, r.name, r.elems...)
}
