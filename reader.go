package omw

import "fmt"

// Read decodes the parameter at idx as shape. The cursor must be at
// idx; on success it has advanced by exactly one logical slot,
// whatever the shape's physical width.
func (c *Call) Read(shape Shape, idx int, name string) (Value, error) {
	switch s := shape.(type) {
	case AtomicShape:
		return c.readAtomic(s.Kind, idx, name)
	case OptShape:
		return c.readOpt(s, idx, name)
	case TupleShape:
		return c.readTuple(s, idx, name)
	case UnionShape:
		v, _, err := c.readUnion(s, idx, name)
		return v, err
	}
	return Value{}, fmt.Errorf("unsupported parameter shape %T", shape)
}

func (c *Call) readAtomic(k Kind, idx int, name string) (Value, error) {
	v, ok, err := c.stream.TryRead(k, idx, name, true)
	if err != nil {
		return Value{}, err
	}
	if !ok {
		return Value{}, ReadError(name, idx)
	}
	return v, nil
}

// probe runs a non-consuming type test. The cursor and stream position
// are identical before and after, whatever the outcome.
func (c *Call) probe(k Kind, idx int, name string) (bool, error) {
	_, ok, err := c.stream.TryRead(k, idx, name, false)
	return ok, err
}

func (c *Call) readOpt(s OptShape, idx int, name string) (Value, error) {
	absent, err := c.stream.TryAbsent(idx, name)
	if err != nil {
		return Value{}, err
	}
	if absent {
		return Value{}, nil
	}
	return c.Read(s.Inner, idx, name)
}

func (c *Call) readTuple(s TupleShape, idx int, name string) (Value, error) {
	if err := c.stream.CheckIndex(idx, name); err != nil {
		return Value{}, err
	}
	if err := c.stream.EnterTuple(idx, name, len(s.Elems)); err != nil {
		return Value{}, err
	}
	items := make([]Value, len(s.Elems))
	for i, es := range s.Elems {
		v, err := c.Read(es, idx+i, name)
		if err != nil {
			return Value{}, err
		}
		items[i] = v
	}
	c.stream.LeaveTuple(idx)
	return Value{Kind: KindList, Items: items}, nil
}

// readUnion probes the alternatives in declaration order and consumes
// the first one that matches, so an ambiguous wire value resolves to
// the earliest declared kind.
func (c *Call) readUnion(s UnionShape, idx int, name string) (Value, int, error) {
	for i, k := range s.Alts {
		ok, err := c.probe(k, idx, name)
		if err != nil {
			return Value{}, 0, err
		}
		if !ok {
			continue
		}
		v, err := c.readAtomic(k, idx, name)
		if err != nil {
			return Value{}, 0, err
		}
		return v, i, nil
	}
	return Value{}, 0, VariantError(name, idx)
}

// Bool reads the boolean parameter at idx.
func (c *Call) Bool(idx int, name string) (bool, error) {
	v, err := c.readAtomic(KindBool, idx, name)
	return v.Bool, err
}

// Int reads the 32-bit signed integer parameter at idx.
func (c *Call) Int(idx int, name string) (int32, error) {
	v, err := c.readAtomic(KindInt, idx, name)
	return v.Int, err
}

// Uint reads the unsigned integer parameter at idx. Hosts transfer it
// as a wide signed integer and truncate.
func (c *Call) Uint(idx int, name string) (uint32, error) {
	v, err := c.readAtomic(KindUint, idx, name)
	return v.Uint, err
}

// Float reads the float32 parameter at idx.
func (c *Call) Float(idx int, name string) (float32, error) {
	v, err := c.readAtomic(KindFloat, idx, name)
	return v.Float, err
}

// String reads the string parameter at idx.
func (c *Call) String(idx int, name string) (string, error) {
	v, err := c.readAtomic(KindString, idx, name)
	return v.Str, err
}

// FloatList reads the 1-D float32 array parameter at idx.
func (c *Call) FloatList(idx int, name string) ([]float32, error) {
	v, err := c.readAtomic(KindFloatList, idx, name)
	return v.List, err
}

// Matrix reads the 2- or 3-axis float32 matrix parameter at idx.
func (c *Call) Matrix(idx int, name string) (*Matrix, error) {
	v, err := c.readAtomic(KindMatrix, idx, name)
	return v.Mat, err
}

// Optional reads the parameter at idx as inner when present. The slot
// is consumed either way.
func (c *Call) Optional(inner Shape, idx int, name string) (Value, bool, error) {
	v, err := c.readOpt(OptShape{Inner: inner}, idx, name)
	if err != nil {
		return Value{}, false, err
	}
	return v, v.Kind != KindNone, nil
}

// Tuple reads a fixed tuple of elems starting at idx. The whole tuple
// occupies one logical slot: the next parameter is at idx+1.
func (c *Call) Tuple(idx int, name string, elems ...Shape) ([]Value, error) {
	v, err := c.readTuple(TupleShape{Elems: elems}, idx, name)
	if err != nil {
		return nil, err
	}
	return v.Items, nil
}

// Union reads the parameter at idx as the first matching alternative
// and returns the value with the matched alternative's position.
func (c *Call) Union(idx int, name string, alts ...Kind) (Value, int, error) {
	return c.readUnion(UnionShape{Alts: alts}, idx, name)
}
