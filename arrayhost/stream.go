// Package arrayhost adapts the parameter contract to hosts that hand
// over a call as an indexed argument vector and take results back as a
// value list. Tuples occupy consecutive physical slots, so the adapter
// tracks the logical parameter cursor and the physical argument
// position separately.
package arrayhost

import "github.com/alixinne/omw"

type stream struct {
	args   []omw.Value
	cursor int
	pos    int
}

func newStream(args []omw.Value) *stream {
	return &stream{args: args, cursor: omw.CursorUnbound}
}

func (s *stream) begin() {
	s.cursor = 0
	s.pos = 0
}

func (s *stream) end() { s.cursor = omw.CursorUnbound }

func (s *stream) CheckIndex(idx int, name string) error {
	if s.cursor != idx {
		return omw.PositionError(name, idx, s.cursor)
	}
	if s.pos >= len(s.args) {
		return omw.MissingParamError(name, idx)
	}
	return nil
}

// TryRead matches the current argument against kind. Numeric widening
// accepts an integer argument where a float is requested; everything
// else matches on the argument's own kind.
func (s *stream) TryRead(kind omw.Kind, idx int, name string, data bool) (omw.Value, bool, error) {
	if err := s.CheckIndex(idx, name); err != nil {
		return omw.Value{}, false, err
	}
	arg := s.args[s.pos]

	var v omw.Value
	switch kind {
	case omw.KindBool:
		if arg.Kind != omw.KindBool {
			return omw.Value{}, false, nil
		}
		v = arg
	case omw.KindInt:
		if arg.Kind != omw.KindInt {
			return omw.Value{}, false, nil
		}
		v = arg
	case omw.KindUint:
		switch arg.Kind {
		case omw.KindUint:
			v = arg
		case omw.KindInt:
			v = omw.UintValue(uint32(arg.Int))
		default:
			return omw.Value{}, false, nil
		}
	case omw.KindFloat:
		switch arg.Kind {
		case omw.KindFloat:
			v = arg
		case omw.KindInt:
			v = omw.FloatValue(float32(arg.Int))
		default:
			return omw.Value{}, false, nil
		}
	case omw.KindString:
		if arg.Kind != omw.KindString {
			return omw.Value{}, false, nil
		}
		v = arg
	case omw.KindFloatList:
		if arg.Kind != omw.KindFloatList {
			return omw.Value{}, false, nil
		}
		v = arg
	case omw.KindMatrix:
		if arg.Kind != omw.KindMatrix {
			return omw.Value{}, false, nil
		}
		v = arg
	default:
		return omw.Value{}, false, omw.ReadError(name, idx)
	}

	if !data {
		return omw.Value{}, true, nil
	}
	s.cursor++
	s.pos++
	return v, true, nil
}

// TryAbsent treats a vector that ran out of arguments as an absent
// trailing parameter, and an explicit none placeholder as an absent
// slot that is still consumed.
func (s *stream) TryAbsent(idx int, name string) (bool, error) {
	if s.cursor != idx {
		return false, omw.PositionError(name, idx, s.cursor)
	}
	if s.pos >= len(s.args) {
		s.cursor++
		return true, nil
	}
	if s.args[s.pos].Kind == omw.KindNone {
		s.cursor++
		s.pos++
		return true, nil
	}
	return false, nil
}

// EnterTuple only has to check that enough physical slots remain; the
// components are plain consecutive arguments.
func (s *stream) EnterTuple(idx int, name string, arity int) error {
	if s.pos+arity > len(s.args) {
		return omw.TupleSizeError(arity, name, idx)
	}
	return nil
}

func (s *stream) LeaveTuple(idx int) {
	s.cursor = idx + 1
}

// BeginTupleList claims everything from the current position to the
// end of the vector, whole elements only.
func (s *stream) BeginTupleList(firstIdx int, arity int) (int, error) {
	if s.cursor != firstIdx {
		return 0, omw.ErrInvalidListIndex
	}
	return (len(s.args) - s.pos) / arity, nil
}
