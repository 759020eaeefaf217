package linkhost

import (
	"errors"

	"github.com/alixinne/omw"
	"github.com/alixinne/omw/link"
)

// stream adapts a link to the parameter reading contract. The link
// partially consumes expressions on mismatched typed reads, so every
// speculative read happens under a mark that is destroyed on all exit
// paths.
type stream struct {
	link   link.Link
	cursor int
}

func newStream(l link.Link) *stream {
	return &stream{link: l, cursor: omw.CursorUnbound}
}

func (s *stream) begin() { s.cursor = 0 }

func (s *stream) end() { s.cursor = omw.CursorUnbound }

// isMismatch separates recoverable typed-read failures from link
// transport errors.
func isMismatch(err error) bool {
	return errors.Is(err, link.ErrType) || errors.Is(err, link.ErrHead) || errors.Is(err, link.ErrEmpty)
}

func (s *stream) CheckIndex(idx int, name string) error {
	if s.cursor != idx {
		return omw.PositionError(name, idx, s.cursor)
	}
	return nil
}

func (s *stream) TryRead(kind omw.Kind, idx int, name string, data bool) (omw.Value, bool, error) {
	if err := s.CheckIndex(idx, name); err != nil {
		return omw.Value{}, false, err
	}
	switch kind {
	case omw.KindBool:
		return s.tryBool(data)
	case omw.KindInt:
		return s.tryInt(data)
	case omw.KindUint:
		return s.tryUint(data)
	case omw.KindFloat:
		return s.tryFloat(data)
	case omw.KindString:
		return s.tryString(data)
	case omw.KindFloatList:
		return s.tryFloatList(data)
	case omw.KindMatrix:
		return s.tryMatrix(data)
	}
	return omw.Value{}, false, omw.ReadError(name, idx)
}

// tryBool reads the True or False symbol. Any other symbol is a
// mismatch and rolls back so the symbol stays readable.
func (s *stream) tryBool(data bool) (omw.Value, bool, error) {
	mark := s.link.Mark()
	defer s.link.DestroyMark(mark)

	sym, err := s.link.ReadSymbol()
	if err != nil {
		if isMismatch(err) {
			return omw.Value{}, false, nil
		}
		return omw.Value{}, false, err
	}
	ok := sym == "True" || sym == "False"
	if ok && data {
		s.cursor++
		return omw.BoolValue(sym == "True"), true, nil
	}
	s.link.SeekMark(mark)
	return omw.Value{}, ok, nil
}

func (s *stream) tryInt(data bool) (omw.Value, bool, error) {
	if !data {
		return omw.Value{}, s.link.NextType() == link.TokenInt, nil
	}
	v, err := s.link.ReadInt32()
	if err != nil {
		if isMismatch(err) {
			return omw.Value{}, false, nil
		}
		return omw.Value{}, false, err
	}
	s.cursor++
	return omw.IntValue(v), true, nil
}

// tryUint transfers the value as a wide signed integer and truncates:
// the narrow unsigned read is unreliable on the link layer.
func (s *stream) tryUint(data bool) (omw.Value, bool, error) {
	if !data {
		return omw.Value{}, s.link.NextType() == link.TokenInt, nil
	}
	v, err := s.link.ReadInt64()
	if err != nil {
		if isMismatch(err) {
			return omw.Value{}, false, nil
		}
		return omw.Value{}, false, err
	}
	s.cursor++
	return omw.UintValue(uint32(v)), true, nil
}

// tryFloat probes strictly for a real token but lets the data-mode
// read widen integers. The asymmetry is what makes a union over
// (int32, float32) resolve integer wire values to the integer arm.
func (s *stream) tryFloat(data bool) (omw.Value, bool, error) {
	if !data {
		return omw.Value{}, s.link.NextType() == link.TokenReal, nil
	}
	v, err := s.link.ReadReal32()
	if err != nil {
		if isMismatch(err) {
			return omw.Value{}, false, nil
		}
		return omw.Value{}, false, err
	}
	s.cursor++
	return omw.FloatValue(v), true, nil
}

func (s *stream) tryString(data bool) (omw.Value, bool, error) {
	if !data {
		return omw.Value{}, s.link.NextType() == link.TokenString, nil
	}
	v, err := s.link.ReadString()
	if err != nil {
		if isMismatch(err) {
			return omw.Value{}, false, nil
		}
		return omw.Value{}, false, err
	}
	s.cursor++
	return omw.StringValue(Unescape(v)), true, nil
}

func (s *stream) tryFloatList(data bool) (omw.Value, bool, error) {
	mark := s.link.Mark()
	defer s.link.DestroyMark(mark)

	v, err := s.link.ReadReal32List()
	if err != nil {
		if isMismatch(err) {
			return omw.Value{}, false, nil
		}
		return omw.Value{}, false, err
	}
	if !data {
		s.link.SeekMark(mark)
		return omw.Value{}, true, nil
	}
	s.cursor++
	return omw.FloatListValue(v), true, nil
}

func (s *stream) tryMatrix(data bool) (omw.Value, bool, error) {
	mark := s.link.Mark()
	defer s.link.DestroyMark(mark)

	buf, dims, err := s.link.ReadReal32Array()
	if err != nil {
		if isMismatch(err) {
			return omw.Value{}, false, nil
		}
		return omw.Value{}, false, err
	}
	if len(dims) < 2 || len(dims) > 3 {
		s.link.SeekMark(mark)
		return omw.Value{}, false, nil
	}
	if !data {
		s.link.SeekMark(mark)
		return omw.Value{}, true, nil
	}
	m, err := omw.NewMatrix(buf, dims...)
	if err != nil {
		s.link.SeekMark(mark)
		return omw.Value{}, false, err
	}
	s.cursor++
	return omw.MatrixValue(m), true, nil
}

// TryAbsent peeks for the Null symbol. A symbol announced by the link
// that then fails to read is an API coherence error, as the wrapped
// kernel protocol defines it.
func (s *stream) TryAbsent(idx int, name string) (bool, error) {
	if err := s.CheckIndex(idx, name); err != nil {
		return false, err
	}
	if s.link.NextType() != link.TokenSymbol {
		return false, nil
	}
	mark := s.link.Mark()
	defer s.link.DestroyMark(mark)

	sym, err := s.link.ReadSymbol()
	if err != nil {
		return false, omw.SymbolStateError(name, idx)
	}
	if sym == "Null" {
		s.cursor++
		return true, nil
	}
	s.link.SeekMark(mark)
	return false, nil
}

func (s *stream) EnterTuple(idx int, name string, arity int) error {
	n, err := s.link.CheckFunction("List")
	if err != nil {
		if isMismatch(err) {
			return omw.TupleHeadError(name, idx)
		}
		return err
	}
	if n != arity {
		return omw.TupleArityError(n, arity, name, idx)
	}
	return nil
}

func (s *stream) LeaveTuple(idx int) {
	s.cursor = idx + 1
}

func (s *stream) BeginTupleList(firstIdx int, arity int) (int, error) {
	if s.cursor != firstIdx {
		return 0, omw.ErrInvalidListIndex
	}
	n, err := s.link.CheckFunction("List")
	if err != nil {
		if isMismatch(err) {
			return 0, omw.ErrInvalidListHead
		}
		return 0, err
	}
	return n, nil
}
