package linkhost

import "github.com/alixinne/omw"

// sink serializes results onto the link. Every top-level emission is
// wrapped in an answer packet so the peer can tell results from
// interleaved message traffic.
type sink struct {
	w     *Wrapper
	depth int
}

func (s *sink) emitStart() error {
	if s.depth == 0 {
		return s.w.link.PutFunction(packetReturn, 1)
	}
	return nil
}

func (s *sink) emitEnd() error {
	if s.depth == 0 {
		return s.w.link.EndPacket()
	}
	return nil
}

func (s *sink) atom(put func() error) error {
	if err := s.emitStart(); err != nil {
		return err
	}
	if err := put(); err != nil {
		return err
	}
	return s.emitEnd()
}

func (s *sink) WriteBool(v bool) error {
	sym := "False"
	if v {
		sym = "True"
	}
	return s.atom(func() error { return s.w.link.PutSymbol(sym) })
}

func (s *sink) WriteInt(v int32) error {
	return s.atom(func() error { return s.w.link.PutInt32(v) })
}

// WriteUint widens to the 64-bit put: the narrow unsigned transfer is
// unreliable on the link layer.
func (s *sink) WriteUint(v uint32) error {
	return s.atom(func() error { return s.w.link.PutInt64(int64(v)) })
}

func (s *sink) WriteFloat(v float32) error {
	return s.atom(func() error { return s.w.link.PutReal32(v) })
}

func (s *sink) WriteString(v string) error {
	return s.atom(func() error { return s.w.link.PutString(v) })
}

func (s *sink) WriteFloatList(v []float32) error {
	return s.atom(func() error { return s.w.link.PutReal32List(v) })
}

// WriteMatrix emits the raw numeric buffer, wrapped in a 1-argument
// image constructor when the wrapper is in matrices-as-images mode.
func (s *sink) WriteMatrix(m *omw.Matrix) error {
	return s.atom(func() error {
		if s.w.MatricesAsImages() {
			if err := s.w.link.PutFunction("Image", 1); err != nil {
				return err
			}
		}
		return s.w.link.PutReal32Array(m.Data, matrixDims(m))
	})
}

func (s *sink) BeginList(n int) error {
	if err := s.emitStart(); err != nil {
		return err
	}
	s.depth++
	return s.w.link.PutFunction("List", n)
}

func (s *sink) EndList() error {
	s.depth--
	return s.emitEnd()
}

// matrixDims collapses a unit third axis so planar data round-trips as
// a 2-axis wire array.
func matrixDims(m *omw.Matrix) []int {
	if m.Dims[2] == 1 {
		return []int{m.Dims[0], m.Dims[1]}
	}
	return []int{m.Dims[0], m.Dims[1], m.Dims[2]}
}
