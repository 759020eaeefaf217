package arrayhost

import "github.com/alixinne/omw"

// sink accumulates result values. Grouped writes build real nested
// lists: each BeginList opens a frame and EndList folds it into the
// enclosing one as a single value.
type sink struct {
	frames [][]omw.Value
}

func newSink() *sink {
	return &sink{frames: [][]omw.Value{nil}}
}

func (s *sink) push(v omw.Value) error {
	top := len(s.frames) - 1
	s.frames[top] = append(s.frames[top], v)
	return nil
}

func (s *sink) WriteBool(v bool) error          { return s.push(omw.BoolValue(v)) }
func (s *sink) WriteInt(v int32) error          { return s.push(omw.IntValue(v)) }
func (s *sink) WriteUint(v uint32) error        { return s.push(omw.UintValue(v)) }
func (s *sink) WriteFloat(v float32) error      { return s.push(omw.FloatValue(v)) }
func (s *sink) WriteString(v string) error      { return s.push(omw.StringValue(v)) }
func (s *sink) WriteFloatList(v []float32) error { return s.push(omw.FloatListValue(v)) }
func (s *sink) WriteMatrix(m *omw.Matrix) error { return s.push(omw.MatrixValue(m)) }

func (s *sink) BeginList(n int) error {
	s.frames = append(s.frames, make([]omw.Value, 0, n))
	return nil
}

func (s *sink) EndList() error {
	top := len(s.frames) - 1
	items := s.frames[top]
	s.frames = s.frames[:top]
	return s.push(omw.ListValue(items...))
}

// results returns the completed top-level values.
func (s *sink) results() []omw.Value {
	return s.frames[0]
}
