package plugin

import (
	omw "github.com/alixinne/omw"
	"github.com/alixinne/omw/codec"
)

// resultSink collects results locally and sends them to the host in a
// single frame when the handler returns.
type resultSink struct {
	frames [][]omw.Value
}

var _ omw.Sink = (*resultSink)(nil)

func newResultSink() *resultSink {
	return &resultSink{frames: [][]omw.Value{nil}}
}

func (s *resultSink) push(v omw.Value) error {
	top := len(s.frames) - 1
	s.frames[top] = append(s.frames[top], v)
	return nil
}

func (s *resultSink) WriteBool(v bool) error          { return s.push(omw.BoolValue(v)) }
func (s *resultSink) WriteInt(v int32) error          { return s.push(omw.IntValue(v)) }
func (s *resultSink) WriteUint(v uint32) error        { return s.push(omw.UintValue(v)) }
func (s *resultSink) WriteFloat(v float32) error      { return s.push(omw.FloatValue(v)) }
func (s *resultSink) WriteString(v string) error      { return s.push(omw.StringValue(v)) }
func (s *resultSink) WriteFloatList(v []float32) error { return s.push(omw.FloatListValue(v)) }
func (s *resultSink) WriteMatrix(m *omw.Matrix) error { return s.push(omw.MatrixValue(m)) }

func (s *resultSink) BeginList(n int) error {
	s.frames = append(s.frames, make([]omw.Value, 0, n))
	return nil
}

func (s *resultSink) EndList() error {
	top := len(s.frames) - 1
	items := s.frames[top]
	s.frames = s.frames[:top]
	return s.push(omw.ListValue(items...))
}

// flush hands the collected results to the host. Nothing is sent when
// the handler wrote nothing, which lets the host emit its null answer.
func (s *resultSink) flush() {
	results := s.frames[0]
	if len(results) == 0 {
		return
	}
	rawResultWrite(codec.EncodeValues(results))
}
