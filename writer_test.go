package omw

import (
	"reflect"
	"testing"
)

// recordSink captures emissions as printable trace entries.
type recordSink struct {
	trace []string
	vals  []Value
}

func (r *recordSink) put(tag string, v Value) error {
	r.trace = append(r.trace, tag)
	r.vals = append(r.vals, v)
	return nil
}

func (r *recordSink) WriteBool(v bool) error           { return r.put("bool", BoolValue(v)) }
func (r *recordSink) WriteInt(v int32) error           { return r.put("int", IntValue(v)) }
func (r *recordSink) WriteUint(v uint32) error         { return r.put("uint", UintValue(v)) }
func (r *recordSink) WriteFloat(v float32) error       { return r.put("float", FloatValue(v)) }
func (r *recordSink) WriteString(s string) error       { return r.put("string", StringValue(s)) }
func (r *recordSink) WriteFloatList(v []float32) error { return r.put("floatlist", FloatListValue(v)) }
func (r *recordSink) WriteMatrix(m *Matrix) error      { return r.put("matrix", MatrixValue(m)) }
func (r *recordSink) BeginList(n int) error            { return r.put("begin", IntValue(int32(n))) }
func (r *recordSink) EndList() error                   { return r.put("end", Value{}) }

func TestWriteValueComposite(t *testing.T) {
	sink := &recordSink{}
	v := ListValue(IntValue(1), ListValue(StringValue("a")), FloatValue(2))
	if err := WriteValue(sink, v); err != nil {
		t.Fatalf("WriteValue: %v", err)
	}
	want := []string{"begin", "int", "begin", "string", "end", "float", "end"}
	if !reflect.DeepEqual(sink.trace, want) {
		t.Fatalf("trace = %v, want %v", sink.trace, want)
	}
}

func TestWriteValueUnknownKind(t *testing.T) {
	sink := &recordSink{}
	if err := WriteValue(sink, Value{Kind: Kind(200)}); err == nil {
		t.Fatal("WriteValue accepted an unknown kind")
	}
}

func TestCallWriteSingle(t *testing.T) {
	sink := &recordSink{}
	c := NewCall(nil, sink)
	if c.HasResult() {
		t.Fatal("fresh call already has a result")
	}
	if err := c.WriteInt(6); err != nil {
		t.Fatalf("WriteInt: %v", err)
	}
	if !c.HasResult() {
		t.Fatal("result not recorded")
	}
	if !reflect.DeepEqual(sink.trace, []string{"int"}) {
		t.Fatalf("trace = %v", sink.trace)
	}
}

func TestCallWriteMultipleGroupsIntoList(t *testing.T) {
	sink := &recordSink{}
	c := NewCall(nil, sink)
	if err := c.Write(IntValue(1), StringValue("a")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	want := []string{"begin", "int", "string", "end"}
	if !reflect.DeepEqual(sink.trace, want) {
		t.Fatalf("trace = %v, want %v", sink.trace, want)
	}
}

func TestCallWriteNothing(t *testing.T) {
	sink := &recordSink{}
	c := NewCall(nil, sink)
	if err := c.Write(); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if c.HasResult() {
		t.Fatal("empty write counted as a result")
	}
	if len(sink.trace) != 0 {
		t.Fatalf("trace = %v, want empty", sink.trace)
	}
}
