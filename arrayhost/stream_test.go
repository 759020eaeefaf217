package arrayhost

import (
	"errors"
	"testing"

	"github.com/alixinne/omw"
)

func boundCall(args ...omw.Value) *omw.Call {
	st := newStream(args)
	st.begin()
	return omw.NewCall(st, newSink())
}

func TestReadSequence(t *testing.T) {
	c := boundCall(
		omw.IntValue(5),
		omw.StringValue("a\nb"),
		omw.BoolValue(true),
		omw.FloatValue(2.5),
		omw.UintValue(4294967295),
	)
	if v, err := c.Int(0, "a"); err != nil || v != 5 {
		t.Fatalf("Int = %d, %v", v, err)
	}
	if v, err := c.String(1, "b"); err != nil || v != "a\nb" {
		t.Fatalf("String = %q, %v", v, err)
	}
	if v, err := c.Bool(2, "c"); err != nil || !v {
		t.Fatalf("Bool = %v, %v", v, err)
	}
	if v, err := c.Float(3, "d"); err != nil || v != 2.5 {
		t.Fatalf("Float = %v, %v", v, err)
	}
	if v, err := c.Uint(4, "e"); err != nil || v != 4294967295 {
		t.Fatalf("Uint = %d, %v", v, err)
	}
}

func TestFloatWidensInteger(t *testing.T) {
	c := boundCall(omw.IntValue(3))
	if v, err := c.Float(0, "x"); err != nil || v != 3 {
		t.Fatalf("Float = %v, %v", v, err)
	}
}

func TestUintAcceptsInteger(t *testing.T) {
	c := boundCall(omw.IntValue(-1))
	if v, err := c.Uint(0, "x"); err != nil || v != 4294967295 {
		t.Fatalf("Uint = %d, %v", v, err)
	}
}

func TestIntRejectsFloat(t *testing.T) {
	c := boundCall(omw.FloatValue(2.5))
	_, err := c.Int(0, "x")
	if err == nil || err.Error() != "Failed to read parameter x at index 0" {
		t.Fatalf("Int on float = %v", err)
	}
	// Nothing was consumed.
	if v, err := c.Float(0, "x"); err != nil || v != 2.5 {
		t.Fatalf("Float after failed Int = %v, %v", v, err)
	}
}

func TestOutOfOrderAccess(t *testing.T) {
	c := boundCall(omw.IntValue(1), omw.IntValue(2))
	_, err := c.Int(1, "y")
	want := "Requested parameter y at index 1 while the current available parameter is at index 0"
	if err == nil || err.Error() != want {
		t.Fatalf("out of order read = %v", err)
	}
}

func TestMissingParameter(t *testing.T) {
	c := boundCall(omw.IntValue(1))
	if _, err := c.Int(0, "x"); err != nil {
		t.Fatal(err)
	}
	_, err := c.Int(1, "y")
	want := "Requested parameter y at index 1 but there is not enough parameters"
	if err == nil || err.Error() != want {
		t.Fatalf("read past end = %v", err)
	}
	if !errors.Is(err, omw.ErrPositionMismatch) {
		t.Fatalf("error %v does not match ErrPositionMismatch", err)
	}
}

func TestOptionalPastEnd(t *testing.T) {
	c := boundCall(omw.IntValue(1))
	if _, err := c.Int(0, "x"); err != nil {
		t.Fatal(err)
	}
	v, present, err := c.Optional(omw.Atomic(omw.KindInt), 1, "o")
	if err != nil || present || v.Kind != omw.KindNone {
		t.Fatalf("Optional past end = %v, present %v, %v", v, present, err)
	}
}

func TestOptionalNonePlaceholder(t *testing.T) {
	c := boundCall(omw.Value{}, omw.IntValue(3))
	_, present, err := c.Optional(omw.Atomic(omw.KindInt), 0, "o")
	if err != nil || present {
		t.Fatalf("Optional on none = present %v, %v", present, err)
	}
	// The placeholder slot was consumed.
	if v, err := c.Int(1, "n"); err != nil || v != 3 {
		t.Fatalf("Int after none placeholder = %d, %v", v, err)
	}
}

func TestOptionalPresent(t *testing.T) {
	c := boundCall(omw.FloatValue(1.5))
	v, present, err := c.Optional(omw.Atomic(omw.KindFloat), 0, "o")
	if err != nil || !present || v.Float != 1.5 {
		t.Fatalf("Optional = %v, present %v, %v", v, present, err)
	}
}

func TestUnionPrefersDeclarationOrder(t *testing.T) {
	c := boundCall(omw.IntValue(7))
	v, alt, err := c.Union(0, "x", omw.KindInt, omw.KindFloat)
	if err != nil || alt != 0 || v.Int != 7 {
		t.Fatalf("union on integer = %v, alt %d, %v", v, alt, err)
	}
}

func TestUnionNoMatch(t *testing.T) {
	c := boundCall(omw.StringValue("nope"))
	_, _, err := c.Union(0, "x", omw.KindInt, omw.KindFloat)
	if err == nil || err.Error() != "Failed to get variant for parameter x at index 0" {
		t.Fatalf("union with no match = %v", err)
	}
}

func TestUnionPastEnd(t *testing.T) {
	c := boundCall()
	_, _, err := c.Union(0, "x", omw.KindInt, omw.KindFloat)
	want := "Requested parameter x at index 0 but there is not enough parameters"
	if err == nil || err.Error() != want {
		t.Fatalf("union past end = %v", err)
	}
}

func TestTupleConsumesConsecutiveSlots(t *testing.T) {
	c := boundCall(omw.FloatValue(1), omw.FloatValue(2), omw.IntValue(9))
	vs, err := c.Tuple(0, "p", omw.Atomic(omw.KindFloat), omw.Atomic(omw.KindFloat))
	if err != nil {
		t.Fatal(err)
	}
	if vs[0].Float != 1 || vs[1].Float != 2 {
		t.Fatalf("tuple = %v", vs)
	}
	// The tuple took one logical slot but two physical ones.
	if v, err := c.Int(1, "n"); err != nil || v != 9 {
		t.Fatalf("Int after tuple = %d, %v", v, err)
	}
}

func TestNestedTuple(t *testing.T) {
	c := boundCall(omw.IntValue(1), omw.IntValue(2), omw.IntValue(3), omw.IntValue(9))
	vs, err := c.Tuple(0, "p",
		omw.Atomic(omw.KindInt),
		omw.TupleOf(omw.Atomic(omw.KindInt), omw.Atomic(omw.KindInt)))
	if err != nil {
		t.Fatal(err)
	}
	if vs[0].Int != 1 || vs[1].Items[0].Int != 2 || vs[1].Items[1].Int != 3 {
		t.Fatalf("nested tuple = %v", vs)
	}
	if v, err := c.Int(1, "n"); err != nil || v != 9 {
		t.Fatalf("Int after nested tuple = %d, %v", v, err)
	}
}

func TestTupleSizeError(t *testing.T) {
	c := boundCall(omw.IntValue(1))
	_, err := c.Tuple(0, "p", omw.Atomic(omw.KindInt), omw.Atomic(omw.KindInt))
	want := "Not enough args for building a tuple of size 2 for parameter p at index 0"
	if err == nil || err.Error() != want {
		t.Fatalf("short tuple = %v", err)
	}
}

func TestTupleListClaimsWholeElements(t *testing.T) {
	c := boundCall(
		omw.IntValue(1), omw.FloatValue(2),
		omw.IntValue(3), omw.FloatValue(4),
		omw.IntValue(5),
	)
	r, err := c.TupleList(0, "pts", omw.Atomic(omw.KindInt), omw.Atomic(omw.KindFloat))
	if err != nil {
		t.Fatal(err)
	}
	// Five arguments at width two: the trailing odd one is not an element.
	if r.Count() != 2 {
		t.Fatalf("Count = %d", r.Count())
	}
	first, err := r.Next()
	if err != nil || first[0].Int != 1 || first[1].Float != 2 {
		t.Fatalf("first element = %v, %v", first, err)
	}
	second, err := r.Next()
	if err != nil || second[0].Int != 3 || second[1].Float != 4 {
		t.Fatalf("second element = %v, %v", second, err)
	}
	if r.More() {
		t.Fatal("More after last element")
	}
}

func TestTupleListAfterLeadingParams(t *testing.T) {
	c := boundCall(omw.StringValue("head"), omw.IntValue(1), omw.IntValue(2))
	if v, err := c.String(0, "s"); err != nil || v != "head" {
		t.Fatalf("String = %q, %v", v, err)
	}
	r, err := c.TupleList(1, "v", omw.Atomic(omw.KindInt))
	if err != nil {
		t.Fatal(err)
	}
	if r.Count() != 2 {
		t.Fatalf("Count = %d", r.Count())
	}
	var got []int32
	for r.More() {
		vs, err := r.Next()
		if err != nil {
			t.Fatal(err)
		}
		got = append(got, vs[0].Int)
	}
	if len(got) != 2 || got[0] != 1 || got[1] != 2 {
		t.Fatalf("elements = %v", got)
	}
}

func TestTupleListWrongIndex(t *testing.T) {
	c := boundCall(omw.IntValue(1))
	_, err := c.TupleList(1, "v", omw.Atomic(omw.KindInt))
	if !errors.Is(err, omw.ErrInvalidListIndex) {
		t.Fatalf("wrong index = %v", err)
	}
}
