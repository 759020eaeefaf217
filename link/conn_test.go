package link

import (
	"bytes"
	"encoding/binary"
	"errors"
	"reflect"
	"testing"
)

func TestConnRoundTrip(t *testing.T) {
	var wire bytes.Buffer
	c := NewConn(&wire)

	if err := c.PutFunction("ReturnPacket", 1); err != nil {
		t.Fatal(err)
	}
	if err := c.PutString("ok"); err != nil {
		t.Fatal(err)
	}
	if err := c.Flush(); err != nil {
		t.Fatal(err)
	}

	head, err := c.NextPacket()
	if err != nil || head != "ReturnPacket" {
		t.Fatalf("NextPacket = %q, %v", head, err)
	}
	if v, err := c.ReadString(); err != nil || v != "ok" {
		t.Fatalf("ReadString = %q, %v", v, err)
	}
	if _, err := c.ReadString(); !errors.Is(err, ErrEmpty) {
		t.Fatalf("read past end = %v, want ErrEmpty", err)
	}
}

func TestConnSplitsPacketsIntoFrames(t *testing.T) {
	var wire bytes.Buffer
	c := NewConn(&wire)

	if err := c.PutInt32(1); err != nil {
		t.Fatal(err)
	}
	if err := c.EndPacket(); err != nil {
		t.Fatal(err)
	}
	if err := c.PutInt32(2); err != nil {
		t.Fatal(err)
	}
	if err := c.Flush(); err != nil {
		t.Fatal(err)
	}

	// Two frames on the wire, each holding one expression.
	var size uint32
	if err := binary.Read(bytes.NewReader(wire.Bytes()), binary.LittleEndian, &size); err != nil {
		t.Fatal(err)
	}
	first := int(4 + size)
	if first >= wire.Len() {
		t.Fatalf("expected a second frame after %d bytes, wire has %d", first, wire.Len())
	}

	if v, err := c.ReadInt32(); err != nil || v != 1 {
		t.Fatalf("ReadInt32 = %d, %v", v, err)
	}
	if v, err := c.ReadInt32(); err != nil || v != 2 {
		t.Fatalf("ReadInt32 = %d, %v", v, err)
	}
}

func TestConnAllTokenTypes(t *testing.T) {
	var wire bytes.Buffer
	c := NewConn(&wire)

	if err := c.PutInt64(-1 << 40); err != nil {
		t.Fatal(err)
	}
	if err := c.PutReal32(1.25); err != nil {
		t.Fatal(err)
	}
	if err := c.PutString("s"); err != nil {
		t.Fatal(err)
	}
	if err := c.PutSymbol("Null"); err != nil {
		t.Fatal(err)
	}
	if err := c.PutReal32Array([]float32{1, 2, 3, 4}, []int{2, 2}); err != nil {
		t.Fatal(err)
	}
	if err := c.Flush(); err != nil {
		t.Fatal(err)
	}

	if v, err := c.ReadInt64(); err != nil || v != -1<<40 {
		t.Fatalf("ReadInt64 = %d, %v", v, err)
	}
	if v, err := c.ReadReal32(); err != nil || v != 1.25 {
		t.Fatalf("ReadReal32 = %v, %v", v, err)
	}
	if v, err := c.ReadString(); err != nil || v != "s" {
		t.Fatalf("ReadString = %q, %v", v, err)
	}
	if v, err := c.ReadSymbol(); err != nil || v != "Null" {
		t.Fatalf("ReadSymbol = %q, %v", v, err)
	}
	data, dims, err := c.ReadReal32Array()
	if err != nil || !reflect.DeepEqual(dims, []int{2, 2}) {
		t.Fatalf("ReadReal32Array = %v %v, %v", data, dims, err)
	}
}

func TestDecodeFrameTruncated(t *testing.T) {
	toks := []Token{{Type: TokenString, Str: "abc"}}
	payload := encodeFrame(toks)
	for cut := 0; cut < len(payload); cut++ {
		if _, err := decodeFrame(payload[:cut]); err == nil {
			t.Fatalf("decodeFrame accepted a %d byte prefix of %d", cut, len(payload))
		}
	}
	got, err := decodeFrame(payload)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(got, toks) {
		t.Fatalf("decodeFrame = %v", got)
	}
}

func TestDecodeFrameUnknownToken(t *testing.T) {
	payload := binary.LittleEndian.AppendUint32(nil, 1)
	payload = append(payload, 0xff)
	if _, err := decodeFrame(payload); err == nil {
		t.Fatal("decodeFrame accepted an unknown token type")
	}
}

func TestConnClosedReads(t *testing.T) {
	var wire bytes.Buffer
	c := NewConn(&wire)
	if err := c.Close(); err != nil {
		t.Fatal(err)
	}
	if _, err := c.ReadInt32(); !errors.Is(err, ErrClosed) {
		t.Fatalf("read on closed = %v, want ErrClosed", err)
	}
}
