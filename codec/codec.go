// Package codec encodes values into the compact little-endian form
// exchanged with wasm guests. Buffers are self-delimiting so a decoder
// can consume values from a concatenated sequence.
package codec

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"github.com/alixinne/omw"
)

var (
	ErrTruncated = errors.New("truncated value buffer")
	ErrBadKind   = errors.New("invalid value kind")
)

// AppendValue appends the encoding of v to dst.
func AppendValue(dst []byte, v omw.Value) []byte {
	dst = append(dst, byte(v.Kind))
	switch v.Kind {
	case omw.KindNone:
	case omw.KindBool:
		b := byte(0)
		if v.Bool {
			b = 1
		}
		dst = append(dst, b)
	case omw.KindInt:
		dst = binary.LittleEndian.AppendUint32(dst, uint32(v.Int))
	case omw.KindUint:
		dst = binary.LittleEndian.AppendUint32(dst, v.Uint)
	case omw.KindFloat:
		dst = binary.LittleEndian.AppendUint32(dst, math.Float32bits(v.Float))
	case omw.KindString:
		dst = binary.LittleEndian.AppendUint32(dst, uint32(len(v.Str)))
		dst = append(dst, v.Str...)
	case omw.KindFloatList:
		dst = binary.LittleEndian.AppendUint32(dst, uint32(len(v.List)))
		for _, f := range v.List {
			dst = binary.LittleEndian.AppendUint32(dst, math.Float32bits(f))
		}
	case omw.KindMatrix:
		for _, d := range v.Mat.Dims {
			dst = binary.LittleEndian.AppendUint32(dst, uint32(d))
		}
		for _, f := range v.Mat.Data {
			dst = binary.LittleEndian.AppendUint32(dst, math.Float32bits(f))
		}
	case omw.KindList:
		dst = binary.LittleEndian.AppendUint32(dst, uint32(len(v.Items)))
		for _, item := range v.Items {
			dst = AppendValue(dst, item)
		}
	}
	return dst
}

// EncodeValue returns the encoding of v.
func EncodeValue(v omw.Value) []byte {
	return AppendValue(nil, v)
}

// DecodeValue decodes one value from the front of buf and returns it
// with the number of bytes consumed.
func DecodeValue(buf []byte) (omw.Value, int, error) {
	if len(buf) < 1 {
		return omw.Value{}, 0, ErrTruncated
	}
	kind := omw.Kind(buf[0])
	off := 1

	u32 := func() (uint32, error) {
		if len(buf) < off+4 {
			return 0, ErrTruncated
		}
		v := binary.LittleEndian.Uint32(buf[off:])
		off += 4
		return v, nil
	}

	switch kind {
	case omw.KindNone:
		return omw.Value{}, off, nil
	case omw.KindBool:
		if len(buf) < off+1 {
			return omw.Value{}, 0, ErrTruncated
		}
		b := buf[off] != 0
		return omw.BoolValue(b), off + 1, nil
	case omw.KindInt:
		v, err := u32()
		if err != nil {
			return omw.Value{}, 0, err
		}
		return omw.IntValue(int32(v)), off, nil
	case omw.KindUint:
		v, err := u32()
		if err != nil {
			return omw.Value{}, 0, err
		}
		return omw.UintValue(v), off, nil
	case omw.KindFloat:
		v, err := u32()
		if err != nil {
			return omw.Value{}, 0, err
		}
		return omw.FloatValue(math.Float32frombits(v)), off, nil
	case omw.KindString:
		n, err := u32()
		if err != nil {
			return omw.Value{}, 0, err
		}
		if uint32(len(buf)-off) < n {
			return omw.Value{}, 0, ErrTruncated
		}
		s := string(buf[off : off+int(n)])
		return omw.StringValue(s), off + int(n), nil
	case omw.KindFloatList:
		n, err := u32()
		if err != nil {
			return omw.Value{}, 0, err
		}
		if uint32(len(buf)-off)/4 < n {
			return omw.Value{}, 0, ErrTruncated
		}
		list := make([]float32, n)
		for i := range list {
			bits := binary.LittleEndian.Uint32(buf[off:])
			off += 4
			list[i] = math.Float32frombits(bits)
		}
		return omw.FloatListValue(list), off, nil
	case omw.KindMatrix:
		var dims [3]int
		total := uint64(1)
		for i := range dims {
			d, err := u32()
			if err != nil {
				return omw.Value{}, 0, err
			}
			dims[i] = int(d)
			total *= uint64(d)
			if total > uint64(len(buf))/4 {
				return omw.Value{}, 0, ErrTruncated
			}
		}
		if uint64(len(buf)-off)/4 < total {
			return omw.Value{}, 0, ErrTruncated
		}
		data := make([]float32, total)
		for i := range data {
			bits := binary.LittleEndian.Uint32(buf[off:])
			off += 4
			data[i] = math.Float32frombits(bits)
		}
		m, err := omw.NewMatrix(data, dims[0], dims[1], dims[2])
		if err != nil {
			return omw.Value{}, 0, err
		}
		return omw.MatrixValue(m), off, nil
	case omw.KindList:
		n, err := u32()
		if err != nil {
			return omw.Value{}, 0, err
		}
		items := make([]omw.Value, 0, min(int(n), 1024))
		for i := uint32(0); i < n; i++ {
			item, used, err := DecodeValue(buf[off:])
			if err != nil {
				return omw.Value{}, 0, err
			}
			off += used
			items = append(items, item)
		}
		return omw.ListValue(items...), off, nil
	default:
		return omw.Value{}, 0, fmt.Errorf("%w: %d", ErrBadKind, kind)
	}
}

// AppendValues appends a counted value sequence to dst.
func AppendValues(dst []byte, vs []omw.Value) []byte {
	dst = binary.LittleEndian.AppendUint32(dst, uint32(len(vs)))
	for _, v := range vs {
		dst = AppendValue(dst, v)
	}
	return dst
}

// EncodeValues returns the encoding of a counted value sequence.
func EncodeValues(vs []omw.Value) []byte {
	return AppendValues(nil, vs)
}

// DecodeValues decodes a counted value sequence.
func DecodeValues(buf []byte) ([]omw.Value, error) {
	if len(buf) < 4 {
		return nil, ErrTruncated
	}
	n := binary.LittleEndian.Uint32(buf)
	off := 4
	vs := make([]omw.Value, 0, min(int(n), 1024))
	for i := uint32(0); i < n; i++ {
		v, used, err := DecodeValue(buf[off:])
		if err != nil {
			return nil, err
		}
		off += used
		vs = append(vs, v)
	}
	if off != len(buf) {
		return nil, fmt.Errorf("%d trailing bytes after value sequence", len(buf)-off)
	}
	return vs, nil
}

// AppendStrings appends a counted string list to dst.
func AppendStrings(dst []byte, ss []string) []byte {
	dst = binary.LittleEndian.AppendUint32(dst, uint32(len(ss)))
	for _, s := range ss {
		dst = binary.LittleEndian.AppendUint32(dst, uint32(len(s)))
		dst = append(dst, s...)
	}
	return dst
}

// DecodeStrings decodes a counted string list.
func DecodeStrings(buf []byte) ([]string, error) {
	if len(buf) < 4 {
		return nil, ErrTruncated
	}
	n := binary.LittleEndian.Uint32(buf)
	off := 4
	ss := make([]string, 0, min(int(n), 1024))
	for i := uint32(0); i < n; i++ {
		if len(buf) < off+4 {
			return nil, ErrTruncated
		}
		l := binary.LittleEndian.Uint32(buf[off:])
		off += 4
		if uint32(len(buf)-off) < l {
			return nil, ErrTruncated
		}
		ss = append(ss, string(buf[off:off+int(l)]))
		off += int(l)
	}
	if off != len(buf) {
		return nil, fmt.Errorf("%d trailing bytes after string list", len(buf)-off)
	}
	return ss, nil
}
