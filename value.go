package omw

import (
	"fmt"
	"strconv"
	"strings"
)

// Kind identifies the wire type of a Value. The numeric codes are part
// of the guest ABI and must stay stable.
type Kind uint8

const (
	KindNone Kind = iota
	KindBool
	KindInt
	KindUint
	KindFloat
	KindString
	KindFloatList
	KindMatrix
	KindList
)

func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindBool:
		return "bool"
	case KindInt:
		return "int32"
	case KindUint:
		return "uint32"
	case KindFloat:
		return "float32"
	case KindString:
		return "string"
	case KindFloatList:
		return "float32 list"
	case KindMatrix:
		return "float32 matrix"
	case KindList:
		return "list"
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// Matrix is a dense row-major float32 buffer with 2 or 3 axes. The
// third axis is 1 for planar data.
type Matrix struct {
	Data []float32
	Dims [3]int
}

// NewMatrix builds a Matrix from row-major data and 2 or 3 axis
// lengths. The element count must match the axis product.
func NewMatrix(data []float32, dims ...int) (*Matrix, error) {
	if len(dims) < 2 || len(dims) > 3 {
		return nil, fmt.Errorf("matrix requires 2 or 3 axes, got %d", len(dims))
	}
	d := [3]int{dims[0], dims[1], 1}
	if len(dims) == 3 {
		d[2] = dims[2]
	}
	if n := d[0] * d[1] * d[2]; n != len(data) {
		return nil, fmt.Errorf("matrix data length %d does not match dimensions %dx%dx%d", len(data), d[0], d[1], d[2])
	}
	return &Matrix{Data: data, Dims: d}, nil
}

// At returns the element at row i, column j, plane k.
func (m *Matrix) At(i, j, k int) float32 {
	return m.Data[(i*m.Dims[1]+j)*m.Dims[2]+k]
}

// Len returns the total element count.
func (m *Matrix) Len() int {
	return m.Dims[0] * m.Dims[1] * m.Dims[2]
}

// Value is the tagged union crossing adapter boundaries. Kind selects
// which field carries the payload; KindList values hold nested Items.
type Value struct {
	Kind  Kind
	Bool  bool
	Int   int32
	Uint  uint32
	Float float32
	Str   string
	List  []float32
	Mat   *Matrix
	Items []Value
}

// BoolValue returns a Value holding b.
func BoolValue(b bool) Value { return Value{Kind: KindBool, Bool: b} }

// IntValue returns a Value holding i.
func IntValue(i int32) Value { return Value{Kind: KindInt, Int: i} }

// UintValue returns a Value holding u.
func UintValue(u uint32) Value { return Value{Kind: KindUint, Uint: u} }

// FloatValue returns a Value holding f.
func FloatValue(f float32) Value { return Value{Kind: KindFloat, Float: f} }

// StringValue returns a Value holding s.
func StringValue(s string) Value { return Value{Kind: KindString, Str: s} }

// FloatListValue returns a Value holding the 1-D array v.
func FloatListValue(v []float32) Value { return Value{Kind: KindFloatList, List: v} }

// MatrixValue returns a Value holding m.
func MatrixValue(m *Matrix) Value { return Value{Kind: KindMatrix, Mat: m} }

// ListValue returns a composite Value holding items.
func ListValue(items ...Value) Value { return Value{Kind: KindList, Items: items} }

// Interface returns the payload as a plain Go value.
func (v Value) Interface() any {
	switch v.Kind {
	case KindBool:
		return v.Bool
	case KindInt:
		return v.Int
	case KindUint:
		return v.Uint
	case KindFloat:
		return v.Float
	case KindString:
		return v.Str
	case KindFloatList:
		return v.List
	case KindMatrix:
		return v.Mat
	case KindList:
		return v.Items
	}
	return nil
}

// String renders the value in the symbolic host notation used by the
// interactive front ends.
func (v Value) String() string {
	switch v.Kind {
	case KindNone:
		return "Null"
	case KindBool:
		if v.Bool {
			return "True"
		}
		return "False"
	case KindInt:
		return strconv.FormatInt(int64(v.Int), 10)
	case KindUint:
		return strconv.FormatUint(uint64(v.Uint), 10)
	case KindFloat:
		return strconv.FormatFloat(float64(v.Float), 'g', -1, 32)
	case KindString:
		return strconv.Quote(v.Str)
	case KindFloatList:
		parts := make([]string, len(v.List))
		for i, f := range v.List {
			parts[i] = strconv.FormatFloat(float64(f), 'g', -1, 32)
		}
		return "{" + strings.Join(parts, ", ") + "}"
	case KindMatrix:
		return v.Mat.format()
	case KindList:
		parts := make([]string, len(v.Items))
		for i, it := range v.Items {
			parts[i] = it.String()
		}
		return "{" + strings.Join(parts, ", ") + "}"
	}
	return "Null"
}

func (m *Matrix) format() string {
	var sb strings.Builder
	sb.WriteByte('{')
	for i := 0; i < m.Dims[0]; i++ {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteByte('{')
		for j := 0; j < m.Dims[1]; j++ {
			if j > 0 {
				sb.WriteString(", ")
			}
			if m.Dims[2] == 1 {
				sb.WriteString(strconv.FormatFloat(float64(m.At(i, j, 0)), 'g', -1, 32))
				continue
			}
			sb.WriteByte('{')
			for k := 0; k < m.Dims[2]; k++ {
				if k > 0 {
					sb.WriteString(", ")
				}
				sb.WriteString(strconv.FormatFloat(float64(m.At(i, j, k)), 'g', -1, 32))
			}
			sb.WriteByte('}')
		}
		sb.WriteByte('}')
	}
	sb.WriteByte('}')
	return sb.String()
}
