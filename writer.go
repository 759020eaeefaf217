package omw

import "fmt"

// WriteValue emits v to the sink, descending into composite values.
func WriteValue(s Sink, v Value) error {
	switch v.Kind {
	case KindBool:
		return s.WriteBool(v.Bool)
	case KindInt:
		return s.WriteInt(v.Int)
	case KindUint:
		return s.WriteUint(v.Uint)
	case KindFloat:
		return s.WriteFloat(v.Float)
	case KindString:
		return s.WriteString(v.Str)
	case KindFloatList:
		return s.WriteFloatList(v.List)
	case KindMatrix:
		return s.WriteMatrix(v.Mat)
	case KindList:
		if err := s.BeginList(len(v.Items)); err != nil {
			return err
		}
		for _, it := range v.Items {
			if err := WriteValue(s, it); err != nil {
				return err
			}
		}
		return s.EndList()
	}
	return fmt.Errorf("cannot write result of kind %s", v.Kind)
}

// Write emits the call results. A single value is written as is;
// several values are grouped into one composite list. Writing nothing
// is a no-op and does not count as a result.
func (c *Call) Write(vs ...Value) error {
	switch len(vs) {
	case 0:
		return nil
	case 1:
		if err := WriteValue(c.sink, vs[0]); err != nil {
			return err
		}
	default:
		if err := WriteValue(c.sink, ListValue(vs...)); err != nil {
			return err
		}
	}
	c.hasResult = true
	return nil
}

// WriteBool emits a boolean result.
func (c *Call) WriteBool(v bool) error { return c.Write(BoolValue(v)) }

// WriteInt emits a 32-bit signed integer result.
func (c *Call) WriteInt(v int32) error { return c.Write(IntValue(v)) }

// WriteUint emits an unsigned integer result, transferred wide on
// hosts without a native unsigned put.
func (c *Call) WriteUint(v uint32) error { return c.Write(UintValue(v)) }

// WriteFloat emits a float32 result.
func (c *Call) WriteFloat(v float32) error { return c.Write(FloatValue(v)) }

// WriteString emits a string result.
func (c *Call) WriteString(s string) error { return c.Write(StringValue(s)) }

// WriteFloatList emits a 1-D float32 array result.
func (c *Call) WriteFloatList(v []float32) error { return c.Write(FloatListValue(v)) }

// WriteMatrix emits a matrix result. The host sink decides whether it
// leaves as a plain numeric buffer or an image wrapper.
func (c *Call) WriteMatrix(m *Matrix) error { return c.Write(MatrixValue(m)) }
