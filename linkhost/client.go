package linkhost

import (
	"errors"
	"fmt"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/alixinne/omw"
	"github.com/alixinne/omw/link"
)

// ErrFailed is returned by Receive when the peer answers $Failed
// without reporting any message text.
var ErrFailed = errors.New("evaluation failed")

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithClientLogger routes client diagnostics to l.
func WithClientLogger(l *zap.Logger) ClientOption {
	return func(c *Client) { c.log = l }
}

// OnMessage registers fn to observe messages the peer emits while
// evaluating a call.
func OnMessage(fn func(namespace, tag, text string)) ClientOption {
	return func(c *Client) { c.onMessage = fn }
}

// Client issues calls to a wrapper over a kernel link.
type Client struct {
	link      link.Link
	log       *zap.Logger
	onMessage func(namespace, tag, text string)
}

// NewClient returns a client speaking the call protocol on l.
func NewClient(l link.Link, opts ...ClientOption) *Client {
	c := &Client{link: l, log: zap.NewNop()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Send writes a call packet for dispatch slot index. Arguments are laid
// out flat, one wire expression per value, so the handler reads them at
// consecutive parameter positions.
func (c *Client) Send(index int32, args ...omw.Value) error {
	var errs error
	errs = multierr.Append(errs, c.link.PutFunction(packetCall, 1+len(args)))
	errs = multierr.Append(errs, c.link.PutInt32(index))
	for _, a := range args {
		errs = multierr.Append(errs, putValue(c.link, a))
	}
	errs = multierr.Append(errs, c.link.EndPacket())
	return multierr.Append(errs, c.link.Flush())
}

// Receive reads packets until the call's answer arrives. Message
// evaluations are acknowledged and collected; if the answer is $Failed
// the collected messages become the returned error.
func (c *Client) Receive() (omw.Value, error) {
	var msgs error
	for {
		head, err := c.link.NextPacket()
		if err != nil {
			return omw.Value{}, err
		}
		switch head {
		case packetEvaluate:
			ns, tag, text, err := readMessage(c.link)
			if err != nil {
				return omw.Value{}, err
			}
			c.log.Warn("message from peer",
				zap.String("namespace", ns),
				zap.String("tag", tag),
				zap.String("text", text))
			if c.onMessage != nil {
				c.onMessage(ns, tag, text)
			}
			msgs = multierr.Append(msgs, fmt.Errorf("%s::%s: %s", ns, tag, text))
			if err := c.acknowledge(); err != nil {
				return omw.Value{}, err
			}
		case packetReturn:
			return c.readAnswer(msgs)
		default:
			c.log.Warn("skipping unexpected packet", zap.String("head", head))
		}
	}
}

// Call sends a call for dispatch slot index and waits for its answer.
func (c *Client) Call(index int32, args ...omw.Value) (omw.Value, error) {
	if err := c.Send(index, args...); err != nil {
		return omw.Value{}, err
	}
	return c.Receive()
}

func (c *Client) acknowledge() error {
	var errs error
	errs = multierr.Append(errs, c.link.PutFunction(packetReturn, 1))
	errs = multierr.Append(errs, c.link.PutSymbol("Null"))
	errs = multierr.Append(errs, c.link.EndPacket())
	return multierr.Append(errs, c.link.Flush())
}

func (c *Client) readAnswer(msgs error) (omw.Value, error) {
	if c.link.NextType() == link.TokenSymbol {
		sym, err := c.link.ReadSymbol()
		if err != nil {
			return omw.Value{}, err
		}
		switch sym {
		case "Null":
			return omw.Value{}, nil
		case "True":
			return omw.BoolValue(true), nil
		case "False":
			return omw.BoolValue(false), nil
		case "$Failed":
			if msgs != nil {
				return omw.Value{}, msgs
			}
			return omw.Value{}, ErrFailed
		default:
			return omw.Value{}, fmt.Errorf("unexpected symbol %s in answer", sym)
		}
	}
	return readValue(c.link)
}

// readMessage consumes Message[MessageName[ns, tag], text].
func readMessage(l link.Link) (ns, tag, text string, err error) {
	if _, err = l.CheckFunction("Message"); err != nil {
		return "", "", "", err
	}
	if _, err = l.CheckFunction("MessageName"); err != nil {
		return "", "", "", err
	}
	if ns, err = l.ReadSymbol(); err != nil {
		return "", "", "", err
	}
	if tag, err = l.ReadString(); err != nil {
		return "", "", "", err
	}
	if text, err = l.ReadString(); err != nil {
		return "", "", "", err
	}
	return ns, tag, text, nil
}

// putValue marshals a call argument onto the link. Strings are escaped
// so the wrapper-side decode restores them byte for byte.
func putValue(l link.Link, v omw.Value) error {
	switch v.Kind {
	case omw.KindNone:
		return l.PutSymbol("Null")
	case omw.KindBool:
		if v.Bool {
			return l.PutSymbol("True")
		}
		return l.PutSymbol("False")
	case omw.KindInt:
		return l.PutInt32(v.Int)
	case omw.KindUint:
		return l.PutInt64(int64(v.Uint))
	case omw.KindFloat:
		return l.PutReal32(v.Float)
	case omw.KindString:
		return l.PutString(Escape(v.Str))
	case omw.KindFloatList:
		return l.PutReal32List(v.List)
	case omw.KindMatrix:
		return l.PutReal32Array(v.Mat.Data, matrixDims(v.Mat))
	case omw.KindList:
		if err := l.PutFunction("List", len(v.Items)); err != nil {
			return err
		}
		for _, item := range v.Items {
			if err := putValue(l, item); err != nil {
				return err
			}
		}
		return nil
	default:
		return fmt.Errorf("cannot marshal value of kind %s", v.Kind)
	}
}

// readValue decodes one answer expression. Numeric lists come back as
// float32 lists or matrices when their shape allows, generic lists
// otherwise; an image constructor unwraps to the matrix it carries.
func readValue(l link.Link) (omw.Value, error) {
	switch l.NextType() {
	case link.TokenInt:
		v, err := l.ReadInt64()
		if err != nil {
			return omw.Value{}, err
		}
		switch {
		case v >= -2147483648 && v <= 2147483647:
			return omw.IntValue(int32(v)), nil
		case v >= 0 && v <= 4294967295:
			return omw.UintValue(uint32(v)), nil
		default:
			return omw.FloatValue(float32(v)), nil
		}
	case link.TokenReal:
		v, err := l.ReadReal32()
		if err != nil {
			return omw.Value{}, err
		}
		return omw.FloatValue(v), nil
	case link.TokenString:
		s, err := l.ReadString()
		if err != nil {
			return omw.Value{}, err
		}
		return omw.StringValue(s), nil
	case link.TokenSymbol:
		sym, err := l.ReadSymbol()
		if err != nil {
			return omw.Value{}, err
		}
		switch sym {
		case "Null":
			return omw.Value{}, nil
		case "True":
			return omw.BoolValue(true), nil
		case "False":
			return omw.BoolValue(false), nil
		default:
			return omw.Value{}, fmt.Errorf("unexpected symbol %s in answer", sym)
		}
	case link.TokenFunc:
		return readCompound(l)
	default:
		return omw.Value{}, link.ErrType
	}
}

func readCompound(l link.Link) (omw.Value, error) {
	if list, err := l.ReadReal32List(); err == nil {
		return omw.FloatListValue(list), nil
	}
	mk := l.Mark()
	if data, dims, err := l.ReadReal32Array(); err == nil && len(dims) >= 2 && len(dims) <= 3 {
		l.DestroyMark(mk)
		m, err := omw.NewMatrix(data, dims...)
		if err != nil {
			return omw.Value{}, err
		}
		return omw.MatrixValue(m), nil
	}
	l.SeekMark(mk)
	l.DestroyMark(mk)

	head, n, err := l.ReadFunction()
	if err != nil {
		return omw.Value{}, err
	}
	switch head {
	case "List":
		items := make([]omw.Value, 0, n)
		for i := 0; i < n; i++ {
			item, err := readValue(l)
			if err != nil {
				return omw.Value{}, err
			}
			items = append(items, item)
		}
		return omw.ListValue(items...), nil
	case "Image":
		if n != 1 {
			return omw.Value{}, fmt.Errorf("image answer carries %d arguments, expected 1", n)
		}
		inner, err := readValue(l)
		if err != nil {
			return omw.Value{}, err
		}
		if inner.Kind == omw.KindFloatList {
			m, err := omw.NewMatrix(inner.List, 1, len(inner.List))
			if err != nil {
				return omw.Value{}, err
			}
			return omw.MatrixValue(m), nil
		}
		if inner.Kind != omw.KindMatrix {
			return omw.Value{}, fmt.Errorf("image answer carries a %s, expected a matrix", inner.Kind)
		}
		return inner, nil
	default:
		return omw.Value{}, fmt.Errorf("unsupported answer head %s", head)
	}
}
