package link

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
)

// maxFrameSize bounds incoming frame payloads so a corrupt length
// prefix cannot trigger an arbitrary allocation.
const maxFrameSize = 64 << 20

// Conn is a Link over a byte stream. Outgoing tokens buffer until
// EndPacket or Flush seals them into a length-prefixed frame; incoming
// frames are decoded on demand as reads drain the buffered tokens.
type Conn struct {
	q      tokenQueue
	rw     io.ReadWriter
	bw     *bufio.Writer
	out    []Token
	closed bool
}

// NewConn wraps rw as a framed link.
func NewConn(rw io.ReadWriter) *Conn {
	c := &Conn{rw: rw, bw: bufio.NewWriter(rw)}
	c.q.more = c.fill
	return c
}

// fill reads one frame from the peer and appends its tokens.
func (c *Conn) fill() error {
	if c.closed {
		return ErrClosed
	}
	var size uint32
	if err := binary.Read(c.rw, binary.LittleEndian, &size); err != nil {
		if errors.Is(err, io.EOF) {
			return ErrEmpty
		}
		return err
	}
	if size > maxFrameSize {
		return fmt.Errorf("frame of %d bytes exceeds the %d byte limit", size, maxFrameSize)
	}
	payload := make([]byte, size)
	if _, err := io.ReadFull(c.rw, payload); err != nil {
		return err
	}
	toks, err := decodeFrame(payload)
	if err != nil {
		return err
	}
	c.q.toks = append(c.q.toks, toks...)
	return nil
}

func (c *Conn) put(t Token) {
	c.out = append(c.out, t)
}

func (c *Conn) NextType() TokenType { return c.q.nextType() }

func (c *Conn) ReadInt32() (int32, error) { return c.q.readInt32() }

func (c *Conn) ReadInt64() (int64, error) { return c.q.readInt64() }

func (c *Conn) ReadReal32() (float32, error) { return c.q.readReal32() }

func (c *Conn) ReadString() (string, error) { return c.q.readString() }

func (c *Conn) ReadSymbol() (string, error) { return c.q.readSymbol() }

func (c *Conn) ReadFunction() (string, int, error) { return c.q.readFunction() }

func (c *Conn) CheckFunction(head string) (int, error) { return c.q.checkFunction(head) }

func (c *Conn) ReadReal32List() ([]float32, error) { return c.q.readReal32List() }

func (c *Conn) ReadReal32Array() ([]float32, []int, error) { return c.q.readReal32Array() }

func (c *Conn) PutInt32(v int32) error {
	c.put(Token{Type: TokenInt, Int: int64(v)})
	return nil
}

func (c *Conn) PutInt64(v int64) error {
	c.put(Token{Type: TokenInt, Int: v})
	return nil
}

func (c *Conn) PutReal32(v float32) error {
	c.put(Token{Type: TokenReal, Real: float64(v)})
	return nil
}

func (c *Conn) PutString(s string) error {
	c.put(Token{Type: TokenString, Str: s})
	return nil
}

func (c *Conn) PutSymbol(s string) error {
	c.put(Token{Type: TokenSymbol, Str: s})
	return nil
}

func (c *Conn) PutFunction(head string, nargs int) error {
	c.put(Token{Type: TokenFunc, Str: head, N: nargs})
	return nil
}

func (c *Conn) PutReal32List(v []float32) error {
	putList(c.put, v)
	return nil
}

func (c *Conn) PutReal32Array(v []float32, dims []int) error {
	return putArray(c.put, v, dims)
}

func (c *Conn) Mark() Mark { return c.q.mark() }

func (c *Conn) SeekMark(m Mark) { c.q.seekMark(m) }

func (c *Conn) DestroyMark(m Mark) { c.q.destroyMark(m) }

func (c *Conn) NewPacket() { c.q.skipPacket() }

func (c *Conn) NextPacket() (string, error) { return c.q.nextPacket() }

// EndPacket seals the buffered outgoing tokens into one frame.
func (c *Conn) EndPacket() error {
	if c.closed {
		return ErrClosed
	}
	if len(c.out) == 0 {
		return nil
	}
	payload := encodeFrame(c.out)
	c.out = c.out[:0]
	if err := binary.Write(c.bw, binary.LittleEndian, uint32(len(payload))); err != nil {
		return err
	}
	_, err := c.bw.Write(payload)
	return err
}

// Flush seals any pending tokens and pushes buffered frames to the
// peer.
func (c *Conn) Flush() error {
	if err := c.EndPacket(); err != nil {
		return err
	}
	return c.bw.Flush()
}

func (c *Conn) Close() error {
	if c.closed {
		return nil
	}
	err := c.Flush()
	c.closed = true
	if cl, ok := c.rw.(io.Closer); ok {
		if cerr := cl.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

func encodeFrame(toks []Token) []byte {
	var buf []byte
	buf = binary.LittleEndian.AppendUint32(buf, uint32(len(toks)))
	for _, t := range toks {
		buf = append(buf, byte(t.Type))
		switch t.Type {
		case TokenInt:
			buf = binary.LittleEndian.AppendUint64(buf, uint64(t.Int))
		case TokenReal:
			buf = binary.LittleEndian.AppendUint64(buf, math.Float64bits(t.Real))
		case TokenString, TokenSymbol:
			buf = binary.LittleEndian.AppendUint32(buf, uint32(len(t.Str)))
			buf = append(buf, t.Str...)
		case TokenFunc:
			buf = binary.LittleEndian.AppendUint32(buf, uint32(len(t.Str)))
			buf = append(buf, t.Str...)
			buf = binary.LittleEndian.AppendUint32(buf, uint32(t.N))
		}
	}
	return buf
}

func decodeFrame(payload []byte) ([]Token, error) {
	if len(payload) < 4 {
		return nil, fmt.Errorf("frame payload of %d bytes is truncated", len(payload))
	}
	count := binary.LittleEndian.Uint32(payload)
	payload = payload[4:]
	toks := make([]Token, 0, count)
	for i := uint32(0); i < count; i++ {
		if len(payload) < 1 {
			return nil, fmt.Errorf("frame truncated at token %d", i)
		}
		t := Token{Type: TokenType(payload[0])}
		payload = payload[1:]
		switch t.Type {
		case TokenInt:
			if len(payload) < 8 {
				return nil, fmt.Errorf("frame truncated at token %d", i)
			}
			t.Int = int64(binary.LittleEndian.Uint64(payload))
			payload = payload[8:]
		case TokenReal:
			if len(payload) < 8 {
				return nil, fmt.Errorf("frame truncated at token %d", i)
			}
			t.Real = math.Float64frombits(binary.LittleEndian.Uint64(payload))
			payload = payload[8:]
		case TokenString, TokenSymbol, TokenFunc:
			if len(payload) < 4 {
				return nil, fmt.Errorf("frame truncated at token %d", i)
			}
			n := binary.LittleEndian.Uint32(payload)
			payload = payload[4:]
			if uint32(len(payload)) < n {
				return nil, fmt.Errorf("frame truncated at token %d", i)
			}
			t.Str = string(payload[:n])
			payload = payload[n:]
			if t.Type == TokenFunc {
				if len(payload) < 4 {
					return nil, fmt.Errorf("frame truncated at token %d", i)
				}
				t.N = int(binary.LittleEndian.Uint32(payload))
				payload = payload[4:]
			}
		default:
			return nil, fmt.Errorf("unknown token type %d in frame", t.Type)
		}
		toks = append(toks, t)
	}
	if len(payload) != 0 {
		return nil, fmt.Errorf("frame has %d trailing bytes", len(payload))
	}
	return toks, nil
}
