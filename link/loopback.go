package link

// MemLink is an in-memory Link backed by token queues. A loopback
// instance feeds its own read queue, so every expression written
// becomes readable back; a piped pair cross-wires two instances into a
// duplex in-process connection.
type MemLink struct {
	q   tokenQueue
	out *tokenQueue
}

// NewLoopback returns a link whose writes loop back to its own read
// side, in the manner of kernel protocol loopback links.
func NewLoopback() *MemLink {
	l := &MemLink{}
	l.out = &l.q
	return l
}

// Pipe returns two connected in-memory links: expressions written to
// one are read from the other. Reads never block; a drained side
// reports ErrEmpty until the peer writes more.
func Pipe() (*MemLink, *MemLink) {
	a := &MemLink{}
	b := &MemLink{}
	a.out = &b.q
	b.out = &a.q
	return a, b
}

func (l *MemLink) put(t Token) {
	l.out.toks = append(l.out.toks, t)
}

func (l *MemLink) NextType() TokenType { return l.q.nextType() }

func (l *MemLink) ReadInt32() (int32, error) { return l.q.readInt32() }

func (l *MemLink) ReadInt64() (int64, error) { return l.q.readInt64() }

func (l *MemLink) ReadReal32() (float32, error) { return l.q.readReal32() }

func (l *MemLink) ReadString() (string, error) { return l.q.readString() }

func (l *MemLink) ReadSymbol() (string, error) { return l.q.readSymbol() }

func (l *MemLink) ReadFunction() (string, int, error) { return l.q.readFunction() }

func (l *MemLink) CheckFunction(head string) (int, error) { return l.q.checkFunction(head) }

func (l *MemLink) ReadReal32List() ([]float32, error) { return l.q.readReal32List() }

func (l *MemLink) ReadReal32Array() ([]float32, []int, error) { return l.q.readReal32Array() }

func (l *MemLink) PutInt32(v int32) error {
	l.put(Token{Type: TokenInt, Int: int64(v)})
	return nil
}

func (l *MemLink) PutInt64(v int64) error {
	l.put(Token{Type: TokenInt, Int: v})
	return nil
}

func (l *MemLink) PutReal32(v float32) error {
	l.put(Token{Type: TokenReal, Real: float64(v)})
	return nil
}

func (l *MemLink) PutString(s string) error {
	l.put(Token{Type: TokenString, Str: s})
	return nil
}

func (l *MemLink) PutSymbol(s string) error {
	l.put(Token{Type: TokenSymbol, Str: s})
	return nil
}

func (l *MemLink) PutFunction(head string, nargs int) error {
	l.put(Token{Type: TokenFunc, Str: head, N: nargs})
	return nil
}

func (l *MemLink) PutReal32List(v []float32) error {
	putList(l.put, v)
	return nil
}

func (l *MemLink) PutReal32Array(v []float32, dims []int) error {
	return putArray(l.put, v, dims)
}

func (l *MemLink) Mark() Mark { return l.q.mark() }

func (l *MemLink) SeekMark(m Mark) { l.q.seekMark(m) }

func (l *MemLink) DestroyMark(m Mark) { l.q.destroyMark(m) }

func (l *MemLink) NewPacket() { l.q.skipPacket() }

func (l *MemLink) NextPacket() (string, error) { return l.q.nextPacket() }

// EndPacket is a no-op: queued expressions delimit themselves.
func (l *MemLink) EndPacket() error { return nil }

// Flush is a no-op: writes land in the destination queue immediately.
func (l *MemLink) Flush() error { return nil }

func (l *MemLink) Close() error { return nil }
