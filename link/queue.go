package link

import (
	"fmt"
	"slices"
)

// tokenQueue is the read machinery shared by link implementations: an
// append-only token buffer, the read position, expression accounting
// for packet boundaries, and mark bookkeeping. Owners that can pull
// more tokens set the more hook.
type tokenQueue struct {
	toks  []Token
	pos   int
	rem   []int
	marks map[Mark]markState
	seq   Mark
	more  func() error
}

type markState struct {
	pos int
	rem []int
}

func (q *tokenQueue) snapshot() markState {
	return markState{pos: q.pos, rem: slices.Clone(q.rem)}
}

func (q *tokenQueue) restore(st markState) {
	q.pos = st.pos
	q.rem = slices.Clone(st.rem)
}

func (q *tokenQueue) peek() (Token, error) {
	for q.pos >= len(q.toks) {
		if q.more == nil {
			return Token{}, ErrEmpty
		}
		if err := q.more(); err != nil {
			return Token{}, err
		}
	}
	return q.toks[q.pos], nil
}

// advance consumes the token at the read position, maintaining the
// open-expression accounting that delimits packets.
func (q *tokenQueue) advance(t Token) {
	q.pos++
	if t.Type == TokenFunc && t.N > 0 {
		q.rem = append(q.rem, t.N)
		return
	}
	for len(q.rem) > 0 {
		last := len(q.rem) - 1
		q.rem[last]--
		if q.rem[last] > 0 {
			return
		}
		q.rem = q.rem[:last]
	}
}

func (q *tokenQueue) atBoundary() bool {
	return len(q.rem) == 0
}

func (q *tokenQueue) nextType() TokenType {
	t, err := q.peek()
	if err != nil {
		return TokenNone
	}
	return t.Type
}

func (q *tokenQueue) readInt32() (int32, error) {
	t, err := q.peek()
	if err != nil {
		return 0, err
	}
	if t.Type != TokenInt {
		return 0, fmt.Errorf("%w: want integer, next is %s", ErrType, t.Type)
	}
	q.advance(t)
	return int32(t.Int), nil
}

func (q *tokenQueue) readInt64() (int64, error) {
	t, err := q.peek()
	if err != nil {
		return 0, err
	}
	if t.Type != TokenInt {
		return 0, fmt.Errorf("%w: want integer, next is %s", ErrType, t.Type)
	}
	q.advance(t)
	return t.Int, nil
}

// readReal32 accepts an integer token as well, mirroring the numeric
// widening the kernel protocol applies to real reads.
func (q *tokenQueue) readReal32() (float32, error) {
	t, err := q.peek()
	if err != nil {
		return 0, err
	}
	switch t.Type {
	case TokenReal:
		q.advance(t)
		return float32(t.Real), nil
	case TokenInt:
		q.advance(t)
		return float32(t.Int), nil
	}
	return 0, fmt.Errorf("%w: want real, next is %s", ErrType, t.Type)
}

func (q *tokenQueue) readString() (string, error) {
	t, err := q.peek()
	if err != nil {
		return "", err
	}
	if t.Type != TokenString {
		return "", fmt.Errorf("%w: want string, next is %s", ErrType, t.Type)
	}
	q.advance(t)
	return t.Str, nil
}

func (q *tokenQueue) readSymbol() (string, error) {
	t, err := q.peek()
	if err != nil {
		return "", err
	}
	if t.Type != TokenSymbol {
		return "", fmt.Errorf("%w: want symbol, next is %s", ErrType, t.Type)
	}
	q.advance(t)
	return t.Str, nil
}

func (q *tokenQueue) readFunction() (string, int, error) {
	t, err := q.peek()
	if err != nil {
		return "", 0, err
	}
	if t.Type != TokenFunc {
		return "", 0, fmt.Errorf("%w: want function, next is %s", ErrType, t.Type)
	}
	q.advance(t)
	return t.Str, t.N, nil
}

func (q *tokenQueue) checkFunction(head string) (int, error) {
	t, err := q.peek()
	if err != nil {
		return 0, err
	}
	if t.Type != TokenFunc {
		return 0, fmt.Errorf("%w: want function %s, next is %s", ErrType, head, t.Type)
	}
	if t.Str != head {
		return 0, fmt.Errorf("%w: want %s, next is %s", ErrHead, head, t.Str)
	}
	q.advance(t)
	return t.N, nil
}

func (q *tokenQueue) readReal32List() ([]float32, error) {
	snap := q.snapshot()
	n, err := q.checkFunction("List")
	if err != nil {
		return nil, err
	}
	out := make([]float32, 0, n)
	for i := 0; i < n; i++ {
		f, err := q.readReal32()
		if err != nil {
			q.restore(snap)
			return nil, fmt.Errorf("%w: list element %d is not numeric", ErrType, i)
		}
		out = append(out, f)
	}
	return out, nil
}

func (q *tokenQueue) readReal32Array() ([]float32, []int, error) {
	snap := q.snapshot()
	data, dims, err := q.readArrayLevel()
	if err != nil {
		q.restore(snap)
		return nil, nil, err
	}
	return data, dims, nil
}

// readArrayLevel consumes one uniformly nested numeric list and
// returns its row-major data with the axis lengths.
func (q *tokenQueue) readArrayLevel() ([]float32, []int, error) {
	n, err := q.checkFunction("List")
	if err != nil {
		return nil, nil, err
	}
	if n == 0 {
		return nil, []int{0}, nil
	}
	if q.nextType() == TokenFunc {
		var data []float32
		var sub []int
		for i := 0; i < n; i++ {
			d, dims, err := q.readArrayLevel()
			if err != nil {
				return nil, nil, err
			}
			if i == 0 {
				sub = dims
			} else if !slices.Equal(sub, dims) {
				return nil, nil, fmt.Errorf("%w: ragged array rows", ErrType)
			}
			data = append(data, d...)
		}
		return data, append([]int{n}, sub...), nil
	}
	data := make([]float32, 0, n)
	for i := 0; i < n; i++ {
		f, err := q.readReal32()
		if err != nil {
			return nil, nil, fmt.Errorf("%w: array element %d is not numeric", ErrType, i)
		}
		data = append(data, f)
	}
	return data, []int{n}, nil
}

func (q *tokenQueue) mark() Mark {
	if q.marks == nil {
		q.marks = make(map[Mark]markState)
	}
	q.seq++
	q.marks[q.seq] = q.snapshot()
	return q.seq
}

func (q *tokenQueue) seekMark(m Mark) {
	if st, ok := q.marks[m]; ok {
		q.restore(st)
	}
}

func (q *tokenQueue) destroyMark(m Mark) {
	delete(q.marks, m)
}

// skipPacket discards tokens until the current packet is fully read.
func (q *tokenQueue) skipPacket() {
	for !q.atBoundary() {
		t, err := q.peek()
		if err != nil {
			return
		}
		q.advance(t)
	}
}

func (q *tokenQueue) nextPacket() (string, error) {
	q.skipPacket()
	head, _, err := q.readFunction()
	return head, err
}

// putList appends a flat numeric list expression through put.
func putList(put func(Token), v []float32) {
	put(Token{Type: TokenFunc, Str: "List", N: len(v)})
	for _, f := range v {
		put(Token{Type: TokenReal, Real: float64(f)})
	}
}

// putArray appends a nested numeric list expression through put.
func putArray(put func(Token), v []float32, dims []int) error {
	if len(dims) == 0 {
		return fmt.Errorf("array requires at least one axis")
	}
	total := 1
	for _, d := range dims {
		if d < 0 {
			return fmt.Errorf("negative axis length %d", d)
		}
		total *= d
	}
	if total != len(v) {
		return fmt.Errorf("array data length %d does not match axes %v", len(v), dims)
	}
	putArrayLevel(put, v, dims)
	return nil
}

func putArrayLevel(put func(Token), v []float32, dims []int) {
	if len(dims) == 1 {
		putList(put, v)
		return
	}
	put(Token{Type: TokenFunc, Str: "List", N: dims[0]})
	if dims[0] == 0 {
		return
	}
	stride := len(v) / dims[0]
	for i := 0; i < dims[0]; i++ {
		putArrayLevel(put, v[i*stride:(i+1)*stride], dims[1:])
	}
}
