// Package link models a bidirectional symbolic expression link in the
// style of kernel protocol APIs: expressions travel as flat prefix
// token streams, reads are typed and coercion rules are part of the
// contract, and marks allow rolling the read position back across
// speculative reads.
package link

import (
	"errors"
	"fmt"
)

// TokenType identifies the wire form of the next expression element.
type TokenType uint8

const (
	TokenNone TokenType = iota
	TokenInt
	TokenReal
	TokenString
	TokenSymbol
	TokenFunc
)

func (t TokenType) String() string {
	switch t {
	case TokenNone:
		return "none"
	case TokenInt:
		return "integer"
	case TokenReal:
		return "real"
	case TokenString:
		return "string"
	case TokenSymbol:
		return "symbol"
	case TokenFunc:
		return "function"
	}
	return fmt.Sprintf("token(%d)", uint8(t))
}

// Token is one element of the prefix-encoded expression stream. A
// function token carries its head in Str and is followed by N argument
// expressions.
type Token struct {
	Type TokenType
	Int  int64
	Real float64
	Str  string
	N    int
}

// Mark is an opaque handle on a read position, created by Link.Mark
// and released with DestroyMark.
type Mark int

var (
	// ErrEmpty reports a read past the last available token.
	ErrEmpty = errors.New("no expression available on the link")
	// ErrType reports a typed read against a token of another type.
	// The read consumes nothing.
	ErrType = errors.New("expression type mismatch")
	// ErrHead reports a function read whose head differs from the
	// expected one. The read consumes nothing.
	ErrHead = errors.New("function head mismatch")
	// ErrClosed reports use of a closed link.
	ErrClosed = errors.New("link is closed")
)

// Link is a typed token stream with rollback marks and packet
// boundaries. Failed typed reads never consume tokens. ReadReal32
// coerces integer tokens; ReadInt32 and ReadInt64 are strict. Bulk
// reads consume whole nested list expressions or nothing.
type Link interface {
	// NextType peeks at the type of the next token without consuming
	// it. TokenNone means no token is buffered or pending.
	NextType() TokenType

	ReadInt32() (int32, error)
	ReadInt64() (int64, error)
	ReadReal32() (float32, error)
	ReadString() (string, error)
	ReadSymbol() (string, error)
	// ReadFunction consumes a function head of any name and returns the
	// head with its argument count.
	ReadFunction() (string, int, error)
	// CheckFunction consumes a function head matching the given name
	// and returns its argument count.
	CheckFunction(head string) (int, error)
	// ReadReal32List consumes a flat numeric list expression.
	ReadReal32List() ([]float32, error)
	// ReadReal32Array consumes a uniformly nested numeric list
	// expression and returns its row-major data with the axis lengths.
	ReadReal32Array() ([]float32, []int, error)

	PutInt32(v int32) error
	PutInt64(v int64) error
	PutReal32(v float32) error
	PutString(s string) error
	PutSymbol(s string) error
	PutFunction(head string, nargs int) error
	PutReal32List(v []float32) error
	PutReal32Array(v []float32, dims []int) error

	// Mark records the current read position. SeekMark rewinds to a
	// recorded position; DestroyMark releases it. Every mark must be
	// destroyed exactly once.
	Mark() Mark
	SeekMark(m Mark)
	DestroyMark(m Mark)

	// NewPacket discards the unread remainder of the current packet.
	NewPacket()
	// NextPacket skips to the next packet and consumes its head,
	// returning the head name.
	NextPacket() (string, error)
	// EndPacket seals the expression written so far as one packet.
	EndPacket() error
	// Flush pushes any buffered outgoing tokens to the peer.
	Flush() error

	Close() error
}
