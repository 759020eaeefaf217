package omw

import "strings"

// Shape describes the expected wire form of one parameter.
type Shape interface {
	isShape()
	String() string
}

// AtomicShape matches a single value of one atomic kind.
type AtomicShape struct {
	Kind Kind
}

// OptShape matches either the host absence marker or the inner shape.
type OptShape struct {
	Inner Shape
}

// TupleShape matches a fixed-arity sequence of element shapes occupying
// one logical parameter slot.
type TupleShape struct {
	Elems []Shape
}

// UnionShape matches the first of its alternatives whose probe
// succeeds, in declaration order. Alternatives are atomic kinds:
// composite shapes cannot be probed without consuming stream state.
type UnionShape struct {
	Alts []Kind
}

func (AtomicShape) isShape() {}
func (OptShape) isShape()    {}
func (TupleShape) isShape()  {}
func (UnionShape) isShape()  {}

// Atomic returns the shape matching a single value of kind k.
func Atomic(k Kind) AtomicShape { return AtomicShape{Kind: k} }

// Opt returns the optional form of inner.
func Opt(inner Shape) OptShape { return OptShape{Inner: inner} }

// TupleOf returns the tuple shape with the given element shapes.
func TupleOf(elems ...Shape) TupleShape { return TupleShape{Elems: elems} }

// OneOf returns the union shape over the given atomic kinds.
func OneOf(alts ...Kind) UnionShape { return UnionShape{Alts: alts} }

func (s AtomicShape) String() string { return s.Kind.String() }

func (s OptShape) String() string {
	if s.Inner == nil {
		return "opt(?)"
	}
	return "opt(" + s.Inner.String() + ")"
}

func (s TupleShape) String() string {
	parts := make([]string, len(s.Elems))
	for i, e := range s.Elems {
		parts[i] = e.String()
	}
	return "tuple(" + strings.Join(parts, ", ") + ")"
}

func (s UnionShape) String() string {
	parts := make([]string, len(s.Alts))
	for i, k := range s.Alts {
		parts[i] = k.String()
	}
	return "union(" + strings.Join(parts, ", ") + ")"
}
