package omw

// Stream is the host-side parameter source a wrapper exposes to the
// reading engine. Implementations own the logical cursor: it starts at
// 0 when a frame begins, advances by exactly one slot per successful
// data-mode read, and is CursorUnbound outside of frames.
type Stream interface {
	// CheckIndex validates strict in-order access to parameter idx.
	CheckIndex(idx int, name string) error
	// TryRead reads the next value as kind. In data mode a success
	// consumes the value and advances the cursor; a type mismatch
	// reports ok=false with the cursor and stream position unmoved. In
	// probe mode the value is never consumed and the cursor never
	// moves, whatever the outcome. TryRead performs the CheckIndex
	// validation itself; errors are reserved for position and host API
	// state failures, never plain type mismatches.
	TryRead(kind Kind, idx int, name string, data bool) (v Value, ok bool, err error)
	// TryAbsent reports whether the optional parameter at idx is
	// absent. Absence consumes the host absence marker, if any, and
	// advances the cursor past the slot. When the parameter is present
	// the stream is left ready for the inner read.
	TryAbsent(idx int, name string) (bool, error)
	// EnterTuple validates a tuple header of the given arity at idx,
	// consuming it if the host represents tuples as a wire list. The
	// components are then read at idx, idx+1, ... idx+arity-1.
	EnterTuple(idx int, name string, arity int) error
	// LeaveTuple collapses the components of the tuple that began at
	// idx into one logical slot: the cursor becomes idx+1.
	LeaveTuple(idx int)
	// BeginTupleList validates a homogeneous tuple list starting at
	// firstIdx, consuming the outer list header if the host has one,
	// and returns the element count. arity is the per-element physical
	// width used by hosts that lay elements out flat.
	BeginTupleList(firstIdx int, arity int) (int, error)
}

// Sink is the host-side result destination. Writes outside BeginList
// emit standalone results; BeginList redirects the following writes
// into a composite list value until the matching EndList.
type Sink interface {
	WriteBool(v bool) error
	WriteInt(v int32) error
	WriteUint(v uint32) error
	WriteFloat(v float32) error
	WriteString(s string) error
	WriteFloatList(v []float32) error
	WriteMatrix(m *Matrix) error
	BeginList(n int) error
	EndList() error
}
