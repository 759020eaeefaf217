// Package omw reads typed parameters from and writes results to
// interactive numeric hosts through a uniform stream contract.
//
// A host adapter exposes its calling convention as a Stream (parameter
// source) and a Sink (result destination). Handlers receive a Call that
// drives both: strictly ordered typed reads on one side, atomic or
// composite result emission on the other. The reading engine supports
// optional, tuple and union shapes on top of the atomic kinds, using
// non-consuming probes so that structural dispatch never relies on
// error control flow.
package omw

// CursorUnbound is the logical cursor value outside of a running call.
// Any parameter access while the cursor is unbound fails the position
// check.
const CursorUnbound = -1

// Handler is a host-callable function. It reads its parameters from the
// call frame and writes results back through it. A returned error is
// translated to the host failure protocol at the frame boundary and
// never propagates into host-native code.
type Handler func(c *Call) error
