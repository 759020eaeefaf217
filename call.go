package omw

// Call is the invocation frame passed to handlers. It lives for one
// host call: parameter reads go through the stream in strict index
// order, results through the sink. The owning wrapper resets the
// stream cursor before handing out a Call and unbinds it afterwards.
type Call struct {
	stream    Stream
	sink      Sink
	hasResult bool
}

// NewCall builds a frame over the given adapter pair.
func NewCall(stream Stream, sink Sink) *Call {
	return &Call{stream: stream, sink: sink}
}

// HasResult reports whether the handler emitted at least one result.
// Wrappers emit the host null marker after handlers that did not.
func (c *Call) HasResult() bool {
	return c.hasResult
}

// Stream returns the parameter source backing this frame.
func (c *Call) Stream() Stream {
	return c.stream
}
