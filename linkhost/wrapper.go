package linkhost

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/alixinne/omw"
	"github.com/alixinne/omw/link"
)

const (
	packetCall     = "CallPacket"
	packetReturn   = "ReturnPacket"
	packetEvaluate = "EvaluatePacket"
)

// Binding associates a dispatch slot with a handler. The pattern and
// argument template are declaration metadata for the peer-side
// definitions; dispatch itself is by slot index.
type Binding struct {
	// Name is the symbol the function is exposed as.
	Name string
	// Pattern is the peer-side argument pattern, e.g. "{x_Integer, y_Integer}".
	Pattern string
	// Args is the peer-side call template, e.g. "{x, y}".
	Args string
	// Handler consumes the call arguments and writes the result.
	Handler omw.Handler
}

// Option configures a Wrapper.
type Option func(*Wrapper)

// WithLogger routes wrapper diagnostics to l instead of discarding them.
func WithLogger(l *zap.Logger) Option {
	return func(w *Wrapper) { w.log = l }
}

// WithInitializer registers fn to run once before the first call is
// served. An initializer error fails every subsequent call.
func WithInitializer(fn func() error) Option {
	return func(w *Wrapper) { w.userInit = fn }
}

// Wrapper serves typed calls over a kernel link. It owns the link for
// the duration of a session: one call is read, dispatched and answered
// at a time.
type Wrapper struct {
	namespace string
	link      link.Link
	log       *zap.Logger
	stream    *stream
	sink      *sink
	userInit  func() error
	initDone  bool
	initErr   error
	matImages bool
	bindings  []Binding
	byName    map[string]int
}

// New returns a wrapper answering for the given message namespace on l.
func New(namespace string, l link.Link, opts ...Option) *Wrapper {
	w := &Wrapper{
		namespace: namespace,
		link:      l,
		log:       zap.NewNop(),
		byName:    make(map[string]int),
	}
	w.stream = newStream(l)
	w.sink = &sink{w: w}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Namespace returns the message namespace calls are answered for.
func (w *Wrapper) Namespace() string { return w.namespace }

// Link exposes the underlying link, mainly for session setup traffic
// that does not go through a handler.
func (w *Wrapper) Link() link.Link { return w.link }

// SetMatricesAsImages controls whether matrix results are wrapped in an
// image constructor when serialized.
func (w *Wrapper) SetMatricesAsImages(enabled bool) { w.matImages = enabled }

// MatricesAsImages reports the current matrix serialization mode.
func (w *Wrapper) MatricesAsImages() bool { return w.matImages }

// Bind registers b at the next free dispatch slot and returns its index.
func (w *Wrapper) Bind(b Binding) (int, error) {
	if b.Name == "" {
		return 0, errors.New("binding must have a name")
	}
	if b.Handler == nil {
		return 0, fmt.Errorf("binding %s must have a handler", b.Name)
	}
	if _, dup := w.byName[b.Name]; dup {
		return 0, fmt.Errorf("binding %s already registered", b.Name)
	}
	idx := len(w.bindings)
	w.bindings = append(w.bindings, b)
	w.byName[b.Name] = idx
	return idx, nil
}

// Bindings returns the registered bindings in dispatch order.
func (w *Wrapper) Bindings() []Binding {
	out := make([]Binding, len(w.bindings))
	copy(out, w.bindings)
	return out
}

// BindingIndex returns the dispatch slot for name.
func (w *Wrapper) BindingIndex(name string) (int, bool) {
	idx, ok := w.byName[name]
	return idx, ok
}

func (w *Wrapper) ensureInit() error {
	if !w.initDone {
		w.initDone = true
		if w.userInit != nil {
			w.initErr = w.userInit()
		}
	}
	return w.initErr
}

// Run serves a single already-dispatched call with h. The parameter
// cursor is bound for the duration of the handler and unbound again on
// every exit path. A handler that returns without writing a result
// answers Null; a handler error is reported to the peer as a message
// followed by a $Failed answer.
func (w *Wrapper) Run(h omw.Handler) error {
	if err := w.ensureInit(); err != nil {
		return w.fail(err)
	}
	w.stream.begin()
	defer w.stream.end()
	w.sink.depth = 0

	c := omw.NewCall(w.stream, w.sink)
	if err := h(c); err != nil {
		return w.fail(err)
	}
	if !c.HasResult() {
		return w.answerSymbol("Null")
	}
	return w.link.Flush()
}

// fail reports cause to the peer: a message evaluation carrying the
// error text, then a $Failed answer so the call still completes.
func (w *Wrapper) fail(cause error) error {
	w.log.Warn("call failed", zap.Error(cause))

	w.link.NewPacket()
	var errs error
	errs = multierr.Append(errs, w.link.PutFunction(packetEvaluate, 1))
	errs = multierr.Append(errs, w.link.PutFunction("Message", 2))
	errs = multierr.Append(errs, w.link.PutFunction("MessageName", 2))
	errs = multierr.Append(errs, w.link.PutSymbol(w.namespace))
	errs = multierr.Append(errs, w.link.PutString("err"))
	errs = multierr.Append(errs, w.link.PutString(cause.Error()))
	errs = multierr.Append(errs, w.link.EndPacket())
	errs = multierr.Append(errs, w.link.Flush())

	// Drain the acknowledgement the evaluation elicits. An in-process
	// peer may not have produced it yet; that is not an error here.
	if _, err := w.link.NextPacket(); err == nil {
		w.link.NewPacket()
	}

	return multierr.Append(errs, w.answerSymbol("$Failed"))
}

func (w *Wrapper) answerSymbol(sym string) error {
	var errs error
	errs = multierr.Append(errs, w.link.PutFunction(packetReturn, 1))
	errs = multierr.Append(errs, w.link.PutSymbol(sym))
	errs = multierr.Append(errs, w.link.EndPacket())
	return multierr.Append(errs, w.link.Flush())
}

// ServeOne reads, dispatches and answers the next call packet. It
// returns false when the link has no further traffic.
func (w *Wrapper) ServeOne(ctx context.Context) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	head, err := w.link.NextPacket()
	if err != nil {
		if errors.Is(err, link.ErrEmpty) || errors.Is(err, link.ErrClosed) {
			return false, nil
		}
		return false, err
	}
	if head != packetCall {
		w.log.Warn("skipping unexpected packet", zap.String("head", head))
		w.link.NewPacket()
		return true, nil
	}

	idx, err := w.link.ReadInt32()
	if err != nil {
		err = w.fail(fmt.Errorf("malformed call packet: %w", err))
		w.link.NewPacket()
		return true, err
	}
	if idx < 0 || int(idx) >= len(w.bindings) {
		err = w.fail(fmt.Errorf("no function bound at index %d", idx))
		w.link.NewPacket()
		return true, err
	}

	b := w.bindings[idx]
	w.log.Debug("dispatching call", zap.String("function", b.Name), zap.Int32("index", idx))
	err = w.Run(b.Handler)
	// Discard any call arguments the handler left unread.
	w.link.NewPacket()
	if err != nil {
		return true, err
	}
	return true, w.link.Flush()
}

// Serve answers calls until the link drains or ctx is done.
func (w *Wrapper) Serve(ctx context.Context) error {
	for {
		more, err := w.ServeOne(ctx)
		if err != nil {
			return err
		}
		if !more {
			return nil
		}
	}
}
