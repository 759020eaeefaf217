package arrayhost

import (
	"errors"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/alixinne/omw"
)

// Binding associates an exposed function name with its handler and the
// usage line shown by the host's help facility.
type Binding struct {
	Name    string
	Usage   string
	Handler omw.Handler

	// Path overrides the wrapper autoload path for this binding. Set
	// for functions living in a loadable module of their own.
	Path string
}

// AutoloadEntry maps an exposed function name to the library the host
// should load it from.
type AutoloadEntry struct {
	Name string
	Path string
}

// Option configures a Wrapper.
type Option func(*Wrapper)

// WithLogger routes wrapper diagnostics to l instead of discarding them.
func WithLogger(l *zap.Logger) Option {
	return func(w *Wrapper) { w.log = l }
}

// WithInitializer registers fn to run once before the first call.
func WithInitializer(fn func() error) Option {
	return func(w *Wrapper) { w.userInit = fn }
}

// WithAutoloadPath sets the library path the host is told to autoload
// registered functions from.
func WithAutoloadPath(path string) Option {
	return func(w *Wrapper) { w.autoload = path }
}

// WithExecutableAutoload resolves the autoload path to the running
// executable, the module native handlers live in.
func WithExecutableAutoload() Option {
	return func(w *Wrapper) {
		if path, err := os.Executable(); err == nil {
			w.autoload = path
		}
	}
}

// Wrapper dispatches argument-vector calls to registered handlers and
// collects their results.
type Wrapper struct {
	log      *zap.Logger
	userInit func() error
	initDone bool
	initErr  error
	autoload string
	bindings []Binding
	byName   map[string]int
}

// New returns an empty wrapper.
func New(opts ...Option) *Wrapper {
	w := &Wrapper{
		log:    zap.NewNop(),
		byName: make(map[string]int),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Register exposes b through the wrapper.
func (w *Wrapper) Register(b Binding) error {
	if b.Name == "" {
		return errors.New("binding must have a name")
	}
	if b.Handler == nil {
		return fmt.Errorf("binding %s must have a handler", b.Name)
	}
	if _, dup := w.byName[b.Name]; dup {
		return fmt.Errorf("binding %s already registered", b.Name)
	}
	w.byName[b.Name] = len(w.bindings)
	w.bindings = append(w.bindings, b)
	return nil
}

// Bindings returns the registered bindings in registration order.
func (w *Wrapper) Bindings() []Binding {
	out := make([]Binding, len(w.bindings))
	copy(out, w.bindings)
	return out
}

// AutoloadEntries returns one entry per registered function, against
// the binding's own module when it names one and the configured
// library path otherwise.
func (w *Wrapper) AutoloadEntries() ([]AutoloadEntry, error) {
	entries := make([]AutoloadEntry, len(w.bindings))
	for i, b := range w.bindings {
		path := b.Path
		if path == "" {
			path = w.autoload
		}
		if path == "" {
			return nil, omw.ErrNoAutoloadPath
		}
		entries[i] = AutoloadEntry{Name: b.Name, Path: path}
	}
	return entries, nil
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

// Run serves one call with h. On failure the results are empty and the
// error carries the diagnostic; the host embedding decides how to
// surface it.
func (w *Wrapper) Run(args []omw.Value, h omw.Handler) ([]omw.Value, error) {
	if err := w.ensureInit(); err != nil {
		w.log.Warn("call failed", zap.Error(err))
		return nil, err
	}
	st := newStream(args)
	st.begin()
	defer st.end()
	sk := newSink()

	c := omw.NewCall(st, sk)
	if err := h(c); err != nil {
		w.log.Warn("call failed", zap.Error(err))
		return nil, err
	}
	return sk.results(), nil
}

// Invoke looks up name and runs it on args.
func (w *Wrapper) Invoke(name string, args []omw.Value) ([]omw.Value, error) {
	idx, ok := w.byName[name]
	if !ok {
		return nil, fmt.Errorf("function %s is not registered", name)
	}
	b := w.bindings[idx]
	w.log.Debug("dispatching call", zap.String("function", b.Name), zap.Int("args", len(args)))
	return w.Run(args, b.Handler)
}
