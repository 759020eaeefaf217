package main

import (
	"context"
	"fmt"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	omw "github.com/alixinne/omw"
	"github.com/alixinne/omw/arrayhost"
	"github.com/alixinne/omw/link"
	"github.com/alixinne/omw/linkhost"
	"github.com/alixinne/omw/wasmhandler"
)

// binding is one entry of the session's function table, carrying the
// metadata both front ends need. Slot indices follow table order, so
// a server and a client built from the same configuration agree on
// dispatch.
type binding struct {
	Name    string
	Usage   string
	Pattern string
	Args    string
	Handler omw.Handler

	// ModulePath names the wasm module the handler came from; empty
	// for built-ins, which autoload from the executable itself.
	ModulePath string
}

// session is the loaded function table: built-ins first, then every
// configured wasm module's exports in order.
type session struct {
	cfg      *Config
	log      *zap.Logger
	bindings []binding
	plugins  []*wasmhandler.Plugin
}

func newSession(ctx context.Context, cfg *Config, log *zap.Logger) (*session, error) {
	s := &session{cfg: cfg, log: log, bindings: builtins()}

	for i := range cfg.Modules {
		p, err := wasmhandler.New(ctx, &cfg.Modules[i], wasmhandler.WithLogger(log))
		if err != nil {
			return nil, multierr.Append(fmt.Errorf("loading module %s: %w", cfg.Modules[i].Path, err), s.Close(ctx))
		}
		s.plugins = append(s.plugins, p)

		for _, name := range p.Functions() {
			h, err := p.Handler(ctx, name)
			if err != nil {
				return nil, multierr.Append(err, s.Close(ctx))
			}
			s.bindings = append(s.bindings, binding{
				Name:       name,
				Usage:      fmt.Sprintf("%s(...): exported by %s", name, cfg.Modules[i].Path),
				Pattern:    "{args___}",
				Args:       "{args}",
				Handler:    h,
				ModulePath: cfg.Modules[i].Path,
			})
		}
		log.Debug("loaded guest module",
			zap.String("path", cfg.Modules[i].Path),
			zap.Strings("functions", p.Functions()))
	}

	return s, nil
}

// Close shuts the loaded modules down.
func (s *session) Close(ctx context.Context) error {
	var errs error
	for _, p := range s.plugins {
		errs = multierr.Append(errs, p.Shutdown(ctx))
	}
	return errs
}

// Slot resolves a function name to its dispatch slot.
func (s *session) Slot(name string) (int, bool) {
	for i, b := range s.bindings {
		if b.Name == name {
			return i, true
		}
	}
	return 0, false
}

// arrayWrapper registers the function table on a fresh array host
// wrapper.
func (s *session) arrayWrapper() (*arrayhost.Wrapper, error) {
	w := arrayhost.New(arrayhost.WithLogger(s.log), arrayhost.WithExecutableAutoload())
	for _, b := range s.bindings {
		if err := w.Register(arrayhost.Binding{Name: b.Name, Usage: b.Usage, Handler: b.Handler, Path: b.ModulePath}); err != nil {
			return nil, err
		}
	}
	return w, nil
}

// linkWrapper registers the function table on a wrapper answering on l.
func (s *session) linkWrapper(l link.Link) (*linkhost.Wrapper, error) {
	w := linkhost.New(s.cfg.Namespace, l, linkhost.WithLogger(s.log))
	w.SetMatricesAsImages(s.cfg.MatricesAsImages)
	for _, b := range s.bindings {
		if _, err := w.Bind(linkhost.Binding{Name: b.Name, Pattern: b.Pattern, Args: b.Args, Handler: b.Handler}); err != nil {
			return nil, err
		}
	}
	return w, nil
}
