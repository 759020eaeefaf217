// Package plugin registers guest handler functions and exports the
// entry points the omw host dispatches on.
package plugin

import (
	"fmt"

	omw "github.com/alixinne/omw"
)

var (
	names    []string
	handlers []omw.Handler
	byName   = map[string]int{}
)

// Register adds a handler under name. Registration order defines the
// function indices the host dispatches on, so it must happen before
// the module finishes initializing, typically from init or main.
func Register(name string, h omw.Handler) {
	if name == "" {
		panic("plugin: empty handler name")
	}
	if h == nil {
		panic(fmt.Sprintf("plugin: nil handler for %s", name))
	}
	if _, dup := byName[name]; dup {
		panic(fmt.Sprintf("plugin: handler %s already registered", name))
	}
	byName[name] = len(names)
	names = append(names, name)
	handlers = append(handlers, h)
}

// Names returns the registered handler names in registration order.
func Names() []string {
	out := make([]string, len(names))
	copy(out, names)
	return out
}
