package runtime

import (
	"fmt"
	"sort"
)

// DefaultType is the engine used when a configuration does not name
// one.
const DefaultType = "wazero"

// Mode selects how the engine executes guest code.
type Mode string

const (
	ModeInterpreter Mode = "interpreter"
	ModeCompiled    Mode = "compiled"
)

// Config is the engine-independent runtime configuration.
type Config struct {
	// Type names the registered engine. Empty means DefaultType.
	Type string `mapstructure:"type"`
	// Mode selects interpreted or ahead-of-time compiled execution.
	Mode Mode `mapstructure:"mode"`
}

// Validate checks the configuration against the registered engines.
func (c *Config) Validate() error {
	if c.Type != "" {
		if _, ok := factories[c.Type]; !ok {
			return fmt.Errorf("unknown runtime type %q: %w", c.Type, ErrRuntimeNotFound)
		}
	}
	switch c.Mode {
	case "", ModeInterpreter, ModeCompiled:
		return nil
	}
	return fmt.Errorf("unknown runtime mode %q: %w", c.Mode, ErrInvalidConfiguration)
}

// Default fills unset fields.
func (c *Config) Default() {
	if c.Type == "" {
		c.Type = DefaultType
	}
	if c.Mode == "" {
		c.Mode = ModeInterpreter
	}
}

// Factory creates an engine from its configuration.
type Factory func(cfg Config) (Runtime, error)

var factories = make(map[string]Factory)

// Register makes a factory available under name. Engines register
// themselves from an init function.
func Register(name string, factory Factory) {
	if _, exists := factories[name]; exists {
		panic(fmt.Sprintf("runtime %s already registered", name))
	}
	factories[name] = factory
}

// New creates the engine named by cfg.
func New(cfg Config) (Runtime, error) {
	cfg.Default()
	factory, ok := factories[cfg.Type]
	if !ok {
		return nil, fmt.Errorf("unknown runtime type %q: %w", cfg.Type, ErrRuntimeNotFound)
	}
	return factory(cfg)
}

// List returns the registered engine names.
func List() []string {
	types := make([]string, 0, len(factories))
	for t := range factories {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}
