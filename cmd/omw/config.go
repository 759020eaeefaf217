package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/alixinne/omw/wasmhandler"
)

// defaultConfigFile is picked up from the working directory when no
// --config flag is given.
const defaultConfigFile = "omw.yaml"

// envPrefix scopes the environment variables the CLI reads, e.g.
// OMW_DEBUG=true or OMW_NAMESPACE=MyApp. A double underscore descends
// into nested keys.
const envPrefix = "OMW_"

// Config is the CLI configuration, shared by every subcommand so the
// server and a client resolving dispatch slots agree on the function
// table.
type Config struct {
	// Debug switches to a development logger at debug level.
	Debug bool `mapstructure:"debug"`

	// Namespace qualifies the messages failed calls are reported
	// under.
	Namespace string `mapstructure:"namespace"`

	// MatricesAsImages wraps matrix results in an image constructor
	// when answering over a link.
	MatricesAsImages bool `mapstructure:"matrices_as_images"`

	// Modules lists wasm guest modules whose exported functions are
	// registered after the built-in ones, in order.
	Modules []wasmhandler.Config `mapstructure:"modules"`
}

// Default fills unset fields.
func (c *Config) Default() {
	if c.Namespace == "" {
		c.Namespace = "OMW"
	}
	for i := range c.Modules {
		c.Modules[i].Runtime.Default()
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	for i := range c.Modules {
		if err := c.Modules[i].Validate(); err != nil {
			return fmt.Errorf("module %d: %w", i, err)
		}
	}
	return nil
}

// loadConfig merges the YAML file, OMW_-prefixed environment variables
// and the --module flags into a validated configuration.
func loadConfig(path string, moduleFlags []string, debug bool) (*Config, error) {
	k := koanf.New(".")

	if path == "" {
		if _, err := os.Stat(defaultConfigFile); err == nil {
			path = defaultConfigFile
		}
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("loading %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, envPrefix)), "__", ".")
	}), nil); err != nil {
		return nil, fmt.Errorf("loading environment: %w", err)
	}

	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "mapstructure"}); err != nil {
		return nil, fmt.Errorf("decoding configuration: %w", err)
	}

	for _, m := range moduleFlags {
		cfg.Modules = append(cfg.Modules, wasmhandler.Config{Path: m})
	}
	if debug {
		cfg.Debug = true
	}

	cfg.Default()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
