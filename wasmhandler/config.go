package wasmhandler

import (
	"fmt"

	"github.com/go-viper/mapstructure/v2"

	"github.com/alixinne/omw/runtime"
)

// PluginConfig is a generic configuration block handed to the guest
// module as JSON.
type PluginConfig map[string]interface{}

// Decode maps the configuration block onto a typed struct through its
// mapstructure tags. Host-side code uses this where guests use their
// JSON config accessor.
func (c PluginConfig) Decode(v any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           v,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return err
	}
	return dec.Decode(map[string]interface{}(c))
}

// Config describes one guest module to load.
type Config struct {
	// Path to the wasm module file
	Path string `mapstructure:"path"`

	// PluginConfig is the configuration to be passed to the guest module
	PluginConfig PluginConfig `mapstructure:"plugin_config"`

	// Runtime is the configuration of the WebAssembly engine hosting
	// the module.
	Runtime runtime.Config `mapstructure:"runtime"`
}

// Validate validates the configuration
func (cfg *Config) Validate() error {
	if cfg.Path == "" {
		return fmt.Errorf("path is required")
	}
	return cfg.Runtime.Validate()
}
