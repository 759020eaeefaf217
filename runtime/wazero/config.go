package wazero

import (
	"context"

	"github.com/tetratelabs/wazero"

	"github.com/alixinne/omw/runtime"
)

// newWazeroRuntime creates a wazero engine in the configured execution
// mode.
func newWazeroRuntime(cfg runtime.Config) (runtime.Runtime, error) {
	var wrc wazero.RuntimeConfig
	switch cfg.Mode {
	case runtime.ModeCompiled:
		wrc = wazero.NewRuntimeConfigCompiler()
	default:
		wrc = wazero.NewRuntimeConfigInterpreter()
	}

	return &wazeroRuntime{
		runtime: wazero.NewRuntimeWithConfig(context.Background(), wrc),
	}, nil
}
