// Package runtime abstracts the WebAssembly engine hosting guest
// handler modules, so the handler layer stays independent of the
// concrete engine.
package runtime

import "context"

// Runtime is a wasm engine instance.
type Runtime interface {
	// Compile compiles a wasm binary for later instantiation.
	Compile(ctx context.Context, binary []byte) (CompiledModule, error)
	// InstantiateWithHost instantiates module together with the host
	// functions it imports and the engine-specific system setup.
	InstantiateWithHost(ctx context.Context, module CompiledModule, host *HostModule) (ModuleInstance, Context, error)
	// Close releases the engine and everything instantiated on it.
	Close(ctx context.Context) error
}

// CompiledModule is a compiled wasm module, ready for instantiation.
type CompiledModule interface {
	Close(ctx context.Context) error
}

// ModuleInstance is an instantiated guest module.
type ModuleInstance interface {
	// Function returns a handle to an exported function, or nil when
	// the guest does not export it.
	Function(name string) FunctionInstance
	// Memory returns the guest's exported linear memory, or nil.
	Memory() Memory
	Close(ctx context.Context) error
}

// FunctionInstance is an exported guest function.
type FunctionInstance interface {
	Call(ctx context.Context, params ...uint64) ([]uint64, error)
}

// Memory is the linear memory of a guest instance.
type Memory interface {
	// Read returns size bytes at offset. The second result is false
	// when the range is out of bounds.
	Read(offset uint32, size uint32) ([]byte, bool)
	// Write copies data to offset, reporting whether it fit.
	Write(offset uint32, data []byte) bool
}

// Context carries engine-specific per-instance state. Calls into the
// guest must run on a context derived through WithCallContext.
type Context interface {
	// WithCallContext binds ctx so system host functions resolve their
	// instance state during a guest call.
	WithCallContext(ctx context.Context) context.Context
	// Close releases the engine-specific resources.
	Close(ctx context.Context) error
}
