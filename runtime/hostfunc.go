package runtime

import (
	"context"

	"github.com/tetratelabs/wazero/api"
)

// ValueType enumerates wasm core value types for host function
// signatures.
type ValueType int

const (
	ValueTypeI32 ValueType = iota
	ValueTypeI64
	ValueTypeF32
	ValueTypeF64
)

// HostFunctionImpl carries the engine-specific implementations of one
// host function.
type HostFunctionImpl interface {
	// Implementation returns the implementation for the given engine
	// type, or nil when the function has none for it.
	Implementation(runtimeType string) any
}

// WazeroHostFunction wraps a wazero stack-calling-convention function.
type WazeroHostFunction struct {
	Function func(context.Context, api.Module, []uint64)
}

func (w WazeroHostFunction) Implementation(runtimeType string) any {
	if runtimeType == DefaultType {
		return w.Function
	}
	return nil
}

// HostFunction declares one function a guest can import.
type HostFunction struct {
	Name        string
	ParamTypes  []ValueType
	ResultTypes []ValueType
	Impl        HostFunctionImpl
}

// HostModule is a named collection of host functions exported to the
// guest under a single import module name.
type HostModule struct {
	Name  string
	funcs []HostFunction
}

// NewHostModule returns an empty host module exporting under name.
func NewHostModule(name string) *HostModule {
	return &HostModule{Name: name}
}

// AddFunction declares a function on the module.
func (hm *HostModule) AddFunction(name string, params, results []ValueType, impl HostFunctionImpl) {
	hm.funcs = append(hm.funcs, HostFunction{
		Name:        name,
		ParamTypes:  params,
		ResultTypes: results,
		Impl:        impl,
	})
}

// Functions returns the declared functions in declaration order.
func (hm *HostModule) Functions() []HostFunction {
	return hm.funcs
}
