// Package wazero adapts the wazero engine to the runtime abstraction.
package wazero

import (
	"context"
	"fmt"
	"os"

	"github.com/stealthrocket/wasi-go"
	wasigo "github.com/stealthrocket/wasi-go/imports"
	"github.com/stealthrocket/wasi-go/imports/wasi_snapshot_preview1"
	"github.com/stealthrocket/wazergo"
	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"

	"github.com/alixinne/omw/runtime"
)

const (
	// guestExportMemory is the name of the memory export in the guest module
	guestExportMemory = "memory"
	// wasmEdgeV2Extension is the WASI sockets extension name
	wasmEdgeV2Extension = "wasmedgev2"
)

type wazeroRuntime struct {
	runtime wazero.Runtime
}

type wazeroCompiledModule struct {
	module  wazero.CompiledModule
	runtime wazero.Runtime
}

type wazeroModuleInstance struct {
	instance api.Module
}

type wazeroFunctionInstance struct {
	function api.Function
}

type wazeroMemory struct {
	memory api.Memory
}

type wazeroContext struct {
	sys              wasi.System
	wasiP1HostModule *wasi_snapshot_preview1.Module
}

// Compile compiles the given wasm binary into a CompiledModule.
func (r *wazeroRuntime) Compile(ctx context.Context, binary []byte) (runtime.CompiledModule, error) {
	compiled, err := r.runtime.CompileModule(ctx, binary)
	if err != nil {
		return nil, fmt.Errorf("wazero compile error: %w", err)
	}

	if _, ok := compiled.ExportedMemories()[guestExportMemory]; !ok {
		return nil, fmt.Errorf("wasm: guest doesn't export memory[%s]: %w", guestExportMemory, runtime.ErrMemoryExportNotFound)
	}

	return &wazeroCompiledModule{
		module:  compiled,
		runtime: r.runtime,
	}, nil
}

// InstantiateWithHost creates a module instance with host functions and
// the WASI setup guests are built against.
func (r *wazeroRuntime) InstantiateWithHost(ctx context.Context, module runtime.CompiledModule, host *runtime.HostModule) (runtime.ModuleInstance, runtime.Context, error) {
	wazeroModule, ok := module.(*wazeroCompiledModule)
	if !ok {
		return nil, nil, fmt.Errorf("invalid module type for wazero runtime: %w", runtime.ErrInvalidConfiguration)
	}

	var sys wasi.System
	ctx, sys, err := wasigo.NewBuilder().
		WithSocketsExtension(wasmEdgeV2Extension, wazeroModule.module).
		WithEnv(os.Environ()...).Instantiate(ctx, r.runtime)
	if err != nil {
		return nil, nil, fmt.Errorf("wasi instantiation failed: %w", err)
	}

	// Extract the wasi host module instance from the context as a workaround
	// to avoid panic when calling wasi functions with different context than
	// the one used to instantiate the host module.
	wasiP1HostModule, ok := moduleInstanceFor[*wasi_snapshot_preview1.Module](ctx)
	if !ok {
		sys.Close(ctx)
		return nil, nil, fmt.Errorf("failed to retrieve wasi host module instance: %w", runtime.ErrInvalidConfiguration)
	}

	if _, err := r.instantiateHostModule(ctx, host); err != nil {
		sys.Close(ctx)
		return nil, nil, fmt.Errorf("host module instantiation failed: %w", err)
	}

	config := wazero.NewModuleConfig().
		WithStartFunctions("_initialize"). // reactor module
		WithStdout(os.Stdout).
		WithStderr(os.Stderr)

	instance, err := r.runtime.InstantiateModule(ctx, wazeroModule.module, config)
	if err != nil {
		sys.Close(ctx)
		return nil, nil, fmt.Errorf("guest module instantiation failed: %w", err)
	}

	runtimeCtx := &wazeroContext{
		sys:              sys,
		wasiP1HostModule: wasiP1HostModule,
	}

	return &wazeroModuleInstance{instance: instance}, runtimeCtx, nil
}

// Close closes the runtime and releases all resources.
func (r *wazeroRuntime) Close(ctx context.Context) error {
	return r.runtime.Close(ctx)
}

func (m *wazeroCompiledModule) Close(ctx context.Context) error {
	return m.module.Close(ctx)
}

func (m *wazeroModuleInstance) Function(name string) runtime.FunctionInstance {
	fn := m.instance.ExportedFunction(name)
	if fn == nil {
		return nil
	}
	return &wazeroFunctionInstance{function: fn}
}

func (m *wazeroModuleInstance) Memory() runtime.Memory {
	memory := m.instance.Memory()
	if memory == nil {
		return nil
	}
	return &wazeroMemory{memory: memory}
}

func (m *wazeroModuleInstance) Close(ctx context.Context) error {
	return m.instance.Close(ctx)
}

func (f *wazeroFunctionInstance) Call(ctx context.Context, params ...uint64) ([]uint64, error) {
	return f.function.Call(ctx, params...)
}

func (mem *wazeroMemory) Read(offset uint32, size uint32) ([]byte, bool) {
	return mem.memory.Read(offset, size)
}

func (mem *wazeroMemory) Write(offset uint32, data []byte) bool {
	return mem.memory.Write(offset, data)
}

func (c *wazeroContext) Close(ctx context.Context) error {
	return c.sys.Close(ctx)
}

// WithCallContext binds ctx so the WASI host functions resolve their
// instance state during a guest call.
func (c *wazeroContext) WithCallContext(ctx context.Context) context.Context {
	return withModuleInstance(ctx, c.wasiP1HostModule)
}

// instantiateHostModule creates and instantiates the host module with
// the functions the guest imports.
func (r *wazeroRuntime) instantiateHostModule(ctx context.Context, host *runtime.HostModule) (api.Module, error) {
	builder := r.runtime.NewHostModuleBuilder(host.Name)

	for _, hostFunc := range host.Functions() {
		impl := hostFunc.Impl.Implementation(runtime.DefaultType)
		if impl == nil {
			return nil, fmt.Errorf("no wazero implementation for host function %s: %w", hostFunc.Name, runtime.ErrHostFunctionNotFound)
		}
		wazeroFunc, ok := impl.(func(context.Context, api.Module, []uint64))
		if !ok {
			return nil, fmt.Errorf("invalid wazero function signature for %s: %w", hostFunc.Name, runtime.ErrHostFunctionNotFound)
		}

		paramTypes := make([]api.ValueType, len(hostFunc.ParamTypes))
		for i, vt := range hostFunc.ParamTypes {
			paramTypes[i] = convertValueType(vt)
		}
		resultTypes := make([]api.ValueType, len(hostFunc.ResultTypes))
		for i, vt := range hostFunc.ResultTypes {
			resultTypes[i] = convertValueType(vt)
		}

		builder = builder.NewFunctionBuilder().
			WithGoModuleFunction(api.GoModuleFunc(wazeroFunc), paramTypes, resultTypes).
			Export(hostFunc.Name)
	}

	return builder.Instantiate(ctx)
}

func convertValueType(vt runtime.ValueType) api.ValueType {
	switch vt {
	case runtime.ValueTypeI64:
		return api.ValueTypeI64
	case runtime.ValueTypeF32:
		return api.ValueTypeF32
	case runtime.ValueTypeF64:
		return api.ValueTypeF64
	default:
		return api.ValueTypeI32
	}
}

// moduleInstanceFor returns the module instance from the context that
// contains the internal state required for WASI host functions.
// NOTE: wasi-go returns a context containing internal state when
// initializing the host module, and the same context is required when
// calling wasi functions exposed by wasi-go.
func moduleInstanceFor[T wazergo.Module](ctx context.Context) (res T, ok bool) {
	res, ok = ctx.Value((*wazergo.ModuleInstance[T])(nil)).(T)
	return
}

// withModuleInstance returns a Go context inheriting from ctx and
// containing the state needed for modules instantiated from a wazero
// host module to bind their methods to their receiver.
func withModuleInstance[T wazergo.Module](ctx context.Context, instance T) context.Context {
	return context.WithValue(ctx, (*wazergo.ModuleInstance[T])(nil), instance)
}
