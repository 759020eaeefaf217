// Package wasmhandler loads WebAssembly guest modules and exposes the
// handler functions they export to the host-side wrappers.
package wasmhandler

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"slices"

	"go.uber.org/zap"

	omw "github.com/alixinne/omw"
	"github.com/alixinne/omw/runtime"
	_ "github.com/alixinne/omw/runtime/wazero" // Register wazero runtime
)

const (
	// guestExportMemory is the name of the memory export in the guest module
	guestExportMemory = "memory"

	// hostModuleName is the name of the host module
	hostModuleName = "omw"

	// Host function exports
	paramRead      = "param_read"
	paramCheck     = "param_check"
	paramAbsent    = "param_absent"
	paramEnter     = "param_enter"
	paramLeave     = "param_leave"
	paramSeq       = "param_seq"
	resultWrite    = "result_write"
	callFail       = "call_fail"
	callErrorText  = "call_error"
	configRead     = "config_read"
	functionsWrite = "functions_write"
	logWrite       = "log_write"

	// Guest functions
	invokeFunction = "omw_invoke"
	listFunctions  = "omw_functions"
)

var requiredGuestFunctions = []string{
	invokeFunction,
	listFunctions,
}

// Plugin is a loaded guest module whose exported handlers can be bound
// to a wrapper.
type Plugin struct {
	// Runtime is the WebAssembly engine (abstracted)
	Runtime runtime.Runtime

	// RuntimeContext holds engine-specific state (WASI, host modules, etc.)
	RuntimeContext runtime.Context

	// Module is the instantiated guest module (abstracted)
	Module runtime.ModuleInstance

	// PluginConfigJSON is the JSON representation of the plugin config
	PluginConfigJSON []byte

	// ExportedFunctions from the guest module (abstracted)
	ExportedFunctions map[string]runtime.FunctionInstance

	log       *zap.Logger
	functions []string
}

// Option configures a Plugin.
type Option func(*Plugin)

// WithLogger routes guest log entries and host diagnostics to log.
func WithLogger(log *zap.Logger) Option {
	return func(p *Plugin) { p.log = log }
}

// New loads, compiles and instantiates the guest module named by cfg
// and discovers the handler functions it exports.
func New(ctx context.Context, cfg *Config, opts ...Option) (*Plugin, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	f, err := os.Open(cfg.Path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	bytes, err := io.ReadAll(f)
	if err != nil {
		return nil, err
	}

	rt, err := runtime.New(cfg.Runtime)
	if err != nil {
		return nil, fmt.Errorf("wasm: error creating runtime: %w", err)
	}

	compiledModule, err := rt.Compile(ctx, bytes)
	if err != nil {
		return nil, fmt.Errorf("wasm: error compiling module: %w", err)
	}

	hostModule := createHostModule()

	moduleInstance, runtimeContext, err := rt.InstantiateWithHost(ctx, compiledModule, hostModule)
	if err != nil {
		return nil, fmt.Errorf("wasm: error instantiating module: %w", err)
	}

	if detectABIVersion(moduleInstance) == ABIUnknown {
		return nil, fmt.Errorf("wasm: %s is not exported: %w", abiVersionV1MarkerExport, ErrABIVersionMarkerNotExported)
	}

	exportedFunctions := make(map[string]runtime.FunctionInstance)
	for _, funcName := range requiredGuestFunctions {
		fn := moduleInstance.Function(funcName)
		if fn == nil {
			return nil, fmt.Errorf("wasm: %s is not exported: %w", funcName, ErrRequiredFunctionNotExported)
		}
		exportedFunctions[funcName] = fn
	}

	pluginConfigJSON, err := json.Marshal(cfg.PluginConfig)
	if err != nil {
		return nil, fmt.Errorf("wasm: error marshalling plugin config: %w", err)
	}

	plugin := &Plugin{
		Runtime:           rt,
		RuntimeContext:    runtimeContext,
		Module:            moduleInstance,
		PluginConfigJSON:  pluginConfigJSON,
		ExportedFunctions: exportedFunctions,
		log:               zap.NewNop(),
	}
	for _, opt := range opts {
		opt(plugin)
	}

	names, err := plugin.loadFunctions(ctx)
	if err != nil {
		return nil, err
	}
	plugin.functions = names

	return plugin, nil
}

// createHostModule declares the host functions the guest imports.
func createHostModule() *runtime.HostModule {
	i32 := runtime.ValueTypeI32
	i64 := runtime.ValueTypeI64

	hm := runtime.NewHostModule(hostModuleName)
	hm.AddFunction(paramRead,
		[]runtime.ValueType{i32, i32, i32, i32, i32, i32, i32},
		[]runtime.ValueType{i64},
		runtime.WazeroHostFunction{Function: paramReadFn})
	hm.AddFunction(paramCheck,
		[]runtime.ValueType{i32, i32, i32},
		[]runtime.ValueType{i64},
		runtime.WazeroHostFunction{Function: paramCheckFn})
	hm.AddFunction(paramAbsent,
		[]runtime.ValueType{i32, i32, i32},
		[]runtime.ValueType{i64},
		runtime.WazeroHostFunction{Function: paramAbsentFn})
	hm.AddFunction(paramEnter,
		[]runtime.ValueType{i32, i32, i32, i32},
		[]runtime.ValueType{i64},
		runtime.WazeroHostFunction{Function: paramEnterFn})
	hm.AddFunction(paramLeave,
		[]runtime.ValueType{i32},
		nil,
		runtime.WazeroHostFunction{Function: paramLeaveFn})
	hm.AddFunction(paramSeq,
		[]runtime.ValueType{i32, i32},
		[]runtime.ValueType{i64},
		runtime.WazeroHostFunction{Function: paramSeqFn})
	hm.AddFunction(resultWrite,
		[]runtime.ValueType{i32, i32},
		nil,
		runtime.WazeroHostFunction{Function: resultWriteFn})
	hm.AddFunction(callFail,
		[]runtime.ValueType{i32, i32},
		nil,
		runtime.WazeroHostFunction{Function: callFailFn})
	hm.AddFunction(callErrorText,
		[]runtime.ValueType{i32, i32},
		[]runtime.ValueType{i32},
		runtime.WazeroHostFunction{Function: callErrorFn})
	hm.AddFunction(configRead,
		[]runtime.ValueType{i32, i32},
		[]runtime.ValueType{i32},
		runtime.WazeroHostFunction{Function: configReadFn})
	hm.AddFunction(functionsWrite,
		[]runtime.ValueType{i32, i32},
		nil,
		runtime.WazeroHostFunction{Function: functionsWriteFn})
	hm.AddFunction(logWrite,
		[]runtime.ValueType{i32, i32},
		nil,
		runtime.WazeroHostFunction{Function: logWriteFn})
	return hm
}

// ProcessFunctionCall executes a guest function and handles stack
// management
func (p *Plugin) ProcessFunctionCall(ctx context.Context, functionName string, stack *Stack, params ...uint64) ([]uint64, error) {
	ctx = createContextWithStack(ctx, stack)
	// Set runtime context with WASI module instance for function calls
	ctx = p.RuntimeContext.WithCallContext(ctx)

	fn, ok := p.ExportedFunctions[functionName]
	if !ok {
		return nil, fmt.Errorf("wasm: function not found: %s", functionName)
	}

	return fn.Call(ctx, params...)
}

func (p *Plugin) loadFunctions(ctx context.Context) ([]string, error) {
	stack := &Stack{Logger: p.log}
	if _, err := p.ProcessFunctionCall(ctx, listFunctions, stack); err != nil {
		return nil, fmt.Errorf("wasm: error listing guest functions: %w", err)
	}
	return stack.Functions, nil
}

// Functions returns the handler names the guest exports, in guest
// registration order. The position of a name is the index omw_invoke
// dispatches on.
func (p *Plugin) Functions() []string {
	return p.functions
}

// Handler binds the named guest function as a wrapper handler. Calls
// dispatched through it run on ctx.
func (p *Plugin) Handler(ctx context.Context, name string) (omw.Handler, error) {
	idx := slices.Index(p.functions, name)
	if idx < 0 {
		return nil, fmt.Errorf("wasm: function not found: %s", name)
	}
	return func(c *omw.Call) error {
		return p.invoke(ctx, idx, name, c)
	}, nil
}

func (p *Plugin) invoke(ctx context.Context, idx int, name string, c *omw.Call) error {
	stack := &Stack{Call: c, ConfigJSON: p.PluginConfigJSON, Logger: p.log}

	res, err := p.ProcessFunctionCall(ctx, invokeFunction, stack, uint64(idx))
	if err != nil {
		return fmt.Errorf("wasm: error calling %s: %w", name, err)
	}
	if stack.Failure != nil {
		return stack.Failure
	}
	if len(res) == 0 {
		return fmt.Errorf("wasm: no status returned by %s", name)
	}
	if code := StatusCode(res[0]); code != 0 {
		return fmt.Errorf("wasm: %s returned status %s", name, code)
	}
	return nil
}

// Shutdown closes the WebAssembly runtime and system
func (p *Plugin) Shutdown(ctx context.Context) error {
	// Close runtime context first
	if p.RuntimeContext != nil {
		if err := p.RuntimeContext.Close(ctx); err != nil {
			return fmt.Errorf("wasm: error closing runtime context: %w", err)
		}
	}

	// Close the runtime
	if p.Runtime != nil {
		if err := p.Runtime.Close(ctx); err != nil {
			return fmt.Errorf("wasm: error closing runtime: %w", err)
		}
	}

	return nil
}
