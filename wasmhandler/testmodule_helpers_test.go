package wasmhandler

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"

	"github.com/alixinne/omw/runtime"
)

// Imported host function indices, in the order guestModule declares
// them. Local functions follow.
const (
	importParamRead = iota
	importParamCheck
	importParamAbsent
	importParamEnter
	importParamLeave
	importParamSeq
	importResultWrite
	importCallFail
	importCallError
	importConfigRead
	importFunctionsWrite
	importLogWrite
	numImports
)

const (
	funcInvoke = numImports + iota
	funcListFunctions
	funcABIMarker
	funcInitialize
)

// dataSegment is one active data segment placed in guest memory.
type dataSegment struct {
	offset uint32
	bytes  []byte
}

// guestModule assembles a test guest for the omw host module. Bodies
// are raw instruction sequences without the local declaration and end
// opcodes; the builder adds those.
type guestModule struct {
	invokeBody    []byte
	functionsBody []byte
	data          []dataSegment

	omitMemory    bool
	omitMarker    bool
	omitInvoke    bool
	omitFunctions bool
}

func buildGuestModule(g guestModule) []byte {
	module := []byte{
		0x00, 0x61, 0x73, 0x6d, // magic
		0x01, 0x00, 0x00, 0x00, // version
	}

	appendSection := func(sectionID byte, payload []byte) {
		module = append(module, sectionID)
		module = append(module, encodeULEB128Test(uint32(len(payload)))...)
		module = append(module, payload...)
	}

	// Type section:
	// 0: (i32 x7) -> i64      [param_read]
	// 1: (i32 x3) -> i64      [param_check, param_absent]
	// 2: (i32 x4) -> i64      [param_enter]
	// 3: (i32) -> ()          [param_leave]
	// 4: (i32, i32) -> i64    [param_seq]
	// 5: (i32, i32) -> ()     [result_write, call_fail, functions_write, log_write]
	// 6: (i32, i32) -> i32    [call_error, config_read]
	// 7: (i32) -> i32         [omw_invoke]
	// 8: () -> ()             [omw_functions, marker, _initialize]
	appendSection(0x01, []byte{
		0x09, // 9 types
		0x60, 0x07, 0x7f, 0x7f, 0x7f, 0x7f, 0x7f, 0x7f, 0x7f, 0x01, 0x7e,
		0x60, 0x03, 0x7f, 0x7f, 0x7f, 0x01, 0x7e,
		0x60, 0x04, 0x7f, 0x7f, 0x7f, 0x7f, 0x01, 0x7e,
		0x60, 0x01, 0x7f, 0x00,
		0x60, 0x02, 0x7f, 0x7f, 0x01, 0x7e,
		0x60, 0x02, 0x7f, 0x7f, 0x00,
		0x60, 0x02, 0x7f, 0x7f, 0x01, 0x7f,
		0x60, 0x01, 0x7f, 0x01, 0x7f,
		0x60, 0x00, 0x00,
	})

	// Import section: every host function, so call indices stay fixed.
	imports := []struct {
		name      string
		typeIndex byte
	}{
		{paramRead, 0},
		{paramCheck, 1},
		{paramAbsent, 1},
		{paramEnter, 2},
		{paramLeave, 3},
		{paramSeq, 4},
		{resultWrite, 5},
		{callFail, 5},
		{callErrorText, 6},
		{configRead, 6},
		{functionsWrite, 5},
		{logWrite, 5},
	}
	importPayload := encodeULEB128Test(uint32(len(imports)))
	for _, imp := range imports {
		importPayload = append(importPayload, encodeULEB128Test(uint32(len(hostModuleName)))...)
		importPayload = append(importPayload, hostModuleName...)
		importPayload = append(importPayload, encodeULEB128Test(uint32(len(imp.name)))...)
		importPayload = append(importPayload, imp.name...)
		importPayload = append(importPayload, 0x00, imp.typeIndex) // kind=func
	}
	appendSection(0x02, importPayload)

	// Function section: omw_invoke, omw_functions, marker, _initialize.
	appendSection(0x03, []byte{
		0x04,
		0x07, // omw_invoke
		0x08, // omw_functions
		0x08, // omw_abi_version_0_1
		0x08, // _initialize
	})

	if !g.omitMemory {
		// Memory section: one memory, min 1 page.
		appendSection(0x05, []byte{
			0x01, // 1 memory
			0x00, // min only
			0x01, // min 1 page
		})
	}

	// Export section.
	exportCount := 1 // _initialize
	if !g.omitMemory {
		exportCount++
	}
	if !g.omitInvoke {
		exportCount++
	}
	if !g.omitFunctions {
		exportCount++
	}
	if !g.omitMarker {
		exportCount++
	}
	exportPayload := encodeULEB128Test(uint32(exportCount))
	if !g.omitMemory {
		exportPayload = append(exportPayload, encodeULEB128Test(uint32(len(guestExportMemory)))...)
		exportPayload = append(exportPayload, guestExportMemory...)
		exportPayload = append(exportPayload, 0x02, 0x00) // memory index 0
	}
	if !g.omitInvoke {
		exportPayload = appendExportedFunc(exportPayload, invokeFunction, funcInvoke)
	}
	if !g.omitFunctions {
		exportPayload = appendExportedFunc(exportPayload, listFunctions, funcListFunctions)
	}
	if !g.omitMarker {
		exportPayload = appendExportedFunc(exportPayload, abiVersionV1MarkerExport, funcABIMarker)
	}
	exportPayload = appendExportedFunc(exportPayload, "_initialize", funcInitialize)
	appendSection(0x07, exportPayload)

	// Code section.
	invokeBody := g.invokeBody
	if invokeBody == nil {
		invokeBody = guestBody(i32Const(0))
	}
	functionsBody := g.functionsBody
	if functionsBody == nil {
		functionsBody = guestBody()
	}
	emptyBody := guestBody()

	codePayload := []byte{0x04}
	for _, body := range [][]byte{
		invokeBody,
		functionsBody,
		emptyBody, // marker
		emptyBody, // _initialize
	} {
		codePayload = append(codePayload, encodeULEB128Test(uint32(len(body)))...)
		codePayload = append(codePayload, body...)
	}
	appendSection(0x0a, codePayload)

	if len(g.data) > 0 {
		dataPayload := encodeULEB128Test(uint32(len(g.data)))
		for _, seg := range g.data {
			dataPayload = append(dataPayload, 0x00, 0x41) // active segment, i32.const
			dataPayload = append(dataPayload, encodeSLEB128Test(int32(seg.offset))...)
			dataPayload = append(dataPayload, 0x0b) // end
			dataPayload = append(dataPayload, encodeULEB128Test(uint32(len(seg.bytes)))...)
			dataPayload = append(dataPayload, seg.bytes...)
		}
		appendSection(0x0b, dataPayload)
	}

	return module
}

func appendExportedFunc(payload []byte, name string, funcIndex int) []byte {
	payload = append(payload, encodeULEB128Test(uint32(len(name)))...)
	payload = append(payload, name...)
	payload = append(payload, 0x00, byte(funcIndex)) // kind=func, function index
	return payload
}

// guestBody wraps instruction sequences into a function body with no
// locals.
func guestBody(instrs ...[]byte) []byte {
	body := []byte{0x00} // local decl count
	for _, ins := range instrs {
		body = append(body, ins...)
	}
	return append(body, 0x0b) // end
}

func i32Const(v int32) []byte {
	return append([]byte{0x41}, encodeSLEB128Test(v)...)
}

// hostCall pushes the i32 arguments and calls the imported function.
func hostCall(funcIndex int, args ...int32) []byte {
	var out []byte
	for _, a := range args {
		out = append(out, i32Const(a)...)
	}
	out = append(out, 0x10) // call
	out = append(out, encodeULEB128Test(uint32(funcIndex))...)
	return out
}

func drop() []byte {
	return []byte{0x1a}
}

func encodeULEB128Test(v uint32) []byte {
	var out []byte
	for {
		b := byte(v & 0x7f)
		v >>= 7
		if v != 0 {
			b |= 0x80
		}
		out = append(out, b)
		if v == 0 {
			return out
		}
	}
}

func encodeSLEB128Test(v int32) []byte {
	var out []byte
	for {
		b := byte(v & 0x7f)
		v >>= 7
		if (v == 0 && b&0x40 == 0) || (v == -1 && b&0x40 != 0) {
			return append(out, b)
		}
		out = append(out, b|0x80)
	}
}

func writeTempModule(t *testing.T, module []byte) string {
	t.Helper()

	dir := t.TempDir()
	path := filepath.Join(dir, "test.wasm")
	if err := os.WriteFile(path, module, 0o600); err != nil {
		t.Fatalf("failed to write test module: %v", err)
	}
	return path
}

func newTestPlugin(t *testing.T, module []byte, pluginConfig PluginConfig, log *zap.Logger) *Plugin {
	t.Helper()

	ctx := context.Background()
	opts := []Option{}
	if log != nil {
		opts = append(opts, WithLogger(log))
	}
	p, err := New(ctx, &Config{
		Path:         writeTempModule(t, module),
		PluginConfig: pluginConfig,
		Runtime:      runtime.Config{Mode: runtime.ModeInterpreter},
	}, opts...)
	if err != nil {
		t.Fatalf("failed to load test module: %v", err)
	}
	t.Cleanup(func() {
		if err := p.Shutdown(ctx); err != nil {
			t.Fatalf("failed to shut down plugin: %v", err)
		}
	})
	return p
}
