package plugins

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"github.com/tetratelabs/wazero/imports/wasi_snapshot_preview1"

	"github.com/zephyrlaunch/zephyr/internal/core/domain"
	"github.com/zephyrlaunch/zephyr/internal/core/ports/driven"
	"github.com/zephyrlaunch/zephyr/internal/logger"
)

// Guest ABI: every plugin module exports alloc and search; execute and
// the lifecycle hooks are optional. Functions that produce data return a
// packed u64 of (pointer << 32 | length) into the module's memory.
const (
	fnAlloc    = "alloc"
	fnSearch   = "search"
	fnExecute  = "execute"
	fnOnLoad   = "on_load"
	fnOnUnload = "on_unload"
)

// hostModuleName is the import namespace plugins use for host services.
const hostModuleName = "zephyr"

// moduleHandle abstracts one loaded plugin module so the adapter can be
// exercised without a real WASM binary.
type moduleHandle interface {
	// Search passes the cleaned query and returns the raw items the
	// plugin produced.
	Search(ctx context.Context, query string) ([]map[string]any, error)

	// HasExecute reports whether the module exports an execute hook.
	HasExecute() bool

	// Execute passes a result payload to the module's execute hook.
	Execute(ctx context.Context, payload any) error

	// OnLoad invokes the optional load hook.
	OnLoad(ctx context.Context) error

	// OnUnload invokes the optional unload hook.
	OnUnload(ctx context.Context) error
}

// newRuntime creates a wazero runtime with WASI and the zephyr host
// module instantiated. Each load generation owns exactly one runtime;
// closing it drops every module the generation loaded.
func newRuntime(ctx context.Context, stores driven.PluginStores) (wazero.Runtime, error) {
	cfg := wazero.NewRuntimeConfig().WithCloseOnContextDone(true)
	r := wazero.NewRuntimeWithConfig(ctx, cfg)

	if _, err := wasi_snapshot_preview1.Instantiate(ctx, r); err != nil {
		_ = r.Close(ctx)
		return nil, fmt.Errorf("instantiate WASI: %w", err)
	}

	if err := instantiateHostModule(ctx, r, stores); err != nil {
		_ = r.Close(ctx)
		return nil, fmt.Errorf("instantiate host module: %w", err)
	}

	return r, nil
}

// instantiateHostModule exposes scoped storage and logging to plugins.
// The namespace is derived from the calling module's instance name,
// which the loader sets to the plugin ID: a plugin cannot reach any
// other plugin's data.
func instantiateHostModule(ctx context.Context, r wazero.Runtime, stores driven.PluginStores) error {
	builder := r.NewHostModuleBuilder(hostModuleName)

	scoped := func(m api.Module) driven.PluginStore {
		if stores == nil {
			return nil
		}
		return stores.Namespace(m.Name())
	}

	builder.NewFunctionBuilder().
		WithFunc(func(ctx context.Context, m api.Module, keyPtr, keyLen uint32) uint64 {
			store := scoped(m)
			if store == nil {
				return 0
			}
			value, err := store.Get(ctx, readString(m, keyPtr, keyLen))
			if err != nil {
				if !errors.Is(err, domain.ErrNotFound) {
					logger.Warn("Plugin %s: store get: %v", m.Name(), err)
				}
				return 0
			}
			return writeBytes(ctx, m, []byte(value))
		}).
		Export("store_get")

	builder.NewFunctionBuilder().
		WithFunc(func(ctx context.Context, m api.Module, keyPtr, keyLen, valPtr, valLen uint32) uint32 {
			store := scoped(m)
			if store == nil {
				return 1
			}
			err := store.Set(ctx, readString(m, keyPtr, keyLen), readString(m, valPtr, valLen))
			if err != nil {
				logger.Warn("Plugin %s: store set: %v", m.Name(), err)
				return 1
			}
			return 0
		}).
		Export("store_set")

	builder.NewFunctionBuilder().
		WithFunc(func(ctx context.Context, m api.Module, keyPtr, keyLen uint32) uint32 {
			store := scoped(m)
			if store == nil {
				return 0
			}
			ok, err := store.Has(ctx, readString(m, keyPtr, keyLen))
			if err != nil || !ok {
				return 0
			}
			return 1
		}).
		Export("store_has")

	builder.NewFunctionBuilder().
		WithFunc(func(ctx context.Context, m api.Module, keyPtr, keyLen uint32) {
			store := scoped(m)
			if store == nil {
				return
			}
			if err := store.Delete(ctx, readString(m, keyPtr, keyLen)); err != nil {
				logger.Warn("Plugin %s: store delete: %v", m.Name(), err)
			}
		}).
		Export("store_delete")

	builder.NewFunctionBuilder().
		WithFunc(func(_ context.Context, m api.Module, ptr, length uint32) {
			logger.Info("[plugin/%s] %s", m.Name(), readString(m, ptr, length))
		}).
		Export("log")

	_, err := builder.Instantiate(ctx)
	return err
}

// wasmModule is the live handle over one instantiated plugin module.
type wasmModule struct {
	mod      api.Module
	alloc    api.Function
	search   api.Function
	execute  api.Function
	onLoad   api.Function
	onUnload api.Function
}

// newWasmModule wraps an instance, validating the required exports.
func newWasmModule(mod api.Module) (*wasmModule, error) {
	search := mod.ExportedFunction(fnSearch)
	if search == nil {
		return nil, fmt.Errorf("%w: module has no search function", domain.ErrPluginInvalid)
	}
	alloc := mod.ExportedFunction(fnAlloc)
	if alloc == nil {
		return nil, fmt.Errorf("%w: module has no alloc function", domain.ErrPluginInvalid)
	}

	return &wasmModule{
		mod:      mod,
		alloc:    alloc,
		search:   search,
		execute:  mod.ExportedFunction(fnExecute),
		onLoad:   mod.ExportedFunction(fnOnLoad),
		onUnload: mod.ExportedFunction(fnOnUnload),
	}, nil
}

func (w *wasmModule) Search(ctx context.Context, query string) ([]map[string]any, error) {
	out, err := w.callWithBytes(ctx, w.search, []byte(query))
	if err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}

	var items []map[string]any
	if err := json.Unmarshal(out, &items); err != nil {
		return nil, fmt.Errorf("decode search results: %w", err)
	}
	return items, nil
}

func (w *wasmModule) HasExecute() bool {
	return w.execute != nil
}

func (w *wasmModule) Execute(ctx context.Context, payload any) error {
	if w.execute == nil {
		return nil
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode payload: %w", err)
	}

	ptr, length, err := w.writeToGuest(ctx, data)
	if err != nil {
		return err
	}
	if _, err := w.execute.Call(ctx, uint64(ptr), uint64(length)); err != nil {
		return fmt.Errorf("execute: %w", err)
	}
	return nil
}

func (w *wasmModule) OnLoad(ctx context.Context) error {
	if w.onLoad == nil {
		return nil
	}
	if _, err := w.onLoad.Call(ctx); err != nil {
		return fmt.Errorf("on_load: %w", err)
	}
	return nil
}

func (w *wasmModule) OnUnload(ctx context.Context) error {
	if w.onUnload == nil {
		return nil
	}
	if _, err := w.onUnload.Call(ctx); err != nil {
		return fmt.Errorf("on_unload: %w", err)
	}
	return nil
}

// callWithBytes writes input into guest memory, calls fn(ptr, len), and
// reads back the packed result buffer.
func (w *wasmModule) callWithBytes(ctx context.Context, fn api.Function, input []byte) ([]byte, error) {
	ptr, length, err := w.writeToGuest(ctx, input)
	if err != nil {
		return nil, err
	}

	ret, err := fn.Call(ctx, uint64(ptr), uint64(length))
	if err != nil {
		return nil, fmt.Errorf("call: %w", err)
	}
	if len(ret) == 0 || ret[0] == 0 {
		return nil, nil
	}

	outPtr := uint32(ret[0] >> 32)
	outLen := uint32(ret[0])
	data, ok := w.mod.Memory().Read(outPtr, outLen)
	if !ok {
		return nil, errors.New("result buffer out of range")
	}

	// Copy out: the guest owns that memory and may reuse it.
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

// writeToGuest allocates guest memory via the module's alloc export and
// copies data into it.
func (w *wasmModule) writeToGuest(ctx context.Context, data []byte) (ptr, length uint32, err error) {
	if len(data) == 0 {
		return 0, 0, nil
	}

	ret, err := w.alloc.Call(ctx, uint64(len(data)))
	if err != nil {
		return 0, 0, fmt.Errorf("alloc: %w", err)
	}
	if len(ret) == 0 {
		return 0, 0, errors.New("alloc returned nothing")
	}

	ptr = uint32(ret[0])
	if !w.mod.Memory().Write(ptr, data) {
		return 0, 0, errors.New("write out of range")
	}
	return ptr, uint32(len(data)), nil
}

// readString reads a string from WASM memory.
func readString(m api.Module, ptr, length uint32) string {
	if m == nil {
		return ""
	}
	mem := m.Memory()
	if mem == nil {
		return ""
	}
	data, ok := mem.Read(ptr, length)
	if !ok {
		return ""
	}
	return string(data)
}

// writeBytes places data in the calling module's memory via its alloc
// export and returns the packed pointer/length, or 0 on failure.
func writeBytes(ctx context.Context, m api.Module, data []byte) uint64 {
	if len(data) == 0 {
		return 0
	}
	alloc := m.ExportedFunction(fnAlloc)
	if alloc == nil {
		return 0
	}
	ret, err := alloc.Call(ctx, uint64(len(data)))
	if err != nil || len(ret) == 0 {
		return 0
	}
	ptr := uint32(ret[0])
	if !m.Memory().Write(ptr, data) {
		return 0
	}
	return uint64(ptr)<<32 | uint64(len(data))
}
