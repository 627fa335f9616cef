package host

import (
	"context"
	"fmt"
	"sync"

	"github.com/reglet-dev/rule-verifier/domain/entities"
	"github.com/reglet-dev/rule-verifier/hostfuncs"
	wazeroadapter "github.com/reglet-dev/rule-verifier/infrastructure/wazero"
	"github.com/reglet-dev/rule-verifier/wireformat"
	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/imports/wasi_snapshot_preview1"
)

// requiredExports must be present on every verification guest.
var requiredExports = []string{
	wireformat.ExportAllocate,
	wireformat.ExportDeallocate,
	wireformat.ExportStartVerify,
}

// Executor owns a wazero runtime with WASI and the verification host module.
type Executor struct {
	runtime wazero.Runtime
	config  executorConfig
}

// NewExecutor creates a new executor with the given options.
func NewExecutor(ctx context.Context, opts ...Option) (*Executor, error) {
	cfg := defaultExecutorConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	// Default registry if not provided
	if cfg.registry == nil {
		reg, err := hostfuncs.NewRegistry(
			hostfuncs.WithMiddleware(
				hostfuncs.PanicRecoveryMiddleware(cfg.logger),
				hostfuncs.LoggingMiddleware(cfg.logger),
			),
			hostfuncs.WithDefaultVerifiers(),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to create default registry: %w", err)
		}
		cfg.registry = reg
	}

	rtConfig := wazero.NewRuntimeConfig()
	if cfg.memoryLimitPages > 0 {
		rtConfig = rtConfig.WithMemoryLimitPages(cfg.memoryLimitPages)
	}
	rt := wazero.NewRuntimeWithConfig(ctx, rtConfig)
	wasi_snapshot_preview1.MustInstantiate(ctx, rt)

	if err := wazeroadapter.RegisterWithRuntime(ctx, rt, cfg.registry,
		wazeroadapter.WithModuleName(cfg.hostModuleName),
		wazeroadapter.WithLogger(cfg.logger),
	); err != nil {
		_ = rt.Close(ctx)
		return nil, fmt.Errorf("failed to register host functions: %w", err)
	}

	return &Executor{runtime: rt, config: cfg}, nil
}

// Close releases resources held by the executor and every loaded instance.
func (e *Executor) Close(ctx context.Context) error {
	return e.runtime.Close(ctx)
}

// Algorithms returns the schemes the host module verifies, ordered by wire code.
func (e *Executor) Algorithms() []entities.Algorithm {
	return e.config.registry.Algorithms()
}

// LoadVerifier instantiates a verification guest under name. The module must
// export allocate, deallocate and start_verify; start_verify_len is optional.
func (e *Executor) LoadVerifier(ctx context.Context, name string, wasmBytes []byte) (*Instance, error) {
	modConfig := wazero.NewModuleConfig().WithName(name).WithStartFunctions()
	mod, err := e.runtime.InstantiateWithConfig(ctx, wasmBytes, modConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to instantiate module: %w", err)
	}

	// Reactor modules built with -buildmode=c-shared initialize the Go runtime here.
	if init := mod.ExportedFunction("_initialize"); init != nil {
		if _, err := init.Call(ctx); err != nil {
			_ = mod.Close(ctx)
			return nil, fmt.Errorf("failed to call _initialize: %w", err)
		}
	}

	for _, export := range requiredExports {
		if mod.ExportedFunction(export) == nil {
			_ = mod.Close(ctx)
			return nil, &MissingExportError{Module: name, Export: export}
		}
	}
	if mod.Memory() == nil {
		_ = mod.Close(ctx)
		return nil, &MissingExportError{Module: name, Export: "memory"}
	}

	return &Instance{
		module:         mod,
		name:           name,
		logger:         e.config.logger,
		maxPayloadSize: e.config.maxPayloadSize,
		mu:             &sync.Mutex{},
	}, nil
}
