// Package wazero registers the verification host functions with the wazero runtime.
package wazero

import (
	"context"
	"log/slog"
	"math"

	"github.com/reglet-dev/rule-verifier/hostfuncs"
	"github.com/reglet-dev/rule-verifier/wireformat"
	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
)

// DefaultMaxLogSize bounds a single log_message payload read from guest memory.
const DefaultMaxLogSize uint32 = 64 * 1024

// AdapterConfig holds configuration for the wazero adapter.
type AdapterConfig struct {
	// Logger receives guest log records and host-side failures.
	Logger *slog.Logger

	// ModuleName is the host module name (default: "env").
	ModuleName string

	// MaxLogSize limits log_message payloads. Default is 64KiB.
	MaxLogSize uint32
}

// AdapterOption configures the adapter.
type AdapterOption func(*AdapterConfig)

// WithModuleName sets the host module name (default: "env").
func WithModuleName(name string) AdapterOption {
	return func(c *AdapterConfig) {
		if name != "" {
			c.ModuleName = name
		}
	}
}

// WithMaxLogSize sets the maximum log_message payload size.
func WithMaxLogSize(size uint32) AdapterOption {
	return func(c *AdapterConfig) {
		c.MaxLogSize = size
	}
}

// WithLogger sets the logger used for guest records and host failures.
func WithLogger(logger *slog.Logger) AdapterOption {
	return func(c *AdapterConfig) {
		if logger != nil {
			c.Logger = logger
		}
	}
}

// defaultAdapterConfig returns the default adapter configuration.
func defaultAdapterConfig() AdapterConfig {
	return AdapterConfig{
		Logger:     slog.Default(),
		ModuleName: wireformat.HostModule,
		MaxLogSize: DefaultMaxLogSize,
	}
}

// RegisterWithRuntime instantiates the host module the guest imports from.
// It exports:
//   - ecdsa_verify(sig i64, digest i64, pubkey i64, algorithm i32) -> i32,
//     answered by registry over the calling module's linear memory
//   - log_message(packed i64), forwarded to the configured logger
//
// Example:
//
//	registry, _ := hostfuncs.NewRegistry(hostfuncs.WithDefaultVerifiers())
//	err := wazero.RegisterWithRuntime(ctx, runtime, registry)
func RegisterWithRuntime(ctx context.Context, runtime wazero.Runtime, registry *hostfuncs.VerifierRegistry, opts ...AdapterOption) error {
	cfg := defaultAdapterConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	builder := runtime.NewHostModuleBuilder(cfg.ModuleName)

	builder.NewFunctionBuilder().
		WithGoModuleFunction(ecdsaVerifyHandler(registry, cfg.Logger),
			[]api.ValueType{api.ValueTypeI64, api.ValueTypeI64, api.ValueTypeI64, api.ValueTypeI32},
			[]api.ValueType{api.ValueTypeI32}).
		WithParameterNames("sig_ptr", "digest_ptr", "pubkey_ptr", "algorithm").
		Export(wireformat.ImportECDSAVerify)

	builder.NewFunctionBuilder().
		WithGoModuleFunction(logMessageHandler(cfg.Logger, cfg.MaxLogSize),
			[]api.ValueType{api.ValueTypeI64}, []api.ValueType{}).
		WithParameterNames("message").
		Export(wireformat.ImportLogMessage)

	_, err := builder.Instantiate(ctx)
	return err
}

// ecdsaVerifyHandler adapts the registry to the ecdsa_verify import.
func ecdsaVerifyHandler(registry *hostfuncs.VerifierRegistry, logger *slog.Logger) api.GoModuleFunc {
	return func(ctx context.Context, mod api.Module, stack []uint64) {
		sigAddr := int64(stack[0])    //nolint:gosec // G115: i64 parameters are reinterpreted, not converted
		digestAddr := int64(stack[1]) //nolint:gosec // G115: same as above
		pubkeyAddr := int64(stack[2]) //nolint:gosec // G115: same as above
		code := api.DecodeI32(stack[3])

		result := registry.VerifyAt(ctx, memoryReader(mod.Memory()), sigAddr, digestAddr, pubkeyAddr, code)
		if result == wireformat.ResultMalformed || result == wireformat.ResultInternal {
			logger.ErrorContext(ctx, "wazero: ecdsa_verify failed",
				"guest", GetGuestName(ctx, mod),
				"algorithm", code,
				"result", result,
			)
		}
		stack[0] = api.EncodeI32(result)
	}
}

// logMessageHandler adapts hostfuncs.HandleLogMessage to the log_message import.
func logMessageHandler(logger *slog.Logger, maxSize uint32) api.GoModuleFunc {
	return func(ctx context.Context, mod api.Module, stack []uint64) {
		ptr, length := unpackPtrLen(stack[0])
		if length == 0 {
			return
		}
		if length > maxSize {
			logger.ErrorContext(ctx, "wazero: log_message payload too large", "size", length, "max", maxSize)
			return
		}

		mem := mod.Memory()
		if mem == nil {
			logger.ErrorContext(ctx, "wazero: guest module exports no memory")
			return
		}
		payload, ok := mem.Read(ptr, length)
		if !ok {
			logger.ErrorContext(ctx, "wazero: failed to read log_message from guest memory", "ptr", ptr, "len", length)
			return
		}
		hostfuncs.HandleLogMessage(ctx, logger.With("guest", GetGuestName(ctx, mod)), payload)
	}
}

// memoryReader exposes guest linear memory as a hostfuncs.ReadFunc. Addresses
// outside the 32-bit address space never resolve.
func memoryReader(mem api.Memory) hostfuncs.ReadFunc {
	return func(addr int64, n uint32) ([]byte, bool) {
		if mem == nil || addr <= 0 || addr > math.MaxUint32 {
			return nil, false
		}
		return mem.Read(uint32(addr), n)
	}
}

// unpackPtrLen splits the i64 log_message argument the guest builds with
// abi.PackPtrLen: pointer in the upper 32 bits, length in the lower. Unlike
// the guest side it never panics on a null pointer; the read simply fails.
func unpackPtrLen(packed uint64) (ptr, length uint32) {
	ptr = uint32(packed >> 32)           //nolint:gosec // G115: Packed format stores 32-bit values
	length = uint32(packed & 0xFFFFFFFF) //nolint:gosec // G115: Packed format stores 32-bit values
	return ptr, length
}
