// Package wazero registers the verification host functions with the wazero runtime.
//
// This package bridges the pure Go implementations in hostfuncs with the wazero
// WebAssembly runtime. It handles:
//
//   - Reading signature material straight out of guest linear memory
//   - Decoding packed i64 pointer+length log payloads
//   - Registering ecdsa_verify and log_message on the host module builder
//
// # Basic Usage
//
//	registry, err := hostfuncs.NewRegistry(
//	    hostfuncs.WithMiddleware(hostfuncs.PanicRecoveryMiddleware(logger)),
//	    hostfuncs.WithDefaultVerifiers(),
//	)
//	if err != nil {
//	    return err
//	}
//
//	runtime := wazero.NewRuntime(ctx)
//	err = wazero.RegisterWithRuntime(ctx, runtime, registry,
//	    wazero.WithLogger(logger),
//	)
//
// Guest memory is read with api.Memory.Read, which returns a view, so the
// material is copied by hostfuncs before verification starts.
package wazero
