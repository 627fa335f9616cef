//go:build wasip1

// Package wasm provides infrastructure adapters that interface with the WASM host environment.
package wasm

// Define the host function signature for ECDSA verification. Addresses are
// linear memory offsets widened to i64; the result is a raw result code.
//
//go:wasmimport env ecdsa_verify
//nolint:revive // intentional snake_case to match WASM import convention
func host_ecdsa_verify(sigPtr int64, digestPtr int64, pubkeyPtr int64, algorithm int32) int32
