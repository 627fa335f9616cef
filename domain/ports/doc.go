// Package ports defines the interfaces the verification shim depends on.
// Guest builds satisfy them with WASM host imports, native builds and tests
// with in-process implementations.
package ports
