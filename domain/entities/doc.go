// Package entities provides the core domain types shared by the guest shim and the host runtime.
// They carry no WASM runtime dependencies and are safe to use in native builds.
package entities
