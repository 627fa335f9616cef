// Package host provides the runtime environment for executing verification guests.
//
// It abstracts the underlying WASM engine (wazero), manages the guest lifecycle
// and handles the low-level ABI interactions: buffers are acquired through the
// guest's allocate export, filled with a NUL terminated record and released
// through deallocate with the capacity they were acquired with. The host module
// the guest imports from (ecdsa_verify, log_message) is registered on every
// Executor.
//
// An Instance is not reentrant; calls into one guest are serialized.
package host
