// Package hostfuncs provides pure Go implementations of the host capabilities
// the verification guest imports. These implementations have NO WASM runtime
// dependencies; guest memory is reached through a ReadFunc supplied by the
// runtime adapter.
package hostfuncs
