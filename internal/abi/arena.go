// Package abi provides the guest side of the host/guest memory boundary:
// ownership-tracked buffers the host writes into, and bounds-checked views
// over host-supplied pointers.
package abi

import (
	"sync"
	"unsafe"

	domainerrors "github.com/reglet-dev/rule-verifier/domain/errors"
)

// DefaultMaxTotalAllocations is the default ceiling on live guest buffers.
// Exceeding it is treated as allocator exhaustion.
const DefaultMaxTotalAllocations = 100 * 1024 * 1024 // 100 MB

// arenaConfig holds configuration for an Arena.
type arenaConfig struct {
	maxTotalAllocations int
}

func defaultArenaConfig() arenaConfig {
	return arenaConfig{
		maxTotalAllocations: DefaultMaxTotalAllocations,
	}
}

// Option configures an Arena.
type Option func(*arenaConfig)

// WithMaxTotalAllocations sets the maximum number of live bytes.
// Zero or negative limits are ignored.
func WithMaxTotalAllocations(limit int) Option {
	return func(c *arenaConfig) {
		if limit > 0 {
			c.maxTotalAllocations = limit
		}
	}
}

// Arena tracks every buffer handed to the host. It keeps a reference to each
// slice so the Go GC cannot collect it, effectively pinning the memory until
// the host releases it, and remembers the acquisition capacity so mismatched
// releases can be rejected.
type Arena struct {
	ptrs           map[uintptr][]byte
	config         arenaConfig
	totalAllocated int
	mu             sync.Mutex
}

// NewArena creates an empty Arena.
func NewArena(opts ...Option) *Arena {
	a := &Arena{
		ptrs:   make(map[uintptr][]byte),
		config: defaultArenaConfig(),
	}
	a.Configure(opts...)
	return a
}

// Configure applies options to an existing Arena. Live buffers are kept.
func (a *Arena) Configure(opts ...Option) {
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, opt := range opts {
		opt(&a.config)
	}
}

// Acquire reserves size bytes and returns the address of the first byte.
// A zero size returns address 0 and tracks nothing.
// Panics with *errors.MemoryError when the allocation limit would be exceeded;
// inside a WASM guest this surfaces as a trap.
func (a *Arena) Acquire(size uint32) uintptr {
	if size == 0 {
		return 0
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if a.totalAllocated+int(size) > a.config.maxTotalAllocations {
		panic(&domainerrors.MemoryError{
			Requested: int(size),
			Current:   a.totalAllocated,
			Limit:     a.config.maxTotalAllocations,
		})
	}

	buf := make([]byte, size)
	addr := uintptr(unsafe.Pointer(&buf[0]))

	a.ptrs[addr] = buf
	a.totalAllocated += int(size)

	return addr
}

// Release returns a buffer to the allocator. capacity must equal the size
// passed to Acquire; otherwise the buffer stays owned and a
// *errors.CapacityMismatchError is returned. Releasing an address that is not
// owned returns errors.ErrUnknownAddress. Release(0, 0) is a no-op.
func (a *Arena) Release(addr uintptr, capacity uint32) error {
	if addr == 0 && capacity == 0 {
		return nil
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	buf, ok := a.ptrs[addr]
	if !ok {
		return domainerrors.ErrUnknownAddress
	}
	if uint32(len(buf)) != capacity {
		return &domainerrors.CapacityMismatchError{
			Addr:     addr,
			Acquired: uint32(len(buf)),
			Released: capacity,
		}
	}

	delete(a.ptrs, addr)
	a.totalAllocated -= len(buf)
	return nil
}

// FreeAll drops every tracked buffer. Used during panic recovery and in tests.
func (a *Arena) FreeAll() {
	a.mu.Lock()
	defer a.mu.Unlock()

	clear(a.ptrs)
	a.totalAllocated = 0
}

// Stats returns the number of live buffers and the bytes they hold.
func (a *Arena) Stats() (allocCount, totalBytes int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.ptrs), a.totalAllocated
}

// Buffer returns the buffer acquired at exactly addr.
func (a *Arena) Buffer(addr uintptr) ([]byte, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	buf, ok := a.ptrs[addr]
	return buf, ok
}

// containing returns the tail of the owned buffer that addr points into.
func (a *Arena) containing(addr uintptr) ([]byte, bool) {
	if addr == 0 {
		return nil, false
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if buf, ok := a.ptrs[addr]; ok {
		return buf, true
	}
	for base, buf := range a.ptrs {
		if addr > base && addr < base+uintptr(len(buf)) {
			return buf[addr-base:], true
		}
	}
	return nil, false
}

var defaultArena = NewArena()

// Default returns the process-wide arena backing the allocate/deallocate exports.
func Default() *Arena {
	return defaultArena
}

// Configure applies options to the process-wide arena.
func Configure(opts ...Option) {
	defaultArena.Configure(opts...)
}

// FreeAllTracked frees all memory tracked by the process-wide arena.
func FreeAllTracked() {
	defaultArena.FreeAll()
}

// Stats reports the process-wide arena usage.
func Stats() (allocCount, totalBytes int) {
	return defaultArena.Stats()
}
