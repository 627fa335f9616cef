//go:build wasip1

package abi

import (
	"log/slog"
)

// allocate reserves guest memory for the host to write request data into.
//
//go:wasmexport allocate
func allocate(size uint32) uint32 {
	return uint32(defaultArena.Acquire(size))
}

// deallocate releases a buffer obtained from allocate. Mismatched capacities
// and unknown pointers are rejected and logged; the arena state is unchanged.
//
//go:wasmexport deallocate
func deallocate(ptr uint32, capacity uint32) {
	if err := defaultArena.Release(uintptr(ptr), capacity); err != nil {
		slog.Warn("abi: deallocate rejected", "ptr", ptr, "capacity", capacity, "error", err)
	}
}

// PtrFromBytes copies data into a freshly acquired guest buffer and returns the
// packed pointer and length. The caller releases it with DeallocatePacked.
func PtrFromBytes(data []byte) uint64 {
	if len(data) == 0 {
		return 0
	}
	size := uint32(len(data))
	addr := defaultArena.Acquire(size)
	buf, _ := defaultArena.Buffer(addr)
	copy(buf, data)
	return PackPtrLen(uint32(addr), size)
}

// DeallocatePacked releases a buffer previously returned by PtrFromBytes.
func DeallocatePacked(packed uint64) {
	ptr, length := UnpackPtrLen(packed)
	if ptr != 0 && length > 0 {
		_ = defaultArena.Release(uintptr(ptr), length)
	}
}
