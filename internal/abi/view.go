package abi

import (
	"bytes"

	domainerrors "github.com/reglet-dev/rule-verifier/domain/errors"
)

// ViewOf interprets the memory at addr as a NUL terminated byte sequence and
// returns a view up to, but excluding, the terminator. Nothing is copied: the
// view aliases the arena buffer and is only valid for the current call.
//
// addr must point into a buffer owned by the arena and the terminator must
// appear before that buffer ends. An embedded zero byte ends the view early.
func (a *Arena) ViewOf(addr uintptr) ([]byte, error) {
	buf, ok := a.containing(addr)
	if !ok {
		return nil, &domainerrors.BoundaryError{Addr: addr, Err: domainerrors.ErrUnownedAddress}
	}

	end := bytes.IndexByte(buf, 0)
	if end < 0 {
		return nil, &domainerrors.BoundaryError{Addr: addr, Err: domainerrors.ErrUnterminated}
	}
	return buf[:end:end], nil
}

// Region returns a view of exactly length bytes starting at addr, for hosts
// that pass explicit lengths. A zero length yields an empty view for any addr.
func (a *Arena) Region(addr uintptr, length uint32) ([]byte, error) {
	if length == 0 {
		return []byte{}, nil
	}

	buf, ok := a.containing(addr)
	if !ok {
		return nil, &domainerrors.BoundaryError{Addr: addr, Err: domainerrors.ErrUnownedAddress}
	}
	if uint64(length) > uint64(len(buf)) {
		return nil, &domainerrors.BoundaryError{Addr: addr, Err: domainerrors.ErrOutOfBounds}
	}
	return buf[:length:length], nil
}

// PackPtrLen packs a pointer and length into a single uint64.
// Pointer is stored in the high 32 bits, length in the low 32 bits.
// Panics if ptr is 0 and length > 0, indicating an invalid state.
func PackPtrLen(ptr, length uint32) uint64 {
	if ptr == 0 && length > 0 {
		panic("abi: invalid pack - null pointer (0x0) with non-zero length")
	}
	return (uint64(ptr) << 32) | uint64(length)
}

// UnpackPtrLen unpacks a uint64 into its original pointer and length.
func UnpackPtrLen(packed uint64) (ptr, length uint32) {
	ptr = uint32(packed >> 32)
	length = uint32(packed)
	if ptr == 0 && length > 0 {
		panic("abi: invalid unpack - null pointer (0x0) with non-zero length")
	}
	return ptr, length
}
