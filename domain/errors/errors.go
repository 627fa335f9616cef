// Package errors provides domain-specific error types for the verification shim.
// All error types support error unwrapping via errors.As() and errors.Is().
package errors

import (
	stdErrors "errors"
	"fmt"

	"github.com/reglet-dev/rule-verifier/domain/entities"
)

// Sentinel errors for the guest memory boundary.
var (
	// ErrUnknownAddress is returned when releasing an address the arena does not own.
	ErrUnknownAddress = stdErrors.New("address is not owned by the arena")

	// ErrUnownedAddress is returned when a host-supplied pointer does not fall
	// inside any buffer the arena handed out.
	ErrUnownedAddress = stdErrors.New("pointer outside guest-owned memory")

	// ErrUnterminated is returned when no NUL terminator exists before the end
	// of the owning buffer.
	ErrUnterminated = stdErrors.New("byte sequence is not NUL terminated")

	// ErrOutOfBounds is returned when an explicit (address, length) pair runs
	// past the end of the owning buffer.
	ErrOutOfBounds = stdErrors.New("region exceeds owning buffer")
)

// DetailedError is implemented by the error types below to classify
// themselves for logging.
type DetailedError interface {
	error
	ToErrorDetail() entities.ErrorDetail
}

// ToErrorDetail classifies err. Errors that do not implement DetailedError
// anywhere in their chain are internal. A nil error yields the zero detail.
func ToErrorDetail(err error) entities.ErrorDetail {
	if err == nil {
		return entities.ErrorDetail{}
	}

	var de DetailedError
	if stdErrors.As(err, &de) {
		return de.ToErrorDetail()
	}
	return entities.ErrorDetail{Kind: entities.ErrorKindInternal}
}

// CapacityMismatchError reports a release whose capacity differs from the
// capacity used when the buffer was acquired. The buffer stays owned.
type CapacityMismatchError struct {
	Addr     uintptr
	Acquired uint32
	Released uint32
}

func (e *CapacityMismatchError) Error() string {
	return fmt.Sprintf("release of 0x%x with capacity %d, acquired with %d", e.Addr, e.Released, e.Acquired)
}

// ToErrorDetail implements DetailedError.
func (e *CapacityMismatchError) ToErrorDetail() entities.ErrorDetail {
	return entities.ErrorDetail{Kind: entities.ErrorKindMemory, Code: "capacity_mismatch"}
}

// MemoryError represents allocator exhaustion. It is raised as a panic value,
// which the WASM runtime turns into a trap.
type MemoryError struct {
	Requested int // Requested allocation size
	Current   int // Current total allocated
	Limit     int // Maximum allowed
}

func (e *MemoryError) Error() string {
	return fmt.Sprintf("memory allocation failed: requested %d bytes, current %d bytes, limit %d bytes",
		e.Requested, e.Current, e.Limit)
}

// ToErrorDetail implements DetailedError.
func (e *MemoryError) ToErrorDetail() entities.ErrorDetail {
	return entities.ErrorDetail{Kind: entities.ErrorKindMemory, Code: "memory_limit"}
}

// BoundaryError wraps a rejected host-supplied pointer.
type BoundaryError struct {
	Err  error
	Addr uintptr
}

func (e *BoundaryError) Error() string {
	return fmt.Sprintf("boundary: pointer 0x%x: %v", e.Addr, e.Err)
}

func (e *BoundaryError) Unwrap() error {
	return e.Err
}

// ToErrorDetail implements DetailedError.
func (e *BoundaryError) ToErrorDetail() entities.ErrorDetail {
	code := "boundary"
	switch {
	case stdErrors.Is(e.Err, ErrUnownedAddress):
		code = "unowned_address"
	case stdErrors.Is(e.Err, ErrUnterminated):
		code = "unterminated"
	case stdErrors.Is(e.Err, ErrOutOfBounds):
		code = "out_of_bounds"
	}
	return entities.ErrorDetail{Kind: entities.ErrorKindBoundary, Code: code}
}

// DecodeError represents a malformed proof or validator record.
type DecodeError struct {
	Err    error
	Record string // "proof" or "validator"
	Field  string
}

func (e *DecodeError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("decode %s: field %s: %v", e.Record, e.Field, e.Err)
	}
	return fmt.Sprintf("decode %s: %v", e.Record, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// ToErrorDetail implements DetailedError.
func (e *DecodeError) ToErrorDetail() entities.ErrorDetail {
	return entities.ErrorDetail{Kind: entities.ErrorKindDecode, Code: e.Record, Field: e.Field}
}
