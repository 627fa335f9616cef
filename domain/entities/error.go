package entities

import "log/slog"

// ErrorKind classifies a failed verification request. It decides whether the
// guest traps or answers false, and is logged as error_type.
type ErrorKind string

const (
	// ErrorKindBoundary covers host pointers the guest rejects. The call traps.
	ErrorKindBoundary ErrorKind = "boundary"

	// ErrorKindMemory covers allocator misuse and exhaustion. The call traps.
	ErrorKindMemory ErrorKind = "memory"

	// ErrorKindDecode covers proof or validator records that cannot be decoded.
	// The request verifies as false.
	ErrorKindDecode ErrorKind = "decode"

	// ErrorKindInternal is any failure without a more specific kind.
	ErrorKindInternal ErrorKind = "internal"
)

// Traps reports whether failures of this kind abort the entry point instead
// of producing a false result.
func (k ErrorKind) Traps() bool {
	return k == ErrorKindBoundary || k == ErrorKindMemory
}

// ErrorDetail is the loggable summary of a failure.
type ErrorDetail struct {
	Kind ErrorKind

	// Code narrows the kind: the boundary violation, the memory condition or
	// the record that failed to decode.
	Code string

	// Field is the record field that failed validation, if known.
	Field string
}

// LogAttrs returns the detail as error_type, error_code and, when set,
// error_field attributes.
func (d ErrorDetail) LogAttrs() []slog.Attr {
	attrs := []slog.Attr{
		slog.String("error_type", string(d.Kind)),
		slog.String("error_code", d.Code),
	}
	if d.Field != "" {
		attrs = append(attrs, slog.String("error_field", d.Field))
	}
	return attrs
}
