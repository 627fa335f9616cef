package host

import (
	"errors"
	"fmt"
)

var (
	// ErrEmbeddedNUL is returned when a record passed to StartVerify contains a
	// zero byte. The guest would truncate it at that byte.
	ErrEmbeddedNUL = errors.New("record contains an embedded NUL byte")

	// ErrPayloadTooLarge is returned when a record exceeds the configured size.
	ErrPayloadTooLarge = errors.New("record exceeds maximum payload size")

	// ErrNoLengthEntry is returned by StartVerifyLen when the guest does not
	// export start_verify_len.
	ErrNoLengthEntry = errors.New("guest does not export start_verify_len")
)

// MissingExportError reports a guest module lacking a required export.
type MissingExportError struct {
	Module string
	Export string
}

func (e *MissingExportError) Error() string {
	return fmt.Sprintf("module %q does not export %q", e.Module, e.Export)
}

// UnexpectedResultError reports a start_verify result other than 0 or 1.
type UnexpectedResultError struct {
	Export string
	Result int32
}

func (e *UnexpectedResultError) Error() string {
	return fmt.Sprintf("%s returned %d, want 0 or 1", e.Export, e.Result)
}
