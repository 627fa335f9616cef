// Package wireformat defines the ABI contract between the verification guest
// and its host: export and import names, result codes and the JSON structures
// exchanged through log_message. These must remain stable and backward
// compatible.
package wireformat

import (
	"time"
)

// HostModule is the import module the guest resolves host functions from.
const HostModule = "env"

// Guest exports.
const (
	ExportAllocate       = "allocate"
	ExportDeallocate     = "deallocate"
	ExportStartVerify    = "start_verify"
	ExportStartVerifyLen = "start_verify_len"
)

// Host imports.
const (
	ImportECDSAVerify = "ecdsa_verify"
	ImportLogMessage  = "log_message"
)

// Result codes returned by ecdsa_verify. Only ResultValid means valid; the
// guest reports every other code as invalid.
const (
	ResultValid                int32 = 1
	ResultInvalid              int32 = 0
	ResultUnsupportedAlgorithm int32 = -1
	ResultMalformed            int32 = -2
	ResultInternal             int32 = -3
)

// Fixed sizes of the material read through ecdsa_verify.
const (
	// DigestLength is the size of the signed message digest.
	DigestLength = 32

	// SignatureLength is the size of a signature on the wire: r||s, each
	// left-padded to 32 bytes big-endian.
	SignatureLength = 64

	// UncompressedKeyLength is a SEC1 public key with prefix 0x04.
	UncompressedKeyLength = 65

	// CompressedKeyLength is a SEC1 public key with prefix 0x02 or 0x03.
	CompressedKeyLength = 33
)

// LogMessageWire is the JSON wire format for a log message from Guest to Host.
type LogMessageWire struct {
	Timestamp time.Time     `json:"timestamp"`
	Attrs     []LogAttrWire `json:"attrs,omitempty"`
	Level     string        `json:"level"`
	Message   string        `json:"message"`
}

// LogAttrWire represents a single slog attribute for wire transfer.
type LogAttrWire struct {
	Key   string `json:"key"`
	Type  string `json:"type"`  // "string", "int64", "bool", "float64", "time", "error", "json", "any"
	Value string `json:"value"` // String representation of the value
}
