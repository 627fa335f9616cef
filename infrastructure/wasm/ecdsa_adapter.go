//go:build wasip1

package wasm

import (
	"github.com/reglet-dev/rule-verifier/domain/ports"
)

// Compile-time interface compliance check
var _ ports.SignatureCapability = (*ECDSAAdapter)(nil)

// ECDSAAdapter implements ports.SignatureCapability by calling the host's
// ecdsa_verify import.
type ECDSAAdapter struct{}

// NewECDSAAdapter creates a new ECDSA capability adapter.
func NewECDSAAdapter() *ECDSAAdapter {
	return &ECDSAAdapter{}
}

// ECDSAVerify forwards the call across the boundary unchanged.
func (a *ECDSAAdapter) ECDSAVerify(sigAddr, digestAddr, pubkeyAddr int64, code int32) int32 {
	return host_ecdsa_verify(sigAddr, digestAddr, pubkeyAddr, code)
}
