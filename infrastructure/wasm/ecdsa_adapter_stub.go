//go:build !wasip1

package wasm

// ECDSAAdapter stub for native builds.
type ECDSAAdapter struct{}

func NewECDSAAdapter() *ECDSAAdapter {
	return &ECDSAAdapter{}
}

func (a *ECDSAAdapter) ECDSAVerify(sigAddr, digestAddr, pubkeyAddr int64, code int32) int32 {
	panic("WASM ECDSA adapter not available in native build")
}
