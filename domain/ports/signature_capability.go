package ports

import "github.com/reglet-dev/rule-verifier/domain/entities"

// SignatureCapability is the host-provided ECDSA primitive.
// Addresses point at guest memory holding the signature, digest and public key;
// the capability rederives the lengths from the algorithm and the leading bytes.
// The return value is a raw result code: 1 means valid, anything else does not.
type SignatureCapability interface {
	ECDSAVerify(sigAddr, digestAddr, pubkeyAddr int64, code int32) int32
}

// SignatureCapabilityFunc adapts a plain function to SignatureCapability.
type SignatureCapabilityFunc func(sigAddr, digestAddr, pubkeyAddr int64, code int32) int32

// ECDSAVerify implements SignatureCapability.
func (f SignatureCapabilityFunc) ECDSAVerify(sigAddr, digestAddr, pubkeyAddr int64, code int32) int32 {
	return f(sigAddr, digestAddr, pubkeyAddr, code)
}

// MaterialDecoder turns the proof and validator payloads into verification material.
type MaterialDecoder interface {
	Decode(proof, validator []byte) (entities.Material, error)
}
