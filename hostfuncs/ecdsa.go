package hostfuncs

import (
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"fmt"
	"math/big"

	"github.com/btcsuite/btcd/btcec"
	"github.com/reglet-dev/rule-verifier/domain/entities"
	"github.com/reglet-dev/rule-verifier/wireformat"
)

// VerifyFunc checks one piece of verification material and returns a
// wireformat result code.
type VerifyFunc func(ctx context.Context, m entities.Material) int32

// VerifyP256 verifies an ECDSA signature over NIST P-256.
func VerifyP256(_ context.Context, m entities.Material) int32 {
	r, s, err := scalars(m)
	if err != nil {
		return wireformat.ResultMalformed
	}

	pub, err := parseP256PublicKey(m.PublicKey)
	if err != nil {
		return wireformat.ResultMalformed
	}

	if ecdsa.Verify(pub, m.Digest, r, s) {
		return wireformat.ResultValid
	}
	return wireformat.ResultInvalid
}

// VerifySecp256k1 verifies an ECDSA signature over secp256k1.
func VerifySecp256k1(_ context.Context, m entities.Material) int32 {
	r, s, err := scalars(m)
	if err != nil {
		return wireformat.ResultMalformed
	}

	pub, err := btcec.ParsePubKey(m.PublicKey, btcec.S256())
	if err != nil {
		return wireformat.ResultMalformed
	}

	sig := &btcec.Signature{R: r, S: s}
	if sig.Verify(m.Digest, pub) {
		return wireformat.ResultValid
	}
	return wireformat.ResultInvalid
}

// scalars checks the digest length and splits the signature of m.
func scalars(m entities.Material) (r, s *big.Int, err error) {
	if len(m.Digest) != wireformat.DigestLength {
		return nil, nil, fmt.Errorf("%w: %d bytes", ErrDigestFormat, len(m.Digest))
	}
	return splitSignature(m.Signature)
}

// splitSignature decodes the r||s wire encoding. Zero scalars are rejected
// here; range checks against the curve order happen during verification.
func splitSignature(sig []byte) (r, s *big.Int, err error) {
	if len(sig) != wireformat.SignatureLength {
		return nil, nil, fmt.Errorf("%w: %d bytes", ErrSignatureFormat, len(sig))
	}
	half := wireformat.SignatureLength / 2
	r = new(big.Int).SetBytes(sig[:half])
	s = new(big.Int).SetBytes(sig[half:])
	if r.Sign() == 0 || s.Sign() == 0 {
		return nil, nil, fmt.Errorf("%w: zero scalar", ErrSignatureFormat)
	}
	return r, s, nil
}

func parseP256PublicKey(data []byte) (*ecdsa.PublicKey, error) {
	if len(data) == 0 {
		return nil, ErrPublicKeyFormat
	}

	curve := elliptic.P256()
	var x, y *big.Int
	switch len(data) {
	case wireformat.UncompressedKeyLength:
		x, y = elliptic.Unmarshal(curve, data) //nolint:staticcheck // SEC1 parsing with on-curve check
	case wireformat.CompressedKeyLength:
		x, y = elliptic.UnmarshalCompressed(curve, data)
	default:
		return nil, fmt.Errorf("%w: %d bytes", ErrPublicKeyFormat, len(data))
	}
	if x == nil {
		return nil, ErrPublicKeyInvalid
	}
	return &ecdsa.PublicKey{Curve: curve, X: x, Y: y}, nil
}
