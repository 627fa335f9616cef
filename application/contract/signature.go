package contract

import (
	"fmt"
	"math/big"

	"github.com/reglet-dev/rule-verifier/wireformat"
	"golang.org/x/crypto/cryptobyte"
	cbasn1 "golang.org/x/crypto/cryptobyte/asn1"
)

// maxDERSignatureLength bounds a DER encoding of two 256-bit scalars:
// SEQUENCE header plus two INTEGERs of up to 33 bytes each.
const maxDERSignatureLength = 2 + 2*(2+wireformat.SignatureLength/2+1)

// NormalizeSignature returns the 64 byte r||s form of sig. Input that parses
// as an ASN.1 DER signature is re-encoded, including DER that happens to be
// exactly 64 bytes long. Anything else of 64 bytes is taken as raw r||s.
func NormalizeSignature(sig []byte) ([]byte, error) {
	if len(sig) > 0 && sig[0] == 0x30 && len(sig) <= maxDERSignatureLength {
		raw, err := derToRaw(sig)
		if err == nil {
			return raw, nil
		}
		if len(sig) != wireformat.SignatureLength {
			return nil, err
		}
	}
	if len(sig) == wireformat.SignatureLength {
		return sig, nil
	}
	return nil, fmt.Errorf("signature must be %d raw bytes or DER, got %d bytes", wireformat.SignatureLength, len(sig))
}

func derToRaw(der []byte) ([]byte, error) {
	var (
		r, s  big.Int
		inner cryptobyte.String
	)
	input := cryptobyte.String(der)
	if !input.ReadASN1(&inner, cbasn1.SEQUENCE) ||
		!input.Empty() ||
		!inner.ReadASN1Integer(&r) ||
		!inner.ReadASN1Integer(&s) ||
		!inner.Empty() {
		return nil, fmt.Errorf("invalid DER signature")
	}

	half := wireformat.SignatureLength / 2
	if r.Sign() <= 0 || s.Sign() <= 0 || r.BitLen() > half*8 || s.BitLen() > half*8 {
		return nil, fmt.Errorf("DER signature scalars out of range")
	}

	out := make([]byte, wireformat.SignatureLength)
	r.FillBytes(out[:half])
	s.FillBytes(out[half:])
	return out, nil
}
