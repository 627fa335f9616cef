package hostfuncs

import (
	"fmt"

	"github.com/reglet-dev/rule-verifier/domain/entities"
	"github.com/reglet-dev/rule-verifier/wireformat"
)

// ReadFunc reads n bytes of guest memory at addr. It returns false when the
// range is not addressable.
type ReadFunc func(addr int64, n uint32) ([]byte, bool)

// PublicKeyLength derives the length of a SEC1 encoded key from its prefix byte.
func PublicKeyLength(prefix byte) (int, error) {
	switch prefix {
	case 0x04:
		return wireformat.UncompressedKeyLength, nil
	case 0x02, 0x03:
		return wireformat.CompressedKeyLength, nil
	default:
		return 0, fmt.Errorf("%w: prefix 0x%02x", ErrPublicKeyFormat, prefix)
	}
}

// ReadMaterial reads the signature, digest and public key the guest passed by
// address. Lengths are not transmitted: the digest and signature have fixed
// sizes and the public key length follows from its prefix byte.
// The returned slices are copies and stay valid after guest memory changes.
func ReadMaterial(read ReadFunc, sigAddr, digestAddr, pubkeyAddr int64, algorithm entities.Algorithm) (entities.Material, error) {
	sig, err := readCopy(read, sigAddr, wireformat.SignatureLength)
	if err != nil {
		return entities.Material{}, fmt.Errorf("signature: %w", err)
	}

	digest, err := readCopy(read, digestAddr, wireformat.DigestLength)
	if err != nil {
		return entities.Material{}, fmt.Errorf("digest: %w", err)
	}

	prefix, err := readCopy(read, pubkeyAddr, 1)
	if err != nil {
		return entities.Material{}, fmt.Errorf("public key: %w", err)
	}
	keyLen, err := PublicKeyLength(prefix[0])
	if err != nil {
		return entities.Material{}, err
	}
	pubkey, err := readCopy(read, pubkeyAddr, uint32(keyLen))
	if err != nil {
		return entities.Material{}, fmt.Errorf("public key: %w", err)
	}

	return entities.Material{
		Signature: sig,
		Digest:    digest,
		PublicKey: pubkey,
		Algorithm: algorithm,
	}, nil
}

func readCopy(read ReadFunc, addr int64, n uint32) ([]byte, error) {
	if addr == 0 {
		return nil, ErrNullAddress
	}
	data, ok := read(addr, n)
	if !ok || uint32(len(data)) != n {
		return nil, fmt.Errorf("%w: 0x%x+%d", ErrUnreadableMemory, addr, n)
	}
	out := make([]byte, n)
	copy(out, data)
	return out, nil
}
