package hostfuncs

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/sha256"
	"math/big"
	"testing"

	"github.com/btcsuite/btcd/btcec"
	"github.com/reglet-dev/rule-verifier/domain/entities"
	"github.com/stretchr/testify/require"
)

// rawSignature encodes r and s as the 64 byte wire format.
func rawSignature(r, s *big.Int) []byte {
	out := make([]byte, 64)
	r.FillBytes(out[:32])
	s.FillBytes(out[32:])
	return out
}

func signP256(t *testing.T, compressed bool) entities.Material {
	t.Helper()
	priv, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)

	digest := sha256.Sum256([]byte("interchain proof"))
	r, s, err := ecdsa.Sign(rand.Reader, priv, digest[:])
	require.NoError(t, err)

	var pub []byte
	if compressed {
		pub = elliptic.MarshalCompressed(elliptic.P256(), priv.X, priv.Y)
	} else {
		ecdhKey, err := priv.PublicKey.ECDH()
		require.NoError(t, err)
		pub = ecdhKey.Bytes()
	}

	return entities.Material{
		Signature: rawSignature(r, s),
		Digest:    digest[:],
		PublicKey: pub,
		Algorithm: entities.P256,
	}
}

func signSecp256k1(t *testing.T, compressed bool) entities.Material {
	t.Helper()
	priv, err := btcec.NewPrivateKey(btcec.S256())
	require.NoError(t, err)

	digest := sha256.Sum256([]byte("interchain proof"))
	sig, err := priv.Sign(digest[:])
	require.NoError(t, err)

	pub := priv.PubKey().SerializeUncompressed()
	if compressed {
		pub = priv.PubKey().SerializeCompressed()
	}

	return entities.Material{
		Signature: rawSignature(sig.R, sig.S),
		Digest:    digest[:],
		PublicKey: pub,
		Algorithm: entities.Secp256k1,
	}
}

// linearMemory is a flat byte slice standing in for guest memory.
type linearMemory struct {
	data []byte
	next int64
}

func newLinearMemory(size int) *linearMemory {
	// Offset 0 is reserved so that address 0 stays the null address.
	return &linearMemory{data: make([]byte, size), next: 8}
}

func (m *linearMemory) write(b []byte) int64 {
	addr := m.next
	copy(m.data[addr:], b)
	m.next += int64(len(b))
	return addr
}

func (m *linearMemory) read(addr int64, n uint32) ([]byte, bool) {
	if addr < 0 || addr+int64(n) > int64(len(m.data)) {
		return nil, false
	}
	return m.data[addr : addr+int64(n)], true
}
