package keychain

import (
	"encoding/binary"

	"github.com/dchest/blake2b"
)

// KeyLen is the width of every scalar and commitment this package produces.
// The wallet's actual elliptic-curve arithmetic lives behind the opaque
// TransactionBuilder/CryptoFactories boundary (see txassembly); everything
// on this side of that boundary only needs a deterministic, fixed-width
// stand-in for a scalar.
const KeyLen = 32

// PrivateKey is a derived spending scalar.
type PrivateKey [KeyLen]byte

// PublicKey is the public counterpart of a PrivateKey.
type PublicKey [KeyLen]byte

// Commitment is the deterministic fingerprint of (value, spending key) used
// for equality checks both locally and against the base node.
type Commitment [KeyLen]byte

// PublicKey derives the public key matching k. The real wallet would do
// scalar multiplication against a curve base point; here the relationship
// only needs to be deterministic and one-way, which a tagged hash gives us.
func (k PrivateKey) PublicKey() PublicKey {
	return PublicKey(blake2b.Sum256(append([]byte("outmgr/pubkey/"), k[:]...)))
}

// Commit computes the commitment to (value, spendingKey).
func Commit(value uint64, spendingKey PrivateKey) Commitment {
	buf := make([]byte, 8+KeyLen)
	binary.BigEndian.PutUint64(buf, value)
	copy(buf[8:], spendingKey[:])
	return Commitment(blake2b.Sum256(buf))
}

func (c Commitment) String() string {
	const hextable = "0123456789abcdef"
	out := make([]byte, len(c)*2)
	for i, b := range c {
		out[i*2] = hextable[b>>4]
		out[i*2+1] = hextable[b&0x0f]
	}
	return string(out)
}
