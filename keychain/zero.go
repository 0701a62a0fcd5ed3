package keychain

import "math/big"

// zeroBytes overwrites b with zeroes in place, used to scrub key material
// and seed bytes from memory as soon as they are no longer needed.
func zeroBytes(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

// zeroBig overwrites the internal words of b with zeroes. big.Int keeps its
// digits in a slice that SetInt64/SetBytes do not necessarily reallocate, so
// this is the only reliable way to scrub a big.Int that briefly held key
// material.
func zeroBig(b *big.Int) {
	bits := b.Bits()
	for i := range bits {
		bits[i] = 0
	}
	b.SetInt64(0)
}
