package keychain

import (
	"math/big"

	"github.com/dchest/blake2b"
	"github.com/pkt-cash/pktd/btcutil/er"
)

// Seed word encoding, adapted from pktwallet's own seedwords scheme: a
// small fixed-size struct bit-packed into a handful of 11-bit chunks, each
// chunk indexing a word in a 2048-word table. Mnemonic encoding itself is
// an out-of-scope external collaborator for this service (GetSeedWords
// only needs *a* stable word list, not a specific standardized one), so
// the table below is generated rather than the curated BIP-39-style list
// pktwallet ships as external .words.txt data.
const wordCount = 6
const encByteLen = 9 // wordCount*11 = 66 bits, rounded up to a byte boundary: 1 guard/checksum byte + 8 seed bytes

var words2048 = generateWordList()

// generateWordList deterministically builds 2048 distinct four-letter
// synthetic words by walking consonant-vowel-consonant-vowel combinations
// in a fixed order, so the table is reproducible without external data.
func generateWordList() [2048]string {
	var out [2048]string
	consonants := []byte("bcdfghjklmnpqrstvwxyz")
	vowels := []byte("aeiou")
	n := 0
outer:
	for _, c1 := range consonants {
		for _, v1 := range vowels {
			for _, c2 := range consonants {
				for _, v2 := range vowels {
					out[n] = string([]byte{c1, v1, c2, v2})
					n++
					if n == len(out) {
						break outer
					}
				}
			}
		}
	}
	return out
}

var reverseWords = func() map[string]int16 {
	m := make(map[string]int16, len(words2048))
	for i, w := range words2048 {
		m[w] = int16(i)
	}
	return m
}()

// encodedSeed is the bit-packed, checksummed encoding of a master seed: one
// guard/checksum byte followed by the first encByteLen-1 (8) bytes of the
// seed, 72 bits in all. Only the low wordCount*11 (66) of those bits are
// turned into words.
type encodedSeed struct {
	bytes [encByteLen]byte
}

func (s *encodedSeed) computeCsum() byte {
	saved := s.bytes[0]
	s.bytes[0] = 0
	sum := blake2b.Sum256(s.bytes[:])
	s.bytes[0] = saved
	return sum[0]
}

// GetSeedWords renders the first eight bytes of the key manager's master
// seed as wordCount mnemonic words, derived from the master seed only
// (branch seed and index play no part). The remaining 24 seed bytes are not
// represented, so the words do not identify the full master seed.
func (m *KeyManager) GetSeedWords() ([]string, er.R) {
	m.mu.Lock()
	seed := m.state.MasterSeed
	m.mu.Unlock()

	enc := encodedSeed{}
	// Byte 0 holds a guard bit (0x20) and a 5-bit checksum, the layout of
	// pktwallet's SeedEnc. The words cover only the low 66 bits of the
	// 72-bit buffer, i.e. the 8 seed bytes and the two low checksum bits;
	// the guard bit and the upper three checksum bits are not encoded.
	enc.bytes[0] = 0x20
	copy(enc.bytes[1:], seed[:encByteLen-1])
	enc.bytes[0] = (enc.bytes[0] & 0x20) | enc.computeCsum()&0x1f

	words := make([]string, 0, wordCount)
	b := new(big.Int).SetBytes(enc.bytes[:])
	defer zeroBig(b)
	b2047 := big.NewInt(2047)
	tmp := new(big.Int)
	defer zeroBig(tmp)
	for i := 0; i < wordCount; i++ {
		tmp.And(b, b2047)
		words = append(words, words2048[tmp.Uint64()])
		b.Rsh(b, 11)
	}
	// Chunks were taken low bits first; reverse so the words run from the
	// most significant chunk to the least, the order seedFromWords reads.
	for i, j := 0, len(words)-1; i < j; i, j = i+1, j-1 {
		words[i], words[j] = words[j], words[i]
	}
	return words, nil
}

// seedFromWords reverses GetSeedWords, returning the encodedSeed bytes with
// only the bits the words carry (byte 0 keeps just its two low bits). It is
// used only by tests to check the round trip; the service itself never
// needs to reconstruct a seed from words since the master seed is supplied
// at KeyManager construction time.
func seedFromWords(w []string) ([encByteLen]byte, er.R) {
	var out [encByteLen]byte
	if len(w) != wordCount {
		return out, er.Errorf("expected %d words, got %d", wordCount, len(w))
	}
	b := big.NewInt(0)
	defer zeroBig(b)
	for _, word := range w {
		idx, ok := reverseWords[word]
		if !ok {
			return out, er.Errorf("unknown word %q", word)
		}
		b.Lsh(b, 11)
		b.Or(b, big.NewInt(int64(idx)))
	}
	bytes := b.Bytes()
	if len(bytes) > encByteLen {
		return out, er.New("seed word payload too large")
	}
	copy(out[encByteLen-len(bytes):], bytes)
	return out, nil
}
