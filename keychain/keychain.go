// Package keychain implements deterministic child-key derivation for the
// output manager: a single (master_seed, branch_seed) pair plus a
// monotonic index, grounded on the derivation contract pktwallet's
// waddrmgr describes for its own HD chains.
package keychain

import (
	"encoding/binary"
	"sync"

	"github.com/dchest/blake2b"
	"github.com/pkt-cash/pktd/btcutil/er"
)

// KeyManagerState is the persisted counterpart of a KeyManager. An
// OutputStore exposes it through GetKeyManagerState / SetKeyManagerState and
// advances its index through IncrementKeyIndex on every NextKey. The output
// manager Service is handed an already constructed KeyManager and does not
// itself read the state back from the store at startup.
type KeyManagerState struct {
	MasterSeed      [32]byte
	BranchSeed      [32]byte
	PrimaryKeyIndex uint64
}

// IndexPersister is the narrow slice of OutputStore a KeyManager needs: a
// way to durably record a freshly issued index before the derived key is
// handed to any caller. NextKey never returns a key without this call
// having already succeeded.
type IndexPersister interface {
	IncrementKeyIndex() er.R
}

// KeyManager derives spending keys from a fixed seed pair and a strictly
// monotonic index. A handle may be shared across goroutines (the mutex
// exists for that case) even though the output manager's actor loop
// serializes all callers by construction.
type KeyManager struct {
	mu    sync.Mutex
	state KeyManagerState
}

// NewKeyManager wraps a previously persisted (or freshly generated) state.
func NewKeyManager(state KeyManagerState) *KeyManager {
	return &KeyManager{state: state}
}

// State returns a copy of the current key manager state, suitable for
// persisting at startup or for display.
func (m *KeyManager) State() KeyManagerState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// NextKey derives the next child key and persists the incremented index
// through persist before returning. If persistence fails the in-memory
// index is left untouched, so a later retry reissues the same key rather
// than skipping an index.
func (m *KeyManager) NextKey(persist IndexPersister) (PrivateKey, uint64, er.R) {
	m.mu.Lock()
	defer m.mu.Unlock()

	idx := m.state.PrimaryKeyIndex
	key := derive(m.state.MasterSeed, m.state.BranchSeed, idx)

	if err := persist.IncrementKeyIndex(); err != nil {
		return PrivateKey{}, 0, ErrStorage.New("persisting key index", err)
	}
	m.state.PrimaryKeyIndex = idx + 1
	return key, idx, nil
}

// derive is the HKDF-style child derivation: blake2b(master_seed ||
// branch_seed || index), matching the "deterministic fingerprint" framing
// the spec gives key derivation.
func derive(masterSeed, branchSeed [32]byte, index uint64) PrivateKey {
	buf := make([]byte, 32+32+8)
	copy(buf, masterSeed[:])
	copy(buf[32:], branchSeed[:])
	binary.BigEndian.PutUint64(buf[64:], index)
	defer zeroBytes(buf)
	return PrivateKey(blake2b.Sum256(buf))
}
