package outstore

import (
	"sync"
	"time"

	"github.com/pkt-cash/outmgr/keychain"
	"github.com/pkt-cash/pktd/btcutil/er"
)

// MemStore is the in-memory reference implementation of OutputStore. It
// exists to give the rest of this module something concrete to run (and be
// tested) against; a real deployment would back OutputStore with a
// persistent engine the way pktwallet/wtxmgr backs its own schema with
// walletdb, but that engine is explicitly out of scope here.
type MemStore struct {
	mu sync.Mutex

	kmState keychain.KeyManagerState

	unspent         map[keychain.Commitment]UnblindedOutput
	shortTerm       map[keychain.Commitment]UnblindedOutput
	encumbered      map[keychain.Commitment]UnblindedOutput
	spent           map[keychain.Commitment]UnblindedOutput
	pendingIncoming map[keychain.Commitment]UnblindedOutput
	invalid         map[keychain.Commitment]UnblindedOutput

	pending map[uint64]*PendingTransactionOutputs
}

// NewMemStore returns an empty store seeded with the given key manager
// state.
func NewMemStore(state keychain.KeyManagerState) *MemStore {
	return &MemStore{
		kmState:         state,
		unspent:         make(map[keychain.Commitment]UnblindedOutput),
		shortTerm:       make(map[keychain.Commitment]UnblindedOutput),
		encumbered:      make(map[keychain.Commitment]UnblindedOutput),
		spent:           make(map[keychain.Commitment]UnblindedOutput),
		pendingIncoming: make(map[keychain.Commitment]UnblindedOutput),
		invalid:         make(map[keychain.Commitment]UnblindedOutput),
		pending:         make(map[uint64]*PendingTransactionOutputs),
	}
}

func (s *MemStore) GetKeyManagerState() (keychain.KeyManagerState, er.R) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.kmState, nil
}

func (s *MemStore) SetKeyManagerState(state keychain.KeyManagerState) er.R {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.kmState = state
	return nil
}

func (s *MemStore) IncrementKeyIndex() er.R {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.kmState.PrimaryKeyIndex++
	return nil
}

// knownLocked reports whether c already exists in any partition. Caller
// must hold s.mu.
func (s *MemStore) knownLocked(c keychain.Commitment) bool {
	for _, m := range []map[keychain.Commitment]UnblindedOutput{
		s.unspent, s.shortTerm, s.encumbered, s.spent, s.pendingIncoming, s.invalid,
	} {
		if _, ok := m[c]; ok {
			return true
		}
	}
	return false
}

func (s *MemStore) AddUnspentOutput(uo UnblindedOutput) er.R {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := uo.Commitment()
	if s.knownLocked(c) {
		return ErrDuplicate.New("output already known to the store", nil)
	}
	s.unspent[c] = uo
	return nil
}

func (s *MemStore) EncumberOutputs(txID uint64, spentOuts []UnblindedOutput, changeOutputs []UnblindedOutput) er.R {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.pending[txID]; ok {
		return ErrConflict.New("tx_id already has a pending record", nil)
	}
	for _, o := range spentOuts {
		if _, ok := s.unspent[o.Commitment()]; !ok {
			return ErrConflict.New("input is not Unspent", nil)
		}
	}

	for _, o := range spentOuts {
		c := o.Commitment()
		delete(s.unspent, c)
		s.shortTerm[c] = o
	}
	for _, o := range changeOutputs {
		s.pendingIncoming[o.Commitment()] = o
	}

	s.pending[txID] = &PendingTransactionOutputs{
		TxID:                txID,
		OutputsToBeSpent:    append([]UnblindedOutput(nil), spentOuts...),
		OutputsToBeReceived: append([]UnblindedOutput(nil), changeOutputs...),
		Timestamp:           time.Now(),
		shortTerm:           true,
	}
	return nil
}

func (s *MemStore) ConfirmEncumberedOutputs(txID uint64) er.R {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.pending[txID]
	if !ok {
		return ErrUnknown.New("no pending record for tx_id", nil)
	}
	if !rec.shortTerm {
		// Already promoted: idempotent no-op.
		return nil
	}
	for _, o := range rec.OutputsToBeSpent {
		c := o.Commitment()
		if v, ok := s.shortTerm[c]; ok {
			delete(s.shortTerm, c)
			s.encumbered[c] = v
		}
	}
	rec.shortTerm = false
	return nil
}

func (s *MemStore) ConfirmPendingTransactionOutputs(txID uint64) er.R {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.pending[txID]
	if !ok {
		return ErrUnknown.New("no pending record for tx_id", nil)
	}
	for _, o := range rec.OutputsToBeSpent {
		c := o.Commitment()
		delete(s.shortTerm, c)
		delete(s.encumbered, c)
		s.spent[c] = o
	}
	for _, o := range rec.OutputsToBeReceived {
		c := o.Commitment()
		delete(s.pendingIncoming, c)
		s.unspent[c] = o
	}
	delete(s.pending, txID)
	return nil
}

// cancelLocked applies cancel semantics for rec. Caller must hold s.mu.
func (s *MemStore) cancelLocked(rec *PendingTransactionOutputs) {
	for _, o := range rec.OutputsToBeSpent {
		c := o.Commitment()
		delete(s.shortTerm, c)
		delete(s.encumbered, c)
		s.unspent[c] = o
	}
	for _, o := range rec.OutputsToBeReceived {
		delete(s.pendingIncoming, o.Commitment())
	}
	delete(s.pending, rec.TxID)
}

func (s *MemStore) CancelPendingTransactionOutputs(txID uint64) er.R {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.pending[txID]
	if !ok {
		// Idempotent: a second cancel (or a cancel of an already-resolved
		// tx_id) is a no-op, matching the original service's behavior.
		return nil
	}
	s.cancelLocked(rec)
	return nil
}

func (s *MemStore) TimeoutPendingTransactionOutputs(period time.Duration) ([]uint64, er.R) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := time.Now().Add(-period)
	var timedOut []uint64
	for txID, rec := range s.pending {
		if rec.Timestamp.Before(cutoff) {
			timedOut = append(timedOut, txID)
		}
	}
	for _, txID := range timedOut {
		s.cancelLocked(s.pending[txID])
	}
	return timedOut, nil
}

func (s *MemStore) ClearShortTermEncumberances() er.R {
	s.mu.Lock()
	defer s.mu.Unlock()

	var shortTermTxs []*PendingTransactionOutputs
	for _, rec := range s.pending {
		if rec.shortTerm {
			shortTermTxs = append(shortTermTxs, rec)
		}
	}
	for _, rec := range shortTermTxs {
		s.cancelLocked(rec)
	}
	return nil
}

func (s *MemStore) InvalidateOutput(c keychain.Commitment) er.R {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.unspent[c]
	if !ok {
		return ErrUnknown.New("output is not Unspent", nil)
	}
	delete(s.unspent, c)
	s.invalid[c] = o
	return nil
}

func snapshot(m map[keychain.Commitment]UnblindedOutput) []UnblindedOutput {
	out := make([]UnblindedOutput, 0, len(m))
	for _, v := range m {
		out = append(out, v)
	}
	return out
}

func (s *MemStore) FetchUnspent() ([]UnblindedOutput, er.R) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return snapshot(s.unspent), nil
}

func (s *MemStore) FetchSpent() ([]UnblindedOutput, er.R) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return snapshot(s.spent), nil
}

func (s *MemStore) FetchInvalid() ([]UnblindedOutput, er.R) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return snapshot(s.invalid), nil
}

func (s *MemStore) FetchPendingTransactions() ([]PendingTransactionOutputs, er.R) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]PendingTransactionOutputs, 0, len(s.pending))
	for _, rec := range s.pending {
		out = append(out, *rec)
	}
	return out, nil
}

func (s *MemStore) GetBalance() (Balance, er.R) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var b Balance
	for _, o := range s.unspent {
		b.Available += o.Value
	}
	for _, o := range s.pendingIncoming {
		b.PendingIncoming += o.Value
	}
	for _, o := range s.shortTerm {
		b.PendingOutgoing += o.Value
	}
	for _, o := range s.encumbered {
		b.PendingOutgoing += o.Value
	}
	return b, nil
}

var _ OutputStore = (*MemStore)(nil)
