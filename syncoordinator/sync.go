// Package syncoordinator issues UTXO-status queries to the base node,
// tracks in-flight queries by request key, times them out, and reconciles
// responses against the local output store. Grounded on the
// channel-of-subscribers / shared-mutable-state shape of
// pktwallet/wallet/notifications.go, adapted from broadcast to
// request/response bookkeeping.
package syncoordinator

import (
	"crypto/rand"
	"encoding/binary"
	"sync"

	"github.com/pkt-cash/outmgr/keychain"
	"github.com/pkt-cash/outmgr/outstore"
	"github.com/pkt-cash/pktd/btcutil/er"
)

// SyncCoordinator implements §4.5.
type SyncCoordinator struct {
	mu sync.Mutex

	baseNodePublicKey *keychain.PublicKey
	pendingQueries    map[uint64][]keychain.Commitment

	store     outstore.OutputStore
	messenger BaseNodeMessenger
	scheduler TimeoutScheduler
	events    EventSink
}

// New builds a SyncCoordinator with no base node key set yet.
func New(store outstore.OutputStore, messenger BaseNodeMessenger, scheduler TimeoutScheduler, events EventSink) *SyncCoordinator {
	return &SyncCoordinator{
		pendingQueries: make(map[uint64][]keychain.Commitment),
		store:          store,
		messenger:      messenger,
		scheduler:      scheduler,
		events:         events,
	}
}

func randomRequestKey() (uint64, er.R) {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		return 0, er.E(err)
	}
	return binary.BigEndian.Uint64(b[:]), nil
}

// SetBaseNodePublicKey overwrites the base node key without validating the
// previous one — a base-node change during in-flight queries leaves those
// queries pointed at the old peer, tracked only by request_key, exactly as
// the original service behaves. The first assignment ever made triggers an
// immediate query.
func (s *SyncCoordinator) SetBaseNodePublicKey(pk keychain.PublicKey) er.R {
	s.mu.Lock()
	first := s.baseNodePublicKey == nil
	s.baseNodePublicKey = &pk
	s.mu.Unlock()

	if first {
		_, err := s.QueryUnspentOutputsStatus()
		return err
	}
	return nil
}

// QueryUnspentOutputsStatus implements query_unspent_outputs_status.
func (s *SyncCoordinator) QueryUnspentOutputsStatus() (uint64, er.R) {
	s.mu.Lock()
	pk := s.baseNodePublicKey
	s.mu.Unlock()
	if pk == nil {
		return 0, ErrNoBaseNodeKeys.New("sync requested before SetBaseNodePublicKey", nil)
	}

	unspent, err := s.store.FetchUnspent()
	if err != nil {
		return 0, err
	}
	hashes := make([]keychain.Commitment, len(unspent))
	wireHashes := make([][32]byte, len(unspent))
	for i, o := range unspent {
		c := o.Commitment()
		hashes[i] = c
		wireHashes[i] = [32]byte(c)
	}

	requestKey, err := randomRequestKey()
	if err != nil {
		return 0, err
	}

	if err := s.messenger.SendDirectMessage(*pk, FetchUtxos{RequestKey: requestKey, Hashes: wireHashes}); err != nil {
		return 0, err
	}

	s.mu.Lock()
	s.pendingQueries[requestKey] = hashes
	s.mu.Unlock()

	s.scheduler.ScheduleTimeout(requestKey)
	return requestKey, nil
}

// HandleBaseNodeResponse implements handle_base_node_response. rawOutputs
// is the set of canonical output hashes the base node reports as still
// existing; a hash with the wrong width is dropped (ConversionError) but
// the rest of the response is still processed.
func (s *SyncCoordinator) HandleBaseNodeResponse(requestKey uint64, rawOutputs [][]byte) {
	s.mu.Lock()
	queried, ok := s.pendingQueries[requestKey]
	if ok {
		delete(s.pendingQueries, requestKey)
	}
	s.mu.Unlock()
	if !ok {
		return
	}

	present := make(map[keychain.Commitment]bool, len(rawOutputs))
	for _, raw := range rawOutputs {
		if len(raw) != keychain.KeyLen {
			log.Errorf("dropping malformed output hash of length %d in response %d", len(raw), requestKey)
			s.events.PublishError("malformed output in base node response")
			continue
		}
		var c keychain.Commitment
		copy(c[:], raw)
		present[c] = true
	}

	for _, c := range queried {
		if !present[c] {
			if err := s.store.InvalidateOutput(c); err != nil {
				log.Errorf("invalidating output %s: %v", c, err)
			}
		}
	}

	s.events.PublishReceiveBaseNodeResponse(requestKey)
}

// HandleUtxoQueryTimeout implements handle_utxo_query_timeout: an
// unbounded retry policy — every unresolved query is immediately reissued
// with a fresh request_key.
func (s *SyncCoordinator) HandleUtxoQueryTimeout(requestKey uint64) er.R {
	s.mu.Lock()
	_, ok := s.pendingQueries[requestKey]
	if ok {
		delete(s.pendingQueries, requestKey)
	}
	s.mu.Unlock()
	if !ok {
		return nil
	}

	s.events.PublishBaseNodeSyncRequestTimedOut(requestKey)
	_, err := s.QueryUnspentOutputsStatus()
	return err
}
