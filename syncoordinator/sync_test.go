package syncoordinator

import (
	"testing"

	"github.com/pkt-cash/outmgr/keychain"
	"github.com/pkt-cash/outmgr/outstore"
	"github.com/pkt-cash/pktd/btcutil/er"
)

type mockMessenger struct {
	sent []FetchUtxos
}

func (m *mockMessenger) SendDirectMessage(to keychain.PublicKey, msg FetchUtxos) er.R {
	m.sent = append(m.sent, msg)
	return nil
}

type mockScheduler struct {
	scheduled []uint64
}

func (m *mockScheduler) ScheduleTimeout(requestKey uint64) {
	m.scheduled = append(m.scheduled, requestKey)
}

type mockEvents struct {
	responses []uint64
	timeouts  []uint64
	errors    []string
}

func (m *mockEvents) PublishReceiveBaseNodeResponse(requestKey uint64) {
	m.responses = append(m.responses, requestKey)
}
func (m *mockEvents) PublishBaseNodeSyncRequestTimedOut(requestKey uint64) {
	m.timeouts = append(m.timeouts, requestKey)
}
func (m *mockEvents) PublishError(message string) {
	m.errors = append(m.errors, message)
}

func newTestCoordinator() (*SyncCoordinator, *outstore.MemStore, *mockMessenger, *mockScheduler, *mockEvents) {
	store := outstore.NewMemStore(keychain.KeyManagerState{})
	msgr := &mockMessenger{}
	sched := &mockScheduler{}
	events := &mockEvents{}
	return New(store, msgr, sched, events), store, msgr, sched, events
}

func TestQueryRequiresBaseNodeKey(t *testing.T) {
	s, _, _, _, _ := newTestCoordinator()
	if _, err := s.QueryUnspentOutputsStatus(); err == nil {
		t.Fatalf("expected ErrNoBaseNodeKeys before SetBaseNodePublicKey")
	}
}

func TestSetBaseNodePublicKeyTriggersQueryOnce(t *testing.T) {
	s, store, msgr, sched, _ := newTestCoordinator()
	h1 := outstore.UnblindedOutput{Value: 100, SpendingKey: keychain.PrivateKey{1}}
	h2 := outstore.UnblindedOutput{Value: 200, SpendingKey: keychain.PrivateKey{2}}
	store.AddUnspentOutput(h1)
	store.AddUnspentOutput(h2)

	if err := s.SetBaseNodePublicKey(keychain.PublicKey{9}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(msgr.sent) != 1 {
		t.Fatalf("expected exactly one query sent, got %d", len(msgr.sent))
	}
	if len(sched.scheduled) != 1 {
		t.Fatalf("expected exactly one timeout scheduled, got %d", len(sched.scheduled))
	}

	if err := s.SetBaseNodePublicKey(keychain.PublicKey{10}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(msgr.sent) != 1 {
		t.Fatalf("expected second SetBaseNodePublicKey not to trigger another query, got %d sends", len(msgr.sent))
	}
}

func TestHandleBaseNodeResponseInvalidatesMissingOutputs(t *testing.T) {
	s, store, msgr, _, events := newTestCoordinator()
	h1 := outstore.UnblindedOutput{Value: 100, SpendingKey: keychain.PrivateKey{1}}
	h2 := outstore.UnblindedOutput{Value: 200, SpendingKey: keychain.PrivateKey{2}}
	store.AddUnspentOutput(h1)
	store.AddUnspentOutput(h2)

	if err := s.SetBaseNodePublicKey(keychain.PublicKey{9}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	requestKey := msgr.sent[0].RequestKey

	c1 := h1.Commitment()
	s.HandleBaseNodeResponse(requestKey, [][]byte{c1[:]})

	if len(events.responses) != 1 || events.responses[0] != requestKey {
		t.Fatalf("expected one ReceiveBaseNodeResponse event for %d", requestKey)
	}
	invalid, _ := store.FetchInvalid()
	if len(invalid) != 1 || invalid[0].Commitment() != h2.Commitment() {
		t.Fatalf("expected h2 to be invalidated, got %+v", invalid)
	}
	unspent, _ := store.FetchUnspent()
	if len(unspent) != 1 || unspent[0].Commitment() != h1.Commitment() {
		t.Fatalf("expected h1 to remain Unspent, got %+v", unspent)
	}
}

func TestHandleUtxoQueryTimeoutRetriesWithFreshKey(t *testing.T) {
	s, store, msgr, sched, events := newTestCoordinator()
	store.AddUnspentOutput(outstore.UnblindedOutput{Value: 100, SpendingKey: keychain.PrivateKey{1}})

	if err := s.SetBaseNodePublicKey(keychain.PublicKey{9}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	firstKey := msgr.sent[0].RequestKey

	if err := s.HandleUtxoQueryTimeout(firstKey); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(events.timeouts) != 1 || events.timeouts[0] != firstKey {
		t.Fatalf("expected one timeout event for %d", firstKey)
	}
	if len(msgr.sent) != 2 {
		t.Fatalf("expected timeout to trigger a retry query, got %d sends", len(msgr.sent))
	}
	if len(sched.scheduled) != 2 {
		t.Fatalf("expected a fresh timeout ticket to be scheduled, got %d", len(sched.scheduled))
	}
}

func TestHandleUtxoQueryTimeoutOnUnknownKeyIsNoop(t *testing.T) {
	s, _, _, _, events := newTestCoordinator()
	if err := s.HandleUtxoQueryTimeout(12345); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(events.timeouts) != 0 {
		t.Fatalf("expected no timeout event for an unknown request key")
	}
}
