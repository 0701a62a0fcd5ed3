package outputmanager

import (
	"testing"
	"time"

	"github.com/pkt-cash/outmgr/config"
	"github.com/pkt-cash/outmgr/keychain"
	"github.com/pkt-cash/outmgr/outstore"
	"github.com/pkt-cash/outmgr/syncoordinator"
	"github.com/pkt-cash/outmgr/txassembly"
)

func newTestService() (*Service, *outstore.MemStore, *mockMessenger) {
	initial := keychain.KeyManagerState{MasterSeed: [32]byte{1}, BranchSeed: [32]byte{2}}
	store := outstore.NewMemStore(initial)
	keys := keychain.NewKeyManager(initial)
	msgr := newMockMessenger()
	cfg := config.Default()
	cfg.BaseNodeQueryTimeout = 50 * time.Millisecond
	s := New(cfg, store, keys, &txassembly.MockBuilder{}, txassembly.MockFactories, msgr)
	return s, store, msgr
}

func TestAddOutputAndGetBalance(t *testing.T) {
	s, _, _ := newTestService()
	if err := s.Start(); err != nil {
		t.Fatalf("unexpected error starting service: %v", err)
	}
	defer s.Stop()

	out := outstore.UnblindedOutput{Value: 1000, SpendingKey: keychain.PrivateKey{7}}
	if err := s.AddOutput(out); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	bal, err := s.GetBalance()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if bal.Available != 1000 {
		t.Fatalf("expected available balance 1000, got %d", bal.Available)
	}
}

func TestPrepareToSendWithChangeThenConfirm(t *testing.T) {
	s, _, _ := newTestService()
	if err := s.Start(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer s.Stop()

	if err := s.AddOutput(outstore.UnblindedOutput{Value: 5000, SpendingKey: keychain.PrivateKey{1}}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	proto, err := s.PrepareToSendTransaction(1000, 1, nil, "payment")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	pending, err := s.GetPendingTransactions()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(pending) != 1 || pending[0].TxID != proto.TxID {
		t.Fatalf("expected one pending record for tx %d, got %+v", proto.TxID, pending)
	}

	var observedInputs, observedOutputs []keychain.Commitment
	for _, o := range pending[0].OutputsToBeSpent {
		observedInputs = append(observedInputs, o.Commitment())
	}
	for _, o := range pending[0].OutputsToBeReceived {
		observedOutputs = append(observedOutputs, o.Commitment())
	}

	if err := s.ConfirmTransaction(proto.TxID, observedInputs, observedOutputs); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	bal, err := s.GetBalance()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if bal.PendingOutgoing != 0 || bal.PendingIncoming != 0 {
		t.Fatalf("expected no pending balance after confirm, got %+v", bal)
	}
	if bal.Available == 0 {
		t.Fatalf("expected remaining change to be available, got %+v", bal)
	}
}

func TestPrepareToSendInsufficientFunds(t *testing.T) {
	s, _, _ := newTestService()
	if err := s.Start(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer s.Stop()

	if err := s.AddOutput(outstore.UnblindedOutput{Value: 10, SpendingKey: keychain.PrivateKey{1}}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := s.PrepareToSendTransaction(1000, 1, nil, ""); err == nil {
		t.Fatalf("expected insufficient funds error")
	}
}

func TestCreateCoinSplitThreeWay(t *testing.T) {
	s, _, _ := newTestService()
	if err := s.Start(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer s.Stop()

	if err := s.AddOutput(outstore.UnblindedOutput{Value: 9000, SpendingKey: keychain.PrivateKey{1}}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	res, err := s.CreateCoinSplit(1000, 3, 1, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.UtxoTotal != 9000 {
		t.Fatalf("expected utxo total 9000, got %d", res.UtxoTotal)
	}

	pending, err := s.GetPendingTransactions()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(pending) != 1 || len(pending[0].OutputsToBeReceived) < 3 {
		t.Fatalf("expected at least 3 pending incoming split outputs, got %+v", pending)
	}
}

func TestCancelTransactionIsIdempotent(t *testing.T) {
	s, _, _ := newTestService()
	if err := s.Start(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer s.Stop()

	if err := s.AddOutput(outstore.UnblindedOutput{Value: 5000, SpendingKey: keychain.PrivateKey{1}}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	proto, err := s.PrepareToSendTransaction(1000, 1, nil, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := s.CancelTransaction(proto.TxID); err != nil {
		t.Fatalf("unexpected error on first cancel: %v", err)
	}
	if err := s.CancelTransaction(proto.TxID); err != nil {
		t.Fatalf("expected second cancel to be a no-op, got error: %v", err)
	}

	bal, err := s.GetBalance()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if bal.Available != 5000 {
		t.Fatalf("expected original funds restored, got %+v", bal)
	}
}

func TestSyncWithBaseNodeInvalidatesMissingOutput(t *testing.T) {
	s, _, msgr := newTestService()
	if err := s.Start(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer s.Stop()

	present := outstore.UnblindedOutput{Value: 100, SpendingKey: keychain.PrivateKey{1}}
	missing := outstore.UnblindedOutput{Value: 200, SpendingKey: keychain.PrivateKey{2}}
	if err := s.AddOutput(present); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := s.AddOutput(missing); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	events := s.Subscribe()
	if err := s.SetBaseNodePublicKey(keychain.PublicKey{9}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var req syncoordinator.FetchUtxos
	select {
	case req = <-msgr.sent:
	case <-time.After(time.Second):
		t.Fatalf("timed out waiting for base node query")
	}

	c := present.Commitment()
	s.DeliverBaseNodeResponse(req.RequestKey, [][]byte{c[:]})

	select {
	case ev := <-events:
		if ev.Kind != EventReceiveBaseNodeResponse {
			t.Fatalf("expected a ReceiveBaseNodeResponse event, got %+v", ev)
		}
	case <-time.After(time.Second):
		t.Fatalf("timed out waiting for event")
	}

	invalid, err := s.GetInvalidOutputs()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(invalid) != 1 || invalid[0].Commitment() != missing.Commitment() {
		t.Fatalf("expected the missing output to be invalidated, got %+v", invalid)
	}
}

func TestUtxoQueryTimeoutRetries(t *testing.T) {
	s, _, msgr := newTestService()
	if err := s.Start(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer s.Stop()

	if err := s.AddOutput(outstore.UnblindedOutput{Value: 100, SpendingKey: keychain.PrivateKey{1}}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	events := s.Subscribe()
	if err := s.SetBaseNodePublicKey(keychain.PublicKey{9}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	select {
	case <-msgr.sent:
	case <-time.After(time.Second):
		t.Fatalf("timed out waiting for first query")
	}

	select {
	case ev := <-events:
		if ev.Kind != EventBaseNodeSyncRequestTimedOut {
			t.Fatalf("expected a timeout event, got %+v", ev)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for timeout event")
	}

	select {
	case <-msgr.sent:
	case <-time.After(time.Second):
		t.Fatalf("timed out waiting for retry query")
	}
}

func TestGetSeedWords(t *testing.T) {
	s, _, _ := newTestService()
	if err := s.Start(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer s.Stop()

	words, err := s.GetSeedWords()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(words) == 0 {
		t.Fatalf("expected a non-empty seed word list")
	}
}
