package txassembly

import (
	"testing"

	"github.com/pkt-cash/outmgr/keychain"
	"github.com/pkt-cash/outmgr/outstore"
)

func newTestAssembler() (*TransactionAssembler, *outstore.MemStore) {
	store := outstore.NewMemStore(keychain.KeyManagerState{MasterSeed: [32]byte{7}})
	keys := keychain.NewKeyManager(keychain.KeyManagerState{MasterSeed: [32]byte{7}})
	a := New(keys, store, &MockBuilder{}, MockFactories)
	return a, store
}

func TestPrepareToSendWithChange(t *testing.T) {
	a, store := newTestAssembler()
	if err := store.AddUnspentOutput(outstore.UnblindedOutput{Value: 1000}); err != nil {
		t.Fatalf("seeding store: %v", err)
	}

	proto, err := a.PrepareToSend(400, 10, nil, "x")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if proto.TxID == 0 {
		t.Fatalf("expected a nonzero tx_id")
	}

	pending, err := store.FetchPendingTransactions()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(pending) != 1 {
		t.Fatalf("expected one pending transaction, got %d", len(pending))
	}
	if len(pending[0].OutputsToBeReceived) != 1 {
		t.Fatalf("expected one change output, got %d", len(pending[0].OutputsToBeReceived))
	}

	unspent, _ := store.FetchUnspent()
	if len(unspent) != 0 {
		t.Fatalf("expected the seeded output to have left Unspent")
	}
}

func TestPrepareToSendInsufficientFunds(t *testing.T) {
	a, store := newTestAssembler()
	if err := store.AddUnspentOutput(outstore.UnblindedOutput{Value: 100}); err != nil {
		t.Fatalf("seeding store: %v", err)
	}

	if _, err := a.PrepareToSend(500, 10, nil, "x"); err == nil {
		t.Fatalf("expected NotEnoughFunds")
	}

	pending, _ := store.FetchPendingTransactions()
	if len(pending) != 0 {
		t.Fatalf("store must be unchanged on failed selection")
	}
}

func TestCreateCoinSplitThreeWay(t *testing.T) {
	a, store := newTestAssembler()
	if err := store.AddUnspentOutput(outstore.UnblindedOutput{Value: 10000}); err != nil {
		t.Fatalf("seeding store: %v", err)
	}

	result, err := a.CreateCoinSplit(1000, 3, 5, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.UtxoTotal != 10000 {
		t.Fatalf("expected utxo_total 10000, got %d", result.UtxoTotal)
	}

	pending, _ := store.FetchPendingTransactions()
	if len(pending) != 1 {
		t.Fatalf("expected one pending transaction, got %d", len(pending))
	}
	if len(pending[0].OutputsToBeReceived) != 4 {
		t.Fatalf("expected 3 splits + 1 change, got %d", len(pending[0].OutputsToBeReceived))
	}
}

func TestConfirmTransactionMismatchThenCancel(t *testing.T) {
	a, store := newTestAssembler()
	if err := store.AddUnspentOutput(outstore.UnblindedOutput{Value: 1000}); err != nil {
		t.Fatalf("seeding store: %v", err)
	}
	proto, err := a.PrepareToSend(400, 10, nil, "x")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tampered := keychain.Commitment{0xff}
	if err := a.ConfirmTransaction(proto.TxID, []keychain.Commitment{tampered}, nil); err == nil {
		t.Fatalf("expected IncompleteTransaction for tampered commitments")
	}

	pending, _ := store.FetchPendingTransactions()
	if len(pending) != 1 {
		t.Fatalf("pending record must survive a failed confirmation")
	}

	if err := store.CancelPendingTransactionOutputs(proto.TxID); err != nil {
		t.Fatalf("unexpected error cancelling: %v", err)
	}
	unspent, _ := store.FetchUnspent()
	if len(unspent) != 1 || unspent[0].Value != 1000 {
		t.Fatalf("expected cancel to restore the original unspent output")
	}
}
