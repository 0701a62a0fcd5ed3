// Package txassembly wraps the opaque transaction-building capability to
// produce sender transaction protocol objects and to derive change,
// grounded on the accumulate-then-build shape of
// pktwallet/wallet/createtx.go's txToOutputs.
package txassembly

import (
	"crypto/rand"
	"encoding/binary"

	"github.com/pkt-cash/outmgr/keychain"
	"github.com/pkt-cash/outmgr/outstore"
	"github.com/pkt-cash/outmgr/selection"
	"github.com/pkt-cash/pktd/btcutil/er"
)

// TransactionAssembler implements §4.4: PrepareToSendTransaction,
// CreateCoinSplit, and the key-issuance/confirmation helpers the
// transaction service drives through the output manager.
type TransactionAssembler struct {
	keys      *keychain.KeyManager
	store     outstore.OutputStore
	builder   TransactionBuilder
	factories CryptoFactories
}

// New builds a TransactionAssembler. factories is held for the lifetime of
// the assembler and passed unchanged to every builder call — see the
// "Factories variable" design note: CreateCoinSplit must not construct its
// own.
func New(keys *keychain.KeyManager, store outstore.OutputStore, builder TransactionBuilder, factories CryptoFactories) *TransactionAssembler {
	return &TransactionAssembler{keys: keys, store: store, builder: builder, factories: factories}
}

func randomUint64() (uint64, er.R) {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		return 0, er.E(err)
	}
	return binary.BigEndian.Uint64(b[:]), nil
}

func randomScalar() ([32]byte, er.R) {
	var b [32]byte
	if _, err := rand.Read(b[:]); err != nil {
		return b, er.E(err)
	}
	return b, nil
}

// PrepareToSend implements §4.4's prepare_send.
func (a *TransactionAssembler) PrepareToSend(amount, feePerGram uint64, lockHeight *uint64, message string) (SenderTxProto, er.R) {
	unspent, err := a.store.FetchUnspent()
	if err != nil {
		return SenderTxProto{}, err
	}

	inputs, requireChange, err := selection.Select(unspent, amount, feePerGram, 1, selection.MaturityThenSmallest)
	if err != nil {
		return SenderTxProto{}, err
	}

	offset, err := randomScalar()
	if err != nil {
		return SenderTxProto{}, err
	}
	nonce, err := randomScalar()
	if err != nil {
		return SenderTxProto{}, err
	}

	lh := uint64(0)
	if lockHeight != nil {
		lh = *lockHeight
	}

	neg, err := a.builder.NewSenderTransaction(a.factories, SenderParams{
		RecipientCount: 1,
		LockHeight:     lh,
		FeePerGram:     feePerGram,
		Offset:         offset,
		Nonce:          nonce,
		Message:        message,
	})
	if err != nil {
		return SenderTxProto{}, ErrBuild.New("building sender transaction", err)
	}

	var total uint64
	for _, in := range inputs {
		total += in.Value
		if err := neg.AddInput(in); err != nil {
			return SenderTxProto{}, ErrBuild.New("adding input", err)
		}
	}

	var changeOutputs []outstore.UnblindedOutput
	if requireChange {
		feeWithChange := selection.Fee(feePerGram, 1, len(inputs), 2)
		changeKey, _, err := a.keys.NextKey(a.store)
		if err != nil {
			return SenderTxProto{}, err
		}
		change := outstore.UnblindedOutput{
			Value:       total - amount - feeWithChange,
			SpendingKey: changeKey,
		}
		if err := neg.AddChangeOutput(change); err != nil {
			return SenderTxProto{}, ErrBuild.New("adding change output", err)
		}
		changeOutputs = []outstore.UnblindedOutput{change}
	}

	proto, err := neg.Build()
	if err != nil {
		return SenderTxProto{}, ErrBuild.New("finalizing sender transaction", err)
	}

	txID, err := randomUint64()
	if err != nil {
		return SenderTxProto{}, err
	}
	proto.TxID = txID

	if err := a.store.EncumberOutputs(txID, inputs, changeOutputs); err != nil {
		return SenderTxProto{}, err
	}
	return proto, nil
}

// CreateCoinSplitResult is the reply to CreateCoinSplit.
type CreateCoinSplitResult struct {
	TxID      uint64
	Tx        interface{}
	Fee       uint64
	UtxoTotal uint64
}

// CreateCoinSplit implements §4.4's create_coin_split. Unlike prepare_send
// there is no remote counter-party: the transaction is built and finalized
// locally, then immediately confirmed out of short-term state.
func (a *TransactionAssembler) CreateCoinSplit(amountPerSplit uint64, splitCount int, feePerGram uint64, lockHeight *uint64) (CreateCoinSplitResult, er.R) {
	unspent, err := a.store.FetchUnspent()
	if err != nil {
		return CreateCoinSplitResult{}, err
	}

	target := amountPerSplit * uint64(splitCount)
	inputs, requireChange, err := selection.Select(unspent, target, feePerGram, splitCount, selection.MaturityThenSmallest)
	if err != nil {
		return CreateCoinSplitResult{}, err
	}

	var total uint64
	for _, in := range inputs {
		total += in.Value
	}

	outputCount := splitCount
	if requireChange {
		outputCount++
	}
	fee := selection.Fee(feePerGram, 1, len(inputs), outputCount)

	lh := uint64(0)
	if lockHeight != nil {
		lh = *lockHeight
	}

	neg, err := a.builder.NewCoinSplitTransaction(a.factories, CoinSplitParams{FeePerGram: feePerGram, LockHeight: lh})
	if err != nil {
		return CreateCoinSplitResult{}, ErrBuild.New("building coin split transaction", err)
	}
	for _, in := range inputs {
		if err := neg.AddInput(in); err != nil {
			return CreateCoinSplitResult{}, ErrBuild.New("adding input", err)
		}
	}

	received := make([]outstore.UnblindedOutput, 0, outputCount)
	for i := 0; i < splitCount; i++ {
		key, _, err := a.keys.NextKey(a.store)
		if err != nil {
			return CreateCoinSplitResult{}, err
		}
		split := outstore.UnblindedOutput{Value: amountPerSplit, SpendingKey: key}
		if err := neg.AddOutput(split); err != nil {
			return CreateCoinSplitResult{}, ErrBuild.New("adding split output", err)
		}
		received = append(received, split)
	}
	if requireChange {
		changeKey, _, err := a.keys.NextKey(a.store)
		if err != nil {
			return CreateCoinSplitResult{}, err
		}
		change := outstore.UnblindedOutput{Value: total - fee - target, SpendingKey: changeKey}
		if err := neg.AddOutput(change); err != nil {
			return CreateCoinSplitResult{}, ErrBuild.New("adding change output", err)
		}
		received = append(received, change)
	}

	finalized, err := neg.BuildAndFinalize()
	if err != nil {
		return CreateCoinSplitResult{}, ErrBuild.New("finalizing coin split transaction", err)
	}

	txID, err := randomUint64()
	if err != nil {
		return CreateCoinSplitResult{}, err
	}

	if err := a.store.EncumberOutputs(txID, inputs, received); err != nil {
		return CreateCoinSplitResult{}, err
	}
	if err := a.store.ConfirmEncumberedOutputs(txID); err != nil {
		return CreateCoinSplitResult{}, err
	}

	return CreateCoinSplitResult{TxID: txID, Tx: finalized.Tx, Fee: fee, UtxoTotal: total}, nil
}

// GetRecipientSpendingKey implements get_recipient_spending_key: issue a
// new key, record it as an expected incoming output, and immediately
// promote the pending record out of short-term state.
func (a *TransactionAssembler) GetRecipientSpendingKey(txID, amount uint64) (keychain.PublicKey, er.R) {
	key, _, err := a.keys.NextKey(a.store)
	if err != nil {
		return keychain.PublicKey{}, err
	}
	received := outstore.UnblindedOutput{Value: amount, SpendingKey: key}
	if err := a.store.EncumberOutputs(txID, nil, []outstore.UnblindedOutput{received}); err != nil {
		return keychain.PublicKey{}, err
	}
	if err := a.store.ConfirmEncumberedOutputs(txID); err != nil {
		return keychain.PublicKey{}, err
	}
	return key.PublicKey(), nil
}

// GetCoinbaseSpendingKey implements get_coinbase_spending_key: same as
// GetRecipientSpendingKey but the record is left in short-term state so it
// is cleared if the wallet restarts before the coinbase matures.
func (a *TransactionAssembler) GetCoinbaseSpendingKey(txID, amount, maturityHeight uint64) (keychain.PublicKey, er.R) {
	key, _, err := a.keys.NextKey(a.store)
	if err != nil {
		return keychain.PublicKey{}, err
	}
	received := outstore.UnblindedOutput{
		Value:       amount,
		SpendingKey: key,
		Features:    outstore.CoinbaseFeatures(maturityHeight),
	}
	if err := a.store.EncumberOutputs(txID, nil, []outstore.UnblindedOutput{received}); err != nil {
		return keychain.PublicKey{}, err
	}
	return key.PublicKey(), nil
}

func (a *TransactionAssembler) findPending(txID uint64) (outstore.PendingTransactionOutputs, bool, er.R) {
	records, err := a.store.FetchPendingTransactions()
	if err != nil {
		return outstore.PendingTransactionOutputs{}, false, err
	}
	for _, rec := range records {
		if rec.TxID == txID {
			return rec, true, nil
		}
	}
	return outstore.PendingTransactionOutputs{}, false, nil
}

// ConfirmReceivedTransactionOutput implements
// confirm_received_transaction_output: the pending record for tx_id must
// expect exactly one received output, and its commitment must match.
func (a *TransactionAssembler) ConfirmReceivedTransactionOutput(txID uint64, received outstore.UnblindedOutput) er.R {
	rec, ok, err := a.findPending(txID)
	if err != nil {
		return err
	}
	if !ok || len(rec.OutputsToBeReceived) != 1 {
		return ErrIncompleteTransaction.New("pending record does not expect exactly one received output", nil)
	}
	if rec.OutputsToBeReceived[0].Commitment() != received.Commitment() {
		return ErrIncompleteTransaction.New("received output commitment does not match expected output", nil)
	}
	return a.store.ConfirmPendingTransactionOutputs(txID)
}

// ConfirmTransaction implements confirm_transaction: every expected spent
// output must appear in observedInputs by commitment and every expected
// received output must appear in observedOutputs by commitment.
func (a *TransactionAssembler) ConfirmTransaction(txID uint64, observedInputs, observedOutputs []keychain.Commitment) er.R {
	rec, ok, err := a.findPending(txID)
	if err != nil {
		return err
	}
	if !ok {
		// No record at all (never existed, or already confirmed once) is
		// not a mismatch to retry — let the store report its own
		// ErrUnknown rather than mint a new code for "record is gone".
		return a.store.ConfirmPendingTransactionOutputs(txID)
	}

	inputSet := make(map[keychain.Commitment]bool, len(observedInputs))
	for _, c := range observedInputs {
		inputSet[c] = true
	}
	outputSet := make(map[keychain.Commitment]bool, len(observedOutputs))
	for _, c := range observedOutputs {
		outputSet[c] = true
	}

	for _, spent := range rec.OutputsToBeSpent {
		if !inputSet[spent.Commitment()] {
			return ErrIncompleteTransaction.New("expected spent output missing from observed inputs", nil)
		}
	}
	for _, recvd := range rec.OutputsToBeReceived {
		if !outputSet[recvd.Commitment()] {
			return ErrIncompleteTransaction.New("expected received output missing from observed outputs", nil)
		}
	}

	return a.store.ConfirmPendingTransactionOutputs(txID)
}
