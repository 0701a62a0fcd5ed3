package txassembly

import (
	"github.com/pkt-cash/outmgr/outstore"
	"github.com/pkt-cash/pktd/btcutil/er"
)

// mockFactories is a trivial CryptoFactories used by tests, the same way
// pktwallet/wallet/mock.go's mockChainClient stubs out chain.Interface.
type mockFactories struct{}

func (mockFactories) private() {}

// MockFactories is the single CryptoFactories instance tests should share,
// mirroring the "one factories instance, reused everywhere" contract
// TransactionAssembler enforces in production.
var MockFactories CryptoFactories = mockFactories{}

type mockSenderNegotiation struct {
	params  SenderParams
	inputs  []outstore.UnblindedOutput
	change  *outstore.UnblindedOutput
	failAdd bool
	failBuild bool
}

func (n *mockSenderNegotiation) AddInput(o outstore.UnblindedOutput) er.R {
	if n.failAdd {
		return er.New("mock: rejected input")
	}
	n.inputs = append(n.inputs, o)
	return nil
}

func (n *mockSenderNegotiation) AddChangeOutput(o outstore.UnblindedOutput) er.R {
	if n.failAdd {
		return er.New("mock: rejected change output")
	}
	c := o
	n.change = &c
	return nil
}

func (n *mockSenderNegotiation) Build() (SenderTxProto, er.R) {
	if n.failBuild {
		return SenderTxProto{}, er.New("mock: build rejected")
	}
	return SenderTxProto{Tx: n}, nil
}

type mockCoinSplitNegotiation struct {
	params  CoinSplitParams
	inputs  []outstore.UnblindedOutput
	outputs []outstore.UnblindedOutput
}

func (n *mockCoinSplitNegotiation) AddInput(o outstore.UnblindedOutput) er.R {
	n.inputs = append(n.inputs, o)
	return nil
}

func (n *mockCoinSplitNegotiation) AddOutput(o outstore.UnblindedOutput) er.R {
	n.outputs = append(n.outputs, o)
	return nil
}

func (n *mockCoinSplitNegotiation) BuildAndFinalize() (FinalizedTransaction, er.R) {
	return FinalizedTransaction{Tx: n}, nil
}

// MockBuilder is a minimal TransactionBuilder used by tests in this module
// and by outputmanager's own tests.
type MockBuilder struct {
	FailAdd   bool
	FailBuild bool
}

func (b *MockBuilder) NewSenderTransaction(factories CryptoFactories, p SenderParams) (SenderNegotiation, er.R) {
	return &mockSenderNegotiation{params: p, failAdd: b.FailAdd, failBuild: b.FailBuild}, nil
}

func (b *MockBuilder) NewCoinSplitTransaction(factories CryptoFactories, p CoinSplitParams) (CoinSplitNegotiation, er.R) {
	return &mockCoinSplitNegotiation{params: p}, nil
}

var _ TransactionBuilder = (*MockBuilder)(nil)
