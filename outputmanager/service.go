// Package outputmanager ties the key manager, output store, selection
// engine, transaction assembler, and sync coordinator together behind a
// single-threaded actor loop, grounded on the request/reply channel
// pattern pktwallet/wallet/wallet.go uses for txCreator and walletLocker.
package outputmanager

import (
	"sync"
	"time"

	"github.com/pkt-cash/outmgr/config"
	"github.com/pkt-cash/outmgr/keychain"
	"github.com/pkt-cash/outmgr/outstore"
	"github.com/pkt-cash/outmgr/syncoordinator"
	"github.com/pkt-cash/outmgr/txassembly"
	"github.com/pkt-cash/pktd/btcutil/er"
)

type apiCall struct {
	exec  func() (interface{}, er.R)
	reply chan apiResult
}

type apiResult struct {
	value interface{}
	err   er.R
}

type baseNodeResponseMsg struct {
	requestKey uint64
	rawOutputs [][]byte
}

// actorScheduler implements syncoordinator.TimeoutScheduler by delivering
// request keys onto the actor loop's own timeout stream after cfg's query
// timeout elapses.
type actorScheduler struct {
	delay     time.Duration
	timeoutCh chan uint64
	quit      chan struct{}
}

func (s *actorScheduler) ScheduleTimeout(requestKey uint64) {
	time.AfterFunc(s.delay, func() {
		select {
		case s.timeoutCh <- requestKey:
		case <-s.quit:
		}
	})
}

// Service is the output manager actor described in §4.6. It owns the
// store and key manager exclusively; every external interaction happens
// through the request/reply methods below or through the event stream.
type Service struct {
	cfg config.OutputManagerServiceConfig

	store     outstore.OutputStore
	keys      *keychain.KeyManager
	assembler *txassembly.TransactionAssembler
	sync      *syncoordinator.SyncCoordinator
	events    *EventPublisher

	apiCh               chan apiCall
	baseNodeResponseCh  chan baseNodeResponseMsg
	timeoutCh           chan uint64
	quit                chan struct{}
	done                chan struct{}
	startOnce, stopOnce sync.Once
}

// New assembles a Service from its collaborators. builder, factories, and
// messenger are the opaque external capabilities the spec places out of
// scope (§1); callers supply real implementations in production and the
// mocks in this package's own tests otherwise.
func New(
	cfg config.OutputManagerServiceConfig,
	store outstore.OutputStore,
	keys *keychain.KeyManager,
	builder txassembly.TransactionBuilder,
	factories txassembly.CryptoFactories,
	messenger syncoordinator.BaseNodeMessenger,
) *Service {
	events := NewEventPublisher()
	timeoutCh := make(chan uint64)
	quit := make(chan struct{})

	s := &Service{
		cfg:                cfg,
		store:              store,
		keys:               keys,
		assembler:          txassembly.New(keys, store, builder, factories),
		events:             events,
		apiCh:              make(chan apiCall),
		baseNodeResponseCh: make(chan baseNodeResponseMsg),
		timeoutCh:          timeoutCh,
		quit:               quit,
		done:               make(chan struct{}),
	}
	scheduler := &actorScheduler{delay: cfg.BaseNodeQueryTimeout, timeoutCh: timeoutCh, quit: quit}
	s.sync = syncoordinator.New(store, messenger, scheduler, events)
	return s
}

// Start clears any short-term encumberances left over from a previous run
// (the same bookkeeping the service does on every startup per §8's
// "starting the service twice" property) and launches the actor loop.
func (s *Service) Start() er.R {
	var startErr er.R
	s.startOnce.Do(func() {
		if err := s.store.ClearShortTermEncumberances(); err != nil {
			startErr = err
			return
		}
		go s.run()
	})
	return startErr
}

// Stop terminates the actor loop. The loop emits no event on termination.
func (s *Service) Stop() {
	s.stopOnce.Do(func() {
		close(s.quit)
	})
	<-s.done
}

// Subscribe registers a new event stream subscriber.
func (s *Service) Subscribe() <-chan *Event {
	return s.events.Subscribe()
}

// run is the single cooperative loop described in §4.6: exactly one item
// is drained and fully processed before the next is accepted, and the
// loop exits only when told to quit.
func (s *Service) run() {
	defer close(s.done)
	for {
		select {
		case call := <-s.apiCh:
			v, err := call.exec()
			call.reply <- apiResult{value: v, err: err}
		case msg := <-s.baseNodeResponseCh:
			s.sync.HandleBaseNodeResponse(msg.requestKey, msg.rawOutputs)
		case requestKey := <-s.timeoutCh:
			if err := s.sync.HandleUtxoQueryTimeout(requestKey); err != nil {
				s.events.PublishError(err.String())
			}
		case <-s.quit:
			return
		}
	}
}

// call sends exec to the actor loop and blocks for its reply, the
// request/reply shape every exported method below uses.
func (s *Service) call(exec func() (interface{}, er.R)) (interface{}, er.R) {
	reply := make(chan apiResult, 1)
	select {
	case s.apiCh <- apiCall{exec: exec, reply: reply}:
	case <-s.quit:
		return nil, er.New("output manager is stopped")
	}
	select {
	case res := <-reply:
		return res.value, res.err
	case <-s.quit:
		return nil, er.New("output manager is stopped")
	}
}

// DeliverBaseNodeResponse feeds an inbound base-node response into the
// actor loop's second input stream. In a full deployment a sibling
// dispatcher routes decoded network messages here; it is out of scope for
// this service.
func (s *Service) DeliverBaseNodeResponse(requestKey uint64, rawOutputHashes [][]byte) {
	select {
	case s.baseNodeResponseCh <- baseNodeResponseMsg{requestKey: requestKey, rawOutputs: rawOutputHashes}:
	case <-s.quit:
	}
}

// --- API (§6) -----------------------------------------------------------

// AddOutput implements AddOutput -> OutputAdded.
func (s *Service) AddOutput(uo outstore.UnblindedOutput) er.R {
	_, err := s.call(func() (interface{}, er.R) {
		return nil, s.store.AddUnspentOutput(uo)
	})
	return err
}

// GetBalance implements GetBalance -> Balance.
func (s *Service) GetBalance() (outstore.Balance, er.R) {
	v, err := s.call(func() (interface{}, er.R) {
		return s.store.GetBalance()
	})
	if err != nil {
		return outstore.Balance{}, err
	}
	return v.(outstore.Balance), nil
}

// GetRecipientKey implements GetRecipientKey -> RecipientKeyGenerated.
func (s *Service) GetRecipientKey(txID, amount uint64) (keychain.PublicKey, er.R) {
	v, err := s.call(func() (interface{}, er.R) {
		return s.assembler.GetRecipientSpendingKey(txID, amount)
	})
	if err != nil {
		return keychain.PublicKey{}, err
	}
	return v.(keychain.PublicKey), nil
}

// GetCoinbaseKey implements GetCoinbaseKey -> RecipientKeyGenerated.
func (s *Service) GetCoinbaseKey(txID, amount, maturityHeight uint64) (keychain.PublicKey, er.R) {
	v, err := s.call(func() (interface{}, er.R) {
		return s.assembler.GetCoinbaseSpendingKey(txID, amount, maturityHeight)
	})
	if err != nil {
		return keychain.PublicKey{}, err
	}
	return v.(keychain.PublicKey), nil
}

// PrepareToSendTransaction implements PrepareToSendTransaction ->
// TransactionToSend.
func (s *Service) PrepareToSendTransaction(amount, feePerGram uint64, lockHeight *uint64, message string) (txassembly.SenderTxProto, er.R) {
	v, err := s.call(func() (interface{}, er.R) {
		return s.assembler.PrepareToSend(amount, feePerGram, lockHeight, message)
	})
	if err != nil {
		return txassembly.SenderTxProto{}, err
	}
	return v.(txassembly.SenderTxProto), nil
}

// ConfirmPendingTransaction implements ConfirmPendingTransaction ->
// PendingTransactionConfirmed: promotes a pending record out of
// short-term state.
func (s *Service) ConfirmPendingTransaction(txID uint64) er.R {
	_, err := s.call(func() (interface{}, er.R) {
		return nil, s.store.ConfirmEncumberedOutputs(txID)
	})
	return err
}

// ConfirmTransaction implements ConfirmTransaction -> TransactionConfirmed.
func (s *Service) ConfirmTransaction(txID uint64, observedInputs, observedOutputs []keychain.Commitment) er.R {
	_, err := s.call(func() (interface{}, er.R) {
		return nil, s.assembler.ConfirmTransaction(txID, observedInputs, observedOutputs)
	})
	return err
}

// CancelTransaction implements CancelTransaction -> TransactionCancelled.
func (s *Service) CancelTransaction(txID uint64) er.R {
	_, err := s.call(func() (interface{}, er.R) {
		return nil, s.store.CancelPendingTransactionOutputs(txID)
	})
	return err
}

// TimeoutTransactions implements TimeoutTransactions -> TransactionsTimedOut.
func (s *Service) TimeoutTransactions(period time.Duration) ([]uint64, er.R) {
	v, err := s.call(func() (interface{}, er.R) {
		return s.store.TimeoutPendingTransactionOutputs(period)
	})
	if err != nil {
		return nil, err
	}
	return v.([]uint64), nil
}

// GetPendingTransactions implements GetPendingTransactions.
func (s *Service) GetPendingTransactions() ([]outstore.PendingTransactionOutputs, er.R) {
	v, err := s.call(func() (interface{}, er.R) {
		return s.store.FetchPendingTransactions()
	})
	if err != nil {
		return nil, err
	}
	return v.([]outstore.PendingTransactionOutputs), nil
}

// GetSpentOutputs implements GetSpentOutputs.
func (s *Service) GetSpentOutputs() ([]outstore.UnblindedOutput, er.R) {
	return s.fetchOutputs(s.store.FetchSpent)
}

// GetUnspentOutputs implements GetUnspentOutputs.
func (s *Service) GetUnspentOutputs() ([]outstore.UnblindedOutput, er.R) {
	return s.fetchOutputs(s.store.FetchUnspent)
}

// GetInvalidOutputs implements GetInvalidOutputs.
func (s *Service) GetInvalidOutputs() ([]outstore.UnblindedOutput, er.R) {
	return s.fetchOutputs(s.store.FetchInvalid)
}

func (s *Service) fetchOutputs(fetch func() ([]outstore.UnblindedOutput, er.R)) ([]outstore.UnblindedOutput, er.R) {
	v, err := s.call(func() (interface{}, er.R) {
		return fetch()
	})
	if err != nil {
		return nil, err
	}
	return v.([]outstore.UnblindedOutput), nil
}

// GetSeedWords implements GetSeedWords -> SeedWords([string]).
func (s *Service) GetSeedWords() ([]string, er.R) {
	v, err := s.call(func() (interface{}, er.R) {
		return s.keys.GetSeedWords()
	})
	if err != nil {
		return nil, err
	}
	return v.([]string), nil
}

// SetBaseNodePublicKey implements SetBaseNodePublicKey ->
// BaseNodePublicKeySet.
func (s *Service) SetBaseNodePublicKey(pk keychain.PublicKey) er.R {
	_, err := s.call(func() (interface{}, er.R) {
		return nil, s.sync.SetBaseNodePublicKey(pk)
	})
	return err
}

// SyncWithBaseNode implements SyncWithBaseNode -> StartedBaseNodeSync.
func (s *Service) SyncWithBaseNode() (uint64, er.R) {
	v, err := s.call(func() (interface{}, er.R) {
		return s.sync.QueryUnspentOutputsStatus()
	})
	if err != nil {
		return 0, err
	}
	return v.(uint64), nil
}

// CreateCoinSplit implements CreateCoinSplit -> Transaction(tx_id, tx,
// fee, utxo_total).
func (s *Service) CreateCoinSplit(amountPerSplit uint64, splitCount int, feePerGram uint64, lockHeight *uint64) (txassembly.CreateCoinSplitResult, er.R) {
	v, err := s.call(func() (interface{}, er.R) {
		return s.assembler.CreateCoinSplit(amountPerSplit, splitCount, feePerGram, lockHeight)
	})
	if err != nil {
		return txassembly.CreateCoinSplitResult{}, err
	}
	return v.(txassembly.CreateCoinSplitResult), nil
}
