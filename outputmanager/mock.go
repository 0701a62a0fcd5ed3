package outputmanager

import (
	"github.com/pkt-cash/outmgr/keychain"
	"github.com/pkt-cash/outmgr/syncoordinator"
	"github.com/pkt-cash/pktd/btcutil/er"
)

// mockMessenger is the BaseNodeMessenger test double for end-to-end
// service tests; it records every FetchUtxos sent and never replies on
// its own, leaving tests in control of when/whether the base node answers.
type mockMessenger struct {
	sent chan syncoordinator.FetchUtxos
}

func newMockMessenger() *mockMessenger {
	return &mockMessenger{sent: make(chan syncoordinator.FetchUtxos, 16)}
}

func (m *mockMessenger) SendDirectMessage(to keychain.PublicKey, msg syncoordinator.FetchUtxos) er.R {
	m.sent <- msg
	return nil
}
