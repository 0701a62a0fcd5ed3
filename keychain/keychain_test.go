package keychain

import (
	"testing"

	"github.com/pkt-cash/pktd/btcutil/er"
)

type memPersister struct {
	calls int
	fail  bool
}

func (m *memPersister) IncrementKeyIndex() er.R {
	m.calls++
	if m.fail {
		return er.New("simulated storage failure")
	}
	return nil
}

func TestNextKeyIncrementsIndexOnlyOnSuccess(t *testing.T) {
	km := NewKeyManager(KeyManagerState{})
	p := &memPersister{}

	k0, idx0, err := km.NextKey(p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if idx0 != 0 {
		t.Fatalf("expected first index 0, got %d", idx0)
	}
	if km.State().PrimaryKeyIndex != 1 {
		t.Fatalf("expected index to advance to 1, got %d", km.State().PrimaryKeyIndex)
	}

	k1, idx1, err := km.NextKey(p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if idx1 != 1 {
		t.Fatalf("expected second index 1, got %d", idx1)
	}
	if k0 == k1 {
		t.Fatalf("expected distinct derived keys for distinct indexes")
	}

	p.fail = true
	before := km.State().PrimaryKeyIndex
	if _, _, err := km.NextKey(p); err == nil {
		t.Fatalf("expected storage failure to surface as an error")
	}
	if km.State().PrimaryKeyIndex != before {
		t.Fatalf("index must not advance when persistence fails, got %d want %d",
			km.State().PrimaryKeyIndex, before)
	}
}

func TestGetSeedWordsIsDeterministicAndRoundTrips(t *testing.T) {
	km := NewKeyManager(KeyManagerState{MasterSeed: [32]byte{1, 2, 3, 4, 5}})

	w1, err := km.GetSeedWords()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	w2, err := km.GetSeedWords()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(w1) != wordCount {
		t.Fatalf("expected %d words, got %d", wordCount, len(w1))
	}
	for i := range w1 {
		if w1[i] != w2[i] {
			t.Fatalf("GetSeedWords must be deterministic for a fixed seed")
		}
	}

	if _, err := seedFromWords(w1); err != nil {
		t.Fatalf("seed words did not round-trip: %v", err)
	}
}

func TestDeriveProducesDistinctKeysPerBranch(t *testing.T) {
	a := NewKeyManager(KeyManagerState{MasterSeed: [32]byte{9}, BranchSeed: [32]byte{1}})
	b := NewKeyManager(KeyManagerState{MasterSeed: [32]byte{9}, BranchSeed: [32]byte{2}})

	ka, _, _ := a.NextKey(&memPersister{})
	kb, _, _ := b.NextKey(&memPersister{})
	if ka == kb {
		t.Fatalf("expected distinct branch seeds to derive distinct keys")
	}
}
