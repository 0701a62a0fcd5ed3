package selection

import (
	"testing"

	"github.com/pkt-cash/outmgr/outstore"
)

func out(value uint64) outstore.UnblindedOutput {
	return outstore.UnblindedOutput{Value: value}
}

func TestSelectExactAmountRequiresNoChange(t *testing.T) {
	feeNoChange := Fee(10, 1, 1, 1)
	candidates := []outstore.UnblindedOutput{out(400 + feeNoChange)}

	inputs, requireChange, err := Select(candidates, 400, 10, 1, Smallest)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if requireChange {
		t.Fatalf("expected no change when total exactly covers amount+fee")
	}
	if len(inputs) != 1 {
		t.Fatalf("expected exactly one input, got %d", len(inputs))
	}
}

func TestSelectWithChange(t *testing.T) {
	candidates := []outstore.UnblindedOutput{out(1000)}

	inputs, requireChange, err := Select(candidates, 400, 10, 1, MaturityThenSmallest)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !requireChange {
		t.Fatalf("expected change to be required")
	}
	if len(inputs) != 1 {
		t.Fatalf("expected exactly one input, got %d", len(inputs))
	}
}

func TestSelectInsufficientFunds(t *testing.T) {
	candidates := []outstore.UnblindedOutput{out(100)}

	_, _, err := Select(candidates, 500, 10, 1, Smallest)
	if err == nil {
		t.Fatalf("expected ErrNotEnoughFunds")
	}
	if !ErrNotEnoughFunds.Is(err) {
		t.Fatalf("expected ErrNotEnoughFunds, got %v", err)
	}
}

func TestSelectSmallestOrdersAscending(t *testing.T) {
	candidates := []outstore.UnblindedOutput{out(900), out(50), out(500)}

	inputs, _, err := Select(candidates, 40, 1, 1, Smallest)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inputs[0].Value != 50 {
		t.Fatalf("expected smallest output selected first, got %d", inputs[0].Value)
	}
}
