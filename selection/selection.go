// Package selection chooses a minimal, fee-aware subset of unspent outputs
// for a target amount, the way pktwallet/wallet/enough accumulates inputs
// against a running IsEnough estimate.
package selection

import (
	"sort"

	"github.com/emirpasic/gods/utils"
	"github.com/pkt-cash/outmgr/outstore"
	"github.com/pkt-cash/pktd/btcutil/er"
)

// Strategy picks the order candidates are offered to the accumulator in.
type Strategy int

const (
	// Smallest orders ascending by value.
	Smallest Strategy = iota
	// MaturityThenSmallest orders by (maturity_height, value), both
	// ascending.
	MaturityThenSmallest
)

// Fee-weight constants. The real wallet prices a transaction by its
// serialized byte size (see pktwallet/wallet/txrules.FeeForSerializeSize);
// Tari-style transactions price by kernel/input/output counts instead of
// raw bytes, so this mirrors that linear-in-count idiom rather than a byte
// count.
const (
	kernelWeight = 20
	inputWeight  = 5
	outputWeight = 10
)

// Fee computes the fee for a transaction with the given shape.
func Fee(feePerGram uint64, kernels, inputCount, outputCount int) uint64 {
	weight := kernels*kernelWeight + inputCount*inputWeight + outputCount*outputWeight
	return feePerGram * uint64(weight)
}

// comparatorFor returns the utils.Comparator pktwallet's own CreateTxReq
// uses to order input candidates, specialized per strategy.
func comparatorFor(strategy Strategy) utils.Comparator {
	switch strategy {
	case MaturityThenSmallest:
		return func(a, b interface{}) int {
			oa, ob := a.(outstore.UnblindedOutput), b.(outstore.UnblindedOutput)
			if oa.Features.MaturityHeight != ob.Features.MaturityHeight {
				return utils.UInt64Comparator(oa.Features.MaturityHeight, ob.Features.MaturityHeight)
			}
			return utils.UInt64Comparator(oa.Value, ob.Value)
		}
	default:
		return func(a, b interface{}) int {
			oa, ob := a.(outstore.UnblindedOutput), b.(outstore.UnblindedOutput)
			return utils.UInt64Comparator(oa.Value, ob.Value)
		}
	}
}

// Select implements the accumulation algorithm: candidates (already
// filtered to Unspent by the caller) are sorted per strategy, then
// appended one at a time until the running total either exactly covers
// amount+fee (no change needed) or covers amount+fee-with-change (change
// required). If every candidate is exhausted without either condition,
// selection fails with ErrNotEnoughFunds and no outputs are returned.
//
// Replicating the source faithfully: a maturity filter against the current
// chain height is a TODO there and is not implemented here either — every
// candidate marked Unspent is considered available regardless of
// maturity_height.
func Select(
	candidates []outstore.UnblindedOutput,
	amount uint64,
	feePerGram uint64,
	outputCount int,
	strategy Strategy,
) (inputs []outstore.UnblindedOutput, requireChange bool, err er.R) {
	sorted := append([]outstore.UnblindedOutput(nil), candidates...)
	cmp := comparatorFor(strategy)
	sort.Slice(sorted, func(i, j int) bool {
		return cmp(sorted[i], sorted[j]) < 0
	})

	// Zero already covers amount+fee before any input is touched (amount
	// 0, fee_per_gram 0): no input is needed and none is selected.
	if 0 == amount+Fee(feePerGram, 1, 0, outputCount) {
		return nil, false, nil
	}

	var total uint64
	var selected []outstore.UnblindedOutput
	for _, o := range sorted {
		selected = append(selected, o)
		total += o.Value

		feeNoChange := Fee(feePerGram, 1, len(selected), outputCount)
		feeWithChange := Fee(feePerGram, 1, len(selected), outputCount+1)

		if total == amount+feeNoChange {
			return selected, false, nil
		}
		if total >= amount+feeWithChange {
			return selected, true, nil
		}
	}

	return nil, false, ErrNotEnoughFunds.New("insufficient funds to cover amount and fee", nil)
}
