// Copyright (c) 2025 The Babylon developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package txfee estimates the network fee required to spend a set of
// known-value inputs toward a target payment, deciding whether a change
// output is economically viable and never producing one at or below the
// protocol dust limit.
package txfee

import (
	"errors"
	"fmt"

	"github.com/babylonlabs-io/vault-collateral/pkg/btcunit"
	"github.com/btcsuite/btcd/btcutil"
)

const (
	// InputVSize is the virtual size of one spent input, assuming a
	// single witness-program input type.
	InputVSize = 58

	// OutputVSize is the virtual size of one produced output.
	OutputVSize = 43

	// TxOverheadVSize is the fixed per-transaction overhead: version,
	// counts, locktime and the segwit marker.
	TxOverheadVSize = 11

	// ChangeDustThreshold is the protocol-level value at or below which
	// a change output is not created; the leftover is absorbed as fee
	// instead. This is deliberately distinct from the application-level
	// dust threshold used when classifying wallet outputs.
	ChangeDustThreshold btcutil.Amount = 546

	// Safety margin applied to the final fee, expressed as an exact
	// ratio: 11/10 is a 10% buffer against fee-market drift.
	marginNum   = 11
	marginDenom = 10
)

var (
	// ErrNoInputs is returned when an estimate is requested without any
	// input values.
	ErrNoInputs = errors.New("fee estimate requires at least one input")

	// ErrNonPositiveInput is returned when an input value is zero or
	// negative.
	ErrNonPositiveInput = errors.New("input value must be positive")

	// ErrNonPositiveAmount is returned when the target amount is zero or
	// negative.
	ErrNonPositiveAmount = errors.New("target amount must be positive")

	// ErrZeroFeeRate is returned when the fee rate is not positive.
	ErrZeroFeeRate = errors.New("fee rate must be positive")
)

// Result is the outcome of a fee estimate.
type Result struct {
	// Fee is the total fee in satoshis, inclusive of the safety margin.
	Fee btcutil.Amount

	// ChangeIncluded reports whether the estimate assumes a change
	// output.
	ChangeIncluded bool

	// Change is the value the change output would carry after the final
	// fee is paid. It is zero when no change output is assumed.
	Change btcutil.Amount
}

// Estimate computes the minimum safe fee for a transaction spending the
// given inputs to pay the target amount at the given rate.
//
// The fee is first computed for the no-change shape (all inputs, one payment
// output). If the leftover after that fee exceeds the dust limit, a change
// output is provisionally added and the leftover recomputed against the
// larger fee. Should the extra output cost push the leftover back to or
// below dust, the change output is dropped again and the leftover absorbed
// as fee; a change output at or below the dust limit is never created.
//
// Every size-times-rate product and the final margin multiplication round up
// to the next satoshi, so the transaction is never underfunded.
func Estimate(target btcutil.Amount, inputs []btcutil.Amount,
	rate btcunit.SatPerVByte) (Result, error) {

	if err := validate(target, inputs, rate); err != nil {
		return Result{}, err
	}

	var totalInput btcutil.Amount
	for _, input := range inputs {
		totalInput += input
	}

	// Shape with one payment output and no change.
	baseVSize := btcunit.NewVByte(
		uint64(len(inputs))*InputVSize + OutputVSize + TxOverheadVSize,
	)
	baseFee := rate.FeeForVByteRoundUp(baseVSize)

	selectedFee := baseFee
	changeIncluded := false

	candidateChange := totalInput - target - baseFee
	if candidateChange > ChangeDustThreshold {
		// A change output appears worthwhile; charge for it and see
		// whether the leftover survives the extra cost.
		changeOutputFee := rate.FeeForVByteRoundUp(
			btcunit.NewVByte(OutputVSize),
		)
		feeWithChange := baseFee + changeOutputFee
		changeAfterFee := totalInput - target - feeWithChange

		if changeAfterFee > ChangeDustThreshold {
			selectedFee = feeWithChange
			changeIncluded = true
		}
		// Otherwise the change output consumed itself; fall back to
		// the base fee and let the leftover go to the network.
	}

	fee := btcunit.ScaleAmountRoundUp(selectedFee, marginNum, marginDenom)

	result := Result{Fee: fee, ChangeIncluded: changeIncluded}
	if changeIncluded {
		result.Change = totalInput - target - fee
	}

	return result, nil
}

// MaxPossibleFee returns the fee for the largest possible transaction shape
// built around a single input: the input plus a payment output plus a change
// output, margin included. Callers use it to conservatively pre-filter which
// inputs are even large enough to consider before running Estimate.
func MaxPossibleFee(rate btcunit.SatPerVByte) (btcutil.Amount, error) {
	if rate.LessThanOrEqual(btcunit.ZeroSatPerVByte) {
		return 0, ErrZeroFeeRate
	}

	vsize := btcunit.NewVByte(
		InputVSize + 2*OutputVSize + TxOverheadVSize,
	)
	fee := rate.FeeForVByteRoundUp(vsize)

	return btcunit.ScaleAmountRoundUp(fee, marginNum, marginDenom), nil
}

// validate enforces the caller contract: a positive target, a non-empty list
// of positive inputs and a positive fee rate.
func validate(target btcutil.Amount, inputs []btcutil.Amount,
	rate btcunit.SatPerVByte) error {

	if target <= 0 {
		return fmt.Errorf("%w: %d", ErrNonPositiveAmount, target)
	}

	if len(inputs) == 0 {
		return ErrNoInputs
	}

	for _, input := range inputs {
		if input <= 0 {
			return fmt.Errorf("%w: %d", ErrNonPositiveInput,
				input)
		}
	}

	if rate.LessThanOrEqual(btcunit.ZeroSatPerVByte) {
		return ErrZeroFeeRate
	}

	return nil
}
