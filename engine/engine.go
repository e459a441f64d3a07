// Copyright (c) 2025 The Babylon developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package engine composes the UTXO classifier, the collateral planner and
// the fee estimator into the surface a dashboard calls: which outputs are
// spendable, which collateral amounts are reachable, and what a payment will
// cost at the current fee rate.
package engine

import (
	"errors"
	"fmt"
	"sort"

	"github.com/babylonlabs-io/vault-collateral/chainfee"
	"github.com/babylonlabs-io/vault-collateral/collateral"
	"github.com/babylonlabs-io/vault-collateral/txfee"
	"github.com/babylonlabs-io/vault-collateral/utxo"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/davecgh/go-spew/spew"
)

// DefaultMaxSteps is the default bound on the number of selector steps
// produced for a collateral slider.
const DefaultMaxSteps = 50

var (
	// ErrMissingFeeSource is returned when an engine is created without
	// a fee rate source.
	ErrMissingFeeSource = errors.New("fee source is required")

	// ErrInsufficientFunds is returned when the spendable outputs cannot
	// cover a target amount plus the required fee.
	ErrInsufficientFunds = errors.New("insufficient spendable funds")
)

// Config bundles the engine's collaborators and policy knobs.
type Config struct {
	// FeeSource supplies the current network fee rate. Required.
	FeeSource chainfee.Source

	// DustThreshold is the application-level dust cutoff for wallet
	// outputs. Zero selects utxo.DefaultDustThreshold.
	DustThreshold btcutil.Amount

	// MaxSteps bounds the collateral selector steps. Zero selects
	// DefaultMaxSteps.
	MaxSteps int
}

// Engine is the in-process facade over the three collateral components. It
// holds no mutable state beyond its configuration and is safe for
// concurrent use.
type Engine struct {
	cfg Config
}

// New creates an engine from the given config, applying defaults for unset
// policy knobs.
func New(cfg Config) (*Engine, error) {
	if cfg.FeeSource == nil {
		return nil, ErrMissingFeeSource
	}

	if cfg.DustThreshold == 0 {
		cfg.DustThreshold = utxo.DefaultDustThreshold
	}

	if cfg.MaxSteps == 0 {
		cfg.MaxSteps = DefaultMaxSteps
	}

	return &Engine{cfg: cfg}, nil
}

// SpendableOutputs returns the wallet outputs that are neither dust nor
// inscribed, in their original order.
func (e *Engine) SpendableOutputs(outputs []utxo.Output,
	markers []utxo.InscriptionMarker) []utxo.Output {

	spendable := utxo.Spendable(outputs, markers, e.cfg.DustThreshold)

	log.Debugf("Classified %d of %d outputs as spendable",
		len(spendable), len(outputs))

	return spendable
}

// CollateralSteps computes the achievable collateral totals for the given
// deposits and compresses them into selector steps.
func (e *Engine) CollateralSteps(deposits []collateral.Deposit) (
	[]btcutil.Amount, error) {

	amounts, err := collateral.Amounts(deposits)
	if err != nil {
		return nil, err
	}

	sums, err := collateral.SubsetSums(amounts)
	if err != nil {
		return nil, err
	}

	steps := collateral.BoundedSteps(sums, e.cfg.MaxSteps)

	log.Debugf("Planned %d selector steps from %d achievable sums "+
		"across %d deposits", len(steps), len(sums), len(deposits))

	return steps, nil
}

// FundingFee estimates the fee for spending the given input values toward
// the target amount at the current network rate.
func (e *Engine) FundingFee(target btcutil.Amount,
	inputs []btcutil.Amount) (txfee.Result, error) {

	rate, err := e.cfg.FeeSource.FeeRate()
	if err != nil {
		return txfee.Result{}, fmt.Errorf("fetching fee rate: %w",
			err)
	}

	return txfee.Estimate(target, inputs, rate)
}

// SelectOutputs picks spendable outputs to fund the target amount,
// largest-first, until the accumulated value covers the target plus the
// estimated fee for the selected shape. It returns the chosen outputs along
// with the final estimate.
func (e *Engine) SelectOutputs(outputs []utxo.Output,
	markers []utxo.InscriptionMarker, target btcutil.Amount) (
	[]utxo.Output, txfee.Result, error) {

	rate, err := e.cfg.FeeSource.FeeRate()
	if err != nil {
		return nil, txfee.Result{}, fmt.Errorf("fetching fee rate: "+
			"%w", err)
	}

	spendable := e.SpendableOutputs(outputs, markers)

	// Largest first, so the fewest inputs (and the least fee) cover the
	// target.
	sorted := make([]utxo.Output, len(spendable))
	copy(sorted, spendable)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Value > sorted[j].Value
	})

	var (
		selected []utxo.Output
		values   []btcutil.Amount
		total    btcutil.Amount
	)
	for _, output := range sorted {
		selected = append(selected, output)
		values = append(values, output.Value)
		total += output.Value

		result, err := txfee.Estimate(target, values, rate)
		if err != nil {
			return nil, txfee.Result{}, err
		}

		if total >= target+result.Fee {
			log.Tracef("Selected outputs for target %v: %v",
				target, spew.Sdump(selected))

			return selected, result, nil
		}
	}

	return nil, txfee.Result{}, fmt.Errorf("%w: %d available, "+
		"%d required", ErrInsufficientFunds, total, target)
}
