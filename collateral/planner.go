// Copyright (c) 2025 The Babylon developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package collateral computes the total values achievable by combining
// discrete, indivisible custody deposits, and compresses that set into a
// bounded sequence of UI-selectable steps.
package collateral

import (
	"errors"
	"fmt"
	"sort"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/lightningnetwork/lnd/fn/v2"
)

// MaxDeposits is the upper bound on the number of deposits a single
// combination may draw from. Enumerating achievable sums is exponential in
// the deposit count, so the bound is enforced here rather than relying on
// callers to keep the input small.
const MaxDeposits = 20

var (
	// ErrInvalidAmount is returned when a deposit amount is zero or
	// negative.
	ErrInvalidAmount = errors.New("deposit amount must be positive")

	// ErrTooManyDeposits is returned when more than MaxDeposits amounts
	// are passed to the planner.
	ErrTooManyDeposits = errors.New("too many deposits")

	// ErrDuplicateDeposit is returned when two deposits share a source
	// ID.
	ErrDuplicateDeposit = errors.New("duplicated deposit source")
)

// Deposit is a confirmed custody balance treated as an indivisible unit: a
// combination either includes the whole deposit or none of it.
type Deposit struct {
	// Amount is the confirmed value of the deposit.
	Amount btcutil.Amount

	// SourceID identifies where the deposit came from, e.g. a funding
	// transaction hash. It is used for traceability only and never
	// combined arithmetically.
	SourceID string
}

// Amounts extracts the amount of each deposit, rejecting duplicate source
// IDs so the same deposit cannot be counted twice.
func Amounts(deposits []Deposit) ([]btcutil.Amount, error) {
	seen := fn.NewSet[string]()
	amounts := make([]btcutil.Amount, 0, len(deposits))

	for _, deposit := range deposits {
		if seen.Contains(deposit.SourceID) {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateDeposit,
				deposit.SourceID)
		}
		seen.Add(deposit.SourceID)

		amounts = append(amounts, deposit.Amount)
	}

	return amounts, nil
}

// SubsetSums returns every total achievable by including or excluding each
// amount, sorted ascending with duplicates collapsed. Zero (selecting
// nothing) is always a member, so an empty input yields {0}. All arithmetic
// is exact integer satoshi math.
func SubsetSums(amounts []btcutil.Amount) ([]btcutil.Amount, error) {
	if len(amounts) > MaxDeposits {
		return nil, fmt.Errorf("%w: %d > %d", ErrTooManyDeposits,
			len(amounts), MaxDeposits)
	}

	sums := fn.NewSet[btcutil.Amount](0)
	for _, amount := range amounts {
		if amount <= 0 {
			return nil, fmt.Errorf("%w: %d", ErrInvalidAmount,
				amount)
		}

		for _, sum := range sums.ToSlice() {
			sums.Add(sum + amount)
		}
	}

	sorted := sums.ToSlice()
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i] < sorted[j]
	})

	return sorted, nil
}

// MaxCombinable returns the value achieved by including every deposit, which
// is the maximum element of SubsetSums.
func MaxCombinable(amounts []btcutil.Amount) (btcutil.Amount, error) {
	var total btcutil.Amount
	for _, amount := range amounts {
		if amount <= 0 {
			return 0, fmt.Errorf("%w: %d", ErrInvalidAmount,
				amount)
		}

		total += amount
	}

	return total, nil
}

// BoundedSteps compresses a sorted achievable-sum set into at most maxSteps
// representative values for a discrete selector. The minimum and maximum
// sums are always included; intermediate values are sampled evenly across
// the sorted set. The result is monotonically increasing and contains only
// values present in the input.
func BoundedSteps(sums []btcutil.Amount, maxSteps int) []btcutil.Amount {
	if len(sums) == 0 {
		return nil
	}

	if maxSteps >= len(sums) {
		steps := make([]btcutil.Amount, len(sums))
		copy(steps, sums)

		return steps
	}

	// With fewer than two slots only the extremes survive; a single-slot
	// request still yields both so the selector can bracket the range.
	if maxSteps < 2 {
		maxSteps = 2
	}

	steps := make([]btcutil.Amount, 0, maxSteps)
	last := len(sums) - 1
	for i := 0; i < maxSteps; i++ {
		// Even sampling across the index range, pinned to the first
		// and last elements.
		idx := i * last / (maxSteps - 1)

		// Skip indices that collapse onto the previous pick.
		if len(steps) > 0 && steps[len(steps)-1] == sums[idx] {
			continue
		}

		steps = append(steps, sums[idx])
	}

	return steps
}
