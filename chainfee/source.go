// Copyright (c) 2025 The Babylon developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package chainfee supplies the network fee-rate quotes consumed by the fee
// estimator. The collateral engine itself is pure; this package is the one
// collaborator that talks to the outside world, refreshing a cached quote on
// a fixed cadence.
package chainfee

import (
	"errors"

	"github.com/babylonlabs-io/vault-collateral/pkg/btcunit"
)

// ErrNoQuote is returned when a fee rate is requested before any quote has
// been obtained.
var ErrNoQuote = errors.New("no fee rate quote available")

// Source delivers the current network fee rate.
type Source interface {
	// FeeRate returns the most recent fee rate quote.
	FeeRate() (btcunit.SatPerVByte, error)
}

// StaticSource is a Source that always returns a fixed rate. It is intended
// for tests and for callers that obtain their quotes elsewhere.
type StaticSource struct {
	// Rate is the fixed rate to return.
	Rate btcunit.SatPerVByte
}

// FeeRate returns the fixed rate.
func (s StaticSource) FeeRate() (btcunit.SatPerVByte, error) {
	return s.Rate, nil
}

// A compile time check to ensure the Source implementations satisfy the
// interface.
var _ Source = (*StaticSource)(nil)
var _ Source = (*WebAPISource)(nil)
