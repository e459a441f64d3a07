// Copyright (c) 2025 The Babylon developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package utxo classifies a wallet's raw unspent outputs into dust,
// inscription-bearing and freely spendable sets, so that downstream
// collateral planning never spends value that represents an inscribed
// artifact or an uneconomical fragment.
package utxo

import (
	"fmt"
	"strconv"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
	"github.com/btcsuite/btcwallet/wallet/txrules"
)

const (
	// DefaultDustThreshold is the application-level value below which an
	// output is hidden from collateral selection. Outputs worth exactly
	// this amount are treated as dust.
	//
	// NOTE: this is a wallet display policy, not the protocol dust limit
	// used when deciding whether a change output may be created. The two
	// constants serve different purposes and must not be unified.
	DefaultDustThreshold btcutil.Amount = 10_000

	// outPointDelimiter separates the transaction ID and output index in
	// the string form of an outpoint.
	outPointDelimiter = ":"

	// p2trPkScriptSize is the size in bytes of a pay-to-taproot output
	// script (OP_1 + data push of a 32-byte key).
	p2trPkScriptSize = 34
)

// Output represents one spendable unit of bitcoin value as reported by a
// wallet or indexer. The script is carried opaquely and never interpreted
// here.
type Output struct {
	// TxID is the hex-encoded hash of the funding transaction.
	TxID string

	// Vout is the index of this output within the funding transaction.
	Vout uint32

	// Value is the amount held by the output.
	Value btcutil.Amount

	// PkScript is the raw output script.
	PkScript []byte
}

// key returns the canonical identity of the output, the case-sensitive
// concatenation of its transaction ID and output index.
func (o *Output) key() string {
	return o.TxID + outPointDelimiter +
		strconv.FormatUint(uint64(o.Vout), 10)
}

// OutPoint parses the output's identity into a wire.OutPoint for callers
// that hand selected coins to a transaction author. An error is returned
// when the transaction ID is not a valid hash.
func (o *Output) OutPoint() (wire.OutPoint, error) {
	hash, err := chainhash.NewHashFromStr(o.TxID)
	if err != nil {
		return wire.OutPoint{}, fmt.Errorf("invalid txid %q: %w",
			o.TxID, err)
	}

	return wire.OutPoint{Hash: *hash, Index: o.Vout}, nil
}

// FilterDust returns the outputs whose value is strictly greater than the
// given threshold, preserving the input order. An output worth exactly the
// threshold is dust. Malformed records (e.g. negative values) are a matter
// for the data source and simply fail the comparison here.
func FilterDust(outputs []Output, threshold btcutil.Amount) []Output {
	filtered := make([]Output, 0, len(outputs))
	for _, output := range outputs {
		if output.Value > threshold {
			filtered = append(filtered, output)
		}
	}

	return filtered
}

// IsRelayDust reports whether an output of the given value would be
// considered dust by default relay policy, assuming a taproot output script.
// This is the protocol-policy view, distinct from DefaultDustThreshold.
func IsRelayDust(value btcutil.Amount) bool {
	return txrules.IsDustAmount(
		value, p2trPkScriptSize, txrules.DefaultRelayFeePerKb,
	)
}
