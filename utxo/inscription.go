// Copyright (c) 2025 The Babylon developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package utxo

import (
	"strconv"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/lightningnetwork/lnd/fn/v2"
)

// InscriptionMarker identifies an output that carries an inscribed artifact
// and must not be treated as spendable currency.
type InscriptionMarker struct {
	// TxID is the hex-encoded hash of the transaction holding the
	// inscription.
	TxID string

	// Vout is the index of the inscribed output.
	Vout uint32
}

// key returns the canonical identity of the marker, matching Output.key.
func (m *InscriptionMarker) key() string {
	return m.TxID + outPointDelimiter +
		strconv.FormatUint(uint64(m.Vout), 10)
}

// InscriptionIndex is a membership index over inscription markers. Lookups
// match the transaction ID and output index together, case-sensitively.
type InscriptionIndex struct {
	keys fn.Set[string]
}

// NewInscriptionIndex builds an index from the given markers. Duplicate
// markers collapse to a single entry.
func NewInscriptionIndex(markers []InscriptionMarker) InscriptionIndex {
	keys := fn.NewSet[string]()
	for _, marker := range markers {
		keys.Add(marker.key())
	}

	return InscriptionIndex{keys: keys}
}

// Contains reports whether the output's (txid, vout) pair is present in the
// index. A shared transaction ID with a different output index does not
// match.
func (i InscriptionIndex) Contains(output *Output) bool {
	return i.keys.Contains(output.key())
}

// Size returns the number of distinct markers in the index.
func (i InscriptionIndex) Size() int {
	return len(i.keys)
}

// PartitionByInscription splits the outputs into those free to spend and
// those holding inscriptions, preserving the original relative order in each
// list. Markers that do not correspond to any output are ignored.
func PartitionByInscription(outputs []Output,
	markers []InscriptionMarker) (available, inscribed []Output) {

	index := NewInscriptionIndex(markers)

	available = make([]Output, 0, len(outputs))
	for _, output := range outputs {
		if index.Contains(&output) {
			inscribed = append(inscribed, output)
			continue
		}

		available = append(available, output)
	}

	return available, inscribed
}

// Spendable returns the outputs that are neither dust nor inscribed. Dust is
// removed first since the value comparison is cheap and shrinks the set
// before the membership check; the result is the same as intersecting the
// two filters.
func Spendable(outputs []Output, markers []InscriptionMarker,
	dustThreshold btcutil.Amount) []Output {

	available, _ := PartitionByInscription(
		FilterDust(outputs, dustThreshold), markers,
	)

	return available
}
