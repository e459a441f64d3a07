// Copyright (c) 2025 The Babylon developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package btcunit

import (
	"log/slog"
	"math"
	"math/big"

	"github.com/btcsuite/btcd/blockchain"
	"github.com/btcsuite/btcd/btcutil"
)

const (
	// kilo is a generic multiplier for kilo units.
	kilo = 1000

	// floatStringPrecision is the number of decimal places to use when
	// converting a fee rate to a string. We use 3 decimal places to
	// ensure that low fee rates (e.g., 0.001 sat/vbyte) are displayed
	// with sufficient precision and not rounded to zero.
	floatStringPrecision = 3
)

// ZeroSatPerVByte is a fee rate of 0 sat/vb.
var ZeroSatPerVByte = NewSatPerVByte(0)

// SatPerVByte represents a fee rate in sat/vbyte. Internally the rate is
// stored and operated on as satoshis per kilo-weight-unit (sat/kwu), which
// keeps every fee calculation exact until the final conversion back to whole
// satoshis.
type SatPerVByte struct {
	// satsPerKWU is the fee rate in satoshis per kilo-weight-unit, the
	// canonical representation chosen for its direct alignment with
	// Bitcoin's weight unit and to minimize rounding errors.
	satsPerKWU *big.Rat
}

// NewSatPerVByte creates a new fee rate from a whole number of satoshis per
// virtual byte.
func NewSatPerVByte(rate btcutil.Amount) SatPerVByte {
	return CalcSatPerVByte(rate, NewVByte(1))
}

// CalcSatPerVByte calculates the fee rate in sat/vb for a given fee and size.
func CalcSatPerVByte(fee btcutil.Amount, vb VByte) SatPerVByte {
	// To convert the rate to the canonical sat/kwu unit, we use the
	// formula: (fee * 1000) / size_in_wu.
	//
	// vb.wu provides the size in weight units (wu), implicitly accounting
	// for the WitnessScaleFactor.
	if vb.wu == 0 {
		return SatPerVByte{satsPerKWU: big.NewRat(0, 1)}
	}

	return SatPerVByte{satsPerKWU: big.NewRat(
		int64(fee)*kilo, safeUint64ToInt64(vb.wu),
	)}
}

// SatPerVByteFromFloat creates a new fee rate from a floating-point sat/vb
// value, as reported by public fee estimation APIs. The float is converted to
// an exact rational so no precision is lost in subsequent fee calculations.
// Non-finite or negative values map to a zero rate.
func SatPerVByteFromFloat(rate float64) SatPerVByte {
	if math.IsNaN(rate) || math.IsInf(rate, 0) || rate < 0 {
		return ZeroSatPerVByte
	}

	// SetFloat64 captures the exact binary value of the float.
	perVByte := new(big.Rat).SetFloat64(rate)

	// Convert sat/vb to sat/kwu: multiply by 1000 and divide by the
	// witness scale factor (4 wu per vbyte).
	perKWU := new(big.Rat).Mul(
		perVByte, big.NewRat(kilo, blockchain.WitnessScaleFactor),
	)

	return SatPerVByte{satsPerKWU: perKWU}
}

// FeeForVByte calculates the fee resulting from this fee rate and the given
// size in vbytes, rounding down (truncating) to the nearest satoshi.
func (s SatPerVByte) FeeForVByte(vb VByte) btcutil.Amount {
	fee := s.feeRational(vb)

	// Perform integer division to truncate the result.
	quotient := new(big.Int).Div(fee.Num(), fee.Denom())

	return btcutil.Amount(quotient.Int64())
}

// FeeForVByteRoundUp calculates the fee resulting from this fee rate and the
// given size in vbytes, rounding up to the nearest satoshi. This is the
// variant used when a transaction must never be underfunded.
func (s SatPerVByte) FeeForVByteRoundUp(vb VByte) btcutil.Amount {
	fee := s.feeRational(vb)

	return ceilRat(fee)
}

// feeRational multiplies the rate by the given size, producing the exact fee
// as a rational number of satoshis.
func (s SatPerVByte) feeRational(vb VByte) *big.Rat {
	// The fee rate is stored as satoshis per kilo-weight-unit, so the fee
	// is rate * size_in_wu / 1000.
	return new(big.Rat).Mul(
		s.satsPerKWU,
		big.NewRat(safeUint64ToInt64(vb.wu), kilo),
	)
}

// String returns a human-readable string of the fee rate.
func (s SatPerVByte) String() string {
	// Convert the canonical sat/kwu back to sat/vb using the witness
	// scale factor (4) and the kilo scaling.
	perVByte := new(big.Rat).Mul(
		s.satsPerKWU,
		big.NewRat(blockchain.WitnessScaleFactor, kilo),
	)

	return perVByte.FloatString(floatStringPrecision) + " sat/vb"
}

// Equal returns true if the fee rate is equal to the other fee rate.
func (s SatPerVByte) Equal(other SatPerVByte) bool {
	return s.satsPerKWU.Cmp(other.satsPerKWU) == 0
}

// GreaterThan returns true if the fee rate is greater than the other fee
// rate.
func (s SatPerVByte) GreaterThan(other SatPerVByte) bool {
	return s.satsPerKWU.Cmp(other.satsPerKWU) > 0
}

// LessThanOrEqual returns true if the fee rate is less than or equal to the
// other fee rate.
func (s SatPerVByte) LessThanOrEqual(other SatPerVByte) bool {
	return s.satsPerKWU.Cmp(other.satsPerKWU) <= 0
}

// ScaleAmountRoundUp multiplies an amount by the ratio num/denom and rounds
// the result up to the nearest satoshi. It is used to apply multiplicative
// buffers (e.g. a 10% safety margin expressed as 11/10) with exact rational
// arithmetic.
func ScaleAmountRoundUp(amt btcutil.Amount, num, denom int64) btcutil.Amount {
	scaled := new(big.Rat).Mul(
		big.NewRat(int64(amt), 1), big.NewRat(num, denom),
	)

	return ceilRat(scaled)
}

// ceilRat returns the ceiling of a rational number as an Amount, using the
// formula (numerator + denominator - 1) / denominator.
func ceilRat(r *big.Rat) btcutil.Amount {
	result := new(big.Int).Add(r.Num(), r.Denom())
	result.Sub(result, big.NewInt(1))
	result.Div(result, r.Denom())

	return btcutil.Amount(result.Int64())
}

// safeUint64ToInt64 converts a uint64 to an int64, capping at math.MaxInt64.
// In practice the values being converted are transaction sizes, which are
// limited by consensus rules and are not expected to overflow an int64.
func safeUint64ToInt64(u uint64) int64 {
	if u > math.MaxInt64 {
		slog.Warn("Capping uint64 value to math.MaxInt64",
			slog.Uint64("old", u), slog.Int64("new", math.MaxInt64))

		return math.MaxInt64
	}

	return int64(u)
}
