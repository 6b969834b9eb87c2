// Package domain holds the core trading types shared by every stage of the
// pipeline: symbols, orders, quotes, trades, positions, and the fixed-point
// money helpers they are built on.
//
// All prices and quantities are integers. A price is carried in an
// instrument's minor units (cents for equities, 1e-8 units for crypto) and
// never mixed with a float. Notional (quantity * price) can overflow a
// plain int64 for large crypto quantities at 8-decimal scale, so Notional
// multiplies through a 128-bit intermediate via math/bits.
package domain

import "math/bits"

// PriceScale is the number of minor-unit subdivisions per major unit for a
// symbol, e.g. 100 for cents on an equity, 100_000_000 for 8-decimal crypto.
type PriceScale int64

const (
	ScaleCents  PriceScale = 100
	ScaleCrypto PriceScale = 100_000_000
)

// Notional computes qty * price using a 128-bit intermediate product so
// that large crypto-scale quantities never silently wrap. It panics if the
// true product does not fit back into an int64 (the core never needs
// products larger than that; a panic here means a caller passed a
// nonsensical order size and should be caught upstream by risk checks).
func Notional(qty, price int64) int64 {
	neg := false
	if qty < 0 {
		qty = -qty
		neg = !neg
	}
	if price < 0 {
		price = -price
		neg = !neg
	}
	hi, lo := bits.Mul64(uint64(qty), uint64(price))
	if hi != 0 || lo > uint64(1<<63-1) {
		panic("domain: notional overflows int64")
	}
	result := int64(lo)
	if neg {
		result = -result
	}
	return result
}

// SignOf returns +1, -1, or 0 for a positive, negative, or zero quantity.
func SignOf(qty int64) int64 {
	switch {
	case qty > 0:
		return 1
	case qty < 0:
		return -1
	default:
		return 0
	}
}

// AbsInt64 returns the absolute value of v.
func AbsInt64(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}

// MinInt64 returns the smaller of a and b.
func MinInt64(a, b int64) int64 {
	if a < b {
		return a
	}
	return b
}

// MaxInt64 returns the larger of a and b.
func MaxInt64(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}

// ClampInt64 restricts v to [lo, hi].
func ClampInt64(v, lo, hi int64) int64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
