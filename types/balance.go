package types

import (
	"errors"
	"fmt"

	"github.com/holiman/uint256"
)

// Decimals is the number of base-unit decimals the KRAT token uses.
const Decimals = 12

// balanceWidth is the fixed canonical encoding width of a Balance: the
// spec defines it as an unsigned 128-bit integer, i.e. 16 bytes, even
// though the backing uint256.Int has 256 bits of headroom.
const balanceWidth = 16

var maxBalance = func() *uint256.Int {
	max := new(uint256.Int).SetAllOne()
	// Clear the top 128 bits so the value never exceeds 2**128 - 1.
	shifted := new(uint256.Int).Rsh(max, 128)
	shifted.Lsh(shifted, 128)
	max.Sub(max, shifted)
	return max
}()

// Balance is an unsigned 128-bit integer in base units, backed by
// holiman/uint256 for overflow-checked, allocation-free arithmetic.
type Balance struct {
	v uint256.Int
}

// ZeroBalance is the additive identity.
var ZeroBalance = Balance{}

// NewBalance builds a Balance from a uint64 count of base units.
func NewBalance(units uint64) Balance {
	var b Balance
	b.v.SetUint64(units)
	return b
}

// KRAT builds a Balance from a whole-KRAT amount (i.e. `n * 10^Decimals`
// base units).
func KRAT(n uint64) Balance {
	unit := uint256.NewInt(n)
	scale := uint256.NewInt(1)
	for i := 0; i < Decimals; i++ {
		scale.Mul(scale, uint256.NewInt(10))
	}
	unit.Mul(unit, scale)
	return Balance{v: *unit}
}

// BalanceFromBytes decodes a big-endian, 16-byte-or-shorter encoding.
func BalanceFromBytes(b []byte) (Balance, error) {
	if len(b) > balanceWidth {
		return Balance{}, errors.New("types: balance encoding wider than 128 bits")
	}
	var bal Balance
	bal.v.SetBytes(b)
	return bal, nil
}

// Bytes returns the canonical fixed-width (16 byte, big-endian)
// encoding used inside hashed/signed payloads.
func (b Balance) Bytes() []byte {
	return b.v.PaddedBytes(balanceWidth)
}

func (b Balance) String() string { return b.v.ToBig().String() }

func (b Balance) IsZero() bool { return b.v.IsZero() }

func (b Balance) Cmp(other Balance) int { return b.v.Cmp(&other.v) }

func (b Balance) LessThan(other Balance) bool { return b.Cmp(other) < 0 }

func (b Balance) GreaterOrEqual(other Balance) bool { return b.Cmp(other) >= 0 }

// Add returns b+other, erroring on overflow past 128 bits.
func (b Balance) Add(other Balance) (Balance, error) {
	var sum uint256.Int
	sum.Add(&b.v, &other.v)
	if sum.Cmp(maxBalance) > 0 {
		return Balance{}, fmt.Errorf("types: balance overflow adding %s + %s", b, other)
	}
	return Balance{v: sum}, nil
}

// Sub returns b-other, erroring if it would go negative.
func (b Balance) Sub(other Balance) (Balance, error) {
	if b.Cmp(other) < 0 {
		return Balance{}, fmt.Errorf("types: balance underflow subtracting %s - %s", b, other)
	}
	var diff uint256.Int
	diff.Sub(&b.v, &other.v)
	return Balance{v: diff}, nil
}

// MustAdd panics on overflow; reserved for contexts (tests, constants)
// where overflow would indicate a programmer error, never bad input.
func (b Balance) MustAdd(other Balance) Balance {
	r, err := b.Add(other)
	if err != nil {
		panic(err)
	}
	return r
}

// MulBasisPoints computes floor(b * bps / 10_000) using 256-bit
// intermediates so the multiply never overflows before the divide,
// the integer-math rule slashing and fee splitting both depend on.
func (b Balance) MulBasisPoints(bps uint64) Balance {
	product := new(uint256.Int).Mul(&b.v, uint256.NewInt(bps))
	product.Div(product, uint256.NewInt(10_000))
	return Balance{v: *product}
}

// Uint64 returns the low 64 bits, valid only when the caller knows the
// value fits (test fixtures, small constants).
func (b Balance) Uint64() uint64 { return b.v.Uint64() }

// MulUint64 returns b*n exactly (no implicit division), erroring on
// overflow past 128 bits. Used for cross-multiplying ratio comparisons
// (governance quorum/threshold checks) without ever touching floats.
func (b Balance) MulUint64(n uint64) (Balance, error) {
	product := new(uint256.Int).Mul(&b.v, uint256.NewInt(n))
	if product.Cmp(maxBalance) > 0 {
		return Balance{}, fmt.Errorf("types: balance overflow multiplying %s * %d", b, n)
	}
	return Balance{v: *product}, nil
}

// GobEncode/GobDecode let encoding/gob (used by the persisted store
// layer, never by the canonical wire/hash format) round-trip a
// Balance despite its unexported backing field; without them gob
// silently drops every Balance to zero instead of erroring.
func (b Balance) GobEncode() ([]byte, error) { return b.Bytes(), nil }

func (b *Balance) GobDecode(data []byte) error {
	v, err := BalanceFromBytes(data)
	if err != nil {
		return err
	}
	*b = v
	return nil
}

// DivUint64 returns floor(b/n); dividing by zero returns the zero
// balance rather than panicking, since every caller treats a
// zero-denominator config as "no reward this period" rather than a
// programmer error.
func (b Balance) DivUint64(n uint64) Balance {
	if n == 0 {
		return ZeroBalance
	}
	var q uint256.Int
	q.Div(&b.v, uint256.NewInt(n))
	return Balance{v: q}
}
