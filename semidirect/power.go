////////////////////////////////////////////////////////////////////////////////
// Copyright © 2022 xx foundation                                             //
//                                                                            //
// Use of this source code is governed by a license that can be found in the  //
// LICENSE file.                                                              //
////////////////////////////////////////////////////////////////////////////////

package semidirect

import (
	"math/big"

	"github.com/pkg/errors"
	jww "github.com/spf13/jwalterweatherman"
)

// Power returns x^k by square-and-multiply over Combine, walking the bits of
// k from the most significant. x^0 is the identity.
func (x Element) Power(k *big.Int) Element {
	checkExponent(k)

	top := k.BitLen() - 1
	if top < 0 {
		return Identity(x.Universe())
	}

	// the leading bit is always 1; squaring the identity is skipped
	acc := x
	for i := top - 1; i >= 0; i-- {
		acc = acc.Combine(acc)
		if k.Bit(i) == 1 {
			acc = acc.Combine(x)
		}
	}
	return acc
}

// PowerTable holds x^(2^i) for every bit position i below its width, so
// powers of one base can be computed without repeated squaring.
type PowerTable struct {
	base   Element
	powers []Element
}

// NewPowerTable precomputes base^(2^i) for i < bits.
func NewPowerTable(base Element, bits int) (*PowerTable, error) {
	if bits < 1 {
		return nil, errors.Errorf("power table must cover at least one bit, "+
			"got %d", bits)
	}

	powers := make([]Element, bits)
	powers[0] = base
	for i := 1; i < bits; i++ {
		powers[i] = powers[i-1].Combine(powers[i-1])
	}
	jww.DEBUG.Printf("Built power table of %d entries over a universe of "+
		"size %d", bits, base.Universe())

	return &PowerTable{base: base, powers: powers}, nil
}

// Base returns the element the table was built from.
func (t *PowerTable) Base() Element {
	return t.base
}

// Bits returns the widest exponent, in bits, the table supports.
func (t *PowerTable) Bits() int {
	return len(t.powers)
}

// Power returns base^k by combining the table entries of the set bits of k,
// least significant first. It equals base.Power(k) for every k the table
// covers.
func (t *PowerTable) Power(k *big.Int) (Element, error) {
	checkExponent(k)
	if k.BitLen() > len(t.powers) {
		return Element{}, errors.Errorf("exponent of %d bits exceeds "+
			"power table of %d bits", k.BitLen(), len(t.powers))
	}

	var acc Element
	started := false
	for i := 0; i < k.BitLen(); i++ {
		if k.Bit(i) == 0 {
			continue
		}
		if !started {
			acc, started = t.powers[i], true
			continue
		}
		acc = acc.Combine(t.powers[i])
	}

	if !started {
		return Identity(t.base.Universe()), nil
	}
	return acc, nil
}

func checkExponent(k *big.Int) {
	if k == nil || k.Sign() < 0 {
		jww.FATAL.Panicf("Exponent must be a non-negative integer, got %v", k)
	}
}
