////////////////////////////////////////////////////////////////////////////////
// Copyright © 2022 xx foundation                                             //
//                                                                            //
// Use of this source code is governed by a license that can be found in the  //
// LICENSE file.                                                              //
////////////////////////////////////////////////////////////////////////////////

// Package semidirect implements the semidirect product of bit-set matrices
// and permutations, and exponentiation in it.
//
// The product of (M, h) and (M', h') is (h'(M)·M', h∘h'), where h'(M)
// reindexes every entry of M by h'. Reindexing by g and then by f equals
// reindexing by g∘f, so the product is associative and powers of a single
// element commute: x^a·x^b = x^b·x^a = x^(a+b).
package semidirect

import (
	"github.com/pkg/errors"
	jww "github.com/spf13/jwalterweatherman"
	"gitlab.com/elixxir/mobs/bitset"
	"gitlab.com/elixxir/mobs/matrix"
	"gitlab.com/elixxir/mobs/permutation"
)

// Element is an immutable (matrix, permutation) pair over one universe.
type Element struct {
	M matrix.Matrix
	H permutation.Permutation
}

// New pairs m and h, which must act on the same universe.
func New(m matrix.Matrix, h permutation.Permutation) (Element, error) {
	if m.Universe() != h.Len() {
		return Element{}, errors.Errorf("matrix over a universe of size %d "+
			"cannot be paired with a permutation of %d elements",
			m.Universe(), h.Len())
	}
	return Element{M: m, H: h}, nil
}

// Identity returns the neutral element (identity matrix, identity
// permutation).
func Identity(n int) Element {
	return Element{M: matrix.Identity(n), H: permutation.Identity(n)}
}

// Universe returns the universe size of the element.
func (x Element) Universe() int {
	return x.M.Universe()
}

// Combine returns the product x·y = (y.H(x.M)·y.M, x.H∘y.H). It is not
// commutative.
func (x Element) Combine(y Element) Element {
	if x.Universe() != y.Universe() {
		jww.FATAL.Panicf("Cannot combine elements over universes of size "+
			"%d and %d", x.Universe(), y.Universe())
	}
	return Element{
		M: permuteEachCell(x.M, y.H).Multiply(y.M),
		H: x.H.Compose(y.H),
	}
}

// Equal reports whether both components match.
func (x Element) Equal(y Element) bool {
	return x.M.Equal(y.M) && x.H.Equal(y.H)
}

// permuteEachCell reindexes every entry of m by h.
func permuteEachCell(m matrix.Matrix, h permutation.Permutation) matrix.Matrix {
	return m.Map(func(b bitset.BitSet) bitset.BitSet {
		return h.Apply(b)
	})
}
