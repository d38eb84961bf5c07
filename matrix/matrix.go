////////////////////////////////////////////////////////////////////////////////
// Copyright © 2022 xx foundation                                             //
//                                                                            //
// Use of this source code is governed by a license that can be found in the  //
// LICENSE file.                                                              //
////////////////////////////////////////////////////////////////////////////////

// Package matrix implements square matrices over bit sets, multiplied over
// the semiring whose addition is union and whose multiplication is
// intersection.
package matrix

import (
	"fmt"
	"io"
	"math/big"
	"strings"

	"github.com/pkg/errors"
	jww "github.com/spf13/jwalterweatherman"
	"gitlab.com/elixxir/mobs/bitset"
)

// Size is the number of rows and columns of every matrix.
const Size = 3

// Matrix is an immutable Size×Size grid of bit sets over one universe.
type Matrix struct {
	n     int
	cells [Size][Size]bitset.BitSet
}

// Identity returns the multiplicative identity: full sets on the diagonal and
// empty sets elsewhere.
func Identity(n int) Matrix {
	m := Matrix{n: n}
	for i := 0; i < Size; i++ {
		for j := 0; j < Size; j++ {
			if i == j {
				m.cells[i][j] = bitset.Full(n)
			} else {
				m.cells[i][j] = bitset.New(n)
			}
		}
	}
	return m
}

// Random fills every cell with a uniformly random subset of {0,...,n-1}.
func Random(n int, src io.Reader) (Matrix, error) {
	m := Matrix{n: n}
	for i := 0; i < Size; i++ {
		for j := 0; j < Size; j++ {
			cell, err := bitset.Random(n, src)
			if err != nil {
				return Matrix{}, errors.WithMessagef(err,
					"failed to generate entry (%d,%d)", i+1, j+1)
			}
			m.cells[i][j] = cell
		}
	}
	return m, nil
}

// FromCells builds a matrix from its cells, which must share one universe.
func FromCells(cells [Size][Size]bitset.BitSet) (Matrix, error) {
	n := cells[0][0].Len()
	if n < 1 {
		return Matrix{}, errors.New("matrix entry (1,1) is empty")
	}
	for i := 0; i < Size; i++ {
		for j := 0; j < Size; j++ {
			if cells[i][j].Len() != n {
				return Matrix{}, errors.Errorf("entry (%d,%d) has length %d, "+
					"expected %d", i+1, j+1, cells[i][j].Len(), n)
			}
		}
	}
	return Matrix{n: n, cells: cells}, nil
}

// Universe returns the length of every cell.
func (a Matrix) Universe() int {
	return a.n
}

// Cell returns the entry at row i, column j (0-based).
func (a Matrix) Cell(i, j int) bitset.BitSet {
	return a.cells[i][j]
}

// Bit reports whether element k is in the entry at row i, column j.
func (a Matrix) Bit(i, j, k int) bool {
	return a.cells[i][j].Bit(k)
}

// Multiply returns a·b, where entry (i,j) is the union over k of
// a[i][k] ∩ b[k][j]. Multiplication is associative but not commutative.
func (a Matrix) Multiply(b Matrix) Matrix {
	if a.n != b.n {
		jww.FATAL.Panicf("Cannot multiply matrices over universes of size "+
			"%d and %d", a.n, b.n)
	}

	out := Matrix{n: a.n}
	var row, col [Size]bitset.BitSet
	for i := 0; i < Size; i++ {
		row = a.cells[i]
		for j := 0; j < Size; j++ {
			for k := 0; k < Size; k++ {
				col[k] = b.cells[k][j]
			}
			out.cells[i][j] = bitset.SumOfProducts(row[:], col[:])
		}
	}
	return out
}

// Power returns a^k by square-and-multiply over the bits of k, most
// significant first. a^0 is the identity.
func (a Matrix) Power(k *big.Int) Matrix {
	if k == nil || k.Sign() < 0 {
		jww.FATAL.Panicf("Matrix exponent must be non-negative, got %v", k)
	}

	acc := Identity(a.n)
	for i := k.BitLen() - 1; i >= 0; i-- {
		acc = acc.Multiply(acc)
		if k.Bit(i) == 1 {
			acc = acc.Multiply(a)
		}
	}
	return acc
}

// Map returns the matrix whose entries are f applied to the entries of a.
// f must preserve the universe size.
func (a Matrix) Map(f func(bitset.BitSet) bitset.BitSet) Matrix {
	out := Matrix{n: a.n}
	for i := 0; i < Size; i++ {
		for j := 0; j < Size; j++ {
			out.cells[i][j] = f(a.cells[i][j])
			if out.cells[i][j].Len() != a.n {
				jww.FATAL.Panicf("Cell transform changed universe size "+
					"from %d to %d", a.n, out.cells[i][j].Len())
			}
		}
	}
	return out
}

// Equal reports whether every entry of a equals the matching entry of b.
func (a Matrix) Equal(b Matrix) bool {
	if a.n != b.n {
		return false
	}
	for i := 0; i < Size; i++ {
		for j := 0; j < Size; j++ {
			if !a.cells[i][j].Equal(b.cells[i][j]) {
				return false
			}
		}
	}
	return true
}

// Zeros counts the zero bits across all entries.
func (a Matrix) Zeros() int {
	zeros := 0
	for i := 0; i < Size; i++ {
		for j := 0; j < Size; j++ {
			zeros += a.cells[i][j].Zeros()
		}
	}
	return zeros
}

// String renders one line per entry, labelled by its 1-based position.
func (a Matrix) String() string {
	var sb strings.Builder
	for i := 0; i < Size; i++ {
		for j := 0; j < Size; j++ {
			fmt.Fprintf(&sb, "Entry (%d,%d): %s\n", i+1, j+1, a.cells[i][j])
		}
	}
	return sb.String()
}
