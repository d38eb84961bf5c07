////////////////////////////////////////////////////////////////////////////////
// Copyright © 2022 xx foundation                                             //
//                                                                            //
// Use of this source code is governed by a license that can be found in the  //
// LICENSE file.                                                              //
////////////////////////////////////////////////////////////////////////////////

package matrix

import (
	"math/big"
	"strings"
	"testing"

	"gitlab.com/elixxir/mobs/bitset"
	"gitlab.com/elixxir/mobs/rng"
)

func randomMatrix(t *testing.T, n int, seed string) Matrix {
	src, err := rng.NewSeeded([]byte(seed))
	if err != nil {
		t.Fatalf("Failed to create seeded source: %+v", err)
	}
	m, err := Random(n, src)
	if err != nil {
		t.Fatalf("Failed to generate matrix: %+v", err)
	}
	return m
}

// Tests that the identity is a two-sided identity.
func TestIdentity_TwoSided(t *testing.T) {
	for _, n := range []int{1, 8, 200} {
		a := randomMatrix(t, n, "identity")
		id := Identity(n)
		if !a.Multiply(id).Equal(a) {
			t.Errorf("A·I != A for n=%d", n)
		}
		if !id.Multiply(a).Equal(a) {
			t.Errorf("I·A != A for n=%d", n)
		}
	}
}

// Tests associativity of the semiring product.
func TestMatrix_Multiply_Associative(t *testing.T) {
	for i := 0; i < 20; i++ {
		src, _ := rng.NewSeeded([]byte{byte(i), 'a'})
		a, _ := Random(67, src)
		b, _ := Random(67, src)
		c, _ := Random(67, src)

		left := a.Multiply(b).Multiply(c)
		right := a.Multiply(b.Multiply(c))
		if !left.Equal(right) {
			t.Fatalf("(AB)C != A(BC) on trial %d\n(AB)C:\n%s\nA(BC):\n%s",
				i, left, right)
		}
	}
}

// Tests one product entry against the definition.
func TestMatrix_Multiply_Entry(t *testing.T) {
	a := randomMatrix(t, 40, "entry-a")
	b := randomMatrix(t, 40, "entry-b")
	c := a.Multiply(b)

	for i := 0; i < Size; i++ {
		for j := 0; j < Size; j++ {
			expected := bitset.New(40)
			for k := 0; k < Size; k++ {
				expected = expected.Or(a.Cell(i, k).And(b.Cell(k, j)))
			}
			if !c.Cell(i, j).Equal(expected) {
				t.Errorf("Entry (%d,%d) mismatch.\nexpected: %s\nreceived: %s",
					i+1, j+1, expected, c.Cell(i, j))
			}
		}
	}
}

// Tests that Multiply leaves its operands untouched.
func TestMatrix_Multiply_Immutable(t *testing.T) {
	a := randomMatrix(t, 30, "immutable")
	before := a.String()
	_ = a.Multiply(a)
	if a.String() != before {
		t.Errorf("Multiply modified its operand")
	}
}

// Tests Power against repeated multiplication, including k = 0 and 1.
func TestMatrix_Power(t *testing.T) {
	a := randomMatrix(t, 50, "power")
	expected := Identity(50)
	for k := int64(0); k < 40; k++ {
		received := a.Power(big.NewInt(k))
		if !received.Equal(expected) {
			t.Fatalf("A^%d does not match repeated multiplication", k)
		}
		expected = expected.Multiply(a)
	}
}

// Error path: a negative exponent panics.
func TestMatrix_Power_Negative(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Errorf("Power did not panic on a negative exponent")
		}
	}()
	Identity(4).Power(big.NewInt(-1))
}

// Error path: multiplying matrices over different universes panics.
func TestMatrix_Multiply_Mismatch(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Errorf("Multiply did not panic on mismatched universes")
		}
	}()
	Identity(4).Multiply(Identity(5))
}

// Tests that seeded generation is reproducible.
func TestRandom_Deterministic(t *testing.T) {
	a := randomMatrix(t, 8, "seed")
	b := randomMatrix(t, 8, "seed")
	if !a.Equal(b) {
		t.Errorf("Seeded matrices differ:\n%s\n%s", a, b)
	}
	if a.Universe() != 8 {
		t.Errorf("Universe mismatch: expected 8, received %d", a.Universe())
	}
}

// Tests the diagnostic rendering.
func TestMatrix_String(t *testing.T) {
	s := Identity(4).String()
	lines := strings.Split(strings.TrimSpace(s), "\n")
	if len(lines) != Size*Size {
		t.Fatalf("Expected %d lines, received %d", Size*Size, len(lines))
	}
	if lines[0] != "Entry (1,1): 1111" {
		t.Errorf("Unexpected first line: %q", lines[0])
	}
	if lines[1] != "Entry (1,2): 0000" {
		t.Errorf("Unexpected second line: %q", lines[1])
	}
}

// Tests Zeros and Bit access on the identity.
func TestMatrix_Zeros_Bit(t *testing.T) {
	id := Identity(10)
	if id.Zeros() != 6*10 {
		t.Errorf("Identity has %d zeros, expected %d", id.Zeros(), 60)
	}
	if !id.Bit(1, 1, 9) || id.Bit(0, 2, 0) {
		t.Errorf("Bit access does not match the identity")
	}
}

// Tests FromCells validation.
func TestFromCells(t *testing.T) {
	a := randomMatrix(t, 12, "cells")
	var cells [Size][Size]bitset.BitSet
	for i := 0; i < Size; i++ {
		for j := 0; j < Size; j++ {
			cells[i][j] = a.Cell(i, j)
		}
	}
	b, err := FromCells(cells)
	if err != nil {
		t.Fatalf("FromCells returned an error: %+v", err)
	}
	if !a.Equal(b) {
		t.Errorf("FromCells did not reproduce the matrix")
	}

	cells[2][1] = bitset.New(11)
	if _, err = FromCells(cells); err == nil {
		t.Errorf("FromCells accepted cells of mixed length")
	}
}
