////////////////////////////////////////////////////////////////////////////////
// Copyright © 2022 xx foundation                                             //
//                                                                            //
// Use of this source code is governed by a license that can be found in the  //
// LICENSE file.                                                              //
////////////////////////////////////////////////////////////////////////////////

// Package bitset implements fixed length bit vectors representing subsets of
// the universe {0,...,N-1}. A BitSet is an immutable value: every operation
// returns a new BitSet and never modifies its operands.
package bitset

import (
	"io"
	"math/bits"
	"strings"

	"github.com/pkg/errors"
	jww "github.com/spf13/jwalterweatherman"
	"gitlab.com/elixxir/mobs/rng"
)

const wordSize = 64

// BitSet is a subset of {0,...,n-1}. Bit i is set when i is in the subset.
type BitSet struct {
	n     int
	words []uint64
}

// New returns the empty subset of a universe of size n.
func New(n int) BitSet {
	if n < 1 {
		jww.FATAL.Panicf("Cannot create a bit set over a universe of size %d", n)
	}
	return BitSet{n: n, words: make([]uint64, numWords(n))}
}

// Full returns the subset containing the whole universe of size n.
func Full(n int) BitSet {
	b := New(n)
	for i := range b.words {
		b.words[i] = ^uint64(0)
	}
	b.words[len(b.words)-1] &= tailMask(n)
	return b
}

// Random draws a uniformly random subset of {0,...,n-1} from src. The source
// must be cryptographically secure outside of tests since these sets seed the
// protocol's public element.
func Random(n int, src io.Reader) (BitSet, error) {
	if n < 1 {
		return BitSet{}, errors.Errorf("cannot generate a bit set over a "+
			"universe of size %d", n)
	}

	buf := make([]byte, (n+7)/8)
	if err := rng.ReadFull(src, buf); err != nil {
		return BitSet{}, err
	}

	b := New(n)
	for i, v := range buf {
		b.words[i/8] |= uint64(v) << (8 * uint(i%8))
	}
	b.words[len(b.words)-1] &= tailMask(n)
	return b, nil
}

// Parse reads a bit string in the format produced by String. Position 0 is
// the leftmost character.
func Parse(s string) (BitSet, error) {
	if len(s) == 0 {
		return BitSet{}, errors.New("cannot parse an empty bit string")
	}
	b := New(len(s))
	for i, c := range s {
		switch c {
		case '1':
			b.words[i/wordSize] |= 1 << uint(i%wordSize)
		case '0':
		default:
			return BitSet{}, errors.Errorf("invalid character %q at "+
				"position %d of bit string", c, i)
		}
	}
	return b, nil
}

// Len returns the universe size of the set.
func (b BitSet) Len() int {
	return b.n
}

// Bit reports whether i is in the set.
func (b BitSet) Bit(i int) bool {
	if i < 0 || i >= b.n {
		jww.FATAL.Panicf("Bit index %d outside of universe of size %d", i, b.n)
	}
	return b.words[i/wordSize]&(1<<uint(i%wordSize)) != 0
}

// And returns the intersection of b and o.
func (b BitSet) And(o BitSet) BitSet {
	b.check(o)
	out := New(b.n)
	for i := range out.words {
		out.words[i] = b.words[i] & o.words[i]
	}
	return out
}

// Or returns the union of b and o.
func (b BitSet) Or(o BitSet) BitSet {
	b.check(o)
	out := New(b.n)
	for i := range out.words {
		out.words[i] = b.words[i] | o.words[i]
	}
	return out
}

// Equal reports whether b and o are the same subset of the same universe.
func (b BitSet) Equal(o BitSet) bool {
	if b.n != o.n {
		return false
	}
	for i := range b.words {
		if b.words[i] != o.words[i] {
			return false
		}
	}
	return true
}

// Count returns the number of elements in the set.
func (b BitSet) Count() int {
	c := 0
	for _, w := range b.words {
		c += bits.OnesCount64(w)
	}
	return c
}

// Zeros returns the number of universe elements missing from the set.
func (b BitSet) Zeros() int {
	return b.n - b.Count()
}

// String renders the set as a bit string of length Len, position 0 first.
func (b BitSet) String() string {
	var sb strings.Builder
	sb.Grow(b.n)
	for i := 0; i < b.n; i++ {
		if b.words[i/wordSize]&(1<<uint(i%wordSize)) != 0 {
			sb.WriteByte('1')
		} else {
			sb.WriteByte('0')
		}
	}
	return sb.String()
}

// SumOfProducts returns the union over k of a[k] ∩ c[k]. This is a single
// cell of a product over the (union, intersection) semiring and is computed
// without intermediate sets.
func SumOfProducts(a, c []BitSet) BitSet {
	if len(a) != len(c) || len(a) == 0 {
		jww.FATAL.Panicf("Cannot combine %d sets with %d sets", len(a), len(c))
	}
	out := New(a[0].n)
	for k := range a {
		a[k].check(out)
		c[k].check(out)
		for i := range out.words {
			out.words[i] |= a[k].words[i] & c[k].words[i]
		}
	}
	return out
}

// Gather returns the set whose bit i is bit index[i] of b.
func (b BitSet) Gather(index []int) BitSet {
	if len(index) != b.n {
		jww.FATAL.Panicf("Cannot reindex a set of size %d with %d indices",
			b.n, len(index))
	}
	out := New(b.n)
	for i, src := range index {
		if b.words[src/wordSize]&(1<<uint(src%wordSize)) != 0 {
			out.words[i/wordSize] |= 1 << uint(i%wordSize)
		}
	}
	return out
}

func (b BitSet) check(o BitSet) {
	if b.n != o.n {
		jww.FATAL.Panicf("Universe size mismatch: %d != %d", b.n, o.n)
	}
}

func numWords(n int) int {
	return (n + wordSize - 1) / wordSize
}

// tailMask clears the unused high bits of the last word.
func tailMask(n int) uint64 {
	r := uint(n % wordSize)
	if r == 0 {
		return ^uint64(0)
	}
	return (1 << r) - 1
}
