////////////////////////////////////////////////////////////////////////////////
// Copyright © 2022 xx foundation                                             //
//                                                                            //
// Use of this source code is governed by a license that can be found in the  //
// LICENSE file.                                                              //
////////////////////////////////////////////////////////////////////////////////

// Package permutation builds and composes permutations of the universe
// {0,...,N-1} and applies them to bit sets.
package permutation

import (
	"io"
	"math/big"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	jww "github.com/spf13/jwalterweatherman"
	"gitlab.com/elixxir/mobs/bitset"
	"gitlab.com/elixxir/mobs/rng"
)

// Permutation is an immutable bijection on {0,...,n-1}; element i maps to
// p[i].
type Permutation struct {
	p []int
}

// Identity returns the identity permutation of {0,...,n-1}.
func Identity(n int) Permutation {
	if n < 1 {
		jww.FATAL.Panicf("Cannot create a permutation of an empty domain")
	}
	p := make([]int, n)
	for i := range p {
		p[i] = i
	}
	return Permutation{p}
}

// New builds a permutation from its image array. The mapping is copied.
func New(mapping []int) (Permutation, error) {
	if len(mapping) == 0 {
		return Permutation{}, errors.New("cannot create a permutation of " +
			"an empty domain")
	}
	seen := make([]bool, len(mapping))
	for i, v := range mapping {
		if v < 0 || v >= len(mapping) {
			return Permutation{}, errors.Errorf("image %d of %d is outside "+
				"of the domain [0, %d)", v, i, len(mapping))
		}
		if seen[v] {
			return Permutation{}, errors.Errorf("%d is the image of more "+
				"than one element", v)
		}
		seen[v] = true
	}
	return Permutation{append([]int{}, mapping...)}, nil
}

// FromCycles builds the product of the given disjoint cycles on
// {0,...,n-1}. A cycle (a b c) maps a to b, b to c and c to a.
func FromCycles(n int, cycles [][]int) (Permutation, error) {
	if n < 1 {
		return Permutation{}, errors.New("cannot create a permutation of " +
			"an empty domain")
	}
	p := Identity(n).p
	used := make([]bool, n)
	for _, cycle := range cycles {
		for idx, v := range cycle {
			if v < 0 || v >= n {
				return Permutation{}, errors.Errorf("cycle element %d is "+
					"outside of the domain [0, %d)", v, n)
			}
			if used[v] {
				return Permutation{}, errors.Errorf("cycles are not "+
					"disjoint, %d appears twice", v)
			}
			used[v] = true
			p[v] = cycle[(idx+1)%len(cycle)]
		}
	}
	return Permutation{p}, nil
}

// Generate draws a random permutation of {0,...,n-1} whose cycle lengths
// are the ones chosen by SieveCycleLengths. Domains of size 2 and 3 get a
// single cycle through a random ordering of the domain.
func Generate(n int, src io.Reader) (Permutation, error) {
	if n < 1 {
		return Permutation{}, errors.New("cannot generate a permutation of " +
			"an empty domain")
	}

	shuffled := Identity(n).p
	if err := rng.Shuffle(src, shuffled); err != nil {
		return Permutation{}, errors.WithMessage(err,
			"failed to shuffle permutation domain")
	}

	if n == 2 || n == 3 {
		return FromCycles(n, [][]int{shuffled})
	}

	lengths := SieveCycleLengths(n)
	cycles := make([][]int, 0, len(lengths))
	start := 0
	for _, l := range lengths {
		cycles = append(cycles, shuffled[start:start+l])
		start += l
	}
	return FromCycles(n, cycles)
}

// SieveCycleLengths chooses the cycle lengths used by Generate. Candidate
// lengths 2..n-1 are scanned in increasing order as in the sieve of
// Eratosthenes: an unmarked candidate is chosen and its multiples below n
// are marked. Scanning stops once the chosen lengths sum to at least n, and
// the last length is dropped if the sum overshoots n.
func SieveCycleLengths(n int) []int {
	if n < 2 {
		return nil
	}

	marked := make([]bool, n)
	var lengths []int
	sum := 0
	for l := 2; sum < n && l < n; l++ {
		if marked[l] {
			continue
		}
		for m := 2 * l; m < n; m += l {
			marked[m] = true
		}
		lengths = append(lengths, l)
		sum += l
	}

	if sum > n {
		lengths = lengths[:len(lengths)-1]
	}
	return lengths
}

// Len returns the size of the domain.
func (p Permutation) Len() int {
	return len(p.p)
}

// At returns the image of i.
func (p Permutation) At(i int) int {
	return p.p[i]
}

// Mapping returns a copy of the image array.
func (p Permutation) Mapping() []int {
	return append([]int{}, p.p...)
}

// Compose returns p∘q, the permutation applying q first and then p:
// r[i] = p[q[i]].
func (p Permutation) Compose(q Permutation) Permutation {
	p.check(q.Len())
	r := make([]int, len(p.p))
	for i, qi := range q.p {
		r[i] = p.p[qi]
	}
	return Permutation{r}
}

// Inverse returns the permutation undoing p.
func (p Permutation) Inverse() Permutation {
	inv := make([]int, len(p.p))
	for i, v := range p.p {
		inv[v] = i
	}
	return Permutation{inv}
}

// Apply reindexes b so that position i holds the bit found at position p[i].
func (p Permutation) Apply(b bitset.BitSet) bitset.BitSet {
	p.check(b.Len())
	return b.Gather(p.p)
}

// Equal reports whether p and q are the same bijection.
func (p Permutation) Equal(q Permutation) bool {
	if len(p.p) != len(q.p) {
		return false
	}
	for i := range p.p {
		if p.p[i] != q.p[i] {
			return false
		}
	}
	return true
}

// Cycles returns the cycle decomposition of p, each cycle starting at its
// smallest element, ordered by that element. Fixed points are omitted.
func (p Permutation) Cycles() [][]int {
	visited := make([]bool, len(p.p))
	var cycles [][]int
	for start := range p.p {
		if visited[start] || p.p[start] == start {
			continue
		}
		var cycle []int
		for i := start; !visited[i]; i = p.p[i] {
			visited[i] = true
			cycle = append(cycle, i)
		}
		cycles = append(cycles, cycle)
	}
	return cycles
}

// Order returns the smallest k > 0 with p^k the identity, the least common
// multiple of the cycle lengths.
func (p Permutation) Order() *big.Int {
	order := big.NewInt(1)
	gcd := new(big.Int)
	for _, cycle := range p.Cycles() {
		l := big.NewInt(int64(len(cycle)))
		gcd.GCD(nil, nil, order, l)
		order.Mul(order, l.Div(l, gcd))
	}
	return order
}

// String renders p in cycle notation with 1-based elements, e.g. "(1 4)(2 5 3)".
// The identity renders as "()".
func (p Permutation) String() string {
	cycles := p.Cycles()
	if len(cycles) == 0 {
		return "()"
	}
	var sb strings.Builder
	for _, cycle := range cycles {
		sb.WriteByte('(')
		for i, v := range cycle {
			if i > 0 {
				sb.WriteByte(' ')
			}
			sb.WriteString(strconv.Itoa(v + 1))
		}
		sb.WriteByte(')')
	}
	return sb.String()
}

func (p Permutation) check(n int) {
	if len(p.p) != n {
		jww.FATAL.Panicf("Permutation of %d elements cannot act on a "+
			"universe of size %d", len(p.p), n)
	}
}
