////////////////////////////////////////////////////////////////////////////////
// Copyright © 2022 xx foundation                                             //
//                                                                            //
// Use of this source code is governed by a license that can be found in the  //
// LICENSE file.                                                              //
////////////////////////////////////////////////////////////////////////////////

package permutation

import (
	"math/big"
	"reflect"
	"sort"
	"testing"

	"github.com/cznic/mathutil"
	"gitlab.com/elixxir/mobs/bitset"
	"gitlab.com/elixxir/mobs/rng"
)

func generate(t *testing.T, n int, seed string) Permutation {
	src, err := rng.NewSeeded([]byte(seed))
	if err != nil {
		t.Fatalf("Failed to create seeded source: %+v", err)
	}
	p, err := Generate(n, src)
	if err != nil {
		t.Fatalf("Generate(%d) returned an error: %+v", n, err)
	}
	return p
}

// Tests the sieve against hand computed cycle length profiles.
func TestSieveCycleLengths(t *testing.T) {
	tests := []struct {
		n        int
		expected []int
	}{
		{1, nil},
		{4, []int{2}},
		{5, []int{2, 3}},
		{7, []int{2, 3}},
		{8, []int{2, 3}},
		{10, []int{2, 3, 5}},
		{17, []int{2, 3, 5, 7}},
		{200, []int{2, 3, 5, 7, 11, 13, 17, 19, 23, 29, 31, 37}},
		{381, []int{2, 3, 5, 7, 11, 13, 17, 19, 23, 29, 31, 37, 41, 43, 47,
			53}},
	}

	for _, tt := range tests {
		received := SieveCycleLengths(tt.n)
		if !reflect.DeepEqual(received, tt.expected) {
			t.Errorf("SieveCycleLengths(%d) mismatch.\nexpected: %v\n"+
				"received: %v", tt.n, tt.expected, received)
		}
	}
}

// Tests that every chosen length is prime and the total never exceeds n.
func TestSieveCycleLengths_Prime(t *testing.T) {
	for n := 4; n < 1000; n++ {
		sum := 0
		for _, l := range SieveCycleLengths(n) {
			if !mathutil.IsPrime(uint32(l)) {
				t.Fatalf("SieveCycleLengths(%d) chose composite length %d", n, l)
			}
			sum += l
		}
		if sum > n {
			t.Fatalf("SieveCycleLengths(%d) sums to %d", n, sum)
		}
	}
}

// Tests that generated permutations have exactly the sieve's cycle profile.
func TestGenerate_CycleProfile(t *testing.T) {
	for _, n := range []int{4, 8, 10, 17, 200, 381} {
		p := generate(t, n, "profile")

		var lengths []int
		for _, c := range p.Cycles() {
			lengths = append(lengths, len(c))
		}
		sort.Ints(lengths)

		if !reflect.DeepEqual(lengths, SieveCycleLengths(n)) {
			t.Errorf("Cycle profile of generated permutation of %d "+
				"elements mismatch.\nexpected: %v\nreceived: %v", n,
				SieveCycleLengths(n), lengths)
		}
	}
}

// Tests the small domains, which use a single cycle.
func TestGenerate_SmallDomains(t *testing.T) {
	if !generate(t, 1, "small").Equal(Identity(1)) {
		t.Errorf("Permutation of one element must be the identity")
	}
	for _, n := range []int{2, 3} {
		cycles := generate(t, n, "small").Cycles()
		if len(cycles) != 1 || len(cycles[0]) != n {
			t.Errorf("Permutation of %d elements should be a single %d-cycle, "+
				"received %v", n, n, cycles)
		}
	}
}

// Error path: an empty domain is rejected.
func TestGenerate_EmptyDomain(t *testing.T) {
	src, _ := rng.NewSeeded([]byte("empty"))
	if _, err := Generate(0, src); err == nil {
		t.Errorf("Generate accepted an empty domain")
	}
}

// Tests that generation is reproducible under a seed.
func TestGenerate_Deterministic(t *testing.T) {
	for _, n := range []int{3, 8, 200} {
		a := generate(t, n, "seed")
		b := generate(t, n, "seed")
		if !a.Equal(b) {
			t.Errorf("Seeded permutations of %d elements differ: %s %s", n, a, b)
		}
	}
}

// Tests that the identity is neutral under composition.
func TestPermutation_Compose_Identity(t *testing.T) {
	p := generate(t, 50, "compose")
	id := Identity(50)
	if !p.Compose(id).Equal(p) || !id.Compose(p).Equal(p) {
		t.Errorf("Composing with the identity changed the permutation")
	}
}

// Tests the composition order: q is applied first.
func TestPermutation_Compose_Order(t *testing.T) {
	p, _ := New([]int{1, 2, 0})
	q, _ := New([]int{0, 2, 1})
	r := p.Compose(q)
	expected := []int{1, 0, 2}
	if !reflect.DeepEqual(r.Mapping(), expected) {
		t.Errorf("Composition mismatch.\nexpected: %v\nreceived: %v",
			expected, r.Mapping())
	}
}

// Tests that applying p then its inverse restores any set.
func TestPermutation_Apply_Inverse(t *testing.T) {
	src, _ := rng.NewSeeded([]byte("inverse"))
	p := generate(t, 200, "inverse")
	for i := 0; i < 10; i++ {
		b, _ := bitset.Random(200, src)
		if !p.Inverse().Apply(p.Apply(b)).Equal(b) {
			t.Fatalf("Inverse did not undo the permutation")
		}
	}
	if !p.Compose(p.Inverse()).Equal(Identity(200)) {
		t.Errorf("p∘p⁻¹ is not the identity")
	}
}

// Tests the action law relating Apply and Compose:
// Apply(Apply(b, p), q) == Apply(b, Compose(p, q)).
func TestPermutation_Apply_ActionLaw(t *testing.T) {
	src, _ := rng.NewSeeded([]byte("action"))
	p := generate(t, 100, "action-p")
	q := generate(t, 100, "action-q")
	b, _ := bitset.Random(100, src)

	if !q.Apply(p.Apply(b)).Equal(p.Compose(q).Apply(b)) {
		t.Errorf("Reindexing by p then q differs from reindexing by p∘q")
	}
}

// Tests that Apply gathers bits by the image array.
func TestPermutation_Apply(t *testing.T) {
	p, _ := New([]int{1, 2, 3, 0})
	b, _ := bitset.Parse("1000")
	if out := p.Apply(b).String(); out != "0001" {
		t.Errorf("Apply mismatch.\nexpected: %s\nreceived: %s", "0001", out)
	}
}

// Error path: New and FromCycles reject invalid input.
func TestNew_FromCycles_Errors(t *testing.T) {
	if _, err := New([]int{0, 0, 1}); err == nil {
		t.Errorf("New accepted a non-injective mapping")
	}
	if _, err := New([]int{0, 3}); err == nil {
		t.Errorf("New accepted an out of range image")
	}
	if _, err := New(nil); err == nil {
		t.Errorf("New accepted an empty domain")
	}
	if _, err := FromCycles(4, [][]int{{0, 1}, {1, 2}}); err == nil {
		t.Errorf("FromCycles accepted overlapping cycles")
	}
	if _, err := FromCycles(4, [][]int{{0, 4}}); err == nil {
		t.Errorf("FromCycles accepted an out of range element")
	}
}

// Tests cycle notation and order.
func TestPermutation_String_Order(t *testing.T) {
	p, err := FromCycles(6, [][]int{{0, 3}, {1, 4, 2}})
	if err != nil {
		t.Fatalf("FromCycles returned an error: %+v", err)
	}
	if p.String() != "(1 4)(2 5 3)" {
		t.Errorf("Unexpected cycle notation %q", p.String())
	}
	if p.Order().Cmp(big.NewInt(6)) != 0 {
		t.Errorf("Order mismatch: expected 6, received %s", p.Order())
	}
	if Identity(5).String() != "()" {
		t.Errorf("Identity should render as ()")
	}
}
