////////////////////////////////////////////////////////////////////////////////
// Copyright © 2022 xx foundation                                             //
//                                                                            //
// Use of this source code is governed by a license that can be found in the  //
// LICENSE file.                                                              //
////////////////////////////////////////////////////////////////////////////////

// Package protocol runs the key agreement between two in-process parties
// over the semidirect product of bit-set matrices and permutations.
//
// Both parties share a public base (M, h). Alice draws a and publishes
// A = (M, h)^a, Bob draws b and publishes B = (M, h)^b. Alice keeps the matrix
// of B·A, Bob the matrix of A·B. Both equal the matrix of (M, h)^(a+b).
package protocol

import (
	"encoding/hex"
	"io"
	"math/big"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	jww "github.com/spf13/jwalterweatherman"
	"gitlab.com/elixxir/mobs/internal/measure"
	"gitlab.com/elixxir/mobs/matrix"
	"gitlab.com/elixxir/mobs/permutation"
	"gitlab.com/elixxir/mobs/rng"
	"gitlab.com/elixxir/mobs/semidirect"
	"golang.org/x/crypto/blake2b"
)

// Params are the fixed parameters of a protocol run.
type Params struct {
	// Size of the universe every set and permutation ranges over
	UniverseSize int
	// Bit length of each private exponent
	ExponentBits int
}

// Validate checks the parameters describe a runnable protocol.
func (p Params) Validate() error {
	if p.UniverseSize < 1 {
		return errors.Errorf("universe size must be positive, got %d",
			p.UniverseSize)
	}
	if p.ExponentBits < 1 {
		return errors.Errorf("exponent length must be positive, got %d",
			p.ExponentBits)
	}
	return nil
}

// Run is the context of one protocol execution. Stages return new values
// and never modify shared state.
type Run struct {
	ID      string
	Params  Params
	Metrics *measure.Metrics

	rng   io.Reader
	table *semidirect.PowerTable
}

// NewRun creates a run drawing all of its randomness from src.
func NewRun(params Params, src io.Reader) (*Run, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	if src == nil {
		return nil, errors.New("a protocol run requires a random source")
	}
	return &Run{
		ID:      uuid.New().String(),
		Params:  params,
		Metrics: new(measure.Metrics),
		rng:     src,
	}, nil
}

// UsePowerTable makes the run compute powers of the table's base with the
// table instead of square-and-multiply.
func (r *Run) UsePowerTable(table *semidirect.PowerTable) error {
	if table.Base().Universe() != r.Params.UniverseSize {
		return errors.Errorf("power table over a universe of size %d cannot "+
			"serve a run over a universe of size %d",
			table.Base().Universe(), r.Params.UniverseSize)
	}
	r.table = table
	return nil
}

// Setup generates the public base element: a random matrix and a generated
// permutation.
func (r *Run) Setup() (semidirect.Element, error) {
	n := r.Params.UniverseSize
	m, err := matrix.Random(n, r.rng)
	if err != nil {
		return semidirect.Element{}, errors.WithMessage(err,
			"failed to generate public matrix")
	}
	h, err := permutation.Generate(n, r.rng)
	if err != nil {
		return semidirect.Element{}, errors.WithMessage(err,
			"failed to generate public permutation")
	}
	r.Metrics.Measure(measure.TagSetup)
	jww.DEBUG.Printf("[%s] Generated public base over a universe of size "+
		"%d, permutation order %s", r.ID, n, h.Order())

	return semidirect.New(m, h)
}

// DrawExponent draws one party's private exponent.
func (r *Run) DrawExponent() (*big.Int, error) {
	k, err := rng.Exponent(r.rng, r.Params.ExponentBits)
	if err != nil {
		return nil, errors.WithMessage(err, "failed to draw private exponent")
	}
	return k, nil
}

// PublicValue returns base^k, the value a party publishes for private
// exponent k.
func PublicValue(base semidirect.Element, k *big.Int) semidirect.Element {
	return base.Power(k)
}

// SharedKey returns a party's view of the shared secret given its own public
// value and the other party's: the matrix of other·own. The argument order
// is what lets both parties agree over a non-commutative product.
func SharedKey(own, other semidirect.Element) matrix.Matrix {
	return other.Combine(own).M
}

// Execute performs a complete run: setup, key draw, public values, shared
// secret derivation and verification.
func (r *Run) Execute() (*Transcript, error) {
	r.Metrics.Measure(measure.TagStart)
	base, err := r.Setup()
	if err != nil {
		return nil, err
	}
	return r.execute(base)
}

// ExecuteWith performs a run against an already agreed public base.
func (r *Run) ExecuteWith(base semidirect.Element) (*Transcript, error) {
	r.Metrics.Measure(measure.TagStart)
	return r.execute(base)
}

func (r *Run) execute(base semidirect.Element) (*Transcript, error) {
	if base.Universe() != r.Params.UniverseSize {
		return nil, errors.Errorf("base over a universe of size %d does not "+
			"match run universe size %d", base.Universe(),
			r.Params.UniverseSize)
	}

	a, err := r.DrawExponent()
	if err != nil {
		return nil, err
	}
	b, err := r.DrawExponent()
	if err != nil {
		return nil, err
	}
	r.Metrics.Measure(measure.TagKeyDraw)

	return r.Agree(base, a, b), nil
}

// Agree runs the exchange for the given private exponents and verifies the
// result against the directly computed base^(a+b). The exponents are not
// retained in the returned Transcript.
func (r *Run) Agree(base semidirect.Element, a, b *big.Int) *Transcript {
	alicePublic := r.power(base, a)
	bobPublic := r.power(base, b)
	r.Metrics.Measure(measure.TagPublicValues)

	keyA := SharedKey(alicePublic, bobPublic)
	keyB := SharedKey(bobPublic, alicePublic)
	r.Metrics.Measure(measure.TagSharedSecret)

	direct := r.power(base, new(big.Int).Add(a, b)).M
	outcome := Verify(keyA, keyB, direct)
	r.Metrics.Measure(measure.TagVerification)

	if outcome != Agreed {
		jww.WARN.Printf("[%s] Key agreement failed: %s", r.ID, outcome)
	} else {
		jww.DEBUG.Printf("[%s] Parties agreed on key %s", r.ID,
			Fingerprint(keyA))
	}
	r.Metrics.Measure(measure.TagFinish)

	return &Transcript{
		ID:      r.ID,
		Base:    base,
		PublicA: alicePublic,
		PublicB: bobPublic,
		KeyA:    keyA,
		KeyB:    keyB,
		Outcome: outcome,
	}
}

// power uses the run's power table when it was built from base and is wide
// enough for k.
func (r *Run) power(base semidirect.Element, k *big.Int) semidirect.Element {
	if r.table != nil && r.table.Base().Equal(base) {
		x, err := r.table.Power(k)
		if err == nil {
			return x
		}
		jww.DEBUG.Printf("[%s] Falling back to square-and-multiply: %s",
			r.ID, err)
	}
	return PublicValue(base, k)
}

// Fingerprint returns a short blake2b digest of a key matrix for logs, so
// keys never need to be printed.
func Fingerprint(m matrix.Matrix) string {
	h, err := blake2b.New256(nil)
	if err != nil {
		jww.FATAL.Panicf("Failed to create blake2b hash: %+v", err)
	}
	for i := 0; i < matrix.Size; i++ {
		for j := 0; j < matrix.Size; j++ {
			h.Write([]byte(m.Cell(i, j).String()))
		}
	}
	return hex.EncodeToString(h.Sum(nil)[:8])
}
