////////////////////////////////////////////////////////////////////////////////
// Copyright © 2022 xx foundation                                             //
//                                                                            //
// Use of this source code is governed by a license that can be found in the  //
// LICENSE file.                                                              //
////////////////////////////////////////////////////////////////////////////////

// Package rng holds the randomness plumbing shared by the generators: the
// seeded source used for reproducible runs, and helpers which draw uniform
// integers, shuffles and protocol exponents from any io.Reader.
package rng

import (
	"crypto/rand"
	"encoding/binary"
	"io"
	"math/big"
	"sync"

	"github.com/pkg/errors"
	jww "github.com/spf13/jwalterweatherman"
	"github.com/tuneinsight/lattigo/v6/utils/sampling"
	"gitlab.com/xx_network/crypto/csprng"
	"golang.org/x/crypto/blake2b"
)

// Seeded is a deterministic csprng.Source keyed by a seed. Two Seeded
// sources created from the same seed produce identical byte streams.
type Seeded struct {
	prng *sampling.KeyedPRNG
	mux  sync.Mutex
}

// NewSeeded returns a deterministic source keyed by seed.
func NewSeeded(seed []byte) (csprng.Source, error) {
	s := &Seeded{}
	if err := s.SetSeed(seed); err != nil {
		return nil, err
	}
	return s, nil
}

// Read fills b from the keyed PRNG stream.
func (s *Seeded) Read(b []byte) (int, error) {
	s.mux.Lock()
	defer s.mux.Unlock()
	return s.prng.Read(b)
}

// SetSeed re-keys the source, restarting its stream.
func (s *Seeded) SetSeed(seed []byte) error {
	if len(seed) == 0 {
		return errors.New("cannot key a seeded source with an empty seed")
	}
	prng, err := sampling.NewKeyedPRNG(seed)
	if err != nil {
		return errors.WithMessage(err, "failed to key seeded source")
	}

	s.mux.Lock()
	s.prng = prng
	s.mux.Unlock()
	return nil
}

// Derive returns a Seeded source keyed by blake2b(seed || domain || n). The
// same arguments always give the same stream; different domains or indices
// give independent streams.
func Derive(seed []byte, domain string, n uint64) (csprng.Source, error) {
	if len(seed) == 0 {
		return nil, errors.New("cannot derive a source from an empty seed")
	}
	var ctr [8]byte
	binary.BigEndian.PutUint64(ctr[:], n)

	h, err := blake2b.New256(nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create blake2b hash")
	}
	h.Write(seed)
	h.Write([]byte(domain))
	h.Write(ctr[:])
	return NewSeeded(h.Sum(nil))
}

// SeededConstructor returns a source constructor for fastRNG stream
// generators. The n-th call returns Derive(seed, "stream", n). Which caller
// receives the n-th source depends on call order.
func SeededConstructor(seed []byte) func() csprng.Source {
	var (
		mux     sync.Mutex
		counter uint64
	)
	return func() csprng.Source {
		mux.Lock()
		n := counter
		counter++
		mux.Unlock()

		src, err := Derive(seed, "stream", n)
		if err != nil {
			jww.FATAL.Panicf("Failed to derive stream source %d: %+v", n, err)
		}
		return src
	}
}

// Intn returns a uniform integer in [0, n) drawn from src.
func Intn(src io.Reader, n int) (int, error) {
	if n <= 0 {
		return 0, errors.Errorf("cannot draw from an empty range [0, %d)", n)
	}
	v, err := rand.Int(src, big.NewInt(int64(n)))
	if err != nil {
		return 0, errors.Wrap(err, "random source failed")
	}
	return int(v.Int64()), nil
}

// Shuffle permutes s in place with a Fisher-Yates shuffle driven by src.
func Shuffle(src io.Reader, s []int) error {
	for i := len(s) - 1; i > 0; i-- {
		j, err := Intn(src, i+1)
		if err != nil {
			return err
		}
		s[i], s[j] = s[j], s[i]
	}
	return nil
}

// Exponent draws a uniform exponent from [2^(bits-1), 2^bits), so every
// exponent has exactly the requested bit length.
func Exponent(src io.Reader, bits int) (*big.Int, error) {
	if bits < 1 {
		return nil, errors.Errorf("exponent length must be at least one "+
			"bit, got %d", bits)
	}
	low := new(big.Int).Lsh(big.NewInt(1), uint(bits-1))
	if bits == 1 {
		return low, nil
	}

	offset, err := rand.Int(src, low)
	if err != nil {
		return nil, errors.Wrap(err, "random source failed")
	}
	return offset.Add(offset, low), nil
}

// ReadFull fills b from src, treating a short read as a failure of the
// entropy source.
func ReadFull(src io.Reader, b []byte) error {
	if _, err := io.ReadFull(src, b); err != nil {
		return errors.Wrapf(err, "random source could not supply %d bytes",
			len(b))
	}
	return nil
}
