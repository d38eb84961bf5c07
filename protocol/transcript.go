////////////////////////////////////////////////////////////////////////////////
// Copyright © 2022 xx foundation                                             //
//                                                                            //
// Use of this source code is governed by a license that can be found in the  //
// LICENSE file.                                                              //
////////////////////////////////////////////////////////////////////////////////

package protocol

import (
	"fmt"

	"github.com/pkg/errors"

	"gitlab.com/elixxir/mobs/matrix"
	"gitlab.com/elixxir/mobs/semidirect"
)

// Outcome is the result of verifying a key agreement.
type Outcome uint8

const (
	// Agreed means both parties hold the directly computed key.
	Agreed Outcome = iota
	// KeyMismatch means the parties derived different keys.
	KeyMismatch
	// DirectMismatch means the parties agree with each other but not with
	// base^(a+b).
	DirectMismatch
)

// String returns a human readable name for the outcome.
func (o Outcome) String() string {
	switch o {
	case Agreed:
		return "AGREED"
	case KeyMismatch:
		return "KEY_MISMATCH"
	case DirectMismatch:
		return "DIRECT_MISMATCH"
	default:
		return fmt.Sprintf("UNKNOWN_OUTCOME(%d)", uint8(o))
	}
}

// ParseOutcome returns the Outcome whose String is s.
func ParseOutcome(s string) (Outcome, error) {
	for _, o := range []Outcome{Agreed, KeyMismatch, DirectMismatch} {
		if o.String() == s {
			return o, nil
		}
	}
	return 0, errors.Errorf("unknown outcome %q", s)
}

// Verify compares both parties' keys with the key computed directly from
// the exponent sum. A mismatch signals a defect in the algebra and is
// reported, never raised.
func Verify(keyA, keyB, direct matrix.Matrix) Outcome {
	if !keyA.Equal(keyB) {
		return KeyMismatch
	}
	if !keyA.Equal(direct) {
		return DirectMismatch
	}
	return Agreed
}

// Transcript is everything a run exposes to reporting: the public base, both
// public values and both derived keys. Private exponents are never part of
// it.
type Transcript struct {
	ID      string
	Base    semidirect.Element
	PublicA semidirect.Element
	PublicB semidirect.Element
	KeyA    matrix.Matrix
	KeyB    matrix.Matrix
	Outcome Outcome
}

// Agreed reports whether the run ended with a verified shared key.
func (t *Transcript) Agreed() bool {
	return t.Outcome == Agreed
}
