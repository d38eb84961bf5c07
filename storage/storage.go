////////////////////////////////////////////////////////////////////////////////
// Copyright © 2022 xx foundation                                             //
//                                                                            //
// Use of this source code is governed by a license that can be found in the  //
// LICENSE file.                                                              //
////////////////////////////////////////////////////////////////////////////////

// Handles the high level storage API.
// This layer merges the business logic layer and the database layer

package storage

import (
	"time"

	"github.com/pkg/errors"
	"gitlab.com/elixxir/mobs/protocol"
	"gitlab.com/elixxir/mobs/semidirect"
)

// Storage API for the storage layer
type Storage struct {
	// Stored database interface
	database
}

// NewStorage Create a new Storage object wrapping a database interface
// Returns a Storage object and error
func NewStorage(username, password, dbName, address, port string, devMode bool) (*Storage, error) {
	db, err := newDatabase(username, password, dbName, address, port, devMode)
	storage := &Storage{db}
	return storage, err
}

// StoreTranscripts records every transcript of a batch, in order.
func (s *Storage) StoreTranscripts(batchId string, exponentBits int,
	transcripts []*protocol.Transcript) error {
	for i, t := range transcripts {
		if err := s.InsertTrial(NewTrial(batchId, i, exponentBits, t)); err != nil {
			return errors.WithMessagef(err, "failed to store trial %d of "+
				"batch %s", i, batchId)
		}
	}
	return nil
}

// NewTrial encodes a transcript as a storable Trial.
func NewTrial(batchId string, index, exponentBits int,
	t *protocol.Transcript) *Trial {
	return &Trial{
		Id:                 t.ID,
		BatchId:            batchId,
		Index:              index,
		UniverseSize:       t.Base.Universe(),
		ExponentBits:       exponentBits,
		BaseMatrix:         EncodeMatrix(t.Base.M),
		BasePermutation:    EncodePermutation(t.Base.H),
		PublicAMatrix:      EncodeMatrix(t.PublicA.M),
		PublicAPermutation: EncodePermutation(t.PublicA.H),
		PublicBMatrix:      EncodeMatrix(t.PublicB.M),
		PublicBPermutation: EncodePermutation(t.PublicB.H),
		KeyA:               EncodeMatrix(t.KeyA),
		KeyB:               EncodeMatrix(t.KeyB),
		Agreed:             t.Agreed(),
		Outcome:            t.Outcome.String(),
		CreatedAt:          time.Now().Round(0),
	}
}

// Transcript decodes the stored values back into a protocol transcript.
func (t *Trial) Transcript() (*protocol.Transcript, error) {
	base, err := decodeElement(t.BaseMatrix, t.BasePermutation)
	if err != nil {
		return nil, errors.WithMessage(err, "invalid base")
	}
	publicA, err := decodeElement(t.PublicAMatrix, t.PublicAPermutation)
	if err != nil {
		return nil, errors.WithMessage(err, "invalid public value A")
	}
	publicB, err := decodeElement(t.PublicBMatrix, t.PublicBPermutation)
	if err != nil {
		return nil, errors.WithMessage(err, "invalid public value B")
	}
	keyA, err := DecodeMatrix(t.KeyA)
	if err != nil {
		return nil, errors.WithMessage(err, "invalid key A")
	}
	keyB, err := DecodeMatrix(t.KeyB)
	if err != nil {
		return nil, errors.WithMessage(err, "invalid key B")
	}
	outcome, err := protocol.ParseOutcome(t.Outcome)
	if err != nil {
		return nil, err
	}

	return &protocol.Transcript{
		ID:      t.Id,
		Base:    base,
		PublicA: publicA,
		PublicB: publicB,
		KeyA:    keyA,
		KeyB:    keyB,
		Outcome: outcome,
	}, nil
}

func decodeElement(m, h string) (semidirect.Element, error) {
	mat, err := DecodeMatrix(m)
	if err != nil {
		return semidirect.Element{}, err
	}
	perm, err := DecodePermutation(h)
	if err != nil {
		return semidirect.Element{}, err
	}
	return semidirect.New(mat, perm)
}
