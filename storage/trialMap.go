////////////////////////////////////////////////////////////////////////////////
// Copyright © 2022 xx foundation                                             //
//                                                                            //
// Use of this source code is governed by a license that can be found in the  //
// LICENSE file.                                                              //
////////////////////////////////////////////////////////////////////////////////

// Handles the Map backend for trial storage

package storage

import (
	"sort"

	"github.com/jinzhu/copier"
	"github.com/pkg/errors"
)

// InsertTrial stores a copy of the given Trial in the Map
// Or returns an error if a Trial with the same ID exists
func (m *MapImpl) InsertTrial(trial *Trial) error {
	m.Lock()
	defer m.Unlock()

	if _, ok := m.trials[trial.Id]; ok {
		return errors.Errorf("Trial %s already exists", trial.Id)
	}

	stored := &Trial{}
	if err := copier.Copy(stored, trial); err != nil {
		return errors.Wrapf(err, "Unable to copy trial %s", trial.Id)
	}
	m.trials[trial.Id] = stored
	return nil
}

// GetTrial returns a copy of the Trial with the given ID from the Map
// Or an error if a matching Trial does not exist
func (m *MapImpl) GetTrial(id string) (*Trial, error) {
	m.Lock()
	defer m.Unlock()

	val, ok := m.trials[id]
	if !ok {
		return nil, errors.Errorf("Unable to locate Trial for ID %s", id)
	}

	result := &Trial{}
	if err := copier.Copy(result, val); err != nil {
		return nil, errors.Wrapf(err, "Unable to copy trial %s", id)
	}
	return result, nil
}

// GetTrials returns copies of every Trial of the given batch in trial order
func (m *MapImpl) GetTrials(batchId string) ([]*Trial, error) {
	m.Lock()
	defer m.Unlock()

	var results []*Trial
	for _, val := range m.trials {
		if val.BatchId != batchId {
			continue
		}
		result := &Trial{}
		if err := copier.Copy(result, val); err != nil {
			return nil, errors.Wrapf(err, "Unable to copy trial %s", val.Id)
		}
		results = append(results, result)
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].Index < results[j].Index
	})
	return results, nil
}
