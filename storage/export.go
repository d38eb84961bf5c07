////////////////////////////////////////////////////////////////////////////////
// Copyright © 2022 xx foundation                                             //
//                                                                            //
// Use of this source code is governed by a license that can be found in the  //
// LICENSE file.                                                              //
////////////////////////////////////////////////////////////////////////////////

// YAML export of stored trials

package storage

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"
)

// TrialFile is the document written by WriteTrials.
type TrialFile struct {
	BatchId string   `yaml:"batch"`
	Trials  []*Trial `yaml:"trials"`
}

// WriteTrials writes a batch of trials to path as YAML.
func WriteTrials(path, batchId string, trials []*Trial) error {
	out, err := yaml.Marshal(&TrialFile{BatchId: batchId, Trials: trials})
	if err != nil {
		return errors.Wrapf(err, "failed to marshal batch %s", batchId)
	}
	if err = os.WriteFile(path, out, 0644); err != nil {
		return errors.Wrapf(err, "failed to write trials to %s", path)
	}
	return nil
}

// ReadTrials reads a file written by WriteTrials.
func ReadTrials(path string) (*TrialFile, error) {
	in, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read trials from %s", path)
	}
	tf := &TrialFile{}
	if err = yaml.Unmarshal(in, tf); err != nil {
		return nil, errors.Wrapf(err, "failed to parse trials in %s", path)
	}
	return tf, nil
}
