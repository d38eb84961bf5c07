////////////////////////////////////////////////////////////////////////////////
// Copyright © 2022 xx foundation                                             //
//                                                                            //
// Use of this source code is governed by a license that can be found in the  //
// LICENSE file.                                                              //
////////////////////////////////////////////////////////////////////////////////

package measure

// measure/trial.go contains the TrialMetrics object, constructors and its
// methods

import (
	"time"
)

// TrialMetrics structure holds metrics for the life-cycle of a single protocol
// trial.
type TrialMetrics struct {
	TrialID      string
	Index        int
	UniverseSize int
	ExponentBits int
	Memoized     bool

	// Special recorded events
	StartTime time.Time
	EndTime   time.Time

	// Per stage durations, keyed by measure tag
	Stages map[string]time.Duration
}

// NewTrialMetrics initializes a new TrialMetrics object for the given trial.
func NewTrialMetrics(trialID string, index, universeSize,
	exponentBits int) TrialMetrics {
	return TrialMetrics{
		TrialID:      trialID,
		Index:        index,
		UniverseSize: universeSize,
		ExponentBits: exponentBits,
		StartTime:    time.Now().Round(0),
		Stages:       map[string]time.Duration{},
	}
}

// Finish records the end of the trial and the stage durations of metrics.
func (tm *TrialMetrics) Finish(metrics *Metrics) {
	tm.EndTime = time.Now().Round(0)
	tm.Stages = metrics.Durations()
}

// Duration returns the wall time of the trial.
func (tm TrialMetrics) Duration() time.Duration {
	return tm.EndTime.Sub(tm.StartTime)
}
