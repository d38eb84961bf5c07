////////////////////////////////////////////////////////////////////////////////
// Copyright © 2022 xx foundation                                             //
//                                                                            //
// Use of this source code is governed by a license that can be found in the  //
// LICENSE file.                                                              //
////////////////////////////////////////////////////////////////////////////////

package cmd

import (
	"fmt"
	"io"
	"time"

	"gitlab.com/elixxir/mobs/internal/measure"
	"gitlab.com/elixxir/mobs/protocol"
)

// Stages in the order they are reported
var reportStages = []string{
	measure.TagSetup,
	measure.TagKeyDraw,
	measure.TagPublicValues,
	measure.TagSharedSecret,
	measure.TagVerification,
	measure.TagFinish,
}

type summary struct {
	trials   int
	agreed   int
	outcomes map[protocol.Outcome]int
	total    time.Duration
	stages   map[string]time.Duration
}

func summarize(results []protocol.TrialResult) summary {
	s := summary{
		trials:   len(results),
		outcomes: map[protocol.Outcome]int{},
		stages:   map[string]time.Duration{},
	}
	for _, r := range results {
		s.outcomes[r.Transcript.Outcome]++
		if r.Transcript.Agreed() {
			s.agreed++
		}
		s.total += r.Metrics.Duration()
		for tag, d := range r.Metrics.Stages {
			s.stages[tag] += d
		}
	}
	return s
}

// mean returns the average of total over the trials.
func (s summary) mean(total time.Duration) time.Duration {
	if s.trials == 0 {
		return 0
	}
	return total / time.Duration(s.trials)
}

func countMismatches(results []protocol.TrialResult) int {
	s := summarize(results)
	return s.trials - s.agreed
}

// printReport writes the batch summary. With diagnostics set it also prints
// the first trial's public base and key.
func printReport(w io.Writer, batchId string, results []protocol.TrialResult,
	diagnostics bool) {
	s := summarize(results)

	fmt.Fprintf(w, "Batch %s\n", batchId)
	fmt.Fprintf(w, "Trials: %d, agreed: %d\n", s.trials, s.agreed)
	for _, o := range []protocol.Outcome{protocol.KeyMismatch,
		protocol.DirectMismatch} {
		if s.outcomes[o] > 0 {
			fmt.Fprintf(w, "  %s: %d\n", o, s.outcomes[o])
		}
	}
	fmt.Fprintf(w, "Mean trial time: %s\n", s.mean(s.total))
	for _, tag := range reportStages {
		fmt.Fprintf(w, "  %-14s %s\n", tag+":", s.mean(s.stages[tag]))
	}

	if diagnostics && len(results) > 0 {
		first := results[0].Transcript
		fmt.Fprintf(w, "\nPublic matrix:\n%s", first.Base.M)
		fmt.Fprintf(w, "Public permutation: %s\n", first.Base.H)
		fmt.Fprintf(w, "Key fingerprint: %s\n",
			protocol.Fingerprint(first.KeyA))
		fmt.Fprintf(w, "Zeros in key: %d\n", first.KeyA.Zeros())
	}
}
