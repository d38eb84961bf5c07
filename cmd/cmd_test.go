////////////////////////////////////////////////////////////////////////////////
// Copyright © 2022 xx foundation                                             //
//                                                                            //
// Use of this source code is governed by a license that can be found in the  //
// LICENSE file.                                                              //
////////////////////////////////////////////////////////////////////////////////

package cmd

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
	"gitlab.com/elixxir/mobs/internal/measure"
	"gitlab.com/elixxir/mobs/protocol"
	"gitlab.com/elixxir/mobs/rng"
	"gitlab.com/elixxir/mobs/storage"
)

func testViper(out string) *viper.Viper {
	vip := viper.New()
	vip.Set("protocol.universeSize", 16)
	vip.Set("protocol.exponentBits", 16)
	vip.Set("trials.count", 3)
	vip.Set("trials.threads", 2)
	vip.Set("trials.seed", "cmd")
	vip.Set("devMode", true)
	vip.Set("paths.output", out)
	return vip
}

// Happy path: a configured batch runs, reports, stores and exports.
func TestRunTrials(t *testing.T) {
	out := filepath.Join(t.TempDir(), "trials.yaml")
	var report bytes.Buffer

	if err := runTrials(testViper(out), &report); err != nil {
		t.Fatalf("runTrials returned an error: %+v", err)
	}

	if !strings.Contains(report.String(), "Trials: 3, agreed: 3") {
		t.Errorf("Report does not list the agreed trials:\n%s",
			report.String())
	}

	tf, err := storage.ReadTrials(out)
	if err != nil {
		t.Fatalf("Failed to read exported trials: %+v", err)
	}
	if len(tf.Trials) != 3 {
		t.Fatalf("Unexpected exported trial count.\nexpected: %d\nreceived: %d",
			3, len(tf.Trials))
	}
	for i, trial := range tf.Trials {
		if trial.BatchId != tf.BatchId || trial.Index != i || !trial.Agreed {
			t.Errorf("Unexpected exported trial %d: %+v", i, trial)
		}
	}
}

// Tests that the verbose setting of the config, not the CLI flag, turns on the
// diagnostic report.
func TestRunTrials_Verbose(t *testing.T) {
	for _, expected := range []bool{false, true} {
		vip := testViper("")
		vip.Set("verbose", expected)

		var report bytes.Buffer
		if err := runTrials(vip, &report); err != nil {
			t.Fatalf("runTrials returned an error (verbose=%v): %+v",
				expected, err)
		}

		received := strings.Contains(report.String(), "Public matrix:")
		if received != expected {
			t.Errorf("Unexpected diagnostics in report.\nexpected: %v"+
				"\nreceived: %v\n%s", expected, received, report.String())
		}
	}
}

// Error path: invalid configuration is reported before any trial runs.
func TestRunTrials_InvalidConfig(t *testing.T) {
	vip := testViper("")
	vip.Set("trials.count", 0)
	if err := runTrials(vip, &bytes.Buffer{}); err == nil {
		t.Errorf("runTrials accepted an invalid configuration")
	}
}

func testResults(t *testing.T) []protocol.TrialResult {
	results, err := protocol.RunTrials(context.Background(),
		protocol.TrialParams{
			Params:  protocol.Params{UniverseSize: 10, ExponentBits: 12},
			Count:   4,
			Threads: 2,
			Seed:    []byte("report"),
		})
	if err != nil {
		t.Fatalf("RunTrials returned an error: %+v", err)
	}
	return results
}

// Tests the summary counts and the diagnostic output.
func TestPrintReport(t *testing.T) {
	results := testResults(t)

	// Force one mismatch into the summary
	results[1].Transcript.Outcome = protocol.KeyMismatch
	if countMismatches(results) != 1 {
		t.Errorf("Unexpected mismatch count.\nexpected: %d\nreceived: %d",
			1, countMismatches(results))
	}

	var w bytes.Buffer
	printReport(&w, "batch", results, true)
	report := w.String()

	for _, expected := range []string{"Batch batch", "Trials: 4, agreed: 3",
		"KEY_MISMATCH: 1", measure.TagPublicValues + ":",
		"Public matrix:\nEntry (1,1): ", "Public permutation: ",
		"Key fingerprint: " + protocol.Fingerprint(results[0].Transcript.KeyA)} {
		if !strings.Contains(report, expected) {
			t.Errorf("Report is missing %q:\n%s", expected, report)
		}
	}

	w.Reset()
	printReport(&w, "batch", results, false)
	if strings.Contains(w.String(), "Public matrix") {
		t.Errorf("Report printed diagnostics when they were disabled")
	}
}

func TestSummary_Mean(t *testing.T) {
	if (summary{}).mean(time.Second) != 0 {
		t.Errorf("Mean over no trials is not zero")
	}
	s := summary{trials: 4}
	if s.mean(time.Second) != 250*time.Millisecond {
		t.Errorf("Unexpected mean.\nexpected: %s\nreceived: %s",
			250*time.Millisecond, s.mean(time.Second))
	}
}

// Happy path: both strategies agree and every timing is recorded.
func TestBenchmarkPowers(t *testing.T) {
	src, err := rng.NewSeeded([]byte("benchmark"))
	if err != nil {
		t.Fatalf("Failed to create seeded source: %+v", err)
	}
	result, err := benchmarkPowers(protocol.Params{UniverseSize: 12,
		ExponentBits: 32}, src, 5)
	if err != nil {
		t.Fatalf("benchmarkPowers returned an error: %+v", err)
	}
	if result.iterations != 5 || result.plain <= 0 || result.memoized <= 0 {
		t.Errorf("Unexpected benchmark result: %+v", result)
	}

	var w bytes.Buffer
	result.print(&w)
	if !strings.Contains(w.String(), "Exponents timed:      5") {
		t.Errorf("Unexpected benchmark output:\n%s", w.String())
	}

	// Error path
	if _, err = benchmarkPowers(protocol.Params{UniverseSize: 12,
		ExponentBits: 32}, src, 0); err == nil {
		t.Errorf("benchmarkPowers accepted zero iterations")
	}
}

func TestConvertToReadableBytes(t *testing.T) {
	testValues := map[uint64]string{
		512:          "512B",
		2048:         "2KiB",
		5 << 20:      "5MiB",
		3 << 30:      "3GiB",
		(2048) << 30: "2048GiB",
	}
	for b, expected := range testValues {
		if received := convertToReadableBytes(b); received != expected {
			t.Errorf("Unexpected size string.\nexpected: %s\nreceived: %s",
				expected, received)
		}
	}
}

// Tests that the memory monitor returns once its context is done.
func TestMonitorMemoryUsage(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		monitorMemoryUsage(ctx, time.Millisecond, 0)
		close(done)
	}()

	time.Sleep(10 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Errorf("Memory monitor did not stop after cancellation")
	}
}
