////////////////////////////////////////////////////////////////////////////////
// Copyright © 2022 xx foundation                                             //
//                                                                            //
// Use of this source code is governed by a license that can be found in the  //
// LICENSE file.                                                              //
////////////////////////////////////////////////////////////////////////////////

package protocol

// trials.go repeats the protocol across a pool of workers. Unseeded workers
// draw from their own RNG stream; seeded trials draw from a source derived from
// the seed and the trial index.

import (
	"context"
	"io"
	"runtime"
	"sync"

	"github.com/pkg/errors"
	jww "github.com/spf13/jwalterweatherman"
	"gitlab.com/elixxir/crypto/fastRNG"
	"gitlab.com/elixxir/mobs/internal/measure"
	"gitlab.com/elixxir/mobs/rng"
	"gitlab.com/elixxir/mobs/semidirect"
	"gitlab.com/xx_network/crypto/csprng"
)

// DefaultRngScalingFactor is the number of reads a stream serves before it
// reseeds from its source, unless TrialParams overrides it.
const DefaultRngScalingFactor = 10000

// TrialParams configures a batch of protocol trials.
type TrialParams struct {
	Params

	// Number of trials to run
	Count int
	// Number of workers; 0 uses one per CPU
	Threads int
	// Share a single public base between all trials
	FixedBase bool
	// Compute powers of the shared base from a precomputed power table.
	// Requires FixedBase.
	Memoize bool
	// When set, trial i draws from rng.Derive(Seed, "trial", i) and the
	// shared base from rng.Derive(Seed, "base", 0), so the batch is
	// reproducible for any Threads. Sources is then unused.
	Seed []byte
	// Constructor for the entropy sources behind each worker's stream.
	// Defaults to csprng.NewSystemRNG.
	Sources func() csprng.Source
	// Reads served by a stream between reseeds; 0 uses
	// DefaultRngScalingFactor
	RngScalingFactor uint
}

// TrialResult pairs a trial's transcript with its timing.
type TrialResult struct {
	Transcript *Transcript
	Metrics    measure.TrialMetrics
}

// RunTrials runs Count independent protocol trials and returns them in trial
// order. The first failing trial cancels the rest.
func RunTrials(ctx context.Context, tp TrialParams) ([]TrialResult, error) {
	if err := tp.Validate(); err != nil {
		return nil, err
	}
	if tp.Count < 1 {
		return nil, errors.Errorf("trial count must be positive, got %d",
			tp.Count)
	}
	if tp.Memoize && !tp.FixedBase {
		return nil, errors.New("memoized powers require a fixed public base")
	}

	threads := tp.Threads
	if threads <= 0 {
		threads = runtime.NumCPU()
	}
	if threads > tp.Count {
		threads = tp.Count
	}
	seeded := len(tp.Seed) > 0

	var streamGen *fastRNG.StreamGenerator
	if !seeded {
		sources := tp.Sources
		if sources == nil {
			sources = csprng.NewSystemRNG
		}
		scaling := tp.RngScalingFactor
		if scaling == 0 {
			scaling = DefaultRngScalingFactor
		}
		streamGen = fastRNG.NewStreamGenerator(scaling, uint(threads), sources)
	}

	var base *semidirect.Element
	var table *semidirect.PowerTable
	if tp.FixedBase {
		shared, err := setupSharedBase(tp.Params, tp.Seed, streamGen)
		if err != nil {
			return nil, err
		}
		base = &shared
		jww.INFO.Printf("Trials share public permutation %s", shared.H)

		if tp.Memoize {
			// a+b may carry one bit past the exponent length
			table, err = semidirect.NewPowerTable(shared, tp.ExponentBits+1)
			if err != nil {
				return nil, err
			}
		}
	}

	workCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	results := make([]TrialResult, tp.Count)
	errChan := make(chan error, threads)
	jobs := make(chan int)
	wg := sync.WaitGroup{}

	for w := 0; w < threads; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			var stream *fastRNG.Stream
			if streamGen != nil {
				stream = streamGen.GetStream()
				defer stream.Close()
			}

			for index := range jobs {
				var src io.Reader = stream
				if seeded {
					derived, err := rng.Derive(tp.Seed, "trial", uint64(index))
					if err != nil {
						errChan <- errors.WithMessagef(err, "trial %d failed", index)
						cancel()
						return
					}
					src = derived
				}

				result, err := runTrial(tp.Params, index, src, base, table)
				if err != nil {
					errChan <- errors.WithMessagef(err, "trial %d failed", index)
					cancel()
					return
				}
				results[index] = result
			}
		}()
	}

feed:
	for i := 0; i < tp.Count; i++ {
		select {
		case jobs <- i:
		case <-workCtx.Done():
			break feed
		}
	}
	close(jobs)
	wg.Wait()

	select {
	case err := <-errChan:
		return nil, err
	default:
	}
	if err := ctx.Err(); err != nil {
		return nil, errors.WithMessage(err, "trials interrupted")
	}

	return results, nil
}

func setupSharedBase(params Params, seed []byte,
	streamGen *fastRNG.StreamGenerator) (semidirect.Element, error) {
	var src io.Reader
	if len(seed) > 0 {
		derived, err := rng.Derive(seed, "base", 0)
		if err != nil {
			return semidirect.Element{}, err
		}
		src = derived
	} else {
		stream := streamGen.GetStream()
		defer stream.Close()
		src = stream
	}

	run, err := NewRun(params, src)
	if err != nil {
		return semidirect.Element{}, err
	}
	return run.Setup()
}

func runTrial(params Params, index int, src io.Reader,
	base *semidirect.Element, table *semidirect.PowerTable) (TrialResult, error) {
	run, err := NewRun(params, src)
	if err != nil {
		return TrialResult{}, err
	}
	tm := measure.NewTrialMetrics(run.ID, index, params.UniverseSize,
		params.ExponentBits)

	if table != nil {
		if err = run.UsePowerTable(table); err != nil {
			return TrialResult{}, err
		}
		tm.Memoized = true
	}

	var transcript *Transcript
	if base != nil {
		transcript, err = run.ExecuteWith(*base)
	} else {
		transcript, err = run.Execute()
	}
	if err != nil {
		return TrialResult{}, err
	}
	tm.Finish(run.Metrics)

	jww.INFO.Printf("Trial %d [%s]: %s in %s, key %s", index, run.ID,
		transcript.Outcome, tm.Duration(), Fingerprint(transcript.KeyA))

	return TrialResult{Transcript: transcript, Metrics: tm}, nil
}
