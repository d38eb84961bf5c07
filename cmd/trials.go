////////////////////////////////////////////////////////////////////////////////
// Copyright © 2022 xx foundation                                             //
//                                                                            //
// Use of this source code is governed by a license that can be found in the  //
// LICENSE file.                                                              //
////////////////////////////////////////////////////////////////////////////////

package cmd

import (
	"context"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/mitchellh/go-homedir"
	"github.com/pkg/errors"
	jww "github.com/spf13/jwalterweatherman"
	"github.com/spf13/viper"
	"gitlab.com/elixxir/mobs/cmd/conf"
	"gitlab.com/elixxir/mobs/protocol"
	"gitlab.com/elixxir/mobs/storage"
)

// Time between memory reports while a batch runs
const memoryCheckPeriod = 30 * time.Second

// Growth in heap use that triggers a memory report
const memoryDeltaThreshold = uint64(100 << 20)

// runTrials loads the config, runs the configured batch and reports it to w.
func runTrials(vip *viper.Viper, w io.Writer) error {
	params, err := conf.NewParams(vip)
	if err != nil {
		return errors.WithMessage(err, "invalid configuration")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	stop := ReceiveExitSignal()
	go func() {
		select {
		case sig := <-stop:
			jww.WARN.Printf("Received %s, stopping trials", sig)
			cancel()
		case <-ctx.Done():
		}
	}()
	go monitorMemoryUsage(ctx, memoryCheckPeriod, memoryDeltaThreshold)

	batchId := uuid.New().String()
	tp := params.ConvertToTrialParams()
	jww.INFO.Printf("Starting batch %s: %d trials, N=%d, L=%d", batchId,
		tp.Count, tp.UniverseSize, tp.ExponentBits)

	results, err := protocol.RunTrials(ctx, tp)
	if err != nil {
		return err
	}

	printReport(w, batchId, results, vip.GetBool("verbose"))

	transcripts := make([]*protocol.Transcript, len(results))
	for i, r := range results {
		transcripts[i] = r.Transcript
	}

	if params.DevMode || params.Database.Address != "" {
		db, err := storage.NewStorage(params.Database.Username,
			params.Database.Password, params.Database.Name,
			params.Database.Address, params.Database.Port, params.DevMode)
		if err != nil {
			return errors.WithMessage(err, "failed to open trial store")
		}
		if err = db.StoreTranscripts(batchId, tp.ExponentBits,
			transcripts); err != nil {
			return err
		}
		jww.INFO.Printf("Stored %d trials of batch %s", len(transcripts),
			batchId)
	}

	if params.Paths.Output != "" {
		path, err := homedir.Expand(params.Paths.Output)
		if err != nil {
			return errors.Wrapf(err, "invalid output path %s",
				params.Paths.Output)
		}
		trials := make([]*storage.Trial, len(transcripts))
		for i, t := range transcripts {
			trials[i] = storage.NewTrial(batchId, i, tp.ExponentBits, t)
		}
		if err = storage.WriteTrials(path, batchId, trials); err != nil {
			return err
		}
		jww.INFO.Printf("Wrote batch %s to %s", batchId, path)
	}

	if mismatches := countMismatches(results); mismatches > 0 {
		return errors.Errorf("%d of %d trials failed to agree on a key",
			mismatches, len(results))
	}
	return nil
}
