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
	"os"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	jww "github.com/spf13/jwalterweatherman"
	"github.com/spf13/viper"
	"gitlab.com/elixxir/mobs/cmd/conf"
	"gitlab.com/elixxir/mobs/protocol"
	"gitlab.com/elixxir/mobs/rng"
	"gitlab.com/elixxir/mobs/semidirect"
	"gitlab.com/xx_network/crypto/csprng"
)

var iterations int

func init() {
	benchmarkCmd.Flags().IntVarP(&iterations, "iterations", "i", 20,
		"Number of exponents to time")

	rootCmd.AddCommand(benchmarkCmd)
}

var benchmarkCmd = &cobra.Command{
	Use:   "benchmark",
	Short: "Compares square-and-multiply against memoized powers",
	Long: `Times exponentiation of one public base by random exponents, once with
square-and-multiply and once with a precomputed table of its powers of two.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		params, err := conf.NewParams(viper.GetViper())
		if err != nil {
			return errors.WithMessage(err, "invalid configuration")
		}

		var src io.Reader = csprng.NewSystemRNG()
		if params.Trials.Seed != "" {
			src, err = rng.NewSeeded([]byte(params.Trials.Seed))
			if err != nil {
				return err
			}
		}

		result, err := benchmarkPowers(protocol.Params{
			UniverseSize: params.Protocol.UniverseSize,
			ExponentBits: params.Protocol.ExponentBits,
		}, src, iterations)
		if err != nil {
			return err
		}
		result.print(os.Stdout)
		return nil
	},
}

type benchResult struct {
	iterations int
	table      time.Duration
	plain      time.Duration
	memoized   time.Duration
}

// benchmarkPowers times both exponentiation strategies over the same
// exponents and fails if they ever disagree.
func benchmarkPowers(params protocol.Params, src io.Reader,
	iterations int) (benchResult, error) {
	if iterations < 1 {
		return benchResult{}, errors.Errorf("iterations must be positive, "+
			"got %d", iterations)
	}
	run, err := protocol.NewRun(params, src)
	if err != nil {
		return benchResult{}, err
	}
	base, err := run.Setup()
	if err != nil {
		return benchResult{}, err
	}

	result := benchResult{iterations: iterations}
	start := time.Now()
	table, err := semidirect.NewPowerTable(base, params.ExponentBits)
	if err != nil {
		return benchResult{}, err
	}
	result.table = time.Since(start)

	for i := 0; i < iterations; i++ {
		k, err := run.DrawExponent()
		if err != nil {
			return benchResult{}, err
		}

		start = time.Now()
		plain := base.Power(k)
		result.plain += time.Since(start)

		start = time.Now()
		memo, err := table.Power(k)
		if err != nil {
			return benchResult{}, err
		}
		result.memoized += time.Since(start)

		if !plain.Equal(memo) {
			return benchResult{}, errors.Errorf("memoized power differs "+
				"from square-and-multiply on iteration %d", i)
		}
	}
	jww.DEBUG.Printf("Benchmarked %d exponents", iterations)
	return result, nil
}

func (r benchResult) print(w io.Writer) {
	n := time.Duration(r.iterations)
	fmt.Fprintf(w, "Exponents timed:      %d\n", r.iterations)
	fmt.Fprintf(w, "Power table build:    %s\n", r.table)
	fmt.Fprintf(w, "Square-and-multiply:  %s per power\n", r.plain/n)
	fmt.Fprintf(w, "Memoized:             %s per power\n", r.memoized/n)
}
