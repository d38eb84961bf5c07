////////////////////////////////////////////////////////////////////////////////
// Copyright © 2022 xx foundation                                             //
//                                                                            //
// Use of this source code is governed by a license that can be found in the  //
// LICENSE file.                                                              //
////////////////////////////////////////////////////////////////////////////////

// Package cmd initializes the CLI and config parsers as well as the logger.
package cmd

import (
	"fmt"
	"os"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"
	jww "github.com/spf13/jwalterweatherman"
	"github.com/spf13/viper"
	"gitlab.com/elixxir/mobs/cmd/conf"
)

var cfgFile string
var verbose bool
var showVer bool
var validConfig bool

// rootCmd represents the base command when called without any sub-commands
var rootCmd = &cobra.Command{
	Use:   "mobs",
	Short: "Runs key agreement trials over matrices of bit sets",
	Long: `Runs Diffie-Hellman style key agreement trials over the semidirect
product of 3x3 bit set matrices and permutations, verifies that both parties
derive the same key and reports timings.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if showVer {
			printVersion()
			return nil
		}
		if !validConfig {
			jww.WARN.Printf("No usable config file, running with flags " +
				"and defaults")
		}
		return runTrials(viper.GetViper(), os.Stdout)
	},
}

// Execute adds all child commands to the root command and sets flags
// appropriately.  This is called by main.main(). It only needs to
// happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		jww.ERROR.Printf("Exiting with error: %s", err.Error())
		os.Exit(1)
	}
	jww.INFO.Printf("Exiting without error...")
}

// init is the initialization function for Cobra which defines commands
// and flags.
func init() {
	cobra.OnInitialize(initConfig, initLog)

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "",
		"config file (default is $HOME/.elixxir/mobs.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"Verbose mode for debugging")
	rootCmd.Flags().BoolVarP(&showVer, "version", "V", false,
		"Show the version information.")

	rootCmd.PersistentFlags().IntP("universe", "n", 0,
		"Size of the universe sets and permutations range over")
	rootCmd.PersistentFlags().IntP("bits", "l", 0,
		"Bit length of each private exponent")
	rootCmd.PersistentFlags().IntP("trials", "t", 0,
		"Number of key agreements to run")
	rootCmd.PersistentFlags().Int("threads", 0,
		"Number of trial workers (default is one per CPU)")
	rootCmd.PersistentFlags().String("seed", "",
		"Seed for reproducible trials. Keys become predictable.")
	rootCmd.PersistentFlags().Bool("fixedBase", false,
		"Share one public base between all trials")
	rootCmd.PersistentFlags().Bool("memoize", false,
		"Compute powers of the fixed base from a power table")
	rootCmd.PersistentFlags().StringP("out", "o", "",
		"Write the trials to this YAML file")
	rootCmd.PersistentFlags().Bool("devMode", false,
		"Store trials in memory when no database is configured")

	bindings := map[string]string{
		"verbose":               "verbose",
		"protocol.universeSize": "universe",
		"protocol.exponentBits": "bits",
		"trials.count":          "trials",
		"trials.threads":        "threads",
		"trials.seed":           "seed",
		"trials.fixedBase":      "fixedBase",
		"trials.memoize":        "memoize",
		"paths.output":          "out",
		"devMode":               "devMode",
	}
	for key, flag := range bindings {
		err := viper.BindPFlag(key, rootCmd.PersistentFlags().Lookup(flag))
		handleBindingError(err, key)
	}
}

func handleBindingError(err error, flag string) {
	if err != nil {
		jww.FATAL.Panicf("Error on binding flag \"%s\":%+v", flag, err)
	}
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	validConfig = false

	//Use default config location if none is passed
	if cfgFile == "" {
		// Find home directory.
		home, err := homedir.Dir()
		if err != nil {
			jww.ERROR.Println(err)
			os.Exit(1)
		}

		cfgFile = home + "/.elixxir/mobs.yaml"
	}

	if _, err := os.Stat(cfgFile); err != nil {
		jww.DEBUG.Printf("Invalid config file (%s): %s", cfgFile,
			err.Error())
		return
	}

	viper.SetConfigFile(cfgFile)

	viper.AutomaticEnv() // read in environment variables that match

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err != nil {
		jww.ERROR.Printf("Unable to read config file (%s): %s", cfgFile,
			err.Error())
		return
	}
	validConfig = true
}

// initLog initializes logging thresholds and the log path.
func initLog() {
	// If verbose flag set then log more info for debugging
	if viper.GetBool("verbose") {
		jww.SetLogThreshold(jww.LevelDebug)
		jww.SetStdoutThreshold(jww.LevelDebug)
	} else {
		jww.SetLogThreshold(jww.LevelInfo)
		jww.SetStdoutThreshold(jww.LevelWarn)
	}

	// Create log file, overwrites if existing
	logPath, err := homedir.Expand(conf.LogPath(viper.GetViper()))
	if err != nil {
		fmt.Printf("Invalid log path %s, logging to stdout only.\n", logPath)
		return
	}
	logFile, err := os.Create(logPath)
	if err != nil {
		fmt.Printf("Invalid or missing log path %s, "+
			"logging to stdout only.\n", logPath)
	} else {
		jww.SetLogOutput(logFile)
	}
}
