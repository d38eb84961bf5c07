////////////////////////////////////////////////////////////////////////////////
// Copyright © 2022 xx foundation                                             //
//                                                                            //
// Use of this source code is governed by a license that can be found in the  //
// LICENSE file.                                                              //
////////////////////////////////////////////////////////////////////////////////

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// SEMVER is the version of the mobs command
const SEMVER = "0.1.0"

func init() {
	rootCmd.AddCommand(versionCmd)
}

func printVersion() {
	fmt.Printf("MOBS key agreement v%s\n", SEMVER)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of mobs",
	Long:  `Print the version number of mobs.`,
	Run: func(cmd *cobra.Command, args []string) {
		printVersion()
	},
}
