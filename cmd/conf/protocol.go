////////////////////////////////////////////////////////////////////////////////
// Copyright © 2022 xx foundation                                             //
//                                                                            //
// Use of this source code is governed by a license that can be found in the  //
// LICENSE file.                                                              //
////////////////////////////////////////////////////////////////////////////////

package conf

// Protocol contains the key agreement parameters
type Protocol struct {
	UniverseSize int `yaml:"universeSize"`
	ExponentBits int `yaml:"exponentBits"`
}

// Trials contains the config params for repeated runs
type Trials struct {
	Count     int
	Threads   int
	FixedBase bool `yaml:"fixedBase"`
	Memoize   bool
	// Seeds a reproducible batch; empty uses system entropy
	Seed string
}
