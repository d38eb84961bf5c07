////////////////////////////////////////////////////////////////////////////////
// Copyright © 2022 xx foundation                                             //
//                                                                            //
// Use of this source code is governed by a license that can be found in the  //
// LICENSE file.                                                              //
////////////////////////////////////////////////////////////////////////////////

package conf

import (
	"net"

	"github.com/pkg/errors"
	jww "github.com/spf13/jwalterweatherman"
	"github.com/spf13/viper"
	"gitlab.com/elixxir/mobs/protocol"
)

const (
	// Universe size and exponent length used when the config sets neither
	DefaultUniverseSize = 381
	DefaultExponentBits = 500

	defaultLogPath = "./mobs.log"
)

// This object is used by the trial command.
// It should be constructed using a viper object
type Params struct {
	RngScalingFactor uint `yaml:"rngScalingFactor"`

	Protocol Protocol
	Trials   Trials
	Database Database
	Paths    Paths

	DevMode bool `yaml:"devMode"`
}

// NewParams gets elements of the viper object
// and updates the params object. It returns params
// unless it fails to parse in which it case returns error
func NewParams(vip *viper.Viper) (*Params, error) {
	var err error
	params := Params{}

	vip.SetDefault("protocol.universeSize", DefaultUniverseSize)
	vip.SetDefault("protocol.exponentBits", DefaultExponentBits)
	vip.SetDefault("trials.count", 1)

	params.Protocol.UniverseSize = vip.GetInt("protocol.universeSize")
	if params.Protocol.UniverseSize < 1 {
		return nil, errors.Errorf("protocol.universeSize must be positive, "+
			"got %d", params.Protocol.UniverseSize)
	}
	params.Protocol.ExponentBits = vip.GetInt("protocol.exponentBits")
	if params.Protocol.ExponentBits < 1 {
		return nil, errors.Errorf("protocol.exponentBits must be positive, "+
			"got %d", params.Protocol.ExponentBits)
	}

	params.Trials.Count = vip.GetInt("trials.count")
	if params.Trials.Count < 1 {
		return nil, errors.Errorf("trials.count must be positive, got %d",
			params.Trials.Count)
	}
	params.Trials.Threads = vip.GetInt("trials.threads")
	if params.Trials.Threads < 0 {
		return nil, errors.Errorf("trials.threads cannot be negative, "+
			"got %d", params.Trials.Threads)
	}
	params.Trials.FixedBase = vip.GetBool("trials.fixedBase")
	params.Trials.Memoize = vip.GetBool("trials.memoize")
	if params.Trials.Memoize && !params.Trials.FixedBase {
		return nil, errors.New("trials.memoize requires trials.fixedBase")
	}
	params.Trials.Seed = vip.GetString("trials.seed")

	params.RngScalingFactor = vip.GetUint("rngScalingFactor")
	// If RngScalingFactor is not set, then set default value
	if params.RngScalingFactor == 0 {
		params.RngScalingFactor = protocol.DefaultRngScalingFactor
	}

	params.Paths.Log = LogPath(vip)
	params.Paths.Output = vip.GetString("paths.output")

	// Obtain database connection info
	rawAddr := vip.GetString("database.address")
	var addr, port string
	if rawAddr != "" {
		addr, port, err = net.SplitHostPort(rawAddr)
		if err != nil {
			return nil, errors.Wrapf(err, "Unable to get database port "+
				"from %s", rawAddr)
		}
	}
	params.Database.Name = vip.GetString("database.name")
	params.Database.Username = vip.GetString("database.username")
	params.Database.Password = vip.GetString("database.password")
	params.Database.Address = addr
	params.Database.Port = port

	params.DevMode = vip.GetBool("devMode")

	return &params, nil
}

// LogPath returns the configured log file, or the default log file when the
// config sets none.
func LogPath(vip *viper.Viper) string {
	if path := vip.GetString("paths.log"); path != "" {
		return path
	}
	return defaultLogPath
}

// ConvertToTrialParams builds the trial runner configuration from the Params
// object. A configured seed makes the whole batch reproducible for any thread
// count.
func (p *Params) ConvertToTrialParams() protocol.TrialParams {
	tp := protocol.TrialParams{
		Params: protocol.Params{
			UniverseSize: p.Protocol.UniverseSize,
			ExponentBits: p.Protocol.ExponentBits,
		},
		Count:            p.Trials.Count,
		Threads:          p.Trials.Threads,
		FixedBase:        p.Trials.FixedBase,
		Memoize:          p.Trials.Memoize,
		RngScalingFactor: p.RngScalingFactor,
	}
	if p.Trials.Seed != "" {
		jww.WARN.Printf("Trials are seeded, keys are reproducible and " +
			"must not be used outside of testing")
		tp.Seed = []byte(p.Trials.Seed)
	}
	return tp
}
