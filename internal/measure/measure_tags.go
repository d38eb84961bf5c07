////////////////////////////////////////////////////////////////////////////////
// Copyright © 2022 xx foundation                                             //
//                                                                            //
// Use of this source code is governed by a license that can be found in the  //
// LICENSE file.                                                              //
////////////////////////////////////////////////////////////////////////////////

package measure

// measure_tags.go contains the string constants for our measure tags

// Constants for Tag strings used by Measure(), one per protocol stage
const (
	TagStart        = "Start"
	TagSetup        = "Setup"
	TagKeyDraw      = "Key Draw"
	TagPublicValues = "Public Values"
	TagSharedSecret = "Shared Secret"
	TagVerification = "Verification"
	TagFinish       = "Finish"
)
