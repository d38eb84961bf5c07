////////////////////////////////////////////////////////////////////////////////
// Copyright © 2022 xx foundation                                             //
//                                                                            //
// Use of this source code is governed by a license that can be found in the  //
// LICENSE file.                                                              //
////////////////////////////////////////////////////////////////////////////////

// Handles the database ORM for trials

package storage

import (
	"context"
	"time"

	"github.com/pkg/errors"
	jww "github.com/spf13/jwalterweatherman"
)

// Helper for forcing panics in the event of a CDE, otherwise acts as a pass-through
func catchCde(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		jww.FATAL.Panicf("Database call timed out: %+v", err.Error())
	}
	return err
}

// InsertTrial stores a new Trial in the Database
func (d *DatabaseImpl) InsertTrial(trial *Trial) error {
	ctx, cancel := context.WithTimeout(context.Background(), DbTimeout*time.Second)
	defer cancel()

	return catchCde(d.db.WithContext(ctx).Create(trial).Error)
}

// GetTrial returns the Trial with the given ID from the Database
// Or an error if a matching Trial does not exist
func (d *DatabaseImpl) GetTrial(id string) (*Trial, error) {
	ctx, cancel := context.WithTimeout(context.Background(), DbTimeout*time.Second)
	defer cancel()

	result := &Trial{Id: id}
	err := d.db.WithContext(ctx).Take(result).Error
	return result, catchCde(err)
}

// GetTrials returns every Trial of the given batch in trial order
func (d *DatabaseImpl) GetTrials(batchId string) ([]*Trial, error) {
	ctx, cancel := context.WithTimeout(context.Background(), DbTimeout*time.Second)
	defer cancel()

	var results []*Trial
	err := d.db.WithContext(ctx).Where(&Trial{BatchId: batchId}).
		Order("index").Find(&results).Error
	return results, catchCde(err)
}
