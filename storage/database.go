////////////////////////////////////////////////////////////////////////////////
// Copyright © 2022 xx foundation                                             //
//                                                                            //
// Use of this source code is governed by a license that can be found in the  //
// LICENSE file.                                                              //
////////////////////////////////////////////////////////////////////////////////

// Handles low level database control and interfaces

package storage

import (
	"fmt"
	"sync"
	"time"

	"github.com/pkg/errors"
	jww "github.com/spf13/jwalterweatherman"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// DbTimeout determines maximum runtime (in seconds) of specific DB queries
const DbTimeout = 1

// Interface declaration for storage methods
type database interface {
	InsertTrial(trial *Trial) error
	GetTrial(id string) (*Trial, error)
	GetTrials(batchId string) ([]*Trial, error)
}

// DatabaseImpl Struct implementing the database Interface with an underlying DB
type DatabaseImpl struct {
	db *gorm.DB // Stored database connection
}

// MapImpl Struct implementing the database Interface with an underlying Map
type MapImpl struct {
	trials map[string]*Trial
	sync.Mutex
}

// Trial is the stored record of one key agreement. Algebra values are
// encoded with EncodeMatrix and EncodePermutation. Private exponents are
// never stored.
type Trial struct {
	Id      string `gorm:"primaryKey" yaml:"id"`
	BatchId string `gorm:"not null;index" yaml:"batch"`
	Index   int    `gorm:"not null" yaml:"index"`

	UniverseSize int `gorm:"not null" yaml:"universeSize"`
	ExponentBits int `gorm:"not null" yaml:"exponentBits"`

	// Public base
	BaseMatrix      string `gorm:"not null" yaml:"baseMatrix"`
	BasePermutation string `gorm:"not null" yaml:"basePermutation"`

	// Published values
	PublicAMatrix      string `gorm:"not null" yaml:"publicAMatrix"`
	PublicAPermutation string `gorm:"not null" yaml:"publicAPermutation"`
	PublicBMatrix      string `gorm:"not null" yaml:"publicBMatrix"`
	PublicBPermutation string `gorm:"not null" yaml:"publicBPermutation"`

	// Derived keys
	KeyA string `gorm:"not null" yaml:"keyA"`
	KeyB string `gorm:"not null" yaml:"keyB"`

	Agreed    bool      `gorm:"not null" yaml:"agreed"`
	Outcome   string    `gorm:"not null" yaml:"outcome"`
	CreatedAt time.Time `gorm:"not null" yaml:"createdAt"`
}

// Initialize the database interface with database backend
// Returns a database interface and error
func newDatabase(username, password, dbName, address, port string, devMode bool) (database, error) {
	var err error
	var db *gorm.DB

	// Connect to the database if the correct information is provided
	if address != "" && port != "" {
		// Create the database connection
		connectString := fmt.Sprintf(
			"host=%s port=%s user=%s dbname=%s sslmode=disable",
			address, port, username, dbName)
		// Handle empty database password
		if len(password) > 0 {
			connectString += fmt.Sprintf(" password=%s", password)
		}
		db, err = gorm.Open(postgres.Open(connectString), &gorm.Config{
			Logger: logger.New(jww.TRACE, logger.Config{LogLevel: logger.Info}),
		})
	}

	// Fall back to the map backend when no database is configured or the
	// connection fails
	if (address == "" || port == "") || err != nil {
		var failReason string
		if err != nil {
			failReason = fmt.Sprintf("Unable to initialize database backend: %+v", err)
		} else {
			failReason = "Database backend connection information not provided"
		}
		jww.WARN.Print(failReason)

		if !devMode {
			jww.FATAL.Panicf("Cannot store trials outside of dev mode "+
				"without a database: %s", failReason)
		}

		defer jww.INFO.Println("Map backend initialized successfully!")
		return database(newMapImpl()), nil
	}

	// Get and configure the internal database ConnPool
	sqlDb, err := db.DB()
	if err != nil {
		return database(&DatabaseImpl{}), errors.Errorf("Unable to configure database connection pool: %+v", err)
	}
	sqlDb.SetMaxIdleConns(10)
	sqlDb.SetMaxOpenConns(100)
	sqlDb.SetConnMaxLifetime(24 * time.Hour)

	// Initialize the database schema
	models := []interface{}{&Trial{}}
	for _, model := range models {
		err = db.AutoMigrate(model)
		if err != nil {
			return database(&DatabaseImpl{}), err
		}
	}

	jww.INFO.Println("Database backend initialized successfully!")
	return database(&DatabaseImpl{db: db}), nil
}

func newMapImpl() *MapImpl {
	return &MapImpl{trials: make(map[string]*Trial)}
}
