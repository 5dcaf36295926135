package repository

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/boltdb/bolt"
)

var (
	usersBucket                = []byte("Users")
	usersByNameBucket          = []byte("Users.Name")
	usersByContactNumberBucket = []byte("Users.ContactNumber")
)

// BoltDB represents a handle to an embedded Bolt database.
type BoltDB struct {
	db *bolt.DB

	Path string
	Now  func() time.Time
}

// NewBoltDB returns a new instance of BoltDB.
func NewBoltDB(path string) *BoltDB {
	return &BoltDB{
		Path: path,
		Now:  time.Now,
	}
}

// Open opens the database and creates the user buckets.
func (db *BoltDB) Open() error {
	// Create parent directory, if necessary.
	if err := os.MkdirAll(filepath.Dir(db.Path), 0700); err != nil {
		return fmt.Errorf("failed to create bolt directory: %w", err)
	}

	d, err := bolt.Open(db.Path, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return fmt.Errorf("failed to open bolt database %s: %w", db.Path, err)
	}
	db.db = d

	err = d.Update(func(tx *bolt.Tx) error {
		for _, name := range [][]byte{usersBucket, usersByNameBucket, usersByContactNumberBucket} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		d.Close()
		return fmt.Errorf("failed to initialize bolt buckets: %w", err)
	}
	return nil
}

// Close closes the database.
func (db *BoltDB) Close() error {
	if db.db != nil {
		return db.db.Close()
	}
	return nil
}
