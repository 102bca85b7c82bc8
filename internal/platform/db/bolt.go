package db

import (
	"errors"
	"fmt"
	"time"

	bolt "go.etcd.io/bbolt"
)

// Bolt wraps the embedded single-file store.
type Bolt struct {
	DB *bolt.DB
}

// OpenBolt opens or creates the database file at path. Bolt takes an
// exclusive file lock, so a second process waits up to the timeout and fails.
func OpenBolt(path string) (*Bolt, error) {
	if path == "" {
		return nil, errors.New("bolt path is required")
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 5 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("open bolt %s: %w", path, err)
	}
	return &Bolt{DB: db}, nil
}

func (b *Bolt) Close() error {
	if b == nil || b.DB == nil {
		return nil
	}
	return b.DB.Close()
}
