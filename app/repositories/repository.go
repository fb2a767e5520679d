package repositories

import (
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"github.com/sirupsen/logrus"
)

var (
	ErrNotFound = errors.New("record not found")
)

// Options configures the badger database
type Options struct {
	Path     string
	InMemory bool
	Logger   logrus.FieldLogger
}

// Open opens the badger database holding session state
func Open(opts Options) (*badger.DB, error) {
	badgerOpts := badger.DefaultOptions(opts.Path).
		WithNumVersionsToKeep(1).
		WithLogger(nil)
	if opts.InMemory {
		badgerOpts = badger.DefaultOptions("").WithInMemory(true).WithLogger(nil)
	}
	if opts.Logger != nil {
		badgerOpts = badgerOpts.WithLogger(opts.Logger.WithField("component", "badger"))
	}

	db, err := badger.Open(badgerOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to open state store: %w", err)
	}
	return db, nil
}
