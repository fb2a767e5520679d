package repositories

import (
	"errors"

	"postview/app/models"

	"github.com/dgraph-io/badger/v4"
)

const maxConflictRetries = 5

// BadgerStateRepository implements StateRepository using BadgerDB
type BadgerStateRepository struct {
	db *badger.DB
}

// NewBadgerStateRepository creates a new BadgerStateRepository
func NewBadgerStateRepository(db *badger.DB) *BadgerStateRepository {
	return &BadgerStateRepository{db: db}
}

// Get retrieves the state stored under key
func (r *BadgerStateRepository) Get(key string) (*models.State, error) {
	var state models.State

	err := r.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(stateKey(key))
		if err == badger.ErrKeyNotFound {
			return ErrNotFound
		}
		if err != nil {
			return err
		}

		return item.Value(func(val []byte) error {
			return unmarshalEntity(val, &state)
		})
	})

	if err != nil {
		return nil, err
	}
	return &state, nil
}

// Update applies fn to the stored state inside a single transaction
func (r *BadgerStateRepository) Update(key string, fn func(state *models.State) error) (*models.State, error) {
	var state models.State

	var err error
	for attempt := 0; attempt < maxConflictRetries; attempt++ {
		state = models.State{}
		err = r.db.Update(func(txn *badger.Txn) error {
			item, err := txn.Get(stateKey(key))
			switch {
			case err == badger.ErrKeyNotFound:
			case err != nil:
				return err
			default:
				if err := item.Value(func(val []byte) error {
					return unmarshalEntity(val, &state)
				}); err != nil {
					return err
				}
			}

			if err := fn(&state); err != nil {
				return err
			}

			data, err := marshalEntity(state)
			if err != nil {
				return err
			}
			return txn.Set(stateKey(key), data)
		})
		if !errors.Is(err, badger.ErrConflict) {
			break
		}
	}

	if err != nil {
		return nil, err
	}
	return &state, nil
}

// Delete removes the state stored under key
func (r *BadgerStateRepository) Delete(key string) error {
	return r.db.Update(func(txn *badger.Txn) error {
		// Verify state exists
		_, err := txn.Get(stateKey(key))
		if err == badger.ErrKeyNotFound {
			return ErrNotFound
		}
		if err != nil {
			return err
		}

		return txn.Delete(stateKey(key))
	})
}

// Count returns the number of stored session states
func (r *BadgerStateRepository) Count() (int, error) {
	count := 0
	err := r.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte(StateKeyPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			count++
		}
		return nil
	})
	return count, err
}
