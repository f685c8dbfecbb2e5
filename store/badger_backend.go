package store

import (
	"github.com/dgraph-io/badger/v2"
	"github.com/pkg/errors"
)

// BadgerBackend keeps partials on disk so workers from different processes
// can hand states to a merger through a shared directory.
type BadgerBackend struct {
	db *badger.DB
}

// OpenBadgerDB opens the exchange database under dir; an empty dir opens
// an in-memory instance, used in tests.
func OpenBadgerDB(dir string) (*badger.DB, error) {
	if dir == "" {
		return badger.Open(badger.DefaultOptions("").WithInMemory(true))
	}
	return badger.Open(badger.DefaultOptions(dir))
}

func NewBadgerBackend(db *badger.DB) *BadgerBackend {
	return &BadgerBackend{db: db}
}

func (backend *BadgerBackend) txnGet(key []byte) ([]byte, error) {
	var partial []byte
	err := backend.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return err
		}
		partial, err = item.ValueCopy(nil)
		return err
	})
	return partial, err
}

func (backend *BadgerBackend) txnPut(key, partial []byte) error {
	return backend.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key, partial)
	})
}

func (backend *BadgerBackend) txnDelete(key []byte) error {
	return backend.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(key)
	})
}

func (backend *BadgerBackend) Get(groupID, workerID int64) ([]byte, error) {
	partial, err := backend.txnGet(Key(groupID, workerID))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, errors.Wrapf(ErrNotFound, "group %d worker %d", groupID, workerID)
	}
	return partial, err
}

func (backend *BadgerBackend) Put(groupID, workerID int64, partial []byte) error {
	return backend.txnPut(Key(groupID, workerID), partial)
}

func (backend *BadgerBackend) Delete(groupID, workerID int64) error {
	return backend.txnDelete(Key(groupID, workerID))
}

func (backend *BadgerBackend) Scan(groupID int64, fn func(int64, []byte) error) error {
	return backend.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = GroupPrefix(groupID)
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			item := it.Item()
			key := item.KeyCopy(nil)
			partial, err := item.ValueCopy(nil)
			if err != nil {
				return err
			}
			if err := fn(WorkerIDFromKey(key), partial); err != nil {
				return err
			}
		}
		return nil
	})
}

func (backend *BadgerBackend) Close() error {
	return backend.db.Close()
}
