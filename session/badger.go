package session

import (
	"os"

	"github.com/dgraph-io/badger/v4"
	"github.com/pkg/errors"
)

type badgerDB struct {
	db *badger.DB
}

// OpenBadger opens or creates a Persistent store in dir using Badger.
func OpenBadger(dir string) (*Persistent, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, err
	}
	opts := badger.DefaultOptions(dir)
	opts.Logger = nil
	opts.SyncWrites = true
	// session records are tiny
	opts.ValueLogFileSize = 1 << 20

	db, err := badger.Open(opts)
	if err != nil {
		return nil, errors.Wrapf(err, "opening badger session store %s", dir)
	}
	return newPersistent(&badgerDB{db: db})
}

func (b *badgerDB) Get(key []byte) ([]byte, error) {
	var data []byte
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}
		data, err = item.ValueCopy(nil)
		return err
	})
	return data, err
}

func (b *badgerDB) Put(key, value []byte) error {
	return b.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key, value)
	})
}

func (b *badgerDB) Close() error {
	return b.db.Close()
}
