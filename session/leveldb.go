package session

import (
	"os"

	"github.com/jmhodges/levigo"
	"github.com/pkg/errors"
)

type levelDB struct {
	db *levigo.DB
	wo *levigo.WriteOptions
	ro *levigo.ReadOptions
}

// OpenLevelDB opens or creates a Persistent store in dir using LevelDB.
func OpenLevelDB(dir string) (*Persistent, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, err
	}
	opts := levigo.NewOptions()
	opts.SetCreateIfMissing(true)
	opts.SetMaxOpenFiles(16)

	db, err := levigo.Open(dir, opts)
	if err != nil {
		return nil, errors.Wrapf(err, "opening leveldb session store %s", dir)
	}
	wo := levigo.NewWriteOptions()
	wo.SetSync(true)
	return newPersistent(&levelDB{
		db: db,
		wo: wo,
		ro: levigo.NewReadOptions(),
	})
}

func (l *levelDB) Get(key []byte) ([]byte, error) {
	return l.db.Get(l.ro, key)
}

func (l *levelDB) Put(key, value []byte) error {
	return l.db.Put(l.wo, key, value)
}

func (l *levelDB) Close() error {
	l.ro.Close()
	l.wo.Close()
	l.db.Close()
	return nil
}
