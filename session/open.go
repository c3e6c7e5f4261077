package session

import (
	"fmt"
	"path/filepath"

	"github.com/omniscale/osmapi/logging"
)

var log = logging.NewLogger("session")

const (
	MemoryStore  = "memory"
	BadgerStore  = "badger"
	LevelDBStore = "leveldb"
)

// Open returns the store of the given kind. Persistent stores are
// created in a sub-directory of dir named after the kind.
func Open(kind, dir string) (ClosableStore, error) {
	switch kind {
	case MemoryStore, "":
		return NewMemory(), nil
	case BadgerStore:
		path := filepath.Join(dir, BadgerStore)
		log.Debugf("opening %s", path)
		p, err := OpenBadger(path)
		if err != nil {
			return nil, err
		}
		return p, nil
	case LevelDBStore:
		path := filepath.Join(dir, LevelDBStore)
		log.Debugf("opening %s", path)
		p, err := OpenLevelDB(path)
		if err != nil {
			return nil, err
		}
		return p, nil
	default:
		return nil, fmt.Errorf("unknown session store '%s'", kind)
	}
}
