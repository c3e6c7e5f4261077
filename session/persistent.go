package session

import (
	"sync"

	"github.com/pkg/errors"
)

var stateKey = []byte("session")

// backend is a key-value database. Get returns nil for missing keys.
type backend interface {
	Get(key []byte) ([]byte, error)
	Put(key, value []byte) error
	Close() error
}

// Persistent is a Store that writes every change through to a database.
type Persistent struct {
	mu     sync.RWMutex
	state  State
	db     backend
	closed bool
}

func newPersistent(db backend) (*Persistent, error) {
	p := &Persistent{db: db}
	data, err := db.Get(stateKey)
	if err != nil {
		db.Close()
		return nil, errors.Wrap(err, "loading session")
	}
	if data != nil {
		if p.state, err = unmarshalState(data); err != nil {
			db.Close()
			return nil, errors.Wrap(err, "decoding session")
		}
	}
	return p, nil
}

func (p *Persistent) State() State {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.state
}

func (p *Persistent) get(f func(*State) string) string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return f(&p.state)
}

// set updates the state only if it was stored successfully.
func (p *Persistent) set(f func(*State)) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return ErrClosed
	}
	s := p.state
	f(&s)
	data, err := marshalState(s)
	if err != nil {
		return errors.Wrap(err, "encoding session")
	}
	if err := p.db.Put(stateKey, data); err != nil {
		return errors.Wrap(err, "storing session")
	}
	p.state = s
	return nil
}

func (p *Persistent) UserID() string {
	return p.get(func(s *State) string { return s.UserID })
}

func (p *Persistent) SetUserID(id string) error {
	return p.set(func(s *State) { s.UserID = id })
}

func (p *Persistent) UserName() string {
	return p.get(func(s *State) string { return s.UserName })
}

func (p *Persistent) SetUserName(name string) error {
	return p.set(func(s *State) { s.UserName = name })
}

func (p *Persistent) Credentials() string {
	return p.get(func(s *State) string { return s.Credentials })
}

func (p *Persistent) SetCredentials(token string) error {
	return p.set(func(s *State) { s.Credentials = token })
}

func (p *Persistent) Changeset() string {
	return p.get(func(s *State) string { return s.Changeset })
}

func (p *Persistent) SetChangeset(id string) error {
	return p.set(func(s *State) { s.Changeset = id })
}

func (p *Persistent) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	p.closed = true
	return p.db.Close()
}
