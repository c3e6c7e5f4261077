// Package session keeps the state of an API session: the current user,
// the Basic-Auth credentials and the active changeset.
package session

import (
	"errors"
	"io"
	"sync"
)

var ErrClosed = errors.New("session store closed")

// State is a snapshot of all session values.
type State struct {
	UserID      string
	UserName    string
	Credentials string
	Changeset   string
}

// Store is the session-state contract of the api package. Setters
// persist the value before they return.
type Store interface {
	UserID() string
	SetUserID(id string) error
	UserName() string
	SetUserName(name string) error
	Credentials() string
	SetCredentials(token string) error
	Changeset() string
	SetChangeset(id string) error
}

// ClosableStore is a Store with resources that need to be released.
type ClosableStore interface {
	Store
	io.Closer
}

// Memory is a Store that lives as long as the process.
type Memory struct {
	mu    sync.RWMutex
	state State
}

func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

func (m *Memory) get(f func(*State) string) string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return f(&m.state)
}

func (m *Memory) set(f func(*State)) error {
	m.mu.Lock()
	f(&m.state)
	m.mu.Unlock()
	return nil
}

func (m *Memory) UserID() string {
	return m.get(func(s *State) string { return s.UserID })
}

func (m *Memory) SetUserID(id string) error {
	return m.set(func(s *State) { s.UserID = id })
}

func (m *Memory) UserName() string {
	return m.get(func(s *State) string { return s.UserName })
}

func (m *Memory) SetUserName(name string) error {
	return m.set(func(s *State) { s.UserName = name })
}

func (m *Memory) Credentials() string {
	return m.get(func(s *State) string { return s.Credentials })
}

func (m *Memory) SetCredentials(token string) error {
	return m.set(func(s *State) { s.Credentials = token })
}

func (m *Memory) Changeset() string {
	return m.get(func(s *State) string { return s.Changeset })
}

func (m *Memory) SetChangeset(id string) error {
	return m.set(func(s *State) { s.Changeset = id })
}

func (m *Memory) Close() error {
	return nil
}
