package store

import (
	"os"
	"sync"
)

const defaultName = "data.json"

type Store struct {
	mu   sync.Mutex
	path string
}

type Loader interface {
	Load() error
}

func Open(path string) *Store {
	return &Store{path: path}
}

func (s *Store) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := os.Stat(s.path)
	return err
}
