package stats

import (
	"context"
	"fmt"
	"sync"

	"github.com/lox/blackjack/internal/fileutil"
)

// FileStore keeps stats as a JSON document on disk
type FileStore struct {
	Path string
}

// NewFileStore returns a store writing to path
func NewFileStore(path string) *FileStore {
	return &FileStore{Path: path}
}

func (f *FileStore) Load(ctx context.Context) (Stats, error) {
	if err := ctx.Err(); err != nil {
		return Stats{}, err
	}
	var s Stats
	found, err := fileutil.ReadJSON(f.Path, &s)
	if err != nil {
		return Stats{}, err
	}
	if !found {
		return Stats{}, ErrNotFound
	}
	if !s.Valid() {
		return Stats{}, fmt.Errorf("stats file %s: inconsistent counters", f.Path)
	}
	return s, nil
}

func (f *FileStore) Save(ctx context.Context, s Stats) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return fileutil.WriteJSON(f.Path, s)
}

// MemoryStore keeps stats in process. The zero value is empty.
type MemoryStore struct {
	mu    sync.Mutex
	stats *Stats
	saves int
}

func (m *MemoryStore) Load(ctx context.Context) (Stats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.stats == nil {
		return Stats{}, ErrNotFound
	}
	return *m.stats, nil
}

func (m *MemoryStore) Save(ctx context.Context, s Stats) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stats = &s
	m.saves++
	return nil
}

// Saves reports how many times Save has been called
func (m *MemoryStore) Saves() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}
