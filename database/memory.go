package database

import (
	"sync"

	"github.com/templateapi/go-todo/models"
	"github.com/templateapi/go-todo/repository"
)

// MemoryStore keeps todo items in an ordered slice. It backs the test suite
// and lets the template run without a database. The mutex serializes
// individual store operations; it provides no isolation across a
// read-then-commit sequence, same as the SQL store.
type MemoryStore struct {
	mu    sync.Mutex
	items []models.TodoEntity
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{items: []models.TodoEntity{}}
}

func (s *MemoryStore) Get(id int) (models.TodoEntity, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, item := range s.items {
		if item.ID == id {
			return item, true, nil
		}
	}
	return models.TodoEntity{}, false, nil
}

// All returns the items in insertion order.
func (s *MemoryStore) All() ([]models.TodoEntity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.TodoEntity, len(s.items))
	copy(out, s.items)
	return out, nil
}

func (s *MemoryStore) Count() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items), nil
}

// Commit applies all staged changes under one lock hold. Updates and deletes
// that match no record count zero rows, mirroring SQL semantics.
func (s *MemoryStore) Commit(changes []repository.Change) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	total := 0
	for _, change := range changes {
		switch change.Kind {
		case repository.ChangeInsert:
			s.items = append(s.items, change.Item)
			total++
		case repository.ChangeUpdate:
			for i := range s.items {
				if s.items[i].ID == change.ID {
					s.items[i] = change.Item
					total++
					break
				}
			}
		case repository.ChangeDelete:
			for i := range s.items {
				if s.items[i].ID == change.ID {
					s.items = append(s.items[:i], s.items[i+1:]...)
					total++
					break
				}
			}
		}
	}
	return total, nil
}
