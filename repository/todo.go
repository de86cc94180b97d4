package repository

import (
	"errors"
	"strings"

	"github.com/templateapi/go-todo/models"
)

// ErrNotFound signals that a lookup matched no record. Absence is a normal
// outcome, not a fault.
var ErrNotFound = errors.New("todo item not found")

// ChangeKind discriminates staged mutations.
type ChangeKind int

const (
	ChangeInsert ChangeKind = iota
	ChangeUpdate
	ChangeDelete
)

// Change is a single staged mutation, applied by the store on Commit.
type Change struct {
	Kind ChangeKind
	ID   int
	Item models.TodoEntity
}

// Store is the persistence collaborator. Implementations must apply a Commit
// batch atomically and serialize physical writes; they are handed to the
// repository at construction, never reached through package state.
type Store interface {
	// Get returns the record with the given id, and whether it exists.
	Get(id int) (models.TodoEntity, bool, error)
	// All returns every live record in store-defined stable order.
	All() ([]models.TodoEntity, error)
	// Count returns the number of live records.
	Count() (int, error)
	// Commit applies the staged changes as one atomic unit and reports the
	// number of rows touched. A negative count or an error means failure.
	Commit(changes []Change) (int, error)
}

// TodoRepository mediates all todo access: filtering, pagination, and the
// stage-then-save commit cycle. A repository is request-scoped: staged
// changes belong to one caller, and only the store behind it is shared.
type TodoRepository interface {
	GetSingle(id int) (models.TodoEntity, error)
	GetAll(qp models.QueryParameters) ([]models.TodoEntity, error)
	Count() (int, error)
	Add(item models.TodoEntity)
	Update(id int, item models.TodoEntity) models.TodoEntity
	Delete(item models.TodoEntity)
	Save() bool
}

type todoRepository struct {
	store   Store
	pending []Change
}

// NewTodoRepository wraps the given store. The repository is request-scoped
// state-wise: staged changes live until the next Save.
func NewTodoRepository(store Store) TodoRepository {
	return &todoRepository{store: store}
}

func (r *todoRepository) GetSingle(id int) (models.TodoEntity, error) {
	item, ok, err := r.store.Get(id)
	if err != nil {
		return models.TodoEntity{}, err
	}
	if !ok {
		return models.TodoEntity{}, ErrNotFound
	}
	return item, nil
}

// GetAll filters then pages. The query is lowercased before the substring
// test but the name is not; this matches the upstream behavior, where search
// is effectively case-sensitive for upper-case names.
func (r *todoRepository) GetAll(qp models.QueryParameters) ([]models.TodoEntity, error) {
	all, err := r.store.All()
	if err != nil {
		return nil, err
	}

	if qp.Query != "" {
		q := strings.ToLower(qp.Query)
		filtered := all[:0:0]
		for _, item := range all {
			if strings.Contains(item.Name, q) {
				filtered = append(filtered, item)
			}
		}
		all = filtered
	}

	// Parsed query parameters arrive clamped, but the struct's fields are
	// exported, so guard the raw arithmetic here too.
	if qp.PageCount <= 0 {
		return []models.TodoEntity{}, nil
	}
	skip := qp.PageCount * (qp.Page - 1)
	if skip < 0 {
		skip = 0
	}
	if skip >= len(all) {
		return []models.TodoEntity{}, nil
	}
	page := all[skip:]
	if len(page) > qp.PageCount {
		page = page[:qp.PageCount]
	}
	return page, nil
}

func (r *todoRepository) Count() (int, error) {
	return r.store.Count()
}

func (r *todoRepository) Add(item models.TodoEntity) {
	r.pending = append(r.pending, Change{Kind: ChangeInsert, ID: item.ID, Item: item})
}

// Update stages a rewrite of the record with the given id. It does not check
// existence; callers verify with GetSingle first.
func (r *todoRepository) Update(id int, item models.TodoEntity) models.TodoEntity {
	item.ID = id
	r.pending = append(r.pending, Change{Kind: ChangeUpdate, ID: id, Item: item})
	return item
}

func (r *todoRepository) Delete(item models.TodoEntity) {
	r.pending = append(r.pending, Change{Kind: ChangeDelete, ID: item.ID, Item: item})
}

// Save commits every staged change as a single unit. Staged changes are
// cleared whether or not the commit succeeds; a failed Save is escalated by
// the caller, never retried here.
func (r *todoRepository) Save() bool {
	changes := r.pending
	r.pending = nil
	n, err := r.store.Commit(changes)
	return err == nil && n >= 0
}
