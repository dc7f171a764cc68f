// ABOUTME: Collection registry interface and in-memory backend
// ABOUTME: The single gate every chat request passes before any remote call
package registry

import (
	"sort"
	"sync"

	"github.com/harper/docchat/internal/errs"
	"github.com/harper/docchat/internal/models"
)

// Registry is the authoritative local record of valid collection ids,
// independent of the remote store's bookkeeping. Implementations must be
// safe under concurrent register/lookup/unregister across requests.
type Registry interface {
	Register(col models.Collection) error
	Lookup(collectionID string) (models.Collection, error)
	Unregister(collectionID string) error
	List() ([]models.Collection, error)
}

// Memory is the default in-process backend: a mutex-guarded map with
// process lifetime. Created at startup and passed by handle into the
// service.
type Memory struct {
	mu          sync.RWMutex
	collections map[string]models.Collection
}

// NewMemory creates an empty in-memory registry.
func NewMemory() *Memory {
	return &Memory{collections: make(map[string]models.Collection)}
}

// Register records a collection. Re-registering an id overwrites the entry;
// ids are issued by the remote store, so collisions do not occur in
// practice.
func (m *Memory) Register(col models.Collection) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.collections[col.ID] = col
	return nil
}

// Lookup returns the metadata for a collection id, or NotFoundError.
func (m *Memory) Lookup(collectionID string) (models.Collection, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	col, ok := m.collections[collectionID]
	if !ok {
		return models.Collection{}, &errs.NotFoundError{CollectionID: collectionID}
	}
	return col, nil
}

// Unregister removes a collection id. Unknown ids return NotFoundError so a
// second delete of the same collection fails at this layer.
func (m *Memory) Unregister(collectionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.collections[collectionID]; !ok {
		return &errs.NotFoundError{CollectionID: collectionID}
	}
	delete(m.collections, collectionID)
	return nil
}

// List returns all registered collections, newest first.
func (m *Memory) List() ([]models.Collection, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]models.Collection, 0, len(m.collections))
	for _, col := range m.collections {
		result = append(result, col)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}
