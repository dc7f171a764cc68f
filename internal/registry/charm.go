// ABOUTME: Charm KV registry backend for registrations that survive restarts
// ABOUTME: Collections in the remote store outlive the process; so can their records
package registry

import (
	"log"
	"sort"
	"strings"

	"github.com/harper/docchat/internal/charm"
	"github.com/harper/docchat/internal/errs"
	"github.com/harper/docchat/internal/models"
)

// kvClient is the slice of the charm client the registry needs. Tests
// substitute an in-memory implementation.
type kvClient interface {
	SetJSON(key string, value any) error
	GetJSON(key string, dest any) error
	Delete(key string) error
	ListKeys(prefix string) ([]string, error)
}

// Charm stores registry entries in a Charm KV database under the
// "collection:" prefix, one JSON value per collection.
type Charm struct {
	client kvClient
}

// NewCharm wraps an already-open charm client.
func NewCharm(client kvClient) *Charm {
	return &Charm{client: client}
}

func (c *Charm) Register(col models.Collection) error {
	return c.client.SetJSON(charm.CollectionKey(col.ID), col)
}

func (c *Charm) Lookup(collectionID string) (models.Collection, error) {
	var col models.Collection
	if err := c.client.GetJSON(charm.CollectionKey(collectionID), &col); err != nil {
		return models.Collection{}, &errs.NotFoundError{CollectionID: collectionID}
	}
	return col, nil
}

func (c *Charm) Unregister(collectionID string) error {
	// Charm deletes are idempotent; the existence check keeps the
	// double-delete contract.
	if _, err := c.Lookup(collectionID); err != nil {
		return err
	}
	return c.client.Delete(charm.CollectionKey(collectionID))
}

func (c *Charm) List() ([]models.Collection, error) {
	keys, err := c.client.ListKeys(charm.CollectionPrefix)
	if err != nil {
		return nil, err
	}

	result := make([]models.Collection, 0, len(keys))
	for _, key := range keys {
		if !strings.HasPrefix(key, charm.CollectionPrefix) {
			continue
		}
		var col models.Collection
		if err := c.client.GetJSON(key, &col); err != nil {
			log.Printf("registry: skipping unreadable collection record %s: %v", key, err)
			continue
		}
		result = append(result, col)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}
