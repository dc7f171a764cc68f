// ABOUTME: Thin Charm KV wrapper for durable, cloud-synced key-value storage
// ABOUTME: Injected into the registry's charm backend, never a global singleton
package charm

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/charmbracelet/charm/kv"
)

// CollectionPrefix namespaces registry entries in the shared KV database.
const CollectionPrefix = "collection:"

// Config holds charm client configuration.
type Config struct {
	Host     string
	DBName   string
	AutoSync bool
}

// Client wraps charm KV for registry storage. Callers own the lifecycle:
// open at process start, Close on shutdown.
type Client struct {
	kv     *kv.KV
	config *Config
	mu     sync.Mutex
}

// NewClient opens the charm KV database for the given config.
func NewClient(cfg *Config) (*Client, error) {
	// Charm reads its host from the environment when opening.
	os.Setenv("CHARM_HOST", cfg.Host)

	db, err := kv.OpenWithDefaults(cfg.DBName)
	if err != nil {
		return nil, fmt.Errorf("failed to open charm kv: %w", err)
	}

	c := &Client{kv: db, config: cfg}

	// Pull remote data on startup so lookups see registrations made
	// elsewhere.
	if cfg.AutoSync {
		_ = db.Sync()
	}
	return c, nil
}

// Close closes the KV database.
func (c *Client) Close() error {
	if c.kv != nil {
		err := c.kv.Close()
		c.kv = nil
		return err
	}
	return nil
}

func (c *Client) syncIfEnabled() {
	if c.config.AutoSync {
		_ = c.kv.Sync()
	}
}

// SetJSON marshals and stores a value under key.
func (c *Client) SetJSON(key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal value: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.kv.Set([]byte(key), data); err != nil {
		return fmt.Errorf("failed to set key %s: %w", key, err)
	}
	c.syncIfEnabled()
	return nil
}

// GetJSON retrieves and unmarshals the value under key. Missing keys return
// an error from the underlying store.
func (c *Client) GetJSON(key string, dest any) error {
	c.mu.Lock()
	data, err := c.kv.Get([]byte(key))
	c.mu.Unlock()

	if err != nil {
		return err
	}
	if data == nil {
		return fmt.Errorf("key not found: %s", key)
	}
	return json.Unmarshal(data, dest)
}

// Delete removes a key.
func (c *Client) Delete(key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.kv.Delete([]byte(key)); err != nil {
		return fmt.Errorf("failed to delete key %s: %w", key, err)
	}
	c.syncIfEnabled()
	return nil
}

// ListKeys returns all keys with the given prefix.
func (c *Client) ListKeys(prefix string) ([]string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	keys, err := c.kv.Keys()
	if err != nil {
		return nil, fmt.Errorf("failed to list keys: %w", err)
	}

	var result []string
	for _, key := range keys {
		if keyStr := string(key); strings.HasPrefix(keyStr, prefix) {
			result = append(result, keyStr)
		}
	}
	return result, nil
}

// CollectionKey builds the KV key for a collection id.
func CollectionKey(collectionID string) string {
	return CollectionPrefix + collectionID
}
