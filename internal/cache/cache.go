package cache

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"

	"studiodesk/internal/models"
)

// clientsKey is the fixed name the client snapshot is stored under,
// matching the single localStorage key the browser app used.
const clientsKey = "clients_data"

// ClientCache is a reload-survival mirror of the client collection. It has
// exactly one writer (the current session) and one reader (the same session
// after a restart), so there is no conflict resolution. It is never the
// source of truth once the store has loaded.
type ClientCache struct {
	path string
	mu   sync.Mutex
}

// New creates a cache rooted at dir, creating the directory if needed
func New(dir string) (*ClientCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}
	return &ClientCache{path: filepath.Join(dir, clientsKey+".json")}, nil
}

// Path returns the snapshot file location
func (c *ClientCache) Path() string {
	return c.path
}

// Load reads the serialized mirror. A missing, unreadable or malformed file
// is treated as empty; cache corruption is non-fatal and self-heals on the
// next successful Persist.
func (c *ClientCache) Load() []models.Client {
	c.mu.Lock()
	defer c.mu.Unlock()

	data, err := os.ReadFile(c.path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Printf("⚠️  [CACHE] Failed to read %s: %v (starting empty)", c.path, err)
		}
		return nil
	}

	var clients []models.Client
	if err := json.Unmarshal(data, &clients); err != nil {
		log.Printf("⚠️  [CACHE] Malformed snapshot %s: %v (starting empty)", c.path, err)
		return nil
	}

	return clients
}

// Persist overwrites the mirror with the full client collection. The write
// goes through a temp file and rename so a crash mid-write never leaves a
// truncated snapshot behind.
func (c *ClientCache) Persist(clients []models.Client) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if clients == nil {
		clients = []models.Client{}
	}

	data, err := json.Marshal(clients)
	if err != nil {
		return fmt.Errorf("failed to serialize clients: %w", err)
	}

	tmp := c.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	if err := os.Rename(tmp, c.path); err != nil {
		return fmt.Errorf("failed to replace snapshot: %w", err)
	}

	return nil
}
