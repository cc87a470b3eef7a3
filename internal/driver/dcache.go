package driver

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/vmihailenco/msgpack/v5"
)

// Schema version; bump when DiskPayload changes shape.
const diskCacheSchemaVersion uint16 = 1

// DiskCache stores lowered-function dumps keyed by fixture content hash, so
// repeated runs over an unchanged fixture skip re-lowering.
// Thread-safe for concurrent access.
type DiskCache struct {
	mu  sync.RWMutex
	dir string
}

// DiskPayload is one cached lowering result.
type DiskPayload struct {
	Schema uint16

	FixtureHash string

	// Deterministic textual dumps, in fixture order.
	Names []string
	Dumps []string
}

// HashFixture derives the cache key for fixture content.
func HashFixture(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// OpenDiskCache initializes and returns a disk cache at the standard
// location.
func OpenDiskCache(app string) (*DiskCache, error) {
	base := os.Getenv("XDG_CACHE_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		base = filepath.Join(home, ".cache")
	}
	dir := filepath.Join(base, app, "lowered")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("driver: create cache dir: %w", err)
	}
	return &DiskCache{dir: dir}, nil
}

func (c *DiskCache) path(hash string) string {
	return filepath.Join(c.dir, hash+".bin")
}

// Load returns the cached payload for a fixture hash, or false when absent
// or stale.
func (c *DiskCache) Load(hash string) (*DiskPayload, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	data, err := os.ReadFile(c.path(hash))
	if err != nil {
		return nil, false
	}
	var payload DiskPayload
	if err := msgpack.Unmarshal(data, &payload); err != nil {
		return nil, false
	}
	if payload.Schema != diskCacheSchemaVersion || payload.FixtureHash != hash {
		return nil, false
	}
	return &payload, true
}

// Store writes a payload for its fixture hash. Write errors other than
// missing directories are surfaced; a cache refusal is never fatal to
// lowering itself.
func (c *DiskCache) Store(payload *DiskPayload) error {
	if payload == nil || payload.FixtureHash == "" {
		return errors.New("driver: empty cache payload")
	}
	payload.Schema = diskCacheSchemaVersion

	c.mu.Lock()
	defer c.mu.Unlock()

	data, err := msgpack.Marshal(payload)
	if err != nil {
		return fmt.Errorf("driver: encode cache payload: %w", err)
	}
	tmp := c.path(payload.FixtureHash) + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("driver: write cache payload: %w", err)
	}
	return os.Rename(tmp, c.path(payload.FixtureHash))
}
