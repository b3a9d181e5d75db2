package repository

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/gofrs/flock"
	"github.com/spf13/afero"
)

const (
	// CacheSchemaVersion defines the current schema version for cache files
	CacheSchemaVersion = "1.0.0"
	// CacheFilePermissions defines the permissions for cache files
	CacheFilePermissions = 0600
	// CacheDirPermissions defines the permissions for cache directories
	CacheDirPermissions = 0700
	// LockTimeout defines the maximum time to wait for a lock
	LockTimeout = 30 * time.Second
	// LockRetryInterval defines the interval between lock retry attempts
	LockRetryInterval = 50 * time.Millisecond
)

// CacheMetadata contains metadata about a cache file
type CacheMetadata struct {
	SchemaVersion string    `json:"schema_version"`
	Checksum      string    `json:"checksum"`
	Namespace     string    `json:"namespace"`
	Key           string    `json:"key"`
	CreatedAt     time.Time `json:"created_at"`
	ExpiresAt     time.Time `json:"expires_at"`
}

// CacheWrapper wraps a cached value with metadata
type CacheWrapper struct {
	Metadata CacheMetadata `json:"metadata"`
	Value    []byte        `json:"value"`
}

// FileReleaseCache implements ReleaseCache with one JSON file per entry.
// On the OS filesystem writers also hold a flock so separate processes
// sharing the directory never observe partial files.
type FileReleaseCache struct {
	fs       FileSystemRepository
	cacheDir string
	useFlock bool
	now      func() time.Time
	mu       sync.RWMutex
}

// NewFileReleaseCache creates a file-backed cache rooted at cacheDir.
func NewFileReleaseCache(fs FileSystemRepository, cacheDir string) *FileReleaseCache {
	if cacheDir == "" {
		cacheDir = ".changelog-cache"
	}
	_, onDisk := fs.(*afero.OsFs)
	return &FileReleaseCache{
		fs:       fs,
		cacheDir: cacheDir,
		useFlock: onDisk,
		now:      time.Now,
	}
}

// Get reads an entry. Missing, expired or corrupt entries are reported as absent.
func (c *FileReleaseCache) Get(ctx context.Context, namespace, key string) ([]byte, bool, error) {
	filename := c.getEntryFilename(namespace, key)
	c.mu.RLock()
	defer c.mu.RUnlock()
	unlock, err := c.lock(ctx, c.getLockFilename(namespace, key), true)
	if err != nil {
		return nil, false, fmt.Errorf("failed to acquire shared lock: %w", err)
	}
	defer unlock()
	data, err := afero.ReadFile(c.fs, filename)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to read cache file: %w", err)
	}
	var wrapper CacheWrapper
	if err := json.Unmarshal(data, &wrapper); err != nil {
		return nil, false, nil
	}
	if wrapper.Metadata.SchemaVersion != CacheSchemaVersion {
		return nil, false, nil
	}
	if wrapper.Metadata.Checksum != c.calculateChecksum(wrapper.Value) {
		return nil, false, nil
	}
	// a hash collision must not leak another key's value
	if wrapper.Metadata.Namespace != namespace || wrapper.Metadata.Key != key {
		return nil, false, nil
	}
	if !c.now().Before(wrapper.Metadata.ExpiresAt) {
		return nil, false, nil
	}
	return wrapper.Value, true, nil
}

// Set writes an entry atomically via a temp file and rename.
func (c *FileReleaseCache) Set(ctx context.Context, namespace, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.fs.MkdirAll(c.getNamespaceDir(namespace), CacheDirPermissions); err != nil {
		return fmt.Errorf("failed to ensure cache directory: %w", err)
	}
	unlock, err := c.lock(ctx, c.getLockFilename(namespace, key), false)
	if err != nil {
		return fmt.Errorf("failed to acquire lock: %w", err)
	}
	defer unlock()
	now := c.now()
	wrapper := CacheWrapper{
		Metadata: CacheMetadata{
			SchemaVersion: CacheSchemaVersion,
			Checksum:      c.calculateChecksum(value),
			Namespace:     namespace,
			Key:           key,
			CreatedAt:     now,
			ExpiresAt:     now.Add(ttl),
		},
		Value: value,
	}
	data, err := json.MarshalIndent(wrapper, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal cache wrapper: %w", err)
	}
	filename := c.getEntryFilename(namespace, key)
	tempFile := filename + ".tmp"
	if err := afero.WriteFile(c.fs, tempFile, data, CacheFilePermissions); err != nil {
		return fmt.Errorf("failed to write temp cache file: %w", err)
	}
	if err := c.fs.Rename(tempFile, filename); err != nil {
		if removeErr := c.fs.Remove(tempFile); removeErr != nil {
			fmt.Fprintf(os.Stderr, "warning: failed to remove temp file: %v\n", removeErr)
		}
		return fmt.Errorf("failed to rename cache file: %w", err)
	}
	return nil
}

// lock takes a file lock when the cache lives on disk and returns its release func.
func (c *FileReleaseCache) lock(ctx context.Context, lockFile string, shared bool) (func(), error) {
	if !c.useFlock {
		return func() {}, nil
	}
	if err := c.fs.MkdirAll(filepath.Dir(lockFile), CacheDirPermissions); err != nil {
		return nil, err
	}
	fl := flock.New(lockFile)
	lockCtx, cancel := context.WithTimeout(ctx, LockTimeout)
	defer cancel()
	locked, err := acquireLockWithContext(lockCtx, fl, shared)
	if err != nil {
		return nil, err
	}
	if !locked {
		return nil, fmt.Errorf("could not acquire lock within timeout")
	}
	return func() {
		if unlockErr := fl.Unlock(); unlockErr != nil {
			fmt.Fprintf(os.Stderr, "warning: failed to unlock file: %v\n", unlockErr)
		}
	}, nil
}

// acquireLockWithContext polls for the lock until it is taken or ctx ends.
func acquireLockWithContext(ctx context.Context, fl *flock.Flock, shared bool) (bool, error) {
	try := fl.TryLock
	if shared {
		try = fl.TryRLock
	}
	if locked, err := try(); err != nil || locked {
		return locked, err
	}
	ticker := time.NewTicker(LockRetryInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return false, ctx.Err()
		case <-ticker.C:
			locked, err := try()
			if err != nil {
				return false, err
			}
			if locked {
				return true, nil
			}
		}
	}
}

// calculateChecksum calculates SHA-256 checksum of data
func (c *FileReleaseCache) calculateChecksum(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}

func (c *FileReleaseCache) getNamespaceDir(namespace string) string {
	return filepath.Join(c.cacheDir, namespace)
}

// getEntryFilename hashes the key so arbitrary versions and URLs are safe file names.
func (c *FileReleaseCache) getEntryFilename(namespace, key string) string {
	return filepath.Join(c.getNamespaceDir(namespace), c.calculateChecksum([]byte(key))+".json")
}

func (c *FileReleaseCache) getLockFilename(namespace, key string) string {
	return filepath.Join(c.getNamespaceDir(namespace), "."+c.calculateChecksum([]byte(key))+".lock")
}
