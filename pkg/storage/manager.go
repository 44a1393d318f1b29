package storage

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/shashiranjanraj/rigparts/config"
	"github.com/shashiranjanraj/rigparts/pkg/logger"
)

var (
	mu          sync.RWMutex
	disks       = map[string]Disk{}
	defaultDisk = "local"
)

// Connect registers the local disk and, when S3_BUCKET is configured, the s3
// disk. STORAGE_DISK selects the default.
func Connect(ctx context.Context) error {
	RegisterDisk("local", NewLocalDisk(config.StorageLocalRoot(), config.StorageURL()))

	if config.StorageS3Bucket() != "" {
		d, err := NewS3DiskFromEnv(ctx)
		if err != nil {
			return err
		}
		RegisterDisk("s3", d)
	}

	name := config.StorageDefault()
	mu.Lock()
	defer mu.Unlock()
	if _, ok := disks[name]; !ok {
		logger.Warn("storage: default disk not registered, using local", "disk", name)
		name = "local"
	}
	defaultDisk = name
	return nil
}

// RegisterDisk adds or replaces a named disk.
func RegisterDisk(name string, d Disk) {
	mu.Lock()
	disks[name] = d
	mu.Unlock()
}

// SetDefault swaps the default disk. Used by tests.
func SetDefault(d Disk) {
	mu.Lock()
	disks["default"] = d
	defaultDisk = "default"
	mu.Unlock()
}

// Use returns a named disk.
func Use(name string) (Disk, error) {
	mu.RLock()
	defer mu.RUnlock()
	d, ok := disks[name]
	if !ok {
		return nil, fmt.Errorf("storage: disk %q not registered", name)
	}
	return d, nil
}

// Default returns the default disk, falling back to a local disk if Connect
// was never called.
func Default() Disk {
	mu.RLock()
	d, ok := disks[defaultDisk]
	mu.RUnlock()
	if ok {
		return d
	}
	d = NewLocalDisk(config.StorageLocalRoot(), config.StorageURL())
	RegisterDisk("local", d)
	return d
}

func Put(ctx context.Context, path string, r io.Reader, contentType string) error {
	return Default().Put(ctx, path, r, contentType)
}

func Delete(ctx context.Context, path string) error { return Default().Delete(ctx, path) }

func URL(path string) string { return Default().URL(path) }
