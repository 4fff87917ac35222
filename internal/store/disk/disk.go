package disk

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	storepkg "github.com/cirruslabs/etagd/internal/store"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Disk keeps each record in its own JSON file. Atomicity of FindOrCreate
// is only guaranteed within a single process.
type Disk struct {
	dir string
	mtx sync.Mutex
}

type entry struct {
	Key         string     `json:"key"`
	ETag        string     `json:"etag,omitempty"`
	ConfirmedAt *time.Time `json:"confirmed_at,omitempty"`
}

func New(dir string) (*Disk, error) {
	// Pre-create the disk's directory if not created yet
	if err := os.MkdirAll(dir, 0755); err != nil && !errors.Is(err, os.ErrExist) {
		return nil, err
	}

	return &Disk{
		dir: dir,
	}, nil
}

func (disk *Disk) Get(_ context.Context, key string) (*storepkg.Record, error) {
	disk.mtx.Lock()
	defer disk.mtx.Unlock()

	return disk.read(key)
}

func (disk *Disk) FindOrCreate(
	_ context.Context,
	key string,
	defaults storepkg.Record,
) (*storepkg.Record, bool, error) {
	disk.mtx.Lock()
	defer disk.mtx.Unlock()

	record, err := disk.read(key)
	if err == nil {
		return record, false, nil
	}
	if !errors.Is(err, storepkg.ErrNotFound) {
		return nil, false, err
	}

	defaults.Key = key

	if err := disk.write(&defaults); err != nil {
		return nil, false, err
	}

	return &defaults, true, nil
}

func (disk *Disk) Update(_ context.Context, key string, etag string, confirmedAt time.Time) error {
	disk.mtx.Lock()
	defer disk.mtx.Unlock()

	record, err := disk.read(key)
	if err != nil {
		return err
	}

	record.ETag = etag
	record.ConfirmedAt = confirmedAt

	return disk.write(record)
}

func (disk *Disk) read(key string) (*storepkg.Record, error) {
	entryBytes, err := os.ReadFile(disk.path(key))
	if err != nil {
		// Convert the error for consumer's convenience
		if errors.Is(err, os.ErrNotExist) {
			return nil, storepkg.ErrNotFound
		}

		return nil, fmt.Errorf("failed to read object record %q: %w", key, err)
	}

	var entry entry

	if err := json.Unmarshal(entryBytes, &entry); err != nil {
		return nil, fmt.Errorf("failed to decode object record %q: %w", key, err)
	}

	record := &storepkg.Record{
		Key:  entry.Key,
		ETag: entry.ETag,
	}

	if entry.ConfirmedAt != nil {
		record.ConfirmedAt = *entry.ConfirmedAt
	}

	return record, nil
}

func (disk *Disk) write(record *storepkg.Record) error {
	entry := entry{
		Key:  record.Key,
		ETag: record.ETag,
	}

	if record.Confirmed() {
		entry.ConfirmedAt = &record.ConfirmedAt
	}

	entryBytes, err := json.Marshal(&entry)
	if err != nil {
		return err
	}

	tmpFile, err := os.CreateTemp(disk.dir, ".etagd-put-*")
	if err != nil {
		return fmt.Errorf("failed to create a temporary file for the object record %q: %w",
			record.Key, err)
	}

	if _, err := tmpFile.Write(entryBytes); err != nil {
		_ = tmpFile.Close()
		_ = os.Remove(tmpFile.Name())

		return fmt.Errorf("failed to write object record %q: %w", record.Key, err)
	}

	if err := tmpFile.Close(); err != nil {
		_ = os.Remove(tmpFile.Name())

		return fmt.Errorf("failed to close object record %q: %w", record.Key, err)
	}

	if err := os.Rename(tmpFile.Name(), disk.path(record.Key)); err != nil {
		_ = os.Remove(tmpFile.Name())

		return fmt.Errorf("failed to accept object record %q: %w", record.Key, err)
	}

	return nil
}

func (disk *Disk) path(key string) string {
	// On macOS, the maximum filename length is 255 characters (inclusive),
	// so the safest way to avoid errors is to hash the key
	hash := sha256.Sum256([]byte(key))

	return filepath.Join(disk.dir, hex.EncodeToString(hash[:])+".json")
}
