package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// FileSlot stores each key as a YAML file inside a directory.
// Writes go to a temporary file first and are renamed into place.
type FileSlot struct {
	dir string
}

// NewFileSlot returns a slot rooted at dir. The directory is created on first write.
func NewFileSlot(dir string) *FileSlot {
	return &FileSlot{dir: dir}
}

// Path returns the file backing key.
func (slot *FileSlot) Path(key string) string {
	return filepath.Join(slot.dir, key+".yaml")
}

func (slot *FileSlot) Read(key string) ([]byte, error) {
	data, err := os.ReadFile(slot.Path(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrSlotEmpty
		}
		return nil, fmt.Errorf("read slot %s: %w", key, err)
	}
	return data, nil
}

func (slot *FileSlot) Write(key string, data []byte) error {
	if err := os.MkdirAll(slot.dir, 0o755); err != nil {
		return fmt.Errorf("create slot directory: %w", err)
	}

	path := slot.Path(key)
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return fmt.Errorf("write slot %s: %w", key, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("replace slot %s: %w", key, err)
	}
	return nil
}

func (slot *FileSlot) Delete(key string) error {
	if err := os.Remove(slot.Path(key)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("delete slot %s: %w", key, err)
	}
	return nil
}
