package storage

import (
	"errors"
	"sync"
)

// ErrSlotEmpty indicates that nothing has been written under the key.
var ErrSlotEmpty = errors.New("slot is empty")

// Slot is a durable key-value slot holding one record per key.
type Slot interface {
	Read(key string) ([]byte, error)
	Write(key string, data []byte) error
	Delete(key string) error
}

// Logger is the subset of *log.Logger used by the stores.
type Logger interface {
	Printf(format string, args ...any)
}

// MemorySlot keeps records in process memory.
type MemorySlot struct {
	mu      sync.Mutex
	records map[string][]byte
}

// NewMemorySlot returns an empty in-memory slot.
func NewMemorySlot() *MemorySlot {
	return &MemorySlot{records: make(map[string][]byte)}
}

func (slot *MemorySlot) Read(key string) ([]byte, error) {
	slot.mu.Lock()
	defer slot.mu.Unlock()
	data, ok := slot.records[key]
	if !ok {
		return nil, ErrSlotEmpty
	}
	return append([]byte(nil), data...), nil
}

func (slot *MemorySlot) Write(key string, data []byte) error {
	slot.mu.Lock()
	defer slot.mu.Unlock()
	slot.records[key] = append([]byte(nil), data...)
	return nil
}

func (slot *MemorySlot) Delete(key string) error {
	slot.mu.Lock()
	defer slot.mu.Unlock()
	delete(slot.records, key)
	return nil
}
