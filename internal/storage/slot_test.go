package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func exerciseSlot(t *testing.T, slot Slot) {
	t.Helper()

	_, err := slot.Read("k")
	assert.ErrorIs(t, err, ErrSlotEmpty)

	require.NoError(t, slot.Write("k", []byte("first")))
	require.NoError(t, slot.Write("k", []byte("second")))

	data, err := slot.Read("k")
	require.NoError(t, err)
	assert.Equal(t, "second", string(data))

	require.NoError(t, slot.Delete("k"))
	require.NoError(t, slot.Delete("k"), "deleting an empty slot is not an error")

	_, err = slot.Read("k")
	assert.ErrorIs(t, err, ErrSlotEmpty)
}

func TestMemorySlot(t *testing.T) {
	exerciseSlot(t, NewMemorySlot())
}

func TestFileSlot(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "state")
	slot := NewFileSlot(dir)
	exerciseSlot(t, slot)

	require.NoError(t, slot.Write("k", []byte("value")))
	_, err := os.Stat(slot.Path("k") + ".tmp")
	assert.True(t, os.IsNotExist(err), "temporary file should be renamed away")
}

func TestSQLiteSlot(t *testing.T) {
	db, err := OpenDatabase(filepath.Join(t.TempDir(), "pomodesk.db"))
	require.NoError(t, err)
	defer db.Close()

	slot, err := NewSQLiteSlot(db)
	require.NoError(t, err)
	exerciseSlot(t, slot)

	_, err = NewSQLiteSlot(db)
	assert.NoError(t, err, "table creation is idempotent")
}
