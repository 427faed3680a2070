package platform

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInstanceLockIsExclusive(t *testing.T) {
	appName := "pomodesk-test-" + t.Name()

	lock, err := AcquireInstanceLock(appName)
	require.NoError(t, err)

	_, err = AcquireInstanceLock(appName)
	assert.ErrorIs(t, err, ErrAlreadyRunning)

	require.NoError(t, lock.Release())
	assert.NoError(t, lock.Release(), "double release is harmless")

	again, err := AcquireInstanceLock(appName)
	require.NoError(t, err)
	assert.NoError(t, again.Release())
}

func TestLockAddressIsStable(t *testing.T) {
	assert.Equal(t, LockAddress("pomodesk"), LockAddress("pomodesk"))
	assert.NotEqual(t, LockAddress("pomodesk"), LockAddress("other"))
}

func TestNilLockRelease(t *testing.T) {
	var lock *InstanceLock
	assert.NoError(t, lock.Release())
}

func TestDataDir(t *testing.T) {
	override := filepath.Join(t.TempDir(), "custom")
	dir, err := DataDir("pomodesk", override)
	require.NoError(t, err)
	assert.Equal(t, override, dir)

	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")
	t.Setenv("HOME", "/tmp/home")
	dir, err = DataDir("pomodesk", "")
	require.NoError(t, err)
	assert.NotEmpty(t, dir)
	assert.Equal(t, "pomodesk", filepath.Base(dir))
}
