//go:build linux

package kmsg

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen(t *testing.T) {
	tempDir := t.TempDir()

	t.Run("Regular file", func(t *testing.T) {
		path := filepath.Join(tempDir, "kmsg")
		require.NoError(t, os.WriteFile(path, nil, 0644))

		dev, err := Open(path)
		require.NoError(t, err)
		defer dev.Close()

		assert.Equal(t, path, dev.Path())
	})

	t.Run("Missing path", func(t *testing.T) {
		_, err := Open(filepath.Join(tempDir, "does-not-exist"))
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrDeviceUnavailable)
		assert.NotErrorIs(t, err, ErrPermissionDenied)

		var devErr *DeviceError
		require.True(t, errors.As(err, &devErr))
		assert.Equal(t, "open", devErr.Op)
	})

	t.Run("Directory", func(t *testing.T) {
		_, err := Open(tempDir)
		assert.ErrorIs(t, err, ErrDeviceUnavailable)
	})

	t.Run("Read-only file", func(t *testing.T) {
		if os.Geteuid() == 0 {
			t.Skip("root bypasses file permissions")
		}

		path := filepath.Join(tempDir, "readonly")
		require.NoError(t, os.WriteFile(path, nil, 0400))

		_, err := Open(path)
		assert.ErrorIs(t, err, ErrPermissionDenied)
	})
}

func TestWriteEntry(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kmsg")
	require.NoError(t, os.WriteFile(path, nil, 0644))

	dev, err := Open(path)
	require.NoError(t, err)
	defer dev.Close()

	require.NoError(t, dev.WriteEntry([]byte("<3> disk full\n")))
	require.NoError(t, dev.WriteEntry([]byte("<5>[4242] ready\n")))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "<3> disk full\n<5>[4242] ready\n", string(data))
}

func TestWriteEntryAfterClose(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kmsg")
	require.NoError(t, os.WriteFile(path, nil, 0644))

	dev, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, dev.Close())
	require.NoError(t, dev.Close())

	err = dev.WriteEntry([]byte("<6> late\n"))
	assert.ErrorIs(t, err, ErrWriteFailed)
}

func TestWriteEntryConcurrent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kmsg")
	require.NoError(t, os.WriteFile(path, nil, 0644))

	dev, err := Open(path)
	require.NoError(t, err)
	defer dev.Close()

	const writers = 8
	const perWriter = 50
	line := []byte("<6> concurrent entry\n")

	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perWriter; j++ {
				assert.NoError(t, dev.WriteEntry(line))
			}
		}()
	}
	wg.Wait()

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, int64(writers*perWriter*len(line)), info.Size())
}

func TestDeviceErrorMessage(t *testing.T) {
	err := &DeviceError{Op: "write", Path: "/dev/kmsg", Kind: ErrWriteFailed}
	assert.Equal(t, "write /dev/kmsg: write failed", err.Error())
	assert.Nil(t, errors.Unwrap(err))
}
