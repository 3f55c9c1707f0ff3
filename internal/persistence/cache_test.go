package persistence

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/containerd/errdefs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readSave(t *testing.T, path string) map[string]string {
	t.Helper()
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	var data map[string]string
	require.NoError(t, json.Unmarshal(raw, &data))
	return data
}

func TestReadYourWrites(t *testing.T) {
	c := New(t.TempDir())

	require.NoError(t, c.Save("g1/scores", "high", "10"))
	v, err := c.Load("g1/scores", "high")
	require.NoError(t, err)
	assert.Equal(t, "10", v)

	require.NoError(t, c.Save("g1/scores", "high", "20"))
	v, err = c.Load("g1/scores", "high")
	require.NoError(t, err)
	assert.Equal(t, "20", v)
}

func TestLoadMissingKey(t *testing.T) {
	c := New(t.TempDir())

	_, err := c.Load("g1/scores", "nope")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrKeyNotFound)
	assert.True(t, errdefs.IsNotFound(err))
}

func TestFlushDurability(t *testing.T) {
	root := t.TempDir()
	c := New(root)

	require.NoError(t, c.Save("g1/scores/level1", "best", "42"))
	require.NoError(t, c.Save("g2", "name", "ada"))
	require.NoError(t, c.Flush())

	assert.Equal(t, map[string]string{"best": "42"}, readSave(t, filepath.Join(root, "g1", "scores", "level1.save")))
	assert.Equal(t, map[string]string{"name": "ada"}, readSave(t, filepath.Join(root, "g2.save")))

	fresh := New(root)
	v, err := fresh.Load("g1/scores/level1", "best")
	require.NoError(t, err)
	assert.Equal(t, "42", v)
}

func TestCacheIsAuthoritative(t *testing.T) {
	root := t.TempDir()
	c := New(root)

	require.NoError(t, c.Save("g1", "k", "cached"))
	require.NoError(t, c.Flush())

	// A write behind the cache's back must not be observed.
	require.NoError(t, os.WriteFile(filepath.Join(root, "g1.save"), []byte(`{"k":"disk"}`), 0o644))

	v, err := c.Load("g1", "k")
	require.NoError(t, err)
	assert.Equal(t, "cached", v)
}

func TestDirtySetPrecision(t *testing.T) {
	root := t.TempDir()
	c := New(root)

	require.NoError(t, c.Save("g1", "k", "v"))
	_, err := c.Load("g2", "k")
	require.Error(t, err)
	assert.Equal(t, 1, c.Dirty())

	require.NoError(t, c.Flush())
	assert.Equal(t, 0, c.Dirty())

	// Loaded but never written groups produce no file.
	_, err = os.Stat(filepath.Join(root, "g2.save"))
	assert.True(t, os.IsNotExist(err))

	// A second flush with nothing dirty touches nothing.
	require.NoError(t, os.Remove(filepath.Join(root, "g1.save")))
	require.NoError(t, c.Flush())
	_, err = os.Stat(filepath.Join(root, "g1.save"))
	assert.True(t, os.IsNotExist(err))
}

func TestFlushFailureKeepsDirty(t *testing.T) {
	root := t.TempDir()
	c := New(root)

	require.NoError(t, c.Save("a", "k", "v"))
	require.NoError(t, c.Save("b/x", "k", "v"))

	// A regular file where the "b" directory should go fails the second write.
	require.NoError(t, os.WriteFile(filepath.Join(root, "b"), nil, 0o644))

	err := c.Flush()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrFlush)
	assert.Equal(t, 1, c.Dirty(), "the successful group leaves the dirty set")

	require.NoError(t, os.Remove(filepath.Join(root, "b")))
	require.NoError(t, c.Flush())
	assert.Equal(t, 0, c.Dirty())
}

func TestFlushContinuesPastFailure(t *testing.T) {
	root := t.TempDir()
	c := New(root)

	require.NoError(t, c.Save("b/x", "k", "v"))
	require.NoError(t, c.Save("c", "k", "v"))
	require.NoError(t, c.Save("tetris/scores", "high", "9001"))

	require.NoError(t, os.WriteFile(filepath.Join(root, "b"), nil, 0o644))

	err := c.Flush()
	require.ErrorIs(t, err, ErrFlush)
	assert.Equal(t, 1, c.Dirty(), "only the failed group stays dirty")

	v, err := New(root).Load("tetris/scores", "high")
	require.NoError(t, err)
	assert.Equal(t, "9001", v)

	_, err = os.Stat(filepath.Join(root, "c.save"))
	assert.NoError(t, err)
}

func TestGroupsCannotShadowSaveFiles(t *testing.T) {
	root := t.TempDir()
	c := New(root)

	require.NoError(t, c.Save("pong/x", "k", "v"))

	err := c.Save("pong/x.save/y", "k", "v")
	require.ErrorIs(t, err, ErrInvalidGroup)
	assert.True(t, errdefs.IsInvalidArgument(err))

	require.NoError(t, c.Save("tetris/scores", "high", "9001"))
	require.NoError(t, c.Flush())
	assert.Zero(t, c.Dirty())

	v, err := New(root).Load("tetris/scores", "high")
	require.NoError(t, err)
	assert.Equal(t, "9001", v)
}

func TestClear(t *testing.T) {
	root := t.TempDir()
	c := New(root)

	require.NoError(t, c.Save("g1", "a", "1"))
	require.NoError(t, c.Save("g1", "b", "2"))
	assert.Equal(t, 2, c.Size())

	require.NoError(t, c.Clear())
	assert.Equal(t, 0, c.Size())
	assert.Equal(t, 0, c.Dirty())

	v, err := c.Load("g1", "b")
	require.NoError(t, err)
	assert.Equal(t, "2", v)
}

func TestLoadCorruptGroup(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "g1.save"), []byte("{not json"), 0o644))

	c := New(root)
	_, err := c.Load("g1", "k")
	assert.ErrorIs(t, err, ErrLoad)
	assert.Equal(t, 0, c.Size())
}

func TestInvalidGroups(t *testing.T) {
	c := New(t.TempDir())

	for _, group := range []string{"", "/abs", "a//b", "a/", "..", "a/../b", "./a", "a/."} {
		t.Run(group, func(t *testing.T) {
			err := c.Save(group, "k", "v")
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidGroup)
			assert.True(t, errdefs.IsInvalidArgument(err))
		})
	}
	assert.Equal(t, 0, c.Dirty())
}
