package state

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFile(t *testing.T) {
	st, err := Load(filepath.Join(t.TempDir(), "state.json"))
	require.NoError(t, err)
	assert.Empty(t, st.Files)
	assert.Empty(t, st.Pinned)
}

func TestSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "state.json")

	st := NewState()
	st.RecordWrite("a", "hello")
	st.TogglePin("b")
	require.NoError(t, st.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.True(t, loaded.Unchanged("a", "hello"))
	assert.True(t, loaded.IsPinned("b"))
	assert.False(t, loaded.IsPinned("a"))
}

func TestLoadCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadNullMaps(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"files":null,"pinned":null}`), 0644))

	st, err := Load(path)
	require.NoError(t, err)
	assert.NotNil(t, st.Files)
	assert.True(t, st.TogglePin("x"))
}

func TestUnchanged(t *testing.T) {
	st := NewState()
	assert.False(t, st.Unchanged("a", ""))

	st.RecordWrite("a", "one")
	assert.True(t, st.Unchanged("a", "one"))
	assert.False(t, st.Unchanged("a", "two"))
}

func TestHasChanged(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.md")
	require.NoError(t, os.WriteFile(path, []byte("ours"), 0644))

	st := NewState()

	changed, err := st.HasChanged("a", path)
	require.NoError(t, err)
	assert.True(t, changed, "never written by us")

	st.RecordWrite("a", "ours")
	changed, err = st.HasChanged("a", path)
	require.NoError(t, err)
	assert.False(t, changed)

	require.NoError(t, os.WriteFile(path, []byte("theirs"), 0644))
	changed, err = st.HasChanged("a", path)
	require.NoError(t, err)
	assert.True(t, changed)
}

func TestComputeHashMatchesHashContent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "x.md")
	require.NoError(t, os.WriteFile(path, []byte("**bold**"), 0644))

	hash, err := ComputeHash(path)
	require.NoError(t, err)
	assert.Equal(t, HashContent("**bold**"), hash)
}

func TestTogglePinAndForget(t *testing.T) {
	st := NewState()

	assert.True(t, st.TogglePin("a"))
	assert.True(t, st.IsPinned("a"))
	assert.False(t, st.TogglePin("a"))
	assert.False(t, st.IsPinned("a"))

	st.TogglePin("a")
	st.RecordWrite("a", "x")
	st.Forget("a")
	assert.False(t, st.IsPinned("a"))
	assert.False(t, st.Unchanged("a", "x"))
}
