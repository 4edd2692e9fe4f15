package store_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/askiada/go-gridpipe/internal/store"
)

type record struct {
	Payloads map[string]any           `codec:"payloads"`
	Elapsed  map[string]time.Duration `codec:"elapsed"`
	Name     string                   `codec:"name"`
	Skipped  string                   `codec:"-"`
}

func TestFileStoreSaveLoad(t *testing.T) {
	t.Parallel()

	st, err := store.NewFileStore(filepath.Join(t.TempDir(), "nested", "run"))
	require.NoError(t, err)

	in := record{
		Name:     "a",
		Payloads: map[string]any{"p=1": 1.5, "p=2": "text"},
		Elapsed:  map[string]time.Duration{"p=1": time.Millisecond},
		Skipped:  "not persisted",
	}

	path, err := st.Save("a_result", in)
	require.NoError(t, err)
	assert.Equal(t, st.Prefix()+"_a_result.msgpack", path)

	var out record
	require.NoError(t, st.Load(path, &out))
	assert.Equal(t, "a", out.Name)
	assert.Equal(t, 1.5, out.Payloads["p=1"])
	assert.Equal(t, "text", out.Payloads["p=2"])
	assert.Equal(t, time.Millisecond, out.Elapsed["p=1"])
	assert.Empty(t, out.Skipped)
}

func TestFileStoreYAML(t *testing.T) {
	t.Parallel()

	st, err := store.NewFileStore(filepath.Join(t.TempDir(), "run"))
	require.NoError(t, err)

	path, err := st.SaveYAML("manifest", map[string][]string{"p": {"1", "2"}})
	require.NoError(t, err)

	var out map[string][]string
	require.NoError(t, st.LoadYAML(path, &out))
	assert.Equal(t, []string{"1", "2"}, out["p"])
}

func TestFileStoreEmptyPrefix(t *testing.T) {
	t.Parallel()

	st, err := store.NewFileStore("")
	require.NoError(t, err)

	t.Cleanup(func() { _ = os.RemoveAll(filepath.Dir(st.Prefix())) })

	info, err := os.Stat(filepath.Dir(st.Prefix()))
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestFileStoreEmptyName(t *testing.T) {
	t.Parallel()

	st, err := store.NewFileStore(filepath.Join(t.TempDir(), "run"))
	require.NoError(t, err)

	_, err = st.Save(" ", 1)
	assert.ErrorIs(t, err, store.ErrEmptyName)
}

func TestFileStoreLoadMissing(t *testing.T) {
	t.Parallel()

	st, err := store.NewFileStore(filepath.Join(t.TempDir(), "run"))
	require.NoError(t, err)

	var out record
	assert.Error(t, st.Load(st.Path("missing", ".msgpack"), &out))
}
