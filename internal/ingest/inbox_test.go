package ingest

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func copyFixture(t *testing.T, name, dst string) {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("..", "..", "testdata", name))
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(dst, data, 0o644))
}

func TestProcessInbox(t *testing.T) {
	h := newHarness(t)
	dir := t.TempDir()

	copyFixture(t, "chase_checking.csv", filepath.Join(dir, "jan.csv"))
	copyFixture(t, "revolut_statement.csv", filepath.Join(dir, "revolut-jan.csv"))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.csv"), []byte("a,b\n\"x,y\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignore me"), 0o644))

	rep, err := h.svc.ProcessInbox(context.Background(), dir, Options{AutoApply: true})
	require.NoError(t, err)
	assert.Equal(t, 3, rep.Files)
	assert.Equal(t, 2, rep.Imported)
	assert.Equal(t, 1, rep.Failed)
	assert.Equal(t, 9, rep.Added)

	_, err = os.Stat(filepath.Join(dir, "processed", "jan.csv"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(dir, "broken.csv"))
	assert.NoError(t, err)

	// second pass only retries the broken file
	rep, err = h.svc.ProcessInbox(context.Background(), dir, Options{AutoApply: true})
	require.NoError(t, err)
	assert.Equal(t, 1, rep.Files)
	assert.Equal(t, 1, rep.Failed)
}

func TestProcessInbox_MissingDir(t *testing.T) {
	h := newHarness(t)
	rep, err := h.svc.ProcessInbox(context.Background(), filepath.Join(t.TempDir(), "none"), Options{})
	require.NoError(t, err)
	assert.Zero(t, rep.Files)
}
