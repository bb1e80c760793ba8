package dataset

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(filepath.Join(dir, name)), 0o750))
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600))
}

func TestLoad_MissingDirectoryIsEmpty(t *testing.T) {
	snap, err := Load(filepath.Join(t.TempDir(), "_data"), nil)
	require.NoError(t, err)
	require.Equal(t, 0, snap.Len())
	require.Empty(t, snap.Values())
}

func TestLoad_ReadsEachFileAsNamedDataset(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "nav.yaml", "- title: Home\n  url: /\n- title: About\n  url: /about.html\n")
	writeFile(t, dir, "site.yml", "name: Example\n")
	writeFile(t, dir, "authors.json", `{"matt": {"name": "Matt"}}`)
	writeFile(t, dir, "notes.txt", "ignored")
	writeFile(t, dir, "nested/deep.yaml", "ignored: true\n")

	snap, err := Load(dir, nil)
	require.NoError(t, err)
	require.Equal(t, []string{"authors", "nav", "site"}, snap.Names())

	nav, ok := snap.Get("nav")
	require.True(t, ok)
	require.Len(t, nav, 2)

	site, _ := snap.Get("site")
	require.Equal(t, map[string]any{"name": "Example"}, site)

	authors, _ := snap.Get("authors")
	require.Equal(t, map[string]any{"matt": map[string]any{"name": "Matt"}}, authors)

	require.Equal(t, filepath.Join(dir, "site.yml"), snap.Source("site"))
	_, ok = snap.Get("deep")
	require.False(t, ok)
}

func TestLoad_RejectsSigilName(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "$layout.yaml", "x: 1\n")

	_, err := Load(dir, nil)
	require.ErrorIs(t, err, ErrReservedDatasetName)
}

func TestLoad_RejectsInvalidIdentifier(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "main-menu.yaml", "x: 1\n")

	_, err := Load(dir, nil)
	require.ErrorIs(t, err, ErrInvalidDatasetName)
}

func TestLoad_RejectsDuplicateNames(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "nav.yaml", "a: 1\n")
	writeFile(t, dir, "nav.yml", "b: 2\n")

	_, err := Load(dir, nil)
	require.ErrorIs(t, err, ErrDuplicateDataset)
}

func TestLoad_ParseError(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "broken.yaml", "a: [unclosed\n")

	_, err := Load(dir, nil)
	require.ErrorIs(t, err, ErrDatasetParse)
}

func TestNilSnapshotIsSafe(t *testing.T) {
	var snap *Snapshot
	require.Equal(t, 0, snap.Len())
	require.Empty(t, snap.Names())
	_, ok := snap.Get("x")
	require.False(t, ok)
	require.NotNil(t, snap.Values())
}
