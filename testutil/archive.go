// Package testutil holds helpers shared by package tests.
package testutil

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"archive-browser/models"

	"github.com/stretchr/testify/require"
)

// ArchiveTree builds an archive root in a temporary directory.
type ArchiveTree struct {
	Root string
	t    testing.TB
}

func NewArchiveTree(t testing.TB) *ArchiveTree {
	t.Helper()
	return &ArchiveTree{Root: t.TempDir(), t: t}
}

// AddCapture creates {domain}/{segment}/{name}/ and returns its path.
// metadata is written as metadata.json: a string is written verbatim,
// anything else is JSON encoded, nil writes nothing. Each artifact other
// than metadata gets a small placeholder file.
func (a *ArchiveTree) AddCapture(domain, segment, name string, metadata any, artifacts ...models.ArtifactKind) string {
	a.t.Helper()
	dir := filepath.Join(a.Root, domain, segment, name)
	require.NoError(a.t, os.MkdirAll(dir, 0o755))

	switch m := metadata.(type) {
	case nil:
	case string:
		a.write(filepath.Join(dir, string(models.ArtifactMetadata)), []byte(m))
	default:
		data, err := json.Marshal(m)
		require.NoError(a.t, err)
		a.write(filepath.Join(dir, string(models.ArtifactMetadata)), data)
	}

	for _, kind := range artifacts {
		if kind == models.ArtifactMetadata {
			continue
		}
		a.write(filepath.Join(dir, string(kind)), []byte("content of "+string(kind)))
	}
	return dir
}

// WriteFile writes a file relative to the root, creating parents.
func (a *ArchiveTree) WriteFile(rel string, data []byte) string {
	a.t.Helper()
	path := filepath.Join(a.Root, rel)
	require.NoError(a.t, os.MkdirAll(filepath.Dir(path), 0o755))
	a.write(path, data)
	return path
}

// Remove deletes a file or directory relative to the root.
func (a *ArchiveTree) Remove(rel string) {
	a.t.Helper()
	require.NoError(a.t, os.RemoveAll(filepath.Join(a.Root, rel)))
}

func (a *ArchiveTree) write(path string, data []byte) {
	require.NoError(a.t, os.WriteFile(path, data, 0o644))
}

// Metadata builds the preferred metadata shape {"archive_info": {"url": ...}}.
func Metadata(url string) map[string]any {
	return map[string]any{
		"archive_info": map[string]any{"url": url},
	}
}
