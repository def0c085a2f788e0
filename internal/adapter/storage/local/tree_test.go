package local

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kazu-1234/MusicPlayer/internal/logger"
	"github.com/kazu-1234/MusicPlayer/internal/ports"
)

func newTestTree(t *testing.T) (*Tree, string) {
	dir := t.TempDir()
	files := []string{
		"album/01-track.mp3",
		"album/02-track.flac",
		"album/cover.jpg",
		"loose.ogg",
		"notes.txt",
	}
	for _, rel := range files {
		full := filepath.Join(dir, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
		require.NoError(t, os.WriteFile(full, []byte("data"), 0o644))
	}
	return NewTree(logger.NewTestLogger()), dir
}

func TestTree_WalkVisitsEverything(t *testing.T) {
	tree, dir := newTestTree(t)

	var fileNames []string
	dirs := 0
	err := tree.Walk(dir, func(entry ports.TreeEntry) error {
		if entry.Dir {
			dirs++
			return nil
		}
		fileNames = append(fileNames, entry.Name)
		return nil
	})
	require.NoError(t, err)

	assert.Len(t, fileNames, 5)
	assert.Contains(t, fileNames, "01-track.mp3")
	assert.Contains(t, fileNames, "loose.ogg")
	assert.GreaterOrEqual(t, dirs, 1)
}

func TestTree_WalkReportsMIME(t *testing.T) {
	tree, dir := newTestTree(t)

	mimes := make(map[string]string)
	err := tree.Walk(dir, func(entry ports.TreeEntry) error {
		if !entry.Dir {
			mimes[entry.Name] = entry.MIME
		}
		return nil
	})
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(mimes["01-track.mp3"], "audio/"),
		"mp3 should classify as audio, got %q", mimes["01-track.mp3"])
	assert.True(t, strings.HasPrefix(mimes["cover.jpg"], "image/"),
		"jpg should classify as image, got %q", mimes["cover.jpg"])
}

func TestTree_CountFiles(t *testing.T) {
	tree, dir := newTestTree(t)

	audio := tree.CountFiles(dir, func(entry ports.TreeEntry) bool {
		ext := strings.ToLower(filepath.Ext(entry.Name))
		return ext == ".mp3" || ext == ".flac" || ext == ".ogg"
	})
	assert.Equal(t, 3, audio)

	// Unreadable root falls back to zero
	assert.Equal(t, 0, tree.CountFiles(filepath.Join(dir, "missing"), func(ports.TreeEntry) bool {
		return true
	}))
}

func TestTree_OpenAndExists(t *testing.T) {
	tree, dir := newTestTree(t)
	path := filepath.Join(dir, "loose.ogg")

	assert.True(t, tree.Exists(path))
	assert.False(t, tree.Exists(filepath.Join(dir, "missing.mp3")))
	// Directories are not playable resources
	assert.False(t, tree.Exists(dir))

	stream, err := tree.Open(path)
	require.NoError(t, err)
	defer stream.Close()

	buf := make([]byte, 4)
	n, err := stream.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, "data", string(buf[:n]))
}

func TestTree_WalkMissingRoot(t *testing.T) {
	tree, dir := newTestTree(t)

	// A missing root is skipped, not an error: the walk just finds nothing
	visited := 0
	err := tree.Walk(filepath.Join(dir, "missing"), func(entry ports.TreeEntry) error {
		visited++
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 0, visited)
}
