package file

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kazu-1234/MusicPlayer/internal/adapter/storage/local"
	"github.com/kazu-1234/MusicPlayer/internal/domain"
	"github.com/kazu-1234/MusicPlayer/internal/logger"
)

func testSongs() []domain.Song {
	return []domain.Song{
		{
			URI:          "/music/rock/album/track01.mp3",
			DisplayName:  "track01.mp3",
			Title:        "First Song",
			Artist:       "The Band",
			Album:        "Debut",
			TrackNumber:  1,
			PlayCount:    3,
			SourceFolder: "/music",
			Exists:       true,
		},
		{
			URI:          "/music/rock/album/track02.mp3",
			DisplayName:  "track02.mp3",
			Title:        "Second Song",
			Artist:       "The Band",
			Album:        "Debut",
			TrackNumber:  2,
			SourceFolder: "/music",
			Exists:       true,
		},
	}
}

func TestCatalogRepository_SaveAndLoad(t *testing.T) {
	log := logger.NewTestLogger()
	dir := t.TempDir()
	path := filepath.Join(dir, "catalog.json")

	repo := NewCatalogRepository(log, local.NewTree(log), path)

	require.NoError(t, repo.Save(testSongs()))

	loaded, err := repo.Load()
	require.NoError(t, err)
	require.Len(t, loaded, 2)

	assert.Equal(t, "/music/rock/album/track01.mp3", loaded[0].URI)
	assert.Equal(t, "First Song", loaded[0].Title)
	assert.Equal(t, "The Band", loaded[0].Artist)
	assert.Equal(t, "Debut", loaded[0].Album)
	assert.Equal(t, 1, loaded[0].TrackNumber)
	assert.Equal(t, 3, loaded[0].PlayCount)
	assert.Equal(t, "/music", loaded[0].SourceFolder)
}

func TestCatalogRepository_LoadMarksMissingFiles(t *testing.T) {
	log := logger.NewTestLogger()
	dir := t.TempDir()

	present := filepath.Join(dir, "present.mp3")
	require.NoError(t, os.WriteFile(present, []byte("audio"), 0o644))

	repo := NewCatalogRepository(log, local.NewTree(log), filepath.Join(dir, "catalog.json"))
	require.NoError(t, repo.Save([]domain.Song{
		{URI: present, Title: "Present", SourceFolder: dir},
		{URI: filepath.Join(dir, "gone.mp3"), Title: "Gone", SourceFolder: dir},
	}))

	loaded, err := repo.Load()
	require.NoError(t, err)
	require.Len(t, loaded, 2)
	assert.True(t, loaded[0].Exists)
	assert.False(t, loaded[1].Exists)
}

func TestCatalogRepository_LoadMissingFile(t *testing.T) {
	log := logger.NewTestLogger()
	repo := NewCatalogRepository(log, local.NewTree(log), filepath.Join(t.TempDir(), "catalog.json"))

	loaded, err := repo.Load()
	require.NoError(t, err)
	assert.Empty(t, loaded)
}

func TestCatalogRepository_LoadCorruptedFile(t *testing.T) {
	log := logger.NewTestLogger()
	dir := t.TempDir()
	path := filepath.Join(dir, "catalog.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	repo := NewCatalogRepository(log, local.NewTree(log), path)

	loaded, err := repo.Load()
	require.NoError(t, err)
	assert.Empty(t, loaded)
}

func TestCatalogRepository_SaveOverwritesPreviousSnapshot(t *testing.T) {
	log := logger.NewTestLogger()
	path := filepath.Join(t.TempDir(), "catalog.json")
	repo := NewCatalogRepository(log, local.NewTree(log), path)

	require.NoError(t, repo.Save(testSongs()))
	require.NoError(t, repo.Save(testSongs()[:1]))

	loaded, err := repo.Load()
	require.NoError(t, err)
	assert.Len(t, loaded, 1)
}
