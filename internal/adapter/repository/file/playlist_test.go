package file

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kazu-1234/MusicPlayer/internal/domain"
	"github.com/kazu-1234/MusicPlayer/internal/logger"
)

func resolverFor(songs ...domain.Song) func(string) (domain.Song, bool) {
	byURI := make(map[string]domain.Song, len(songs))
	for _, song := range songs {
		byURI[song.URI] = song
	}
	return func(uri string) (domain.Song, bool) {
		song, ok := byURI[uri]
		return song, ok
	}
}

func TestPlaylistRepository_SaveAndLoad(t *testing.T) {
	log := logger.NewTestLogger()
	path := filepath.Join(t.TempDir(), "playlists.json")
	repo := NewPlaylistRepository(log, path)

	songs := testSongs()
	require.NoError(t, repo.Save([]domain.Playlist{
		{Name: "Road Trip", Songs: songs},
		{Name: "Empty"},
	}))

	loaded, err := repo.Load(resolverFor(songs...))
	require.NoError(t, err)
	require.Len(t, loaded, 2)

	assert.Equal(t, "Road Trip", loaded[0].Name)
	require.Len(t, loaded[0].Songs, 2)
	assert.Equal(t, "First Song", loaded[0].Songs[0].Title)
	assert.Equal(t, "Second Song", loaded[0].Songs[1].Title)

	assert.Equal(t, "Empty", loaded[1].Name)
	assert.Empty(t, loaded[1].Songs)
}

func TestPlaylistRepository_LoadDropsUnresolvableURIs(t *testing.T) {
	log := logger.NewTestLogger()
	path := filepath.Join(t.TempDir(), "playlists.json")
	repo := NewPlaylistRepository(log, path)

	songs := testSongs()
	require.NoError(t, repo.Save([]domain.Playlist{{Name: "Mixed", Songs: songs}}))

	// Catalog now only knows the first song
	loaded, err := repo.Load(resolverFor(songs[0]))
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	require.Len(t, loaded[0].Songs, 1)
	assert.Equal(t, songs[0].URI, loaded[0].Songs[0].URI)
}

func TestPlaylistRepository_LoadMissingFile(t *testing.T) {
	log := logger.NewTestLogger()
	repo := NewPlaylistRepository(log, filepath.Join(t.TempDir(), "playlists.json"))

	loaded, err := repo.Load(resolverFor())
	require.NoError(t, err)
	assert.Empty(t, loaded)
}

func TestPlaylistRepository_LoadCorruptedFile(t *testing.T) {
	log := logger.NewTestLogger()
	path := filepath.Join(t.TempDir(), "playlists.json")
	require.NoError(t, os.WriteFile(path, []byte("[{broken"), 0o644))

	repo := NewPlaylistRepository(log, path)

	loaded, err := repo.Load(resolverFor())
	require.NoError(t, err)
	assert.Empty(t, loaded)
}

func TestPlaylistRepository_SongOrderSurvivesRoundTrip(t *testing.T) {
	log := logger.NewTestLogger()
	repo := NewPlaylistRepository(log, filepath.Join(t.TempDir(), "playlists.json"))

	songs := testSongs()
	reversed := []domain.Song{songs[1], songs[0]}
	require.NoError(t, repo.Save([]domain.Playlist{{Name: "Reversed", Songs: reversed}}))

	loaded, err := repo.Load(resolverFor(songs...))
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	require.Len(t, loaded[0].Songs, 2)
	assert.Equal(t, songs[1].URI, loaded[0].Songs[0].URI)
	assert.Equal(t, songs[0].URI, loaded[0].Songs[1].URI)
}
