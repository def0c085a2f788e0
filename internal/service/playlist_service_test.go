package service

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kazu-1234/MusicPlayer/internal/adapter/eventbus"
	"github.com/kazu-1234/MusicPlayer/internal/adapter/repository/file"
	"github.com/kazu-1234/MusicPlayer/internal/adapter/storage/local"
	"github.com/kazu-1234/MusicPlayer/internal/domain"
	"github.com/kazu-1234/MusicPlayer/internal/logger"
)

// fakeCatalog is a fixed in-memory CatalogSource.
type fakeCatalog struct {
	songs []domain.Song
}

func (c *fakeCatalog) Songs() []domain.Song {
	return c.songs
}

func (c *fakeCatalog) Song(uri string) (domain.Song, bool) {
	for _, song := range c.songs {
		if song.URI == uri {
			return song, true
		}
	}
	return domain.Song{}, false
}

func importCatalog() *fakeCatalog {
	return &fakeCatalog{songs: []domain.Song{
		{
			URI:         "/music/Queen/Greatest Hits/Bohemian Rhapsody.mp3",
			DisplayName: "Bohemian Rhapsody.mp3",
			Title:       "Bohemian Rhapsody",
			Artist:      "Queen",
			Album:       "Greatest Hits",
			Exists:      true,
		},
		{
			URI:         "/music/Queen/Greatest Hits/Dont Stop Me Now.mp3",
			DisplayName: "Dont Stop Me Now.mp3",
			Title:       "Don't Stop Me Now",
			Artist:      "Queen",
			Album:       "Greatest Hits",
			Exists:      true,
		},
		{
			URI:         "/music/Misc/loose-track.mp3",
			DisplayName: "loose-track.mp3",
			Title:       "Loose Track",
			Artist:      UnknownArtist,
			Album:       UnknownAlbum,
			Exists:      true,
		},
	}}
}

func newTestPlaylistService(t *testing.T, catalog CatalogSource) (*PlaylistService, *eventbus.SyncEventBus) {
	log := logger.NewTestLogger()
	dataDir := t.TempDir()

	tree := local.NewTree(log)
	bus := eventbus.NewSyncEventBus()
	repo := file.NewPlaylistRepository(log, filepath.Join(dataDir, "playlists.json"))
	prefs := file.NewPreferencesRepository(log, filepath.Join(dataDir, "prefs.json"))

	return NewPlaylistService(log, catalog, tree, repo, prefs, bus), bus
}

func TestPlaylistService_ImportBasePathMatch(t *testing.T) {
	service, _ := newTestPlaylistService(t, importCatalog())
	require.NoError(t, service.SetBasePath(`C:\Users\me\Music`))

	content := strings.Join([]string{
		"#EXTM3U",
		"",
		`C:\Users\me\Music\Queen\Greatest Hits\Bohemian Rhapsody.mp3`,
		`c:\users\me\music\Queen\Greatest Hits\Dont Stop Me Now.mp3`,
	}, "\n")

	playlist, err := service.Import("favorites", strings.NewReader(content))
	require.NoError(t, err)
	require.Len(t, playlist.Songs, 2)
	assert.Equal(t, "Bohemian Rhapsody", playlist.Songs[0].Title)
	assert.Equal(t, "Don't Stop Me Now", playlist.Songs[1].Title)
}

func TestPlaylistService_ImportFilenameFallback(t *testing.T) {
	service, _ := newTestPlaylistService(t, importCatalog())

	// No base path configured, entry paths use a foreign layout: only the
	// bare filename can match.
	content := strings.Join([]string{
		"/somewhere/else/loose-track.mp3",
		`D:\exports\Bohemian Rhapsody.mp3`,
		"/somewhere/unknown-song.mp3",
	}, "\n")

	playlist, err := service.Import("mixed", strings.NewReader(content))
	require.NoError(t, err)
	require.Len(t, playlist.Songs, 2)
	assert.Equal(t, "Loose Track", playlist.Songs[0].Title)
	assert.Equal(t, "Bohemian Rhapsody", playlist.Songs[1].Title)
}

func TestPlaylistService_ImportBasePathBeatsFilename(t *testing.T) {
	catalog := importCatalog()
	// Second song with the same display name under a different artist/album;
	// the base-path match must pick by the full triple, not the bare name.
	catalog.songs = append(catalog.songs, domain.Song{
		URI:         "/music/Cover Band/Tributes/Bohemian Rhapsody.mp3",
		DisplayName: "Bohemian Rhapsody.mp3",
		Title:       "Bohemian Rhapsody (Cover)",
		Artist:      "Cover Band",
		Album:       "Tributes",
		Exists:      true,
	})

	service, _ := newTestPlaylistService(t, catalog)
	require.NoError(t, service.SetBasePath("/mnt/music"))

	playlist, err := service.Import("picked", strings.NewReader(
		"/mnt/music/Cover Band/Tributes/Bohemian Rhapsody.mp3\n"))
	require.NoError(t, err)
	require.Len(t, playlist.Songs, 1)
	assert.Equal(t, "Bohemian Rhapsody (Cover)", playlist.Songs[0].Title)
}

func TestPlaylistService_ImportAllowsDuplicates(t *testing.T) {
	service, _ := newTestPlaylistService(t, importCatalog())

	content := "loose-track.mp3\nloose-track.mp3\n"
	playlist, err := service.Import("twice", strings.NewReader(content))
	require.NoError(t, err)
	assert.Len(t, playlist.Songs, 2)
}

func TestPlaylistService_ImportZeroMatchesFails(t *testing.T) {
	service, _ := newTestPlaylistService(t, importCatalog())

	_, err := service.Import("nothing", strings.NewReader("/nope/one.mp3\n/nope/two.mp3\n"))
	assert.ErrorIs(t, err, domain.ErrEmptyPlaylist)
	assert.Empty(t, service.Playlists())
}

// failingReader yields one valid line, then an error.
type failingReader struct {
	data []byte
	done bool
}

func (r *failingReader) Read(p []byte) (int, error) {
	if !r.done {
		r.done = true
		return copy(p, r.data), nil
	}
	return 0, errors.New("stream truncated")
}

func TestPlaylistService_ImportIsAllOrNothing(t *testing.T) {
	service, _ := newTestPlaylistService(t, importCatalog())

	_, err := service.Import("broken", &failingReader{data: []byte("loose-track.mp3\n")})
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrEmptyPlaylist)

	// Nothing committed despite the first entry having matched
	assert.Empty(t, service.Playlists())
}

func TestPlaylistService_ImportReplacesSameName(t *testing.T) {
	service, _ := newTestPlaylistService(t, importCatalog())

	_, err := service.Import("mine", strings.NewReader("loose-track.mp3\n"))
	require.NoError(t, err)
	_, err = service.Import("mine", strings.NewReader("Bohemian Rhapsody.mp3\nloose-track.mp3\n"))
	require.NoError(t, err)

	playlists := service.Playlists()
	require.Len(t, playlists, 1)
	assert.Len(t, playlists[0].Songs, 2)
}

func TestPlaylistService_ImportFile(t *testing.T) {
	service, _ := newTestPlaylistService(t, importCatalog())

	dir := t.TempDir()
	path := filepath.Join(dir, "Summer Mix.m3u")
	require.NoError(t, os.WriteFile(path, []byte("#EXTM3U\nloose-track.mp3\n"), 0o644))

	playlist, err := service.ImportFile(path)
	require.NoError(t, err)
	assert.Equal(t, "Summer Mix", playlist.Name)
	require.Len(t, playlist.Songs, 1)
}

func TestPlaylistService_RemoveAndReload(t *testing.T) {
	catalog := importCatalog()
	service, bus := newTestPlaylistService(t, catalog)

	updates := 0
	bus.Subscribe(domain.EventPlaylistsUpdated, func(event domain.Event) {
		updates++
	})

	_, err := service.Import("keep", strings.NewReader("loose-track.mp3\n"))
	require.NoError(t, err)
	_, err = service.Import("drop", strings.NewReader("Bohemian Rhapsody.mp3\n"))
	require.NoError(t, err)

	require.NoError(t, service.Remove("drop"))
	assert.ErrorIs(t, service.Remove("drop"), domain.ErrPlaylistNotFound)

	playlists := service.Playlists()
	require.Len(t, playlists, 1)
	assert.Equal(t, "keep", playlists[0].Name)

	// Catalog shrinks; Reload drops the now-unresolvable entry
	catalog.songs = catalog.songs[:2]
	require.NoError(t, service.Reload())

	reloaded, ok := service.Playlist("keep")
	require.True(t, ok)
	assert.Empty(t, reloaded.Songs)

	assert.GreaterOrEqual(t, updates, 4)
}

func TestPlaylistService_BasePathPersists(t *testing.T) {
	log := logger.NewTestLogger()
	dataDir := t.TempDir()
	tree := local.NewTree(log)
	repo := file.NewPlaylistRepository(log, filepath.Join(dataDir, "playlists.json"))
	prefs := file.NewPreferencesRepository(log, filepath.Join(dataDir, "prefs.json"))
	catalog := importCatalog()

	first := NewPlaylistService(log, catalog, tree, repo, prefs, eventbus.NewSyncEventBus())
	require.NoError(t, first.SetBasePath("/mnt/music"))
	_, err := first.Import("saved", strings.NewReader("loose-track.mp3\n"))
	require.NoError(t, err)

	second := NewPlaylistService(log, catalog, tree, repo, prefs, eventbus.NewSyncEventBus())
	require.NoError(t, second.Load())
	assert.Equal(t, "/mnt/music", second.BasePath())

	playlists := second.Playlists()
	require.Len(t, playlists, 1)
	assert.Equal(t, "saved", playlists[0].Name)
	require.Len(t, playlists[0].Songs, 1)
	assert.Equal(t, "Loose Track", playlists[0].Songs[0].Title)
}

func TestPlaylistName(t *testing.T) {
	assert.Equal(t, "Summer Mix", playlistName("/path/to/Summer Mix.m3u"))
	assert.Equal(t, "unicode list", playlistName(`C:\lists\unicode list.M3U8`))
	assert.Equal(t, "plain", playlistName("plain"))
}
