package service

import (
	"bufio"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/kazu-1234/MusicPlayer/internal/domain"
	"github.com/kazu-1234/MusicPlayer/internal/ports"
)

// CatalogSource is the read-side of the catalog that playlist resolution
// needs. *LibraryService satisfies it.
type CatalogSource interface {
	Songs() []domain.Song
	Song(uri string) (domain.Song, bool)
}

// PlaylistService imports .m3u/.m3u8 playlists, resolves their entries
// against the catalog and persists the resulting playlists.
// All operations are thread-safe via sync.RWMutex.
type PlaylistService struct {
	// Dependencies (injected)
	logger  *slog.Logger
	catalog CatalogSource
	tree    ports.FolderTree
	repo    ports.PlaylistRepository
	prefs   ports.PreferencesRepository
	bus     ports.EventBus

	// State
	playlists []domain.Playlist
	basePath  string

	// Concurrency control
	mu sync.RWMutex
}

// NewPlaylistService creates a new playlist service.
func NewPlaylistService(
	logger *slog.Logger,
	catalog CatalogSource,
	tree ports.FolderTree,
	repo ports.PlaylistRepository,
	prefs ports.PreferencesRepository,
	bus ports.EventBus,
) *PlaylistService {
	return &PlaylistService{
		logger:  logger,
		catalog: catalog,
		tree:    tree,
		repo:    repo,
		prefs:   prefs,
		bus:     bus,
	}
}

// Load restores persisted playlists and the import base path.
// Called once at startup, after the catalog has been loaded.
func (s *PlaylistService) Load() error {
	basePath, err := s.prefs.LoadBasePath()
	if err != nil {
		return domain.NewServiceError("PlaylistService", "Load", "failed to load base path", err)
	}

	playlists, err := s.repo.Load(s.catalog.Song)
	if err != nil {
		return domain.NewServiceError("PlaylistService", "Load", "failed to load playlists", err)
	}

	s.mu.Lock()
	s.basePath = basePath
	s.playlists = playlists
	s.mu.Unlock()

	s.logger.Info("playlists restored", slog.Int("playlists", len(playlists)))
	return nil
}

// ImportFile imports the playlist file behind uri. The playlist name is the
// file name with its .m3u/.m3u8 suffix stripped.
func (s *PlaylistService) ImportFile(uri string) (domain.Playlist, error) {
	stream, err := s.tree.Open(uri)
	if err != nil {
		return domain.Playlist{}, domain.NewServiceError("PlaylistService", "ImportFile", "cannot open playlist file", err)
	}
	defer stream.Close()

	return s.Import(playlistName(uri), stream)
}

// Import parses M3U content from r and resolves each entry against the
// catalog. Blank lines and # directives are ignored; unmatched entries are
// dropped silently. A read error aborts the whole import with no playlist
// produced, and an import that matches nothing fails with
// domain.ErrEmptyPlaylist. On success the playlist is stored (replacing any
// previous playlist with the same name) and persisted.
func (s *PlaylistService) Import(name string, r io.Reader) (domain.Playlist, error) {
	s.mu.RLock()
	basePath := s.basePath
	s.mu.RUnlock()

	byKey, byName := s.buildIndexes()

	songs := make([]domain.Song, 0)
	dropped := 0

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		song, ok := matchEntry(line, basePath, byKey, byName)
		if !ok {
			dropped++
			continue
		}
		songs = append(songs, song)
	}
	if err := scanner.Err(); err != nil {
		// All-or-nothing: a corrupt stream must not yield a partial playlist
		return domain.Playlist{}, domain.NewServiceError("PlaylistService", "Import", "failed to read playlist", err)
	}

	if len(songs) == 0 {
		return domain.Playlist{}, domain.ErrEmptyPlaylist
	}

	playlist := domain.Playlist{Name: name, Songs: songs}
	if err := s.store(playlist); err != nil {
		return domain.Playlist{}, err
	}

	s.logger.Info("playlist imported",
		slog.String("name", name),
		slog.Int("matched", len(songs)),
		slog.Int("dropped", dropped))
	return playlist, nil
}

// SetBasePath configures and persists the foreign-path prefix stripped during
// base-path-relative matching.
func (s *PlaylistService) SetBasePath(basePath string) error {
	s.mu.Lock()
	s.basePath = basePath
	s.mu.Unlock()

	if err := s.prefs.SaveBasePath(basePath); err != nil {
		return domain.NewServiceError("PlaylistService", "SetBasePath", "failed to persist base path", err)
	}
	return nil
}

// BasePath returns the configured import base path.
func (s *PlaylistService) BasePath() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.basePath
}

// Playlists returns a snapshot of all playlists.
func (s *PlaylistService) Playlists() []domain.Playlist {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snapshot := make([]domain.Playlist, len(s.playlists))
	copy(snapshot, s.playlists)
	return snapshot
}

// Playlist returns the playlist with the given name.
func (s *PlaylistService) Playlist(name string) (domain.Playlist, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, playlist := range s.playlists {
		if playlist.Name == name {
			return playlist, true
		}
	}
	return domain.Playlist{}, false
}

// Add stores a playlist, replacing any existing playlist with the same name,
// and persists the collection.
func (s *PlaylistService) Add(playlist domain.Playlist) error {
	return s.store(playlist)
}

// Remove deletes the playlist with the given name and persists the
// collection. Returns domain.ErrPlaylistNotFound for unknown names.
func (s *PlaylistService) Remove(name string) error {
	s.mu.Lock()
	kept := make([]domain.Playlist, 0, len(s.playlists))
	for _, playlist := range s.playlists {
		if playlist.Name != name {
			kept = append(kept, playlist)
		}
	}
	if len(kept) == len(s.playlists) {
		s.mu.Unlock()
		return domain.ErrPlaylistNotFound
	}
	s.playlists = kept
	snapshot := make([]domain.Playlist, len(kept))
	copy(snapshot, kept)
	s.mu.Unlock()

	if err := s.repo.Save(snapshot); err != nil {
		return domain.NewServiceError("PlaylistService", "Remove", "failed to persist playlists", err)
	}
	s.bus.Publish(domain.NewPlaylistsUpdatedEvent(snapshot))
	return nil
}

// Reload re-resolves all persisted playlists against the current catalog.
// Called after catalog mutations so playlist entries pick up new metadata and
// removed songs drop out.
func (s *PlaylistService) Reload() error {
	playlists, err := s.repo.Load(s.catalog.Song)
	if err != nil {
		return domain.NewServiceError("PlaylistService", "Reload", "failed to reload playlists", err)
	}

	s.mu.Lock()
	s.playlists = playlists
	s.mu.Unlock()

	s.bus.Publish(domain.NewPlaylistsUpdatedEvent(playlists))
	return nil
}

// store upserts one playlist and persists the whole collection.
func (s *PlaylistService) store(playlist domain.Playlist) error {
	s.mu.Lock()
	replaced := false
	for i := range s.playlists {
		if s.playlists[i].Name == playlist.Name {
			s.playlists[i] = playlist
			replaced = true
			break
		}
	}
	if !replaced {
		s.playlists = append(s.playlists, playlist)
	}
	snapshot := make([]domain.Playlist, len(s.playlists))
	copy(snapshot, s.playlists)
	s.mu.Unlock()

	if err := s.repo.Save(snapshot); err != nil {
		return domain.NewServiceError("PlaylistService", "Add", "failed to persist playlists", err)
	}
	s.bus.Publish(domain.NewPlaylistsUpdatedEvent(snapshot))
	return nil
}

// buildIndexes builds the two lookup tables used for entry matching: the
// lowercased "artist/album/filename" key and the exact display name. Later
// catalog entries win on key collisions.
func (s *PlaylistService) buildIndexes() (map[string]domain.Song, map[string]domain.Song) {
	songs := s.catalog.Songs()

	byKey := make(map[string]domain.Song, len(songs))
	byName := make(map[string]domain.Song, len(songs))
	for _, song := range songs {
		key := strings.ToLower(song.Artist + "/" + song.Album + "/" + song.DisplayName)
		byKey[key] = song
		byName[song.DisplayName] = song
	}
	return byKey, byName
}

// matchEntry resolves one playlist line, base-path-relative first, then by
// bare filename.
func matchEntry(line, basePath string, byKey, byName map[string]domain.Song) (domain.Song, bool) {
	if basePath != "" && len(line) > len(basePath) &&
		strings.EqualFold(line[:len(basePath)], basePath) {
		rel := strings.ReplaceAll(line[len(basePath):], "\\", "/")
		segments := make([]string, 0, 8)
		for _, segment := range strings.Split(rel, "/") {
			if segment != "" {
				segments = append(segments, segment)
			}
		}
		if len(segments) >= 3 {
			last := segments[len(segments)-3:]
			key := strings.ToLower(last[0] + "/" + last[1] + "/" + last[2])
			if song, ok := byKey[key]; ok {
				return song, true
			}
		}
	}

	if song, ok := byName[fileNameOf(line)]; ok {
		return song, true
	}
	return domain.Song{}, false
}

// fileNameOf returns the substring after the last slash of either style.
func fileNameOf(line string) string {
	if idx := strings.LastIndexAny(line, "/\\"); idx >= 0 {
		return line[idx+1:]
	}
	return line
}

// playlistName strips the directory part and the .m3u/.m3u8 suffix from a
// playlist file URI.
func playlistName(uri string) string {
	name := fileNameOf(uri)
	lower := strings.ToLower(name)
	switch {
	case strings.HasSuffix(lower, ".m3u8"):
		return name[:len(name)-len(".m3u8")]
	case strings.HasSuffix(lower, ".m3u"):
		return name[:len(name)-len(".m3u")]
	}
	return name
}

// Verify that PlaylistService implements the expected interface patterns
var _ interface {
	Load() error
	ImportFile(string) (domain.Playlist, error)
	Import(string, io.Reader) (domain.Playlist, error)
	SetBasePath(string) error
	BasePath() string
	Playlists() []domain.Playlist
	Playlist(string) (domain.Playlist, bool)
	Add(domain.Playlist) error
	Remove(string) error
	Reload() error
} = (*PlaylistService)(nil)
