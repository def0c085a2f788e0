package file

import (
	"encoding/json"
	"log/slog"
	"os"
	"sync"

	"github.com/kazu-1234/MusicPlayer/internal/domain"
	"github.com/kazu-1234/MusicPlayer/internal/ports"
)

// playlistEntry is the on-disk form of one playlist: its name and the URIs
// of its songs in order. Song metadata is not duplicated here, it is
// resolved against the catalog on load.
type playlistEntry struct {
	Name     string   `json:"name"`
	SongURIs []string `json:"songUris"`
}

// PlaylistRepository persists all playlists in a single JSON file.
type PlaylistRepository struct {
	logger *slog.Logger
	path   string
	mu     sync.Mutex
}

// Ensure interface compliance at compile time
var _ ports.PlaylistRepository = (*PlaylistRepository)(nil)

// NewPlaylistRepository creates a playlist repository writing to path.
func NewPlaylistRepository(logger *slog.Logger, path string) *PlaylistRepository {
	return &PlaylistRepository{
		logger: logger,
		path:   path,
	}
}

// Save writes all playlists to disk.
func (r *PlaylistRepository) Save(playlists []domain.Playlist) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	entries := make([]playlistEntry, 0, len(playlists))
	for _, playlist := range playlists {
		uris := make([]string, 0, len(playlist.Songs))
		for _, song := range playlist.Songs {
			uris = append(uris, song.URI)
		}
		entries = append(entries, playlistEntry{
			Name:     playlist.Name,
			SongURIs: uris,
		})
	}

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return domain.NewRepositoryError("save", "playlist", "failed to encode playlists", err)
	}

	if err := writeAtomic(r.path, data); err != nil {
		return domain.NewRepositoryError("save", "playlist", "failed to write playlist file", err)
	}

	r.logger.Debug("playlists saved",
		slog.Int("playlists", len(entries)),
		slog.String("path", r.path))
	return nil
}

// Load reads all playlists from disk, resolving each stored URI against the
// catalog via resolve. URIs that no longer resolve are dropped with a log
// line; the playlist itself survives. A missing or corrupted file yields no
// playlists.
func (r *PlaylistRepository) Load(resolve ports.SongResolver) ([]domain.Playlist, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	data, err := os.ReadFile(r.path)
	if err != nil {
		if os.IsNotExist(err) {
			return []domain.Playlist{}, nil
		}
		return nil, domain.NewRepositoryError("load", "playlist", "failed to read playlist file", err)
	}

	var entries []playlistEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		r.logger.Warn("playlist file is corrupted, starting with no playlists",
			slog.String("path", r.path),
			slog.Any("error", err))
		return []domain.Playlist{}, nil
	}

	playlists := make([]domain.Playlist, 0, len(entries))
	for _, entry := range entries {
		songs := make([]domain.Song, 0, len(entry.SongURIs))
		dropped := 0
		for _, uri := range entry.SongURIs {
			song, ok := resolve(uri)
			if !ok {
				dropped++
				continue
			}
			songs = append(songs, song)
		}
		if dropped > 0 {
			r.logger.Warn("playlist references songs missing from the catalog",
				slog.String("playlist", entry.Name),
				slog.Int("dropped", dropped))
		}
		playlists = append(playlists, domain.Playlist{
			Name:  entry.Name,
			Songs: songs,
		})
	}

	r.logger.Debug("playlists loaded",
		slog.Int("playlists", len(playlists)),
		slog.String("path", r.path))
	return playlists, nil
}
