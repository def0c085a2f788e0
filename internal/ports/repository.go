// Package ports define repository interfaces for data persistence abstraction.
// These interfaces enable the repository pattern and allow swapping persistence mechanisms.
package ports

import (
	"github.com/kazu-1234/MusicPlayer/internal/domain"
)

// CatalogRepository handles persistence of the song catalog.
// The catalog is persisted wholesale after every mutation; it is the single
// source of truth for the library across restarts.
//
// Thread-safety: Implementations must be thread-safe.
type CatalogRepository interface {
	// Save persists the full catalog, replacing any previous contents.
	Save(songs []domain.Song) error

	// Load retrieves the persisted catalog.
	// A missing file yields an empty slice, not an error.
	Load() ([]domain.Song, error)
}

// SongResolver resolves a song URI against the current catalog.
// It returns the song and true when the URI is known.
type SongResolver func(uri string) (domain.Song, bool)

// PlaylistRepository handles persistence of playlists.
// Playlists are persisted as name plus ordered song URIs; loading re-resolves
// each URI against the current catalog, silently dropping unresolved entries.
//
// Thread-safety: Implementations must be thread-safe.
type PlaylistRepository interface {
	// Save persists all playlists, replacing any previous contents.
	Save(playlists []domain.Playlist) error

	// Load retrieves all persisted playlists, resolving song URIs through
	// resolve. Unresolved URIs are omitted from the reconstructed playlist.
	// A missing file yields an empty slice, not an error.
	Load(resolve SongResolver) ([]domain.Playlist, error)
}

// PreferencesRepository handles persistence of user preferences.
//
// Thread-safety: Implementations must be thread-safe.
type PreferencesRepository interface {
	// SaveBasePath persists the playlist base path.
	SaveBasePath(path string) error

	// LoadBasePath retrieves the saved playlist base path ("" if unset).
	LoadBasePath() (string, error)

	// SaveSourceFolders persists the tracked source folder roots.
	SaveSourceFolders(folders []string) error

	// LoadSourceFolders retrieves the tracked source folder roots.
	// If none were saved, returns an empty slice (not an error).
	LoadSourceFolders() ([]string, error)

	// SaveRepeatMode persists the repeat mode.
	SaveRepeatMode(mode string) error

	// LoadRepeatMode retrieves the saved repeat mode ("off" if unset).
	LoadRepeatMode() (string, error)

	// SaveShuffle persists the shuffle flag.
	SaveShuffle(enabled bool) error

	// LoadShuffle retrieves the saved shuffle flag (false if unset).
	LoadShuffle() (bool, error)

	// Clear removes all saved preferences.
	Clear() error
}
