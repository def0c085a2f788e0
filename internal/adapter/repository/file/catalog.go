// Package file provides JSON-backed repository implementations.
// Each repository owns one file under the application data directory and
// writes it atomically (temp file then rename) so a crash mid-write can
// never corrupt the previous snapshot.
package file

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/kazu-1234/MusicPlayer/internal/domain"
	"github.com/kazu-1234/MusicPlayer/internal/ports"
)

// catalogEntry is the on-disk form of one song. Play state that cannot be
// recovered from the file itself (play count, origin folder) is persisted;
// the Exists flag is not, it is re-derived against storage on load.
type catalogEntry struct {
	URI             string `json:"uri"`
	DisplayName     string `json:"displayName"`
	Title           string `json:"title"`
	Artist          string `json:"artist"`
	Album           string `json:"album"`
	PlayCount       int    `json:"playCount"`
	TrackNumber     int    `json:"trackNumber"`
	SourceFolderURI string `json:"sourceFolderUri"`
}

// CatalogRepository persists the song catalog as a JSON array.
type CatalogRepository struct {
	logger *slog.Logger
	tree   ports.FolderTree
	path   string
	mu     sync.Mutex
}

// Ensure interface compliance at compile time
var _ ports.CatalogRepository = (*CatalogRepository)(nil)

// NewCatalogRepository creates a catalog repository writing to path.
// The tree is consulted on load to mark songs whose files have gone missing.
func NewCatalogRepository(logger *slog.Logger, tree ports.FolderTree, path string) *CatalogRepository {
	return &CatalogRepository{
		logger: logger,
		tree:   tree,
		path:   path,
	}
}

// Save writes the full catalog snapshot to disk.
func (r *CatalogRepository) Save(songs []domain.Song) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	entries := make([]catalogEntry, 0, len(songs))
	for _, song := range songs {
		entries = append(entries, catalogEntry{
			URI:             song.URI,
			DisplayName:     song.DisplayName,
			Title:           song.Title,
			Artist:          song.Artist,
			Album:           song.Album,
			PlayCount:       song.PlayCount,
			TrackNumber:     song.TrackNumber,
			SourceFolderURI: song.SourceFolder,
		})
	}

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return domain.NewRepositoryError("save", "catalog", "failed to encode catalog", err)
	}

	if err := writeAtomic(r.path, data); err != nil {
		return domain.NewRepositoryError("save", "catalog", "failed to write catalog file", err)
	}

	r.logger.Debug("catalog saved",
		slog.Int("songs", len(entries)),
		slog.String("path", r.path))
	return nil
}

// Load reads the catalog from disk. A missing file yields an empty catalog;
// a corrupted file is logged and also yields an empty catalog so the
// application can start and rebuild via a rescan.
func (r *CatalogRepository) Load() ([]domain.Song, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	data, err := os.ReadFile(r.path)
	if err != nil {
		if os.IsNotExist(err) {
			return []domain.Song{}, nil
		}
		return nil, domain.NewRepositoryError("load", "catalog", "failed to read catalog file", err)
	}

	var entries []catalogEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		r.logger.Warn("catalog file is corrupted, starting with an empty catalog",
			slog.String("path", r.path),
			slog.Any("error", err))
		return []domain.Song{}, nil
	}

	songs := make([]domain.Song, 0, len(entries))
	for _, entry := range entries {
		songs = append(songs, domain.Song{
			URI:          entry.URI,
			DisplayName:  entry.DisplayName,
			Title:        entry.Title,
			Artist:       entry.Artist,
			Album:        entry.Album,
			PlayCount:    entry.PlayCount,
			TrackNumber:  entry.TrackNumber,
			SourceFolder: entry.SourceFolderURI,
			Exists:       r.tree.Exists(entry.URI),
		})
	}

	r.logger.Debug("catalog loaded",
		slog.Int("songs", len(songs)),
		slog.String("path", r.path))
	return songs, nil
}

// writeAtomic writes data to path via a temp file in the same directory
// followed by a rename.
func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}

	return os.Rename(tmpName, path)
}
