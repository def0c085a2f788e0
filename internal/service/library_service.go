// Package service provides business logic for the music player application.
package service

import (
	"context"
	"errors"
	"log/slog"
	"path"
	"strings"
	"sync"
	"unicode"

	"github.com/google/uuid"

	"github.com/kazu-1234/MusicPlayer/internal/domain"
	"github.com/kazu-1234/MusicPlayer/internal/ports"
)

// Fallback values used when a file carries no usable tags.
const (
	UnknownArtist = "Unknown Artist"
	UnknownAlbum  = "Unknown Album"
)

// LibraryService owns the song catalog: scanning source folders, merging scan
// results, tracking play counts and persisting the catalog across restarts.
// All operations are thread-safe via sync.RWMutex; a reader never observes a
// partially merged catalog.
type LibraryService struct {
	// Dependencies (injected)
	logger *slog.Logger
	tree   ports.FolderTree
	meta   ports.MetadataReader
	repo   ports.CatalogRepository
	prefs  ports.PreferencesRepository
	bus    ports.EventBus

	// State
	songs         []domain.Song
	byURI         map[string]int
	folders       []string
	scanning      bool
	cancelScan    context.CancelFunc
	supportedExts []string

	// Concurrency control
	mu      sync.RWMutex
	persist sync.WaitGroup
}

// NewLibraryService creates a new library service.
func NewLibraryService(
	logger *slog.Logger,
	tree ports.FolderTree,
	meta ports.MetadataReader,
	repo ports.CatalogRepository,
	prefs ports.PreferencesRepository,
	bus ports.EventBus,
) *LibraryService {
	return &LibraryService{
		logger: logger,
		tree:   tree,
		meta:   meta,
		repo:   repo,
		prefs:  prefs,
		bus:    bus,
		byURI:  make(map[string]int),
		supportedExts: []string{
			".mp3", ".m4a", ".flac", ".wav", ".aac", ".ogg",
		},
	}
}

// Load restores the persisted catalog and the tracked source folder roots.
// Called once at startup, before any other operation.
func (s *LibraryService) Load() error {
	songs, err := s.repo.Load()
	if err != nil {
		return domain.NewServiceError("LibraryService", "Load", "failed to load catalog", err)
	}

	folders, err := s.prefs.LoadSourceFolders()
	if err != nil {
		return domain.NewServiceError("LibraryService", "Load", "failed to load source folders", err)
	}

	s.mu.Lock()
	s.replaceCatalog(songs)
	s.folders = folders
	s.mu.Unlock()

	s.logger.Info("catalog restored",
		slog.Int("songs", len(songs)),
		slog.Int("folders", len(folders)))
	return nil
}

// Scan scans a source folder recursively, merges the results into the catalog
// and persists the new catalog. The folder becomes tracked; scanning it again
// replaces its previous contribution, so files deleted from disk drop out of
// the catalog while play counts of surviving songs are carried over.
//
// Only one scan may run at a time; a concurrent call returns
// domain.ErrScanInProgress. Progress events are published throughout.
func (s *LibraryService) Scan(folder string) ([]domain.Song, error) {
	s.mu.Lock()
	if s.scanning {
		s.mu.Unlock()
		return nil, domain.ErrScanInProgress
	}
	s.scanning = true

	// Create a cancellable context
	ctx, cancel := context.WithCancel(context.Background())
	s.cancelScan = cancel
	s.mu.Unlock()

	// Ensure cleanup
	defer func() {
		s.mu.Lock()
		s.scanning = false
		s.cancelScan = nil
		s.mu.Unlock()
		cancel()
	}()

	scanID := uuid.NewString()
	s.bus.Publish(domain.NewScanStartedEvent(scanID, []string{folder}))

	found, err := s.scanFolder(ctx, scanID, folder)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.mergeResults(folder, found)
	s.trackFolder(folder)
	snapshot := s.snapshotLocked()
	folders := append([]string(nil), s.folders...)
	songCount := len(s.songs)
	s.mu.Unlock()

	if err := s.repo.Save(snapshot); err != nil {
		return nil, domain.NewServiceError("LibraryService", "Scan", "failed to persist catalog", err)
	}
	if err := s.prefs.SaveSourceFolders(folders); err != nil {
		s.logger.Warn("cannot persist source folders", slog.Any("error", err))
	}

	s.bus.Publish(domain.NewScanCompletedEvent(scanID, found))
	s.bus.Publish(domain.NewCatalogUpdatedEvent(songCount))

	s.logger.Info("scan completed",
		slog.String("scan_id", scanID),
		slog.String("folder", folder),
		slog.Int("found", len(found)),
		slog.Int("catalog", songCount))
	return found, nil
}

// Rescan re-scans an already tracked source folder.
// Returns domain.ErrFolderNotTracked when the folder was never scanned.
func (s *LibraryService) Rescan(folder string) ([]domain.Song, error) {
	s.mu.RLock()
	tracked := s.isTrackedLocked(folder)
	s.mu.RUnlock()

	if !tracked {
		return nil, domain.ErrFolderNotTracked
	}
	return s.Scan(folder)
}

// RemoveFolder removes a tracked source folder and every song that came from
// it, then persists the reduced catalog. Songs from other folders keep their
// play counts untouched.
func (s *LibraryService) RemoveFolder(folder string) error {
	s.mu.Lock()
	if !s.isTrackedLocked(folder) {
		s.mu.Unlock()
		return domain.ErrFolderNotTracked
	}

	kept := make([]domain.Song, 0, len(s.songs))
	for _, song := range s.songs {
		if song.SourceFolder != folder {
			kept = append(kept, song)
		}
	}
	removed := len(s.songs) - len(kept)
	s.replaceCatalog(kept)

	folders := make([]string, 0, len(s.folders))
	for _, f := range s.folders {
		if f != folder {
			folders = append(folders, f)
		}
	}
	s.folders = folders

	snapshot := s.snapshotLocked()
	songCount := len(s.songs)
	s.mu.Unlock()

	if err := s.repo.Save(snapshot); err != nil {
		return domain.NewServiceError("LibraryService", "RemoveFolder", "failed to persist catalog", err)
	}
	if err := s.prefs.SaveSourceFolders(folders); err != nil {
		s.logger.Warn("cannot persist source folders", slog.Any("error", err))
	}

	s.bus.Publish(domain.NewCatalogUpdatedEvent(songCount))

	s.logger.Info("source folder removed",
		slog.String("folder", folder),
		slog.Int("removed", removed))
	return nil
}

// Songs returns a snapshot of the current catalog.
func (s *LibraryService) Songs() []domain.Song {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

// Song returns the catalog entry for the given URI.
func (s *LibraryService) Song(uri string) (domain.Song, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	idx, ok := s.byURI[uri]
	if !ok {
		return domain.Song{}, false
	}
	return s.songs[idx], true
}

// Folders returns the tracked source folder roots.
func (s *LibraryService) Folders() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.folders...)
}

// IncrementPlayCount bumps the play count of a song and persists the catalog
// in the background. Returns domain.ErrSongNotFound for unknown URIs.
func (s *LibraryService) IncrementPlayCount(uri string) error {
	s.mu.Lock()
	idx, ok := s.byURI[uri]
	if !ok {
		s.mu.Unlock()
		return domain.ErrSongNotFound
	}
	s.songs[idx].PlayCount++
	count := s.songs[idx].PlayCount
	snapshot := s.snapshotLocked()
	s.mu.Unlock()

	// The write happens off the playback path; failures are logged, the
	// in-memory count stays authoritative until the next successful save.
	s.persist.Add(1)
	go func() {
		defer s.persist.Done()
		if err := s.repo.Save(snapshot); err != nil {
			s.logger.Warn("cannot persist play count",
				slog.String("uri", uri),
				slog.Any("error", err))
		}
	}()

	s.logger.Debug("play count incremented",
		slog.String("uri", uri),
		slog.Int("count", count))
	return nil
}

// MarkMissing flags a song whose file has become unreachable.
// The entry stays in the catalog so playlists keep their shape; playback
// skips it until a rescan either restores or removes it.
func (s *LibraryService) MarkMissing(uri string) error {
	s.mu.Lock()
	idx, ok := s.byURI[uri]
	if !ok {
		s.mu.Unlock()
		return domain.ErrSongNotFound
	}
	s.songs[idx].Exists = false
	songCount := len(s.songs)
	s.mu.Unlock()

	s.bus.Publish(domain.NewCatalogUpdatedEvent(songCount))
	return nil
}

// IsScanning returns true if a scan is currently in progress.
func (s *LibraryService) IsScanning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.scanning
}

// CancelScan cancels the currently running scan operation.
func (s *LibraryService) CancelScan() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.scanning {
		return domain.NewServiceError("LibraryService", "CancelScan", "no scan in progress", nil)
	}
	if s.cancelScan != nil {
		s.cancelScan()
	}
	return nil
}

// Shutdown cancels any running scan and waits for background persistence.
func (s *LibraryService) Shutdown() error {
	s.mu.Lock()
	if s.scanning && s.cancelScan != nil {
		s.cancelScan()
	}
	s.mu.Unlock()

	s.persist.Wait()
	return nil
}

// scanFolder walks one folder root and extracts a song per qualifying file.
func (s *LibraryService) scanFolder(ctx context.Context, scanID, folder string) ([]domain.Song, error) {
	// Pre-count for determinate progress; a zero count (root unreadable or
	// genuinely empty) falls back to indeterminate reporting.
	total := s.tree.CountFiles(folder, func(entry ports.TreeEntry) bool {
		return s.qualifies(entry)
	})
	if total == 0 {
		total = -1
	}

	found := make([]domain.Song, 0)
	scanned := 0

	err := s.tree.Walk(folder, func(entry ports.TreeEntry) error {
		select {
		case <-ctx.Done():
			return context.Canceled
		default:
		}

		if entry.Dir || !s.qualifies(entry) {
			return nil
		}

		scanned++
		found = append(found, s.buildSong(entry, folder))

		s.bus.Publish(domain.NewScanProgressEvent(scanID, domain.ScanProgress{
			CurrentFile:  entry.Name,
			FilesScanned: scanned,
			TotalFiles:   total,
			SongsFound:   len(found),
		}))
		return nil
	})
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil, context.Canceled
		}
		return nil, domain.NewServiceError("LibraryService", "Scan", "folder walk failed", err)
	}

	return found, nil
}

// qualifies reports whether a tree entry is an audio file worth cataloging:
// a supported extension, or an audio MIME type when the extension is unknown.
func (s *LibraryService) qualifies(entry ports.TreeEntry) bool {
	if entry.Dir {
		return false
	}

	ext := strings.ToLower(path.Ext(entry.Name))
	for _, supported := range s.supportedExts {
		if ext == supported {
			return true
		}
	}

	return strings.HasPrefix(entry.MIME, "audio/") || entry.MIME == "application/ogg"
}

// buildSong assembles a catalog entry for one file, reading its tags when the
// stream can be opened and falling back to name-derived values otherwise.
func (s *LibraryService) buildSong(entry ports.TreeEntry, folder string) domain.Song {
	song := domain.Song{
		URI:          entry.URI,
		DisplayName:  entry.Name,
		Title:        titleFromName(entry.Name),
		Artist:       UnknownArtist,
		Album:        UnknownAlbum,
		TrackNumber:  trackNumberFromName(entry.Name),
		SourceFolder: folder,
		Exists:       true,
	}

	stream, err := s.tree.Open(entry.URI)
	if err != nil {
		s.logger.Debug("cannot open file for tag reading",
			slog.String("uri", entry.URI),
			slog.Any("error", err))
		return song
	}
	defer stream.Close()

	meta, ok := s.meta.Extract(stream)
	if !ok {
		return song
	}

	if meta.Title != "" {
		song.Title = meta.Title
	}
	if meta.Artist != "" {
		song.Artist = meta.Artist
	}
	if meta.Album != "" {
		song.Album = meta.Album
	}
	if meta.TrackNumber > 0 {
		song.TrackNumber = meta.TrackNumber
	}
	return song
}

// mergeResults replaces folder's previous contribution with found, keyed by
// URI with the new record winning. Play counts of surviving songs carry over.
// Callers must hold mu.
func (s *LibraryService) mergeResults(folder string, found []domain.Song) {
	playCounts := make(map[string]int, len(s.songs))
	for _, song := range s.songs {
		playCounts[song.URI] = song.PlayCount
	}

	newURIs := make(map[string]struct{}, len(found))
	for _, song := range found {
		newURIs[song.URI] = struct{}{}
	}

	merged := make([]domain.Song, 0, len(s.songs)+len(found))
	for _, song := range s.songs {
		if song.SourceFolder == folder {
			continue
		}
		if _, replaced := newURIs[song.URI]; replaced {
			continue
		}
		merged = append(merged, song)
	}
	for _, song := range found {
		song.PlayCount = playCounts[song.URI]
		merged = append(merged, song)
	}

	s.replaceCatalog(merged)
}

// trackFolder records folder as a tracked root. Callers must hold mu.
func (s *LibraryService) trackFolder(folder string) {
	if s.isTrackedLocked(folder) {
		return
	}
	s.folders = append(s.folders, folder)
}

// isTrackedLocked reports whether folder is a tracked root. Callers must hold mu.
func (s *LibraryService) isTrackedLocked(folder string) bool {
	for _, f := range s.folders {
		if f == folder {
			return true
		}
	}
	return false
}

// replaceCatalog swaps the catalog contents and rebuilds the URI index.
// Callers must hold mu.
func (s *LibraryService) replaceCatalog(songs []domain.Song) {
	s.songs = songs
	s.byURI = make(map[string]int, len(songs))
	for i, song := range songs {
		s.byURI[song.URI] = i
	}
}

// snapshotLocked copies the catalog. Callers must hold mu (read or write).
func (s *LibraryService) snapshotLocked() []domain.Song {
	snapshot := make([]domain.Song, len(s.songs))
	copy(snapshot, s.songs)
	return snapshot
}

// titleFromName derives a display title from a file name by trimming the
// extension.
func titleFromName(name string) string {
	ext := path.Ext(name)
	return strings.TrimSuffix(name, ext)
}

// trackNumberFromName parses a leading track number from a file name, as in
// "07 - Song.mp3". Returns 0 when no leading digits are present.
func trackNumberFromName(name string) int {
	n := 0
	seen := false
	for _, r := range name {
		if !unicode.IsDigit(r) {
			break
		}
		seen = true
		n = n*10 + int(r-'0')
		if n > 9999 {
			return 0
		}
	}
	if !seen {
		return 0
	}
	return n
}

// Verify that LibraryService implements the expected interface patterns
var _ interface {
	Load() error
	Scan(string) ([]domain.Song, error)
	Rescan(string) ([]domain.Song, error)
	RemoveFolder(string) error
	Songs() []domain.Song
	Song(string) (domain.Song, bool)
	Folders() []string
	IncrementPlayCount(string) error
	MarkMissing(string) error
	IsScanning() bool
	CancelScan() error
	Shutdown() error
} = (*LibraryService)(nil)
