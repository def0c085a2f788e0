package file

import (
	"encoding/json"
	"log/slog"
	"os"
	"sync"

	"github.com/kazu-1234/MusicPlayer/internal/domain"
	"github.com/kazu-1234/MusicPlayer/internal/ports"
)

// preferences is the on-disk form of all persisted settings.
type preferences struct {
	BasePath      string   `json:"basePath"`
	SourceFolders []string `json:"sourceFolders"`
	RepeatMode    string   `json:"repeatMode"`
	Shuffle       bool     `json:"shuffle"`
}

// PreferencesRepository persists user settings in a single JSON file.
// Every setter rewrites the whole file; the in-memory copy is the source of
// truth between writes.
type PreferencesRepository struct {
	logger *slog.Logger
	path   string

	mu     sync.Mutex
	prefs  preferences
	loaded bool
}

// Ensure interface compliance at compile time
var _ ports.PreferencesRepository = (*PreferencesRepository)(nil)

// NewPreferencesRepository creates a preferences repository writing to path.
func NewPreferencesRepository(logger *slog.Logger, path string) *PreferencesRepository {
	return &PreferencesRepository{
		logger: logger,
		path:   path,
	}
}

// load reads the file into memory once. Callers must hold mu.
func (r *PreferencesRepository) load() {
	if r.loaded {
		return
	}
	r.loaded = true

	data, err := os.ReadFile(r.path)
	if err != nil {
		if !os.IsNotExist(err) {
			r.logger.Warn("cannot read preferences file",
				slog.String("path", r.path),
				slog.Any("error", err))
		}
		return
	}

	if err := json.Unmarshal(data, &r.prefs); err != nil {
		r.logger.Warn("preferences file is corrupted, using defaults",
			slog.String("path", r.path),
			slog.Any("error", err))
		r.prefs = preferences{}
	}
}

// save writes the in-memory copy to disk. Callers must hold mu.
func (r *PreferencesRepository) save() error {
	data, err := json.MarshalIndent(r.prefs, "", "  ")
	if err != nil {
		return domain.NewRepositoryError("save", "preferences", "failed to encode preferences", err)
	}
	if err := writeAtomic(r.path, data); err != nil {
		return domain.NewRepositoryError("save", "preferences", "failed to write preferences file", err)
	}
	return nil
}

// SaveBasePath persists the playlist import base path.
func (r *PreferencesRepository) SaveBasePath(basePath string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.load()
	r.prefs.BasePath = basePath
	return r.save()
}

// LoadBasePath returns the persisted import base path, "" when unset.
func (r *PreferencesRepository) LoadBasePath() (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.load()
	return r.prefs.BasePath, nil
}

// SaveSourceFolders persists the set of scanned source folder roots.
func (r *PreferencesRepository) SaveSourceFolders(folders []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.load()
	r.prefs.SourceFolders = append([]string(nil), folders...)
	return r.save()
}

// LoadSourceFolders returns the persisted source folder roots.
func (r *PreferencesRepository) LoadSourceFolders() ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.load()
	return append([]string(nil), r.prefs.SourceFolders...), nil
}

// SaveRepeatMode persists the repeat mode.
func (r *PreferencesRepository) SaveRepeatMode(mode string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.load()
	r.prefs.RepeatMode = mode
	return r.save()
}

// LoadRepeatMode returns the persisted repeat mode, "off" when unset.
func (r *PreferencesRepository) LoadRepeatMode() (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.load()
	if r.prefs.RepeatMode == "" {
		return domain.RepeatOff.String(), nil
	}
	return r.prefs.RepeatMode, nil
}

// SaveShuffle persists the shuffle flag.
func (r *PreferencesRepository) SaveShuffle(enabled bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.load()
	r.prefs.Shuffle = enabled
	return r.save()
}

// LoadShuffle returns the persisted shuffle flag.
func (r *PreferencesRepository) LoadShuffle() (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.load()
	return r.prefs.Shuffle, nil
}

// Clear removes all persisted preferences.
func (r *PreferencesRepository) Clear() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.prefs = preferences{}
	r.loaded = true
	if err := os.Remove(r.path); err != nil && !os.IsNotExist(err) {
		return domain.NewRepositoryError("clear", "preferences", "failed to remove preferences file", err)
	}
	return nil
}
