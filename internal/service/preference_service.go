package service

import (
	"log/slog"
	"sync"

	"github.com/kazu-1234/MusicPlayer/internal/domain"
	"github.com/kazu-1234/MusicPlayer/internal/ports"
)

// PreferenceService manages application preferences and settings.
// All operations are thread-safe via sync.RWMutex.
type PreferenceService struct {
	// Dependencies (injected)
	logger     *slog.Logger
	repository ports.PreferencesRepository

	// Cached preferences (for performance)
	basePath      string
	sourceFolders []string
	repeatMode    domain.RepeatMode
	shuffle       bool
	cacheValid    bool

	// Concurrency control
	mu sync.RWMutex
}

// NewPreferenceService creates a new preference service.
func NewPreferenceService(
	logger *slog.Logger,
	repository ports.PreferencesRepository,
) *PreferenceService {
	service := &PreferenceService{
		logger:     logger,
		repository: repository,
		repeatMode: domain.RepeatOff,
	}

	logger.Debug("preference service initialized")

	// Load preferences from the repository
	service.loadPreferences()

	return service
}

// loadPreferences loads all preferences from repository into cache.
func (s *PreferenceService) loadPreferences() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if basePath, err := s.repository.LoadBasePath(); err == nil {
		s.basePath = basePath
	}
	if folders, err := s.repository.LoadSourceFolders(); err == nil {
		s.sourceFolders = folders
	}
	if mode, err := s.repository.LoadRepeatMode(); err == nil {
		s.repeatMode = domain.ParseRepeatMode(mode)
	}
	if shuffle, err := s.repository.LoadShuffle(); err == nil {
		s.shuffle = shuffle
	}

	s.cacheValid = true
}

// GetBasePath returns the saved playlist import base path.
func (s *PreferenceService) GetBasePath() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.basePath
}

// SetBasePath saves the playlist import base path.
func (s *PreferenceService) SetBasePath(path string) error {
	s.mu.Lock()
	s.basePath = path
	s.mu.Unlock()

	return s.repository.SaveBasePath(path)
}

// GetSourceFolders returns the tracked source folder roots.
func (s *PreferenceService) GetSourceFolders() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.sourceFolders...)
}

// SetSourceFolders saves the tracked source folder roots.
func (s *PreferenceService) SetSourceFolders(folders []string) error {
	s.mu.Lock()
	s.sourceFolders = append([]string(nil), folders...)
	s.mu.Unlock()

	return s.repository.SaveSourceFolders(folders)
}

// GetRepeatMode returns the saved repeat mode.
func (s *PreferenceService) GetRepeatMode() domain.RepeatMode {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.repeatMode
}

// SetRepeatMode saves the repeat mode.
func (s *PreferenceService) SetRepeatMode(mode domain.RepeatMode) error {
	s.mu.Lock()
	s.repeatMode = mode
	s.mu.Unlock()

	return s.repository.SaveRepeatMode(mode.String())
}

// GetShuffle returns the saved shuffle flag.
func (s *PreferenceService) GetShuffle() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.shuffle
}

// SetShuffle saves the shuffle flag.
func (s *PreferenceService) SetShuffle(enabled bool) error {
	s.mu.Lock()
	s.shuffle = enabled
	s.mu.Unlock()

	return s.repository.SaveShuffle(enabled)
}

// ResetToDefaults clears all saved preferences and resets the cache.
func (s *PreferenceService) ResetToDefaults() error {
	s.mu.Lock()
	s.basePath = ""
	s.sourceFolders = nil
	s.repeatMode = domain.RepeatOff
	s.shuffle = false
	s.mu.Unlock()

	return s.repository.Clear()
}

// GetAllPreferences returns all preferences as a map.
func (s *PreferenceService) GetAllPreferences() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return map[string]interface{}{
		"base_path":      s.basePath,
		"source_folders": append([]string(nil), s.sourceFolders...),
		"repeat_mode":    s.repeatMode.String(),
		"shuffle":        s.shuffle,
	}
}

// Shutdown cleans up resources.
func (s *PreferenceService) Shutdown() error {
	// No cleanup needed for preference service
	return nil
}

// Verify that PreferenceService implements the expected interface patterns
var _ interface {
	GetBasePath() string
	SetBasePath(string) error
	GetSourceFolders() []string
	SetSourceFolders([]string) error
	GetRepeatMode() domain.RepeatMode
	SetRepeatMode(domain.RepeatMode) error
	GetShuffle() bool
	SetShuffle(bool) error
	ResetToDefaults() error
	GetAllPreferences() map[string]interface{}
	Shutdown() error
} = (*PreferenceService)(nil)
