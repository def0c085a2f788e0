// Package app provides application-level orchestration and dependency injection.
// This package wires together all components and manages the application lifecycle.
package app

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"

	"github.com/kazu-1234/MusicPlayer/internal/adapter/eventbus"
	"github.com/kazu-1234/MusicPlayer/internal/adapter/metadata/tag"
	"github.com/kazu-1234/MusicPlayer/internal/adapter/player/mock"
	"github.com/kazu-1234/MusicPlayer/internal/adapter/remote"
	"github.com/kazu-1234/MusicPlayer/internal/adapter/repository/file"
	"github.com/kazu-1234/MusicPlayer/internal/adapter/storage/local"
	"github.com/kazu-1234/MusicPlayer/internal/adapter/storage/watch"
	"github.com/kazu-1234/MusicPlayer/internal/domain"
	"github.com/kazu-1234/MusicPlayer/internal/logger"
	"github.com/kazu-1234/MusicPlayer/internal/ports"
	"github.com/kazu-1234/MusicPlayer/internal/service"
)

// Persisted file names inside Config.DataDir.
const (
	catalogFile     = "catalog.json"
	playlistsFile   = "playlists.json"
	preferencesFile = "preferences.json"
)

// Application is the root application structure that holds all dependencies.
// It follows the Dependency Injection pattern with constructor-based injection.
//
// The Application struct is responsible for:
// - Creating and wiring all dependencies
// - Managing the application lifecycle (startup, shutdown)
// - Providing a clean entry point for main.go
type Application struct {
	// Core dependencies
	logger *slog.Logger

	// Infrastructure
	eventBus ports.EventBus
	player   ports.Player
	tree     ports.FolderTree
	watcher  *watch.Watcher
	remote   ports.RemoteControl

	// Repositories
	catalogRepo     ports.CatalogRepository
	playlistRepo    ports.PlaylistRepository
	preferencesRepo ports.PreferencesRepository

	// Services
	libraryService    *service.LibraryService
	playlistService   *service.PlaylistService
	playbackService   *service.PlaybackService
	preferenceService *service.PreferenceService

	// Folder roots already handed to the watcher
	watched map[string]bool

	// In-flight rescans triggered by filesystem events
	rescans sync.WaitGroup

	mu       sync.Mutex
	shutdown bool
}

// Config holds application configuration.
type Config struct {
	// DataDir is the directory where catalog, playlist and preference
	// files are persisted
	DataDir string

	// LogLevel controls logging verbosity
	LogLevel slog.Level

	// WatchFolders enables filesystem watching of tracked source folders.
	// Changed folders are rescanned automatically.
	WatchFolders bool

	// Player allows injecting an alternative playback output (nil selects
	// the built-in simulated output)
	Player ports.Player
}

// DefaultConfig returns the default application configuration.
func DefaultConfig() Config {
	loggerCfg := logger.DefaultConfig()

	dataDir := "."
	if configDir, err := os.UserConfigDir(); err == nil {
		dataDir = filepath.Join(configDir, "musicplayer")
	}

	return Config{
		DataDir:      dataDir,
		LogLevel:     loggerCfg.Level,
		WatchFolders: true,
	}
}

// NewApplication creates a new application with all dependencies wired.
// This is the main dependency injection function.
func NewApplication(config Config) (*Application, error) {
	app := &Application{watched: make(map[string]bool)}

	// Step 1: Create logger
	loggerCfg := logger.Config{
		Level:  config.LogLevel,
		Format: "text",
	}
	app.logger = logger.NewLogger(loggerCfg)
	app.logger.Info("initializing application",
		slog.String("version", GetVersionInfo().FullString()),
		slog.String("data_dir", config.DataDir))

	// Step 2: Create an event bus
	syncBus := eventbus.NewSyncEventBus()
	syncBus.SetLogger(app.logger.With(slog.String("component", "eventbus")))
	app.eventBus = syncBus

	// Step 3: Create storage and playback adapters
	app.tree = local.NewTree(app.logger.With(slog.String("component", "storage")))

	metaReader := tag.NewReader(app.logger.With(slog.String("component", "metadata")))

	if config.Player != nil {
		app.player = config.Player
	} else {
		player := mock.NewPlayer()
		player.SetLogger(app.logger.With(slog.String("component", "player")))
		app.player = player
	}

	// Step 4: Create repositories
	app.catalogRepo = file.NewCatalogRepository(
		app.logger.With(slog.String("repository", "catalog")),
		app.tree,
		filepath.Join(config.DataDir, catalogFile),
	)
	app.playlistRepo = file.NewPlaylistRepository(
		app.logger.With(slog.String("repository", "playlist")),
		filepath.Join(config.DataDir, playlistsFile),
	)
	app.preferencesRepo = file.NewPreferencesRepository(
		app.logger.With(slog.String("repository", "preferences")),
		filepath.Join(config.DataDir, preferencesFile),
	)

	// Step 5: Create services (with dependency injection)
	app.libraryService = service.NewLibraryService(
		app.logger.With(slog.String("service", "library")),
		app.tree,
		metaReader,
		app.catalogRepo,
		app.preferencesRepo,
		app.eventBus,
	)

	app.playlistService = service.NewPlaylistService(
		app.logger.With(slog.String("service", "playlist")),
		app.libraryService,
		app.tree,
		app.playlistRepo,
		app.preferencesRepo,
		app.eventBus,
	)

	app.playbackService = service.NewPlaybackService(
		app.logger.With(slog.String("service", "playback")),
		app.player,
		app.libraryService,
		app.preferencesRepo,
		app.eventBus,
	)

	app.preferenceService = service.NewPreferenceService(
		app.logger.With(slog.String("service", "preference")),
		app.preferencesRepo,
	)

	// Step 6: Load saved state
	if err := app.loadSavedState(); err != nil {
		// Non-fatal - just log and continue
		app.logger.Warn("failed to load saved state", slog.Any("error", err))
	}

	// Step 7: Wire the remote display to playback state changes
	app.remote = remote.NewConsole(app.logger.With(slog.String("component", "remote")))
	app.eventBus.Subscribe(domain.EventStateChanged, func(event domain.Event) {
		if e, ok := event.(domain.StateChangedEvent); ok {
			app.remote.ShowState(e.State)
		}
	})

	// Step 8: Watch tracked source folders for changes
	if config.WatchFolders {
		if err := app.startWatcher(); err != nil {
			// Non-fatal - scanning still works without live updates
			app.logger.Warn("filesystem watching disabled", slog.Any("error", err))
		}
	}

	return app, nil
}

// loadSavedState restores the application state from the previous session.
// Catalog first, then playlists (which resolve against the catalog), then
// playback settings.
func (a *Application) loadSavedState() error {
	if err := a.libraryService.Load(); err != nil {
		return err
	}
	if err := a.playlistService.Load(); err != nil {
		return err
	}
	return a.playbackService.Load()
}

// startWatcher creates the filesystem watcher, registers all tracked source
// folders and wires change events to automatic rescans.
func (a *Application) startWatcher() error {
	watcher, err := watch.NewWatcher(
		a.logger.With(slog.String("component", "watcher")),
		a.eventBus,
	)
	if err != nil {
		return err
	}
	a.watcher = watcher

	for _, folder := range a.libraryService.Folders() {
		a.watchFolder(folder)
	}

	// Newly scanned folders become tracked, so keep the watcher in sync
	a.eventBus.Subscribe(domain.EventCatalogUpdated, func(domain.Event) {
		for _, folder := range a.libraryService.Folders() {
			a.watchFolder(folder)
		}
	})

	// A changed folder is rescanned off the watcher goroutine; overlapping
	// changes collapse into the scan-in-progress error and are dropped
	a.eventBus.Subscribe(domain.EventFolderChanged, func(event domain.Event) {
		e, ok := event.(domain.FolderChangedEvent)
		if !ok {
			return
		}
		folder := e.Folder
		a.rescans.Add(1)
		go func() {
			defer a.rescans.Done()
			if _, err := a.libraryService.Rescan(folder); err != nil &&
				!errors.Is(err, domain.ErrScanInProgress) {
				a.logger.Warn("automatic rescan failed",
					slog.String("folder", folder),
					slog.Any("error", err))
			}
		}()
	})

	return nil
}

func (a *Application) watchFolder(folder string) {
	a.mu.Lock()
	seen := a.watched[folder]
	if !seen {
		a.watched[folder] = true
	}
	a.mu.Unlock()

	if seen || a.watcher == nil {
		return
	}
	if err := a.watcher.Add(folder); err != nil {
		a.logger.Warn("cannot watch source folder",
			slog.String("folder", folder),
			slog.Any("error", err))
	}
}

// GetServices returns the application services, primarily for testing.
func (a *Application) GetServices() (*service.PlaybackService, *service.PlaylistService, *service.LibraryService, *service.PreferenceService) {
	return a.playbackService, a.playlistService, a.libraryService, a.preferenceService
}

// GetEventBus returns the event bus, primarily for testing.
func (a *Application) GetEventBus() ports.EventBus {
	return a.eventBus
}

// Run blocks until the process receives an interrupt or termination signal.
// This is called from main.go after the application is created.
func (a *Application) Run() error {
	a.logger.Info("MusicPlayer started")
	a.logger.Info("all services initialized successfully")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()
	return nil
}

// Shutdown gracefully shuts down the application.
// This should be called via deferring in main.go.
func (a *Application) Shutdown() error {
	a.mu.Lock()
	if a.shutdown {
		a.mu.Unlock()
		return nil
	}
	a.shutdown = true
	a.mu.Unlock()

	a.logger.Info("shutting down application")

	// Stop the watcher first so no new rescans start, then drain in-flight ones
	if a.watcher != nil {
		if err := a.watcher.Close(); err != nil {
			a.logger.Warn("failed to close watcher", slog.Any("error", err))
		}
	}
	a.rescans.Wait()

	// Shutdown services (in reverse order of creation)
	if a.preferenceService != nil {
		if err := a.preferenceService.Shutdown(); err != nil {
			a.logger.Warn("failed to shutdown preference service", slog.Any("error", err))
		}
	}

	if a.playbackService != nil {
		if err := a.playbackService.Shutdown(); err != nil {
			a.logger.Warn("failed to shutdown playback service", slog.Any("error", err))
		}
	}

	if a.libraryService != nil {
		if err := a.libraryService.Shutdown(); err != nil {
			a.logger.Warn("failed to shutdown library service", slog.Any("error", err))
		}
	}

	if a.remote != nil {
		if err := a.remote.Close(); err != nil {
			a.logger.Warn("failed to close remote display", slog.Any("error", err))
		}
	}

	if a.eventBus != nil {
		if err := a.eventBus.Close(); err != nil {
			a.logger.Warn("failed to close event bus", slog.Any("error", err))
		}
	}

	a.logger.Info("application shutdown complete")
	return nil
}
