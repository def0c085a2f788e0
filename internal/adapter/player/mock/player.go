// Package mock provides a mock implementation of the Player interface.
// This is used for testing services and for headless runs without the
// platform media stack.
package mock

import (
	"errors"
	"log/slog"
	"sync"

	"github.com/kazu-1234/MusicPlayer/internal/domain"
	"github.com/kazu-1234/MusicPlayer/internal/ports"
)

// Player is a mock implementation of the Player interface.
// It simulates playback resources in memory without producing audio.
//
// Thread-safety: This implementation is thread-safe.
type Player struct {
	logger *slog.Logger

	// resources holds the live playback resources keyed by handle
	resources  map[domain.PlayerHandle]*resource
	nextHandle domain.PlayerHandle
	onComplete func(handle domain.PlayerHandle)
	mu         sync.RWMutex

	// Behavior configuration (for testing error scenarios)
	failCreate map[string]bool
	durationMS int
}

// a resource represents a live mock playback resource.
type resource struct {
	uri        string
	positionMS int
	durationMS int
	playing    bool
}

// NewPlayer creates a new mock player.
func NewPlayer() *Player {
	return &Player{
		resources:  make(map[domain.PlayerHandle]*resource),
		nextHandle: 1,
		failCreate: make(map[string]bool),
		durationMS: 180_000, // 3 minutes unless configured otherwise
	}
}

// SetLogger sets the logger for this player.
func (m *Player) SetLogger(logger *slog.Logger) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.logger = logger
}

// SetFailCreate configures Create to fail for the given URI (for testing).
func (m *Player) SetFailCreate(uri string, fail bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failCreate[uri] = fail
}

// SetDurationMS configures the duration reported for created resources.
func (m *Player) SetDurationMS(durationMS int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.durationMS = durationMS
}

// Create acquires a mock playback resource for the given URI.
func (m *Player) Create(uri string) (domain.PlayerHandle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.failCreate[uri] {
		return domain.InvalidPlayerHandle, domain.NewPlayerError("create", uri, errors.New("mock create failure"))
	}

	handle := m.nextHandle
	m.nextHandle++
	m.resources[handle] = &resource{
		uri:        uri,
		durationMS: m.durationMS,
	}

	if m.logger != nil {
		m.logger.Debug("mock resource created",
			slog.String("uri", uri),
			slog.Int64("handle", int64(handle)))
	}

	return handle, nil
}

// Start begins or resumes playback of the resource.
func (m *Player) Start(handle domain.PlayerHandle) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	res, ok := m.resources[handle]
	if !ok {
		return domain.NewPlayerError("start", "", errors.New("unknown handle"))
	}

	res.playing = true
	return nil
}

// Pause pauses playback, preserving the position.
func (m *Player) Pause(handle domain.PlayerHandle) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	res, ok := m.resources[handle]
	if !ok {
		return domain.NewPlayerError("pause", "", errors.New("unknown handle"))
	}

	res.playing = false
	return nil
}

// Seek sets the playback position, clamping out-of-range values.
func (m *Player) Seek(handle domain.PlayerHandle, positionMS int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	res, ok := m.resources[handle]
	if !ok {
		return domain.NewPlayerError("seek", "", errors.New("unknown handle"))
	}

	if positionMS < 0 {
		positionMS = 0
	}
	if positionMS > res.durationMS {
		positionMS = res.durationMS
	}
	res.positionMS = positionMS
	return nil
}

// PositionMS returns the current playback position.
func (m *Player) PositionMS(handle domain.PlayerHandle) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	res, ok := m.resources[handle]
	if !ok {
		return 0, domain.NewPlayerError("position", "", errors.New("unknown handle"))
	}
	return res.positionMS, nil
}

// DurationMS returns the resource duration.
func (m *Player) DurationMS(handle domain.PlayerHandle) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	res, ok := m.resources[handle]
	if !ok {
		return 0, domain.NewPlayerError("duration", "", errors.New("unknown handle"))
	}
	return res.durationMS, nil
}

// Release frees the playback resource.
func (m *Player) Release(handle domain.PlayerHandle) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.resources[handle]; !ok {
		return domain.NewPlayerError("release", "", errors.New("unknown handle"))
	}

	delete(m.resources, handle)
	return nil
}

// SetCompletionHandler registers the completion callback.
func (m *Player) SetCompletionHandler(fn func(handle domain.PlayerHandle)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onComplete = fn
}

// CompleteCurrent simulates the natural end of the given resource (test hook).
// The completion handler is invoked on the caller's goroutine, mirroring the
// platform player delivering its completion callback.
func (m *Player) CompleteCurrent(handle domain.PlayerHandle) {
	m.mu.Lock()
	res, ok := m.resources[handle]
	if ok {
		res.playing = false
		res.positionMS = res.durationMS
	}
	fn := m.onComplete
	m.mu.Unlock()

	if ok && fn != nil {
		fn(handle)
	}
}

// SetPositionMS sets the current position directly (test hook).
func (m *Player) SetPositionMS(handle domain.PlayerHandle, positionMS int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if res, ok := m.resources[handle]; ok {
		res.positionMS = positionMS
	}
}

// IsPlaying reports whether the resource is currently playing (test hook).
func (m *Player) IsPlaying(handle domain.PlayerHandle) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	res, ok := m.resources[handle]
	return ok && res.playing
}

// LiveResources returns the number of live resources (test hook).
// Exactly one resource should be live while a song is active.
func (m *Player) LiveResources() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.resources)
}

// LiveHandle returns the most recently created live handle (test hook), or
// domain.InvalidPlayerHandle when nothing is live.
func (m *Player) LiveHandle() domain.PlayerHandle {
	m.mu.RLock()
	defer m.mu.RUnlock()

	live := domain.InvalidPlayerHandle
	for handle := range m.resources {
		if handle > live {
			live = handle
		}
	}
	return live
}

// URIOf returns the URI behind a live handle (test hook).
func (m *Player) URIOf(handle domain.PlayerHandle) string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if res, ok := m.resources[handle]; ok {
		return res.uri
	}
	return ""
}

// Verify that Player implements the Player interface
var _ ports.Player = (*Player)(nil)
