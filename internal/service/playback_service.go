package service

import (
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"github.com/kazu-1234/MusicPlayer/internal/domain"
	"github.com/kazu-1234/MusicPlayer/internal/ports"
)

const (
	// controlDebounce collapses duplicate remote-control deliveries into a
	// single logical transition.
	controlDebounce = 300 * time.Millisecond

	// previousRestartThresholdMS: past this position, Previous restarts the
	// current track instead of stepping back.
	previousRestartThresholdMS = 3000
)

// PlayCounter is the catalog write-side the playback service needs.
// *LibraryService satisfies it.
type PlayCounter interface {
	IncrementPlayCount(uri string) error
	MarkMissing(uri string) error
}

// PlaybackService owns the play queue and the Idle/Playing/Paused state
// machine. Completion callbacks, user calls and remote-control events all
// funnel through one mutex, so every transition has exactly one winner.
// Exactly one player resource is live at a time.
//
// Event handlers run synchronously on the mutating goroutine and must not
// call back into this service.
type PlaybackService struct {
	// Dependencies (injected)
	logger  *slog.Logger
	player  ports.Player
	counter PlayCounter
	prefs   ports.PreferencesRepository
	bus     ports.EventBus

	// Queue state
	queue    []domain.Song
	original []domain.Song
	current  int
	status   domain.PlaybackStatus
	shuffle  bool
	repeat   domain.RepeatMode
	handle   domain.PlayerHandle

	// Position polling
	pollInterval time.Duration
	pollRunning  bool
	stopPoll     chan struct{}
	pollWg       sync.WaitGroup

	// Remote-control debounce
	lastControl time.Time

	rng *rand.Rand
	mu  sync.Mutex
}

// NewPlaybackService creates a new playback service.
func NewPlaybackService(
	logger *slog.Logger,
	player ports.Player,
	counter PlayCounter,
	prefs ports.PreferencesRepository,
	bus ports.EventBus,
) *PlaybackService {
	s := &PlaybackService{
		logger:       logger,
		player:       player,
		counter:      counter,
		prefs:        prefs,
		bus:          bus,
		current:      -1,
		status:       domain.StatusIdle,
		handle:       domain.InvalidPlayerHandle,
		pollInterval: 200 * time.Millisecond,
		stopPoll:     make(chan struct{}),
		rng:          rand.New(rand.NewSource(time.Now().UnixNano())),
	}

	// Completion fires on the player's goroutine; re-serialize it here
	player.SetCompletionHandler(func(handle domain.PlayerHandle) {
		s.onCompletion(handle)
	})

	return s
}

// Load restores persisted repeat and shuffle settings.
func (s *PlaybackService) Load() error {
	mode, err := s.prefs.LoadRepeatMode()
	if err != nil {
		return domain.NewServiceError("PlaybackService", "Load", "failed to load repeat mode", err)
	}
	shuffle, err := s.prefs.LoadShuffle()
	if err != nil {
		return domain.NewServiceError("PlaybackService", "Load", "failed to load shuffle flag", err)
	}

	s.mu.Lock()
	s.repeat = domain.ParseRepeatMode(mode)
	s.shuffle = shuffle
	s.mu.Unlock()
	return nil
}

// PlayAt makes queue the active queue and starts playback at index.
// An out-of-range index fails with ErrInvalidIndex (ErrQueueEmpty for an
// empty queue); a song flagged missing fails with ErrSongUnavailable and
// leaves the current state untouched.
func (s *PlaybackService) PlayAt(queue []domain.Song, index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(queue) == 0 {
		return domain.ErrQueueEmpty
	}
	if index < 0 || index >= len(queue) {
		return domain.ErrInvalidIndex
	}

	newQueue := make([]domain.Song, len(queue))
	copy(newQueue, queue)

	if err := s.startSongLocked(newQueue, index); err != nil {
		return err
	}

	// PlayAt establishes the queue as-is, so it is also the original ordering
	s.original = make([]domain.Song, len(queue))
	copy(s.original, queue)

	s.bus.Publish(domain.NewQueueChangedEvent(s.snapshotQueueLocked(), s.current))
	return nil
}

// PlayFromContext starts playing song out of the list it was chosen from.
// The list becomes the original ordering; with shuffle enabled the active
// queue is rebuilt as the chosen song followed by a random permutation of
// the rest.
func (s *PlaybackService) PlayFromContext(song domain.Song, list []domain.Song) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(list) == 0 {
		return domain.ErrQueueEmpty
	}

	pos := -1
	for i, candidate := range list {
		if candidate.URI == song.URI {
			pos = i
			break
		}
	}
	if pos == -1 {
		return domain.ErrSongNotFound
	}

	original := make([]domain.Song, len(list))
	copy(original, list)

	var queue []domain.Song
	index := pos
	if s.shuffle {
		queue = s.shuffledQueueLocked(original, pos)
		index = 0
	} else {
		queue = make([]domain.Song, len(list))
		copy(queue, list)
	}

	if err := s.startSongLocked(queue, index); err != nil {
		return err
	}

	s.original = original
	s.bus.Publish(domain.NewQueueChangedEvent(s.snapshotQueueLocked(), s.current))
	return nil
}

// Next advances to the next song. Repeat-one still advances here (restart in
// place only happens on natural completion); repeat-all wraps past the end;
// with repeat off the call is a no-op at the end of the queue.
func (s *PlaybackService) Next() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.nextLocked()
}

// Previous steps back one song. Three seconds into a track it restarts the
// current track instead; at the start of the queue it wraps to the end only
// under repeat-all, otherwise it is a no-op.
func (s *PlaybackService) Previous() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == -1 || len(s.queue) == 0 {
		return domain.ErrNoSongLoaded
	}

	if s.handle != domain.InvalidPlayerHandle {
		if pos, err := s.player.PositionMS(s.handle); err == nil && pos > previousRestartThresholdMS {
			return s.player.Seek(s.handle, 0)
		}
	}

	target := s.current - 1
	if target < 0 {
		if s.repeat != domain.RepeatAll {
			return nil
		}
		target = len(s.queue) - 1
	}
	return s.startSongLocked(s.queue, target)
}

// Pause pauses the current song.
func (s *PlaybackService) Pause() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.handle == domain.InvalidPlayerHandle {
		return domain.ErrNoSongLoaded
	}
	if s.status != domain.StatusPlaying {
		return nil
	}

	position, err := s.player.PositionMS(s.handle)
	if err != nil {
		position = 0
	}

	if err := s.player.Pause(s.handle); err != nil {
		return domain.NewPlayerError("pause", s.queue[s.current].URI, err)
	}

	s.status = domain.StatusPaused
	s.bus.Publish(domain.NewSongPausedEvent(s.queue[s.current], position))
	s.bus.Publish(domain.NewStateChangedEvent(s.stateLocked()))
	return nil
}

// Resume resumes a paused song.
func (s *PlaybackService) Resume() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.handle == domain.InvalidPlayerHandle {
		return domain.ErrNoSongLoaded
	}
	if s.status == domain.StatusPlaying {
		return nil
	}

	if err := s.player.Start(s.handle); err != nil {
		return domain.NewPlayerError("start", s.queue[s.current].URI, err)
	}

	s.status = domain.StatusPlaying
	s.bus.Publish(domain.NewStateChangedEvent(s.stateLocked()))
	return nil
}

// Stop stops playback and releases the player resource. The queue survives;
// the current song and index are cleared.
func (s *PlaybackService) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stopLocked()
}

// Seek sets the playback position in milliseconds. Out-of-range positions
// are clamped by the player, not here.
func (s *PlaybackService) Seek(positionMS int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.handle == domain.InvalidPlayerHandle {
		return domain.ErrNoSongLoaded
	}
	if err := s.player.Seek(s.handle, positionMS); err != nil {
		return domain.NewPlayerError("seek", s.queue[s.current].URI, err)
	}
	return nil
}

// ToggleShuffle flips shuffle mode. Switching on rebuilds the queue as the
// current song followed by a shuffled remainder (playback is not
// interrupted); switching off restores the original ordering and relocates
// the current index.
func (s *PlaybackService) ToggleShuffle() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.shuffle = !s.shuffle

	if len(s.queue) > 0 && s.current >= 0 {
		currentURI := s.queue[s.current].URI
		if s.shuffle {
			pos := 0
			for i, song := range s.original {
				if song.URI == currentURI {
					pos = i
					break
				}
			}
			s.queue = s.shuffledQueueLocked(s.original, pos)
			s.current = 0
		} else {
			restored := make([]domain.Song, len(s.original))
			copy(restored, s.original)
			s.queue = restored
			s.current = 0
			for i, song := range s.queue {
				if song.URI == currentURI {
					s.current = i
					break
				}
			}
		}
		s.bus.Publish(domain.NewQueueChangedEvent(s.snapshotQueueLocked(), s.current))
	}

	if err := s.prefs.SaveShuffle(s.shuffle); err != nil {
		s.logger.Warn("cannot persist shuffle flag", slog.Any("error", err))
	}

	s.bus.Publish(domain.NewStateChangedEvent(s.stateLocked()))
	return nil
}

// CycleRepeat cycles the repeat mode off → all → one → off.
func (s *PlaybackService) CycleRepeat() domain.RepeatMode {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.repeat = s.repeat.Cycle()
	if err := s.prefs.SaveRepeatMode(s.repeat.String()); err != nil {
		s.logger.Warn("cannot persist repeat mode", slog.Any("error", err))
	}

	s.bus.Publish(domain.NewStateChangedEvent(s.stateLocked()))
	return s.repeat
}

// Reorder moves the queue entry at from to position to. The current index
// follows the entry it points at: it tracks the moved entry, or shifts by
// one when the move crosses it.
func (s *PlaybackService) Reorder(from, to int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if from < 0 || from >= len(s.queue) || to < 0 || to >= len(s.queue) {
		return domain.ErrInvalidIndex
	}
	if from == to {
		return nil
	}

	moved := s.queue[from]
	queue := append(s.queue[:from], s.queue[from+1:]...)
	queue = append(queue[:to], append([]domain.Song{moved}, queue[to:]...)...)
	s.queue = queue

	switch {
	case s.current == from:
		s.current = to
	case from < s.current && to >= s.current:
		s.current--
	case from > s.current && to <= s.current:
		s.current++
	}

	s.bus.Publish(domain.NewQueueChangedEvent(s.snapshotQueueLocked(), s.current))
	return nil
}

// State returns a snapshot of the playback state.
func (s *PlaybackService) State() domain.PlaybackState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stateLocked()
}

// HandleControl dispatches an external control event (notification surface,
// media keys). Events arriving within the debounce window of the previous
// one are dropped, so an accidental double delivery produces one transition.
func (s *PlaybackService) HandleControl(action domain.ControlAction) error {
	s.mu.Lock()
	now := time.Now()
	if now.Sub(s.lastControl) < controlDebounce {
		s.mu.Unlock()
		s.logger.Debug("control event debounced", slog.String("action", string(action)))
		return nil
	}
	s.lastControl = now
	status := s.status
	s.mu.Unlock()

	switch action {
	case domain.ControlPlayPause:
		if status == domain.StatusPlaying {
			return s.Pause()
		}
		return s.Resume()
	case domain.ControlNext:
		return s.Next()
	case domain.ControlPrevious:
		return s.Previous()
	case domain.ControlStop:
		return s.Stop()
	case domain.ControlShuffle:
		return s.ToggleShuffle()
	case domain.ControlRepeatCycle:
		s.CycleRepeat()
		return nil
	case domain.ControlSeek:
		// Seek carries a position and arrives through Seek directly; the
		// bare action is ignored here.
		return nil
	default:
		return domain.NewServiceError("PlaybackService", "HandleControl", "unknown control action "+string(action), nil)
	}
}

// Shutdown stops the position poller and releases the player resource.
func (s *PlaybackService) Shutdown() error {
	s.mu.Lock()
	if s.pollRunning {
		close(s.stopPoll)
		s.pollRunning = false
	}
	s.mu.Unlock()

	s.pollWg.Wait()

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stopLocked()
}

// onCompletion handles natural end-of-track. Stale completions from an
// already-released handle are ignored.
func (s *PlaybackService) onCompletion(handle domain.PlayerHandle) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if handle != s.handle || s.current == -1 {
		return
	}

	finished := s.queue[s.current]
	s.bus.Publish(domain.NewSongCompletedEvent(finished, s.current))

	switch s.repeat {
	case domain.RepeatOne:
		// Restart in place, no index change
		if err := s.player.Seek(s.handle, 0); err != nil {
			s.logger.Warn("cannot rewind for repeat", slog.Any("error", err))
		}
		if err := s.player.Start(s.handle); err != nil {
			s.logger.Warn("cannot restart for repeat", slog.Any("error", err))
			s.enterIdleLocked(false)
		}

	case domain.RepeatAll:
		next := (s.current + 1) % len(s.queue)
		if err := s.startSongLocked(s.queue, next); err != nil {
			s.logger.Warn("cannot start next song", slog.Any("error", err))
			s.enterIdleLocked(false)
		}

	case domain.RepeatOff:
		if s.current+1 < len(s.queue) {
			if err := s.startSongLocked(s.queue, s.current+1); err != nil {
				s.logger.Warn("cannot start next song", slog.Any("error", err))
				s.enterIdleLocked(false)
			}
		} else {
			// Queue exhausted: index and song stay visible, playback ends
			s.enterIdleLocked(true)
		}
	}
}

// nextLocked advances to the following song. Callers must hold mu.
func (s *PlaybackService) nextLocked() error {
	if s.current == -1 || len(s.queue) == 0 {
		return domain.ErrNoSongLoaded
	}

	target := s.current + 1
	if target >= len(s.queue) {
		if s.repeat != domain.RepeatAll {
			return nil
		}
		target = 0
	}
	return s.startSongLocked(s.queue, target)
}

// startSongLocked releases the previous player resource, acquires one for
// queue[index] and starts it. On success the queue becomes active, the state
// is Playing and the song's play count is bumped exactly once. Callers must
// hold mu.
func (s *PlaybackService) startSongLocked(queue []domain.Song, index int) error {
	song := queue[index]
	if !song.Exists {
		return domain.ErrSongUnavailable
	}

	// Exactly one live resource: release before replacement
	if s.handle != domain.InvalidPlayerHandle {
		if err := s.player.Release(s.handle); err != nil {
			s.logger.Warn("cannot release player resource", slog.Any("error", err))
		}
		s.handle = domain.InvalidPlayerHandle
	}

	handle, err := s.player.Create(song.URI)
	if err != nil {
		s.bus.Publish(domain.NewPlaybackErrorEvent(song, err))
		if markErr := s.counter.MarkMissing(song.URI); markErr != nil {
			s.logger.Debug("cannot flag missing song", slog.Any("error", markErr))
		}
		return domain.NewPlayerError("create", song.URI, err)
	}

	if err := s.player.Start(handle); err != nil {
		_ = s.player.Release(handle)
		s.bus.Publish(domain.NewPlaybackErrorEvent(song, err))
		return domain.NewPlayerError("start", song.URI, err)
	}

	s.queue = queue
	s.current = index
	s.handle = handle
	s.status = domain.StatusPlaying

	// Once per successful start, never per completion
	if err := s.counter.IncrementPlayCount(song.URI); err != nil {
		s.logger.Warn("cannot increment play count",
			slog.String("uri", song.URI),
			slog.Any("error", err))
	}

	s.ensurePollerLocked()

	s.bus.Publish(domain.NewSongStartedEvent(song, index))
	s.bus.Publish(domain.NewStateChangedEvent(s.stateLocked()))

	s.logger.Info("song started",
		slog.String("title", song.Title),
		slog.Int("index", index))
	return nil
}

// stopLocked releases the player resource and clears the current song.
// Callers must hold mu.
func (s *PlaybackService) stopLocked() error {
	if s.handle == domain.InvalidPlayerHandle {
		s.status = domain.StatusIdle
		s.current = -1
		return nil
	}

	if err := s.player.Release(s.handle); err != nil {
		s.logger.Warn("cannot release player resource", slog.Any("error", err))
	}
	s.handle = domain.InvalidPlayerHandle
	s.status = domain.StatusIdle
	s.current = -1

	s.bus.Publish(domain.NewPlaybackStoppedEvent())
	s.bus.Publish(domain.NewStateChangedEvent(s.stateLocked()))
	return nil
}

// enterIdleLocked ends playback at the end of the queue. With keepSong the
// current song and index stay put for display purposes. Callers must hold mu.
func (s *PlaybackService) enterIdleLocked(keepSong bool) {
	if s.handle != domain.InvalidPlayerHandle {
		if err := s.player.Release(s.handle); err != nil {
			s.logger.Warn("cannot release player resource", slog.Any("error", err))
		}
		s.handle = domain.InvalidPlayerHandle
	}
	s.status = domain.StatusIdle
	if !keepSong {
		s.current = -1
	}

	s.bus.Publish(domain.NewPlaybackStoppedEvent())
	s.bus.Publish(domain.NewStateChangedEvent(s.stateLocked()))
}

// shuffledQueueLocked builds [list[keep]] + shuffled rest. Callers must hold mu.
func (s *PlaybackService) shuffledQueueLocked(list []domain.Song, keep int) []domain.Song {
	rest := make([]domain.Song, 0, len(list)-1)
	for i, song := range list {
		if i != keep {
			rest = append(rest, song)
		}
	}
	s.rng.Shuffle(len(rest), func(i, j int) {
		rest[i], rest[j] = rest[j], rest[i]
	})

	queue := make([]domain.Song, 0, len(list))
	queue = append(queue, list[keep])
	queue = append(queue, rest...)
	return queue
}

// stateLocked assembles a state snapshot. Callers must hold mu.
func (s *PlaybackService) stateLocked() domain.PlaybackState {
	state := domain.PlaybackState{
		CurrentIndex: s.current,
		Queue:        s.snapshotQueueLocked(),
		Status:       s.status,
		Shuffle:      s.shuffle,
		Repeat:       s.repeat,
	}

	if s.current >= 0 && s.current < len(s.queue) {
		song := s.queue[s.current]
		state.CurrentSong = &song
	}
	if s.handle != domain.InvalidPlayerHandle {
		if pos, err := s.player.PositionMS(s.handle); err == nil {
			state.PositionMS = pos
		}
		if dur, err := s.player.DurationMS(s.handle); err == nil {
			state.DurationMS = dur
		}
	}
	return state
}

// snapshotQueueLocked copies the queue. Callers must hold mu.
func (s *PlaybackService) snapshotQueueLocked() []domain.Song {
	snapshot := make([]domain.Song, len(s.queue))
	copy(snapshot, s.queue)
	return snapshot
}

// ensurePollerLocked starts the 200ms position poller once. The poller only
// reads player state and publishes progress, never transitions. Callers must
// hold mu.
func (s *PlaybackService) ensurePollerLocked() {
	if s.pollRunning {
		return
	}
	s.pollRunning = true
	s.pollWg.Add(1)

	go func() {
		defer s.pollWg.Done()
		ticker := time.NewTicker(s.pollInterval)
		defer ticker.Stop()

		for {
			select {
			case <-s.stopPoll:
				return
			case <-ticker.C:
				s.publishProgress()
			}
		}
	}()
}

// publishProgress emits one progress sample while a song is playing.
func (s *PlaybackService) publishProgress() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.handle == domain.InvalidPlayerHandle || s.status != domain.StatusPlaying {
		return
	}

	pos, err := s.player.PositionMS(s.handle)
	if err != nil {
		return
	}
	dur, err := s.player.DurationMS(s.handle)
	if err != nil {
		return
	}

	s.bus.Publish(domain.NewPlaybackProgressEvent(pos, dur))
}

// Verify that PlaybackService implements the expected interface patterns
var _ interface {
	Load() error
	PlayAt([]domain.Song, int) error
	PlayFromContext(domain.Song, []domain.Song) error
	Next() error
	Previous() error
	Pause() error
	Resume() error
	Stop() error
	Seek(int) error
	ToggleShuffle() error
	CycleRepeat() domain.RepeatMode
	Reorder(int, int) error
	State() domain.PlaybackState
	HandleControl(domain.ControlAction) error
	Shutdown() error
} = (*PlaybackService)(nil)
