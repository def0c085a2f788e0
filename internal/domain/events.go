// Package domain defines events for the event-driven architecture.
// Events decouple the services from the UI layer and the remote-control surface.
package domain

import (
	"time"
)

// Event is the base interface for all events in the system.
// All events must implement this interface to be published via the event bus.
type Event interface {
	// Type returns the event type identifier
	Type() EventType

	// Timestamp returns when the event occurred
	Timestamp() time.Time
}

// EventType is a string identifier for different event types.
type EventType string

// Event type constants define all possible events in the system.
const (
	// Playback events
	EventSongStarted      EventType = "song.started"
	EventSongPaused       EventType = "song.paused"
	EventSongCompleted    EventType = "song.completed"
	EventPlaybackStopped  EventType = "playback.stopped"
	EventPlaybackProgress EventType = "playback.progress"
	EventPlaybackError    EventType = "playback.error"
	EventStateChanged     EventType = "playback.state"

	// Queue events
	EventQueueChanged EventType = "queue.changed"

	// Library events
	EventCatalogUpdated   EventType = "catalog.updated"
	EventPlaylistsUpdated EventType = "playlists.updated"
	EventFolderChanged    EventType = "folder.changed"

	// Scan events
	EventScanStarted   EventType = "scan.started"
	EventScanProgress  EventType = "scan.progress"
	EventScanCompleted EventType = "scan.completed"
)

// EventHandler is a function that handles events.
type EventHandler func(event Event)

// SubscriptionID uniquely identifies an event subscription.
type SubscriptionID string

// baseEvent provides common event functionality.
// All concrete events should embed this struct.
type baseEvent struct {
	timestamp time.Time
}

// Timestamp returns when the event occurred.
func (e baseEvent) Timestamp() time.Time {
	return e.timestamp
}

// newBaseEvent creates a new base event with the current timestamp.
func newBaseEvent() baseEvent {
	return baseEvent{timestamp: time.Now()}
}

// SongStartedEvent is published when playback of a song starts or resumes.
type SongStartedEvent struct {
	baseEvent
	Song  Song
	Index int // Queue index
}

// Type returns the event type.
func (e SongStartedEvent) Type() EventType {
	return EventSongStarted
}

// NewSongStartedEvent creates a new SongStartedEvent.
func NewSongStartedEvent(song Song, index int) SongStartedEvent {
	return SongStartedEvent{
		baseEvent: newBaseEvent(),
		Song:      song,
		Index:     index,
	}
}

// SongPausedEvent is published when playback is paused.
type SongPausedEvent struct {
	baseEvent
	Song       Song
	PositionMS int
}

// Type returns the event type.
func (e SongPausedEvent) Type() EventType {
	return EventSongPaused
}

// NewSongPausedEvent creates a new SongPausedEvent.
func NewSongPausedEvent(song Song, positionMS int) SongPausedEvent {
	return SongPausedEvent{
		baseEvent:  newBaseEvent(),
		Song:       song,
		PositionMS: positionMS,
	}
}

// SongCompletedEvent is published when a song finishes playing naturally.
// The playback service consumes it to drive queue advancement.
type SongCompletedEvent struct {
	baseEvent
	Song  Song
	Index int
}

// Type returns the event type.
func (e SongCompletedEvent) Type() EventType {
	return EventSongCompleted
}

// NewSongCompletedEvent creates a new SongCompletedEvent.
func NewSongCompletedEvent(song Song, index int) SongCompletedEvent {
	return SongCompletedEvent{
		baseEvent: newBaseEvent(),
		Song:      song,
		Index:     index,
	}
}

// PlaybackStoppedEvent is published when playback stops (user stop or queue
// exhausted with repeat off).
type PlaybackStoppedEvent struct {
	baseEvent
}

// Type returns the event type.
func (e PlaybackStoppedEvent) Type() EventType {
	return EventPlaybackStopped
}

// NewPlaybackStoppedEvent creates a new PlaybackStoppedEvent.
func NewPlaybackStoppedEvent() PlaybackStoppedEvent {
	return PlaybackStoppedEvent{baseEvent: newBaseEvent()}
}

// PlaybackProgressEvent is published periodically while a song plays.
// It carries position only; no state transitions are driven by it.
type PlaybackProgressEvent struct {
	baseEvent
	PositionMS int
	DurationMS int
}

// Type returns the event type.
func (e PlaybackProgressEvent) Type() EventType {
	return EventPlaybackProgress
}

// NewPlaybackProgressEvent creates a new PlaybackProgressEvent.
func NewPlaybackProgressEvent(positionMS, durationMS int) PlaybackProgressEvent {
	return PlaybackProgressEvent{
		baseEvent:  newBaseEvent(),
		PositionMS: positionMS,
		DurationMS: durationMS,
	}
}

// PlaybackErrorEvent is published when a song cannot be played.
type PlaybackErrorEvent struct {
	baseEvent
	Song  Song
	Error error
}

// Type returns the event type.
func (e PlaybackErrorEvent) Type() EventType {
	return EventPlaybackError
}

// NewPlaybackErrorEvent creates a new PlaybackErrorEvent.
func NewPlaybackErrorEvent(song Song, err error) PlaybackErrorEvent {
	return PlaybackErrorEvent{
		baseEvent: newBaseEvent(),
		Song:      song,
		Error:     err,
	}
}

// StateChangedEvent carries a full playback state snapshot.
// The remote-control surface renders these.
type StateChangedEvent struct {
	baseEvent
	State PlaybackState
}

// Type returns the event type.
func (e StateChangedEvent) Type() EventType {
	return EventStateChanged
}

// NewStateChangedEvent creates a new StateChangedEvent.
func NewStateChangedEvent(state PlaybackState) StateChangedEvent {
	return StateChangedEvent{
		baseEvent: newBaseEvent(),
		State:     state,
	}
}

// QueueChangedEvent is published when the play queue ordering changes.
type QueueChangedEvent struct {
	baseEvent
	Queue        []Song
	CurrentIndex int
}

// Type returns the event type.
func (e QueueChangedEvent) Type() EventType {
	return EventQueueChanged
}

// NewQueueChangedEvent creates a new QueueChangedEvent.
func NewQueueChangedEvent(queue []Song, currentIndex int) QueueChangedEvent {
	return QueueChangedEvent{
		baseEvent:    newBaseEvent(),
		Queue:        queue,
		CurrentIndex: currentIndex,
	}
}

// CatalogUpdatedEvent is published after any catalog mutation
// (scan merge, folder removal, play count update).
type CatalogUpdatedEvent struct {
	baseEvent
	SongCount int
}

// Type returns the event type.
func (e CatalogUpdatedEvent) Type() EventType {
	return EventCatalogUpdated
}

// NewCatalogUpdatedEvent creates a new CatalogUpdatedEvent.
func NewCatalogUpdatedEvent(songCount int) CatalogUpdatedEvent {
	return CatalogUpdatedEvent{
		baseEvent: newBaseEvent(),
		SongCount: songCount,
	}
}

// PlaylistsUpdatedEvent is published when the set of playlists changes.
type PlaylistsUpdatedEvent struct {
	baseEvent
	Playlists []Playlist
}

// Type returns the event type.
func (e PlaylistsUpdatedEvent) Type() EventType {
	return EventPlaylistsUpdated
}

// NewPlaylistsUpdatedEvent creates a new PlaylistsUpdatedEvent.
func NewPlaylistsUpdatedEvent(playlists []Playlist) PlaylistsUpdatedEvent {
	return PlaylistsUpdatedEvent{
		baseEvent: newBaseEvent(),
		Playlists: playlists,
	}
}

// FolderChangedEvent is published by the folder watcher when files under a
// tracked source folder are created, removed or renamed. Consumers may use it
// to prompt a rescan of the affected folder.
type FolderChangedEvent struct {
	baseEvent
	Folder string
	Path   string
}

// Type returns the event type.
func (e FolderChangedEvent) Type() EventType {
	return EventFolderChanged
}

// NewFolderChangedEvent creates a new FolderChangedEvent.
func NewFolderChangedEvent(folder, path string) FolderChangedEvent {
	return FolderChangedEvent{
		baseEvent: newBaseEvent(),
		Folder:    folder,
		Path:      path,
	}
}

// ScanStartedEvent is published when a library scan starts.
type ScanStartedEvent struct {
	baseEvent
	// ScanID uniquely identifies the scan session
	ScanID  string
	Folders []string
}

// Type returns the event type.
func (e ScanStartedEvent) Type() EventType {
	return EventScanStarted
}

// NewScanStartedEvent creates a new ScanStartedEvent.
func NewScanStartedEvent(scanID string, folders []string) ScanStartedEvent {
	return ScanStartedEvent{
		baseEvent: newBaseEvent(),
		ScanID:    scanID,
		Folders:   folders,
	}
}

// ScanProgressEvent is published periodically during a library scan.
type ScanProgressEvent struct {
	baseEvent
	ScanID   string
	Progress ScanProgress
}

// Type returns the event type.
func (e ScanProgressEvent) Type() EventType {
	return EventScanProgress
}

// NewScanProgressEvent creates a new ScanProgressEvent.
func NewScanProgressEvent(scanID string, progress ScanProgress) ScanProgressEvent {
	return ScanProgressEvent{
		baseEvent: newBaseEvent(),
		ScanID:    scanID,
		Progress:  progress,
	}
}

// ScanCompletedEvent is published when a library scan completes.
type ScanCompletedEvent struct {
	baseEvent
	ScanID     string
	SongsFound []Song
}

// Type returns the event type.
func (e ScanCompletedEvent) Type() EventType {
	return EventScanCompleted
}

// NewScanCompletedEvent creates a new ScanCompletedEvent.
func NewScanCompletedEvent(scanID string, songs []Song) ScanCompletedEvent {
	return ScanCompletedEvent{
		baseEvent:  newBaseEvent(),
		ScanID:     scanID,
		SongsFound: songs,
	}
}
