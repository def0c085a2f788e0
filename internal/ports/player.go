// Package ports define interfaces for dependency inversion.
// These interfaces allow the core business logic to remain independent of the
// host platform's media, storage and notification services.
package ports

import (
	"io"

	"github.com/kazu-1234/MusicPlayer/internal/domain"
)

// Player is the interface for the platform playback capability.
// It abstracts the OS media player (or a mock) behind create/start/pause/seek
// /release primitives plus a completion callback.
//
// Implementations must be thread-safe as they may be called from multiple goroutines.
type Player interface {
	// Create acquires a playback resource for the given song URI.
	// The resource stays live until Release is called with the handle.
	//
	// Returns a PlayerHandle for the created resource, or an error if the
	// resource cannot be opened.
	Create(uri string) (domain.PlayerHandle, error)

	// Start begins or resumes playback of the resource.
	// This is fire-and-forget; it does not block until playback ends.
	Start(handle domain.PlayerHandle) error

	// Pause pauses playback, preserving the position for a later Start.
	Pause(handle domain.PlayerHandle) error

	// Seek sets the playback position in milliseconds.
	// Out-of-range positions are clamped by the implementation, not rejected.
	Seek(handle domain.PlayerHandle, positionMS int) error

	// PositionMS returns the current playback position in milliseconds.
	PositionMS(handle domain.PlayerHandle) (int, error)

	// DurationMS returns the total resource duration in milliseconds.
	DurationMS(handle domain.PlayerHandle) (int, error)

	// Release frees the playback resource. The handle is invalid afterwards.
	// Releasing an already released handle is an error.
	Release(handle domain.PlayerHandle) error

	// SetCompletionHandler registers the callback invoked when a resource
	// finishes playing naturally. The callback runs on the player's own
	// goroutine; consumers must re-serialize it into their state machine.
	SetCompletionHandler(fn func(handle domain.PlayerHandle))
}

// MetadataReader is the interface for the metadata-extraction capability.
// Extraction is best effort: a false second return value means "no metadata",
// never an error that aborts the caller.
type MetadataReader interface {
	// Extract reads tags from an open audio stream.
	Extract(r io.ReadSeeker) (domain.Metadata, bool)
}
