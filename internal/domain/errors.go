// Package domain defines domain-specific errors.
// These errors represent business logic failures and are independent of infrastructure.
package domain

import (
	"errors"
	"fmt"
)

// Common errors that services can return.
var (
	// ErrSongNotFound is returned when a requested song cannot be found.
	ErrSongNotFound = errors.New("song not found")

	// ErrSongUnavailable is returned when playback is requested for a song
	// whose underlying file is no longer reachable.
	ErrSongUnavailable = errors.New("song file unavailable")

	// ErrQueueEmpty is returned when queue operations are attempted on an empty queue.
	ErrQueueEmpty = errors.New("queue is empty")

	// ErrInvalidIndex is returned when a queue index is out of bounds.
	ErrInvalidIndex = errors.New("invalid queue index")

	// ErrScanInProgress is returned when a scan is requested while one is running.
	ErrScanInProgress = errors.New("scan already in progress")

	// ErrEmptyPlaylist is returned when an imported playlist resolved zero songs.
	ErrEmptyPlaylist = errors.New("playlist resolved no songs")

	// ErrPlaylistNotFound is returned when a requested playlist doesn't exist.
	ErrPlaylistNotFound = errors.New("playlist not found")

	// ErrNoSongLoaded is returned when a playback control is used with no active song.
	ErrNoSongLoaded = errors.New("no song loaded")

	// ErrFolderNotTracked is returned when an operation names a source folder
	// that is not part of the library.
	ErrFolderNotTracked = errors.New("folder not tracked")
)

// PlayerError represents an error from the player capability.
// It wraps low-level player failures with the operation and resource context.
type PlayerError struct {
	Op  string // Operation that failed (e.g., "create", "start", "seek")
	URI string // Resource identifier (if applicable)
	Err error  // Underlying error (if any)
}

// Error implements the error interface.
func (e *PlayerError) Error() string {
	if e.URI != "" {
		return fmt.Sprintf("player %s failed for %q: %v", e.Op, e.URI, e.Err)
	}
	return fmt.Sprintf("player %s failed: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error.
func (e *PlayerError) Unwrap() error {
	return e.Err
}

// NewPlayerError creates a new PlayerError.
func NewPlayerError(op, uri string, err error) *PlayerError {
	return &PlayerError{
		Op:  op,
		URI: uri,
		Err: err,
	}
}

// RepositoryError represents an error from a repository.
// This wraps persistence layer errors with additional context.
type RepositoryError struct {
	Op      string // Operation that failed (e.g., "save", "load")
	Type    string // Repository type (e.g., "catalog", "playlists", "preferences")
	Message string // Error message
	Err     error  // Underlying error
}

// Error implements the error interface.
func (e *RepositoryError) Error() string {
	return fmt.Sprintf("repository %s.%s failed: %s", e.Type, e.Op, e.Message)
}

// Unwrap returns the underlying error.
func (e *RepositoryError) Unwrap() error {
	return e.Err
}

// NewRepositoryError creates a new RepositoryError.
func NewRepositoryError(op, repoType, message string, err error) *RepositoryError {
	return &RepositoryError{
		Op:      op,
		Type:    repoType,
		Message: message,
		Err:     err,
	}
}

// ServiceError represents an error from a service layer operation.
type ServiceError struct {
	Service string // Service name (e.g., "PlaybackService", "LibraryService")
	Op      string // Operation that failed
	Message string // Error message
	Err     error  // Underlying error
}

// Error implements the error interface.
func (e *ServiceError) Error() string {
	return fmt.Sprintf("service %s.%s failed: %s", e.Service, e.Op, e.Message)
}

// Unwrap returns the underlying error.
func (e *ServiceError) Unwrap() error {
	return e.Err
}

// NewServiceError creates a new ServiceError.
func NewServiceError(service, op, message string, err error) *ServiceError {
	return &ServiceError{
		Service: service,
		Op:      op,
		Message: message,
		Err:     err,
	}
}
